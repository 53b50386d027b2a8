package domain

import (
	"iter"
	"strings"

	"golang.org/x/text/cases"
)

// StatusAll is the filter value that accepts every status.
const StatusAll = "all"

// QuoteFilter is the list screen's search box plus status selector.
type QuoteFilter struct {
	// Search is matched as a case-insensitive substring of the quote number
	// or the client's name. Empty matches everything.
	Search string
	// Status is a wire status value or StatusAll. Empty behaves as StatusAll.
	Status string
}

// Matches reports whether q passes both the search and the status test.
func (f QuoteFilter) Matches(q *Quote) bool {
	return f.matcher()(q)
}

// Apply lazily yields the quotes that match, in their original order. The
// sequence reads quotes afresh on every iteration.
func (f QuoteFilter) Apply(quotes []*Quote) iter.Seq[*Quote] {
	return func(yield func(*Quote) bool) {
		match := f.matcher()
		for _, q := range quotes {
			if match(q) && !yield(q) {
				return
			}
		}
	}
}

// matcher builds a predicate with its own Caser, which is not safe for
// concurrent use.
func (f QuoteFilter) matcher() func(*Quote) bool {
	folder := cases.Fold()
	needle := folder.String(f.Search)
	status := f.Status

	return func(q *Quote) bool {
		if q == nil {
			return false
		}

		if status != "" && status != StatusAll && string(q.Status) != status {
			return false
		}

		if needle == "" {
			return true
		}

		return strings.Contains(folder.String(q.Number), needle) ||
			strings.Contains(folder.String(q.ClientName()), needle)
	}
}
