package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format of calendar dates.
	DateLayout = "2006-01-02"
	// DisplayDateLayout is dd/MM/yyyy.
	DisplayDateLayout = "02/01/2006"
)

// Date is a calendar day with no time-of-day or zone. The zero value means
// "not set".
type Date struct {
	t time.Time
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate reads a "2006-01-02" string. Empty input yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}

	return Date{t: t}, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.t.Format(DateLayout)
}

// Display renders dd/MM/yyyy, or "" when unset.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}

	return d.t.Format(DisplayDateLayout)
}

// MarshalJSON encodes the day as "2006-01-02", or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "2006-01-02", "" and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
