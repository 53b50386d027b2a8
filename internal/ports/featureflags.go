package ports

import "context"

// Feature flag names understood by the quote service.
const (
	// FlagEnforceValidityWindow rejects quotes whose validUntil is before
	// their quoteDate. Off unless configured.
	FlagEnforceValidityWindow = "enforce-validity-window"

	// FlagPublishEvents turns quote event publishing on or off at runtime.
	FlagPublishEvents = "publish-quote-events"

	// FlagMaxPageSize caps the limit accepted by the quote list.
	FlagMaxPageSize = "quote-list-max-page-size"
)

// FeatureFlags evaluates runtime switches. Implementations return the
// default when a flag is unknown or evaluation fails.
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetInt reads numeric settings such as page size limits.
	GetInt(ctx context.Context, flag string, defaultValue int) int
}
