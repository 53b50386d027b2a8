// Package features provides a FeatureFlags implementation backed by the
// "features" section of the service configuration.
package features

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
)

// Static serves flags from a fixed name to value map. Values are parsed on
// each lookup; unparsable values fall back to the caller's default and are
// reported once.
type Static struct {
	values map[string]string
	warned sync.Map
}

// NewStatic copies values so later changes to the source map are ignored.
// Flag names are matched case-insensitively.
func NewStatic(values map[string]string) *Static {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[strings.ToLower(k)] = strings.TrimSpace(v)
	}

	return &Static{values: copied}
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(ctx context.Context, flag string, defaultValue bool) bool {
	raw, ok := s.values[strings.ToLower(flag)]
	if !ok {
		return defaultValue
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.warn(ctx, flag, raw)
		return defaultValue
	}

	return v
}

// GetInt implements ports.FeatureFlags.
func (s *Static) GetInt(ctx context.Context, flag string, defaultValue int) int {
	raw, ok := s.values[strings.ToLower(flag)]
	if !ok {
		return defaultValue
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		s.warn(ctx, flag, raw)
		return defaultValue
	}

	return v
}

func (s *Static) warn(ctx context.Context, flag, raw string) {
	if _, loaded := s.warned.LoadOrStore(flag, struct{}{}); loaded {
		return
	}

	logging.FromContext(ctx).WarnContext(ctx, "ignoring unparsable feature flag",
		slog.String("flag", flag),
		slog.String("value", raw),
	)
}
