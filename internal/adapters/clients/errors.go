// Package clients is the instrumented HTTP client used to reach the shop
// catalog API.
package clients

import (
	"errors"
	"fmt"
)

// Transport failures. The catalog adapter turns these into domain errors.
var (
	// ErrCircuitOpen means the breaker is rejecting calls to the catalog.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once retries run out.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError is a response the client received but will not decode.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}

	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
