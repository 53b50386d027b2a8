package acl

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/clients"
	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
)

// apiError is the catalog's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func parseAPIError(body string) *apiError {
	if body == "" {
		return nil
	}

	var e apiError
	if err := json.Unmarshal([]byte(body), &e); err != nil || e.Message == "" {
		return nil
	}

	return &e
}

// MapError converts a client failure on operation into a domain error.
func MapError(err error, service, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, clients.ErrCircuitOpen) {
		return domain.NewUnavailableError(service, operation+": circuit breaker open")
	}

	var statusErr *clients.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode >= http.StatusInternalServerError {
		return domain.NewUnavailableError(service, operation+": "+err.Error())
	}

	message := http.StatusText(statusErr.StatusCode)
	if apiErr := parseAPIError(statusErr.Body); apiErr != nil {
		message = apiErr.Message
		if apiErr.Details != "" {
			message += " (" + apiErr.Details + ")"
		}
	}

	switch statusErr.StatusCode {
	case http.StatusNotFound:
		return domain.NewNotFoundError(service, operation)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	default:
		return domain.NewValidationError(operation, message)
	}
}
