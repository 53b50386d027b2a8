// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
)

// ErrorResponse is the standard error envelope for all error responses.
// It provides a consistent structure for API error handling.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details maps input fields to their error messages.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeForbidden   = "FORBIDDEN"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"

	// ErrorCodeRepository indicates the quote store failed. The request may
	// be retried.
	ErrorCodeRepository = "REPOSITORY_ERROR"

	ErrorCodeInternal   = "INTERNAL_ERROR"
	ErrorCodeTimeout    = "TIMEOUT"
	ErrorCodeBadRequest = "BAD_REQUEST"
)

// ContextKeyTraceID lets tests and upstream middleware pin the trace ID
// reported in error envelopes.
const ContextKeyTraceID = "trace_id"

const internalErrorMessage = "an internal error occurred"

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with additional details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeRepository:
		return http.StatusBadGateway
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	var resp *ErrorResponse

	switch {
	case err == nil:
		return http.StatusOK, nil
	case domain.IsValidation(err):
		resp = NewErrorResponseWithDetails(ErrorCodeValidation, err.Error(), fieldDetails(err))
	case domain.IsNotFound(err):
		resp = NewErrorResponse(ErrorCodeNotFound, err.Error())
	case domain.IsConflict(err):
		resp = NewErrorResponse(ErrorCodeConflict, err.Error())
	case domain.IsForbidden(err):
		resp = NewErrorResponse(ErrorCodeForbidden, err.Error())
	case domain.IsUnavailable(err):
		resp = NewErrorResponse(ErrorCodeUnavailable, err.Error())
	case domain.IsRepository(err):
		// The cause may carry driver text; only the operation is reported.
		var repoErr *domain.RepositoryError
		msg := "the quote store could not complete the request"
		if errors.As(err, &repoErr) && repoErr.Op != "" {
			msg = "the quote store failed during " + repoErr.Op
		}

		resp = NewErrorResponse(ErrorCodeRepository, msg)
	default:
		resp = NewErrorResponse(ErrorCodeInternal, internalErrorMessage)
	}

	return HTTPStatusFromCode(resp.Error.Code), resp
}

// fieldDetails collects field messages from a single or a multi-field
// validation error.
func fieldDetails(err error) map[string]string {
	details := make(map[string]string)

	var many domain.ValidationErrors
	if errors.As(err, &many) {
		for _, fe := range many {
			if fe.Field != "" {
				details[fe.Field] = fe.Message
			}
		}
	}

	var one *domain.ValidationError
	if len(details) == 0 && errors.As(err, &one) && one.Field != "" {
		details[one.Field] = one.Message
	}

	if len(details) == 0 {
		return nil
	}

	return details
}

// GetTraceID returns the trace ID for the current request. A value pinned in
// the gin context wins over the active span, which wins over X-Request-ID.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyTraceID); ok {
		s, _ := v.(string)
		return s
	}

	if c.Request != nil {
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
			return span.SpanContext().TraceID().String()
		}

		return c.GetHeader("X-Request-ID")
	}

	return ""
}

// HandleError writes the envelope for err. Failures that map to a server
// error are logged with their full cause.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.String("code", resp.Error.Code),
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.AbortWithStatusJSON(status, resp)
}

// HandleErrorCode writes an adapter-level error that does not come from the
// domain, such as a malformed body.
func HandleErrorCode(c *gin.Context, code, message string) {
	resp := NewErrorResponse(code, message).WithTraceID(GetTraceID(c))
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), resp)
}

// HandleValidationErrors writes a 400 response with field-level messages.
func HandleValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", fieldErrors).
		WithTraceID(GetTraceID(c))
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}
