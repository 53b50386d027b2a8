// Package domain holds the quote model, its lifecycle and the rules that keep
// a quote's derived values consistent.
//
// Errors declared here describe business failures only. Adapters translate
// them into transport status codes.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the entity is in a state that does not allow the operation.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates input rejected by a business rule.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates the operation is gated off for the entity's current state.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a collaborator (catalog, broker) could not be reached.
	ErrUnavailable = errors.New("unavailable")

	// ErrRepository indicates the quote store failed to complete a request.
	ErrRepository = errors.New("repository failure")
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError explains why the entity's state rejects the operation.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error with context.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError is a field-level rejection. Field uses the wire name
// (clientId, validUntil, ...) so callers can highlight the input.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the rejected value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ValidationErrors collects every field rejected in one pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	fields := make([]string, 0, len(e))
	for _, fe := range e {
		fields = append(fields, fe.Field)
	}

	return "validation failed for " + strings.Join(fields, ", ")
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e ValidationErrors) Unwrap() error {
	return ErrValidation
}

// ForbiddenError reports an action that is not offered in the entity's current state.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func (e *ForbiddenError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("operation %q forbidden: %s", e.Operation, e.Reason)
	}

	return fmt.Sprintf("operation %q forbidden", e.Operation)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// NewForbiddenError creates a forbidden error with context.
func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

// UnavailableError names the collaborator that could not be reached.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// RepositoryError wraps a storage failure with the operation that hit it.
// The cause stays reachable through errors.As for logging.
type RepositoryError struct {
	Op    string
	Cause error
}

func (e *RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("quote repository %s: %v", e.Op, e.Cause)
	}

	return "quote repository " + e.Op + " failed"
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *RepositoryError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrRepository}
	}

	return []error{ErrRepository, e.Cause}
}

// NewRepositoryError creates a repository error for op.
func NewRepositoryError(op string, cause error) error {
	return &RepositoryError{Op: op, Cause: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsForbidden checks if an error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsRepository checks if an error is a repository failure.
func IsRepository(err error) bool {
	return errors.Is(err, ErrRepository)
}
