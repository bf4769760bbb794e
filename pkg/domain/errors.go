package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors classifying every failure a service can report.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal failure")
)

// DomainError is a typed error carrying one of the sentinels above plus the
// human-readable messages surfaced to API clients.
type DomainError struct {
	Err     error
	Message string
	Details []string
	cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap lets errors.Is match both the sentinel and the underlying cause.
func (e *DomainError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// Messages returns the ordered list of messages for the response envelope.
func (e *DomainError) Messages() []string {
	msgs := make([]string, 0, 1+len(e.Details))
	if e.Message != "" {
		msgs = append(msgs, e.Message)
	}
	return append(msgs, e.Details...)
}

// NewValidationError reports rejected input. When violations are given they
// replace the summary message in the envelope.
func NewValidationError(message string, violations ...string) *DomainError {
	if len(violations) > 0 {
		return &DomainError{Err: ErrValidation, Details: violations}
	}
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(message string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: message}
}

// NewConflictError reports a uniqueness violation.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewUnauthorizedError reports rejected credentials.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Err: ErrUnauthorized, Message: message}
}

// NewInternalError wraps a store or unexpected failure. The raw cause message
// follows the generic description in the envelope.
func NewInternalError(message string, cause error) *DomainError {
	e := &DomainError{Err: ErrInternal, Message: message, cause: cause}
	if cause != nil {
		e.Details = []string{cause.Error()}
	}
	return e
}

// StatusCode maps an error to its HTTP status. Errors that are not a
// *DomainError are treated as internal failures.
func StatusCode(err error) int {
	var domErr *DomainError
	if !errors.As(err, &domErr) {
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(domErr.Err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(domErr.Err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(domErr.Err, ErrConflict):
		return http.StatusConflict
	case errors.Is(domErr.Err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Messages extracts envelope messages from any error.
func Messages(err error) []string {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Messages()
	}
	return []string{"An unexpected error occurred", err.Error()}
}
