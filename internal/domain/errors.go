package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a request rejected before any engine call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated signals a presented but unusable caller identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSearchEngineNotConfigured signals that the search-engine client was never established.
	ErrSearchEngineNotConfigured = errors.New("search engine client not initialized")
)

// ValidationError wraps ErrInvalidInput with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
