package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrRejected      = errors.New("submission rejected")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// RejectionError is returned when the admission pipeline refuses a submission.
// Gate identifies the check that fired; Message is the user-facing reason.
// The honeypot gate deliberately reuses a generic message so the response
// does not reveal which check caught the request.
type RejectionError struct {
	Gate    string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("rejected by %s gate: %s", e.Gate, e.Message)
}

func (e *RejectionError) Unwrap() error { return ErrRejected }
