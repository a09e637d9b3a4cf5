package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is; recover details with errors.As on
// *DomainError.
var (
	ErrValidation     = errors.New("validation error")
	ErrAccessDenied   = errors.New("access denied")
	ErrNotFound       = errors.New("loan not found")
	ErrAlreadyDecided = errors.New("loan already has final decision")
	ErrInvalidInput   = errors.New("invalid loan data")
	ErrPersistence    = errors.New("failed to save decision")
	ErrScoring        = errors.New("scoring failed")
	ErrConflict       = errors.New("concurrent decision conflict")

	// ErrRateLimited is raised by the transport layer before any use case runs.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// DomainError carries an error kind together with the offending field and
// the underlying cause, if any.
type DomainError struct {
	Kind    error
	Field   string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DomainError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// FieldName returns the offending input field, if any.
func (e *DomainError) FieldName() string { return e.Field }

// NewValidationError reports a malformed or out-of-range input field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{Kind: ErrValidation, Field: field, Message: message}
}

// NewInvalidInputError reports a business-rule failure after extraction.
func NewInvalidInputError(message string) *DomainError {
	return &DomainError{Kind: ErrInvalidInput, Message: message}
}

// NewPersistenceError wraps a store failure during the decision write.
func NewPersistenceError(message string, err error) *DomainError {
	return &DomainError{Kind: ErrPersistence, Message: message, Err: err}
}

// NewScoringError wraps an unexpected failure inside a scoring model.
func NewScoringError(err error) *DomainError {
	return &DomainError{Kind: ErrScoring, Err: err}
}
