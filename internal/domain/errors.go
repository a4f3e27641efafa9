package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// IsNotFound reports whether err is an ErrNotFound
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ConflictError represents a state conflict such as a duplicate redemption
// attempt or an exhausted reward-code retry loop
type ConflictError struct {
	Message string
}

// Error implements the error interface
func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Message)
}

// NewConflictError creates a new conflict error with the given message
func NewConflictError(message string) error {
	return ConflictError{
		Message: message,
	}
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}
