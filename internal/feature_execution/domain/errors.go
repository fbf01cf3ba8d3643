package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrFeatureNotFound    = errors.New("feature not found")
	ErrSubmissionInFlight = errors.New("a submission is already in flight for this project")
	ErrSessionClosed      = errors.New("project session is closed")
	ErrInvalidStatus      = errors.New("invalid feature status")
)

// ValidationError rejects bad user input before any state is mutated.
// The message is surfaced inline to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
