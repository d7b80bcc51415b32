package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job id does not resolve.
	ErrJobNotFound = errors.New("job not found")

	// ErrUserNotFound is returned when an acting user id does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when a role attempts an operation it may not run.
	ErrForbidden = errors.New("operation not allowed for this user")

	// ErrAlreadyAccepted is returned when an accept loses the race for a
	// pending job. Detected by the transactional guard in the store.
	ErrAlreadyAccepted = errors.New("job already accepted by another translator")

	// ErrTranslatorBooked is returned when the accepting translator already
	// holds an active assignment colliding with the job's start time.
	ErrTranslatorBooked = errors.New("translator already booked at this time")

	// ErrTooLateToCancel is returned for self-service translator
	// cancellation inside the 24-hour window.
	ErrTooLateToCancel = errors.New("cancellation inside 24 hours must go through support")
)

// ValidationError tags a rejected input with the offending field.
// It is always detected before any mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-tagged validation failure.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsConflict reports whether err is one of the acceptance conflicts.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyAccepted) || errors.Is(err, ErrTranslatorBooked)
}
