package application

import (
	"errors"
	"fmt"
)

// ErrValidation marks a missing or malformed form field. No external call
// is made when it is returned.
var ErrValidation = errors.New("validation error")

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// ProcessingError is returned when staging, transcription or drafting fails.
type ProcessingError struct {
	Step string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed while %s: %v", e.Step, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// SendError is returned when authentication or submission to the mail provider fails.
type SendError struct {
	Provider string
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send via %s: %v", e.Provider, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
