package acquisition

import (
	"errors"
	"fmt"
)

// ErrSearchNotSubmitted is returned by an attempt whose search form could not be driven.
var ErrSearchNotSubmitted = errors.New("search could not be submitted")

// AttemptError describes why one acquisition attempt failed.
type AttemptError struct {
	Attempt int
	Message string
	Cause   error
}

func (e *AttemptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("attempt %d: %s: %v", e.Attempt, e.Message, e.Cause)
	}
	return fmt.Sprintf("attempt %d: %s", e.Attempt, e.Message)
}

func (e *AttemptError) Unwrap() error {
	return e.Cause
}
