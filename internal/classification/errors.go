// Package classification assigns a materials category and accepted-materials
// list to a listing's free text, using a remote model when available and a
// deterministic keyword matcher otherwise.
package classification

import (
	"errors"
	"fmt"
)

// ErrClassifierDisabled is the fallback cause when no remote client is configured.
var ErrClassifierDisabled = errors.New("remote classifier disabled")

// ResponseError represents a remote response that could not be used.
type ResponseError struct {
	Message string
	Cause   error
}

func (e *ResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classification response error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("classification response error: %s", e.Message)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}
