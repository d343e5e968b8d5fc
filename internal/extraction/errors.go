// Package extraction pulls facility listings out of a results document using
// cascading selector lists, so that unknown or shifting markup still yields records.
package extraction

import "fmt"

// Error represents a failure to read the document at all.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
