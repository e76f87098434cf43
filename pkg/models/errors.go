package models

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown field")
)

// ValidationError is a local rejection of a draft; no request is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// Message is the text shown next to the form.
func (e *ValidationError) Message() string {
	switch e.Reason {
	case ReasonNoGoals:
		return "Please enter at least one goal."
	default:
		return "Please check the form and try again."
	}
}

const ReasonNoGoals = "no goals"
