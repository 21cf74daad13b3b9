package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// InvalidStateError is returned when a status transition is attempted from a
// status that does not permit it. Current carries the status the caller lost to.
type InvalidStateError struct {
	Current string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: current status is %s", e.Current)
}

// ValidationError is a recoverable bad-input error: non-positive quantity,
// empty reason, unknown enum value. Never fatal to the process.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
