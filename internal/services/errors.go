package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map each kind to an HTTP status.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failure")
)

// Error is returned by every service operation that fails. Message is safe to
// show to clients; Cause is only for logs.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// txError passes service errors through and reports anything else, such as a
// failed commit, as a persistence failure with the given message.
func txError(err error, message string) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return newError(ErrPersistence, err, "%s", message)
}
