package common

import (
	"errors"
	"fmt"
)

// Kind classifies a service-level failure. The HTTP layer maps kinds to
// status codes.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindAuth         Kind = "AUTH_ERROR"
	KindUserExists   Kind = "USER_EXISTS"
	KindConfig       Kind = "CONFIG_ERROR"
	KindDatabase     Kind = "DATABASE_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
)

// Error is the structured failure returned by the service layer.
//
// Message is safe to show to clients. Details carries field-level
// validation messages. Err keeps the underlying cause for logging and is
// never serialised.
type Error struct {
	Kind    Kind
	Message string
	Details map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf reports the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
