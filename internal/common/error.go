// Package common defines shared sentinel errors and the structured error
// type returned by the server's service layer. Callers should use errors.Is
// for sentinels and errors.As for *Error.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrInvalidRecord   = errors.New("invalid record")

	// Configuration errors.
	ErrMissingSecret = errors.New("signing secret is not configured")

	// Token errors. ErrTokenMalformed means the input is not a token at all;
	// ErrInvalidToken and ErrTokenExpired mean it is a token that failed
	// verification.
	ErrTokenMalformed = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)
