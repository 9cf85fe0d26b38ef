// Package apperrors defines the error taxonomy shared by services and HTTP handlers.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP layer. Its value is echoed to clients
// as "errorname".
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindNotFound   Kind = "NotFoundError"
	KindConflict   Kind = "ConflictError"
	KindAuth       Kind = "AuthError"
	KindUnhandled  Kind = "UnhandledError"
)

// Error is an error with a client-facing message and a kind.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field messages for validation failures, keyed by JSON name.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the kind to an HTTP status. Conflicts surface as 400.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func Unauthorized(message string, err error) *Error {
	return &Error{Kind: KindAuth, Message: message, Err: err}
}

// KindOf reports the kind of err, or KindUnhandled when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnhandled
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
