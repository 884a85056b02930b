// Package apperr defines the error taxonomy shared by the controllers. Every
// failure that reaches a client is exactly one Kind.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindMalformedID
	KindNotFound
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
)

const unexpectedMessage = "Something went wrong..."

func (k Kind) String() string {
	switch k {
	case KindMalformedID:
		return "malformed_id"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Status is the HTTP status for the kind. Forbidden collapses into 401.
func (k Kind) Status() int {
	switch k {
	case KindMalformedID, KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized, KindForbidden:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Violation names a field that broke an entity rule.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is the client-facing error. Message is safe to return; Err and
// Violations are for logs only.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return e.Kind.Status() }

func MalformedID(message string) *Error {
	return &Error{Kind: KindMalformedID, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Validation(message string, violations []Violation) *Error {
	return &Error{Kind: KindValidation, Message: message, Violations: violations}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unexpected hides err behind a generic message.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: unexpectedMessage, Err: err}
}

// From returns err as an *Error, treating anything unclassified as unexpected.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected(err)
}
