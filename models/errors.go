package models

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error so the HTTP layer can pick a status code without
// looking at the underlying cause.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error codes returned to clients.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInvalidID     = "INVALID_ID"
	ErrCodeEventNotFound = "EVENT_NOT_FOUND"
	ErrCodeUserNotFound  = "USER_NOT_FOUND"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodePastEvent     = "EVENT_ALREADY_OCCURRED"
	ErrCodeAlreadyJoined = "ALREADY_JOINED"
	ErrCodeDuplicateKey  = "DUPLICATE_KEY"
	ErrCodeDBUnavailable = "DATABASE_UNAVAILABLE"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// Error is the single error type surfaced by the store and service layers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []string // offending input fields, validation only
	Err     error    // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Fields) > 0 {
		msg += " (" + strings.Join(e.Fields, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the client-facing code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func NewValidationError(message string, fields ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrCodeValidation,
		Message: message,
		Fields:  fields,
	}
}

func NewInvalidIDError(id string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidID,
		Message: fmt.Sprintf("invalid id: %q", id),
		Fields:  []string{"id"},
	}
}

func NewEventNotFoundError() *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    ErrCodeEventNotFound,
		Message: "Event not found",
	}
}

func NewUserNotFoundError() *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

func NewPastEventError() *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    ErrCodePastEvent,
		Message: "Cannot join past events",
	}
}

func NewAlreadyJoinedError() *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    ErrCodeAlreadyJoined,
		Message: "Already joined this event",
	}
}

func NewUnavailableError(cause error) *Error {
	return &Error{
		Kind:    KindUnavailable,
		Code:    ErrCodeDBUnavailable,
		Message: "Database temporarily unavailable",
		Err:     cause,
	}
}

func NewInternalError(message string, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    ErrCodeInternal,
		Message: message,
		Err:     cause,
	}
}
