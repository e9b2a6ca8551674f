package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the class of failure surfaced to the transport boundary.
type Kind string

const (
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindValidationFailed Kind = "validation_failed"
	KindConflict         Kind = "conflict"
	KindInternal         Kind = "internal"
)

// Error is a structured error with a stable kind and a human-readable message.
// Internal detail (wrapped cause) is for logging only and must never be
// returned to the caller.
type Error struct {
	Kind     Kind
	Message  string
	Messages []string // populated for validation failures
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches two apperrors by kind so sentinel-style comparisons work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden        = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidationFailed = &Error{Kind: KindValidationFailed, Message: "validation failed"}
	ErrConflict         = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInternal         = &Error{Kind: KindInternal, Message: "internal error"}
)

// Unauthorized creates an unauthorized error (missing or invalid principal).
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden creates a forbidden error (authenticated but not allowed).
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound creates a not found error for an entity id that does not resolve.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error from one or more field messages.
// The surfaced message joins them in order of first failure.
func Validation(messages ...string) *Error {
	return &Error{
		Kind:     KindValidationFailed,
		Message:  strings.Join(messages, ", "),
		Messages: messages,
	}
}

// Conflict creates a uniqueness-violation error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected store or collaborator failure. The cause is
// retained for logs; the message is what callers see.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err. Foreign errors collapse
// to a generic message so internal detail never leaks outward.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
