// Package xerrors provides the small structured error taxonomy used across
// the research core: a Kind, a message, and an optional offending field
// name, wrapped with fmt.Errorf so errors.Is/errors.As keep working.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a domain error, per the error-handling
// policy: parameters outside their declared domain, missing required
// candle fields, broker funds/position shortfalls, and failures bubbling
// up from an external collaborator.
type Kind string

const (
	InvalidArgument      Kind = "invalid_argument"
	MissingField         Kind = "missing_field"
	InsufficientFunds    Kind = "insufficient_funds"
	InsufficientPosition Kind = "insufficient_position"
	InternalFailure      Kind = "internal_failure"
)

// Error is the structured, user-visible error value: a Kind, a
// human-readable Message, and the optional Field it concerns.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a bare *Error of the given Kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithField attaches the offending parameter/field name.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Wrap builds an *Error of the given Kind that wraps cause, preserving it
// for errors.Is/errors.As via %w.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: fmt.Errorf("%s: %w", message, cause)}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
