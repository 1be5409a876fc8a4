// Package apperrors defines the typed outcomes the service returns to
// callers: validation failures, lost races, authorization failures and
// missing rows. Anything that does not carry one of these kinds is a
// store/infrastructure error and maps to a 500.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on outcome.
type Kind int

const (
	// KindStore is the zero kind: an infrastructure failure from the
	// persistence layer, surfaced as-is and never retried.
	KindStore Kind = iota
	KindValidation
	KindConflict
	KindNotAuthorized
	KindNotFound
)

// Error carries a kind together with a caller-facing message.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind returns the classification of e.
func (e *Error) Kind() Kind { return e.kind }

// New builds a typed error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func NotAuthorized(format string, args ...any) *Error {
	return New(KindNotAuthorized, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// KindOf extracts the kind from err, unwrapping as needed. Errors that
// were never classified count as store errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindStore
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
