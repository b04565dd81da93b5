// Package apperr models failures as values carried across component
// boundaries. Handlers map kinds onto HTTP statuses at the edge; nothing
// below the handler layer panics or inspects status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindNotFound means the named entity does not exist.
	KindNotFound Kind = iota + 1
	// KindUnauthorized means credentials were absent or wrong. Not-found
	// usernames are folded into this kind on the login path so the two
	// cases are indistinguishable to a caller.
	KindUnauthorized
	// KindValidation means the request itself was malformed.
	KindValidation
	// KindStore means the underlying store failed; possibly transient.
	KindStore
)

// Error is a classified failure with an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a KindNotFound error naming the entity and key.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a KindUnauthorized error. Callers must not leak
// which part of the credential check failed.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Store wraps an underlying persistence failure.
func Store(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStore, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or 0 for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Retryable reports whether err may succeed on retry. Only store failures
// are transient; NotFound/Unauthorized/Validation never are.
func Retryable(err error) bool {
	return KindOf(err) == KindStore
}
