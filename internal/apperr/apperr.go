// Package apperr carries a closed set of error kinds on error values so
// HTTP handlers can pick status codes by category instead of matching
// message text.
package apperr

import "errors"

// Kind is the category of a domain-level failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindConflict
	KindNotFound
)

// Error is an error with a kind attached.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the error's category.
func (e *Error) Kind() Kind {
	return e.kind
}

// New creates a tagged error with the given kind and message.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Wrap tags an underlying error with a kind and a user-facing message.
// The wrapped error stays reachable through errors.Is/As.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{kind: kind, msg: msg, err: err}
}

// KindOf extracts the kind from an error chain. Untagged errors are
// treated as internal failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// Convenience constructors for the common kinds.

func Validation(msg string) error   { return New(KindValidation, msg) }
func Unauthorized(msg string) error { return New(KindUnauthorized, msg) }
func Conflict(msg string) error     { return New(KindConflict, msg) }
func NotFound(msg string) error     { return New(KindNotFound, msg) }

func Internal(msg string, err error) error { return Wrap(KindInternal, msg, err) }
