package stock

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a reconciliation failure for transport mapping.
type Kind int

const (
	// KindValidation bad input shape or values
	KindValidation Kind = iota
	// KindNotFound a referenced entity does not exist
	KindNotFound
	// KindConflict uniqueness or referential-integrity violation,
	// including insufficient stock
	KindConflict
	// KindInternal persistence failure not attributable to the caller
	KindInternal
)

// Error is a typed business failure. Every mutation either commits fully
// or surfaces exactly one of these after a full rollback.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrValidation builds a validation error
func ErrValidation(code, format string, args ...interface{}) *Error {
	return newError(KindValidation, code, format, args...)
}

// ErrNotFound builds a not-found error
func ErrNotFound(code, format string, args ...interface{}) *Error {
	return newError(KindNotFound, code, format, args...)
}

// ErrConflict builds a conflict error
func ErrConflict(code, format string, args ...interface{}) *Error {
	return newError(KindConflict, code, format, args...)
}

// ErrInternal wraps an unexpected persistence failure. The cause is kept
// for logging but never rendered to API callers.
func ErrInternal(op string, err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    "DATABASE_ERROR",
		Message: fmt.Sprintf("%s failed", op),
		Err:     errors.WithStack(err),
	}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// untyped errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// CodeOf extracts the machine code from err
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return "DATABASE_ERROR"
}

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a conflict failure
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
