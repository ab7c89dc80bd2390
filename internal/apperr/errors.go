// Package apperr defines the typed failures surfaced by the energy engine.
// Callers dispatch on Kind, never on message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure category.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindTransientIO   Kind = "transient_io"
	KindConfiguration Kind = "configuration"
)

// Error is a categorized failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = e.Op + ": " + prefix
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", prefix, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return prefix
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a malformed input such as an out-of-range schedule hour.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent entity or one not owned by the caller.
func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s %v not found", entity, id)}
}

// Transient wraps a retryable I/O failure at an adapter boundary.
func Transient(op string, err error) *Error {
	return &Error{Kind: KindTransientIO, Op: op, Err: err}
}

// Configuration reports invalid parameters rejected before any I/O.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsTransient(err error) bool     { return KindOf(err) == KindTransientIO }
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }

// HTTPStatus maps err to a response code; untyped errors are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConfiguration:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTransientIO:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
