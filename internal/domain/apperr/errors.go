package apperr

import (
	"errors"
	"fmt"
)

// Code is the stable error taxonomy exposed to callers.
type Code string

const (
	CodeValidation        Code = "validation_error"
	CodeStateConflict     Code = "state_conflict"
	CodeNotFound          Code = "not_found"
	CodeLimitExceeded     Code = "limit_exceeded"
	CodeDependencyFailure Code = "dependency_failure"
	CodeForbidden         Code = "forbidden"
	CodeInternal          Code = "internal"
)

type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code and message, so package-level
// sentinels work with errors.Is even after being wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Msg == e.Msg
}

func New(code Code, msg string) *Error { return &Error{Code: code, Msg: msg} }

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, msg string, err error) *Error { return &Error{Code: code, Msg: msg, Err: err} }

func Validation(msg string) *Error    { return New(CodeValidation, msg) }
func Conflict(msg string) *Error      { return New(CodeStateConflict, msg) }
func NotFound(msg string) *Error      { return New(CodeNotFound, msg) }
func LimitExceeded(msg string) *Error { return New(CodeLimitExceeded, msg) }
func Forbidden(msg string) *Error     { return New(CodeForbidden, msg) }

// CodeOf returns the taxonomy code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
