package errors

import (
	stderrors "errors"
	"fmt"
)

// Re-exported standard library helpers so callers only import this package.
var (
	Is     = stderrors.Is
	As     = stderrors.As
	Unwrap = stderrors.Unwrap
)

// ErrorCode represents a unique identifier for each error type
type ErrorCode string

// Error is a domain error carrying a stable code, an operator-facing
// message and optional structured context.
type Error struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func (e *Error) Error() string {
	msg := e.message
	if msg == "" {
		msg = GetErrorMessage(e.code)
	}

	if e.data != nil {
		return fmt.Sprintf("%s: %v", msg, e.data)
	}

	if e.err != nil {
		return fmt.Sprintf("%s: %v", msg, e.err)
	}

	return msg
}

func (e *Error) Code() ErrorCode {
	return e.code
}

func (e *Error) Data() any {
	return e.data
}

func (e *Error) Unwrap() error {
	return e.err
}

// New creates an error from a code, using the registered message
func New(code ErrorCode) *Error {
	return &Error{code: code}
}

// Wrap creates an error from a code with an underlying cause
func Wrap(code ErrorCode, err error) *Error {
	return &Error{code: code, err: err}
}

// WithMessage creates an error from a code with a custom message
func WithMessage(code ErrorCode, msg string) *Error {
	return &Error{code: code, message: msg}
}

// WithData creates an error from a code with structured context data
func WithData(code ErrorCode, data any) *Error {
	return &Error{code: code, data: data}
}

// CodeOf returns the code of err, or an empty code for foreign errors
func CodeOf(err error) ErrorCode {
	var e *Error
	if As(err, &e) {
		return e.code
	}

	return ""
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
