package internal

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error represents an error that could be wrapping another error, it includes a code for determining
// what triggered the error.
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

// ErrorCode defines supported error codes.
type ErrorCode uint

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodeNotFound
	ErrorCodeInvalidArgument
	ErrorCodeUnauthenticated
	ErrorCodeConflict
)

// WrapErrorf returns a wrapped error.
func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

// NewErrorf instantiates a new error.
func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

// NewFieldErrorf instantiates a new error describing a problem with a single input field, the field
// level message is kept as validation.Errors so it can be rendered next to the field name.
func NewFieldErrorf(code ErrorCode, field string, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)

	return WrapErrorf(validation.Errors{field: errors.New(msg)}, code, "%s %s", field, msg)
}

// Error returns the message, when wrapping errors the wrapped error is returned.
func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

// Unwrap returns the wrapped error, if any.
func (e *Error) Unwrap() error {
	return e.orig
}

// Code returns the code representing this error.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Message returns the message without the wrapped error.
func (e *Error) Message() string {
	return e.msg
}
