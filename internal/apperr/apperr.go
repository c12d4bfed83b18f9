// Package apperr provides coded business errors shared by the use cases and
// the HTTP surface.
package apperr

import "errors"

// Code is a machine-readable error classification.
type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeInvalidState          Code = "INVALID_STATE"
	CodeForbidden             Code = "FORBIDDEN"
	CodeDuplicateResource     Code = "DUPLICATE_RESOURCE"
	CodeLockAcquisitionFailed Code = "LOCK_ACQUISITION_FAILED"
	CodeInvalidInput          Code = "INVALID_INPUT_VALUE"
	CodeUnauthorized          Code = "UNAUTHORIZED"
)

// Error is a business-rule failure with a stable code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Retryable reports whether the caller may retry the same request later.
func (e *Error) Retryable() bool {
	return e.Code == CodeLockAcquisitionFailed
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func NotFound(message string) *Error     { return New(CodeNotFound, message) }
func InvalidState(message string) *Error { return New(CodeInvalidState, message) }
func Forbidden(message string) *Error    { return New(CodeForbidden, message) }
func InvalidInput(message string) *Error { return New(CodeInvalidInput, message) }

// CodeOf returns the code of the first *Error in err's chain, or "" when err
// is not a business error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
