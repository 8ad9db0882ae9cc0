// Package domainerrors provides coded errors for domain and transport layers.
//
// Services construct these with New or Wrap; transport layers translate the
// code into an HTTP status. Callers branch on codes with HasCode rather than
// string-matching messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. Codes are part of the API contract and
// are returned verbatim in error responses.
type Code string

const (
	// CodeValidation marks missing or invalid input. The target record is
	// left untouched when this is returned.
	CodeValidation Code = "validation_error"
	// CodeStageViolation marks an illegal lifecycle transition attempt.
	CodeStageViolation Code = "stage_violation"
	// CodeConcurrentModification marks a lost race on the same record.
	CodeConcurrentModification Code = "concurrent_modification"
	// CodeCapacityExceeded marks a venue assignment that would overshoot
	// the venue's capacity.
	CodeCapacityExceeded Code = "capacity_exceeded"
	// CodeNotFound marks an unknown record, venue, or token.
	CodeNotFound Code = "not_found"

	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal_error"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	code    Code
	message string
	cause   error
}

// New constructs a coded error.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the error's code.
func (e *Error) Code() Code { return e.code }

// Message returns the human-readable description without the code prefix.
func (e *Error) Message() string { return e.message }

// CodeOf extracts the code from an error chain. Unknown errors report
// CodeInternal so transport layers never leak raw causes as 200s.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeInternal
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code == code
	}
	return false
}
