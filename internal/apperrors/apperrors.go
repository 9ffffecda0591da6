package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping.
type Code int

const (
	CodeInternal Code = iota + 1
	CodeValidation
	CodeNotFound
	CodeForbidden
	CodeUnauthenticated
	CodeInvalidCredentials
	CodeConflict
	CodeSelfFollow
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the classification from an error chain.
// Unclassified errors map to CodeInternal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
