package response

import (
	"errors"
)

type Error struct {
	Code    int
	Err     error
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Err.Error() + ": " + e.Details
	}
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// Message is the human readable part of the response body.
func (e *Error) Message() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

// WithDetails copies base, attaching details. Non *Error values are returned untouched.
func WithDetails(base error, details string) error {
	var e *Error
	if !errors.As(base, &e) {
		return base
	}
	return &Error{Code: e.Code, Err: e.Err, Details: details}
}
