// Package apperr defines the error kinds handlers branch on.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input field. Nothing was
// written when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// AuthError is a sign-in failure with a user-safe message.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// ErrInvalidCredentials is returned for any wrong email/password pair.
// The message does not reveal which half was wrong.
var ErrInvalidCredentials = &AuthError{Message: "Invalid credentials"}

// WriteError wraps a failed store or blob write.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// ReadError wraps a failed store read.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsWrite reports whether err is (or wraps) a WriteError.
func IsWrite(err error) bool {
	var w *WriteError
	return errors.As(err, &w)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}
