// Package errors provides the shared sentinel errors every module wraps.
//
// Use cases and repositories return errors that wrap one of these sentinels so the
// HTTP layer can map them to status codes without knowing module internals. Errors
// that do not wrap a sentinel are treated as internal failures and never leak their
// message to the client.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the write collides with existing data, such as a
	// duplicate email or a sensitive identifier already registered to another user.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInternal marks failures that must abort the current operation but whose
	// details must stay in the logs (encryption and key configuration failures).
	ErrInternal = errors.New("internal error")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
