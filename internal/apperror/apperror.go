// Package apperror defines the error taxonomy shared by the service layer.
// Handlers translate these to HTTP status codes in exactly one place.
package apperror

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream failure")
)

// AppError pairs one of the sentinel kinds above with a message safe to
// return to clients.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// Validation reports missing or malformed input.
func Validation(message string) *AppError {
	return &AppError{Kind: ErrValidation, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *AppError {
	return &AppError{Kind: ErrConflict, Message: message}
}

// Unauthorized reports failed authentication. Callers use the same
// message for every failure mode so nothing is leaked about which
// check failed.
func Unauthorized(message string) *AppError {
	return &AppError{Kind: ErrUnauthorized, Message: message}
}

// NotFound reports an absent resource.
func NotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: message}
}

// Upstream reports a failed call to an external collaborator (database,
// object store, synthesis provider). The message must not include
// provider internals.
func Upstream(message string) *AppError {
	return &AppError{Kind: ErrUpstream, Message: message}
}
