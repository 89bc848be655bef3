// Package apperr defines the error kinds the service layers agree on.
// Callers should use errors.Is against the sentinel values.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// Business-rule outcomes, surfaced verbatim to the caller.
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrIneligibleState   = errors.New("operation not allowed in current card state")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")

	// Identity errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")

	// Internal failures. Logged with full detail, surfaced as a generic
	// failure so ciphertext and key material never leak.
	ErrEncoding = errors.New("encoding failed")
	ErrStorage  = errors.New("storage failure")

	// ErrContention means a lock wait timed out; safe to retry.
	ErrContention = errors.New("contention, retry later")
)

// Validationf wraps ErrValidation with a caller-facing reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrValidation, args)...)
}

// Conflictf wraps ErrConflict with a caller-facing reason.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrConflict, args)...)
}

// IneligibleStatef wraps ErrIneligibleState with a caller-facing reason.
func IneligibleStatef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrIneligibleState, args)...)
}

// NotFoundf wraps ErrNotFound with a caller-facing reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrNotFound, args)...)
}

// Encodingf wraps ErrEncoding. The reason is for logs only.
func Encodingf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrEncoding, args)...)
}

// Storagef wraps ErrStorage. The reason is for logs only.
func Storagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrStorage, args)...)
}

func prepend(err error, args []any) []any {
	return append([]any{err}, args...)
}
