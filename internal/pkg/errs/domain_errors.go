package errs

import "errors"

// Category markers. Attach one with Mark and test for it with Is; marks
// survive wrapping but are not visible to the standard library errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// Idempotency errors
var (
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("request with this idempotency key is in progress")
	ErrIdempotencyMismatch    = errors.New("idempotency key reused with a different request")
)

// Validation wraps msg as a validation error.
func Validation(msg string) error {
	return Mark(New(msg), ErrValidation)
}

// NotFound wraps msg as a not-found error.
func NotFound(msg string) error {
	return Mark(New(msg), ErrNotFound)
}

// Forbidden wraps msg as an authorization failure.
func Forbidden(msg string) error {
	return Mark(New(msg), ErrForbidden)
}

func IsValidation(err error) bool { return Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return Is(err, ErrNotFound) }
func IsForbidden(err error) bool  { return Is(err, ErrForbidden) }
func IsConflict(err error) bool   { return Is(err, ErrConflict) }
