package lending

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock       = errors.New("out of stock")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrAlreadyReturned  = errors.New("already returned")
	ErrUnauthorized     = errors.New("not allowed")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")

	// ErrConflict is returned by a Store when a transaction lost a race
	// (lock timeout, serialization failure, conditional update hitting no row).
	// The Manager retries it; callers only ever see ErrTransient.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrTransient is returned once conflict retries are exhausted.
	ErrTransient = errors.New("temporarily unavailable, try again")
)

// FieldError attributes a failure to one input field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldError(err error, field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsValidation reports whether err is a client-side validation failure
// (out of stock, bad dates, already returned, malformed input).
func IsValidation(err error) bool {
	return errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrAlreadyReturned) ||
		errors.Is(err, ErrInvalidInput)
}

// AsFieldError extracts the field attribution from err, if any.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
