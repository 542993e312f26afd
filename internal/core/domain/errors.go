package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for both an unknown account and a wrong
	// password so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
)

// ValidationError reports the first input rule that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports a registration that collides with an existing
// record on a unique identity key.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case FieldIDNumber:
		return "ID number already exists."
	case FieldAccountNumber:
		return "Account number already exists."
	default:
		return fmt.Sprintf("%s already exists.", e.Field)
	}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err carries a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
