package apperrors

import (
	"errors"
	"fmt"
)

// Kinds. Every specific error below wraps exactly one of these or stands alone.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrStateConflict = errors.New("state conflict")
)

var (
	ErrEmptyName        = fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	ErrInvalidMinutes   = fmt.Errorf("%w: minutes must be at least 1", ErrInvalidInput)
	ErrMissingSelection = fmt.Errorf("%w: no subject selected", ErrInvalidInput)
	ErrInvalidDay       = fmt.Errorf("%w: day must be formatted YYYY-MM-DD", ErrInvalidInput)
	ErrInvalidPolicy    = fmt.Errorf("%w: unknown delete policy", ErrInvalidInput)

	ErrActiveSessionExists = fmt.Errorf("%w: active session already exists", ErrStateConflict)
	ErrNoActiveSession     = fmt.Errorf("%w: no active session", ErrStateConflict)

	ErrDuplicateName       = errors.New("name already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidBackupFormat = errors.New("invalid backup format")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// Storage wraps an engine failure so callers can match ErrStorageUnavailable
// while the message keeps the underlying cause.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// Kind names the category of err for user-facing output.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "validation"
	case errors.Is(err, ErrStateConflict):
		return "state conflict"
	case errors.Is(err, ErrDuplicateName):
		return "duplicate name"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrInvalidBackupFormat):
		return "invalid backup"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage"
	default:
		return "error"
	}
}
