// Package common defines sentinel errors and small helpers shared by the
// storage, service and CLI layers of userbook. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Service-level errors reported back to the operator.
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("user not found")
	ErrInvalidSelection = errors.New("invalid selection")

	// Storage errors. ErrStorage wraps every failed save; the two below are
	// returned by repositories on load.
	ErrStorage         = errors.New("storage error")
	ErrStorageNotExist = errors.New("storage location does not exist")
	ErrCorruptStorage  = errors.New("storage content is corrupt")

	// ErrUnsupportedStorage is returned when a storage location has an
	// unknown scheme.
	ErrUnsupportedStorage = errors.New("unsupported storage location")
)

// ValidationError carries the operator-facing reason a value was rejected.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError returns a *ValidationError for field with the given reason.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
