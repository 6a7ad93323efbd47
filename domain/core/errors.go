package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound = errors.New("resource not found")

	// Validation errors
	ErrNoObservations  = errors.New("undefined likelihood with no observations")
	ErrInvalidValue    = errors.New("observation must be 0 or 1")
	ErrInvalidConfig   = errors.New("invalid sampler configuration")
	ErrLengthMismatch  = errors.New("length mismatch")
	ErrEmptyDataset    = errors.New("dataset has no rows")
	ErrInvalidSplit    = errors.New("invalid train/test split")
	ErrNotFitted       = errors.New("classifier has not been fitted")
	ErrFeatureMismatch = errors.New("feature count does not match fitted model")

	// Numerical errors
	ErrNonFinite = errors.New("non-finite value in sampler")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

func NewLengthMismatchError(what string, want, got int) error {
	return fmt.Errorf("%w: %s expected %d, got %d", ErrLengthMismatch, what, want, got)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoObservations) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrLengthMismatch)
}
