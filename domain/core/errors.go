package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition violations - the only failures the engine signals
	ErrNilDataset     = errors.New("nil dataset reference")
	ErrColumnNotFound = errors.New("column not found")
	ErrInvalidPeriods = errors.New("forecast periods must be positive")
	ErrUnknownMethod  = errors.New("unknown forecast method")

	// Ingestion errors
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file contains no rows")
)

// NewColumnNotFoundError wraps ErrColumnNotFound with the column name
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

// NewValidationError reports an invalid explicit parameter
func NewValidationError(param string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", param, reason)
}

// IsPrecondition reports whether err is a caller precondition violation
// rather than a degraded-data condition.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNilDataset) ||
		errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrInvalidPeriods) ||
		errors.Is(err, ErrUnknownMethod)
}
