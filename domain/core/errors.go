package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Schema errors are fatal: the input table does not match the survey layout.
	ErrSchema        = errors.New("schema violation")
	ErrColumnMissing = fmt.Errorf("%w: column missing", ErrSchema)
	ErrEmptyTable    = fmt.Errorf("%w: table has no rows", ErrSchema)

	// Model errors are fatal for the specific fit only.
	ErrInsufficientData = errors.New("insufficient data for model fit")

	// Lookup errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: analysis run", ErrNotFound)
)

// Error constructors with context

func NewMissingColumnError(column ColumnKey) error {
	return fmt.Errorf("%w: %q", ErrColumnMissing, string(column))
}

func NewColumnLengthError(column ColumnKey, want, got int) error {
	return fmt.Errorf("%w: column %q has %d values, table has %d rows", ErrSchema, string(column), got, want)
}

func NewRankDeficientError(detail string) error {
	return fmt.Errorf("%w: design matrix is rank deficient (%s)", ErrInsufficientData, detail)
}

// Error checking helpers

func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
