package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrSegmentNotFound = fmt.Errorf("%w: segment", ErrNotFound)

	// Sample validation errors
	ErrInsufficientSample = errors.New("insufficient sample size")
	ErrDegenerateColumn   = errors.New("degenerate column")
	ErrNonFiniteValue     = errors.New("non-finite value")

	// Grouping errors
	ErrEmptyGroup         = errors.New("empty group")
	ErrNoVarianceColumns  = errors.New("no numeric columns to test")
	ErrInsufficientGroups = errors.New("insufficient groups")

	// Association errors
	ErrTypeMismatch          = errors.New("type mismatch: intended for categorical variables only")
	ErrDegenerateAssociation = errors.New("degenerate association")

	// Input errors
	ErrInvalidAlternative = errors.New("invalid alternative hypothesis")
	ErrInvalidTable       = errors.New("invalid table")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
}

func NewInsufficientSampleError(column string, got, need int) error {
	return fmt.Errorf("%w: column %s has %d observations, need at least %d", ErrInsufficientSample, column, got, need)
}

func NewDegenerateColumnError(column, reason string) error {
	return fmt.Errorf("%w: column %s: %s", ErrDegenerateColumn, column, reason)
}

func NewNonFiniteValueError(column string, row int) error {
	return fmt.Errorf("%w: column %s row %d", ErrNonFiniteValue, column, row)
}

func NewEmptyGroupError(groupColumn, group string) error {
	return fmt.Errorf("%w: %s=%q has no rows", ErrEmptyGroup, groupColumn, group)
}

func NewInsufficientGroupsError(groupColumn string, got int) error {
	return fmt.Errorf("%w: column %s has %d distinct value(s), need at least 2", ErrInsufficientGroups, groupColumn, got)
}

func NewTypeMismatchError(column, kind string) error {
	return fmt.Errorf("%w: column %s is %s", ErrTypeMismatch, column, kind)
}

func NewDegenerateAssociationError(target, feature string) error {
	return fmt.Errorf("%w: %s x %s has a single category on one axis", ErrDegenerateAssociation, target, feature)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsToolkitError reports whether err is one of the statistical validation failures.
func IsToolkitError(err error) bool {
	return errors.Is(err, ErrInsufficientSample) ||
		errors.Is(err, ErrDegenerateColumn) ||
		errors.Is(err, ErrNonFiniteValue) ||
		errors.Is(err, ErrEmptyGroup) ||
		errors.Is(err, ErrNoVarianceColumns) ||
		errors.Is(err, ErrInsufficientGroups) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrDegenerateAssociation)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidAlternative) ||
		errors.Is(err, ErrInvalidTable)
}
