package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error taxonomy
var (
	// Specification errors: the request itself is unusable.
	ErrSpecification   = errors.New("specification error")
	ErrUnknownMethod   = fmt.Errorf("%w: unknown analysis method", ErrSpecification)
	ErrMissingPanelIDs = fmt.Errorf("%w: panel estimator needs entity and time identifiers", ErrSpecification)
	ErrNoVariables     = fmt.Errorf("%w: no variables selected", ErrSpecification)

	// Data errors: the dataset cannot support the request.
	ErrData          = errors.New("data error")
	ErrEmptyData     = fmt.Errorf("%w: no rows remain after cleaning", ErrData)
	ErrColumnMissing = fmt.Errorf("%w: column not present", ErrData)
	ErrNotNumeric    = fmt.Errorf("%w: column is not numeric", ErrData)

	// Numerical errors: estimation failed for a numeric reason.
	ErrNumerical    = errors.New("numerical error")
	ErrNoConverge   = fmt.Errorf("%w: optimizer did not converge", ErrNumerical)
	ErrSingular     = fmt.Errorf("%w: singular design", ErrNumerical)
	ErrDegenerate   = fmt.Errorf("%w: degenerate response", ErrNumerical)
	ErrInsufficient = fmt.Errorf("%w: insufficient observations", ErrNumerical)

	// IO errors: a data file could not be turned into a table.
	ErrIO                   = errors.New("io error")
	ErrUnsupportedExtension = fmt.Errorf("%w: unsupported file extension", ErrIO)
	ErrMalformedFile        = fmt.Errorf("%w: malformed data file", ErrIO)
)

// Error constructors with context
func SpecificationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSpecification, fmt.Sprintf(format, args...))
}

func DataError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrData, fmt.Sprintf(format, args...))
}

func NumericalError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNumerical, fmt.Sprintf(format, args...))
}

func IOError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIO, fmt.Sprintf(format, args...))
}

// NewColumnMissingError names the absent column so the caller can act on it.
func NewColumnMissingError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnMissing, column)
}

// NewNotNumericError names the offending column.
func NewNotNumericError(column string) error {
	return fmt.Errorf("%w: %q", ErrNotNumeric, column)
}

// NewConvergenceError records how far the optimizer got before giving up.
func NewConvergenceError(method string, iterations int) error {
	return fmt.Errorf("%w: %s stopped after %d iterations", ErrNoConverge, method, iterations)
}

// Error checking helpers
func IsSpecificationError(err error) bool {
	return errors.Is(err, ErrSpecification)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrData)
}

func IsNumericalError(err error) bool {
	return errors.Is(err, ErrNumerical)
}

func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}
