package domain

import "errors"

// Domain errors represent error conditions in the CoCa domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidInput is returned when a numeric input is missing,
	// non-positive, or non-finite, or a required string field is empty.
	ErrInvalidInput = errors.New("coca: invalid input")

	// ErrInfeasibleDilution is returned when the desired concentration
	// exceeds the stock concentration. Dilution can only decrease
	// concentration.
	ErrInfeasibleDilution = errors.New("coca: desired concentration exceeds stock")

	// ErrDuplicateName is returned when adding a compound whose name is
	// already registered (names compare case-insensitively).
	ErrDuplicateName = errors.New("coca: compound name already registered")

	// ErrNotFound is returned when a lookup or removal names a compound
	// that is not in the registry.
	ErrNotFound = errors.New("coca: compound not found")
)
