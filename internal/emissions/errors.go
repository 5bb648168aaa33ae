package emissions

import "errors"

// Sentinel errors for emissions calculations and reference data.
var (
	// ErrInvalidScope indicates a scope outside 1-4.
	ErrInvalidScope = errors.New("scope must be between 1 and 4")

	// ErrFactorNotFound indicates no emission factor matches a lookup key.
	ErrFactorNotFound = errors.New("emission factor not found")

	// ErrInvalidFactorTable indicates malformed emission-factor reference data.
	ErrInvalidFactorTable = errors.New("invalid emission factor table")

	// ErrIncompatibleUnit indicates an activity unit that cannot be converted
	// to the unit an emission factor is expressed per.
	ErrIncompatibleUnit = errors.New("activity unit incompatible with emission factor")

	// ErrNegativeValue indicates a negative carbon quantity passed to equivalencies.
	ErrNegativeValue = errors.New("negative carbon value")

	// ErrCalculationOverflow indicates a non-finite value in an equivalency calculation.
	ErrCalculationOverflow = errors.New("calculation overflow")
)
