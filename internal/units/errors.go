package units

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for unit handling. Compare with errors.Is.
var (
	// ErrIncompatibleUnits indicates no conversion path exists between two units.
	// Convert itself reports this as ok == false; the error is for callers that
	// need to propagate the condition.
	ErrIncompatibleUnits = constError("incompatible units")

	// ErrInvalidFactor indicates a conversion factor that is not a finite positive number,
	// or a factor with an empty unit symbol.
	ErrInvalidFactor = constError("invalid conversion factor")

	// ErrInvalidQuantity indicates a quantity string that is not a finite number.
	ErrInvalidQuantity = constError("invalid quantity")
)
