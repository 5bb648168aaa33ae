package units

import (
	"math"
	"strconv"
	"strings"
)

// displayPrecision is the number of decimals shown for converted values.
const displayPrecision = 4

// ParseQuantity parses a user-supplied quantity. Surrounding whitespace is
// ignored; anything that is not a finite decimal number is rejected with
// ErrInvalidQuantity.
func ParseQuantity(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, ErrInvalidQuantity
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidQuantity
	}
	return v, nil
}

func roundTo(v float64, precision int) float64 {
	const base = 10
	m := math.Pow(base, float64(precision))
	return math.Round(v*m) / m
}

// formatValue prints the shortest decimal representation of v.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
