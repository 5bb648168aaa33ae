// Package emissions calculates greenhouse-gas emissions from activity data.
//
// An activity quantity multiplied by an emission factor gives total kg CO2e,
// which is split into CO2, CH4 and N2O by fixed per-scope reporting fractions
// and converted to tonnes CO2e for the total.
package emissions

import (
	"fmt"
	"strconv"
	"strings"
)

// KgPerTonne converts kilograms to tonnes.
const KgPerTonne = 1000.0

// Scope is a GHG Protocol reporting scope.
type Scope int

const (
	// Scope1 covers direct emissions from owned or controlled sources.
	Scope1 Scope = 1
	// Scope2 covers indirect emissions from purchased energy.
	Scope2 Scope = 2
	// Scope3 covers other indirect value-chain emissions.
	Scope3 Scope = 3
	// Scope4 covers avoided emissions.
	Scope4 Scope = 4
)

// ParseScope accepts 1-4, optionally prefixed with "scope" (e.g. "scope2").
func ParseScope(s string) (Scope, error) {
	digits := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "scope")
	n, err := strconv.Atoi(strings.TrimSpace(digits))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
	sc := Scope(n)
	if !sc.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
	return sc, nil
}

// Valid reports whether s is one of the four reporting scopes.
func (s Scope) Valid() bool {
	return s >= Scope1 && s <= Scope4
}

// String returns "Scope N".
func (s Scope) String() string {
	return fmt.Sprintf("Scope %d", int(s))
}

// GasSplit holds the fraction of total CO2e attributed to each gas.
// The fractions are reporting conventions, not a physical composition model.
type GasSplit struct {
	CO2 float64 `json:"co2" yaml:"co2"`
	CH4 float64 `json:"ch4" yaml:"ch4"`
	N2O float64 `json:"n2o" yaml:"n2o"`
}

// Default gas splits per scope. Each scope encodes its own convention and the
// values are kept distinct on purpose.
//
//nolint:gochecknoglobals // Read-only reference data.
var (
	Scope1Split = GasSplit{CO2: 0.95, CH4: 0.03, N2O: 0.02}
	Scope2Split = GasSplit{CO2: 0.98, CH4: 0.015, N2O: 0.005}
	// Scope3Split is an approximation.
	Scope3Split = GasSplit{CO2: 0.99, CH4: 0.005, N2O: 0.005}
	Scope4Split = GasSplit{CO2: 0.99, CH4: 0.005, N2O: 0.005}
)

// DefaultSplit returns the gas split used when a caller supplies none.
// Unknown scopes fall back to the Scope 1 split.
func (s Scope) DefaultSplit() GasSplit {
	switch s {
	case Scope2:
		return Scope2Split
	case Scope3:
		return Scope3Split
	case Scope4:
		return Scope4Split
	default:
		return Scope1Split
	}
}

// Calculate applies the scope's default gas split.
func (s Scope) Calculate(activityValue, emissionFactor float64) Breakdown {
	return Calculate(activityValue, emissionFactor, s.DefaultSplit())
}

// Breakdown is the result of an emissions calculation.
type Breakdown struct {
	// CO2, CH4 and N2O are in kilograms.
	CO2 float64 `json:"co2_kg"`
	CH4 float64 `json:"ch4_kg"`
	N2O float64 `json:"n2o_kg"`
	// Total is in tonnes CO2e.
	Total float64 `json:"total_tco2e"`
}

// TotalKg returns the total in kilograms CO2e.
func (b Breakdown) TotalKg() float64 {
	return b.Total * KgPerTonne
}

// Calculate computes gas quantities and the total for an activity value and an
// emission factor in kg CO2e per activity unit. Inputs are not validated.
func Calculate(activityValue, emissionFactor float64, split GasSplit) Breakdown {
	totalKg := activityValue * emissionFactor
	return Breakdown{
		CO2:   totalKg * split.CO2,
		CH4:   totalKg * split.CH4,
		N2O:   totalKg * split.N2O,
		Total: totalKg / KgPerTonne,
	}
}
