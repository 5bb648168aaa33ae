package emissions

import (
	"fmt"
	"math"
)

// EPA GHG Equivalencies Calculator factors (2024 edition), kg CO2e per unit
// of activity. equivalency = kg_CO2e / factor.
const (
	// EPAMilesDrivenFactor is kg CO2e per mile for an average passenger vehicle.
	EPAMilesDrivenFactor = 0.192

	// EPASmartphoneChargeFactor is kg CO2e per smartphone charge.
	EPASmartphoneChargeFactor = 0.00822

	// EPATreeSeedlingFactor is kg CO2e absorbed per tree seedling grown for 10 years.
	EPATreeSeedlingFactor = 60.0

	// EPAHomeDayFactor is kg CO2e per day of average US home electricity use.
	EPAHomeDayFactor = 18.3
)

// MinEquivalencyThresholdKg is the smallest total for which equivalencies are shown.
const MinEquivalencyThresholdKg = 1.0

// EquivalencyType is a category of carbon equivalency.
type EquivalencyType int

const (
	// EquivalencyMilesDriven is miles driven in an average passenger vehicle.
	EquivalencyMilesDriven EquivalencyType = iota
	// EquivalencySmartphonesCharged is full smartphone charges.
	EquivalencySmartphonesCharged
	// EquivalencyTreeSeedlings is tree seedlings grown for 10 years.
	EquivalencyTreeSeedlings
	// EquivalencyHomeDays is days of average US home electricity use.
	EquivalencyHomeDays
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyMilesDriven:
		return "MilesDriven"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	case EquivalencyHomeDays:
		return "HomeDays"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

type equivalencyDef struct {
	kind   EquivalencyType
	factor float64
	label  string
}

//nolint:gochecknoglobals // Fixed display order.
var equivalencyDefs = []equivalencyDef{
	{kind: EquivalencyMilesDriven, factor: EPAMilesDrivenFactor, label: "miles driven"},
	{kind: EquivalencySmartphonesCharged, factor: EPASmartphoneChargeFactor, label: "smartphones charged"},
	{kind: EquivalencyTreeSeedlings, factor: EPATreeSeedlingFactor, label: "tree seedlings grown for 10 years"},
	{kind: EquivalencyHomeDays, factor: EPAHomeDayFactor, label: "days of home electricity"},
}

// EquivalencyResult is a single calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput holds the equivalencies for one carbon total.
type EquivalencyOutput struct {
	InputKg     float64             `json:"input_kg"`
	Results     []EquivalencyResult `json:"results"`
	DisplayText string              `json:"display_text"`
	IsEmpty     bool                `json:"is_empty"`
}

// Equivalencies converts a total in kg CO2e into relatable equivalents.
// Totals below MinEquivalencyThresholdKg yield an empty output without error.
func Equivalencies(kgCO2e float64) (EquivalencyOutput, error) {
	if math.IsInf(kgCO2e, 0) || math.IsNaN(kgCO2e) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}
	if kgCO2e < 0 {
		return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
	}
	if kgCO2e < MinEquivalencyThresholdKg {
		return EquivalencyOutput{InputKg: kgCO2e, IsEmpty: true}, nil
	}

	results := make([]EquivalencyResult, 0, len(equivalencyDefs))
	for _, d := range equivalencyDefs {
		v := kgCO2e / d.factor
		results = append(results, EquivalencyResult{
			Type:           d.kind,
			Value:          v,
			FormattedValue: formatEquivalencyValue(v),
			Label:          d.label,
		})
	}

	return EquivalencyOutput{
		InputKg: kgCO2e,
		Results: results,
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones",
			results[0].FormattedValue, results[1].FormattedValue),
	}, nil
}

func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
