package units

// Factor is a directed edge in the conversion table:
// value_in_To = value_in_From * Factor.
type Factor struct {
	From   string  `json:"from"   yaml:"from"`
	To     string  `json:"to"     yaml:"to"`
	Factor float64 `json:"factor" yaml:"factor"`
}

// intermediates are the only units tried for one-hop conversions, in order.
//
//nolint:gochecknoglobals // Fixed lookup order.
var intermediates = []string{"kg", "litres", "kWh", "km", "m"}

// defaultFactors is the built-in table of units used in GHG activity data.
// Some pairs are registered both ways; the rest rely on reverse lookup.
//
//nolint:gochecknoglobals // Read-only reference data.
var defaultFactors = []Factor{
	// Mass
	{From: "tonnes", To: "kg", Factor: 1000},
	{From: "kg", To: "tonnes", Factor: 0.001},
	{From: "g", To: "kg", Factor: 0.001},
	{From: "lb", To: "kg", Factor: 0.453592},
	{From: "kg", To: "lb", Factor: 2.20462},
	{From: "short tons", To: "kg", Factor: 907.185},
	{From: "long tons", To: "kg", Factor: 1016.05},

	// Volume
	{From: "litres", To: "gallons", Factor: 0.264172},
	{From: "gallons", To: "litres", Factor: 3.78541},
	{From: "litres", To: "m³", Factor: 0.001},
	{From: "m³", To: "litres", Factor: 1000},
	{From: "kl", To: "litres", Factor: 1000},
	{From: "ml", To: "litres", Factor: 0.001},
	{From: "barrels", To: "litres", Factor: 158.987},
	{From: "cubic feet", To: "m³", Factor: 0.0283168},

	// Energy
	{From: "MWh", To: "kWh", Factor: 1000},
	{From: "kWh", To: "MWh", Factor: 0.001},
	{From: "GWh", To: "MWh", Factor: 1000},
	{From: "GJ", To: "kWh", Factor: 277.778},
	{From: "kWh", To: "GJ", Factor: 0.0036},
	{From: "MJ", To: "kWh", Factor: 0.277778},
	{From: "therms", To: "kWh", Factor: 29.3071},
	{From: "MMBtu", To: "kWh", Factor: 293.071},
	{From: "BTU", To: "kWh", Factor: 0.000293071},

	// Distance
	{From: "miles", To: "km", Factor: 1.60934},
	{From: "km", To: "miles", Factor: 0.621371},
	{From: "m", To: "km", Factor: 0.001},
	{From: "km", To: "m", Factor: 1000},
	{From: "nautical miles", To: "km", Factor: 1.852},

	// Composite
	{From: "tonne-km", To: "kg-km", Factor: 1000},
	{From: "tonne-miles", To: "tonne-km", Factor: 1.60934},
	{From: "passenger-miles", To: "passenger-km", Factor: 1.60934},
	{From: "kg/litre", To: "kg/gallon", Factor: 3.78541},
}

// DefaultFactors returns a copy of the built-in conversion table.
func DefaultFactors() []Factor {
	out := make([]Factor, len(defaultFactors))
	copy(out, defaultFactors)
	return out
}
