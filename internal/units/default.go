package units

import "sync"

//nolint:gochecknoglobals // Lazily built shared converter over read-only data.
var (
	defaultOnce      sync.Once
	defaultConverter *Converter
)

// Default returns the shared converter over the built-in factor table.
func Default() *Converter {
	defaultOnce.Do(func() {
		c, err := NewConverter(defaultFactors)
		if err != nil {
			panic("units: invalid built-in factor table: " + err.Error())
		}
		defaultConverter = c
	})
	return defaultConverter
}

// Convert converts value using the built-in table. See Converter.Convert.
func Convert(value float64, from, to string) (float64, bool) {
	return Default().Convert(value, from, to)
}

// CanConvert reports whether the built-in table converts from -> to.
func CanConvert(from, to string) bool {
	return Default().CanConvert(from, to)
}

// AvailableConversions lists units one edge away from unit in the built-in table.
func AvailableConversions(unit string) []string {
	return Default().AvailableConversions(unit)
}

// FormatConversion formats a conversion using the built-in table.
func FormatConversion(value float64, from, to string) string {
	return Default().FormatConversion(value, from, to)
}
