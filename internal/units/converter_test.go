package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		from   string
		to     string
		want   float64
		wantOK bool
	}{
		{name: "litres to gallons", value: 100, from: "litres", to: "gallons", want: 26.4172, wantOK: true},
		{name: "direct tonnes to kg", value: 2.5, from: "tonnes", to: "kg", want: 2500, wantOK: true},
		{name: "reverse kg to g", value: 10, from: "kg", to: "g", want: 10000, wantOK: true},
		{name: "reverse kWh to therms", value: 29.3071, from: "kWh", to: "therms", want: 1, wantOK: true},
		{name: "transitive gallons to m³ via litres", value: 1000, from: "gallons", to: "m³", want: 3.78541, wantOK: true},
		{name: "transitive g to lb via kg", value: 1000, from: "g", to: "lb", want: 2.20462, wantOK: true},
		{name: "case and whitespace insensitive", value: 3, from: "  MWH ", to: "kwh", want: 3000, wantOK: true},
		{name: "negative values pass through", value: -4, from: "km", to: "m", want: -4000, wantOK: true},
		{name: "unknown units", value: 5, from: "furlongs", to: "parsecs", wantOK: false},
		{name: "incompatible dimensions", value: 5, from: "kg", to: "kWh", wantOK: false},
		{name: "empty unit", value: 5, from: "", to: "kg", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(tt.value, tt.from, tt.to)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Zero(t, got)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-3)
		})
	}
}

func TestConvert_Identity(t *testing.T) {
	values := []float64{0, -0.5, -12, 1, 42.125, 1e12}
	unitsToCheck := []string{"kg", "litres", "kWh", "km", "m", "m³", "furlongs", "tonne-km"}

	for _, u := range unitsToCheck {
		for _, v := range values {
			got, ok := Convert(v, u, u)
			require.True(t, ok, "identity must resolve for %q", u)
			assert.Equal(t, v, got)
		}
	}

	got, ok := Convert(7, "KWh", " kwh ")
	require.True(t, ok)
	assert.Equal(t, 7.0, got)
}

func TestConvert_RoundTrip(t *testing.T) {
	values := []float64{0, 1, -3.5, 123.456, 1e6}

	for _, f := range DefaultFactors() {
		t.Run(f.From+"->"+f.To, func(t *testing.T) {
			for _, x := range values {
				there, ok := Convert(x, f.From, f.To)
				require.True(t, ok)
				back, ok := Convert(there, f.To, f.From)
				require.True(t, ok)
				assert.InDelta(t, x, back, math.Abs(x)*1e-5+1e-9)
			}
		})
	}
}

func TestConvert_TransitiveUsesListedIntermediate(t *testing.T) {
	for _, x := range []float64{1, 55.5, 1000} {
		viaLitres, ok := Convert(x, "gallons", "litres")
		require.True(t, ok)
		litresToM3, ok := Convert(1, "litres", "m³")
		require.True(t, ok)

		got, ok := Convert(x, "gallons", "m³")
		require.True(t, ok)
		assert.InDelta(t, viaLitres*litresToM3, got, 1e-9)
	}

	p, ok := Default().Resolve("gallons", "m³")
	require.True(t, ok)
	assert.Equal(t, PathTransitive, p.Kind)
	assert.Equal(t, "litres", p.Via)
}

// MWh is not one of the intermediates, so GWh -> MWh -> kWh is never found.
func TestConvert_UnlistedIntermediateGap(t *testing.T) {
	_, ok := Convert(1, "GWh", "MWh")
	require.True(t, ok)
	_, ok = Convert(1, "MWh", "kWh")
	require.True(t, ok)

	_, ok = Convert(1, "GWh", "kWh")
	assert.False(t, ok)
	assert.False(t, CanConvert("GWh", "kWh"))
}

func TestResolve_FirstMatchWins(t *testing.T) {
	c, err := NewConverter([]Factor{
		{From: "a", To: "litres", Factor: 5},
		{From: "litres", To: "b", Factor: 7},
		{From: "a", To: "kg", Factor: 2},
		{From: "kg", To: "b", Factor: 3},
	})
	require.NoError(t, err)

	p, ok := c.Resolve("a", "b")
	require.True(t, ok)
	assert.Equal(t, "kg", p.Via, "kg is listed before litres")
	got, ok := c.Convert(10, "a", "b")
	require.True(t, ok)
	assert.InDelta(t, 60.0, got, 1e-9)

	c, err = NewConverter([]Factor{
		{From: "a", To: "b", Factor: 100},
		{From: "a", To: "kg", Factor: 2},
		{From: "kg", To: "b", Factor: 3},
		{From: "b", To: "a", Factor: 4},
	})
	require.NoError(t, err)

	p, ok = c.Resolve("a", "b")
	require.True(t, ok)
	assert.Equal(t, PathDirect, p.Kind)
	assert.Equal(t, 100.0, p.Factor)

	p, ok = c.Resolve("b", "a")
	require.True(t, ok)
	assert.Equal(t, PathDirect, p.Kind, "a registered edge beats inverting the other direction")
}

func TestResolve_Reverse(t *testing.T) {
	p, ok := Default().Resolve("km", "nautical miles")
	require.True(t, ok)
	assert.Equal(t, PathReverse, p.Kind)
	assert.InDelta(t, 1.0, p.Apply(1.852), 1e-12)
}

func TestNewConverter(t *testing.T) {
	tests := []struct {
		name    string
		factors []Factor
		wantErr bool
	}{
		{name: "empty table", factors: nil},
		{name: "valid", factors: []Factor{{From: "a", To: "b", Factor: 2}}},
		{name: "zero factor", factors: []Factor{{From: "a", To: "b", Factor: 0}}, wantErr: true},
		{name: "negative factor", factors: []Factor{{From: "a", To: "b", Factor: -1}}, wantErr: true},
		{name: "NaN factor", factors: []Factor{{From: "a", To: "b", Factor: math.NaN()}}, wantErr: true},
		{name: "Inf factor", factors: []Factor{{From: "a", To: "b", Factor: math.Inf(1)}}, wantErr: true},
		{name: "blank unit", factors: []Factor{{From: " ", To: "b", Factor: 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConverter(tt.factors)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFactor)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Len(t, c.Factors(), len(tt.factors))
		})
	}
}

func TestNewConverter_DuplicatePairKeepsFirst(t *testing.T) {
	c, err := NewConverter([]Factor{
		{From: "a", To: "b", Factor: 2},
		{From: "A", To: "B", Factor: 9},
	})
	require.NoError(t, err)

	got, ok := c.Convert(1, "a", "b")
	require.True(t, ok)
	assert.Equal(t, 2.0, got)
}

func TestAvailableConversions(t *testing.T) {
	assert.Equal(t,
		[]string{"litres", "gallons", "m³", "kl", "ml", "barrels"},
		AvailableConversions("litres"))

	assert.Equal(t, []string{"GWh", "MWh"}, AvailableConversions("GWh"))
	assert.Equal(t, []string{"furlongs"}, AvailableConversions("furlongs"))

	// Transitive targets are not listed even though they convert.
	got := AvailableConversions("gallons")
	assert.NotContains(t, got, "m³")
	assert.True(t, CanConvert("gallons", "m³"))
}

func TestFormatConversion(t *testing.T) {
	assert.Equal(t, "100 litres = 26.4172 gallons", FormatConversion(100, "litres", "gallons"))
	assert.Equal(t, "2 tonnes = 2000 kg", FormatConversion(2, "tonnes", "kg"))
	assert.Equal(t, "Cannot convert furlongs to parsecs", FormatConversion(5, "furlongs", "parsecs"))
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "12.5", want: 12.5},
		{in: "  -3 ", want: -3},
		{in: "1e3", want: 1000},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "12kg", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "1e400", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathKind_String(t *testing.T) {
	assert.Equal(t, "identity", PathIdentity.String())
	assert.Equal(t, "direct", PathDirect.String())
	assert.Equal(t, "reverse", PathReverse.String())
	assert.Equal(t, "transitive", PathTransitive.String())
	assert.Equal(t, "PathKind(9)", PathKind(9).String())

	text, err := PathTransitive.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "transitive", string(text))
}

func TestUnits(t *testing.T) {
	c, err := NewConverter([]Factor{
		{From: "tonnes", To: "kg", Factor: 1000},
		{From: "KG", To: "g", Factor: 1000},
		{From: "g", To: "mg", Factor: 1000},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tonnes", "kg", "g", "mg"}, c.Units())

	assert.Contains(t, Default().Units(), "kWh")
}
