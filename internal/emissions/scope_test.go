package emissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSplits(t *testing.T) {
	tests := []struct {
		scope Scope
		want  GasSplit
	}{
		{scope: Scope1, want: GasSplit{CO2: 0.95, CH4: 0.03, N2O: 0.02}},
		{scope: Scope2, want: GasSplit{CO2: 0.98, CH4: 0.015, N2O: 0.005}},
		{scope: Scope3, want: GasSplit{CO2: 0.99, CH4: 0.005, N2O: 0.005}},
		{scope: Scope4, want: GasSplit{CO2: 0.99, CH4: 0.005, N2O: 0.005}},
	}

	for _, tt := range tests {
		t.Run(tt.scope.String(), func(t *testing.T) {
			got := tt.scope.DefaultSplit()
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, 1.0, got.CO2+got.CH4+got.N2O, 1e-12)
		})
	}
}

func TestCalculate_DieselExample(t *testing.T) {
	b := Scope1.Calculate(26.4172, 2.68)

	assert.InDelta(t, 67.24, b.CO2, 0.05)
	assert.InDelta(t, 2.12, b.CH4, 0.01)
	assert.InDelta(t, 1.42, b.N2O, 0.01)
	assert.InDelta(t, 0.0708, b.Total, 1e-4)
}

func TestCalculate_Additivity(t *testing.T) {
	activities := []float64{0, 1, 26.4172, 1500, 2.5e6}
	factors := []float64{0, 0.207, 2.68, 446.2}

	for _, scope := range []Scope{Scope1, Scope2, Scope3, Scope4} {
		for _, a := range activities {
			for _, f := range factors {
				b := scope.Calculate(a, f)
				totalKg := a * f
				assert.InDelta(t, totalKg, b.CO2+b.CH4+b.N2O, totalKg*1e-12+1e-12,
					"%s activity=%v factor=%v", scope, a, f)
				assert.InDelta(t, totalKg, b.TotalKg(), totalKg*1e-12+1e-12)
			}
		}
	}
}

func TestCalculate_CustomSplitAndNoValidation(t *testing.T) {
	b := Calculate(10, 2, GasSplit{CO2: 0.5, CH4: 0.25, N2O: 0.25})
	assert.Equal(t, Breakdown{CO2: 10, CH4: 5, N2O: 5, Total: 0.02}, b)

	neg := Scope1.Calculate(-10, 2)
	assert.Less(t, neg.Total, 0.0, "negative inputs are the caller's concern")
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{in: "1", want: Scope1},
		{in: " 2 ", want: Scope2},
		{in: "scope3", want: Scope3},
		{in: "Scope 4", want: Scope4},
		{in: "0", wantErr: true},
		{in: "5", wantErr: true},
		{in: "2abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidScope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
