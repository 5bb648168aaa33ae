package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, Stats{Mean: 5, StdDev: 2, Min: 2, Max: 9, Count: 8}, s)

	assert.Equal(t, Stats{}, ComputeStats(nil))

	one := ComputeStats([]float64{-3})
	assert.Equal(t, Stats{Mean: -3, Min: -3, Max: -3, Count: 1}, one)
}

func TestStats_ZScore(t *testing.T) {
	s := Stats{Mean: 10, StdDev: 2}
	assert.InDelta(t, 2.5, s.ZScore(15), 1e-12)
	assert.InDelta(t, 2.5, s.ZScore(5), 1e-12)
	assert.Zero(t, Stats{Mean: 10}.ZScore(1000))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		warnings []Warning
		want     int
	}{
		{name: "clean", want: 100},
		{name: "one of each", warnings: []Warning{
			{Severity: SeverityError}, {Severity: SeverityWarning}, {Severity: SeverityInfo},
		}, want: 50},
		{name: "order does not matter", warnings: []Warning{
			{Severity: SeverityInfo}, {Severity: SeverityError}, {Severity: SeverityWarning},
		}, want: 50},
		{name: "floored at zero", warnings: []Warning{
			{Severity: SeverityError}, {Severity: SeverityError}, {Severity: SeverityError}, {Severity: SeverityError},
		}, want: 0},
		{name: "infos", warnings: []Warning{{Severity: SeverityInfo}, {Severity: SeverityInfo}}, want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(&Result{Warnings: tt.warnings}))
		})
	}
	assert.Equal(t, 100, Score(nil))
}

func TestSeverity_Max(t *testing.T) {
	assert.Equal(t, SeverityWarning, SeverityInfo.Max(SeverityWarning))
	assert.Equal(t, SeverityError, SeverityError.Max(SeverityWarning))
	assert.Equal(t, SeverityInfo, Severity("").Max(SeverityInfo))
	assert.Equal(t, SeverityWarning, Severity("").Max(SeverityWarning))
}
