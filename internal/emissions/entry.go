package emissions

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rshade/esgledger/internal/units"
)

// EntryInput is one reporting period's activity for one emission source.
type EntryInput struct {
	SourceID      string  `json:"source_id"      yaml:"source_id"`
	Period        string  `json:"period"         yaml:"period"`
	Scope         Scope   `json:"scope"          yaml:"scope"`
	Category      string  `json:"category"       yaml:"category"`
	Activity      string  `json:"activity"       yaml:"activity"`
	Region        string  `json:"region"         yaml:"region"`
	ActivityValue float64 `json:"activity_value" yaml:"activity_value"`
	ActivityUnit  string  `json:"activity_unit"  yaml:"activity_unit"`
}

// Entry is a calculation snapshot for one source and period.
//
// The gas quantities are computed once, from the factor in effect when the
// entry was created. Later factor changes do not touch saved entries; a new
// value requires an explicit edit and re-save.
type Entry struct {
	ID              string    `json:"id"`
	SourceID        string    `json:"source_id"`
	Period          string    `json:"period"`
	Scope           Scope     `json:"scope"`
	Category        string    `json:"category"`
	Activity        string    `json:"activity"`
	Region          string    `json:"region"`
	ActivityValue   float64   `json:"activity_value"`
	ActivityUnit    string    `json:"activity_unit"`
	NormalizedValue float64   `json:"normalized_value"`
	FactorUnit      string    `json:"factor_unit"`
	EmissionFactor  float64   `json:"emission_factor"`
	FactorSource    string    `json:"factor_source"`
	CO2Kg           float64   `json:"co2_kg"`
	CH4Kg           float64   `json:"ch4_kg"`
	N2OKg           float64   `json:"n2o_kg"`
	TotalTCO2e      float64   `json:"total_tco2e"`
	CreatedAt       time.Time `json:"created_at"`
}

// Breakdown returns the entry's stored gas quantities.
func (e *Entry) Breakdown() Breakdown {
	return Breakdown{CO2: e.CO2Kg, CH4: e.CH4Kg, N2O: e.N2OKg, Total: e.TotalTCO2e}
}

// NewEntry normalizes the activity value to the factor's unit with conv and
// calculates emissions using the scope's default gas split. now stamps the
// snapshot; pass time.Now() outside tests.
func NewEntry(conv *units.Converter, in EntryInput, factor EmissionFactor, now time.Time) (*Entry, error) {
	if !in.Scope.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScope, int(in.Scope))
	}

	normalized, ok := conv.Convert(in.ActivityValue, in.ActivityUnit, factor.Unit)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnit, in.ActivityUnit, factor.Unit)
	}

	b := in.Scope.Calculate(normalized, factor.Factor)
	region := in.Region
	if region == "" {
		region = factor.Region
	}

	return &Entry{
		ID:              ulid.Make().String(),
		SourceID:        in.SourceID,
		Period:          in.Period,
		Scope:           in.Scope,
		Category:        in.Category,
		Activity:        in.Activity,
		Region:          region,
		ActivityValue:   in.ActivityValue,
		ActivityUnit:    in.ActivityUnit,
		NormalizedValue: normalized,
		FactorUnit:      factor.Unit,
		EmissionFactor:  factor.Factor,
		FactorSource:    factor.Source,
		CO2Kg:           b.CO2,
		CH4Kg:           b.CH4,
		N2OKg:           b.N2O,
		TotalTCO2e:      b.Total,
		CreatedAt:       now.UTC(),
	}, nil
}

// Resolve looks up the factor for in and builds the entry.
func (t *FactorTable) Resolve(conv *units.Converter, in EntryInput, now time.Time) (*Entry, error) {
	f, err := t.Lookup(FactorKey{Scope: in.Scope, Category: in.Category, Activity: in.Activity, Region: in.Region})
	if err != nil {
		return nil, err
	}
	return NewEntry(conv, in, f, now)
}
