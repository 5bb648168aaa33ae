package emissions

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// GlobalRegion is the region used when a region-specific factor is missing.
const GlobalRegion = "global"

//go:embed factors.yaml
var defaultFactorData []byte

// FactorKey identifies an emission factor.
type FactorKey struct {
	Scope    Scope
	Category string
	Activity string
	Region   string
}

func (k FactorKey) normalized() FactorKey {
	region := strings.ToLower(strings.TrimSpace(k.Region))
	if region == "" {
		region = GlobalRegion
	}
	return FactorKey{
		Scope:    k.Scope,
		Category: strings.ToLower(strings.TrimSpace(k.Category)),
		Activity: strings.ToLower(strings.TrimSpace(k.Activity)),
		Region:   region,
	}
}

// String renders the key as scope/category/activity/region.
func (k FactorKey) String() string {
	return fmt.Sprintf("%d/%s/%s/%s", int(k.Scope), k.Category, k.Activity, k.Region)
}

// EmissionFactor is read-only reference data: Factor kg CO2e per Unit of activity.
type EmissionFactor struct {
	Scope    Scope   `yaml:"scope"    json:"scope"`
	Category string  `yaml:"category" json:"category"`
	Activity string  `yaml:"activity" json:"activity"`
	Region   string  `yaml:"region"   json:"region"`
	Factor   float64 `yaml:"factor"   json:"factor"`
	Unit     string  `yaml:"unit"     json:"unit"`
	Source   string  `yaml:"source"   json:"source"`
	Year     int     `yaml:"year"     json:"year"`
}

// Key returns the lookup key for the factor.
func (f EmissionFactor) Key() FactorKey {
	return FactorKey{Scope: f.Scope, Category: f.Category, Activity: f.Activity, Region: f.Region}.normalized()
}

type factorFile struct {
	Version string           `yaml:"version"`
	Factors []EmissionFactor `yaml:"factors"`
}

// FactorTable is an immutable set of emission factors. Safe for concurrent use.
type FactorTable struct {
	version *semver.Version
	factors []EmissionFactor
	index   map[FactorKey]int
}

// ParseFactorTable parses a YAML factor table. The document must carry a
// semantic version and every factor must be positive with a valid scope.
func ParseFactorTable(data []byte) (*FactorTable, error) {
	var file factorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFactorTable, err)
	}

	v, err := semver.NewVersion(file.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %w", ErrInvalidFactorTable, file.Version, err)
	}

	t := &FactorTable{
		version: v,
		factors: make([]EmissionFactor, 0, len(file.Factors)),
		index:   make(map[FactorKey]int, len(file.Factors)),
	}

	for i, f := range file.Factors {
		if vErr := validateFactor(f); vErr != nil {
			return nil, fmt.Errorf("%w: factor %d: %w", ErrInvalidFactorTable, i, vErr)
		}
		if f.Region == "" {
			f.Region = GlobalRegion
		}
		key := f.Key()
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate factor %s", ErrInvalidFactorTable, key)
		}
		t.index[key] = len(t.factors)
		t.factors = append(t.factors, f)
	}

	return t, nil
}

func validateFactor(f EmissionFactor) error {
	switch {
	case !f.Scope.Valid():
		return fmt.Errorf("%w: %d", ErrInvalidScope, int(f.Scope))
	case strings.TrimSpace(f.Category) == "", strings.TrimSpace(f.Activity) == "":
		return errors.New("category and activity are required")
	case strings.TrimSpace(f.Unit) == "":
		return fmt.Errorf("unit is required for %s/%s", f.Category, f.Activity)
	case math.IsNaN(f.Factor) || math.IsInf(f.Factor, 0) || f.Factor <= 0:
		return fmt.Errorf("factor for %s/%s must be positive, got %v", f.Category, f.Activity, f.Factor)
	}
	return nil
}

// LoadFactorTable reads a YAML factor table from disk.
func LoadFactorTable(path string) (*FactorTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading factor table %s: %w", path, err)
	}
	return ParseFactorTable(data)
}

//nolint:gochecknoglobals // Lazily parsed embedded reference data.
var (
	defaultTableOnce sync.Once
	defaultTable     *FactorTable
)

// DefaultFactorTable returns the embedded factor table.
func DefaultFactorTable() *FactorTable {
	defaultTableOnce.Do(func() {
		t, err := ParseFactorTable(defaultFactorData)
		if err != nil {
			panic("emissions: invalid embedded factor table: " + err.Error())
		}
		defaultTable = t
	})
	return defaultTable
}

// Version returns the dataset version.
func (t *FactorTable) Version() *semver.Version {
	return t.version
}

// Lookup finds the factor for key. Matching is case-insensitive; when no
// factor exists for the key's region the global factor is returned.
func (t *FactorTable) Lookup(key FactorKey) (EmissionFactor, error) {
	k := key.normalized()
	if i, ok := t.index[k]; ok {
		return t.factors[i], nil
	}

	if k.Region != GlobalRegion {
		k.Region = GlobalRegion
		if i, ok := t.index[k]; ok {
			return t.factors[i], nil
		}
	}

	return EmissionFactor{}, fmt.Errorf("%w: %s", ErrFactorNotFound, key.normalized())
}

// Factors returns the factors for scope sorted by category, activity and region.
// A zero scope returns every factor.
func (t *FactorTable) Factors(scope Scope) []EmissionFactor {
	out := make([]EmissionFactor, 0, len(t.factors))
	for _, f := range t.factors {
		if scope == 0 || f.Scope == scope {
			out = append(out, f)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Activity != b.Activity {
			return a.Activity < b.Activity
		}
		return a.Region < b.Region
	})
	return out
}
