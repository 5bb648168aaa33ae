// Package units converts activity quantities between the physical units used in
// greenhouse-gas reporting.
//
// Conversions are resolved against a sparse table of directed factors. Resolution
// order is fixed and the first matching rule wins:
//
//  1. identity (same unit after normalization)
//  2. direct edge from -> to
//  3. reverse edge to -> from, applied by dividing
//  4. one hop through the first of kg, litres, kWh, km, m that has both
//     from -> via and via -> to registered
//
// There is no multi-hop or shortest-path search. A pair that only connects
// through an unlisted intermediate does not convert.
package units

import (
	"fmt"
	"math"
	"strings"
)

// PathKind describes which resolution rule produced a conversion.
type PathKind int

const (
	// PathIdentity means the units were equal after normalization.
	PathIdentity PathKind = iota
	// PathDirect means a registered from -> to factor was used.
	PathDirect
	// PathReverse means a registered to -> from factor was inverted.
	PathReverse
	// PathTransitive means two registered factors were chained through Via.
	PathTransitive
)

// String returns a human-readable representation of the PathKind.
func (k PathKind) String() string {
	switch k {
	case PathIdentity:
		return "identity"
	case PathDirect:
		return "direct"
	case PathReverse:
		return "reverse"
	case PathTransitive:
		return "transitive"
	default:
		return fmt.Sprintf("PathKind(%d)", k)
	}
}

// MarshalText renders the kind by name in JSON and YAML.
func (k PathKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Path is a resolved conversion between two units.
type Path struct {
	Kind PathKind `json:"kind"`
	From string   `json:"from"`
	To   string   `json:"to"`
	// Via is the intermediate unit for PathTransitive, empty otherwise.
	Via string `json:"via,omitempty"`
	// Factor is the multiplier applied by Apply. For PathReverse it is the
	// registered to -> from factor and the value is divided by it instead.
	Factor float64 `json:"factor"`
}

// Apply converts value along the path.
func (p Path) Apply(value float64) float64 {
	switch p.Kind {
	case PathIdentity:
		return value
	case PathReverse:
		return value / p.Factor
	default:
		return value * p.Factor
	}
}

type edge struct {
	to     string
	symbol string
	factor float64
}

// Converter resolves conversions against an immutable factor table.
// A Converter is safe for concurrent use.
type Converter struct {
	factors []Factor
	// edges maps a normalized from-unit to its outgoing edges in table order.
	edges map[string][]edge
	// symbols maps a normalized unit to its first registered spelling.
	symbols map[string]string
	order   []string
}

// NewConverter builds a Converter from a factor table. Factors must be finite and
// positive and both unit symbols non-empty. When the same directed pair is
// registered more than once, the first registration wins.
func NewConverter(factors []Factor) (*Converter, error) {
	c := &Converter{
		factors: make([]Factor, 0, len(factors)),
		edges:   make(map[string][]edge),
		symbols: make(map[string]string),
	}

	for i, f := range factors {
		from, to := normalize(f.From), normalize(f.To)
		if from == "" || to == "" {
			return nil, fmt.Errorf("%w: entry %d has an empty unit", ErrInvalidFactor, i)
		}
		if math.IsNaN(f.Factor) || math.IsInf(f.Factor, 0) || f.Factor <= 0 {
			return nil, fmt.Errorf("%w: %s -> %s = %v", ErrInvalidFactor, f.From, f.To, f.Factor)
		}

		c.factors = append(c.factors, f)
		c.remember(from, f.From)
		c.remember(to, f.To)

		if _, exists := c.direct(from, to); exists {
			continue
		}
		c.edges[from] = append(c.edges[from], edge{to: to, symbol: strings.TrimSpace(f.To), factor: f.Factor})
	}

	return c, nil
}

// Factors returns a copy of the table the converter was built from.
func (c *Converter) Factors() []Factor {
	out := make([]Factor, len(c.factors))
	copy(out, c.factors)
	return out
}

// Convert converts value from one unit to another. ok is false when the units
// are incompatible; callers must branch on it before using the result.
// No validation of value is performed.
func (c *Converter) Convert(value float64, from, to string) (float64, bool) {
	p, ok := c.Resolve(from, to)
	if !ok {
		return 0, false
	}
	return p.Apply(value), true
}

// Resolve returns the path a conversion from -> to would take.
func (c *Converter) Resolve(from, to string) (Path, bool) {
	nf, nt := normalize(from), normalize(to)
	p := Path{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}

	if nf == nt {
		p.Kind, p.Factor = PathIdentity, 1
		return p, true
	}

	if f, ok := c.direct(nf, nt); ok {
		p.Kind, p.Factor = PathDirect, f
		return p, true
	}

	if f, ok := c.direct(nt, nf); ok {
		p.Kind, p.Factor = PathReverse, f
		return p, true
	}

	for _, via := range intermediates {
		nv := normalize(via)
		f1, ok1 := c.direct(nf, nv)
		if !ok1 {
			continue
		}
		f2, ok2 := c.direct(nv, nt)
		if !ok2 {
			continue
		}
		p.Kind, p.Via, p.Factor = PathTransitive, via, f1*f2
		return p, true
	}

	return Path{}, false
}

// CanConvert reports whether a conversion from -> to resolves.
func (c *Converter) CanConvert(from, to string) bool {
	_, ok := c.Convert(1, from, to)
	return ok
}

// Units returns every unit named in the table, in first-seen order.
func (c *Converter) Units() []string {
	out := make([]string, 0, len(c.order))
	for _, u := range c.order {
		out = append(out, c.symbols[u])
	}
	return out
}

// AvailableConversions returns unit itself followed by every unit reachable through
// one direct or one reverse edge, in table order and without duplicates.
// Transitive targets are not included.
func (c *Converter) AvailableConversions(unit string) []string {
	nu := normalize(unit)
	out := []string{strings.TrimSpace(unit)}
	seen := map[string]bool{nu: true}

	for _, e := range c.edges[nu] {
		if !seen[e.to] {
			seen[e.to] = true
			out = append(out, e.symbol)
		}
	}

	for _, f := range c.factors {
		if normalize(f.To) != nu {
			continue
		}
		from := normalize(f.From)
		if !seen[from] {
			seen[from] = true
			out = append(out, c.symbols[from])
		}
	}

	return out
}

// FormatConversion renders "{value} {from} = {converted} {to}", or a
// cannot-convert message when the units are incompatible.
func (c *Converter) FormatConversion(value float64, from, to string) string {
	converted, ok := c.Convert(value, from, to)
	if !ok {
		return fmt.Sprintf("Cannot convert %s to %s", strings.TrimSpace(from), strings.TrimSpace(to))
	}
	return fmt.Sprintf("%s %s = %s %s",
		formatValue(value), strings.TrimSpace(from),
		formatValue(roundTo(converted, displayPrecision)), strings.TrimSpace(to))
}

func (c *Converter) direct(from, to string) (float64, bool) {
	for _, e := range c.edges[from] {
		if e.to == to {
			return e.factor, true
		}
	}
	return 0, false
}

func (c *Converter) remember(normalized, symbol string) {
	if _, ok := c.symbols[normalized]; !ok {
		c.symbols[normalized] = strings.TrimSpace(symbol)
		c.order = append(c.order, normalized)
	}
}

// normalize makes unit matching case-insensitive and whitespace-trimmed.
func normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
