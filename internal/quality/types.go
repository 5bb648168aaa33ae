// Package quality flags suspicious activity data before it is submitted.
//
// A new value is checked for sign, then compared with up to twelve historical
// values for the same source and period using a population Z-score. Findings
// are attached as warnings for human review; only error-severity findings make
// a result invalid.
package quality

import "fmt"

// Severity ranks a warning. The zero value is SeverityInfo.
type Severity string

// Severities in increasing order.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Max returns the more severe of s and other.
func (s Severity) Max(other Severity) Severity {
	if other.rank() > s.rank() {
		return other
	}
	if s == "" {
		return SeverityInfo
	}
	return s
}

// WarningType classifies a finding.
type WarningType string

// Warning types.
const (
	WarningNegativeValue     WarningType = "negative_value"
	WarningZeroValue         WarningType = "zero_value"
	WarningAnomalyHigh       WarningType = "anomaly_high"
	WarningAnomalyLow        WarningType = "anomaly_low"
	WarningOutOfRange        WarningType = "out_of_range"
	WarningSuspiciousPattern WarningType = "suspicious_pattern"
)

// Warning is a single finding.
type Warning struct {
	Type            WarningType `json:"type"`
	Message         string      `json:"message"`
	Severity        Severity    `json:"severity"`
	SuggestedAction string      `json:"suggested_action,omitempty"`
}

// Stats summarizes a historical window.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Result is the outcome of validating one value.
type Result struct {
	IsValid  bool      `json:"is_valid"`
	Severity Severity  `json:"severity"`
	Warnings []Warning `json:"warnings"`
	// Stats is set when enough history existed for statistical checks.
	Stats *Stats `json:"stats,omitempty"`
}

func (r *Result) add(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// settle derives Severity and IsValid from the warnings.
func (r *Result) settle() {
	sev := SeverityInfo
	for _, w := range r.Warnings {
		sev = sev.Max(w.Severity)
	}
	r.Severity = sev
	r.IsValid = sev != SeverityError
}

// HasType reports whether the result carries a warning of type wt.
func (r *Result) HasType(wt WarningType) bool {
	for _, w := range r.Warnings {
		if w.Type == wt {
			return true
		}
	}
	return false
}

// Count returns the number of warnings with severity s.
func (r *Result) Count(s Severity) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Severity == s {
			n++
		}
	}
	return n
}

// PeriodEntry is one period's value in a bulk submission.
type PeriodEntry struct {
	Period        string  `json:"period"         yaml:"period"`
	ActivityValue float64 `json:"activity_value" yaml:"activity_value"`
}

func formatQuantity(v float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}
