package quality

import "math"

// ComputeStats returns mean, population standard deviation, min, max and count.
// An empty input yields the zero Stats.
func ComputeStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	s := Stats{Min: values[0], Max: values[0], Count: len(values)}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(s.Count)

	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(s.Count))

	return s
}

// ZScore returns |value - mean| / stdDev, or 0 when stdDev is 0.
func (s Stats) ZScore(value float64) float64 {
	if s.StdDev == 0 {
		return 0
	}
	return math.Abs(value-s.Mean) / s.StdDev
}

// Score converts a result into a 0-100 quality score: 30 points off per error,
// 15 per warning and 5 per info finding.
func Score(r *Result) int {
	if r == nil {
		return maxScore
	}
	score := maxScore -
		errorPenalty*r.Count(SeverityError) -
		warningPenalty*r.Count(SeverityWarning) -
		infoPenalty*r.Count(SeverityInfo)
	if score < 0 {
		return 0
	}
	return score
}

const (
	maxScore       = 100
	errorPenalty   = 30
	warningPenalty = 15
	infoPenalty    = 5
)
