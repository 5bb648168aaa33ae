package quality

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// minIdenticalPeriods is the count above which identical values are suspicious.
const minIdenticalPeriods = 3

// ValidateBulk validates every entry with a positive value, concurrently, and
// returns results keyed by period. Zero and negative entries are skipped and
// get no result. When a period appears more than once, the last entry wins.
// When more than three positive values are all identical, every returned
// result gets a suspicious_pattern warning.
func (v *Validator) ValidateBulk(
	ctx context.Context,
	sourceID string,
	entries []PeriodEntry,
	unit string,
) (map[string]*Result, error) {
	positive := make([]PeriodEntry, 0, len(entries))
	for _, e := range entries {
		if e.ActivityValue > 0 {
			positive = append(positive, e)
		}
	}

	byIndex := make([]*Result, len(positive))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	log := v.log(ctx)
	for i, e := range positive {
		g.Go(func() error {
			res, err := v.ValidateActivityValue(gctx, sourceID, e.Period, e.ActivityValue, unit)
			if err != nil {
				return err
			}
			debugResult(log, sourceID, e.Period, res)
			byIndex[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// A period listed twice keeps the result of its last entry.
	results := make(map[string]*Result, len(positive))
	for i, e := range positive {
		results[e.Period] = byIndex[i]
	}

	if allIdentical(positive) {
		msg := fmt.Sprintf("All %d periods report the identical value %s. This may be placeholder data",
			len(positive), formatQuantity(positive[0].ActivityValue, unit))
		w := Warning{
			Type:            WarningSuspiciousPattern,
			Message:         msg,
			Severity:        SeverityWarning,
			SuggestedAction: "Replace copied values with actual period readings",
		}
		for _, res := range results {
			res.add(w)
			res.settle()
		}
	}

	return results, nil
}

func allIdentical(entries []PeriodEntry) bool {
	if len(entries) <= minIdenticalPeriods {
		return false
	}
	first := entries[0].ActivityValue
	for _, e := range entries[1:] {
		if e.ActivityValue != first {
			return false
		}
	}
	return true
}
