package quality

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/rshade/esgledger/internal/logging"
)

// Validation thresholds.
const (
	// HistoryLimit is the number of most recent values compared against.
	HistoryLimit = 12
	// MinHistory is the fewest historical values needed for statistics.
	MinHistory = 3

	anomalyZScore   = 2.0
	extremeZScore   = 3.0
	rangeMultiplier = 1.5
	percent         = 100

	// DefaultConcurrency bounds parallel validations in ValidateBulk.
	DefaultConcurrency = 8
)

// HistorySource returns up to limit recent activity values for a source and
// period, newest first. Implementations may fail; the validator treats a
// failure as missing history.
type HistorySource interface {
	RecentActivityValues(ctx context.Context, sourceID, period string, limit int) ([]float64, error)
}

// HistorySourceFunc adapts a function to HistorySource.
type HistorySourceFunc func(ctx context.Context, sourceID, period string, limit int) ([]float64, error)

// RecentActivityValues calls f.
func (f HistorySourceFunc) RecentActivityValues(
	ctx context.Context, sourceID, period string, limit int,
) ([]float64, error) {
	return f(ctx, sourceID, period, limit)
}

// Validator checks activity values against their history.
// It holds no mutable state and may be used concurrently.
type Validator struct {
	source      HistorySource
	concurrency int
	logger      *zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithConcurrency bounds how many periods ValidateBulk validates at once.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithLogger sets the logger used instead of the one carried by the context.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = &l
	}
}

// NewValidator returns a validator reading history from source. A nil source
// behaves like a source with no history.
func NewValidator(source HistorySource, opts ...Option) *Validator {
	v := &Validator{source: source, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateActivityValue validates one value for a source and period.
//
// History fetch failures are logged and treated as insufficient history, so
// the returned error is only ever the context's error after cancellation.
func (v *Validator) ValidateActivityValue(
	ctx context.Context,
	sourceID, period string,
	value float64,
	unit string,
) (*Result, error) {
	res := &Result{Warnings: []Warning{}}

	if value < 0 {
		res.add(Warning{
			Type:            WarningNegativeValue,
			Message:         "Activity value cannot be negative",
			Severity:        SeverityError,
			SuggestedAction: "Enter a value of zero or more",
		})
		res.settle()
		return res, nil
	}

	if value == 0 {
		res.add(Warning{
			Type:            WarningZeroValue,
			Message:         "Activity value is zero. Is this expected?",
			Severity:        SeverityInfo,
			SuggestedAction: "Confirm there was no activity in this period",
		})
	}

	history, err := v.fetchHistory(ctx, sourceID, period)
	if err != nil {
		return nil, err
	}

	if len(history) < MinHistory {
		res.Severity, res.IsValid = SeverityInfo, true
		return res, nil
	}

	stats := ComputeStats(history)
	res.Stats = &stats
	v.checkAnomalies(res, stats, value, unit)
	res.settle()

	return res, nil
}

func (v *Validator) checkAnomalies(res *Result, stats Stats, value float64, unit string) {
	if z := stats.ZScore(value); z > anomalyZScore {
		deviation := 0.0
		if stats.Mean != 0 {
			deviation = math.Abs(value-stats.Mean) / stats.Mean * percent
		}

		wt, direction := WarningAnomalyHigh, "higher"
		if value < stats.Mean {
			wt, direction = WarningAnomalyLow, "lower"
		}
		res.add(Warning{
			Type: wt,
			Message: fmt.Sprintf("Value is %.1f%% %s than the historical average of %s",
				deviation, direction, formatQuantity(stats.Mean, unit)),
			Severity:        SeverityWarning,
			SuggestedAction: "Verify the reading and attach supporting evidence",
		})

		if z > extremeZScore {
			res.add(Warning{
				Type: WarningSuspiciousPattern,
				Message: fmt.Sprintf("Extreme outlier: value is %.1f standard deviations from the historical mean",
					z),
				Severity:        SeverityError,
				SuggestedAction: "Check for unit or data-entry errors before submitting",
			})
		}
	}

	if value > stats.Max*rangeMultiplier {
		res.add(Warning{
			Type: WarningOutOfRange,
			Message: fmt.Sprintf("Value exceeds the historical maximum of %s by more than 50%%",
				formatQuantity(stats.Max, unit)),
			Severity:        SeverityWarning,
			SuggestedAction: "Confirm the increase, for example new capacity or a change in scope",
		})
	}
}

// fetchHistory never fails because of the source; only cancellation is returned.
func (v *Validator) fetchHistory(ctx context.Context, sourceID, period string) ([]float64, error) {
	if v.source == nil {
		return nil, nil
	}

	values, err := v.source.RecentActivityValues(ctx, sourceID, period, HistoryLimit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log := v.log(ctx)
		log.Warn().
			Ctx(ctx).
			Str("component", "quality").
			Str("operation", "fetch_history").
			Str("source_id", sourceID).
			Str("period", period).
			Err(err).
			Msg("historical data unavailable, skipping statistical checks")
		return nil, nil
	}

	if len(values) > HistoryLimit {
		values = values[:HistoryLimit]
	}
	return values, nil
}

func (v *Validator) log(ctx context.Context) zerolog.Logger {
	if v.logger != nil {
		return *v.logger
	}
	return logging.FromContext(ctx)
}

func debugResult(log zerolog.Logger, sourceID, period string, res *Result) {
	log.Debug().
		Str("component", "quality").
		Str("source_id", sourceID).
		Str("period", period).
		Str("severity", string(res.Severity)).
		Int("warnings", len(res.Warnings)).
		Msg("validated activity value")
}
