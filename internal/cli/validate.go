package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/esgledger/internal/logging"
	"github.com/rshade/esgledger/internal/quality"
	"github.com/rshade/esgledger/internal/review"
	"github.com/rshade/esgledger/internal/tui"
	"github.com/rshade/esgledger/internal/units"
)

type valueOutput struct {
	SourceID     string          `json:"source_id"`
	Period       string          `json:"period"`
	Value        float64         `json:"activity_value"`
	Unit         string          `json:"unit"`
	Result       *quality.Result `json:"result"`
	QualityScore int             `json:"quality_score"`
	Queued       bool            `json:"queued_for_review"`
}

type bulkPeriod struct {
	Period       string          `json:"period"`
	Value        float64         `json:"activity_value"`
	Result       *quality.Result `json:"result,omitempty"`
	QualityScore *int            `json:"quality_score,omitempty"`
	Acknowledged bool            `json:"acknowledged,omitempty"`
	Queued       bool            `json:"queued_for_review,omitempty"`
}

type bulkOutput struct {
	SourceID string       `json:"source_id"`
	Unit     string       `json:"unit"`
	Periods  []bulkPeriod `json:"periods"`
}

// periodsFile is the YAML layout read by validate bulk.
type periodsFile struct {
	Periods []quality.PeriodEntry `yaml:"periods"`
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate activity data against its history",
	}
	cmd.AddCommand(newValidateValueCmd(a), newValidateBulkCmd(a))
	return cmd
}

func (a *app) newValidator(src quality.HistorySource) *quality.Validator {
	return quality.NewValidator(src, quality.WithConcurrency(a.cfg.Validation.Concurrency))
}

func newValidateValueCmd(a *app) *cobra.Command {
	var (
		sourceID    string
		period      string
		valueFlag   string
		unit        string
		historyFile string
		publish     bool
	)

	cmd := &cobra.Command{
		Use:   "value",
		Short: "Validate one activity value",
		Example: `  esgledger validate value --source boiler-1 --period January --value 1250 --unit kWh
  esgledger validate value --source boiler-1 --period January --value 1250 --unit kWh --publish`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			value, err := units.ParseQuantity(valueFlag)
			if err != nil {
				return fmt.Errorf("--value: %w", err)
			}

			src, cleanup, err := a.historySource(ctx, historyFile)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := a.newValidator(src).ValidateActivityValue(ctx, sourceID, period, value, unit)
			if err != nil {
				return err
			}

			sub := review.NewSubmission(sourceID, period, value, unit, res, a.now())
			out := valueOutput{
				SourceID:     sourceID,
				Period:       period,
				Value:        value,
				Unit:         unit,
				Result:       res,
				QualityScore: sub.QualityScore,
			}

			if publish {
				if out.Queued, err = a.publish(cmd, sub); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(w, out)
			}
			renderValue(w, out, publish && sub.NeedsReview())
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "emission source id")
	cmd.Flags().StringVar(&period, "period", "", "reporting period")
	cmd.Flags().StringVar(&valueFlag, "value", "", "activity value")
	cmd.Flags().StringVar(&unit, "unit", "", "activity unit, used in messages")
	cmd.Flags().StringVar(&historyFile, "history", "", "YAML history file used instead of the database")
	cmd.Flags().BoolVar(&publish, "publish", false, "queue the submission for review when it has warnings")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("period")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func (a *app) publish(cmd *cobra.Command, sub *review.Submission) (bool, error) {
	queued, err := a.publishAll(cmd, []*review.Submission{sub})
	if err != nil {
		return false, err
	}
	return queued[0], nil
}

// publishAll sends subs through one publisher and reports which were queued.
func (a *app) publishAll(cmd *cobra.Command, subs []*review.Submission) ([]bool, error) {
	pub, err := a.publisher()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := pub.Close(); closeErr != nil {
			log := logging.FromContext(cmd.Context())
			log.Warn().Err(closeErr).Msg("closing review publisher")
		}
	}()

	queued := make([]bool, len(subs))
	for i, sub := range subs {
		if queued[i], err = pub.Publish(cmd.Context(), sub); err != nil {
			return nil, err
		}
	}
	return queued, nil
}

func renderValue(w io.Writer, out valueOutput, needsReview bool) {
	s := newStyles(w)
	res := out.Result

	status := s.ok.Render("valid")
	if !res.IsValid {
		status = s.err.Render("invalid")
	}
	fmt.Fprintf(w, "%s %s %s: %s (severity %s, score %d)\n",
		out.SourceID, out.Period, formatValue(out.Value, out.Unit), status,
		s.severity(res.Severity).Render(string(res.Severity)), out.QualityScore)

	if res.Stats != nil {
		fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("history: %d values, mean %.2f, std dev %.2f, max %.2f",
			res.Stats.Count, res.Stats.Mean, res.Stats.StdDev, res.Stats.Max)))
	}
	renderWarnings(w, s, res.Warnings)

	switch {
	case out.Queued:
		fmt.Fprintln(w, "Queued for review")
	case needsReview:
		fmt.Fprintln(w, "Review queue disabled; submission not queued")
	}
}

func renderWarnings(w io.Writer, s styles, warnings []quality.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "  %s %s\n", s.severity(warn.Severity).Render("["+string(warn.Type)+"]"), warn.Message)
		if warn.SuggestedAction != "" {
			fmt.Fprintf(w, "    %s\n", s.muted.Render(warn.SuggestedAction))
		}
	}
}

func formatValue(v float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%v %s", v, unit)
}

func newValidateBulkCmd(a *app) *cobra.Command {
	var (
		sourceID      string
		unit          string
		file          string
		historyFile   string
		publish       bool
		noInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Validate several periods of one source",
		Long: `Validates every period with a positive value. Zero and negative periods are
skipped. When more than three periods report the same value, every
validated period is flagged as a suspicious pattern.

On a terminal the warnings open in an interactive review where each one is
acknowledged or flagged. With --publish, periods whose warnings were not all
acknowledged are queued for review.`,
		Example: `  esgledger validate bulk --source boiler-1 --unit kWh --file periods.yaml
  esgledger validate bulk --source boiler-1 --unit kWh --file periods.yaml --publish --no-interactive`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if file == "" {
				return errNoInput
			}
			entries, err := loadPeriods(file)
			if err != nil {
				return err
			}

			src, cleanup, err := a.historySource(ctx, historyFile)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := a.newValidator(src).ValidateBulk(ctx, sourceID, entries, unit)
			if err != nil {
				return err
			}

			out := bulkOutput{SourceID: sourceID, Unit: unit, Periods: make([]bulkPeriod, 0, len(entries))}
			for _, e := range entries {
				p := bulkPeriod{Period: e.Period, Value: e.ActivityValue}
				if res, ok := results[e.Period]; ok {
					score := quality.Score(res)
					p.Result, p.QualityScore = res, &score
				}
				out.Periods = append(out.Periods, p)
			}

			w := cmd.OutOrStdout()
			mode := tui.OutputModePlain
			if !a.jsonOutput() {
				mode = tui.DetectOutputMode(w, cmd.InOrStdin(), noInteractive)
			}

			if mode == tui.OutputModeInteractive {
				acked, reviewErr := a.runReview(cmd, sourceID, tui.ItemsFromResults(entries, results, unit))
				if reviewErr != nil {
					return reviewErr
				}
				for i := range out.Periods {
					out.Periods[i].Acknowledged = acked[out.Periods[i].Period]
				}
			}

			if publish {
				if err = a.queueBulk(cmd, &out); err != nil {
					return err
				}
			}

			if a.jsonOutput() {
				return writeJSON(w, out)
			}
			renderBulk(w, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "emission source id")
	cmd.Flags().StringVar(&unit, "unit", "", "activity unit, used in messages")
	cmd.Flags().StringVar(&file, "file", "", "YAML file with a periods list")
	cmd.Flags().StringVar(&historyFile, "history", "", "YAML history file used instead of the database")
	cmd.Flags().BoolVar(&publish, "publish", false, "queue periods with unacknowledged warnings for review")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "print warnings instead of opening the interactive review")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

// runReview opens the interactive warning review and returns the periods
// whose warnings were all acknowledged.
func (a *app) runReview(cmd *cobra.Command, sourceID string, items []tui.ReviewItem) (map[string]bool, error) {
	if len(items) == 0 {
		return nil, nil
	}

	model := tui.NewReviewModel("Review "+sourceID, items)
	p := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run interactive review: %w", err)
	}

	reviewed, ok := final.(*tui.ReviewModel)
	if !ok {
		return nil, nil
	}
	pending, acked, flagged := reviewed.Counts()
	log := logging.FromContext(cmd.Context())
	log.Info().
		Str("operation", "review").
		Str("source_id", sourceID).
		Int("pending", pending).
		Int("acknowledged", acked).
		Int("flagged", flagged).
		Msg("warning review finished")

	return reviewed.AcknowledgedPeriods(), nil
}

// queueBulk publishes every validated period that has warnings and was not
// acknowledged in review.
func (a *app) queueBulk(cmd *cobra.Command, out *bulkOutput) error {
	var (
		subs    []*review.Submission
		indexes []int
	)
	now := a.now()
	for i, p := range out.Periods {
		if p.Result == nil || p.Acknowledged {
			continue
		}
		sub := review.NewSubmission(out.SourceID, p.Period, p.Value, out.Unit, p.Result, now)
		if !sub.NeedsReview() {
			continue
		}
		subs = append(subs, sub)
		indexes = append(indexes, i)
	}
	if len(subs) == 0 {
		return nil
	}

	queued, err := a.publishAll(cmd, subs)
	if err != nil {
		return err
	}
	for j, i := range indexes {
		out.Periods[i].Queued = queued[j]
	}
	return nil
}

func loadPeriods(path string) ([]quality.PeriodEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading periods file %s: %w", path, err)
	}
	var pf periodsFile
	if err = yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing periods file %s: %w", path, err)
	}
	return pf.Periods, nil
}

func renderBulk(w io.Writer, out bulkOutput) {
	s := newStyles(w)
	fmt.Fprintln(w, s.title.Render("Validation for "+out.SourceID))

	for _, p := range out.Periods {
		if p.Result == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.Period, formatValue(p.Value, out.Unit), s.muted.Render("skipped"))
			continue
		}
		status := ""
		switch {
		case p.Acknowledged:
			status = " " + s.ok.Render("acknowledged")
		case p.Queued:
			status = " " + s.warn.Render("queued for review")
		}
		fmt.Fprintf(w, "%s %s: %s (score %d)%s\n", p.Period, formatValue(p.Value, out.Unit),
			s.severity(p.Result.Severity).Render(string(p.Result.Severity)), *p.QualityScore, status)
		renderWarnings(w, s, p.Result.Warnings)
	}
}
