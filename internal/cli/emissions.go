package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/esgledger/internal/emissions"
	"github.com/rshade/esgledger/internal/logging"
	"github.com/rshade/esgledger/internal/units"
)

type calcFlags struct {
	scope      string
	value      string
	unit       string
	factor     float64
	factorUnit string
	category   string
	activity   string
	region     string
	sourceID   string
	period     string
}

type calcOutput struct {
	Entry         *emissions.Entry            `json:"entry"`
	Equivalencies emissions.EquivalencyOutput `json:"equivalencies"`
}

func newEmissionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emissions",
		Short: "Emissions calculation commands",
	}
	cmd.AddCommand(newEmissionsCalcCmd(a))
	return cmd
}

func newEmissionsCalcCmd(a *app) *cobra.Command {
	var f calcFlags

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate the gas breakdown for one activity value",
		Long: `Calculates CO2, CH4 and N2O in kg and the total in tonnes CO2e.

The factor is either given with --factor (kg CO2e per --factor-unit) or
looked up in the factor table by --category, --activity and --region.
The activity value is converted to the factor's unit first.`,
		Example: `  esgledger emissions calc --scope 1 --value 250 --unit litres --factor 2.68
  esgledger emissions calc --scope 2 --value 12 --unit MWh \
    --category purchased_electricity --activity grid --region in`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			scope, err := emissions.ParseScope(f.scope)
			if err != nil {
				return err
			}
			value, err := units.ParseQuantity(f.value)
			if err != nil {
				return fmt.Errorf("--value: %w", err)
			}
			if value < 0 {
				return fmt.Errorf("--value: %w", emissions.ErrNegativeValue)
			}

			in := emissions.EntryInput{
				SourceID:      f.sourceID,
				Period:        f.period,
				Scope:         scope,
				Category:      f.category,
				Activity:      f.activity,
				Region:        f.region,
				ActivityValue: value,
				ActivityUnit:  f.unit,
			}

			factor, err := a.resolveFactor(cmd, f, in)
			if err != nil {
				return err
			}

			entry, err := emissions.NewEntry(units.Default(), in, factor, a.now())
			if err != nil {
				return err
			}

			eq, err := emissions.Equivalencies(entry.Breakdown().TotalKg())
			if err != nil {
				log := logging.FromContext(ctx)
				log.Warn().Err(err).Msg("equivalencies unavailable")
			}

			out := calcOutput{Entry: entry, Equivalencies: eq}
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			renderCalc(cmd.OutOrStdout(), out, a.kgPrecision(), a.tonnePrecision())
			return nil
		},
	}

	cmd.Flags().StringVar(&f.scope, "scope", "", "emission scope (1-4)")
	cmd.Flags().StringVar(&f.value, "value", "", "activity value")
	cmd.Flags().StringVar(&f.unit, "unit", "", "activity unit")
	cmd.Flags().Float64Var(&f.factor, "factor", 0, "emission factor in kg CO2e per factor unit")
	cmd.Flags().StringVar(&f.factorUnit, "factor-unit", "", "unit of --factor (default --unit)")
	cmd.Flags().StringVar(&f.category, "category", "", "factor table category")
	cmd.Flags().StringVar(&f.activity, "activity", "", "factor table activity")
	cmd.Flags().StringVar(&f.region, "region", "", "factor table region (default global)")
	cmd.Flags().StringVar(&f.sourceID, "source", "", "emission source id")
	cmd.Flags().StringVar(&f.period, "period", "", "reporting period")
	_ = cmd.MarkFlagRequired("scope")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("unit")

	return cmd
}

var errFactorRequired = errors.New("either --factor or --category and --activity are required")

func (a *app) resolveFactor(cmd *cobra.Command, f calcFlags, in emissions.EntryInput) (emissions.EmissionFactor, error) {
	if cmd.Flags().Changed("factor") {
		unit := f.factorUnit
		if unit == "" {
			unit = f.unit
		}
		return emissions.EmissionFactor{
			Scope:    in.Scope,
			Category: in.Category,
			Activity: in.Activity,
			Region:   in.Region,
			Factor:   f.factor,
			Unit:     unit,
			Source:   "manual",
		}, nil
	}

	if f.category == "" || f.activity == "" {
		return emissions.EmissionFactor{}, errFactorRequired
	}

	table, err := a.factorTable()
	if err != nil {
		return emissions.EmissionFactor{}, err
	}
	return table.Lookup(emissions.FactorKey{
		Scope:    in.Scope,
		Category: in.Category,
		Activity: in.Activity,
		Region:   in.Region,
	})
}

func renderCalc(w io.Writer, out calcOutput, kgPrec, tonnePrec int) {
	s := newStyles(w)
	e := out.Entry

	fmt.Fprintln(w, s.title.Render(e.Scope.String()+" emissions"))
	fmt.Fprintf(w, "%s %s\n",
		s.label.Render("Activity:"), units.FormatConversion(e.ActivityValue, e.ActivityUnit, e.FactorUnit))
	fmt.Fprintf(w, "%s %s kg CO2e/%s (%s)\n",
		s.label.Render("Factor:  "), emissions.FormatFloat(e.EmissionFactor, kgPrec), e.FactorUnit, e.FactorSource)
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "GAS\tKG")
	fmt.Fprintf(tw, "CO2\t%s\n", emissions.FormatFloat(e.CO2Kg, kgPrec))
	fmt.Fprintf(tw, "CH4\t%s\n", emissions.FormatFloat(e.CH4Kg, kgPrec))
	fmt.Fprintf(tw, "N2O\t%s\n", emissions.FormatFloat(e.N2OKg, kgPrec))
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s tCO2e\n", s.label.Render("Total:"), emissions.FormatFloat(e.TotalTCO2e, tonnePrec))
	if !out.Equivalencies.IsEmpty && out.Equivalencies.DisplayText != "" {
		fmt.Fprintln(w, s.muted.Render(out.Equivalencies.DisplayText))
	}
}
