package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/esgledger/internal/emissions"
)

type factorsOutput struct {
	Version string                     `json:"version"`
	Factors []emissions.EmissionFactor `json:"factors"`
}

func newFactorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factors",
		Short: "Emission factor reference data",
	}
	cmd.AddCommand(newFactorsListCmd(a))
	return cmd
}

func newFactorsListCmd(a *app) *cobra.Command {
	var scopeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List emission factors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var scope emissions.Scope
			if scopeFlag != "" {
				var err error
				if scope, err = emissions.ParseScope(scopeFlag); err != nil {
					return err
				}
			}

			table, err := a.factorTable()
			if err != nil {
				return err
			}
			out := factorsOutput{Version: table.Version().String(), Factors: table.Factors(scope)}

			w := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(w, out)
			}

			s := newStyles(w)
			fmt.Fprintln(w, s.title.Render("Emission factors "+out.Version))
			tw := newTable(w)
			fmt.Fprintln(tw, "SCOPE\tCATEGORY\tACTIVITY\tREGION\tKG CO2E\tUNIT\tSOURCE")
			for _, f := range out.Factors {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%v\t%s\t%s (%d)\n",
					int(f.Scope), f.Category, f.Activity, f.Region, f.Factor, f.Unit, f.Source, f.Year)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "scope", "", "only list factors for this scope (1-4)")
	return cmd
}
