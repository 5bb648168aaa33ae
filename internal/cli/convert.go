package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/esgledger/internal/units"
)

type conversionOutput struct {
	Value     float64     `json:"value"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Result    *float64    `json:"result"`
	Formatted string      `json:"formatted"`
	Path      *units.Path `json:"path,omitempty"`
}

func newConvertCmd(a *app) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "convert VALUE FROM TO",
		Short: "Convert an activity quantity between units",
		Example: `  esgledger convert 100 litres gallons
  esgledger convert 1000 gallons m³ --explain`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := units.ParseQuantity(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[0])
			}
			from, to := args[1], args[2]

			conv := units.Default()
			out := conversionOutput{
				Value:     value,
				From:      from,
				To:        to,
				Formatted: conv.FormatConversion(value, from, to),
			}

			path, ok := conv.Resolve(from, to)
			if ok {
				result := path.Apply(value)
				out.Result = &result
				if explain {
					out.Path = &path
				}
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput() {
				if err = writeJSON(w, out); err != nil {
					return err
				}
			} else {
				renderConversion(w, out, explain && ok, path)
			}

			if !ok {
				return fmt.Errorf("%w: %s to %s", units.ErrIncompatibleUnits, from, to)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "show how the conversion resolves")
	return cmd
}

func renderConversion(w io.Writer, out conversionOutput, explain bool, path units.Path) {
	s := newStyles(w)
	fmt.Fprintln(w, out.Formatted)
	if !explain {
		return
	}

	switch path.Kind {
	case units.PathIdentity:
		fmt.Fprintln(w, s.muted.Render("path: identity"))
	case units.PathDirect:
		fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("path: direct (x %v)", path.Factor)))
	case units.PathReverse:
		fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("path: reverse (/ %v)", path.Factor)))
	case units.PathTransitive:
		fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("path: transitive via %s (x %v)", path.Via, path.Factor)))
	}
}

func newUnitsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "units [UNIT]",
		Short: "List known units, or the units a unit converts to directly",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := units.Default()

			var list []string
			if len(args) == 1 {
				list = conv.AvailableConversions(args[0])
			} else {
				list = conv.Units()
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(w, list)
			}
			for _, u := range list {
				fmt.Fprintln(w, u)
			}
			return nil
		},
	}
}
