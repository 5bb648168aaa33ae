package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/esgledger/internal/emissions"
	"github.com/rshade/esgledger/internal/logging"
	"github.com/rshade/esgledger/internal/units"
)

// entriesFile is the YAML layout read by entries import.
type entriesFile struct {
	Entries []emissions.EntryInput `yaml:"entries"`
}

type importOutput struct {
	Imported   int                `json:"imported"`
	TotalTCO2e float64            `json:"total_tco2e"`
	Entries    []*emissions.Entry `json:"entries"`
}

func newEntriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage saved emission entries",
	}
	cmd.AddCommand(newEntriesImportCmd(a), newEntriesListCmd(a))
	return cmd
}

func newEntriesImportCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Calculate and save entries from a YAML file",
		Long: `Resolves each entry's factor from the factor table, normalizes the activity
value to the factor's unit and saves the calculation snapshot. Nothing is
saved when any entry fails.`,
		Example: `  esgledger entries import --file entries.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if file == "" {
				return errNoInput
			}

			inputs, err := loadEntries(file)
			if err != nil {
				return err
			}
			table, err := a.factorTable()
			if err != nil {
				return err
			}

			conv := units.Default()
			now := a.now()
			entries := make([]*emissions.Entry, 0, len(inputs))
			var errs []error
			for i, in := range inputs {
				e, resolveErr := table.Resolve(conv, in, now)
				if resolveErr != nil {
					errs = append(errs, fmt.Errorf("entry %d (%s %s): %w", i+1, in.SourceID, in.Period, resolveErr))
					continue
				}
				entries = append(entries, e)
			}
			if err = errors.Join(errs...); err != nil {
				return err
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err = store.SaveEntries(ctx, entries); err != nil {
				return err
			}

			out := importOutput{Imported: len(entries), Entries: entries}
			for _, e := range entries {
				out.TotalTCO2e += e.TotalTCO2e
			}

			log := logging.FromContext(ctx)
			log.Info().
				Str("operation", "entries_import").
				Int("count", out.Imported).
				Float64("total_tco2e", out.TotalTCO2e).
				Msg("entries imported")

			w := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(w, out)
			}
			fmt.Fprintf(w, "Imported %d entries (%s tCO2e)\n", out.Imported, emissions.FormatFloat(out.TotalTCO2e, a.tonnePrecision()))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML file with an entries list")
	return cmd
}

func loadEntries(path string) ([]emissions.EntryInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading entries file %s: %w", path, err)
	}
	var ef entriesFile
	if err = yaml.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("parsing entries file %s: %w", path, err)
	}
	return ef.Entries, nil
}

func newEntriesListCmd(a *app) *cobra.Command {
	var (
		sourceID string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListEntries(ctx, sourceID, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.jsonOutput() {
				if entries == nil {
					entries = []*emissions.Entry{}
				}
				return writeJSON(w, entries)
			}
			return renderEntries(w, entries, a.tonnePrecision())
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "only list entries for this source")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to list (0 for all)")
	return cmd
}

func renderEntries(w io.Writer, entries []*emissions.Entry, tonnePrec int) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSOURCE\tPERIOD\tSCOPE\tACTIVITY\tTCO2E\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ID, e.SourceID, e.Period, int(e.Scope),
			formatValue(e.ActivityValue, e.ActivityUnit),
			emissions.FormatFloat(e.TotalTCO2e, tonnePrec),
			e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
