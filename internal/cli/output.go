package cli

import (
	"encoding/json"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/esgledger/internal/config"
	"github.com/rshade/esgledger/internal/quality"
	"github.com/rshade/esgledger/internal/tui"
)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

// kgPrecision is the configured number of decimals for kilogram values.
func (a *app) kgPrecision() int {
	return a.cfg.Output.Precision
}

// tonnePrecision keeps tonne values at the resolution of their kilogram
// counterparts, plus two decimals.
func (a *app) tonnePrecision() int {
	return a.cfg.Output.Precision + 2
}

func (a *app) jsonOutput() bool {
	return a.output == config.FormatJSON
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
}

// styles renders text with color on a terminal and unchanged elsewhere.
type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	ok    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !tui.IsWriterTerminal(w) {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		label: lipgloss.NewStyle().Bold(true),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		info:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		err:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

func (s styles) severity(sev quality.Severity) lipgloss.Style {
	switch sev {
	case quality.SeverityError:
		return s.err
	case quality.SeverityWarning:
		return s.warn
	default:
		return s.info
	}
}
