package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/esgledger/internal/quality"
)

// Colors use the 256-color palette.
//
//nolint:gochecknoglobals // Shared styles.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	tableHeaderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				BorderBottom(true).
				Bold(true)
	tableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)

func severityStyle(s quality.Severity) lipgloss.Style {
	switch s {
	case quality.SeverityError:
		return errorStyle
	case quality.SeverityWarning:
		return warnStyle
	default:
		return infoStyle
	}
}
