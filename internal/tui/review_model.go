package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/esgledger/internal/quality"
)

// Key bindings.
const (
	keyQuit       = "q"
	keyCtrlC      = "ctrl+c"
	keyEsc        = "esc"
	keyEnter      = "enter"
	keyAck        = "a"
	keyFlag       = "f"
	keyReset      = "u"
	keyAckAll     = "A"
	keyToggleHelp = "?"
)

// Layout constants.
const (
	colWidthPeriod   = 12
	colWidthValue    = 14
	colWidthSeverity = 8
	colWidthType     = 18
	colWidthStatus   = 12
	colWidthMessage  = 60

	defaultTableHeight = 12
	minTableHeight     = 3
	// chromeHeight covers the summary, table header, detail and help lines.
	chromeHeight = 10
)

// Decision is a reviewer's verdict on one warning.
type Decision int

const (
	// DecisionPending means the warning has not been looked at.
	DecisionPending Decision = iota
	// DecisionAcknowledged means the reviewer accepts the value despite the warning.
	DecisionAcknowledged
	// DecisionFlagged means the reviewer wants the value checked further.
	DecisionFlagged
)

// String returns a human-readable representation of the Decision.
func (d Decision) String() string {
	switch d {
	case DecisionAcknowledged:
		return "acknowledged"
	case DecisionFlagged:
		return "flagged"
	default:
		return "pending"
	}
}

// ReviewItem is one warning raised for one period.
type ReviewItem struct {
	Period   string
	Value    float64
	Unit     string
	Warning  quality.Warning
	Decision Decision
}

// ItemsFromResults lists every warning in results in entry order. A period
// listed more than once appears once.
func ItemsFromResults(entries []quality.PeriodEntry, results map[string]*quality.Result, unit string) []ReviewItem {
	var items []ReviewItem
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		res, ok := results[e.Period]
		if !ok || seen[e.Period] {
			continue
		}
		seen[e.Period] = true
		for _, w := range res.Warnings {
			items = append(items, ReviewItem{Period: e.Period, Value: e.ActivityValue, Unit: unit, Warning: w})
		}
	}
	return items
}

// ReviewModel is the Bubble Tea model for acknowledging validation warnings.
// Up and down move through warnings, a acknowledges, f flags, u resets,
// A acknowledges every pending warning and q or enter finishes.
type ReviewModel struct {
	title    string
	items    []ReviewItem
	table    table.Model
	width    int
	showHelp bool
	done     bool
}

// NewReviewModel creates a review over items.
func NewReviewModel(title string, items []ReviewItem) *ReviewModel {
	m := &ReviewModel{title: title, items: items, showHelp: true}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Period", Width: colWidthPeriod},
			{Title: "Value", Width: colWidthValue},
			{Title: "Severity", Width: colWidthSeverity},
			{Title: "Type", Width: colWidthType},
			{Title: "Status", Width: colWidthStatus},
			{Title: "Message", Width: colWidthMessage},
		}),
		table.WithFocused(true),
		table.WithHeight(min(max(len(items), minTableHeight), defaultTableHeight)),
	)
	s := table.DefaultStyles()
	s.Header = tableHeaderStyle
	s.Selected = tableSelectedStyle
	t.SetStyles(s)
	m.table = t
	m.refreshRows()

	return m
}

// Init implements tea.Model.
func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window resizes.
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(max(msg.Height-chromeHeight, minTableHeight))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case keyQuit, keyCtrlC, keyEsc, keyEnter:
			m.done = true
			return m, tea.Quit
		case keyAck:
			m.decide(DecisionAcknowledged)
			return m, nil
		case keyFlag:
			m.decide(DecisionFlagged)
			return m, nil
		case keyReset:
			m.decide(DecisionPending)
			return m, nil
		case keyAckAll:
			for i := range m.items {
				if m.items[i].Decision == DecisionPending {
					m.items[i].Decision = DecisionAcknowledged
				}
			}
			m.refreshRows()
			return m, nil
		case keyToggleHelp:
			m.showHelp = !m.showHelp
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// decide records d for the selected warning and moves to the next one.
func (m *ReviewModel) decide(d Decision) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return
	}
	m.items[i].Decision = d
	m.refreshRows()
	m.table.MoveDown(1)
}

func (m *ReviewModel) refreshRows() {
	rows := make([]table.Row, len(m.items))
	for i, it := range m.items {
		rows[i] = table.Row{
			it.Period,
			formatValue(it.Value, it.Unit),
			string(it.Warning.Severity),
			string(it.Warning.Type),
			it.Decision.String(),
			truncate(it.Warning.Message, colWidthMessage),
		}
	}
	m.table.SetRows(rows)
}

// Items returns the warnings with their decisions.
func (m *ReviewModel) Items() []ReviewItem {
	return m.items
}

// Done reports whether the reviewer finished the review.
func (m *ReviewModel) Done() bool {
	return m.done
}

// Counts returns how many warnings are pending, acknowledged and flagged.
func (m *ReviewModel) Counts() (pending, acknowledged, flagged int) {
	for _, it := range m.items {
		switch it.Decision {
		case DecisionAcknowledged:
			acknowledged++
		case DecisionFlagged:
			flagged++
		default:
			pending++
		}
	}
	return pending, acknowledged, flagged
}

// AcknowledgedPeriods returns the periods whose warnings were all acknowledged.
func (m *ReviewModel) AcknowledgedPeriods() map[string]bool {
	out := make(map[string]bool)
	open := make(map[string]bool)
	for _, it := range m.items {
		if it.Decision != DecisionAcknowledged {
			open[it.Period] = true
			delete(out, it.Period)
			continue
		}
		if !open[it.Period] {
			out[it.Period] = true
		}
	}
	return out
}

// View renders the summary, the warning table, the selected warning and help.
func (m *ReviewModel) View() string {
	if m.done {
		return ""
	}
	if len(m.items) == 0 {
		return infoStyle.Render("No warnings to review.") + "\n"
	}

	pending, acked, flagged := m.Counts()
	var summary strings.Builder
	summary.WriteString(headerStyle.Render(m.title))
	summary.WriteString("\n")
	summary.WriteString(labelStyle.Render("Warnings: "))
	summary.WriteString(strconv.Itoa(len(m.items)))
	summary.WriteString(labelStyle.Render("  Pending: "))
	summary.WriteString(strconv.Itoa(pending))
	summary.WriteString(labelStyle.Render("  Acknowledged: "))
	summary.WriteString(okStyle.Render(strconv.Itoa(acked)))
	summary.WriteString(labelStyle.Render("  Flagged: "))
	summary.WriteString(warnStyle.Render(strconv.Itoa(flagged)))

	parts := []string{summary.String(), m.table.View(), m.renderDetail()}
	if m.showHelp {
		parts = append(parts, subtleStyle.Render(
			"[↑↓/jk] Navigate  [a] Acknowledge  [f] Flag  [u] Reset  [A] Acknowledge all  [?] Help  [q/Enter] Done"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m *ReviewModel) renderDetail() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return ""
	}
	w := m.items[i].Warning
	detail := severityStyle(w.Severity).Render(fmt.Sprintf("[%s]", w.Type)) + " " + w.Message
	if w.SuggestedAction != "" {
		detail += "\n" + subtleStyle.Render(w.SuggestedAction)
	}
	if m.width > 0 {
		return lipgloss.NewStyle().Width(m.width).Render(detail)
	}
	return detail
}

func formatValue(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func truncate(s string, width int) string {
	const suffix = "..."
	if len(s) <= width {
		return s
	}
	return s[:width-len(suffix)] + suffix
}
