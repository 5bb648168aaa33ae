package tui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/esgledger/internal/quality"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleItems() []ReviewItem {
	entries := []quality.PeriodEntry{
		{Period: "Jan", ActivityValue: 130},
		{Period: "Feb", ActivityValue: 100},
		{Period: "Mar", ActivityValue: 250},
		{Period: "Jan", ActivityValue: 130},
	}
	results := map[string]*quality.Result{
		"Jan": {Warnings: []quality.Warning{
			{Type: quality.WarningAnomalyHigh, Severity: quality.SeverityWarning, Message: "Value is 30.0% higher"},
			{Type: quality.WarningSuspiciousPattern, Severity: quality.SeverityError, Message: "Extreme outlier",
				SuggestedAction: "Check for unit errors"},
		}},
		"Feb": {Warnings: []quality.Warning{}},
		"Mar": {Warnings: []quality.Warning{
			{Type: quality.WarningOutOfRange, Severity: quality.SeverityWarning, Message: "Value exceeds the maximum"},
		}},
	}
	return ItemsFromResults(entries, results, "kWh")
}

func TestItemsFromResults(t *testing.T) {
	items := sampleItems()
	require.Len(t, items, 3, "clean and repeated periods add nothing")
	assert.Equal(t, "Jan", items[0].Period)
	assert.Equal(t, quality.WarningSuspiciousPattern, items[1].Warning.Type)
	assert.Equal(t, "Mar", items[2].Period)
	for _, it := range items {
		assert.Equal(t, DecisionPending, it.Decision)
		assert.Equal(t, "kWh", it.Unit)
	}
}

func TestReviewModel_Decisions(t *testing.T) {
	m := NewReviewModel("Review boiler-1", sampleItems())

	m.Update(runes(keyAck))
	m.Update(runes(keyFlag))
	m.Update(runes(keyAck))

	items := m.Items()
	assert.Equal(t, DecisionAcknowledged, items[0].Decision)
	assert.Equal(t, DecisionFlagged, items[1].Decision)
	assert.Equal(t, DecisionAcknowledged, items[2].Decision)

	pending, acked, flagged := m.Counts()
	assert.Equal(t, 0, pending)
	assert.Equal(t, 2, acked)
	assert.Equal(t, 1, flagged)
	assert.Equal(t, map[string]bool{"Mar": true}, m.AcknowledgedPeriods())
}

func TestReviewModel_NavigateAndReset(t *testing.T) {
	m := NewReviewModel("Review", sampleItems())

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(runes(keyFlag))
	assert.Equal(t, DecisionFlagged, m.Items()[1].Decision)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(runes(keyReset))
	assert.Equal(t, DecisionPending, m.Items()[1].Decision)

	m.Update(runes(keyAckAll))
	_, acked, _ := m.Counts()
	assert.Equal(t, 3, acked)
	assert.Equal(t, map[string]bool{"Jan": true, "Mar": true}, m.AcknowledgedPeriods())
}

func TestReviewModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", runes(keyQuit)},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewReviewModel("Review", sampleItems())
			_, cmd := m.Update(tt.msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.True(t, m.Done())
			assert.Empty(t, m.View())
			assert.Empty(t, m.AcknowledgedPeriods(), "pending warnings are not acknowledged")
		})
	}
}

func TestReviewModel_View(t *testing.T) {
	m := NewReviewModel("Review boiler-1", sampleItems())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	for _, want := range []string{"Review boiler-1", "Warnings: 3", "anomaly_high", "130 kWh", "pending", "[a] Acknowledge"} {
		assert.Contains(t, view, want)
	}

	m.Update(runes(keyToggleHelp))
	assert.NotContains(t, m.View(), "[a] Acknowledge")

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, m.View(), "Check for unit errors")

	empty := NewReviewModel("Review", nil)
	assert.Contains(t, empty.View(), "No warnings to review")
	assert.Nil(t, empty.Init())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 2), 10))
}

func TestDetectOutputMode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, OutputModePlain, DetectOutputMode(&buf, strings.NewReader(""), false))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})
	assert.Equal(t, OutputModePlain, DetectOutputMode(w, r, false), "pipes are not terminals")
	assert.False(t, IsWriterTerminal(&buf))
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "plain", OutputModePlain.String())
	assert.Equal(t, "styled", OutputModeStyled.String())
	assert.Equal(t, "interactive", OutputModeInteractive.String())
	assert.Equal(t, "flagged", DecisionFlagged.String())
}
