// Package tui renders validation results for people at a terminal: styled
// summaries and an interactive review of warnings built on Bubble Tea.
package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode is how text output is presented.
type OutputMode int

const (
	// OutputModePlain writes unstyled text, for pipes, files and dumb terminals.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes lipgloss-styled text to a terminal.
	OutputModeStyled
	// OutputModeInteractive runs a Bubble Tea program; stdin and stdout are both terminals.
	OutputModeInteractive
)

// String returns a human-readable representation of the OutputMode.
func (m OutputMode) String() string {
	switch m {
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "plain"
	}
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsWriterTerminal reports whether w is a terminal. Buffers never are.
func IsWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return IsTerminal(f)
	}
	return false
}

func isReaderTerminal(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		return IsTerminal(f)
	}
	return false
}

// DetectOutputMode picks the richest mode out and in support. noInteractive
// caps the result at styled. TERM=dumb and CI environments never go
// interactive; NO_COLOR and TERM=dumb force plain.
func DetectOutputMode(out io.Writer, in io.Reader, noInteractive bool) OutputMode {
	if !IsWriterTerminal(out) || os.Getenv("TERM") == "dumb" || os.Getenv("NO_COLOR") != "" {
		return OutputModePlain
	}
	if noInteractive || os.Getenv("CI") != "" || !isReaderTerminal(in) {
		return OutputModeStyled
	}
	return OutputModeInteractive
}
