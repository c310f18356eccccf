package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown for w. Terminals get
// glamour output; anything else gets the markdown unchanged.
func NewRenderer(w io.Writer) func(string) (string, error) {
	if !IsTerminal(w) {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// Status formats a validation outcome line. Colors follow the color profile
// of w, so pipes and files receive plain text.
func Status(w io.Writer, name string, err error) string {
	out := termenv.NewOutput(w)
	if err == nil {
		return out.String("✔ ").Foreground(out.Color("#22c55e")).String() + name + " is valid"
	}
	mark := out.String("✘ ").Foreground(out.Color("#ef4444")).Bold().String()
	return mark + name + ": " + err.Error()
}
