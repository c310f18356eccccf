package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"                                       _                         ", "#818cf8"},
	{"   __ _ _ __ _ __ __ _ _   _ ___  ___| |__   ___ _ __ ___   __ _ ", "#a78bfa"},
	{"  / _` | '__| '__/ _` | | | / __|/ __| '_ \\ / _ \\ '_ ` _ \\ / _` |", "#c084fc"},
	{" | (_| | |  | | | (_| | |_| \\__ \\ (__| | | |  __/ | | | | | (_| |", "#e879f9"},
	{"  \\__,_|_|  |_|  \\__,_|\\__, |___/\\___|_| |_|\\___|_| |_| |_|\\__,_|", "#f472b6"},
	{"                       |___/                                     ", "#fb7185"},
}

// PrintBanner writes the arrayschema banner followed by the version line.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", termenv.String("v"+strings.TrimSpace(version)).Faint())
}
