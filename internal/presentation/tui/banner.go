package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the powerset ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _ __   _____      _____ _ __ ___  ___| |_ ", "#818cf8"},
		{" | '_ \\ / _ \\ \\ /\\ / / _ \\ '__/ __|/ _ \\ __|", "#a78bfa"},
		{" | |_) | (_) \\ V  V /  __/ |  \\__ \\  __/ |_ ", "#c084fc"},
		{" | .__/ \\___/ \\_/\\_/ \\___|_|  |___/\\___|\\__|", "#e879f9"},
		{" |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(" v"+version).Faint())
	fmt.Fprintln(w)
}
