package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___         _      _         _   ", "#818cf8"},
		{" | _ \\___ __ (_)_ __(_)___ _ _| |_ ", "#a78bfa"},
		{" |   / -_) _|| | '_ \\ / -_) ' \\  _|", "#c084fc"},
		{" |_|_\\___\\__||_| .__/_\\___|_||_\\__|", "#e879f9"},
		{"               |_|                 ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors a one-line message: green for ok, red otherwise.
func Status(w io.Writer, ok bool, msg string) {
	out := termenv.NewOutput(w)
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	fmt.Fprintln(w, out.String(msg).Foreground(out.Color(color)).Bold())
}
