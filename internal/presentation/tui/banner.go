package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the switchboard ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"               _ _       _     _                         _ ", "#818cf8"},
		{"  _____      _(_) |_ ___| |__ | |__   ___   __ _ _ __ __| |", "#a78bfa"},
		{" / __\\ \\ /\\ / / | __/ __| '_ \\| '_ \\ / _ \\ / _` | '__/ _` |", "#c084fc"},
		{" \\__ \\\\ V  V /| | || (__| | | | |_) | (_) | (_| | | | (_| |", "#e879f9"},
		{" |___/ \\_/\\_/ |_|\\__\\___|_| |_|_.__/ \\___/ \\__,_|_|  \\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
