package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stagehand ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _                    _                 _ ", "#818cf8"},
		{"  ___| |_ __ _  __ _  ___| |__   __ _ _ __ | |", "#a78bfa"},
		{" / __| __/ _` |/ _` |/ _ \\ '_ \\ / _` | '_ \\| |", "#c084fc"},
		{" \\__ \\ || (_| | (_| |  __/ | | | (_| | | | |_|", "#e879f9"},
		{" |___/\\__\\__,_|\\__, |\\___|_| |_|\\__,_|_| |_(_)", "#f472b6"},
		{"               |___/                          ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
