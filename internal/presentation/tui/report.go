package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Column describes one table column of the confirmed state.
type Column[E any] struct {
	Header string
	Value  func(E) string
}

// Markdown renders an output as a markdown document: a table of confirmed
// entries (sorted by id) followed by the pending log in order.
func Markdown[E any](title string, out domain.Output[E], columns []Column[E]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "## Confirmed (%d)\n\n", len(out.State))
	if len(out.State) == 0 {
		b.WriteString("_empty_\n\n")
	} else {
		headers := make([]string, 0, len(columns)+1)
		headers = append(headers, "id")
		for _, c := range columns {
			headers = append(headers, c.Header)
		}
		b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")

		for _, id := range out.State.IDs() {
			entity := out.State[id]
			cells := []string{escape(id)}
			for _, c := range columns {
				cells = append(cells, escape(c.Value(entity)))
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Pending (%d)\n\n", len(out.Mutations))
	if len(out.Mutations) == 0 {
		b.WriteString("_none_\n")
		return b.String()
	}
	for i, m := range out.Mutations {
		fmt.Fprintf(&b, "%d. `%s` **%s** %s\n", i+1, m.ID(), m.Type(), strings.Join(flagNames(m.Transition), " "))
	}
	return b.String()
}

// Badges renders the flags of a transition as coloured labels for plain output.
// An unflagged transition yields "ok".
func Badges(t *domain.Transition, p termenv.Profile) string {
	if t == nil {
		return ""
	}
	var parts []string
	if t.Conflict {
		parts = append(parts, p.String("CONFLICT").Foreground(p.Color("#f59e0b")).Bold().String())
	}
	if t.Failed {
		parts = append(parts, p.String("FAILED").Foreground(p.Color("#ef4444")).Bold().String())
	}
	if len(parts) == 0 {
		return p.String("ok").Foreground(p.Color("#22c55e")).String()
	}
	return strings.Join(parts, " ")
}

func flagNames(t *domain.Transition) []string {
	var names []string
	if t == nil {
		return names
	}
	if t.Conflict {
		names = append(names, "⚠ conflict")
	}
	if t.Failed {
		names = append(names, "✗ failed")
	}
	return names
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
