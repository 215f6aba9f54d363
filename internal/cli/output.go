package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/aretw0/stagehand/internal/presentation/tui"
	"github.com/aretw0/stagehand/internal/todo"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/sanity-io/litter"
)

// Format selects how a replay result is written.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatDump     Format = "dump"
)

var todoColumns = []tui.Column[todo.Todo]{
	{Header: "value", Value: func(t todo.Todo) string { return t.Value }},
	{Header: "revision", Value: func(t todo.Todo) string { return strconv.Itoa(t.Revision) }},
	{Header: "done", Value: func(t todo.Todo) string { return strconv.FormatBool(t.Done) }},
}

type jsonReport struct {
	Session   string                    `json:"session"`
	State     domain.Entries[todo.Todo] `json:"state"`
	Mutations []domain.Action           `json:"mutations"`
}

// WriteResult renders res to w in the given format.
func WriteResult(w io.Writer, res *ReplayResult, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonReport{
			Session:   res.Session,
			State:     res.Output.State,
			Mutations: res.Output.Mutations,
		})

	case FormatDump:
		_, err := fmt.Fprintln(w, litter.Sdump(res.Output))
		return err

	case FormatMarkdown:
		render, err := tui.NewRenderer(0)
		if err != nil {
			return err
		}
		text, err := render(tui.Markdown("Session "+res.Session, res.Output, todoColumns))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err

	default:
		return writeText(w, res)
	}
}

func writeText(w io.Writer, res *ReplayResult) error {
	out := res.Output
	fmt.Fprintf(w, "session %s\n", res.Session)
	fmt.Fprintf(w, "confirmed (%d):\n", len(out.State))
	for _, id := range out.State.IDs() {
		t := out.State[id]
		fmt.Fprintf(w, "  %s  %q  rev=%d done=%t\n", id, t.Value, t.Revision, t.Done)
	}
	fmt.Fprintf(w, "pending (%d):\n", len(out.Mutations))
	for _, m := range out.Mutations {
		fmt.Fprintf(w, "  %s  %s  %s\n", m.ID(), m.Type(), tui.Badges(m.Transition, termenv.Ascii))
	}
	return nil
}

// WriteMetrics prints one line per sample.
func WriteMetrics(w io.Writer, res *ReplayResult) {
	for _, s := range res.Metrics {
		fmt.Fprintf(w, "%s %g\n", s.Key(), s.Value)
	}
}
