package tui_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/aretw0/stagehand/internal/presentation/tui"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

type row struct {
	Name string
	Rev  int
}

var columns = []tui.Column[row]{
	{Header: "name", Value: func(r row) string { return r.Name }},
	{Header: "rev", Value: func(r row) string { return strconv.Itoa(r.Rev) }},
}

func TestMarkdown(t *testing.T) {
	out := domain.Output[row]{
		State: domain.Entries[row]{"b": {Name: "x|y", Rev: 2}, "a": {Name: "first", Rev: 1}},
		Mutations: []domain.Action{{
			Namespace:  "rows::add",
			Transition: &domain.Transition{ID: "t1", Operation: domain.OperationStage, Conflict: true, Failed: true},
		}},
	}

	md := tui.Markdown("Replay", out, columns)

	assert.Contains(t, md, "# Replay")
	assert.Contains(t, md, "## Confirmed (2)")
	assert.Contains(t, md, "| id | name | rev |")
	assert.Contains(t, md, "| a | first | 1 |\n| b | x\\|y | 2 |")
	assert.Contains(t, md, "1. `t1` **rows::add::stage** ⚠ conflict ✗ failed")
}

func TestMarkdown_Empty(t *testing.T) {
	md := tui.Markdown("Empty", domain.NewOutput[row](nil), columns)
	assert.Contains(t, md, "_empty_")
	assert.Contains(t, md, "## Pending (0)")
	assert.Contains(t, md, "_none_")
}

func TestBadges_Ascii(t *testing.T) {
	assert.Equal(t, "ok", tui.Badges(&domain.Transition{}, termenv.Ascii))
	assert.Equal(t, "CONFLICT FAILED", tui.Badges(&domain.Transition{Conflict: true, Failed: true}, termenv.Ascii))
	assert.Equal(t, "", tui.Badges(nil, termenv.Ascii))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer(60)
	assert.NoError(t, err)
	got, err := render("# Title\n\nbody")
	assert.NoError(t, err)
	assert.Contains(t, got, "Title")
}
