package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/stagehand/internal/config"
	"github.com/aretw0/stagehand/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Checkpoint.Backend = config.BackendMemory
	return cfg
}

func fileConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Checkpoint.Dir = t.TempDir()
	return cfg
}

func demo(t *testing.T) *Script {
	t.Helper()
	s, err := ParseScript([]byte(demoScript), ".yaml")
	require.NoError(t, err)
	return s
}

func TestReplay(t *testing.T) {
	res, err := Replay(context.Background(), memoryConfig(), demo(t), ReplayOptions{})
	require.NoError(t, err)

	assert.Equal(t, "demo", res.Session)
	assert.Equal(t, todo.Todo{ID: "2", Value: "eggs", Revision: 1}, res.Output.State["2"])
	assert.Equal(t, "milk", res.Output.State["1"].Value)

	require.Len(t, res.Output.Mutations, 1)
	assert.True(t, res.Output.IsConflicting("e"), "edit at the same revision conflicts")
	assert.True(t, res.Output.IsFailed("e"))

	values := map[string]float64{}
	for _, s := range res.Metrics {
		values[s.Key()] = s.Value
	}
	assert.Equal(t, 1.0, values[`stagehand_pending_mutations{namespace="todos"}`])
	assert.Equal(t, 1.0, values[`stagehand_conflicts_total{namespace="todos::edit"}`])
}

func TestReplay_SessionOverride(t *testing.T) {
	res, err := Replay(context.Background(), memoryConfig(), &Script{}, ReplayOptions{Session: "other"})
	require.NoError(t, err)
	assert.Equal(t, "other", res.Session)

	res, err = Replay(context.Background(), memoryConfig(), &Script{}, ReplayOptions{})
	require.NoError(t, err)
	assert.Equal(t, "default", res.Session)
}

func TestReplay_Trace(t *testing.T) {
	var trace bytes.Buffer
	_, err := Replay(context.Background(), memoryConfig(), demo(t), ReplayOptions{Trace: &trace})
	require.NoError(t, err)

	out := trace.String()
	assert.Contains(t, out, "todos::add::stage")
	assert.Contains(t, out, `"staged":["a"]`)
	assert.Contains(t, out, `"added":["2"]`)
	assert.Contains(t, out, "CONFLICT FAILED")
}

func TestReplay_ResumesConfirmedState(t *testing.T) {
	cfg := fileConfig(t)
	ctx := context.Background()

	_, err := Replay(ctx, cfg, demo(t), ReplayOptions{})
	require.NoError(t, err)

	// Initial entries are ignored once a checkpoint exists.
	next := &Script{Session: "demo", Initial: []todo.Todo{{ID: "9", Value: "ignored"}}}
	res, err := Replay(ctx, cfg, next, ReplayOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Output.State, 2)
	assert.Empty(t, res.Output.Mutations, "pending mutations are not persisted")

	res, err = Replay(ctx, cfg, next, ReplayOptions{Fresh: true})
	require.NoError(t, err)
	assert.Len(t, res.Output.State, 1)
	assert.Contains(t, res.Output.State, "9")
}

func TestReplay_InvalidScript(t *testing.T) {
	s := &Script{Steps: []Step{{Group: "add", Op: "explode", ID: "a"}}}
	_, err := Replay(context.Background(), memoryConfig(), s, ReplayOptions{})
	assert.ErrorIs(t, err, ErrInvalidScript)
}

func TestWriteResult(t *testing.T) {
	res, err := Replay(context.Background(), memoryConfig(), demo(t), ReplayOptions{})
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, res, FormatText))
		assert.Contains(t, buf.String(), "confirmed (2):")
		assert.Contains(t, buf.String(), `2  "eggs"  rev=1 done=false`)
		assert.Contains(t, buf.String(), "e  todos::edit::stage  CONFLICT FAILED")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, res, FormatJSON))

		var decoded struct {
			Session   string                       `json:"session"`
			State     map[string]todo.Todo         `json:"state"`
			Mutations []map[string]json.RawMessage `json:"mutations"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "demo", decoded.Session)
		assert.Len(t, decoded.State, 2)
		require.Len(t, decoded.Mutations, 1)
		assert.JSONEq(t, `"todos::edit::stage"`, string(decoded.Mutations[0]["type"]))
	})

	t.Run("dump", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, res, FormatDump))
		assert.Contains(t, buf.String(), `"eggs"`)
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteResult(&buf, res, FormatMarkdown))
		assert.Contains(t, buf.String(), "eggs")
	})
}

func TestWriteMetrics(t *testing.T) {
	res, err := Replay(context.Background(), memoryConfig(), demo(t), ReplayOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteMetrics(&buf, res)
	assert.Contains(t, buf.String(), `stagehand_transitions_total{namespace="todos::add",operation="commit"} 1`)
}
