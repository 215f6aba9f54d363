package todo_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/stagehand/internal/todo"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTodo_AddEditDelete(t *testing.T) {
	eng, err := todo.NewEngine(nil)
	require.NoError(t, err)

	out := eng.Reduce(eng.Initial(),
		todo.Add.Stage("a", todo.Todo{ID: "1", Value: "milk"}),
		todo.Add.Commit("a", todo.Todo{ID: "1", Value: "milk", Revision: 1}),
		todo.Edit.Stage("e", todo.EditPayload{ID: "1", Update: todo.Patch{Done: ptr(true), Revision: 2}}),
	)
	require.True(t, out.IsOptimistic("e"))
	assert.False(t, out.IsConflicting("e"))
	assert.False(t, out.State["1"].Done, "staged edits are not confirmed")

	out = eng.Reduce(out, todo.Edit.Commit("e", todo.EditPayload{ID: "1", Update: todo.Patch{Done: ptr(true), Revision: 2}}))
	assert.Equal(t, todo.Todo{ID: "1", Value: "milk", Revision: 2, Done: true}, out.State["1"])

	out = eng.Reduce(out, todo.Delete.Stage("d", "1"), todo.Delete.Commit("d", "1"))
	assert.Empty(t, out.State)
	assert.Empty(t, out.Mutations)
}

func TestTodo_StaleEditConflicts(t *testing.T) {
	eng, err := todo.NewEngine(domain.Entries[todo.Todo]{"1": {ID: "1", Value: "milk", Revision: 3}})
	require.NoError(t, err)

	out := eng.Reduce(eng.Initial(),
		todo.Edit.Stage("e", todo.EditPayload{ID: "1", Update: todo.Patch{Value: ptr("oat milk"), Revision: 3}}),
		todo.Edit.Fail("e", errors.New("409")),
	)

	assert.True(t, out.IsConflicting("e"))
	assert.True(t, out.IsFailed("e"))
	assert.Equal(t, "milk", out.State["1"].Value)
}

func TestTodo_EditUnknownIsSkipped(t *testing.T) {
	eng, err := todo.NewEngine(nil)
	require.NoError(t, err)

	out := eng.Process(eng.Initial(), todo.Edit.Stage("e", todo.EditPayload{ID: "ghost", Update: todo.Patch{Revision: 1}}))
	assert.Empty(t, out.Mutations)
}

func TestTodo_WirePayloads(t *testing.T) {
	eng, err := todo.NewEngine(domain.Entries[todo.Todo]{"1": {ID: "1", Value: "milk", Revision: 1}})
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		want todo.Todo
	}{
		{
			"Add",
			`{"type":"todos::add::commit","payload":{"todo":{"id":"2","value":"eggs","revision":1}},"meta":{"transition":{"id":"t","operation":1,"conflict":false,"failed":false}}}`,
			todo.Todo{ID: "2", Value: "eggs", Revision: 1},
		},
		{
			"Edit",
			`{"type":"todos::edit::commit","payload":{"id":"1","update":{"done":true,"revision":2}},"meta":{"transition":{"id":"t","operation":1,"conflict":false,"failed":false}}}`,
			todo.Todo{ID: "1", Value: "milk", Revision: 2, Done: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a domain.Action
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &a))
			assert.True(t, todo.Committed(a))

			out := eng.Process(eng.Initial(), a)
			assert.Equal(t, tt.want, out.State[tt.want.ID])
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	base := todo.Todo{ID: "1", Value: "a", Revision: 1}
	assert.Equal(t, todo.Todo{ID: "1", Value: "a", Revision: 5}, todo.Patch{Revision: 5}.Apply(base))
	assert.Equal(t, todo.Todo{ID: "1", Value: "b", Done: true, Revision: 2}, todo.Patch{Value: ptr("b"), Done: ptr(true), Revision: 2}.Apply(base))
}

func TestCommitted(t *testing.T) {
	assert.True(t, todo.Committed(todo.Delete.Commit("x", "1")))
	assert.False(t, todo.Committed(todo.Delete.Stage("x", "1")))
	assert.False(t, todo.Committed(domain.Plain("todos::add::commit", nil)))
}
