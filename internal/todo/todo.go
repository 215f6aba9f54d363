// Package todo is the reference domain bundled with the CLI: a keyed list of
// todos with add, edit and delete transitions.
package todo

import (
	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/merge"
	"github.com/aretw0/stagehand/pkg/transition"
)

// Namespace is the engine scope; every group lives below it.
const Namespace = "todos"

// Todo is one entry. Revision is assigned by the authority and only grows.
type Todo struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Revision int    `json:"revision"`
	Done     bool   `json:"done"`
}

// AddPayload carries a full todo.
type AddPayload struct {
	Todo Todo `json:"todo"`
}

// Patch is a partial update. Nil fields keep the current value.
type Patch struct {
	Value    *string `json:"value,omitempty"`
	Done     *bool   `json:"done,omitempty"`
	Revision int     `json:"revision"`
}

// Apply returns t with the patch applied.
func (p Patch) Apply(t Todo) Todo {
	if p.Value != nil {
		t.Value = *p.Value
	}
	if p.Done != nil {
		t.Done = *p.Done
	}
	t.Revision = p.Revision
	return t
}

// EditPayload targets one todo by id.
type EditPayload struct {
	ID     string `json:"id"`
	Update Patch  `json:"update"`
}

// DeletePayload names the todo to remove.
type DeletePayload struct {
	ID string `json:"id"`
}

func addPayload(t Todo) transition.Prepared {
	return transition.Prepared{Payload: AddPayload{Todo: t}}
}

func deletePayload(id string) transition.Prepared {
	return transition.Prepared{Payload: DeletePayload{ID: id}}
}

var (
	Add = transition.Must(transition.New(Namespace+"::add", transition.Builders[Todo, Todo]{
		Stage:  addPayload,
		Commit: addPayload,
	}))
	Edit = transition.Must(transition.New(Namespace+"::edit", transition.Builders[EditPayload, EditPayload]{
		Commit: transition.Identity[EditPayload](),
	}))
	Delete = transition.Must(transition.New(Namespace+"::delete", transition.Builders[string, string]{
		Stage:  deletePayload,
		Commit: deletePayload,
	}))
)

// Strategy orders todos by revision; equal revisions conflict.
func Strategy() *merge.Strategy[Todo] {
	return merge.New(
		func(t Todo) string { return t.ID },
		func(existing, incoming Todo) bool { return incoming.Revision > existing.Revision },
	)
}

// Operation applies todo transitions. Undecodable payloads leave state unchanged.
func Operation(ctx stagehand.Context[Todo], action domain.Action) domain.Entries[Todo] {
	switch {
	case Add.Owns(action):
		p, err := transition.DecodePayload[AddPayload](action)
		if err != nil {
			return nil
		}
		return ctx.Create(p.Todo)

	case Edit.Owns(action):
		p, err := transition.DecodePayload[EditPayload](action)
		if err != nil {
			return nil
		}
		current, ok := ctx.State().Get(p.ID)
		if !ok {
			current = Todo{ID: p.ID}
		}
		return ctx.Update(p.Update.Apply(current))

	case Delete.Owns(action):
		p, err := transition.DecodePayload[DeletePayload](action)
		if err != nil {
			return nil
		}
		return ctx.Remove(p.ID)
	}
	return nil
}

// Committed reports whether action is a todo commit of any group.
func Committed(action domain.Action) bool {
	return Add.Match(action) || Edit.Match(action) || Delete.Match(action)
}

// NewEngine builds the todo engine over initial (may be nil).
func NewEngine(initial domain.Entries[Todo], opts ...stagehand.Option) (*stagehand.Engine[Todo], error) {
	return stagehand.New(Namespace, initial, Strategy(), Operation, opts...)
}
