package domain

import "sort"

// Entries is the confirmed state: entity id to entity.
// Engines treat Entries as immutable and copy before writing.
type Entries[E any] map[string]E

// Get returns the entity stored under id.
func (e Entries[E]) Get(id string) (E, bool) {
	v, ok := e[id]
	return v, ok
}

// Has reports whether id is present.
func (e Entries[E]) Has(id string) bool {
	_, ok := e[id]
	return ok
}

// IDs returns the entity ids in ascending order.
func (e Entries[E]) IDs() []string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a shallow copy. The result is never nil.
func (e Entries[E]) Clone() Entries[E] {
	out := make(Entries[E], len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Output is what an engine returns after each action: the confirmed state and
// the ordered log of pending mutations, at most one per transition id.
// Consumers must not modify either field.
type Output[E any] struct {
	State     Entries[E] `json:"state"`
	Mutations []Action   `json:"mutations"`
}

// NewOutput creates an output with an empty pending log.
func NewOutput[E any](state Entries[E]) Output[E] {
	if state == nil {
		state = Entries[E]{}
	}
	return Output[E]{State: state, Mutations: []Action{}}
}

// Pending returns the log entry for a transition id.
func (o Output[E]) Pending(transitionID string) (Action, bool) {
	for _, m := range o.Mutations {
		if m.ID() == transitionID {
			return m, true
		}
	}
	return Action{}, false
}

// IsOptimistic reports whether a transition is still waiting in the pending log.
func (o Output[E]) IsOptimistic(transitionID string) bool {
	_, ok := o.Pending(transitionID)
	return ok
}

// IsFailed reports whether a pending transition has been marked as failed.
func (o Output[E]) IsFailed(transitionID string) bool {
	m, ok := o.Pending(transitionID)
	return ok && m.Transition.Failed
}

// IsConflicting reports whether a pending transition was staged against a newer confirmed entity.
func (o Output[E]) IsConflicting(transitionID string) bool {
	m, ok := o.Pending(transitionID)
	return ok && m.Transition.Conflict
}
