// Package merge implements the keyed upsert used to apply entities to confirmed state.
//
// Every method is pure: the input state is never modified and identical inputs
// always produce identical outputs, so the same Strategy serves tentative
// (conflict checking) and final (commit) application.
package merge

import (
	"github.com/aretw0/stagehand/pkg/domain"
)

// Strategy is a keyed upsert with a caller-supplied ordering predicate.
//
// isNewer(existing, incoming) decides whether incoming may replace existing.
// Tie handling is entirely up to the predicate: with a strict "greater than"
// on revisions, equal revisions are not newer and therefore conflict.
type Strategy[E any] struct {
	idOf    func(E) string
	isNewer func(existing, incoming E) bool
}

// New creates a Strategy. It panics if either function is nil.
func New[E any](idOf func(E) string, isNewer func(existing, incoming E) bool) *Strategy[E] {
	if idOf == nil || isNewer == nil {
		panic("merge: idOf and isNewer are required")
	}
	return &Strategy[E]{idOf: idOf, isNewer: isNewer}
}

// ID extracts the entity id.
func (s *Strategy[E]) ID(entity E) string {
	return s.idOf(entity)
}

// IsNewer evaluates the ordering predicate.
func (s *Strategy[E]) IsNewer(existing, incoming E) bool {
	return s.isNewer(existing, incoming)
}

// Create inserts entity under its id. An existing entry is overwritten.
func (s *Strategy[E]) Create(state domain.Entries[E], entity E) domain.Entries[E] {
	next := state.Clone()
	next[s.idOf(entity)] = entity
	return next
}

// Update replaces an existing entity only when incoming is newer.
// Unknown ids and refused writes return state unchanged.
func (s *Strategy[E]) Update(state domain.Entries[E], entity E) domain.Entries[E] {
	id := s.idOf(entity)
	existing, ok := state[id]
	if !ok || !s.isNewer(existing, entity) {
		return state
	}
	next := state.Clone()
	next[id] = entity
	return next
}

// Remove drops id from state. Unknown ids return state unchanged.
func (s *Strategy[E]) Remove(state domain.Entries[E], id string) domain.Entries[E] {
	if _, ok := state[id]; !ok {
		return state
	}
	next := state.Clone()
	delete(next, id)
	return next
}

// Check reports whether an entity with the same id exists in state and, if so,
// whether incoming would be refused by the ordering predicate.
func (s *Strategy[E]) Check(state domain.Entries[E], incoming E) (exists, conflict bool) {
	existing, ok := state[s.idOf(incoming)]
	if !ok {
		return false, false
	}
	return true, !s.isNewer(existing, incoming)
}
