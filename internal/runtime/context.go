package runtime

import (
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/merge"
)

// Context is handed to a domain operation for one action.
// Every method returns a new Entries value; the confirmed state is never modified.
type Context[E any] interface {
	// State returns the confirmed state the operation runs against.
	State() domain.Entries[E]
	// Create inserts or overwrites entity.
	Create(entity E) domain.Entries[E]
	// Update replaces an existing entity when entity is newer.
	Update(entity E) domain.Entries[E]
	// Remove drops the entity stored under id.
	Remove(id string) domain.Entries[E]
}

// Operation is the caller's reducer for transition actions of one namespace.
// It returns the resulting confirmed state; nil means unchanged.
type Operation[E any] func(ctx Context[E], action domain.Action) domain.Entries[E]

// applyContext delegates straight to the merge strategy. Used on COMMIT.
type applyContext[E any] struct {
	state    domain.Entries[E]
	strategy *merge.Strategy[E]
}

func (c *applyContext[E]) State() domain.Entries[E] { return c.state }

func (c *applyContext[E]) Create(entity E) domain.Entries[E] {
	return c.strategy.Create(c.state, entity)
}

func (c *applyContext[E]) Update(entity E) domain.Entries[E] {
	return c.strategy.Update(c.state, entity)
}

func (c *applyContext[E]) Remove(id string) domain.Entries[E] {
	return c.strategy.Remove(c.state, id)
}

// intent is one write a domain operation asked for while staging.
type intent struct {
	id         string
	applicable bool
	conflict   bool
}

// probeContext records intents instead of committing them. Results are still
// computed so operations that chain calls see consistent tentative values.
type probeContext[E any] struct {
	state    domain.Entries[E]
	strategy *merge.Strategy[E]
	intents  []intent
}

func (c *probeContext[E]) State() domain.Entries[E] { return c.state }

func (c *probeContext[E]) Create(entity E) domain.Entries[E] {
	exists, conflict := c.strategy.Check(c.state, entity)
	c.intents = append(c.intents, intent{
		id:         c.strategy.ID(entity),
		applicable: true,
		conflict:   exists && conflict,
	})
	return c.strategy.Create(c.state, entity)
}

func (c *probeContext[E]) Update(entity E) domain.Entries[E] {
	exists, conflict := c.strategy.Check(c.state, entity)
	c.intents = append(c.intents, intent{
		id:         c.strategy.ID(entity),
		applicable: exists,
		conflict:   exists && conflict,
	})
	return c.strategy.Update(c.state, entity)
}

func (c *probeContext[E]) Remove(id string) domain.Entries[E] {
	c.intents = append(c.intents, intent{
		id:         id,
		applicable: c.state.Has(id),
	})
	return c.strategy.Remove(c.state, id)
}

// verdict folds the recorded intents into (applicable, conflict).
func (c *probeContext[E]) verdict() (applicable, conflict bool) {
	for _, in := range c.intents {
		if !in.applicable {
			continue
		}
		applicable = true
		if in.conflict {
			conflict = true
		}
	}
	return applicable, conflict
}
