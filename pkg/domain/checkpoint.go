package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Checkpoint is a serialisable copy of confirmed state.
// Pending mutations are never part of a checkpoint.
type Checkpoint struct {
	Namespace Namespace                  `json:"namespace"`
	Entries   map[string]json.RawMessage `json:"entries"`
	SavedAt   time.Time                  `json:"saved_at"`
}

// NewCheckpoint encodes every confirmed entity as JSON.
func NewCheckpoint[E any](ns Namespace, entries Entries[E]) (*Checkpoint, error) {
	cp := &Checkpoint{
		Namespace: ns,
		Entries:   make(map[string]json.RawMessage, len(entries)),
		SavedAt:   time.Now().UTC(),
	}
	for id, entity := range entries {
		raw, err := json.Marshal(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entity %s: %w", id, err)
		}
		cp.Entries[id] = raw
	}
	return cp, nil
}

// CheckpointEntries decodes a checkpoint back into confirmed state.
func CheckpointEntries[E any](cp *Checkpoint) (Entries[E], error) {
	out := make(Entries[E], len(cp.Entries))
	for id, raw := range cp.Entries {
		var entity E
		if err := json.Unmarshal(raw, &entity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entity %s: %w", id, err)
		}
		out[id] = entity
	}
	return out, nil
}

// Clone returns a deep copy, so stores can hand out checkpoints without sharing buffers.
func (c *Checkpoint) Clone() *Checkpoint {
	out := &Checkpoint{
		Namespace: c.Namespace,
		Entries:   make(map[string]json.RawMessage, len(c.Entries)),
		SavedAt:   c.SavedAt,
	}
	for id, raw := range c.Entries {
		out.Entries[id] = append(json.RawMessage(nil), raw...)
	}
	return out
}
