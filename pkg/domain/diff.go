package domain

import (
	"reflect"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// OutputDiff represents the changes between two outputs of the same engine.
// It is designed to be serialized to JSON for step-by-step traces.
type OutputDiff struct {
	// Added, Removed and Changed list confirmed entity ids.
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`

	// Staged lists transition ids that entered the pending log.
	Staged []string `json:"staged,omitempty"`
	// Resolved lists transition ids that left the pending log (commit or stash).
	Resolved []string `json:"resolved,omitempty"`
	// Flagged lists transition ids still pending whose payload or flags changed.
	Flagged []string `json:"flagged,omitempty"`
}

// Diff calculates the difference between oldOut and newOut.
func Diff[E any](oldOut, newOut Output[E]) OutputDiff {
	var d OutputDiff

	oldIDs := mapset.NewSetFromMapKeys(map[string]E(oldOut.State))
	newIDs := mapset.NewSetFromMapKeys(map[string]E(newOut.State))

	d.Added = sorted(newIDs.Difference(oldIDs))
	d.Removed = sorted(oldIDs.Difference(newIDs))
	for _, id := range sorted(oldIDs.Intersect(newIDs)) {
		if !reflect.DeepEqual(oldOut.State[id], newOut.State[id]) {
			d.Changed = append(d.Changed, id)
		}
	}

	oldPending := pendingByID(oldOut.Mutations)
	newPending := pendingByID(newOut.Mutations)
	oldTx := mapset.NewSetFromMapKeys(oldPending)
	newTx := mapset.NewSetFromMapKeys(newPending)

	d.Staged = sorted(newTx.Difference(oldTx))
	d.Resolved = sorted(oldTx.Difference(newTx))
	for _, id := range sorted(oldTx.Intersect(newTx)) {
		if !reflect.DeepEqual(oldPending[id], newPending[id]) {
			d.Flagged = append(d.Flagged, id)
		}
	}

	return d
}

// IsEmpty checks if the diff contains any actionable changes.
func (d OutputDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0 &&
		len(d.Staged) == 0 &&
		len(d.Resolved) == 0 &&
		len(d.Flagged) == 0
}

func pendingByID(log []Action) map[string]Action {
	out := make(map[string]Action, len(log))
	for _, m := range log {
		out[m.ID()] = m
	}
	return out
}

func sorted(s mapset.Set[string]) []string {
	if s.Cardinality() == 0 {
		return nil
	}
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
