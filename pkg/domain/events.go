package domain

// IgnoreReason explains why a transition action left the output unchanged.
type IgnoreReason string

const (
	// IgnoredUnknownTransition: FAIL or STASH for an id that has no pending entry.
	IgnoredUnknownTransition IgnoreReason = "unknown_transition"
	// IgnoredNoEffect: STAGE whose domain operation targets nothing that exists or can be created.
	IgnoredNoEffect IgnoreReason = "no_effect"
	// IgnoredUnknownOperation: an operation value outside stage/commit/stash/fail.
	IgnoredUnknownOperation IgnoreReason = "unknown_operation"
)

// TransitionEvent describes one processed transition action.
type TransitionEvent struct {
	// Scope is the namespace of the engine that processed the action.
	Scope        Namespace    `json:"scope"`
	Kind         Kind         `json:"kind"`
	TransitionID string       `json:"transition_id"`
	Conflict     bool         `json:"conflict,omitempty"`
	Failed       bool         `json:"failed,omitempty"`
	Reason       IgnoreReason `json:"reason,omitempty"`
	// Pending is the size of the pending log after the action.
	Pending int `json:"pending"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously inside Process and must not block.
type LifecycleHooks struct {
	OnStage   func(*TransitionEvent)
	OnCommit  func(*TransitionEvent)
	OnFail    func(*TransitionEvent)
	OnStash   func(*TransitionEvent)
	OnIgnored func(*TransitionEvent)
}

// ChainHooks returns hooks that invoke each set in order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	pick := func(get func(LifecycleHooks) func(*TransitionEvent)) func(*TransitionEvent) {
		var fns []func(*TransitionEvent)
		for _, s := range sets {
			if fn := get(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(e *TransitionEvent) {
			for _, fn := range fns {
				fn(e)
			}
		}
	}

	return LifecycleHooks{
		OnStage:   pick(func(h LifecycleHooks) func(*TransitionEvent) { return h.OnStage }),
		OnCommit:  pick(func(h LifecycleHooks) func(*TransitionEvent) { return h.OnCommit }),
		OnFail:    pick(func(h LifecycleHooks) func(*TransitionEvent) { return h.OnFail }),
		OnStash:   pick(func(h LifecycleHooks) func(*TransitionEvent) { return h.OnStash }),
		OnIgnored: pick(func(h LifecycleHooks) func(*TransitionEvent) { return h.OnIgnored }),
	}
}
