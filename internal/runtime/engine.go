package runtime

import (
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/merge"
)

// Engine reconciles optimistic transitions of one namespace against confirmed state.
//
// Process is synchronous and pure with respect to its inputs: the previous
// Output is never modified and no error is ever returned. Conflicts and
// failures are reported as flags on the pending log entries.
type Engine[E any] struct {
	namespace domain.Namespace
	initial   domain.Entries[E]
	strategy  *merge.Strategy[E]
	operation Operation[E]
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

type engineConfig struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(c *engineConfig) {
		c.hooks = hooks
	}
}

// WithLogger sets the structured logger. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewEngine creates an engine for namespace. initial may be nil.
func NewEngine[E any](namespace domain.Namespace, initial domain.Entries[E], strategy *merge.Strategy[E], operation Operation[E], opts ...EngineOption) *Engine[E] {
	cfg := &engineConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if initial == nil {
		initial = domain.Entries[E]{}
	}

	return &Engine[E]{
		namespace: namespace,
		initial:   initial,
		strategy:  strategy,
		operation: operation,
		hooks:     cfg.hooks,
		logger:    cfg.logger.With("namespace", string(namespace)),
	}
}

// Namespace returns the namespace the engine reacts to.
func (e *Engine[E]) Namespace() domain.Namespace {
	return e.namespace
}

// Initial returns the starting output: initial confirmed state and an empty log.
func (e *Engine[E]) Initial() domain.Output[E] {
	return domain.NewOutput(e.initial.Clone())
}

// Owns reports whether action is a transition inside the engine's namespace.
func (e *Engine[E]) Owns(action domain.Action) bool {
	return action.IsTransition() && action.Namespace.Within(e.namespace)
}

// Process applies one action to current and returns the next output.
// Actions the engine does not own are returned unchanged.
func (e *Engine[E]) Process(current domain.Output[E], action domain.Action) domain.Output[E] {
	if !e.Owns(action) {
		return current
	}
	if current.State == nil {
		current.State = domain.Entries[E]{}
	}

	t := action.Transition
	switch t.Operation {
	case domain.OperationStage:
		return e.stage(current, action)
	case domain.OperationCommit:
		return e.commit(current, action)
	case domain.OperationFail:
		return e.fail(current, action)
	case domain.OperationStash:
		return e.stash(current, action)
	default:
		e.logger.Warn("Unknown transition operation", "transition_id", t.ID, "operation", int(t.Operation))
		e.emit(e.hooks.OnIgnored, action, current, domain.IgnoredUnknownOperation)
		return current
	}
}

func (e *Engine[E]) stage(current domain.Output[E], action domain.Action) domain.Output[E] {
	probe := &probeContext[E]{state: current.State, strategy: e.strategy}
	e.operation(probe, action)

	applicable, conflict := probe.verdict()
	if !applicable {
		e.logger.Debug("Stage skipped", "transition_id", action.ID(), "intents", len(probe.intents))
		e.emit(e.hooks.OnIgnored, action, current, domain.IgnoredNoEffect)
		return current
	}

	entry := action.WithFlags(conflict, false)
	next := domain.Output[E]{State: current.State}
	if i := indexOf(current.Mutations, action.ID()); i >= 0 {
		next.Mutations = slices.Clone(current.Mutations)
		next.Mutations[i] = entry
	} else {
		next.Mutations = append(slices.Clone(current.Mutations), entry)
	}

	e.logger.Debug("Transition staged",
		"transition_id", action.ID(),
		"operation", domain.OperationStage.String(),
		"conflict", conflict,
		"failed", false,
	)
	e.emit(e.hooks.OnStage, entry, next, "")
	return next
}

func (e *Engine[E]) commit(current domain.Output[E], action domain.Action) domain.Output[E] {
	state := e.operation(&applyContext[E]{state: current.State, strategy: e.strategy}, action)
	if state == nil {
		state = current.State
	}

	next := domain.Output[E]{State: state, Mutations: without(current.Mutations, action.ID())}

	e.logger.Debug("Transition committed",
		"transition_id", action.ID(),
		"operation", domain.OperationCommit.String(),
		"entries", len(state),
	)
	e.emit(e.hooks.OnCommit, action, next, "")
	return next
}

func (e *Engine[E]) fail(current domain.Output[E], action domain.Action) domain.Output[E] {
	i := indexOf(current.Mutations, action.ID())
	if i < 0 {
		e.logger.Debug("Fail for unknown transition", "transition_id", action.ID())
		e.emit(e.hooks.OnIgnored, action, current, domain.IgnoredUnknownTransition)
		return current
	}

	existing := current.Mutations[i]
	entry := existing.WithFlags(existing.Transition.Conflict, true)
	next := domain.Output[E]{State: current.State, Mutations: slices.Clone(current.Mutations)}
	next.Mutations[i] = entry

	e.logger.Debug("Transition failed",
		"transition_id", action.ID(),
		"operation", domain.OperationFail.String(),
		"conflict", entry.Transition.Conflict,
		"failed", true,
	)
	e.emit(e.hooks.OnFail, entry, next, "")
	return next
}

func (e *Engine[E]) stash(current domain.Output[E], action domain.Action) domain.Output[E] {
	if indexOf(current.Mutations, action.ID()) < 0 {
		e.logger.Debug("Stash for unknown transition", "transition_id", action.ID())
		e.emit(e.hooks.OnIgnored, action, current, domain.IgnoredUnknownTransition)
		return current
	}

	next := domain.Output[E]{State: current.State, Mutations: without(current.Mutations, action.ID())}

	e.logger.Debug("Transition stashed", "transition_id", action.ID(), "operation", domain.OperationStash.String())
	e.emit(e.hooks.OnStash, action, next, "")
	return next
}

func (e *Engine[E]) emit(hook func(*domain.TransitionEvent), action domain.Action, out domain.Output[E], reason domain.IgnoreReason) {
	if hook == nil {
		return
	}
	hook(&domain.TransitionEvent{
		Scope:        e.namespace,
		Kind:         action.Kind(),
		TransitionID: action.ID(),
		Conflict:     action.Transition.Conflict,
		Failed:       action.Transition.Failed,
		Reason:       reason,
		Pending:      len(out.Mutations),
	})
}

func indexOf(log []domain.Action, id string) int {
	return slices.IndexFunc(log, func(a domain.Action) bool { return a.ID() == id })
}

// without returns a copy of log minus the entry for id. The result is never nil.
func without(log []domain.Action, id string) []domain.Action {
	out := make([]domain.Action, 0, len(log))
	for _, a := range log {
		if a.ID() != id {
			out = append(out, a)
		}
	}
	return out
}
