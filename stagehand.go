package stagehand

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/stagehand/internal/runtime"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/merge"
)

// Context is what a domain operation receives for each transition action.
type Context[E any] = runtime.Context[E]

// Operation is the caller's reducer for one namespace. Returning nil leaves
// confirmed state unchanged.
type Operation[E any] = runtime.Operation[E]

// Engine is the high-level entry point for the stagehand library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine[E any] struct {
	runtime *runtime.Engine[E]
}

type options struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*options)

// WithLifecycleHooks registers observability hooks. Repeated calls are chained.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = domain.ChainHooks(o.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New initializes an engine reacting to transitions within namespace.
// initial may be nil for an empty confirmed state.
func New[E any](namespace string, initial domain.Entries[E], strategy *merge.Strategy[E], operation Operation[E], opts ...Option) (*Engine[E], error) {
	ns, err := domain.ParseNamespace(namespace)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if strategy == nil {
		return nil, fmt.Errorf("engine %s: merge strategy is required", ns)
	}
	if operation == nil {
		return nil, fmt.Errorf("engine %s: operation is required", ns)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// Ensure logger is initialized so we don't pass nil to the runtime
	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return &Engine[E]{
		runtime: runtime.NewEngine(ns, initial, strategy, operation,
			runtime.WithLifecycleHooks(o.hooks),
			runtime.WithLogger(o.logger),
		),
	}, nil
}

// Namespace returns the namespace the engine reacts to.
func (e *Engine[E]) Namespace() domain.Namespace {
	return e.runtime.Namespace()
}

// Initial returns the starting output.
func (e *Engine[E]) Initial() domain.Output[E] {
	return e.runtime.Initial()
}

// Owns reports whether the engine reacts to action.
func (e *Engine[E]) Owns(action domain.Action) bool {
	return e.runtime.Owns(action)
}

// Process applies a single action.
func (e *Engine[E]) Process(current domain.Output[E], action domain.Action) domain.Output[E] {
	return e.runtime.Process(current, action)
}

// Reduce applies actions in order, starting from current.
func (e *Engine[E]) Reduce(current domain.Output[E], actions ...domain.Action) domain.Output[E] {
	for _, a := range actions {
		current = e.runtime.Process(current, a)
	}
	return current
}
