package transition

import (
	"fmt"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/google/uuid"
)

// Prepared is what a payload builder returns.
type Prepared struct {
	Payload any
	Err     error
}

// Builders holds the payload builders of a group.
// S is the argument type of Stage, C the argument type of Commit.
type Builders[S, C any] struct {
	// Stage defaults to Identity[S].
	Stage func(S) Prepared
	// Commit defaults to an empty payload; its argument is then ignored.
	Commit func(C) Prepared
	// Fail defaults to an empty payload with the error attached.
	Fail func(error) Prepared
	// Stash defaults to an empty payload.
	Stash func() Prepared
}

// Identity returns a builder that uses its argument as the payload.
func Identity[T any]() func(T) Prepared {
	return func(v T) Prepared {
		return Prepared{Payload: v}
	}
}

func emptyPayload() Prepared {
	return Prepared{Payload: domain.Empty{}}
}

func errorPayload(err error) Prepared {
	return Prepared{Payload: domain.Empty{}, Err: err}
}

// Group produces the stage/commit/fail/stash actions of one namespace.
type Group[S, C any] struct {
	namespace domain.Namespace
	builders  Builders[S, C]
}

// New creates a Group for namespace, filling in default builders.
func New[S, C any](namespace string, builders Builders[S, C]) (*Group[S, C], error) {
	ns, err := domain.ParseNamespace(namespace)
	if err != nil {
		return nil, fmt.Errorf("transition group: %w", err)
	}

	if builders.Stage == nil {
		builders.Stage = Identity[S]()
	}
	if builders.Commit == nil {
		builders.Commit = func(C) Prepared { return emptyPayload() }
	}
	if builders.Fail == nil {
		builders.Fail = errorPayload
	}
	if builders.Stash == nil {
		builders.Stash = emptyPayload
	}

	return &Group[S, C]{namespace: ns, builders: builders}, nil
}

// Must panics if New returned an error. Intended for package-level groups.
func Must[S, C any](g *Group[S, C], err error) *Group[S, C] {
	if err != nil {
		panic(err)
	}
	return g
}

// Namespace returns the group's namespace.
func (g *Group[S, C]) Namespace() domain.Namespace {
	return g.namespace
}

// Kind returns the tagged-union key for one of the group's operations.
func (g *Group[S, C]) Kind(op domain.Operation) domain.Kind {
	return domain.Kind{Namespace: g.namespace, Operation: op}
}

// Stage builds the optimistic mutation for transition id.
func (g *Group[S, C]) Stage(id string, in S) domain.Action {
	return g.build(id, domain.OperationStage, g.builders.Stage(in))
}

// Commit builds the authority's confirmation for transition id.
func (g *Group[S, C]) Commit(id string, in C) domain.Action {
	return g.build(id, domain.OperationCommit, g.builders.Commit(in))
}

// Fail builds the failure of transition id.
func (g *Group[S, C]) Fail(id string, err error) domain.Action {
	return g.build(id, domain.OperationFail, g.builders.Fail(err))
}

// Stash builds the discard of transition id.
func (g *Group[S, C]) Stash(id string) domain.Action {
	return g.build(id, domain.OperationStash, g.builders.Stash())
}

// Owns reports whether action is a transition of this group, whatever its operation.
func (g *Group[S, C]) Owns(action domain.Action) bool {
	return action.IsTransition() && action.Namespace == g.namespace
}

// Match reports whether action is a COMMIT of this group.
func (g *Group[S, C]) Match(action domain.Action) bool {
	return action.Is(g.namespace, domain.OperationCommit)
}

func (g *Group[S, C]) build(id string, op domain.Operation, p Prepared) domain.Action {
	payload := p.Payload
	if payload == nil {
		payload = domain.Empty{}
	}
	return domain.Action{
		Namespace: g.namespace,
		Payload:   payload,
		Err:       p.Err,
		Transition: &domain.Transition{
			ID:        id,
			Operation: op,
			Conflict:  false,
			Failed:    false,
		},
	}
}

// NewID returns a fresh random transition id.
func NewID() string {
	return uuid.NewString()
}
