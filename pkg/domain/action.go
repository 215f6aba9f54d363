package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Empty is the default payload of commit, stash and fail actions. It encodes as {}.
type Empty struct{}

// Action is a domain action. Transition actions carry exactly one Transition;
// plain actions (Transition == nil) pass through the engine untouched.
//
// Actions are values: helpers such as WithFlags return a copy and never
// modify the receiver's Transition.
type Action struct {
	Namespace  Namespace
	Payload    any
	Err        error
	Transition *Transition
}

// Plain builds an action that carries no transition metadata.
func Plain(tag string, payload any) Action {
	return Action{Namespace: Namespace(tag), Payload: payload}
}

// IsTransition reports whether the action carries transition metadata.
func (a Action) IsTransition() bool {
	return a.Transition != nil
}

// ID returns the transition id, or "" for plain actions.
func (a Action) ID() string {
	if a.Transition == nil {
		return ""
	}
	return a.Transition.ID
}

// Kind returns the (namespace, operation) key. Only meaningful for transition actions.
func (a Action) Kind() Kind {
	if a.Transition == nil {
		return Kind{Namespace: a.Namespace}
	}
	return Kind{Namespace: a.Namespace, Operation: a.Transition.Operation}
}

// Type renders the wire type tag.
func (a Action) Type() string {
	if a.Transition == nil {
		return string(a.Namespace)
	}
	return a.Kind().String()
}

// Is reports whether a is a transition of namespace ns with operation op.
func (a Action) Is(ns Namespace, op Operation) bool {
	return a.Transition != nil && a.Namespace == ns && a.Transition.Operation == op
}

// WithFlags returns a copy of a with the given conflict and failed flags.
func (a Action) WithFlags(conflict, failed bool) Action {
	if a.Transition == nil {
		return a
	}
	t := *a.Transition
	t.Conflict = conflict
	t.Failed = failed
	a.Transition = &t
	return a
}

type wireAction struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Error   *string         `json:"error,omitempty"`
	Meta    *wireMeta       `json:"meta,omitempty"`
}

type wireMeta struct {
	Transition *Transition `json:"transition"`
}

// MarshalJSON encodes the action in its wire shape.
func (a Action) MarshalJSON() ([]byte, error) {
	payload := a.Payload
	if payload == nil {
		payload = Empty{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload of %s: %w", a.Type(), err)
	}

	w := wireAction{Type: a.Type(), Payload: raw}
	if a.Err != nil {
		msg := a.Err.Error()
		w.Error = &msg
	}
	if a.Transition != nil {
		t := *a.Transition
		w.Meta = &wireMeta{Transition: &t}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape. The payload is decoded into generic JSON
// values; use transition.DecodePayload to obtain a typed payload.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	var payload any
	if len(w.Payload) > 0 {
		if err := json.Unmarshal(w.Payload, &payload); err != nil {
			return fmt.Errorf("%w: payload: %v", ErrMalformedAction, err)
		}
	}

	var actionErr error
	if w.Error != nil {
		actionErr = errors.New(*w.Error)
	}

	if w.Meta == nil || w.Meta.Transition == nil {
		*a = Action{Namespace: Namespace(w.Type), Payload: payload, Err: actionErr}
		return nil
	}

	kind, err := ParseKind(w.Type)
	if err != nil {
		return err
	}
	t := *w.Meta.Transition
	if t.ID == "" {
		return fmt.Errorf("%w: %s has an empty transition id", ErrMalformedAction, w.Type)
	}
	if !t.Operation.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownOperation, int(t.Operation))
	}
	if t.Operation != kind.Operation {
		return fmt.Errorf("%w: type %s disagrees with operation %s", ErrMalformedAction, w.Type, t.Operation)
	}

	*a = Action{Namespace: kind.Namespace, Payload: payload, Err: actionErr, Transition: &t}
	return nil
}
