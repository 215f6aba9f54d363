package domain

import (
	"fmt"
	"strings"
)

// Operation is the lifecycle step a transition action represents.
// The numeric values are part of the wire format and must stay stable.
type Operation int

const (
	OperationStage  Operation = 0
	OperationCommit Operation = 1
	OperationStash  Operation = 2
	OperationFail   Operation = 3
)

var operationNames = [...]string{
	OperationStage:  "stage",
	OperationCommit: "commit",
	OperationStash:  "stash",
	OperationFail:   "fail",
}

// Operations lists every operation in wire order.
func Operations() []Operation {
	return []Operation{OperationStage, OperationCommit, OperationStash, OperationFail}
}

// Valid reports whether o is one of the four known operations.
func (o Operation) Valid() bool {
	return o >= OperationStage && o <= OperationFail
}

func (o Operation) String() string {
	if !o.Valid() {
		return fmt.Sprintf("operation(%d)", int(o))
	}
	return operationNames[o]
}

// ParseOperation converts a type suffix ("stage", "commit", ...) into an Operation.
func ParseOperation(name string) (Operation, error) {
	for _, op := range Operations() {
		if operationNames[op] == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// Transition identifies one optimistic attempt and carries the flags the engine computes for it.
type Transition struct {
	ID        string    `json:"id"`
	Operation Operation `json:"operation"`
	Conflict  bool      `json:"conflict"`
	Failed    bool      `json:"failed"`
}

// NamespaceSeparator joins namespace segments and the operation suffix in action types.
const NamespaceSeparator = "::"

// Namespace groups one stage/commit/fail/stash quadruple, e.g. "todos::add".
// Segments are separated by NamespaceSeparator.
type Namespace string

// ParseNamespace validates a namespace: it must be non-empty and have no empty segment.
func ParseNamespace(raw string) (Namespace, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidNamespace)
	}
	for _, segment := range strings.Split(raw, NamespaceSeparator) {
		if strings.TrimSpace(segment) == "" {
			return "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidNamespace, raw)
		}
	}
	return Namespace(raw), nil
}

// Segments returns the namespace split on NamespaceSeparator.
func (n Namespace) Segments() []string {
	if n == "" {
		return nil
	}
	return strings.Split(string(n), NamespaceSeparator)
}

// Within reports whether n equals scope or is nested below it, segment by segment.
// "todos::add" is within "todos", "todoslist::add" is not.
func (n Namespace) Within(scope Namespace) bool {
	inner, outer := n.Segments(), scope.Segments()
	if len(outer) == 0 || len(inner) < len(outer) {
		return false
	}
	for i := range outer {
		if inner[i] != outer[i] {
			return false
		}
	}
	return true
}

// Kind is the tagged-union key of a transition action: which group and which lifecycle step.
type Kind struct {
	Namespace Namespace
	Operation Operation
}

// String renders the wire type tag, e.g. "todos::add::stage".
func (k Kind) String() string {
	return string(k.Namespace) + NamespaceSeparator + k.Operation.String()
}

// ParseKind splits a wire type tag into namespace and operation.
func ParseKind(tag string) (Kind, error) {
	idx := strings.LastIndex(tag, NamespaceSeparator)
	if idx < 0 {
		return Kind{}, fmt.Errorf("%w: type %q has no operation suffix", ErrMalformedAction, tag)
	}
	ns, err := ParseNamespace(tag[:idx])
	if err != nil {
		return Kind{}, err
	}
	op, err := ParseOperation(tag[idx+len(NamespaceSeparator):])
	if err != nil {
		return Kind{}, err
	}
	return Kind{Namespace: ns, Operation: op}, nil
}
