package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stagehand/internal/todo"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/transition"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned for scripts that cannot be replayed.
var ErrInvalidScript = errors.New("invalid script")

// Script is a recorded sequence of todo transitions.
type Script struct {
	// Session overrides the configured session key when set.
	Session string      `yaml:"session" json:"session"`
	Initial []todo.Todo `yaml:"initial" json:"initial"`
	Steps   []Step      `yaml:"steps" json:"steps"`
}

// Step is one action of a script.
type Step struct {
	Group   string `yaml:"group" json:"group"` // add | edit | delete
	Op      string `yaml:"op" json:"op"`       // stage | commit | fail | stash
	ID      string `yaml:"id" json:"id"`
	Payload any    `yaml:"payload" json:"payload"`
	Error   string `yaml:"error" json:"error"`
}

// LoadScript reads a YAML or JSON script. Steps without an id get a fresh one.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data, filepath.Ext(path))
}

// ParseScript decodes data; ext selects JSON (".json") or YAML (anything else).
func ParseScript(data []byte, ext string) (*Script, error) {
	var s Script
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
		}
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
		}
	}

	for i := range s.Steps {
		if s.Steps[i].ID == "" {
			s.Steps[i].ID = transition.NewID()
		}
	}
	return &s, nil
}

// Entries returns the initial todos keyed by id.
func (s *Script) Entries() domain.Entries[todo.Todo] {
	entries := make(domain.Entries[todo.Todo], len(s.Initial))
	for _, t := range s.Initial {
		entries[t.ID] = t
	}
	return entries
}

// Actions converts every step, stopping at the first invalid one.
func (s *Script) Actions() ([]domain.Action, error) {
	actions := make([]domain.Action, 0, len(s.Steps))
	for i, step := range s.Steps {
		a, err := step.Action()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// Action builds the transition action the step describes.
func (s Step) Action() (domain.Action, error) {
	op, err := domain.ParseOperation(s.Op)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	switch s.Group {
	case "add":
		return build(todo.Add, op, s)
	case "edit":
		return build(todo.Edit, op, s)
	case "delete":
		return build(todo.Delete, op, s)
	default:
		return domain.Action{}, fmt.Errorf("%w: unknown group %q", ErrInvalidScript, s.Group)
	}
}

func build[S, C any](g *transition.Group[S, C], op domain.Operation, s Step) (domain.Action, error) {
	switch op {
	case domain.OperationStage:
		var in S
		if err := transition.Decode(s.Payload, &in); err != nil {
			return domain.Action{}, fmt.Errorf("%w: stage payload: %v", ErrInvalidScript, err)
		}
		return g.Stage(s.ID, in), nil
	case domain.OperationCommit:
		var in C
		if err := transition.Decode(s.Payload, &in); err != nil {
			return domain.Action{}, fmt.Errorf("%w: commit payload: %v", ErrInvalidScript, err)
		}
		return g.Commit(s.ID, in), nil
	case domain.OperationFail:
		msg := s.Error
		if msg == "" {
			msg = "request failed"
		}
		return g.Fail(s.ID, errors.New(msg)), nil
	default:
		return g.Stash(s.ID), nil
	}
}
