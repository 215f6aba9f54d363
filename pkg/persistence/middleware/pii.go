package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.CheckpointStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks entity fields whose names
// match any of the patterns before they reach the store. Masked values are
// not recoverable: a restored session sees Mask.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.CheckpointStore) ports.CheckpointStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, key string, cp *domain.Checkpoint) error {
	// Work on a copy; the caller's checkpoint is left untouched.
	masked := &domain.Checkpoint{
		Namespace: cp.Namespace,
		Entries:   make(map[string]json.RawMessage, len(cp.Entries)),
		SavedAt:   cp.SavedAt,
	}
	for id, raw := range cp.Entries {
		out, err := m.mask(raw)
		if err != nil {
			return fmt.Errorf("failed to redact entity %s: %w", id, err)
		}
		masked.Entries[id] = out
	}

	return m.next.Save(ctx, key, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) (*domain.Checkpoint, error) {
	return m.next.Load(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// mask decodes one entity, masks matching keys at any depth and re-encodes it.
// Entities that are not JSON objects are stored unchanged.
func (m *piiMiddleware) mask(raw json.RawMessage) (json.RawMessage, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return raw, nil
	}
	maskMap(obj, m.patterns)
	return json.Marshal(obj)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}

		if m[k] == Mask {
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
