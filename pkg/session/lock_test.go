package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type nopEngine struct{}

func (nopEngine) Namespace() domain.Namespace { return "nop" }
func (nopEngine) Initial() domain.Output[int] { return domain.NewOutput[int](nil) }
func (nopEngine) Process(out domain.Output[int], _ domain.Action) domain.Output[int] {
	return out
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager[int](nopEngine{})
	ctx := context.Background()
	count := 10000

	// Open and close many sessions
	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Open(ctx, sid)
		_ = mgr.Close(ctx, sid)
	}

	// If cleaned up properly, no lock entries remain.
	assert.Empty(t, mgr.locks, "locks leaked after Close")
	assert.Empty(t, mgr.outputs)
}
