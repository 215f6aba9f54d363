package ports

import (
	"context"
	"time"

	"github.com/aretw0/stagehand/pkg/domain"
)

// CheckpointStore persists confirmed state between process restarts.
// Pending mutations are never handed to a store.
type CheckpointStore interface {
	// Save persists the checkpoint under key, replacing any previous one.
	Save(ctx context.Context, key string, cp *domain.Checkpoint) error

	// Load retrieves the checkpoint stored under key.
	// Returns domain.ErrCheckpointNotFound if there is none.
	Load(ctx context.Context, key string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises work on one session key across processes
// sharing the same checkpoint backend.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The lock expires after ttl
	// if the holder never unlocks. The returned UnlockFunc must be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
