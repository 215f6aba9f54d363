package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held if the holder dies.
const DefaultLockTTL = 30 * time.Second

// Processor is the engine surface the manager drives.
// Both stagehand.Engine and runtime.Engine satisfy it.
type Processor[E any] interface {
	Namespace() domain.Namespace
	Initial() domain.Output[E]
	Process(current domain.Output[E], action domain.Action) domain.Output[E]
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type config struct {
	store   ports.CheckpointStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*config)

// WithStore enables checkpointing of confirmed state.
func WithStore(store ports.CheckpointStore) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *config) {
		c.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Manager keeps one engine output per session key and serialises dispatch per key.
// It uses reference counting to garbage collect unused locks.
type Manager[E any] struct {
	engine Processor[E]
	cfg    config

	mu    sync.Mutex            // Global lock for the locks map
	locks map[string]*lockEntry // Map of active locks

	outMu   sync.RWMutex
	outputs map[string]domain.Output[E]
}

// NewManager creates a session manager around engine.
// Without WithStore, sessions live only in memory.
func NewManager[E any](engine Processor[E], opts ...Option) *Manager[E] {
	cfg := config{
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[E]{
		engine:  engine,
		cfg:     cfg,
		locks:   make(map[string]*lockEntry),
		outputs: make(map[string]domain.Output[E]),
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager[E]) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager[E]) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager[E]) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.cfg.locker != nil {
		unlock, err := m.cfg.locker.Lock(ctx, id, m.cfg.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.cfg.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Open makes a session available for dispatch, restoring confirmed state from
// the store when a checkpoint exists. Opening an open session returns its output.
func (m *Manager[E]) Open(ctx context.Context, id string) (domain.Output[E], error) {
	var out domain.Output[E]
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if existing, ok := m.get(id); ok {
			out = existing
			return nil
		}

		restored, err := m.restore(ctx, id)
		if err != nil {
			return err
		}
		out = restored
		m.put(id, out)
		m.cfg.logger.Debug("Session opened", "session_id", id, "entries", len(out.State))
		return nil
	})
	return out, err
}

func (m *Manager[E]) restore(ctx context.Context, id string) (domain.Output[E], error) {
	if m.cfg.store == nil {
		return m.engine.Initial(), nil
	}

	cp, err := m.cfg.store.Load(ctx, id)
	if errors.Is(err, domain.ErrCheckpointNotFound) {
		return m.engine.Initial(), nil
	}
	if err != nil {
		return domain.Output[E]{}, fmt.Errorf("failed to load checkpoint %s: %w", id, err)
	}

	if cp.Namespace != m.engine.Namespace() {
		return domain.Output[E]{}, fmt.Errorf("checkpoint %s belongs to namespace %q, not %q", id, cp.Namespace, m.engine.Namespace())
	}
	entries, err := domain.CheckpointEntries[E](cp)
	if err != nil {
		return domain.Output[E]{}, fmt.Errorf("failed to decode checkpoint %s: %w", id, err)
	}
	return domain.NewOutput(entries), nil
}

// Dispatch applies actions to the session in order and returns the new output.
// Confirmed state is checkpointed after any commit the engine owns. A failed
// checkpoint is returned wrapped in domain.ErrCheckpointFailed; the in-memory
// output has still advanced. Any other error means no action was applied and
// the current output, if the session is open, is returned unchanged.
func (m *Manager[E]) Dispatch(ctx context.Context, id string, actions ...domain.Action) (domain.Output[E], error) {
	var out domain.Output[E]
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		current, ok := m.get(id)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotOpen, id)
		}

		committed := false
		for _, a := range actions {
			current = m.engine.Process(current, a)
			if a.IsTransition() && a.Transition.Operation == domain.OperationCommit && a.Namespace.Within(m.engine.Namespace()) {
				committed = true
			}
		}
		out = current
		m.put(id, out)

		if committed {
			return m.checkpoint(ctx, id, out)
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrCheckpointFailed) {
		if current, ok := m.get(id); ok {
			out = current
		}
	}
	return out, err
}

func (m *Manager[E]) checkpoint(ctx context.Context, id string, out domain.Output[E]) error {
	if m.cfg.store == nil {
		return nil
	}
	cp, err := domain.NewCheckpoint(m.engine.Namespace(), out.State)
	if err != nil {
		return fmt.Errorf("%w: build %s: %w", domain.ErrCheckpointFailed, id, err)
	}
	if err := m.cfg.store.Save(ctx, id, cp); err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrCheckpointFailed, id, err)
	}
	m.cfg.logger.Debug("Checkpoint saved", "session_id", id, "entries", len(out.State))
	return nil
}

// Snapshot returns the current output of an open session.
func (m *Manager[E]) Snapshot(id string) (domain.Output[E], bool) {
	return m.get(id)
}

// Close checkpoints the session's confirmed state and forgets it.
// Pending mutations are dropped. Closing an unknown session is a no-op.
func (m *Manager[E]) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		out, ok := m.get(id)
		if !ok {
			return nil
		}
		if err := m.checkpoint(ctx, id, out); err != nil {
			return err
		}
		m.outMu.Lock()
		delete(m.outputs, id)
		m.outMu.Unlock()
		return nil
	})
}

// List returns the keys of open sessions in ascending order.
func (m *Manager[E]) List() []string {
	m.outMu.RLock()
	defer m.outMu.RUnlock()

	ids := make([]string, 0, len(m.outputs))
	for id := range m.outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset forgets every open session without checkpointing.
// Stored checkpoints are left untouched.
func (m *Manager[E]) Reset() {
	m.outMu.Lock()
	defer m.outMu.Unlock()
	m.outputs = make(map[string]domain.Output[E])
}

// Store returns the configured checkpoint store, or nil.
func (m *Manager[E]) Store() ports.CheckpointStore {
	return m.cfg.store
}

func (m *Manager[E]) get(id string) (domain.Output[E], bool) {
	m.outMu.RLock()
	defer m.outMu.RUnlock()
	out, ok := m.outputs[id]
	return out, ok
}

func (m *Manager[E]) put(id string, out domain.Output[E]) {
	m.outMu.Lock()
	defer m.outMu.Unlock()
	m.outputs[id] = out
}
