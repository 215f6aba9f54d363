package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/stagehand/internal/config"
	"github.com/aretw0/stagehand/pkg/adapters/file"
	"github.com/aretw0/stagehand/pkg/adapters/memory"
	"github.com/aretw0/stagehand/pkg/adapters/redis"
	"github.com/aretw0/stagehand/pkg/adapters/sqlite"
	"github.com/aretw0/stagehand/pkg/persistence/middleware"
	"github.com/aretw0/stagehand/pkg/ports"
)

// Backend is an opened checkpoint store plus the locker that goes with it.
// Locker is nil for single-process backends.
type Backend struct {
	Name   string
	Store  ports.CheckpointStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases connections held by the store.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the checkpoint store selected by cfg, wrapped with
// redaction and encryption when configured.
func OpenBackend(cfg config.Checkpoint) (*Backend, error) {
	mws, err := storeMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	b, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

// storeMiddleware redacts before it encrypts.
func storeMiddleware(cfg config.Checkpoint) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}

	active, fallbacks, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

func openStore(cfg config.Checkpoint) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{Name: cfg.Backend, Store: memory.NewStore()}, nil

	case config.BackendFile:
		return &Backend{Name: cfg.Backend, Store: file.New(cfg.Dir)}, nil

	case config.BackendRedis:
		ttl, err := cfg.TTL()
		if err != nil {
			return nil, err
		}
		opts := []redis.Option{redis.WithTTL(ttl)}
		if cfg.RedisPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.RedisPrefix))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		return &Backend{
			Name:   cfg.Backend,
			Store:  store,
			Locker: redis.NewLocker(store.Client(), prefix),
			close:  store.Close,
		}, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{Name: cfg.Backend, Store: store, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Backend)
	}
}
