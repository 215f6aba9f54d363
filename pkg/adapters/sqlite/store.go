// Package sqlite provides a CheckpointStore backed by a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/ports"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS checkpoints (
	checkpoint_key TEXT PRIMARY KEY,
	namespace TEXT NOT NULL,
	entries_json BLOB NOT NULL,
	saved_at INTEGER NOT NULL
)`

// Store implements ports.CheckpointStore on SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create checkpoints table: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the checkpoint stored under key.
func (s *Store) Save(ctx context.Context, key string, cp *domain.Checkpoint) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("checkpoint key is required")
	}

	entries, err := json.Marshal(cp.Entries)
	if err != nil {
		return fmt.Errorf("marshal checkpoint entries: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO checkpoints (checkpoint_key, namespace, entries_json, saved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(checkpoint_key) DO UPDATE SET
		    namespace = excluded.namespace,
		    entries_json = excluded.entries_json,
		    saved_at = excluded.saved_at`,
		key,
		string(cp.Namespace),
		entries,
		timeToUnixMillis(cp.SavedAt),
	)
	if err != nil {
		return fmt.Errorf("put checkpoint: %w", err)
	}
	return nil
}

// Load retrieves the checkpoint stored under key.
func (s *Store) Load(ctx context.Context, key string) (*domain.Checkpoint, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT namespace, entries_json, saved_at FROM checkpoints WHERE checkpoint_key = ?`,
		strings.TrimSpace(key),
	)

	var (
		namespace string
		entries   []byte
		savedAt   int64
	)
	if err := row.Scan(&namespace, &entries, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}

	cp := &domain.Checkpoint{
		Namespace: domain.Namespace(namespace),
		SavedAt:   unixMillisToTime(savedAt),
	}
	if err := json.Unmarshal(entries, &cp.Entries); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint %s: %w", key, err)
	}
	return cp, nil
}

// Delete removes the checkpoint stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM checkpoints WHERE checkpoint_key = ?`, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// List returns stored keys in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT checkpoint_key FROM checkpoints ORDER BY checkpoint_key`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan checkpoint key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoint keys: %w", err)
	}
	return keys, nil
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ ports.CheckpointStore = (*Store)(nil)
