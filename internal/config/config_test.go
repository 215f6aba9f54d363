package config_test

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/stagehand/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"YAML", "stagehand.yaml", "log_level: debug\ncheckpoint:\n  backend: redis\n  redis_ttl: 10m\n"},
		{"JSON", "stagehand.json", `{"log_level":"debug","checkpoint":{"backend":"redis","redis_ttl":"10m"}}`},
		{"TOML", "stagehand.toml", "log_level = \"debug\"\n[checkpoint]\nbackend = \"redis\"\nredis_ttl = \"10m\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "debug", cfg.LogLevel)
			assert.Equal(t, config.BackendRedis, cfg.Checkpoint.Backend)
			ttl, err := cfg.Checkpoint.TTL()
			require.NoError(t, err)
			assert.Equal(t, 10*time.Minute, ttl)

			// Keys absent from the file keep their defaults
			assert.Equal(t, "default", cfg.Session)
			assert.Equal(t, "localhost:6379", cfg.Checkpoint.RedisAddr)
			assert.Equal(t, config.Default().Checkpoint.Dir, cfg.Checkpoint.Dir)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STAGEHAND_LOG_LEVEL", "warn")
	t.Setenv("STAGEHAND_CHECKPOINT_BACKEND", "sqlite")
	t.Setenv("STAGEHAND_CHECKPOINT_SQLITE_PATH", "/tmp/x.db")

	cfg, err := config.Load(writeFile(t, "c.yaml", "log_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel, "env wins over file")
	assert.Equal(t, config.BackendSQLite, cfg.Checkpoint.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Checkpoint.SQLitePath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"Backend", "a.yaml", "checkpoint:\n  backend: s3\n", "unknown checkpoint backend"},
		{"Level", "b.yaml", "log_level: loud\n", "unknown log level"},
		{"Session", "c.yaml", "session: ' '\n", "session is required"},
		{"TTL", "d.json", `{"checkpoint":{"redis_ttl":"soon"}}`, "redis_ttl"},
		{"Syntax", "e.toml", "log_level = ", "failed to parse e.toml"},
		{"Key", "f.yaml", "checkpoint:\n  encryption_key: c2hvcnQ=\n", "encryption_key"},
		{"Fallback", "g.yaml", "checkpoint:\n  fallback_keys: [c2hvcnQ=]\n", "fallback_keys require encryption_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestCheckpoint_Keys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	old := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 32))

	t.Setenv("STAGEHAND_CHECKPOINT_ENCRYPTION_KEY", active)
	t.Setenv("STAGEHAND_CHECKPOINT_FALLBACK_KEYS", old)
	t.Setenv("STAGEHAND_CHECKPOINT_REDACT", "^value$,secret")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"^value$", "secret"}, cfg.Checkpoint.Redact)

	key, fallbacks, err := cfg.Checkpoint.Keys()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{1}, 32), key)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, bytes.Repeat([]byte{2}, 32), fallbacks[0])

	key, fallbacks, err = config.Default().Checkpoint.Keys()
	require.NoError(t, err)
	assert.Nil(t, key)
	assert.Nil(t, fallbacks)
}
