// Package config loads stagehand CLI settings from a file and the environment.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/stagehand/internal/logging"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. STAGEHAND_LOG_LEVEL.
const EnvPrefix = "STAGEHAND_"

// Checkpoint backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the CLI configuration.
type Config struct {
	LogLevel   string     `yaml:"log_level" json:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	Session    string     `yaml:"session" json:"session" toml:"session" env:"SESSION"`
	Checkpoint Checkpoint `yaml:"checkpoint" json:"checkpoint" toml:"checkpoint" envPrefix:"CHECKPOINT_"`
}

// Checkpoint selects and configures the checkpoint store.
type Checkpoint struct {
	Backend       string `yaml:"backend" json:"backend" toml:"backend" env:"BACKEND"`
	Dir           string `yaml:"dir" json:"dir" toml:"dir" env:"DIR"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr" toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" json:"redis_password" toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db" toml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix" toml:"redis_prefix" env:"REDIS_PREFIX"`
	// RedisTTL is a Go duration string; empty means no expiry.
	RedisTTL   string `yaml:"redis_ttl" json:"redis_ttl" toml:"redis_ttl" env:"REDIS_TTL"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path" toml:"sqlite_path" env:"SQLITE_PATH"`

	// EncryptionKey is a base64 AES-256 key. When set, checkpoints are sealed.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key" toml:"encryption_key" env:"ENCRYPTION_KEY"`
	// FallbackKeys are older base64 keys still accepted for reading.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys" toml:"fallback_keys" env:"FALLBACK_KEYS" envSeparator:","`
	// Redact lists regular expressions; matching entity fields are masked before saving.
	Redact []string `yaml:"redact" json:"redact" toml:"redact" env:"REDACT" envSeparator:","`
}

// Default returns a usable configuration: info logging, session "default",
// file checkpoints under .stagehand.
func Default() Config {
	return Config{
		LogLevel: "info",
		Session:  "default",
		Checkpoint: Checkpoint{
			Backend:     BackendFile,
			Dir:         filepath.Join(".stagehand", "checkpoints"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "stagehand:checkpoint:",
			SQLitePath:  filepath.Join(".stagehand", "checkpoints.db"),
		},
	}
}

// Load reads path over the defaults, then applies STAGEHAND_* environment overrides.
// The format follows the extension (.yaml/.yml, .json, .toml). An empty path or a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	case ".toml":
		if err := overlayTOML(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		// Default to YAML
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// overlayTOML copies only the keys present in the document onto cfg.
func overlayTOML(data []byte, cfg *Config) error {
	var raw Config
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return err
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("session") {
		cfg.Session = strings.TrimSpace(raw.Session)
	}
	if meta.IsDefined("checkpoint", "backend") {
		cfg.Checkpoint.Backend = strings.TrimSpace(raw.Checkpoint.Backend)
	}
	if meta.IsDefined("checkpoint", "dir") {
		cfg.Checkpoint.Dir = strings.TrimSpace(raw.Checkpoint.Dir)
	}
	if meta.IsDefined("checkpoint", "redis_addr") {
		cfg.Checkpoint.RedisAddr = strings.TrimSpace(raw.Checkpoint.RedisAddr)
	}
	if meta.IsDefined("checkpoint", "redis_password") {
		cfg.Checkpoint.RedisPassword = raw.Checkpoint.RedisPassword
	}
	if meta.IsDefined("checkpoint", "redis_db") {
		cfg.Checkpoint.RedisDB = raw.Checkpoint.RedisDB
	}
	if meta.IsDefined("checkpoint", "redis_prefix") {
		cfg.Checkpoint.RedisPrefix = raw.Checkpoint.RedisPrefix
	}
	if meta.IsDefined("checkpoint", "redis_ttl") {
		cfg.Checkpoint.RedisTTL = strings.TrimSpace(raw.Checkpoint.RedisTTL)
	}
	if meta.IsDefined("checkpoint", "sqlite_path") {
		cfg.Checkpoint.SQLitePath = strings.TrimSpace(raw.Checkpoint.SQLitePath)
	}
	if meta.IsDefined("checkpoint", "encryption_key") {
		cfg.Checkpoint.EncryptionKey = strings.TrimSpace(raw.Checkpoint.EncryptionKey)
	}
	if meta.IsDefined("checkpoint", "fallback_keys") {
		cfg.Checkpoint.FallbackKeys = raw.Checkpoint.FallbackKeys
	}
	if meta.IsDefined("checkpoint", "redact") {
		cfg.Checkpoint.Redact = raw.Checkpoint.Redact
	}
	return nil
}

// Validate checks enumerations and parses durations.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if strings.TrimSpace(c.Session) == "" {
		return fmt.Errorf("invalid config: session is required")
	}
	switch c.Checkpoint.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("invalid config: unknown checkpoint backend %q", c.Checkpoint.Backend)
	}
	if _, err := c.Checkpoint.TTL(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, _, err := c.Checkpoint.Keys(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Keys decodes EncryptionKey and FallbackKeys. active is nil when encryption is off.
func (c Checkpoint) Keys() (active []byte, fallbacks [][]byte, err error) {
	if strings.TrimSpace(c.EncryptionKey) == "" {
		if len(c.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("fallback_keys require encryption_key")
		}
		return nil, nil, nil
	}

	active, err = decodeKey(c.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return active, fallbacks, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// TTL parses RedisTTL.
func (c Checkpoint) TTL() (time.Duration, error) {
	if strings.TrimSpace(c.RedisTTL) == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.RedisTTL)
	if err != nil {
		return 0, fmt.Errorf("redis_ttl: %w", err)
	}
	if ttl < 0 {
		return 0, fmt.Errorf("redis_ttl: must not be negative")
	}
	return ttl, nil
}
