// Package config loads the graph cache's configuration from a YAML
// file overlaid by environment variables. The loading order, lowest to
// highest priority: defaults in code, the config file, environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the graph cache engine.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Namespaces holds per-graph-type structural policies. Graph types
	// without an entry use the permissive default.
	Namespaces map[string]NamespaceConfig `yaml:"namespaces"`
}

// DatabaseConfig configures the embedded SQLite store.
type DatabaseConfig struct {
	Path              string `yaml:"path" validate:"required"`
	BusyTimeoutMillis int    `yaml:"busy_timeout_ms" validate:"gte=0"`
	MaxOpenConns      int    `yaml:"max_open_conns" validate:"gte=0"`
	BatchSize         int    `yaml:"batch_size" validate:"gt=0"`
	WAL               bool   `yaml:"wal"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// NamespaceConfig carries per-namespace structural policy knobs.
type NamespaceConfig struct {
	DisallowSelfLoops bool `yaml:"disallow_self_loops"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Path:              "graphcache.db",
			BusyTimeoutMillis: 5000,
			MaxOpenConns:      4,
			BatchSize:         500,
			WAL:               true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply; a named file that does not
// exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables, the highest-priority source.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GRAPHCACHE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GRAPHCACHE_DB_BUSY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.BusyTimeoutMillis = n
		}
	}
	if v := os.Getenv("GRAPHCACHE_DB_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxOpenConns = n
		}
	}
	if v := os.Getenv("GRAPHCACHE_DB_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.BatchSize = n
		}
	}
	if v := os.Getenv("GRAPHCACHE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GRAPHCACHE_LOG_DEVELOPMENT"); v != "" {
		cfg.Logging.Development = v == "true"
	}
}
