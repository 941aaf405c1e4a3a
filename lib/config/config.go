// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for an absent or partial configuration file.
const (
	// DefaultChunkSize is the relay's per-receive buffer size in bytes.
	DefaultChunkSize = 1024

	// DefaultPollTimeout is the readiness-wait timeout. A full timeout
	// with no events only re-runs the shutdown check; it never exits
	// the relay by itself.
	DefaultPollTimeout = 30 * time.Second
)

// Config is the full wayland-wrap configuration.
type Config struct {
	// Relay tunes the relay engine.
	Relay RelayConfig `yaml:"relay"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// RelayConfig tunes the relay engine.
type RelayConfig struct {
	// ChunkSize is the per-receive buffer size in bytes.
	// Default: 1024.
	ChunkSize int `yaml:"chunk_size"`

	// PollTimeout is the readiness-wait timeout, e.g. "30s".
	// Default: 30s.
	PollTimeout Duration `yaml:"poll_timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is the minimum slog level: "debug", "info", "warn", or
	// "error". Default: info. The WAYLAND_WRAP_DEBUG environment
	// variable overrides this to debug.
	Level string `yaml:"level"`
}

// Duration wraps time.Duration with YAML unmarshalling from strings
// like "30s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Relay: RelayConfig{
			ChunkSize:   DefaultChunkSize,
			PollTimeout: Duration(DefaultPollTimeout),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads and validates the configuration file at path. An empty
// path returns the defaults. Unset fields keep their default values.
func Load(path string) (Config, error) {
	configuration := Default()
	if path == "" {
		return configuration, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &configuration); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := configuration.validate(); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return configuration, nil
}

func (c *Config) validate() error {
	if c.Relay.ChunkSize <= 0 {
		return fmt.Errorf("relay.chunk_size must be positive, got %d", c.Relay.ChunkSize)
	}
	if c.Relay.PollTimeout <= 0 {
		return fmt.Errorf("relay.poll_timeout must be positive, got %v", time.Duration(c.Relay.PollTimeout))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log.level %q (want debug, info, warn, or error)", l.Level)
	}
}
