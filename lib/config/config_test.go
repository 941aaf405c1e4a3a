// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wayland-wrap.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	configuration, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if configuration.Relay.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", configuration.Relay.ChunkSize, DefaultChunkSize)
	}
	if time.Duration(configuration.Relay.PollTimeout) != DefaultPollTimeout {
		t.Errorf("PollTimeout = %v, want %v", time.Duration(configuration.Relay.PollTimeout), DefaultPollTimeout)
	}
	level, err := configuration.Log.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if level != slog.LevelInfo {
		t.Errorf("level = %v, want info", level)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfigFile(t, `
relay:
  chunk_size: 4096
  poll_timeout: 5s
log:
  level: debug
`)
	configuration, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if configuration.Relay.ChunkSize != 4096 {
		t.Errorf("ChunkSize = %d, want 4096", configuration.Relay.ChunkSize)
	}
	if time.Duration(configuration.Relay.PollTimeout) != 5*time.Second {
		t.Errorf("PollTimeout = %v, want 5s", time.Duration(configuration.Relay.PollTimeout))
	}
	level, err := configuration.Log.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: warn
`)
	configuration, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if configuration.Relay.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want default %d", configuration.Relay.ChunkSize, DefaultChunkSize)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"negative chunk size", "relay:\n  chunk_size: -1\n"},
		{"zero poll timeout", "relay:\n  poll_timeout: 0s\n"},
		{"bad duration", "relay:\n  poll_timeout: soon\n"},
		{"bad level", "log:\n  level: loud\n"},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			path := writeConfigFile(t, testCase.contents)
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted %q", testCase.contents)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file: expected error, got nil")
	}
}
