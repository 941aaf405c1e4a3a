// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for wayland-wrap.
//
// Configuration is loaded from a single optional YAML file specified by:
//   - WAYLAND_WRAP_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. When no file is given,
// built-in defaults apply. The file tunes the relay engine (receive
// chunk size, readiness-wait timeout) and logging; it never changes the
// wire behavior, which is byte-transparent by contract.
package config
