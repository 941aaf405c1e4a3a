// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wrapsocket

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved socket locations for one wrapped session.
type Paths struct {
	// RealPath is the absolute path of the compositor's socket, the
	// one the relay connects out to for every accepted client.
	RealPath string

	// SubstituteName is the display name the child process sees in
	// WAYLAND_DISPLAY: "<display base name>-wrap-<pid>".
	SubstituteName string

	// SubstitutePath is the absolute path the relay binds its
	// listening socket to: SubstituteName inside the runtime
	// directory.
	SubstitutePath string
}

// Resolve derives the socket paths for a wrapped session. The display
// value follows libwayland semantics: an absolute path is used as-is,
// anything else is joined to the runtime directory. pid is the relay's
// own process ID and makes the substitute name unique per session.
func Resolve(display, runtimeDirectory string, pid int) (Paths, error) {
	if display == "" {
		return Paths{}, fmt.Errorf("display name is empty")
	}
	if runtimeDirectory == "" {
		return Paths{}, fmt.Errorf("runtime directory is empty")
	}

	realPath := display
	if !filepath.IsAbs(display) {
		realPath = filepath.Join(runtimeDirectory, display)
	}

	substituteName := fmt.Sprintf("%s-wrap-%d", filepath.Base(display), pid)

	return Paths{
		RealPath:       realPath,
		SubstituteName: substituteName,
		SubstitutePath: filepath.Join(runtimeDirectory, substituteName),
	}, nil
}

// FromEnvironment resolves the socket paths from WAYLAND_DISPLAY and
// XDG_RUNTIME_DIR. Both variables are required; a missing or empty
// value is a startup configuration error.
func FromEnvironment(pid int) (Paths, error) {
	display, ok := os.LookupEnv("WAYLAND_DISPLAY")
	if !ok || display == "" {
		return Paths{}, fmt.Errorf("WAYLAND_DISPLAY not set")
	}
	runtimeDirectory, ok := os.LookupEnv("XDG_RUNTIME_DIR")
	if !ok || runtimeDirectory == "" {
		return Paths{}, fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	return Resolve(display, runtimeDirectory, pid)
}
