// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wrapsocket

import (
	"testing"
)

func TestResolveRelativeDisplay(t *testing.T) {
	paths, err := Resolve("wayland-1", "/run/user/1000", 4242)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if paths.RealPath != "/run/user/1000/wayland-1" {
		t.Errorf("RealPath = %q, want /run/user/1000/wayland-1", paths.RealPath)
	}
	if paths.SubstituteName != "wayland-1-wrap-4242" {
		t.Errorf("SubstituteName = %q, want wayland-1-wrap-4242", paths.SubstituteName)
	}
	if paths.SubstitutePath != "/run/user/1000/wayland-1-wrap-4242" {
		t.Errorf("SubstitutePath = %q, want /run/user/1000/wayland-1-wrap-4242", paths.SubstitutePath)
	}
}

func TestResolveAbsoluteDisplay(t *testing.T) {
	paths, err := Resolve("/tmp/compositor/wayland-0", "/run/user/1000", 7)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Absolute displays are used as-is for the real socket, but the
	// substitute still lives in the runtime directory under the
	// display's base name.
	if paths.RealPath != "/tmp/compositor/wayland-0" {
		t.Errorf("RealPath = %q, want /tmp/compositor/wayland-0", paths.RealPath)
	}
	if paths.SubstituteName != "wayland-0-wrap-7" {
		t.Errorf("SubstituteName = %q, want wayland-0-wrap-7", paths.SubstituteName)
	}
	if paths.SubstitutePath != "/run/user/1000/wayland-0-wrap-7" {
		t.Errorf("SubstitutePath = %q, want /run/user/1000/wayland-0-wrap-7", paths.SubstitutePath)
	}
}

func TestResolveEmptyInputs(t *testing.T) {
	if _, err := Resolve("", "/run/user/1000", 1); err == nil {
		t.Error("Resolve with empty display: expected error, got nil")
	}
	if _, err := Resolve("wayland-0", "", 1); err == nil {
		t.Error("Resolve with empty runtime directory: expected error, got nil")
	}
}

func TestFromEnvironmentMissingVariables(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if _, err := FromEnvironment(1); err == nil {
		t.Error("FromEnvironment without WAYLAND_DISPLAY: expected error, got nil")
	}

	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	t.Setenv("XDG_RUNTIME_DIR", "")
	if _, err := FromEnvironment(1); err == nil {
		t.Error("FromEnvironment without XDG_RUNTIME_DIR: expected error, got nil")
	}
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	paths, err := FromEnvironment(99)
	if err != nil {
		t.Fatalf("FromEnvironment: %v", err)
	}
	if paths.SubstituteName != "wayland-0-wrap-99" {
		t.Errorf("SubstituteName = %q, want wayland-0-wrap-99", paths.SubstituteName)
	}
}
