// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/wayland-wrap/lib/testutil"
)

func TestStartOverridesDisplay(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")

	outputPath := filepath.Join(t.TempDir(), "display.txt")
	child, err := Start("sh", []string{"-c", "printf '%s' \"$WAYLAND_DISPLAY\" > " + outputPath}, "wayland-0-wrap-1", nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	testutil.RequireClosed(t, child.Done(), 5*time.Second, "child exit")

	contents, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading child output: %v", err)
	}
	if got := strings.TrimSpace(string(contents)); got != "wayland-0-wrap-1" {
		t.Errorf("child saw WAYLAND_DISPLAY=%q, want wayland-0-wrap-1", got)
	}
	if !child.ExitSuccess() {
		t.Error("ExitSuccess = false for a clean exit")
	}
}

func TestStartMissingProgram(t *testing.T) {
	if _, err := Start("/nonexistent/program", nil, "wayland-0-wrap-1", nil); err == nil {
		t.Error("Start of missing program: expected error, got nil")
	}
}

func TestExitSuccessFalseOnFailure(t *testing.T) {
	child, err := Start("sh", []string{"-c", "exit 3"}, "wayland-0-wrap-1", nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	testutil.RequireClosed(t, child.Done(), 5*time.Second, "child exit")
	if child.ExitSuccess() {
		t.Error("ExitSuccess = true for exit status 3")
	}
}

func TestExitSuccessBeforeExit(t *testing.T) {
	child, err := Start("sleep", []string{"5"}, "wayland-0-wrap-1", nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if child.ExitSuccess() {
		t.Error("ExitSuccess = true while child still running")
	}
	_ = child.command.Process.Kill()
	testutil.RequireClosed(t, child.Done(), 5*time.Second, "child exit after kill")
}
