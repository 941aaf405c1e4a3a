// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Child is a started child process whose exit can be observed without
// blocking.
type Child struct {
	command *exec.Cmd
	done    chan struct{}
	waitErr error
}

// Start spawns the child program with its arguments, inheriting the
// relay's standard streams and environment except for WAYLAND_DISPLAY,
// which is overridden to displayName. The returned Child is already
// being reaped in the background.
func Start(program string, args []string, displayName string, logger *slog.Logger) (*Child, error) {
	if logger == nil {
		logger = slog.Default()
	}

	command := exec.Command(program, args...)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	// os/exec deduplicates the environment keeping the last entry, so
	// appending overrides any inherited WAYLAND_DISPLAY.
	command.Env = append(os.Environ(), "WAYLAND_DISPLAY="+displayName)

	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("starting child %s: %w", program, err)
	}
	logger.Debug("child started", "program", program, "pid", command.Process.Pid, "display", displayName)

	child := &Child{
		command: command,
		done:    make(chan struct{}),
	}
	go func() {
		child.waitErr = command.Wait()
		logger.Debug("child exited", "program", program, "pid", command.Process.Pid, "state", command.ProcessState.String())
		close(child.done)
	}()
	return child, nil
}

// Done returns a channel that is closed once the child has exited and
// been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Pid returns the child's process ID.
func (c *Child) Pid() int {
	return c.command.Process.Pid
}

// ExitSuccess reports whether the child exited with status 0. Only
// valid after Done has closed.
func (c *Child) ExitSuccess() bool {
	select {
	case <-c.done:
	default:
		return false
	}
	return c.waitErr == nil
}
