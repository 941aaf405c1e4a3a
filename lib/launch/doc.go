// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch starts and supervises the wrapped child process.
//
// The child runs with stdin, stdout, and stderr inherited from the
// relay and with WAYLAND_DISPLAY overridden to the substitute socket
// name, so every Wayland connection it (or its descendants) opens goes
// through the relay. Exit is observed through a channel that closes
// when the child has been reaped, which lets the single-threaded event
// loop check for termination without blocking (select with a default
// case, once per iteration).
package launch
