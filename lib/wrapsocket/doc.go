// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wrapsocket resolves the Wayland display configuration from
// the environment into the concrete socket paths the relay works with:
// the real compositor socket to connect to, and the substitute socket
// to create in its place.
//
// The substitute socket lives in the runtime directory and is named
// after the display with a "-wrap-<pid>" suffix, so multiple wrapped
// sessions on the same display never collide. The child process is
// pointed at the substitute by overriding WAYLAND_DISPLAY with
// [Paths.SubstituteName]; libwayland resolves that name against
// XDG_RUNTIME_DIR exactly as it would the original.
package wrapsocket
