// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "golang.org/x/sys/unix"

// proxiedConn is the per-client-connection state: the accepted child
// side, the outbound server side, the connect-completion flag for the
// server side, and one queue of not-yet-sent messages per direction.
//
// A descriptor value of -1 means that endpoint is closed. A connection
// is live only while both endpoints are open; the moment either side
// ends, teardown closes both and the event loop prunes the connection
// on its next sweep. There is no half-close: the relay mirrors the
// original interposer's policy of dropping both directions together.
type proxiedConn struct {
	childFd  int
	serverFd int

	// serverConnected is false while the non-blocking connect to the
	// real socket is still completing. Until the first writability
	// signal flips it, no forwarding runs in either direction; data
	// the client has already sent stays unread in the kernel buffer.
	serverConnected bool

	// toServer holds messages awaiting delivery to the server side,
	// toChild those awaiting delivery to the child side.
	toServer messageQueue
	toChild  messageQueue
}

// live reports whether both endpoints are still open.
func (c *proxiedConn) live() bool {
	return c.childFd >= 0 && c.serverFd >= 0
}

// teardown closes both endpoints and releases every descriptor still
// queued in either direction. Idempotent: a second call is a no-op.
func (c *proxiedConn) teardown() {
	if c.childFd >= 0 {
		_ = unix.Close(c.childFd)
		c.childFd = -1
	}
	if c.serverFd >= 0 {
		_ = unix.Close(c.serverFd)
		c.serverFd = -1
	}
	c.toServer.discard()
	c.toChild.discard()
}
