// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay implements the event-driven engine that interposes on
// a Wayland display socket. It owns the substitute listening socket,
// opens a matching connection to the real compositor socket for every
// accepted client, and forwards bytes and passed file descriptors
// (SCM_RIGHTS) between the two sides without interpreting the protocol.
//
// The engine is a single-threaded poll(2) loop over raw non-blocking
// file descriptors. Each iteration polls every connection's two
// endpoints plus the listener, then runs three operations per
// connection: the connect-completion edge for server sockets still
// finishing their asynchronous connect, forward (drain readable data
// and attempt an immediate send to the peer, queueing the remainder
// under backpressure), and drain (retry queued messages once the peer
// is writable again). Messages append at the back of their queue and
// partially sent remainders requeue at the front, so per-direction
// byte and descriptor order is preserved exactly.
//
// Descriptor ownership is linear: a received descriptor is held by
// exactly one of the kernel receive result, a queued message, or a
// completed send, and the local copy is closed the moment a sendmsg
// conveys it to the peer. A torn-down connection releases every
// descriptor still queued on it.
//
// Error handling follows a fail-fast contract: end-of-stream, reset,
// and poll-reported hangup tear down the one affected connection;
// would-block pauses a direction until the next readiness signal; any
// other kernel error is returned as fatal and terminates the process.
// The raw-fd design (rather than net.UnixConn and the runtime poller)
// is what makes the single-threaded readiness model and the explicit
// descriptor-ownership rules expressible at all.
package relay
