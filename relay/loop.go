// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// DefaultChunkSize is the per-receive buffer size when Options
	// leaves ChunkSize zero.
	DefaultChunkSize = 1024

	// DefaultPollTimeout is the readiness-wait timeout when Options
	// leaves PollTimeout zero. A full timeout with no events only
	// re-runs the shutdown check; it never exits the loop by itself.
	DefaultPollTimeout = 30 * time.Second

	listenBacklog = 128
)

// Options configures a relay Loop.
type Options struct {
	// ListenPath is the filesystem path the substitute socket is
	// bound to. Required. Removed only on the clean-shutdown path.
	ListenPath string

	// ServerPath is the real compositor socket every accepted client
	// is connected through to. Required.
	ServerPath string

	// ChunkSize is the per-receive buffer size in bytes.
	// Default: DefaultChunkSize.
	ChunkSize int

	// PollTimeout bounds each readiness wait.
	// Default: DefaultPollTimeout.
	PollTimeout time.Duration

	// Logger receives structured log output. If nil, slog.Default()
	// is used. Per-connection events are logged at Debug level.
	Logger *slog.Logger
}

// Loop is the single-threaded scheduler state: the listening socket,
// the connection table, and the scratch buffers shared by every
// receive. All of it is owned and mutated by exactly one goroutine,
// the one inside Run, so no locking exists anywhere in the engine.
type Loop struct {
	options Options
	logger  *slog.Logger

	listenFd   int
	serverAddr *unix.SockaddrUnix

	connections []*proxiedConn

	chunkBuffer   []byte
	controlBuffer []byte
}

// New creates the substitute listening socket and returns a Loop ready
// to Run. The socket is bound and listening when New returns, so the
// child process can be spawned immediately afterwards without racing
// its first connect against the relay.
func New(options Options) (*Loop, error) {
	if options.ListenPath == "" {
		return nil, fmt.Errorf("relay: ListenPath is required")
	}
	if options.ServerPath == "" {
		return nil, fmt.Errorf("relay: ServerPath is required")
	}
	if options.ChunkSize <= 0 {
		options.ChunkSize = DefaultChunkSize
	}
	if options.PollTimeout <= 0 {
		options.PollTimeout = DefaultPollTimeout
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	listenFd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("creating substitute socket: %w", err)
	}
	if err := unix.Bind(listenFd, &unix.SockaddrUnix{Name: options.ListenPath}); err != nil {
		_ = unix.Close(listenFd)
		return nil, fmt.Errorf("binding substitute socket %s: %w", options.ListenPath, err)
	}
	if err := unix.Listen(listenFd, listenBacklog); err != nil {
		_ = unix.Close(listenFd)
		_ = unix.Unlink(options.ListenPath)
		return nil, fmt.Errorf("listening on substitute socket %s: %w", options.ListenPath, err)
	}

	return &Loop{
		options:       options,
		logger:        options.Logger,
		listenFd:      listenFd,
		serverAddr:    &unix.SockaddrUnix{Name: options.ServerPath},
		chunkBuffer:   make([]byte, options.ChunkSize),
		controlBuffer: make([]byte, unix.CmsgSpace(maxFilesPerMessage*4)),
	}, nil
}

// Run drives the relay until the clean-shutdown condition holds: the
// childExited channel has closed and the connection table is empty.
// On that path the listening socket is closed, its filesystem path
// removed, and Run returns nil. Any other return is a fatal error;
// the caller is expected to terminate the process.
func (l *Loop) Run(childExited <-chan struct{}) error {
	for {
		pollDescriptors := make([]unix.PollFd, 0, 2*len(l.connections)+1)
		for _, connection := range l.connections {
			serverEvents := int16(unix.POLLIN)
			if !connection.serverConnected || !connection.toServer.empty() {
				serverEvents |= unix.POLLOUT
			}
			childEvents := int16(unix.POLLIN)
			if !connection.toChild.empty() {
				childEvents |= unix.POLLOUT
			}
			pollDescriptors = append(pollDescriptors,
				unix.PollFd{Fd: int32(connection.serverFd), Events: serverEvents},
				unix.PollFd{Fd: int32(connection.childFd), Events: childEvents},
			)
		}
		pollDescriptors = append(pollDescriptors, unix.PollFd{Fd: int32(l.listenFd), Events: unix.POLLIN})

		if _, err := unix.Poll(pollDescriptors, int(l.options.PollTimeout/time.Millisecond)); err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}

		// Connections polled this iteration. Accept may append new
		// ones; they have no revents yet and are skipped below.
		polledCount := len(l.connections)

		if pollDescriptors[len(pollDescriptors)-1].Revents&unix.POLLIN != 0 {
			if err := l.acceptPending(); err != nil {
				return err
			}
		}

		for i := 0; i < polledCount; i++ {
			connection := l.connections[i]
			serverRevents := pollDescriptors[2*i].Revents
			childRevents := pollDescriptors[2*i+1].Revents

			if (serverRevents|childRevents)&(unix.POLLHUP|unix.POLLERR) != 0 {
				connection.teardown()
				continue
			}

			if !connection.serverConnected && serverRevents&unix.POLLOUT != 0 {
				connection.serverConnected = true
				l.logger.Debug("server connection completed", "server_fd", connection.serverFd)
			}
			if !connection.serverConnected {
				// Connect still in flight: relay fully suppressed,
				// client data stays unread in the kernel buffer.
				continue
			}

			if serverRevents&unix.POLLIN != 0 {
				if err := l.forward(connection, &connection.serverFd, &connection.childFd, &connection.toChild); err != nil {
					return err
				}
			}
			if childRevents&unix.POLLIN != 0 {
				if err := l.forward(connection, &connection.childFd, &connection.serverFd, &connection.toServer); err != nil {
					return err
				}
			}
			if serverRevents&unix.POLLOUT != 0 {
				if err := l.drain(connection, &connection.serverFd, &connection.toServer); err != nil {
					return err
				}
			}
			if childRevents&unix.POLLOUT != 0 {
				if err := l.drain(connection, &connection.childFd, &connection.toChild); err != nil {
					return err
				}
			}
		}

		l.pruneConnections()

		select {
		case <-childExited:
			if len(l.connections) == 0 {
				_ = unix.Close(l.listenFd)
				l.listenFd = -1
				if err := unix.Unlink(l.options.ListenPath); err != nil {
					return fmt.Errorf("unlinking substitute socket %s: %w", l.options.ListenPath, err)
				}
				l.logger.Info("child exited and no open connections, exiting")
				return nil
			}
		default:
		}
	}
}

// acceptPending accepts every queued client connection and pairs each
// with a non-blocking connect to the real socket. A connect that
// reports in-progress leaves the connection in the Connecting state;
// writability on the server socket completes it later. Any other
// connect error is a configuration fault and fatal to the process.
func (l *Loop) acceptPending() error {
	for {
		clientFd, _, err := unix.Accept4(l.listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return fmt.Errorf("accept on substitute socket: %w", err)
		}

		serverFd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
		if err != nil {
			_ = unix.Close(clientFd)
			return fmt.Errorf("creating server-side socket: %w", err)
		}

		connected := false
		switch err := unix.Connect(serverFd, l.serverAddr); err {
		case nil:
			connected = true
		case unix.EINPROGRESS, unix.EAGAIN:
			// Completion is detected via writability.
		default:
			_ = unix.Close(clientFd)
			_ = unix.Close(serverFd)
			return fmt.Errorf("connecting to real socket %s: %w", l.options.ServerPath, err)
		}

		l.connections = append(l.connections, &proxiedConn{
			childFd:         clientFd,
			serverFd:        serverFd,
			serverConnected: connected,
		})
		l.logger.Debug("accepted client connection",
			"child_fd", clientFd, "server_fd", serverFd, "server_connected", connected)
	}
}

// pruneConnections removes every connection that is no longer live.
// Teardown already closed the endpoints and released queued
// descriptors; removal happens exactly once because non-live entries
// never re-enter the table.
func (l *Loop) pruneConnections() {
	live := l.connections[:0]
	for _, connection := range l.connections {
		if connection.live() {
			live = append(live, connection)
		} else {
			l.logger.Debug("pruned closed connection")
		}
	}
	l.connections = live
}

// Close releases the listening socket and tears down any remaining
// connections. Intended for tests and abort paths after Run has
// returned; the clean-shutdown path inside Run already closed and
// unlinked the listener.
func (l *Loop) Close() {
	if l.listenFd >= 0 {
		_ = unix.Close(l.listenFd)
		l.listenFd = -1
	}
	for _, connection := range l.connections {
		connection.teardown()
	}
	l.connections = nil
}
