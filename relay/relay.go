// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// maxFilesPerMessage is the kernel's SCM_MAX_FD: the most descriptors
// one sendmsg can carry. The receive control buffer is sized for it so
// nothing a peer can legally send ever truncates.
const maxFilesPerMessage = 253

// forward moves data from a readable endpoint toward its peer. It
// receives chunk after chunk, attempting an immediate send for each,
// and stops at the first sign of backpressure so that queued bytes are
// flushed before anything newer is read (ordering).
//
// Per chunk: a full send keeps the loop reading; a partial send queues
// the unsent byte tail (the descriptors were already conveyed by the
// partial sendmsg) and stops; a would-block send queues the entire
// chunk, descriptors included, and stops. End-of-stream and reset tear
// the whole connection down. Only unexpected kernel errors are
// returned, and they are fatal to the process.
func (l *Loop) forward(connection *proxiedConn, source, destination *int, queue *messageQueue) error {
	for {
		if *source < 0 || *destination < 0 {
			return nil
		}

		n, oobn, recvFlags, _, err := unix.Recvmsg(*source, l.chunkBuffer, l.controlBuffer, unix.MSG_CMSG_CLOEXEC)
		switch {
		case err == unix.EAGAIN:
			return nil
		case err == unix.ECONNRESET:
			connection.teardown()
			return nil
		case err != nil:
			return fmt.Errorf("recvmsg: %w", err)
		}
		if n == 0 {
			// End-of-stream. Both directions drop together; anything
			// still queued is released with the connection.
			connection.teardown()
			return nil
		}
		if recvFlags&unix.MSG_CTRUNC != 0 {
			// The control buffer holds the kernel maximum, so this
			// cannot happen without descriptor loss. Fail fast rather
			// than silently dropping handles.
			return fmt.Errorf("recvmsg: ancillary data truncated")
		}

		files, err := parseReceivedFiles(l.controlBuffer[:oobn])
		if err != nil {
			return fmt.Errorf("parsing ancillary data: %w", err)
		}

		payload := l.chunkBuffer[:n]
		sent, err := sendChunk(*destination, payload, files)
		switch {
		case err == unix.EAGAIN:
			// Ownership of the descriptors moves to the queue.
			queue.pushBack(&bufferedMessage{
				files: files,
				bytes: append([]byte(nil), payload...),
			})
			return nil
		case err == unix.ECONNRESET || err == unix.EPIPE || (err == nil && sent == 0):
			releaseFiles(files)
			connection.teardown()
			return nil
		case err != nil:
			return fmt.Errorf("sendmsg: %w", err)
		}

		// The sendmsg conveyed the descriptors to the peer; the local
		// copies are released whether the byte payload went out in
		// full or not.
		releaseFiles(files)

		if sent < n {
			// Queue only the byte tail. Do not read more from the
			// source until the tail has drained.
			queue.pushBack(&bufferedMessage{
				bytes: append([]byte(nil), payload[sent:]...),
			})
			return nil
		}
	}
}

// drain retries queued messages against a now-writable endpoint, in
// strict queue order. A partially sent message returns its byte
// remainder to the front of the queue (its descriptors, if any, were
// conveyed by the partial sendmsg); a would-block send returns the
// message to the front untouched. Either way draining stops so order
// is never violated.
func (l *Loop) drain(connection *proxiedConn, destination *int, queue *messageQueue) error {
	for {
		if *destination < 0 {
			return nil
		}
		message := queue.popFront()
		if message == nil {
			return nil
		}

		sent, err := sendChunk(*destination, message.bytes, message.files)
		switch {
		case err == unix.EAGAIN:
			queue.pushFront(message)
			return nil
		case err == unix.ECONNRESET || err == unix.EPIPE || (err == nil && sent == 0):
			message.release()
			connection.teardown()
			return nil
		case err != nil:
			return fmt.Errorf("sendmsg while flushing queue: %w", err)
		}

		message.release()

		if sent < len(message.bytes) {
			queue.pushFront(&bufferedMessage{bytes: message.bytes[sent:]})
			return nil
		}
	}
}

// sendChunk sends one payload with its accompanying descriptors.
// MSG_NOSIGNAL turns a write to a vanished peer into EPIPE instead of
// SIGPIPE; callers treat EPIPE like a reset.
func sendChunk(fd int, payload []byte, files []int) (int, error) {
	var control []byte
	if len(files) > 0 {
		control = unix.UnixRights(files...)
	}
	return unix.SendmsgN(fd, payload, control, nil, unix.MSG_NOSIGNAL)
}

// parseReceivedFiles extracts the SCM_RIGHTS descriptors from a raw
// control buffer. The descriptors were received close-on-exec
// (MSG_CMSG_CLOEXEC) and are owned by the caller.
func parseReceivedFiles(control []byte) ([]int, error) {
	if len(control) == 0 {
		return nil, nil
	}
	controlMessages, err := unix.ParseSocketControlMessage(control)
	if err != nil {
		return nil, err
	}
	var files []int
	for _, message := range controlMessages {
		if message.Header.Level != unix.SOL_SOCKET || message.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		fds, err := unix.ParseUnixRights(&message)
		if err != nil {
			return nil, err
		}
		files = append(files, fds...)
	}
	return files, nil
}

// releaseFiles closes local descriptor copies after a sendmsg has
// transferred them, or before tearing down the connection they were
// received on.
func releaseFiles(files []int) {
	for _, fd := range files {
		_ = unix.Close(fd)
	}
}
