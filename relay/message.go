// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "golang.org/x/sys/unix"

// bufferedMessage is the unsent remainder of exactly one send attempt:
// the bytes still to deliver and the file descriptors that must
// accompany them. The descriptors are exclusively owned by the message
// until either a sendmsg conveys them to the peer or the owning
// connection is torn down.
//
// A message queued after a partial send carries no descriptors: the
// partial sendmsg already transferred them, and they must never be
// sent twice.
type bufferedMessage struct {
	files []int
	bytes []byte
}

// release closes the message's local descriptor copies. Called after a
// sendmsg has transferred them to the peer, or when the owning
// connection is torn down with the message still queued.
func (m *bufferedMessage) release() {
	for _, fd := range m.files {
		_ = unix.Close(fd)
	}
	m.files = nil
}

// messageQueue is a FIFO of buffered messages for one direction of one
// connection. Messages append at the back; a message that could not be
// (fully) sent returns to the front, preserving strict ordering.
type messageQueue struct {
	messages []*bufferedMessage
}

func (q *messageQueue) empty() bool {
	return len(q.messages) == 0
}

func (q *messageQueue) pushBack(message *bufferedMessage) {
	q.messages = append(q.messages, message)
}

func (q *messageQueue) pushFront(message *bufferedMessage) {
	q.messages = append([]*bufferedMessage{message}, q.messages...)
}

// popFront removes and returns the front message, or nil when empty.
func (q *messageQueue) popFront() *bufferedMessage {
	if len(q.messages) == 0 {
		return nil
	}
	message := q.messages[0]
	q.messages = q.messages[1:]
	return message
}

// discard releases every queued message's descriptors and empties the
// queue. Used on connection teardown.
func (q *messageQueue) discard() {
	for _, message := range q.messages {
		message.release()
	}
	q.messages = nil
}
