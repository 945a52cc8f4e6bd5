// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 RCN Labs

package rcn

// SendQueue is a fixed-capacity FIFO ring of outgoing packets with a
// single producer (the prepare helpers) and a single consumer (the poll
// step). Under the cooperative single-threaded model it needs no
// locking.
//
// Overflow policy: drop-newest. Enqueue on a full queue rejects the new
// packet and leaves the queued contents untouched. An unsent entry is
// never overwritten.
type SendQueue struct {
	buf   [SendQueueCap]OutgoingPacket
	head  int // next packet to drain
	tail  int // next free slot
	count int
}

// Enqueue appends a packet, or returns ErrQueueFull without touching
// the queue.
func (q *SendQueue) Enqueue(p OutgoingPacket) error {
	if q.count == SendQueueCap {
		return ErrQueueFull
	}
	q.buf[q.tail] = p
	q.tail = (q.tail + 1) % SendQueueCap
	q.count++
	return nil
}

// Dequeue removes and returns the oldest packet, in FIFO order.
func (q *SendQueue) Dequeue() (OutgoingPacket, bool) {
	if q.count == 0 {
		return OutgoingPacket{}, false
	}
	p := q.buf[q.head]
	q.head = (q.head + 1) % SendQueueCap
	q.count--
	return p, true
}

// Len returns the number of queued packets.
func (q *SendQueue) Len() int {
	return q.count
}

// Empty reports whether nothing is waiting to be sent.
func (q *SendQueue) Empty() bool {
	return q.count == 0
}
