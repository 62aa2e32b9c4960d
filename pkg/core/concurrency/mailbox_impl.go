package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
)

// boundedMailbox implements Mailbox with a fixed capacity
// Hides chan type and select statements from the public API
type boundedMailbox struct {
	ch       chan interface{} // Hidden: internal channel
	closed   int32            // Atomic flag
	capacity int
}

// NewBoundedMailbox creates a new bounded mailbox
// Hides channel creation from callers
func NewBoundedMailbox(capacity int) Mailbox {
	if capacity < 1 {
		capacity = 100 // Default capacity
	}

	return &boundedMailbox{
		ch:       make(chan interface{}, capacity), // Hidden: channel creation
		capacity: capacity,
	}
}

// Send implements Mailbox interface
func (mb *boundedMailbox) Send(msg interface{}) error {
	if atomic.LoadInt32(&mb.closed) == 1 {
		return ErrMailboxClosed
	}

	// Non-blocking send for backpressure
	select {
	case mb.ch <- msg: // Hidden: channel send
		return nil
	default:
		return ErrMailboxFull
	}
}

// Receive implements Mailbox interface
// Already-enqueued messages are drained even after Close
func (mb *boundedMailbox) Receive(ctx context.Context) (interface{}, error) {
	select {
	case msg, ok := <-mb.ch: // Hidden: channel receive
		if !ok {
			return nil, ErrMailboxClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryReceive implements Mailbox interface
func (mb *boundedMailbox) TryReceive() (interface{}, bool, error) {
	select {
	case msg, ok := <-mb.ch: // Hidden: channel receive
		if !ok {
			return nil, false, ErrMailboxClosed
		}
		return msg, true, nil
	default:
		return nil, false, nil
	}
}

// Close implements Mailbox interface
func (mb *boundedMailbox) Close() {
	if atomic.CompareAndSwapInt32(&mb.closed, 0, 1) {
		close(mb.ch) // Hidden: channel close
	}
}

// Capacity implements Mailbox interface
func (mb *boundedMailbox) Capacity() int {
	return mb.capacity
}

// Size implements Mailbox interface
func (mb *boundedMailbox) Size() int {
	return len(mb.ch) // Hidden: channel length
}

// IsClosed implements Mailbox interface
func (mb *boundedMailbox) IsClosed() bool {
	return atomic.LoadInt32(&mb.closed) == 1
}

// unboundedMailbox implements Mailbox with no capacity limit
//
// Send never blocks and never reports backpressure; the queue grows as needed.
// Designed for a single receiver with any number of senders: per-sender enqueue
// order is preserved because append happens under one mutex.
type unboundedMailbox struct {
	mu     sync.Mutex
	queue  []interface{}
	notify chan struct{} // Hidden: wake-up signal for the blocked receiver
	closed bool
}

// NewUnboundedMailbox creates a new unbounded mailbox
func NewUnboundedMailbox() Mailbox {
	return &unboundedMailbox{
		notify: make(chan struct{}, 1),
	}
}

// Send implements Mailbox interface
// Never returns ErrMailboxFull
func (mb *unboundedMailbox) Send(msg interface{}) error {
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return ErrMailboxClosed
	}
	mb.queue = append(mb.queue, msg)
	mb.mu.Unlock()

	mb.signal()
	return nil
}

// Receive implements Mailbox interface
// After Close, drains the remaining queue before returning ErrMailboxClosed
func (mb *unboundedMailbox) Receive(ctx context.Context) (interface{}, error) {
	for {
		mb.mu.Lock()
		if len(mb.queue) > 0 {
			msg := mb.queue[0]
			mb.queue = mb.queue[1:]
			mb.mu.Unlock()
			return msg, nil
		}
		if mb.closed {
			mb.mu.Unlock()
			return nil, ErrMailboxClosed
		}
		mb.mu.Unlock()

		select {
		case <-mb.notify:
			// Re-check the queue; the signal is coalesced
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryReceive implements Mailbox interface
func (mb *unboundedMailbox) TryReceive() (interface{}, bool, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if len(mb.queue) > 0 {
		msg := mb.queue[0]
		mb.queue = mb.queue[1:]
		return msg, true, nil
	}
	if mb.closed {
		return nil, false, ErrMailboxClosed
	}
	return nil, false, nil
}

// Close implements Mailbox interface
// Idempotent; queued messages remain receivable until drained
func (mb *unboundedMailbox) Close() {
	mb.mu.Lock()
	alreadyClosed := mb.closed
	mb.closed = true
	mb.mu.Unlock()

	if !alreadyClosed {
		mb.signal() // Wake a receiver blocked on an empty queue
	}
}

// Capacity implements Mailbox interface; unbounded is reported as -1
func (mb *unboundedMailbox) Capacity() int {
	return -1
}

// Size implements Mailbox interface
func (mb *unboundedMailbox) Size() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.queue)
}

// IsClosed implements Mailbox interface
func (mb *unboundedMailbox) IsClosed() bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.closed
}

// signal wakes the receiver without blocking the sender
func (mb *unboundedMailbox) signal() {
	select {
	case mb.notify <- struct{}{}:
	default:
		// A wake-up is already pending; the receiver re-checks the queue anyway
	}
}
