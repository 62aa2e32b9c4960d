package concurrency

import (
	"context"
	"errors"
)

var (
	// ErrMailboxClosed is returned when sending to or receiving from a closed, drained mailbox
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrMailboxFull is returned when sending to a full bounded mailbox (backpressure)
	ErrMailboxFull = errors.New("mailbox is full")
)

// Mailbox abstracts channel operations behind a message passing API
// Hides chan type and select statements from application code
type Mailbox interface {
	// Send enqueues a message
	// Returns ErrMailboxFull if a bounded mailbox is full (backpressure)
	// Returns ErrMailboxClosed if the mailbox is closed
	Send(msg interface{}) error

	// Receive dequeues the next message
	// Blocks until a message is available or ctx is cancelled
	// After Close, already-enqueued messages are still delivered in order;
	// once drained, Receive returns ErrMailboxClosed
	Receive(ctx context.Context) (interface{}, error)

	// TryReceive attempts to dequeue without blocking
	// Returns (msg, true) if a message was available, (nil, false) if empty
	TryReceive() (interface{}, bool, error)

	// Close closes the mailbox; idempotent
	// Subsequent Send calls fail, pending messages remain receivable
	Close()

	// Capacity returns the maximum capacity; negative means unbounded
	Capacity() int

	// Size returns the current number of queued messages
	Size() int

	// IsClosed returns true if the mailbox is closed
	IsClosed() bool
}
