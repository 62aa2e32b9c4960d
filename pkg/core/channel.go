package core

import (
	"context"

	"github.com/isopodio/isopod/pkg/core/concurrency"
)

// Sender is the sending half of a unidirectional, ordered channel
// A Sender belongs to exactly one Receiver; many Senders may feed one
// Receiver (fan-in), with FIFO ordering guaranteed per sender only
type Sender struct {
	mailbox concurrency.Mailbox
}

// Receiver is the receiving half of a unidirectional, ordered channel
type Receiver struct {
	mailbox concurrency.Mailbox
}

// NewChannel creates an endpoint pair backed by an unbounded mailbox
// Hides mailbox creation from callers
func NewChannel() (*Sender, *Receiver) {
	mailbox := concurrency.NewUnboundedMailbox()
	return &Sender{mailbox: mailbox}, &Receiver{mailbox: mailbox}
}

// Send enqueues an envelope for delivery
// Never blocks and never reports backpressure (unbounded logical queue);
// fails with ErrChannelClosed once the channel is closed
func (s *Sender) Send(env Envelope) error {
	if err := s.mailbox.Send(env); err != nil {
		return ErrChannelClosed
	}
	return nil
}

// Close closes the channel from the sending side; idempotent
// Already-enqueued envelopes remain receivable
func (s *Sender) Close() {
	s.mailbox.Close()
}

// IsClosed returns true once the channel is closed
func (s *Sender) IsClosed() bool {
	return s.mailbox.IsClosed()
}

// Receive blocks until the next envelope arrives or ctx is cancelled
// After Close, it drains already-enqueued envelopes in order, then fails
// with ErrChannelClosed
func (r *Receiver) Receive(ctx context.Context) (Envelope, error) {
	msg, err := r.mailbox.Receive(ctx)
	if err != nil {
		if err == concurrency.ErrMailboxClosed {
			return Envelope{}, ErrChannelClosed
		}
		return Envelope{}, err
	}

	env, ok := msg.(Envelope)
	if !ok {
		return Envelope{}, &Error{Code: "INVALID_MESSAGE", Message: "message is not an envelope"}
	}
	return env, nil
}

// Close closes the channel from the receiving side; idempotent
func (r *Receiver) Close() {
	r.mailbox.Close()
}

// Pending returns the number of undelivered envelopes
func (r *Receiver) Pending() int {
	return r.mailbox.Size()
}
