package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/isopodio/isopod/pkg/observability/tracing"
)

// WorkerState is the lifecycle state of a persistent worker
// Transitions: Created → Ready → (Active ⇄ Ready)* → Closing → Terminated
type WorkerState int

const (
	// StateCreated indicates the worker has been allocated but its loops are not running yet
	StateCreated WorkerState = iota
	// StateReady indicates the worker is idle and accepting requests
	StateReady
	// StateActive indicates the worker is processing a request
	StateActive
	// StateClosing indicates Close() has been called; new calls are rejected,
	// pending requests are still honored. Not re-enterable.
	StateClosing
	// StateTerminated indicates channels are released and the worker is deregistered
	StateTerminated
)

func (s WorkerState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkerHandle is the coordinator-side handle to a persistent worker
type WorkerHandle interface {
	// ID returns the worker identity
	ID() string

	// State returns the current lifecycle state
	State() WorkerState

	// Call sends a correlated request and blocks until the matching response
	// arrives, the timeout elapses (zero means no deadline), or the worker
	// closes. Fails immediately with ErrWorkerClosed once Close has begun;
	// acceptance is judged here, on the coordinator side.
	Call(request []byte, timeout time.Duration) ([]byte, error)

	// Close gracefully shuts the worker down; idempotent
	// Stops accepting new calls, then returns once every request pending at
	// the time of the call has resolved and channels are released
	Close() error

	// Done is closed when the worker reaches StateTerminated
	Done() <-chan struct{}

	// PendingRequests returns the number of in-flight requests
	PendingRequests() int
}

// workerHandle implements WorkerHandle
//
// Ownership:
//   - the handle (and its correlator) live on the coordinator side
//   - the work loop runs inside the isolate and touches only its endpoints
//     and the handler; it never reads coordinator state
type workerHandle struct {
	id      string
	handler Payload
	coord   *coordinator
	corr    *correlator

	inSend  *Sender   // coordinator → worker
	inRecv  *Receiver // worker side
	outSend *Sender   // worker → coordinator
	outRecv *Receiver // coordinator side

	mu         sync.RWMutex
	state      WorkerState
	terminated chan struct{}
}

func (wh *workerHandle) ID() string {
	return wh.id
}

func (wh *workerHandle) State() WorkerState {
	wh.mu.RLock()
	defer wh.mu.RUnlock()
	return wh.state
}

func (wh *workerHandle) Done() <-chan struct{} {
	return wh.terminated
}

func (wh *workerHandle) PendingRequests() int {
	return wh.corr.count()
}

// Call implements WorkerHandle interface
func (wh *workerHandle) Call(request []byte, timeout time.Duration) ([]byte, error) {
	if err := ValidateTimeout(timeout); err != nil {
		return nil, err
	}
	if timeout == 0 {
		timeout = wh.coord.opts.DefaultTimeout
	}

	// Registration and send happen under the same read lock that Close
	// takes exclusively, so a request is either fully accepted before the
	// shutdown sentinel or rejected here - never half-way
	wh.mu.RLock()
	if wh.state >= StateClosing {
		wh.mu.RUnlock()
		wh.coord.metrics.RequestsTotal.WithLabelValues("worker_closed").Inc()
		return nil, ErrWorkerClosed
	}
	p := wh.corr.register()
	sendErr := wh.inSend.Send(newRequest(p.id, copyBytes(request)))
	wh.mu.RUnlock()

	if sendErr != nil {
		wh.corr.cancel(p.id)
		wh.coord.metrics.RequestsTotal.WithLabelValues("worker_closed").Inc()
		return nil, ErrWorkerClosed
	}

	ctx, span := tracing.StartSpan(wh.coord.rootCtx, "isopod.call",
		tracing.WorkerID(wh.id), tracing.CorrelationID(p.id))
	defer span.End()

	start := time.Now()
	body, err := wh.corr.await(ctx, p, timeout)
	wh.coord.metrics.RequestDuration.WithLabelValues("call").Observe(time.Since(start).Seconds())
	wh.coord.metrics.RequestsTotal.WithLabelValues(callOutcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return body, nil
}

// Close implements WorkerHandle interface
func (wh *workerHandle) Close() error {
	wh.mu.Lock()
	if wh.state < StateClosing {
		wh.state = StateClosing
		// The sentinel queues behind every accepted request (per-sender
		// FIFO), so the worker drains before it exits
		if err := wh.inSend.Send(newShutdown()); err != nil {
			// Channel already closed: the worker is dead and the reply
			// loop is failing the stragglers
			wh.coord.logger.Debugf("worker %s: shutdown sentinel not delivered: %v", wh.id, err)
		}
	}
	wh.mu.Unlock()

	<-wh.terminated
	return nil
}

// workLoop is the worker's receive loop; it runs inside the isolate
// The only state it shares with the coordinator is the envelopes themselves
func (wh *workerHandle) workLoop(ctx context.Context) error {
	// Closing the outbound endpoint is the worker's last act on every exit
	// path; the reply loop observes it and finishes the lifecycle
	defer wh.outSend.Close()

	for {
		env, err := wh.inRecv.Receive(ctx)
		if err != nil {
			// Inbound channel closed or coordinator teardown
			return nil
		}

		switch env.Kind {
		case KindShutdown:
			return nil
		case KindRequest:
			wh.transition(StateReady, StateActive)
			body, perr := invokePayload(ctx, wh.handler, env.Body)
			if perr != nil {
				wh.outSend.Send(newError(env.ID, perr.Error()))
			} else {
				wh.outSend.Send(newResponse(env.ID, body))
			}
			wh.transition(StateActive, StateReady)
		default:
			wh.coord.logger.Warnf("worker %s: unexpected %s envelope dropped", wh.id, env.Kind)
		}
	}
}

// replyLoop multiplexes worker responses back into the correlator
// It runs on the coordinator side, one loop per worker
func (wh *workerHandle) replyLoop(ctx context.Context) error {
	for {
		env, err := wh.outRecv.Receive(ctx)
		if err != nil {
			// Outbound channel drained and closed: the worker exited,
			// gracefully or not. Anything still pending can never be
			// answered - fail it rather than leave a dangling caller.
			wh.corr.failAll(ErrWorkerClosed)
			wh.finish()
			return nil
		}

		switch env.Kind {
		case KindResponse, KindError:
			wh.corr.dispatch(env)
		default:
			wh.coord.logger.Warnf("worker %s: unexpected %s envelope on reply channel", wh.id, env.Kind)
		}
	}
}

// finish releases channels, deregisters the worker and marks it Terminated
func (wh *workerHandle) finish() {
	wh.mu.Lock()
	if wh.state == StateTerminated {
		wh.mu.Unlock()
		return
	}
	wh.state = StateTerminated
	wh.mu.Unlock()

	wh.inSend.Close()
	wh.coord.deregister(wh.id)
	wh.coord.metrics.ActiveWorkers.Dec()
	close(wh.terminated)
}

// transition moves state from one value to another, leaving other states
// (notably Closing) untouched
func (wh *workerHandle) transition(from, to WorkerState) {
	wh.mu.Lock()
	if wh.state == from {
		wh.state = to
	}
	wh.mu.Unlock()
}

// invokePayload runs a user payload with panic capture
// A panicking payload becomes a PayloadError for its caller; it never takes
// down the coordinator or sibling workers
func invokePayload(ctx context.Context, payload Payload, input []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &PayloadError{Description: fmt.Sprintf("payload panic: %v", r)}
		}
	}()

	return payload(ctx, copyBytes(input))
}

func callOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case err == ErrTimeout:
		return "timeout"
	case err == ErrWorkerClosed:
		return "worker_closed"
	default:
		return "payload_error"
	}
}
