package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/isopodio/isopod/pkg/core/failfast"
	obsprom "github.com/isopodio/isopod/pkg/observability/prometheus"
)

// pending is a one-shot result cell for an in-flight correlated request
// Resolved at most once (done closed exactly once), readable many times
type pending struct {
	id      uint64
	created time.Time
	done    chan struct{}
	body    []byte
	err     error
}

// correlator matches asynchronous responses back to the call that issued them
//
// The id counter and the pending map are scoped to one coordinator instance;
// there is no process-wide state. Correctness depends solely on id matching,
// never on arrival order.
type correlator struct {
	nextID  uint64 // Atomic counter; ids are unique for the coordinator's lifetime
	mu      sync.Mutex
	pending map[uint64]*pending
	metrics *obsprom.Metrics
}

func newCorrelator(metrics *obsprom.Metrics) *correlator {
	return &correlator{
		pending: make(map[uint64]*pending),
		metrics: metrics,
	}
}

// register allocates the next correlation id and records a pending request
// A duplicate id would corrupt routing, so it is treated as a programming
// error, not a recoverable condition
func (c *correlator) register() *pending {
	id := atomic.AddUint64(&c.nextID, 1)
	p := &pending{
		id:      id,
		created: time.Now(),
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	_, dup := c.pending[id]
	failfast.If(!dup, "duplicate correlation id %d", id)
	c.pending[id] = p
	c.mu.Unlock()

	c.metrics.PendingRequests.Inc()
	return p
}

// dispatch routes a tagged response to its pending request
// Unknown ids (already resolved, timed out, or from a restarted worker) are
// silently discarded; duplicate delivery must not corrupt state
func (c *correlator) dispatch(env Envelope) {
	c.mu.Lock()
	p, ok := c.pending[env.ID]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, env.ID)
	c.mu.Unlock()

	if env.Kind == KindError {
		p.err = &PayloadError{Description: env.Reason}
	} else {
		p.body = copyBytes(env.Body)
	}
	close(p.done)
	c.metrics.PendingRequests.Dec()
}

// cancel removes a pending request that will no longer be awaited
// Returns false if the request was already resolved
func (c *correlator) cancel(id uint64) bool {
	c.mu.Lock()
	_, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if ok {
		c.metrics.PendingRequests.Dec()
	}
	return ok
}

// failAll resolves every outstanding pending request with err
// Called when the owning worker closes or dies; no future may dangle
func (c *correlator) failAll(err error) {
	c.mu.Lock()
	outstanding := make([]*pending, 0, len(c.pending))
	for _, p := range c.pending {
		outstanding = append(outstanding, p)
	}
	c.pending = make(map[uint64]*pending)
	c.mu.Unlock()

	for _, p := range outstanding {
		p.err = err
		close(p.done)
		c.metrics.PendingRequests.Dec()
	}
}

// count returns the number of in-flight requests
func (c *correlator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// await blocks until the pending request resolves, times out, or ctx ends
// On timeout the request is removed; the worker is left running and its late
// response is discarded by dispatch
func (c *correlator) await(ctx context.Context, p *pending, timeout time.Duration) ([]byte, error) {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-p.done:
		return p.body, p.err
	case <-timeoutCh:
		if c.cancel(p.id) {
			return nil, ErrTimeout
		}
		// Resolved while the timer fired; honor the result
		<-p.done
		return p.body, p.err
	case <-ctx.Done():
		if c.cancel(p.id) {
			return nil, ctx.Err()
		}
		<-p.done
		return p.body, p.err
	}
}
