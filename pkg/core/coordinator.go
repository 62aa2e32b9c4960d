package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/isopodio/isopod/pkg/core/concurrency"
	obsprom "github.com/isopodio/isopod/pkg/observability/prometheus"
	"github.com/isopodio/isopod/pkg/observability/tracing"
)

// Payload is a user-supplied unit of work executed inside an isolate
// Input and output cross the boundary as serialized bytes only; a payload
// must not retain references into coordinator memory
type Payload func(ctx context.Context, input []byte) ([]byte, error)

// Coordinator is the main entry point for the isopod runtime
// It supervises one-shot and persistent workers, routes their messages and
// owns all pool state; workers never touch that state directly
type Coordinator interface {
	// Run executes payload(input) in a fresh one-shot isolate
	// The isolate terminates automatically on success, failure or panic.
	// Blocks until the result arrives or timeout elapses (zero means no
	// deadline); spawn failure surfaces synchronously as ErrSpawnFailed.
	Run(payload Payload, input []byte, timeout time.Duration) ([]byte, error)

	// SpawnWorker starts a persistent worker running handler for every
	// request until the handle is closed
	SpawnWorker(handler Payload) (WorkerHandle, error)

	// WorkerCount returns the number of live persistent workers
	WorkerCount() int

	// Close shuts down the coordinator
	// Rejects new submissions, drains every worker (all pending requests
	// resolve before resources are released), then stops the executor
	Close() error

	// Context returns the root context
	Context() context.Context
}

// Options configures a Coordinator
type Options struct {
	// MaxTasks bounds the number of concurrently live isolates (one-shot
	// payloads plus two slots per persistent worker). Exceeding it fails
	// spawn synchronously.
	MaxTasks int

	// DefaultTimeout applies to calls issued without an explicit timeout;
	// zero means wait indefinitely
	DefaultTimeout time.Duration

	// Logger overrides the default logger
	Logger Logger

	// Metrics overrides the global metrics instance
	Metrics *obsprom.Metrics
}

// coordinator implements Coordinator
//
// Ownership and lifecycle:
//   - coordinator owns the executor (created in NewCoordinator, shut down in Close)
//   - coordinator owns every worker handle and the closed flag
//   - worker handles hold a back-reference for deregistration; both sides are
//     cleaned up together in Close()
type coordinator struct {
	workers    map[string]*workerHandle
	mu         sync.RWMutex
	closed     bool
	rootCtx    context.Context
	rootCancel context.CancelFunc
	executor   concurrency.Executor
	logger     Logger
	metrics    *obsprom.Metrics
	opts       Options
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(ctx context.Context, opts Options) Coordinator {
	if opts.Logger == nil {
		opts.Logger = NewDefaultLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = obsprom.GetMetrics()
	}
	if opts.MaxTasks < 1 {
		opts.MaxTasks = concurrency.DefaultExecutorConfig().MaxTasks
	}

	rootCtx, rootCancel := context.WithCancel(ctx)

	return &coordinator{
		workers:    make(map[string]*workerHandle),
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		executor:   concurrency.NewExecutor(rootCtx, concurrency.ExecutorConfig{MaxTasks: opts.MaxTasks}),
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		opts:       opts,
	}
}

// Run implements Coordinator interface
func (c *coordinator) Run(payload Payload, input []byte, timeout time.Duration) ([]byte, error) {
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}
	if err := ValidateTimeout(timeout); err != nil {
		return nil, err
	}
	if timeout == 0 {
		timeout = c.opts.DefaultTimeout
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrCoordinatorClosed
	}

	// One-shot result cell, resolved exactly once by the isolate
	cell := &pending{created: time.Now(), done: make(chan struct{})}

	// The input is copied before it crosses the boundary; the isolate never
	// sees the caller's slice
	in := copyBytes(input)
	name := "oneshot-" + shortID()
	task := concurrency.NewNamedTask(name, func(ctx context.Context) error {
		body, err := invokePayload(ctx, payload, in)
		if err != nil {
			cell.err = asPayloadError(err)
		} else {
			cell.body = body
		}
		close(cell.done)
		return nil
	})

	ctx, span := tracing.StartSpan(c.rootCtx, "isopod.run")
	defer span.End()

	if err := c.executor.Submit(task); err != nil {
		c.metrics.SpawnFailuresTotal.Inc()
		c.logger.Errorf("one-shot spawn rejected: %v", err)
		span.RecordError(ErrSpawnFailed)
		return nil, ErrSpawnFailed
	}
	c.metrics.SpawnsTotal.WithLabelValues("oneshot").Inc()

	start := time.Now()
	body, err := awaitCell(ctx, cell, timeout)
	c.metrics.RequestDuration.WithLabelValues("oneshot").Observe(time.Since(start).Seconds())
	c.metrics.RequestsTotal.WithLabelValues(callOutcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return body, nil
}

// SpawnWorker implements Coordinator interface
func (c *coordinator) SpawnWorker(handler Payload) (WorkerHandle, error) {
	if err := ValidatePayload(handler); err != nil {
		return nil, err
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrCoordinatorClosed
	}

	id := uuid.New().String()
	inSend, inRecv := NewChannel()
	outSend, outRecv := NewChannel()

	wh := &workerHandle{
		id:         id,
		handler:    handler,
		coord:      c,
		corr:       newCorrelator(c.metrics),
		inSend:     inSend,
		inRecv:     inRecv,
		outSend:    outSend,
		outRecv:    outRecv,
		state:      StateCreated,
		terminated: make(chan struct{}),
	}

	if err := c.executor.Submit(concurrency.NewNamedTask("worker-"+id, wh.workLoop)); err != nil {
		inSend.Close()
		outSend.Close()
		c.metrics.SpawnFailuresTotal.Inc()
		return nil, ErrSpawnFailed
	}
	if err := c.executor.Submit(concurrency.NewNamedTask("worker-"+id+"-replies", wh.replyLoop)); err != nil {
		// Closing the inbound endpoint makes the work loop exit; nothing
		// was registered, so no partial state is left behind
		inSend.Close()
		c.metrics.SpawnFailuresTotal.Inc()
		return nil, ErrSpawnFailed
	}

	// Both loops are running and the endpoint pairs are exchanged
	wh.transition(StateCreated, StateReady)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		wh.Close()
		return nil, ErrCoordinatorClosed
	}
	c.workers[id] = wh
	c.mu.Unlock()

	c.metrics.SpawnsTotal.WithLabelValues("persistent").Inc()
	c.metrics.ActiveWorkers.Inc()
	c.logger.Debugf("worker %s spawned", id)
	return wh, nil
}

// WorkerCount implements Coordinator interface
func (c *coordinator) WorkerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.workers)
}

// Close implements Coordinator interface
func (c *coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	handles := make([]*workerHandle, 0, len(c.workers))
	for _, wh := range c.workers {
		handles = append(handles, wh)
	}
	c.mu.Unlock()

	// Drain every worker before releasing the executor; Close on a handle
	// returns only once its pending requests have resolved
	for _, wh := range handles {
		wh.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.executor.Shutdown(shutdownCtx); err != nil {
		c.logger.Warnf("executor shutdown timeout: %v", err)
	}

	c.rootCancel()
	return nil
}

// Context implements Coordinator interface
func (c *coordinator) Context() context.Context {
	return c.rootCtx
}

func (c *coordinator) deregister(id string) {
	c.mu.Lock()
	delete(c.workers, id)
	c.mu.Unlock()
}

// awaitCell blocks on a one-shot result cell
// On timeout the isolate keeps running; its result is simply never read
func awaitCell(ctx context.Context, cell *pending, timeout time.Duration) ([]byte, error) {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-cell.done:
		return cell.body, cell.err
	case <-timeoutCh:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// asPayloadError tags an error as originating from inside a worker,
// preserving the original description
func asPayloadError(err error) error {
	if _, ok := err.(*PayloadError); ok {
		return err
	}
	return &PayloadError{Description: err.Error()}
}

func shortID() string {
	return uuid.New().String()[:8]
}
