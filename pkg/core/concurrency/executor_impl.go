package concurrency

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// dedicatedExecutor implements Executor with one goroutine per task
// Hides all Go concurrency primitives from the public API
type dedicatedExecutor struct {
	slots  chan struct{} // Hidden: counting semaphore
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	closed bool
	logger simpleLogger

	// Metrics (atomic for thread-safety)
	activeTasks    int64
	completedTasks int64
	rejectedTasks  int64
}

// ExecutorConfig configures an Executor
type ExecutorConfig struct {
	MaxTasks int // Maximum number of concurrently running tasks
}

// DefaultExecutorConfig returns the default executor configuration
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxTasks: 256,
	}
}

// NewExecutor creates a new Executor with the given configuration
// Hides goroutine and semaphore creation from callers
func NewExecutor(ctx context.Context, config ExecutorConfig) Executor {
	if config.MaxTasks < 1 {
		config.MaxTasks = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &dedicatedExecutor{
		slots:  make(chan struct{}, config.MaxTasks), // Hidden: semaphore creation
		ctx:    ctx,
		cancel: cancel,
		logger: newDefaultSimpleLogger(),
	}
}

// Submit implements Executor interface
// Hides goroutine creation and semaphore operations
func (e *dedicatedExecutor) Submit(task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()

	if closed {
		return ErrExecutorClosed
	}

	// Acquire a slot (non-blocking for backpressure)
	select {
	case e.slots <- struct{}{}: // Hidden: semaphore acquire
	default:
		atomic.AddInt64(&e.rejectedTasks, 1)
		return ErrExecutorSaturated
	}

	e.wg.Add(1)
	atomic.AddInt64(&e.activeTasks, 1)

	go func() { // Hidden: goroutine creation
		defer func() {
			atomic.AddInt64(&e.activeTasks, -1)
			atomic.AddInt64(&e.completedTasks, 1)
			<-e.slots // Hidden: semaphore release
			e.wg.Done()
		}()

		if err := task.Execute(e.ctx); err != nil {
			e.logger.Errorf("task %s failed: %v", task.Name(), err)
		}
	}()

	return nil
}

// Shutdown implements Executor interface
func (e *dedicatedExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	// Cancel context to stop running tasks
	e.cancel()

	// Wait for tasks to finish or timeout
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// Stats implements Executor interface
func (e *dedicatedExecutor) Stats() ExecutorStats {
	active := atomic.LoadInt64(&e.activeTasks)
	capacity := cap(e.slots)
	utilization := float64(active) / float64(capacity) * 100.0
	if utilization > 100.0 {
		utilization = 100.0
	}

	return ExecutorStats{
		ActiveTasks:    active,
		CompletedTasks: atomic.LoadInt64(&e.completedTasks),
		RejectedTasks:  atomic.LoadInt64(&e.rejectedTasks),
		Capacity:       capacity,
		Utilization:    utilization,
	}
}
