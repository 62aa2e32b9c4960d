package concurrency

import (
	"context"
	"errors"
)

var (
	// ErrExecutorSaturated is returned when the executor has no free slot (backpressure)
	ErrExecutorSaturated = errors.New("executor is saturated")

	// ErrExecutorClosed is returned when submitting to a shut-down executor
	ErrExecutorClosed = errors.New("executor is closed")
)

// ExecutorStats provides statistics about executor utilization
type ExecutorStats struct {
	ActiveTasks    int64   // Currently running tasks
	CompletedTasks int64   // Total completed tasks
	RejectedTasks  int64   // Total rejected tasks (backpressure)
	Capacity       int     // Maximum concurrent tasks
	Utilization    float64 // Active slots as a percentage of capacity
}

// Executor runs each submitted task on its own dedicated concurrency unit
// Hides goroutine creation and lifecycle tracking from application code
//
// Unlike a queue-fed pool, a slot is held for the task's entire lifetime, so
// long-running tasks (receive loops) cannot starve one another. Submission
// fails fast when all slots are taken.
type Executor interface {
	// Submit starts a task immediately on its own unit
	// Returns ErrExecutorSaturated if all slots are taken, ErrExecutorClosed after Shutdown
	Submit(task Task) error

	// Shutdown stops the executor
	// Cancels the context passed to running tasks and waits for them to
	// finish, up to ctx's deadline
	Shutdown(ctx context.Context) error

	// Stats returns current executor statistics
	Stats() ExecutorStats
}
