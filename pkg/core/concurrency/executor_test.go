package concurrency

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutor_Submit(t *testing.T) {
	executor := NewExecutor(context.Background(), DefaultExecutorConfig())
	defer executor.Shutdown(context.Background())

	var ran int32
	done := make(chan struct{})

	task := NewNamedTask("test-task", func(ctx context.Context) error {
		atomic.StoreInt32(&ran, 1)
		close(done)
		return nil
	})

	if err := executor.Submit(task); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	if atomic.LoadInt32(&ran) != 1 {
		t.Error("task did not execute")
	}
}

func TestExecutor_SaturationBackpressure(t *testing.T) {
	executor := NewExecutor(context.Background(), ExecutorConfig{MaxTasks: 1})
	defer executor.Shutdown(context.Background())

	release := make(chan struct{})
	blocker := NewNamedTask("blocker", func(ctx context.Context) error {
		<-release
		return nil
	})

	if err := executor.Submit(blocker); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// Second submission has no free slot
	err := executor.Submit(NewNamedTask("rejected", func(ctx context.Context) error { return nil }))
	if err != ErrExecutorSaturated {
		t.Errorf("Submit() on saturated executor error = %v, want ErrExecutorSaturated", err)
	}

	stats := executor.Stats()
	if stats.RejectedTasks != 1 {
		t.Errorf("Stats().RejectedTasks = %d, want 1", stats.RejectedTasks)
	}

	close(release)
}

func TestExecutor_SlotReleasedAfterCompletion(t *testing.T) {
	executor := NewExecutor(context.Background(), ExecutorConfig{MaxTasks: 1})
	defer executor.Shutdown(context.Background())

	first := make(chan struct{})
	executor.Submit(NewNamedTask("first", func(ctx context.Context) error {
		close(first)
		return nil
	}))
	<-first

	// The slot frees up once the first task finishes
	deadline := time.Now().Add(time.Second)
	for {
		err := executor.Submit(NewNamedTask("second", func(ctx context.Context) error { return nil }))
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Submit() after completion error = %v, want nil", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestExecutor_SubmitAfterShutdown(t *testing.T) {
	executor := NewExecutor(context.Background(), DefaultExecutorConfig())
	executor.Shutdown(context.Background())

	err := executor.Submit(NewNamedTask("late", func(ctx context.Context) error { return nil }))
	if err != ErrExecutorClosed {
		t.Errorf("Submit() after Shutdown error = %v, want ErrExecutorClosed", err)
	}
}

func TestExecutor_ShutdownCancelsTasks(t *testing.T) {
	executor := NewExecutor(context.Background(), DefaultExecutorConfig())

	started := make(chan struct{})
	stopped := make(chan struct{})
	executor.Submit(NewNamedTask("long-running", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(stopped)
		return nil
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := executor.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled by Shutdown()")
	}
}

func TestExecutor_Stats(t *testing.T) {
	executor := NewExecutor(context.Background(), ExecutorConfig{MaxTasks: 4})
	defer executor.Shutdown(context.Background())

	stats := executor.Stats()
	if stats.Capacity != 4 {
		t.Errorf("Stats().Capacity = %d, want 4", stats.Capacity)
	}
	if stats.ActiveTasks != 0 {
		t.Errorf("Stats().ActiveTasks = %d, want 0", stats.ActiveTasks)
	}
}
