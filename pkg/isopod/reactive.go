package isopod

import (
	"context"
	"sync"
)

// Future represents an asynchronous computation
// It is a one-shot result cell: resolved at most once, readable many times
type Future interface {
	// Complete completes the future with a result; later calls are no-ops
	Complete(result interface{})

	// Fail fails the future with an error; later calls are no-ops
	Fail(err error)

	// Done is closed once the future is resolved
	Done() <-chan struct{}

	// Await blocks until the future resolves or ctx is cancelled
	Await(ctx context.Context) (interface{}, error)

	// OnSuccess registers a success handler
	// Runs immediately if the future already resolved successfully
	OnSuccess(handler func(interface{})) Future

	// OnFailure registers a failure handler
	// Runs immediately if the future already failed
	OnFailure(handler func(error)) Future

	// Then chains a success handler returning a new Future
	Then(fn func(interface{}) (interface{}, error)) Future

	// Catch chains an error handler returning a new Future that recovers
	Catch(fn func(error) (interface{}, error)) Future
}

// Promise is the writable side of a Future
type Promise interface {
	Future

	// TryComplete attempts to complete; reports whether this call resolved it
	TryComplete(result interface{}) bool

	// TryFail attempts to fail; reports whether this call resolved it
	TryFail(err error) bool
}

// Error represents a future resolution error
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// future implements Future and Promise
// The "exactly once" contract is enforced mechanically: done is closed under
// mu by whichever resolution wins, and every later attempt observes resolved
type future struct {
	mu              sync.Mutex
	resolved        bool
	value           interface{}
	err             error
	done            chan struct{}
	successHandlers []func(interface{})
	failureHandlers []func(error)
}

// NewFuture creates a new unresolved future
func NewFuture() Future {
	return &future{done: make(chan struct{})}
}

// NewPromise creates a new unresolved promise
func NewPromise() Promise {
	return &future{done: make(chan struct{})}
}

func (f *future) Complete(result interface{}) {
	f.TryComplete(result)
}

func (f *future) Fail(err error) {
	f.TryFail(err)
}

func (f *future) TryComplete(result interface{}) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.resolved = true
	f.value = result
	handlers := f.successHandlers
	f.successHandlers = nil
	f.failureHandlers = nil
	close(f.done)
	f.mu.Unlock()

	for _, handler := range handlers {
		handler(result)
	}
	return true
}

func (f *future) TryFail(err error) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.resolved = true
	f.err = err
	handlers := f.failureHandlers
	f.successHandlers = nil
	f.failureHandlers = nil
	close(f.done)
	f.mu.Unlock()

	for _, handler := range handlers {
		handler(err)
	}
	return true
}

func (f *future) Done() <-chan struct{} {
	return f.done
}

func (f *future) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		return f.value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *future) OnSuccess(handler func(interface{})) Future {
	f.mu.Lock()
	if f.resolved {
		value, err := f.value, f.err
		f.mu.Unlock()
		if err == nil {
			handler(value)
		}
		return f
	}
	f.successHandlers = append(f.successHandlers, handler)
	f.mu.Unlock()
	return f
}

func (f *future) OnFailure(handler func(error)) Future {
	f.mu.Lock()
	if f.resolved {
		err := f.err
		f.mu.Unlock()
		if err != nil {
			handler(err)
		}
		return f
	}
	f.failureHandlers = append(f.failureHandlers, handler)
	f.mu.Unlock()
	return f
}

func (f *future) Then(fn func(interface{}) (interface{}, error)) Future {
	mapped := NewFuture()

	f.OnSuccess(func(result interface{}) {
		next, err := fn(result)
		if err != nil {
			mapped.Fail(err)
		} else {
			mapped.Complete(next)
		}
	})
	f.OnFailure(func(err error) {
		mapped.Fail(err)
	})

	return mapped
}

func (f *future) Catch(fn func(error) (interface{}, error)) Future {
	mapped := NewFuture()

	f.OnSuccess(func(result interface{}) {
		mapped.Complete(result)
	})
	f.OnFailure(func(err error) {
		recovered, handlerErr := fn(err)
		if handlerErr != nil {
			mapped.Fail(handlerErr)
		} else {
			mapped.Complete(recovered)
		}
	})

	return mapped
}
