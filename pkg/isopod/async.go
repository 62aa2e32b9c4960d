package isopod

import (
	"context"
)

// FutureT is a type-safe Future using Go generics
// This is a struct, not an interface, because Go doesn't allow type
// parameters on interface methods
type FutureT[T any] struct {
	future Future
}

// PromiseT is a type-safe Promise using Go generics
type PromiseT[T any] struct {
	FutureT[T]
}

// NewFutureT creates a new type-safe Future
func NewFutureT[T any]() *FutureT[T] {
	return &FutureT[T]{future: NewFuture()}
}

// NewPromiseT creates a new type-safe Promise
func NewPromiseT[T any]() *PromiseT[T] {
	return &PromiseT[T]{
		FutureT: FutureT[T]{future: NewPromise()},
	}
}

// Await waits for the future to complete and returns the typed result
// Provides async/await-style syntax: result, err := future.Await(ctx)
func (f *FutureT[T]) Await(ctx context.Context) (T, error) {
	var zero T
	result, err := f.future.Await(ctx)
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, &Error{Message: "type assertion failed"}
	}
	return typed, nil
}

// Done is closed once the future is resolved
func (f *FutureT[T]) Done() <-chan struct{} {
	return f.future.Done()
}

// OnSuccess registers a typed callback
func (f *FutureT[T]) OnSuccess(handler func(T)) *FutureT[T] {
	f.future.OnSuccess(func(result interface{}) {
		if typed, ok := result.(T); ok {
			handler(typed)
		}
	})
	return f
}

// OnFailure registers an error callback
func (f *FutureT[T]) OnFailure(handler func(error)) *FutureT[T] {
	f.future.OnFailure(handler)
	return f
}

// Complete completes the promise with a typed value
func (p *PromiseT[T]) Complete(value T) {
	p.future.Complete(value)
}

// Fail fails the promise with an error
func (p *PromiseT[T]) Fail(err error) {
	p.future.Fail(err)
}

// Then chains a success handler, returning a Future of the transformed type
func Then[T any, R any](f *FutureT[T], fn func(T) (R, error)) *FutureT[R] {
	mapped := NewFutureT[R]()

	f.future.OnSuccess(func(result interface{}) {
		typed, ok := result.(T)
		if !ok {
			mapped.future.Fail(&Error{Message: "type assertion failed"})
			return
		}
		next, err := fn(typed)
		if err != nil {
			mapped.future.Fail(err)
		} else {
			mapped.future.Complete(next)
		}
	})
	f.future.OnFailure(func(err error) {
		mapped.future.Fail(err)
	})

	return mapped
}

// Catch chains an error handler that can recover a failed future
func Catch[T any](f *FutureT[T], fn func(error) (T, error)) *FutureT[T] {
	mapped := NewFutureT[T]()

	f.future.OnSuccess(func(result interface{}) {
		mapped.future.Complete(result)
	})
	f.future.OnFailure(func(err error) {
		recovered, handlerErr := fn(err)
		if handlerErr != nil {
			mapped.future.Fail(handlerErr)
		} else {
			mapped.future.Complete(recovered)
		}
	})

	return mapped
}

// Map transforms the result synchronously
func Map[T any, R any](f *FutureT[T], fn func(T) R) *FutureT[R] {
	return Then(f, func(v T) (R, error) {
		return fn(v), nil
	})
}

// All waits for every future and collects the results in argument order
func All[T any](ctx context.Context, futures ...*FutureT[T]) *FutureT[[]T] {
	promise := NewPromiseT[[]T]()

	go func() {
		results := make([]T, 0, len(futures))
		for _, f := range futures {
			result, err := f.Await(ctx)
			if err != nil {
				promise.Fail(err)
				return
			}
			results = append(results, result)
		}
		promise.Complete(results)
	}()

	return &promise.FutureT
}

// Race resolves with the first future to complete, success or failure
func Race[T any](ctx context.Context, futures ...*FutureT[T]) *FutureT[T] {
	promise := NewPromiseT[T]()

	for _, f := range futures {
		go func(f *FutureT[T]) {
			result, err := f.Await(ctx)
			if err != nil {
				promise.future.Fail(err)
			} else {
				promise.future.Complete(result)
			}
		}(f)
	}

	return &promise.FutureT
}
