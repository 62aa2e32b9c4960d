package isopod

import (
	"context"
	"time"

	"github.com/isopodio/isopod/pkg/core"
)

// New creates a coordinator ready to spawn isolated workers
func New(ctx context.Context, opts core.Options) core.Coordinator {
	return core.NewCoordinator(ctx, opts)
}

// RunIsolated executes fn(input) in a fresh one-shot isolate and returns a
// type-safe Future with the result
//
// The input is serialized before it crosses the isolation boundary and the
// output is serialized on the way back, so the caller and the isolate never
// share a mutable value. The caller's own execution continues unblocked
// until it awaits the future. A zero timeout means no deadline.
func RunIsolated[In any, Out any](c core.Coordinator, fn func(In) (Out, error), input In, timeout time.Duration) *FutureT[Out] {
	promise := NewPromiseT[Out]()

	payload := func(ctx context.Context, raw []byte) ([]byte, error) {
		var in In
		if err := core.JSONDecode(raw, &in); err != nil {
			return nil, err
		}
		out, err := fn(in)
		if err != nil {
			return nil, err
		}
		return core.JSONEncode(out)
	}

	go func() {
		raw, err := core.JSONEncode(input)
		if err != nil {
			promise.Fail(err)
			return
		}
		body, err := c.Run(payload, raw, timeout)
		if err != nil {
			promise.Fail(err)
			return
		}
		var out Out
		if err := core.JSONDecode(body, &out); err != nil {
			promise.Fail(err)
			return
		}
		promise.Complete(out)
	}()

	return &promise.FutureT
}

// Worker is a typed handle to a persistent worker
// It stays alive across many request/response exchanges until closed
type Worker[Req any, Res any] struct {
	handle core.WorkerHandle
}

// SpawnWorker starts a persistent worker running handler for every request
func SpawnWorker[Req any, Res any](c core.Coordinator, handler func(Req) (Res, error)) (*Worker[Req, Res], error) {
	payload := func(ctx context.Context, raw []byte) ([]byte, error) {
		var req Req
		if err := core.JSONDecode(raw, &req); err != nil {
			return nil, err
		}
		res, err := handler(req)
		if err != nil {
			return nil, err
		}
		return core.JSONEncode(res)
	}

	handle, err := c.SpawnWorker(payload)
	if err != nil {
		return nil, err
	}
	return &Worker[Req, Res]{handle: handle}, nil
}

// Call issues a correlated request and returns a Future with the response
// Fails with core.ErrWorkerClosed once Close has begun; a zero timeout
// means no deadline
func (w *Worker[Req, Res]) Call(request Req, timeout time.Duration) *FutureT[Res] {
	promise := NewPromiseT[Res]()

	go func() {
		raw, err := core.JSONEncode(request)
		if err != nil {
			promise.Fail(err)
			return
		}
		body, err := w.handle.Call(raw, timeout)
		if err != nil {
			promise.Fail(err)
			return
		}
		var res Res
		if err := core.JSONDecode(body, &res); err != nil {
			promise.Fail(err)
			return
		}
		promise.Complete(res)
	}()

	return &promise.FutureT
}

// Close gracefully shuts the worker down
// The returned future resolves once every pending request has resolved and
// the worker's channels are released
func (w *Worker[Req, Res]) Close() *FutureT[bool] {
	promise := NewPromiseT[bool]()

	go func() {
		if err := w.handle.Close(); err != nil {
			promise.Fail(err)
			return
		}
		promise.Complete(true)
	}()

	return &promise.FutureT
}

// Handle exposes the untyped coordinator-side handle
func (w *Worker[Req, Res]) Handle() core.WorkerHandle {
	return w.handle
}
