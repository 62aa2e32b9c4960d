package core

import (
	"context"
	"sync"
	"testing"
	"time"

	obsprom "github.com/isopodio/isopod/pkg/observability/prometheus"
)

func newTestCorrelator() *correlator {
	return newCorrelator(obsprom.GetMetrics())
}

func TestCorrelator_UniqueIDs(t *testing.T) {
	corr := newTestCorrelator()

	seen := make(map[uint64]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := corr.register()
			mu.Lock()
			if seen[p.id] {
				t.Errorf("correlation id %d issued twice", p.id)
			}
			seen[p.id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if corr.count() != 100 {
		t.Errorf("count() = %d, want 100", corr.count())
	}
}

func TestCorrelator_DispatchResolvesMatchingPending(t *testing.T) {
	corr := newTestCorrelator()
	ctx := context.Background()

	p1 := corr.register()
	p2 := corr.register()

	// Respond in reversed order; routing depends on id matching only
	corr.dispatch(newResponse(p2.id, []byte("two")))
	corr.dispatch(newResponse(p1.id, []byte("one")))

	body, err := corr.await(ctx, p1, 0)
	if err != nil {
		t.Fatalf("await(p1) error = %v", err)
	}
	if string(body) != "one" {
		t.Errorf("await(p1) = %s, want one", body)
	}

	body, err = corr.await(ctx, p2, 0)
	if err != nil {
		t.Fatalf("await(p2) error = %v", err)
	}
	if string(body) != "two" {
		t.Errorf("await(p2) = %s, want two", body)
	}
}

func TestCorrelator_DispatchErrorEnvelope(t *testing.T) {
	corr := newTestCorrelator()
	ctx := context.Background()

	p := corr.register()
	corr.dispatch(newError(p.id, "division by zero"))

	_, err := corr.await(ctx, p, 0)
	perr, ok := err.(*PayloadError)
	if !ok {
		t.Fatalf("await() error = %T, want *PayloadError", err)
	}
	if perr.Description != "division by zero" {
		t.Errorf("PayloadError.Description = %q, want original description", perr.Description)
	}
}

func TestCorrelator_UnknownIDDiscarded(t *testing.T) {
	corr := newTestCorrelator()

	// Must not panic or corrupt state
	corr.dispatch(newResponse(9999, []byte("stale")))

	if corr.count() != 0 {
		t.Errorf("count() = %d, want 0", corr.count())
	}
}

func TestCorrelator_DuplicateDeliveryIsNoOp(t *testing.T) {
	corr := newTestCorrelator()
	ctx := context.Background()

	p := corr.register()
	corr.dispatch(newResponse(p.id, []byte("first")))
	corr.dispatch(newResponse(p.id, []byte("second"))) // duplicate: discarded

	body, err := corr.await(ctx, p, 0)
	if err != nil {
		t.Fatalf("await() error = %v", err)
	}
	if string(body) != "first" {
		t.Errorf("await() = %s, want first", body)
	}
}

func TestCorrelator_Timeout(t *testing.T) {
	corr := newTestCorrelator()
	ctx := context.Background()

	p := corr.register()

	start := time.Now()
	_, err := corr.await(ctx, p, 50*time.Millisecond)
	elapsed := time.Since(start)

	if err != ErrTimeout {
		t.Fatalf("await() error = %v, want ErrTimeout", err)
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("await() took %v, want ~50ms", elapsed)
	}
	if corr.count() != 0 {
		t.Errorf("count() after timeout = %d, want 0 (pending removed)", corr.count())
	}

	// The late response is discarded, not delivered anywhere
	corr.dispatch(newResponse(p.id, []byte("late")))
	if corr.count() != 0 {
		t.Errorf("count() after late dispatch = %d, want 0", corr.count())
	}
}

func TestCorrelator_FailAll(t *testing.T) {
	corr := newTestCorrelator()
	ctx := context.Background()

	pendings := []*pending{corr.register(), corr.register(), corr.register()}
	corr.failAll(ErrWorkerClosed)

	for i, p := range pendings {
		_, err := corr.await(ctx, p, time.Second)
		if err != ErrWorkerClosed {
			t.Errorf("await(pending %d) error = %v, want ErrWorkerClosed", i, err)
		}
	}
	if corr.count() != 0 {
		t.Errorf("count() after failAll = %d, want 0", corr.count())
	}
}

func TestCorrelator_AwaitResolvedManyTimes(t *testing.T) {
	corr := newTestCorrelator()
	ctx := context.Background()

	p := corr.register()
	corr.dispatch(newResponse(p.id, []byte("value")))

	// A resolved cell stays readable
	for i := 0; i < 3; i++ {
		body, err := corr.await(ctx, p, 0)
		if err != nil || string(body) != "value" {
			t.Errorf("await() #%d = (%s, %v), want (value, nil)", i, body, err)
		}
	}
}
