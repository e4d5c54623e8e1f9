package monitoring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type flakyChecker struct {
	results chan bool
}

func (f *flakyChecker) HealthCheck(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case r := <-f.results:
		return r
	}
}

func TestMonitorHealth(t *testing.T) {
	checker := &flakyChecker{results: make(chan bool)}
	var healthy atomic.Bool
	healthy.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		MonitorHealth(ctx, "test", checker, &healthy, time.Millisecond)
		close(done)
	}()

	checker.results <- false
	checker.results <- true // the second check only starts after the first result is stored
	if !waitFor(func() bool { return healthy.Load() }) {
		t.Error("expected the backend to recover")
	}

	checker.results <- false
	if !waitFor(func() bool { return !healthy.Load() }) {
		t.Error("expected the backend to be unhealthy")
	}

	cancel()
	<-done
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}
