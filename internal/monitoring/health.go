package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_INTERVAL = 15 * time.Second
	HEALTHCHECK_TIMEOUT  = 10 * time.Second
)

// Checker reports whether a backend is reachable.
type Checker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorHealth checks the backend once immediately and then on every tick,
// storing the result in healthy until ctx is done.
func MonitorHealth(ctx context.Context, name string, checker Checker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
		defer cancel()

		isHealthy := checker.HealthCheck(checkCtx)
		if healthy.Swap(isHealthy) != isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Backend recovered", slog.String("backend", name))
			} else {
				slog.Warn("[HealthCheck] Backend is unhealthy", slog.String("backend", name))
			}
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
