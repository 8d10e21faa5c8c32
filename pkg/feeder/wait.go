package feeder

import (
	"context"
	"time"
)

// sleepCtx sleeps for d, aborting as soon as the context is canceled so a
// pending wait never outlives a shutdown signal.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoffDelay doubles the base delay per consecutive error, capped at max.
func backoffDelay(consecutiveErrors int, base, max time.Duration) time.Duration {
	if consecutiveErrors > 30 {
		return max
	}
	d := base * time.Duration(1<<uint(consecutiveErrors))
	if d > max || d <= 0 {
		return max
	}
	return d
}
