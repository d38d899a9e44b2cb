package omdb

import (
	"context"
	"time"
)

// Limiter paces outbound provider calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps for a fixed duration before every call.
type FixedDelay struct {
	Delay time.Duration
}

// Wait blocks for the configured delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay never waits. Intended for tests.
var NoDelay Limiter = FixedDelay{}
