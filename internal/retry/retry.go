// Package retry provides a fixed-interval, bounded-attempt polling policy.
// It backs both extension probing and transaction confirmation, which share
// the same shape: poll a condition until it reports done or attempts run out.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every attempt completed without the
// condition reporting done.
var ErrExhausted = errors.New("retry: attempts exhausted")

type Policy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Do invokes fn up to MaxAttempts times, sleeping Interval between attempts.
// fn returning done=true stops immediately with fn's error (which may be nil).
// A non-nil error with done=false is swallowed and the attempt counted; only
// the terminal outcome is reported. Context cancellation wins over the bound.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) (bool, error)) error {
	if p.MaxAttempts <= 0 {
		return ErrExhausted
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		done, err := fn(ctx)
		if done {
			return err
		}

		timer.Reset(p.Interval)
	}

	return ErrExhausted
}
