// Package ratelimit spaces out requests to the translation endpoint. One
// Limiter is shared by every caller in the process.
package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits at most one dispatch per interval across all callers
type Limiter struct {
	interval   time.Duration
	limiter    *rate.Limiter
	dispatches atomic.Int64
}

// IntervalFor converts a requests-per-second setting into the minimum
// spacing between dispatches. Rates below 1 are raised to 1.
func IntervalFor(ratePerSecond int) time.Duration {
	if ratePerSecond < 1 {
		ratePerSecond = 1
	}
	return time.Second / time.Duration(ratePerSecond)
}

// New creates a limiter for the given requests-per-second setting
func New(ratePerSecond int) *Limiter {
	interval := IntervalFor(ratePerSecond)
	return &Limiter{
		interval: interval,
		// Burst 1: a single token refilled once per interval
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next dispatch slot, then claims it
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	l.dispatches.Add(1)
	return nil
}

// Interval returns the minimum spacing between dispatches
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Dispatches returns how many callers have been admitted so far
func (l *Limiter) Dispatches() int64 {
	return l.dispatches.Load()
}
