package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces operations to a configured rate with optional jitter. Unlike
// a ticker-based limiter it tracks the next allowed instant directly, so an
// idle limiter does not accumulate a backlog of tokens.
// It is safe for concurrent use by multiple goroutines.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
	next     time.Time
}

// NewLimiter creates a limiter allowing rps operations per second with the
// given jitter factor. Jitter is clamped to [0.0, 1.0]. If rps <= 0 the
// limiter never blocks.
func NewLimiter(rps float64, jitter float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	return &Limiter{
		interval: time.Duration(float64(time.Second) / rps),
		jitter:   jitter,
	}
}

// Wait blocks until the next operation is allowed, or until the context is
// canceled. The first call never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval == 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.next.Sub(now)

	// Schedule the slot after this one. Positive jitter stretches the gap,
	// negative jitter shrinks it, never below zero.
	gap := l.interval
	if l.jitter > 0 {
		factor := 1 + l.jitter*((rand.Float64()*2)-1)
		gap = time.Duration(float64(l.interval) * factor)
		if gap < 0 {
			gap = 0
		}
	}
	if wait > 0 {
		l.next = l.next.Add(gap)
	} else {
		l.next = now.Add(gap)
	}
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
