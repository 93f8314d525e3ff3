package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("unlimited limiter blocked for %v", elapsed)
	}
}

func TestLimiter_Paces(t *testing.T) {
	// 50 rps => 20ms between operations
	l := NewLimiter(50, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	elapsed := time.Since(start)

	// First call is free, the next two should take ~40ms combined
	if elapsed < 30*time.Millisecond {
		t.Errorf("expected pacing of at least 30ms for 3 ops at 50rps, got %v", elapsed)
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	l := NewLimiter(0.5, 0) // one op every 2s

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error on first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	if err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestLimiter_JitterClamped(t *testing.T) {
	l := NewLimiter(1000, 5.0) // invalid jitter gets clamped to 1.0
	if l.jitter != 1.0 {
		t.Errorf("expected jitter clamped to 1.0, got %f", l.jitter)
	}

	l2 := NewLimiter(1000, -1)
	if l2.jitter != 0 {
		t.Errorf("expected negative jitter clamped to 0, got %f", l2.jitter)
	}
}
