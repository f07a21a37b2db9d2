package provider

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("wait %d: unexpected error: %v", i, err)
		}
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatal("waits within the burst should not block")
	}
}

func TestRateLimiterRefillRestoresToken(t *testing.T) {
	limiter := NewRateLimiter(1, 5*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(15 * time.Millisecond)

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("expected token after refill, got %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatal("refilled token should be available without blocking")
	}
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRateLimiterBlocksWhenDrained(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	ctx := context.Background()
	_ = limiter.Wait(ctx)
	_ = limiter.Wait(ctx)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(timeoutCtx); err == nil {
		t.Fatal("expected deadline error on drained bucket")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("wait should return promptly after the deadline")
	}
}
