package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket sized to the free-tier request budgets of
// the public market data APIs. The bucket starts full; each Wait consumes a
// token and one token is restored every period.
type RateLimiter struct {
	mu    sync.Mutex
	burst int
	avail int

	period time.Duration
	next   time.Time
}

// NewRateLimiter returns a limiter that admits up to burst calls immediately
// and then one call per period.
func NewRateLimiter(burst int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		burst:  burst,
		avail:  burst,
		period: period,
		next:   time.Now().Add(period),
	}
}

// Wait consumes a token, blocking until one is available or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.restore(time.Now())
		if l.avail > 0 {
			l.avail--
			l.mu.Unlock()
			return nil
		}
		sleep := time.Until(l.next)
		l.mu.Unlock()

		if sleep < time.Millisecond {
			sleep = time.Millisecond
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// restore credits one token per full period elapsed since the last refill.
// A full bucket re-anchors the deadline so idle time never banks extra
// instant refills.
func (l *RateLimiter) restore(now time.Time) {
	if l.avail == l.burst {
		l.next = now.Add(l.period)
		return
	}
	for !now.Before(l.next) && l.avail < l.burst {
		l.avail++
		l.next = l.next.Add(l.period)
	}
	if l.avail == l.burst {
		l.next = now.Add(l.period)
	}
}
