package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter spaces out scrape invocations with a jittered minimum gap so
// back-to-back API requests do not hammer the target site.
type Limiter struct {
	mu       sync.Mutex
	last     time.Time
	minDelay time.Duration
	maxDelay time.Duration
	rng      *rand.Rand
}

func New(minDelay, maxDelay time.Duration) *Limiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Limiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks until the jittered gap since the previous call has elapsed, or
// until ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	gap := l.minDelay
	if l.maxDelay > l.minDelay {
		gap += time.Duration(l.rng.Int63n(int64(l.maxDelay - l.minDelay)))
	}
	wait := time.Until(l.last.Add(gap))
	l.last = time.Now()
	if wait > 0 {
		l.last = l.last.Add(wait)
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
