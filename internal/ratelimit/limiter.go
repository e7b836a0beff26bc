// Package ratelimit spaces outbound requests to an upstream service.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum gap between requests, measured from the
// end of the previous request. Wait acquires the request slot (blocking
// concurrent callers) and sleeps out the remaining gap; Done records the
// completion time and releases the slot. Every successful Wait must be
// paired with a Done, success or failure.
//
// Limiters are per-source; two sources never rate-limit each other.
type Limiter struct {
	minGap time.Duration

	slot sync.Mutex // held from Wait until Done
	last time.Time  // end of the previous request, guarded by slot
}

// New returns a limiter with the given minimum inter-request gap.
func New(minGap time.Duration) *Limiter {
	return &Limiter{minGap: minGap}
}

// Wait acquires the request slot, then blocks until the gap since the
// previous Done has elapsed or ctx is cancelled. On error the slot is
// released and Done must not be called.
func (l *Limiter) Wait(ctx context.Context) error {
	l.slot.Lock()
	if l.last.IsZero() {
		return nil
	}
	sleep := l.minGap - time.Since(l.last)
	if sleep <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		l.slot.Unlock()
		return ctx.Err()
	case <-time.After(sleep):
		return nil
	}
}

// Done records the completion time of the current request and releases
// the slot; the next Wait measures its gap from this instant.
func (l *Limiter) Done() {
	l.last = time.Now()
	l.slot.Unlock()
}
