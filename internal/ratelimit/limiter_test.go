package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestConsecutiveRequestsAreSpaced(t *testing.T) {
	const gap = 30 * time.Millisecond
	l := New(gap)
	ctx := context.Background()

	var starts []time.Time
	var ends []time.Time
	for range 4 {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		starts = append(starts, time.Now())
		time.Sleep(5 * time.Millisecond) // simulated request
		ends = append(ends, time.Now())
		l.Done()
	}

	for i := 1; i < len(starts); i++ {
		if got := starts[i].Sub(ends[i-1]); got < gap-2*time.Millisecond {
			t.Errorf("gap %d = %v, want >= %v (measured from previous completion)", i, got, gap)
		}
	}
}

func TestFirstRequestNotDelayed(t *testing.T) {
	l := New(time.Second)
	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	l.Done()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Wait took %v, want immediate", elapsed)
	}
}

func TestConcurrentCallersSerialize(t *testing.T) {
	const gap = 20 * time.Millisecond
	l := New(gap)
	ctx := context.Background()

	var mu sync.Mutex
	var stamps []time.Time

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Wait(ctx); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
			l.Done()
		}()
	}
	wg.Wait()

	if len(stamps) != 3 {
		t.Fatalf("got %d requests, want 3", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if got := stamps[i].Sub(stamps[i-1]); got < gap-2*time.Millisecond {
			t.Errorf("concurrent gap %d = %v, want >= %v", i, got, gap)
		}
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	l := New(time.Minute)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	l.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		l.Done()
		t.Fatal("expected context error from Wait during a long gap")
	}
}
