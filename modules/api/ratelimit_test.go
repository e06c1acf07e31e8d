package api

import (
	"testing"
	"time"
)

func TestRateLimiterBurstThenDeny(t *testing.T) {
	limiter := newRateLimiter(5, 1)

	for i := 0; i < 5; i++ {
		if !limiter.allow() {
			t.Fatalf("request %d within burst was denied", i)
		}
	}
	if limiter.allow() {
		t.Error("request beyond burst was allowed")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	limiter := newRateLimiter(2, 10)
	limiter.allow()
	limiter.allow()
	if limiter.allow() {
		t.Fatal("bucket should be empty")
	}

	// Simulate a second passing instead of sleeping in the test.
	limiter.mu.Lock()
	limiter.lastRefill = limiter.lastRefill.Add(-time.Second)
	limiter.mu.Unlock()

	if !limiter.allow() {
		t.Error("bucket did not refill after a second")
	}
}

func TestRateLimiterCapsAtMax(t *testing.T) {
	limiter := newRateLimiter(3, 100)

	limiter.mu.Lock()
	limiter.lastRefill = limiter.lastRefill.Add(-10 * time.Second)
	limiter.mu.Unlock()

	for i := 0; i < 3; i++ {
		if !limiter.allow() {
			t.Fatalf("request %d denied after long idle", i)
		}
	}
	if limiter.allow() {
		t.Error("bucket exceeded its maximum size")
	}
}
