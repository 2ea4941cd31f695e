package middleware

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestIPRateLimiter_BurstPerAddress(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return start }

	for i := 0; i < 2; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst was rejected", i)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("request over burst was allowed")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("another address must have its own bucket")
	}
}

func TestIPRateLimiter_DropsIdleAddresses(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	limiter.idleAfter = time.Minute
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")
	if got := limiter.tracked(); got != 2 {
		t.Fatalf("tracked = %d; want 2", got)
	}

	clock = clock.Add(2 * time.Minute)
	limiter.Allow("10.0.0.3")

	if got := limiter.tracked(); got != 1 {
		t.Errorf("tracked after idle sweep = %d; want 1", got)
	}
}
