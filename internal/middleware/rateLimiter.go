package middleware

import (
	"sync"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"golang.org/x/time/rate"
)

var limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per caller address. Buckets of callers
// that stay quiet for longer than idleAfter are dropped on the next Allow.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     r,
		burst:     b,
		idleAfter: config.RateLimiterIdleTimeout,
		now:       time.Now,
	}
}

// Allow spends one token from the caller's bucket.
func (i *IPRateLimiter) Allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= i.idleAfter {
		i.sweep(now)
	}
	client, ok := i.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(i.limit, i.burst)}
		i.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

func (i *IPRateLimiter) sweep(now time.Time) {
	for ip, client := range i.clients {
		if now.Sub(client.lastSeen) >= i.idleAfter {
			delete(i.clients, ip)
		}
	}
	i.lastSweep = now
}

func (i *IPRateLimiter) tracked() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.clients)
}

//TODO: move the per-IP buckets to redis once the service runs with more than one replica
