package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xsantcastx/xsantcastx/internal/apperr"
)

// InMemoryRateLimiter is a sliding-window limiter keyed by client IP.
// State is per process; several replicas each enforce their own window.
type InMemoryRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (r *InMemoryRateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	valid := pruneBefore(r.requests[key], now.Add(-r.window))
	if len(valid) >= r.limit {
		r.requests[key] = valid
		return false
	}
	r.requests[key] = append(valid, now)
	return true
}

// Run drops idle keys every interval until ctx is done.
func (r *InMemoryRateLimiter) Run(ctx context.Context, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			r.sweep()
		}
	}
}

func (r *InMemoryRateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.window)
	for k, times := range r.requests {
		if valid := pruneBefore(times, cutoff); len(valid) == 0 {
			delete(r.requests, k)
		} else {
			r.requests[k] = valid
		}
	}
}

func (r *InMemoryRateLimiter) keys() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// RateLimit returns a middleware that limits by client IP.
func RateLimit(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			Fail(c, apperr.ResourceExhaustedErr("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
