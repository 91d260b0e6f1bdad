package tlrelay

import (
	"context"
	"sync"
	"time"
)

// Limiter paces outbound provider requests.
type Limiter interface {
	// Wait blocks until a request may be sent or ctx is done.
	Wait(ctx context.Context) error
}

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// DefaultPrimaryRateLimit paces the primary provider at two requests per
// second with no burst.
func DefaultPrimaryRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 120, BurstSize: 1}
}

// RateLimiter is an in-process token bucket Limiter. One instance is
// owned by a provider client and shared by every pipeline using it.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	r := &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		now:        time.Now,
	}
	r.lastRefill = r.now()
	return r
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking and reports whether it got one.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// reserve takes a token if one is available. Otherwise it returns how long
// until the next token is due.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}

	deficit := 1 - r.tokens
	wait := time.Duration(deficit / r.refillRate * float64(time.Second))
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait, false
}

// refill must be called with mu held.
func (r *RateLimiter) refill() {
	now := r.now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

var _ Limiter = (*RateLimiter)(nil)
