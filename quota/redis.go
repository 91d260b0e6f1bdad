// Package quota provides a Redis-backed request limiter so that several
// processes can share one primary-provider quota.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces the window counters.
	DefaultKeyPrefix = "tlrelay:quota:"
	// DefaultRequestsPerWindow matches the in-process default of 2 rps.
	DefaultRequestsPerWindow = 120
	// DefaultWindow is the counting window.
	DefaultWindow = time.Minute
)

// RedisConfig holds configuration for the Redis limiter.
type RedisConfig struct {
	URL               string        // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix         string        // Prefix for counter keys (default: "tlrelay:quota:")
	RequestsPerWindow int           // Requests allowed per window across all processes
	Window            time.Duration // Window length (default: 1m)
	Logger            *slog.Logger
}

// RedisLimiter is a fixed-window limiter whose counters live in Redis.
// When Redis is unreachable it degrades to an in-process token bucket at
// the same rate.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	local  tlrelay.Limiter
	logger *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRedisLimiter connects to Redis and creates a limiter.
func NewRedisLimiter(cfg RedisConfig) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	l := NewRedisLimiterFromClient(client, cfg.RequestsPerWindow, cfg.Window, cfg.KeyPrefix)
	if cfg.Logger != nil {
		l.logger = cfg.Logger
	}
	return l, nil
}

// NewRedisLimiterFromClient creates a RedisLimiter from an existing client.
func NewRedisLimiterFromClient(client *redis.Client, requestsPerWindow int, window time.Duration, keyPrefix string) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if requestsPerWindow <= 0 {
		requestsPerWindow = DefaultRequestsPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}

	rpm := int(float64(requestsPerWindow) * float64(time.Minute) / float64(window))
	if rpm < 1 {
		rpm = 1
	}

	return &RedisLimiter{
		client: client,
		prefix: keyPrefix,
		limit:  int64(requestsPerWindow),
		window: window,
		local:  tlrelay.NewRateLimiter(tlrelay.RateLimitConfig{RequestsPerMinute: rpm, BurstSize: 1}),
		logger: slog.Default(),
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Wait blocks until the shared window has room for one more request.
func (l *RedisLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := l.now()
		slot := now.UnixNano() / int64(l.window)
		key := fmt.Sprintf("%s%d", l.prefix, slot)

		n, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn("shared quota unavailable, pacing locally", "error", err)
			return l.local.Wait(ctx)
		}
		if n == 1 {
			// Two windows so a slow clock on another process still sees it.
			if err := l.client.Expire(ctx, key, 2*l.window).Err(); err != nil {
				l.logger.Warn("failed to set quota window expiry", "window", key, "error", err)
			}
		}
		if n <= l.limit {
			return nil
		}

		next := time.Unix(0, (slot+1)*int64(l.window))
		l.logger.Debug("shared quota exhausted, waiting for next window", "wait", next.Sub(now))
		if err := l.sleep(ctx, next.Sub(now)); err != nil {
			return err
		}
	}
}

// Ping tests the Redis connection.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Verify RedisLimiter implements Limiter
var _ tlrelay.Limiter = (*RedisLimiter)(nil)
