package tlrelay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first
	BaseDelay   time.Duration // Delay after attempt n is BaseDelay*n
	MaxDelay    time.Duration // Upper bound for a single delay
}

// DefaultRetryConfig returns three attempts with 500ms, 1s backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry calls fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. The delay grows linearly with the attempt number.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < attempts {
			delay := cfg.BaseDelay * time.Duration(attempt)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether err should be retried. Only rate-limit
// rejections are; context errors never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return IsRateLimited(err)
}

// RetryablePrimary wraps a PrimaryTranslator with capped retry of
// rate-limit rejections. A chunk still rate limited after the last attempt
// is reported as a plain failure.
type RetryablePrimary struct {
	primary PrimaryTranslator
	config  RetryConfig
	logger  *slog.Logger
}

// NewRetryablePrimary creates a new primary translator with retry logic.
func NewRetryablePrimary(primary PrimaryTranslator, cfg RetryConfig) *RetryablePrimary {
	return &RetryablePrimary{
		primary: primary,
		config:  cfg,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger used for retry messages.
func (p *RetryablePrimary) WithLogger(logger *slog.Logger) *RetryablePrimary {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Translate implements PrimaryTranslator with retry logic.
func (p *RetryablePrimary) Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	attempt := 0
	out, err := WithRetry(ctx, p.config, func() (string, error) {
		attempt++
		out, err := p.primary.Translate(ctx, text, sourceCode, targetCode)
		if err != nil && IsRateLimited(err) && attempt < p.config.MaxAttempts {
			p.logger.Debug("primary rate limited, retrying", "attempt", attempt, fingerprintAttr(text))
		}
		return out, err
	})

	if err != nil && IsRateLimited(err) {
		var pe *ProviderError
		provider := ""
		if errors.As(err, &pe) {
			provider = pe.Provider
		}
		return "", Failed(provider, fmt.Sprintf("still rate limited after %d attempts", attempt), err)
	}
	return out, err
}

var _ PrimaryTranslator = (*RetryablePrimary)(nil)
