package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/ZaguanLabs/tlrelay/provider"
	"github.com/ZaguanLabs/tlrelay/quota"
)

// Service is a ready Pipeline plus the resources it holds open.
type Service struct {
	Pipeline *tlrelay.Pipeline
	Primary  *provider.MyMemory
	Fallback tlrelay.FallbackTranslator // nil when no fallback is configured

	closers []io.Closer
}

// Close releases the fallback client and the Redis connection, if any.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build assembles a Pipeline from c. c should come from Load, so it is
// already validated and has defaults applied.
func Build(ctx context.Context, c *Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	languages, err := c.LanguageTable()
	if err != nil {
		return nil, err
	}
	splitter, err := c.Splitter()
	if err != nil {
		return nil, err
	}

	s := &Service{}

	limiter, err := s.limiter(c, logger)
	if err != nil {
		return nil, err
	}

	s.Primary = provider.NewMyMemory(provider.MyMemoryConfig{
		BaseURL:      c.Primary.BaseURL,
		Email:        c.Primary.Email,
		Timeout:      c.Primary.Timeout,
		MaxChunkSize: c.Limits.MaxChunkSize,
		Limiter:      limiter,
		Logger:       logger.With("provider", "mymemory"),
	})
	primary := tlrelay.NewRetryablePrimary(s.Primary, c.RetryConfig()).WithLogger(logger)

	if err := s.fallback(ctx, c); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Pipeline = tlrelay.NewPipeline(primary, s.Fallback,
		tlrelay.WithSourceLocale(c.SourceLocale),
		tlrelay.WithLanguages(languages),
		tlrelay.WithSplitter(splitter),
		tlrelay.WithMaxChunkSize(c.Limits.MaxChunkSize),
		tlrelay.WithFailureThreshold(c.Limits.FailureThreshold),
		tlrelay.WithConcurrency(c.Limits.Concurrency),
		tlrelay.WithChunkDelay(c.Limits.ChunkDelay),
		tlrelay.WithLogger(logger),
	)

	logger.Debug("pipeline ready",
		"source_locale", c.SourceLocale,
		"languages", languages.Len(),
		"fallback", c.Fallback.Provider,
		"shared_quota", c.Redis.URL != "",
	)

	return s, nil
}

func (s *Service) limiter(c *Config, logger *slog.Logger) (tlrelay.Limiter, error) {
	if c.Redis.URL == "" {
		return tlrelay.NewRateLimiter(tlrelay.RateLimitConfig{
			RequestsPerMinute: c.Limits.RequestsPerMinute,
			BurstSize:         1,
		}), nil
	}

	rl, err := quota.NewRedisLimiter(quota.RedisConfig{
		URL:               c.Redis.URL,
		KeyPrefix:         c.Redis.KeyPrefix,
		RequestsPerWindow: c.Limits.RequestsPerMinute,
		Window:            time.Minute,
		Logger:            logger.With("component", "quota"),
	})
	if err != nil {
		return nil, fmt.Errorf("shared quota: %w", err)
	}
	s.closers = append(s.closers, rl)
	return rl, nil
}

func (s *Service) fallback(ctx context.Context, c *Config) error {
	f := c.Fallback
	switch f.Provider {
	case ProviderOpenAI:
		s.Fallback = provider.NewOpenAIFallback(provider.OpenAIConfig{
			APIKey:        f.APIKey,
			Model:         f.Model,
			Temperature:   f.Temperature,
			BaseURL:       f.BaseURL,
			ExcludedTerms: f.ExcludedTerms,
		})
	case ProviderGemini:
		g, err := provider.NewGeminiFallback(ctx, provider.GeminiConfig{
			APIKey:        f.APIKey,
			Model:         f.Model,
			Temperature:   f.Temperature,
			ExcludedTerms: f.ExcludedTerms,
		})
		if err != nil {
			return err
		}
		s.Fallback = g
		s.closers = append(s.closers, g)
	}
	return nil
}
