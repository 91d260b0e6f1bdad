package tlrelay

import (
	"errors"
	"fmt"
)

// FailureKind classifies provider failures.
type FailureKind string

const (
	// FailureRateLimited is retryable with backoff, up to a fixed cap.
	FailureRateLimited FailureKind = "rate_limited"
	// FailureFailed is not retried for the chunk and counts toward escalation.
	FailureFailed FailureKind = "failed"
)

// ProviderError indicates a translation provider failure.
type ProviderError struct {
	Kind       FailureKind
	Provider   string // "mymemory", "openai", ...
	Message    string
	StatusCode int // HTTP status, 0 when not applicable
	Cause      error
}

func (e *ProviderError) Error() string {
	prefix := "provider error"
	if e.Provider != "" {
		prefix = e.Provider + " error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// RateLimited builds a FailureRateLimited provider error.
func RateLimited(provider, message string, cause error) *ProviderError {
	return &ProviderError{Kind: FailureRateLimited, Provider: provider, Message: message, StatusCode: 429, Cause: cause}
}

// Failed builds a FailureFailed provider error.
func Failed(provider, message string, cause error) *ProviderError {
	return &ProviderError{Kind: FailureFailed, Provider: provider, Message: message, Cause: cause}
}

// IsRateLimited reports whether err is a rate-limit rejection.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == FailureRateLimited
	}
	return false
}

// ConfigError indicates invalid pipeline configuration.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error (%s): %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("config error (%s): %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// outcomeOf converts a primary provider return into an Outcome. Anything
// that is not a usable translation is a failure.
func outcomeOf(text string, err error) Outcome {
	if err != nil {
		if IsRateLimited(err) {
			return Outcome{Status: OutcomeRateLimited, Err: err}
		}
		return Outcome{Status: OutcomeFailed, Err: err}
	}
	if text == "" {
		return Outcome{Status: OutcomeFailed, Err: Failed("", "empty translation", nil)}
	}
	return Outcome{Status: OutcomeTranslated, Text: text}
}
