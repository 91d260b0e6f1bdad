package tlrelay

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderError(t *testing.T) {
	cause := errors.New("connection reset")
	err := Failed("mymemory", "request failed", cause)

	if err.Error() != "mymemory error: request failed: connection reset" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	// Without provider or cause
	err2 := &ProviderError{Kind: FailureFailed, Message: "empty translation"}
	if err2.Error() != "provider error: empty translation" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(RateLimited("mymemory", "429", nil)) {
		t.Error("RateLimited error should be rate limited")
	}

	wrapped := fmt.Errorf("chunk 2: %w", RateLimited("mymemory", "429", nil))
	if !IsRateLimited(wrapped) {
		t.Error("wrapped RateLimited error should be rate limited")
	}

	if IsRateLimited(Failed("mymemory", "HTTP 500", nil)) {
		t.Error("Failed error should not be rate limited")
	}

	if IsRateLimited(errors.New("plain")) {
		t.Error("plain error should not be rate limited")
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "protected_patterns", Message: "invalid pattern"}

	if err.Error() != "config error (protected_patterns): invalid pattern" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want OutcomeStatus
	}{
		{"success", "Hola", nil, OutcomeTranslated},
		{"empty text", "", nil, OutcomeFailed},
		{"rate limited", "", RateLimited("mymemory", "429", nil), OutcomeRateLimited},
		{"failed", "", Failed("mymemory", "HTTP 500", nil), OutcomeFailed},
		{"unknown error", "", errors.New("boom"), OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outcomeOf(tt.text, tt.err)
			if got.Status != tt.want {
				t.Errorf("outcomeOf() status = %v, want %v", got.Status, tt.want)
			}
			if tt.want != OutcomeTranslated && got.Err == nil {
				t.Error("failure outcome should carry an error")
			}
		})
	}
}
