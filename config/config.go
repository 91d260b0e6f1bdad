// Package config loads tlrelay.yaml configuration files.
//
// A Config carries everything needed to assemble a Pipeline: the locale
// table, splitter rules, limits, and provider settings. Secrets and
// endpoints can be overridden from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/tlrelay"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level tlrelay.yaml structure.
type Config struct {
	// SourceLocale is the locale content is written in (default "en-US").
	SourceLocale string `yaml:"source_locale,omitempty"`
	// Languages replaces the built-in locale table when set.
	Languages []tlrelay.Language `yaml:"languages,omitempty"`
	// Abbreviations never end a sentence. Omit for the defaults, set to []
	// to disable.
	Abbreviations []string `yaml:"abbreviations,omitempty"`
	// ProtectedPatterns are regular expressions a sentence boundary may not
	// fall inside. Omit for the defaults, set to [] to disable.
	ProtectedPatterns []string `yaml:"protected_patterns,omitempty"`

	Limits   Limits   `yaml:"limits"`
	Primary  Primary  `yaml:"primary"`
	Fallback Fallback `yaml:"fallback"`
	Redis    Redis    `yaml:"redis"`
	Log      Log      `yaml:"log"`
}

// Limits holds sizing, failover, and pacing settings.
type Limits struct {
	MaxChunkSize      int           `yaml:"max_chunk_size,omitempty"`
	FailureThreshold  int           `yaml:"failure_threshold,omitempty"`
	Concurrency       int           `yaml:"concurrency,omitempty"`
	ChunkDelay        time.Duration `yaml:"chunk_delay,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
	RetryAttempts     int           `yaml:"retry_attempts,omitempty"`
	RetryBaseDelay    time.Duration `yaml:"retry_base_delay,omitempty"`
}

// Primary configures the MyMemory client.
type Primary struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	Email   string        `yaml:"email,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Fallback configures the LLM fallback provider.
type Fallback struct {
	// Provider is "openai", "gemini" or "none". Empty picks whichever API
	// key is present in the environment.
	Provider      string   `yaml:"provider,omitempty"`
	Model         string   `yaml:"model,omitempty"`
	APIKey        string   `yaml:"api_key,omitempty"`
	BaseURL       string   `yaml:"base_url,omitempty"`
	Temperature   float32  `yaml:"temperature,omitempty"`
	ExcludedTerms []string `yaml:"excluded_terms,omitempty"`
}

// Redis enables the shared quota limiter when URL is set.
type Redis struct {
	URL       string `yaml:"url,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// Log configures process logging for the binaries.
type Log struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Fallback provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = "tlrelay.yaml"

// Environment variables read by Load.
const (
	EnvConfig        = "TLRELAY_CONFIG"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvMyMemoryEmail = "MYMEMORY_EMAIL"
	EnvRedisURL      = "REDIS_URL"
	EnvLogLevel      = "TLRELAY_LOG_LEVEL"
)

// Default returns a Config with every default applied and no fallback.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// ResolvePath picks the config file: the explicit path, then
// $TLRELAY_CONFIG, then ./tlrelay.yaml if it exists. An empty result means
// run on defaults.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	return ""
}

// Load reads path (empty for defaults only), applies defaults and
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnv(lookup)

	if err := c.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.SourceLocale == "" {
		c.SourceLocale = tlrelay.DefaultSourceLocale
	}
	c.SourceLocale = tlrelay.NormalizeLocale(c.SourceLocale)
	if c.Languages == nil {
		c.Languages = tlrelay.DefaultLanguages()
	}
	for i := range c.Languages {
		if c.Languages[i].Locale != "" {
			c.Languages[i].Locale = tlrelay.NormalizeLocale(c.Languages[i].Locale)
		}
	}

	l := &c.Limits
	if l.MaxChunkSize == 0 {
		l.MaxChunkSize = tlrelay.DefaultMaxChunkSize
	}
	if l.FailureThreshold == 0 {
		l.FailureThreshold = tlrelay.DefaultFailureThreshold
	}
	if l.Concurrency == 0 {
		l.Concurrency = 1
	}
	rl := tlrelay.DefaultPrimaryRateLimit()
	if l.RequestsPerMinute == 0 {
		l.RequestsPerMinute = rl.RequestsPerMinute
	}
	retry := tlrelay.DefaultRetryConfig()
	if l.RetryAttempts == 0 {
		l.RetryAttempts = retry.MaxAttempts
	}
	if l.RetryBaseDelay == 0 {
		l.RetryBaseDelay = retry.BaseDelay
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Fallback.Provider = strings.ToLower(strings.TrimSpace(c.Fallback.Provider))
}

// applyEnv lets the environment override secrets and endpoints.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if v := get(EnvMyMemoryEmail); v != "" {
		c.Primary.Email = v
	}
	if v := get(EnvRedisURL); v != "" {
		c.Redis.URL = v
	}
	if v := get(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}

	openaiKey, geminiKey := get(EnvOpenAIKey), get(EnvGeminiKey)
	if c.Fallback.Provider == "" {
		switch {
		case c.Fallback.APIKey != "" || openaiKey != "":
			c.Fallback.Provider = ProviderOpenAI
		case geminiKey != "":
			c.Fallback.Provider = ProviderGemini
		default:
			c.Fallback.Provider = ProviderNone
		}
	}

	switch c.Fallback.Provider {
	case ProviderOpenAI:
		if openaiKey != "" {
			c.Fallback.APIKey = openaiKey
		}
	case ProviderGemini:
		if geminiKey != "" {
			c.Fallback.APIKey = geminiKey
		}
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks c and returns every problem found, each as a
// *tlrelay.ConfigError.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field, msg string) {
		errs = append(errs, &tlrelay.ConfigError{Field: field, Message: msg})
	}

	if c.SourceLocale == "" {
		bad("source_locale", "must not be empty")
	}
	if _, err := c.LanguageTable(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Splitter(); err != nil {
		errs = append(errs, err)
	}

	if c.Limits.MaxChunkSize < 0 {
		bad("limits.max_chunk_size", "must be positive")
	}
	if c.Limits.FailureThreshold < 0 {
		bad("limits.failure_threshold", "must be positive")
	}
	if c.Limits.Concurrency < 0 {
		bad("limits.concurrency", "must be positive")
	}
	if c.Limits.ChunkDelay < 0 {
		bad("limits.chunk_delay", "must not be negative")
	}
	if c.Limits.RequestsPerMinute < 0 {
		bad("limits.requests_per_minute", "must be positive")
	}
	if c.Limits.RetryAttempts < 0 {
		bad("limits.retry_attempts", "must be positive")
	}

	switch c.Fallback.Provider {
	case ProviderOpenAI, ProviderGemini:
		if c.Fallback.APIKey == "" {
			bad("fallback.api_key", fmt.Sprintf("required for %s (set it or export the provider's API key variable)", c.Fallback.Provider))
		}
	case ProviderNone, "":
	default:
		bad("fallback.provider", fmt.Sprintf("unknown provider %q (valid: openai, gemini, none)", c.Fallback.Provider))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		bad("log.level", fmt.Sprintf("unknown level %q (valid: debug, info, warn, error)", c.Log.Level))
	}

	return errors.Join(errs...)
}

// LanguageTable builds the locale table.
func (c *Config) LanguageTable() (*tlrelay.LanguageTable, error) {
	return tlrelay.NewLanguageTable(c.Languages)
}

// Splitter builds the sentence splitter.
func (c *Config) Splitter() (*tlrelay.Splitter, error) {
	return tlrelay.NewSplitter(tlrelay.SplitterConfig{
		Abbreviations:     c.Abbreviations,
		ProtectedPatterns: c.ProtectedPatterns,
	})
}

// RetryConfig returns the primary retry policy.
func (c *Config) RetryConfig() tlrelay.RetryConfig {
	rc := tlrelay.DefaultRetryConfig()
	rc.MaxAttempts = c.Limits.RetryAttempts
	rc.BaseDelay = c.Limits.RetryBaseDelay
	return rc
}
