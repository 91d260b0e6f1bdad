package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ZaguanLabs/tlrelay"
	"golang.org/x/net/html"
)

const (
	// DefaultMyMemoryURL is the public MyMemory endpoint.
	DefaultMyMemoryURL = "https://api.mymemory.translated.net"
	// DefaultMyMemoryTimeout bounds a single request.
	DefaultMyMemoryTimeout = 15 * time.Second

	myMemoryName     = "mymemory"
	maxResponseBytes = 1 << 20
)

// MyMemoryConfig holds configuration for the MyMemory client.
type MyMemoryConfig struct {
	BaseURL      string          // API base URL (default: DefaultMyMemoryURL)
	Email        string          // Sent as "de"; raises the anonymous daily quota
	Timeout      time.Duration   // Per-request timeout (default: 15s)
	MaxChunkSize int             // Request size the caller promises to respect (default: 450)
	Limiter      tlrelay.Limiter // Request pacing (default: 2 rps token bucket)
	HTTPClient   *http.Client    // Optional custom client
	Logger       *slog.Logger    // Optional logger
}

// MyMemory is the primary provider client. The limiter is owned by the
// client, so every pipeline sharing a client shares its pacing.
type MyMemory struct {
	baseURL      string
	email        string
	timeout      time.Duration
	maxChunkSize int
	limiter      tlrelay.Limiter
	client       *http.Client
	logger       *slog.Logger
}

// NewMyMemory creates a MyMemory client.
func NewMyMemory(cfg MyMemoryConfig) *MyMemory {
	m := &MyMemory{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		email:        cfg.Email,
		timeout:      cfg.Timeout,
		maxChunkSize: cfg.MaxChunkSize,
		limiter:      cfg.Limiter,
		client:       cfg.HTTPClient,
		logger:       cfg.Logger,
	}

	if m.baseURL == "" {
		m.baseURL = DefaultMyMemoryURL
	}
	if m.timeout <= 0 {
		m.timeout = DefaultMyMemoryTimeout
	}
	if m.maxChunkSize <= 0 {
		m.maxChunkSize = tlrelay.DefaultMaxChunkSize
	}
	if m.limiter == nil {
		m.limiter = tlrelay.NewRateLimiter(tlrelay.DefaultPrimaryRateLimit())
	}
	if m.client == nil {
		m.client = &http.Client{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	return m
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  flexStatus `json:"responseStatus"`
	ResponseDetails string     `json:"responseDetails"`
	QuotaFinished   bool       `json:"quotaFinished"`
}

// flexStatus accepts a status sent either as a JSON number or a string.
type flexStatus int

func (s *flexStatus) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("responseStatus %s: %w", string(b), err)
	}
	*s = flexStatus(n)
	return nil
}

// Translate implements tlrelay.PrimaryTranslator.
func (m *MyMemory) Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	if n := utf8.RuneCountInString(text); n > m.maxChunkSize {
		m.logger.Warn("chunk exceeds primary size limit", "chars", n, "limit", m.maxChunkSize)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return "", tlrelay.Failed(myMemoryName, "rate limiter wait cancelled", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", sourceCode+"|"+targetCode)
	if m.email != "" {
		q.Set("de", m.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", tlrelay.Failed(myMemoryName, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", tlrelay.UserAgent())

	resp, err := m.client.Do(req)
	if err != nil {
		return "", tlrelay.Failed(myMemoryName, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", tlrelay.RateLimited(myMemoryName, "HTTP 429", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &tlrelay.ProviderError{
			Kind:       tlrelay.FailureFailed,
			Provider:   myMemoryName,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", tlrelay.Failed(myMemoryName, "failed to read response", err)
	}

	var r myMemoryResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", tlrelay.Failed(myMemoryName, "malformed response", err)
	}

	switch {
	case r.ResponseStatus == http.StatusTooManyRequests:
		return "", tlrelay.RateLimited(myMemoryName, "responseStatus 429", nil)
	case r.ResponseStatus != http.StatusOK:
		return "", tlrelay.Failed(myMemoryName, fmt.Sprintf("responseStatus %d: %s", r.ResponseStatus, r.ResponseDetails), nil)
	case r.QuotaFinished:
		return "", tlrelay.Failed(myMemoryName, "daily quota exhausted", nil)
	}

	out := strings.TrimSpace(r.ResponseData.TranslatedText)
	if out == "" {
		return "", tlrelay.Failed(myMemoryName, "empty translation", nil)
	}
	if strings.HasPrefix(out, "MYMEMORY WARNING") {
		return "", tlrelay.Failed(myMemoryName, "quota warning returned as translation", nil)
	}

	// MyMemory escapes entities in plain text; undo it unless the source
	// already used them. A bare ampersand as in "R&D" is not an entity.
	if !entityPattern.MatchString(text) {
		out = html.UnescapeString(out)
	}

	return out, nil
}

var entityPattern = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

var _ PrimaryTranslator = (*MyMemory)(nil)
