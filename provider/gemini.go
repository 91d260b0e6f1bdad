package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	geminiName = "gemini"

	// DefaultGeminiModel is the Gemini model used when none is configured.
	DefaultGeminiModel = "gemini-2.0-flash"
	// DefaultGeminiTimeout bounds a single generation call.
	DefaultGeminiTimeout = 60 * time.Second
)

// GeminiConfig holds configuration for the Gemini fallback.
type GeminiConfig struct {
	APIKey        string
	Model         string        // default: DefaultGeminiModel
	Temperature   float32       // default: 0.3
	Timeout       time.Duration // default: 60s
	ExcludedTerms []string
}

// generateFunc sends one system prompt and user text to the model.
type generateFunc func(ctx context.Context, systemPrompt, text string) (*genai.GenerateContentResponse, error)

// GeminiFallback implements tlrelay.FallbackTranslator with Google Gemini.
type GeminiFallback struct {
	client        *genai.Client
	modelName     string
	temperature   float32
	timeout       time.Duration
	excludedTerms []string
	generate      generateFunc
}

// NewGeminiFallback creates a Gemini fallback translator. Call Close when
// it is no longer needed.
func NewGeminiFallback(ctx context.Context, cfg GeminiConfig) (*GeminiFallback, error) {
	// option.WithHTTPClient is avoided: it bypasses the API key header.
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := newGeminiFallback(cfg)
	g.client = client
	g.generate = g.generateWithClient
	return g, nil
}

func newGeminiFallback(cfg GeminiConfig) *GeminiFallback {
	g := &GeminiFallback{
		modelName:     cfg.Model,
		temperature:   cfg.Temperature,
		timeout:       cfg.Timeout,
		excludedTerms: cfg.ExcludedTerms,
	}
	if g.modelName == "" {
		g.modelName = DefaultGeminiModel
	}
	if g.temperature == 0 {
		g.temperature = DefaultFallbackTemperature
	}
	if g.timeout <= 0 {
		g.timeout = DefaultGeminiTimeout
	}
	return g
}

// Close closes the underlying genai client.
func (g *GeminiFallback) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Model returns the configured model name.
func (g *GeminiFallback) Model() string {
	return g.modelName
}

// Translate translates a whole text token into targetLanguage.
func (g *GeminiFallback) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.generate(ctx, buildSystemPrompt(targetLanguage, g.excludedTerms), text)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	out, err := extractResponseText(resp)
	if err != nil {
		return "", tlrelay.Failed(geminiName, "unusable response", err)
	}

	out = stripFences(out)
	if out == "" {
		return "", tlrelay.Failed(geminiName, "empty translation", nil)
	}
	return out, nil
}

// generateWithClient builds a model per call so concurrent calls never
// share a system instruction.
func (g *GeminiFallback) generateWithClient(ctx context.Context, systemPrompt, text string) (*genai.GenerateContentResponse, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(g.temperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	return model.GenerateContent(ctx, genai.Text(text))
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", errors.New("no text parts found in Gemini response")
}

func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := fmt.Sprintf("HTTP %d", gerr.Code)
		pe := tlrelay.Failed(geminiName, msg, err)
		if gerr.Code == http.StatusTooManyRequests {
			pe = tlrelay.RateLimited(geminiName, msg, err)
		}
		pe.StatusCode = gerr.Code
		return pe
	}
	return tlrelay.Failed(geminiName, "generate content failed", err)
}

var _ FallbackTranslator = (*GeminiFallback)(nil)
