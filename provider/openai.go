package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/sashabaranov/go-openai"
)

const openAIName = "openai"

// OpenAIFallback implements tlrelay.FallbackTranslator using OpenAI's API.
type OpenAIFallback struct {
	client        *openai.Client
	model         string
	temperature   float32
	excludedTerms []string
}

// OpenAIConfig holds configuration for the OpenAI fallback.
type OpenAIConfig struct {
	APIKey        string   // OpenAI API key
	Model         string   // Model to use (default: "gpt-4o-mini")
	Temperature   float32  // Temperature for generation (default: 0.3)
	BaseURL       string   // Custom base URL (optional)
	ExcludedTerms []string // Terms that must stay untranslated
}

// NewOpenAIFallback creates a new OpenAI fallback translator.
func NewOpenAIFallback(cfg OpenAIConfig) *OpenAIFallback {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultFallbackModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultFallbackTemperature
	}

	return &OpenAIFallback{
		client:        openai.NewClientWithConfig(config),
		model:         model,
		temperature:   temperature,
		excludedTerms: cfg.ExcludedTerms,
	}
}

// Model returns the configured model name.
func (p *OpenAIFallback) Model() string {
	return p.model
}

// Translate translates a whole text token into targetLanguage.
func (p *OpenAIFallback) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(targetLanguage, p.excludedTerms)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", tlrelay.Failed(openAIName, "no choices in response", nil)
	}

	out := stripFences(resp.Choices[0].Message.Content)
	if out == "" {
		return "", tlrelay.Failed(openAIName, "empty translation", nil)
	}

	return out, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := tlrelay.Failed(openAIName, apiErr.Message, err)
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			pe = tlrelay.RateLimited(openAIName, apiErr.Message, err)
		}
		pe.StatusCode = apiErr.HTTPStatusCode
		return pe
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		pe := tlrelay.Failed(openAIName, "request failed", err)
		pe.StatusCode = reqErr.HTTPStatusCode
		return pe
	}

	return tlrelay.Failed(openAIName, "API call failed", err)
}

var _ FallbackTranslator = (*OpenAIFallback)(nil)
