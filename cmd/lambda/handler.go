package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ZaguanLabs/tlrelay"
)

// Request is a translation event. Exactly one of Text and Content is set.
type Request struct {
	Text         *string        `json:"text,omitempty"`
	Content      map[string]any `json:"content,omitempty"`
	TargetLocale string         `json:"targetLocale"`
}

// Response is the reply to a translation event. Text events get Text,
// Status and Stats; content events get Content.
type Response struct {
	Text      string               `json:"text,omitempty"`
	Status    tlrelay.ResultStatus `json:"status,omitempty"`
	Stats     *tlrelay.Stats       `json:"stats,omitempty"`
	RequestID string               `json:"requestId,omitempty"`
	Content   map[string]any       `json:"content,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type handler struct {
	pipeline *tlrelay.Pipeline
	logger   *slog.Logger
	invoker  invoker
}

func (h *handler) handleRequest(ctx context.Context, event json.RawMessage) (any, error) {
	// Warmup detection (MUST be first - before any other processing)
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, h.invoker, warmup)
	}

	var req Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}

	return h.handle(ctx, req), nil
}

// handle never fails: bad requests are reported in Response.Error.
func (h *handler) handle(ctx context.Context, req Request) *Response {
	if err := validateRequest(req); err != nil {
		return &Response{Error: err.Error()}
	}

	if req.Content != nil {
		return &Response{Content: h.pipeline.TranslateContent(ctx, req.Content, req.TargetLocale)}
	}

	res := h.pipeline.TranslateResult(ctx, *req.Text, req.TargetLocale)
	return &Response{
		Text:      res.Text,
		Status:    res.Status,
		Stats:     &res.Stats,
		RequestID: res.RequestID,
	}
}

// validateRequest checks the request is valid.
func validateRequest(req Request) error {
	if strings.TrimSpace(req.TargetLocale) == "" {
		return fmt.Errorf("targetLocale is required")
	}
	if req.Text == nil && req.Content == nil {
		return fmt.Errorf("text or content is required")
	}
	if req.Text != nil && req.Content != nil {
		return fmt.Errorf("text and content are mutually exclusive")
	}
	return nil
}
