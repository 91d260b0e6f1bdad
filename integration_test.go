package tlrelay_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/ZaguanLabs/tlrelay/provider"
)

// Integration tests wiring the pipeline to real provider clients and mocks

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// threeSentences packs into three chunks at a 20 character limit.
const threeSentences = "Hello there friend. How are you today? See you soon."

func fastRetry() tlrelay.RetryConfig {
	return tlrelay.RetryConfig{MaxAttempts: 3, BaseDelay: 1, MaxDelay: 10}
}

func fastLimiter() tlrelay.Limiter {
	return tlrelay.NewRateLimiter(tlrelay.RateLimitConfig{RequestsPerMinute: 600000, BurstSize: 1000})
}

func TestIntegration_BasicTranslation(t *testing.T) {
	p := provider.NewMockPrimary()
	pipeline := tlrelay.NewPipeline(p, nil, tlrelay.WithLogger(quiet))

	res := pipeline.TranslateResult(context.Background(), `<div><p>Hello</p></div>`, "es-ES")

	if res.Text != `<div><p>Hola</p></div>` {
		t.Errorf("Expected '<div><p>Hola</p></div>', got: %s", res.Text)
	}
	if res.Status != tlrelay.StatusTranslated {
		t.Errorf("Expected status translated, got %s", res.Status)
	}
	if p.Calls() != 1 {
		t.Errorf("Expected 1 primary call, got %d", p.Calls())
	}
}

func TestIntegration_RetryableProvider(t *testing.T) {
	inner := provider.NewMockPrimary()
	inner.Errors = []error{
		tlrelay.RateLimited("mock", "slow down", nil),
		tlrelay.RateLimited("mock", "slow down", nil),
	}
	pipeline := tlrelay.NewPipeline(tlrelay.NewRetryablePrimary(inner, fastRetry()), nil, tlrelay.WithLogger(quiet))

	res := pipeline.TranslateResult(context.Background(), `<p>Hello</p>`, "es-ES")
	if res.Text != `<p>Hola</p>` || res.Status != tlrelay.StatusTranslated {
		t.Errorf("Expected translation after retries, got %q (%s)", res.Text, res.Status)
	}
	if inner.Calls() != 3 {
		t.Errorf("Expected 3 calls (2 rate limited + 1 success), got %d", inner.Calls())
	}
	if res.Stats.PrimaryFailures != 0 {
		t.Errorf("Retried rate limits are not failures, got %d", res.Stats.PrimaryFailures)
	}
}

func TestIntegration_RetryExhaustionKeepsOriginal(t *testing.T) {
	inner := provider.NewMockPrimary()
	for i := 0; i < 3; i++ {
		inner.Errors = append(inner.Errors, tlrelay.RateLimited("mock", "slow down", nil))
	}
	fallback := provider.NewMockFallback()
	pipeline := tlrelay.NewPipeline(tlrelay.NewRetryablePrimary(inner, fastRetry()), fallback, tlrelay.WithLogger(quiet))

	res := pipeline.TranslateResult(context.Background(), `<p>Hello</p>`, "es-ES")
	if res.Text != `<p>Hello</p>` {
		t.Errorf("Expected original text, got %q", res.Text)
	}
	if res.Status != tlrelay.StatusPartial || res.Stats.PrimaryFailures != 1 {
		t.Errorf("Expected one counted failure, got %s %+v", res.Status, res.Stats)
	}
	if fallback.Calls() != 0 {
		t.Error("One failure must not escalate")
	}
}

func TestIntegration_EscalationToFallback(t *testing.T) {
	primary := provider.NewMockPrimary()
	for i := 0; i < 3; i++ {
		primary.Errors = append(primary.Errors, tlrelay.Failed("mock", "boom", nil))
	}
	fallback := provider.NewMockFallback()
	pipeline := tlrelay.NewPipeline(primary, fallback,
		tlrelay.WithMaxChunkSize(20),
		tlrelay.WithLogger(quiet),
	)

	res := pipeline.TranslateResult(context.Background(), "<p>"+threeSentences+"</p>", "es-ES")

	want := "<p>llm:" + threeSentences + "</p>"
	if res.Text != want {
		t.Errorf("got %q, want %q", res.Text, want)
	}
	if res.Stats.Chunks != 3 || res.Stats.Escalations != 1 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
	if fallback.LastLanguage != "Spanish" || fallback.LastText != threeSentences {
		t.Errorf("fallback got %q in %q", fallback.LastText, fallback.LastLanguage)
	}
}

func TestIntegration_MyMemory(t *testing.T) {
	var langpairs atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		langpairs.Store(r.URL.Query().Get("langpair"))
		fmt.Fprintf(w, `{"responseData":{"translatedText":%q},"responseStatus":200}`, "ES:"+r.URL.Query().Get("q"))
	}))
	defer srv.Close()

	mm := provider.NewMyMemory(provider.MyMemoryConfig{BaseURL: srv.URL, Limiter: fastLimiter(), Logger: quiet})
	pipeline := tlrelay.NewPipeline(tlrelay.NewRetryablePrimary(mm, fastRetry()), nil, tlrelay.WithLogger(quiet))

	html := "<h1>Welcome</h1>\n<p>Find the best products. Shop now!</p>"
	got := pipeline.Translate(context.Background(), html, "es-ES")

	want := "<h1>ES:Welcome</h1>\n<p>ES:Find the best products. Shop now!</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if lp, _ := langpairs.Load().(string); lp != "en|es" {
		t.Errorf("langpair = %q, want en|es", lp)
	}
}

func TestIntegration_MyMemoryRateLimitedFallsBackToOpenAI(t *testing.T) {
	var primaryCalls atomic.Int32
	mmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer mmSrv.Close()

	var system atomic.Value
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 2 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		system.Store(req.Messages[0].Content)
		answer := "ES(" + req.Messages[1].Content + ")"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": answer}}},
		})
	}))
	defer llmSrv.Close()

	mm := provider.NewMyMemory(provider.MyMemoryConfig{BaseURL: mmSrv.URL, Limiter: fastLimiter(), Logger: quiet})
	llm := provider.NewOpenAIFallback(provider.OpenAIConfig{APIKey: "test", BaseURL: llmSrv.URL})
	pipeline := tlrelay.NewPipeline(tlrelay.NewRetryablePrimary(mm, fastRetry()), llm,
		tlrelay.WithMaxChunkSize(20),
		tlrelay.WithLogger(quiet),
	)

	res := pipeline.TranslateResult(context.Background(), "<p>"+threeSentences+"</p>", "fr-FR")

	want := "<p>ES(" + threeSentences + ")</p>"
	if res.Text != want {
		t.Errorf("got %q, want %q", res.Text, want)
	}
	if res.Status != tlrelay.StatusTranslated {
		t.Errorf("status = %s", res.Status)
	}
	if n := primaryCalls.Load(); n != 9 {
		t.Errorf("expected 3 chunks x 3 attempts = 9 primary calls, got %d", n)
	}
	if s, _ := system.Load().(string); !strings.Contains(s, "French") {
		t.Errorf("system prompt should name the target language: %s", s)
	}
}

func TestIntegration_SourceEqualsTarget(t *testing.T) {
	p := provider.NewMockPrimary()
	pipeline := tlrelay.NewPipeline(p, nil, tlrelay.WithSourceLocale("en-US"), tlrelay.WithLogger(quiet))

	html := `<p>Hello</p>`
	if got := pipeline.Translate(context.Background(), html, "en_US"); got != html {
		t.Errorf("Expected unchanged content, got %q", got)
	}
	if p.Calls() != 0 {
		t.Errorf("Provider should not be called, was called %d times", p.Calls())
	}
}

func TestIntegration_EmptyContent(t *testing.T) {
	p := provider.NewMockPrimary()
	pipeline := tlrelay.NewPipeline(p, nil, tlrelay.WithLogger(quiet))

	for _, in := range []string{"", "   ", "<div></div>", "<br/>\n<hr/>"} {
		if got := pipeline.Translate(context.Background(), in, "es-ES"); got != in {
			t.Errorf("Translate(%q) = %q", in, got)
		}
	}
	if p.Calls() != 0 {
		t.Errorf("Provider should not be called, was called %d times", p.Calls())
	}
}

func TestIntegration_WhitespacePreserved(t *testing.T) {
	p := provider.NewMockPrimary()
	pipeline := tlrelay.NewPipeline(p, nil, tlrelay.WithLogger(quiet))

	got := pipeline.Translate(context.Background(), "<p>  Hello  </p>\n<p>\n\tWorld\n</p>", "es-ES")
	want := "<p>  Hola  </p>\n<p>\n\tMundo\n</p>"
	if got != want {
		t.Errorf("Whitespace not preserved, got: %q", got)
	}
}

func TestIntegration_RTLLanguage(t *testing.T) {
	table, err := tlrelay.NewLanguageTable([]tlrelay.Language{
		{Locale: "ar-SA", PrimaryCode: "ar", Name: "Arabic"},
	})
	if err != nil {
		t.Fatalf("NewLanguageTable: %v", err)
	}

	p := provider.NewMockPrimary()
	pipeline := tlrelay.NewPipeline(p, nil, tlrelay.WithLanguages(table), tlrelay.WithLogger(quiet))

	got := pipeline.Translate(context.Background(), `<p>Hello</p>`, "ar_SA")
	if got != `<p>Hola</p>` || p.LastTarget != "ar" {
		t.Errorf("got %q with target %q", got, p.LastTarget)
	}

	lang, _ := table.Lookup("ar-SA")
	if lang.Direction() != "rtl" {
		t.Errorf("Expected rtl direction for Arabic, got %s", lang.Direction())
	}
}

func TestIntegration_ConcurrentTokens(t *testing.T) {
	p := provider.NewMockPrimary()
	pipeline := tlrelay.NewPipeline(p, nil, tlrelay.WithConcurrency(4), tlrelay.WithLogger(quiet))

	var in, want strings.Builder
	for i := 0; i < 20; i++ {
		in.WriteString("<li>Hello World</li>")
		want.WriteString("<li>Hola Mundo</li>")
	}

	if got := pipeline.Translate(context.Background(), in.String(), "es-ES"); got != want.String() {
		t.Errorf("concurrent translation reordered or lost tokens: %q", got)
	}
	if p.Calls() != 20 {
		t.Errorf("Expected 20 primary calls, got %d", p.Calls())
	}
}
