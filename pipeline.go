package tlrelay

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PrimaryTranslator is a size-limited machine translation backend.
type PrimaryTranslator interface {
	// Translate translates text of at most the provider's size limit from
	// sourceCode to targetCode. Rate-limit rejections are reported with
	// RateLimited errors.
	Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error)
}

// FallbackTranslator is an LLM backend that accepts a whole text token.
type FallbackTranslator interface {
	// Translate translates text into the named language, keeping any
	// markup and proper nouns intact.
	Translate(ctx context.Context, text, targetLanguageName string) (string, error)
}

// Pipeline is the translation orchestrator. It is safe for concurrent use;
// each call gets its own failover state.
type Pipeline struct {
	primary          PrimaryTranslator
	fallback         FallbackTranslator
	languages        *LanguageTable
	splitter         *Splitter
	sourceLocale     string
	maxChunkSize     int
	failureThreshold int
	concurrency      int
	chunkDelay       time.Duration
	logger           *slog.Logger
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithSourceLocale sets the locale source content is written in. Requests
// for this locale are returned unchanged.
func WithSourceLocale(locale string) Option {
	return func(p *Pipeline) {
		p.sourceLocale = locale
	}
}

// WithLanguages sets the supported locale table.
func WithLanguages(table *LanguageTable) Option {
	return func(p *Pipeline) {
		if table != nil {
			p.languages = table
		}
	}
}

// WithSplitter sets the sentence splitter.
func WithSplitter(s *Splitter) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.splitter = s
		}
	}
}

// WithMaxChunkSize sets the chunk limit in characters.
func WithMaxChunkSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxChunkSize = n
		}
	}
}

// WithFailureThreshold sets how many consecutive primary failures escalate
// a text token to the fallback provider.
func WithFailureThreshold(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.failureThreshold = n
		}
	}
}

// WithConcurrency sets how many text tokens are translated at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithChunkDelay sets a pause between primary calls for consecutive chunks
// of the same token.
func WithChunkDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.chunkDelay = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a Pipeline. fallback may be nil, in which case
// escalated tokens keep whatever the primary provider produced.
func NewPipeline(primary PrimaryTranslator, fallback FallbackTranslator, opts ...Option) *Pipeline {
	p := &Pipeline{
		primary:          primary,
		fallback:         fallback,
		languages:        DefaultLanguageTable(),
		splitter:         DefaultSplitter(),
		sourceLocale:     DefaultSourceLocale,
		maxChunkSize:     DefaultMaxChunkSize,
		failureThreshold: DefaultFailureThreshold,
		concurrency:      1,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SourceLocale returns the configured source locale.
func (p *Pipeline) SourceLocale() string { return p.sourceLocale }

// Languages returns the supported locale table.
func (p *Pipeline) Languages() *LanguageTable { return p.languages }

// Splitter returns the sentence splitter.
func (p *Pipeline) Splitter() *Splitter { return p.splitter }

// MaxChunkSize returns the chunk limit.
func (p *Pipeline) MaxChunkSize() int { return p.maxChunkSize }

// Translate translates raw into targetLocale. It never fails: any part
// that cannot be translated is returned in the source language.
func (p *Pipeline) Translate(ctx context.Context, raw, targetLocale string) string {
	return p.TranslateResult(ctx, raw, targetLocale).Text
}

// TranslateContent translates the "text" field of a content object and
// returns a copy with every other field unchanged. Objects without a
// string "text" field are returned as is.
func (p *Pipeline) TranslateContent(ctx context.Context, content map[string]any, targetLocale string) map[string]any {
	text, ok := content["text"].(string)
	if !ok {
		return content
	}
	out := maps.Clone(content)
	out["text"] = p.Translate(ctx, text, targetLocale)
	return out
}

// TranslateResult is Translate with status and counters.
func (p *Pipeline) TranslateResult(ctx context.Context, raw, targetLocale string) *Result {
	res := &Result{Text: raw, Status: StatusUnchanged, RequestID: uuid.NewString()}
	log := p.logger.With("request_id", res.RequestID, "target", targetLocale)

	lang, ok := p.resolve(log, raw, targetLocale)
	if !ok {
		return res
	}

	var tokens []Token
	if HasMarkup(raw) {
		tokens = Tokenize(raw)
	} else {
		tokens = []Token{{Kind: KindText, Content: raw}}
	}
	texts := TextTokens(tokens)
	if len(texts) == 0 {
		return res
	}

	res.Stats.Tokens = len(tokens)
	res.Stats.TextTokens = len(texts)

	start := time.Now()
	log.Info("translation started",
		"tokens", len(tokens),
		"text_tokens", len(texts),
		"chars", len(raw),
	)

	results := make([]tokenResult, len(texts))
	p.forEachToken(len(texts), func(i int) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("token translation aborted", "token", i, "panic", fmt.Sprint(r))
				results[i] = tokenResult{text: texts[i].Content, partial: true}
			}
		}()
		results[i] = p.translateToken(ctx, log.With("token", i), texts[i], lang)
	})

	replacements := make([]string, len(texts))
	res.Status = StatusTranslated
	for i, r := range results {
		replacements[i] = r.text
		res.Stats.add(r.stats)
		if r.partial {
			res.Status = StatusPartial
		}
	}
	res.Text = Rebuild(tokens, replacements)

	log.Info("translation finished",
		"status", res.Status,
		"duration", time.Since(start),
		"chunks", res.Stats.Chunks,
		"primary_failures", res.Stats.PrimaryFailures,
		"escalations", res.Stats.Escalations,
	)

	return res
}

// resolve decides whether raw needs translating into targetLocale.
func (p *Pipeline) resolve(log *slog.Logger, raw, targetLocale string) (Language, bool) {
	if strings.TrimSpace(raw) == "" {
		return Language{}, false
	}
	if targetLocale == "" || SameLocale(targetLocale, p.sourceLocale) {
		log.Debug("target is source locale, skipping")
		return Language{}, false
	}

	lang, ok := p.languages.Lookup(targetLocale)
	if !ok || lang.PrimaryCode == "" {
		log.Warn("unsupported locale, returning original")
		return Language{}, false
	}
	return lang, true
}

// sourceCode is the primary provider code of the source locale.
func (p *Pipeline) sourceCode() string {
	if l, ok := p.languages.Lookup(p.sourceLocale); ok && l.PrimaryCode != "" {
		return l.PrimaryCode
	}
	return strings.Split(localeKey(p.sourceLocale), "-")[0]
}

type tokenResult struct {
	text    string
	partial bool
	stats   Stats
}

// translateToken runs one text token through chunking, the primary
// provider and, if the failure threshold is reached, the fallback provider.
// Failover state never leaks between tokens.
func (p *Pipeline) translateToken(ctx context.Context, log *slog.Logger, tok Token, lang Language) tokenResult {
	core := strings.TrimSpace(tok.Content)
	chunks := BuildChunks(p.splitter.Split(core), p.maxChunkSize)

	var r tokenResult
	r.stats.Chunks = len(chunks)
	for _, c := range chunks {
		if c.Status == ChunkTruncated {
			r.stats.TruncatedChunks++
		}
	}

	src := p.sourceCode()
	ctrl := NewFailoverController(p.failureThreshold)
	parts := make([]string, 0, len(chunks))

	for i, c := range chunks {
		if ctx.Err() != nil {
			log.Warn("translation cancelled, keeping remaining chunks", "remaining", len(chunks)-i)
			for _, rest := range chunks[i:] {
				parts = append(parts, rest.Text)
			}
			r.partial = true
			break
		}
		if i > 0 && p.chunkDelay > 0 {
			p.pause(ctx)
		}

		out, err := p.primary.Translate(ctx, c.Text, src, lang.PrimaryCode)
		r.stats.PrimaryCalls++
		o := outcomeOf(out, err)

		switch ctrl.Observe(o) {
		case DecisionUsePrimary:
			log.Debug("chunk translated", "chunk", c.Index, fingerprintAttr(c.Text))
			parts = append(parts, o.Text)

		case DecisionUseOriginal:
			r.stats.PrimaryFailures++
			r.partial = true
			log.Warn("primary translation failed, keeping original chunk",
				"chunk", c.Index,
				"outcome", o.Status,
				"consecutive_failures", ctrl.State().ConsecutiveFailures,
				"error", o.Err,
			)
			parts = append(parts, c.Text)

		case DecisionEscalate:
			r.stats.PrimaryFailures++
			r.stats.Escalations++
			log.Warn("primary failure threshold reached, escalating token",
				"chunk", c.Index,
				"threshold", p.failureThreshold,
				"error", o.Err,
			)

			if p.fallback == nil {
				for _, rest := range chunks[i:] {
					parts = append(parts, rest.Text)
				}
				r.partial = true
				r.text = preserveWhitespace(tok.Content, strings.Join(parts, " "))
				return r
			}

			text, ok := p.escalate(ctx, log, core, lang)
			if !ok {
				r.stats.FallbackFailures++
			}
			r.partial = !ok
			r.text = preserveWhitespace(tok.Content, text)
			return r
		}
	}

	r.text = preserveWhitespace(tok.Content, strings.Join(parts, " "))
	return r
}

// escalate translates the whole token with the fallback provider. On any
// failure the original token text is returned with ok set to false.
func (p *Pipeline) escalate(ctx context.Context, log *slog.Logger, core string, lang Language) (string, bool) {
	if ctx.Err() != nil {
		return core, false
	}

	name := lang.Name
	if name == "" {
		name = lang.Locale
	}

	out, err := p.fallback.Translate(ctx, core, name)
	if err != nil {
		log.Error("fallback translation failed, keeping original token", "error", err)
		return core, false
	}

	out = strings.TrimSpace(stripIntroducedMarkup(core, out))
	if out == "" {
		log.Error("fallback returned empty translation, keeping original token")
		return core, false
	}

	log.Info("token translated by fallback", fingerprintAttr(core))
	return out, true
}

func (p *Pipeline) pause(ctx context.Context) {
	timer := time.NewTimer(p.chunkDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
