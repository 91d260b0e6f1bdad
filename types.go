package tlrelay

// DefaultMaxChunkSize is the default chunk limit in characters. The primary
// provider rejects requests above 500 characters; 450 leaves headroom.
const DefaultMaxChunkSize = 450

// DefaultFailureThreshold is the number of consecutive primary failures
// that escalates a text token to the fallback provider.
const DefaultFailureThreshold = 3

// DefaultSourceLocale is the locale source content is written in.
const DefaultSourceLocale = "en-US"

// TokenKind distinguishes verbatim markup from translatable text.
type TokenKind int

const (
	// KindMarkup is copied to the output unchanged. Whitespace-only gaps
	// between tags are also carried as markup.
	KindMarkup TokenKind = iota
	// KindText is replaced by its translation.
	KindText
)

func (k TokenKind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Token is the atomic unit of structural preservation.
type Token struct {
	Kind    TokenKind
	Content string // Literal substring of the input
}

// Sentence is a span over the text it was split from.
type Sentence struct {
	Text  string // Trimmed sentence text
	Start int    // Byte offset of Text in the source
	End   int    // Byte offset one past the end of Text
}

// ChunkStatus reports whether a chunk had to be word-broken.
type ChunkStatus int

const (
	// ChunkNormal holds one or more whole sentences.
	ChunkNormal ChunkStatus = iota
	// ChunkTruncated holds a piece of a sentence longer than the limit.
	ChunkTruncated
)

func (s ChunkStatus) String() string {
	if s == ChunkTruncated {
		return "truncated"
	}
	return "normal"
}

// Chunk is a size-bounded slice of a text token.
type Chunk struct {
	Text          string
	CharCount     int // Code points in Text
	SentenceCount int
	Index         int
	Status        ChunkStatus
}

// OutcomeStatus classifies a single primary provider call.
type OutcomeStatus int

const (
	OutcomeTranslated OutcomeStatus = iota
	OutcomeRateLimited
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeTranslated:
		return "translated"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of translating one chunk with the primary provider.
type Outcome struct {
	Status OutcomeStatus
	Text   string // Translated text, set only for OutcomeTranslated
	Err    error  // Cause, set for failures
}

// ResultStatus summarizes how much of a document was translated.
type ResultStatus string

const (
	// StatusUnchanged means no translation was attempted (no-op locale,
	// empty input, unsupported locale).
	StatusUnchanged ResultStatus = "unchanged"
	// StatusTranslated means every chunk was translated by a provider.
	StatusTranslated ResultStatus = "translated"
	// StatusPartial means some text was left in the source language.
	StatusPartial ResultStatus = "partial"
)

// Stats counts what happened during one Translate call.
type Stats struct {
	Tokens           int `json:"tokens"`
	TextTokens       int `json:"text_tokens"`
	Chunks           int `json:"chunks"`
	TruncatedChunks  int `json:"truncated_chunks"`
	PrimaryCalls     int `json:"primary_calls"`
	PrimaryFailures  int `json:"primary_failures"`
	Escalations      int `json:"escalations"`
	FallbackFailures int `json:"fallback_failures"`
}

func (s *Stats) add(o Stats) {
	s.Chunks += o.Chunks
	s.TruncatedChunks += o.TruncatedChunks
	s.PrimaryCalls += o.PrimaryCalls
	s.PrimaryFailures += o.PrimaryFailures
	s.Escalations += o.Escalations
	s.FallbackFailures += o.FallbackFailures
}

// Result is the outcome of a Translate call. Text is always usable.
type Result struct {
	Text      string       `json:"text"`
	Status    ResultStatus `json:"status"`
	Stats     Stats        `json:"stats"`
	RequestID string       `json:"request_id"`
}
