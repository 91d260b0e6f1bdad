package tlrelay

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// DefaultMaxAllowed is the hard request limit of the primary provider.
const DefaultMaxAllowed = 500

// BuildChunks packs sentences into chunks of at most maxChunkSize
// characters, separated by a single space. A sentence longer than the limit
// is broken at word boundaries into ChunkTruncated chunks, and a single word
// longer than the limit is broken between grapheme clusters. A non-positive
// maxChunkSize selects DefaultMaxChunkSize.
func BuildChunks(sentences []Sentence, maxChunkSize int) []Chunk {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	b := &chunkBuilder{max: maxChunkSize}
	for _, s := range sentences {
		text := strings.Join(strings.Fields(s.Text), " ")
		if text == "" {
			continue
		}
		n := utf8.RuneCountInString(text)

		if n > b.max {
			b.flush(ChunkNormal)
			b.breakSentence(text)
			continue
		}

		if b.sentences > 0 && b.size+1+n > b.max {
			b.flush(ChunkNormal)
		}
		b.add(text, n)
		b.sentences++
	}
	b.flush(ChunkNormal)

	return b.chunks
}

// ChunkText splits text into sentences and packs them into chunks.
func ChunkText(splitter *Splitter, text string, maxChunkSize int) []Chunk {
	if splitter == nil {
		splitter = DefaultSplitter()
	}
	return BuildChunks(splitter.Split(text), maxChunkSize)
}

type chunkBuilder struct {
	max       int
	buf       strings.Builder
	size      int // runes in buf
	sentences int
	chunks    []Chunk
}

func (b *chunkBuilder) add(text string, n int) {
	if b.size > 0 {
		b.buf.WriteByte(' ')
		b.size++
	}
	b.buf.WriteString(text)
	b.size += n
}

func (b *chunkBuilder) flush(status ChunkStatus) {
	if b.size == 0 {
		return
	}
	count := b.sentences
	if count == 0 {
		count = 1
	}
	b.chunks = append(b.chunks, Chunk{
		Text:          b.buf.String(),
		CharCount:     b.size,
		SentenceCount: count,
		Index:         len(b.chunks),
		Status:        status,
	})
	b.buf.Reset()
	b.size = 0
	b.sentences = 0
}

// breakSentence emits an oversized sentence as word-packed truncated chunks.
func (b *chunkBuilder) breakSentence(text string) {
	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)

		if n > b.max {
			b.flush(ChunkTruncated)
			for _, piece := range splitGraphemes(word, b.max) {
				b.add(piece, utf8.RuneCountInString(piece))
				b.flush(ChunkTruncated)
			}
			continue
		}

		if b.size > 0 && b.size+1+n > b.max {
			b.flush(ChunkTruncated)
		}
		b.add(word, n)
	}
	b.flush(ChunkTruncated)
}

// splitGraphemes cuts s into pieces of at most limit runes without splitting
// a grapheme cluster. A single cluster longer than limit is kept whole.
func splitGraphemes(s string, limit int) []string {
	var pieces []string
	var cur strings.Builder
	size := 0

	g := uniseg.NewGraphemes(s)
	for g.Next() {
		n := len(g.Runes())
		if size > 0 && size+n > limit {
			pieces = append(pieces, cur.String())
			cur.Reset()
			size = 0
		}
		cur.WriteString(g.Str())
		size += n
	}
	if size > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}

// ChunkStats summarizes a chunk sequence.
type ChunkStats struct {
	TotalChunks    int `json:"total_chunks"`
	TotalChars     int `json:"total_chars"`
	MaxChunkSize   int `json:"max_chunk_size"`
	AvgChunkSize   int `json:"avg_chunk_size"`
	TruncatedCount int `json:"truncated_count"`
}

// ChunkViolation is a chunk that exceeds the allowed size.
type ChunkViolation struct {
	ChunkIndex int    `json:"chunk_index"`
	CharCount  int    `json:"char_count"`
	Issue      string `json:"issue"`
}

// ChunkReport is the result of ValidateChunks.
type ChunkReport struct {
	Valid      bool             `json:"valid"`
	MaxAllowed int              `json:"max_allowed"`
	Stats      ChunkStats       `json:"stats"`
	Violations []ChunkViolation `json:"violations,omitempty"`
	Chunks     []Chunk          `json:"-"`
}

// ValidateChunks checks every chunk against maxAllowed characters. A
// non-positive maxAllowed selects DefaultMaxAllowed.
func ValidateChunks(chunks []Chunk, maxAllowed int) ChunkReport {
	if maxAllowed <= 0 {
		maxAllowed = DefaultMaxAllowed
	}

	r := ChunkReport{Valid: true, MaxAllowed: maxAllowed, Chunks: chunks}
	r.Stats.TotalChunks = len(chunks)

	for _, c := range chunks {
		r.Stats.TotalChars += c.CharCount
		if c.CharCount > r.Stats.MaxChunkSize {
			r.Stats.MaxChunkSize = c.CharCount
		}
		if c.Status == ChunkTruncated {
			r.Stats.TruncatedCount++
		}
		if c.CharCount > maxAllowed {
			r.Valid = false
			r.Violations = append(r.Violations, ChunkViolation{
				ChunkIndex: c.Index,
				CharCount:  c.CharCount,
				Issue:      fmt.Sprintf("exceeds limit by %d characters", c.CharCount-maxAllowed),
			})
		}
	}

	if n := len(chunks); n > 0 {
		r.Stats.AvgChunkSize = (r.Stats.TotalChars + n/2) / n
	}

	return r
}

// Summary renders the report for humans.
func (r ChunkReport) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d chunks, %d chars total, avg %d, max %d (limit %d)\n",
		r.Stats.TotalChunks, r.Stats.TotalChars, r.Stats.AvgChunkSize, r.Stats.MaxChunkSize, r.MaxAllowed)
	if r.Stats.TruncatedCount > 0 {
		fmt.Fprintf(&b, "%d chunks were word-broken\n", r.Stats.TruncatedCount)
	}

	for _, c := range r.Chunks {
		fmt.Fprintf(&b, "  #%d: %d chars, %d sentences", c.Index+1, c.CharCount, c.SentenceCount)
		if c.Status == ChunkTruncated {
			b.WriteString(" [truncated]")
		}
		b.WriteByte('\n')
	}

	for _, v := range r.Violations {
		fmt.Fprintf(&b, "  chunk #%d: %s\n", v.ChunkIndex+1, v.Issue)
	}

	return b.String()
}
