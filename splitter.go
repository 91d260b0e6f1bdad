package tlrelay

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// boundaryPattern matches a run of terminal punctuation, optional closing
// quotes or brackets, and the whitespace (or end of text) after it.
var boundaryPattern = regexp.MustCompile(`[.!?]+["'”’)\]]*(?:\s+|$)`)

// DefaultAbbreviations returns the abbreviations that never end a sentence.
func DefaultAbbreviations() []string {
	return []string{
		"Dr", "Mr", "Mrs", "Ms", "Prof", "St", "Jr", "Sr",
		"etc", "e.g", "i.e", "vs", "no",
		"Co", "Inc", "Ltd",
		"Ph.D", "M.D", "B.A",
	}
}

// DefaultProtectedPatterns returns phrase patterns a sentence may not end
// inside, e.g. tarot card names like "Two of Cups".
func DefaultProtectedPatterns() []string {
	return []string{`\b[A-Z][a-z]+ of [A-Z][a-z]+\b`}
}

// SplitterConfig configures a Splitter. A nil slice selects the defaults;
// an empty non-nil slice disables the feature.
type SplitterConfig struct {
	Abbreviations     []string // Case-insensitive, with or without the trailing period
	ProtectedPatterns []string // Regular expressions
}

// Splitter splits text into sentences. It is immutable and safe for
// concurrent use.
type Splitter struct {
	abbreviations map[string]bool
	protected     []*regexp.Regexp
}

// NewSplitter creates a Splitter from cfg.
func NewSplitter(cfg SplitterConfig) (*Splitter, error) {
	abbrevs := cfg.Abbreviations
	if abbrevs == nil {
		abbrevs = DefaultAbbreviations()
	}
	patterns := cfg.ProtectedPatterns
	if patterns == nil {
		patterns = DefaultProtectedPatterns()
	}

	s := &Splitter{abbreviations: make(map[string]bool, len(abbrevs))}
	for _, a := range abbrevs {
		a = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(a), "."))
		if a != "" {
			s.abbreviations[a] = true
		}
	}

	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &ConfigError{
				Field:   fmt.Sprintf("protected_patterns[%d]", i),
				Message: "invalid pattern",
				Cause:   err,
			}
		}
		s.protected = append(s.protected, re)
	}

	return s, nil
}

// DefaultSplitter returns a Splitter with the default abbreviations and
// protected patterns.
func DefaultSplitter() *Splitter {
	s, err := NewSplitter(SplitterConfig{})
	if err != nil {
		panic(err) // defaults always compile
	}
	return s
}

// Split returns the sentences of text in order. Text after the last
// boundary forms the final sentence; empty or whitespace-only text yields nil.
func (s *Splitter) Split(text string) []Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	protected := s.protectedRanges(text)

	var sentences []Sentence
	start := 0
	for _, m := range boundaryPattern.FindAllStringIndex(text, -1) {
		end := m[0] + len(strings.TrimRightFunc(text[m[0]:m[1]], unicode.IsSpace))

		if text[m[0]] == '.' && s.isAbbreviation(lastWord(text[start:m[0]])) {
			continue
		}
		if inside(protected, end) {
			continue
		}

		sentences = appendSentence(sentences, text, start, end)
		start = m[1]
	}

	return appendSentence(sentences, text, start, len(text))
}

func (s *Splitter) isAbbreviation(word string) bool {
	word = strings.TrimLeft(word, "\"'“‘([{")
	if word == "" {
		return false
	}
	return s.abbreviations[strings.ToLower(word)]
}

func (s *Splitter) protectedRanges(text string) [][]int {
	var ranges [][]int
	for _, re := range s.protected {
		ranges = append(ranges, re.FindAllStringIndex(text, -1)...)
	}
	return ranges
}

// inside reports whether pos falls strictly within one of ranges.
func inside(ranges [][]int, pos int) bool {
	for _, r := range ranges {
		if r[0] < pos && pos < r[1] {
			return true
		}
	}
	return false
}

// lastWord returns the trailing run of non-space characters in s.
func lastWord(s string) string {
	i := strings.LastIndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[i+size:]
}

func appendSentence(sentences []Sentence, text string, from, to int) []Sentence {
	if from >= to {
		return sentences
	}
	seg := text[from:to]
	trimmed := strings.TrimSpace(seg)
	if trimmed == "" {
		return sentences
	}
	lead := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
	return append(sentences, Sentence{
		Text:  trimmed,
		Start: from + lead,
		End:   from + lead + len(trimmed),
	})
}
