package tlrelay

import (
	"regexp"
	"strings"
	"unicode"
)

// markupPattern matches one tag: '<', one or more non-'>' characters, '>'.
var markupPattern = regexp.MustCompile(`<[^>]+>`)

// HasMarkup reports whether raw contains at least one tag.
func HasMarkup(raw string) bool {
	return markupPattern.MatchString(raw)
}

// Tokenize splits raw into alternating markup and text tokens. Concatenating
// the Content of every token reproduces raw exactly. Text gaps that are
// whitespace only are emitted as markup so they are never translated.
func Tokenize(raw string) []Token {
	if raw == "" {
		return nil
	}

	var tokens []Token
	pos := 0
	for _, m := range markupPattern.FindAllStringIndex(raw, -1) {
		tokens = appendGap(tokens, raw[pos:m[0]])
		tokens = append(tokens, Token{Kind: KindMarkup, Content: raw[m[0]:m[1]]})
		pos = m[1]
	}
	return appendGap(tokens, raw[pos:])
}

func appendGap(tokens []Token, gap string) []Token {
	if gap == "" {
		return tokens
	}
	kind := KindText
	if strings.TrimSpace(gap) == "" {
		kind = KindMarkup
	}
	return append(tokens, Token{Kind: kind, Content: gap})
}

// TextTokens returns the text tokens of tokens in order.
func TextTokens(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Kind == KindText {
			out = append(out, t)
		}
	}
	return out
}

// Rebuild concatenates tokens, substituting the i-th text token with
// replacements[i]. A missing or empty replacement keeps the original text.
func Rebuild(tokens []Token, replacements []string) string {
	var b strings.Builder
	i := 0
	for _, t := range tokens {
		if t.Kind != KindText {
			b.WriteString(t.Content)
			continue
		}
		if i < len(replacements) && replacements[i] != "" {
			b.WriteString(replacements[i])
		} else {
			b.WriteString(t.Content)
		}
		i++
	}
	return b.String()
}

// preserveWhitespace re-applies the leading and trailing whitespace of
// original around translated.
func preserveWhitespace(original, translated string) string {
	leading := original[:len(original)-len(strings.TrimLeftFunc(original, unicode.IsSpace))]
	trailing := original[len(strings.TrimRightFunc(original, unicode.IsSpace)):]
	if strings.TrimSpace(original) == "" {
		trailing = ""
	}
	return leading + translated + trailing
}
