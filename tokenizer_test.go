package tlrelay

import (
	"strings"
	"testing"
)

func joinTokens(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Content)
	}
	return b.String()
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize(`<p class="x">Hello <b>world</b>!</p>`)

	want := []Token{
		{KindMarkup, `<p class="x">`},
		{KindText, "Hello "},
		{KindMarkup, "<b>"},
		{KindText, "world"},
		{KindMarkup, "</b>"},
		{KindText, "!"},
		{KindMarkup, "</p>"},
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token[%d] = %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestTokenize_NoMarkup(t *testing.T) {
	tokens := Tokenize("Just text.")
	if len(tokens) != 1 || tokens[0].Kind != KindText || tokens[0].Content != "Just text." {
		t.Errorf("unexpected tokens: %+v", tokens)
	}

	if tokens := Tokenize(""); tokens != nil {
		t.Errorf("expected nil for empty input, got %+v", tokens)
	}
}

func TestTokenize_WhitespaceGapsAreMarkup(t *testing.T) {
	tokens := Tokenize("<ul>\n  <li>One</li>\n</ul>")

	texts := TextTokens(tokens)
	if len(texts) != 1 || texts[0].Content != "One" {
		t.Errorf("expected a single text token, got %+v", texts)
	}
}

func TestTokenize_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"<p>Hello</p>",
		"  <div>\n\t<span>a</span> b <br/> c</div>  ",
		"a < b and c",
		"<>empty angle",
		"trailing <unclosed",
		"<!-- comment --><p>x</p>",
		`<a href="/x?a=1&b=2">Link</a> &amp; more`,
	}

	for _, in := range inputs {
		if got := joinTokens(Tokenize(in)); got != in {
			t.Errorf("round trip of %q produced %q", in, got)
		}
		if got := Rebuild(Tokenize(in), nil); got != in {
			t.Errorf("Rebuild without replacements of %q produced %q", in, got)
		}
	}
}

func TestTokenize_Alternates(t *testing.T) {
	tokens := Tokenize("<p>a</p>b<i>c</i>")
	for i := 1; i < len(tokens); i++ {
		if tokens[i].Kind == KindText && tokens[i-1].Kind == KindText {
			t.Errorf("adjacent text tokens at %d", i)
		}
	}
}

func TestHasMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<p>x</p>", true},
		{"x <br> y", true},
		{"no tags", false},
		{"a <> b", false},
		{"5 < 6", false},
	}

	for _, tt := range tests {
		if got := HasMarkup(tt.in); got != tt.want {
			t.Errorf("HasMarkup(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRebuild(t *testing.T) {
	tokens := Tokenize("<p>Hello</p><p>World</p>")

	got := Rebuild(tokens, []string{"Hola", ""})
	if got != "<p>Hola</p><p>World</p>" {
		t.Errorf("Rebuild() = %q", got)
	}

	got = Rebuild(tokens, []string{"Hola"})
	if got != "<p>Hola</p><p>World</p>" {
		t.Errorf("Rebuild() with short replacements = %q", got)
	}
}

func TestPreserveWhitespace(t *testing.T) {
	tests := []struct {
		original   string
		translated string
		want       string
	}{
		{"Hello", "Hola", "Hola"},
		{"  Hello", "Hola", "  Hola"},
		{"Hello  ", "Hola", "Hola  "},
		{"\n\tHello \n", "Hola", "\n\tHola \n"},
		{" Hello", "Hola", " Hola"},
		{"   ", "", "   "},
	}

	for _, tt := range tests {
		if got := preserveWhitespace(tt.original, tt.translated); got != tt.want {
			t.Errorf("preserveWhitespace(%q, %q) = %q, want %q", tt.original, tt.translated, got, tt.want)
		}
	}
}

func TestStripIntroducedMarkup(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		translated string
		want       string
	}{
		{"no markup", "Hello", "Hola", "Hola"},
		{"introduced paragraph", "Hello world", "<p>Hola <b>mundo</b></p>", "Hola mundo"},
		{"source had markup", "<b>Hello</b>", "<b>Hola</b>", "<b>Hola</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripIntroducedMarkup(tt.source, tt.translated); got != tt.want {
				t.Errorf("stripIntroducedMarkup() = %q, want %q", got, tt.want)
			}
		})
	}
}
