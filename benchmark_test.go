package tlrelay_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ZaguanLabs/tlrelay"
	"github.com/ZaguanLabs/tlrelay/provider"
)

// Benchmarks for performance validation

const benchHTML = `<!DOCTYPE html>
<html>
<head><title>Welcome to Our Store</title></head>
<body>
    <nav><a href="/">Home</a><a href="/products">Products</a></nav>
    <main>
        <h1>Welcome to Our Store</h1>
        <p>Find the best products at great prices. Dr. Smith recommends them! Visit www.example.com for 3.5% off.</p>
        <button>Shop Now</button>
    </main>
</body>
</html>`

func benchParagraph(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog near the riverbank. ")
	}
	return b.String()
}

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tlrelay.HashText(text)
	}
}

func BenchmarkFingerprint(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tlrelay.Fingerprint(text)
	}
}

func BenchmarkSplit(b *testing.B) {
	s := tlrelay.DefaultSplitter()
	text := benchParagraph(50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Split(text)
	}
}

func BenchmarkBuildChunks(b *testing.B) {
	sentences := tlrelay.DefaultSplitter().Split(benchParagraph(50))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tlrelay.BuildChunks(sentences, tlrelay.DefaultMaxChunkSize)
	}
}

func BenchmarkTokenize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		tlrelay.Tokenize(benchHTML)
	}
}

func BenchmarkRebuild(b *testing.B) {
	tokens := tlrelay.Tokenize(benchHTML)
	texts := tlrelay.TextTokens(tokens)
	replacements := make([]string, len(texts))
	for i, t := range texts {
		replacements[i] = strings.ToUpper(t.Content)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tlrelay.Rebuild(tokens, replacements)
	}
}

func BenchmarkPipeline_Translate(b *testing.B) {
	pipeline := tlrelay.NewPipeline(provider.NewMockPrimary(), provider.NewMockFallback(), tlrelay.WithLogger(quiet))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pipeline.Translate(ctx, benchHTML, "es-ES")
	}
}

func BenchmarkPipeline_TranslateConcurrent(b *testing.B) {
	pipeline := tlrelay.NewPipeline(provider.NewMockPrimary(), nil,
		tlrelay.WithConcurrency(4),
		tlrelay.WithLogger(quiet),
	)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pipeline.Translate(ctx, benchHTML, "es-ES")
	}
}

func BenchmarkLanguageLookup(b *testing.B) {
	table := tlrelay.DefaultLanguageTable()
	locales := []string{"es-ES", "fr_FR", "de-de", "ja-JP", "xx-XX"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Lookup(locales[i%len(locales)])
	}
}
