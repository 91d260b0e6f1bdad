// Package tlrelay provides a resilient, structure-preserving translation pipeline.
//
// Tlrelay splits text (plain or HTML-tagged) into markup and text tokens,
// chunks each text token into sentence-aligned pieces that fit a primary
// provider's size limit, and escalates a whole token to an LLM fallback
// provider when the primary provider keeps failing. Markup is copied
// verbatim, so the output has exactly the structure of the input.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/tlrelay"
//	    "github.com/ZaguanLabs/tlrelay/provider"
//	)
//
//	func main() {
//	    primary := tlrelay.NewRetryablePrimary(
//	        provider.NewMyMemory(provider.MyMemoryConfig{}),
//	        tlrelay.DefaultRetryConfig(),
//	    )
//	    fallback := provider.NewOpenAIFallback(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    p := tlrelay.NewPipeline(primary, fallback)
//
//	    // Never fails: degrades to the original text on errors.
//	    out := p.Translate(context.Background(), "<p>Hello world.</p>", "es-ES")
//	    fmt.Println(out) // <p>Hola mundo.</p>
//	}
package tlrelay
