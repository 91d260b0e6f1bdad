// Package provider implements the translation backends used by a
// tlrelay.Pipeline: MyMemory as the size-limited primary and OpenAI or
// Gemini as the LLM fallback.
package provider

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ZaguanLabs/tlrelay"
)

// PrimaryTranslator is an alias to the main package interface for convenience.
type PrimaryTranslator = tlrelay.PrimaryTranslator

// FallbackTranslator is an alias to the main package interface for convenience.
type FallbackTranslator = tlrelay.FallbackTranslator

// DefaultFallbackModel is the OpenAI model used when none is configured.
const DefaultFallbackModel = "gpt-4o-mini"

// DefaultFallbackTemperature keeps LLM output close to the source.
const DefaultFallbackTemperature = 0.3

// codeFence matches a Markdown fenced block around the whole answer.
var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\s*```$")

// stripFences removes a Markdown code fence wrapped around an LLM answer.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// buildSystemPrompt returns the fallback instruction for targetLanguage.
func buildSystemPrompt(targetLanguage string, excludedTerms []string) string {
	prompt := fmt.Sprintf(`You are a professional translator. Translate the user's text from English to %s.

Rules:
- Keep every HTML tag exactly as it appears, including attributes. Translate only the text between tags.
- Do not add tags, Markdown, quotes or commentary.
- Keep the tone and meaning of the original.
- Do not translate proper nouns, brand names or product names.
- Keep numbers, URLs and placeholders (e.g., {name}, %%s) unchanged.
- Reply with the translation only.`, targetLanguage)

	if len(excludedTerms) > 0 {
		prompt += "\n\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- " +
			strings.Join(excludedTerms, "\n- ")
	}

	return prompt
}
