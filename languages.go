package tlrelay

import (
	"fmt"
	"sort"
	"strings"
)

// Language describes a supported target locale.
type Language struct {
	Locale      string `yaml:"locale" json:"locale"`             // e.g. "es-ES"
	PrimaryCode string `yaml:"primary_code" json:"primary_code"` // Code the primary provider expects, e.g. "es"
	Name        string `yaml:"name" json:"name"`                 // Human-readable name for the fallback prompt
}

// Direction returns "rtl" for right-to-left languages, "ltr" otherwise.
func (l Language) Direction() string {
	if IsRTL(l.Locale) {
		return "rtl"
	}
	return "ltr"
}

// rtlLanguages holds base codes of right-to-left languages.
var rtlLanguages = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
	"yi": true,
}

// DefaultLanguages returns the built-in locale table. en-GB is listed for
// display only: the primary provider has no separate British code.
func DefaultLanguages() []Language {
	return []Language{
		{Locale: "en-US", PrimaryCode: "en", Name: "English"},
		{Locale: "en-GB", Name: "British English"},
		{Locale: "es-ES", PrimaryCode: "es", Name: "Spanish"},
		{Locale: "fr-FR", PrimaryCode: "fr", Name: "French"},
		{Locale: "de-DE", PrimaryCode: "de", Name: "German"},
		{Locale: "it-IT", PrimaryCode: "it", Name: "Italian"},
		{Locale: "pt-BR", PrimaryCode: "pt-BR", Name: "Brazilian Portuguese"},
		{Locale: "ja-JP", PrimaryCode: "ja", Name: "Japanese"},
		{Locale: "zh-CN", PrimaryCode: "zh-cn", Name: "Simplified Chinese"},
	}
}

// LanguageTable resolves locales to provider codes and names. It is
// read-only after construction and safe for concurrent use.
type LanguageTable struct {
	byLocale map[string]Language
	byCode   map[string]Language
}

// NewLanguageTable builds a table from langs. Locales must be unique. An
// entry without a primary code is listed but not translatable.
func NewLanguageTable(langs []Language) (*LanguageTable, error) {
	t := &LanguageTable{
		byLocale: make(map[string]Language, len(langs)),
		byCode:   make(map[string]Language, len(langs)),
	}

	for i, l := range langs {
		field := fmt.Sprintf("languages[%d]", i)
		if strings.TrimSpace(l.Locale) == "" {
			return nil, &ConfigError{Field: field, Message: "locale is required"}
		}

		key := localeKey(l.Locale)
		if _, dup := t.byLocale[key]; dup {
			return nil, &ConfigError{Field: field, Message: "duplicate locale " + l.Locale}
		}
		if l.Name == "" {
			l.Name = l.Locale
		}

		t.byLocale[key] = l
		code := localeKey(l.PrimaryCode)
		if _, seen := t.byCode[code]; code != "" && !seen {
			t.byCode[code] = l
		}
	}

	return t, nil
}

// DefaultLanguageTable returns a table over DefaultLanguages.
func DefaultLanguageTable() *LanguageTable {
	t, err := NewLanguageTable(DefaultLanguages())
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup finds a locale. Matching ignores case and treats '_' like '-'.
// Use Supported to also require a primary code.
func (t *LanguageTable) Lookup(locale string) (Language, bool) {
	l, ok := t.byLocale[localeKey(locale)]
	return l, ok
}

// Supported reports whether locale can be translated to.
func (t *LanguageTable) Supported(locale string) bool {
	l, ok := t.Lookup(locale)
	return ok && l.PrimaryCode != ""
}

// LookupCode finds the first locale that uses the given primary code.
func (t *LanguageTable) LookupCode(code string) (Language, bool) {
	l, ok := t.byCode[localeKey(code)]
	return l, ok
}

// Languages returns all entries sorted by locale.
func (t *LanguageTable) Languages() []Language {
	out := make([]Language, 0, len(t.byLocale))
	for _, l := range t.byLocale {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locale < out[j].Locale })
	return out
}

// Len returns the number of locales.
func (t *LanguageTable) Len() int {
	return len(t.byLocale)
}

// NormalizeLocale converts a locale to hyphenated form (e.g., "es_es" → "es-ES").
func NormalizeLocale(locale string) string {
	parts := strings.Split(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"), "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 2 {
			parts[i] = strings.ToUpper(parts[i])
		}
	}
	return strings.Join(parts, "-")
}

// SameLocale reports whether a and b name the same locale.
func SameLocale(a, b string) bool {
	return localeKey(a) == localeKey(b)
}

// IsRTL reports whether the locale's language is written right-to-left.
func IsRTL(locale string) bool {
	base := strings.Split(localeKey(locale), "-")[0]
	return rtlLanguages[base]
}

func localeKey(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}
