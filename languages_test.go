package tlrelay

import (
	"errors"
	"testing"
)

func TestLanguageTable_Lookup(t *testing.T) {
	table := DefaultLanguageTable()

	tests := []struct {
		locale   string
		wantCode string
		wantName string
		found    bool
	}{
		{"es-ES", "es", "Spanish", true},
		{"es_ES", "es", "Spanish", true},
		{"ES-es", "es", "Spanish", true},
		{"pt-BR", "pt-BR", "Brazilian Portuguese", true},
		{"zh-CN", "zh-cn", "Simplified Chinese", true},
		{"en-GB", "", "British English", true},
		{"ja-JP", "ja", "Japanese", true},
		{"xx-XX", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			lang, ok := table.Lookup(tt.locale)
			if ok != tt.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.locale, ok, tt.found)
			}
			if lang.PrimaryCode != tt.wantCode || lang.Name != tt.wantName {
				t.Errorf("Lookup(%q) = %+v", tt.locale, lang)
			}
		})
	}
}

func TestLanguageTable_LookupCode(t *testing.T) {
	table := DefaultLanguageTable()

	lang, ok := table.LookupCode("en")
	if !ok || lang.Locale != "en-US" {
		t.Errorf("LookupCode(en) = %+v, %v", lang, ok)
	}
	if _, ok := table.LookupCode("tlh"); ok {
		t.Error("LookupCode(tlh) should not be found")
	}
}

func TestDefaultLanguageTable_BritishEnglishNotTranslatable(t *testing.T) {
	table := DefaultLanguageTable()
	if table.Supported("en-GB") {
		t.Error("en-GB has no primary code and should not be supported")
	}
	if !table.Supported("en-US") {
		t.Error("en-US should be supported")
	}
}

func TestLanguageTable_Languages(t *testing.T) {
	langs := DefaultLanguageTable().Languages()
	if len(langs) != len(DefaultLanguages()) {
		t.Fatalf("expected %d languages, got %d", len(DefaultLanguages()), len(langs))
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1].Locale > langs[i].Locale {
			t.Errorf("languages not sorted at %d: %s > %s", i, langs[i-1].Locale, langs[i].Locale)
		}
	}
}

func TestNewLanguageTable_Errors(t *testing.T) {
	tests := []struct {
		name  string
		langs []Language
	}{
		{"missing locale", []Language{{PrimaryCode: "es"}}},
		{"duplicate", []Language{
			{Locale: "es-ES", PrimaryCode: "es"},
			{Locale: "es_es", PrimaryCode: "es"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLanguageTable(tt.langs)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestLanguageTable_Supported(t *testing.T) {
	table, err := NewLanguageTable([]Language{
		{Locale: "es-ES", PrimaryCode: "es"},
		{Locale: "tlh", Name: "Klingon"},
	})
	if err != nil {
		t.Fatalf("NewLanguageTable() error: %v", err)
	}

	if !table.Supported("es_es") {
		t.Error("es-ES should be supported")
	}
	if _, ok := table.Lookup("tlh"); !ok {
		t.Error("tlh should be listed")
	}
	if table.Supported("tlh") {
		t.Error("tlh has no primary code and should not be supported")
	}
	if table.Supported("fr-FR") {
		t.Error("fr-FR is not in the table")
	}
}

func TestNewLanguageTable_DefaultName(t *testing.T) {
	table, err := NewLanguageTable([]Language{{Locale: "ko-KR", PrimaryCode: "ko"}})
	if err != nil {
		t.Fatalf("NewLanguageTable() error: %v", err)
	}
	lang, _ := table.Lookup("ko-KR")
	if lang.Name != "ko-KR" {
		t.Errorf("Name = %q, want locale as fallback", lang.Name)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"es_es", "es-ES"},
		{"EN-us", "en-US"},
		{"zh-Hans-CN", "zh-Hans-CN"},
		{"fr", "fr"},
	}

	for _, tt := range tests {
		if got := NormalizeLocale(tt.in); got != tt.want {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSameLocale(t *testing.T) {
	if !SameLocale("en-US", "en_us") {
		t.Error("en-US and en_us should match")
	}
	if SameLocale("en-US", "en-GB") {
		t.Error("en-US and en-GB should differ")
	}
}

func TestIsRTL(t *testing.T) {
	tests := []struct {
		locale string
		want   bool
	}{
		{"ar-SA", true},
		{"he_IL", true},
		{"fa", true},
		{"es-ES", false},
		{"ja-JP", false},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			if got := IsRTL(tt.locale); got != tt.want {
				t.Errorf("IsRTL(%q) = %v, want %v", tt.locale, got, tt.want)
			}
		})
	}

	if (Language{Locale: "ar-SA"}).Direction() != "rtl" {
		t.Error("Direction() should be rtl for ar-SA")
	}
}
