package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockPrimary is a scripted primary provider for testing.
type MockPrimary struct {
	mu sync.Mutex

	Translations map[string]string // Map of source text to translation
	Errors       []error           // Returned in order before any translation
	CallCount    int               // Number of times Translate was called
	LastTarget   string            // Target code of the last call
}

// NewMockPrimary creates a mock primary with default Spanish translations.
func NewMockPrimary() *MockPrimary {
	return &MockPrimary{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Translate returns the scripted error, the mapped translation, or the
// text in brackets.
func (m *MockPrimary) Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastTarget = targetCode

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.Errors) > 0 {
		err := m.Errors[0]
		m.Errors = m.Errors[1:]
		if err != nil {
			return "", err
		}
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", text), nil
}

// Calls returns the number of Translate calls.
func (m *MockPrimary) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and scripted errors.
func (m *MockPrimary) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastTarget = ""
	m.Errors = nil
}

// MockFallback is a scripted fallback provider for testing.
type MockFallback struct {
	mu sync.Mutex

	Err          error  // Returned by every call when set
	Prefix       string // Prepended to the text when no Err is set
	CallCount    int
	LastText     string
	LastLanguage string
}

// NewMockFallback creates a mock fallback that tags its output.
func NewMockFallback() *MockFallback {
	return &MockFallback{Prefix: "llm:"}
}

// Translate returns Err or Prefix+text.
func (m *MockFallback) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastText = text
	m.LastLanguage = targetLanguage

	if m.Err != nil {
		return "", m.Err
	}
	return m.Prefix + text, nil
}

// Calls returns the number of Translate calls.
func (m *MockFallback) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Verify the mocks implement the provider interfaces
var (
	_ PrimaryTranslator  = (*MockPrimary)(nil)
	_ FallbackTranslator = (*MockFallback)(nil)
)
