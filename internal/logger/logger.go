// Package logger sets up log/slog for the tlrelay binaries: a compact
// console format, an optional JSONL file, and redaction of credentials and
// translated content.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"
)

const redacted = "[REDACTED]"

var (
	global     *slog.Logger
	isTerminal = term.IsTerminal
)

// contentKeys carry user text or account data.
var contentKeys = map[string]bool{
	"body":            true,
	"content":         true,
	"email":           true,
	"input":           true,
	"output":          true,
	"source_text":     true,
	"text":            true,
	"translated_text": true,
	"translation":     true,
}

// secretKeyParts redact any key containing them. "token" is not listed:
// token indexes and counts are logged under it.
var secretKeyParts = []string{"key", "secret", "password", "authorization", "bearer", "prompt"}

// secretValue matches OpenAI and Gemini keys, bearer headers, key=value
// credentials, and the q/de parameters of primary request URLs, which hold
// the chunk text and the account email.
var secretValue = regexp.MustCompile(`(?i)` +
	`\bsk-[a-z0-9_-]{10,}` +
	`|\bAIza[0-9a-z_-]{10,}` +
	`|\bbearer\s+[a-z0-9._~+/-]+=*` +
	`|\b(?:api[_-]?key|access[_-]?token|secret)\s*[:=]\s*\S+` +
	`|[?&](?:q|de)=[^&\s"]+`)

// RedactAttr is a slog ReplaceAttr hook that masks credentials and content.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if s := valueString(a.Value); s != "" && secretValue.MatchString(s) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func sensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if contentKeys[key] {
		return true
	}
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func valueString(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

func init() {
	Init(slog.LevelInfo, nil)
}

// ParseLevel converts a level name such as "debug" or "WARN" (also
// "warning") to a level. Unknown names give Info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Init logs to stderr, and to logFile as JSONL when it is not nil.
func Init(level slog.Level, logFile io.Writer) *slog.Logger {
	return InitWriter(os.Stderr, level, logFile)
}

// InitWriter is Init with an explicit console writer. The console gets
// colors only when it is a terminal and no log file is set. The logger is
// installed as slog's default and returned.
func InitWriter(console io.Writer, level slog.Level, logFile io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: RedactAttr}

	color := false
	if f, ok := console.(*os.File); ok && logFile == nil {
		color = isTerminal(int(f.Fd()))
	}

	var h slog.Handler = NewConsoleHandler(console, opts, color)
	if logFile != nil {
		h = fanout{h, slog.NewJSONHandler(logFile, opts)}
	}

	global = slog.New(h)
	slog.SetDefault(global)
	return global
}

// L returns the logger installed by the last Init.
func L() *slog.Logger { return global }

// ConsoleHandler writes one line per record:
//
//	15:04:05.000 WARN  message key=value key="quoted value"
type ConsoleHandler struct {
	mu      *sync.Mutex
	w       io.Writer
	level   slog.Leveler
	replace func([]string, slog.Attr) slog.Attr
	color   bool

	groups []string
	prefix string // attrs added with WithAttrs, already rendered
}

// NewConsoleHandler creates a ConsoleHandler. opts may be nil.
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *ConsoleHandler {
	h := &ConsoleHandler{mu: &sync.Mutex{}, w: w, level: slog.LevelInfo, color: color}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.replace = opts.ReplaceAttr
	}
	return h
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}

	level := fmt.Sprintf("%-5s", r.Level.String())
	if h.color {
		level = levelColor(r.Level) + level + "\033[0m"
	}
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.prefix)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.groups, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		h.appendAttr(&b, h.groups, a)
	}
	h2 := *h
	h2.prefix = b.String()
	return &h2
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &h2
}

func (h *ConsoleHandler) appendAttr(b *strings.Builder, groups []string, a slog.Attr) {
	if h.replace != nil && a.Value.Kind() != slog.KindGroup {
		a = h.replace(groups, a)
	}
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(b, sub, ga)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	b.WriteByte(' ')
	if h.color {
		b.WriteString("\033[90m" + key + "=\033[0m")
	} else {
		b.WriteString(key + "=")
	}
	b.WriteString(quoteIfNeeded(a.Value.String()))
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "\033[31m"
	case l >= slog.LevelWarn:
		return "\033[33m"
	case l >= slog.LevelInfo:
		return "\033[32m"
	default:
		return "\033[90m"
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
