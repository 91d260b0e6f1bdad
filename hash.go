package tlrelay

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// fingerprintLen is the number of hex digits kept by Fingerprint.
const fingerprintLen = 12

// HashText returns the hex SHA-256 of text with runs of whitespace
// collapsed to one space and the ends trimmed, so a token and the chunks
// rebuilt from it hash the same.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(strings.Join(strings.Fields(text), " ")))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short, stable identifier for text. Logs carry the
// fingerprint instead of the content being translated.
func Fingerprint(text string) string {
	return HashText(text)[:fingerprintLen]
}

func fingerprintAttr(text string) slog.Attr {
	return slog.String("fingerprint", Fingerprint(text))
}
