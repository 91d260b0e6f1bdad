package tlrelay

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripIntroducedMarkup removes tags a provider added to text that had
// none. Text that already carried markup is returned unchanged.
func stripIntroducedMarkup(source, translated string) string {
	if HasMarkup(source) || !HasMarkup(translated) {
		return translated
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(translated))
	if err != nil {
		return markupPattern.ReplaceAllString(translated, "")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
