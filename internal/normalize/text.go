package normalize

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML converts an HTML or HTML-encoded string to plain text and
// collapses all whitespace runs to single spaces. Entities are unescaped
// first (handles feeds that double-encode; no-op on real HTML). The
// result is stable under re-application.
func StripHTML(content string) string {
	unescaped := html.UnescapeString(content)

	if !strings.ContainsAny(unescaped, "<>") {
		return collapse(unescaped)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		// Degenerate markup: fall back to a plain tag strip.
		return collapse(htmlTagRegex.ReplaceAllString(unescaped, " "))
	}
	return collapse(doc.Text())
}

func collapse(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
