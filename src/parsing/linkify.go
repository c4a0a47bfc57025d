package parsing

import (
	"html"
	"strings"

	"mvdan.cc/xurls/v2"
)

var strictUrls = xurls.Strict()

// Escapes plain text and turns any URLs in it into links. Used for short
// instructor-entered labels like a session's format ("Live: https://...").
func Linkify(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range strictUrls.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		u := text[loc[0]:loc[1]]
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(u))
		b.WriteString(`" target="_blank" rel="noopener">`)
		b.WriteString(html.EscapeString(u))
		b.WriteString(`</a>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
