package client

import (
	"html"
	"regexp"
	"strings"
)

// Highlight экранирует text для HTML и оборачивает совпадения с query (без учёта регистра) в <mark>.
func Highlight(text, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return html.EscapeString(text)
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
