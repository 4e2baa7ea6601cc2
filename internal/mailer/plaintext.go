package mailer

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText derives the text/plain alternative of an HTML body. Paragraphs
// and line breaks become newlines and links are followed by their target.
func PlainText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" && href != s.Text() {
			s.AppendHtml(" (" + html.EscapeString(href) + ")")
		}
	})
	doc.Find("p, div, li, h1, h2, h3, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var out []string
	blank := false
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
