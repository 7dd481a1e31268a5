// Package textutil normalizes inbound message text.
package textutil

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlHint        = regexp.MustCompile(`(?i)<\s*(html|body|div|p|br|table|span|a)\b`)
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// LooksLikeHTML reports whether body appears to be an HTML document or fragment.
func LooksLikeHTML(body string) bool {
	return htmlHint.MatchString(body)
}

// PlainText returns body unchanged unless it looks like HTML, in which case the
// visible text is extracted with scripts and styles removed.
func PlainText(body string) string {
	if !LooksLikeHTML(body) {
		return body
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	doc.Find("script, style, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return Squeeze(doc.Text())
}

// Squeeze collapses runs of horizontal whitespace and excess blank lines.
func Squeeze(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
