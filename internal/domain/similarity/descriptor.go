package similarity

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)<\s*/?\s*[a-z][^>]*>`)

// NormalizeDescriptor prepares free text for comparison. HTML bodies (as
// forwarded invoice e-mails often are) are reduced to their visible text,
// then everything is lower-cased with whitespace collapsed.
func NormalizeDescriptor(raw string) string {
	text := raw
	if htmlTag.MatchString(raw) {
		text = htmlText(raw)
	}
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func htmlText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	doc.Find("script, style, head").Remove()

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(parts, " ")
}

// collectText appends text nodes in document order so adjacent block
// elements do not run together.
func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if t := strings.TrimSpace(c.Text()); t != "" {
				*parts = append(*parts, t)
			}
		case "#comment":
		default:
			collectText(c, parts)
		}
	})
}
