package boards

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/jobbot/internal/utils"
)

// htmlToText strips markup from listing descriptions. Block elements are
// separated by spaces so words from adjacent paragraphs do not merge.
func htmlToText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	// some feeds double-escape their markup
	if !strings.Contains(s, "<") && strings.Contains(s, "&lt;") {
		s = html.UnescapeString(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return utils.OneLine(s)
	}

	doc.Find("script, style").Remove()
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	return utils.OneLine(doc.Text())
}
