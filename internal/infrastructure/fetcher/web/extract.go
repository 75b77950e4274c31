package web

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order; the first match longer than
// minContentLength wins. Falling through all of them means scraping the
// whole body.
var contentSelectors = []string{
	"main",
	"article",
	"div.content",
	"div#content",
	"div.main-content",
}

const minContentLength = 500

// ExtractArticle pulls the page title and the main readable text out of
// an HTML document, dropping navigation chrome and scripts.
func ExtractArticle(html []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("script, style, nav, header, footer, aside, noscript, iframe").Remove()

	for _, selector := range contentSelectors {
		candidate := nodeText(doc.Find(selector).First())
		if len([]rune(candidate)) >= minContentLength {
			return title, candidate, nil
		}
	}
	return title, nodeText(doc.Find("body").First()), nil
}

// nodeText renders a selection as text with paragraph structure
// preserved: block elements contribute line breaks so the chunker can
// still find paragraph boundaries.
func nodeText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var sb strings.Builder
	sel.Find("p, h1, h2, h3, h4, h5, h6, li, td, div, br").Each(func(_ int, s *goquery.Selection) {
		// Only leaf-ish nodes contribute text directly; containers would
		// duplicate their children's text.
		if s.Children().Filter("p, div, li, table, ul, ol").Length() > 0 {
			return
		}
		t := strings.TrimSpace(s.Text())
		if t == "" {
			return
		}
		sb.WriteString(t)
		sb.WriteString("\n\n")
	})

	if sb.Len() > 0 {
		return sb.String()
	}
	return sel.Text()
}
