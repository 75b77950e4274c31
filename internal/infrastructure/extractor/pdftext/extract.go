// Package pdftext extracts plain text from PDF documents such as agency
// circulars and practice guidelines.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract returns the concatenated text of every page, with a paragraph
// break between pages. Pages that fail to decode are skipped; a PDF
// where no page decodes is an error.
func Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	decoded := 0
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
		decoded++
	}

	if decoded == 0 {
		return "", fmt.Errorf("no extractable text in %d pages", pages)
	}
	return strings.TrimSpace(sb.String()), nil
}
