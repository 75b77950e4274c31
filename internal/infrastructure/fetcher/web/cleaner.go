package web

import (
	"regexp"
	"strings"
)

var (
	spacesRe   = regexp.MustCompile(`[ \t]+`)
	newlinesRe = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted text for chunking: CRLF to LF, runs of
// spaces and tabs collapsed, lines trimmed, and blank-line runs squeezed
// to one paragraph break.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spacesRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = newlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
