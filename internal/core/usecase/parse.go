package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

const (
	citationShingleWords = 8
	citationSnippetLimit = 200
)

var sourcesLineRe = regexp.MustCompile(`(?i)^sources?\s*:\s*(.+)$`)
var sourceTagRe = regexp.MustCompile(`(?i)S(\d+)`)

// ParseAnswer structures raw model output into the three-paragraph
// answer shape and resolves citations against the grounding context.
// Anything that does not match the expected shape degrades to a
// single-paragraph answer rather than an error; the model already
// spent the tokens and some answer beats none.
func ParseAnswer(raw string, gc domain.GroundingContext) *domain.Answer {
	body, tags := splitSourcesLine(raw)

	answer := &domain.Answer{Grounded: true, Citations: []domain.Citation{}}

	paragraphs := splitParagraphs(body)
	if len(paragraphs) == 3 {
		answer.Paragraph1 = paragraphs[0]
		answer.Paragraph2 = paragraphs[1]
		answer.Paragraph3 = paragraphs[2]
	} else {
		answer.Paragraph1 = strings.TrimSpace(body)
	}

	answer.Citations = resolveCitations(body, tags, gc)
	return answer
}

// splitSourcesLine removes a trailing "Sources: S1, S3" line and returns
// the referenced tag numbers. The line is only recognized at the end of
// the output so a mid-answer mention of sources is left alone.
func splitSourcesLine(raw string) (body string, tags []int) {
	trimmed := strings.TrimRight(raw, " \t\n")
	idx := strings.LastIndex(trimmed, "\n")
	lastLine := trimmed
	if idx >= 0 {
		lastLine = trimmed[idx+1:]
	}

	m := sourcesLineRe.FindStringSubmatch(strings.TrimSpace(lastLine))
	if m == nil {
		return trimmed, nil
	}

	for _, tag := range sourceTagRe.FindAllStringSubmatch(m[1], -1) {
		if n, err := strconv.Atoi(tag[1]); err == nil && n > 0 {
			tags = append(tags, n)
		}
	}
	if idx < 0 {
		return "", tags
	}
	return strings.TrimRight(trimmed[:idx], " \t\n"), tags
}

func splitParagraphs(body string) []string {
	var out []string
	for _, p := range regexp.MustCompile(`\n\s*\n`).Split(body, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveCitations prefers the model's own Sources line; when that is
// missing or references no valid tag, it falls back to word-shingle
// matching between the answer text and each context block.
func resolveCitations(body string, tags []int, gc domain.GroundingContext) []domain.Citation {
	cited := make([]bool, len(gc.Blocks))
	any := false
	for _, n := range tags {
		if n >= 1 && n <= len(gc.Blocks) && !cited[n-1] {
			cited[n-1] = true
			any = true
		}
	}

	if !any {
		answerShingles := shingles(body, citationShingleWords)
		for i, b := range gc.Blocks {
			if sharesShingle(answerShingles, b.Text) {
				cited[i] = true
			}
		}
	}

	citations := []domain.Citation{}
	seen := make(map[string]bool)
	for i, b := range gc.Blocks {
		if !cited[i] || seen[b.DocumentURL] {
			continue
		}
		seen[b.DocumentURL] = true
		citations = append(citations, domain.Citation{
			URL:     b.DocumentURL,
			Title:   b.Title,
			Snippet: truncateRunes(strings.TrimSpace(b.Text), citationSnippetLimit),
		})
	}
	return citations
}

func shingles(text string, size int) map[string]bool {
	words := strings.Fields(strings.ToLower(text))
	out := make(map[string]bool)
	for i := 0; i+size <= len(words); i++ {
		out[strings.Join(words[i:i+size], " ")] = true
	}
	return out
}

func sharesShingle(answerShingles map[string]bool, blockText string) bool {
	words := strings.Fields(strings.ToLower(blockText))
	for i := 0; i+citationShingleWords <= len(words); i++ {
		if answerShingles[strings.Join(words[i:i+citationShingleWords], " ")] {
			return true
		}
	}
	return false
}
