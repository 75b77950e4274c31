package usecase

import (
	"fmt"
	"strings"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

const answerSystemPrompt = `You are an assistant answering questions about renting residential property in Singapore. You answer strictly and only from the official source excerpts provided. You never use outside knowledge, and when the excerpts do not cover the question you say so plainly instead of guessing.`

// BuildAnswerPrompt renders the grounding context as numbered source
// blocks and instructs the model to produce exactly three paragraphs
// plus a final Sources line naming the tags it relied on.
func BuildAnswerPrompt(question string, gc domain.GroundingContext) (system, user string) {
	var sb strings.Builder

	sb.WriteString("Answer the question using ONLY the numbered source excerpts below.\n\n")
	for i, b := range gc.Blocks {
		fmt.Fprintf(&sb, "[S%d] %s (%s)\n%s\n\n", i+1, b.Title, b.DocumentURL, b.Text)
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\n")
	sb.WriteString(`Write your answer as exactly three paragraphs separated by blank lines:

Paragraph 1: a direct answer to the question, hedged where the excerpts are not definitive.
Paragraph 2: the relevant rules and conditions from the excerpts, in plain language.
Paragraph 3: practical guidance for a tenant or landlord, including which agency to contact for confirmation.

If the excerpts do not contain enough information to answer, say so in paragraph 1 and keep the remaining paragraphs short.

After the third paragraph, add one final line of the form:
Sources: S1, S3

listing only the excerpt tags your answer actually relied on. Do not cite anything not listed above.`)

	return answerSystemPrompt, sb.String()
}
