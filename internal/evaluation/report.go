package evaluation

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders the report for human review.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Evaluation Report\n\n")
	fmt.Fprintf(&sb, "Run started: %s\n\n", r.StartedAt.Format("2006-01-02 15:04:05 UTC"))
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Questions: %d\n", r.Total)
	fmt.Fprintf(&sb, "- Grounded answers: %d\n", r.Answered)
	fmt.Fprintf(&sb, "- Fallbacks: %d\n", r.Fallbacks)
	fmt.Fprintf(&sb, "- Errors: %d\n", r.Errors)
	fmt.Fprintf(&sb, "- Success rate: %.1f%%\n", r.SuccessRate()*100)
	fmt.Fprintf(&sb, "- Citation rate: %.1f%%\n\n", r.CitationRate()*100)

	sb.WriteString("## Questions\n\n")
	for i, res := range r.Results {
		fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, res.Question.Question)
		if res.Question.Category != "" {
			fmt.Fprintf(&sb, "Category: %s\n\n", res.Question.Category)
		}
		switch {
		case res.Err != nil:
			fmt.Fprintf(&sb, "ERROR: %s\n\n", res.Err)
		case res.Answer.Grounded:
			fmt.Fprintf(&sb, "%s\n\n", res.Answer.Paragraph1)
			if res.Answer.Paragraph2 != "" {
				fmt.Fprintf(&sb, "%s\n\n", res.Answer.Paragraph2)
			}
			if res.Answer.Paragraph3 != "" {
				fmt.Fprintf(&sb, "%s\n\n", res.Answer.Paragraph3)
			}
			if len(res.Answer.Citations) > 0 {
				sb.WriteString("Sources:\n")
				for _, c := range res.Answer.Citations {
					fmt.Fprintf(&sb, "- [%s](%s)\n", c.Title, c.URL)
				}
				sb.WriteString("\n")
			}
		default:
			fmt.Fprintf(&sb, "FALLBACK: %s\n\n", res.Answer.Paragraph1)
		}
		fmt.Fprintf(&sb, "Elapsed: %s\n\n", res.Elapsed.Round(time.Millisecond))
	}
	return sb.String()
}
