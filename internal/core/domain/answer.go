package domain

// FallbackAnswerText is returned verbatim whenever no relevant context was
// retrieved for a question.
const FallbackAnswerText = "The knowledge base does not cover this question. Please consult official agencies (HDB, CEA, or URA)."

// Citation points at a chunk that the synthesized answer actually used.
type Citation struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Answer is the terminal artifact of one query; not mutated after creation.
// An ungrounded Answer carries the fixed fallback text and zero citations.
type Answer struct {
	Paragraph1 string     `json:"paragraph_1"`
	Paragraph2 string     `json:"paragraph_2"`
	Paragraph3 string     `json:"paragraph_3"`
	Citations  []Citation `json:"citations"`
	Grounded   bool       `json:"grounded"`
}

func FallbackAnswer() *Answer {
	return &Answer{
		Paragraph1: FallbackAnswerText,
		Citations:  []Citation{},
		Grounded:   false,
	}
}
