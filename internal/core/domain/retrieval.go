package domain

// Candidate is a per-query retrieval hit. Ephemeral, never persisted.
type Candidate struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
}

// RerankedCandidate carries the cross-encoder score that replaces the
// vector similarity ordering for one query. Scores are not comparable
// across queries and must not be persisted.
type RerankedCandidate struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// ContextBlock is one surviving span of grounding text with the source
// metadata needed to cite it.
type ContextBlock struct {
	DocumentURL  string `json:"document_url"`
	Title        string `json:"title"`
	SourceDomain string `json:"source_domain"`
	Text         string `json:"text"`
	CharStart    int    `json:"char_start"`
	CharEnd      int    `json:"char_end"`
}

// GroundingContext lives for the duration of one answer-synthesis call.
type GroundingContext struct {
	Blocks []ContextBlock `json:"blocks"`
}

func (g GroundingContext) Empty() bool {
	return len(g.Blocks) == 0
}
