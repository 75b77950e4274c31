package ports

import (
	"context"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

// SourceSubmission is one URL proposed for ingestion.
type SourceSubmission struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// SubmissionResult reports the per-URL outcome of a submission batch.
type SubmissionResult struct {
	URL      string `json:"url"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// SourceSubmitter validates and enqueues sources for ingestion.
type SourceSubmitter interface {
	Submit(ctx context.Context, sources []SourceSubmission) ([]SubmissionResult, error)
}

// SourceProcessor runs the ingestion pipeline for one queued source.
type SourceProcessor interface {
	ProcessByURL(ctx context.Context, url string) error
}

// QueryService answers a question from the indexed corpus.
type QueryService interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}
