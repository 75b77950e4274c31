package ports

import (
	"context"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

// PageFetcher retrieves one whitelisted URL and returns extracted plain
// text; the pipeline never sees raw markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.FetchedPage, error)
}

// Chunker splits cleaned document text into overlapping retrieval chunks.
type Chunker interface {
	Split(doc *domain.SourceDocument) []domain.Chunk
}

// Embedder maps text to fixed-length vectors. The same model identity must
// be used at ingestion and at query time; mismatched models invalidate
// stored vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// Reranker scores each (query, passage) pair independently with a
// cross-encoder and returns one scalar per passage, in input order.
type Reranker interface {
	Rerank(ctx context.Context, query string, passages []string) ([]float64, error)
}

// Completer is the single synchronous language-model call. It must be
// OpenAI-chat-completion compatible at minimum.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// VectorIndex stores chunk embeddings and answers nearest-neighbour
// queries. Reads are shared, writes exclusive; contents persist across
// process restarts.
type VectorIndex interface {
	Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]domain.Candidate, error)
	Count() int
	Flush() error
}

// SourceRepository persists SourceDocument state.
type SourceRepository interface {
	Create(ctx context.Context, doc *domain.SourceDocument) error
	GetByURL(ctx context.Context, url string) (*domain.SourceDocument, error)
	UpdateStatus(ctx context.Context, url string, status domain.SourceStatus, errMessage string) error
	SaveFetchResult(ctx context.Context, doc *domain.SourceDocument) error
	List(ctx context.Context) ([]domain.SourceDocument, error)
}

// MessageQueue carries queued source URLs from the API to the worker.
type MessageQueue interface {
	PublishSourceQueued(ctx context.Context, url string) error
	SubscribeSourceQueued(ctx context.Context, handler func(context.Context, string) error) error
}
