package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

// QueryOptions tune the retrieve/rerank/assemble stages.
type QueryOptions struct {
	RetrieveK     int
	RerankTopN    int
	ContextBudget int
}

func (o QueryOptions) normalize() QueryOptions {
	if o.RetrieveK <= 0 {
		o.RetrieveK = 20
	}
	if o.RerankTopN <= 0 {
		o.RerankTopN = 8
	}
	if o.ContextBudget <= 0 {
		o.ContextBudget = 6000
	}
	return o
}

// QueryAnswerer answers one question from the indexed corpus:
// embed, retrieve, rerank, assemble, synthesize. When retrieval yields
// nothing it returns the fixed fallback answer without calling the
// language model at all.
type QueryAnswerer struct {
	embedder  ports.Embedder
	index     ports.VectorIndex
	reranker  ports.Reranker
	completer ports.Completer
	opts      QueryOptions
	logger    *slog.Logger
}

func NewQueryAnswerer(embedder ports.Embedder, index ports.VectorIndex, reranker ports.Reranker, completer ports.Completer, opts QueryOptions, logger *slog.Logger) *QueryAnswerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryAnswerer{
		embedder:  embedder,
		index:     index,
		reranker:  reranker,
		completer: completer,
		opts:      opts.normalize(),
		logger:    logger,
	}
}

var _ ports.QueryService = (*QueryAnswerer)(nil)

func (q *QueryAnswerer) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", fmt.Errorf("empty question"))
	}

	started := time.Now()

	vector, err := q.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "embed question", err)
	}

	candidates, err := q.index.Search(ctx, vector, q.opts.RetrieveK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "search index", err)
	}
	if len(candidates) == 0 {
		q.logger.Info("query_no_candidates", slog.String("question", question))
		return domain.FallbackAnswer(), nil
	}

	reranked, err := RerankCandidates(ctx, q.reranker, question, candidates, q.opts.RerankTopN)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	gc := AssembleContext(reranked, q.opts.ContextBudget)
	if gc.Empty() {
		q.logger.Info("query_empty_context", slog.String("question", question))
		return domain.FallbackAnswer(), nil
	}

	system, user := BuildAnswerPrompt(question, gc)
	raw, err := q.completer.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	answer := ParseAnswer(raw, gc)
	q.logger.Info("query_answered",
		slog.Int("candidates", len(candidates)),
		slog.Int("context_blocks", len(gc.Blocks)),
		slog.Int("citations", len(answer.Citations)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return answer, nil
}
