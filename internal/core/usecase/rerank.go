package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

// rerankPassageLimit caps the text sent per passage. Cross-encoders
// truncate long inputs anyway; capping here keeps the request small and
// the scoring deterministic.
const rerankPassageLimit = 500

// RerankCandidates rescores every retrieval hit against the query with
// the cross-encoder and keeps the topN best. Ties keep retrieval order.
// The scores are query-local and must never outlive the request.
func RerankCandidates(ctx context.Context, reranker ports.Reranker, query string, candidates []domain.Candidate, topN int) ([]domain.RerankedCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = truncateRunes(c.Chunk.Text, rerankPassageLimit)
	}

	scores, err := reranker.Rerank(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("rerank candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("rerank candidates: got %d scores for %d passages", len(scores), len(candidates))
	}

	reranked := make([]domain.RerankedCandidate, len(candidates))
	for i, c := range candidates {
		reranked[i] = domain.RerankedCandidate{Chunk: c.Chunk, Score: scores[i]}
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	if topN > 0 && len(reranked) > topN {
		reranked = reranked[:topN]
	}
	return reranked, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
