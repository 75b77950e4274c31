package usecase

import (
	"context"
	"fmt"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

// GuardOptions configure duplicate detection.
type GuardOptions struct {
	// Threshold is the average best-match cosine similarity at or above
	// which a document counts as already indexed.
	Threshold float64
	// MaxSamples bounds how many chunk vectors are checked per document.
	MaxSamples int
}

func (o GuardOptions) normalize() GuardOptions {
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = 0.80
	}
	if o.MaxSamples <= 0 {
		o.MaxSamples = 8
	}
	return o
}

// DuplicateGuard decides whether a chunked document is near-identical to
// content already in the index. It samples chunk vectors evenly across
// the document, takes each sample's best-match similarity, and compares
// the average against the threshold. An empty index accepts everything.
type DuplicateGuard struct {
	index ports.VectorIndex
	opts  GuardOptions
}

func NewDuplicateGuard(index ports.VectorIndex, opts GuardOptions) *DuplicateGuard {
	return &DuplicateGuard{index: index, opts: opts.normalize()}
}

// IsDuplicate returns the verdict and the averaged similarity that
// produced it.
func (g *DuplicateGuard) IsDuplicate(ctx context.Context, vectors [][]float32) (bool, float64, error) {
	if len(vectors) == 0 || g.index.Count() == 0 {
		return false, 0, nil
	}

	samples := sampleEvenly(vectors, g.opts.MaxSamples)
	total := 0.0
	for _, v := range samples {
		hits, err := g.index.Search(ctx, v, 1)
		if err != nil {
			return false, 0, fmt.Errorf("duplicate search: %w", err)
		}
		if len(hits) > 0 {
			total += hits[0].Similarity
		}
	}

	avg := total / float64(len(samples))
	return avg >= g.opts.Threshold, avg, nil
}

// sampleEvenly picks up to max vectors spread across the slice so that a
// long document is sampled at its start, middle, and end rather than
// only at its head. A single-sample budget takes the middle vector.
func sampleEvenly(vectors [][]float32, max int) [][]float32 {
	if len(vectors) <= max {
		return vectors
	}
	if max == 1 {
		return vectors[len(vectors)/2 : len(vectors)/2+1]
	}
	out := make([][]float32, 0, max)
	step := float64(len(vectors)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		out = append(out, vectors[int(float64(i)*step+0.5)])
	}
	return out
}
