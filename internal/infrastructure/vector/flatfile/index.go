package flatfile

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

// Index is a flat cosine-similarity index persisted to a single file.
// Reads are shared, writes exclusive. Entries keep insertion order, which
// breaks score ties (earlier-indexed wins).
type Index struct {
	path    string
	modelID string

	mu      sync.RWMutex
	entries []Entry
}

// Entry is one stored chunk embedding. Exported for gob encoding.
type Entry struct {
	ID     string
	Chunk  domain.Chunk
	Vector []float32
}

type indexFile struct {
	ModelID string
	Entries []Entry
}

// Open loads the index file at path, or starts an empty index if the file
// does not exist yet. The stored embedding model identity must match
// modelID: vectors produced by a different model are invalid.
func Open(path, modelID string) (*Index, error) {
	idx := &Index{path: path, modelID: modelID}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var stored indexFile
	if err := gob.NewDecoder(f).Decode(&stored); err != nil {
		return nil, fmt.Errorf("decode index file: %w", err)
	}
	if stored.ModelID != modelID {
		return nil, fmt.Errorf("index built with embedding model %q, configured model is %q", stored.ModelID, modelID)
	}

	idx.entries = stored.Entries
	return idx, nil
}

func (ix *Index) Add(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i := range chunks {
		ix.entries = append(ix.entries, Entry{
			ID:     uuid.NewString(),
			Chunk:  chunks[i],
			Vector: vectors[i],
		})
	}
	return nil
}

func (ix *Index) Search(_ context.Context, vector []float32, k int) ([]domain.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	scored := make([]int, len(ix.entries))
	scores := make([]float64, len(ix.entries))
	for i := range ix.entries {
		scored[i] = i
		scores[i] = cosine(vector, ix.entries[i].Vector)
	}
	// Stable sort keeps insertion order on equal scores.
	sort.SliceStable(scored, func(a, b int) bool {
		return scores[scored[a]] > scores[scored[b]]
	})

	if k > len(scored) {
		k = len(scored)
	}
	out := make([]domain.Candidate, 0, k)
	for _, i := range scored[:k] {
		out = append(out, domain.Candidate{
			Chunk:      ix.entries[i].Chunk,
			Similarity: scores[i],
		})
	}
	return out, nil
}

func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Flush writes the whole index atomically (temp file + rename).
func (ix *Index) Flush() error {
	ix.mu.RLock()
	snapshot := indexFile{
		ModelID: ix.modelID,
		Entries: append([]Entry(nil), ix.entries...),
	}
	ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(ix.path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(ix.path), ".index-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(snapshot); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmp.Name(), ix.path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
