package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

type stubEmbedder struct {
	vectors map[string][]float32
	fail    error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no stub vector for %q", t)
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (s *stubEmbedder) ModelID() string { return "stub-embedder" }

type memoryIndex struct {
	chunks  []domain.Chunk
	vectors [][]float32
	flushes int
	fail    error
}

func (m *memoryIndex) Add(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if m.fail != nil {
		return m.fail
	}
	m.chunks = append(m.chunks, chunks...)
	m.vectors = append(m.vectors, vectors...)
	return nil
}

func (m *memoryIndex) Search(_ context.Context, vector []float32, k int) ([]domain.Candidate, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]domain.Candidate, 0, len(m.chunks))
	for i, c := range m.chunks {
		out = append(out, domain.Candidate{Chunk: c, Similarity: cosine32(vector, m.vectors[i])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}

func (m *memoryIndex) Count() int { return len(m.chunks) }

func (m *memoryIndex) Flush() error {
	m.flushes++
	return nil
}

func cosine32(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type stubReranker struct {
	scoreFn func(passage string) float64
	fail    error
	calls   int
}

func (s *stubReranker) Rerank(_ context.Context, _ string, passages []string) ([]float64, error) {
	s.calls++
	if s.fail != nil {
		return nil, s.fail
	}
	scores := make([]float64, len(passages))
	for i, p := range passages {
		if s.scoreFn != nil {
			scores[i] = s.scoreFn(p)
		}
	}
	return scores, nil
}

type stubCompleter struct {
	reply string
	fail  error
	calls int
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	s.calls++
	if s.fail != nil {
		return "", s.fail
	}
	return s.reply, nil
}

type memoryRepo struct {
	docs map[string]*domain.SourceDocument
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[string]*domain.SourceDocument)}
}

func (r *memoryRepo) Create(_ context.Context, doc *domain.SourceDocument) error {
	if _, ok := r.docs[doc.URL]; ok {
		return fmt.Errorf("duplicate key %q", doc.URL)
	}
	copied := *doc
	r.docs[doc.URL] = &copied
	return nil
}

func (r *memoryRepo) GetByURL(_ context.Context, url string) (*domain.SourceDocument, error) {
	doc, ok := r.docs[url]
	if !ok {
		return nil, domain.WrapError(domain.ErrSourceNotFound, "get source", fmt.Errorf("url %q", url))
	}
	copied := *doc
	return &copied, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, url string, status domain.SourceStatus, errMessage string) error {
	doc, ok := r.docs[url]
	if !ok {
		return domain.WrapError(domain.ErrSourceNotFound, "update status", fmt.Errorf("url %q", url))
	}
	doc.Status = status
	doc.Error = errMessage
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) SaveFetchResult(_ context.Context, doc *domain.SourceDocument) error {
	copied := *doc
	r.docs[doc.URL] = &copied
	return nil
}

func (r *memoryRepo) List(context.Context) ([]domain.SourceDocument, error) {
	out := make([]domain.SourceDocument, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, *d)
	}
	return out, nil
}

type stubQueue struct {
	published []string
	fail      error
}

func (q *stubQueue) PublishSourceQueued(_ context.Context, url string) error {
	if q.fail != nil {
		return q.fail
	}
	q.published = append(q.published, url)
	return nil
}

func (q *stubQueue) SubscribeSourceQueued(context.Context, func(context.Context, string) error) error {
	return nil
}

type stubFetcher struct {
	pages map[string]*domain.FetchedPage
	fail  error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*domain.FetchedPage, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no stub page for %q", url)
	}
	return page, nil
}

type stubChunker struct {
	chunkSize int
}

// Split cuts the text into fixed-size rune windows without overlap;
// enough structure for pipeline tests without pulling in the real
// splitter.
func (c *stubChunker) Split(doc *domain.SourceDocument) []domain.Chunk {
	size := c.chunkSize
	if size <= 0 {
		size = 100
	}
	runes := []rune(doc.RawText)
	var chunks []domain.Chunk
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			DocumentURL:  doc.URL,
			Title:        doc.Title,
			SourceDomain: doc.SourceDomain,
			Index:        len(chunks),
			Text:         string(runes[start:end]),
			CharStart:    start,
			CharEnd:      end,
		})
	}
	return chunks
}

var _ ports.Embedder = (*stubEmbedder)(nil)
var _ ports.VectorIndex = (*memoryIndex)(nil)
var _ ports.Reranker = (*stubReranker)(nil)
var _ ports.Completer = (*stubCompleter)(nil)
var _ ports.SourceRepository = (*memoryRepo)(nil)
var _ ports.MessageQueue = (*stubQueue)(nil)
var _ ports.PageFetcher = (*stubFetcher)(nil)
var _ ports.Chunker = (*stubChunker)(nil)
