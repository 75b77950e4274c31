package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

// SourceProcessor runs the ingestion pipeline for queued sources:
// fetch, chunk, embed, duplicate-check, index, flush. Fetching and
// embedding may run concurrently across sources; the guard-and-index
// stage is serialized so the duplicate check always sees every chunk
// added before it.
type SourceProcessor struct {
	repo     ports.SourceRepository
	fetcher  ports.PageFetcher
	chunker  ports.Chunker
	embedder ports.Embedder
	index    ports.VectorIndex
	guard    *DuplicateGuard
	logger   *slog.Logger

	indexMu sync.Mutex
}

func NewSourceProcessor(repo ports.SourceRepository, fetcher ports.PageFetcher, chunker ports.Chunker, embedder ports.Embedder, index ports.VectorIndex, guard *DuplicateGuard, logger *slog.Logger) *SourceProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceProcessor{
		repo:     repo,
		fetcher:  fetcher,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		guard:    guard,
		logger:   logger,
	}
}

var _ ports.SourceProcessor = (*SourceProcessor)(nil)

// ProcessByURL ingests one registered source. Per-source failures mark
// the source failed and return the error; callers treat them as
// skippable. A duplicate verdict is not a failure: the source is marked
// duplicate and a typed error is returned for the caller to inspect.
func (p *SourceProcessor) ProcessByURL(ctx context.Context, url string) error {
	doc, err := p.repo.GetByURL(ctx, url)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}

	if err := p.repo.UpdateStatus(ctx, url, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	if err := p.process(ctx, doc); err != nil {
		if domain.IsKind(err, domain.ErrDuplicateContent) {
			if uerr := p.repo.UpdateStatus(ctx, url, domain.StatusDuplicate, ""); uerr != nil {
				p.logger.Error("source_status_update_failed", slog.String("url", url), slog.String("error", uerr.Error()))
			}
			return err
		}
		if uerr := p.repo.UpdateStatus(ctx, url, domain.StatusFailed, err.Error()); uerr != nil {
			p.logger.Error("source_status_update_failed", slog.String("url", url), slog.String("error", uerr.Error()))
		}
		return err
	}
	return nil
}

func (p *SourceProcessor) process(ctx context.Context, doc *domain.SourceDocument) error {
	started := time.Now()

	// Submissions are validated, but queue messages are not trusted
	// blindly.
	if !domain.URLAllowed(doc.URL) {
		return domain.WrapError(domain.ErrDomainNotAllowed, "whitelist check", fmt.Errorf("host of %s", doc.URL))
	}

	page, err := p.fetcher.Fetch(ctx, doc.URL)
	if err != nil {
		return fmt.Errorf("fetch source: %w", err)
	}

	doc.RawText = page.Text
	doc.FetchDate = page.FetchDate
	doc.Status = domain.StatusProcessing
	if doc.Title == "" {
		doc.Title = page.Title
	}
	if err := p.repo.SaveFetchResult(ctx, doc); err != nil {
		return fmt.Errorf("save fetch result: %w", err)
	}

	chunks := p.chunker.Split(doc)
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrEmptyExtraction, "chunk source", fmt.Errorf("no chunks from %d chars", len(doc.RawText)))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	p.indexMu.Lock()
	defer p.indexMu.Unlock()

	duplicate, avg, err := p.guard.IsDuplicate(ctx, vectors)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if duplicate {
		p.logger.Info("source_duplicate",
			slog.String("url", doc.URL),
			slog.Float64("avg_similarity", avg),
		)
		return domain.WrapError(domain.ErrDuplicateContent, "duplicate check", fmt.Errorf("avg similarity %.3f", avg))
	}

	if err := p.index.Add(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	if err := p.index.Flush(); err != nil {
		return fmt.Errorf("flush index: %w", err)
	}

	doc.ChunkCount = len(chunks)
	doc.Status = domain.StatusIndexed
	if err := p.repo.SaveFetchResult(ctx, doc); err != nil {
		return fmt.Errorf("save indexed source: %w", err)
	}

	p.logger.Info("source_indexed",
		slog.String("url", doc.URL),
		slog.Int("chunks", len(chunks)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// BatchResult summarizes one ProcessBatch run.
type BatchResult struct {
	Indexed    int
	Duplicates int
	Failed     int
}

// ProcessBatch ingests many URLs with up to workers fetch/embed stages
// in flight. Individual failures are logged and counted, never fatal.
func (p *SourceProcessor) ProcessBatch(ctx context.Context, urls []string, workers int) BatchResult {
	if workers <= 0 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		result BatchResult
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, workers)

	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := p.ProcessByURL(ctx, url)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Indexed++
			case domain.IsKind(err, domain.ErrDuplicateContent):
				result.Duplicates++
			default:
				result.Failed++
				p.logger.Warn("source_failed", slog.String("url", url), slog.String("error", err.Error()))
			}
		}(url)
	}
	wg.Wait()
	return result
}
