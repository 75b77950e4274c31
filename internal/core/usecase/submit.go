package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

// SourceSubmitter validates submitted URLs against the whitelist,
// records them, and enqueues them for the ingestion worker. Rejections
// are per-URL results, never a batch failure.
type SourceSubmitter struct {
	repo   ports.SourceRepository
	queue  ports.MessageQueue
	logger *slog.Logger
}

func NewSourceSubmitter(repo ports.SourceRepository, queue ports.MessageQueue, logger *slog.Logger) *SourceSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceSubmitter{repo: repo, queue: queue, logger: logger}
}

var _ ports.SourceSubmitter = (*SourceSubmitter)(nil)

func (s *SourceSubmitter) Submit(ctx context.Context, sources []ports.SourceSubmission) ([]ports.SubmissionResult, error) {
	results := make([]ports.SubmissionResult, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.submitOne(ctx, src))
	}
	return results, nil
}

func (s *SourceSubmitter) submitOne(ctx context.Context, src ports.SourceSubmission) ports.SubmissionResult {
	rawURL := strings.TrimSpace(src.URL)
	result := ports.SubmissionResult{URL: rawURL}

	if rawURL == "" {
		result.Reason = "empty url"
		return result
	}
	if !domain.URLAllowed(rawURL) {
		result.Reason = "domain not whitelisted"
		return result
	}

	existing, err := s.repo.GetByURL(ctx, rawURL)
	switch {
	case err == nil:
		if existing.Status != domain.StatusFailed {
			result.Reason = "already submitted"
			return result
		}
		// A previously failed source may be retried.
		if err := s.repo.UpdateStatus(ctx, rawURL, domain.StatusQueued, ""); err != nil {
			result.Reason = "requeue failed"
			s.logger.Error("source_requeue_failed", slog.String("url", rawURL), slog.String("error", err.Error()))
			return result
		}
	case domain.IsKind(err, domain.ErrSourceNotFound):
		now := time.Now().UTC()
		doc := &domain.SourceDocument{
			URL:          rawURL,
			Title:        strings.TrimSpace(src.Title),
			Category:     src.Category,
			SourceDomain: domain.HostOf(rawURL),
			Status:       domain.StatusQueued,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			result.Reason = "persist failed"
			s.logger.Error("source_create_failed", slog.String("url", rawURL), slog.String("error", err.Error()))
			return result
		}
	default:
		result.Reason = "lookup failed"
		s.logger.Error("source_lookup_failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		return result
	}

	if err := s.queue.PublishSourceQueued(ctx, rawURL); err != nil {
		result.Reason = "enqueue failed"
		s.logger.Error("source_enqueue_failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		return result
	}

	result.Accepted = true
	return result
}
