// Command ingest loads the curated URL list and runs the full ingestion
// pipeline against it, bypassing the queue. Meant for initial corpus
// builds and scheduled refreshes.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/bootstrap"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/config"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

func main() {
	sourcesPath := flag.String("sources", "", "path to the URL list (defaults to SOURCES_PATH)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New("ingest")
	if err != nil {
		slog.Error("bootstrap_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.ConnectRepo(ctx); err != nil {
		app.Logger.Error("postgres_connect_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	path := *sourcesPath
	if path == "" {
		path = app.Cfg.SourcesPath
	}
	entries, err := config.LoadSourceList(path)
	if err != nil {
		app.Logger.Error("source_list_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	urls := registerSources(ctx, app, entries)
	if len(urls) == 0 {
		app.Logger.Info("ingest_nothing_to_do")
		return
	}

	started := time.Now()
	result := app.NewProcessor().ProcessBatch(ctx, urls, app.Cfg.IngestFetchWorkers)

	app.Logger.Info("ingest_finished",
		slog.Int("indexed", result.Indexed),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("failed", result.Failed),
		slog.Int("index_chunks", app.Index.Count()),
		slog.Duration("elapsed", time.Since(started)),
	)
	if result.Failed > 0 {
		os.Exit(1)
	}
}

// registerSources makes sure every whitelisted entry has a source row,
// then returns the URLs worth processing. Already indexed sources are
// skipped so reruns only pick up new or failed entries.
func registerSources(ctx context.Context, app *bootstrap.App, entries []config.SourceEntry) []string {
	var urls []string
	for _, e := range entries {
		url := strings.TrimSpace(e.URL)
		if url == "" {
			continue
		}
		if !domain.URLAllowed(url) {
			app.Logger.Warn("source_not_whitelisted", slog.String("url", url))
			continue
		}

		existing, err := app.Repo.GetByURL(ctx, url)
		switch {
		case err == nil:
			if existing.Status == domain.StatusIndexed || existing.Status == domain.StatusDuplicate {
				continue
			}
		case domain.IsKind(err, domain.ErrSourceNotFound):
			now := time.Now().UTC()
			doc := &domain.SourceDocument{
				URL:          url,
				Title:        e.Title,
				Category:     e.Category,
				SourceDomain: domain.HostOf(url),
				Status:       domain.StatusQueued,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := app.Repo.Create(ctx, doc); err != nil {
				app.Logger.Error("source_create_failed", slog.String("url", url), slog.String("error", err.Error()))
				continue
			}
		default:
			app.Logger.Error("source_lookup_failed", slog.String("url", url), slog.String("error", err.Error()))
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
