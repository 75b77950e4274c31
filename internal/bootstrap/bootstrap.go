// Package bootstrap assembles the application from configuration. Each
// binary connects only the pieces it needs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/config"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/usecase"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/chunking"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/fetcher/web"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/inference"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/llm/openaichat"
	natsq "github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/queue/nats"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/repository/postgres"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/resilience"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/vector/flatfile"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/observability/logging"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/observability/metrics"
)

type App struct {
	Cfg      config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Index     *flatfile.Index
	Inference *inference.Client
	Completer *openaichat.Client
	Query     *usecase.QueryAnswerer

	Repo  *postgres.SourceRepository
	Queue *natsq.Queue
}

// New wires the query stack: vector index, inference clients, language
// model, and the query answerer. Postgres and NATS are connected
// separately because not every binary needs them.
func New(service string) (*App, error) {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	index, err := flatfile.Open(cfg.IndexPath, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}
	m.IndexSize.Set(float64(index.Count()))

	infClient := inference.New(cfg.InferenceURL, cfg.EmbedModel, cfg.RerankModel, executor)
	completer := openaichat.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, executor)

	query := usecase.NewQueryAnswerer(infClient, index, infClient, completer, usecase.QueryOptions{
		RetrieveK:     cfg.RetrieveK,
		RerankTopN:    cfg.RerankTopN,
		ContextBudget: cfg.ContextCharBudget,
	}, logger)

	return &App{
		Cfg:       cfg,
		Logger:    logger,
		Registry:  registry,
		Metrics:   m,
		Index:     index,
		Inference: infClient,
		Completer: completer,
		Query:     query,
	}, nil
}

func (a *App) ConnectRepo(ctx context.Context) error {
	repo, err := postgres.Open(a.Cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return err
	}
	a.Repo = repo
	return nil
}

func (a *App) ConnectQueue() error {
	queue, err := natsq.Connect(a.Cfg.NATSURL, a.Cfg.NATSSubject, a.Logger)
	if err != nil {
		return err
	}
	a.Queue = queue
	return nil
}

// NewSubmitter requires a connected repo and queue.
func (a *App) NewSubmitter() *usecase.SourceSubmitter {
	return usecase.NewSourceSubmitter(a.Repo, a.Queue, a.Logger)
}

// NewProcessor requires a connected repo.
func (a *App) NewProcessor() *usecase.SourceProcessor {
	fetchExecutor := resilience.NewExecutor(resilience.DefaultPolicy())
	fetcher := web.NewFetcher(
		time.Duration(a.Cfg.FetchTimeoutSeconds)*time.Second,
		a.Cfg.FetchRatePerSecond,
		fetchExecutor,
	)
	chunker := chunking.NewSplitter(a.Cfg.ChunkSize, a.Cfg.ChunkOverlap)
	guard := usecase.NewDuplicateGuard(a.Index, usecase.GuardOptions{
		Threshold:  a.Cfg.DuplicateThreshold,
		MaxSamples: a.Cfg.DuplicateSamples,
	})
	return usecase.NewSourceProcessor(a.Repo, fetcher, chunker, a.Inference, a.Index, guard, a.Logger)
}

func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.Repo != nil {
		a.Repo.Close()
	}
	if a.Index != nil {
		if err := a.Index.Flush(); err != nil {
			a.Logger.Error("index_flush_failed", slog.String("error", err.Error()))
		}
	}
}
