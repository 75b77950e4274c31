package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/bootstrap"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New("worker")
	if err != nil {
		slog.Error("bootstrap_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.ConnectRepo(ctx); err != nil {
		app.Logger.Error("postgres_connect_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := app.ConnectQueue(); err != nil {
		app.Logger.Error("nats_connect_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              ":" + app.Cfg.WorkerMetricsPort,
		Handler:           promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("metrics_serve_failed", slog.String("error", err.Error()))
		}
	}()
	defer metricsServer.Shutdown(context.Background())

	processor := app.NewProcessor()
	app.Logger.Info("worker_started", slog.String("subject", app.Cfg.NATSSubject))

	err = app.Queue.SubscribeSourceQueued(ctx, func(ctx context.Context, url string) error {
		before := app.Index.Count()
		err := processor.ProcessByURL(ctx, url)
		switch {
		case err == nil:
			app.Metrics.SourcesProcessed.WithLabelValues("indexed").Inc()
			app.Metrics.ChunksIndexed.Add(float64(app.Index.Count() - before))
			app.Metrics.IndexSize.Set(float64(app.Index.Count()))
		case domain.IsKind(err, domain.ErrDuplicateContent):
			app.Metrics.SourcesProcessed.WithLabelValues("duplicate").Inc()
		default:
			app.Metrics.SourcesProcessed.WithLabelValues("failed").Inc()
		}
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error("worker_subscribe_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	app.Logger.Info("worker_stopped")
}
