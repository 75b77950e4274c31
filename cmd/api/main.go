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

	httpadapter "github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/adapters/http"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New("api")
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

	server := httpadapter.NewServer(app.NewSubmitter(), app.Query, app.Repo, app.Metrics, app.Logger)
	httpServer := &http.Server{
		Addr:              ":" + app.Cfg.APIPort,
		Handler:           server.Router(app.Registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.Logger.Info("api_listening", slog.String("port", app.Cfg.APIPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("api_serve_failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("api_shutdown_failed", slog.String("error", err.Error()))
	}
	app.Logger.Info("api_stopped")
}
