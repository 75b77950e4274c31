// Package http exposes the query and source-management API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/observability/metrics"
)

type Server struct {
	submitter ports.SourceSubmitter
	query     ports.QueryService
	repo      ports.SourceRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewServer(submitter ports.SourceSubmitter, query ports.QueryService, repo ports.SourceRepository, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		submitter: submitter,
		query:     query,
		repo:      repo,
		metrics:   m,
		logger:    logger,
	}
}

func (s *Server) Router(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /v1/sources", s.handleSubmitSources)
	mux.HandleFunc("GET /v1/sources", s.handleListSources)
	mux.HandleFunc("GET /v1/sources/{url...}", s.handleGetSource)
	mux.HandleFunc("POST /v1/query", s.handleQuery)

	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return s.logRequests(mux)
}
