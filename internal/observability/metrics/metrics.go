// Package metrics exposes Prometheus counters and histograms for the
// ingestion pipeline and the query path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SourcesSubmitted *prometheus.CounterVec
	SourcesProcessed *prometheus.CounterVec
	ChunksIndexed    prometheus.Counter
	IndexSize        prometheus.Gauge

	QueriesTotal    *prometheus.CounterVec
	QueryDuration   prometheus.Histogram
	CitationsPerAns prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SourcesSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rag_sources_submitted_total",
			Help: "Submitted source URLs by outcome (accepted, rejected).",
		}, []string{"outcome"}),
		SourcesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rag_sources_processed_total",
			Help: "Processed sources by final status (indexed, duplicate, failed).",
		}, []string{"status"}),
		ChunksIndexed: factory.NewCounter(prometheus.CounterOpts{
			Name: "rag_chunks_indexed_total",
			Help: "Chunks added to the vector index.",
		}),
		IndexSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rag_index_chunks",
			Help: "Current number of chunks in the vector index.",
		}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rag_queries_total",
			Help: "Answered queries by result (grounded, fallback, error).",
		}, []string{"result"}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_query_duration_seconds",
			Help:    "End-to-end query latency.",
			Buckets: prometheus.DefBuckets,
		}),
		CitationsPerAns: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_citations_per_answer",
			Help:    "Citations attached per grounded answer.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8},
		}),
	}
}
