// Package prometheus records pipeline instrumentation with the Prometheus
// client and serves it over HTTP.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

const namespace = "jse"

// Ensure Metrics implements the interface.
var _ driven.PipelineMetrics = (*Metrics)(nil)

// Metrics is a driven.PipelineMetrics backed by its own registry.
type Metrics struct {
	registry *prometheus.Registry

	documents      *prometheus.CounterVec
	chunks         prometheus.Counter
	ingestDuration *prometheus.HistogramVec
	queries        *prometheus.CounterVec
	queryDuration  prometheus.Histogram
	results        prometheus.Histogram
}

// New registers the pipeline collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Documents ingested, by result",
		}, []string{"result"}),
		chunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Chunks committed to the index",
		}),
		ingestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Time to extract, chunk and index one document",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"result"}),
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Queries served, by status",
		}, []string{"status"}),
		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "results",
			Help:      "Citations returned per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
	}
}

// ObserveIngest records one document ingestion.
func (m *Metrics) ObserveIngest(result string, duration time.Duration, chunks int) {
	m.documents.WithLabelValues(result).Inc()
	m.ingestDuration.WithLabelValues(result).Observe(duration.Seconds())
	if chunks > 0 {
		m.chunks.Add(float64(chunks))
	}
}

// ObserveQuery records one query.
func (m *Metrics) ObserveQuery(duration time.Duration, results int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(status).Inc()
	m.queryDuration.Observe(duration.Seconds())
	if err == nil {
		m.results.Observe(float64(results))
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Debug("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
