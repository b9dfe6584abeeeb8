// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recsys_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900}, // Embedding stages can take minutes
		},
		[]string{"stage"}, // "sample", "articles", "customers", "transactions"
	)

	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_stage_errors_total",
			Help: "Total number of failed pipeline stages",
		},
		[]string{"stage"},
	)

	RowsIn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_rows_in_total",
			Help: "Total number of rows entering a featurizer",
		},
		[]string{"table"},
	)

	RowsOut = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_rows_out_total",
			Help: "Total number of rows emitted by a featurizer",
		},
		[]string{"table"},
	)

	// DataQualityWarnings counts non-fatal schema or row changes
	// (fully-null column dropped, null-age rows removed, out-of-range age).
	DataQualityWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_data_quality_warnings_total",
			Help: "Total number of data quality warnings raised while featurizing",
		},
		[]string{"table", "kind"},
	)

	// Sampling Metrics
	SampledRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recsys_sampled_rows",
			Help: "Number of rows retained by the last dataset sample",
		},
		[]string{"table", "tier"},
	)

	// Embedding Metrics
	EmbeddingBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_embedding_batches_total",
			Help: "Total number of embedding batches submitted to the model",
		},
		[]string{"status"}, // "success", "failure"
	)

	EmbeddingBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recsys_embedding_batch_duration_seconds",
			Help:    "Duration of a single embedding batch in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	EmbeddingTexts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recsys_embedding_texts_total",
			Help: "Total number of texts embedded successfully",
		},
	)

	EmbeddingModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_embedding_model_loads_total",
			Help: "Total number of embedding model load attempts",
		},
		[]string{"model", "status"},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_embedding_cache_lookups_total",
			Help: "Total number of embedding cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Storage Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordStage records a pipeline stage duration and, on failure, an error.
func RecordStage(stage string, duration time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		StageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordRows records the row counts entering and leaving a featurizer.
func RecordRows(table string, in, out int) {
	RowsIn.WithLabelValues(table).Add(float64(in))
	RowsOut.WithLabelValues(table).Add(float64(out))
}

// RecordDataQualityWarning increments the warning counter for table/kind.
func RecordDataQualityWarning(table, kind string) {
	DataQualityWarnings.WithLabelValues(table, kind).Inc()
}

// RecordEmbeddingBatch records one embedding batch outcome.
func RecordEmbeddingBatch(size int, duration time.Duration, err error) {
	EmbeddingBatchDuration.Observe(duration.Seconds())
	if err != nil {
		EmbeddingBatches.WithLabelValues("failure").Inc()
		return
	}
	EmbeddingBatches.WithLabelValues("success").Inc()
	EmbeddingTexts.Add(float64(size))
}

// RecordDBQuery records a DuckDB query duration and error.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// WriteTextfile writes the default registry to path in the Prometheus text
// format, for collection by the node_exporter textfile collector after a
// batch run exits.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
