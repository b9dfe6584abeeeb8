// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

/*
Package metrics provides Prometheus instrumentation for the feature pipeline.

Collectors are registered on the default registry with promauto. Because the
featurize command is a batch job, metrics are not served over HTTP; instead
WriteTextfile dumps the registry when a run finishes so that the
node_exporter textfile collector can pick it up:

	METRICS_TEXTFILE=/var/lib/node_exporter/recsys.prom ./featurize

# Available Metrics

Pipeline:
  - recsys_stage_duration_seconds{stage}: stage latency (histogram)
  - recsys_stage_errors_total{stage}: failed stages
  - recsys_rows_in_total{table}, recsys_rows_out_total{table}: row counts
  - recsys_data_quality_warnings_total{table,kind}: dropped columns and rows
  - recsys_sampled_rows{table,tier}: rows kept by the last sample

Embeddings:
  - recsys_embedding_batches_total{status}
  - recsys_embedding_batch_duration_seconds
  - recsys_embedding_texts_total
  - recsys_embedding_model_loads_total{model,status}
  - recsys_embedding_cache_lookups_total{result}

Storage and resilience:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table}
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package metrics
