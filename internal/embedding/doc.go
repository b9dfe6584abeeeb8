// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

/*
Package embedding computes fixed-dimension vector embeddings for text.

A Generator owns a single Model, resolved lazily through a ModelFactory on
first use and kept resident for the generator's lifetime. Texts are sent to
the model in consecutive batches of at most the configured batch size, and
vectors come back in input order.

# Models

  - hash: offline signed feature hashing over word tokens, L2-normalized.
    Deterministic and dependency free; useful for tests and local runs.
  - http: OpenAI-compatible /v1/embeddings endpoint (text-embeddings-inference,
    vLLM, Ollama). Requests are rate limited and guarded by a circuit breaker.

The vector dimension is a property of the model. Callers read it from
Generator.Dimension instead of assuming a constant.

# Cache

WithCache attaches a VectorCache. Texts already embedded by this process
are served from it and only the misses are batched and sent to the model.

# Failure

Any model error, wrong vector count or dimension mismatch fails the whole
call with *FailureError, which carries the index of the failing batch and
matches ErrEmbeddingFailure. Vectors from earlier batches are discarded.

# Observability

Each batch is logged at debug level and recorded in the
recsys_embedding_batches_total and recsys_embedding_batch_duration_seconds
metrics. Nothing is written to stdout.
*/
package embedding
