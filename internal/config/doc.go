// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

/*
Package config provides configuration management for the featurization run.

# Configuration Sources

Settings are layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults
  - Optional YAML file (CONFIG_PATH, then config.yaml / config.yml, then
    /etc/cartographus-recsys/)
  - Legacy environment variables (CUSTOM_DATA_SIZE, FEATURES_EMBEDDING_MODEL_ID)
  - Environment variables

# Environment Variables

Dataset (DatasetConfig):
  - DATASET_SIZE: Sample tier SMALL, MEDIUM or LARGE (default: SMALL)
  - DATASET_SAMPLE: Sample customers before featurizing (default: true)
  - ARTICLES_PATH, CUSTOMERS_PATH, TRANSACTIONS_PATH: Raw CSV files

Embedding (EmbeddingConfig):
  - EMBEDDING_PROVIDER: hash or http (default: hash)
  - EMBEDDING_MODEL_ID: Model name (default: hash-<dimension> for the hash
    provider, all-MiniLM-L6-v2 for http; the hash provider rejects other names)
  - EMBEDDING_BATCH_SIZE: Texts per model call (default: 8)
  - EMBEDDING_ENDPOINT: Base URL of the embeddings server (required for http)
  - EMBEDDING_API_KEY: Bearer token for the embeddings server
  - EMBEDDING_DIMENSION: Vector length (default: 384)
  - EMBEDDING_TIMEOUT: HTTP timeout per batch (default: 30s)
  - EMBEDDING_RATE_LIMIT: Requests per second, 0 for unlimited (default: 0)

Features (FeaturesConfig):
  - IMAGE_BASE_URL: Prefix of article image URLs
  - DROP_NULL_AGE: Re-apply null-age removal after bucketing (default: false)

Database (DatabaseConfig):
  - DUCKDB_PATH: Database file path (default: :memory:)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
  - DUCKDB_THREADS: Worker threads, 0 for NumCPU (default: 0)
  - DUCKDB_CHUNK_SIZE: Transaction rows featurized per chunk (default: 500000)

Output:
  - OUTPUT_DIR: Export directory (default: output)
  - OUTPUT_FORMAT: parquet or csv (default: parquet)
  - METRICS_TEXTFILE: Prometheus textfile path, empty to disable

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Validation

LoadWithKoanf validates the result with go-playground/validator. Every
validation error matches table.ErrConfiguration.

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    return err
	}
	logging.Init(cfg.Logging.ToLogging())
*/
package config
