// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

/*
Package main is the entry point for the featurize batch job.

featurize turns the raw H&M articles, customers and transactions CSV files
into feature tables for recommendation model training, and exports them as
Parquet (or CSV) files.

# Run Steps

 1. Configuration: Koanf v2 with defaults, config file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB, in-memory by default, reading the CSVs with read_csv_auto;
    transactions stay staged in DuckDB and are featurized in chunks
 4. Embedding: lazily loaded text embedding model (hash or HTTP provider)
 5. Pipeline: optional customer sampling, then article, customer and
    transaction featurization
 6. Export: one DuckDB table and one output file per feature table
 7. Metrics: optional Prometheus textfile for the node_exporter collector

# Configuration

Common environment variables:
  - DATASET_SIZE: SMALL, MEDIUM or LARGE (legacy: CUSTOM_DATA_SIZE)
  - DATASET_SAMPLE: false featurizes every customer
  - ARTICLES_PATH, CUSTOMERS_PATH, TRANSACTIONS_PATH: raw CSV files
  - EMBEDDING_PROVIDER: hash (offline) or http
  - EMBEDDING_ENDPOINT: OpenAI-compatible embeddings server for the http provider
  - OUTPUT_DIR, OUTPUT_FORMAT: export location and format (parquet or csv)
  - METRICS_TEXTFILE: path for the Prometheus textfile

# Example Usage

	export ARTICLES_PATH=data/articles.csv
	export CUSTOMERS_PATH=data/customers.csv
	export TRANSACTIONS_PATH=data/transactions_train.csv
	export DATASET_SIZE=MEDIUM
	./featurize

With a local text-embeddings-inference server:

	export EMBEDDING_PROVIDER=http
	export EMBEDDING_ENDPOINT=http://localhost:8080
	export EMBEDDING_MODEL_ID=sentence-transformers/all-MiniLM-L6-v2
	./featurize

The hash provider names its vectors hash-<dimension> and rejects a
pretrained model id.

# Signal Handling

SIGINT and SIGTERM cancel the run context. In-flight embedding requests and
DuckDB queries are aborted and the database is closed before exit.
*/
package main
