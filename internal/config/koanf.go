// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/tomtom215/cartographus-recsys/internal/embedding"
	"github.com/tomtom215/cartographus-recsys/internal/features"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cartographus-recsys/config.yaml",
	"/etc/cartographus-recsys/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	emb := embedding.DefaultConfig()
	return &Config{
		Dataset: DatasetConfig{
			Size:             "SMALL",
			Sample:           true,
			ArticlesPath:     "data/articles.csv",
			CustomersPath:    "data/customers.csv",
			TransactionsPath: "data/transactions_train.csv",
		},
		Embedding: EmbeddingConfig{
			Provider:  emb.Provider,
			ModelID:   emb.ModelID,
			BatchSize: emb.BatchSize,
			Endpoint:  "",
			APIKey:    "",
			Dimension: emb.Dimension,
			Timeout:   30 * time.Second,
			RateLimit: 0, // Unlimited
			CacheSize: embedding.DefaultCacheCapacity,
		},
		Features: FeaturesConfig{
			ImageBaseURL: features.DefaultImageBaseURL,
			DropNullAge:  false,
		},
		Database: DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
			ChunkSize: 500_000,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "parquet",
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Legacy environment variables (CUSTOM_DATA_SIZE, FEATURES_EMBEDDING_MODEL_ID)
//  4. Environment Variables: Override any setting
//
// The returned Config has been validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Legacy names load first so the current names win when both are set
	if err := k.Load(env.Provider("", ".", legacyEnvTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load legacy environment variables: %w", err)
	}

	// Layer 4: Load environment variables (highest priority)
	// DATASET_SIZE -> dataset.size
	// EMBEDDING_BATCH_SIZE -> embedding.batch_size
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	// Record the id the model will actually report.
	cfg.Embedding.ModelID, _ = embedding.ResolveModelID(cfg.Embedding.ModelConfig())

	return cfg, nil
}

// normalize canonicalizes case-insensitive enumerations.
func normalize(cfg *Config) {
	cfg.Dataset.Size = strings.ToUpper(strings.TrimSpace(cfg.Dataset.Size))
	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Dataset
	"dataset_size":      "dataset.size",
	"dataset_sample":    "dataset.sample",
	"articles_path":     "dataset.articles_path",
	"customers_path":    "dataset.customers_path",
	"transactions_path": "dataset.transactions_path",

	// Embedding model
	"embedding_provider":   "embedding.provider",
	"embedding_model_id":   "embedding.model_id",
	"embedding_batch_size": "embedding.batch_size",
	"embedding_endpoint":   "embedding.endpoint",
	"embedding_api_key":    "embedding.api_key",
	"embedding_dimension":  "embedding.dimension",
	"embedding_timeout":    "embedding.timeout",
	"embedding_rate_limit": "embedding.rate_limit",
	"embedding_cache_size": "embedding.cache_size",

	// Featurizers
	"image_base_url": "features.image_base_url",
	"drop_null_age":  "features.drop_null_age",

	// DuckDB
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"duckdb_chunk_size": "database.chunk_size",

	// Output
	"output_dir":       "output.dir",
	"output_format":    "output.format",
	"metrics_textfile": "metrics.textfile",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// legacyEnvMappings holds the variable names used by earlier releases.
var legacyEnvMappings = map[string]string{
	"custom_data_size":            "dataset.size",
	"features_embedding_model_id": "embedding.model_id",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never pollute the configuration.
//
// Examples:
//   - DATASET_SIZE -> dataset.size
//   - EMBEDDING_BATCH_SIZE -> embedding.batch_size
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// legacyEnvTransformFunc maps legacy variable names to koanf config paths.
func legacyEnvTransformFunc(key string) string {
	return legacyEnvMappings[strings.ToLower(key)]
}
