// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/cartographus-recsys/internal/embedding"
	"github.com/tomtom215/cartographus-recsys/internal/logging"
	"github.com/tomtom215/cartographus-recsys/internal/table"
	"github.com/tomtom215/cartographus-recsys/internal/validation"
)

// Config holds all settings of a featurization run.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: Override any setting
//
// Config is immutable after LoadWithKoanf and safe for concurrent reads.
type Config struct {
	Dataset   DatasetConfig   `koanf:"dataset"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Features  FeaturesConfig  `koanf:"features"`
	Database  DatabaseConfig  `koanf:"database"`
	Output    OutputConfig    `koanf:"output"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatasetConfig locates the raw H&M tables and selects the sample tier.
type DatasetConfig struct {
	// Size is the sampling tier: SMALL (1000 customers), MEDIUM (5000) or
	// LARGE (50000). Parsed case-insensitively.
	Size string `koanf:"size" validate:"oneof=SMALL MEDIUM LARGE"`

	// Sample enables customer sampling. When false all rows are featurized.
	Sample bool `koanf:"sample"`

	ArticlesPath     string `koanf:"articles_path" validate:"required"`
	CustomersPath    string `koanf:"customers_path" validate:"required"`
	TransactionsPath string `koanf:"transactions_path" validate:"required"`
}

// EmbeddingConfig selects the text embedding model.
type EmbeddingConfig struct {
	Provider  string        `koanf:"provider" validate:"oneof=hash http"`
	ModelID   string        `koanf:"model_id"` // empty selects the provider default
	BatchSize int           `koanf:"batch_size" validate:"min=1"`
	Endpoint  string        `koanf:"endpoint" validate:"required_if=Provider http,omitempty,url"`
	APIKey    string        `koanf:"api_key"`
	Dimension int           `koanf:"dimension" validate:"min=1"`
	Timeout   time.Duration `koanf:"timeout" validate:"min=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"min=0"` // requests per second, 0 = unlimited

	// CacheSize bounds the in-process vector cache. 0 disables it.
	CacheSize int `koanf:"cache_size" validate:"min=0"`
}

// ModelConfig converts the settings for embedding.NewModel.
func (c EmbeddingConfig) ModelConfig() embedding.Config {
	return embedding.Config{
		Provider:  c.Provider,
		ModelID:   c.ModelID,
		BatchSize: c.BatchSize,
		Endpoint:  c.Endpoint,
		APIKey:    c.APIKey,
		Dimension: c.Dimension,
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit,
	}
}

// FeaturesConfig tunes the featurizers.
type FeaturesConfig struct {
	ImageBaseURL string `koanf:"image_base_url" validate:"required,url"`
	DropNullAge  bool   `koanf:"drop_null_age"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"` // ":memory:" for an in-memory database
	MaxMemory string `koanf:"max_memory" validate:"memsize"`
	Threads   int    `koanf:"threads" validate:"min=0"` // 0 = use NumCPU

	// ChunkSize is the number of transaction rows featurized at once.
	ChunkSize int `koanf:"chunk_size" validate:"min=1"`
}

// OutputConfig controls where feature tables are exported.
type OutputConfig struct {
	Dir    string `koanf:"dir" validate:"required"`
	Format string `koanf:"format" validate:"oneof=parquet csv"`
}

// MetricsConfig controls the Prometheus textfile written at the end of a run.
type MetricsConfig struct {
	// Textfile is the node_exporter textfile collector path. Empty disables it.
	Textfile string `koanf:"textfile"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// ToLogging converts the settings for logging.Init.
func (c LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// Validate checks every setting. Errors match table.ErrConfiguration.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("%w: %w", table.ErrConfiguration, verr)
	}
	if _, err := embedding.ResolveModelID(c.Embedding.ModelConfig()); err != nil {
		return err
	}
	return nil
}
