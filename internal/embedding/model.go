// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// Model turns texts into vectors of a fixed dimension.
type Model interface {
	// ID names the model, e.g. "all-MiniLM-L6-v2" or "hash-384".
	ID() string
	// Dimension is the length of every vector Encode returns.
	Dimension() int
	// Encode returns one vector per text, in order.
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelFactory constructs the model used by a Generator.
type ModelFactory func(ctx context.Context) (Model, error)

// Providers accepted by NewModel.
const (
	ProviderHash = "hash"
	ProviderHTTP = "http"
)

// Config selects and configures the embedding model.
type Config struct {
	Provider  string
	ModelID   string
	BatchSize int
	Endpoint  string
	APIKey    string
	Dimension int
	Timeout   time.Duration
	// RateLimit caps HTTP requests per second. Zero disables the limit.
	RateLimit float64
}

// DefaultBatchSize is the number of texts per model call.
const DefaultBatchSize = 8

// DefaultModelID is the model requested from an http provider when no
// model ID is configured.
const DefaultModelID = "all-MiniLM-L6-v2"

// DefaultConfig returns the offline hash model with MiniLM's dimension. The
// model ID is left empty and resolved per provider by ResolveModelID.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderHash,
		ModelID:   "",
		BatchSize: DefaultBatchSize,
		Dimension: 384,
		Timeout:   30 * time.Second,
	}
}

// NewModel builds the model named by cfg.Provider.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModel(cfg Config, logger zerolog.Logger) (Model, error) {
	if cfg.Dimension < 1 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", table.ErrConfiguration, cfg.Dimension)
	}
	id, err := ResolveModelID(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderHash, "":
		return NewHashModel(cfg.Dimension), nil
	default:
		cfg.ModelID = id
		return NewHTTPModel(cfg, logger)
	}
}

// ResolveModelID returns the ID of the model cfg loads.
//
// The hash provider only serves its own feature-hashing model, named
// HashModelID(cfg.Dimension). An empty ID, "hash" or that exact name select
// it; any other ID (a pretrained model name) is a configuration error.
// The http provider sends the ID to the server, defaulting to
// DefaultModelID.
func ResolveModelID(cfg Config) (string, error) {
	switch cfg.Provider {
	case ProviderHash, "":
		hashID := HashModelID(cfg.Dimension)
		switch cfg.ModelID {
		case "", ProviderHash, hashID:
			return hashID, nil
		}
		return "", fmt.Errorf("%w: embedding model %q is not available from the hash provider (it serves %q); set the provider to %q to load it",
			table.ErrConfiguration, cfg.ModelID, hashID, ProviderHTTP)
	case ProviderHTTP:
		if cfg.ModelID == "" {
			return DefaultModelID, nil
		}
		return cfg.ModelID, nil
	default:
		return "", fmt.Errorf("%w: unknown embedding provider %q", table.ErrConfiguration, cfg.Provider)
	}
}

// FactoryFromConfig returns a ModelFactory that calls NewModel.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func FactoryFromConfig(cfg Config, logger zerolog.Logger) ModelFactory {
	return func(context.Context) (Model, error) {
		return NewModel(cfg, logger)
	}
}
