// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// Generator embeds texts in bounded batches with a lazily loaded model.
// It is safe for concurrent use.
type Generator struct {
	factory   ModelFactory
	batchSize int
	cache     *VectorCache
	logger    zerolog.Logger

	mu    sync.Mutex
	model Model
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithCache reuses vectors for texts already embedded by this process.
// Only cache misses are sent to the model, so batches are formed from the
// uncached texts.
func WithCache(cache *VectorCache) GeneratorOption {
	return func(g *Generator) {
		g.cache = cache
	}
}

// NewGenerator creates a Generator. The model is not loaded until the first
// Embed call that needs it, or a Dimension call. A batchSize below 1 falls
// back to DefaultBatchSize.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGenerator(factory ModelFactory, batchSize int, logger zerolog.Logger, opts ...GeneratorOption) *Generator {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	g := &Generator{
		factory:   factory,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "embedding").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BatchSize returns the batch size used by Embed.
func (g *Generator) BatchSize() int {
	return g.batchSize
}

// Embed embeds texts using the generator's batch size.
func (g *Generator) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return g.EmbedBatched(ctx, texts, g.batchSize)
}

// EmbedBatched returns one vector per text, in input order, calling the
// model once per consecutive batch of at most batchSize texts. Empty input
// returns an empty slice without loading the model. On failure no vectors
// are returned and the error is a *FailureError.
func (g *Generator) EmbedBatched(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: embedding batch size must be at least 1, got %d", table.ErrConfiguration, batchSize)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))
	pending := g.lookup(texts, out)
	cached := len(texts) - len(pending)
	if len(pending) == 0 {
		g.logger.Debug().Int("texts", len(texts)).Msg("all embeddings served from cache")
		return out, nil
	}

	model, err := g.load(ctx)
	if err != nil {
		return nil, &FailureError{BatchIndex: 0, Err: err}
	}
	dim := model.Dimension()

	batches := (len(pending) + batchSize - 1) / batchSize
	started := time.Now()

	for b := 0; b < batches; b++ {
		start := b * batchSize
		end := min(start+batchSize, len(pending))
		idx := pending[start:end]
		batch := make([]string, len(idx))
		for j, i := range idx {
			batch[j] = texts[i]
		}

		if err := ctx.Err(); err != nil {
			return nil, &FailureError{BatchIndex: b, Err: err}
		}

		began := time.Now()
		vectors, err := model.Encode(ctx, batch)
		if err == nil {
			err = checkBatch(vectors, len(batch), dim)
		}
		metrics.RecordEmbeddingBatch(len(batch), time.Since(began), err)
		if err != nil {
			g.logger.Error().Err(err).
				Int("batch", b).
				Int("batches", batches).
				Str("model", model.ID()).
				Msg("embedding batch failed")
			return nil, &FailureError{BatchIndex: b, Err: err}
		}

		for j, i := range idx {
			out[i] = vectors[j]
			if g.cache != nil {
				g.cache.Add(texts[i], vectors[j])
			}
		}
		g.logger.Debug().
			Int("batch", b+1).
			Int("batches", batches).
			Int("size", len(batch)).
			Msg("embedding batch done")
	}

	g.logger.Info().
		Int("texts", len(texts)).
		Int("cached", cached).
		Int("batches", batches).
		Int("dimension", dim).
		Dur("duration", time.Since(started)).
		Msg("embeddings computed")

	return out, nil
}

// lookup fills out from the cache and returns the indices still to encode.
func (g *Generator) lookup(texts []string, out [][]float32) []int {
	pending := make([]int, 0, len(texts))
	for i, text := range texts {
		if g.cache != nil {
			if v, ok := g.cache.Get(text); ok {
				out[i] = v
				continue
			}
		}
		pending = append(pending, i)
	}
	return pending
}

// Dimension loads the model if needed and returns its vector dimension.
func (g *Generator) Dimension(ctx context.Context) (int, error) {
	model, err := g.load(ctx)
	if err != nil {
		return 0, err
	}
	return model.Dimension(), nil
}

// Close releases the model if it holds resources.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.model.(io.Closer); ok {
		g.model = nil
		return c.Close()
	}
	g.model = nil
	return nil
}

func (g *Generator) load(ctx context.Context) (Model, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.model != nil {
		return g.model, nil
	}
	if g.factory == nil {
		return nil, errors.New("no embedding model factory configured")
	}

	began := time.Now()
	model, err := g.factory(ctx)
	if err != nil {
		metrics.EmbeddingModelLoads.WithLabelValues("unknown", "failure").Inc()
		return nil, fmt.Errorf("load embedding model: %w", err)
	}
	metrics.EmbeddingModelLoads.WithLabelValues(model.ID(), "success").Inc()
	g.logger.Info().
		Str("model", model.ID()).
		Int("dimension", model.Dimension()).
		Dur("duration", time.Since(began)).
		Msg("embedding model loaded")

	g.model = model
	return model, nil
}

func checkBatch(vectors [][]float32, want, dim int) error {
	if len(vectors) != want {
		return fmt.Errorf("model returned %d vectors for %d texts", len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}
