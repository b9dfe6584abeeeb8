// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/cartographus-recsys/internal/table"
	"golang.org/x/time/rate"
)

const (
	embeddingsPath = "/v1/embeddings"
	maxErrorBody   = 1024
)

// HTTPModel calls an OpenAI-compatible embeddings endpoint.
type HTTPModel struct {
	id       string
	dim      int
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[][]float32]
	name     string
	logger   zerolog.Logger
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// NewHTTPModel validates cfg and creates an HTTPModel. cfg.Endpoint is the
// server base URL; "/v1/embeddings" is appended unless the URL already ends
// in "/embeddings".
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPModel(cfg Config, logger zerolog.Logger) (*HTTPModel, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: embedding endpoint is required for the http provider", table.ErrConfiguration)
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid embedding endpoint %q", table.ErrConfiguration, cfg.Endpoint)
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if !strings.HasSuffix(endpoint, "/embeddings") {
		endpoint += embeddingsPath
	}

	name := "embedding-" + cfg.ModelID
	logger = logger.With().Str("component", "embedding_http").Str("model", cfg.ModelID).Logger()

	m := &HTTPModel{
		id:       cfg.ModelID,
		dim:      cfg.Dimension,
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		cb:       newBreaker(name, logger),
		name:     name,
		logger:   logger,
	}
	if cfg.RateLimit > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return m, nil
}

// ID implements Model.
func (m *HTTPModel) ID() string { return m.id }

// Dimension implements Model.
func (m *HTTPModel) Dimension() int { return m.dim }

// Encode implements Model. The response is reordered by its index field.
func (m *HTTPModel) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	vectors, err := m.cb.Execute(func() ([][]float32, error) {
		return m.post(ctx, texts)
	})
	recordBreakerResult(m.name, err)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

func (m *HTTPModel) post(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingsRequest{Model: m.id, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("response has %d embeddings for %d inputs", len(decoded.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range decoded.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("response index %d out of range", d.Index)
		}
		if out[d.Index] != nil {
			return nil, fmt.Errorf("response index %d repeated", d.Index)
		}
		out[d.Index] = d.Embedding
	}

	m.logger.Debug().Int("texts", len(texts)).Msg("embeddings received")
	return out, nil
}

// Close releases idle connections.
func (m *HTTPModel) Close() error {
	m.client.CloseIdleConnections()
	return nil
}
