// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cartographus-recsys/internal/table"
)

func httpConfig(endpoint, model string) Config {
	cfg := DefaultConfig()
	cfg.Provider = ProviderHTTP
	cfg.Endpoint = endpoint
	cfg.ModelID = model
	cfg.Dimension = 2
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestHTTPModel_Encode(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model != "mini" {
			http.Error(w, "wrong model", http.StatusBadRequest)
			return
		}

		// Answer in reverse order to exercise reordering by index.
		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, item{Index: i, Embedding: []float32{float32(i), float32(len(req.Input[i]))}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := httpConfig(server.URL+"/", "mini")
	cfg.APIKey = "secret"
	m, err := NewHTTPModel(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPModel() error: %v", err)
	}
	defer m.Close()

	vecs, err := m.Encode(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	for i, v := range vecs {
		if v[0] != float32(i) || v[1] != float32(i+1) {
			t.Errorf("vector %d = %v, not reordered by index", i, v)
		}
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/embeddings" {
		t.Errorf("path = %q, want /v1/embeddings", gotPath)
	}
}

func TestHTTPModel_WithGenerator(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var req embeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		var data []item
		for i := range req.Input {
			data = append(data, item{Index: i, Embedding: []float32{1, 0}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer server.Close()

	g := NewGenerator(FactoryFromConfig(httpConfig(server.URL, "gen"), zerolog.Nop()), 2, zerolog.Nop())
	defer g.Close()

	vecs, err := g.Embed(context.Background(), texts(5))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vecs) != 5 {
		t.Errorf("len = %d, want 5", len(vecs))
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestHTTPModel_BadResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"count mismatch", `{"data":[{"index":0,"embedding":[1,2]}]}`},
		{"index out of range", `{"data":[{"index":0,"embedding":[1,2]},{"index":5,"embedding":[1,2]}]}`},
		{"repeated index", `{"data":[{"index":0,"embedding":[1,2]},{"index":0,"embedding":[1,2]}]}`},
		{"not json", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			m, err := NewHTTPModel(httpConfig(server.URL, "bad-"+tt.name), zerolog.Nop())
			if err != nil {
				t.Fatalf("NewHTTPModel() error: %v", err)
			}
			if _, err := m.Encode(context.Background(), []string{"x", "y"}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHTTPModel_CircuitOpens(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	m, err := NewHTTPModel(httpConfig(server.URL, "trip"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPModel() error: %v", err)
	}

	for i := 0; i < breakerMinRequests; i++ {
		if _, err := m.Encode(context.Background(), []string{"x"}); err == nil {
			t.Fatalf("request %d: expected error", i)
		}
	}

	_, err = m.Encode(context.Background(), []string{"x"})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if got := hits.Load(); got != breakerMinRequests {
		t.Errorf("server hits = %d, want %d", got, breakerMinRequests)
	}
}

func TestHTTPModel_RateLimitRespectsContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,2]}]}`))
	}))
	defer server.Close()

	cfg := httpConfig(server.URL, "limited")
	cfg.RateLimit = 0.001
	m, err := NewHTTPModel(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHTTPModel() error: %v", err)
	}

	if _, err := m.Encode(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("first Encode() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := m.Encode(ctx, []string{"x"}); err == nil {
		t.Error("second Encode() should fail waiting on the limiter")
	}
}

func TestNewModel_ModelIDSelectsModel(t *testing.T) {
	t.Parallel()

	t.Run("hash provider rejects pretrained names", func(t *testing.T) {
		for _, id := range []string{"all-MiniLM-L6-v2", "sentence-transformers/all-mpnet-base-v2"} {
			cfg := DefaultConfig()
			cfg.ModelID = id
			_, err := NewModel(cfg, zerolog.Nop())
			if !errors.Is(err, table.ErrConfiguration) {
				t.Errorf("NewModel(hash, %q) error = %v, want ErrConfiguration", id, err)
			}
		}
	})

	t.Run("hash model is named by dimension", func(t *testing.T) {
		for _, id := range []string{"", "hash", "hash-128"} {
			cfg := DefaultConfig()
			cfg.ModelID = id
			cfg.Dimension = 128
			m, err := NewModel(cfg, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewModel(hash, %q) error: %v", id, err)
			}
			if m.ID() != "hash-128" {
				t.Errorf("ID() = %q, want hash-128", m.ID())
			}
		}

		cfg := DefaultConfig()
		cfg.ModelID = "hash-64"
		if _, err := NewModel(cfg, zerolog.Nop()); !errors.Is(err, table.ErrConfiguration) {
			t.Errorf("hash-64 with dimension 384 error = %v, want ErrConfiguration", err)
		}
	})

	t.Run("http provider requests the configured model", func(t *testing.T) {
		var requested []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req embeddingsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			requested = append(requested, req.Model)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
		}))
		defer server.Close()

		for _, id := range []string{"", "sentence-transformers/all-mpnet-base-v2"} {
			m, err := NewModel(httpConfig(server.URL, id), zerolog.Nop())
			if err != nil {
				t.Fatalf("NewModel(http, %q) error: %v", id, err)
			}
			if _, err := m.Encode(context.Background(), []string{"Strap top"}); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
		}

		want := []string{DefaultModelID, "sentence-transformers/all-mpnet-base-v2"}
		if len(requested) != 2 || requested[0] != want[0] || requested[1] != want[1] {
			t.Errorf("requested models = %v, want %v", requested, want)
		}
	})
}
