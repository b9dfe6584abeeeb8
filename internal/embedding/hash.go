// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashModel embeds text by signed feature hashing of lower-cased word
// tokens and their bigrams. Vectors are L2-normalized; a text without
// tokens maps to the zero vector.
type HashModel struct {
	dim int
}

// HashModelID names the hash model of the given dimension, e.g. "hash-384".
func HashModelID(dim int) string {
	return fmt.Sprintf("hash-%d", dim)
}

// NewHashModel creates a HashModel with the given dimension.
func NewHashModel(dim int) *HashModel {
	return &HashModel{dim: dim}
}

// ID implements Model.
func (m *HashModel) ID() string { return HashModelID(m.dim) }

// Dimension implements Model.
func (m *HashModel) Dimension() int { return m.dim }

// Encode implements Model.
func (m *HashModel) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *HashModel) vector(text string) []float32 {
	acc := make([]float64, m.dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, tok := range tokens {
		m.add(acc, tok)
		if i > 0 {
			m.add(acc, tokens[i-1]+" "+tok)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, m.dim)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

func (m *HashModel) add(acc []float64, feature string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := sum % uint64(m.dim) //nolint:gosec // dim is positive
	if sum>>63 == 1 {
		acc[idx]--
	} else {
		acc[idx]++
	}
}
