// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestHashModel_Deterministic(t *testing.T) {
	t.Parallel()

	in := []string{"Strap top - Vest top in Garment Upper body", "Tights"}
	a, err := NewHashModel(64).Encode(context.Background(), in)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	b, err := NewHashModel(64).Encode(context.Background(), in)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("hash model is not deterministic")
	}
}

func TestHashModel_Normalized(t *testing.T) {
	t.Parallel()

	vecs, err := NewHashModel(32).Encode(context.Background(), []string{"Black jersey top", "", "!!!"})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if n := norm(vecs[0]); math.Abs(n-1) > 1e-6 {
		t.Errorf("norm = %v, want 1", n)
	}
	for _, v := range vecs[1:] {
		if len(v) != 32 || norm(v) != 0 {
			t.Errorf("token-free text should map to a zero vector of length 32, got %v", v)
		}
	}
}

func TestHashModel_SimilarTextsAreCloser(t *testing.T) {
	t.Parallel()

	vecs, err := NewHashModel(256).Encode(context.Background(), []string{
		"black jersey vest top",
		"Black Jersey vest top with straps",
		"wool winter socks",
	})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if near, far := dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]); near <= far {
		t.Errorf("similarity(near)=%v should exceed similarity(far)=%v", near, far)
	}
}
