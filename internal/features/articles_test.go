// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// fakeEmbedder returns a 2-dimensional vector per text and records inputs.
type fakeEmbedder struct {
	calls [][]string
	err   error
	short bool
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls = append(e.calls, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}
	n := len(texts)
	if e.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func rawArticles() *table.Table {
	first := articleRow()
	first["detail_desc"] = "Jersey top with narrow shoulder straps."
	first["detail_desc_length"] = int64(39)
	first["unused"] = nil

	second := articleRow()
	second["article_id"] = int64(7)
	second["prod_name"] = "Täschchen"
	second["detail_desc"] = nil
	second["detail_desc_length"] = nil
	second["unused"] = nil

	cols := []string{
		"article_id", "prod_name", "product_type_name", "product_group_name",
		"graphical_appearance_name", "colour_group_name", "perceived_colour_value_name",
		"perceived_colour_master_name", "index_group_name", "section_name",
		"garment_group_name", "detail_desc", "detail_desc_length", "unused",
	}
	return table.New(cols, []table.Row{first, second})
}

func TestArticleFeaturizer_Compute(t *testing.T) {
	t.Parallel()

	emb := &fakeEmbedder{}
	f := NewArticleFeaturizer(emb, zerolog.Nop())
	in := rawArticles()

	out, err := f.Compute(context.Background(), in)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	if out.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Len())
	}
	for _, col := range []string{ColDetailDesc, ColDetailDescLength, "unused"} {
		if out.HasColumn(col) {
			t.Errorf("output should not contain %q", col)
		}
	}
	for _, col := range []string{ColArticleID, ColProdNameLength, ColArticleDescription, ColImageURL, ColEmbeddings} {
		if !out.HasColumn(col) {
			t.Errorf("output missing %q", col)
		}
	}

	if got := out.Value(0, ColArticleID); got != "108775015" {
		t.Errorf("article_id = %#v, want \"108775015\"", got)
	}
	if got := out.Value(1, ColProdNameLength); got != int64(9) {
		t.Errorf("prod_name_length counts runes: got %#v, want 9", got)
	}
	if got := out.Value(1, ColImageURL); got != DefaultImageBaseURL+"/images/07/07.jpg" {
		t.Errorf("image_url = %#v", got)
	}

	desc, _ := out.Value(0, ColArticleDescription).(string)
	if want := DescribeArticle(in.Row(0)); desc != want {
		t.Errorf("article_description = %q, want %q", desc, want)
	}

	if len(emb.calls) != 1 || len(emb.calls[0]) != 2 || emb.calls[0][0] != desc {
		t.Errorf("embedder received %v", emb.calls)
	}
	vec, ok := out.Value(0, ColEmbeddings).([]float32)
	if !ok || len(vec) != 2 || vec[0] != float32(len(desc)) {
		t.Errorf("embeddings[0] = %#v", out.Value(0, ColEmbeddings))
	}
}

func TestArticleFeaturizer_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := rawArticles()
	before := in.Columns()

	if _, err := NewArticleFeaturizer(&fakeEmbedder{}, zerolog.Nop()).Compute(context.Background(), in); err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	after := in.Columns()
	if len(before) != len(after) {
		t.Fatalf("input columns changed: %v -> %v", before, after)
	}
	if got := in.Value(0, ColArticleID); got != int64(108775015) {
		t.Errorf("input article_id changed to %#v", got)
	}
	if in.HasColumn(ColEmbeddings) {
		t.Error("input gained embeddings column")
	}
}

func TestArticleFeaturizer_ImageBaseURL(t *testing.T) {
	t.Parallel()

	f := NewArticleFeaturizer(&fakeEmbedder{}, zerolog.Nop(), WithImageBaseURL("http://cdn.local/"))
	out, err := f.Compute(context.Background(), rawArticles())
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got := out.Value(0, ColImageURL); got != "http://cdn.local/images/010/0108775015.jpg" {
		t.Errorf("image_url = %#v", got)
	}
}

func TestArticleFeaturizer_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing prod_name", func(t *testing.T) {
		emb := &fakeEmbedder{}
		in := rawArticles().Drop(ColProdName)
		_, err := NewArticleFeaturizer(emb, zerolog.Nop()).Compute(context.Background(), in)
		if !errors.Is(err, table.ErrConfiguration) {
			t.Fatalf("error = %v, want ErrConfiguration", err)
		}
		var mce *table.MissingColumnError
		if !errors.As(err, &mce) || mce.Column != ColProdName {
			t.Errorf("error = %#v, want MissingColumnError for prod_name", err)
		}
		if len(emb.calls) != 0 {
			t.Error("embedder must not be called on configuration error")
		}
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewArticleFeaturizer(nil, zerolog.Nop()).Compute(context.Background(), rawArticles())
		if !errors.Is(err, table.ErrConfiguration) {
			t.Errorf("error = %v, want ErrConfiguration", err)
		}
	})

	t.Run("null article id", func(t *testing.T) {
		in := rawArticles().WithColumn(ColArticleID, func(table.Row) any { return nil })
		_, err := NewArticleFeaturizer(&fakeEmbedder{}, zerolog.Nop()).Compute(context.Background(), in)
		if !errors.Is(err, table.ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("embedding failure", func(t *testing.T) {
		sentinel := errors.New("model unavailable")
		_, err := NewArticleFeaturizer(&fakeEmbedder{err: sentinel}, zerolog.Nop()).Compute(context.Background(), rawArticles())
		if !errors.Is(err, sentinel) {
			t.Errorf("error = %v, want wrapped sentinel", err)
		}
	})

	t.Run("vector count mismatch", func(t *testing.T) {
		_, err := NewArticleFeaturizer(&fakeEmbedder{short: true}, zerolog.Nop()).Compute(context.Background(), rawArticles())
		if err == nil {
			t.Error("expected error for short embedding result")
		}
	})
}

func TestArticleFeaturizer_Empty(t *testing.T) {
	t.Parallel()

	in := table.New([]string{ColArticleID, ColProdName}, nil)
	out, err := NewArticleFeaturizer(&fakeEmbedder{}, zerolog.Nop()).Compute(context.Background(), in)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Len() = %d, want 0", out.Len())
	}
	if !out.HasColumn(ColEmbeddings) {
		t.Error("empty output should still carry the embeddings column")
	}
}
