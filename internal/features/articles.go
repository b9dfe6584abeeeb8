// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// DefaultImageBaseURL hosts the H&M article images.
const DefaultImageBaseURL = "https://repo.hops.works/dev/jdowling/h-and-m"

// Embedder computes one vector per text, preserving order.
// *embedding.Generator satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ArticleFeaturizer turns raw article rows into article feature rows.
type ArticleFeaturizer struct {
	embedder     Embedder
	imageBaseURL string
	logger       zerolog.Logger
}

// ArticleOption configures an ArticleFeaturizer.
type ArticleOption func(*ArticleFeaturizer)

// WithImageBaseURL overrides the scheme and host prefix of image_url.
// The /images/0<folder>/0<id>.jpg shape is not configurable.
func WithImageBaseURL(base string) ArticleOption {
	return func(f *ArticleFeaturizer) {
		f.imageBaseURL = strings.TrimRight(base, "/")
	}
}

// NewArticleFeaturizer creates an ArticleFeaturizer that embeds article
// descriptions with embedder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewArticleFeaturizer(embedder Embedder, logger zerolog.Logger, opts ...ArticleOption) *ArticleFeaturizer {
	f := &ArticleFeaturizer{
		embedder:     embedder,
		imageBaseURL: DefaultImageBaseURL,
		logger:       logger.With().Str("component", "article_featurizer").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Compute applies, in order: article_id normalization, prod_name_length,
// article_description, image_url, embeddings, removal of fully-null
// columns, and removal of detail_desc and detail_desc_length.
//
// A missing article_id or prod_name column is a configuration error and is
// reported before any work is done. The input table is not modified.
func (f *ArticleFeaturizer) Compute(ctx context.Context, articles *table.Table) (*table.Table, error) {
	if err := articles.Require(TableArticles, ColArticleID, ColProdName); err != nil {
		return nil, err
	}
	if f.embedder == nil {
		return nil, fmt.Errorf("%w: articles: no embedder configured", table.ErrConfiguration)
	}
	for i := 0; i < articles.Len(); i++ {
		if articles.Row(i).IsNull(ColArticleID) {
			return nil, &table.ValueError{Column: ColArticleID, Row: i, Reason: "null article id"}
		}
	}

	df := articles.StringColumn(ColArticleID)

	df = df.WithColumn(ColProdNameLength, func(r table.Row) any {
		s, ok := table.String(r[ColProdName])
		if !ok {
			return nil
		}
		return int64(utf8.RuneCountInString(s))
	})

	df = df.WithColumn(ColArticleDescription, func(r table.Row) any {
		return DescribeArticle(r)
	})

	df = df.WithColumn(ColImageURL, func(r table.Row) any {
		id, _ := r[ColArticleID].(string)
		return ImageURL(f.imageBaseURL, id)
	})

	texts := make([]string, df.Len())
	for i := range texts {
		texts[i], _ = df.Value(i, ColArticleDescription).(string)
	}
	vectors, err := f.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed article descriptions: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed article descriptions: got %d vectors for %d texts", len(vectors), len(texts))
	}
	values := make([]any, len(vectors))
	for i, v := range vectors {
		values[i] = v
	}
	df = df.WithValues(ColEmbeddings, values)

	if nullCols := df.NullColumns(); len(nullCols) > 0 {
		for _, col := range nullCols {
			f.logger.Warn().
				Str("table", TableArticles).
				Str("column", col).
				Int("rows", df.Len()).
				Msg("dropping fully-null column")
			metrics.RecordDataQualityWarning(TableArticles, WarnNullColumnDropped)
		}
		df = df.Drop(nullCols...)
	}

	df = df.Drop(ColDetailDesc, ColDetailDescLength)

	metrics.RecordRows(TableArticles, articles.Len(), df.Len())
	f.logger.Debug().
		Int("rows", df.Len()).
		Strs("columns", df.Columns()).
		Msg("articles featurized")

	return df, nil
}

// ImageURL derives the image location of an article: the first two
// characters of the id name the folder, and both folder and file name are
// prefixed with a literal "0".
func ImageURL(base, articleID string) string {
	folder := articleID
	if utf8.RuneCountInString(articleID) > 2 {
		folder = string([]rune(articleID)[:2])
	}
	return fmt.Sprintf("%s/images/0%s/0%s.jpg", base, folder, articleID)
}
