// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

// Package features implements the deterministic transformations that turn
// raw H&M-style tables into model-ready feature tables.
//
// # Components
//
//   - DescribeArticle: multi-line text description of an article row
//   - EncodeTime / EpochMillis: calendar decomposition with a cyclical
//     month encoding (sin/cos over a 12-period cycle, Monday=0 weekdays)
//   - ArticleFeaturizer: id normalization, name length, description,
//     image URL, embeddings, null-column pruning
//   - CustomerFeaturizer: status imputation, null-age filtering, age buckets
//   - TransactionFeaturizer: id normalization, calendar features, epoch time
//
// Featurizers never modify their input table; each returns a new one.
//
// # Errors
//
// A missing required column returns *table.MissingColumnError, which
// matches table.ErrConfiguration. Values that cannot be coerced (null
// article ids, unparseable dates, non-numeric ages) return
// *table.ValueError. Dropped columns and filtered rows are not errors: they
// are logged as warnings and counted in recsys_data_quality_warnings_total.
//
// # Usage
//
//	articles := features.NewArticleFeaturizer(generator, logger)
//	out, err := articles.Compute(ctx, raw)
package features
