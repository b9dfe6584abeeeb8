// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

// Package query builds the DuckDB statements used by the database package.
// Identifiers and literals are always quoted; values are bound as
// parameters wherever DuckDB accepts them.
package query
