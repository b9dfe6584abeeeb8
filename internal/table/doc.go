// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

// Package table provides the in-memory row sets passed between pipeline stages.
//
// A Table is an ordered sequence of rows sharing one ordered column list.
// Each Row maps a column name to a scalar value; a nil value or an absent
// key is a null. Supported scalar types are string, int64, float64, bool,
// time.Time and []float32 (embedding vectors). Integer inputs of any width
// are normalized to int64 when a table is built.
//
// # Immutability
//
// Tables are treated as values. Every transform (WithColumn, Select, Drop,
// Filter, Take) returns a new Table and never modifies the receiver, so a
// table handed to one stage can be reused safely by another:
//
//	out := in.WithColumn("age_group", func(r table.Row) any {
//	    return bucket(r["age"])
//	})
//	// in is unchanged
//
// # Errors
//
// ErrConfiguration is the sentinel for fatal configuration errors such as
// a missing required column. MissingColumnError carries the offending
// table and column and matches ErrConfiguration via errors.Is.
package table
