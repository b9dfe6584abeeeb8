// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package database

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
)

// ErrTableNotFound is returned when a DuckDB table does not exist.
var ErrTableNotFound = errors.New("table not found")

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func closeWithLog(closer io.Closer, logger zerolog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Str("type", resourceType).Err(err).Msg("failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
