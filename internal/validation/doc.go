// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

/*
Package validation provides struct validation using go-playground/validator v10.

A single validator instance is built once (it caches struct metadata) and
shared by every caller. Field errors are translated into readable messages
that name the field by its namespace below the root struct, for example
"Embedding.BatchSize must be at least 1".

# Custom Tags

  - memsize: a DuckDB memory limit such as "2GB", "512MiB" or "1.5 TB"

# Usage

	type DatabaseConfig struct {
	    Path      string `validate:"required"`
	    MaxMemory string `validate:"memsize"`
	    Threads   int    `validate:"min=0"`
	}

	if verr := validation.ValidateStruct(&cfg); verr != nil {
	    return fmt.Errorf("invalid config: %w", verr)
	}
*/
package validation
