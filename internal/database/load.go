// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/cartographus-recsys/internal/database/query"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// Paths locates the raw H&M CSV files. An empty path skips that table.
type Paths struct {
	Articles     string
	Customers    string
	Transactions string
}

// Dataset holds the raw tables of one run.
type Dataset struct {
	Articles     *table.Table
	Customers    *table.Table
	Transactions *table.Table
}

// LoadCSV reads a CSV file with DuckDB's read_csv_auto. Column types and
// dates are detected from the file.
func (db *DB) LoadCSV(ctx context.Context, name, path string) (t *table.Table, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("load_csv", name, time.Since(start), err)
	}()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	rows, err := db.conn.QueryContext(ctx, query.ReadCSV(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, path, err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	t, err = scanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, path, err)
	}

	db.logger.Info().
		Str("table", name).
		Str("path", path).
		Int("rows", t.Len()).
		Int("columns", len(t.Columns())).
		Dur("duration", time.Since(start)).
		Msg("raw table loaded")

	return t, nil
}

// LoadDataset loads the articles, customers and transactions files.
func (db *DB) LoadDataset(ctx context.Context, paths Paths) (*Dataset, error) {
	ds := &Dataset{}
	sources := []struct {
		name string
		path string
		dst  **table.Table
	}{
		{"articles", paths.Articles, &ds.Articles},
		{"customers", paths.Customers, &ds.Customers},
		{"transactions", paths.Transactions, &ds.Transactions},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}
		t, err := db.LoadCSV(ctx, src.name, src.path)
		if err != nil {
			return nil, err
		}
		*src.dst = t
	}
	return ds, nil
}

// ReadTable reads a DuckDB table back into memory.
func (db *DB) ReadTable(ctx context.Context, name string) (t *table.Table, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("read", name, time.Since(start), err)
	}()

	rows, err := db.conn.QueryContext(ctx, query.SelectAll(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	return scanTable(rows)
}
