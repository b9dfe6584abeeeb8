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

// DefaultChunkSize is the number of rows read per chunk when no size is
// given.
const DefaultChunkSize = 500_000

// StagedTable is a raw table kept inside DuckDB. It is read in bounded
// chunks instead of being loaded into memory at once.
type StagedTable struct {
	db   *DB
	name string
	rows int64
}

// StageCSV copies a CSV file into the DuckDB table raw_<name> with
// read_csv_auto. No rows are read into Go memory.
func (db *DB) StageCSV(ctx context.Context, name, path string) (st *StagedTable, err error) {
	start := time.Now()
	raw := "raw_" + name
	defer func() {
		metrics.RecordDBQuery("stage_csv", name, time.Since(start), err)
	}()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if _, err := db.conn.ExecContext(ctx, query.CreateTableAs(raw, query.ReadCSV(path))); err != nil {
		return nil, fmt.Errorf("failed to stage %s from %s: %w", name, path, err)
	}

	st, err = db.stagedTable(ctx, raw)
	if err != nil {
		return nil, err
	}

	db.logger.Info().
		Str("table", name).
		Str("path", path).
		Int64("rows", st.rows).
		Dur("duration", time.Since(start)).
		Msg("raw table staged")

	return st, nil
}

func (db *DB) stagedTable(ctx context.Context, name string) (*StagedTable, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, query.CountRows(name)).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", name, err)
	}
	return &StagedTable{db: db, name: name, rows: n}, nil
}

// Name returns the DuckDB table name.
func (s *StagedTable) Name() string { return s.name }

// Len returns the number of staged rows.
func (s *StagedTable) Len() int64 { return s.rows }

// Semijoin stages the rows whose column, compared as text, is one of keys
// into a new table <name>_<suffix>. Rows keep their staged order. The
// keys are loaded through the appender, so the join runs inside DuckDB.
func (s *StagedTable) Semijoin(ctx context.Context, suffix, column string, keys []string) (st *StagedTable, err error) {
	start := time.Now()
	dst := s.name + "_" + suffix
	keyTable := dst + "_keys"
	defer func() {
		metrics.RecordDBQuery("semijoin", s.name, time.Since(start), err)
	}()

	kt := table.FromColumns([]string{query.KeyColumn}, map[string][]any{query.KeyColumn: stringsToAny(keys)})
	cols := []query.Column{{Name: query.KeyColumn, Type: typeVarchar}}
	if err := s.db.appendRows(ctx, keyTable, query.CreateKeyTable(keyTable), cols, kt); err != nil {
		return nil, err
	}
	defer func() {
		if _, dropErr := s.db.conn.ExecContext(context.Background(), query.DropTable(keyTable)); dropErr != nil {
			s.db.logger.Warn().Err(dropErr).Str("table", keyTable).Msg("failed to drop key table")
		}
	}()

	if _, err := s.db.conn.ExecContext(ctx, query.CreateTableAs(dst, query.Semijoin(s.name, column, keyTable))); err != nil {
		return nil, fmt.Errorf("failed to filter %s by %s: %w", s.name, column, err)
	}

	st, err = s.db.stagedTable(ctx, dst)
	if err != nil {
		return nil, err
	}

	s.db.logger.Info().
		Str("table", s.name).
		Str("column", column).
		Int("keys", len(keys)).
		Int64("rows_in", s.rows).
		Int64("rows", st.rows).
		Dur("duration", time.Since(start)).
		Msg("staged table filtered")

	return st, nil
}

// EachChunk reads the staged rows in order, at most size rows at a time
// (DefaultChunkSize when size < 1), and calls fn with each chunk. Every
// chunk is fully read before fn runs, so fn may use the database. fn is
// called once with an empty table when nothing is staged. The first error
// stops the iteration.
func (s *StagedTable) EachChunk(ctx context.Context, size int, fn func(*table.Table) error) error {
	if size < 1 {
		size = DefaultChunkSize
	}
	step := int64(size)
	for lo := int64(0); ; lo += step {
		chunk, err := s.readRange(ctx, lo, lo+step)
		if err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}
		if lo+step >= s.rows {
			return nil
		}
	}
}

func (s *StagedTable) readRange(ctx context.Context, lo, hi int64) (t *table.Table, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("read_chunk", s.name, time.Since(start), err)
	}()

	rows, err := s.db.conn.QueryContext(ctx, query.SelectRange(s.name), lo, hi)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows [%d, %d): %w", s.name, lo, hi, err)
	}
	defer closeWithLog(rows, s.db.logger, "rows")

	t, err = scanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows [%d, %d): %w", s.name, lo, hi, err)
	}
	return t, nil
}

// Drop removes the staged table.
func (s *StagedTable) Drop(ctx context.Context) error {
	if _, err := s.db.conn.ExecContext(ctx, query.DropTable(s.name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", s.name, err)
	}
	return nil
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
