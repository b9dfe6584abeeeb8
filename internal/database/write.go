// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/cartographus-recsys/internal/database/query"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// DuckDB column types inferred for feature tables.
const (
	typeVarchar   = "VARCHAR"
	typeBigint    = "BIGINT"
	typeDouble    = "DOUBLE"
	typeBoolean   = "BOOLEAN"
	typeTimestamp = "TIMESTAMP"
	typeFloatList = "FLOAT[]"
)

// WriteTable materializes t as the DuckDB table name, replacing any
// existing table. Column types are inferred from the values; a column with
// only nulls is stored as VARCHAR. Rows are loaded with the DuckDB
// appender inside one transaction.
func (db *DB) WriteTable(ctx context.Context, name string, t *table.Table) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("write", name, time.Since(start), err)
	}()

	tb := query.NewTableBuilder(name)
	for _, col := range t.Columns() {
		tb.AddColumn(col, inferType(t.Column(col)))
	}

	if err = db.appendRows(ctx, name, tb.CreateOrReplace(), tb.Columns(), t); err != nil {
		return err
	}

	db.logger.Info().
		Str("table", name).
		Int("rows", t.Len()).
		Dur("duration", time.Since(start)).
		Msg("feature table written")

	return nil
}

// AppendTable appends the rows of t to the existing DuckDB table name.
// Values are converted to the declared column types; columns missing from
// t are stored as null and columns unknown to the table are an error.
func (db *DB) AppendTable(ctx context.Context, name string, t *table.Table) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("append", name, time.Since(start), err)
	}()

	cols, err := db.columnTypes(ctx, name)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c.Name] = struct{}{}
	}
	for _, c := range t.Columns() {
		if _, ok := known[c]; !ok {
			return fmt.Errorf("append to %s: unknown column %q", name, c)
		}
	}

	if err = db.appendRows(ctx, name, "", cols, t); err != nil {
		return err
	}

	db.logger.Debug().
		Str("table", name).
		Int("rows", t.Len()).
		Dur("duration", time.Since(start)).
		Msg("feature rows appended")

	return nil
}

// columnTypes reads the column definitions of an existing table.
func (db *DB) columnTypes(ctx context.Context, name string) ([]query.Column, error) {
	rows, err := db.conn.QueryContext(ctx, query.ColumnTypes, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	var cols []query.Column
	for rows.Next() {
		var c query.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", name, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", name, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s: %w", name, ErrTableNotFound)
	}
	return cols, nil
}

// appendRows runs ddl (when set) and appends every row of t through a
// DuckDB appender, all on one connection inside one transaction.
func (db *DB) appendRows(ctx context.Context, name, ddl string, cols []query.Column, t *table.Table) (err error) {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer closeWithLog(conn, db.logger, "connection")

	if _, err = conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if _, rbErr := conn.ExecContext(context.Background(), "ROLLBACK"); rbErr != nil {
				db.logger.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("transaction rollback failed")
			}
		}
	}()

	if ddl != "" {
		if _, err = conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}

	err = conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		appender, err := duckdb.NewAppenderFromConn(dc, "", name)
		if err != nil {
			return fmt.Errorf("failed to create appender for %s: %w", name, err)
		}

		args := make([]driver.Value, len(cols))
		for i := 0; i < t.Len(); i++ {
			if err := ctx.Err(); err != nil {
				closeQuietly(appender)
				return err
			}
			row := t.Row(i)
			for j, c := range cols {
				if args[j], err = bindValue(row[c.Name], c.Type); err != nil {
					closeQuietly(appender)
					return fmt.Errorf("%s row %d column %s: %w", name, i, c.Name, err)
				}
			}
			if err := appender.AppendRow(args...); err != nil {
				closeQuietly(appender)
				return fmt.Errorf("failed to append row %d to %s: %w", i, name, err)
			}
		}
		// Close flushes the buffered rows.
		if err := appender.Close(); err != nil {
			return fmt.Errorf("failed to flush appender for %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err = conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	return nil
}

// Export copies the DuckDB table name to path in the given format
// ("parquet" or "csv"), creating the parent directory if needed.
func (db *DB) Export(ctx context.Context, name, path, format string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("export", name, time.Since(start), err)
	}()

	stmt, err := query.CopyTo(name, path, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err = os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if _, err = db.conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to export %s to %s: %w", name, path, err)
	}

	db.logger.Info().Str("table", name).Str("path", path).Str("format", format).Msg("feature table exported")
	return nil
}

// ExportParquet copies the DuckDB table name to a Parquet file.
func (db *DB) ExportParquet(ctx context.Context, name, path string) error {
	return db.Export(ctx, name, path, "parquet")
}

// inferType picks the narrowest DuckDB type that holds every value.
func inferType(values []any) string {
	kind := ""
	for _, v := range values {
		var k string
		switch v.(type) {
		case nil:
			continue
		case int64:
			k = typeBigint
		case float64:
			k = typeDouble
		case bool:
			k = typeBoolean
		case time.Time:
			k = typeTimestamp
		case []float32:
			k = typeFloatList
		default:
			k = typeVarchar
		}
		switch {
		case kind == "":
			kind = k
		case kind == k:
		case (kind == typeBigint && k == typeDouble) || (kind == typeDouble && k == typeBigint):
			kind = typeDouble
		default:
			return typeVarchar
		}
	}
	if kind == "" {
		return typeVarchar
	}
	return kind
}

// bindValue converts a table scalar into an appender value for a column
// of the given DuckDB type.
func bindValue(v any, typ string) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case typeFloatList:
		vec, ok := v.([]float32)
		if !ok {
			return nil, fmt.Errorf("expected []float32, got %T", v)
		}
		return vec, nil
	case typeDouble:
		f, ok := table.Float(v)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", v)
		}
		return f, nil
	case typeBigint:
		n, ok := table.Int(v)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
		return n, nil
	case typeVarchar:
		s, _ := table.String(v)
		return s, nil
	default:
		return v, nil
	}
}
