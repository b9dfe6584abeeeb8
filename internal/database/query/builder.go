// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package query

import (
	"fmt"
	"strings"
)

// QuoteIdent quotes a table or column name for DuckDB.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a string literal. Used where DuckDB does not accept
// bound parameters, such as table function arguments and COPY targets.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Column is a column definition of a generated table.
type Column struct {
	Name string
	Type string // DuckDB type, e.g. "BIGINT" or "FLOAT[]"
}

// TableBuilder generates the DDL for one table. Rows are loaded with the
// DuckDB appender, so no INSERT statement is generated.
//
// Example usage:
//
//	tb := query.NewTableBuilder("articles")
//	tb.AddColumn("article_id", "VARCHAR")
//	tb.AddColumn("embeddings", "FLOAT[]")
//	ddl := tb.CreateOrReplace()
//	// CREATE OR REPLACE TABLE "articles" ("article_id" VARCHAR, "embeddings" FLOAT[])
type TableBuilder struct {
	name    string
	columns []Column
}

// NewTableBuilder creates a TableBuilder for the named table.
func NewTableBuilder(name string) *TableBuilder {
	return &TableBuilder{name: name}
}

// AddColumn appends a column definition.
func (tb *TableBuilder) AddColumn(name, typ string) *TableBuilder {
	tb.columns = append(tb.columns, Column{Name: name, Type: typ})
	return tb
}

// Columns returns the column definitions in order.
func (tb *TableBuilder) Columns() []Column {
	out := make([]Column, len(tb.columns))
	copy(out, tb.columns)
	return out
}

// CreateOrReplace returns the CREATE OR REPLACE TABLE statement.
func (tb *TableBuilder) CreateOrReplace() string {
	defs := make([]string, len(tb.columns))
	for i, c := range tb.columns {
		defs[i] = QuoteIdent(c.Name) + " " + c.Type
	}
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", QuoteIdent(tb.name), strings.Join(defs, ", "))
}

// ReadCSV returns a SELECT over read_csv_auto with header and date detection.
func ReadCSV(path string) string {
	return fmt.Sprintf("SELECT * FROM read_csv_auto(%s, header = true)", QuoteLiteral(path))
}

// CreateTableAs returns a CREATE OR REPLACE TABLE statement filled by the
// given SELECT.
func CreateTableAs(name, selectSQL string) string {
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s AS %s", QuoteIdent(name), selectSQL)
}

// CreateKeyTable returns the DDL of a one-column VARCHAR table used as the
// right side of a semijoin.
func CreateKeyTable(name string) string {
	return NewTableBuilder(name).AddColumn(KeyColumn, "VARCHAR").CreateOrReplace()
}

// KeyColumn is the column of tables created by CreateKeyTable.
const KeyColumn = "key"

// Semijoin returns a SELECT of the rows of src whose column, compared as
// text, appears in keys. Rows keep the physical order of src.
//
//	SELECT * FROM "raw_transactions"
//	WHERE CAST("customer_id" AS VARCHAR) IN (SELECT "key" FROM "sample_keys")
//	ORDER BY rowid
func Semijoin(src, column, keys string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE CAST(%s AS VARCHAR) IN (SELECT %s FROM %s) ORDER BY rowid",
		QuoteIdent(src), QuoteIdent(column), QuoteIdent(KeyColumn), QuoteIdent(keys))
}

// SelectRange returns a SELECT of the rows whose rowid lies in [?, ?), in
// rowid order.
func SelectRange(name string) string {
	return "SELECT * FROM " + QuoteIdent(name) + " WHERE rowid >= ? AND rowid < ? ORDER BY rowid"
}

// CountRows returns a SELECT count(*) over the named table.
func CountRows(name string) string {
	return "SELECT count(*) FROM " + QuoteIdent(name)
}

// DropTable returns a DROP TABLE IF EXISTS statement.
func DropTable(name string) string {
	return "DROP TABLE IF EXISTS " + QuoteIdent(name)
}

// ColumnTypes lists the columns and DuckDB types of a main-schema table,
// in declaration order. The table name is bound as the only parameter.
const ColumnTypes = `SELECT column_name, data_type FROM information_schema.columns
WHERE table_schema = 'main' AND table_name = ? ORDER BY ordinal_position`

// SelectAll returns a SELECT * over the named table.
func SelectAll(name string) string {
	return "SELECT * FROM " + QuoteIdent(name)
}

// CopyTo returns a COPY statement exporting the named table. format is
// "parquet" or "csv".
func CopyTo(name, path, format string) (string, error) {
	var opts string
	switch strings.ToLower(format) {
	case "parquet":
		opts = "FORMAT PARQUET"
	case "csv":
		opts = "FORMAT CSV, HEADER"
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	return fmt.Sprintf("COPY %s TO %s (%s)", QuoteIdent(name), QuoteLiteral(path), opts), nil
}
