// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package table

import (
	"slices"
)

// Row maps column names to scalar values. A nil value or missing key is null.
type Row map[string]any

// clone returns a shallow copy of the row. Scalars are immutable and
// embedding vectors are never modified in place, so a shallow copy suffices.
func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered, column-homogeneous sequence of rows.
// The zero value is an empty table with no columns.
type Table struct {
	columns []string
	rows    []Row
}

// New builds a table from columns and rows. Columns not listed are ignored
// when rows are read through the table; values are normalized with
// Normalize. The inputs are copied.
func New(columns []string, rows []Row) *Table {
	cols := dedupe(columns)
	out := make([]Row, len(rows))
	for i, r := range rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				nr[c] = Normalize(v)
			}
		}
		out[i] = nr
	}
	return &Table{columns: cols, rows: out}
}

// FromColumns builds a table from column-oriented data. Every column slice
// must have the same length; shorter slices are padded with nulls.
func FromColumns(columns []string, data map[string][]any) *Table {
	n := 0
	for _, c := range columns {
		if l := len(data[c]); l > n {
			n = l
		}
	}
	rows := make([]Row, n)
	for i := range rows {
		r := make(Row, len(columns))
		for _, c := range columns {
			if i < len(data[c]) {
				r[c] = data[c][i]
			}
		}
		rows[i] = r
	}
	return New(columns, rows)
}

func dedupe(columns []string) []string {
	seen := make(map[string]struct{}, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns returns a copy of the ordered column names.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table schema contains name.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	return slices.Contains(t.columns, name)
}

// Require returns a *MissingColumnError for the first absent column.
// tableName labels the error.
func (t *Table) Require(tableName string, columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &MissingColumnError{Table: tableName, Column: c}
		}
	}
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	return t.rows[i].clone()
}

// Rows returns copies of all rows.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// Value returns the value at row i, column col (nil when null).
func (t *Table) Value(i int, col string) any {
	return t.rows[i][col]
}

// Column returns the values of col in row order.
func (t *Table) Column(col string) []any {
	out := make([]any, t.Len())
	for i := range out {
		out[i] = t.rows[i][col]
	}
	return out
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	return &Table{columns: t.Columns(), rows: t.Rows()}
}

// WithColumn returns a new table where name holds fn(row) for each row.
// An existing column keeps its position; a new column is appended.
func (t *Table) WithColumn(name string, fn func(Row) any) *Table {
	out := t.Clone()
	if !slices.Contains(out.columns, name) {
		out.columns = append(out.columns, name)
	}
	for _, r := range out.rows {
		r[name] = Normalize(fn(r))
	}
	return out
}

// WithColumns returns a new table in which fn sets the values of names for
// each row, in one pass and one copy. fn receives the source row, which it
// must not modify, and fills vals in the order of names. Existing columns
// keep their position; new columns are appended in the given order. The
// first error from fn is returned.
func (t *Table) WithColumns(names []string, fn func(i int, r Row, vals []any) error) (*Table, error) {
	cols := t.Columns()
	for _, name := range names {
		if !slices.Contains(cols, name) {
			cols = append(cols, name)
		}
	}

	rows := make([]Row, t.Len())
	vals := make([]any, len(names))
	for i, r := range t.rows {
		clear(vals)
		if err := fn(i, r, vals); err != nil {
			return nil, err
		}
		nr := make(Row, len(cols))
		for k, v := range r {
			nr[k] = v
		}
		for j, name := range names {
			nr[name] = Normalize(vals[j])
		}
		rows[i] = nr
	}
	return &Table{columns: cols, rows: rows}, nil
}

// WithValues returns a new table where name holds values[i] for row i.
// len(values) must equal t.Len().
func (t *Table) WithValues(name string, values []any) *Table {
	if len(values) != t.Len() {
		panic("table: WithValues length mismatch")
	}
	i := 0
	return t.WithColumn(name, func(Row) any {
		v := values[i]
		i++
		return v
	})
}

// Select returns a new table restricted to columns, in the given order.
// Unknown columns are added as all-null columns.
func (t *Table) Select(columns ...string) *Table {
	cols := dedupe(columns)
	rows := make([]Row, t.Len())
	for i, r := range t.rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		rows[i] = nr
	}
	return &Table{columns: cols, rows: rows}
}

// Drop returns a new table without the named columns. Names that are not
// present are ignored.
func (t *Table) Drop(columns ...string) *Table {
	keep := make([]string, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		if !slices.Contains(columns, c) {
			keep = append(keep, c)
		}
	}
	return t.Select(keep...)
}

// Filter returns a new table with the rows for which keep returns true,
// preserving order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{columns: t.Columns(), rows: make([]Row, 0, t.Len())}
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r.clone())
		}
	}
	return out
}

// Take returns a new table with the rows at indices, in the given order.
func (t *Table) Take(indices []int) *Table {
	out := &Table{columns: t.Columns(), rows: make([]Row, len(indices))}
	for i, idx := range indices {
		out.rows[i] = t.rows[idx].clone()
	}
	return out
}

// IsNull reports whether the value of col in r is null.
func (r Row) IsNull(col string) bool {
	v, ok := r[col]
	return !ok || v == nil
}

// AllNull reports whether col is null in every row. An empty table reports
// false so that schemas survive empty inputs.
func (t *Table) AllNull(col string) bool {
	if t.Len() == 0 {
		return false
	}
	for _, r := range t.rows {
		if !r.IsNull(col) {
			return false
		}
	}
	return true
}

// NullColumns returns the columns that are null in every row, in schema order.
func (t *Table) NullColumns() []string {
	var out []string
	for _, c := range t.columns {
		if t.AllNull(c) {
			out = append(out, c)
		}
	}
	return out
}
