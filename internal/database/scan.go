// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package database

import (
	"database/sql"
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// float64er is implemented by DuckDB decimal values.
type float64er interface {
	Float64() float64
}

// scanTable reads every row of rows into a table, keeping column order.
func scanTable(rows *sql.Rows) (*table.Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []table.Row
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(out), err)
		}
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return table.New(columns, out), nil
}

// convertValue maps a DuckDB driver value onto the table scalar set.
func convertValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case time.Time:
		return x
	case *big.Int:
		if x == nil {
			return nil
		}
		if x.IsInt64() {
			return x.Int64()
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case []any:
		return convertList(x)
	case float64er:
		return x.Float64()
	default:
		if f, ok := decimalValue(x); ok {
			return f
		}
		return table.Normalize(x)
	}
}

// decimalValue handles struct values whose Float64 method has a pointer
// receiver.
func decimalValue(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Struct {
		return 0, false
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	if f, ok := p.Interface().(float64er); ok {
		return f.Float64(), true
	}
	return 0, false
}

// convertList turns a numeric DuckDB list into []float32. Lists with
// non-numeric elements are kept as converted []any.
func convertList(list []any) any {
	vec := make([]float32, len(list))
	for i, e := range list {
		f, ok := table.Float(convertValue(e))
		if !ok {
			out := make([]any, len(list))
			for j, el := range list {
				out[j] = convertValue(el)
			}
			return out
		}
		vec[i] = float32(f)
	}
	return vec
}
