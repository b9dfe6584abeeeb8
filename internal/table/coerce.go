// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalize maps a source scalar onto the table's scalar set: integer kinds
// become int64, float32 becomes float64, []float64 becomes []float32, and
// nil pointers or nil slices become nil.
//
//nolint:gocyclo // type switch over every supported source kind
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, int64, float64, bool, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return int64(x) //nolint:gosec // source ids never exceed int64
	case uint64:
		return int64(x) //nolint:gosec // source ids never exceed int64
	case float32:
		return float64(x)
	case []float32:
		if x == nil {
			return nil
		}
		return x
	case []float64:
		if x == nil {
			return nil
		}
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}

// String converts a scalar to its string form. Integral floats print
// without a fractional part so that an id read as 108775015.0 becomes
// "108775015". ok is false for nulls.
func String(v any) (s string, ok bool) {
	switch x := Normalize(v).(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	default:
		return "", false
	}
}

// Float converts a numeric scalar (or numeric string) to float64.
// ok is false for nulls and non-numeric values.
func Float(v any) (f float64, ok bool) {
	switch x := Normalize(v).(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return p, true
	default:
		return 0, false
	}
}

// Int converts an integral scalar (or integer string) to int64.
// ok is false for nulls, fractional floats and non-numeric values.
func Int(v any) (n int64, ok bool) {
	switch x := Normalize(v).(type) {
	case int64:
		return x, true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return p, true
	default:
		return 0, false
	}
}

// StringColumn returns a new table with col converted to strings. Nulls
// stay null. Used for id normalization where the source may be numeric.
func (t *Table) StringColumn(col string) *Table {
	return t.WithColumn(col, func(r Row) any {
		s, ok := String(r[col])
		if !ok {
			return nil
		}
		return s
	})
}
