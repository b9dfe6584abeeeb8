// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// monthPeriod is the angular step of one month on a 12-period cycle.
const monthPeriod = 2 * math.Pi / 12

// Calendar holds the calendar decomposition of one timestamp.
type Calendar struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31

	// DayOfWeek uses Monday=0 through Sunday=6.
	DayOfWeek int

	MonthSin float64
	MonthCos float64
}

// EncodeTime decomposes t into calendar fields and the month sine/cosine
// pair. The timestamp's own location is used for the calendar fields.
func EncodeTime(t time.Time) Calendar {
	m := int(t.Month())
	return Calendar{
		Year:      t.Year(),
		Month:     m,
		Day:       t.Day(),
		DayOfWeek: (int(t.Weekday()) + 6) % 7,
		MonthSin:  MonthSin(m),
		MonthCos:  MonthCos(m),
	}
}

// EncodeTimes applies EncodeTime to every timestamp, preserving order.
func EncodeTimes(ts []time.Time) []Calendar {
	out := make([]Calendar, len(ts))
	for i, t := range ts {
		out[i] = EncodeTime(t)
	}
	return out
}

// MonthSin returns sin(month * 2π/12) for a 1-based month.
func MonthSin(month int) float64 {
	return math.Sin(float64(month) * monthPeriod)
}

// MonthCos returns cos(month * 2π/12) for a 1-based month.
func MonthCos(month int) float64 {
	return math.Cos(float64(month) * monthPeriod)
}

// EpochMillis converts t to milliseconds since the Unix epoch, flooring any
// sub-millisecond precision (also for instants before 1970).
func EpochMillis(t time.Time) int64 {
	// t.Unix() floors to the second and Nanosecond() is always in [0, 1e9).
	return t.Unix()*1000 + int64(t.Nanosecond()/int(time.Millisecond))
}

// timestampLayouts are tried in order when parsing string timestamps.
var timestampLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"20060102",
}

// ParseTimestamp converts a scalar into a time.Time. It accepts time.Time
// values, date or datetime strings, and integers as epoch milliseconds.
// Strings without a zone are read as UTC.
func ParseTimestamp(v any) (time.Time, error) {
	switch x := table.Normalize(v).(type) {
	case time.Time:
		return x, nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", x)
	case nil:
		return time.Time{}, fmt.Errorf("null timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}
