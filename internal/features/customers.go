// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// ClubMemberStatusAbsent replaces a null club_member_status.
const ClubMemberStatusAbsent = "ABSENT"

// Accepted age range; ages outside it have no bucket.
const (
	MinAge = 0
	MaxAge = 130
)

// ErrAgeOutOfRange is returned by AgeGroup for ages outside [MinAge, MaxAge].
var ErrAgeOutOfRange = errors.New("age out of range")

// ageBuckets are checked in order; the first bucket whose upper bound is
// not exceeded wins. Ages above the last bound fall into "66+".
var ageBuckets = []struct {
	upper float64
	label string
}{
	{18, "0-18"},
	{25, "19-25"},
	{35, "26-35"},
	{45, "36-45"},
	{55, "46-55"},
	{65, "56-65"},
}

// AgeGroupOldest is the label for ages above the last bucket.
const AgeGroupOldest = "66+"

// AgeGroup maps an age onto its bucket label. Integer ages follow the
// inclusive ranges [0,18] [19,25] [26,35] [36,45] [46,55] [56,65] 66+;
// a fractional age falls into the bucket of the next range whose upper
// bound it does not exceed (18.5 -> "19-25").
func AgeGroup(age float64) (string, error) {
	if math.IsNaN(age) || age < MinAge || age > MaxAge {
		return "", fmt.Errorf("%w: %v", ErrAgeOutOfRange, age)
	}
	for _, b := range ageBuckets {
		if age <= b.upper {
			return b.label, nil
		}
	}
	return AgeGroupOldest, nil
}

// CustomerOptions controls CustomerFeaturizer.Compute.
type CustomerOptions struct {
	// DropNullAge re-applies null-age removal after bucketing. Null ages are
	// always removed before bucketing, so this is idempotent.
	DropNullAge bool
}

// CustomerFeaturizer turns raw customer rows into customer feature rows.
type CustomerFeaturizer struct {
	logger zerolog.Logger
}

// NewCustomerFeaturizer creates a CustomerFeaturizer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCustomerFeaturizer(logger zerolog.Logger) *CustomerFeaturizer {
	return &CustomerFeaturizer{
		logger: logger.With().Str("component", "customer_featurizer").Logger(),
	}
}

// CustomerColumns is the output schema of CustomerFeaturizer, in order.
var CustomerColumns = []string{ColCustomerID, ColClubMemberStatus, ColAge, ColPostalCode, ColAgeGroup}

// Compute fills null club_member_status with "ABSENT", removes rows with a
// null age, drops rows whose age is out of range, computes age_group, casts
// age to float64 and selects CustomerColumns. The input is not modified.
func (f *CustomerFeaturizer) Compute(customers *table.Table, opts CustomerOptions) (*table.Table, error) {
	if err := customers.Require(TableCustomers, ColCustomerID, ColClubMemberStatus, ColAge, ColPostalCode); err != nil {
		return nil, err
	}
	for i := 0; i < customers.Len(); i++ {
		v := customers.Value(i, ColAge)
		if v == nil {
			continue
		}
		if _, ok := table.Float(v); !ok {
			return nil, &table.ValueError{Column: ColAge, Row: i, Value: v, Reason: "age is not numeric"}
		}
	}

	df := customers.WithColumn(ColClubMemberStatus, func(r table.Row) any {
		s, ok := table.String(r[ColClubMemberStatus])
		if !ok {
			return ClubMemberStatusAbsent
		}
		return s
	})

	df = f.dropNullAge(df)

	inRange := df.Filter(func(r table.Row) bool {
		age, _ := table.Float(r[ColAge])
		_, err := AgeGroup(age)
		return err == nil
	})
	if dropped := df.Len() - inRange.Len(); dropped > 0 {
		f.logger.Warn().
			Str("table", TableCustomers).
			Int("rows", dropped).
			Int("min_age", MinAge).
			Int("max_age", MaxAge).
			Msg("dropping rows with out-of-range age")
		metrics.RecordDataQualityWarning(TableCustomers, WarnAgeOutOfRange)
	}
	df = inRange

	df, err := df.WithColumns([]string{ColAge, ColAgeGroup, ColPostalCode}, func(_ int, r table.Row, vals []any) error {
		age, _ := table.Float(r[ColAge])
		group, _ := AgeGroup(age)
		vals[0] = age
		vals[1] = group
		if s, ok := table.String(r[ColPostalCode]); ok {
			vals[2] = s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	df = df.Select(CustomerColumns...)

	if opts.DropNullAge {
		df = f.dropNullAge(df)
	}

	metrics.RecordRows(TableCustomers, customers.Len(), df.Len())
	f.logger.Debug().Int("rows", df.Len()).Msg("customers featurized")

	return df, nil
}

func (f *CustomerFeaturizer) dropNullAge(df *table.Table) *table.Table {
	out := df.Filter(func(r table.Row) bool { return !r.IsNull(ColAge) })
	if dropped := df.Len() - out.Len(); dropped > 0 {
		f.logger.Info().
			Str("table", TableCustomers).
			Int("rows", dropped).
			Msg("removed rows with null age")
		metrics.RecordDataQualityWarning(TableCustomers, WarnNullAgeDropped)
	}
	return out
}
