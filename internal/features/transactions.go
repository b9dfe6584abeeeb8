// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

import (
	"github.com/rs/zerolog"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// TransactionFeaturizer turns raw transaction rows into transaction
// feature rows.
type TransactionFeaturizer struct {
	logger zerolog.Logger
}

// NewTransactionFeaturizer creates a TransactionFeaturizer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTransactionFeaturizer(logger zerolog.Logger) *TransactionFeaturizer {
	return &TransactionFeaturizer{
		logger: logger.With().Str("component", "transaction_featurizer").Logger(),
	}
}

// transactionDerived lists the columns Compute writes, in the order new
// columns are appended. t_dat and article_id keep their input position.
var transactionDerived = []string{
	ColArticleID, ColYear, ColMonth, ColDay, ColDayOfWeek, ColMonthSin, ColMonthCos, ColTDat,
}

// Compute normalizes article_id to a string, parses t_dat, appends year,
// month, day, day_of_week, month_sin and month_cos, and finally overwrites
// t_dat with its epoch-millisecond value. Input columns keep their order.
// All columns are derived in a single pass over the rows. The input is not
// modified.
func (f *TransactionFeaturizer) Compute(transactions *table.Table) (*table.Table, error) {
	if err := transactions.Require(TableTransactions, ColTDat, ColCustomerID, ColArticleID); err != nil {
		return nil, err
	}

	df, err := transactions.WithColumns(transactionDerived, func(i int, r table.Row, vals []any) error {
		v := r[ColTDat]
		ts, err := ParseTimestamp(v)
		if err != nil {
			return &table.ValueError{Column: ColTDat, Row: i, Value: v, Reason: err.Error()}
		}
		c := EncodeTime(ts)

		if id, ok := table.String(r[ColArticleID]); ok {
			vals[0] = id
		}
		vals[1] = int64(c.Year)
		vals[2] = int64(c.Month)
		vals[3] = int64(c.Day)
		vals[4] = int64(c.DayOfWeek)
		vals[5] = c.MonthSin
		vals[6] = c.MonthCos
		vals[7] = EpochMillis(ts)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRows(TableTransactions, transactions.Len(), df.Len())
	f.logger.Debug().Int("rows", df.Len()).Msg("transactions featurized")

	return df, nil
}
