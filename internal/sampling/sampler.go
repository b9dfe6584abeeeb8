// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package sampling

import (
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// Seed is the fixed seed used by every sample.
const Seed int64 = 27

const (
	customersTable    = "customers"
	transactionsTable = "transactions"
	customerIDColumn  = "customer_id"
)

// Result holds the sampled tables.
type Result struct {
	Customers    *table.Table
	Transactions *table.Table
}

// Sampler selects a bounded, reproducible subset of customers.
type Sampler struct {
	logger zerolog.Logger
}

// NewSampler creates a Sampler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSampler(logger zerolog.Logger) *Sampler {
	return &Sampler{
		logger: logger.With().Str("component", "sampler").Logger(),
	}
}

// Sample draws min(tier size, customers.Len()) customers uniformly without
// replacement and keeps exactly the transactions whose customer_id belongs
// to a drawn customer. Both outputs keep the relative order of the input.
// The inputs are not modified.
func (s *Sampler) Sample(tier SizeTier, customers, transactions *table.Table) (*Result, error) {
	if err := transactions.Require(transactionsTable, customerIDColumn); err != nil {
		return nil, err
	}
	sampled, err := s.SampleCustomers(tier, customers)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]struct{}, sampled.Len())
	for _, id := range CustomerIDs(sampled) {
		keep[id] = struct{}{}
	}
	filtered := transactions.Filter(func(r table.Row) bool {
		id, ok := table.String(r[customerIDColumn])
		if !ok {
			return false
		}
		_, found := keep[id]
		return found
	})

	metrics.SampledRows.WithLabelValues(transactionsTable, string(tier)).Set(float64(filtered.Len()))
	s.logger.Info().
		Str("tier", string(tier)).
		Int("customers", sampled.Len()).
		Int("transactions", filtered.Len()).
		Int("transactions_in", transactions.Len()).
		Msg("dataset sampled")

	return &Result{Customers: sampled, Transactions: filtered}, nil
}

// SampleCustomers draws min(tier size, customers.Len()) customers with the
// same seeded draw as Sample, keeping input order. It is used when the
// transactions are filtered elsewhere, e.g. by a database semijoin on
// CustomerIDs of the result.
func (s *Sampler) SampleCustomers(tier SizeTier, customers *table.Table) (*table.Table, error) {
	size, err := tier.Size()
	if err != nil {
		return nil, err
	}
	if err := customers.Require(customersTable, customerIDColumn); err != nil {
		return nil, err
	}

	picked := drawIndices(customers.Len(), size, rand.New(rand.NewSource(Seed))) //nolint:gosec // reproducible sampling, not security
	sampled := customers.Take(picked)

	metrics.SampledRows.WithLabelValues(customersTable, string(tier)).Set(float64(sampled.Len()))
	s.logger.Debug().
		Str("tier", string(tier)).
		Int("target", size).
		Int("customers", sampled.Len()).
		Int("customers_in", customers.Len()).
		Msg("customers sampled")

	return sampled, nil
}

// CustomerIDs returns the non-null customer_id values of customers as
// strings, in row order.
func CustomerIDs(customers *table.Table) []string {
	ids := make([]string, 0, customers.Len())
	for i := 0; i < customers.Len(); i++ {
		if id, ok := table.String(customers.Value(i, customerIDColumn)); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// drawIndices returns k = min(k, n) distinct indices in [0, n) chosen
// uniformly, sorted ascending. The first k steps of a Fisher-Yates shuffle
// select the indices.
func drawIndices(n, k int, rng *rand.Rand) []int {
	if k > n {
		k = n
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	picked := perm[:k:k]
	sort.Ints(picked)
	return picked
}
