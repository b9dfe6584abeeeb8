// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

// Package sampling draws a reproducible subset of customers and the
// transactions that belong to them.
//
// Every call to Sampler.Sample seeds a fresh math/rand source with Seed, so
// identical inputs and tier always give identical outputs. Customers are
// drawn uniformly without replacement; transactions are filtered with a
// semijoin on customer_id, so no transaction is duplicated or invented.
package sampling
