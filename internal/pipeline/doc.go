// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

/*
Package pipeline runs one feature-engineering pass over the raw H&M tables.

A run optionally samples customers (and their transactions) down to a size
tier, then featurizes articles, customers and transactions in sequence.
Article featurization includes text embeddings. Each stage is timed in
recsys_stage_duration_seconds and logged with the run's correlation ID.

Stages whose input table is nil are skipped, so a caller can featurize a
single table:

	p := pipeline.New(generator, pipeline.Options{ImageBaseURL: base}, logger)
	out, err := p.Run(ctx, pipeline.Inputs{Articles: raw})

Transactions can instead be streamed from a TransactionSource, such as a
DuckDB staged table wrapped by StagedSource. The source is sampled by a
semijoin on the drawn customer ids and featurized in chunks of
Options.ChunkSize rows, which are written to Options.Sink:

	opts.Sink = db
	out, err := p.Run(ctx, pipeline.Inputs{
	    Customers:         customers,
	    TransactionSource: pipeline.StagedSource(staged),
	})
*/
package pipeline
