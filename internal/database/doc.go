// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

/*
Package database is the DuckDB boundary of the feature pipeline.

Raw H&M tables are read from CSV with read_csv_auto, which detects column
types and dates, and converted into in-memory tables. Tables too large for
memory are staged inside DuckDB with StageCSV, filtered by a semijoin and
read back in chunks. Feature tables are written through the DuckDB
appender (embeddings as FLOAT[]) and exported to Parquet or CSV with COPY.

Every query is timed in recsys_db_query_duration_seconds and failures are
counted in recsys_db_query_errors_total, labeled by operation and table.

# Usage

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
	    return err
	}
	defer db.Close()

	raw, err := db.LoadDataset(ctx, database.Paths{
	    Articles:  cfg.Dataset.ArticlesPath,
	    Customers: cfg.Dataset.CustomersPath,
	})
	staged, err := db.StageCSV(ctx, "transactions", cfg.Dataset.TransactionsPath)
	err = staged.EachChunk(ctx, cfg.Database.ChunkSize, func(chunk *table.Table) error {
	    return db.AppendTable(ctx, "transactions_features", featurize(chunk))
	})
*/
package database
