// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tomtom215/cartographus-recsys/internal/config"
	"github.com/tomtom215/cartographus-recsys/internal/database"
	"github.com/tomtom215/cartographus-recsys/internal/embedding"
	"github.com/tomtom215/cartographus-recsys/internal/logging"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/pipeline"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.ToLogging())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()

	if cfg.Metrics.Textfile != "" {
		if mErr := metrics.WriteTextfile(cfg.Metrics.Textfile); mErr != nil {
			logging.Error().Err(mErr).Msg("Failed to write metrics textfile")
		}
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("Feature pipeline failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	runID := logging.GenerateRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.Logger().With().Str("run_id", runID).Logger()

	logger.Info().
		Str("dataset_size", cfg.Dataset.Size).
		Bool("sample", cfg.Dataset.Sample).
		Str("embedding_provider", cfg.Embedding.Provider).
		Str("embedding_model", cfg.Embedding.ModelID).
		Str("db_path", cfg.Database.Path).
		Msg("Configuration loaded")

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Articles and customers fit in memory. Transactions stay in DuckDB and
	// are featurized in chunks.
	raw, err := db.LoadDataset(ctx, database.Paths{
		Articles:  cfg.Dataset.ArticlesPath,
		Customers: cfg.Dataset.CustomersPath,
	})
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	staged, err := db.StageCSV(ctx, "transactions", cfg.Dataset.TransactionsPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	opts.Sink = db

	var genOpts []embedding.GeneratorOption
	if cfg.Embedding.CacheSize > 0 {
		genOpts = append(genOpts, embedding.WithCache(embedding.NewVectorCache(cfg.Embedding.CacheSize)))
	}
	generator := embedding.NewGenerator(
		embedding.FactoryFromConfig(cfg.Embedding.ModelConfig(), logger),
		cfg.Embedding.BatchSize,
		logger,
		genOpts...,
	)
	defer func() {
		if err := generator.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing embedding model")
		}
	}()

	out, err := pipeline.New(generator, opts, logger).Run(ctx, pipeline.Inputs{
		Articles:          raw.Articles,
		Customers:         raw.Customers,
		TransactionSource: pipeline.StagedSource(staged),
	})
	if err != nil {
		return err
	}

	exports := make([]pipeline.WrittenTable, 0, len(out.Tables())+len(out.Streamed))
	for _, nt := range out.Tables() {
		if err := db.WriteTable(ctx, nt.Name, nt.Table); err != nil {
			return err
		}
		exports = append(exports, pipeline.WrittenTable{Name: nt.Name, Rows: nt.Table.Len()})
	}
	exports = append(exports, out.Streamed...)

	for _, e := range exports {
		path := filepath.Join(cfg.Output.Dir, e.Name+"."+cfg.Output.Format)
		if err := db.Export(ctx, e.Name, path, cfg.Output.Format); err != nil {
			return err
		}
		logger.Info().
			Str("table", e.Name).
			Int("rows", e.Rows).
			Str("path", path).
			Msg("Feature table exported")
	}

	if err := db.Checkpoint(ctx); err != nil {
		logger.Warn().Err(err).Msg("Checkpoint failed")
	}

	logger.Info().Dur("duration", time.Since(start)).Msg("Feature pipeline finished")
	return nil
}
