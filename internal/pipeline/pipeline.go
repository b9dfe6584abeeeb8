// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus-recsys/internal/config"
	"github.com/tomtom215/cartographus-recsys/internal/database"
	"github.com/tomtom215/cartographus-recsys/internal/features"
	"github.com/tomtom215/cartographus-recsys/internal/logging"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
	"github.com/tomtom215/cartographus-recsys/internal/sampling"
	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// Stage names used for metrics and logs.
const (
	StageSample       = "sample"
	StageArticles     = "articles"
	StageCustomers    = "customers"
	StageTransactions = "transactions"
)

// Options controls a Pipeline.
type Options struct {
	// Sample enables customer sampling at Tier before featurization.
	Sample bool
	Tier   sampling.SizeTier

	// ImageBaseURL overrides features.DefaultImageBaseURL when set.
	ImageBaseURL string

	DropNullAge bool

	// ChunkSize bounds the rows featurized at once when transactions are
	// streamed from Inputs.TransactionSource. 0 uses the source default.
	ChunkSize int

	// Sink receives streamed transaction features. It is required when
	// Inputs.TransactionSource is set.
	Sink TableSink
}

// TransactionSource yields raw transactions in order, in bounded chunks.
type TransactionSource interface {
	Len() int64
	EachChunk(ctx context.Context, size int, fn func(*table.Table) error) error
	// Semijoin returns a source holding only the rows whose column is one
	// of keys, in the same order.
	Semijoin(ctx context.Context, suffix, column string, keys []string) (TransactionSource, error)
}

// TableSink stores feature tables by name.
type TableSink interface {
	WriteTable(ctx context.Context, name string, t *table.Table) error
	AppendTable(ctx context.Context, name string, t *table.Table) error
}

// StagedSource adapts a DuckDB staged table to a TransactionSource.
func StagedSource(st *database.StagedTable) TransactionSource {
	return stagedSource{st}
}

type stagedSource struct {
	*database.StagedTable
}

func (s stagedSource) Semijoin(ctx context.Context, suffix, column string, keys []string) (TransactionSource, error) {
	st, err := s.StagedTable.Semijoin(ctx, suffix, column, keys)
	if err != nil {
		return nil, err
	}
	return stagedSource{st}, nil
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		Sample:       cfg.Dataset.Sample,
		ImageBaseURL: cfg.Features.ImageBaseURL,
		DropNullAge:  cfg.Features.DropNullAge,
		ChunkSize:    cfg.Database.ChunkSize,
	}
	if !opts.Sample {
		return opts, nil
	}
	tier, err := sampling.ParseSizeTier(cfg.Dataset.Size)
	if err != nil {
		return Options{}, err
	}
	opts.Tier = tier
	return opts, nil
}

// Inputs are the raw tables of a run. A nil table skips its stage.
//
// Transactions may instead come from TransactionSource, which is used only
// when Transactions is nil. Streamed features go to Options.Sink and are
// never held in memory as a whole.
type Inputs struct {
	Articles          *table.Table
	Customers         *table.Table
	Transactions      *table.Table
	TransactionSource TransactionSource
}

// Outputs are the feature tables produced by a run.
type Outputs struct {
	RunID        string
	Articles     *table.Table
	Customers    *table.Table
	Transactions *table.Table

	// Streamed names the tables already written to Options.Sink, with
	// their row counts.
	Streamed []WrittenTable
}

// WrittenTable names a feature table stored in a sink and its row count.
type WrittenTable struct {
	Name string
	Rows int
}

// NamedTable pairs a feature table with its output name.
type NamedTable struct {
	Name  string
	Table *table.Table
}

// Tables returns the non-nil feature tables in stage order.
func (o *Outputs) Tables() []NamedTable {
	all := []NamedTable{
		{features.TableArticles, o.Articles},
		{features.TableCustomers, o.Customers},
		{features.TableTransactions, o.Transactions},
	}
	out := make([]NamedTable, 0, len(all))
	for _, nt := range all {
		if nt.Table != nil {
			out = append(out, nt)
		}
	}
	return out
}

// Pipeline wires the sampler and the featurizers.
type Pipeline struct {
	opts         Options
	sampler      *sampling.Sampler
	articles     *features.ArticleFeaturizer
	customers    *features.CustomerFeaturizer
	transactions *features.TransactionFeaturizer
	logger       zerolog.Logger
}

// New creates a Pipeline. embedder is only used when articles are featurized.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(embedder features.Embedder, opts Options, logger zerolog.Logger) *Pipeline {
	var articleOpts []features.ArticleOption
	if opts.ImageBaseURL != "" {
		articleOpts = append(articleOpts, features.WithImageBaseURL(opts.ImageBaseURL))
	}
	return &Pipeline{
		opts:         opts,
		sampler:      sampling.NewSampler(logger),
		articles:     features.NewArticleFeaturizer(embedder, logger, articleOpts...),
		customers:    features.NewCustomerFeaturizer(logger),
		transactions: features.NewTransactionFeaturizer(logger),
		logger:       logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one pass. Sampling needs both customers and transactions; it
// is skipped with a warning when either is missing. Streamed transactions
// are sampled by a semijoin inside the source and featurized chunk by chunk
// into Options.Sink. The first failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Outputs, error) {
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.GenerateRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	logger := p.logger.With().Str("run_id", runID).Logger()
	out := &Outputs{RunID: runID}
	start := time.Now()

	logger.Info().
		Bool("sample", p.opts.Sample).
		Str("tier", string(p.opts.Tier)).
		Msg("feature pipeline started")

	customers, transactions, source := in.Customers, in.Transactions, in.TransactionSource
	if transactions != nil {
		source = nil
	}
	if source != nil && p.opts.Sink == nil {
		return nil, fmt.Errorf("%w: streamed transactions need a table sink", table.ErrConfiguration)
	}

	if p.opts.Sample {
		var err error
		switch {
		case customers == nil || (transactions == nil && source == nil):
			logger.Warn().Msg("sampling skipped: customers and transactions are both required")
		case source != nil:
			err = p.stage(logger, StageSample, func() (err error) {
				customers, source, err = p.sampleSource(ctx, logger, customers, source)
				return err
			})
		default:
			err = p.stage(logger, StageSample, func() error {
				res, err := p.sampler.Sample(p.opts.Tier, customers, transactions)
				if err != nil {
					return err
				}
				customers, transactions = res.Customers, res.Transactions
				return nil
			})
		}
		if err != nil {
			return nil, err
		}
	}

	if in.Articles != nil {
		err := p.stage(logger, StageArticles, func() (err error) {
			out.Articles, err = p.articles.Compute(ctx, in.Articles)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if customers != nil {
		err := p.stage(logger, StageCustomers, func() (err error) {
			out.Customers, err = p.customers.Compute(customers, features.CustomerOptions{DropNullAge: p.opts.DropNullAge})
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if transactions != nil {
		err := p.stage(logger, StageTransactions, func() (err error) {
			out.Transactions, err = p.transactions.Compute(transactions)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if source != nil {
		err := p.stage(logger, StageTransactions, func() error {
			rows, err := p.streamTransactions(ctx, source)
			if err != nil {
				return err
			}
			out.Streamed = append(out.Streamed, WrittenTable{Name: features.TableTransactions, Rows: rows})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Info().
		Int("tables", len(out.Tables())+len(out.Streamed)).
		Dur("duration", time.Since(start)).
		Msg("feature pipeline completed")

	return out, nil
}

// sampleSource draws the customer sample in memory and filters the
// streamed transactions to it inside the source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) sampleSource(ctx context.Context, logger zerolog.Logger, customers *table.Table, source TransactionSource) (*table.Table, TransactionSource, error) {
	sampled, err := p.sampler.SampleCustomers(p.opts.Tier, customers)
	if err != nil {
		return nil, nil, err
	}
	filtered, err := source.Semijoin(ctx, "sampled", features.ColCustomerID, sampling.CustomerIDs(sampled))
	if err != nil {
		return nil, nil, err
	}

	metrics.SampledRows.WithLabelValues(features.TableTransactions, string(p.opts.Tier)).Set(float64(filtered.Len()))
	logger.Info().
		Str("tier", string(p.opts.Tier)).
		Int("customers", sampled.Len()).
		Int64("transactions", filtered.Len()).
		Int64("transactions_in", source.Len()).
		Msg("dataset sampled")

	return sampled, filtered, nil
}

// streamTransactions featurizes source chunk by chunk. The first non-empty
// chunk replaces the sink table and later ones are appended, so output rows
// keep source order. When every chunk is empty an empty table is written.
func (p *Pipeline) streamTransactions(ctx context.Context, source TransactionSource) (int, error) {
	name := features.TableTransactions
	rows, chunks := 0, 0
	var empty *table.Table

	err := source.EachChunk(ctx, p.opts.ChunkSize, func(chunk *table.Table) error {
		df, err := p.transactions.Compute(chunk)
		if err != nil {
			return err
		}
		chunks++
		switch {
		case df.Len() == 0:
			if rows == 0 {
				empty = df
			}
			return nil
		case rows == 0:
			err = p.opts.Sink.WriteTable(ctx, name, df)
		default:
			err = p.opts.Sink.AppendTable(ctx, name, df)
		}
		rows += df.Len()
		return err
	})
	if err != nil {
		return 0, err
	}
	if rows == 0 && empty != nil {
		if err := p.opts.Sink.WriteTable(ctx, name, empty); err != nil {
			return 0, err
		}
	}

	p.logger.Debug().
		Int("rows", rows).
		Int("chunks", chunks).
		Msg("transactions streamed")
	return rows, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) stage(logger zerolog.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStage(name, elapsed, err)

	if err != nil {
		logger.Error().Err(err).Str("stage", name).Dur("duration", elapsed).Msg("stage failed")
		return fmt.Errorf("%s stage: %w", name, err)
	}
	logger.Debug().Str("stage", name).Dur("duration", elapsed).Msg("stage completed")
	return nil
}
