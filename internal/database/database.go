// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartographus-recsys/internal/config"
)

// MemoryPath opens an in-memory database.
const MemoryPath = ":memory:"

// DB wraps the DuckDB connection used to read raw tables and export
// feature tables.
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	logger zerolog.Logger
}

// Open opens (or creates) the DuckDB database described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	path := cfg.Path
	if path == MemoryPath {
		path = ""
	}

	// Ensure parent directory exists for database file
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	if path != "" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s", path, numThreads, cfg.MaxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "database").Logger(),
	}
	db.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.logger.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("database opened")

	return db, nil
}

// configureConnectionPool sizes the pool. In-memory databases use a single
// long-lived connection.
func (db *DB) configureConnectionPool() {
	if db.inMemory() {
		db.conn.SetMaxOpenConns(1)
		db.conn.SetMaxIdleConns(1)
		db.conn.SetConnMaxLifetime(0)
		db.conn.SetConnMaxIdleTime(0)
		return
	}
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

func (db *DB) inMemory() bool {
	return db.cfg.Path == "" || db.cfg.Path == MemoryPath
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint forces a WAL checkpoint. It is a no-op for in-memory databases.
func (db *DB) Checkpoint(ctx context.Context) error {
	if db.inMemory() {
		return nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Close checkpoints a file database and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	// Flush the WAL so the next open does not need to replay it.
	if err := db.Checkpoint(context.Background()); err != nil {
		db.logger.Warn().Err(err).Msg("failed to checkpoint database before close")
	}
	return db.conn.Close()
}

// ensureContext applies a default 30s timeout when ctx has no deadline.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}
