// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

// Package logging provides centralized zerolog-based structured logging.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("featurize starting")
//
// Components receive a zerolog.Logger and tag it with a component field:
//
//	logger := logging.WithComponent("embedding")
//
// A pipeline run carries a run ID through its context so every event of
// one invocation can be correlated:
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	logging.Ctx(ctx).Info().Msg("stage complete")
//
// # Configuration
//
// Environment variables (via internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// Always terminate event chains with Msg or Send; an unterminated chain is
// never emitted.
package logging
