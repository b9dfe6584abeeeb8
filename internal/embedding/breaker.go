// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/cartographus-recsys/internal/metrics"
)

// Circuit breaker tuning for remote embedding calls:
// - 1 trial request in half-open state
// - 1 minute measurement window
// - 30 second cool-down before probing again
// - opens at a 60% failure rate over at least 5 requests
const (
	breakerMaxRequests  = 1
	breakerInterval     = time.Minute
	breakerTimeout      = 30 * time.Second
	breakerMinRequests  = 5
	breakerFailureRatio = 0.6
)

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBreaker(name string, logger zerolog.Logger) *gobreaker.CircuitBreaker[[][]float32] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= breakerFailureRatio {
				logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening embedding circuit")
				return true
			}
			return false
		},
		// Cancellation by the caller says nothing about the endpoint's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("embedding circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
}

// recordBreakerResult counts a breaker outcome as success, failure or rejected.
func recordBreakerResult(name string, err error) {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
