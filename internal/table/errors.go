// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package table

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks fatal configuration errors: a required column is
	// absent, a size tier is unknown, or a setting is invalid. These are never
	// retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidValue marks a scalar that cannot be converted to the type a
	// column requires (for example a null key or an unparseable date).
	ErrInvalidValue = errors.New("invalid value")
)

// MissingColumnError reports a required column absent from an input table.
type MissingColumnError struct {
	// Table is the logical table name (articles, customers, transactions).
	Table string

	// Column is the missing column name.
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q is missing", e.Table, e.Column)
}

// Is reports whether target is ErrConfiguration.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrConfiguration
}

// ValueError reports a value that could not be coerced at a given row.
type ValueError struct {
	Column string
	Row    int
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("column %q row %d: %s (value %v)", e.Column, e.Row, e.Reason, e.Value)
}

// Is reports whether target is ErrInvalidValue.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}
