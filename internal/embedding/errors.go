// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package embedding

import (
	"errors"
	"fmt"
)

// ErrEmbeddingFailure is matched by every *FailureError.
var ErrEmbeddingFailure = errors.New("embedding failure")

// FailureError reports a failed embedding call and the batch that failed.
type FailureError struct {
	BatchIndex int
	Err        error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("embedding batch %d failed: %v", e.BatchIndex, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FailureError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEmbeddingFailure.
func (e *FailureError) Is(target error) bool {
	return target == ErrEmbeddingFailure
}
