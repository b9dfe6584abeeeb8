// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStage(t *testing.T) {
	before := testutil.ToFloat64(StageErrors.WithLabelValues("test-stage"))

	RecordStage("test-stage", 10*time.Millisecond, nil)
	RecordStage("test-stage", 10*time.Millisecond, errors.New("boom"))

	after := testutil.ToFloat64(StageErrors.WithLabelValues("test-stage"))
	if after-before != 1 {
		t.Errorf("stage errors delta = %v, want 1", after-before)
	}
}

func TestRecordRows(t *testing.T) {
	inBefore := testutil.ToFloat64(RowsIn.WithLabelValues("test-table"))
	outBefore := testutil.ToFloat64(RowsOut.WithLabelValues("test-table"))

	RecordRows("test-table", 3, 2)

	if d := testutil.ToFloat64(RowsIn.WithLabelValues("test-table")) - inBefore; d != 3 {
		t.Errorf("rows in delta = %v, want 3", d)
	}
	if d := testutil.ToFloat64(RowsOut.WithLabelValues("test-table")) - outBefore; d != 2 {
		t.Errorf("rows out delta = %v, want 2", d)
	}
}

func TestRecordEmbeddingBatch(t *testing.T) {
	successBefore := testutil.ToFloat64(EmbeddingBatches.WithLabelValues("success"))
	failureBefore := testutil.ToFloat64(EmbeddingBatches.WithLabelValues("failure"))
	textsBefore := testutil.ToFloat64(EmbeddingTexts)

	RecordEmbeddingBatch(8, time.Millisecond, nil)
	RecordEmbeddingBatch(8, time.Millisecond, errors.New("model down"))

	if d := testutil.ToFloat64(EmbeddingBatches.WithLabelValues("success")) - successBefore; d != 1 {
		t.Errorf("success delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(EmbeddingBatches.WithLabelValues("failure")) - failureBefore; d != 1 {
		t.Errorf("failure delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(EmbeddingTexts) - textsBefore; d != 8 {
		t.Errorf("texts delta = %v, want 8 (failed batches must not count)", d)
	}
}

func TestWriteTextfile(t *testing.T) {
	RecordDataQualityWarning("articles", "null_column_dropped")

	path := filepath.Join(t.TempDir(), "recsys.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "recsys_data_quality_warnings_total") {
		t.Error("textfile missing recsys_data_quality_warnings_total")
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "recsys.prom"))
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}
