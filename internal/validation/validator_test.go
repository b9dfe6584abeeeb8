// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type batchSettings struct {
	Provider  string `validate:"oneof=hash http"`
	BatchSize int    `validate:"min=1"`
	Endpoint  string `validate:"omitempty,url"`
	ModelID   string `validate:"required"`
}

type storageSettings struct {
	MaxMemory string `validate:"memsize"`
	Threads   int    `validate:"min=0,max=256"`
}

type settings struct {
	Batch   batchSettings
	Storage storageSettings
}

func validSettings() settings {
	return settings{
		Batch:   batchSettings{Provider: "hash", BatchSize: 8, ModelID: "all-MiniLM-L6-v2"},
		Storage: storageSettings{MaxMemory: "2GB"},
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*settings)
	}{
		{"defaults", func(*settings) {}},
		{"http endpoint", func(s *settings) {
			s.Batch.Provider = "http"
			s.Batch.Endpoint = "http://localhost:8080"
		}},
		{"mebibytes", func(s *settings) { s.Storage.MaxMemory = "512 MiB" }},
		{"fractional", func(s *settings) { s.Storage.MaxMemory = "1.5tb" }},
		{"max threads", func(s *settings) { s.Storage.Threads = 256 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			if err := ValidateStruct(&s); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*settings)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "unknown provider",
			mutate:    func(s *settings) { s.Batch.Provider = "torch" },
			wantField: "Batch.Provider",
			wantTag:   "oneof",
			wantMsg:   "Batch.Provider must be one of: hash http",
		},
		{
			name:      "zero batch size",
			mutate:    func(s *settings) { s.Batch.BatchSize = 0 },
			wantField: "Batch.BatchSize",
			wantTag:   "min",
			wantMsg:   "Batch.BatchSize must be at least 1",
		},
		{
			name:      "bad endpoint",
			mutate:    func(s *settings) { s.Batch.Endpoint = "localhost" },
			wantField: "Batch.Endpoint",
			wantTag:   "url",
			wantMsg:   "Batch.Endpoint must be a valid URL",
		},
		{
			name:      "missing model",
			mutate:    func(s *settings) { s.Batch.ModelID = "" },
			wantField: "Batch.ModelID",
			wantTag:   "required",
			wantMsg:   "Batch.ModelID is required",
		},
		{
			name:      "bad memory size",
			mutate:    func(s *settings) { s.Storage.MaxMemory = "lots" },
			wantField: "Storage.MaxMemory",
			wantTag:   "memsize",
		},
		{
			name:      "too many threads",
			mutate:    func(s *settings) { s.Storage.Threads = 1000 },
			wantField: "Storage.Threads",
			wantTag:   "max",
			wantMsg:   "Storage.Threads must be at most 256",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if tt.wantMsg != "" && errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Batch.BatchSize = -1
	s.Storage.MaxMemory = ""

	err := ValidateStruct(&s)
	if err == nil {
		t.Fatal("ValidateStruct() expected error")
	}

	fields := err.Fields()
	if len(fields) != 2 || fields[0] != "Batch.BatchSize" || fields[1] != "Storage.MaxMemory" {
		t.Errorf("Fields() = %v", fields)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message should join errors: %q", err.Error())
	}
}

func TestStructValidationError_Empty(t *testing.T) {
	t.Parallel()

	var ve StructValidationError
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
}

func TestTrimNamespace(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Config.Embedding.BatchSize": "Embedding.BatchSize",
		"Config.Output":              "Output",
		"Plain":                      "Plain",
	}
	for in, want := range tests {
		if got := trimNamespace(in); got != want {
			t.Errorf("trimNamespace(%q) = %q, want %q", in, got, want)
		}
	}
}
