// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output provides utilities for consistent CLI output formatting.
//
// This package handles JSON encoding for machine-readable output, ensuring
// consistent formatting across all irengine CLI commands. It complements the
// ui package (for human-readable output) and errors package (for error handling).
//
// # Usage
//
// For JSON output in CLI commands:
//
//	type Result struct {
//	    SnapshotID string `json:"snapshot_id"`
//	    Count      int    `json:"count"`
//	}
//	result := &Result{SnapshotID: "my-project@head", Count: 42}
//	if err := output.JSON(result); err != nil {
//	    errors.FatalError(err, true)
//	}
//
// For compact JSON (e.g., streaming):
//
//	if err := output.JSONCompact(result); err != nil {
//	    errors.FatalError(err, true)
//	}
//
// For error output (always goes to stderr):
//
//	if err := doSomething(); err != nil {
//	    output.JSONError(err)
//	}
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kraklabs/irengine/pkg/ir"
)

// JSON writes data as pretty-printed JSON to stdout.
//
// The output is formatted with 2-space indentation for readability.
// This is the standard format for --json output in irengine CLI commands.
//
// Returns an error if JSON encoding fails (e.g., for unencodable types
// like channels or functions).
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON to the specified writer.
//
// This is useful for testing or when output needs to go somewhere
// other than stdout.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// JSONCompact writes data as compact JSON to stdout.
//
// The output contains no extra whitespace, making it suitable for
// streaming output or when size matters.
//
// Returns an error if JSON encoding fails.
func JSONCompact(data any) error {
	return JSONCompactTo(os.Stdout, data)
}

// JSONCompactTo writes data as compact JSON to the specified writer.
//
// This is useful for testing or when output needs to go somewhere
// other than stdout.
func JSONCompactTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// StageSummary is one stage's condensed --json record.
type StageSummary struct {
	Name           string  `json:"name"`
	ItemsProcessed int     `json:"items_processed"`
	DurationMs     float64 `json:"duration_ms"`
	Error          string  `json:"error,omitempty"`
}

// PipelineSummary is the --json shape `irengine index`/`irengine
// status` emit for a completed run: a condensed view of
// *ir.PipelineResult's totals. IRDocuments is deliberately omitted —
// it carries `json:"-"` on ir.PipelineResult itself, since the full
// node/edge graph belongs in the cache directory's wire-encoded
// documents (pkg/wire), not inline in a CLI summary.
type PipelineSummary struct {
	Success         bool           `json:"success"`
	TotalDurationMs float64        `json:"total_duration_ms"`
	DocumentCount   int            `json:"document_count"`
	Stages          []StageSummary `json:"stages"`
	Errors          []string       `json:"errors,omitempty"`
}

// SummarizePipelineResult reduces a pipeline run's result to the shape
// JSON callers should actually consume.
func SummarizePipelineResult(result *ir.PipelineResult) PipelineSummary {
	stages := make([]StageSummary, 0, len(result.StageMetrics))
	for _, sm := range result.StageMetrics {
		stages = append(stages, StageSummary{
			Name: sm.StageName, ItemsProcessed: sm.ItemsProcessed,
			DurationMs: sm.DurationMs, Error: sm.Error,
		})
	}
	return PipelineSummary{
		Success:         result.IsSuccess(),
		TotalDurationMs: result.TotalDurationMs,
		DocumentCount:   len(result.IRDocuments),
		Stages:          stages,
		Errors:          result.Errors,
	}
}

// ErrorJSON represents an error in JSON format for machine consumption.
type ErrorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSONError writes an error as JSON to stderr.
//
// The error is wrapped in a JSON object with an "error" field.
// This ensures consistent error output format when --json mode is active.
//
// Returns an error only if JSON encoding itself fails (rare).
func JSONError(err error) error {
	return JSONErrorTo(os.Stderr, err)
}

// JSONErrorTo writes an error as JSON to the specified writer.
//
// This is useful for testing.
func JSONErrorTo(w io.Writer, err error) error {
	errObj := ErrorJSON{Error: err.Error()}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(errObj); encErr != nil {
		return fmt.Errorf("JSON error encoding failed: %w", encErr)
	}
	return nil
}
