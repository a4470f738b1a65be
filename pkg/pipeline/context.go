// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "github.com/kraklabs/irengine/pkg/ir"

// StageContext is the immutable-update value threaded through the
// pipeline: each stage consumes one and returns a new one (spec §4.11's
// "run(ctx) → ctx'"). Stages never mutate the IRDocuments map they were
// handed — ownership of the entries a stage didn't touch passes through
// unchanged, and entries it wrote replace the prior value at that key.
type StageContext struct {
	Config Config

	// Files is the full candidate file set for this run, repo-root
	// relative paths.
	Files []string

	// IRDocuments is path → document, the running structural IR state.
	IRDocuments map[string]*ir.IRDocument

	// ChangedFiles is the set of paths the cache stage (C7) determined
	// need (re)processing. Nil if the cache stage did not run or was
	// skipped.
	ChangedFiles map[string]bool

	// CacheState is the cache stage's per-run report, nil if it did not
	// run.
	CacheState *ir.CacheState

	// GlobalCtx is the cross-file resolver's (C9) output, nil until
	// that stage runs.
	GlobalCtx *ir.GlobalContext

	// Provenance is path → fingerprint record, populated by C10.
	Provenance map[string]*ir.ProvenanceData

	// StageMetrics accumulates one record per stage run, in execution
	// order.
	StageMetrics []ir.StageMetrics

	// PendingMetrics lets a Stage.Run report ItemsProcessed/Metadata for
	// its own invocation; the orchestrator fills in StageName and
	// DurationMs, appends the result to StageMetrics, and clears this
	// field again. A stage that leaves it nil gets a metrics record with
	// zero ItemsProcessed and no metadata.
	PendingMetrics *ir.StageMetrics
}

// NewStageContext builds the initial context a pipeline run starts
// from: the candidate file set, the caller-supplied cache sink (may be
// nil or empty), and the resolved config.
func NewStageContext(cfg Config, files []string, cachedIRs map[string]*ir.IRDocument) *StageContext {
	if cachedIRs == nil {
		cachedIRs = map[string]*ir.IRDocument{}
	}
	return &StageContext{
		Config:      cfg,
		Files:       files,
		IRDocuments: cachedIRs,
	}
}

// Clone produces a shallow copy of ctx with its own IRDocuments/
// ChangedFiles/Provenance/StageMetrics maps and slices, so a stage can
// build its "new" context without aliasing the one it was handed — the
// values themselves (*ir.IRDocument) are still shared, per spec §5's
// "never copies documents" memory-pressure contract.
func (ctx *StageContext) Clone() *StageContext {
	next := &StageContext{
		Config:       ctx.Config,
		Files:        ctx.Files,
		IRDocuments:  make(map[string]*ir.IRDocument, len(ctx.IRDocuments)),
		GlobalCtx:    ctx.GlobalCtx,
		CacheState:   ctx.CacheState,
		StageMetrics: append([]ir.StageMetrics(nil), ctx.StageMetrics...),
	}
	for k, v := range ctx.IRDocuments {
		next.IRDocuments[k] = v
	}
	if ctx.ChangedFiles != nil {
		next.ChangedFiles = make(map[string]bool, len(ctx.ChangedFiles))
		for k, v := range ctx.ChangedFiles {
			next.ChangedFiles[k] = v
		}
	}
	if ctx.Provenance != nil {
		next.Provenance = make(map[string]*ir.ProvenanceData, len(ctx.Provenance))
		for k, v := range ctx.Provenance {
			next.Provenance[k] = v
		}
	}
	return next
}

// ToResult converts the final context into the pipeline's exposed
// return value (spec §6).
func (ctx *StageContext) ToResult(totalDurationMs float64, errs []string) *ir.PipelineResult {
	return &ir.PipelineResult{
		IRDocuments:     ctx.IRDocuments,
		GlobalCtx:       ctx.GlobalCtx,
		StageMetrics:    ctx.StageMetrics,
		TotalDurationMs: totalDurationMs,
		Errors:          errs,
	}
}
