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

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/irengine/internal/metrics"
	"github.com/kraklabs/irengine/pkg/ir"
)

// Hooks are the three orchestrator lifecycle events spec §4.11 names.
// A nil field is simply not called. Hook panics/errors are recovered
// and logged — they never affect pipeline execution.
type Hooks struct {
	OnStageStart    func(name string, ctx *StageContext)
	OnStageComplete func(name string, ctx *StageContext, durationMs float64)
	OnStageError    func(name string, ctx *StageContext, err error)
}

func (h Hooks) fireStart(logger *slog.Logger, name string, ctx *StageContext) {
	if h.OnStageStart == nil {
		return
	}
	defer recoverHook(logger, "on_stage_start", name)
	h.OnStageStart(name, ctx)
}

func (h Hooks) fireComplete(logger *slog.Logger, name string, ctx *StageContext, durationMs float64) {
	if h.OnStageComplete == nil {
		return
	}
	defer recoverHook(logger, "on_stage_complete", name)
	h.OnStageComplete(name, ctx, durationMs)
}

func (h Hooks) fireError(logger *slog.Logger, name string, ctx *StageContext, err error) {
	if h.OnStageError == nil {
		return
	}
	defer recoverHook(logger, "on_stage_error", name)
	h.OnStageError(name, ctx, err)
}

func recoverHook(logger *slog.Logger, hook, stage string) {
	if r := recover(); r != nil {
		logger.Warn("pipeline.hook.panic", "hook", hook, "stage", stage, "recover", r)
	}
}

// Orchestrator runs a declared sequence of stages, optionally grouping
// some of them for concurrent execution, per spec §4.11.
type Orchestrator struct {
	logger *slog.Logger
	hooks  Hooks
}

// NewOrchestrator builds an Orchestrator. A nil logger falls back to
// slog.Default(), matching local_pipeline.go's own NewLocalPipeline
// convention.
func NewOrchestrator(logger *slog.Logger, hooks Hooks) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{logger: logger, hooks: hooks}
}

// Run executes stages sequentially: declared order, each stage's
// output context feeding the next stage's input (spec §5's "input
// context of stage i+1 is the output context of stage i"). After each
// stage, the caller's context is checked for cancellation before the
// next stage runs.
func (o *Orchestrator) Run(ctx context.Context, start *StageContext, stages []Stage) *ir.PipelineResult {
	return o.RunGroups(ctx, start, groupsOfOne(stages))
}

// groupsOfOne wraps a flat stage slice into one-stage groups, so Run
// can share RunGroups' implementation without a separate code path.
func groupsOfOne(stages []Stage) [][]Stage {
	groups := make([][]Stage, len(stages))
	for i, s := range stages {
		groups[i] = []Stage{s}
	}
	return groups
}

// RunGroups executes groups sequentially; within a group, stages run
// concurrently and their resulting contexts are merged per spec
// §4.11's parallel-group merge semantics: IRDocuments unioned (later
// writer wins on key collision, where "later" is the stage's position
// within the group), StageMetrics concatenated, GlobalCtx takes the
// first non-nil value encountered in group order.
func (o *Orchestrator) RunGroups(ctx context.Context, start *StageContext, groups [][]Stage) *ir.PipelineResult {
	overallStart := time.Now()
	current := start
	var errs []string

	for _, group := range groups {
		var err error
		current, err = o.runGroup(ctx, current, group)
		if err != nil {
			errs = append(errs, err.Error())
			break
		}

		select {
		case <-ctx.Done():
			errs = append(errs, "cancelled")
		default:
		}
		if len(errs) > 0 {
			break
		}
	}

	return current.ToResult(float64(time.Since(overallStart).Milliseconds()), errs)
}

// runGroup runs every stage in group against the same pre-group
// context (spec §5: "within a parallel group, no ordering across
// stages; each stage sees the same pre-group context") and merges the
// results. A group of one stage is the sequential case.
func (o *Orchestrator) runGroup(ctx context.Context, pre *StageContext, group []Stage) (*StageContext, error) {
	if len(group) == 1 {
		return o.runStage(ctx, pre, group[0])
	}

	results := make([]*StageContext, len(group))
	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range group {
		i, stage := i, stage
		g.Go(func() error {
			next, err := o.runStage(gctx, pre, stage)
			if err != nil {
				return err
			}
			results[i] = next
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return pre, err
	}

	return mergeContexts(pre, results), nil
}

// mergeContexts implements the parallel-group merge rule against the
// shared pre-group context base.
func mergeContexts(base *StageContext, results []*StageContext) *StageContext {
	merged := base.Clone()
	for _, r := range results {
		if r == nil {
			continue
		}
		for k, v := range r.IRDocuments {
			merged.IRDocuments[k] = v
		}
		merged.StageMetrics = append(merged.StageMetrics, r.StageMetrics[len(base.StageMetrics):]...)
		if merged.GlobalCtx == nil && r.GlobalCtx != nil {
			merged.GlobalCtx = r.GlobalCtx
		}
		if merged.CacheState == nil && r.CacheState != nil {
			merged.CacheState = r.CacheState
		}
		if r.ChangedFiles != nil {
			if merged.ChangedFiles == nil {
				merged.ChangedFiles = map[string]bool{}
			}
			for f := range r.ChangedFiles {
				merged.ChangedFiles[f] = true
			}
		}
		for k, v := range r.Provenance {
			if merged.Provenance == nil {
				merged.Provenance = map[string]*ir.ProvenanceData{}
			}
			merged.Provenance[k] = v
		}
	}
	return merged
}

// runStage invokes should_skip/run for a single stage, firing hooks
// and recording metrics exactly as spec §4.11 describes. A stage error
// is wrapped with the stage name so the caller's error list stays
// self-describing (spec §7's "stage name prefixed").
func (o *Orchestrator) runStage(ctx context.Context, sc *StageContext, stage Stage) (*StageContext, error) {
	name := stage.Name()

	if skip, reason := stage.ShouldSkip(sc); skip {
		o.logger.Info("pipeline.stage.skip", "stage", name, "reason", reason)
		return sc, nil
	}

	o.hooks.fireStart(o.logger, name, sc)
	start := time.Now()

	next, err := stage.Run(ctx, sc)
	durationMs := float64(time.Since(start).Milliseconds())
	metrics.RecordStageDuration(name, time.Since(start).Seconds())

	if err != nil {
		o.hooks.fireError(o.logger, name, sc, err)
		return sc, fmt.Errorf("%s: %w", name, err)
	}

	metric := ir.StageMetrics{StageName: name, DurationMs: durationMs}
	if next.PendingMetrics != nil {
		metric.ItemsProcessed = next.PendingMetrics.ItemsProcessed
		metric.Metadata = next.PendingMetrics.Metadata
		metric.Error = next.PendingMetrics.Error
		next.PendingMetrics = nil
	}
	next.StageMetrics = append(next.StageMetrics, metric)
	o.hooks.fireComplete(o.logger, name, next, durationMs)

	return next, nil
}
