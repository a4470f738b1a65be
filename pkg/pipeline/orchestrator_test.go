// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
)

// fakeStage is a minimal pipeline.Stage for orchestrator tests: it
// writes a single document keyed by its own name into IRDocuments and
// optionally returns an error.
type fakeStage struct {
	name    string
	skip    bool
	err     error
	items   int
	sleepFn func()
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) ShouldSkip(*pipeline.StageContext) (bool, string) {
	if f.skip {
		return true, "fake skip"
	}
	return false, ""
}

func (f *fakeStage) Run(_ context.Context, sc *pipeline.StageContext) (*pipeline.StageContext, error) {
	if f.sleepFn != nil {
		f.sleepFn()
	}
	if f.err != nil {
		return sc, f.err
	}
	next := sc.Clone()
	next.IRDocuments[f.name] = &ir.IRDocument{RepoID: f.name}
	next.PendingMetrics = &ir.StageMetrics{ItemsProcessed: f.items}
	return next, nil
}

func newTestOrchestrator(hooks pipeline.Hooks) *pipeline.Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return pipeline.NewOrchestrator(logger, hooks)
}

func TestRun_SequentialStagesChainContexts(t *testing.T) {
	orch := newTestOrchestrator(pipeline.Hooks{})
	start := pipeline.NewStageContext(pipeline.Config{}, []string{"a.py"}, nil)

	result := orch.Run(context.Background(), start, []pipeline.Stage{
		&fakeStage{name: "one", items: 1},
		&fakeStage{name: "two", items: 2},
	})

	require.True(t, result.IsSuccess())
	assert.Len(t, result.IRDocuments, 2)
	assert.Len(t, result.StageMetrics, 2)
	assert.Equal(t, "one", result.StageMetrics[0].StageName)
	assert.Equal(t, "two", result.StageMetrics[1].StageName)
}

func TestRun_StageErrorStopsSubsequentStages(t *testing.T) {
	orch := newTestOrchestrator(pipeline.Hooks{})
	start := pipeline.NewStageContext(pipeline.Config{}, nil, nil)

	result := orch.Run(context.Background(), start, []pipeline.Stage{
		&fakeStage{name: "ok", items: 1},
		&fakeStage{name: "boom", err: fmt.Errorf("kaboom")},
		&fakeStage{name: "never", items: 99},
	})

	require.False(t, result.IsSuccess())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "boom")
	assert.Contains(t, result.Errors[0], "kaboom")
	_, ranNever := result.IRDocuments["never"]
	assert.False(t, ranNever)
}

func TestRun_SkippedStageIsExcludedFromMetrics(t *testing.T) {
	orch := newTestOrchestrator(pipeline.Hooks{})
	start := pipeline.NewStageContext(pipeline.Config{}, nil, nil)

	result := orch.Run(context.Background(), start, []pipeline.Stage{
		&fakeStage{name: "skipped", skip: true},
		&fakeStage{name: "ran", items: 1},
	})

	require.True(t, result.IsSuccess())
	assert.Len(t, result.StageMetrics, 1)
	assert.Equal(t, "ran", result.StageMetrics[0].StageName)
}

func TestRunGroups_ParallelGroupUnionsIRDocuments(t *testing.T) {
	orch := newTestOrchestrator(pipeline.Hooks{})
	start := pipeline.NewStageContext(pipeline.Config{}, nil, nil)

	result := orch.RunGroups(context.Background(), start, [][]pipeline.Stage{
		{&fakeStage{name: "left", items: 1}, &fakeStage{name: "right", items: 2}},
	})

	require.True(t, result.IsSuccess())
	assert.Len(t, result.IRDocuments, 2)
	assert.Len(t, result.StageMetrics, 2)
}

func TestRunGroups_ParallelGroupErrorSurfaces(t *testing.T) {
	orch := newTestOrchestrator(pipeline.Hooks{})
	start := pipeline.NewStageContext(pipeline.Config{}, nil, nil)

	result := orch.RunGroups(context.Background(), start, [][]pipeline.Stage{
		{&fakeStage{name: "left", items: 1}, &fakeStage{name: "right", err: fmt.Errorf("boom")}},
	})

	require.False(t, result.IsSuccess())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "right")
}

func TestRun_HooksFireInOrder(t *testing.T) {
	var events []string
	hooks := pipeline.Hooks{
		OnStageStart:    func(name string, _ *pipeline.StageContext) { events = append(events, "start:"+name) },
		OnStageComplete: func(name string, _ *pipeline.StageContext, _ float64) { events = append(events, "complete:"+name) },
		OnStageError:    func(name string, _ *pipeline.StageContext, _ error) { events = append(events, "error:"+name) },
	}
	orch := newTestOrchestrator(hooks)
	start := pipeline.NewStageContext(pipeline.Config{}, nil, nil)

	orch.Run(context.Background(), start, []pipeline.Stage{
		&fakeStage{name: "one", items: 1},
		&fakeStage{name: "two", err: fmt.Errorf("fail")},
	})

	assert.Equal(t, []string{"start:one", "complete:one", "start:two", "error:two"}, events)
}

func TestRun_PanickingHookDoesNotAbortPipeline(t *testing.T) {
	hooks := pipeline.Hooks{
		OnStageStart: func(string, *pipeline.StageContext) { panic("hook exploded") },
	}
	orch := newTestOrchestrator(hooks)
	start := pipeline.NewStageContext(pipeline.Config{}, nil, nil)

	result := orch.Run(context.Background(), start, []pipeline.Stage{
		&fakeStage{name: "one", items: 1},
	})

	require.True(t, result.IsSuccess())
	assert.Len(t, result.StageMetrics, 1)
}
