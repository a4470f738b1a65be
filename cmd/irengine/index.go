// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irengine/internal/bootstrap"
	"github.com/kraklabs/irengine/internal/errors"
	"github.com/kraklabs/irengine/internal/output"
	"github.com/kraklabs/irengine/internal/ui"
	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
	"github.com/kraklabs/irengine/pkg/pipeline/resolver"
	"github.com/kraklabs/irengine/pkg/pipeline/stages"
	"github.com/kraklabs/irengine/pkg/walker"
	"github.com/kraklabs/irengine/pkg/wire"
)

func runIndex(cmdArgs []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	full := fs.Bool("full", false, "Force a full reindex, ignoring the cache")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `irengine index - run the pipeline over the repository

Usage:
  irengine index [--full] [--debug]
`)
	}
	_ = fs.Parse(cmdArgs)

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	repoRoot, err := os.Getwd()
	if err != nil {
		errors.FatalError(fmt.Errorf("get cwd: %w", err), globals.JSON)
	}

	buildCfg, err := LoadConfig(configPath)
	if err != nil {
		buildCfg2 := DefaultBuildConfig(filepath.Base(repoRoot))
		buildCfg = &buildCfg2
	}

	repoInfo, err := bootstrap.InitRepo(bootstrap.RepoConfig{RepoRoot: repoRoot}, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	files, err := discoverFiles(repoRoot)
	if err != nil {
		errors.FatalError(fmt.Errorf("discover source files: %w", err), globals.JSON)
	}

	var cachedDocs map[string]*ir.IRDocument
	if !*full {
		cachedDocs, err = loadCacheDir(repoInfo.CacheDir)
		if err != nil {
			logger.Warn("index.cache_load_failed", "error", err)
			cachedDocs = map[string]*ir.IRDocument{}
		}
	}

	snapshotID := time.Now().UTC().Format("20060102T150405Z")
	cfg := buildCfg.ToPipelineConfig(repoRoot, snapshotID, !*full)

	oracle := astsrc.NewTreeSitterOracle(logger)
	walkers := []walker.Walker{
		walker.NewPythonWalker(),
		walker.NewJavaWalker(),
		walker.NewTypeScriptWalker(),
		walker.NewTSXWalker(),
		walker.NewJavaScriptWalker(),
	}

	pipelineStages := []pipeline.Stage{
		stages.NewCacheStage(),
		stages.NewStructuralStage(oracle, walkers, logger),
		stages.NewSemanticIRStage(),
		resolver.NewStage(),
		stages.NewProvenanceStage(),
	}

	progressCfg := NewProgressConfig(globals)
	var bar = NewProgressBar(progressCfg, int64(len(pipelineStages)), "irengine index")
	hooks := pipeline.Hooks{
		OnStageStart: func(name string, _ *pipeline.StageContext) {
			if !globals.Quiet && !globals.JSON && bar == nil {
				ui.Info(fmt.Sprintf("Running %s...", name))
			}
		},
		OnStageComplete: func(name string, _ *pipeline.StageContext, durationMs float64) {
			if bar != nil {
				_ = bar.Add(1)
			}
			logger.Debug("index.stage_complete", "stage", name, "duration_ms", durationMs)
		},
		OnStageError: func(name string, _ *pipeline.StageContext, err error) {
			logger.Error("index.stage_error", "stage", name, "error", err)
		},
	}

	start := pipeline.NewStageContext(cfg, files, cachedDocs)
	orch := pipeline.NewOrchestrator(logger, hooks)
	result := orch.Run(context.Background(), start, pipelineStages)
	if bar != nil {
		_ = bar.Finish()
	}

	if err := saveCacheDir(repoInfo.CacheDir, repoRoot, result.IRDocuments); err != nil {
		logger.Warn("index.cache_save_failed", "error", err)
	}
	if result.GlobalCtx != nil {
		if err := writeGlobalContext(repoInfo.CacheDir, result.GlobalCtx); err != nil {
			logger.Warn("index.global_ctx_save_failed", "error", err)
		}
	}
	if err := writeLastRun(repoInfo.CacheDir, result); err != nil {
		logger.Warn("index.metrics_save_failed", "error", err)
	}

	if globals.JSON {
		if err := output.JSON(output.SummarizePipelineResult(result)); err != nil {
			errors.FatalError(err, true)
		}
		return
	}

	ui.Header("irengine index")
	ui.Success(fmt.Sprintf("Indexed %d file(s) in %.0fms", len(result.IRDocuments), result.TotalDurationMs))
	if !result.IsSuccess() {
		for _, e := range result.Errors {
			ui.Error(e)
		}
		os.Exit(1)
	}
}

// discoverFiles walks repoRoot collecting every file whose extension
// structural.go's extToLanguage table recognizes, skipping dotfiles
// and directories (.git, .irengine, node_modules) that are never
// source.
func discoverFiles(repoRoot string) ([]string, error) {
	skipDirs := map[string]bool{
		".git": true, ".irengine": true, "node_modules": true,
		"__pycache__": true, ".venv": true, "vendor": true,
	}
	exts := map[string]bool{".py": true, ".java": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true}

	var files []string
	err := filepath.WalkDir(repoRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != repoRoot && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(repoRoot, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

func writeGlobalContext(cacheDir string, gctx *ir.GlobalContext) error {
	f, err := os.Create(filepath.Join(cacheDir, "global_context.msgpack"))
	if err != nil {
		return err
	}
	defer f.Close()
	return wire.EncodeGlobalContext(f, gctx)
}

func writeLastRun(cacheDir string, result *ir.PipelineResult) error {
	f, err := os.Create(filepath.Join(cacheDir, "last_run.json"))
	if err != nil {
		return err
	}
	defer f.Close()
	return output.JSONTo(f, output.SummarizePipelineResult(result))
}
