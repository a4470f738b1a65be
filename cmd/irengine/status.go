// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irengine/internal/bootstrap"
	"github.com/kraklabs/irengine/internal/errors"
	"github.com/kraklabs/irengine/internal/output"
	"github.com/kraklabs/irengine/internal/ui"
)

func runStatus(cmdArgs []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `irengine status - show the last run's stage metrics

Usage:
  irengine status [--json]
`)
	}
	_ = fs.Parse(cmdArgs)
	_ = configPath

	repoRoot, err := os.Getwd()
	if err != nil {
		errors.FatalError(fmt.Errorf("get cwd: %w", err), globals.JSON)
	}

	repoInfo, err := bootstrap.OpenRepo(bootstrap.RepoConfig{RepoRoot: repoRoot}, nil)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	data, err := os.ReadFile(filepath.Join(repoInfo.CacheDir, "last_run.json"))
	if err != nil {
		errors.FatalError(fmt.Errorf("no prior run found (run 'irengine index' first): %w", err), globals.JSON)
	}

	var summary output.PipelineSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		errors.FatalError(fmt.Errorf("parse last_run.json: %w", err), globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(&summary); err != nil {
			errors.FatalError(err, true)
		}
		return
	}

	ui.Header("irengine status")
	ui.Infof("Repo: %s", repoInfo.RepoID)
	ui.Infof("Documents: %d", summary.DocumentCount)
	ui.Infof("Last run duration: %.0fms", summary.TotalDurationMs)
	for _, sm := range summary.Stages {
		ui.StageResult(sm.Name, sm.ItemsProcessed, sm.DurationMs, sm.Error)
	}
	if !summary.Success {
		for _, e := range summary.Errors {
			ui.Error(e)
		}
		os.Exit(1)
	}
}
