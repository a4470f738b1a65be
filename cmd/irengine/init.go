// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irengine/internal/errors"
	"github.com/kraklabs/irengine/internal/ui"
)

func runInit(cmdArgs []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `irengine init - create .irengine/config.yaml

Usage:
  irengine init [--force]
`)
	}
	_ = fs.Parse(cmdArgs)

	repoRoot, err := os.Getwd()
	if err != nil {
		errors.FatalError(fmt.Errorf("get cwd: %w", err), false)
	}

	path := ConfigPath(repoRoot)
	if _, err := os.Stat(path); err == nil && !*force {
		ui.Error(fmt.Sprintf("%s already exists (use --force to overwrite)", path))
		os.Exit(1)
	}

	repoID := filepath.Base(repoRoot)
	cfg := DefaultBuildConfig(repoID)
	if err := SaveConfig(path, cfg); err != nil {
		errors.FatalError(err, false)
	}

	ui.Success(fmt.Sprintf("Created %s", path))
}
