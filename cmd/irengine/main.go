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

// Package main implements the irengine CLI: builds and queries the
// cross-language IR for a repository.
//
// Usage:
//
//	irengine init                 Create .irengine/config.yaml
//	irengine index [--full]       Run the pipeline over the repository
//	irengine status [--json]      Show the last run's stage metrics
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are the flags every subcommand inherits.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Emit machine-readable JSON output")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		configPath  = flag.String("config", "", "Path to .irengine/config.yaml (default: ./.irengine/config.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `irengine - cross-language IR build pipeline

Usage:
  irengine <command> [options]

Commands:
  init      Create .irengine/config.yaml configuration
  index     Run the pipeline over the repository
  status    Show the last run's stage metrics

Global Options:
  --config     Path to .irengine/config.yaml
  --json       Emit machine-readable JSON output
  -q, --quiet  Suppress progress output
  --no-color   Disable colored output
  --version    Show version and exit
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("irengine version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	globals := GlobalFlags{JSON: *jsonOutput, Quiet: *quiet, NoColor: *noColor}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "index":
		runIndex(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
