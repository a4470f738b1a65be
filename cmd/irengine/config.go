// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/irengine/pkg/pipeline"
)

// BuildConfig is the on-disk shape of .irengine/config.yaml: the
// subset of pipeline.Config a user configures once per repo, rather
// than passing on every invocation.
type BuildConfig struct {
	RepoID              string `yaml:"repo_id"`
	Profile             string `yaml:"profile"`
	ParallelWorkers     int    `yaml:"parallel_workers"`
	CacheEnabled        bool   `yaml:"cache_enabled"`
	HashAlgorithm       string `yaml:"hash_algorithm"`
	IncludeComments     bool   `yaml:"include_comments"`
	IncludeDocstrings   bool   `yaml:"include_docstrings"`
	NormalizeWhitespace bool   `yaml:"normalize_whitespace"`
}

// DefaultBuildConfig mirrors pipeline.DefaultConfig()'s balanced
// profile, in on-disk form.
func DefaultBuildConfig(repoID string) BuildConfig {
	def := pipeline.DefaultConfig()
	return BuildConfig{
		RepoID:              repoID,
		Profile:             string(def.Profile),
		ParallelWorkers:     def.ParallelWorkers,
		CacheEnabled:        def.CacheEnabled,
		HashAlgorithm:       string(def.HashAlgorithm),
		IncludeComments:     def.IncludeComments,
		IncludeDocstrings:   def.IncludeDocstrings,
		NormalizeWhitespace: def.NormalizeWhitespace,
	}
}

// ConfigPath returns the expected config file path under repoRoot.
func ConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".irengine", "config.yaml")
}

// LoadConfig reads and parses a BuildConfig from path. When path is
// empty, it resolves to ConfigPath(cwd).
func LoadConfig(path string) (*BuildConfig, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get cwd: %w", err)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg BuildConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories
// as needed.
func SaveConfig(path string, cfg BuildConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ToPipelineConfig converts the on-disk BuildConfig into a
// pipeline.Config, layering RepoRoot/SnapshotID/Incremental on top
// since those vary per invocation rather than living on disk.
func (c BuildConfig) ToPipelineConfig(repoRoot, snapshotID string, incremental bool) pipeline.Config {
	cfg := pipeline.Config{
		Profile:             pipeline.Profile(c.Profile),
		RepoID:              c.RepoID,
		SnapshotID:          snapshotID,
		RepoRoot:            repoRoot,
		ParallelWorkers:     c.ParallelWorkers,
		CacheEnabled:        c.CacheEnabled,
		Incremental:         incremental,
		HashAlgorithm:       pipeline.HashAlgorithm(c.HashAlgorithm),
		IncludeComments:     c.IncludeComments,
		IncludeDocstrings:   c.IncludeDocstrings,
		NormalizeWhitespace: c.NormalizeWhitespace,
	}
	return cfg.ApplyProfile()
}
