// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// RepoConfig holds configuration for preparing a repo's cache directory.
type RepoConfig struct {
	// RepoRoot is the path to the repo to index. Required by InitRepo;
	// not required by OpenRepo when RepoID is given directly.
	RepoRoot string

	// RepoID is the logical repo identifier used to key the cache
	// directory and, by default, pipeline.Config.RepoID. Defaults to
	// filepath.Base(RepoRoot).
	RepoID string

	// CacheRoot is the parent directory under which each repo gets its
	// own cache subdirectory. Defaults to ~/.irengine/cache.
	CacheRoot string
}

// RepoInfo holds information about a prepared repo.
type RepoInfo struct {
	RepoID   string
	RepoRoot string
	CacheDir string
}

func defaultCacheRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".irengine", "cache"), nil
}

func resolveCacheRoot(root string) (string, error) {
	if root != "" {
		return root, nil
	}
	return defaultCacheRoot()
}

// InitRepo prepares a repo's cache directory ahead of a pipeline run.
// This function is idempotent: calling it multiple times is safe.
//
// The function:
//  1. Derives a RepoID from RepoRoot's base name, if not given
//  2. Creates the repo's cache directory if it doesn't already exist
//
// Parameters:
//   - config: repo configuration
//   - logger: optional logger (nil uses default)
//
// Returns:
//   - RepoInfo: information about the prepared repo
//   - error: if preparation fails
func InitRepo(config RepoConfig, logger *slog.Logger) (*RepoInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.RepoRoot == "" {
		return nil, fmt.Errorf("repo_root is required")
	}
	if config.RepoID == "" {
		config.RepoID = filepath.Base(filepath.Clean(config.RepoRoot))
	}

	cacheRoot, err := resolveCacheRoot(config.CacheRoot)
	if err != nil {
		return nil, err
	}
	cacheDir := filepath.Join(cacheRoot, config.RepoID)

	logger.Info("bootstrap.repo.init.start",
		"repo_id", config.RepoID,
		"repo_root", config.RepoRoot,
		"cache_dir", cacheDir,
	)

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	logger.Info("bootstrap.repo.init.success",
		"repo_id", config.RepoID,
		"cache_dir", cacheDir,
	)

	return &RepoInfo{
		RepoID:   config.RepoID,
		RepoRoot: config.RepoRoot,
		CacheDir: cacheDir,
	}, nil
}

// OpenRepo resolves an existing repo's cache directory.
// Returns an error if the cache directory has never been initialized.
func OpenRepo(config RepoConfig, logger *slog.Logger) (*RepoInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.RepoID == "" {
		if config.RepoRoot == "" {
			return nil, fmt.Errorf("repo_id or repo_root is required")
		}
		config.RepoID = filepath.Base(filepath.Clean(config.RepoRoot))
	}

	cacheRoot, err := resolveCacheRoot(config.CacheRoot)
	if err != nil {
		return nil, err
	}
	cacheDir := filepath.Join(cacheRoot, config.RepoID)

	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("repo not found: %s (run 'irengine index' first)", cacheDir)
	}

	logger.Debug("bootstrap.repo.open",
		"repo_id", config.RepoID,
		"cache_dir", cacheDir,
	)

	return &RepoInfo{
		RepoID:   config.RepoID,
		RepoRoot: config.RepoRoot,
		CacheDir: cacheDir,
	}, nil
}

// ListRepos returns the repo IDs with an existing cache directory
// under cacheRoot (or the default ~/.irengine/cache when empty).
func ListRepos(cacheRoot string) ([]string, error) {
	root, err := resolveCacheRoot(cacheRoot)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache root: %w", err)
	}

	var repos []string
	for _, entry := range entries {
		if entry.IsDir() {
			repos = append(repos, entry.Name())
		}
	}

	return repos, nil
}
