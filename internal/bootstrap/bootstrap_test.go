// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRepo_DerivesRepoIDFromRepoRoot(t *testing.T) {
	cacheRoot := t.TempDir()
	info, err := InitRepo(RepoConfig{
		RepoRoot:  "/path/to/myproject",
		CacheRoot: cacheRoot,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "myproject", info.RepoID)
	assert.Equal(t, filepath.Join(cacheRoot, "myproject"), info.CacheDir)
	assert.DirExists(t, info.CacheDir)
}

func TestInitRepo_IsIdempotent(t *testing.T) {
	cacheRoot := t.TempDir()
	cfg := RepoConfig{RepoRoot: "/path/to/myproject", CacheRoot: cacheRoot}

	_, err := InitRepo(cfg, nil)
	require.NoError(t, err)
	_, err = InitRepo(cfg, nil)
	require.NoError(t, err)
}

func TestInitRepo_RequiresRepoRoot(t *testing.T) {
	_, err := InitRepo(RepoConfig{CacheRoot: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestOpenRepo_FailsWhenNeverInitialized(t *testing.T) {
	_, err := OpenRepo(RepoConfig{RepoID: "never-seen", CacheRoot: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestOpenRepo_SucceedsAfterInit(t *testing.T) {
	cacheRoot := t.TempDir()
	_, err := InitRepo(RepoConfig{RepoRoot: "/path/to/myproject", CacheRoot: cacheRoot}, nil)
	require.NoError(t, err)

	info, err := OpenRepo(RepoConfig{RepoID: "myproject", CacheRoot: cacheRoot}, nil)
	require.NoError(t, err)
	assert.Equal(t, "myproject", info.RepoID)
}

func TestListRepos_ReturnsEmptyForUnknownRoot(t *testing.T) {
	repos, err := ListRepos(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestListRepos_ListsInitializedRepos(t *testing.T) {
	cacheRoot := t.TempDir()
	_, err := InitRepo(RepoConfig{RepoRoot: "/path/to/a", CacheRoot: cacheRoot}, nil)
	require.NoError(t, err)
	_, err = InitRepo(RepoConfig{RepoRoot: "/path/to/b", CacheRoot: cacheRoot}, nil)
	require.NoError(t, err)

	repos, err := ListRepos(cacheRoot)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, repos)
}
