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

package stages

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
)

// TestCacheStage_FastPathHitOnUnchangedMtimeAndSize is the "cache
// round-trip" property's happy path: a file whose mtime/size match the
// cached document is a fast-path hit and is not marked changed.
func TestCacheStage_FastPathHitOnUnchangedMtimeAndSize(t *testing.T) {
	dir := t.TempDir()
	name := writeTempFile(t, dir, "a.py", "x = 1\n")
	full := dir + "/" + name

	info, err := os.Stat(full)
	require.NoError(t, err)

	doc := &ir.IRDocument{}
	doc.SetCacheMetadata(info.ModTime().UnixNano(), info.Size(), "irrelevant-for-fast-path")

	cfg := pipeline.DefaultConfig()
	cfg.RepoRoot = dir
	sc := pipeline.NewStageContext(cfg, []string{name}, map[string]*ir.IRDocument{name: doc})

	next, err := NewCacheStage().Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, next.ChangedFiles[name])
	assert.Equal(t, 1, next.CacheState.FastPathHits)
	assert.Equal(t, 0, next.CacheState.CacheMisses)
}

// TestCacheStage_SlowPathFallsBackToHash covers mtime drift (e.g. a
// checkout that touches files without changing content) where content
// hash still matches: the slow path confirms the cache hit.
func TestCacheStage_SlowPathFallsBackToHash(t *testing.T) {
	dir := t.TempDir()
	name := writeTempFile(t, dir, "a.py", "x = 1\n")
	full := dir + "/" + name

	hash, err := hashFile(full)
	require.NoError(t, err)

	doc := &ir.IRDocument{}
	// Simulate a stale mtime/size but matching content hash.
	doc.SetCacheMetadata(time.Now().Add(-time.Hour).UnixNano(), 0, hash)

	cfg := pipeline.DefaultConfig()
	cfg.RepoRoot = dir
	sc := pipeline.NewStageContext(cfg, []string{name}, map[string]*ir.IRDocument{name: doc})

	next, err := NewCacheStage().Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, next.ChangedFiles[name])
	assert.Equal(t, 1, next.CacheState.SlowPathHits)
}

// TestCacheStage_ContentChangeIsAMiss covers the true-miss path: mtime
// differs and the hash doesn't match, so the file is flagged changed
// and dropped from IRDocuments for the structural stage to re-walk.
func TestCacheStage_ContentChangeIsAMiss(t *testing.T) {
	dir := t.TempDir()
	name := writeTempFile(t, dir, "a.py", "x = 1\n")

	doc := &ir.IRDocument{}
	doc.SetCacheMetadata(time.Now().Add(-time.Hour).UnixNano(), 0, "stale-hash")

	cfg := pipeline.DefaultConfig()
	cfg.RepoRoot = dir
	sc := pipeline.NewStageContext(cfg, []string{name}, map[string]*ir.IRDocument{name: doc})

	next, err := NewCacheStage().Run(context.Background(), sc)
	require.NoError(t, err)

	assert.True(t, next.ChangedFiles[name])
	assert.Equal(t, 1, next.CacheState.CacheMisses)
	_, stillCached := next.IRDocuments[name]
	assert.False(t, stillCached)
}
