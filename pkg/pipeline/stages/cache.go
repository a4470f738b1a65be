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

// Package stages implements the structural pipeline stages (C7, C8,
// C10) that run around the cross-file resolver (C9, in
// pkg/pipeline/resolver).
package stages

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/kraklabs/irengine/internal/metrics"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
)

// CacheStage implements C7: decide, per file, whether a cached
// IRDocument can stand in for a fresh walker run.
type CacheStage struct{}

// NewCacheStage constructs a CacheStage.
func NewCacheStage() *CacheStage { return &CacheStage{} }

func (s *CacheStage) Name() string { return "cache" }

// ShouldSkip reports no-op only when caching is disabled outright —
// the stage still needs to run (even over zero cache entries) to stat
// every file and decide the initial ChangedFiles set the structural
// stage consumes.
func (s *CacheStage) ShouldSkip(ctx *pipeline.StageContext) (bool, string) {
	if !ctx.Config.CacheEnabled {
		return true, "cache disabled"
	}
	return false, ""
}

// Run implements spec §4.7's per-file algorithm: fast path on
// mtime+size, slow path (unless FastPathOnly) on content hash.
func (s *CacheStage) Run(ctx context.Context, sc *pipeline.StageContext) (*pipeline.StageContext, error) {
	next := sc.Clone()

	changed := map[string]bool{}
	state := ir.CacheState{TotalFiles: len(sc.Files)}

	for _, path := range sc.Files {
		select {
		case <-ctx.Done():
			return next, ctx.Err()
		default:
		}

		cached, ok := next.IRDocuments[path]
		if !ok {
			changed[path] = true
			continue
		}

		full := path
		if sc.Config.RepoRoot != "" {
			full = filepath.Join(sc.Config.RepoRoot, path)
		}

		info, err := os.Stat(full)
		if err != nil {
			// Cache I/O failure (spec §7.3): demote to miss, continue.
			changed[path] = true
			delete(next.IRDocuments, path)
			continue
		}

		mtime := info.ModTime().UnixNano()
		size := info.Size()

		if mtime == cached.CacheMtime() && size == cached.CacheSize() {
			state.FastPathHits++
			state.CacheHits++
			continue
		}

		if sc.Config.FastPathOnly {
			changed[path] = true
			delete(next.IRDocuments, path)
			continue
		}

		hash, err := hashFile(full)
		if err != nil {
			changed[path] = true
			delete(next.IRDocuments, path)
			continue
		}

		if hash == cached.CacheHash() {
			state.SlowPathHits++
			state.CacheHits++
			cached.SetCacheMetadata(mtime, size, hash)
			continue
		}

		changed[path] = true
		delete(next.IRDocuments, path)
	}

	state.CacheMisses = len(changed)
	next.ChangedFiles = changed
	next.CacheState = &state

	for i := 0; i < state.FastPathHits; i++ {
		metrics.RecordCacheFastPathHit()
	}
	for i := 0; i < state.SlowPathHits; i++ {
		metrics.RecordCacheSlowPathHit()
	}
	metrics.RecordCacheMiss(state.CacheMisses)

	next.PendingMetrics = &ir.StageMetrics{
		ItemsProcessed: len(sc.Files),
		Metadata: map[string]any{
			"cache_hits":     state.CacheHits,
			"cache_misses":   state.CacheMisses,
			"fast_path_hits": state.FastPathHits,
			"slow_path_hits": state.SlowPathHits,
		},
	}

	return next, nil
}

// hashFile streams a file through SHA-256 in fixed 8 KiB chunks, per
// spec §5's "hash streaming uses fixed 8 KiB chunks".
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 8*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
