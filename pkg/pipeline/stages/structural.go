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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kraklabs/irengine/internal/contract"
	"github.com/kraklabs/irengine/internal/metrics"
	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
	"github.com/kraklabs/irengine/pkg/typeresolve"
	"github.com/kraklabs/irengine/pkg/walker"
)

// extToLanguage maps a file extension to the language tag a walker
// registers under, mirroring parser_typescript.go/parser_go.go's own
// extension dispatch in the teacher.
var extToLanguage = map[string]string{
	".py":   "python",
	".java": "java",
	".ts":   "typescript",
	".tsx":  "tsx",
	".js":   "javascript",
	".jsx":  "javascript",
}

// StructuralStage implements C8: selects files needing (re)processing,
// dispatches each file to the walker registered for its language, and
// merges results
// into ctx.IRDocuments without overwriting cache hits.
type StructuralStage struct {
	oracle  astsrc.ParseOracle
	walkers map[string]walker.Walker
	logger  *slog.Logger
}

// NewStructuralStage builds a StructuralStage over the given parse
// oracle and the set of language walkers to dispatch to.
func NewStructuralStage(oracle astsrc.ParseOracle, walkers []walker.Walker, logger *slog.Logger) *StructuralStage {
	if logger == nil {
		logger = slog.Default()
	}
	byLang := make(map[string]walker.Walker, len(walkers))
	for _, w := range walkers {
		byLang[w.Language()] = w
	}
	return &StructuralStage{oracle: oracle, walkers: byLang, logger: logger}
}

func (s *StructuralStage) Name() string { return "structural" }

// selectFiles returns the file set this run needs to walk: the cache
// stage's ChangedFiles if it populated one, else every file not
// already present in ctx.IRDocuments.
func selectFiles(ctx *pipeline.StageContext) []string {
	if ctx.ChangedFiles != nil {
		files := make([]string, 0, len(ctx.ChangedFiles))
		for f := range ctx.ChangedFiles {
			files = append(files, f)
		}
		return files
	}
	var files []string
	for _, f := range ctx.Files {
		if _, ok := ctx.IRDocuments[f]; !ok {
			files = append(files, f)
		}
	}
	return files
}

// ShouldSkip returns true with no work when every file is already
// covered by a cache hit (spec §4.8's "if no files need processing,
// stage returns early").
func (s *StructuralStage) ShouldSkip(ctx *pipeline.StageContext) (bool, string) {
	if len(selectFiles(ctx)) == 0 {
		return true, "no files need structural processing"
	}
	return false, ""
}

func (s *StructuralStage) Run(ctx context.Context, sc *pipeline.StageContext) (*pipeline.StageContext, error) {
	files := selectFiles(sc)
	next := sc.Clone()

	numWorkers := sc.Config.ParallelWorkers
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if len(files) < 10 {
		numWorkers = 1
	}

	type walkResult struct {
		path string
		doc  *ir.IRDocument
		err  error
	}

	jobs := make(chan string, len(files))
	results := make(chan walkResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				doc, err := s.walkOne(ctx, sc, path)
				results <- walkResult{path: path, doc: doc, err: err}
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	go func() { wg.Wait(); close(results) }()

	var errCount int
	for r := range results {
		if r.err != nil {
			errCount++
			// Parse/walker faults are per-file (spec §7.1/§7.2): logged,
			// file dropped from the output, pipeline continues.
			s.logger.Warn("structural.walk.error", "path", r.path, "err", r.err)
			continue
		}
		next.IRDocuments[r.path] = r.doc
	}

	metrics.RecordStructuralWalkErrors(errCount)

	next.PendingMetrics = &ir.StageMetrics{
		ItemsProcessed: len(files),
		Metadata: map[string]any{
			"errors": errCount,
		},
	}

	return next, nil
}

func (s *StructuralStage) walkOne(ctx context.Context, sc *pipeline.StageContext, path string) (*ir.IRDocument, error) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("no language mapping for %s", path)
	}
	w, ok := s.walkers[lang]
	if !ok {
		return nil, fmt.Errorf("no walker registered for language %q", lang)
	}
	if !s.oracle.SupportsLanguage(lang) {
		return nil, fmt.Errorf("parse oracle has no grammar for language %q", lang)
	}

	full := path
	if sc.Config.RepoRoot != "" {
		full = filepath.Join(sc.Config.RepoRoot, path)
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if res := contract.ValidateSourceSize(content); !res.OK {
		return nil, fmt.Errorf("%s: %s", path, res.Message)
	}

	source := astsrc.Source{Path: path, Language: lang, Content: content}
	tree, err := s.oracle.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	resolver := typeresolve.New(sc.Config.RepoID)
	return w.Generate(ctx, sc.Config.RepoID, sc.Config.SnapshotID, source, tree, resolver)
}
