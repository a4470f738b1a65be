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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/kraklabs/irengine/internal/metrics"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
)

// hashableKind is the set of node kinds spec §4.10 fingerprints
// individually, alongside the whole-file hash.
func hashableKind(kind ir.NodeKind) bool {
	switch kind {
	case ir.KindClass, ir.KindMethod, ir.KindFunction:
		return true
	}
	return false
}

// ProvenanceStage implements C10: per-file and per-function content
// hashing, with configurable normalization so reformatting alone
// doesn't change a function's fingerprint.
type ProvenanceStage struct{}

// NewProvenanceStage constructs the provenance stage.
func NewProvenanceStage() *ProvenanceStage { return &ProvenanceStage{} }

func (s *ProvenanceStage) Name() string { return "provenance" }

func (s *ProvenanceStage) ShouldSkip(ctx *pipeline.StageContext) (bool, string) {
	if ctx.Config.Profile == pipeline.ProfileFast {
		return true, "fast profile skips provenance"
	}
	if len(ctx.IRDocuments) == 0 {
		return true, "no documents to fingerprint"
	}
	return false, ""
}

func (s *ProvenanceStage) Run(ctx context.Context, sc *pipeline.StageContext) (*pipeline.StageContext, error) {
	next := sc.Clone()
	if next.Provenance == nil {
		next.Provenance = map[string]*ir.ProvenanceData{}
	}

	algo := sc.Config.HashAlgorithm
	if algo == "" {
		algo = pipeline.HashSHA256
	}

	var errCount int
	for path, doc := range next.IRDocuments {
		select {
		case <-ctx.Done():
			return next, ctx.Err()
		default:
		}

		full := path
		if sc.Config.RepoRoot != "" {
			full = filepath.Join(sc.Config.RepoRoot, path)
		}
		content, err := os.ReadFile(full)
		if err != nil {
			errCount++
			continue
		}

		fileHash, err := hashBytes(algo, content)
		if err != nil {
			return next, fmt.Errorf("provenance: %w", err)
		}

		functionHashes := make(map[string]string, len(doc.Nodes))
		for _, n := range doc.Nodes {
			if !hashableKind(n.Kind) {
				continue
			}
			text := extractSpanText(content, n.Span)
			normalized := normalize(text, sc.Config)
			h, err := hashBytes(algo, []byte(normalized))
			if err != nil {
				return next, fmt.Errorf("provenance: %w", err)
			}
			functionHashes[n.FQN] = h
		}

		next.Provenance[path] = &ir.ProvenanceData{
			FilePath:       path,
			FileHash:       fileHash,
			FunctionHashes: functionHashes,
			HashAlgorithm:  string(algo),
		}
	}

	metrics.RecordFilesHashed(len(next.IRDocuments) - errCount)

	next.PendingMetrics = &ir.StageMetrics{
		ItemsProcessed: len(next.IRDocuments),
		Metadata:       map[string]any{"errors": errCount},
	}
	return next, nil
}

func hashBytes(algo pipeline.HashAlgorithm, data []byte) (string, error) {
	var h hash.Hash
	switch algo {
	case pipeline.HashBLAKE2b:
		b2, err := blake2b.New256(nil)
		if err != nil {
			return "", err
		}
		h = b2
	default:
		h = sha256.New()
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// extractSpanText slices raw file content by a Span's 1-based lines /
// 0-based columns, matching astsrc.NodeSpan's convention (C2).
func extractSpanText(content []byte, span ir.Span) string {
	lines := strings.Split(string(content), "\n")
	if span.StartLine < 1 || span.StartLine > len(lines) {
		return ""
	}
	if span.StartLine == span.EndLine {
		line := lines[span.StartLine-1]
		start, end := clampCol(span.StartCol, len(line)), clampCol(span.EndCol, len(line))
		if start > end {
			return ""
		}
		return line[start:end]
	}

	var b strings.Builder
	first := lines[span.StartLine-1]
	b.WriteString(first[clampCol(span.StartCol, len(first)):])
	for l := span.StartLine; l < span.EndLine-1 && l < len(lines); l++ {
		b.WriteString("\n")
		b.WriteString(lines[l])
	}
	if span.EndLine-1 < len(lines) {
		b.WriteString("\n")
		last := lines[span.EndLine-1]
		b.WriteString(last[:clampCol(span.EndCol, len(last))])
	}
	return b.String()
}

func clampCol(col, lineLen int) int {
	if col < 0 {
		return 0
	}
	if col > lineLen {
		return lineLen
	}
	return col
}

var (
	lineCommentRe  = regexp.MustCompile(`(^|[^:])//.*$`)
	hashCommentRe  = regexp.MustCompile(`#.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	tripleQuoteRe  = regexp.MustCompile(`(?s)("""|''').*?("""|''')`)
	whitespaceRun  = regexp.MustCompile(`[ \t]+`)
)

// normalize applies the subset of spec §4.10's configurable
// normalizations this stage supports, in a fixed order: comments,
// then docstrings, then trailing whitespace, then whitespace
// collapsing. This is a textual heuristic, not a per-language parser
// pass — it is good enough for cross-run/cross-platform stability of
// the SAME source text, which is the contract §4.10 actually promises;
// it does not attempt to be comment-syntax-perfect across every
// language the walkers support.
func normalize(text string, cfg pipeline.Config) string {
	out := text
	if !cfg.IncludeComments {
		out = stripComments(out)
	}
	if !cfg.IncludeDocstrings {
		out = tripleQuoteRe.ReplaceAllString(out, "")
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	out = strings.Join(lines, "\n")
	if cfg.NormalizeWhitespace {
		out = whitespaceRun.ReplaceAllString(out, " ")
		out = strings.TrimSpace(out)
	}
	return out
}

func stripComments(text string) string {
	out := blockCommentRe.ReplaceAllString(text, "")
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		l = lineCommentRe.ReplaceAllString(l, "$1")
		l = hashCommentRe.ReplaceAllString(l, "")
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}
