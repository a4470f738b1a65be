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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return name
}

// TestProvenanceStage_StableAcrossWhitespaceReformatting is the
// "provenance stability" universal property: with normalize_whitespace
// enabled, reformatting a function's indentation doesn't change its
// function_hash.
func TestProvenanceStage_StableAcrossWhitespaceReformatting(t *testing.T) {
	dir := t.TempDir()

	original := "def greet(name):\n    return 'hi ' + name\n"
	reformatted := "def greet(name):\n        return 'hi '   +   name\n"

	nameA := writeTempFile(t, dir, "a.py", original)
	nameB := writeTempFile(t, dir, "b.py", reformatted)

	// Each span ends at the end of its own file's second line: 23
	// columns in the original, 31 in the reformatted copy.
	fn := func(name string, endCol int) ir.Node {
		return ir.Node{
			ID: "node:" + name, Kind: ir.KindFunction, FQN: "greet",
			Span: ir.Span{StartLine: 1, StartCol: 0, EndLine: 2, EndCol: endCol},
		}
	}

	docs := map[string]*ir.IRDocument{
		nameA: {Nodes: []ir.Node{fn(nameA, 23)}},
		nameB: {Nodes: []ir.Node{fn(nameB, 31)}},
	}

	cfg := pipeline.DefaultConfig()
	cfg.RepoRoot = dir
	cfg.NormalizeWhitespace = true

	sc := pipeline.NewStageContext(cfg, []string{nameA, nameB}, docs)
	stage := NewProvenanceStage()

	next, err := stage.Run(context.Background(), sc)
	require.NoError(t, err)

	hashA := next.Provenance[nameA].FunctionHashes["greet"]
	hashB := next.Provenance[nameB].FunctionHashes["greet"]
	assert.NotEmpty(t, hashA)
	assert.Equal(t, hashA, hashB)
}

// TestProvenanceStage_FileHashChangesWithContent is a basic sanity
// check that distinct file contents produce distinct file hashes.
func TestProvenanceStage_FileHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	nameA := writeTempFile(t, dir, "a.py", "x = 1\n")
	nameB := writeTempFile(t, dir, "b.py", "x = 2\n")

	docs := map[string]*ir.IRDocument{
		nameA: {},
		nameB: {},
	}

	cfg := pipeline.DefaultConfig()
	cfg.RepoRoot = dir
	sc := pipeline.NewStageContext(cfg, []string{nameA, nameB}, docs)

	next, err := NewProvenanceStage().Run(context.Background(), sc)
	require.NoError(t, err)

	assert.NotEqual(t, next.Provenance[nameA].FileHash, next.Provenance[nameB].FileHash)
}
