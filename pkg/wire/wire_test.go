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

package wire

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
)

func sampleDocument() *ir.IRDocument {
	return &ir.IRDocument{
		RepoID:        "repo1",
		SnapshotID:    "snap1",
		SchemaVersion: "1.0",
		Nodes: []ir.Node{
			{ID: "node:a:f", Kind: ir.KindFunction, FQN: "a.f", FilePath: "a.py",
				Span: ir.Span{StartLine: 1, StartCol: 0, EndLine: 2, EndCol: 10}},
		},
		Edges: []ir.Edge{
			{ID: "e1", Kind: ir.EdgeCalls, SourceID: "node:a:f", TargetID: "node:a:g"},
		},
	}
}

func TestEncodeDecodeIRDocument_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	doc := sampleDocument()

	require.NoError(t, EncodeIRDocument(&buf, doc))

	got, err := DecodeIRDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.RepoID, got.RepoID)
	assert.Equal(t, doc.SnapshotID, got.SnapshotID)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "a.f", got.Nodes[0].FQN)
	require.Len(t, got.Edges, 1)
	assert.Equal(t, ir.EdgeCalls, got.Edges[0].Kind)
}

func TestEncodeIRDocument_LengthPrefixMatchesBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeIRDocument(&buf, sampleDocument()))

	prefixed := buf.Bytes()
	require.GreaterOrEqual(t, len(prefixed), 4)

	size := uint32(prefixed[0])<<24 | uint32(prefixed[1])<<16 | uint32(prefixed[2])<<8 | uint32(prefixed[3])
	assert.Equal(t, len(prefixed)-4, int(size))
}

func TestEncodeDecodeGlobalContext_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	gctx := &ir.GlobalContext{
		SymbolTable:      map[string]ir.Symbol{"a.f": {NodeID: "node:a:f", File: "a.py", Kind: ir.KindFunction}},
		FileDependencies: map[string][]string{"b.py": {"a.py"}},
		TopologicalOrder: []string{"a.py", "b.py"},
		Statistics:       ir.GlobalContextStats{TotalSymbols: 1, TotalFiles: 2},
	}

	require.NoError(t, EncodeGlobalContext(&buf, gctx))

	got, err := DecodeGlobalContext(&buf)
	require.NoError(t, err)
	assert.Equal(t, gctx.TopologicalOrder, got.TopologicalOrder)
	assert.Equal(t, 1, got.Statistics.TotalSymbols)
}

func TestWriteReadIRDocumentFile_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ir")
	doc := sampleDocument()

	require.NoError(t, WriteIRDocumentFile(path, doc))

	got, err := ReadIRDocumentFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.RepoID, got.RepoID)
}

func TestDecodeIRDocument_RejectsOversizedLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	_, err := DecodeIRDocument(&buf)
	assert.Error(t, err)
}
