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

package walker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/typeresolve"
)

// generateViaOracle parses content with the real tree-sitter oracle
// (pkg/astsrc's production ParseOracle, not a hand-built fake tree)
// and runs w.Generate over the result, exercising the full C2→C5 path
// a test for "does the walker actually work" needs.
func generateViaOracle(t *testing.T, w Walker, path, content string) *ir.IRDocument {
	t.Helper()
	oracle := astsrc.NewTreeSitterOracle(nil)
	source := astsrc.Source{Path: path, Language: w.Language(), Content: []byte(content)}
	tree, err := oracle.Parse(context.Background(), source)
	require.NoError(t, err)
	defer tree.Close()

	resolver := typeresolve.New("test-repo")
	doc, err := w.Generate(context.Background(), "test-repo", "snap1", source, tree, resolver)
	require.NoError(t, err)
	return doc
}

// nodesByKind returns every node of the given kind in doc.
func nodesByKind(doc *ir.IRDocument, kind ir.NodeKind) []ir.Node {
	var out []ir.Node
	for _, n := range doc.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// fqns collects the FQN of every node in ns.
func fqns(ns []ir.Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.FQN
	}
	return out
}
