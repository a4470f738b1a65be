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

// Package walker implements the language walker (C5): one
// implementation per supported language, each turning a parsed source
// file into an IRDocument per the shared protocol this file defines.
package walker

import (
	"context"
	"strings"

	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/typeresolve"
)

// Walker transforms one parsed source file into an IRDocument. It is
// written once per supported language; every walker in this package
// satisfies this interface.
type Walker interface {
	// Language reports the language tag this walker handles, matching
	// the tag the parse oracle registers its grammar under.
	Language() string

	// Generate builds the IRDocument for a single file. tree is the
	// already-parsed AST (the walker never parses itself — that's C2's
	// job); source.Content holds the file's raw bytes, needed for text
	// extraction.
	Generate(ctx context.Context, repoID, snapshotID string, source astsrc.Source, tree astsrc.Tree, resolver *typeresolve.Resolver) (*ir.IRDocument, error)
}

// moduleFQNFromPath derives a dotted module FQN from a repo-relative
// file path, stripping a "src/" prefix and the language extension and
// collapsing an "__init__"/"index" module file to its package name,
// mirroring original_source's `_get_module_fqn`.
func moduleFQNFromPath(filePath, ext string) string {
	path := filePath
	path = strings.TrimPrefix(path, "src/")
	path = strings.TrimSuffix(path, ext)

	fqn := strings.ReplaceAll(path, "/", ".")

	for _, suffix := range []string{".__init__", ".index"} {
		if strings.HasSuffix(fqn, suffix) {
			fqn = strings.TrimSuffix(fqn, suffix)
		}
	}
	return fqn
}

// isTestFile reports whether a file path looks like a test file, used
// to populate Node.Attrs["is_test_file"] on File nodes.
func isTestFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	return strings.Contains(lower, "test") ||
		strings.HasPrefix(lower, "tests/") ||
		strings.Contains(lower, "/tests/")
}

// fileName returns the last path segment of filePath.
func fileName(filePath string) string {
	if i := strings.LastIndex(filePath, "/"); i >= 0 {
		return filePath[i+1:]
	}
	return filePath
}

// occurrencesOf counts existing edges of kind from source to target,
// for deterministic edge-ID disambiguation when the same call site
// repeats (spec §4.1's edge_id occurrence counter).
func occurrencesOf(edges []ir.Edge, kind ir.EdgeKind, sourceID, targetID string) int {
	count := 0
	for _, e := range edges {
		if e.Kind == kind && e.SourceID == sourceID && e.TargetID == targetID {
			count++
		}
	}
	return count
}

// findChildrenByType returns every direct child of node whose Type
// matches typ.
func findChildrenByType(node astsrc.ASTNode, typ string) []astsrc.ASTNode {
	var out []astsrc.ASTNode
	if node == nil || node.IsNull() {
		return out
	}
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && !child.IsNull() && child.Type() == typ {
			out = append(out, child)
		}
	}
	return out
}

// findChildByType returns the first direct child of node whose Type
// matches typ, or nil.
func findChildByType(node astsrc.ASTNode, typ string) astsrc.ASTNode {
	children := findChildrenByType(node, typ)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// children returns every direct child of node.
func children(node astsrc.ASTNode) []astsrc.ASTNode {
	var out []astsrc.ASTNode
	if node == nil || node.IsNull() {
		return out
	}
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && !child.IsNull() {
			out = append(out, child)
		}
	}
	return out
}
