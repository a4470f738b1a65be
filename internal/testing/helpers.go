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

package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/irengine/pkg/ir"
)

// WriteSourceFile writes content to dir/name, creating parent
// directories as needed, and returns the full path. The file is
// covered by the test's own TempDir cleanup.
func WriteSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", full, err)
	}
	return full
}

// FunctionNode builds a minimal externally-visible Function node for
// resolver/provenance fixtures.
func FunctionNode(id, fqn string) ir.Node {
	return ir.Node{ID: id, Kind: ir.KindFunction, FQN: fqn, FilePath: fqnFile(fqn)}
}

// MethodNode builds a minimal externally-visible Method node.
func MethodNode(id, fqn string) ir.Node {
	return ir.Node{ID: id, Kind: ir.KindMethod, FQN: fqn, FilePath: fqnFile(fqn)}
}

// ClassNode builds a minimal externally-visible Class node.
func ClassNode(id, fqn string) ir.Node {
	return ir.Node{ID: id, Kind: ir.KindClass, FQN: fqn, FilePath: fqnFile(fqn)}
}

// fqnFile derives a fake source path from the FQN's leading package
// segment, purely so fixtures have distinct, deterministic file paths
// for lexicographic tie-break assertions.
func fqnFile(fqn string) string {
	if i := indexOfDot(fqn); i >= 0 {
		return fqn[:i] + ".py"
	}
	return fqn + ".py"
}

func indexOfDot(s string) int {
	for i := range s {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// UnresolvedCallEdge builds a CALLS edge in the teacher's bool-marker
// unresolved convention, pointing at a synthetic "unresolved:" target.
func UnresolvedCallEdge(id, sourceID, calleeName string) ir.Edge {
	return ir.Edge{
		ID:         id,
		Kind:       ir.EdgeCalls,
		SourceID:   sourceID,
		TargetID:   "unresolved:" + calleeName,
		Unresolved: true,
		Attrs:      map[string]any{"callee_name": calleeName},
	}
}

// NewDocument assembles an *ir.IRDocument from a set of nodes, leaving
// Edges for the caller to append directly.
func NewDocument(nodes ...ir.Node) *ir.IRDocument {
	return &ir.IRDocument{Nodes: nodes}
}
