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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
)

func TestWriteSourceFile_CreatesNestedDirs(t *testing.T) {
	dir := t.TempDir()
	path := WriteSourceFile(t, dir, "pkg/a.py", "x = 1\n")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(content))
}

func TestFunctionNode_SetsKindAndFQN(t *testing.T) {
	n := FunctionNode("node:a:f", "a.f")
	assert.Equal(t, ir.KindFunction, n.Kind)
	assert.Equal(t, "a.f", n.FQN)
	assert.Equal(t, "a.py", n.FilePath)
}

func TestUnresolvedCallEdge_MarksUnresolved(t *testing.T) {
	e := UnresolvedCallEdge("e1", "node:a:caller", "helper")
	assert.True(t, e.Unresolved)
	assert.Equal(t, "helper", e.Attrs["callee_name"])
}

func TestNewDocument_CarriesNodes(t *testing.T) {
	doc := NewDocument(FunctionNode("node:a:f", "a.f"), ClassNode("node:a:C", "a.C"))
	assert.Len(t, doc.Nodes, 2)
}
