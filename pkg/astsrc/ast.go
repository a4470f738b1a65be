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

package astsrc

import "context"

// Point is a 0-based row/column location, matching tree-sitter's native
// point representation.
type Point struct {
	Row    int
	Column int
}

// ASTNode is the narrow view of a parse-tree node a walker needs: type
// tag, child access by index or field name, byte offsets, and points.
// *TreeSitterNode satisfies this; tests can satisfy it with a fake.
type ASTNode interface {
	Type() string
	ChildCount() int
	Child(i int) ASTNode
	ChildByFieldName(name string) ASTNode
	StartByte() uint32
	EndByte() uint32
	StartPoint() Point
	EndPoint() Point
	IsNull() bool
}

// Tree is a parsed document. Root returns the top-level node; Close
// releases the tree-sitter tree's native resources and must be called
// once the walker is done with it.
type Tree interface {
	Root() ASTNode
	Close()
}

// Source is a single file as presented to the parse oracle and to the
// language walkers: its repo-relative path, language tag, and raw
// bytes.
type Source struct {
	Path     string
	Language string
	Content  []byte
}

// ParseOracle is the external parser the core IR pipeline consumes
// (spec §6's "Consumed interfaces — Parse oracle"). It is deliberately
// narrow: the pipeline never reaches into tree-sitter's own API.
type ParseOracle interface {
	// Parse produces a fresh parse tree for source.
	Parse(ctx context.Context, source Source) (Tree, error)

	// ParseIncremental reparses source given the previous content and
	// tree, for the cache stage's slow path when mtime changed but the
	// content may not have. oldTree may be nil, in which case this is
	// equivalent to Parse.
	ParseIncremental(ctx context.Context, source Source, oldContent []byte, oldTree Tree) (Tree, error)

	// SupportsLanguage reports whether this oracle has a grammar
	// registered for the given language tag.
	SupportsLanguage(language string) bool
}

// TypeInfoOracle is the optional external type-info source (spec §6):
// given a file and a span, return the inferred type as a string. Its
// absence is non-fatal — the type resolver (C3) simply never reaches
// EXTERNAL via this path and stops at RAW.
type TypeInfoOracle interface {
	InferType(ctx context.Context, filePath string, startLine, startCol, endLine, endCol int) (typ string, ok bool)
}

// Text returns the exact substring of content spanned by node,
// implementing C2's `text(node, bytes)` contract.
func Text(node ASTNode, content []byte) string {
	if node == nil || node.IsNull() {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}
