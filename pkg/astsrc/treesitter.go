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

import (
	"context"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TreeSitterOracle is the concrete ParseOracle backing the pipeline: one
// tree-sitter grammar per supported language, each wrapped in its own
// *sitter.Parser (parsers are not safe for concurrent reuse, so callers
// that parse in parallel should construct one oracle per worker, or
// guard calls with their own synchronization).
type TreeSitterOracle struct {
	logger  *slog.Logger
	parsers map[string]*sitter.Parser
}

// NewTreeSitterOracle builds an oracle with grammars registered for
// every language this pipeline walks: Python, Java, TypeScript, TSX,
// and JavaScript (JS/JSX share the JavaScript grammar). A nil logger
// defaults to slog.Default(), matching the teacher's convention.
func NewTreeSitterOracle(logger *slog.Logger) *TreeSitterOracle {
	if logger == nil {
		logger = slog.Default()
	}

	languages := map[string]func() *sitter.Language{
		"python":     python.GetLanguage,
		"java":       java.GetLanguage,
		"typescript": typescript.GetLanguage,
		"tsx":        tsx.GetLanguage,
		"javascript": javascript.GetLanguage,
	}

	parsers := make(map[string]*sitter.Parser, len(languages))
	for lang, getLang := range languages {
		p := sitter.NewParser()
		p.SetLanguage(getLang())
		parsers[lang] = p
	}

	return &TreeSitterOracle{logger: logger, parsers: parsers}
}

// SupportsLanguage implements ParseOracle.
func (o *TreeSitterOracle) SupportsLanguage(language string) bool {
	_, ok := o.parsers[language]
	return ok
}

// Parse implements ParseOracle.
func (o *TreeSitterOracle) Parse(ctx context.Context, source Source) (Tree, error) {
	parser, ok := o.parsers[source.Language]
	if !ok {
		return nil, fmt.Errorf("astsrc: no tree-sitter grammar registered for language %q", source.Language)
	}

	tree, err := parser.ParseCtx(ctx, nil, source.Content)
	if err != nil {
		return nil, fmt.Errorf("astsrc: tree-sitter parse %s: %w", source.Path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		o.logger.Warn("astsrc.parse.syntax_errors",
			"path", source.Path,
			"language", source.Language,
		)
	}

	return &treeSitterTree{tree: tree}, nil
}

// ParseIncremental implements ParseOracle. tree-sitter's incremental
// reparse requires the caller to have recorded edits on oldTree via
// sitter.Tree.Edit; since the cache stage's slow path only has "old
// content" and "new content" (not a structured edit), this computes the
// edit span as a single byte-range replacement covering the full
// differing region, which is enough to let tree-sitter reuse unaffected
// subtrees without requiring a diff algorithm upstream.
func (o *TreeSitterOracle) ParseIncremental(ctx context.Context, source Source, oldContent []byte, oldTree Tree) (Tree, error) {
	tst, ok := oldTree.(*treeSitterTree)
	if oldTree == nil || !ok {
		return o.Parse(ctx, source)
	}

	parser, ok := o.parsers[source.Language]
	if !ok {
		return nil, fmt.Errorf("astsrc: no tree-sitter grammar registered for language %q", source.Language)
	}

	editInputEdit(tst.tree, oldContent, source.Content)

	tree, err := parser.ParseCtx(ctx, tst.tree, source.Content)
	if err != nil {
		return nil, fmt.Errorf("astsrc: tree-sitter incremental parse %s: %w", source.Path, err)
	}
	return &treeSitterTree{tree: tree}, nil
}

// editInputEdit records a single input edit on tree spanning the first
// differing byte through the last differing byte (scanned from both
// ends), which is sufficient for tree-sitter to limit reparsing to the
// changed region.
func editInputEdit(tree *sitter.Tree, oldContent, newContent []byte) {
	prefix := commonPrefixLen(oldContent, newContent)
	oldSuffix := commonSuffixLen(oldContent[prefix:], newContent[prefix:])

	oldEnd := len(oldContent) - oldSuffix
	newEnd := len(newContent) - oldSuffix
	if oldEnd < prefix {
		oldEnd = prefix
	}
	if newEnd < prefix {
		newEnd = prefix
	}

	tree.Edit(sitter.EditInput{
		StartIndex:  uint32(prefix),
		OldEndIndex: uint32(oldEnd),
		NewEndIndex: uint32(newEnd),
	})
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

// treeSitterTree adapts *sitter.Tree to the Tree interface.
type treeSitterTree struct {
	tree *sitter.Tree
}

func (t *treeSitterTree) Root() ASTNode { return wrapNode(t.tree.RootNode()) }
func (t *treeSitterTree) Close()        { t.tree.Close() }

// treeSitterNode adapts *sitter.Node to the ASTNode interface.
type treeSitterNode struct {
	node *sitter.Node
}

func wrapNode(n *sitter.Node) ASTNode {
	if n == nil {
		return nil
	}
	return &treeSitterNode{node: n}
}

func (n *treeSitterNode) Type() string      { return n.node.Type() }
func (n *treeSitterNode) ChildCount() int   { return int(n.node.ChildCount()) }
func (n *treeSitterNode) StartByte() uint32 { return n.node.StartByte() }
func (n *treeSitterNode) EndByte() uint32   { return n.node.EndByte() }
func (n *treeSitterNode) IsNull() bool      { return n.node == nil }

func (n *treeSitterNode) Child(i int) ASTNode {
	if i < 0 || i >= int(n.node.ChildCount()) {
		return nil
	}
	return wrapNode(n.node.Child(i))
}

func (n *treeSitterNode) ChildByFieldName(name string) ASTNode {
	return wrapNode(n.node.ChildByFieldName(name))
}

func (n *treeSitterNode) StartPoint() Point {
	p := n.node.StartPoint()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

func (n *treeSitterNode) EndPoint() Point {
	p := n.node.EndPoint()
	return Point{Row: int(p.Row), Column: int(p.Column)}
}
