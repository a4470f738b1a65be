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
	"fmt"
	"strings"

	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/scope"
	"github.com/kraklabs/irengine/pkg/typeresolve"
)

// tsNodeTypeSets classifies TypeScript/JavaScript tree-sitter node
// types for control-flow summarization.
var tsNodeTypeSets = NodeTypeSets{
	Branch: set("if_statement", "switch_case", "ternary_expression"),
	Loop:   set("for_statement", "for_in_statement", "while_statement", "do_statement"),
	Try:    set("try_statement"),
}

// TypeScriptWalker implements Walker for TypeScript, TSX, and
// JavaScript source. Unlike PythonWalker/JavaWalker it has no
// `original_source` generator to ground on — no TypeScript/JavaScript
// equivalent exists anywhere in the retrieval pack's original
// implementation — so its node-type vocabulary (function_declaration,
// variable_declarator wrapping arrow_function/function_expression,
// method_definition, interface_declaration, type_alias_declaration)
// follows `kraklabs-cie`'s own `pkg/ingestion/parser_typescript.go` and
// `theRebelliousNerd-codenerd`'s `typescript_parser.go`, while the IR
// shape it emits (nodes/edges/scope/type resolution) follows this
// package's Python and Java walkers.
type TypeScriptWalker struct {
	lang string
}

// NewTypeScriptWalker constructs a walker for plain `.ts` source,
// parsed with the dedicated TypeScript grammar.
func NewTypeScriptWalker() *TypeScriptWalker { return &TypeScriptWalker{lang: "typescript"} }

// NewTSXWalker constructs a walker for `.tsx` source. It reuses
// TypeScriptWalker's node-type vocabulary unchanged — TSX's grammar
// only adds JSX productions on top of TypeScript's, which this walker
// never visits — but registers under the oracle's "tsx" grammar tag so
// `.tsx` files are parsed with the grammar built to disambiguate JSX
// tags from generic type arguments, rather than the plain TypeScript
// grammar which cannot.
func NewTSXWalker() *TypeScriptWalker { return &TypeScriptWalker{lang: "tsx"} }

// NewJavaScriptWalker constructs a walker for `.js`/`.jsx` source,
// parsed with the JavaScript grammar (which has no generic-type-
// argument syntax to confuse with JSX, so it needs no separate JSX
// variant the way TypeScript does).
func NewJavaScriptWalker() *TypeScriptWalker { return &TypeScriptWalker{lang: "javascript"} }

// Language implements Walker.
func (w *TypeScriptWalker) Language() string { return w.lang }

type tsCtx struct {
	repoID, snapshotID string
	source             astsrc.Source
	content            []byte
	resolver           *typeresolve.Resolver
	scope              *scope.Stack
	doc                *ir.IRDocument
	anonCounter        int
}

// Generate implements Walker.
func (w *TypeScriptWalker) Generate(ctx context.Context, repoID, snapshotID string, source astsrc.Source, tree astsrc.Tree, resolver *typeresolve.Resolver) (*ir.IRDocument, error) {
	root := tree.Root()

	tc := &tsCtx{
		repoID: repoID, snapshotID: snapshotID,
		source: source, content: source.Content, resolver: resolver,
		doc: &ir.IRDocument{
			RepoID: repoID, SnapshotID: snapshotID, SchemaVersion: "1.0.0",
			Meta: map[string]any{"file_path": source.Path, "language": source.Language},
		},
	}

	moduleFQN := moduleFQNFromPath(source.Path, extensionOf(source.Path))
	span := astsrc.NodeSpan(root)
	fileNodeID := ir.LogicalID(ir.KindFile, repoID, source.Path, source.Path)
	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: fileNodeID, StableID: ir.StableID(repoID, ir.KindFile, source.Path, span, ""),
		Kind: ir.KindFile, FQN: source.Path, FilePath: source.Path, Span: span,
		Language: source.Language, ContentHash: ir.ContentHash(string(source.Content)),
		Attrs: map[string]any{"name": fileName(source.Path), "is_test_file": isTestFile(source.Path)},
	})

	tc.scope = scope.New(moduleFQN, fileNodeID)
	resolver.ResetLocalClasses()

	for _, child := range children(root) {
		tc.dispatchTopLevel(child, fileNodeID)
	}

	for _, sh := range tc.scope.Shadowings() {
		tc.addEdge(ir.EdgeShadows, sh.InnerNodeID, sh.OuterNodeID, nil, nil)
	}

	return tc.doc, nil
}

func extensionOf(path string) string {
	for _, ext := range []string{".tsx", ".ts", ".jsx", ".js", ".mjs", ".cjs"} {
		if strings.HasSuffix(path, ext) {
			return ext
		}
	}
	return ""
}

func (tc *tsCtx) text(node astsrc.ASTNode) string { return astsrc.Text(node, tc.content) }

func (tc *tsCtx) addEdge(kind ir.EdgeKind, sourceID, targetID string, span *ir.Span, attrs map[string]any) {
	occurrence := occurrencesOf(tc.doc.Edges, kind, sourceID, targetID)
	tc.doc.Edges = append(tc.doc.Edges, ir.Edge{
		ID: ir.EdgeID(kind, sourceID, targetID, occurrence), Kind: kind,
		SourceID: sourceID, TargetID: targetID, Span: span, Attrs: attrs,
	})
}

func (tc *tsCtx) addContains(parentID, childID string, span ir.Span) {
	tc.addEdge(ir.EdgeContains, parentID, childID, &span, nil)
}

func (tc *tsCtx) dispatchTopLevel(node astsrc.ASTNode, parentID string) {
	switch node.Type() {
	case "class_declaration":
		tc.processClass(node, parentID)
	case "interface_declaration":
		tc.processInterface(node, parentID)
	case "type_alias_declaration":
		tc.processTypeAlias(node, parentID)
	case "function_declaration":
		tc.processFunction(node, parentID)
	case "lexical_declaration", "variable_declaration":
		for _, declarator := range findChildrenByType(node, "variable_declarator") {
			tc.processVariableDeclarator(declarator, parentID)
		}
	case "import_statement":
		tc.processImport(node, parentID)
	case "export_statement":
		for _, child := range children(node) {
			tc.dispatchTopLevel(child, parentID)
		}
	default:
		for _, child := range children(node) {
			tc.dispatchTopLevel(child, parentID)
		}
	}
}

func (tc *tsCtx) processImport(node astsrc.ASTNode, parentID string) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		sourceNode = findChildByType(node, "string")
	}
	if sourceNode == nil {
		return
	}
	modulePath := strings.Trim(tc.text(sourceNode), `"'`)

	span := astsrc.NodeSpan(node)
	importFQN := tc.scope.CurrentFrame().FQN + ".__import__." + modulePath
	nodeID := ir.LogicalID(ir.KindImport, tc.repoID, tc.source.Path, importFQN)

	names := tc.importedNames(node)
	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindImport, importFQN, span, ""),
		Kind: ir.KindImport, FQN: importFQN, FilePath: tc.source.Path, Span: span,
		Language: tc.source.Language, ParentID: parentID,
		Attrs: map[string]any{"module": modulePath, "names": names},
	})
	tc.addContains(parentID, nodeID, span)

	for _, n := range names {
		tc.scope.RegisterImport(n, modulePath+"."+n)
	}
	if len(names) == 0 {
		tc.scope.RegisterImport(modulePath, modulePath)
	}

	targetID := "unresolved:" + modulePath
	tc.addEdge(ir.EdgeImports, parentID, targetID, &span, map[string]any{"module": modulePath, "names": names})
	tc.doc.Edges[len(tc.doc.Edges)-1].Unresolved = true
}

func (tc *tsCtx) importedNames(node astsrc.ASTNode) []string {
	var names []string
	clause := findChildByType(node, "import_clause")
	if clause == nil {
		return names
	}
	var walk func(n astsrc.ASTNode)
	walk = func(n astsrc.ASTNode) {
		switch n.Type() {
		case "identifier":
			names = append(names, tc.text(n))
		case "import_specifier":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil && !nameNode.IsNull() {
				alias := tc.text(nameNode)
				if aliasNode := n.ChildByFieldName("alias"); aliasNode != nil && !aliasNode.IsNull() {
					alias = tc.text(aliasNode)
				}
				names = append(names, alias)
			}
		default:
			for _, c := range children(n) {
				walk(c)
			}
		}
	}
	walk(clause)
	return names
}

func (tc *tsCtx) processClass(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	className := tc.text(nameNode)
	classFQN := tc.scope.BuildFQN(className)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindClass, tc.repoID, tc.source.Path, classFQN)

	bodyNode := node.ChildByFieldName("body")
	var bodySpan *ir.Span
	if bodyNode != nil && !bodyNode.IsNull() {
		s := astsrc.NodeSpan(bodyNode)
		bodySpan = &s
	}

	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindClass, classFQN, span, ""),
		Kind: ir.KindClass, FQN: classFQN, FilePath: tc.source.Path, Span: span,
		Language: tc.source.Language, ParentID: parentID, BodySpan: bodySpan,
		ContentHash: ir.ContentHash(tc.text(node)),
		Attrs:       map[string]any{"name": className},
	})
	tc.addContains(parentID, nodeID, span)
	tc.scope.RegisterSymbol(className, "class", nodeID, span)
	tc.resolver.RegisterLocalClass(className, nodeID)

	tc.processHeritage(node, nodeID)

	tc.scope.Push(ir.KindClass, className, classFQN, nodeID)
	if bodyNode != nil && !bodyNode.IsNull() {
		for _, member := range children(bodyNode) {
			switch member.Type() {
			case "method_definition":
				tc.processMethod(member, nodeID)
			case "public_field_definition", "property_signature", "field_definition":
				tc.processField(member, nodeID)
			}
		}
	}
	tc.scope.Pop()
}

// processHeritage emits INHERITS/IMPLEMENTS edges from a
// `class_heritage` child wrapping `extends_clause`/`implements_clause`
// nodes (TypeScript grammar's class-heritage shape).
func (tc *tsCtx) processHeritage(node astsrc.ASTNode, classID string) {
	heritage := findChildByType(node, "class_heritage")
	if heritage == nil {
		return
	}
	span := astsrc.NodeSpan(heritage)
	for _, clause := range children(heritage) {
		switch clause.Type() {
		case "extends_clause":
			for _, t := range children(clause) {
				if t.Type() == "extends" {
					continue
				}
				base := tc.text(t)
				if base == "" {
					continue
				}
				targetID := "class:" + tc.repoID + ":" + base
				tc.addEdge(ir.EdgeInherits, classID, targetID, &span, map[string]any{"base_name": base, "unresolved": true})
			}
		case "implements_clause":
			for _, t := range children(clause) {
				if t.Type() == "implements" {
					continue
				}
				iface := tc.text(t)
				if iface == "" {
					continue
				}
				targetID := "interface:" + tc.repoID + ":" + iface
				tc.addEdge(ir.EdgeImplements, classID, targetID, &span, map[string]any{"interface_name": iface, "unresolved": true})
			}
		}
	}
}

func (tc *tsCtx) processInterface(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := tc.text(nameNode)
	fqn := tc.scope.BuildFQN(name)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindInterface, tc.repoID, tc.source.Path, fqn)

	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindInterface, fqn, span, ""),
		Kind: ir.KindInterface, FQN: fqn, FilePath: tc.source.Path, Span: span,
		Language: tc.source.Language, ParentID: parentID, ContentHash: ir.ContentHash(tc.text(node)),
		Attrs: map[string]any{"name": name},
	})
	tc.addContains(parentID, nodeID, span)
	tc.scope.RegisterSymbol(name, "interface", nodeID, span)
	tc.resolver.RegisterLocalClass(name, nodeID)

	if extends := findChildByType(node, "extends_type_clause"); extends != nil {
		espan := astsrc.NodeSpan(extends)
		for _, t := range children(extends) {
			if t.Type() == "extends" {
				continue
			}
			base := tc.text(t)
			if base == "" {
				continue
			}
			targetID := "interface:" + tc.repoID + ":" + base
			tc.addEdge(ir.EdgeInherits, nodeID, targetID, &espan, map[string]any{"base_name": base, "unresolved": true})
		}
	}

	body := node.ChildByFieldName("body")
	tc.scope.Push(ir.KindInterface, name, fqn, nodeID)
	if body != nil && !body.IsNull() {
		for _, member := range children(body) {
			if member.Type() == "method_signature" {
				tc.processMethod(member, nodeID)
			} else if member.Type() == "property_signature" {
				tc.processField(member, nodeID)
			}
		}
	}
	tc.scope.Pop()
}

func (tc *tsCtx) processTypeAlias(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := tc.text(nameNode)
	fqn := tc.scope.BuildFQN(name)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindClass, tc.repoID, tc.source.Path, fqn)

	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindClass, fqn, span, ""),
		Kind: ir.KindClass, FQN: fqn, FilePath: tc.source.Path, Span: span,
		Language: tc.source.Language, ParentID: parentID, ContentHash: ir.ContentHash(tc.text(node)),
		Attrs: map[string]any{"name": name, "is_type_alias": true},
	})
	tc.addContains(parentID, nodeID, span)
	tc.scope.RegisterSymbol(name, "type_alias", nodeID, span)
	tc.resolver.RegisterLocalClass(name, nodeID)
}

func (tc *tsCtx) paramSignature(paramsNode astsrc.ASTNode) string {
	if paramsNode == nil || paramsNode.IsNull() {
		return "()"
	}
	var parts []string
	for _, p := range children(paramsNode) {
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			if typeAnnotation := findChildByType(p, "type_annotation"); typeAnnotation != nil {
				parts = append(parts, strings.TrimPrefix(tc.text(typeAnnotation), ":"))
			} else {
				parts = append(parts, "any")
			}
		case "rest_pattern":
			parts = append(parts, "any…")
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func (tc *tsCtx) processFunction(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	tc.buildFunctionNode(node, nameNode, parentID, ir.KindFunction, false)
}

func (tc *tsCtx) processMethod(node astsrc.ASTNode, classID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	isStatic := false
	for _, child := range children(node) {
		if child.Type() == "static" {
			isStatic = true
		}
	}
	tc.buildFunctionNode(node, nameNode, classID, ir.KindMethod, isStatic)
}

func (tc *tsCtx) buildFunctionNode(node, nameNode astsrc.ASTNode, parentID string, kind ir.NodeKind, isStatic bool) {
	name := tc.text(nameNode)
	paramsNode := node.ChildByFieldName("parameters")
	paramSig := tc.paramSignature(paramsNode)
	fqn := tc.scope.BuildFQN(name) + paramSig
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(kind, tc.repoID, tc.source.Path, fqn)

	bodyNode := node.ChildByFieldName("body")
	var bodySpan *ir.Span
	var cfSummary *ir.ControlFlowSummary
	if bodyNode != nil && !bodyNode.IsNull() {
		s := astsrc.NodeSpan(bodyNode)
		bodySpan = &s
		cfSummary = ControlFlowSummary(bodyNode, tsNodeTypeSets)
		if cfg := BuildCFG(nodeID, bodyNode, tsNodeTypeSets); cfg != nil {
			tc.doc.CFGs = append(tc.doc.CFGs, *cfg)
		}
	}

	isAsync := false
	for _, child := range children(node) {
		if child.Type() == "async" {
			isAsync = true
		}
	}

	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(tc.repoID, kind, fqn, span, ""),
		Kind: kind, FQN: fqn, FilePath: tc.source.Path, Span: span,
		Language: tc.source.Language, ParentID: parentID, BodySpan: bodySpan,
		ControlFlowSummary: cfSummary, ContentHash: ir.ContentHash(tc.text(node)),
		Attrs: map[string]any{"name": name, "is_static": isStatic, "is_async": isAsync},
	})
	tc.addContains(parentID, nodeID, span)
	tc.scope.RegisterSymbol(name, "function", nodeID, span)

	tc.scope.Push(kind, name, fqn, nodeID)
	var paramTypeIDs []string
	if paramsNode != nil && !paramsNode.IsNull() {
		paramTypeIDs = tc.processParameters(paramsNode, nodeID)
	}
	if bodyNode != nil && !bodyNode.IsNull() {
		tc.processFunctionBody(bodyNode, nodeID)
	}
	tc.scope.Pop()

	returnTypeID := ""
	if retNode := node.ChildByFieldName("return_type"); retNode != nil && !retNode.IsNull() {
		raw := strings.TrimPrefix(tc.text(retNode), ":")
		entity := tc.resolver.Resolve(strings.TrimSpace(raw))
		tc.registerType(entity)
		returnTypeID = entity.ID
	}

	sig := ir.SignatureEntity{
		Name: name, Raw: tc.text(node), IsAsync: isAsync, IsStatic: isStatic,
		ParameterTypeIDs: paramTypeIDs, ReturnTypeID: returnTypeID,
		SignatureHash: ir.SignatureHash(name, paramTypeIDs, returnTypeID, isAsync, isStatic),
	}
	sig.ID = ir.SignatureID(nodeID, name, paramTypeIDs, returnTypeID)
	sig.OwnerNodeID = nodeID
	tc.doc.Signatures = append(tc.doc.Signatures, sig)

	for i := range tc.doc.Nodes {
		if tc.doc.Nodes[i].ID == nodeID {
			tc.doc.Nodes[i].SignatureID = sig.ID
			break
		}
	}
}

func (tc *tsCtx) registerType(entity ir.TypeEntity) {
	for _, existing := range tc.doc.Types {
		if existing.ID == entity.ID {
			return
		}
	}
	tc.doc.Types = append(tc.doc.Types, entity)
}

func (tc *tsCtx) processParameters(paramsNode astsrc.ASTNode, ownerID string) []string {
	var paramTypeIDs []string
	for _, p := range children(paramsNode) {
		var nameNode, typeAnnotation astsrc.ASTNode
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			nameNode = p.ChildByFieldName("pattern")
			typeAnnotation = findChildByType(p, "type_annotation")
		case "identifier":
			nameNode = p
		case "rest_pattern":
			nameNode = findChildByType(p, "identifier")
		default:
			continue
		}
		if nameNode == nil || nameNode.IsNull() {
			continue
		}
		paramName := tc.text(nameNode)
		paramFQN := tc.scope.BuildFQN(paramName)
		span := astsrc.NodeSpan(nameNode)
		nodeID := ir.LogicalID(ir.KindVariable, tc.repoID, tc.source.Path, paramFQN)

		var declaredTypeID string
		if typeAnnotation != nil {
			raw := strings.TrimPrefix(tc.text(typeAnnotation), ":")
			entity := tc.resolver.Resolve(strings.TrimSpace(raw))
			tc.registerType(entity)
			declaredTypeID = entity.ID
			paramTypeIDs = append(paramTypeIDs, declaredTypeID)
		} else {
			paramTypeIDs = append(paramTypeIDs, "")
		}

		tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
			ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindVariable, paramFQN, span, ""),
			Kind: ir.KindVariable, FQN: paramFQN, FilePath: tc.source.Path, Span: span,
			Language: tc.source.Language, ParentID: ownerID, DeclaredTypeID: declaredTypeID,
			Attrs: map[string]any{"name": paramName, "var_kind": "parameter"},
		})
		tc.addContains(ownerID, nodeID, span)
		tc.scope.RegisterSymbol(paramName, "parameter", nodeID, span)
	}
	return paramTypeIDs
}

func (tc *tsCtx) processField(node astsrc.ASTNode, classID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || nameNode.IsNull() {
		return
	}
	fieldName := tc.text(nameNode)
	fieldFQN := tc.scope.BuildFQN(fieldName)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindField, tc.repoID, tc.source.Path, fieldFQN)

	var declaredTypeID string
	if typeAnnotation := findChildByType(node, "type_annotation"); typeAnnotation != nil {
		raw := strings.TrimPrefix(tc.text(typeAnnotation), ":")
		entity := tc.resolver.Resolve(strings.TrimSpace(raw))
		tc.registerType(entity)
		declaredTypeID = entity.ID
	}

	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindField, fieldFQN, span, ""),
		Kind: ir.KindField, FQN: fieldFQN, FilePath: tc.source.Path, Span: span,
		Language: tc.source.Language, ParentID: classID, DeclaredTypeID: declaredTypeID,
		Attrs: map[string]any{"name": fieldName},
	})
	tc.addContains(classID, nodeID, span)
	tc.scope.RegisterSymbol(fieldName, "field", nodeID, span)
}

// processVariableDeclarator handles top-level `const x = ...`,
// distinguishing an arrow/function-expression binding (emitted as a
// Function node, per `parser_typescript.go`'s `walkTSFunctions`) from a
// plain value binding (emitted as a Variable node).
func (tc *tsCtx) processVariableDeclarator(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	valueNode := node.ChildByFieldName("value")
	if nameNode == nil {
		return
	}
	if valueNode != nil && !valueNode.IsNull() {
		switch valueNode.Type() {
		case "arrow_function", "function_expression", "function":
			tc.buildFunctionNode(valueNode, nameNode, parentID, ir.KindFunction, false)
			return
		}
	}

	varName := tc.text(nameNode)
	varFQN := tc.scope.BuildFQN(varName)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindVariable, tc.repoID, tc.source.Path, varFQN)

	tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindVariable, varFQN, span, ""),
		Kind: ir.KindVariable, FQN: varFQN, FilePath: tc.source.Path, Span: span,
		Language: tc.source.Language, ParentID: parentID,
		Attrs: map[string]any{"name": varName, "var_kind": "local"},
	})
	tc.addContains(parentID, nodeID, span)
	tc.scope.RegisterSymbol(varName, "variable", nodeID, span)
}

// processFunctionBody walks statements for calls and nested anonymous
// arrow functions not bound to a name (`setTimeout(() => {...})`),
// mirroring `walkTSFunctions`'s anonymous-arrow counter.
func (tc *tsCtx) processFunctionBody(body astsrc.ASTNode, ownerID string) {
	stack := []astsrc.ASTNode{body}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type() {
		case "arrow_function", "function_expression":
			tc.anonCounter++
			anonName := fmt.Sprintf("<anonymous%d>", tc.anonCounter)
			span := astsrc.NodeSpan(n)
			fqn := tc.scope.BuildFQN(anonName) + tc.paramSignature(n.ChildByFieldName("parameters"))
			nodeID := ir.LogicalID(ir.KindLambda, tc.repoID, tc.source.Path, fqn)
			bodyNode := n.ChildByFieldName("body")
			var bodySpan *ir.Span
			var cf *ir.ControlFlowSummary
			if bodyNode != nil && !bodyNode.IsNull() {
				s := astsrc.NodeSpan(bodyNode)
				bodySpan = &s
				cf = ControlFlowSummary(bodyNode, tsNodeTypeSets)
				if cfg := BuildCFG(nodeID, bodyNode, tsNodeTypeSets); cfg != nil {
					tc.doc.CFGs = append(tc.doc.CFGs, *cfg)
				}
			}
			tc.doc.Nodes = append(tc.doc.Nodes, ir.Node{
				ID: nodeID, StableID: ir.StableID(tc.repoID, ir.KindLambda, fqn, span, ""),
				Kind: ir.KindLambda, FQN: fqn, FilePath: tc.source.Path, Span: span,
				Language: tc.source.Language, ParentID: ownerID, BodySpan: bodySpan,
				ControlFlowSummary: cf, Attrs: map[string]any{"is_lambda": true},
			})
			tc.addContains(ownerID, nodeID, span)
			if bodyNode != nil && !bodyNode.IsNull() {
				tc.scope.Push(ir.KindLambda, anonName, fqn, nodeID)
				tc.processFunctionBody(bodyNode, nodeID)
				tc.scope.Pop()
			}
			continue
		case "call_expression":
			tc.processCall(n, ownerID)
		}

		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && !child.IsNull() {
				stack = append(stack, child)
			}
		}
	}
}

func (tc *tsCtx) processCall(node astsrc.ASTNode, callerID string) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil || fnNode.IsNull() {
		return
	}
	calleeName := tc.text(fnNode)
	if calleeName == "" {
		return
	}
	span := astsrc.NodeSpan(node)
	targetID := "unresolved:" + calleeName
	tc.addEdge(ir.EdgeCalls, callerID, targetID, &span, map[string]any{"callee_name": calleeName})
	tc.doc.Edges[len(tc.doc.Edges)-1].Unresolved = true
}
