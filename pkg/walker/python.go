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

	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/scope"
	"github.com/kraklabs/irengine/pkg/typeresolve"
)

// pythonNodeTypeSets classifies Python's tree-sitter grammar node types
// into the branch/loop/try sets, grounded on original_source's
// `PYTHON_BRANCH_TYPES`/`PYTHON_LOOP_TYPES`/`PYTHON_TRY_TYPES`.
var pythonNodeTypeSets = NodeTypeSets{
	Branch: set("if_statement", "elif_clause", "match_statement", "case_clause"),
	Loop:   set("for_statement", "while_statement"),
	Try:    set("try_statement"),
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// pythonSkipParams mirrors original_source's SKIP_PARAMS: `self`/`cls`
// never get a Variable node since they name no new binding.
var pythonSkipParams = set("self", "cls")

// PythonWalker implements Walker for Python source, grounded on
// `_examples/original_source/src/foundation/generators/python_generator.py`.
type PythonWalker struct{}

// NewPythonWalker constructs a Python language walker.
func NewPythonWalker() *PythonWalker { return &PythonWalker{} }

// Language implements Walker.
func (w *PythonWalker) Language() string { return "python" }

type pythonCtx struct {
	repoID, snapshotID string
	source             astsrc.Source
	content            []byte
	resolver           *typeresolve.Resolver
	scope              *scope.Stack
	doc                *ir.IRDocument
}

// Generate implements Walker.
func (w *PythonWalker) Generate(ctx context.Context, repoID, snapshotID string, source astsrc.Source, tree astsrc.Tree, resolver *typeresolve.Resolver) (*ir.IRDocument, error) {
	moduleFQN := moduleFQNFromPath(source.Path, ".py")

	doc := &ir.IRDocument{
		RepoID:        repoID,
		SnapshotID:    snapshotID,
		SchemaVersion: "1.0.0",
		Meta: map[string]any{
			"file_path": source.Path,
			"language":  source.Language,
		},
	}

	pc := &pythonCtx{
		repoID: repoID, snapshotID: snapshotID,
		source: source, content: source.Content,
		resolver: resolver, doc: doc,
	}

	root := tree.Root()
	fileNode := pc.makeFileNode(root, moduleFQN)
	doc.Nodes = append(doc.Nodes, fileNode)

	pc.scope = scope.New(moduleFQN, fileNode.ID)
	resolver.ResetLocalClasses()

	for _, child := range children(root) {
		pc.dispatchTopLevel(child)
	}

	for _, sh := range pc.scope.Shadowings() {
		pc.addEdge(ir.EdgeShadows, sh.InnerNodeID, sh.OuterNodeID, nil, nil)
	}

	return doc, nil
}

func (pc *pythonCtx) makeFileNode(root astsrc.ASTNode, moduleFQN string) ir.Node {
	span := astsrc.NodeSpan(root)
	nodeID := ir.LogicalID(ir.KindFile, pc.repoID, pc.source.Path, moduleFQN)
	return ir.Node{
		ID: nodeID, StableID: ir.StableID(pc.repoID, ir.KindFile, moduleFQN, span, ""),
		Kind: ir.KindFile, FQN: moduleFQN, FilePath: pc.source.Path, Span: span,
		Language: pc.source.Language, ContentHash: ir.ContentHash(string(pc.content)),
		Attrs: map[string]any{"name": fileName(pc.source.Path), "is_test_file": isTestFile(pc.source.Path)},
	}
}

func (pc *pythonCtx) dispatchTopLevel(node astsrc.ASTNode) {
	switch node.Type() {
	case "class_definition":
		pc.processClass(node)
	case "function_definition":
		pc.processFunction(node, false)
	case "import_statement", "import_from_statement":
		pc.processImport(node)
	default:
		for _, child := range children(node) {
			pc.dispatchTopLevel(child)
		}
	}
}

func (pc *pythonCtx) text(node astsrc.ASTNode) string {
	return astsrc.Text(node, pc.content)
}

func (pc *pythonCtx) addEdge(kind ir.EdgeKind, sourceID, targetID string, span *ir.Span, attrs map[string]any) {
	occurrence := occurrencesOf(pc.doc.Edges, kind, sourceID, targetID)
	pc.doc.Edges = append(pc.doc.Edges, ir.Edge{
		ID: ir.EdgeID(kind, sourceID, targetID, occurrence), Kind: kind,
		SourceID: sourceID, TargetID: targetID, Span: span, Attrs: attrs,
	})
}

func (pc *pythonCtx) addContains(parentID, childID string, span ir.Span) {
	pc.addEdge(ir.EdgeContains, parentID, childID, &span, nil)
}

func (pc *pythonCtx) processClass(node astsrc.ASTNode) {
	nameNode := findChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	className := pc.text(nameNode)
	classFQN := pc.scope.BuildFQN(className)
	span := astsrc.NodeSpan(node)
	parentID := pc.scope.CurrentFrame().NodeID

	nodeID := ir.LogicalID(ir.KindClass, pc.repoID, pc.source.Path, classFQN)
	bodyNode := findChildByType(node, "block")
	var bodySpan *ir.Span
	if bodyNode != nil {
		s := astsrc.NodeSpan(bodyNode)
		bodySpan = &s
	}

	classNode := ir.Node{
		ID: nodeID, StableID: ir.StableID(pc.repoID, ir.KindClass, classFQN, span, ""),
		Kind: ir.KindClass, FQN: classFQN, FilePath: pc.source.Path, Span: span,
		Language: pc.source.Language, ParentID: parentID, BodySpan: bodySpan,
		ContentHash: ir.ContentHash(pc.text(node)),
		Attrs:       map[string]any{"name": className},
	}
	pc.doc.Nodes = append(pc.doc.Nodes, classNode)
	pc.addContains(parentID, nodeID, span)
	pc.scope.RegisterSymbol(className, "class", nodeID, span)
	pc.resolver.RegisterLocalClass(className, nodeID)

	pc.processSuperclasses(node, nodeID)

	pc.scope.Push(ir.KindClass, className, classFQN, nodeID)
	if bodyNode != nil {
		for _, child := range children(bodyNode) {
			if child.Type() == "function_definition" {
				pc.processFunction(child, true)
			} else if child.Type() == "expression_statement" {
				pc.processPotentialField(child, nodeID)
			}
		}
	}
	pc.scope.Pop()
}

// processSuperclasses emits INHERITS edges for `class Foo(Base1, Base2)`.
func (pc *pythonCtx) processSuperclasses(node astsrc.ASTNode, classID string) {
	argList := findChildByType(node, "argument_list")
	if argList == nil {
		return
	}
	span := astsrc.NodeSpan(argList)
	for _, arg := range children(argList) {
		if arg.Type() != "identifier" {
			continue
		}
		baseName := pc.text(arg)
		targetID := "class:" + pc.repoID + ":" + baseName
		pc.addEdge(ir.EdgeInherits, classID, targetID, &span, map[string]any{"base_name": baseName, "unresolved": true})
	}
}

func (pc *pythonCtx) processPotentialField(node astsrc.ASTNode, classID string) {
	assign := findChildByType(node, "assignment")
	if assign == nil {
		return
	}
	target := assign.ChildByFieldName("left")
	if target == nil || target.Type() != "identifier" {
		return
	}
	fieldName := pc.text(target)
	fieldFQN := pc.scope.BuildFQN(fieldName)
	span := astsrc.NodeSpan(target)
	nodeID := ir.LogicalID(ir.KindField, pc.repoID, pc.source.Path, fieldFQN)

	pc.doc.Nodes = append(pc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(pc.repoID, ir.KindField, fieldFQN, span, ""),
		Kind: ir.KindField, FQN: fieldFQN, FilePath: pc.source.Path, Span: span,
		Language: pc.source.Language, ParentID: classID,
		Attrs: map[string]any{"name": fieldName},
	})
	pc.addContains(classID, nodeID, span)
	pc.scope.RegisterSymbol(fieldName, "field", nodeID, span)
}

func (pc *pythonCtx) processFunction(node astsrc.ASTNode, isMethod bool) {
	nameNode := findChildByType(node, "identifier")
	if nameNode == nil {
		return
	}
	funcName := pc.text(nameNode)
	funcFQN := pc.scope.BuildFQN(funcName)
	kind := ir.KindFunction
	if isMethod {
		kind = ir.KindMethod
	}
	span := astsrc.NodeSpan(node)
	parentID := pc.scope.CurrentFrame().NodeID
	nodeID := ir.LogicalID(kind, pc.repoID, pc.source.Path, funcFQN)

	bodyNode := findChildByType(node, "block")
	var bodySpan *ir.Span
	var cfSummary *ir.ControlFlowSummary
	if bodyNode != nil {
		s := astsrc.NodeSpan(bodyNode)
		bodySpan = &s
		cfSummary = ControlFlowSummary(bodyNode, pythonNodeTypeSets)
		if cfg := BuildCFG(nodeID, bodyNode, pythonNodeTypeSets); cfg != nil {
			pc.doc.CFGs = append(pc.doc.CFGs, *cfg)
		}
	}

	funcNode := ir.Node{
		ID: nodeID, StableID: ir.StableID(pc.repoID, kind, funcFQN, span, ""),
		Kind: kind, FQN: funcFQN, FilePath: pc.source.Path, Span: span,
		Language: pc.source.Language, ParentID: parentID, BodySpan: bodySpan,
		ControlFlowSummary: cfSummary, ContentHash: ir.ContentHash(pc.text(node)),
		Attrs: map[string]any{"name": funcName},
	}
	pc.doc.Nodes = append(pc.doc.Nodes, funcNode)
	pc.addContains(parentID, nodeID, span)
	pc.scope.RegisterSymbol(funcName, "function", nodeID, span)

	pc.scope.Push(kind, funcName, funcFQN, nodeID)

	paramsNode := findChildByType(node, "parameters")
	var paramTypeIDs []string
	if paramsNode != nil {
		paramTypeIDs = pc.processParameters(paramsNode, nodeID)
	}

	reassignments := make(map[string]int)
	if bodyNode != nil {
		pc.processVariables(bodyNode, nodeID, reassignments)
		pc.processCalls(bodyNode, nodeID)
	}

	pc.scope.Pop()

	returnTypeID := ""
	if retNode := node.ChildByFieldName("return_type"); retNode != nil && !retNode.IsNull() {
		entity := pc.resolver.Resolve(pc.text(retNode))
		pc.registerType(entity)
		returnTypeID = entity.ID
	}

	sig := ir.SignatureEntity{
		Name: funcName, Raw: pc.text(node),
		ParameterTypeIDs: paramTypeIDs, ReturnTypeID: returnTypeID,
		SignatureHash: ir.SignatureHash(funcName, paramTypeIDs, returnTypeID, false, false),
	}
	sig.ID = ir.SignatureID(nodeID, funcName, paramTypeIDs, returnTypeID)
	sig.OwnerNodeID = nodeID
	pc.doc.Signatures = append(pc.doc.Signatures, sig)

	for i := range pc.doc.Nodes {
		if pc.doc.Nodes[i].ID == nodeID {
			pc.doc.Nodes[i].SignatureID = sig.ID
			break
		}
	}
}

func (pc *pythonCtx) registerType(entity ir.TypeEntity) {
	for _, existing := range pc.doc.Types {
		if existing.ID == entity.ID {
			return
		}
	}
	pc.doc.Types = append(pc.doc.Types, entity)
}

func (pc *pythonCtx) processParameters(paramsNode astsrc.ASTNode, functionID string) []string {
	var paramTypeIDs []string

	for _, child := range children(paramsNode) {
		var nameNode astsrc.ASTNode
		var typeNode astsrc.ASTNode

		switch child.Type() {
		case "identifier":
			nameNode = child
		case "typed_parameter":
			nameNode = findChildByType(child, "identifier")
			typeNode = child.ChildByFieldName("type")
		case "default_parameter", "typed_default_parameter":
			nameNode = child.ChildByFieldName("name")
			typeNode = child.ChildByFieldName("type")
		default:
			continue
		}
		if nameNode == nil {
			continue
		}
		paramName := pc.text(nameNode)
		if pythonSkipParams[paramName] {
			continue
		}

		paramFQN := pc.scope.BuildFQN(paramName)
		span := astsrc.NodeSpan(nameNode)
		nodeID := ir.LogicalID(ir.KindVariable, pc.repoID, pc.source.Path, paramFQN)

		var declaredTypeID string
		if typeNode != nil && !typeNode.IsNull() {
			entity := pc.resolver.Resolve(pc.text(typeNode))
			pc.registerType(entity)
			declaredTypeID = entity.ID
			paramTypeIDs = append(paramTypeIDs, declaredTypeID)
		}

		pc.doc.Nodes = append(pc.doc.Nodes, ir.Node{
			ID: nodeID, StableID: ir.StableID(pc.repoID, ir.KindVariable, paramFQN, span, ""),
			Kind: ir.KindVariable, FQN: paramFQN, FilePath: pc.source.Path, Span: span,
			Language: pc.source.Language, ParentID: functionID, DeclaredTypeID: declaredTypeID,
			Attrs: map[string]any{"name": paramName, "var_kind": "parameter"},
		})
		pc.addContains(functionID, nodeID, span)
		pc.scope.RegisterSymbol(paramName, "parameter", nodeID, span)
	}

	return paramTypeIDs
}

// processVariables walks assignment statements in a function body,
// creating a Variable node on first assignment and appending to
// `attrs.reassignments` on every subsequent one, per spec §4.5.
func (pc *pythonCtx) processVariables(body astsrc.ASTNode, functionID string, seen map[string]int) {
	stack := []astsrc.ASTNode{body}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type() == "assignment" {
			target := n.ChildByFieldName("left")
			if target != nil && !target.IsNull() && target.Type() == "identifier" {
				pc.recordAssignment(pc.text(target), target, functionID, seen)
			}
		}

		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && !child.IsNull() {
				stack = append(stack, child)
			}
		}
	}
}

func (pc *pythonCtx) recordAssignment(name string, target astsrc.ASTNode, functionID string, seen map[string]int) {
	span := astsrc.NodeSpan(target)

	if nodeID, ok := pc.scope.LookupSymbol(name); ok && seen[name] > 0 {
		for i := range pc.doc.Nodes {
			if pc.doc.Nodes[i].ID != nodeID {
				continue
			}
			n := &pc.doc.Nodes[i]
			if n.Attrs == nil {
				n.Attrs = map[string]any{}
			}
			reassignments, _ := n.Attrs["reassignments"].([]ir.Span)
			n.Attrs["reassignments"] = append(reassignments, span)
			break
		}
		seen[name]++
		return
	}

	varFQN := pc.scope.BuildFQN(name)
	nodeID := ir.LogicalID(ir.KindVariable, pc.repoID, pc.source.Path, varFQN)
	pc.doc.Nodes = append(pc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(pc.repoID, ir.KindVariable, varFQN, span, ""),
		Kind: ir.KindVariable, FQN: varFQN, FilePath: pc.source.Path, Span: span,
		Language: pc.source.Language, ParentID: functionID,
		Attrs: map[string]any{"name": name, "var_kind": "local"},
	})
	pc.addContains(functionID, nodeID, span)
	pc.scope.RegisterSymbol(name, "variable", nodeID, span)
	seen[name] = 1
}

// processCalls emits CALLS edges (unresolved=true) for every call
// expression found in a function body; resolution happens in the
// cross-file resolver stage (C9).
func (pc *pythonCtx) processCalls(body astsrc.ASTNode, callerID string) {
	stack := []astsrc.ASTNode{body}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type() == "call" {
			fn := n.ChildByFieldName("function")
			if fn != nil && !fn.IsNull() {
				calleeName := pc.text(fn)
				span := astsrc.NodeSpan(n)
				targetID := "unresolved:" + calleeName
				pc.addEdge(ir.EdgeCalls, callerID, targetID, &span, map[string]any{"callee_name": calleeName})
				pc.doc.Edges[len(pc.doc.Edges)-1].Unresolved = true
			}
		}

		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && !child.IsNull() {
				stack = append(stack, child)
			}
		}
	}
}

func (pc *pythonCtx) processImport(node astsrc.ASTNode) {
	switch node.Type() {
	case "import_statement":
		pc.processImportStatement(node)
	case "import_from_statement":
		pc.processImportFromStatement(node)
	}
}

func (pc *pythonCtx) processImportStatement(node astsrc.ASTNode) {
	for _, child := range children(node) {
		switch child.Type() {
		case "dotted_name":
			name := pc.text(child)
			pc.createImportNode(node, name, name)
		case "aliased_import":
			nameNode := findChildByType(child, "dotted_name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode != nil && aliasNode != nil {
				pc.createImportNode(node, pc.text(nameNode), pc.text(aliasNode))
			}
		}
	}
}

func (pc *pythonCtx) processImportFromStatement(node astsrc.ASTNode) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil || moduleNode.IsNull() {
		return
	}
	moduleName := pc.text(moduleNode)

	for _, child := range children(node) {
		switch child.Type() {
		case "dotted_name":
			if child == moduleNode {
				continue
			}
			symbol := pc.text(child)
			pc.createImportNode(node, moduleName+"."+symbol, symbol)
		case "aliased_import":
			nameNode := findChildByType(child, "dotted_name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode != nil && aliasNode != nil {
				symbol := pc.text(nameNode)
				pc.createImportNode(node, moduleName+"."+symbol, pc.text(aliasNode))
			}
		case "wildcard_import":
			pc.createImportNode(node, moduleName+".*", "*")
		}
	}
}

func (pc *pythonCtx) createImportNode(importNode astsrc.ASTNode, fullSymbol, alias string) {
	moduleFrame := pc.scope.CurrentFrame()
	importFQN := moduleFrame.FQN + ".__import__." + fullSymbol
	span := astsrc.NodeSpan(importNode)
	nodeID := ir.LogicalID(ir.KindImport, pc.repoID, pc.source.Path, importFQN)

	parentID := moduleFrame.NodeID

	pc.doc.Nodes = append(pc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(pc.repoID, ir.KindImport, importFQN, span, ""),
		Kind: ir.KindImport, FQN: importFQN, FilePath: pc.source.Path, Span: span,
		Language: pc.source.Language, ParentID: parentID,
		Attrs: map[string]any{
			"full_symbol": fullSymbol, "alias": alias, "is_wildcard": alias == "*",
		},
	})
	pc.addContains(parentID, nodeID, span)
	pc.scope.RegisterImport(alias, fullSymbol)

	targetID := "unresolved:" + fullSymbol
	pc.addEdge(ir.EdgeImports, parentID, targetID, &span, map[string]any{"full_symbol": fullSymbol, "alias": alias})
	pc.doc.Edges[len(pc.doc.Edges)-1].Unresolved = true
}
