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
	"regexp"
	"strings"

	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/scope"
	"github.com/kraklabs/irengine/pkg/typeresolve"
)

// javaNodeTypeSets classifies Java's tree-sitter grammar node types,
// grounded on original_source's JAVA_BRANCH_TYPES/JAVA_LOOP_TYPES/
// JAVA_TRY_TYPES (java_generator.py).
var javaNodeTypeSets = NodeTypeSets{
	Branch: set("if_statement", "switch_expression", "switch_block_statement_group", "ternary_expression"),
	Loop:   set("for_statement", "while_statement", "do_statement", "enhanced_for_statement"),
	Try:    set("try_statement", "try_with_resources_statement"),
}

var javaKeywords = set("this", "super", "new", "return", "throw", "null", "true", "false")

// JavaWalker implements Walker for Java source, grounded on
// `_examples/original_source/src/contexts/code_foundation/infrastructure/
// generators/java_generator.py`: overload-aware method FQNs, lambda
// capture analysis, method-reference classification, and exception
// propagation.
type JavaWalker struct{}

// NewJavaWalker constructs a Java language walker.
func NewJavaWalker() *JavaWalker { return &JavaWalker{} }

// Language implements Walker.
func (w *JavaWalker) Language() string { return "java" }

type javaCtx struct {
	repoID, snapshotID string
	source             astsrc.Source
	content            []byte
	resolver           *typeresolve.Resolver
	scope              *scope.Stack
	doc                *ir.IRDocument
	pkg                string
}

// Generate implements Walker.
func (w *JavaWalker) Generate(ctx context.Context, repoID, snapshotID string, source astsrc.Source, tree astsrc.Tree, resolver *typeresolve.Resolver) (*ir.IRDocument, error) {
	root := tree.Root()

	jc := &javaCtx{
		repoID: repoID, snapshotID: snapshotID,
		source: source, content: source.Content, resolver: resolver,
		doc: &ir.IRDocument{
			RepoID: repoID, SnapshotID: snapshotID, SchemaVersion: "1.0.0",
			Meta: map[string]any{"file_path": source.Path, "language": source.Language},
		},
	}

	jc.pkg = jc.extractPackage(root)
	// A Java type's FQN is its package plus its name, and the file path
	// already ends in the class name, so the package is the module scope
	// (empty for the default package).
	moduleFQN := jc.pkg

	span := astsrc.NodeSpan(root)
	fileNodeID := ir.LogicalID(ir.KindFile, repoID, source.Path, source.Path)
	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: fileNodeID, StableID: ir.StableID(repoID, ir.KindFile, source.Path, span, ""),
		Kind: ir.KindFile, FQN: source.Path, FilePath: source.Path, Span: span,
		Language: source.Language, ContentHash: ir.ContentHash(string(source.Content)),
		Attrs: map[string]any{"name": fileName(source.Path), "is_test_file": isTestFile(source.Path), "package": jc.pkg},
	})

	jc.scope = scope.New(moduleFQN, fileNodeID)
	resolver.ResetLocalClasses()

	for _, child := range children(root) {
		jc.dispatchTopLevel(child, fileNodeID)
	}

	for _, sh := range jc.scope.Shadowings() {
		jc.addEdge(ir.EdgeShadows, sh.InnerNodeID, sh.OuterNodeID, nil, nil)
	}

	return jc.doc, nil
}

func (jc *javaCtx) extractPackage(root astsrc.ASTNode) string {
	decl := findChildByType(root, "package_declaration")
	if decl == nil {
		return ""
	}
	for _, child := range children(decl) {
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			return jc.text(child)
		}
	}
	return ""
}

func (jc *javaCtx) text(node astsrc.ASTNode) string { return astsrc.Text(node, jc.content) }

func (jc *javaCtx) addEdge(kind ir.EdgeKind, sourceID, targetID string, span *ir.Span, attrs map[string]any) {
	occurrence := occurrencesOf(jc.doc.Edges, kind, sourceID, targetID)
	jc.doc.Edges = append(jc.doc.Edges, ir.Edge{
		ID: ir.EdgeID(kind, sourceID, targetID, occurrence), Kind: kind,
		SourceID: sourceID, TargetID: targetID, Span: span, Attrs: attrs,
	})
}

func (jc *javaCtx) addContains(parentID, childID string, span ir.Span) {
	jc.addEdge(ir.EdgeContains, parentID, childID, &span, nil)
}

func (jc *javaCtx) dispatchTopLevel(node astsrc.ASTNode, parentID string) {
	switch node.Type() {
	case "class_declaration":
		jc.processClass(node, parentID)
	case "interface_declaration":
		jc.processInterface(node, parentID)
	case "enum_declaration":
		jc.processEnum(node, parentID)
	case "import_declaration":
		jc.processImport(node, parentID)
	default:
		for _, child := range children(node) {
			jc.dispatchTopLevel(child, parentID)
		}
	}
}

func (jc *javaCtx) processImport(node astsrc.ASTNode, parentID string) {
	var fqn string
	alias := ""
	for _, child := range children(node) {
		switch child.Type() {
		case "scoped_identifier", "identifier":
			fqn = jc.text(child)
		case "asterisk":
			fqn += ".*"
		}
	}
	if fqn == "" {
		return
	}
	if i := strings.LastIndex(fqn, "."); i >= 0 {
		alias = fqn[i+1:]
	} else {
		alias = fqn
	}

	importFQN := jc.scope.CurrentFrame().FQN + ".__import__." + fqn
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindImport, jc.repoID, jc.source.Path, importFQN)

	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindImport, importFQN, span, ""),
		Kind: ir.KindImport, FQN: importFQN, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: parentID,
		Attrs: map[string]any{"full_symbol": fqn, "alias": alias, "is_wildcard": strings.HasSuffix(fqn, "*")},
	})
	jc.addContains(parentID, nodeID, span)
	jc.scope.RegisterImport(alias, fqn)

	targetID := "unresolved:" + fqn
	jc.addEdge(ir.EdgeImports, parentID, targetID, &span, map[string]any{"full_symbol": fqn, "alias": alias})
	jc.doc.Edges[len(jc.doc.Edges)-1].Unresolved = true
}

func (jc *javaCtx) processClass(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	className := jc.text(nameNode)
	classFQN := jc.scope.BuildFQN(className)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindClass, jc.repoID, jc.source.Path, classFQN)

	bodyNode := node.ChildByFieldName("body")
	var bodySpan *ir.Span
	if bodyNode != nil && !bodyNode.IsNull() {
		s := astsrc.NodeSpan(bodyNode)
		bodySpan = &s
	}

	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindClass, classFQN, span, ""),
		Kind: ir.KindClass, FQN: classFQN, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: parentID, BodySpan: bodySpan,
		ContentHash: ir.ContentHash(jc.text(node)),
		Attrs:       map[string]any{"name": className},
	})
	jc.addContains(parentID, nodeID, span)
	jc.scope.RegisterSymbol(className, "class", nodeID, span)
	jc.resolver.RegisterLocalClass(className, nodeID)

	jc.processInheritance(node, nodeID)

	jc.scope.Push(ir.KindClass, className, classFQN, nodeID)
	if bodyNode != nil && !bodyNode.IsNull() {
		for _, child := range children(bodyNode) {
			switch child.Type() {
			case "method_declaration":
				jc.processMethod(child, nodeID, className)
			case "constructor_declaration":
				jc.processMethod(child, nodeID, className)
			case "field_declaration":
				jc.processField(child, nodeID)
			case "class_declaration":
				jc.processClass(child, nodeID)
			case "interface_declaration":
				jc.processInterface(child, nodeID)
			case "enum_declaration":
				jc.processEnum(child, nodeID)
			}
		}
	}
	jc.scope.Pop()
}

func (jc *javaCtx) processInterface(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := jc.text(nameNode)
	fqn := jc.scope.BuildFQN(name)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindInterface, jc.repoID, jc.source.Path, fqn)

	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindInterface, fqn, span, ""),
		Kind: ir.KindInterface, FQN: fqn, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: parentID, ContentHash: ir.ContentHash(jc.text(node)),
		Attrs: map[string]any{"name": name},
	})
	jc.addContains(parentID, nodeID, span)
	jc.scope.RegisterSymbol(name, "interface", nodeID, span)
	jc.resolver.RegisterLocalClass(name, nodeID)

	extendsNode := findChildByType(node, "extends_interfaces")
	if extendsNode != nil {
		espan := astsrc.NodeSpan(extendsNode)
		for _, t := range children(extendsNode) {
			if t.Type() == "type_list" {
				for _, baseType := range children(t) {
					base := jc.text(baseType)
					targetID := "interface:" + jc.repoID + ":" + base
					jc.addEdge(ir.EdgeInherits, nodeID, targetID, &espan, map[string]any{"base_name": base, "unresolved": true})
				}
			}
		}
	}

	bodyNode := node.ChildByFieldName("body")
	jc.scope.Push(ir.KindInterface, name, fqn, nodeID)
	if bodyNode != nil && !bodyNode.IsNull() {
		for _, child := range children(bodyNode) {
			if child.Type() == "method_declaration" {
				jc.processMethod(child, nodeID, name)
			}
		}
	}
	jc.scope.Pop()
}

func (jc *javaCtx) processEnum(node astsrc.ASTNode, parentID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := jc.text(nameNode)
	fqn := jc.scope.BuildFQN(name)
	span := astsrc.NodeSpan(node)
	nodeID := ir.LogicalID(ir.KindEnum, jc.repoID, jc.source.Path, fqn)

	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindEnum, fqn, span, ""),
		Kind: ir.KindEnum, FQN: fqn, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: parentID, ContentHash: ir.ContentHash(jc.text(node)),
		Attrs: map[string]any{"name": name},
	})
	jc.addContains(parentID, nodeID, span)
	jc.scope.RegisterSymbol(name, "enum", nodeID, span)
	jc.resolver.RegisterLocalClass(name, nodeID)

	body := findChildByType(node, "enum_body")
	if body == nil {
		return
	}
	for _, constant := range children(body) {
		if constant.Type() != "enum_constant" {
			continue
		}
		constName := constant.Type()
		if nameNode := constant.ChildByFieldName("name"); nameNode != nil && !nameNode.IsNull() {
			constName = jc.text(nameNode)
		} else {
			constName = jc.text(constant)
		}
		constFQN := fqn + "." + constName
		cspan := astsrc.NodeSpan(constant)
		constID := ir.LogicalID(ir.KindField, jc.repoID, jc.source.Path, constFQN)
		jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
			ID: constID, StableID: ir.StableID(jc.repoID, ir.KindField, constFQN, cspan, ""),
			Kind: ir.KindField, FQN: constFQN, FilePath: jc.source.Path, Span: cspan,
			Language: jc.source.Language, ParentID: nodeID,
			Attrs: map[string]any{"name": constName, "is_enum_constant": true},
		})
		jc.addContains(nodeID, constID, cspan)
	}
}

// processInheritance emits INHERITS (superclass) and IMPLEMENTS
// (interfaces) edges, grounded on java_generator.py's
// `_process_inheritance`.
func (jc *javaCtx) processInheritance(node astsrc.ASTNode, classID string) {
	if superclass := findChildByType(node, "superclass"); superclass != nil {
		span := astsrc.NodeSpan(superclass)
		if typeNode := superclass.ChildByFieldName("type"); typeNode != nil && !typeNode.IsNull() {
			base := jc.text(typeNode)
			targetID := "class:" + jc.repoID + ":" + base
			jc.addEdge(ir.EdgeInherits, classID, targetID, &span, map[string]any{"base_name": base, "unresolved": true})
		} else {
			for _, t := range children(superclass) {
				if t.Type() == "extends" {
					continue
				}
				base := jc.text(t)
				if base == "" {
					continue
				}
				targetID := "class:" + jc.repoID + ":" + base
				jc.addEdge(ir.EdgeInherits, classID, targetID, &span, map[string]any{"base_name": base, "unresolved": true})
			}
		}
	}
	if interfaces := findChildByType(node, "super_interfaces"); interfaces != nil {
		span := astsrc.NodeSpan(interfaces)
		for _, t := range children(interfaces) {
			if t.Type() != "type_list" {
				continue
			}
			for _, iface := range children(t) {
				name := jc.text(iface)
				targetID := "interface:" + jc.repoID + ":" + name
				jc.addEdge(ir.EdgeImplements, classID, targetID, &span, map[string]any{"interface_name": name, "unresolved": true})
			}
		}
	}
}

// paramSignature builds the `(int,String)` overload-disambiguation
// suffix, per spec §4.5: "varargs marked with …, generic type args
// preserved in their source form".
func (jc *javaCtx) paramSignature(paramsNode astsrc.ASTNode) string {
	if paramsNode == nil || paramsNode.IsNull() {
		return "()"
	}
	var parts []string
	for _, p := range children(paramsNode) {
		switch p.Type() {
		case "formal_parameter":
			if typeNode := p.ChildByFieldName("type"); typeNode != nil {
				parts = append(parts, jc.text(typeNode))
			}
		case "spread_parameter":
			if typeNode := p.ChildByFieldName("type"); typeNode != nil {
				parts = append(parts, jc.text(typeNode)+"…")
			}
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func (jc *javaCtx) processMethod(node astsrc.ASTNode, parentID, className string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	methodName := jc.text(nameNode)
	isConstructor := node.Type() == "constructor_declaration" || methodName == className

	paramsNode := node.ChildByFieldName("parameters")
	paramSig := jc.paramSignature(paramsNode)
	methodFQN := jc.scope.BuildFQN(methodName) + paramSig

	span := astsrc.NodeSpan(node)
	kind := ir.KindMethod
	nodeID := ir.LogicalID(kind, jc.repoID, jc.source.Path, methodFQN)

	bodyNode := node.ChildByFieldName("body")
	var bodySpan *ir.Span
	var cfSummary *ir.ControlFlowSummary
	if bodyNode != nil && !bodyNode.IsNull() {
		s := astsrc.NodeSpan(bodyNode)
		bodySpan = &s
		cfSummary = ControlFlowSummary(bodyNode, javaNodeTypeSets)
		if cfg := BuildCFG(nodeID, bodyNode, javaNodeTypeSets); cfg != nil {
			jc.doc.CFGs = append(jc.doc.CFGs, *cfg)
		}
	}

	isStatic := jc.hasModifier(node, "static")

	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, kind, methodFQN, span, ""),
		Kind: kind, FQN: methodFQN, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: parentID, BodySpan: bodySpan,
		ControlFlowSummary: cfSummary, ContentHash: ir.ContentHash(jc.text(node)),
		Attrs: map[string]any{"name": methodName, "is_constructor": isConstructor, "is_static": isStatic},
	})
	jc.addContains(parentID, nodeID, span)
	jc.scope.RegisterSymbol(methodName, "method", nodeID, span)

	jc.scope.Push(kind, methodName, methodFQN, nodeID)

	var paramTypeIDs []string
	if paramsNode != nil && !paramsNode.IsNull() {
		paramTypeIDs = jc.processParameters(paramsNode, nodeID)
	}

	declaredThrows := jc.processThrowsClause(node, nodeID)

	if bodyNode != nil && !bodyNode.IsNull() {
		jc.processMethodBody(bodyNode, nodeID)
		jc.processTryCatchBlocks(bodyNode, nodeID)

		if flow := jc.analyzeExceptionPropagation(bodyNode); flow != nil {
			jc.setNodeAttr(nodeID, "exception_flow", flow)
		}
	}

	jc.scope.Pop()

	returnTypeID := ""
	if retNode := node.ChildByFieldName("type"); retNode != nil && !retNode.IsNull() {
		entity := jc.resolver.Resolve(jc.text(retNode))
		jc.registerType(entity)
		returnTypeID = entity.ID
	}

	sig := ir.SignatureEntity{
		Name: methodName, Raw: jc.text(node),
		ParameterTypeIDs: paramTypeIDs, ReturnTypeID: returnTypeID, IsStatic: isStatic,
		ThrowsTypeIDs: declaredThrows,
		SignatureHash: ir.SignatureHash(methodName, paramTypeIDs, returnTypeID, false, isStatic),
	}
	sig.ID = ir.SignatureID(nodeID, methodName, paramTypeIDs, returnTypeID)
	sig.OwnerNodeID = nodeID
	jc.doc.Signatures = append(jc.doc.Signatures, sig)

	for i := range jc.doc.Nodes {
		if jc.doc.Nodes[i].ID == nodeID {
			jc.doc.Nodes[i].SignatureID = sig.ID
			break
		}
	}
}

func (jc *javaCtx) hasModifier(node astsrc.ASTNode, name string) bool {
	mods := findChildByType(node, "modifiers")
	if mods == nil {
		return false
	}
	for _, m := range children(mods) {
		if jc.text(m) == name {
			return true
		}
	}
	return false
}

func (jc *javaCtx) registerType(entity ir.TypeEntity) {
	for _, existing := range jc.doc.Types {
		if existing.ID == entity.ID {
			return
		}
	}
	jc.doc.Types = append(jc.doc.Types, entity)
}

func (jc *javaCtx) processParameters(paramsNode astsrc.ASTNode, methodID string) []string {
	var paramTypeIDs []string
	for _, p := range children(paramsNode) {
		if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
			continue
		}
		nameNode := p.ChildByFieldName("name")
		typeNode := p.ChildByFieldName("type")
		if nameNode == nil {
			continue
		}
		paramName := jc.text(nameNode)
		paramFQN := jc.scope.BuildFQN(paramName)
		span := astsrc.NodeSpan(nameNode)
		nodeID := ir.LogicalID(ir.KindVariable, jc.repoID, jc.source.Path, paramFQN)

		var declaredTypeID string
		if typeNode != nil && !typeNode.IsNull() {
			entity := jc.resolver.Resolve(jc.text(typeNode))
			jc.registerType(entity)
			declaredTypeID = entity.ID
			paramTypeIDs = append(paramTypeIDs, declaredTypeID)
		}

		jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
			ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindVariable, paramFQN, span, ""),
			Kind: ir.KindVariable, FQN: paramFQN, FilePath: jc.source.Path, Span: span,
			Language: jc.source.Language, ParentID: methodID, DeclaredTypeID: declaredTypeID,
			Attrs: map[string]any{"name": paramName, "var_kind": "parameter"},
		})
		jc.addContains(methodID, nodeID, span)
		jc.scope.RegisterSymbol(paramName, "parameter", nodeID, span)
	}
	return paramTypeIDs
}

func (jc *javaCtx) processField(node astsrc.ASTNode, classID string) {
	typeNode := node.ChildByFieldName("type")
	for _, declarator := range findChildrenByType(node, "variable_declarator") {
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		fieldName := jc.text(nameNode)
		fieldFQN := jc.scope.BuildFQN(fieldName)
		span := astsrc.NodeSpan(declarator)
		nodeID := ir.LogicalID(ir.KindField, jc.repoID, jc.source.Path, fieldFQN)

		var declaredTypeID string
		if typeNode != nil && !typeNode.IsNull() {
			entity := jc.resolver.Resolve(jc.text(typeNode))
			jc.registerType(entity)
			declaredTypeID = entity.ID
		}

		jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
			ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindField, fieldFQN, span, ""),
			Kind: ir.KindField, FQN: fieldFQN, FilePath: jc.source.Path, Span: span,
			Language: jc.source.Language, ParentID: classID, DeclaredTypeID: declaredTypeID,
			Attrs: map[string]any{"name": fieldName},
		})
		jc.addContains(classID, nodeID, span)
		jc.scope.RegisterSymbol(fieldName, "field", nodeID, span)
	}
}

// processThrowsClause extracts the `throws` clause's declared exception
// types, resolving each through the type resolver.
func (jc *javaCtx) processThrowsClause(node astsrc.ASTNode, methodID string) []string {
	throwsNode := findChildByType(node, "throws")
	if throwsNode == nil {
		return nil
	}
	var ids []string
	for _, t := range children(throwsNode) {
		raw := jc.text(t)
		if raw == "" || raw == "throws" {
			continue
		}
		entity := jc.resolver.Resolve(raw)
		jc.registerType(entity)
		ids = append(ids, entity.ID)
	}
	return ids
}

// processMethodBody walks statements for calls, lambdas, and method
// references, grounded on java_generator.py's `_process_method_calls`.
func (jc *javaCtx) processMethodBody(body astsrc.ASTNode, ownerID string) {
	stack := []astsrc.ASTNode{body}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type() {
		case "lambda_expression":
			jc.processLambda(n, ownerID)
			continue // lambda handles its own body
		case "method_reference":
			jc.processMethodReference(n, ownerID)
			continue
		case "method_invocation":
			jc.processCall(n, ownerID)
		}

		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && !child.IsNull() {
				stack = append(stack, child)
			}
		}
	}
}

func (jc *javaCtx) processCall(node astsrc.ASTNode, callerID string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	calleeName := jc.text(nameNode)
	span := astsrc.NodeSpan(node)
	targetID := "unresolved:" + calleeName
	jc.addEdge(ir.EdgeCalls, callerID, targetID, &span, map[string]any{"callee_name": calleeName})
	jc.doc.Edges[len(jc.doc.Edges)-1].Unresolved = true
}

func (jc *javaCtx) processLambda(node astsrc.ASTNode, parentID string) {
	paramsNode := findChildByType(node, "inferred_parameters")
	if paramsNode == nil {
		paramsNode = findChildByType(node, "formal_parameters")
	}

	paramSig := "()"
	if paramsNode != nil {
		if paramsNode.Type() == "formal_parameters" {
			paramSig = jc.paramSignature(paramsNode)
		}
	} else if single := findChildByType(node, "identifier"); single != nil {
		paramSig = "(" + jc.text(single) + ")"
	}

	start := node.StartPoint()
	lambdaFQN := fmt.Sprintf("%s.lambda$%d:%d%s", jc.scope.CurrentFQN(), start.Row+1, start.Column, paramSig)
	span := astsrc.NodeSpan(node)

	body := findChildByType(node, "block")
	var bodySpan *ir.Span
	var cfSummary *ir.ControlFlowSummary
	if body != nil {
		s := astsrc.NodeSpan(body)
		bodySpan = &s
		cfSummary = ControlFlowSummary(body, javaNodeTypeSets)
	}

	nodeID := ir.LogicalID(ir.KindLambda, jc.repoID, jc.source.Path, lambdaFQN)
	lambdaNode := ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindLambda, lambdaFQN, span, ""),
		Kind: ir.KindLambda, FQN: lambdaFQN, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: parentID, BodySpan: bodySpan,
		ControlFlowSummary: cfSummary,
		Attrs:              map[string]any{"is_lambda": true, "param_signature": paramSig},
	}
	jc.doc.Nodes = append(jc.doc.Nodes, lambdaNode)
	jc.addContains(parentID, nodeID, span)
	if body != nil {
		if cfg := BuildCFG(nodeID, body, javaNodeTypeSets); cfg != nil {
			jc.doc.CFGs = append(jc.doc.CFGs, *cfg)
		}
	}

	if body != nil {
		captures := jc.analyzeLambdaCaptures(body, nodeID)
		if len(captures) > 0 {
			for i := range jc.doc.Nodes {
				if jc.doc.Nodes[i].ID == nodeID {
					jc.doc.Nodes[i].Attrs["captures"] = captures
					jc.doc.Nodes[i].Attrs["capture_count"] = len(captures)
					break
				}
			}
		}
		jc.processMethodBody(body, nodeID)
	}
}

// analyzeLambdaCaptures collects lowercase identifiers referenced in
// the lambda body that are not the right side of a method invocation
// or field access (the method or field name), filtering keywords,
// grounded on java_generator.py's `_analyze_lambda_captures`. Each
// distinct capture emits a CAPTURES edge to an (unresolved) variable in
// the enclosing scope.
func (jc *javaCtx) analyzeLambdaCaptures(body astsrc.ASTNode, lambdaID string) []string {
	seen := map[string]bool{}
	var refs []string

	var walk func(node astsrc.ASTNode, isMember bool)
	walk = func(node astsrc.ASTNode, isMember bool) {
		if node.Type() == "identifier" && !isMember {
			name := jc.text(node)
			if name != "" && isLower(name[0]) && !javaKeywords[name] && !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
		}
		var member astsrc.ASTNode
		switch node.Type() {
		case "method_invocation":
			member = node.ChildByFieldName("name")
		case "field_access":
			member = node.ChildByFieldName("field")
		}
		for _, child := range children(node) {
			walk(child, member != nil && !member.IsNull() && astsrc.NodeSpan(child) == astsrc.NodeSpan(member))
		}
	}
	walk(body, false)

	parentScope := jc.scope.CurrentFQN()
	for _, name := range refs {
		targetID := "var:" + jc.repoID + ":" + jc.source.Path + ":" + parentScope + "." + name
		jc.addEdge(ir.EdgeCaptures, lambdaID, targetID, nil, map[string]any{
			"variable_name": name, "effectively_final": true, "capture_type": "closure",
		})
	}
	return refs
}

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

// processMethodReference classifies `Qualifier::Member` per spec §4.5
// using the naming-convention heuristic from java_generator.py's
// `_determine_method_ref_type`.
func (jc *javaCtx) processMethodReference(node astsrc.ASTNode, parentID string) {
	kids := children(node)
	if len(kids) < 3 {
		return
	}
	qualifierNode := kids[0]
	methodNameNode := kids[2]

	qualifier := jc.text(qualifierNode)
	methodName := jc.text(methodNameNode)

	refType := jc.determineMethodRefType(qualifier, methodName)

	start := node.StartPoint()
	refFQN := fmt.Sprintf("%s.ref$%d:%d#%s::%s", jc.scope.CurrentFQN(), start.Row+1, start.Column, qualifier, methodName)
	span := astsrc.NodeSpan(node)

	targetName := qualifier + "." + methodName
	if methodName == "new" {
		targetName = qualifier + ".<init>"
	}
	targetID := "method:" + jc.repoID + ":" + jc.source.Path + ":" + targetName

	nodeID := ir.LogicalID(ir.KindMethodReference, jc.repoID, jc.source.Path, refFQN)
	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindMethodReference, refFQN, span, ""),
		Kind: ir.KindMethodReference, FQN: refFQN, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: parentID,
		Attrs: map[string]any{
			"is_method_reference": true, "ref_type": string(refType),
			"qualifier": qualifier, "method_name": methodName, "target": targetName,
		},
	})
	jc.addContains(parentID, nodeID, span)
	jc.addEdge(ir.EdgeReferences, nodeID, targetID, &span, map[string]any{
		"unresolved": true, "target_name": targetName, "ref_type": string(refType),
	})
}

// determineMethodRefType implements the naming-convention heuristic
// over the four reference kinds: "new" is always CONSTRUCTOR;
// `this`/`super` and any qualifier that starts with a lowercase letter
// is INSTANCE_BOUND; any other qualifier defaults to STATIC (the
// common case — a real implementation would refine this via a
// language-server hover, which this pipeline does not integrate), so
// INSTANCE_UNBOUND is never returned.
func (jc *javaCtx) determineMethodRefType(qualifier, methodName string) ir.MethodReferenceKind {
	if methodName == "new" {
		return ir.RefConstructor
	}
	if qualifier == "" {
		return ir.RefStatic
	}
	if qualifier == "this" || qualifier == "super" {
		return ir.RefInstanceBound
	}
	if isLower(qualifier[0]) {
		return ir.RefInstanceBound
	}
	return ir.RefStatic
}

var (
	throwExceptionRe = regexp.MustCompile(`throw\s+new\s+([A-Z][A-Za-z0-9_.]*)`)
	catchExceptionRe = regexp.MustCompile(`catch\s*\(\s*([A-Z][A-Za-z0-9_.]*)`)
)

// analyzeExceptionPropagation implements spec §4.5's exception-
// propagation analysis, grounded on java_generator.py's
// `_analyze_exception_propagation`: walk body collecting every
// `throw new ExceptionType(...)` (including those in catch and finally
// blocks) and every caught type in a `catch_clause`, then the
// exceptions thrown but never caught are `may_propagate`. Returns nil
// when the body neither throws nor catches anything, so callers can
// skip attaching an empty record.
func (jc *javaCtx) analyzeExceptionPropagation(body astsrc.ASTNode) map[string]any {
	var explicitThrows, caught []string

	var walk func(n astsrc.ASTNode)
	walk = func(n astsrc.ASTNode) {
		if n == nil || n.IsNull() {
			return
		}
		switch n.Type() {
		case "throw_statement":
			if m := throwExceptionRe.FindStringSubmatch(jc.text(n)); m != nil {
				explicitThrows = append(explicitThrows, m[1])
			}
		case "try_statement", "try_with_resources_statement":
			if tryBlock := findChildByType(n, "block"); tryBlock != nil {
				walk(tryBlock)
			}
			for _, clause := range findChildrenByType(n, "catch_clause") {
				if m := catchExceptionRe.FindStringSubmatch(jc.text(clause)); m != nil {
					caught = append(caught, m[1])
				}
				if catchBody := findChildByType(clause, "block"); catchBody != nil {
					walk(catchBody)
				}
			}
			if finallyClause := findChildByType(n, "finally_clause"); finallyClause != nil {
				walk(finallyClause)
			}
		default:
			for _, c := range children(n) {
				walk(c)
			}
		}
	}
	walk(body)

	if len(explicitThrows) == 0 && len(caught) == 0 {
		return nil
	}

	caughtSet := set(caught...)
	var mayPropagate []string
	for _, exc := range explicitThrows {
		if !caughtSet[exc] {
			mayPropagate = append(mayPropagate, exc)
		}
	}

	return map[string]any{
		"explicit_throws":       explicitThrows,
		"propagated_from_calls": []string{},
		"caught":                caught,
		"may_propagate":         mayPropagate,
	}
}

// setNodeAttr patches attrs[key] on the already-appended node with the
// given ID. Method attrs are finalized in multiple passes (exception
// flow is only known after the body walk), mirroring java_generator.py's
// own "compute attrs, append node, then patch node.attrs" shape.
func (jc *javaCtx) setNodeAttr(nodeID, key string, value any) {
	for i := range jc.doc.Nodes {
		if jc.doc.Nodes[i].ID == nodeID {
			if jc.doc.Nodes[i].Attrs == nil {
				jc.doc.Nodes[i].Attrs = map[string]any{}
			}
			jc.doc.Nodes[i].Attrs[key] = value
			return
		}
	}
}

// processTryCatchBlocks creates TryCatch nodes and THROWS edges for
// caught/rethrown exception types, grounded on java_generator.py's
// `_process_try_catch_blocks`.
func (jc *javaCtx) processTryCatchBlocks(body astsrc.ASTNode, ownerID string) {
	stack := []astsrc.ASTNode{body}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type() == "try_statement" || n.Type() == "try_with_resources_statement" {
			jc.processTryStatement(n, ownerID)
		}

		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && !child.IsNull() {
				stack = append(stack, child)
			}
		}
	}
}

func (jc *javaCtx) processTryStatement(node astsrc.ASTNode, ownerID string) {
	span := astsrc.NodeSpan(node)
	tryFQN := fmt.Sprintf("%s.try$%d:%d", jc.scope.CurrentFQN(), span.StartLine, span.StartCol)
	nodeID := ir.LogicalID(ir.KindTryCatch, jc.repoID, jc.source.Path, tryFQN)

	jc.doc.Nodes = append(jc.doc.Nodes, ir.Node{
		ID: nodeID, StableID: ir.StableID(jc.repoID, ir.KindTryCatch, tryFQN, span, ""),
		Kind: ir.KindTryCatch, FQN: tryFQN, FilePath: jc.source.Path, Span: span,
		Language: jc.source.Language, ParentID: ownerID,
	})
	jc.addContains(ownerID, nodeID, span)

	for _, clause := range findChildrenByType(node, "catch_clause") {
		catchType := findChildByType(clause, "catch_type")
		if catchType == nil {
			continue
		}
		for _, t := range children(catchType) {
			exceptionType := jc.text(t)
			if exceptionType == "" {
				continue
			}
			cspan := astsrc.NodeSpan(clause)
			jc.addEdge(ir.EdgeThrows, nodeID, "type:"+jc.repoID+":"+exceptionType, &cspan,
				map[string]any{"exception_type": exceptionType, "caught": true})
		}
	}
}
