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

// Package semanticir builds the semantic IR layer (C6) on top of a
// structural IRDocument: TypeIndex/SignatureIndex/CFGIndex lookups over
// the TypeEntity/SignatureEntity/ControlFlowGraph collections a walker
// already embedded in the document, plus the Snapshot that bundles all
// three for a pipeline stage to hand downstream.
package semanticir

import "github.com/kraklabs/irengine/pkg/ir"

// TypeIndex provides fast structural-IR-to-type lookups: function node
// ID to its parameter/return TypeEntity IDs, and variable node ID to
// its declared TypeEntity ID.
type TypeIndex struct {
	FunctionToParamTypeIDs map[string][]string
	FunctionToReturnTypeID map[string]string
	VariableToTypeID       map[string]string
}

func newTypeIndex() TypeIndex {
	return TypeIndex{
		FunctionToParamTypeIDs: map[string][]string{},
		FunctionToReturnTypeID: map[string]string{},
		VariableToTypeID:       map[string]string{},
	}
}

// SignatureIndex maps a Function/Method/Lambda node ID to its
// SignatureEntity ID.
type SignatureIndex struct {
	FunctionToSignature map[string]string
}

func newSignatureIndex() SignatureIndex {
	return SignatureIndex{FunctionToSignature: map[string]string{}}
}

// CFGIndex maps a callable node ID (the CFG's OwnerID) to its
// ControlFlowGraph ID. original_source's own CFG builder only ever
// produced one CFG per owner, so this mirrors that one-to-one shape
// rather than a one-to-many index.
type CFGIndex struct {
	FunctionToCFG map[string]string
}

func newCFGIndex() CFGIndex {
	return CFGIndex{FunctionToCFG: map[string]string{}}
}

// Snapshot is the full semantic IR state for one document: the three
// entity collections plus their indexes, mirroring
// original_source's `SemanticIrSnapshot`.
type Snapshot struct {
	Types          []ir.TypeEntity
	TypeIndex      TypeIndex
	Signatures     []ir.SignatureEntity
	SignatureIndex SignatureIndex
	CFGs           []ir.ControlFlowGraph
	CFGIndex       CFGIndex
}

func isCallable(kind ir.NodeKind) bool {
	return kind == ir.KindFunction || kind == ir.KindMethod || kind == ir.KindLambda
}

// BuildTypes extracts the TypeEntity collection already embedded in doc
// and indexes it by owning function/variable. The resolver (C3) does
// the actual type-string-to-entity work at walk time; this only builds
// the lookup structure over what is already there — same division of
// labor as original_source's TypeIrBuilder.build_full.
func BuildTypes(doc *ir.IRDocument) ([]ir.TypeEntity, TypeIndex) {
	types := make([]ir.TypeEntity, len(doc.Types))
	copy(types, doc.Types)

	index := newTypeIndex()
	sigByID := make(map[string]ir.SignatureEntity, len(doc.Signatures))
	for _, sig := range doc.Signatures {
		sigByID[sig.ID] = sig
	}

	for _, node := range doc.Nodes {
		switch {
		case isCallable(node.Kind):
			if node.SignatureID == "" {
				continue
			}
			sig, ok := sigByID[node.SignatureID]
			if !ok {
				continue
			}
			if len(sig.ParameterTypeIDs) > 0 {
				index.FunctionToParamTypeIDs[node.ID] = sig.ParameterTypeIDs
			}
			if sig.ReturnTypeID != "" {
				index.FunctionToReturnTypeID[node.ID] = sig.ReturnTypeID
			}
		case node.Kind == ir.KindVariable:
			if node.DeclaredTypeID != "" {
				index.VariableToTypeID[node.ID] = node.DeclaredTypeID
			}
		}
	}

	return types, index
}

// BuildSignatures extracts the SignatureEntity collection already
// embedded in doc and indexes it by owning Function/Method/Lambda node.
func BuildSignatures(doc *ir.IRDocument) ([]ir.SignatureEntity, SignatureIndex) {
	signatures := make([]ir.SignatureEntity, len(doc.Signatures))
	copy(signatures, doc.Signatures)

	index := newSignatureIndex()
	for _, node := range doc.Nodes {
		if isCallable(node.Kind) && node.SignatureID != "" {
			index.FunctionToSignature[node.ID] = node.SignatureID
		}
	}

	return signatures, index
}

// BuildCFGIndex extracts the ControlFlowGraph collection already
// embedded in doc and indexes it by owning callable node.
func BuildCFGIndex(doc *ir.IRDocument) ([]ir.ControlFlowGraph, CFGIndex) {
	cfgs := make([]ir.ControlFlowGraph, len(doc.CFGs))
	copy(cfgs, doc.CFGs)

	index := newCFGIndex()
	for _, cfg := range cfgs {
		if cfg.OwnerID != "" {
			index.FunctionToCFG[cfg.OwnerID] = cfg.ID
		}
	}

	return cfgs, index
}

// Builder orchestrates the Type, Signature, and CFG builders into one
// Snapshot, mirroring original_source's DefaultSemanticIrBuilder. It
// holds no state of its own: every Build call is a full rebuild over
// the document handed to it.
type Builder struct{}

// NewBuilder constructs a Builder.
func NewBuilder() *Builder { return &Builder{} }

// Build produces the full semantic IR snapshot for doc.
func (b *Builder) Build(doc *ir.IRDocument) Snapshot {
	types, typeIndex := BuildTypes(doc)
	signatures, sigIndex := BuildSignatures(doc)
	cfgs, cfgIndex := BuildCFGIndex(doc)

	return Snapshot{
		Types:          types,
		TypeIndex:      typeIndex,
		Signatures:     signatures,
		SignatureIndex: sigIndex,
		CFGs:           cfgs,
		CFGIndex:       cfgIndex,
	}
}
