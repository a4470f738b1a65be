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

package semanticir

import (
	"testing"

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *ir.IRDocument {
	return &ir.IRDocument{
		Types: []ir.TypeEntity{
			{ID: "type:int", Raw: "int", Flavor: ir.FlavorPrimitive},
			{ID: "type:str", Raw: "str", Flavor: ir.FlavorPrimitive},
			{ID: "type:User", Raw: "User", Flavor: ir.FlavorUser},
		},
		Signatures: []ir.SignatureEntity{
			{
				ID: "sig:greet(str)->str", OwnerNodeID: "func:greet", Name: "greet",
				ParameterTypeIDs: []string{"type:str"}, ReturnTypeID: "type:str",
			},
		},
		Nodes: []ir.Node{
			{ID: "func:greet", Kind: ir.KindFunction, SignatureID: "sig:greet(str)->str"},
			{ID: "var:name", Kind: ir.KindVariable, DeclaredTypeID: "type:str"},
			{ID: "var:untyped", Kind: ir.KindVariable},
			{ID: "class:User", Kind: ir.KindClass},
		},
		CFGs: []ir.ControlFlowGraph{
			{ID: "cfg:greet", OwnerID: "func:greet", EntryBlockID: "b0", ExitBlockID: "b1"},
		},
	}
}

func TestBuildTypes_IndexesFunctionAndVariable(t *testing.T) {
	doc := sampleDoc()
	types, index := BuildTypes(doc)

	require.Len(t, types, 3)
	assert.Equal(t, []string{"type:str"}, index.FunctionToParamTypeIDs["func:greet"])
	assert.Equal(t, "type:str", index.FunctionToReturnTypeID["func:greet"])
	assert.Equal(t, "type:str", index.VariableToTypeID["var:name"])
	assert.NotContains(t, index.VariableToTypeID, "var:untyped")
}

func TestBuildSignatures_IndexesCallableNodes(t *testing.T) {
	doc := sampleDoc()
	signatures, index := BuildSignatures(doc)

	require.Len(t, signatures, 1)
	assert.Equal(t, "sig:greet(str)->str", index.FunctionToSignature["func:greet"])
	assert.NotContains(t, index.FunctionToSignature, "class:User")
}

func TestBuildCFGIndex_MapsOwnerToCFG(t *testing.T) {
	doc := sampleDoc()
	cfgs, index := BuildCFGIndex(doc)

	require.Len(t, cfgs, 1)
	assert.Equal(t, "cfg:greet", index.FunctionToCFG["func:greet"])
}

func TestBuilder_BuildAssemblesFullSnapshot(t *testing.T) {
	doc := sampleDoc()
	snap := NewBuilder().Build(doc)

	assert.Len(t, snap.Types, 3)
	assert.Len(t, snap.Signatures, 1)
	assert.Len(t, snap.CFGs, 1)
	assert.Equal(t, "type:str", snap.TypeIndex.VariableToTypeID["var:name"])
	assert.Equal(t, "sig:greet(str)->str", snap.SignatureIndex.FunctionToSignature["func:greet"])
	assert.Equal(t, "cfg:greet", snap.CFGIndex.FunctionToCFG["func:greet"])
}
