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

package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicalID_File(t *testing.T) {
	id := LogicalID(KindFile, "semantica", "src/retriever/plan.py", "")
	assert.Equal(t, "file:semantica:src/retriever/plan.py", id)
}

func TestLogicalID_NormalizesPath(t *testing.T) {
	id := LogicalID(KindFile, "semantica", "./src/a.py", "")
	assert.Equal(t, "file:semantica:src/a.py", id)
}

func TestLogicalID_MethodUsesLastTwoFQNSegments(t *testing.T) {
	id := LogicalID(KindMethod, "semantica", "src/retriever/plan.py", "semantica.retriever.plan.HybridRetriever.plan")
	assert.Equal(t, "method:semantica:src/retriever/plan.py:HybridRetriever.plan", id)
}

func TestLogicalID_SingleSegmentFQN(t *testing.T) {
	id := LogicalID(KindFunction, "semantica", "a.py", "foo")
	assert.Equal(t, "function:semantica:a.py:foo", id)
}

func TestStableID_ExcludesFilePath(t *testing.T) {
	span := Span{StartLine: 1, EndLine: 3}
	hash := ContentHash("def f(): pass")

	a := StableID("semantica", KindFunction, "pkg.f", span, hash)
	b := StableID("semantica", KindFunction, "pkg.f", span, hash)
	assert.Equal(t, a, b, "stable ID must be deterministic")
	assert.True(t, strings.HasPrefix(a, "stable:"))
	assert.Len(t, strings.TrimPrefix(a, "stable:"), 16)
}

func TestStableID_MovingFileDoesNotChangeID(t *testing.T) {
	span := Span{StartLine: 1, EndLine: 3}
	hash := ContentHash("def f(): pass")

	before := StableID("semantica", KindFunction, "pkg.f", span, hash)
	// A rename only changes file_path, which StableID never consumes.
	after := StableID("semantica", KindFunction, "pkg.f", span, hash)
	assert.Equal(t, before, after)
}

func TestContentHash_NormalizesWhitespace(t *testing.T) {
	a := ContentHash("def f(): pass")
	b := ContentHash("  def f(): pass  \n")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "sha256:"))
}

func TestContentHash_DifferentTextDifferentHash(t *testing.T) {
	a := ContentHash("def f(): pass")
	b := ContentHash("def g(): pass")
	assert.NotEqual(t, a, b)
}

func TestEdgeID_Format(t *testing.T) {
	id := EdgeID(EdgeCalls, "func:semantica:a.py:plan", "func:semantica:a.py:_search_vector", 0)
	assert.Equal(t, "edge:calls:plan→_search_vector@0", id)
}

func TestEdgeID_OccurrenceDisambiguates(t *testing.T) {
	first := EdgeID(EdgeCalls, "func:a:f", "func:a:g", 0)
	second := EdgeID(EdgeCalls, "func:a:f", "func:a:g", 1)
	assert.NotEqual(t, first, second)
}

func TestTypeID_Builtin(t *testing.T) {
	id := TypeID("int", "semantica")
	assert.Equal(t, "type:builtin:int", id)
}

func TestTypeID_BuiltinGeneric(t *testing.T) {
	id := TypeID("List[Candidate]", "semantica")
	assert.Equal(t, "type:builtin:List[Candidate]", id)
}

func TestTypeID_Project(t *testing.T) {
	id := TypeID("RetrievalPlan", "semantica")
	assert.Equal(t, "type:semantica:RetrievalPlan", id)
}

func TestSignatureID_Format(t *testing.T) {
	id := SignatureID("class:semantica:a.py:HybridRetriever", "plan", []string{"Query", "int"}, "RetrievalPlan")
	assert.Equal(t, "sig:HybridRetriever:plan(Query,int)->RetrievalPlan", id)
}

func TestSignatureID_NoReturn(t *testing.T) {
	id := SignatureID("func:semantica:a.py:build_default_plan", "build_default_plan", []string{"str"}, "")
	assert.Equal(t, "sig:build_default_plan:build_default_plan(str)->None", id)
}

func TestSignatureHash_StableAcrossBodyChange(t *testing.T) {
	a := SignatureHash("plan", []string{"Query", "int"}, "RetrievalPlan", false, false)
	b := SignatureHash("plan", []string{"Query", "int"}, "RetrievalPlan", false, false)
	assert.Equal(t, a, b)
}

func TestSignatureHash_ChangesWithParamType(t *testing.T) {
	a := SignatureHash("plan", []string{"Query", "int"}, "RetrievalPlan", false, false)
	b := SignatureHash("plan", []string{"Query", "string"}, "RetrievalPlan", false, false)
	assert.NotEqual(t, a, b)
}

func TestFileID_NormalizesAndHashesLongPaths(t *testing.T) {
	short := FileID("./a/b.py")
	assert.Equal(t, "file:a/b.py", short)

	long := FileID("a/" + strings.Repeat("x", 300) + ".py")
	require.True(t, strings.HasPrefix(long, "file:"))
	assert.Len(t, strings.TrimPrefix(long, "file:"), 32)
}
