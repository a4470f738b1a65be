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

package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
	"github.com/kraklabs/irengine/pkg/semanticir"
)

// TestSemanticIRStage_AttachesSnapshot confirms the stage builds and
// attaches a queryable Snapshot to every document it processes (C6),
// rather than leaving the Type/Signature/CFG indices dead.
func TestSemanticIRStage_AttachesSnapshot(t *testing.T) {
	sig := ir.SignatureEntity{ID: "sig:1", OwnerNodeID: "fn:1", Name: "greet"}
	doc := &ir.IRDocument{
		Nodes:      []ir.Node{{ID: "fn:1", Kind: ir.KindFunction, FQN: "greet", SignatureID: "sig:1"}},
		Signatures: []ir.SignatureEntity{sig},
	}

	sc := pipeline.NewStageContext(pipeline.DefaultConfig(), []string{"a.py"}, map[string]*ir.IRDocument{"a.py": doc})
	stage := NewSemanticIRStage()

	skip, _ := stage.ShouldSkip(sc)
	require.False(t, skip)

	next, err := stage.Run(context.Background(), sc)
	require.NoError(t, err)

	snapshotAny := next.IRDocuments["a.py"].SemanticSnapshot()
	require.NotNil(t, snapshotAny)
	snapshot, ok := snapshotAny.(semanticir.Snapshot)
	require.True(t, ok)
	assert.Equal(t, "sig:1", snapshot.SignatureIndex.FunctionToSignature["fn:1"])
}

// TestSemanticIRStage_ShouldSkip_NoDocuments confirms the early-skip
// path when there is nothing to index.
func TestSemanticIRStage_ShouldSkip_NoDocuments(t *testing.T) {
	sc := pipeline.NewStageContext(pipeline.DefaultConfig(), nil, nil)
	stage := NewSemanticIRStage()
	skip, reason := stage.ShouldSkip(sc)
	assert.True(t, skip)
	assert.NotEmpty(t, reason)
}
