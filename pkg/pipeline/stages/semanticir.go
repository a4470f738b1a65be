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

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
	"github.com/kraklabs/irengine/pkg/semanticir"
)

// SemanticIRStage implements C6: builds the Type/Signature/CFG indices
// over every document's already-embedded entity collections and
// attaches the resulting Snapshot to the document itself, so
// downstream queries don't re-scan doc.Nodes to rebuild them.
type SemanticIRStage struct {
	builder *semanticir.Builder
}

// NewSemanticIRStage constructs the semantic IR stage.
func NewSemanticIRStage() *SemanticIRStage {
	return &SemanticIRStage{builder: semanticir.NewBuilder()}
}

func (s *SemanticIRStage) Name() string { return "semantic_ir" }

func (s *SemanticIRStage) ShouldSkip(ctx *pipeline.StageContext) (bool, string) {
	if len(ctx.IRDocuments) == 0 {
		return true, "no documents to index"
	}
	return false, ""
}

func (s *SemanticIRStage) Run(ctx context.Context, sc *pipeline.StageContext) (*pipeline.StageContext, error) {
	next := sc.Clone()

	for _, doc := range next.IRDocuments {
		select {
		case <-ctx.Done():
			return next, ctx.Err()
		default:
		}
		snapshot := s.builder.Build(doc)
		doc.SetSemanticSnapshot(snapshot)
	}

	next.PendingMetrics = &ir.StageMetrics{
		ItemsProcessed: len(next.IRDocuments),
	}
	return next, nil
}
