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
	"github.com/kraklabs/irengine/pkg/astsrc"
	"github.com/kraklabs/irengine/pkg/ir"
)

// NodeTypeSets is a language's classification of AST node type names
// into the three sets the control-flow summary is built from (spec
// §4.5): branch, loop, and try types.
type NodeTypeSets struct {
	Branch map[string]bool
	Loop   map[string]bool
	Try    map[string]bool
}

// ControlFlowSummary computes cyclomatic complexity, has_loop, has_try,
// and branch_count for a callable body by an iterative (non-recursive)
// stack traversal, per spec §4.5 and original_source's
// `_calculate_cf_summary` (`python_generator.py`): complexity starts at
// 1 and increments once per branch or loop node encountered.
func ControlFlowSummary(body astsrc.ASTNode, sets NodeTypeSets) *ir.ControlFlowSummary {
	if body == nil || body.IsNull() {
		return &ir.ControlFlowSummary{Cyclomatic: 1}
	}

	cyclomatic := 1
	branchCount := 0
	hasLoop := false
	hasTry := false

	stack := []astsrc.ASTNode{body}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		typ := n.Type()
		switch {
		case sets.Branch[typ]:
			branchCount++
			cyclomatic++
		case sets.Loop[typ]:
			hasLoop = true
			cyclomatic++
		case sets.Try[typ]:
			hasTry = true
		}

		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && !child.IsNull() {
				stack = append(stack, child)
			}
		}
	}

	return &ir.ControlFlowSummary{
		Cyclomatic:  cyclomatic,
		HasLoop:     hasLoop,
		HasTry:      hasTry,
		BranchCount: branchCount,
	}
}
