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

import "github.com/kraklabs/irengine/pkg/ir"

// NodeSpan converts a parse-tree node's tree-sitter points (0-based row,
// 0-based column) to the IR's Span convention: 1-based lines, 0-based
// columns, implementing C2's `span(node)` contract.
func NodeSpan(node ASTNode) ir.Span {
	if node == nil || node.IsNull() {
		return ir.Span{}
	}
	start := node.StartPoint()
	end := node.EndPoint()
	return ir.Span{
		StartLine: start.Row + 1,
		StartCol:  start.Column,
		EndLine:   end.Row + 1,
		EndCol:    end.Column,
	}
}
