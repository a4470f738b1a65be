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

// Package astsrc is the narrow boundary between the IR pipeline and the
// external parse oracle (tree-sitter) and, optionally, a type-info
// oracle. Nothing outside this package imports smacker/go-tree-sitter
// directly: language walkers in pkg/walker consume the ASTNode and Tree
// interfaces defined here, never a concrete tree-sitter type, so the
// parser stays swappable and the walkers stay testable against fakes.
package astsrc
