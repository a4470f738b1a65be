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

// Package ir defines the structural and semantic intermediate
// representation produced by the language walkers: nodes, edges,
// documents, types, and signatures, plus the deterministic ID and
// content-hash generators every other package builds on.
//
// A Node is a unit of program structure (file, class, function, ...). An
// Edge is a typed relationship between two nodes. An IRDocument holds the
// nodes and edges produced from a single source file, independent of
// every other document until the cross-file resolver stage binds them
// together into a GlobalContext.
//
// All identifiers are derived deterministically from their inputs:
// given identical source bytes, every ID and hash this package produces
// is byte-identical across runs, platforms, and process restarts. There
// is no randomness and no reliance on wall-clock time anywhere in this
// package.
package ir
