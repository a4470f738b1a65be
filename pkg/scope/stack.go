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

// Package scope implements the lexical scope stack (C4) language
// walkers use to build fully-qualified names, register imports, and
// detect shadowing.
package scope

import (
	"fmt"
	"strings"

	"github.com/kraklabs/irengine/pkg/ir"
)

// Frame is one entry in the scope stack: a named scope (module, class,
// function, lambda, ...) with its own FQN and the node that introduced
// it.
type Frame struct {
	Kind   ir.NodeKind
	Name   string
	FQN    string
	NodeID string
}

// symbolEntry tracks where a name was registered within a single frame,
// for shadowing detection against outer frames.
type symbolEntry struct {
	name   string
	typ    string // language-specific type tag, e.g. "variable", "parameter"
	nodeID string
	span   ir.Span
}

// Shadowing records one inner-scope declaration hiding an outer one,
// per spec §4.4 ("a SHADOWS edge is emitted between the two
// definitions").
type Shadowing struct {
	InnerName   string
	InnerType   string
	InnerNodeID string
	OuterName   string
	OuterType   string
	OuterNodeID string
}

// Stack is a stack of lexical scope frames, starting with a module
// frame pushed by the walker before it begins traversal.
type Stack struct {
	frames  []Frame
	symbols []map[string]symbolEntry // one map per frame, same indices as frames
	imports map[string]string        // alias -> fully-qualified import target
	shadows []Shadowing
}

// New creates a scope stack seeded with the module frame.
func New(moduleFQN, moduleNodeID string) *Stack {
	s := &Stack{imports: make(map[string]string)}
	s.Push(ir.KindModule, moduleFQN, moduleFQN, moduleNodeID)
	return s
}

// Push enters a new lexical scope.
func (s *Stack) Push(kind ir.NodeKind, name, fqn, nodeID string) {
	s.frames = append(s.frames, Frame{Kind: kind, Name: name, FQN: fqn, NodeID: nodeID})
	s.symbols = append(s.symbols, make(map[string]symbolEntry))
}

// Pop exits the current lexical scope. Popping the last (module) frame
// is a no-op, since a walker must always have a current scope.
func (s *Stack) Pop() {
	if len(s.frames) <= 1 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
	s.symbols = s.symbols[:len(s.symbols)-1]
}

// CurrentFQN returns the fully-qualified name of the innermost scope.
func (s *Stack) CurrentFQN() string {
	if len(s.frames) == 0 {
		return ""
	}
	return s.frames[len(s.frames)-1].FQN
}

// CurrentFrame returns the innermost frame.
func (s *Stack) CurrentFrame() Frame {
	if len(s.frames) == 0 {
		return Frame{}
	}
	return s.frames[len(s.frames)-1]
}

// BuildFQN builds a child FQN under the current scope, per spec §4.4:
// `current_fqn + "." + name`.
func (s *Stack) BuildFQN(name string) string {
	cur := s.CurrentFQN()
	if cur == "" {
		return name
	}
	return cur + "." + name
}

// RegisterSymbol records a declaration in the current scope and checks
// every enclosing scope for a same-named declaration. A match records a
// Shadowing (inner hides outer) per spec §4.4. When more than one
// enclosing scope declares the name, only the nearest enclosing one is
// recorded as shadowed; spans are not compared. Within one scope, a
// later registration of the same name replaces the earlier one.
func (s *Stack) RegisterSymbol(name, typ, nodeID string, span ir.Span) {
	if len(s.symbols) == 0 {
		return
	}
	current := s.symbols[len(s.symbols)-1]

	for i := len(s.symbols) - 2; i >= 0; i-- {
		outer, ok := s.symbols[i][name]
		if !ok {
			continue
		}
		s.shadows = append(s.shadows, Shadowing{
			InnerName: name, InnerType: typ, InnerNodeID: nodeID,
			OuterName: outer.name, OuterType: outer.typ, OuterNodeID: outer.nodeID,
		})
		break // innermost enclosing declaration wins the shadow relationship
	}

	current[name] = symbolEntry{name: name, typ: typ, nodeID: nodeID, span: span}
}

// LookupSymbol searches from the innermost scope outward for name,
// returning its node ID.
func (s *Stack) LookupSymbol(name string) (nodeID string, ok bool) {
	for i := len(s.symbols) - 1; i >= 0; i-- {
		if e, found := s.symbols[i][name]; found {
			return e.nodeID, true
		}
	}
	return "", false
}

// RegisterImport records an import alias -> fully-qualified target
// mapping, consulted by the type resolver's import-alias substitution
// step (spec §4.3 step 3).
func (s *Stack) RegisterImport(alias, full string) {
	s.imports[alias] = full
}

// ResolveImportAlias returns the fully-qualified target for an import
// alias, if one was registered.
func (s *Stack) ResolveImportAlias(alias string) (string, bool) {
	full, ok := s.imports[alias]
	return full, ok
}

// Shadowings returns every shadowing detected so far.
func (s *Stack) Shadowings() []Shadowing {
	return s.shadows
}

// Depth returns the number of frames currently on the stack.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// String renders the current scope path, for diagnostics.
func (s *Stack) String() string {
	names := make([]string, len(s.frames))
	for i, f := range s.frames {
		names[i] = fmt.Sprintf("%s(%s)", f.Name, f.Kind)
	}
	return strings.Join(names, " > ")
}
