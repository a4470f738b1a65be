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

// Package resolver implements the cross-file resolver stage (C9): it
// builds the GlobalContext symbol table and dependency graph, and
// rewrites each document's unresolved edges against it.
package resolver

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kraklabs/irengine/internal/metrics"
	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
)

// externallyVisible reports whether a node kind participates in the
// symbol table at all, per spec §4.9 step 1. Field visibility ≥
// package would further restrict Field nodes, but none of this
// pipeline's walkers tag a Field's access modifier today, so every
// Field is treated as visible — a conservative widening documented in
// DESIGN.md rather than a silent narrowing that would drop real
// symbols.
func externallyVisible(kind ir.NodeKind) bool {
	switch kind {
	case ir.KindClass, ir.KindInterface, ir.KindEnum, ir.KindFunction, ir.KindMethod, ir.KindField:
		return true
	}
	return false
}

// edgeTargetName extracts the simple/qualified name an unresolved edge
// carries to look up in the symbol table, per the attribute key each
// language walker uses for that edge kind.
func edgeTargetName(e ir.Edge) (string, bool) {
	var key string
	switch e.Kind {
	case ir.EdgeCalls:
		key = "callee_name"
	case ir.EdgeInherits:
		key = "base_name"
	case ir.EdgeImplements:
		key = "interface_name"
	case ir.EdgeReferences:
		key = "target_name"
	case ir.EdgeImports:
		key = "full_symbol"
		if _, ok := e.Attrs[key]; !ok {
			key = "module"
		}
	default:
		return "", false
	}
	name, ok := e.Attrs[key].(string)
	return name, ok && name != ""
}

// isUnresolved normalizes the two ways a walker marks an edge
// unresolved: the Edge.Unresolved field (CALLS, IMPORTS) and the
// attrs["unresolved"] bag entry (INHERITS, IMPLEMENTS, REFERENCES) —
// both survive from C5 since neither walker was revisited to
// standardize on one, and normalizing here is simpler than touching
// three already-complete walkers for a cosmetic inconsistency.
func isUnresolved(e ir.Edge) bool {
	if e.Unresolved {
		return true
	}
	if v, ok := e.Attrs["unresolved"]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Stage adapts FullBuild/IncrementalUpdate to the pipeline.Stage
// protocol (C11).
type Stage struct{}

// NewStage constructs the cross-file resolver stage.
func NewStage() *Stage { return &Stage{} }

func (s *Stage) Name() string { return "cross_file_resolver" }

func (s *Stage) ShouldSkip(ctx *pipeline.StageContext) (bool, string) {
	if len(ctx.IRDocuments) == 0 {
		return true, "no documents to resolve"
	}
	return false, ""
}

func (s *Stage) Run(ctx context.Context, sc *pipeline.StageContext) (*pipeline.StageContext, error) {
	next := sc.Clone()

	var gctx *ir.GlobalContext
	var err error
	if sc.Config.Incremental && sc.GlobalCtx != nil && len(sc.ChangedFiles) > 0 {
		gctx, err = IncrementalUpdate(sc.GlobalCtx, next.IRDocuments, sc.ChangedFiles)
	} else {
		gctx, err = FullBuild(next.IRDocuments)
	}
	if err != nil {
		return sc, err
	}

	next.GlobalCtx = gctx
	metrics.RecordFQNCollision(len(gctx.Statistics.FQNCollisions))
	metrics.RecordCyclesBroken(gctx.Statistics.CyclesBroken)

	next.PendingMetrics = &ir.StageMetrics{
		ItemsProcessed: len(next.IRDocuments),
		Metadata: map[string]any{
			"total_symbols": gctx.Statistics.TotalSymbols,
			"cycles_broken": gctx.Statistics.CyclesBroken,
		},
	}
	return next, nil
}

// symbolCandidate is one (fqn, Symbol) pair found while indexing a
// single document, collected in parallel and merged deterministically
// afterward.
type symbolCandidate struct {
	fqn    string
	symbol ir.Symbol
}

// FullBuild implements spec §4.9's full-build algorithm: symbol
// indexing, import/call/inheritance/implementation resolution,
// dependency graph construction, and topological sort.
func FullBuild(docs map[string]*ir.IRDocument) (*ir.GlobalContext, error) {
	start := time.Now()

	paths := sortedKeys(docs)
	symbolTable, collisions := buildSymbolTable(docs, paths)
	totalImports := resolveEdges(docs, paths, symbolTable)

	fileDependencies := buildFileDependencies(docs, paths, symbolTable)
	fileDependents := invertDependencies(fileDependencies)
	order, cyclesBroken := topologicalOrder(paths, fileDependencies)

	stats := ir.GlobalContextStats{
		TotalSymbols:    len(symbolTable),
		TotalFiles:      len(docs),
		TotalImports:    totalImports,
		BuildDurationMs: float64(time.Since(start).Milliseconds()),
		FQNCollisions:   collisions,
		CyclesBroken:    cyclesBroken,
	}

	return &ir.GlobalContext{
		SymbolTable:      symbolTable,
		FileDependencies: fileDependencies,
		FileDependents:   fileDependents,
		TopologicalOrder: order,
		Statistics:       stats,
	}, nil
}

// IncrementalUpdate implements spec §4.9's incremental algorithm: the
// transitive dependent closure of changedFiles is recomputed and
// stitched back into a copy of prior, leaving every untouched file's
// symbol-table entries and dependency edges in place. The result is
// required to be semantically identical to calling FullBuild(docs)
// from scratch; closure-restricted re-resolution is purely a
// performance optimization over that baseline; the two must agree on
// every field above, or incremental adoption would be unsound.
func IncrementalUpdate(prior *ir.GlobalContext, docs map[string]*ir.IRDocument, changedFiles map[string]bool) (*ir.GlobalContext, error) {
	start := time.Now()

	closure := transitiveDependentClosure(changedFiles, prior.FileDependents)

	allPaths := sortedKeys(docs)
	closurePaths := make([]string, 0, len(closure))
	for _, p := range allPaths {
		if closure[p] {
			closurePaths = append(closurePaths, p)
		}
	}

	symbolTable := make(map[string]ir.Symbol, len(prior.SymbolTable))
	for fqn, sym := range prior.SymbolTable {
		if !closure[sym.File] {
			symbolTable[fqn] = sym
		}
	}

	closureDocs := make(map[string]*ir.IRDocument, len(closurePaths))
	for _, p := range closurePaths {
		closureDocs[p] = docs[p]
	}
	newSymbols, collisions := buildSymbolTable(closureDocs, closurePaths)
	for fqn, sym := range newSymbols {
		symbolTable[fqn] = sym
	}

	totalImports := resolveEdges(docs, allPaths, symbolTable)

	fileDependencies := make(map[string][]string, len(prior.FileDependencies))
	for f, deps := range prior.FileDependencies {
		if !closure[f] {
			fileDependencies[f] = deps
		}
	}
	newDeps := buildFileDependencies(closureDocs, closurePaths, symbolTable)
	for f, deps := range newDeps {
		fileDependencies[f] = deps
	}

	fileDependents := invertDependencies(fileDependencies)
	order, cyclesBroken := topologicalOrder(allPaths, fileDependencies)

	stats := ir.GlobalContextStats{
		TotalSymbols:    len(symbolTable),
		TotalFiles:      len(docs),
		TotalImports:    totalImports,
		BuildDurationMs: float64(time.Since(start).Milliseconds()),
		FQNCollisions:   collisions,
		CyclesBroken:    cyclesBroken,
	}

	return &ir.GlobalContext{
		SymbolTable:      symbolTable,
		FileDependencies: fileDependencies,
		FileDependents:   fileDependents,
		TopologicalOrder: order,
		Statistics:       stats,
	}, nil
}

// transitiveDependentClosure starts from changedFiles and repeatedly
// adds each member's dependents until no new file is added (spec
// §4.9 incremental step 1).
func transitiveDependentClosure(changedFiles map[string]bool, fileDependents map[string][]string) map[string]bool {
	closure := map[string]bool{}
	var queue []string
	for f := range changedFiles {
		closure[f] = true
		queue = append(queue, f)
	}
	sort.Strings(queue)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, dependent := range fileDependents[f] {
			if !closure[dependent] {
				closure[dependent] = true
				queue = append(queue, dependent)
			}
		}
	}
	return closure
}

func sortedKeys(docs map[string]*ir.IRDocument) []string {
	paths := make([]string, 0, len(docs))
	for p := range docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// buildSymbolTable indexes every externally-visible node across every
// document. Per-document candidate collection is embarrassingly
// parallel (spec §5); the merge step is sequential and deterministic:
// a collision is broken by lexicographic file path, the same tie-break
// principle spec §4.9 step 5 uses for cycle-broken topological order,
// so "first wins" has one consistent meaning across this stage.
func buildSymbolTable(docs map[string]*ir.IRDocument, paths []string) (map[string]ir.Symbol, []ir.FQNCollision) {
	type fileCandidates struct {
		path       string
		candidates []symbolCandidate
	}

	perFile := make([]fileCandidates, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := docs[path]
			var cands []symbolCandidate
			for _, node := range doc.Nodes {
				if !externallyVisible(node.Kind) {
					continue
				}
				cands = append(cands, symbolCandidate{
					fqn:    node.FQN,
					symbol: ir.Symbol{NodeID: node.ID, File: path, Kind: node.Kind},
				})
			}
			perFile[i] = fileCandidates{path: path, candidates: cands}
		}()
	}
	wg.Wait()

	symbolTable := map[string]ir.Symbol{}
	var collisions []ir.FQNCollision

	// Merge in lexicographic file-path order so "first wins" is
	// deterministic regardless of goroutine completion order above.
	for _, pf := range perFile {
		for _, c := range pf.candidates {
			existing, ok := symbolTable[c.fqn]
			if !ok {
				symbolTable[c.fqn] = c.symbol
				continue
			}
			if existing.File <= c.symbol.File {
				collisions = append(collisions, ir.FQNCollision{
					FQN: c.fqn, WinningNodeID: existing.NodeID,
					LosingNodeID: c.symbol.NodeID, LosingFile: c.symbol.File,
				})
			} else {
				collisions = append(collisions, ir.FQNCollision{
					FQN: c.fqn, WinningNodeID: c.symbol.NodeID,
					LosingNodeID: existing.NodeID, LosingFile: existing.File,
				})
				symbolTable[c.fqn] = c.symbol
			}
		}
	}

	return symbolTable, collisions
}

// lookupByName finds a symbol whose FQN either equals name exactly or
// ends in ".name" — walkers emit unresolved edges with a simple or
// dotted name (e.g. "foo", "pkg.Foo"), never the full owning-class FQN
// a method's own symbol-table key carries.
func lookupByName(symbolTable map[string]ir.Symbol, name string) (ir.Symbol, bool) {
	if sym, ok := symbolTable[name]; ok {
		return sym, true
	}
	suffix := "." + name
	var match ir.Symbol
	found := false
	for fqn, sym := range symbolTable {
		if len(fqn) > len(suffix) && fqn[len(fqn)-len(suffix):] == suffix {
			if !found || sym.File < match.File {
				match, found = sym, true
			}
		}
	}
	return match, found
}

// resolveEdges rewrites every unresolved edge whose target name is
// found in the symbol table (spec §4.9 steps 2-3), per document, and
// returns the total IMPORTS edge count for statistics.
func resolveEdges(docs map[string]*ir.IRDocument, paths []string, symbolTable map[string]ir.Symbol) int {
	var totalImports int64

	var wg sync.WaitGroup
	for _, path := range paths {
		doc := docs[path]
		wg.Add(1)
		go func(doc *ir.IRDocument) {
			defer wg.Done()
			for i := range doc.Edges {
				e := &doc.Edges[i]
				if e.Kind == ir.EdgeImports {
					atomic.AddInt64(&totalImports, 1)
				}
				if !isUnresolved(*e) {
					continue
				}
				name, ok := edgeTargetName(*e)
				if !ok {
					continue
				}
				sym, found := lookupByName(symbolTable, name)
				if !found {
					if e.Attrs == nil {
						e.Attrs = map[string]any{}
					}
					e.Attrs["target_name"] = name
					continue
				}
				e.TargetID = sym.NodeID
				e.Unresolved = false
				if e.Attrs != nil {
					delete(e.Attrs, "unresolved")
				}
			}
		}(doc)
	}
	wg.Wait()

	return int(totalImports)
}

// buildFileDependencies derives file → {imported files} from resolved
// IMPORTS edges: once an edge's target symbol is known, its owning
// file is the dependency.
func buildFileDependencies(docs map[string]*ir.IRDocument, paths []string, symbolTable map[string]ir.Symbol) map[string][]string {
	deps := map[string]map[string]bool{}
	for _, path := range paths {
		doc := docs[path]
		for _, e := range doc.Edges {
			if e.Kind != ir.EdgeImports || e.Unresolved {
				continue
			}
			targetFile := fileOfNodeID(symbolTable, e.TargetID)
			if targetFile == "" || targetFile == path {
				continue
			}
			if deps[path] == nil {
				deps[path] = map[string]bool{}
			}
			deps[path][targetFile] = true
		}
	}

	result := make(map[string][]string, len(deps))
	for path, set := range deps {
		files := make([]string, 0, len(set))
		for f := range set {
			files = append(files, f)
		}
		sort.Strings(files)
		result[path] = files
	}
	return result
}

func fileOfNodeID(symbolTable map[string]ir.Symbol, nodeID string) string {
	for _, sym := range symbolTable {
		if sym.NodeID == nodeID {
			return sym.File
		}
	}
	return ""
}

func invertDependencies(fileDependencies map[string][]string) map[string][]string {
	dependents := map[string]map[string]bool{}
	for file, deps := range fileDependencies {
		for _, dep := range deps {
			if dependents[dep] == nil {
				dependents[dep] = map[string]bool{}
			}
			dependents[dep][file] = true
		}
	}
	result := make(map[string][]string, len(dependents))
	for file, set := range dependents {
		files := make([]string, 0, len(set))
		for f := range set {
			files = append(files, f)
		}
		sort.Strings(files)
		result[file] = files
	}
	return result
}

// topologicalOrder runs Kahn's algorithm over fileDependencies: file A
// depends on file B means B must come before A in the returned order
// (B is a prerequisite). Ties among multiple zero-in-degree nodes break
// by lexicographic path order. A stall (no zero-in-degree node left)
// means the remaining subgraph has a cycle; only the stuck strongly-
// connected component is emitted (readySCC), not every remaining node,
// so a file outside the cycle that merely depends on one of its
// members still sorts after it once Kahn's resumes, per spec §4.9
// step 5 and scenario S6.
func topologicalOrder(paths []string, fileDependencies map[string][]string) ([]string, int) {
	inDegree := map[string]int{}
	for _, p := range paths {
		inDegree[p] = 0
	}
	// An edge path -> dep means dep must precede path, i.e. path has an
	// incoming edge from dep in the "must come after" DAG.
	for _, p := range paths {
		inDegree[p] += len(fileDependencies[p])
	}

	remaining := map[string]bool{}
	for _, p := range paths {
		remaining[p] = true
	}

	var order []string
	cyclesBroken := 0

	for len(remaining) > 0 {
		var ready []string
		for p := range remaining {
			if inDegree[p] == 0 {
				ready = append(ready, p)
			}
		}
		sort.Strings(ready)

		if len(ready) == 0 {
			// Stall: some strongly-connected component of the
			// remaining subgraph has no zero-in-degree node. Emit only
			// that component's nodes (lexicographic order), not every
			// remaining node — a file outside the cycle that merely
			// depends on one of its members must still come after it,
			// per spec.md's "break them by emitting the
			// strongly-connected component nodes" and resume Kahn's
			// for whatever that unblocks.
			scc := readySCC(remaining, fileDependencies)
			sort.Strings(scc)
			order = append(order, scc...)
			for _, p := range scc {
				delete(remaining, p)
			}
			for _, p := range scc {
				for _, dependent := range dependentsOf(p, fileDependencies, remaining) {
					inDegree[dependent]--
				}
			}
			cyclesBroken++
			continue
		}

		for _, p := range ready {
			order = append(order, p)
			delete(remaining, p)
			for _, dependent := range dependentsOf(p, fileDependencies, remaining) {
				inDegree[dependent]--
			}
		}
	}

	return order, cyclesBroken
}

// dependentsOf returns the still-remaining files whose
// fileDependencies list includes p.
func dependentsOf(p string, fileDependencies map[string][]string, remaining map[string]bool) []string {
	var out []string
	for file := range remaining {
		for _, dep := range fileDependencies[file] {
			if dep == p {
				out = append(out, file)
				break
			}
		}
	}
	return out
}

// readySCC finds the strongly-connected component of the subgraph
// induced by remaining (edges restricted to fileDependencies entries
// that point at another remaining node) whose members depend on
// nothing outside the component — the condensation-graph equivalent of
// a zero-in-degree node. Ties among multiple ready components are
// broken by each component's lexicographically smallest member.
func readySCC(remaining map[string]bool, fileDependencies map[string][]string) []string {
	nodes := make([]string, 0, len(remaining))
	for p := range remaining {
		nodes = append(nodes, p)
	}
	sort.Strings(nodes)

	edges := make(map[string][]string, len(nodes))
	for _, p := range nodes {
		for _, dep := range fileDependencies[p] {
			if remaining[dep] {
				edges[p] = append(edges[p], dep)
			}
		}
	}

	components := stronglyConnectedComponents(nodes, edges)

	var best []string
	for _, comp := range components {
		inComp := make(map[string]bool, len(comp))
		for _, p := range comp {
			inComp[p] = true
		}
		ready := true
		for _, p := range comp {
			for _, dep := range edges[p] {
				if !inComp[dep] {
					ready = false
					break
				}
			}
			if !ready {
				break
			}
		}
		if !ready {
			continue
		}
		if best == nil || smallest(comp) < smallest(best) {
			best = comp
		}
	}

	if best == nil {
		// Defensive fallback: the condensation of a finite DAG always
		// has a source, so this should be unreachable. Emitting
		// everything still guarantees termination if it ever is.
		return nodes
	}
	return best
}

func smallest(ss []string) string {
	min := ss[0]
	for _, s := range ss[1:] {
		if s < min {
			min = s
		}
	}
	return min
}

// stronglyConnectedComponents runs Tarjan's algorithm over nodes/edges,
// returning components in no particular order.
func stronglyConnectedComponents(nodes []string, edges map[string][]string) [][]string {
	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var components [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			components = append(components, comp)
		}
	}

	for _, v := range nodes {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}
	return components
}
