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

// NodeKind enumerates the kinds of program structure a walker can emit.
type NodeKind string

const (
	KindFile            NodeKind = "File"
	KindModule          NodeKind = "Module"
	KindClass           NodeKind = "Class"
	KindInterface       NodeKind = "Interface"
	KindEnum            NodeKind = "Enum"
	KindMethod          NodeKind = "Method"
	KindFunction        NodeKind = "Function"
	KindLambda          NodeKind = "Lambda"
	KindField           NodeKind = "Field"
	KindVariable        NodeKind = "Variable"
	KindParameter       NodeKind = "Parameter"
	KindImport          NodeKind = "Import"
	KindTypeParameter   NodeKind = "TypeParameter"
	KindMethodReference NodeKind = "MethodReference"
	KindTryCatch        NodeKind = "TryCatch"
)

// EdgeKind enumerates the typed relationships between nodes.
type EdgeKind string

const (
	EdgeContains   EdgeKind = "CONTAINS"
	EdgeCalls      EdgeKind = "CALLS"
	EdgeImports    EdgeKind = "IMPORTS"
	EdgeInherits   EdgeKind = "INHERITS"
	EdgeImplements EdgeKind = "IMPLEMENTS"
	EdgeReferences EdgeKind = "REFERENCES"
	EdgeThrows     EdgeKind = "THROWS"
	EdgeCaptures   EdgeKind = "CAPTURES"
	EdgeAccesses   EdgeKind = "ACCESSES"
	EdgeShadows    EdgeKind = "SHADOWS"
)

// MethodReferenceKind classifies a `Qualifier::Member` method reference.
type MethodReferenceKind string

const (
	RefStatic          MethodReferenceKind = "STATIC"
	RefInstanceBound   MethodReferenceKind = "INSTANCE_BOUND"
	RefInstanceUnbound MethodReferenceKind = "INSTANCE_UNBOUND"
	RefConstructor     MethodReferenceKind = "CONSTRUCTOR"
)

// Span locates a node in its source file. Lines are 1-based, columns are
// 0-based, matching the convention used by the tree-sitter parse oracle.
type Span struct {
	StartLine int `json:"start_line" msgpack:"start_line"`
	StartCol  int `json:"start_col" msgpack:"start_col"`
	EndLine   int `json:"end_line" msgpack:"end_line"`
	EndCol    int `json:"end_col" msgpack:"end_col"`
}

// ControlFlowSummary is the per-callable complexity summary computed by
// a language walker's iterative branch/loop/try traversal.
type ControlFlowSummary struct {
	Cyclomatic  int  `json:"cyclomatic" msgpack:"cyclomatic"`
	HasLoop     bool `json:"has_loop" msgpack:"has_loop"`
	HasTry      bool `json:"has_try" msgpack:"has_try"`
	BranchCount int  `json:"branch_count" msgpack:"branch_count"`
}

// Node is a unit of program structure: a file, a class, a function, a
// variable binding, an import, and so on.
type Node struct {
	ID                  string              `json:"id" msgpack:"id"`
	StableID            string              `json:"stable_id" msgpack:"stable_id"`
	Kind                NodeKind            `json:"kind" msgpack:"kind"`
	FQN                 string              `json:"fqn" msgpack:"fqn"`
	FilePath            string              `json:"file_path" msgpack:"file_path"`
	Span                Span                `json:"span" msgpack:"span"`
	Language            string              `json:"language" msgpack:"language"`
	ParentID            string              `json:"parent_id,omitempty" msgpack:"parent_id,omitempty"`
	BodySpan            *Span               `json:"body_span,omitempty" msgpack:"body_span,omitempty"`
	SignatureID         string              `json:"signature_id,omitempty" msgpack:"signature_id,omitempty"`
	DeclaredTypeID      string              `json:"declared_type_id,omitempty" msgpack:"declared_type_id,omitempty"`
	ControlFlowSummary  *ControlFlowSummary `json:"control_flow_summary,omitempty" msgpack:"control_flow_summary,omitempty"`
	Attrs               map[string]any      `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	ContentHash         string              `json:"content_hash" msgpack:"content_hash"`
}

// Edge is a typed, directed relationship between two nodes. TargetID may
// name a node outside the current document; Unresolved marks edges whose
// target has not yet been bound to a real node by the cross-file
// resolver (C9).
type Edge struct {
	ID         string         `json:"id" msgpack:"id"`
	Kind       EdgeKind       `json:"kind" msgpack:"kind"`
	SourceID   string         `json:"source_id" msgpack:"source_id"`
	TargetID   string         `json:"target_id" msgpack:"target_id"`
	Span       *Span          `json:"span,omitempty" msgpack:"span,omitempty"`
	Attrs      map[string]any `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Unresolved bool           `json:"unresolved,omitempty" msgpack:"unresolved,omitempty"`
}

// TypeResolutionLevel is the monotonic confidence ladder a TypeEntity's
// binding climbs as more context becomes available.
type TypeResolutionLevel string

const (
	ResolutionRaw     TypeResolutionLevel = "raw"
	ResolutionBuiltin TypeResolutionLevel = "builtin"
	ResolutionLocal   TypeResolutionLevel = "local"
	ResolutionModule  TypeResolutionLevel = "module"
	ResolutionProject TypeResolutionLevel = "project"
	ResolutionExternal TypeResolutionLevel = "external"
)

// TypeFlavor classifies the general shape of a resolved type.
type TypeFlavor string

const (
	FlavorPrimitive TypeFlavor = "primitive"
	FlavorBuiltin   TypeFlavor = "builtin"
	FlavorUser      TypeFlavor = "user"
	FlavorExternal  TypeFlavor = "external"
	FlavorTypeVar   TypeFlavor = "typevar"
	FlavorGeneric   TypeFlavor = "generic"
)

// TypeEntity is a resolved type reference, produced by the type resolver
// (C3) and attached to nodes via DeclaredTypeID or to signatures via
// ParameterTypeIDs/ReturnTypeID.
type TypeEntity struct {
	ID              string              `json:"id" msgpack:"id"`
	Raw             string              `json:"raw" msgpack:"raw"`
	Flavor          TypeFlavor          `json:"flavor" msgpack:"flavor"`
	IsNullable      bool                `json:"is_nullable" msgpack:"is_nullable"`
	ResolutionLevel TypeResolutionLevel `json:"resolution_level" msgpack:"resolution_level"`
	ResolvedTarget  string              `json:"resolved_target,omitempty" msgpack:"resolved_target,omitempty"`
	GenericParamIDs []string            `json:"generic_param_ids,omitempty" msgpack:"generic_param_ids,omitempty"`
}

// SignatureEntity is the callable interface of a Method/Function/Lambda
// node: parameter and return types, modifiers, and a stable hash that
// changes only when the interface itself changes.
type SignatureEntity struct {
	ID                string   `json:"id" msgpack:"id"`
	OwnerNodeID       string   `json:"owner_node_id" msgpack:"owner_node_id"`
	Name              string   `json:"name" msgpack:"name"`
	Raw               string   `json:"raw" msgpack:"raw"`
	ParameterTypeIDs  []string `json:"parameter_type_ids,omitempty" msgpack:"parameter_type_ids,omitempty"`
	ReturnTypeID      string   `json:"return_type_id,omitempty" msgpack:"return_type_id,omitempty"`
	IsAsync           bool     `json:"is_async" msgpack:"is_async"`
	IsStatic          bool     `json:"is_static" msgpack:"is_static"`
	Visibility        string   `json:"visibility,omitempty" msgpack:"visibility,omitempty"`
	ThrowsTypeIDs     []string `json:"throws_type_ids,omitempty" msgpack:"throws_type_ids,omitempty"`
	SignatureHash     string   `json:"signature_hash" msgpack:"signature_hash"`
}

// ControlFlowGraph is a per-callable CFG index, supplementing the
// structural IR per original_source's document model (SPEC_FULL §12.1).
// Blocks and edges are identified deterministically via CFGBlockID/CFGID
// so the graph itself participates in the document's determinism
// invariant.
type ControlFlowGraph struct {
	ID           string         `json:"id" msgpack:"id"`
	OwnerID      string         `json:"owner_id" msgpack:"owner_id"`
	EntryBlockID string         `json:"entry_block_id" msgpack:"entry_block_id"`
	ExitBlockID  string         `json:"exit_block_id" msgpack:"exit_block_id"`
	Blocks       []CFGBlock     `json:"blocks" msgpack:"blocks"`
	Edges        []CFGBlockEdge `json:"edges" msgpack:"edges"`
}

// CFGBlock is one basic block inside a ControlFlowGraph.
type CFGBlock struct {
	ID   string `json:"id" msgpack:"id"`
	Span Span   `json:"span" msgpack:"span"`
	Kind string `json:"kind" msgpack:"kind"`
}

// CFGBlockEdge connects two basic blocks within a single ControlFlowGraph.
type CFGBlockEdge struct {
	ID       string `json:"id" msgpack:"id"`
	SourceID string `json:"source_id" msgpack:"source_id"`
	TargetID string `json:"target_id" msgpack:"target_id"`
	Kind     string `json:"kind" msgpack:"kind"`
}

// IRDocument is the unit of structural IR: everything produced by
// walking a single source file. Documents are independent of one
// another until the cross-file resolver (C9) binds cross-document
// edges.
type IRDocument struct {
	RepoID        string            `json:"repo_id" msgpack:"repo_id"`
	SnapshotID    string            `json:"snapshot_id" msgpack:"snapshot_id"`
	SchemaVersion string            `json:"schema_version" msgpack:"schema_version"`
	Nodes         []Node            `json:"nodes" msgpack:"nodes"`
	Edges         []Edge            `json:"edges" msgpack:"edges"`
	Types         []TypeEntity      `json:"types" msgpack:"types"`
	Signatures    []SignatureEntity `json:"signatures" msgpack:"signatures"`
	CFGs          []ControlFlowGraph `json:"cfgs,omitempty" msgpack:"cfgs,omitempty"`
	Meta          map[string]any    `json:"meta,omitempty" msgpack:"meta,omitempty"`

	// cacheMtime/cacheSize/cacheHash are populated by the cache stage
	// (C7) on documents it owns, to allow a subsequent run's fast/slow
	// path validation. They are not part of the wire schema: a document
	// that reaches a caller fresh from a walker never sets them.
	cacheMtime int64
	cacheSize  int64
	cacheHash  string

	// semanticSnapshot holds the C6 semantic IR layer (pkg/semanticir's
	// Snapshot) built over this document's Types/Signatures/CFGs, kept
	// as `any` so this package doesn't import pkg/semanticir (which
	// itself imports ir). Not part of the wire schema: it is a fast-
	// query structure rebuilt from the document, not persisted state.
	semanticSnapshot any
}

// CacheMtime returns the modification time recorded by the cache stage
// on a prior run, or zero if this document has never been cached.
func (d *IRDocument) CacheMtime() int64 { return d.cacheMtime }

// CacheSize returns the file size recorded by the cache stage on a
// prior run, or zero if this document has never been cached.
func (d *IRDocument) CacheSize() int64 { return d.cacheSize }

// CacheHash returns the content hash recorded by the cache stage on a
// prior run, or the empty string if this document has never been
// cached or the slow path has never run against it.
func (d *IRDocument) CacheHash() string { return d.cacheHash }

// SetCacheMetadata records fast/slow path validation state. Only the
// cache stage should call this, and only on documents it owns for the
// duration of its own run.
func (d *IRDocument) SetCacheMetadata(mtime, size int64, hash string) {
	d.cacheMtime = mtime
	d.cacheSize = size
	d.cacheHash = hash
}

// SemanticSnapshot returns the C6 semantic IR snapshot the semantic IR
// stage attached to this document, or nil if that stage hasn't run.
// Callers type-assert to semanticir.Snapshot.
func (d *IRDocument) SemanticSnapshot() any { return d.semanticSnapshot }

// SetSemanticSnapshot records the C6 semantic IR snapshot for this
// document. Only the semantic IR stage should call this.
func (d *IRDocument) SetSemanticSnapshot(snapshot any) {
	d.semanticSnapshot = snapshot
}

// Symbol is a symbol-table entry: the binding of a fully-qualified name
// to the node that declares it.
type Symbol struct {
	NodeID string   `json:"node_id"`
	File   string   `json:"file"`
	Kind   NodeKind `json:"kind"`
}

// GlobalContextStats mirrors §3.3's "statistics" field.
type GlobalContextStats struct {
	TotalSymbols     int            `json:"total_symbols"`
	TotalFiles       int            `json:"total_files"`
	TotalImports     int            `json:"total_imports"`
	BuildDurationMs  float64        `json:"build_duration_ms"`
	FQNCollisions    []FQNCollision `json:"fqn_collisions,omitempty"`
	CyclesBroken     int            `json:"cycles_broken"`
}

// FQNCollision records a symbol-table collision: the second and later
// declarations of an FQN that "first writer wins" discarded.
type FQNCollision struct {
	FQN           string `json:"fqn"`
	WinningNodeID string `json:"winning_node_id"`
	LosingNodeID  string `json:"losing_node_id"`
	LosingFile    string `json:"losing_file"`
}

// GlobalContext is the output of the cross-file resolver stage (C9): a
// symbol table, a file dependency graph, and a deterministic build
// order.
type GlobalContext struct {
	SymbolTable       map[string]Symbol   `json:"symbol_table"`
	FileDependencies  map[string][]string `json:"file_dependencies"`
	FileDependents    map[string][]string `json:"file_dependents"`
	TopologicalOrder  []string            `json:"topological_order"`
	Statistics        GlobalContextStats  `json:"statistics"`
}

// CacheState is the cache stage's (C7) per-run report.
type CacheState struct {
	TotalFiles    int `json:"total_files"`
	CacheHits     int `json:"cache_hits"`
	CacheMisses   int `json:"cache_misses"`
	FastPathHits  int `json:"fast_path_hits"`
	SlowPathHits  int `json:"slow_path_hits"`
}

// ProvenanceData is the provenance stage's (C10) per-file fingerprint
// record.
type ProvenanceData struct {
	FilePath        string            `json:"file_path"`
	FileHash        string            `json:"file_hash"`
	FunctionHashes  map[string]string `json:"function_hashes"`
	// StatementHashes is reserved for future per-statement fingerprinting
	// (SPEC_FULL §12.2); it is always empty today.
	StatementHashes map[string]string `json:"statement_hashes,omitempty"`
	HashAlgorithm   string            `json:"hash_algorithm"`
}

// StageMetrics is one stage's execution report, appended to a
// StageContext after every run (C11).
type StageMetrics struct {
	StageName      string         `json:"stage_name"`
	DurationMs     float64        `json:"duration_ms"`
	Error          string         `json:"error,omitempty"`
	ItemsProcessed int            `json:"items_processed"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// PipelineResult is the pipeline's exposed return value (§6).
type PipelineResult struct {
	IRDocuments       map[string]*IRDocument `json:"-"`
	GlobalCtx         *GlobalContext         `json:"global_ctx,omitempty"`
	StageMetrics      []StageMetrics         `json:"stage_metrics"`
	TotalDurationMs   float64                `json:"total_duration_ms"`
	Errors            []string               `json:"errors"`
}

// IsSuccess reports whether the pipeline completed without any stage or
// per-file fault being recorded.
func (r *PipelineResult) IsSuccess() bool {
	return len(r.Errors) == 0
}
