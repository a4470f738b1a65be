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

// Package typeresolve implements the type resolver (C3): mapping a raw
// type string to a TypeEntity at the most specific resolution level
// current context supports.
package typeresolve

import (
	"strings"

	"github.com/kraklabs/irengine/pkg/ir"
)

// builtinTypes covers primitives and the typing-module vocabulary
// shared by Python/Java/TypeScript annotations.
var builtinTypes = map[string]bool{
	"int": true, "str": true, "float": true, "bool": true, "bytes": true, "None": true,
	"list": true, "List": true, "dict": true, "Dict": true, "set": true, "Set": true,
	"tuple": true, "Tuple": true, "frozenset": true,
	"Any": true, "Optional": true, "Union": true, "Callable": true, "Iterable": true,
	"Iterator": true, "Sequence": true, "Generator": true, "Coroutine": true,
	"Awaitable": true, "AsyncIterator": true, "AsyncIterable": true, "Type": true,
	"TypeVar": true, "Generic": true, "Protocol": true, "Final": true, "Literal": true,
	"ClassVar": true, "Annotated": true, "object": true, "type": true,
	// Java/TS primitives and common builtins
	"void": true, "boolean": true, "char": true, "byte": true, "short": true,
	"long": true, "double": true, "string": true, "number": true, "null": true,
	"undefined": true, "any": true, "unknown": true, "var": true,
}

// stdlibTypes covers well-known standard-library types that should
// resolve to EXTERNAL rather than falling through to RAW.
var stdlibTypes = map[string]bool{
	"Path": true, "PurePath": true, "PosixPath": true, "WindowsPath": true,
	"datetime": true, "date": true, "time": true, "timedelta": true, "timezone": true,
	"defaultdict": true, "OrderedDict": true, "Counter": true, "deque": true, "namedtuple": true,
	"ABC": true, "ABCMeta": true,
	"StringIO": true, "BytesIO": true, "TextIO": true, "BinaryIO": true,
	"Pattern": true, "Match": true,
	"Enum": true, "IntEnum": true, "StrEnum": true, "Flag": true, "IntFlag": true,
	"dataclass": true, "contextmanager": true, "asynccontextmanager": true,
	"partial": true, "wraps": true,
	"Self": true, "Never": true, "Required": true, "NotRequired": true, "TypedDict": true,
	"ParamSpec": true, "Concatenate": true,
	"UUID": true, "Decimal": true, "Fraction": true, "Logger": true,
	"Task": true, "Future": true, "Event": true, "Lock": true, "Semaphore": true,
	// Java
	"String": true, "Integer": true, "Long": true, "Double": true, "Boolean": true,
	"Map": true, "Stream": true, "Collection": true,
	// TypeScript lib.dom / stdlib-ish
	"Promise": true, "Array": true, "Record": true, "Partial": true, "Readonly": true,
	"Date": true, "RegExp": true, "Error": true,
}

// Resolver resolves raw type annotation strings to TypeEntity values,
// maintaining registries for LOCAL/MODULE/PROJECT resolution built up
// incrementally by a language walker or in bulk via BuildIndexFromIR.
type Resolver struct {
	repoID string

	localClasses  map[string]string // class name -> node id (same file)
	moduleTypes   map[string]string // type name -> node id (same package)
	projectTypes  map[string]string // fqn or simple name -> node id (cross-package)
	importAliases map[string]string // alias -> original name
}

// New creates a Resolver scoped to a single repository.
func New(repoID string) *Resolver {
	return &Resolver{
		repoID:        repoID,
		localClasses:  make(map[string]string),
		moduleTypes:   make(map[string]string),
		projectTypes:  make(map[string]string),
		importAliases: make(map[string]string),
	}
}

// RegisterLocalClass records a class defined in the file currently
// being resolved, for LOCAL resolution.
func (r *Resolver) RegisterLocalClass(className, nodeID string) {
	r.localClasses[className] = nodeID
}

// RegisterModuleType records a type from the same package, for MODULE
// resolution.
func (r *Resolver) RegisterModuleType(typeName, nodeID string) {
	r.moduleTypes[typeName] = nodeID
}

// RegisterProjectType records a project-wide type by its fully
// qualified name, for PROJECT resolution. It is also indexed by its
// simple (last-segment) name, without overwriting an existing entry.
func (r *Resolver) RegisterProjectType(fqn, nodeID string) {
	r.projectTypes[fqn] = nodeID
	simple := fqn
	if i := strings.LastIndex(fqn, "."); i >= 0 {
		simple = fqn[i+1:]
	}
	if _, exists := r.projectTypes[simple]; !exists {
		r.projectTypes[simple] = nodeID
	}
}

// RegisterImportAlias records an import alias substitution applied
// before classification.
func (r *Resolver) RegisterImportAlias(alias, original string) {
	r.importAliases[alias] = original
}

// ResetLocalClasses clears the LOCAL registry, called by a walker
// between files since LOCAL resolution is file-scoped.
func (r *Resolver) ResetLocalClasses() {
	r.localClasses = make(map[string]string)
}

// BuildIndexFromIR scans an IRDocument's class nodes (registering them
// project-wide) and walks its IMPORTS edges to populate MODULE-level
// symbols and aliases, per spec §4.3's build-from-IR step.
func (r *Resolver) BuildIndexFromIR(doc *ir.IRDocument) {
	if doc == nil {
		return
	}

	byID := make(map[string]*ir.Node, len(doc.Nodes))
	for i := range doc.Nodes {
		byID[doc.Nodes[i].ID] = &doc.Nodes[i]
	}

	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Kind != ir.KindClass || n.FQN == "" {
			continue
		}
		r.RegisterProjectType(n.FQN, n.ID)
	}

	for _, e := range doc.Edges {
		if e.Kind != ir.EdgeImports {
			continue
		}
		target, ok := byID[e.TargetID]
		if !ok || target.Kind != ir.KindClass {
			continue
		}
		source, ok := byID[e.SourceID]
		if ok && packageOf(source.FilePath) == packageOf(target.FilePath) {
			name := nameFromFQN(target.FQN)
			if name != "" {
				r.RegisterModuleType(name, target.ID)
			}
		}
		if alias, ok := e.Attrs["alias"].(string); ok && alias != "" {
			if name := nameFromFQN(target.FQN); name != "" {
				r.RegisterImportAlias(alias, name)
			}
		}
	}
}

func packageOf(filePath string) string {
	if i := strings.LastIndex(filePath, "/"); i >= 0 {
		return filePath[:i]
	}
	return ""
}

func nameFromFQN(fqn string) string {
	if i := strings.LastIndex(fqn, "."); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}

// Resolve resolves a raw type annotation string to a TypeEntity,
// implementing the full C3 algorithm: normalize, extract base name,
// alias-substitute, dispatch in strict order, detect nullability, and
// recursively resolve generic parameters.
func (r *Resolver) Resolve(rawType string) ir.TypeEntity {
	normalized := strings.TrimSpace(rawType)

	flavor, level, resolvedTarget := r.classify(normalized)

	return ir.TypeEntity{
		ID:               ir.TypeID(normalized, r.repoID),
		Raw:              normalized,
		Flavor:           flavor,
		IsNullable:       isNullable(normalized),
		ResolutionLevel:  level,
		ResolvedTarget:   resolvedTarget,
		GenericParamIDs:  r.extractGenericParamIDs(normalized),
	}
}

// classify implements the strict dispatch order from spec §4.3 step 4:
// builtin -> local -> module -> project (+ qualified suffix match) ->
// stdlib/external -> raw.
func (r *Resolver) classify(typeStr string) (ir.TypeFlavor, ir.TypeResolutionLevel, string) {
	baseType := baseName(typeStr)

	if original, ok := r.importAliases[baseType]; ok {
		baseType = original
	}

	if builtinTypes[baseType] {
		return ir.FlavorBuiltin, ir.ResolutionBuiltin, ""
	}

	if nodeID, ok := r.localClasses[baseType]; ok {
		return ir.FlavorUser, ir.ResolutionLocal, nodeID
	}

	if nodeID, ok := r.moduleTypes[baseType]; ok {
		return ir.FlavorUser, ir.ResolutionModule, nodeID
	}

	if nodeID, ok := r.projectTypes[baseType]; ok {
		return ir.FlavorUser, ir.ResolutionProject, nodeID
	}

	if strings.Contains(baseType, ".") {
		for fqn, nodeID := range r.projectTypes {
			if strings.HasSuffix(fqn, baseType) || strings.HasSuffix(baseType, nameFromFQN(fqn)) {
				return ir.FlavorUser, ir.ResolutionProject, nodeID
			}
		}
	}

	if stdlibTypes[baseType] {
		return ir.FlavorExternal, ir.ResolutionExternal, ""
	}

	return ir.FlavorExternal, ir.ResolutionRaw, ""
}

// baseName extracts the portion of a type string before its first
// generic-parameter bracket ('[' or '<'), per spec §4.3 step 2.
func baseName(typeStr string) string {
	cut := len(typeStr)
	if i := strings.IndexByte(typeStr, '['); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.IndexByte(typeStr, '<'); i >= 0 && i < cut {
		cut = i
	}
	return strings.TrimSpace(typeStr[:cut])
}

// isNullable detects Optional[X], X | None, None | X, per spec §4.3
// step 5.
func isNullable(typeStr string) bool {
	return strings.Contains(typeStr, "Optional[") ||
		strings.Contains(typeStr, "| None") ||
		strings.Contains(typeStr, "None |") ||
		strings.Contains(typeStr, "| null") ||
		strings.Contains(typeStr, "null |")
}

// extractGenericParamIDs splits the content of the outermost bracket
// pair at top-level commas (tracking bracket depth, per spec §4.3 step
// 6) and recursively resolves each parameter, returning their
// TypeEntity IDs.
func (r *Resolver) extractGenericParamIDs(typeStr string) []string {
	open := indexOfAny(typeStr, "[<")
	if open < 0 {
		return nil
	}
	closeCh := byte(']')
	if typeStr[open] == '<' {
		closeCh = '>'
	}
	end := strings.LastIndexByte(typeStr, closeCh)
	if end < 0 || end <= open {
		return nil
	}

	paramsStr := typeStr[open+1 : end]
	params := SplitTopLevelCommas(paramsStr)

	ids := make([]string, 0, len(params))
	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		entity := r.Resolve(p)
		ids = append(ids, entity.ID)
	}
	return ids
}

func indexOfAny(s, chars string) int {
	return strings.IndexAny(s, chars)
}

// SplitTopLevelCommas splits s at commas not nested inside a bracket
// pair ('[]', '<>', or '()'), matching the depth-tracking splitter
// spec §4.3 requires for generic parameter lists and that
// `vjache-cie`'s sigparse.go applies to Go parameter lists (there over
// parens only; generalized here to all three bracket kinds since type
// annotations mix them across languages).
func SplitTopLevelCommas(s string) []string {
	var params []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '[', '<', '(':
			depth++
			current.WriteRune(ch)
		case ']', '>', ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(current.String()); p != "" {
					params = append(params, p)
				}
				current.Reset()
				continue
			}
			current.WriteRune(ch)
		default:
			current.WriteRune(ch)
		}
	}
	if p := strings.TrimSpace(current.String()); p != "" {
		params = append(params, p)
	}
	return params
}
