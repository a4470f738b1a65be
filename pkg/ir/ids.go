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

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizePath canonicalizes a file path for ID generation: forward
// slashes, no leading "./", no leading "/", cleaned. This keeps IDs
// identical across platforms and across absolute/relative invocations.
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if strings.HasPrefix(path, "/") {
		path = path[1:]
	}
	return path
}

// LogicalID builds the human-readable logical ID described in spec
// §4.1: "{kind}:{repo}:{file}:{fqn_suffix}". File nodes use the file
// path itself as the suffix; every other kind uses the last two
// dot-separated FQN segments, so overload-bearing method FQNs keep
// their owning class in the ID.
func LogicalID(kind NodeKind, repoID, filePath, fqn string) string {
	lowerKind := strings.ToLower(string(kind))
	normalizedPath := NormalizePath(filePath)

	if kind == KindFile {
		return fmt.Sprintf("%s:%s:%s", lowerKind, repoID, normalizedPath)
	}

	suffix := fqn
	if strings.Contains(fqn, ".") {
		parts := strings.Split(fqn, ".")
		if len(parts) > 2 {
			parts = parts[len(parts)-2:]
		}
		suffix = strings.Join(parts, ".")
	}

	return fmt.Sprintf("%s:%s:%s:%s", lowerKind, repoID, normalizedPath, suffix)
}

// StableID builds the hash-based ID described in spec §4.1: SHA-256 of
// "{repo}:{kind}:{fqn}:{start}-{end}:{content_hash}", first 16 hex
// chars, prefixed "stable:". The file path is deliberately excluded so
// a rename or move preserves identity as long as the FQN, span, and
// content stay put.
func StableID(repoID string, kind NodeKind, fqn string, span Span, contentHash string) string {
	key := fmt.Sprintf("%s:%s:%s:%d-%d:%s", repoID, kind, fqn, span.StartLine, span.EndLine, contentHash)
	digest := sha256.Sum256([]byte(key))
	return "stable:" + hex.EncodeToString(digest[:])[:16]
}

// ContentHash hashes a node's source text after trimming leading and
// trailing whitespace, prefixed "sha256:". Used for "same code" change
// detection and as an input to StableID.
func ContentHash(text string) string {
	normalized := strings.TrimSpace(text)
	digest := sha256.Sum256([]byte(normalized))
	return "sha256:" + hex.EncodeToString(digest[:])
}

// idSuffix extracts the short, human-readable trailing segment of an ID
// for embedding inside another ID ("a:b:c" -> "c"). IDs without a colon
// are returned unchanged.
func idSuffix(id string) string {
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		return id[idx+1:]
	}
	return id
}

// EdgeID builds the edge ID described in spec §4.1:
// "edge:{kind}:{source_suffix}→{target_suffix}@{occurrence}". occurrence
// disambiguates repeated edges between the same two nodes (e.g. a
// function calling another twice).
func EdgeID(kind EdgeKind, sourceID, targetID string, occurrence int) string {
	return fmt.Sprintf("edge:%s:%s→%s@%d",
		strings.ToLower(string(kind)), idSuffix(sourceID), idSuffix(targetID), occurrence)
}

// builtinTypeNames is consulted by TypeID to route builtin types to the
// shared "builtin" namespace instead of the current repo's.
var builtinTypeNames = map[string]bool{
	"int": true, "str": true, "float": true, "bool": true, "bytes": true,
	"None": true, "list": true, "List": true, "dict": true, "Dict": true,
	"set": true, "Set": true, "tuple": true, "Tuple": true, "frozenset": true,
	"Any": true, "Optional": true, "Union": true, "Callable": true,
	"Iterable": true, "Iterator": true, "Sequence": true, "object": true,
	"type": true, "void": true, "boolean": true, "char": true, "byte": true,
	"short": true, "long": true, "double": true, "string": true, "number": true,
	"null": true, "undefined": true, "any": true, "unknown": true,
}

// TypeID builds the type entity ID described in spec §4.1: normalized
// raw type string, namespaced by repo, or by "builtin" for builtin
// types.
func TypeID(rawType, repoID string) string {
	normalized := strings.ReplaceAll(rawType, " ", "")
	baseName := normalized
	if idx := strings.IndexByte(normalized, '['); idx >= 0 {
		baseName = normalized[:idx]
	}
	if builtinTypeNames[baseName] {
		return "type:builtin:" + normalized
	}
	return fmt.Sprintf("type:%s:%s", repoID, normalized)
}

// simplifyTypeName reduces a raw type string to its bare name for
// inclusion in a signature ID, stripping generic parameters.
func simplifyTypeName(raw string) string {
	if idx := strings.IndexByte(raw, '['); idx >= 0 {
		return raw[:idx]
	}
	if idx := strings.IndexByte(raw, '<'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

// SignatureID builds the signature entity ID described in spec §4.1:
// "sig:{owner_suffix}:{name}({param_types})->{return_type}".
func SignatureID(ownerNodeID, name string, paramTypes []string, returnType string) string {
	ownerSuffix := idSuffix(ownerNodeID)

	simplified := make([]string, len(paramTypes))
	for i, t := range paramTypes {
		simplified[i] = simplifyTypeName(t)
	}

	returnStr := "None"
	if returnType != "" {
		returnStr = simplifyTypeName(returnType)
	}

	return fmt.Sprintf("sig:%s:%s(%s)->%s", ownerSuffix, name, strings.Join(simplified, ","), returnStr)
}

// SignatureHash builds the interface-change detector hash described in
// spec §4.1 and invariant §3.4.5: it depends only on name, parameter
// types, return type, and the async/static modifiers — never on
// implementation. 16 hex chars, prefixed "sighash:".
func SignatureHash(name string, paramTypes []string, returnType string, isAsync, isStatic bool) string {
	returnStr := returnType
	if returnStr == "" {
		returnStr = "None"
	}
	key := fmt.Sprintf("%s:params=%s:return=%s:async=%t:static=%t",
		name, strings.Join(paramTypes, ","), returnStr, isAsync, isStatic)
	digest := sha256.Sum256([]byte(key))
	return "sighash:" + hex.EncodeToString(digest[:])[:16]
}

// CFGBlockID builds a deterministic ID for one basic block inside a
// function's control-flow graph (SPEC_FULL §12.1).
func CFGBlockID(functionNodeID string, blockIndex int) string {
	return fmt.Sprintf("cfg:%s:block:%d", idSuffix(functionNodeID), blockIndex)
}

// CFGID builds a deterministic ID for a function's control-flow graph
// (SPEC_FULL §12.1).
func CFGID(functionNodeID string) string {
	return fmt.Sprintf("cfg:%s", idSuffix(functionNodeID))
}

// FileID builds a deterministic ID for a File node directly from its
// path, without requiring a repo/kind/fqn tuple — used by callers (e.g.
// the cache stage) that need to key by file before a document exists.
// Mirrors the teacher's long-path hashing fallback so IDs never grow
// unbounded for deeply nested repos.
func FileID(filePath string) string {
	normalized := NormalizePath(filePath)
	if len(normalized) <= 256 {
		return "file:" + normalized
	}
	digest := sha256.Sum256([]byte(normalized))
	return "file:" + hex.EncodeToString(digest[:16])
}
