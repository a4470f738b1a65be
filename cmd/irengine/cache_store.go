// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/wire"
)

// cacheManifest maps a repo-relative file path to the cache metadata
// the cache stage (C7) needs to fast/slow-path it on the next run.
// ir.IRDocument deliberately excludes this from its wire schema (see
// pkg/ir's own doc comment on cacheMtime/cacheSize/cacheHash), so it
// travels alongside the per-file wire records as a small JSON sidecar.
type cacheManifest map[string]cacheEntry

type cacheEntry struct {
	Mtime int64  `json:"mtime"`
	Size  int64  `json:"size"`
	Hash  string `json:"hash"`
}

func manifestPath(cacheDir string) string {
	return filepath.Join(cacheDir, "manifest.json")
}

func docFilename(path string) string {
	h := sha256.Sum256([]byte(path))
	return hex.EncodeToString(h[:]) + ".ir"
}

// loadCacheDir reads a prior run's manifest and the IRDocuments it
// names, restoring each document's cache metadata so the cache stage
// can fast/slow-path it. Missing entries (never indexed before, or a
// cache dir that's simply empty) are silently skipped.
func loadCacheDir(cacheDir string) (map[string]*ir.IRDocument, error) {
	data, err := os.ReadFile(manifestPath(cacheDir))
	if os.IsNotExist(err) {
		return map[string]*ir.IRDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest cacheManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	docs := make(map[string]*ir.IRDocument, len(manifest))
	for path, entry := range manifest {
		doc, err := wire.ReadIRDocumentFile(filepath.Join(cacheDir, docFilename(path)))
		if err != nil {
			continue // cache I/O failure (spec §7.3): demote to miss
		}
		doc.SetCacheMetadata(entry.Mtime, entry.Size, entry.Hash)
		docs[path] = doc
	}
	return docs, nil
}

// saveCacheDir persists docs and their current on-disk stat+hash to
// cacheDir, overwriting the manifest wholesale (docs is always the
// complete result set for this run, so there is nothing to merge).
func saveCacheDir(cacheDir, repoRoot string, docs map[string]*ir.IRDocument) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", cacheDir, err)
	}

	manifest := make(cacheManifest, len(docs))
	for path, doc := range docs {
		full := filepath.Join(repoRoot, path)
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		hash, err := hashFileSHA256(full)
		if err != nil {
			continue
		}

		if err := wire.WriteIRDocumentFile(filepath.Join(cacheDir, docFilename(path)), doc); err != nil {
			return fmt.Errorf("write cached document for %s: %w", path, err)
		}
		manifest[path] = cacheEntry{Mtime: info.ModTime().UnixNano(), Size: info.Size(), Hash: hash}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(manifestPath(cacheDir), data, 0o644)
}

func hashFileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	buf := make([]byte, 8*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
