// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bootstrap resolves a repo's pipeline run configuration and
// prepares its on-disk cache directory.
//
// This internal package turns a bare repo root path into a ready-to-use
// cache directory where prior runs' IRDocuments (wire-encoded, see
// pkg/wire) are read from and written to by the cache stage (C7).
//
// # Initialization Workflow
//
// A typical workflow for preparing a repo for indexing:
//
//	// Resolve the repo ID and prepare the cache directory
//	info, err := bootstrap.InitRepo(bootstrap.RepoConfig{
//	    RepoRoot: "/path/to/repo",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Cache dir: %s\n", info.CacheDir)
//
//	// Later, open the same repo to reuse its cache
//	info, err = bootstrap.OpenRepo(bootstrap.RepoConfig{
//	    RepoID: info.RepoID,
//	}, logger)
//
// # Idempotency
//
// InitRepo is idempotent: calling it multiple times on the same repo
// root is safe and never discards an existing cache directory.
//
// # Configuration
//
// RepoConfig controls resolution:
//
//   - RepoRoot: the repo to index. RepoID defaults to its base name
//     when not given explicitly.
//   - RepoID: Optional. Overrides the derived identifier.
//   - CacheRoot: Optional. Parent directory for all repos' cache
//     directories. Defaults to ~/.irengine/cache.
//
// # Repo Discovery
//
// List repo IDs with an existing cache directory:
//
//	repos, err := bootstrap.ListRepos("")
//	for _, id := range repos {
//	    fmt.Println(id)
//	}
package bootstrap
