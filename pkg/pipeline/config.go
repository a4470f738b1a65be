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

// Package pipeline implements the stage orchestrator (C11) and the
// context/config types every stage (C7-C10) is threaded through.
package pipeline

// Profile selects a preset bundle of stages, per spec §6's
// configuration table.
type Profile string

const (
	// ProfileFast disables the cache stage and skips provenance
	// hashing. Type resolution during the structural walk and the
	// cross-file resolver still run.
	ProfileFast Profile = "fast"
	// ProfileBalanced is the default: cache + structural + cross-file +
	// provenance.
	ProfileBalanced Profile = "balanced"
	// ProfileFull runs every stage available.
	ProfileFull Profile = "full"
)

// HashAlgorithm selects the digest the provenance stage (C10) uses.
type HashAlgorithm string

const (
	HashSHA256  HashAlgorithm = "sha256"
	HashBLAKE2b HashAlgorithm = "blake2b"
)

// Config enumerates the options spec §6 lists for a pipeline run.
type Config struct {
	Profile             Profile
	RepoID              string
	SnapshotID          string
	RepoRoot            string
	ParallelWorkers     int
	CacheEnabled        bool
	FastPathOnly        bool
	Incremental         bool
	HashAlgorithm       HashAlgorithm
	IncludeComments     bool
	IncludeDocstrings   bool
	NormalizeWhitespace bool
}

// DefaultConfig returns the "balanced" profile's settings.
func DefaultConfig() Config {
	return Config{
		Profile:             ProfileBalanced,
		ParallelWorkers:      4,
		CacheEnabled:         true,
		FastPathOnly:         false,
		Incremental:          false,
		HashAlgorithm:        HashSHA256,
		IncludeComments:      false,
		IncludeDocstrings:    false,
		NormalizeWhitespace:  true,
	}
}

// ApplyProfile adjusts the boolean stage toggles a profile implies,
// without touching options the caller already set explicitly
// (RepoRoot, ParallelWorkers, HashAlgorithm, the normalization flags).
func (c Config) ApplyProfile() Config {
	switch c.Profile {
	case ProfileFast:
		c.CacheEnabled = false
	case ProfileFull:
		c.CacheEnabled = true
		c.Incremental = true
	}
	return c
}
