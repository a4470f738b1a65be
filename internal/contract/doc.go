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

// Package contract provides validation constants and utilities shared
// across irengine's pipeline stages.
//
// This internal package contains configuration constants and validation
// functions used by the structural stage to guard against oversized
// source files before they reach the parse oracle.
//
// # Source File Size Limits
//
// irengine enforces a soft limit on individual source files handed to a
// walker, to prevent a single pathological file (generated code, a
// vendored bundle) from exhausting memory during parsing:
//
//	// Default limit is 64 MiB
//	limit := contract.SoftLimitBytes()
//
//	// Validate a file's content before parsing
//	result := contract.ValidateSourceSize(content)
//	if !result.OK {
//	    log.Printf("Skipping oversized file: %s", result.Message)
//	}
//
// # Configuration via Environment
//
// The soft limit can be adjusted via the IRENGINE_SOFT_LIMIT_BYTES
// environment variable. This is useful when indexing repos that carry
// unusually large generated or vendored source files:
//
//	export IRENGINE_SOFT_LIMIT_BYTES=33554432  # 32 MiB
//
// If the environment variable is not set or invalid, the default limit
// of 64 MiB (DefaultSoftLimitBytes) is used.
//
// # Constants
//
// The package exports these constants:
//
//   - DefaultSoftLimitBytes: Baseline soft limit (64 MiB)
//   - RequestIDMaxBytes: Maximum length for request identifiers (128 bytes)
package contract
