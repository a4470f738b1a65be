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

// Package testing provides fixture helpers for irengine pipeline tests.
//
// Stage tests need the same handful of things over and over: a temp
// source file on disk, a minimal Node/Edge pair, a StageContext wired
// up with both. This package centralizes those so individual _test.go
// files don't each hand-roll their own copy.
//
// # Quick Start
//
//	func TestMyStage(t *testing.T) {
//	    dir := t.TempDir()
//	    path := testing.WriteSourceFile(t, dir, "a.py", "def f():\n    pass\n")
//	    doc := testing.NewDocument(
//	        testing.FunctionNode("node:a:f", "a.f"),
//	    )
//	    ...
//	}
package testing
