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

package pipeline

import "context"

// Stage is the protocol every pipeline stage (C7-C10) implements, per
// spec §4.11.
type Stage interface {
	// Name identifies the stage in metrics and hook callbacks.
	Name() string

	// ShouldSkip is pure, fast, and does no I/O: it decides whether Run
	// has any work to do given ctx's current state.
	ShouldSkip(ctx *StageContext) (skip bool, reason string)

	// Run consumes ctx and returns a new context reflecting this
	// stage's contribution. It never mutates ctx in place.
	Run(ctx context.Context, sc *StageContext) (*StageContext, error)
}
