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

package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/kraklabs/irengine/pkg/pipeline"
)

func TestSelectFiles_PrefersChangedFilesWhenCacheRan(t *testing.T) {
	sc := pipeline.NewStageContext(pipeline.DefaultConfig(), []string{"a.py", "b.py"}, map[string]*ir.IRDocument{
		"a.py": {},
	})
	sc.ChangedFiles = map[string]bool{"b.py": true}

	got := selectFiles(sc)
	assert.ElementsMatch(t, []string{"b.py"}, got)
}

func TestSelectFiles_FallsBackToMissingFromIRDocuments(t *testing.T) {
	sc := pipeline.NewStageContext(pipeline.DefaultConfig(), []string{"a.py", "b.py"}, map[string]*ir.IRDocument{
		"a.py": {},
	})

	got := selectFiles(sc)
	assert.ElementsMatch(t, []string{"b.py"}, got)
}

func TestStructuralStage_ShouldSkipWhenNothingToWalk(t *testing.T) {
	sc := pipeline.NewStageContext(pipeline.DefaultConfig(), []string{"a.py"}, map[string]*ir.IRDocument{
		"a.py": {},
	})
	stage := NewStructuralStage(nil, nil, nil)

	skip, reason := stage.ShouldSkip(sc)
	assert.True(t, skip)
	assert.NotEmpty(t, reason)
}
