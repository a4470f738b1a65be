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

package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/irengine/pkg/ir"
)

// TestPythonWalker_Generate_SimpleFile is scenario S1: a small Python
// file with a class, a method, a module-level function, and an import,
// walked through the real tree-sitter grammar end to end.
func TestPythonWalker_Generate_SimpleFile(t *testing.T) {
	src := `import os

class Greeter:
    def greet(self, name):
        message = "hi " + name
        return message

def standalone(x):
    return os.path.join(x)
`
	doc := generateViaOracle(t, NewPythonWalker(), "greeter.py", src)

	files := nodesByKind(doc, ir.KindFile)
	assert.Len(t, files, 1)
	assert.Equal(t, "greeter", files[0].FQN)

	classes := nodesByKind(doc, ir.KindClass)
	assert.ElementsMatch(t, []string{"greeter.Greeter"}, fqns(classes))

	methods := nodesByKind(doc, ir.KindMethod)
	assert.ElementsMatch(t, []string{"greeter.Greeter.greet"}, fqns(methods))

	functions := nodesByKind(doc, ir.KindFunction)
	assert.ElementsMatch(t, []string{"greeter.standalone"}, fqns(functions))

	imports := nodesByKind(doc, ir.KindImport)
	assert.Len(t, imports, 1)

	var sawCalls, sawContainsClass bool
	for _, e := range doc.Edges {
		if e.Kind == ir.EdgeCalls {
			sawCalls = true
		}
		if e.Kind == ir.EdgeContains && e.TargetID == classes[0].ID {
			sawContainsClass = true
		}
	}
	assert.True(t, sawCalls, "expected a CALLS edge for os.path.join")
	assert.True(t, sawContainsClass, "expected the file to CONTAINS the class")

	greetMethod := methods[0]
	assert.NotEmpty(t, greetMethod.SignatureID)
	assert.Len(t, doc.Signatures, 2)
}
