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
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
)

func TestExtensionOf_PicksLongestMatchingSuffixFirst(t *testing.T) {
	assert.Equal(t, ".tsx", extensionOf("src/components/Widget.tsx"))
	assert.Equal(t, ".ts", extensionOf("src/api/client.ts"))
	assert.Equal(t, ".js", extensionOf("src/legacy/util.js"))
	assert.Equal(t, "", extensionOf("README.md"))
}

func TestModuleFQNFromPath_TypeScript(t *testing.T) {
	assert.Equal(t, "api.client", moduleFQNFromPath("src/api/client.ts", extensionOf("src/api/client.ts")))
}

// TestTypeScriptWalker_Generate_ClassAndFunction walks a small .ts
// file through the dedicated TypeScript grammar.
func TestTypeScriptWalker_Generate_ClassAndFunction(t *testing.T) {
	src := `import { readFileSync } from "fs";

class Greeter {
    greet(name: string): string {
        return "hi " + name;
    }
}

function standalone(x: number): number {
    return x + 1;
}
`
	doc := generateViaOracle(t, NewTypeScriptWalker(), "greeter.ts", src)

	classes := nodesByKind(doc, ir.KindClass)
	require.Len(t, classes, 1)

	methods := nodesByKind(doc, ir.KindMethod)
	require.Len(t, methods, 1)

	functions := nodesByKind(doc, ir.KindFunction)
	require.Len(t, functions, 1)

	imports := nodesByKind(doc, ir.KindImport)
	require.Len(t, imports, 1)
	names, _ := imports[0].Attrs["names"].([]string)
	assert.Contains(t, names, "readFileSync")
}

// TestTSXWalker_Generate_ParsesJSXWithoutError confirms the "tsx"
// grammar tag (distinct from plain "typescript") successfully parses
// JSX syntax that the plain TypeScript grammar would misread as a
// type-argument list or fail on outright.
func TestTSXWalker_Generate_ParsesJSXWithoutError(t *testing.T) {
	src := `function Banner(props: { text: string }) {
    return <div className="banner">{props.text}</div>;
}
`
	doc := generateViaOracle(t, NewTSXWalker(), "banner.tsx", src)

	functions := nodesByKind(doc, ir.KindFunction)
	assert.Len(t, functions, 1)
}

// TestJavaScriptWalker_Generate_PlainFunction exercises the
// JavaScript-grammar variant on a .js file with no type annotations.
func TestJavaScriptWalker_Generate_PlainFunction(t *testing.T) {
	src := `function add(a, b) {
    return a + b;
}
`
	doc := generateViaOracle(t, NewJavaScriptWalker(), "add.js", src)

	functions := nodesByKind(doc, ir.KindFunction)
	assert.Len(t, functions, 1)
	assert.Equal(t, "add", functions[0].Attrs["name"])
}
