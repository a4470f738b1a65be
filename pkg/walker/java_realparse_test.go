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

// TestJavaWalker_Generate_OverloadedMethods is scenario S5: two methods
// sharing a name but differing in parameter list must get distinct
// FQNs (and distinct node IDs), walked through the real Java grammar.
func TestJavaWalker_Generate_OverloadedMethods(t *testing.T) {
	src := `package com.example;

public class Calculator {
    public int add(int a, int b) {
        return a + b;
    }

    public String add(String a, String b) {
        return a + b;
    }
}
`
	doc := generateViaOracle(t, NewJavaWalker(), "com/example/Calculator.java", src)

	methods := nodesByKind(doc, ir.KindMethod)
	require.Len(t, methods, 2)
	assert.ElementsMatch(t, []string{
		"com.example.Calculator.add(int,int)",
		"com.example.Calculator.add(String,String)",
	}, fqns(methods))
	assert.NotEqual(t, methods[0].ID, methods[1].ID)
}

// TestJavaWalker_Generate_ExceptionPropagation exercises the
// exception-flow analysis: a throw inside a method with no matching
// catch must surface in attrs["exception_flow"].may_propagate, while a
// caught one must not.
func TestJavaWalker_Generate_ExceptionPropagation(t *testing.T) {
	src := `package com.example;

public class Validator {
    public void check(String s) {
        if (s == null) {
            throw new IllegalArgumentException("null");
        }
        try {
            throw new IOException("io");
        } catch (IOException e) {
            System.out.println(e);
        }
    }
}
`
	doc := generateViaOracle(t, NewJavaWalker(), "com/example/Validator.java", src)

	methods := nodesByKind(doc, ir.KindMethod)
	require.Len(t, methods, 1)

	flow, ok := methods[0].Attrs["exception_flow"].(map[string]any)
	require.True(t, ok, "expected exception_flow to be attached to the method node")

	mayPropagate, _ := flow["may_propagate"].([]string)
	assert.Contains(t, mayPropagate, "IllegalArgumentException")
	assert.NotContains(t, mayPropagate, "IOException")

	caught, _ := flow["caught"].([]string)
	assert.Contains(t, caught, "IOException")
}
