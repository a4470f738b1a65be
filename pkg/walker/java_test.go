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

	"github.com/kraklabs/irengine/pkg/ir"
	"github.com/stretchr/testify/assert"
)

func TestDetermineMethodRefType_ConstructorReference(t *testing.T) {
	jc := &javaCtx{}
	assert.Equal(t, ir.RefConstructor, jc.determineMethodRefType("ArrayList", "new"))
}

func TestDetermineMethodRefType_ThisAndSuperAreInstanceBound(t *testing.T) {
	jc := &javaCtx{}
	assert.Equal(t, ir.RefInstanceBound, jc.determineMethodRefType("this", "toString"))
	assert.Equal(t, ir.RefInstanceBound, jc.determineMethodRefType("super", "toString"))
}

func TestDetermineMethodRefType_DottedQualifierIsInstanceBound(t *testing.T) {
	jc := &javaCtx{}
	assert.Equal(t, ir.RefInstanceBound, jc.determineMethodRefType("order.customer", "getName"))
}

func TestDetermineMethodRefType_LowercaseSimpleQualifierIsInstanceBound(t *testing.T) {
	jc := &javaCtx{}
	assert.Equal(t, ir.RefInstanceBound, jc.determineMethodRefType("order", "getName"))
}

func TestDetermineMethodRefType_UppercaseSimpleQualifierDefaultsStatic(t *testing.T) {
	jc := &javaCtx{}
	assert.Equal(t, ir.RefStatic, jc.determineMethodRefType("Integer", "parseInt"))
	assert.Equal(t, ir.RefStatic, jc.determineMethodRefType("Math", "max"))
}

func TestIsLower(t *testing.T) {
	assert.True(t, isLower('a'))
	assert.True(t, isLower('z'))
	assert.False(t, isLower('A'))
	assert.False(t, isLower('0'))
}
