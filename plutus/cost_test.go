// Copyright 2026 Blink Labs Software
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

package plutus

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostModelLengths(t *testing.T) {
	testDefs := []struct {
		lang  Language
		count int
		err   bool
	}{
		{lang: LanguageV1, count: 166},
		{lang: LanguageV1, count: 165, err: true},
		{lang: LanguageV2, count: 175},
		{lang: LanguageV2, count: 185},
		{lang: LanguageV2, count: 174, err: true},
		{lang: LanguageV3, count: 197},
		{lang: LanguageV3, count: 251},
		{lang: LanguageV3, count: 297},
		{lang: LanguageV3, count: 319},
		{lang: LanguageV3, count: 400},
		{lang: LanguageV3, count: 196, err: true},
		{lang: Language(4), count: 400, err: true},
	}
	for _, testDef := range testDefs {
		_, err := NewCostModel(testDef.lang, make([]int64, testDef.count))
		if testDef.err {
			assert.ErrorIs(t, err, ErrCostModel, "%s with %d parameters", testDef.lang, testDef.count)
		} else {
			assert.NoError(t, err, "%s with %d parameters", testDef.lang, testDef.count)
		}
	}
}

func TestCostModelAvailability(t *testing.T) {
	v2, err := NewCostModel(LanguageV2, make([]int64, 175))
	require.NoError(t, err)
	assert.True(t, v2.Available(SerialiseData))
	assert.False(t, v2.Available(IntegerToByteString))
	v2, err = NewCostModel(LanguageV2, make([]int64, 185))
	require.NoError(t, err)
	assert.True(t, v2.Available(ByteStringToInteger))
	assert.False(t, v2.Available(Bls12_381_G1_Add))

	v3 := DefaultCostModel(LanguageV3)
	require.Len(t, v3.Params(), 297)
	assert.True(t, v3.Available(Ripemd_160))
	assert.True(t, v3.Available(Bls12_381_G1_Add))
	assert.False(t, v3.Available(ExpModInteger))
	assert.False(t, v3.Available(Builtin(builtinCount)))
	full, err := NewCostModel(LanguageV3, append(v3.Params(), slices.Repeat([]int64{1}, 22)...))
	require.NoError(t, err)
	assert.True(t, full.Available(Bls12_381_G2_MultiScalarMul))

	v1 := DefaultCostModel(LanguageV1)
	assert.Equal(t, LanguageV1, v1.Language())
	assert.True(t, v1.Available(AddInteger))
	assert.False(t, v1.Available(SerialiseData))
	assert.False(t, v1.Available(Bls12_381_G1_Add))
	assert.True(t, DefaultCostModel(LanguageV2).Available(VerifySchnorrSecp256k1Signature))
}

func TestCostModelSteps(t *testing.T) {
	cm := DefaultCostModel(LanguageV3)
	for k := range stepKindCount {
		if k == stepStartup {
			assert.Equal(t, Budget{Cpu: 100, Mem: 100}, cm.stepCost(k))
			continue
		}
		assert.Equal(t, Budget{Cpu: 16000, Mem: 100}, cm.stepCost(k), "step %d", k)
	}
	// The parameter array is copied
	params := cm.Params()
	params[machineCostsIndex] = 0
	assert.Equal(t, int64(16000), cm.Params()[machineCostsIndex])
}

func TestCostFunctionShapes(t *testing.T) {
	testDefs := []struct {
		name     string
		fn       costFunction
		x, y, z  int64
		expected int64
	}{
		{"constant", costFunction{shapeConstant, []int64{7}}, 1, 2, 3, 7},
		{"linear in x", costFunction{shapeLinearInX, []int64{10, 2}}, 5, 0, 0, 20},
		{"linear in y", costFunction{shapeLinearInY, []int64{10, 2}}, 5, 3, 0, 16},
		{"linear in z", costFunction{shapeLinearInZ, []int64{10, 2}}, 5, 3, 1, 12},
		{"added", costFunction{shapeAddedSizes, []int64{1, 2}}, 3, 4, 0, 15},
		{"subtracted", costFunction{shapeSubtractedSizes, []int64{1, 2, 3}}, 10, 4, 0, 19},
		{"subtracted minimum", costFunction{shapeSubtractedSizes, []int64{1, 2, 3}}, 1, 4, 0, 7},
		{"multiplied", costFunction{shapeMultipliedSizes, []int64{1, 2}}, 3, 4, 0, 25},
		{"min", costFunction{shapeMinSize, []int64{1, 2}}, 3, 4, 0, 7},
		{"max", costFunction{shapeMaxSize, []int64{1, 2}}, 3, 4, 0, 9},
		{"on diagonal", costFunction{shapeLinearOnDiagonal, []int64{5, 1, 2}}, 3, 3, 0, 7},
		{"off diagonal", costFunction{shapeLinearOnDiagonal, []int64{5, 1, 2}}, 3, 4, 0, 5},
		{"below diagonal", costFunction{shapeConstAboveDiagonal, []int64{5, 1, 2}}, 3, 4, 0, 5},
		{"above diagonal", costFunction{shapeConstAboveDiagonal, []int64{5, 1, 2}}, 4, 3, 0, 25},
		{"quadratic below", costFunction{shapeQuadraticAboveDiagonal, []int64{9, 1, 1, 1, 1, 1, 1, 0}}, 1, 2, 0, 9},
		{"quadratic above", costFunction{shapeQuadraticAboveDiagonal, []int64{9, 1, 1, 1, 1, 1, 1, 0}}, 2, 1, 0, 11},
		{"quadratic minimum", costFunction{shapeQuadraticAboveDiagonal, []int64{9, 0, 0, 0, 0, 0, 0, 50}}, 2, 1, 0, 50},
		{"quadratic in y", costFunction{shapeQuadraticInY, []int64{1, 2, 3}}, 0, 2, 0, 17},
		{"quadratic in z", costFunction{shapeQuadraticInZ, []int64{1, 2, 3}}, 0, 0, 2, 17},
		{"linear in y and z", costFunction{shapeLinearInYAndZ, []int64{1, 2, 3}}, 0, 2, 3, 14},
		{"linear in max y z", costFunction{shapeLinearInMaxYZ, []int64{1, 2}}, 9, 2, 3, 7},
		{"literal in y", costFunction{shapeLiteralInYOrLinearInZ, []int64{1, 2}}, 0, 17, 3, 3},
		{"linear in z when y is zero", costFunction{shapeLiteralInYOrLinearInZ, []int64{1, 2}}, 0, 0, 3, 7},
		{"exp mod", costFunction{shapeExpMod, []int64{1, 2, 3}}, 1, 2, 2, 33},
		{"exp mod large base", costFunction{shapeExpMod, []int64{1, 2, 3}}, 3, 2, 2, 49},
		{"saturated", costFunction{shapeMultipliedSizes, []int64{1, 2}}, math.MaxInt64, 2, 0, math.MaxInt64},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, testDef.fn.cost(testDef.x, testDef.y, testDef.z), testDef.name)
	}
}

func TestSaturatingArithmetic(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), satAdd(math.MaxInt64, 1))
	assert.Equal(t, int64(math.MinInt64), satAdd(math.MinInt64, -1))
	assert.Equal(t, int64(3), satAdd(1, 2))
	assert.Equal(t, int64(math.MaxInt64), satMul(math.MaxInt64, 2))
	assert.Equal(t, int64(math.MinInt64), satMul(math.MaxInt64, -2))
	assert.Equal(t, int64(-6), satMul(-2, 3))
}

func TestBatchSixBuiltins(t *testing.T) {
	cm, err := NewCostModel(LanguageV3, append(slices.Clone(defaultV3Params), slices.Repeat([]int64{1}, 22)...))
	require.NoError(t, err)
	prog, err := ParseProgram(
		"(program 1.1.0 [(builtin expModInteger) (con integer 2) (con integer 10) (con integer 1000)])",
	)
	require.NoError(t, err)
	m := NewMachine(cm, DefaultBudget)
	ret, err := m.Run(prog)
	require.NoError(t, err)
	assert.Equal(t, "(program 1.1.0 (con integer 24))", ret.String())

	prog, err = ParseProgram(
		"(program 1.1.0 [(force (builtin indexArray)) [(force (builtin listToArray)) (con (list integer) [4, 5])] (con integer 1)])",
	)
	require.NoError(t, err)
	ret, err = m.Run(prog)
	require.NoError(t, err)
	assert.Equal(t, "(program 1.1.0 (con integer 5))", ret.String())

	// The same program is rejected without batch six costs
	_, err = NewMachine(DefaultCostModel(LanguageV3), DefaultBudget).Run(prog)
	assert.ErrorIs(t, err, ErrUnknownBuiltin)
}
