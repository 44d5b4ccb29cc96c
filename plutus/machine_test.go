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

package plutus_test

import (
	"errors"
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/plutus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runProgram(t *testing.T, lang plutus.Language, src string) (*plutus.Program, *plutus.Machine, error) {
	t.Helper()
	prog, err := plutus.ParseProgram(src)
	require.NoError(t, err)
	m := plutus.NewMachine(plutus.DefaultCostModel(lang), plutus.DefaultBudget)
	ret, err := m.Run(prog)
	return ret, m, err
}

func TestMachineEvaluate(t *testing.T) {
	testDefs := []struct {
		name     string
		lang     plutus.Language
		src      string
		expected string
	}{
		{
			name:     "constant",
			src:      "(program 1.0.0 (con integer 1))",
			expected: "(program 1.0.0 (con integer 1))",
		},
		{
			name:     "application",
			src:      "(program 1.0.0 [(lam x (lam y [y x])) (con integer 1) (lam z z)])",
			expected: "(program 1.0.0 (con integer 1))",
		},
		{
			name:     "closure discharge",
			src:      "(program 1.0.0 [(lam x (lam y x)) (con integer 5)])",
			expected: "(program 1.0.0 (lam i_0 (con integer 5)))",
		},
		{
			name:     "nested closure discharge",
			src:      "(program 1.0.0 [(lam x (lam y [y x (lam z y)])) (con bool True)])",
			expected: "(program 1.0.0 (lam i_0 [[i_0 (con bool True)] (lam i_1 i_0)]))",
		},
		{
			name:     "delay discharge",
			src:      "(program 1.0.0 [(lam x (delay x)) (con unit ())])",
			expected: "(program 1.0.0 (delay (con unit ())))",
		},
		{
			name:     "partial builtin",
			src:      "(program 1.0.0 [(builtin addInteger) (con integer 1)])",
			expected: "(program 1.0.0 [(builtin addInteger) (con integer 1)])",
		},
		{
			name:     "forced builtin",
			src:      "(program 1.0.0 (force (builtin ifThenElse)))",
			expected: "(program 1.0.0 (force (builtin ifThenElse)))",
		},
		{
			name:     "add",
			src:      "(program 1.0.0 [(builtin addInteger) (con integer 40) (con integer 2)])",
			expected: "(program 1.0.0 (con integer 42))",
		},
		{
			name:     "if then else",
			src:      "(program 1.0.0 [(force (builtin ifThenElse)) (con bool False) (con integer 1) (con integer 2)])",
			expected: "(program 1.0.0 (con integer 2))",
		},
		{
			name:     "force delay",
			src:      "(program 1.0.0 (force (delay (con string \"a\"))))",
			expected: "(program 1.0.0 (con string \"a\"))",
		},
		{
			name:     "case on constr",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (case (constr 1 (con integer 7)) (lam x (con integer 0)) (lam x x)))",
			expected: "(program 1.1.0 (con integer 7))",
		},
		{
			name:     "constr value",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (constr 3 (con integer 1) [(lam x x) (con unit ())]))",
			expected: "(program 1.1.0 (constr 3 (con integer 1) (con unit ())))",
		},
		{
			name:     "case on bool",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (case (con bool True) (con integer 0) (con integer 1)))",
			expected: "(program 1.1.0 (con integer 1))",
		},
		{
			name:     "case on list",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (case (con (list integer) [5, 6]) (lam h (lam t h)) (con integer 0)))",
			expected: "(program 1.1.0 (con integer 5))",
		},
		{
			name:     "case on empty list",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (case (con (list integer) []) (lam h (lam t h)) (con integer 0)))",
			expected: "(program 1.1.0 (con integer 0))",
		},
		{
			name:     "case on pair",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (case (con (pair integer bool) (1, False)) (lam a (lam b b))))",
			expected: "(program 1.1.0 (con bool False))",
		},
		{
			name:     "case on false with one branch",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (case (con bool False) (con integer 3)))",
			expected: "(program 1.1.0 (con integer 3))",
		},
		{
			name:     "case on unit",
			lang:     plutus.LanguageV3,
			src:      "(program 1.1.0 (case (con unit ()) (con integer 4)))",
			expected: "(program 1.1.0 (con integer 4))",
		},
		{
			name:     "data",
			src:      "(program 1.0.0 [(builtin unIData) (con data (I 7))])",
			expected: "(program 1.0.0 (con integer 7))",
		},
		{
			name:     "mkCons",
			src:      "(program 1.0.0 [(force (builtin mkCons)) (con integer 1) (con (list integer) [2])])",
			expected: "(program 1.0.0 (con (list integer) [1, 2]))",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			lang := testDef.lang
			if lang == 0 {
				lang = plutus.LanguageV2
			}
			ret, _, err := runProgram(t, lang, testDef.src)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, ret.String())
		})
	}
}

func TestMachineFailures(t *testing.T) {
	testDefs := []struct {
		name string
		lang plutus.Language
		src  string
		err  error
	}{
		{
			// The outer lambda applies its first argument, a constant
			name: "apply constant",
			src:  "(program 1.0.0 [(lam x (lam y [x y])) (con integer 1) (lam z z)])",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "explicit error",
			src:  "(program 1.0.0 [(lam x (error)) (con unit ())])",
			err:  plutus.ErrExplicitError,
		},
		{
			name: "force lambda",
			src:  "(program 1.0.0 (force (lam x x)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "missing force",
			src:  "(program 1.0.0 [(builtin ifThenElse) (con bool True) (con integer 1) (con integer 2)])",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "extra force",
			src:  "(program 1.0.0 (force (builtin addInteger)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "wrong argument type",
			src:  "(program 1.0.0 [(builtin addInteger) (con integer 1) (con string \"1\")])",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "mkCons element type",
			src:  "(program 1.0.0 [(force (builtin mkCons)) (con bool True) (con (list integer) [])])",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "builtin unavailable in language",
			lang: plutus.LanguageV1,
			src:  "(program 1.0.0 (builtin serialiseData))",
			err:  plutus.ErrUnknownBuiltin,
		},
		{
			name: "case tag out of range",
			lang: plutus.LanguageV3,
			src:  "(program 1.1.0 (case (constr 2) (con integer 0) (con integer 1)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "case unit with two branches",
			lang: plutus.LanguageV3,
			src:  "(program 1.1.0 (case (con unit ()) (con integer 1) (con integer 2)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "case bool with three branches",
			lang: plutus.LanguageV3,
			src:  "(program 1.1.0 (case (con bool False) (con integer 1) (con integer 2) (con integer 3)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "case true with one branch",
			lang: plutus.LanguageV3,
			src:  "(program 1.1.0 (case (con bool True) (con integer 1)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "case list with three branches",
			lang: plutus.LanguageV3,
			src:  "(program 1.1.0 (case (con (list integer) []) (con integer 1) (con integer 2) (con integer 3)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "case empty list with one branch",
			lang: plutus.LanguageV3,
			src:  "(program 1.1.0 (case (con (list integer) []) (lam h (lam t h))))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "case pair with two branches",
			lang: plutus.LanguageV3,
			src:  "(program 1.1.0 (case (con (pair integer bool) (1, False)) (lam a (lam b b)) (con integer 0)))",
			err:  plutus.ErrTypeMismatch,
		},
		{
			name: "datatypes without costs",
			lang: plutus.LanguageV2,
			src:  "(program 1.1.0 (constr 0))",
			err:  plutus.ErrCostModel,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			lang := testDef.lang
			if lang == 0 {
				lang = plutus.LanguageV2
			}
			_, _, err := runProgram(t, lang, testDef.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, testDef.err)
		})
	}
}

func TestMachineBuiltinError(t *testing.T) {
	_, _, err := runProgram(
		t,
		plutus.LanguageV3,
		"(program 1.0.0 [(builtin divideInteger) (con integer 1) (con integer 0)])",
	)
	require.Error(t, err)
	var builtinErr *plutus.BuiltinError
	require.True(t, errors.As(err, &builtinErr))
	assert.Equal(t, plutus.DivideInteger, builtinErr.Builtin)
}

func TestMachineBudget(t *testing.T) {
	prog, err := plutus.ParseProgram("(program 1.0.0 (con integer 1))")
	require.NoError(t, err)
	m := plutus.NewMachine(plutus.DefaultCostModel(plutus.LanguageV3), plutus.DefaultBudget)
	_, err = m.Run(prog)
	require.NoError(t, err)
	assert.Equal(t, plutus.Budget{Cpu: 16100, Mem: 200}, m.Consumed())
	assert.Equal(t, plutus.DefaultBudget.Sub(plutus.Budget{Cpu: 16100, Mem: 200}), m.Remaining())
	// A second run starts from the full budget
	_, err = m.Run(prog)
	require.NoError(t, err)
	assert.Equal(t, plutus.Budget{Cpu: 16100, Mem: 200}, m.Consumed())
}

func TestMachineOutOfBudget(t *testing.T) {
	prog, err := plutus.ParseProgram("(program 1.0.0 (con integer 1))")
	require.NoError(t, err)
	testDefs := []plutus.Budget{
		{},
		{Cpu: 16099, Mem: 200},
		{Cpu: 16100, Mem: 199},
	}
	for _, budget := range testDefs {
		m := plutus.NewMachine(plutus.DefaultCostModel(plutus.LanguageV3), budget)
		_, err := m.Run(prog)
		assert.ErrorIs(t, err, plutus.ErrOutOfBudget, "budget %s", budget)
		assert.GreaterOrEqual(t, m.Remaining().Cpu, int64(0))
		assert.GreaterOrEqual(t, m.Remaining().Mem, int64(0))
		assert.Equal(t, budget, m.Consumed().Add(m.Remaining()))
	}
	m := plutus.NewMachine(
		plutus.DefaultCostModel(plutus.LanguageV3),
		plutus.Budget{Cpu: 16100, Mem: 200},
	)
	_, err = m.Run(prog)
	require.NoError(t, err)
	assert.Equal(t, plutus.Budget{}, m.Remaining())
}

func TestMachineOutOfBudgetLoop(t *testing.T) {
	// The omega combinator never terminates
	_, m, err := runProgram(
		t,
		plutus.LanguageV3,
		"(program 1.0.0 [(lam x [x x]) (lam x [x x])])",
	)
	require.ErrorIs(t, err, plutus.ErrOutOfBudget)
	assert.GreaterOrEqual(t, m.Remaining().Cpu, int64(0))
	assert.GreaterOrEqual(t, m.Remaining().Mem, int64(0))
	assert.LessOrEqual(t, m.Consumed().Cpu, plutus.DefaultBudget.Cpu)
	assert.LessOrEqual(t, m.Consumed().Mem, plutus.DefaultBudget.Mem)
}

func TestMachineTrace(t *testing.T) {
	ret, m, err := runProgram(
		t,
		plutus.LanguageV2,
		`(program 1.0.0 [(force (builtin trace)) (con string "hello") (con integer 1)])`,
	)
	require.NoError(t, err)
	assert.Equal(t, "(program 1.0.0 (con integer 1))", ret.String())
	assert.Equal(t, []string{"hello"}, m.Logs())
}

func TestMachineApplyData(t *testing.T) {
	prog, err := plutus.ParseProgram(
		"(program 1.0.0 (lam d (lam r [(builtin equalsData) d r])))",
	)
	require.NoError(t, err)
	m := plutus.NewMachine(plutus.DefaultCostModel(plutus.LanguageV1), plutus.DefaultBudget)
	ret, err := m.Run(prog.ApplyData(plutus.NewDataInt(3), plutus.NewDataInt(3)))
	require.NoError(t, err)
	c, ok := ret.Constant()
	require.True(t, ok)
	assert.True(t, plutus.ConstantEqual(plutus.NewBool(true), c))
	// The original program is unchanged
	assert.Equal(t, "(program 1.0.0 (lam i_0 (lam i_1 [[(builtin equalsData) i_0] i_1])))", prog.String())
}
