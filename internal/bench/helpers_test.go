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

package bench

import (
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/plutus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockTypeFromEra(t *testing.T) {
	tests := []struct {
		era      string
		expected uint
		wantErr  bool
	}{
		{"byron", 1, false},
		{"shelley", 2, false},
		{"allegra", 3, false},
		{"mary", 4, false},
		{"alonzo", 5, false},
		{"babbage", 6, false},
		{"conway", 7, false},
		{"Conway", 7, false},
		{"BYRON", 1, false},
		{"unknown", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.era, func(t *testing.T) {
			blockType, err := BlockTypeFromEra(tc.era)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, blockType)
			}
		})
	}
}

func TestLoadBlockFixture(t *testing.T) {
	for _, era := range EraNames() {
		t.Run(era, func(t *testing.T) {
			fixture, err := LoadBlockFixture(era)
			require.NoError(t, err)
			require.NotNil(t, fixture)

			assert.Equal(t, era, fixture.Era)
			assert.NotNil(t, fixture.Block)
			assert.NotEmpty(t, fixture.Cbor)
			assert.Greater(t, len(fixture.Envelope), len(fixture.Cbor))
		})
	}
}

func TestLoadBlockFixture_UnknownEra(t *testing.T) {
	_, err := LoadBlockFixture("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown era")
}

func TestMustLoadBlockFixture_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadBlockFixture("unknown")
	})
}

func TestLoadTxFixture(t *testing.T) {
	for _, era := range PostByronEraNames() {
		t.Run(era, func(t *testing.T) {
			fixture := MustLoadTxFixture(era)
			assert.NotEmpty(t, fixture.Cbor)
			assert.Len(t, fixture.Tx.Inputs(), 1)
			assert.Len(t, fixture.Tx.Outputs(), 1)
		})
	}
}

func TestPostByronEraNames(t *testing.T) {
	eras := PostByronEraNames()
	assert.Len(t, eras, 6)
	assert.NotContains(t, eras, "byron")
	assert.Contains(t, eras, "shelley")
	assert.Contains(t, eras, "conway")
}

func TestFibonacciProgram(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{0, "(program 1.0.0 (con integer 0))"},
		{1, "(program 1.0.0 (con integer 1))"},
		{10, "(program 1.0.0 (con integer 55))"},
	}
	for _, tc := range tests {
		prog, err := FibonacciProgram(tc.n)
		require.NoError(t, err)
		machine := plutus.NewMachine(
			plutus.DefaultCostModel(plutus.LanguageV3),
			plutus.DefaultBudget,
		)
		result, err := machine.Run(prog)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, result.String())
		assert.Positive(t, machine.Consumed().Cpu)
	}
}
