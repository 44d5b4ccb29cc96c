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

package ledger_test

import (
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEraById(t *testing.T) {
	for _, era := range ledger.Eras {
		got := ledger.GetEraById(era.Id)
		require.NotNil(t, got, "era %d", era.Id)
		assert.Equal(t, era.Name, got.Name)
	}
	assert.Equal(t, "Conway", ledger.GetEraById(6).Name)
	assert.Nil(t, ledger.GetEraById(99))
}

func TestEraForBlockType(t *testing.T) {
	testDefs := []struct {
		blockType uint
		eraName   string
	}{
		{ledger.BlockTypeByronEbb, "Byron"},
		{ledger.BlockTypeByronMain, "Byron"},
		{ledger.BlockTypeShelley, "Shelley"},
		{ledger.BlockTypeAllegra, "Allegra"},
		{ledger.BlockTypeMary, "Mary"},
		{ledger.BlockTypeAlonzo, "Alonzo"},
		{ledger.BlockTypeBabbage, "Babbage"},
		{ledger.BlockTypeConway, "Conway"},
	}
	for _, testDef := range testDefs {
		era, err := ledger.EraForBlockType(testDef.blockType)
		require.NoError(t, err)
		assert.Equal(t, testDef.eraName, era.Name)
	}
	_, err := ledger.EraForBlockType(8)
	require.ErrorIs(t, err, ledger.ErrUnknownBlockType)
}
