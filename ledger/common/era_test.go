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

package common_test

import (
	"testing"

	_ "github.com/carloskiki/pallas-extras-sub001/ledger" // This is needed to get the eras registered
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
)

func TestEraById(t *testing.T) {
	testDefs := []struct {
		id   uint8
		name string
	}{
		{0, "Byron"},
		{1, "Shelley"},
		{2, "Allegra"},
		{3, "Mary"},
		{4, "Alonzo"},
		{5, "Babbage"},
		{6, "Conway"},
	}
	for _, testDef := range testDefs {
		era := common.EraById(testDef.id)
		assert.Equal(t, testDef.name, era.Name)
		assert.Equal(t, testDef.id, era.Id)
	}
	assert.Equal(t, common.EraInvalid, common.EraById(99))
}
