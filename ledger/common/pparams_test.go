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

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCostModel(w *cbor.Writer, length int) {
	w.WriteArrayHeader(length)
	for i := range length {
		w.WriteInt(int64(i) - 10)
	}
}

func buildParamUpdate() []byte {
	w := cbor.NewWriter()
	w.WriteMapHeader(4)
	w.WriteUint(common.ParamMinFeeA)
	w.WriteUint(44)
	w.WriteUint(common.ParamPoolPledgeInfluence)
	w.WriteTag(30)
	w.WriteArrayHeader(2)
	w.WriteUint(3)
	w.WriteUint(10)
	w.WriteUint(common.ParamProtocolVersion)
	w.WriteArrayHeader(2)
	w.WriteUint(8)
	w.WriteUint(0)
	w.WriteUint(common.ParamCostModels)
	w.WriteMapHeader(1)
	w.WriteUint(common.CostModelPlutusV1)
	writeCostModel(w, 166)
	return w.Bytes()
}

func TestProtocolParameterUpdate(t *testing.T) {
	data := buildParamUpdate()
	var update common.ProtocolParameterUpdate
	require.NoError(t, update.UnmarshalCBOR(data))
	assert.Equal(t, 4, update.Len())
	minFeeA, ok := update.Uint(common.ParamMinFeeA)
	require.True(t, ok)
	assert.Equal(t, uint64(44), minFeeA)
	influence, ok := update.Rat(common.ParamPoolPledgeInfluence)
	require.True(t, ok)
	assert.Equal(t, "3/10", influence.String())
	_, ok = update.Uint(common.ParamMinFeeB)
	assert.False(t, ok)
	version, ok := update.Get(common.ParamProtocolVersion)
	require.True(t, ok)
	assert.Equal(t, uint(8), version.(common.ProtocolVersionParameter).Value.Major)
	costModels, ok := update.CostModels()
	require.True(t, ok)
	assert.Equal(t, []uint8{common.CostModelPlutusV1}, costModels.Languages())
	v1, ok := costModels.Get(common.CostModelPlutusV1)
	require.True(t, ok)
	assert.Len(t, v1, 166)
	assert.Equal(t, int64(-10), v1[0])
	// Parameters come back in key order
	keys := []uint8{}
	for _, p := range update.Parameters() {
		keys = append(keys, p.SparseIndex())
	}
	assert.Equal(
		t,
		[]uint8{
			common.ParamMinFeeA,
			common.ParamPoolPledgeInfluence,
			common.ParamProtocolVersion,
			common.ParamCostModels,
		},
		keys,
	)
	encoded, err := update.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, encoded)
}

func TestProtocolParameterUpdateValidateKeys(t *testing.T) {
	var update common.ProtocolParameterUpdate
	require.NoError(t, update.UnmarshalCBOR(buildParamUpdate()))
	require.NoError(t, update.ValidateKeys(common.ShelleyProtocolParameterKeys|
		common.AlonzoProtocolParameterKeys))
	require.NoError(t, update.ValidateKeys(common.BabbageProtocolParameterKeys))
	// The protocol version moved to hard fork governance actions in Conway
	err := update.ValidateKeys(common.ConwayProtocolParameterKeys)
	var tagErr *cbor.InvalidTagError
	require.ErrorAs(t, err, &tagErr)
	assert.Equal(t, uint64(common.ParamProtocolVersion), tagErr.Tag)
	// Cost models are not a Shelley parameter
	require.Error(t, update.ValidateKeys(common.ShelleyProtocolParameterKeys))
}

func TestProtocolParameterUpdateErrors(t *testing.T) {
	// Duplicate key
	w := cbor.NewWriter()
	w.WriteMapHeader(2)
	w.WriteUint(common.ParamMinFeeA)
	w.WriteUint(1)
	w.WriteUint(common.ParamMinFeeA)
	w.WriteUint(2)
	var update common.ProtocolParameterUpdate
	require.ErrorIs(t, update.UnmarshalCBOR(w.Bytes()), cbor.ErrSurplus)
	// Unknown key
	w = cbor.NewWriter()
	w.WriteMapHeader(1)
	w.WriteUint(34)
	w.WriteUint(1)
	var tagErr *cbor.InvalidTagError
	require.ErrorAs(t, update.UnmarshalCBOR(w.Bytes()), &tagErr)
	// Short cost model
	w = cbor.NewWriter()
	w.WriteMapHeader(1)
	w.WriteUint(common.ParamCostModels)
	w.WriteMapHeader(1)
	w.WriteUint(common.CostModelPlutusV2)
	writeCostModel(w, 174)
	var lengthErr *common.CostModelLengthError
	require.ErrorAs(t, update.UnmarshalCBOR(w.Bytes()), &lengthErr)
	assert.Equal(t, 175, lengthErr.Expected)
	assert.Equal(t, 174, lengthErr.Found)
	// Wrong number of pool voting thresholds
	w = cbor.NewWriter()
	w.WriteMapHeader(1)
	w.WriteUint(common.ParamPoolVotingThresholds)
	w.WriteArrayHeader(4)
	for range 4 {
		w.WriteTag(30)
		w.WriteArrayHeader(2)
		w.WriteUint(1)
		w.WriteUint(2)
	}
	require.Error(t, update.UnmarshalCBOR(w.Bytes()))
}

func TestProtocolParameterUpdateBuild(t *testing.T) {
	var update common.ProtocolParameterUpdate
	assert.True(t, update.Set(common.UintParameter{Index: common.ParamMaxTxSize, Value: 16384}))
	assert.True(t, update.Set(common.UintParameter{Index: common.ParamMinFeeB, Value: 155381}))
	assert.False(t, update.Set(common.UintParameter{Index: common.ParamMinFeeB, Value: 1}))
	assert.True(t, update.Set(common.ExUnitsParameter{
		Index: common.ParamMaxTxExUnits,
		Value: common.ExUnits{Memory: 14_000_000, Steps: 10_000_000_000},
	}))
	encoded, err := update.MarshalCBOR()
	require.NoError(t, err)
	w := cbor.NewWriter()
	w.WriteMapHeader(3)
	w.WriteUint(common.ParamMinFeeB)
	w.WriteUint(155381)
	w.WriteUint(common.ParamMaxTxSize)
	w.WriteUint(16384)
	w.WriteUint(common.ParamMaxTxExUnits)
	w.WriteArrayHeader(2)
	w.WriteUint(14_000_000)
	w.WriteUint(10_000_000_000)
	assert.Equal(t, w.Bytes(), encoded)
	var decoded common.ProtocolParameterUpdate
	require.NoError(t, decoded.UnmarshalCBOR(encoded))
	exUnits, ok := decoded.Get(common.ParamMaxTxExUnits)
	require.True(t, ok)
	assert.Equal(t, uint64(14_000_000), exUnits.(common.ExUnitsParameter).Value.Memory)
}

func TestCostModels(t *testing.T) {
	// Later protocol versions append parameters, so longer models are accepted
	w := cbor.NewWriter()
	w.WriteMapHeader(2)
	w.WriteUint(common.CostModelPlutusV3)
	writeCostModel(w, 251)
	w.WriteUint(common.CostModelPlutusV1)
	writeCostModel(w, 166)
	var models common.CostModels
	require.NoError(t, models.UnmarshalCBOR(w.Bytes()))
	assert.Equal(
		t,
		[]uint8{common.CostModelPlutusV3, common.CostModelPlutusV1},
		models.Languages(),
	)
	encoded, err := models.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, w.Bytes(), encoded)
	models.Set(common.CostModelPlutusV1, []int64{1, 2})
	v1, _ := models.Get(common.CostModelPlutusV1)
	assert.Equal(t, []int64{1, 2}, v1)
	_, ok := models.Get(common.CostModelPlutusV2)
	assert.False(t, ok)
}
