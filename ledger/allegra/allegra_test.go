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

package allegra

import (
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/internal/testdata"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllegraBlockDecode(t *testing.T) {
	data := testdata.BuildBlock(testdata.BlockSpec{
		BlockType:   BlockTypeAllegra,
		BlockNumber: 5000,
		Slot:        16588800,
		TxCount:     1,
	})
	block, err := NewAllegraBlockFromCbor(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), block.BlockNumber())
	assert.Equal(t, uint64(16588800), block.SlotNumber())
	assert.Equal(t, EraAllegra, block.Header().Era())
	txs := block.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(2_000_000), txs[0].Outputs()[0].Amount())
}

// timelockAuxData builds [{1: "x"}, [[4, 100], [0, keyhash]]]
func timelockAuxData() []byte {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteMapHeader(1)
	w.WriteUint(1)
	w.WriteText("x")
	w.WriteArrayHeader(2)
	w.WriteArrayHeader(2)
	w.WriteUint(common.NativeScriptTypeInvalidBefore)
	w.WriteUint(100)
	w.WriteArrayHeader(2)
	w.WriteUint(common.NativeScriptTypePubkey)
	w.WriteBytes(make([]byte, 28))
	return w.Bytes()
}

func TestAllegraAuxiliaryData(t *testing.T) {
	data := timelockAuxData()
	var aux common.AuxiliaryData
	require.NoError(t, aux.UnmarshalCBOR(data))
	assert.Equal(t, common.AuxiliaryDataShapeAllegra, aux.Shape)
	require.Len(t, aux.NativeScripts, 2)
	before, ok := aux.NativeScripts[0].Item().(*common.NativeScriptInvalidBefore)
	require.True(t, ok)
	assert.Equal(t, uint64(100), before.Slot)
	assert.True(t, aux.NativeScripts[0].Evaluate(100, nil))
	assert.False(t, aux.NativeScripts[0].Evaluate(99, nil))
	signers := map[common.Blake2b224]bool{{}: true}
	assert.True(t, aux.NativeScripts[1].Evaluate(0, signers))
	encoded, err := aux.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, encoded)
	// Re-encoding from the decoded fields gives the same bytes
	fresh := common.AuxiliaryData{
		Shape:         aux.Shape,
		Metadata:      aux.Metadata,
		NativeScripts: aux.NativeScripts,
	}
	encoded, err = fresh.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, encoded)
}

func TestAllegraTransactionBody(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteMapHeader(4)
	w.WriteUint(0)
	w.WriteArrayHeader(1)
	w.WriteArrayHeader(2)
	w.WriteBytes(make([]byte, 32))
	w.WriteUint(3)
	w.WriteUint(1)
	w.WriteArrayHeader(0)
	w.WriteUint(2)
	w.WriteUint(42)
	w.WriteUint(8)
	w.WriteUint(777)
	body, err := NewAllegraTransactionBodyFromCbor(w.Bytes())
	require.NoError(t, err)
	// TTL is optional from Allegra on
	assert.Equal(t, uint64(0), body.TTL())
	assert.Equal(t, uint64(777), body.ValidityIntervalStart())
	assert.Equal(t, uint64(42), body.Fee())
	assert.Equal(t, uint32(3), body.Inputs()[0].Index())
	assert.Equal(t, common.Blake2b256Hash(w.Bytes()), body.Hash())
	encoded, err := body.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, w.Bytes(), encoded)
}
