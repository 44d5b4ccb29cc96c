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

package shelley

import (
	"bytes"
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/internal/testdata"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShelleyBlockDecode(t *testing.T) {
	data := testdata.BuildBlock(testdata.BlockSpec{
		BlockType:   BlockTypeShelley,
		BlockNumber: 10,
		Slot:        4492800,
		TxCount:     2,
	})
	block, err := NewShelleyBlockFromCbor(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), block.BlockNumber())
	assert.Equal(t, uint64(4492800), block.SlotNumber())
	assert.Equal(t, EraShelley, block.Era())
	assert.Equal(t, common.Blake2b256Hash(block.BlockHeader.Cbor()), block.Hash())
	require.NotNil(t, block.PrevHash())
	assert.Equal(t, byte(0xaa), block.PrevHash()[0])
	// Legacy header layout carries both VRF certificates
	body := block.BlockHeader.Body
	assert.True(t, body.IsLegacy())
	assert.False(t, body.NonceVrfProvisional())
	assert.Equal(t, byte(0x33), body.NonceVrf.Output[0])
	assert.Equal(t, byte(0x44), body.LeaderVrf.Output[0])
	assert.Equal(t, uint64(300), body.OpCert.KesPeriod)
	assert.Equal(t, uint(2), body.ProtocolVersion.Major)
	// Original bytes are kept
	encoded, err := block.MarshalCBOR()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, encoded))
	assert.Equal(t, 1, block.TransactionMetadataSet.Len())
	assert.NotNil(t, block.Utxorpc())
}

func TestShelleyBlockTransactions(t *testing.T) {
	data := testdata.BuildBlock(testdata.BlockSpec{
		BlockType: BlockTypeShelley,
		Slot:      5000,
		TxCount:   2,
	})
	block, err := NewShelleyBlockFromCbor(data)
	require.NoError(t, err)
	txs := block.Transactions()
	require.Len(t, txs, 2)
	tx, ok := txs[0].(*ShelleyTransaction)
	require.True(t, ok)
	// Transaction id is the hash of the original body bytes
	assert.Equal(t, common.Blake2b256Hash(block.TransactionBodies[0].Cbor()), tx.Hash())
	assert.Equal(t, uint64(8600), tx.Body.TTL())
	assert.Equal(t, uint64(170_000), tx.Fee())
	require.Len(t, tx.Inputs(), 1)
	assert.Equal(t, uint32(0), tx.Inputs()[0].Index())
	out := tx.Outputs()[0]
	assert.Equal(t, uint64(2_000_000), out.Amount())
	assert.Nil(t, out.Assets())
	assert.Nil(t, out.DatumHash())
	assert.Equal(t, uint8(common.AddressTypeKeyNone), out.Address().Type())
	require.Len(t, tx.Witnesses().Vkey(), 1)
	aux := tx.AuxiliaryData()
	require.NotNil(t, aux)
	assert.Equal(t, common.AuxiliaryDataShapeShelley, aux.Shape)
	msg, ok := aux.Metadata.Get(674)
	require.True(t, ok)
	assert.Equal(t, common.MetaText{Value: "test"}, msg)
	assert.NotNil(t, tx.Utxorpc())
}

func TestShelleyTransactionBodyRejectsLaterKeys(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteMapHeader(5)
	w.WriteUint(0)
	w.WriteArrayHeader(0)
	w.WriteUint(1)
	w.WriteArrayHeader(0)
	w.WriteUint(2)
	w.WriteUint(1)
	w.WriteUint(3)
	w.WriteUint(1)
	// Validity interval start arrived with Allegra
	w.WriteUint(8)
	w.WriteUint(1)
	_, err := NewShelleyTransactionBodyFromCbor(w.Bytes())
	var tagErr *cbor.InvalidTagError
	require.ErrorAs(t, err, &tagErr)
	assert.Equal(t, uint64(8), tagErr.Tag)
}

func TestShelleyTransactionBodyMissingTtl(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteMapHeader(3)
	w.WriteUint(0)
	w.WriteArrayHeader(0)
	w.WriteUint(1)
	w.WriteArrayHeader(0)
	w.WriteUint(2)
	w.WriteUint(1)
	_, err := NewShelleyTransactionBodyFromCbor(w.Bytes())
	require.ErrorIs(t, err, cbor.ErrMissingField)
}
