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

package mary

import (
	"bytes"
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/internal/testdata"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = common.NewBlake2b224(bytes.Repeat([]byte{0x29}, 28))

// writeAssets writes {policy: {name: amount}}
func writeAssets(w *cbor.Writer, name string, amount int64) {
	w.WriteMapHeader(1)
	w.WriteBytes(testPolicy.Bytes())
	w.WriteMapHeader(1)
	w.WriteBytes([]byte(name))
	w.WriteInt(amount)
}

func TestMaryBlockDecode(t *testing.T) {
	data := testdata.BuildBlock(testdata.BlockSpec{
		BlockType: BlockTypeMary,
		Slot:      23068800,
		TxCount:   2,
	})
	block, err := NewMaryBlockFromCbor(data)
	require.NoError(t, err)
	assert.Equal(t, EraMary, block.Era())
	require.Len(t, block.Transactions(), 2)
	encoded, err := block.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, encoded)
}

func TestMaryTransactionOutputMultiAsset(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteBytes(append([]byte{0x61}, make([]byte, 28)...))
	w.WriteArrayHeader(2)
	w.WriteUint(1_500_000)
	writeAssets(w, "TOKEN", 12)
	out, err := NewMaryTransactionOutputFromCbor(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), out.Amount())
	require.NotNil(t, out.Assets())
	assert.Equal(t, []common.Blake2b224{testPolicy}, out.Assets().Policies())
	assert.Equal(t, uint64(12), out.Assets().Asset(testPolicy, []byte("TOKEN")))
	assert.Equal(t, uint64(0), out.Assets().Asset(testPolicy, []byte("OTHER")))
	encoded, err := out.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, w.Bytes(), encoded)
	assert.NotNil(t, out.Utxorpc())
}

func TestMaryTransactionBodyMint(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteMapHeader(4)
	w.WriteUint(0)
	w.WriteArrayHeader(0)
	w.WriteUint(1)
	w.WriteArrayHeader(0)
	w.WriteUint(2)
	w.WriteUint(200)
	w.WriteUint(9)
	// Burning uses negative amounts
	writeAssets(w, "TOKEN", -5)
	body, err := NewMaryTransactionBodyFromCbor(w.Bytes())
	require.NoError(t, err)
	require.NotNil(t, body.AssetMint())
	assert.Equal(t, int64(-5), body.AssetMint().Asset(testPolicy, []byte("TOKEN")))
	assert.Equal(t, uint64(200), body.Fee())
}

func TestMaryAssetNameTooLong(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteBytes(append([]byte{0x61}, make([]byte, 28)...))
	w.WriteArrayHeader(2)
	w.WriteUint(1)
	writeAssets(w, string(bytes.Repeat([]byte{'a'}, common.MaxAssetNameLength+1)), 1)
	_, err := NewMaryTransactionOutputFromCbor(w.Bytes())
	require.Error(t, err)
}
