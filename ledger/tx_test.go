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

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/internal/test"
	"github.com/carloskiki/pallas-extras-sub001/internal/testdata"
	"github.com/carloskiki/pallas-extras-sub001/ledger"
	"github.com/carloskiki/pallas-extras-sub001/ledger/conway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	conwayTxHex = "84a500d9010281825820279184037d249e397d97293738370756da559718fcdefae9924834840046b37b01018282583900923d4b64e1d730a4baf3e6dc433a9686983940f458363f37aad7a1a9568b72f85522e4a17d44a45cd021b9741b55d7cbc635c911625b015e1a00a9867082583900923d4b64e1d730a4baf3e6dc433a9686983940f458363f37aad7a1a9568b72f85522e4a17d44a45cd021b9741b55d7cbc635c911625b015e1b00000001267d7b04021a0002938d031a04e304e70800a100d9010281825820b829480e5d5827d2e1bd7c89176a5ca125c30812e54be7dbdf5c47c835a17f3d5840b13a76e7f2b19cde216fcad55ceeeb489ebab3dcf63ef1539ac4f535dece00411ee55c9b8188ef04b4aa3c72586e4a0ec9b89949367d7270fdddad3b18731403f5f6"
	byronTxHex  = "839f8200d8185824825820a12a839c25a01fa5d118167db5acdbd9e38172ae8f00e5ac0a4997ef792a200700ff9f8282d818584283581c6c9982e7f2b6dcc5eaa880e8014568913c8868d9f0f86eb687b2633ca101581e581c010d876783fb2b4d0d17c86df29af8d35356ed3d1827bf4744f06700001a8dc672c11a000f4240ffa0"
)

// shelleyTx builds [body, witness_set, null] from a body holding the given extra keys
func shelleyTx(t *testing.T, extra func(w *cbor.Writer) int) []byte {
	t.Helper()
	body := cbor.NewWriter()
	extraBody := cbor.NewWriter()
	extraCount := 0
	if extra != nil {
		extraCount = extra(extraBody)
	}
	body.WriteMapHeader(4 + extraCount)
	body.WriteUint(0)
	body.WriteArrayHeader(1)
	body.WriteArrayHeader(2)
	body.WriteBytes(make([]byte, 32))
	body.WriteUint(0)
	body.WriteUint(1)
	body.WriteArrayHeader(1)
	body.WriteArrayHeader(2)
	body.WriteBytes(append([]byte{0x61}, make([]byte, 28)...))
	body.WriteUint(1_000_000)
	body.WriteUint(2)
	body.WriteUint(200_000)
	body.WriteUint(3)
	body.WriteUint(5000)
	body.WriteRaw(extraBody.Bytes())
	w := cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteRaw(body.Bytes())
	w.WriteMapHeader(0)
	w.WriteNull()
	return w.Bytes()
}

func TestDetermineTransactionType(t *testing.T) {
	testDefs := []struct {
		name     string
		data     []byte
		expected uint
	}{
		{
			name:     "Conway",
			data:     test.DecodeHexString(conwayTxHex),
			expected: ledger.TxTypeConway,
		},
		{
			name:     "ByronTx",
			data:     test.DecodeHexString(byronTxHex),
			expected: ledger.TxTypeByron,
		},
		{
			name:     "Shelley",
			data:     shelleyTx(t, nil),
			expected: ledger.TxTypeShelley,
		},
		{
			// Validity interval start is new in Allegra
			name: "Allegra",
			data: shelleyTx(t, func(w *cbor.Writer) int {
				w.WriteUint(8)
				w.WriteUint(100)
				return 1
			}),
			expected: ledger.TxTypeAllegra,
		},
		{
			// Minting is new in Mary: {policy: {name: 1}}
			name: "Mary",
			data: shelleyTx(t, func(w *cbor.Writer) int {
				w.WriteUint(9)
				w.WriteMapHeader(1)
				w.WriteBytes(make([]byte, 28))
				w.WriteMapHeader(1)
				w.WriteBytes([]byte("token"))
				w.WriteUint(1)
				return 1
			}),
			expected: ledger.TxTypeMary,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			txType, err := ledger.DetermineTransactionType(testDef.data)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, txType)
			if testDef.expected == ledger.TxTypeByron {
				// Bare transaction without its witnesses
				return
			}
			tx, err := ledger.NewTransactionFromCbor(txType, testDef.data)
			require.NoError(t, err)
			assert.NotEmpty(t, tx.Outputs())
		})
	}
	_, err := ledger.DetermineTransactionType([]byte{0x80})
	require.ErrorIs(t, err, ledger.ErrUnknownTxType)
	_, err = ledger.DetermineTransactionType([]byte{0x01})
	require.ErrorIs(t, err, ledger.ErrUnknownTxType)
}

func TestConwayTransaction(t *testing.T) {
	data := test.DecodeHexString(conwayTxHex)
	tx, err := ledger.NewTransactionFromCbor(ledger.TxTypeConway, data)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2938d), tx.Fee())
	assert.True(t, tx.IsValid())
	assert.Nil(t, tx.AuxiliaryData())
	require.Len(t, tx.Inputs(), 1)
	assert.Equal(t, uint32(1), tx.Inputs()[0].Index())
	require.Len(t, tx.Outputs(), 2)
	assert.Equal(t, uint64(11110000), tx.Outputs()[0].Amount())
	require.Len(t, tx.Witnesses().Vkey(), 1)
	assert.Equal(t, data, tx.Cbor())
	test.RequireCborRoundTrip(t, data, &conway.ConwayTransaction{})
	body, err := ledger.NewTransactionBodyFromCbor(ledger.TxTypeConway, rawBody(t, data))
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), body.Hash())
}

func rawBody(t *testing.T, txData []byte) []byte {
	t.Helper()
	rd := cbor.NewReader(txData)
	_, err := rd.ReadArrayLen()
	require.NoError(t, err)
	raw, err := rd.ReadRaw()
	require.NoError(t, err)
	return raw
}

func TestNewTransactionErrors(t *testing.T) {
	_, err := ledger.NewTransactionFromCbor(99, nil)
	require.ErrorIs(t, err, ledger.ErrUnknownTxType)
	_, err = ledger.NewTransactionBodyFromCbor(ledger.TxTypeByron, nil)
	require.Error(t, err)
}

func TestNewTransactionOutputFromCbor(t *testing.T) {
	addr := append([]byte{0x61}, make([]byte, 28)...)
	// Legacy array layout
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteBytes(addr)
	w.WriteUint(5)
	out, err := ledger.NewTransactionOutputFromCbor(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), out.Amount())
	// Map layout
	w = cbor.NewWriter()
	w.WriteMapHeader(2)
	w.WriteUint(0)
	w.WriteBytes(addr)
	w.WriteUint(1)
	w.WriteUint(7)
	out, err = ledger.NewTransactionOutputFromCbor(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), out.Amount())
	assert.Nil(t, out.DatumHash())
	_, err = ledger.NewTransactionOutputFromCbor(testdata.MustDecodeHex("01"))
	require.Error(t, err)
}
