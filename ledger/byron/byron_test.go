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

package byron_test

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/byron"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExtendedKey(t *testing.T, seed byte) (ed25519.PrivateKey, byron.ExtendedVerificationKey) {
	t.Helper()
	seedBytes := make([]byte, ed25519.SeedSize)
	for i := range seedBytes {
		seedBytes[i] = seed
	}
	priv := ed25519.NewKeyFromSeed(seedBytes)
	var xvk byron.ExtendedVerificationKey
	copy(xvk[:32], priv.Public().(ed25519.PublicKey))
	for i := 32; i < 64; i++ {
		xvk[i] = 0xcc
	}
	return priv, xvk
}

func buildSignedTransaction(
	t *testing.T,
	protocolMagic uint32,
) (*byron.ByronTransaction, common.Address) {
	t.Helper()
	priv, xvk := testExtendedKey(t, 7)
	addr, err := common.NewByronAddressFromKey(xvk[:], common.ByronAddressAttributes{})
	require.NoError(t, err)
	tx := byron.ByronTx{
		TxInputs: []byron.ByronTransactionInput{
			byron.NewByronTransactionInput(common.TransactionInput{
				TxId:        common.Blake2b256{0x01, 0x02},
				OutputIndex: 1,
			}),
		},
		TxOutputs: []byron.ByronTransactionOutput{
			{OutputAddress: addr, OutputAmount: 1_000_000},
		},
	}
	txBytes, err := tx.MarshalCBOR()
	require.NoError(t, err)
	txId := common.Blake2b256Hash(txBytes)
	// Signed payload is the tag byte, the protocol magic and the transaction id
	msg := cbor.NewWriter()
	msg.WriteRaw([]byte{0x01})
	msg.WriteUint(uint64(protocolMagic))
	msg.WriteBytes(txId[:])
	var sig common.Signature
	copy(sig[:], ed25519.Sign(priv, msg.Bytes()))
	witness := byron.ByronTxWitness{
		Pk: new(cbor.Encoded[byron.ByronPkWitness]),
	}
	*witness.Pk = cbor.NewEncoded(byron.ByronPkWitness{Key: xvk, Signature: sig})
	witnessBytes, err := witness.MarshalCBOR()
	require.NoError(t, err)
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteRaw(txBytes)
	w.WriteArrayHeader(1)
	w.WriteRaw(witnessBytes)
	ret, err := byron.NewByronTransactionFromCbor(w.Bytes())
	require.NoError(t, err)
	return ret, addr
}

func TestByronTransactionWitness(t *testing.T) {
	tx, addr := buildSignedTransaction(t, 42)
	require.Len(t, tx.TxWitnesses, 1)
	require.NoError(t, tx.VerifyWitnesses(42))
	// Wrong network
	require.ErrorIs(t, tx.VerifyWitnesses(43), byron.ErrInvalidWitness)
	// The witness key controls the output address
	witnessAddr, err := tx.TxWitnesses[0].Address(common.ByronAddressAttributes{})
	require.NoError(t, err)
	assert.Equal(t, addr.String(), witnessAddr.String())
	// Tampered signature
	tx.TxWitnesses[0].Pk.Value.Signature[0] ^= 0xff
	require.ErrorIs(t, tx.VerifyWitnesses(42), byron.ErrInvalidWitness)
}

func TestByronTransactionAccessors(t *testing.T) {
	tx, addr := buildSignedTransaction(t, 1)
	inputs := tx.Inputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, uint32(1), inputs[0].Index())
	assert.Equal(t, byte(0x01), inputs[0].Id()[0])
	outputs := tx.Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, uint64(1_000_000), outputs[0].Amount())
	assert.Equal(t, addr.String(), outputs[0].Address().String())
	assert.Nil(t, outputs[0].Assets())
	assert.Nil(t, outputs[0].DatumHash())
	assert.Equal(t, common.Blake2b256Hash(tx.Tx.Cbor()), tx.Hash())
	encoded, err := tx.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, tx.Cbor(), encoded)
}

func TestByronTxRequiresInputsAndOutputs(t *testing.T) {
	// [[], [], {}]
	var tx byron.ByronTx
	err := tx.UnmarshalCBOR([]byte{0x83, 0x80, 0x80, 0xa0})
	require.ErrorIs(t, err, cbor.ErrInvalidLength)
	var fieldErr *cbor.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "TxInputs", fieldErr.Field)
}

func TestByronTransactionInputTag(t *testing.T) {
	input := byron.NewByronTransactionInput(common.TransactionInput{OutputIndex: 3})
	encoded, err := input.MarshalCBOR()
	require.NoError(t, err)
	// [0, 24(h'...')]
	assert.Equal(t, "8200d818", hex.EncodeToString(encoded[:4]))
	var decoded byron.ByronTransactionInput
	require.NoError(t, decoded.UnmarshalCBOR(encoded))
	assert.Equal(t, uint32(3), decoded.Input.Value.OutputIndex)
	encoded[1] = 0x01
	var tagErr *cbor.InvalidTagError
	require.ErrorAs(t, decoded.UnmarshalCBOR(encoded), &tagErr)
	assert.Equal(t, uint64(1), tagErr.Tag)
}

func TestByronTxFeePolicy(t *testing.T) {
	inner := cbor.NewWriter()
	inner.WriteArrayHeader(2)
	inner.WriteUint(155381000000000)
	inner.WriteUint(43946000000)
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(0)
	w.WriteTag(cbor.CborTagCbor)
	w.WriteBytes(inner.Bytes())
	var policy byron.ByronTxFeePolicy
	require.NoError(t, policy.UnmarshalCBOR(w.Bytes()))
	assert.Equal(t, uint64(155381000000000), policy.Policy.Value.Constant)
	assert.Equal(t, uint64(43946000000), policy.Policy.Value.Coefficient)
	assert.Equal(t, uint64(155381), policy.MinFee(0))
	assert.Equal(t, uint64(164171), policy.MinFee(200))
	encoded, err := policy.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, w.Bytes(), encoded)
}

func TestByronProtocolParameters(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(14)
	for i := range 14 {
		if i == 2 {
			w.WriteArrayHeader(1)
			w.WriteUint(2_000_000)
			continue
		}
		w.WriteArrayHeader(0)
	}
	var params byron.ByronProtocolParameters
	_, err := cbor.Decode(w.Bytes(), &params)
	require.NoError(t, err)
	require.NotNil(t, params.MaxBlockSize.Value)
	assert.Equal(t, uint64(2_000_000), *params.MaxBlockSize.Value)
	assert.Nil(t, params.ScriptVersion.Value)
	assert.Nil(t, params.TxFeePolicy.Value)
	encoded, err := cbor.Encode(&params)
	require.NoError(t, err)
	assert.Equal(t, w.Bytes(), encoded)
}

func TestByronBlockSignature(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(0)
	w.WriteBytes(make([]byte, 64))
	var sig byron.ByronBlockSignature
	require.NoError(t, sig.UnmarshalCBOR(w.Bytes()))
	assert.Equal(t, uint64(0), sig.Type)
	assert.Nil(t, sig.Delegation)
	encoded, err := sig.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, w.Bytes(), encoded)
	// Lightweight delegation is not supported
	bad := w.Bytes()
	bad[1] = 0x01
	var tagErr *cbor.InvalidTagError
	require.ErrorAs(t, sig.UnmarshalCBOR(bad), &tagErr)
}

func buildEpochBoundaryBlock(epoch uint64) ([]byte, []byte) {
	header := cbor.NewWriter()
	header.WriteArrayHeader(5)
	header.WriteUint(764824073)
	header.WriteBytes(make([]byte, 32))
	header.WriteBytes(make([]byte, 32))
	header.WriteArrayHeader(2)
	header.WriteUint(epoch)
	header.WriteArrayHeader(1)
	header.WriteUint(epoch * 21600)
	header.WriteArrayHeader(1)
	header.WriteMapHeader(0)
	w := cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteRaw(header.Bytes())
	w.WriteArrayHeader(1)
	w.WriteBytes(make([]byte, 28))
	w.WriteArrayHeader(1)
	w.WriteMapHeader(0)
	return w.Bytes(), header.Bytes()
}

func TestByronEpochBoundaryBlock(t *testing.T) {
	data, headerBytes := buildEpochBoundaryBlock(3)
	block, err := byron.NewByronEpochBoundaryBlockFromCbor(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(3*byron.ByronSlotsPerEpoch), block.SlotNumber())
	assert.Equal(t, uint64(3*21600), block.BlockNumber())
	assert.Empty(t, block.Transactions())
	assert.Len(t, block.Body, 1)
	assert.Equal(t, headerBytes, block.BlockHeader.Cbor())
	expected := common.Blake2b256Hash(append([]byte{0x82, 0x00}, headerBytes...))
	assert.Equal(t, expected, block.Hash())
	encoded, err := block.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, encoded)
	header, err := byron.NewByronEpochBoundaryBlockHeaderFromCbor(headerBytes)
	require.NoError(t, err)
	assert.Equal(t, block.Hash(), header.Hash())
}
