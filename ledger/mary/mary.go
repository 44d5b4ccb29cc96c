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
	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdMary   = 3
	EraNameMary = "Mary"

	BlockTypeMary = 4

	TxTypeMary = 3
)

var EraMary = common.Era{
	Id:   EraIdMary,
	Name: EraNameMary,
}

func init() {
	common.RegisterEra(EraMary)
}

type MaryBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader            *MaryBlockHeader
	TransactionBodies      []MaryTransactionBody
	TransactionWitnessSets []common.TransactionWitnessSet
	TransactionMetadataSet common.TransactionMetadataSet
}

func (b *MaryBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "MaryBlock", b)
}

func (b *MaryBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (MaryBlock) Type() int {
	return BlockTypeMary
}

func (b *MaryBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *MaryBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *MaryBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *MaryBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *MaryBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *MaryBlock) Era() common.Era {
	return EraMary
}

func (b *MaryBlock) Transactions() []common.Transaction {
	ret := make([]common.Transaction, len(b.TransactionBodies))
	for idx := range b.TransactionBodies {
		tx := &MaryTransaction{
			Body:       b.TransactionBodies[idx],
			WitnessSet: b.TransactionWitnessSets[idx],
		}
		// #nosec G115
		tx.AuxData, _ = b.TransactionMetadataSet.GetAuxiliaryData(uint64(idx))
		ret[idx] = tx
	}
	return ret
}

func (b *MaryBlock) Utxorpc() *utxorpc.Block {
	return shelley.BlockUtxorpc(b)
}

type MaryBlockHeader struct {
	common.Header
}

func (h *MaryBlockHeader) Era() common.Era {
	return EraMary
}

type MaryTransactionBody struct {
	common.TransactionBodyBase `cbor:"-"`
	TxInputs                   cbor.Set[common.TransactionInput]             `cbor:"0,keyasint"`
	TxOutputs                  []MaryTransactionOutput                       `cbor:"1,keyasint"`
	TxFee                      uint64                                        `cbor:"2,keyasint"`
	Ttl                        uint64                                        `cbor:"3,keyasint,omitempty"`
	TxCertificates             []common.CertificateWrapper                   `cbor:"4,keyasint,omitempty"`
	TxWithdrawals              cbor.ListAsMap[common.Address, uint64]        `cbor:"5,keyasint,omitempty"`
	Update                     *common.ProtocolParameterUpdateProposal       `cbor:"6,keyasint,omitempty"`
	TxAuxDataHash              *common.Blake2b256                            `cbor:"7,keyasint,omitempty"`
	TxValidityIntervalStart    uint64                                        `cbor:"8,keyasint,omitempty"`
	TxMint                     *common.MultiAsset[common.MultiAssetTypeMint] `cbor:"9,keyasint,omitempty"`
}

func (b *MaryTransactionBody) Decode(rd *cbor.Reader) error {
	if err := common.DecodeTransactionBody(rd, "MaryTransactionBody", b); err != nil {
		return err
	}
	if b.Update != nil {
		return b.Update.ValidateKeys(common.ShelleyProtocolParameterKeys)
	}
	return nil
}

func (b *MaryTransactionBody) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, b)
}

func (b *MaryTransactionBody) MarshalCBOR() ([]byte, error) {
	if b.Cbor() != nil {
		return b.Cbor(), nil
	}
	return cbor.EncodeRecordBytes(b)
}

func (b *MaryTransactionBody) Inputs() []common.TransactionInput {
	return b.TxInputs.Items()
}

func (b *MaryTransactionBody) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, len(b.TxOutputs))
	for i := range b.TxOutputs {
		ret[i] = &b.TxOutputs[i]
	}
	return ret
}

func (b *MaryTransactionBody) Fee() uint64 {
	return b.TxFee
}

func (b *MaryTransactionBody) TTL() uint64 {
	return b.Ttl
}

func (b *MaryTransactionBody) ValidityIntervalStart() uint64 {
	return b.TxValidityIntervalStart
}

func (b *MaryTransactionBody) ProtocolParameterUpdates() *common.ProtocolParameterUpdateProposal {
	return b.Update
}

func (b *MaryTransactionBody) Certificates() []common.Certificate {
	return common.CertificatesFromWrappers(b.TxCertificates)
}

func (b *MaryTransactionBody) Withdrawals() cbor.ListAsMap[common.Address, uint64] {
	return b.TxWithdrawals
}

func (b *MaryTransactionBody) AuxDataHash() *common.Blake2b256 {
	return b.TxAuxDataHash
}

func (b *MaryTransactionBody) AssetMint() *common.MultiAsset[common.MultiAssetTypeMint] {
	return b.TxMint
}

func (b *MaryTransactionBody) Utxorpc() *utxorpc.Tx {
	return common.TransactionUtxorpc(b)
}

// MaryTransactionOutput is [address, value], where value is a coin or [coin, multiasset]
type MaryTransactionOutput struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	OutputAddress common.Address
	OutputAmount  common.Value
}

func (o *MaryTransactionOutput) UnmarshalCBOR(cborData []byte) error {
	return o.UnmarshalRecord(cborData, "MaryTransactionOutput", o)
}

func (o *MaryTransactionOutput) MarshalCBOR() ([]byte, error) {
	return o.MarshalRecord(o)
}

func (o *MaryTransactionOutput) Address() common.Address {
	return o.OutputAddress
}

func (o *MaryTransactionOutput) Amount() uint64 {
	return o.OutputAmount.Coin
}

func (o *MaryTransactionOutput) Assets() *common.MultiAsset[common.MultiAssetTypeOutput] {
	return o.OutputAmount.Assets
}

func (o *MaryTransactionOutput) DatumHash() *common.DatumHash {
	return nil
}

func (o *MaryTransactionOutput) Datum() *common.Datum {
	return nil
}

func (o *MaryTransactionOutput) ScriptRef() *common.ScriptRef {
	return nil
}

func (o *MaryTransactionOutput) Utxorpc() *utxorpc.TxOutput {
	return common.OutputUtxorpc(o)
}

type MaryTransaction struct {
	common.TransactionEnvelope
	Body       MaryTransactionBody
	WitnessSet common.TransactionWitnessSet
}

func (t *MaryTransaction) Decode(rd *cbor.Reader) error {
	return t.DecodeEnvelope(rd, "MaryTransaction", &t.Body, &t.WitnessSet)
}

func (t *MaryTransaction) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *MaryTransaction) MarshalCBOR() ([]byte, error) {
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	w := cbor.NewWriter()
	if err := t.EncodeEnvelope(w, &t.Body, &t.WitnessSet); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (MaryTransaction) Type() int {
	return TxTypeMary
}

func (t *MaryTransaction) TxBody() common.TransactionBody {
	return &t.Body
}

func (t *MaryTransaction) Hash() common.Blake2b256 {
	return t.Body.Hash()
}

func (t *MaryTransaction) Inputs() []common.TransactionInput {
	return t.Body.Inputs()
}

func (t *MaryTransaction) Outputs() []common.TransactionOutput {
	return t.Body.Outputs()
}

func (t *MaryTransaction) Fee() uint64 {
	return t.Body.Fee()
}

func (t *MaryTransaction) Witnesses() *common.TransactionWitnessSet {
	return &t.WitnessSet
}

func (t *MaryTransaction) Utxorpc() *utxorpc.Tx {
	return t.Body.Utxorpc()
}

func NewMaryBlockFromCbor(data []byte) (*MaryBlock, error) {
	var maryBlock MaryBlock
	if _, err := cbor.Decode(data, &maryBlock); err != nil {
		return nil, err
	}
	return &maryBlock, nil
}

func NewMaryTransactionBodyFromCbor(data []byte) (*MaryTransactionBody, error) {
	var maryTx MaryTransactionBody
	if err := maryTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &maryTx, nil
}

func NewMaryTransactionFromCbor(data []byte) (*MaryTransaction, error) {
	var maryTx MaryTransaction
	if err := maryTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &maryTx, nil
}

func NewMaryTransactionOutputFromCbor(data []byte) (*MaryTransactionOutput, error) {
	var maryTxOutput MaryTransactionOutput
	if err := maryTxOutput.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &maryTxOutput, nil
}
