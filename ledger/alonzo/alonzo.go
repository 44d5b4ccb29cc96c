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

package alonzo

import (
	"slices"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/mary"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdAlonzo   = 4
	EraNameAlonzo = "Alonzo"

	BlockTypeAlonzo = 5

	TxTypeAlonzo = 4
)

var EraAlonzo = common.Era{
	Id:   EraIdAlonzo,
	Name: EraNameAlonzo,
}

func init() {
	common.RegisterEra(EraAlonzo)
}

type AlonzoBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader            *AlonzoBlockHeader
	TransactionBodies      []AlonzoTransactionBody
	TransactionWitnessSets []common.TransactionWitnessSet
	TransactionMetadataSet common.TransactionMetadataSet
	InvalidTransactions    []uint
}

func (b *AlonzoBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "AlonzoBlock", b)
}

func (b *AlonzoBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (AlonzoBlock) Type() int {
	return BlockTypeAlonzo
}

func (b *AlonzoBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *AlonzoBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *AlonzoBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *AlonzoBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *AlonzoBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *AlonzoBlock) Era() common.Era {
	return EraAlonzo
}

func (b *AlonzoBlock) Transactions() []common.Transaction {
	ret := make([]common.Transaction, len(b.TransactionBodies))
	for idx := range b.TransactionBodies {
		// #nosec G115
		valid := !slices.Contains(b.InvalidTransactions, uint(idx))
		tx := &AlonzoTransaction{
			Body:       b.TransactionBodies[idx],
			WitnessSet: b.TransactionWitnessSets[idx],
		}
		tx.Valid = &valid
		// #nosec G115
		tx.AuxData, _ = b.TransactionMetadataSet.GetAuxiliaryData(uint64(idx))
		ret[idx] = tx
	}
	return ret
}

func (b *AlonzoBlock) Utxorpc() *utxorpc.Block {
	return shelley.BlockUtxorpc(b)
}

type AlonzoBlockHeader struct {
	common.Header
}

func (h *AlonzoBlockHeader) Era() common.Era {
	return EraAlonzo
}

type AlonzoTransactionBody struct {
	common.TransactionBodyBase `cbor:"-"`
	TxInputs                   cbor.Set[common.TransactionInput]             `cbor:"0,keyasint"`
	TxOutputs                  []AlonzoTransactionOutput                     `cbor:"1,keyasint"`
	TxFee                      uint64                                        `cbor:"2,keyasint"`
	Ttl                        uint64                                        `cbor:"3,keyasint,omitempty"`
	TxCertificates             []common.CertificateWrapper                   `cbor:"4,keyasint,omitempty"`
	TxWithdrawals              cbor.ListAsMap[common.Address, uint64]        `cbor:"5,keyasint,omitempty"`
	Update                     *common.ProtocolParameterUpdateProposal       `cbor:"6,keyasint,omitempty"`
	TxAuxDataHash              *common.Blake2b256                            `cbor:"7,keyasint,omitempty"`
	TxValidityIntervalStart    uint64                                        `cbor:"8,keyasint,omitempty"`
	TxMint                     *common.MultiAsset[common.MultiAssetTypeMint] `cbor:"9,keyasint,omitempty"`
	TxScriptDataHash           *common.Blake2b256                            `cbor:"11,keyasint,omitempty"`
	TxCollateral               *cbor.Set[common.TransactionInput]            `cbor:"13,keyasint,omitempty"`
	TxRequiredSigners          *cbor.Set[common.Blake2b224]                  `cbor:"14,keyasint,omitempty"`
	NetworkId                  *uint8                                        `cbor:"15,keyasint,omitempty"`
}

func (b *AlonzoTransactionBody) Decode(rd *cbor.Reader) error {
	if err := common.DecodeTransactionBody(rd, "AlonzoTransactionBody", b); err != nil {
		return err
	}
	if b.Update != nil {
		return b.Update.ValidateKeys(common.AlonzoProtocolParameterKeys)
	}
	return nil
}

func (b *AlonzoTransactionBody) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, b)
}

func (b *AlonzoTransactionBody) MarshalCBOR() ([]byte, error) {
	if b.Cbor() != nil {
		return b.Cbor(), nil
	}
	return cbor.EncodeRecordBytes(b)
}

func (b *AlonzoTransactionBody) Inputs() []common.TransactionInput {
	return b.TxInputs.Items()
}

func (b *AlonzoTransactionBody) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, len(b.TxOutputs))
	for i := range b.TxOutputs {
		ret[i] = &b.TxOutputs[i]
	}
	return ret
}

func (b *AlonzoTransactionBody) Fee() uint64 {
	return b.TxFee
}

func (b *AlonzoTransactionBody) TTL() uint64 {
	return b.Ttl
}

func (b *AlonzoTransactionBody) ValidityIntervalStart() uint64 {
	return b.TxValidityIntervalStart
}

func (b *AlonzoTransactionBody) ProtocolParameterUpdates() *common.ProtocolParameterUpdateProposal {
	return b.Update
}

func (b *AlonzoTransactionBody) Certificates() []common.Certificate {
	return common.CertificatesFromWrappers(b.TxCertificates)
}

func (b *AlonzoTransactionBody) Withdrawals() cbor.ListAsMap[common.Address, uint64] {
	return b.TxWithdrawals
}

func (b *AlonzoTransactionBody) AuxDataHash() *common.Blake2b256 {
	return b.TxAuxDataHash
}

func (b *AlonzoTransactionBody) AssetMint() *common.MultiAsset[common.MultiAssetTypeMint] {
	return b.TxMint
}

func (b *AlonzoTransactionBody) ScriptDataHash() *common.Blake2b256 {
	return b.TxScriptDataHash
}

func (b *AlonzoTransactionBody) Collateral() []common.TransactionInput {
	if b.TxCollateral == nil {
		return nil
	}
	return b.TxCollateral.Items()
}

func (b *AlonzoTransactionBody) RequiredSigners() []common.Blake2b224 {
	if b.TxRequiredSigners == nil {
		return nil
	}
	return b.TxRequiredSigners.Items()
}

func (b *AlonzoTransactionBody) Utxorpc() *utxorpc.Tx {
	return common.TransactionUtxorpc(b)
}

// AlonzoTransactionOutput is [address, value, datum_hash?]
type AlonzoTransactionOutput struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	OutputAddress     common.Address
	OutputAmount      common.Value
	TxOutputDatumHash *common.DatumHash
}

func (o *AlonzoTransactionOutput) UnmarshalCBOR(cborData []byte) error {
	return o.UnmarshalRecord(cborData, "AlonzoTransactionOutput", o)
}

func (o *AlonzoTransactionOutput) MarshalCBOR() ([]byte, error) {
	return o.MarshalRecord(o)
}

func (o *AlonzoTransactionOutput) Address() common.Address {
	return o.OutputAddress
}

func (o *AlonzoTransactionOutput) Amount() uint64 {
	return o.OutputAmount.Coin
}

func (o *AlonzoTransactionOutput) Assets() *common.MultiAsset[common.MultiAssetTypeOutput] {
	return o.OutputAmount.Assets
}

func (o *AlonzoTransactionOutput) DatumHash() *common.DatumHash {
	return o.TxOutputDatumHash
}

func (o *AlonzoTransactionOutput) Datum() *common.Datum {
	return nil
}

func (o *AlonzoTransactionOutput) ScriptRef() *common.ScriptRef {
	return nil
}

func (o *AlonzoTransactionOutput) Utxorpc() *utxorpc.TxOutput {
	return common.OutputUtxorpc(o)
}

// ToMary returns the output without its datum hash
func (o *AlonzoTransactionOutput) ToMary() mary.MaryTransactionOutput {
	return mary.MaryTransactionOutput{
		OutputAddress: o.OutputAddress,
		OutputAmount:  o.OutputAmount,
	}
}

type AlonzoTransaction struct {
	common.TransactionEnvelope
	Body       AlonzoTransactionBody
	WitnessSet common.TransactionWitnessSet
}

func (t *AlonzoTransaction) Decode(rd *cbor.Reader) error {
	return t.DecodeEnvelope(rd, "AlonzoTransaction", &t.Body, &t.WitnessSet)
}

func (t *AlonzoTransaction) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *AlonzoTransaction) MarshalCBOR() ([]byte, error) {
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	w := cbor.NewWriter()
	if err := t.EncodeEnvelope(w, &t.Body, &t.WitnessSet); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (AlonzoTransaction) Type() int {
	return TxTypeAlonzo
}

func (t *AlonzoTransaction) TxBody() common.TransactionBody {
	return &t.Body
}

func (t *AlonzoTransaction) Hash() common.Blake2b256 {
	return t.Body.Hash()
}

func (t *AlonzoTransaction) Inputs() []common.TransactionInput {
	return t.Body.Inputs()
}

func (t *AlonzoTransaction) Outputs() []common.TransactionOutput {
	return t.Body.Outputs()
}

func (t *AlonzoTransaction) Fee() uint64 {
	return t.Body.Fee()
}

func (t *AlonzoTransaction) Witnesses() *common.TransactionWitnessSet {
	return &t.WitnessSet
}

func (t *AlonzoTransaction) Utxorpc() *utxorpc.Tx {
	return t.Body.Utxorpc()
}

func NewAlonzoBlockFromCbor(data []byte) (*AlonzoBlock, error) {
	var alonzoBlock AlonzoBlock
	if _, err := cbor.Decode(data, &alonzoBlock); err != nil {
		return nil, err
	}
	return &alonzoBlock, nil
}

func NewAlonzoTransactionBodyFromCbor(data []byte) (*AlonzoTransactionBody, error) {
	var alonzoTx AlonzoTransactionBody
	if err := alonzoTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &alonzoTx, nil
}

func NewAlonzoTransactionFromCbor(data []byte) (*AlonzoTransaction, error) {
	var alonzoTx AlonzoTransaction
	if err := alonzoTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &alonzoTx, nil
}

func NewAlonzoTransactionOutputFromCbor(data []byte) (*AlonzoTransactionOutput, error) {
	var alonzoTxOutput AlonzoTransactionOutput
	if err := alonzoTxOutput.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &alonzoTxOutput, nil
}
