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
	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdShelley   = 1
	EraNameShelley = "Shelley"

	BlockTypeShelley = 2

	TxTypeShelley = 1
)

var EraShelley = common.Era{
	Id:   EraIdShelley,
	Name: EraNameShelley,
}

func init() {
	common.RegisterEra(EraShelley)
}

type ShelleyBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader            *ShelleyBlockHeader
	TransactionBodies      []ShelleyTransactionBody
	TransactionWitnessSets []common.TransactionWitnessSet
	TransactionMetadataSet common.TransactionMetadataSet
}

func (b *ShelleyBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "ShelleyBlock", b)
}

func (b *ShelleyBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (ShelleyBlock) Type() int {
	return BlockTypeShelley
}

func (b *ShelleyBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *ShelleyBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *ShelleyBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *ShelleyBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *ShelleyBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *ShelleyBlock) Era() common.Era {
	return EraShelley
}

func (b *ShelleyBlock) Transactions() []common.Transaction {
	ret := make([]common.Transaction, len(b.TransactionBodies))
	for idx := range b.TransactionBodies {
		tx := &ShelleyTransaction{
			Body:       b.TransactionBodies[idx],
			WitnessSet: b.TransactionWitnessSets[idx],
		}
		// #nosec G115
		tx.AuxData, _ = b.TransactionMetadataSet.GetAuxiliaryData(uint64(idx))
		ret[idx] = tx
	}
	return ret
}

func (b *ShelleyBlock) Utxorpc() *utxorpc.Block {
	return BlockUtxorpc(b)
}

// BlockUtxorpc builds the utxorpc form of a block. It is shared by the eras that follow
// Shelley
func BlockUtxorpc(b common.Block) *utxorpc.Block {
	txs := []*utxorpc.Tx{}
	for _, t := range b.Transactions() {
		if body, ok := t.(interface{ TxBody() common.TransactionBody }); ok {
			txs = append(txs, common.TransactionUtxorpc(body.TxBody()))
		}
	}
	return &utxorpc.Block{
		Body: &utxorpc.BlockBody{
			Tx: txs,
		},
		Header: &utxorpc.BlockHeader{
			Hash:   b.Hash().Bytes(),
			Height: b.BlockNumber(),
			Slot:   b.SlotNumber(),
		},
	}
}

type ShelleyBlockHeader struct {
	common.Header
}

func (h *ShelleyBlockHeader) Era() common.Era {
	return EraShelley
}

type ShelleyTransactionBody struct {
	common.TransactionBodyBase `cbor:"-"`
	TxInputs                   cbor.Set[common.TransactionInput]       `cbor:"0,keyasint"`
	TxOutputs                  []ShelleyTransactionOutput              `cbor:"1,keyasint"`
	TxFee                      uint64                                  `cbor:"2,keyasint"`
	Ttl                        uint64                                  `cbor:"3,keyasint"`
	TxCertificates             []common.CertificateWrapper             `cbor:"4,keyasint,omitempty"`
	TxWithdrawals              cbor.ListAsMap[common.Address, uint64]  `cbor:"5,keyasint,omitempty"`
	Update                     *common.ProtocolParameterUpdateProposal `cbor:"6,keyasint,omitempty"`
	TxAuxDataHash              *common.Blake2b256                      `cbor:"7,keyasint,omitempty"`
}

func (b *ShelleyTransactionBody) Decode(rd *cbor.Reader) error {
	if err := common.DecodeTransactionBody(rd, "ShelleyTransactionBody", b); err != nil {
		return err
	}
	if b.Update != nil {
		return b.Update.ValidateKeys(common.ShelleyProtocolParameterKeys)
	}
	return nil
}

func (b *ShelleyTransactionBody) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, b)
}

func (b *ShelleyTransactionBody) MarshalCBOR() ([]byte, error) {
	if b.Cbor() != nil {
		return b.Cbor(), nil
	}
	return cbor.EncodeRecordBytes(b)
}

func (b *ShelleyTransactionBody) Inputs() []common.TransactionInput {
	return b.TxInputs.Items()
}

func (b *ShelleyTransactionBody) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, len(b.TxOutputs))
	for i := range b.TxOutputs {
		ret[i] = &b.TxOutputs[i]
	}
	return ret
}

func (b *ShelleyTransactionBody) Fee() uint64 {
	return b.TxFee
}

func (b *ShelleyTransactionBody) TTL() uint64 {
	return b.Ttl
}

func (b *ShelleyTransactionBody) ProtocolParameterUpdates() *common.ProtocolParameterUpdateProposal {
	return b.Update
}

func (b *ShelleyTransactionBody) Certificates() []common.Certificate {
	return common.CertificatesFromWrappers(b.TxCertificates)
}

func (b *ShelleyTransactionBody) Withdrawals() cbor.ListAsMap[common.Address, uint64] {
	return b.TxWithdrawals
}

func (b *ShelleyTransactionBody) AuxDataHash() *common.Blake2b256 {
	return b.TxAuxDataHash
}

func (b *ShelleyTransactionBody) Utxorpc() *utxorpc.Tx {
	return common.TransactionUtxorpc(b)
}

type ShelleyTransactionOutput struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	OutputAddress common.Address
	OutputAmount  uint64
}

func (o *ShelleyTransactionOutput) UnmarshalCBOR(cborData []byte) error {
	return o.UnmarshalRecord(cborData, "ShelleyTransactionOutput", o)
}

func (o *ShelleyTransactionOutput) MarshalCBOR() ([]byte, error) {
	return o.MarshalRecord(o)
}

func (o *ShelleyTransactionOutput) Address() common.Address {
	return o.OutputAddress
}

func (o *ShelleyTransactionOutput) Amount() uint64 {
	return o.OutputAmount
}

func (o *ShelleyTransactionOutput) Assets() *common.MultiAsset[common.MultiAssetTypeOutput] {
	return nil
}

func (o *ShelleyTransactionOutput) DatumHash() *common.DatumHash {
	return nil
}

func (o *ShelleyTransactionOutput) Datum() *common.Datum {
	return nil
}

func (o *ShelleyTransactionOutput) ScriptRef() *common.ScriptRef {
	return nil
}

func (o *ShelleyTransactionOutput) Utxorpc() *utxorpc.TxOutput {
	return common.OutputUtxorpc(o)
}

type ShelleyTransaction struct {
	common.TransactionEnvelope
	Body       ShelleyTransactionBody
	WitnessSet common.TransactionWitnessSet
}

func (t *ShelleyTransaction) Decode(rd *cbor.Reader) error {
	return t.DecodeEnvelope(rd, "ShelleyTransaction", &t.Body, &t.WitnessSet)
}

func (t *ShelleyTransaction) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *ShelleyTransaction) MarshalCBOR() ([]byte, error) {
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	w := cbor.NewWriter()
	if err := t.EncodeEnvelope(w, &t.Body, &t.WitnessSet); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (ShelleyTransaction) Type() int {
	return TxTypeShelley
}

func (t *ShelleyTransaction) TxBody() common.TransactionBody {
	return &t.Body
}

func (t *ShelleyTransaction) Hash() common.Blake2b256 {
	return t.Body.Hash()
}

func (t *ShelleyTransaction) Inputs() []common.TransactionInput {
	return t.Body.Inputs()
}

func (t *ShelleyTransaction) Outputs() []common.TransactionOutput {
	return t.Body.Outputs()
}

func (t *ShelleyTransaction) Fee() uint64 {
	return t.Body.Fee()
}

func (t *ShelleyTransaction) Witnesses() *common.TransactionWitnessSet {
	return &t.WitnessSet
}

func (t *ShelleyTransaction) Utxorpc() *utxorpc.Tx {
	return t.Body.Utxorpc()
}

func NewShelleyBlockFromCbor(data []byte) (*ShelleyBlock, error) {
	var shelleyBlock ShelleyBlock
	if _, err := cbor.Decode(data, &shelleyBlock); err != nil {
		return nil, err
	}
	return &shelleyBlock, nil
}

func NewShelleyBlockHeaderFromCbor(data []byte) (*ShelleyBlockHeader, error) {
	var shelleyBlockHeader ShelleyBlockHeader
	if err := shelleyBlockHeader.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &shelleyBlockHeader, nil
}

func NewShelleyTransactionBodyFromCbor(data []byte) (*ShelleyTransactionBody, error) {
	var shelleyTx ShelleyTransactionBody
	if err := shelleyTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &shelleyTx, nil
}

func NewShelleyTransactionFromCbor(data []byte) (*ShelleyTransaction, error) {
	var shelleyTx ShelleyTransaction
	if err := shelleyTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &shelleyTx, nil
}
