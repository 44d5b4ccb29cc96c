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
	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdAllegra   = 2
	EraNameAllegra = "Allegra"

	BlockTypeAllegra = 3

	TxTypeAllegra = 2
)

var EraAllegra = common.Era{
	Id:   EraIdAllegra,
	Name: EraNameAllegra,
}

func init() {
	common.RegisterEra(EraAllegra)
}

type AllegraBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader            *AllegraBlockHeader
	TransactionBodies      []AllegraTransactionBody
	TransactionWitnessSets []common.TransactionWitnessSet
	TransactionMetadataSet common.TransactionMetadataSet
}

func (b *AllegraBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "AllegraBlock", b)
}

func (b *AllegraBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (AllegraBlock) Type() int {
	return BlockTypeAllegra
}

func (b *AllegraBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *AllegraBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *AllegraBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *AllegraBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *AllegraBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *AllegraBlock) Era() common.Era {
	return EraAllegra
}

func (b *AllegraBlock) Transactions() []common.Transaction {
	ret := make([]common.Transaction, len(b.TransactionBodies))
	for idx := range b.TransactionBodies {
		tx := &AllegraTransaction{
			Body:       b.TransactionBodies[idx],
			WitnessSet: b.TransactionWitnessSets[idx],
		}
		// #nosec G115
		tx.AuxData, _ = b.TransactionMetadataSet.GetAuxiliaryData(uint64(idx))
		ret[idx] = tx
	}
	return ret
}

func (b *AllegraBlock) Utxorpc() *utxorpc.Block {
	return shelley.BlockUtxorpc(b)
}

type AllegraBlockHeader struct {
	common.Header
}

func (h *AllegraBlockHeader) Era() common.Era {
	return EraAllegra
}

type AllegraTransactionBody struct {
	common.TransactionBodyBase `cbor:"-"`
	TxInputs                   cbor.Set[common.TransactionInput]       `cbor:"0,keyasint"`
	TxOutputs                  []shelley.ShelleyTransactionOutput      `cbor:"1,keyasint"`
	TxFee                      uint64                                  `cbor:"2,keyasint"`
	Ttl                        uint64                                  `cbor:"3,keyasint,omitempty"`
	TxCertificates             []common.CertificateWrapper             `cbor:"4,keyasint,omitempty"`
	TxWithdrawals              cbor.ListAsMap[common.Address, uint64]  `cbor:"5,keyasint,omitempty"`
	Update                     *common.ProtocolParameterUpdateProposal `cbor:"6,keyasint,omitempty"`
	TxAuxDataHash              *common.Blake2b256                      `cbor:"7,keyasint,omitempty"`
	TxValidityIntervalStart    uint64                                  `cbor:"8,keyasint,omitempty"`
}

func (b *AllegraTransactionBody) Decode(rd *cbor.Reader) error {
	if err := common.DecodeTransactionBody(rd, "AllegraTransactionBody", b); err != nil {
		return err
	}
	if b.Update != nil {
		return b.Update.ValidateKeys(common.ShelleyProtocolParameterKeys)
	}
	return nil
}

func (b *AllegraTransactionBody) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, b)
}

func (b *AllegraTransactionBody) MarshalCBOR() ([]byte, error) {
	if b.Cbor() != nil {
		return b.Cbor(), nil
	}
	return cbor.EncodeRecordBytes(b)
}

func (b *AllegraTransactionBody) Inputs() []common.TransactionInput {
	return b.TxInputs.Items()
}

func (b *AllegraTransactionBody) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, len(b.TxOutputs))
	for i := range b.TxOutputs {
		ret[i] = &b.TxOutputs[i]
	}
	return ret
}

func (b *AllegraTransactionBody) Fee() uint64 {
	return b.TxFee
}

func (b *AllegraTransactionBody) TTL() uint64 {
	return b.Ttl
}

func (b *AllegraTransactionBody) ValidityIntervalStart() uint64 {
	return b.TxValidityIntervalStart
}

func (b *AllegraTransactionBody) ProtocolParameterUpdates() *common.ProtocolParameterUpdateProposal {
	return b.Update
}

func (b *AllegraTransactionBody) Certificates() []common.Certificate {
	return common.CertificatesFromWrappers(b.TxCertificates)
}

func (b *AllegraTransactionBody) Withdrawals() cbor.ListAsMap[common.Address, uint64] {
	return b.TxWithdrawals
}

func (b *AllegraTransactionBody) AuxDataHash() *common.Blake2b256 {
	return b.TxAuxDataHash
}

func (b *AllegraTransactionBody) Utxorpc() *utxorpc.Tx {
	return common.TransactionUtxorpc(b)
}

type AllegraTransaction struct {
	common.TransactionEnvelope
	Body       AllegraTransactionBody
	WitnessSet common.TransactionWitnessSet
}

func (t *AllegraTransaction) Decode(rd *cbor.Reader) error {
	return t.DecodeEnvelope(rd, "AllegraTransaction", &t.Body, &t.WitnessSet)
}

func (t *AllegraTransaction) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *AllegraTransaction) MarshalCBOR() ([]byte, error) {
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	w := cbor.NewWriter()
	if err := t.EncodeEnvelope(w, &t.Body, &t.WitnessSet); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (AllegraTransaction) Type() int {
	return TxTypeAllegra
}

func (t *AllegraTransaction) TxBody() common.TransactionBody {
	return &t.Body
}

func (t *AllegraTransaction) Hash() common.Blake2b256 {
	return t.Body.Hash()
}

func (t *AllegraTransaction) Inputs() []common.TransactionInput {
	return t.Body.Inputs()
}

func (t *AllegraTransaction) Outputs() []common.TransactionOutput {
	return t.Body.Outputs()
}

func (t *AllegraTransaction) Fee() uint64 {
	return t.Body.Fee()
}

func (t *AllegraTransaction) Witnesses() *common.TransactionWitnessSet {
	return &t.WitnessSet
}

func (t *AllegraTransaction) Utxorpc() *utxorpc.Tx {
	return t.Body.Utxorpc()
}

func NewAllegraBlockFromCbor(data []byte) (*AllegraBlock, error) {
	var allegraBlock AllegraBlock
	if _, err := cbor.Decode(data, &allegraBlock); err != nil {
		return nil, err
	}
	return &allegraBlock, nil
}

func NewAllegraTransactionBodyFromCbor(data []byte) (*AllegraTransactionBody, error) {
	var allegraTx AllegraTransactionBody
	if err := allegraTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &allegraTx, nil
}

func NewAllegraTransactionFromCbor(data []byte) (*AllegraTransaction, error) {
	var allegraTx AllegraTransaction
	if err := allegraTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &allegraTx, nil
}
