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

package conway

import (
	"slices"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/babbage"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdConway   = 6
	EraNameConway = "Conway"

	BlockTypeConway = 7

	TxTypeConway = 6
)

var EraConway = common.Era{
	Id:   EraIdConway,
	Name: EraNameConway,
}

func init() {
	common.RegisterEra(EraConway)
}

type ConwayBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader            *ConwayBlockHeader
	TransactionBodies      []ConwayTransactionBody
	TransactionWitnessSets []common.TransactionWitnessSet
	TransactionMetadataSet common.TransactionMetadataSet
	InvalidTransactions    []uint
}

func (b *ConwayBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "ConwayBlock", b)
}

func (b *ConwayBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (ConwayBlock) Type() int {
	return BlockTypeConway
}

func (b *ConwayBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *ConwayBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *ConwayBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *ConwayBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *ConwayBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *ConwayBlock) Era() common.Era {
	return EraConway
}

func (b *ConwayBlock) Transactions() []common.Transaction {
	ret := make([]common.Transaction, len(b.TransactionBodies))
	for idx := range b.TransactionBodies {
		// #nosec G115
		valid := !slices.Contains(b.InvalidTransactions, uint(idx))
		tx := &ConwayTransaction{
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

func (b *ConwayBlock) Utxorpc() *utxorpc.Block {
	return shelley.BlockUtxorpc(b)
}

type ConwayBlockHeader struct {
	common.Header
}

func (h *ConwayBlockHeader) Era() common.Era {
	return EraConway
}

// ConwayTransactionBody drops the protocol parameter update of earlier eras in favor of
// governance proposals, and adds votes, treasury value and donation
type ConwayTransactionBody struct {
	common.TransactionBodyBase `cbor:"-"`
	TxInputs                   cbor.Set[common.TransactionInput]             `cbor:"0,keyasint"`
	TxOutputs                  []babbage.BabbageTransactionOutput            `cbor:"1,keyasint"`
	TxFee                      uint64                                        `cbor:"2,keyasint"`
	Ttl                        uint64                                        `cbor:"3,keyasint,omitempty"`
	TxCertificates             *cbor.Set[common.CertificateWrapper]          `cbor:"4,keyasint,omitempty"`
	TxWithdrawals              cbor.ListAsMap[common.Address, uint64]        `cbor:"5,keyasint,omitempty"`
	TxAuxDataHash              *common.Blake2b256                            `cbor:"7,keyasint,omitempty"`
	TxValidityIntervalStart    uint64                                        `cbor:"8,keyasint,omitempty"`
	TxMint                     *common.MultiAsset[common.MultiAssetTypeMint] `cbor:"9,keyasint,omitempty"`
	TxScriptDataHash           *common.Blake2b256                            `cbor:"11,keyasint,omitempty"`
	TxCollateral               *cbor.Set[common.TransactionInput]            `cbor:"13,keyasint,omitempty"`
	TxRequiredSigners          *cbor.Set[common.Blake2b224]                  `cbor:"14,keyasint,omitempty"`
	NetworkId                  *uint8                                        `cbor:"15,keyasint,omitempty"`
	TxCollateralReturn         *babbage.BabbageTransactionOutput             `cbor:"16,keyasint,omitempty"`
	TxTotalCollateral          uint64                                        `cbor:"17,keyasint,omitempty"`
	TxReferenceInputs          *cbor.Set[common.TransactionInput]            `cbor:"18,keyasint,omitempty"`
	TxVotingProcedures         common.VotingProcedures                       `cbor:"19,keyasint,omitempty"`
	TxProposalProcedures       *cbor.Set[common.ProposalProcedure]           `cbor:"20,keyasint,omitempty"`
	TxCurrentTreasuryValue     *uint64                                       `cbor:"21,keyasint,omitempty"`
	TxDonation                 uint64                                        `cbor:"22,keyasint,omitempty"`
}

func (b *ConwayTransactionBody) Decode(rd *cbor.Reader) error {
	if err := common.DecodeTransactionBody(rd, "ConwayTransactionBody", b); err != nil {
		return err
	}
	for _, proposal := range b.ProposalProcedures() {
		if action, ok := proposal.GovAction.Action.(*common.ParameterChangeGovAction); ok {
			if err := action.ParamUpdate.ValidateKeys(common.ConwayProtocolParameterKeys); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *ConwayTransactionBody) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, b)
}

func (b *ConwayTransactionBody) MarshalCBOR() ([]byte, error) {
	if b.Cbor() != nil {
		return b.Cbor(), nil
	}
	return cbor.EncodeRecordBytes(b)
}

func (b *ConwayTransactionBody) Inputs() []common.TransactionInput {
	return b.TxInputs.Items()
}

func (b *ConwayTransactionBody) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, len(b.TxOutputs))
	for i := range b.TxOutputs {
		ret[i] = &b.TxOutputs[i]
	}
	return ret
}

func (b *ConwayTransactionBody) Fee() uint64 {
	return b.TxFee
}

func (b *ConwayTransactionBody) TTL() uint64 {
	return b.Ttl
}

func (b *ConwayTransactionBody) ValidityIntervalStart() uint64 {
	return b.TxValidityIntervalStart
}

func (b *ConwayTransactionBody) Certificates() []common.Certificate {
	if b.TxCertificates == nil {
		return nil
	}
	return common.CertificatesFromWrappers(b.TxCertificates.Items())
}

func (b *ConwayTransactionBody) Withdrawals() cbor.ListAsMap[common.Address, uint64] {
	return b.TxWithdrawals
}

func (b *ConwayTransactionBody) AuxDataHash() *common.Blake2b256 {
	return b.TxAuxDataHash
}

func (b *ConwayTransactionBody) AssetMint() *common.MultiAsset[common.MultiAssetTypeMint] {
	return b.TxMint
}

func (b *ConwayTransactionBody) ScriptDataHash() *common.Blake2b256 {
	return b.TxScriptDataHash
}

func (b *ConwayTransactionBody) Collateral() []common.TransactionInput {
	if b.TxCollateral == nil {
		return nil
	}
	return b.TxCollateral.Items()
}

func (b *ConwayTransactionBody) RequiredSigners() []common.Blake2b224 {
	if b.TxRequiredSigners == nil {
		return nil
	}
	return b.TxRequiredSigners.Items()
}

func (b *ConwayTransactionBody) CollateralReturn() common.TransactionOutput {
	if b.TxCollateralReturn == nil {
		return nil
	}
	return b.TxCollateralReturn
}

func (b *ConwayTransactionBody) TotalCollateral() uint64 {
	return b.TxTotalCollateral
}

func (b *ConwayTransactionBody) ReferenceInputs() []common.TransactionInput {
	if b.TxReferenceInputs == nil {
		return nil
	}
	return b.TxReferenceInputs.Items()
}

func (b *ConwayTransactionBody) VotingProcedures() common.VotingProcedures {
	return b.TxVotingProcedures
}

func (b *ConwayTransactionBody) ProposalProcedures() []common.ProposalProcedure {
	if b.TxProposalProcedures == nil {
		return nil
	}
	return b.TxProposalProcedures.Items()
}

func (b *ConwayTransactionBody) CurrentTreasuryValue() *uint64 {
	return b.TxCurrentTreasuryValue
}

func (b *ConwayTransactionBody) Donation() uint64 {
	return b.TxDonation
}

func (b *ConwayTransactionBody) Utxorpc() *utxorpc.Tx {
	return common.TransactionUtxorpc(b)
}

type ConwayTransaction struct {
	common.TransactionEnvelope
	Body       ConwayTransactionBody
	WitnessSet common.TransactionWitnessSet
}

func (t *ConwayTransaction) Decode(rd *cbor.Reader) error {
	return t.DecodeEnvelope(rd, "ConwayTransaction", &t.Body, &t.WitnessSet)
}

func (t *ConwayTransaction) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *ConwayTransaction) MarshalCBOR() ([]byte, error) {
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	w := cbor.NewWriter()
	if err := t.EncodeEnvelope(w, &t.Body, &t.WitnessSet); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (ConwayTransaction) Type() int {
	return TxTypeConway
}

func (t *ConwayTransaction) TxBody() common.TransactionBody {
	return &t.Body
}

func (t *ConwayTransaction) Hash() common.Blake2b256 {
	return t.Body.Hash()
}

func (t *ConwayTransaction) Inputs() []common.TransactionInput {
	return t.Body.Inputs()
}

func (t *ConwayTransaction) Outputs() []common.TransactionOutput {
	return t.Body.Outputs()
}

func (t *ConwayTransaction) Fee() uint64 {
	return t.Body.Fee()
}

func (t *ConwayTransaction) Witnesses() *common.TransactionWitnessSet {
	return &t.WitnessSet
}

func (t *ConwayTransaction) Utxorpc() *utxorpc.Tx {
	return t.Body.Utxorpc()
}

func NewConwayBlockFromCbor(data []byte) (*ConwayBlock, error) {
	var conwayBlock ConwayBlock
	if _, err := cbor.Decode(data, &conwayBlock); err != nil {
		return nil, err
	}
	return &conwayBlock, nil
}

func NewConwayBlockHeaderFromCbor(data []byte) (*ConwayBlockHeader, error) {
	var conwayBlockHeader ConwayBlockHeader
	if err := conwayBlockHeader.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &conwayBlockHeader, nil
}

func NewConwayTransactionBodyFromCbor(data []byte) (*ConwayTransactionBody, error) {
	var conwayTx ConwayTransactionBody
	if err := conwayTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &conwayTx, nil
}

func NewConwayTransactionFromCbor(data []byte) (*ConwayTransaction, error) {
	var conwayTx ConwayTransaction
	if err := conwayTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &conwayTx, nil
}
