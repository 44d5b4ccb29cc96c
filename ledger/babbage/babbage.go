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

package babbage

import (
	"errors"
	"slices"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/alonzo"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdBabbage   = 5
	EraNameBabbage = "Babbage"

	BlockTypeBabbage = 6

	TxTypeBabbage = 5
)

var EraBabbage = common.Era{
	Id:   EraIdBabbage,
	Name: EraNameBabbage,
}

func init() {
	common.RegisterEra(EraBabbage)
}

type BabbageBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader            *BabbageBlockHeader
	TransactionBodies      []BabbageTransactionBody
	TransactionWitnessSets []common.TransactionWitnessSet
	TransactionMetadataSet common.TransactionMetadataSet
	InvalidTransactions    []uint
}

func (b *BabbageBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "BabbageBlock", b)
}

func (b *BabbageBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (BabbageBlock) Type() int {
	return BlockTypeBabbage
}

func (b *BabbageBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *BabbageBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *BabbageBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *BabbageBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *BabbageBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *BabbageBlock) Era() common.Era {
	return EraBabbage
}

func (b *BabbageBlock) Transactions() []common.Transaction {
	ret := make([]common.Transaction, len(b.TransactionBodies))
	for idx := range b.TransactionBodies {
		// #nosec G115
		valid := !slices.Contains(b.InvalidTransactions, uint(idx))
		tx := &BabbageTransaction{
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

func (b *BabbageBlock) Utxorpc() *utxorpc.Block {
	return shelley.BlockUtxorpc(b)
}

type BabbageBlockHeader struct {
	common.Header
}

func (h *BabbageBlockHeader) Era() common.Era {
	return EraBabbage
}

type BabbageTransactionBody struct {
	common.TransactionBodyBase `cbor:"-"`
	TxInputs                   cbor.Set[common.TransactionInput]             `cbor:"0,keyasint"`
	TxOutputs                  []BabbageTransactionOutput                    `cbor:"1,keyasint"`
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
	TxCollateralReturn         *BabbageTransactionOutput                     `cbor:"16,keyasint,omitempty"`
	TxTotalCollateral          uint64                                        `cbor:"17,keyasint,omitempty"`
	TxReferenceInputs          *cbor.Set[common.TransactionInput]            `cbor:"18,keyasint,omitempty"`
}

func (b *BabbageTransactionBody) Decode(rd *cbor.Reader) error {
	if err := common.DecodeTransactionBody(rd, "BabbageTransactionBody", b); err != nil {
		return err
	}
	if b.Update != nil {
		return b.Update.ValidateKeys(common.BabbageProtocolParameterKeys)
	}
	return nil
}

func (b *BabbageTransactionBody) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, b)
}

func (b *BabbageTransactionBody) MarshalCBOR() ([]byte, error) {
	if b.Cbor() != nil {
		return b.Cbor(), nil
	}
	return cbor.EncodeRecordBytes(b)
}

func (b *BabbageTransactionBody) Inputs() []common.TransactionInput {
	return b.TxInputs.Items()
}

func (b *BabbageTransactionBody) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, len(b.TxOutputs))
	for i := range b.TxOutputs {
		ret[i] = &b.TxOutputs[i]
	}
	return ret
}

func (b *BabbageTransactionBody) Fee() uint64 {
	return b.TxFee
}

func (b *BabbageTransactionBody) TTL() uint64 {
	return b.Ttl
}

func (b *BabbageTransactionBody) ValidityIntervalStart() uint64 {
	return b.TxValidityIntervalStart
}

func (b *BabbageTransactionBody) ProtocolParameterUpdates() *common.ProtocolParameterUpdateProposal {
	return b.Update
}

func (b *BabbageTransactionBody) Certificates() []common.Certificate {
	return common.CertificatesFromWrappers(b.TxCertificates)
}

func (b *BabbageTransactionBody) Withdrawals() cbor.ListAsMap[common.Address, uint64] {
	return b.TxWithdrawals
}

func (b *BabbageTransactionBody) AuxDataHash() *common.Blake2b256 {
	return b.TxAuxDataHash
}

func (b *BabbageTransactionBody) AssetMint() *common.MultiAsset[common.MultiAssetTypeMint] {
	return b.TxMint
}

func (b *BabbageTransactionBody) ScriptDataHash() *common.Blake2b256 {
	return b.TxScriptDataHash
}

func (b *BabbageTransactionBody) Collateral() []common.TransactionInput {
	if b.TxCollateral == nil {
		return nil
	}
	return b.TxCollateral.Items()
}

func (b *BabbageTransactionBody) RequiredSigners() []common.Blake2b224 {
	if b.TxRequiredSigners == nil {
		return nil
	}
	return b.TxRequiredSigners.Items()
}

func (b *BabbageTransactionBody) CollateralReturn() common.TransactionOutput {
	// Avoid a typed nil inside the interface
	if b.TxCollateralReturn == nil {
		return nil
	}
	return b.TxCollateralReturn
}

func (b *BabbageTransactionBody) TotalCollateral() uint64 {
	return b.TxTotalCollateral
}

func (b *BabbageTransactionBody) ReferenceInputs() []common.TransactionInput {
	if b.TxReferenceInputs == nil {
		return nil
	}
	return b.TxReferenceInputs.Items()
}

func (b *BabbageTransactionBody) Utxorpc() *utxorpc.Tx {
	return common.TransactionUtxorpc(b)
}

// BabbageTransactionOutput is either the legacy [address, value, datum_hash?] array or
// the {0: address, 1: value, 2: datum_option, 3: script_ref} map introduced in Babbage.
// The form is chosen by the major type and kept for re-encoding
type BabbageTransactionOutput struct {
	cbor.DecodeStoreCbor
	OutputAddress  common.Address      `cbor:"0,keyasint"`
	OutputAmount   common.Value        `cbor:"1,keyasint"`
	DatumOption    *common.DatumOption `cbor:"2,keyasint,omitempty"`
	TxOutScriptRef *common.ScriptRef   `cbor:"3,keyasint,omitempty"`
	legacyOutput   bool
}

func (o *BabbageTransactionOutput) Decode(rd *cbor.Reader) error {
	raw, err := rd.ReadRaw()
	if err != nil {
		return err
	}
	return o.UnmarshalCBOR(raw)
}

func (o *BabbageTransactionOutput) UnmarshalCBOR(cborData []byte) error {
	major, err := cbor.NewReader(cborData).PeekType()
	if err != nil {
		return err
	}
	switch major {
	case cbor.MajorArray:
		var tmpOutput alonzo.AlonzoTransactionOutput
		if err := cbor.DecodeRecordBytes(cborData, "BabbageTransactionOutput", &tmpOutput); err != nil {
			return err
		}
		*o = BabbageTransactionOutput{
			OutputAddress: tmpOutput.OutputAddress,
			OutputAmount:  tmpOutput.OutputAmount,
			legacyOutput:  true,
		}
		if tmpOutput.TxOutputDatumHash != nil {
			o.DatumOption = common.NewDatumOptionHash(*tmpOutput.TxOutputDatumHash)
		}
	case cbor.MajorMap:
		if err := cbor.DecodeRecordBytes(cborData, "BabbageTransactionOutput", o); err != nil {
			return err
		}
	default:
		return &cbor.TypeMismatchError{Expected: cbor.MajorMap, Found: major}
	}
	o.SetCbor(cborData)
	return nil
}

func (o *BabbageTransactionOutput) MarshalCBOR() ([]byte, error) {
	if o.Cbor() != nil {
		return o.Cbor(), nil
	}
	if o.legacyOutput {
		tmpOutput := alonzo.AlonzoTransactionOutput{
			OutputAddress:     o.OutputAddress,
			OutputAmount:      o.OutputAmount,
			TxOutputDatumHash: o.DatumHash(),
		}
		if o.DatumOption != nil && o.DatumOption.IsInline() {
			return nil, errors.New("legacy output cannot carry an inline datum")
		}
		return cbor.EncodeRecordBytes(&tmpOutput)
	}
	return cbor.EncodeRecordBytes(o)
}

// IsLegacy returns true for the array form
func (o *BabbageTransactionOutput) IsLegacy() bool {
	return o.legacyOutput
}

func (o *BabbageTransactionOutput) Address() common.Address {
	return o.OutputAddress
}

func (o *BabbageTransactionOutput) Amount() uint64 {
	return o.OutputAmount.Coin
}

func (o *BabbageTransactionOutput) Assets() *common.MultiAsset[common.MultiAssetTypeOutput] {
	return o.OutputAmount.Assets
}

func (o *BabbageTransactionOutput) DatumHash() *common.DatumHash {
	if o.DatumOption == nil {
		return nil
	}
	return o.DatumOption.Hash()
}

func (o *BabbageTransactionOutput) Datum() *common.Datum {
	if o.DatumOption == nil {
		return nil
	}
	return o.DatumOption.Datum()
}

func (o *BabbageTransactionOutput) ScriptRef() *common.ScriptRef {
	return o.TxOutScriptRef
}

func (o *BabbageTransactionOutput) Utxorpc() *utxorpc.TxOutput {
	return common.OutputUtxorpc(o)
}

type BabbageTransaction struct {
	common.TransactionEnvelope
	Body       BabbageTransactionBody
	WitnessSet common.TransactionWitnessSet
}

func (t *BabbageTransaction) Decode(rd *cbor.Reader) error {
	return t.DecodeEnvelope(rd, "BabbageTransaction", &t.Body, &t.WitnessSet)
}

func (t *BabbageTransaction) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *BabbageTransaction) MarshalCBOR() ([]byte, error) {
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	w := cbor.NewWriter()
	if err := t.EncodeEnvelope(w, &t.Body, &t.WitnessSet); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (BabbageTransaction) Type() int {
	return TxTypeBabbage
}

func (t *BabbageTransaction) TxBody() common.TransactionBody {
	return &t.Body
}

func (t *BabbageTransaction) Hash() common.Blake2b256 {
	return t.Body.Hash()
}

func (t *BabbageTransaction) Inputs() []common.TransactionInput {
	return t.Body.Inputs()
}

func (t *BabbageTransaction) Outputs() []common.TransactionOutput {
	return t.Body.Outputs()
}

func (t *BabbageTransaction) Fee() uint64 {
	return t.Body.Fee()
}

func (t *BabbageTransaction) Witnesses() *common.TransactionWitnessSet {
	return &t.WitnessSet
}

func (t *BabbageTransaction) Utxorpc() *utxorpc.Tx {
	return t.Body.Utxorpc()
}

func NewBabbageBlockFromCbor(data []byte) (*BabbageBlock, error) {
	var babbageBlock BabbageBlock
	if _, err := cbor.Decode(data, &babbageBlock); err != nil {
		return nil, err
	}
	return &babbageBlock, nil
}

func NewBabbageBlockHeaderFromCbor(data []byte) (*BabbageBlockHeader, error) {
	var babbageBlockHeader BabbageBlockHeader
	if err := babbageBlockHeader.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &babbageBlockHeader, nil
}

func NewBabbageTransactionBodyFromCbor(data []byte) (*BabbageTransactionBody, error) {
	var babbageTx BabbageTransactionBody
	if err := babbageTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &babbageTx, nil
}

func NewBabbageTransactionFromCbor(data []byte) (*BabbageTransaction, error) {
	var babbageTx BabbageTransaction
	if err := babbageTx.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &babbageTx, nil
}

func NewBabbageTransactionOutputFromCbor(data []byte) (*BabbageTransactionOutput, error) {
	var babbageTxOutput BabbageTransactionOutput
	if err := babbageTxOutput.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &babbageTxOutput, nil
}
