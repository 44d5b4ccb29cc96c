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

package common

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// Transaction is implemented by the transaction types of every era after Byron
type Transaction interface {
	Hash() Blake2b256
	Cbor() []byte
	IsValid() bool
	Inputs() []TransactionInput
	Outputs() []TransactionOutput
	Fee() uint64
	AuxiliaryData() *AuxiliaryData
	Witnesses() *TransactionWitnessSet
}

// TransactionOutput is implemented by the output types of every era after Byron
type TransactionOutput interface {
	Address() Address
	Amount() uint64
	Assets() *MultiAsset[MultiAssetTypeOutput]
	DatumHash() *DatumHash
	Datum() *Datum
	ScriptRef() *ScriptRef
	Cbor() []byte
	Utxorpc() *utxorpc.TxOutput
}

type TransactionInput struct {
	cbor.StructAsArray
	TxId        Blake2b256
	OutputIndex uint32
}

func NewTransactionInput(hash string, idx uint32) (TransactionInput, error) {
	tmpHash, err := hex.DecodeString(hash)
	if err != nil {
		return TransactionInput{}, err
	}
	if len(tmpHash) != Blake2b256Size {
		return TransactionInput{}, fmt.Errorf("invalid transaction hash length: %d", len(tmpHash))
	}
	return TransactionInput{
		TxId:        NewBlake2b256(tmpHash),
		OutputIndex: idx,
	}, nil
}

func (i TransactionInput) Id() Blake2b256 {
	return i.TxId
}

func (i TransactionInput) Index() uint32 {
	return i.OutputIndex
}

func (i TransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TxId, i.OutputIndex)
}

func (i TransactionInput) Utxorpc() *utxorpc.TxInput {
	return &utxorpc.TxInput{
		TxHash:      i.TxId.Bytes(),
		OutputIndex: i.OutputIndex,
	}
}

func (i TransactionInput) ToPlutusData() plutus.Data {
	return plutus.NewDataConstr(
		0,
		plutus.NewDataConstr(0, plutus.NewDataBytes(i.TxId.Bytes())),
		plutus.NewDataInt(int64(i.OutputIndex)),
	)
}

func (i TransactionInput) MarshalJSON() ([]byte, error) {
	return []byte("\"" + i.String() + "\""), nil
}

// Utxo pairs an output with the input that references it
type Utxo struct {
	Id     TransactionInput
	Output TransactionOutput
}

// TransactionWitnessSet holds the witnesses of a transaction. Keys 0 through 2 appear
// from Shelley, 3 through 5 from Alonzo, 6 from Babbage and 7 from Conway. Conway
// encodes the lists as tag 258 sets, which the Set type preserves on re-encoding
type TransactionWitnessSet struct {
	cbor.DecodeStoreCbor
	VkeyWitnesses      *cbor.Set[VkeyWitness]      `cbor:"0,keyasint,omitempty"`
	WsNativeScripts    *cbor.Set[NativeScript]     `cbor:"1,keyasint,omitempty"`
	BootstrapWitnesses *cbor.Set[BootstrapWitness] `cbor:"2,keyasint,omitempty"`
	WsPlutusV1Scripts  *cbor.Set[PlutusV1Script]   `cbor:"3,keyasint,omitempty"`
	WsPlutusData       *cbor.Set[Datum]            `cbor:"4,keyasint,omitempty"`
	WsRedeemers        *Redeemers                  `cbor:"5,keyasint,omitempty"`
	WsPlutusV2Scripts  *cbor.Set[PlutusV2Script]   `cbor:"6,keyasint,omitempty"`
	WsPlutusV3Scripts  *cbor.Set[PlutusV3Script]   `cbor:"7,keyasint,omitempty"`
}

func (w *TransactionWitnessSet) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	if err := cbor.DecodeRecord(rd, "TransactionWitnessSet", w); err != nil {
		return err
	}
	w.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

func (w *TransactionWitnessSet) UnmarshalCBOR(data []byte) error {
	return w.UnmarshalRecord(data, "TransactionWitnessSet", w)
}

func (w *TransactionWitnessSet) MarshalCBOR() ([]byte, error) {
	return w.MarshalRecord(w)
}

func setItems[T any](s *cbor.Set[T]) []T {
	if s == nil {
		return nil
	}
	return s.Items()
}

func (w *TransactionWitnessSet) Vkey() []VkeyWitness {
	return setItems(w.VkeyWitnesses)
}

func (w *TransactionWitnessSet) NativeScripts() []NativeScript {
	return setItems(w.WsNativeScripts)
}

func (w *TransactionWitnessSet) Bootstrap() []BootstrapWitness {
	return setItems(w.BootstrapWitnesses)
}

func (w *TransactionWitnessSet) PlutusData() []Datum {
	return setItems(w.WsPlutusData)
}

func (w *TransactionWitnessSet) PlutusV1Scripts() []PlutusV1Script {
	return setItems(w.WsPlutusV1Scripts)
}

func (w *TransactionWitnessSet) PlutusV2Scripts() []PlutusV2Script {
	return setItems(w.WsPlutusV2Scripts)
}

func (w *TransactionWitnessSet) PlutusV3Scripts() []PlutusV3Script {
	return setItems(w.WsPlutusV3Scripts)
}

func (w *TransactionWitnessSet) Redeemers() *Redeemers {
	return w.WsRedeemers
}

// PlutusScriptCount returns the number of Plutus scripts of all languages in the set
func (w *TransactionWitnessSet) PlutusScriptCount() int {
	return len(w.PlutusV1Scripts()) + len(w.PlutusV2Scripts()) + len(w.PlutusV3Scripts())
}

// TransactionEnvelope holds the parts of a transaction shared by all eras after Byron.
// A transaction is [body, witness_set, aux_data] before Alonzo and
// [body, witness_set, is_valid, aux_data] after, in definite or indefinite form
type TransactionEnvelope struct {
	cbor.DecodeStoreCbor
	// Valid is nil for the 3 element form
	Valid    *bool
	AuxData  *AuxiliaryData
	bodyCbor []byte
}

// DecodeEnvelope decodes a transaction, passing the body and witness set to their own
// decoders
func (e *TransactionEnvelope) DecodeEnvelope(
	rd *cbor.Reader,
	typeName string,
	body cbor.ReaderDecoder,
	witnessSet cbor.ReaderDecoder,
) error {
	*e = TransactionEnvelope{}
	start := rd.Offset()
	n, err := rd.ExpectArray(3, 4)
	if err != nil {
		return cbor.NewFieldError(typeName, "length", err)
	}
	bodyStart := rd.Offset()
	if err := body.Decode(rd); err != nil {
		return cbor.NewFieldError(typeName, "body", err)
	}
	e.bodyCbor = bytes.Clone(rd.Data()[bodyStart:rd.Offset()])
	if err := witnessSet.Decode(rd); err != nil {
		return cbor.NewFieldError(typeName, "witness_set", err)
	}
	idx := 2
	if (n < 0 && !rd.IsBreak()) || n == 4 {
		if b, err := rd.PeekByte(); err == nil && (b == cbor.CborTrue || b == cbor.CborFalse) {
			valid, err := rd.ReadBool()
			if err != nil {
				return cbor.NewFieldError(typeName, "is_valid", err)
			}
			e.Valid = &valid
			idx++
		}
	}
	if rd.HasMore(n, idx) {
		if rd.IsNull() {
			if err := rd.ReadNull(); err != nil {
				return err
			}
		} else {
			raw, err := rd.ReadRaw()
			if err != nil {
				return cbor.NewFieldError(typeName, "auxiliary_data", err)
			}
			e.AuxData = &AuxiliaryData{}
			if err := e.AuxData.UnmarshalCBOR(raw); err != nil {
				return cbor.NewFieldError(typeName, "auxiliary_data", err)
			}
		}
		idx++
	} else if n >= 0 {
		return cbor.NewFieldError(typeName, "auxiliary_data", cbor.ErrMissingField)
	}
	if n < 0 {
		if err := rd.ReadBreak(); err != nil {
			return err
		}
	} else if idx != n {
		return fmt.Errorf("%w: %s has %d elements", cbor.ErrSurplus, typeName, n)
	}
	e.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

// EncodeEnvelope encodes a transaction. The is_valid flag is written only when Valid is
// set
func (e *TransactionEnvelope) EncodeEnvelope(w *cbor.Writer, body any, witnessSet any) error {
	if e.Valid != nil {
		w.WriteArrayHeader(4)
	} else {
		w.WriteArrayHeader(3)
	}
	if err := w.WriteValue(body); err != nil {
		return err
	}
	if err := w.WriteValue(witnessSet); err != nil {
		return err
	}
	if e.Valid != nil {
		w.WriteBool(*e.Valid)
	}
	if e.AuxData == nil {
		w.WriteNull()
		return nil
	}
	return w.WriteValue(e.AuxData)
}

// IsValid returns the phase 2 validity flag. Transactions without the flag are valid
func (e *TransactionEnvelope) IsValid() bool {
	return e.Valid == nil || *e.Valid
}

func (e *TransactionEnvelope) AuxiliaryData() *AuxiliaryData {
	return e.AuxData
}

// BodyCbor returns the original bytes of the decoded body
func (e *TransactionEnvelope) BodyCbor() []byte {
	return e.bodyCbor
}

// TransactionId returns the hash of the original body bytes
func TransactionId(bodyCbor []byte) Blake2b256 {
	return Blake2b256Hash(bodyCbor)
}

// TransactionBody is implemented by the transaction body types of every era after Byron.
// Fields an era does not have return their zero value
type TransactionBody interface {
	Cbor() []byte
	Hash() Blake2b256
	Fee() uint64
	Inputs() []TransactionInput
	Outputs() []TransactionOutput
	TTL() uint64
	ValidityIntervalStart() uint64
	ProtocolParameterUpdates() *ProtocolParameterUpdateProposal
	ReferenceInputs() []TransactionInput
	Collateral() []TransactionInput
	CollateralReturn() TransactionOutput
	TotalCollateral() uint64
	Certificates() []Certificate
	Withdrawals() cbor.ListAsMap[Address, uint64]
	AuxDataHash() *Blake2b256
	RequiredSigners() []Blake2b224
	AssetMint() *MultiAsset[MultiAssetTypeMint]
	ScriptDataHash() *Blake2b256
	VotingProcedures() VotingProcedures
	ProposalProcedures() []ProposalProcedure
	CurrentTreasuryValue() *uint64
	Donation() uint64
}

// TransactionBodyBase provides the zero value accessors for fields missing from an era
// and caches the body hash. Era bodies embed it with the "-" tag
type TransactionBodyBase struct {
	cbor.DecodeStoreCbor
	hash *Blake2b256
}

// Hash returns the transaction id, computed over the original body bytes
func (b *TransactionBodyBase) Hash() Blake2b256 {
	if b.hash == nil {
		tmpHash := TransactionId(b.Cbor())
		b.hash = &tmpHash
	}
	return *b.hash
}

// SetCbor stores the original body bytes and clears the cached hash
func (b *TransactionBodyBase) SetCbor(data []byte) {
	b.DecodeStoreCbor.SetCbor(data)
	b.hash = nil
}

func (b *TransactionBodyBase) TTL() uint64 {
	return 0
}

func (b *TransactionBodyBase) ValidityIntervalStart() uint64 {
	return 0
}

func (b *TransactionBodyBase) ProtocolParameterUpdates() *ProtocolParameterUpdateProposal {
	return nil
}

func (b *TransactionBodyBase) ReferenceInputs() []TransactionInput {
	return nil
}

func (b *TransactionBodyBase) Collateral() []TransactionInput {
	return nil
}

func (b *TransactionBodyBase) CollateralReturn() TransactionOutput {
	return nil
}

func (b *TransactionBodyBase) TotalCollateral() uint64 {
	return 0
}

func (b *TransactionBodyBase) Certificates() []Certificate {
	return nil
}

func (b *TransactionBodyBase) Withdrawals() cbor.ListAsMap[Address, uint64] {
	return nil
}

func (b *TransactionBodyBase) AuxDataHash() *Blake2b256 {
	return nil
}

func (b *TransactionBodyBase) RequiredSigners() []Blake2b224 {
	return nil
}

func (b *TransactionBodyBase) AssetMint() *MultiAsset[MultiAssetTypeMint] {
	return nil
}

func (b *TransactionBodyBase) ScriptDataHash() *Blake2b256 {
	return nil
}

func (b *TransactionBodyBase) VotingProcedures() VotingProcedures {
	return nil
}

func (b *TransactionBodyBase) ProposalProcedures() []ProposalProcedure {
	return nil
}

func (b *TransactionBodyBase) CurrentTreasuryValue() *uint64 {
	return nil
}

func (b *TransactionBodyBase) Donation() uint64 {
	return 0
}

// DecodeTransactionBody decodes a map record body and stores its original bytes
func DecodeTransactionBody(
	rd *cbor.Reader,
	typeName string,
	body interface{ SetCbor(data []byte) },
) error {
	start := rd.Offset()
	if err := cbor.DecodeRecord(rd, typeName, body); err != nil {
		return err
	}
	body.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

// CertificatesFromWrappers unwraps decoded certificates
func CertificatesFromWrappers(wrappers []CertificateWrapper) []Certificate {
	if len(wrappers) == 0 {
		return nil
	}
	ret := make([]Certificate, len(wrappers))
	for i, cert := range wrappers {
		ret[i] = cert.Certificate
	}
	return ret
}

// TransactionUtxorpc builds the utxorpc form of a transaction body
func TransactionUtxorpc(body TransactionBody) *utxorpc.Tx {
	tx := &utxorpc.Tx{
		Hash: body.Hash().Bytes(),
	}
	for _, input := range body.Inputs() {
		tx.Inputs = append(tx.Inputs, input.Utxorpc())
	}
	for _, output := range body.Outputs() {
		tx.Outputs = append(tx.Outputs, output.Utxorpc())
	}
	for _, input := range body.ReferenceInputs() {
		tx.ReferenceInputs = append(tx.ReferenceInputs, input.Utxorpc())
	}
	for _, cert := range body.Certificates() {
		if tmpCert, err := CertificateToUtxorpc(cert); err == nil {
			tx.Certificates = append(tx.Certificates, tmpCert)
		}
	}
	return tx
}

// OutputUtxorpc builds the utxorpc form of a transaction output
func OutputUtxorpc(o TransactionOutput) *utxorpc.TxOutput {
	ret := &utxorpc.TxOutput{}
	if addr, err := o.Address().Bytes(); err == nil {
		ret.Address = addr
	}
	if assets := o.Assets(); assets != nil {
		for _, policyId := range assets.Policies() {
			ret.Assets = append(ret.Assets, &utxorpc.Multiasset{
				PolicyId: policyId.Bytes(),
			})
		}
	}
	if datumHash := o.DatumHash(); datumHash != nil {
		ret.Datum = &utxorpc.Datum{
			Hash: datumHash.Bytes(),
		}
	}
	return ret
}
