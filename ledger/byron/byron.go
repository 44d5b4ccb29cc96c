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

package byron

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	EraIdByron   = 0
	EraNameByron = "Byron"

	BlockTypeByronEbb  = 0
	BlockTypeByronMain = 1

	TxTypeByron = 0

	ByronSlotsPerEpoch = 21600

	// Signing tags prepended to signed Byron payloads
	signTagTx       = 0x01
	signTagRedeemTx = 0x02

	byronWitnessTypePk     = 0
	byronWitnessTypeRedeem = 2

	byronBlockSigTypeSignature = 0
	byronBlockSigTypeHeavy     = 2
)

var EraByron = common.Era{
	Id:   EraIdByron,
	Name: EraNameByron,
}

var ErrInvalidWitness = errors.New("invalid byron witness")

func init() {
	common.RegisterEra(EraByron)
}

// ExtendedVerificationKey is an Ed25519 public key followed by its 32-byte chain code
type ExtendedVerificationKey [64]byte

func (k ExtendedVerificationKey) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(k[:32])
}

func (k ExtendedVerificationKey) Bytes() []byte {
	return k[:]
}

func (k *ExtendedVerificationKey) Decode(rd *cbor.Reader) error {
	data, err := rd.ReadFixedBytes(len(k))
	if err != nil {
		return err
	}
	copy(k[:], data)
	return nil
}

func (k *ExtendedVerificationKey) UnmarshalCBOR(data []byte) error {
	return common.DecodeExact(data, k)
}

func (k ExtendedVerificationKey) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	w.WriteBytes(k[:])
	return w.Bytes(), nil
}

// ByronAttributes is an attribute map carried as raw CBOR
type ByronAttributes []byte

func (a *ByronAttributes) Decode(rd *cbor.Reader) error {
	typ, err := rd.PeekType()
	if err != nil {
		return err
	}
	if typ != cbor.MajorMap {
		return &cbor.TypeMismatchError{
			Expected: cbor.MajorMap,
			Found:    typ,
			Offset:   rd.Offset(),
		}
	}
	raw, err := rd.ReadRaw()
	if err != nil {
		return err
	}
	*a = bytes.Clone(raw)
	return nil
}

func (a *ByronAttributes) UnmarshalCBOR(data []byte) error {
	return common.DecodeExact(data, a)
}

func (a ByronAttributes) MarshalCBOR() ([]byte, error) {
	if len(a) == 0 {
		return []byte{0xa0}, nil
	}
	return a, nil
}

type ByronSlotId struct {
	cbor.StructAsArray
	Epoch uint64
	Slot  uint64
}

type ByronDifficulty struct {
	cbor.StructAsArray
	Value uint64
}

type ByronBlockVersion struct {
	cbor.StructAsArray
	Major uint16
	Minor uint16
	Patch uint8
}

type ByronSoftwareVersion struct {
	cbor.StructAsArray
	Name    string
	Version uint32
}

type ByronTxProof struct {
	cbor.StructAsArray
	TxCount       uint32
	MerkleRoot    common.Blake2b256
	WitnessesHash common.Blake2b256
}

type ByronBlockProof struct {
	cbor.StructAsArray
	TxProof        ByronTxProof
	SscProof       cbor.RawMessage
	DelegationHash common.Blake2b256
	UpdateHash     common.Blake2b256
}

// ByronBlockSignature is either a plain signature by the slot leader or a signature made
// through a heavyweight delegation certificate
type ByronBlockSignature struct {
	Type       uint64
	Signature  common.Signature
	Delegation *ByronDelegation
}

func (s *ByronBlockSignature) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return err
	}
	if err := s.decodeVariant(rd); err != nil {
		rd.Seek(start)
		return err
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (s *ByronBlockSignature) decodeVariant(rd *cbor.Reader) error {
	typ, err := rd.ReadUint()
	if err != nil {
		return err
	}
	*s = ByronBlockSignature{Type: typ}
	switch typ {
	case byronBlockSigTypeSignature:
		return rd.ReadValue(&s.Signature)
	case byronBlockSigTypeHeavy:
		var proxy struct {
			cbor.StructAsArray
			Delegation ByronDelegation
			Signature  common.Signature
		}
		if err := rd.ReadValue(&proxy); err != nil {
			return err
		}
		s.Delegation = &proxy.Delegation
		s.Signature = proxy.Signature
		return nil
	default:
		return &cbor.InvalidTagError{Type: "ByronBlockSignature", Tag: typ}
	}
}

func (s *ByronBlockSignature) UnmarshalCBOR(data []byte) error {
	return common.DecodeExact(data, s)
}

func (s ByronBlockSignature) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(s.Type)
	switch s.Type {
	case byronBlockSigTypeSignature:
		w.WriteBytes(s.Signature[:])
	case byronBlockSigTypeHeavy:
		if s.Delegation == nil {
			return nil, errors.New("heavyweight block signature without delegation certificate")
		}
		w.WriteArrayHeader(2)
		if err := w.WriteValue(s.Delegation); err != nil {
			return nil, err
		}
		w.WriteBytes(s.Signature[:])
	default:
		return nil, &cbor.InvalidTagError{Type: "ByronBlockSignature", Tag: s.Type}
	}
	return w.Bytes(), nil
}

type ByronConsensusData struct {
	cbor.StructAsArray
	SlotId     ByronSlotId
	IssuerKey  ExtendedVerificationKey
	Difficulty ByronDifficulty
	Signature  ByronBlockSignature
}

type ByronHeaderExtraData struct {
	cbor.StructAsArray
	BlockVersion    ByronBlockVersion
	SoftwareVersion ByronSoftwareVersion
	Attributes      ByronAttributes
	ExtraProof      common.Blake2b256
}

type ByronMainBlockHeader struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	ProtocolMagic uint32
	PrevBlock     common.Blake2b256
	BodyProof     ByronBlockProof
	ConsensusData ByronConsensusData
	ExtraData     ByronHeaderExtraData
}

func (h *ByronMainBlockHeader) Decode(rd *cbor.Reader) error {
	return h.DecodeStoredRecord(rd, "ByronMainBlockHeader", h)
}

func (h *ByronMainBlockHeader) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, h)
}

func (h *ByronMainBlockHeader) MarshalCBOR() ([]byte, error) {
	return h.MarshalRecord(h)
}

// Hash returns the block hash, which covers the header wrapped as [1, header]
func (h *ByronMainBlockHeader) Hash() common.Blake2b256 {
	return byronHeaderHash(BlockTypeByronMain, h.Cbor())
}

func (h *ByronMainBlockHeader) PrevHash() *common.Blake2b256 {
	return &h.PrevBlock
}

// BlockNumber returns the chain difficulty, which counts main blocks
func (h *ByronMainBlockHeader) BlockNumber() uint64 {
	return h.ConsensusData.Difficulty.Value
}

func (h *ByronMainBlockHeader) SlotNumber() uint64 {
	return h.ConsensusData.SlotId.Epoch*ByronSlotsPerEpoch + h.ConsensusData.SlotId.Slot
}

func (h *ByronMainBlockHeader) Era() common.Era {
	return EraByron
}

func byronHeaderHash(blockType byte, headerCbor []byte) common.Blake2b256 {
	// The hash covers the two-element array that tags the header with its block type
	tmp := make([]byte, 0, len(headerCbor)+2)
	tmp = append(tmp, 0x82, blockType)
	tmp = append(tmp, headerCbor...)
	return common.Blake2b256Hash(tmp)
}

type ByronTransactionInput struct {
	cbor.StructAsArray
	Type  uint64
	Input cbor.Encoded[common.TransactionInput]
}

func NewByronTransactionInput(input common.TransactionInput) ByronTransactionInput {
	return ByronTransactionInput{
		Input: cbor.NewEncoded(input),
	}
}

func (i *ByronTransactionInput) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	if err := cbor.DecodeRecord(rd, "ByronTransactionInput", i); err != nil {
		return err
	}
	if i.Type != 0 {
		rd.Seek(start)
		return &cbor.InvalidTagError{Type: "ByronTransactionInput", Tag: i.Type}
	}
	return nil
}

func (i *ByronTransactionInput) UnmarshalCBOR(data []byte) error {
	return common.DecodeExact(data, i)
}

func (i ByronTransactionInput) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeRecordBytes(&i)
}

type ByronTransactionOutput struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	OutputAddress common.Address
	OutputAmount  uint64
}

func (o *ByronTransactionOutput) UnmarshalCBOR(cborData []byte) error {
	return o.UnmarshalRecord(cborData, "ByronTransactionOutput", o)
}

func (o *ByronTransactionOutput) MarshalCBOR() ([]byte, error) {
	return o.MarshalRecord(o)
}

func (o *ByronTransactionOutput) Address() common.Address {
	return o.OutputAddress
}

func (o *ByronTransactionOutput) Amount() uint64 {
	return o.OutputAmount
}

func (o *ByronTransactionOutput) Assets() *common.MultiAsset[common.MultiAssetTypeOutput] {
	return nil
}

func (o *ByronTransactionOutput) DatumHash() *common.DatumHash {
	return nil
}

func (o *ByronTransactionOutput) Datum() *common.Datum {
	return nil
}

func (o *ByronTransactionOutput) ScriptRef() *common.ScriptRef {
	return nil
}

func (o *ByronTransactionOutput) Utxorpc() *utxorpc.TxOutput {
	return common.OutputUtxorpc(o)
}

// ByronTx is the signed part of a Byron transaction. Its hash is the transaction id
type ByronTx struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	TxInputs   []ByronTransactionInput
	TxOutputs  []ByronTransactionOutput
	Attributes ByronAttributes
}

func (t *ByronTx) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	if err := t.DecodeStoredRecord(rd, "ByronTx", t); err != nil {
		return err
	}
	switch {
	case len(t.TxInputs) == 0:
		rd.Seek(start)
		return cbor.NewFieldError("ByronTx", "TxInputs", cbor.ErrInvalidLength)
	case len(t.TxOutputs) == 0:
		rd.Seek(start)
		return cbor.NewFieldError("ByronTx", "TxOutputs", cbor.ErrInvalidLength)
	}
	return nil
}

func (t *ByronTx) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *ByronTx) MarshalCBOR() ([]byte, error) {
	return t.MarshalRecord(t)
}

func (t *ByronTx) Hash() common.Blake2b256 {
	data, err := t.MarshalCBOR()
	if err != nil {
		return common.Blake2b256{}
	}
	return common.Blake2b256Hash(data)
}

func (t *ByronTx) Inputs() []common.TransactionInput {
	ret := make([]common.TransactionInput, len(t.TxInputs))
	for i, input := range t.TxInputs {
		ret[i] = input.Input.Value
	}
	return ret
}

func (t *ByronTx) Outputs() []common.TransactionOutput {
	ret := make([]common.TransactionOutput, len(t.TxOutputs))
	for i := range t.TxOutputs {
		ret[i] = &t.TxOutputs[i]
	}
	return ret
}

type ByronPkWitness struct {
	cbor.StructAsArray
	Key       ExtendedVerificationKey
	Signature common.Signature
}

type ByronRedeemWitness struct {
	cbor.StructAsArray
	Key       common.VerificationKey
	Signature common.Signature
}

// ByronTxWitness is a key witness or a redeem witness, each double encoded
type ByronTxWitness struct {
	Type   uint64
	Pk     *cbor.Encoded[ByronPkWitness]
	Redeem *cbor.Encoded[ByronRedeemWitness]
}

func (w *ByronTxWitness) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return err
	}
	if err := w.decodeVariant(rd); err != nil {
		rd.Seek(start)
		return err
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (w *ByronTxWitness) decodeVariant(rd *cbor.Reader) error {
	typ, err := rd.ReadUint()
	if err != nil {
		return err
	}
	*w = ByronTxWitness{Type: typ}
	switch typ {
	case byronWitnessTypePk:
		w.Pk = &cbor.Encoded[ByronPkWitness]{}
		return w.Pk.Decode(rd)
	case byronWitnessTypeRedeem:
		w.Redeem = &cbor.Encoded[ByronRedeemWitness]{}
		return w.Redeem.Decode(rd)
	default:
		return &cbor.InvalidTagError{Type: "ByronTxWitness", Tag: typ}
	}
}

func (w *ByronTxWitness) UnmarshalCBOR(data []byte) error {
	return common.DecodeExact(data, w)
}

func (w ByronTxWitness) MarshalCBOR() ([]byte, error) {
	out := cbor.NewWriter()
	out.WriteArrayHeader(2)
	out.WriteUint(w.Type)
	var err error
	switch {
	case w.Type == byronWitnessTypePk && w.Pk != nil:
		err = out.WriteValue(w.Pk)
	case w.Type == byronWitnessTypeRedeem && w.Redeem != nil:
		err = out.WriteValue(w.Redeem)
	default:
		return nil, fmt.Errorf("%w: type %d has no payload", ErrInvalidWitness, w.Type)
	}
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// SignedMessage returns the bytes a witness of this type signs for the given transaction
func (w ByronTxWitness) SignedMessage(txId common.Blake2b256, protocolMagic uint32) []byte {
	out := cbor.NewWriter()
	tag := byte(signTagTx)
	if w.Type == byronWitnessTypeRedeem {
		tag = signTagRedeemTx
	}
	out.WriteRaw([]byte{tag})
	out.WriteUint(uint64(protocolMagic))
	out.WriteBytes(txId[:])
	return out.Bytes()
}

// Verify checks the witness signature over the transaction id
func (w ByronTxWitness) Verify(txId common.Blake2b256, protocolMagic uint32) error {
	msg := w.SignedMessage(txId, protocolMagic)
	var pubKey ed25519.PublicKey
	var sig common.Signature
	switch {
	case w.Pk != nil:
		pubKey = w.Pk.Value.Key.PublicKey()
		sig = w.Pk.Value.Signature
	case w.Redeem != nil:
		pubKey = ed25519.PublicKey(w.Redeem.Value.Key[:])
		sig = w.Redeem.Value.Signature
	default:
		return fmt.Errorf("%w: no payload", ErrInvalidWitness)
	}
	if !ed25519.Verify(pubKey, msg, sig[:]) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidWitness)
	}
	return nil
}

// Address returns the address controlled by the witness key
func (w ByronTxWitness) Address(attr common.ByronAddressAttributes) (common.Address, error) {
	switch {
	case w.Pk != nil:
		return common.NewByronAddressFromKey(w.Pk.Value.Key[:], attr)
	case w.Redeem != nil:
		return common.NewByronAddressRedeem(w.Redeem.Value.Key[:], attr)
	}
	return common.Address{}, fmt.Errorf("%w: no payload", ErrInvalidWitness)
}

// ByronTransaction pairs a transaction with its witnesses as they appear in a block
type ByronTransaction struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	Tx          ByronTx
	TxWitnesses []ByronTxWitness
}

func (t *ByronTransaction) Decode(rd *cbor.Reader) error {
	return t.DecodeStoredRecord(rd, "ByronTransaction", t)
}

func (t *ByronTransaction) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, t)
}

func (t *ByronTransaction) MarshalCBOR() ([]byte, error) {
	return t.MarshalRecord(t)
}

func (ByronTransaction) Type() int {
	return TxTypeByron
}

func (t *ByronTransaction) Hash() common.Blake2b256 {
	return t.Tx.Hash()
}

func (t *ByronTransaction) IsValid() bool {
	return true
}

func (t *ByronTransaction) Inputs() []common.TransactionInput {
	return t.Tx.Inputs()
}

func (t *ByronTransaction) Outputs() []common.TransactionOutput {
	return t.Tx.Outputs()
}

// Fee is not recorded in Byron transactions
func (t *ByronTransaction) Fee() uint64 {
	return 0
}

func (t *ByronTransaction) AuxiliaryData() *common.AuxiliaryData {
	return nil
}

func (t *ByronTransaction) Witnesses() *common.TransactionWitnessSet {
	return nil
}

// VerifyWitnesses checks every witness signature against the transaction id
func (t *ByronTransaction) VerifyWitnesses(protocolMagic uint32) error {
	txId := t.Hash()
	for idx, w := range t.TxWitnesses {
		if err := w.Verify(txId, protocolMagic); err != nil {
			return fmt.Errorf("witness %d: %w", idx, err)
		}
	}
	return nil
}

func (t *ByronTransaction) Utxorpc() *utxorpc.Tx {
	tx := &utxorpc.Tx{
		Hash: t.Hash().Bytes(),
	}
	for _, input := range t.Inputs() {
		tx.Inputs = append(tx.Inputs, input.Utxorpc())
	}
	for _, output := range t.Outputs() {
		tx.Outputs = append(tx.Outputs, output.Utxorpc())
	}
	return tx
}

// ByronDelegation is a heavyweight delegation certificate
type ByronDelegation struct {
	cbor.StructAsArray
	Epoch     uint64
	Issuer    ExtendedVerificationKey
	Delegate  ExtendedVerificationKey
	Signature common.Signature
}

type ByronSoftforkRule struct {
	cbor.StructAsArray
	InitThreshold      uint64
	MinThreshold       uint64
	ThresholdDecrement uint64
}

// ByronTxFeePolicyLinear holds the coefficients of a linear fee in units of 10^-9 lovelace
type ByronTxFeePolicyLinear struct {
	cbor.StructAsArray
	Constant    uint64
	Coefficient uint64
}

type ByronTxFeePolicy struct {
	cbor.StructAsArray
	Type   uint64
	Policy cbor.Encoded[ByronTxFeePolicyLinear]
}

func (p *ByronTxFeePolicy) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	if err := cbor.DecodeRecord(rd, "ByronTxFeePolicy", p); err != nil {
		return err
	}
	if p.Type != 0 {
		rd.Seek(start)
		return &cbor.InvalidTagError{Type: "ByronTxFeePolicy", Tag: p.Type}
	}
	return nil
}

func (p *ByronTxFeePolicy) UnmarshalCBOR(data []byte) error {
	return common.DecodeExact(data, p)
}

func (p ByronTxFeePolicy) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeRecordBytes(&p)
}

// MinFee returns the minimum fee in lovelace for a transaction of txSize bytes, rounded up
func (p *ByronTxFeePolicy) MinFee(txSize uint64) uint64 {
	const scale = 1_000_000_000
	total := p.Policy.Value.Constant + p.Policy.Value.Coefficient*txSize
	return (total + scale - 1) / scale
}

// ByronProtocolParameters is a protocol parameter update. Each entry is an optional
// value encoded as [] or [value]
type ByronProtocolParameters struct {
	cbor.StructAsArray
	ScriptVersion     cbor.OptionalArray[uint16]
	SlotDuration      cbor.OptionalArray[uint64]
	MaxBlockSize      cbor.OptionalArray[uint64]
	MaxHeaderSize     cbor.OptionalArray[uint64]
	MaxTxSize         cbor.OptionalArray[uint64]
	MaxProposalSize   cbor.OptionalArray[uint64]
	MpcThd            cbor.OptionalArray[uint64]
	HeavyDelThd       cbor.OptionalArray[uint64]
	UpdateVoteThd     cbor.OptionalArray[uint64]
	UpdateProposalThd cbor.OptionalArray[uint64]
	UpdateProposalTtl cbor.OptionalArray[uint64]
	SoftforkRule      cbor.OptionalArray[ByronSoftforkRule]
	TxFeePolicy       cbor.OptionalArray[ByronTxFeePolicy]
	UnlockStakeEpoch  cbor.OptionalArray[uint64]
}

type ByronUpdateData struct {
	cbor.StructAsArray
	AppHash      common.Blake2b256
	PkgHash      common.Blake2b256
	UpdaterHash  common.Blake2b256
	MetadataHash common.Blake2b256
}

type ByronUpdateProposal struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	ProtocolVersion ByronBlockVersion
	Params          ByronProtocolParameters
	SoftwareVersion ByronSoftwareVersion
	Data            cbor.ListAsMap[string, ByronUpdateData]
	Attributes      ByronAttributes
	Issuer          ExtendedVerificationKey
	Signature       common.Signature
}

func (p *ByronUpdateProposal) Decode(rd *cbor.Reader) error {
	return p.DecodeStoredRecord(rd, "ByronUpdateProposal", p)
}

func (p *ByronUpdateProposal) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, p)
}

func (p *ByronUpdateProposal) MarshalCBOR() ([]byte, error) {
	return p.MarshalRecord(p)
}

// Id returns the proposal id that votes refer to
func (p *ByronUpdateProposal) Id() common.Blake2b256 {
	data, err := p.MarshalCBOR()
	if err != nil {
		return common.Blake2b256{}
	}
	return common.Blake2b256Hash(data)
}

type ByronUpdateVote struct {
	cbor.StructAsArray
	Voter      ExtendedVerificationKey
	ProposalId common.Blake2b256
	Vote       bool
	Signature  common.Signature
}

type ByronUpdatePayload struct {
	cbor.StructAsArray
	Proposal cbor.OptionalArray[ByronUpdateProposal]
	Votes    []ByronUpdateVote
}

type ByronMainBlockBody struct {
	cbor.StructAsArray
	TxPayload  []ByronTransaction
	SscPayload cbor.RawMessage
	DlgPayload []ByronDelegation
	UpdPayload ByronUpdatePayload
}

type ByronMainBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader *ByronMainBlockHeader
	Body        ByronMainBlockBody
	Extra       []ByronAttributes
}

func (b *ByronMainBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "ByronMainBlock", b)
}

func (b *ByronMainBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (ByronMainBlock) Type() int {
	return BlockTypeByronMain
}

func (b *ByronMainBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *ByronMainBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *ByronMainBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *ByronMainBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *ByronMainBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *ByronMainBlock) Era() common.Era {
	return EraByron
}

func (b *ByronMainBlock) Transactions() []common.Transaction {
	ret := make([]common.Transaction, len(b.Body.TxPayload))
	for idx := range b.Body.TxPayload {
		ret[idx] = &b.Body.TxPayload[idx]
	}
	return ret
}

func (b *ByronMainBlock) Utxorpc() *utxorpc.Block {
	txs := make([]*utxorpc.Tx, 0, len(b.Body.TxPayload))
	for idx := range b.Body.TxPayload {
		txs = append(txs, b.Body.TxPayload[idx].Utxorpc())
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

type ByronEpochBoundaryConsensusData struct {
	cbor.StructAsArray
	Epoch      uint64
	Difficulty ByronDifficulty
}

type ByronEpochBoundaryExtraData struct {
	cbor.StructAsArray
	Attributes ByronAttributes
}

type ByronEpochBoundaryBlockHeader struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	ProtocolMagic uint32
	PrevBlock     common.Blake2b256
	BodyProof     common.Blake2b256
	ConsensusData ByronEpochBoundaryConsensusData
	ExtraData     ByronEpochBoundaryExtraData
}

func (h *ByronEpochBoundaryBlockHeader) Decode(rd *cbor.Reader) error {
	return h.DecodeStoredRecord(rd, "ByronEpochBoundaryBlockHeader", h)
}

func (h *ByronEpochBoundaryBlockHeader) UnmarshalCBOR(cborData []byte) error {
	return common.DecodeExact(cborData, h)
}

func (h *ByronEpochBoundaryBlockHeader) MarshalCBOR() ([]byte, error) {
	return h.MarshalRecord(h)
}

// Hash returns the block hash, which covers the header wrapped as [0, header]
func (h *ByronEpochBoundaryBlockHeader) Hash() common.Blake2b256 {
	return byronHeaderHash(BlockTypeByronEbb, h.Cbor())
}

func (h *ByronEpochBoundaryBlockHeader) PrevHash() *common.Blake2b256 {
	return &h.PrevBlock
}

func (h *ByronEpochBoundaryBlockHeader) BlockNumber() uint64 {
	return h.ConsensusData.Difficulty.Value
}

// SlotNumber returns the first slot of the epoch the boundary block opens
func (h *ByronEpochBoundaryBlockHeader) SlotNumber() uint64 {
	return h.ConsensusData.Epoch * ByronSlotsPerEpoch
}

func (h *ByronEpochBoundaryBlockHeader) Era() common.Era {
	return EraByron
}

// ByronEpochBoundaryBlock lists the stakeholders of the new epoch and carries no
// transactions
type ByronEpochBoundaryBlock struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	BlockHeader *ByronEpochBoundaryBlockHeader
	Body        []common.Blake2b224
	Extra       []ByronAttributes
}

func (b *ByronEpochBoundaryBlock) UnmarshalCBOR(cborData []byte) error {
	return b.UnmarshalRecord(cborData, "ByronEpochBoundaryBlock", b)
}

func (b *ByronEpochBoundaryBlock) MarshalCBOR() ([]byte, error) {
	return b.MarshalRecord(b)
}

func (ByronEpochBoundaryBlock) Type() int {
	return BlockTypeByronEbb
}

func (b *ByronEpochBoundaryBlock) Hash() common.Blake2b256 {
	return b.BlockHeader.Hash()
}

func (b *ByronEpochBoundaryBlock) Header() common.BlockHeader {
	return b.BlockHeader
}

func (b *ByronEpochBoundaryBlock) PrevHash() *common.Blake2b256 {
	return b.BlockHeader.PrevHash()
}

func (b *ByronEpochBoundaryBlock) BlockNumber() uint64 {
	return b.BlockHeader.BlockNumber()
}

func (b *ByronEpochBoundaryBlock) SlotNumber() uint64 {
	return b.BlockHeader.SlotNumber()
}

func (b *ByronEpochBoundaryBlock) Era() common.Era {
	return EraByron
}

func (b *ByronEpochBoundaryBlock) Transactions() []common.Transaction {
	return nil
}

func (b *ByronEpochBoundaryBlock) Utxorpc() *utxorpc.Block {
	return &utxorpc.Block{
		Body: &utxorpc.BlockBody{},
		Header: &utxorpc.BlockHeader{
			Hash:   b.Hash().Bytes(),
			Height: b.BlockNumber(),
			Slot:   b.SlotNumber(),
		},
	}
}

func NewByronEpochBoundaryBlockFromCbor(data []byte) (*ByronEpochBoundaryBlock, error) {
	var b ByronEpochBoundaryBlock
	if err := b.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("decode Byron EBB block error: %w", err)
	}
	return &b, nil
}

func NewByronEpochBoundaryBlockHeaderFromCbor(
	data []byte,
) (*ByronEpochBoundaryBlockHeader, error) {
	var h ByronEpochBoundaryBlockHeader
	if err := h.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("decode Byron EBB block header error: %w", err)
	}
	return &h, nil
}

func NewByronMainBlockFromCbor(data []byte) (*ByronMainBlock, error) {
	var b ByronMainBlock
	if err := b.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("decode Byron main block error: %w", err)
	}
	return &b, nil
}

func NewByronMainBlockHeaderFromCbor(data []byte) (*ByronMainBlockHeader, error) {
	var h ByronMainBlockHeader
	if err := h.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("decode Byron main block header error: %w", err)
	}
	return &h, nil
}

func NewByronTransactionFromCbor(data []byte) (*ByronTransaction, error) {
	var tx ByronTransaction
	if err := tx.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("decode Byron transaction error: %w", err)
	}
	return &tx, nil
}
