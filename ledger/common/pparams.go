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
	"fmt"
	"math/bits"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

// Protocol parameter update keys
const (
	ParamMinFeeA                    = 0
	ParamMinFeeB                    = 1
	ParamMaxBlockBodySize           = 2
	ParamMaxTxSize                  = 3
	ParamMaxBlockHeaderSize         = 4
	ParamKeyDeposit                 = 5
	ParamPoolDeposit                = 6
	ParamMaxEpoch                   = 7
	ParamNOpt                       = 8
	ParamPoolPledgeInfluence        = 9
	ParamExpansionRate              = 10
	ParamTreasuryGrowthRate         = 11
	ParamDecentralization           = 12
	ParamExtraEntropy               = 13
	ParamProtocolVersion            = 14
	ParamMinUtxoValue               = 15
	ParamMinPoolCost                = 16
	ParamAdaPerUtxoByte             = 17
	ParamCostModels                 = 18
	ParamExecutionCosts             = 19
	ParamMaxTxExUnits               = 20
	ParamMaxBlockExUnits            = 21
	ParamMaxValueSize               = 22
	ParamCollateralPercentage       = 23
	ParamMaxCollateralInputs        = 24
	ParamPoolVotingThresholds       = 25
	ParamDrepVotingThresholds       = 26
	ParamMinCommitteeSize           = 27
	ParamCommitteeTermLimit         = 28
	ParamGovActionValidityPeriod    = 29
	ParamGovActionDeposit           = 30
	ParamDrepDeposit                = 31
	ParamDrepInactivityPeriod       = 32
	ParamMinFeeRefScriptCostPerByte = 33
	protocolParameterCount          = 34
	poolVotingThresholdCount        = 5
	drepVotingThresholdCount        = 10
)

func paramMask(keys ...uint8) uint64 {
	var ret uint64
	for _, key := range keys {
		ret |= 1 << key
	}
	return ret
}

func paramRange(first, last uint8) uint64 {
	return (^uint64(0) >> (63 - last)) &^ (1<<first - 1)
}

// Keys accepted in protocol parameter updates of each era
var (
	ShelleyProtocolParameterKeys = paramRange(ParamMinFeeA, ParamMinPoolCost)
	AlonzoProtocolParameterKeys  = paramRange(ParamMinFeeA, ParamMaxCollateralInputs) &^
		paramMask(ParamMinUtxoValue)
	BabbageProtocolParameterKeys = AlonzoProtocolParameterKeys &^
		paramMask(ParamDecentralization, ParamExtraEntropy)
	ConwayProtocolParameterKeys = paramRange(ParamMinFeeA, ParamMinFeeRefScriptCostPerByte) &^
		paramMask(ParamDecentralization, ParamExtraEntropy, ParamProtocolVersion, ParamMinUtxoValue)
)

// ProtocolParameter is a single protocol parameter update entry
type ProtocolParameter interface {
	SparseIndex() uint8
	encode(w *cbor.Writer) error
}

// UintParameter holds an unsigned parameter such as a fee, deposit or size limit
type UintParameter struct {
	Index uint8
	Value uint64
}

func (p UintParameter) SparseIndex() uint8 {
	return p.Index
}

func (p UintParameter) encode(w *cbor.Writer) error {
	w.WriteUint(p.Value)
	return nil
}

// RatParameter holds a rational parameter such as a unit interval
type RatParameter struct {
	Index uint8
	Value cbor.Rat
}

func (p RatParameter) SparseIndex() uint8 {
	return p.Index
}

func (p RatParameter) encode(w *cbor.Writer) error {
	return p.Value.Encode(w)
}

type ExtraEntropyParameter struct {
	Value cbor.TaggedOption[Blake2b256]
}

func (ExtraEntropyParameter) SparseIndex() uint8 {
	return ParamExtraEntropy
}

func (p ExtraEntropyParameter) encode(w *cbor.Writer) error {
	return w.WriteValue(p.Value)
}

type ProtocolVersionParameter struct {
	Value ProtocolVersion
}

func (ProtocolVersionParameter) SparseIndex() uint8 {
	return ParamProtocolVersion
}

func (p ProtocolVersionParameter) encode(w *cbor.Writer) error {
	return cbor.EncodeRecord(w, &p.Value)
}

type CostModelsParameter struct {
	Value CostModels
}

func (CostModelsParameter) SparseIndex() uint8 {
	return ParamCostModels
}

func (p CostModelsParameter) encode(w *cbor.Writer) error {
	return p.Value.Encode(w)
}

// ExUnitPrices is the price of one unit of memory and one step
type ExUnitPrices struct {
	cbor.StructAsArray
	MemPrice  cbor.Rat
	StepPrice cbor.Rat
}

type ExecutionCostsParameter struct {
	Value ExUnitPrices
}

func (ExecutionCostsParameter) SparseIndex() uint8 {
	return ParamExecutionCosts
}

func (p ExecutionCostsParameter) encode(w *cbor.Writer) error {
	return cbor.EncodeRecord(w, &p.Value)
}

type ExUnitsParameter struct {
	Index uint8
	Value ExUnits
}

func (p ExUnitsParameter) SparseIndex() uint8 {
	return p.Index
}

func (p ExUnitsParameter) encode(w *cbor.Writer) error {
	return cbor.EncodeRecord(w, &p.Value)
}

// VotingThresholdsParameter holds the pool (5 entries) or DRep (10 entries) voting
// thresholds
type VotingThresholdsParameter struct {
	Index  uint8
	Values []cbor.Rat
}

func (p VotingThresholdsParameter) SparseIndex() uint8 {
	return p.Index
}

func (p VotingThresholdsParameter) encode(w *cbor.Writer) error {
	w.WriteArrayHeader(len(p.Values))
	for i := range p.Values {
		if err := p.Values[i].Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func decodeProtocolParameter(rd *cbor.Reader, key uint64) (ProtocolParameter, error) {
	idx := uint8(key) // #nosec G115
	var err error
	switch key {
	case ParamPoolPledgeInfluence, ParamExpansionRate, ParamTreasuryGrowthRate,
		ParamDecentralization, ParamMinFeeRefScriptCostPerByte:
		var p RatParameter
		p.Index = idx
		err = p.Value.Decode(rd)
		return p, err
	case ParamExtraEntropy:
		var p ExtraEntropyParameter
		err = p.Value.Decode(rd)
		return p, err
	case ParamProtocolVersion:
		var p ProtocolVersionParameter
		err = cbor.DecodeRecord(rd, "ProtocolVersion", &p.Value)
		return p, err
	case ParamCostModels:
		var p CostModelsParameter
		err = p.Value.Decode(rd)
		return p, err
	case ParamExecutionCosts:
		var p ExecutionCostsParameter
		err = cbor.DecodeRecord(rd, "ExUnitPrices", &p.Value)
		return p, err
	case ParamMaxTxExUnits, ParamMaxBlockExUnits:
		p := ExUnitsParameter{Index: idx}
		err = cbor.DecodeRecord(rd, "ExUnits", &p.Value)
		return p, err
	case ParamPoolVotingThresholds, ParamDrepVotingThresholds:
		count := poolVotingThresholdCount
		if key == ParamDrepVotingThresholds {
			count = drepVotingThresholdCount
		}
		p := VotingThresholdsParameter{Index: idx}
		n, err := rd.ExpectArray(count, count)
		if err != nil {
			return nil, err
		}
		p.Values = make([]cbor.Rat, count)
		for i := range p.Values {
			if err := p.Values[i].Decode(rd); err != nil {
				return nil, err
			}
		}
		if n < 0 {
			err = rd.ReadBreak()
		}
		return p, err
	}
	if key >= protocolParameterCount {
		return nil, &cbor.InvalidTagError{Type: "ProtocolParameterUpdate", Tag: key}
	}
	p := UintParameter{Index: idx}
	p.Value, err = rd.ReadUint()
	return p, err
}

// ProtocolParameterUpdate is a sparse set of protocol parameters, encoded as a map from
// parameter key to value. Each key may appear at most once
type ProtocolParameterUpdate struct {
	cbor.DecodeStoreCbor
	params cbor.Sparse[ProtocolParameter]
}

func (u *ProtocolParameterUpdate) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	u.params = cbor.Sparse[ProtocolParameter]{}
	if err := u.params.DecodeMap(rd, decodeProtocolParameter); err != nil {
		return cbor.NewFieldError("ProtocolParameterUpdate", "parameter", err)
	}
	u.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

func (u *ProtocolParameterUpdate) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, u)
}

func (u *ProtocolParameterUpdate) Encode(w *cbor.Writer) error {
	if u.Cbor() != nil {
		w.WriteRaw(u.Cbor())
		return nil
	}
	return u.params.EncodeMap(w, func(w *cbor.Writer, p ProtocolParameter) error {
		return p.encode(w)
	})
}

func (u *ProtocolParameterUpdate) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	if err := u.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Set adds a parameter. It returns false if the parameter is already present
func (u *ProtocolParameterUpdate) Set(p ProtocolParameter) bool {
	if !u.params.Insert(p) {
		return false
	}
	u.SetCbor(nil)
	return true
}

func (u *ProtocolParameterUpdate) Get(key uint8) (ProtocolParameter, bool) {
	return u.params.Get(key)
}

// Parameters returns the present parameters in ascending key order
func (u *ProtocolParameterUpdate) Parameters() []ProtocolParameter {
	return u.params.Values()
}

func (u *ProtocolParameterUpdate) Len() int {
	return u.params.Len()
}

// Uint returns the value of an unsigned parameter
func (u *ProtocolParameterUpdate) Uint(key uint8) (uint64, bool) {
	p, ok := u.params.Get(key)
	if !ok {
		return 0, false
	}
	tmp, ok := p.(UintParameter)
	return tmp.Value, ok
}

// Rat returns the value of a rational parameter
func (u *ProtocolParameterUpdate) Rat(key uint8) (cbor.Rat, bool) {
	p, ok := u.params.Get(key)
	if !ok {
		return cbor.Rat{}, false
	}
	tmp, ok := p.(RatParameter)
	return tmp.Value, ok
}

func (u *ProtocolParameterUpdate) CostModels() (*CostModels, bool) {
	p, ok := u.params.Get(ParamCostModels)
	if !ok {
		return nil, false
	}
	tmp := p.(CostModelsParameter)
	return &tmp.Value, true
}

// ValidateKeys checks that every present parameter is in the provided key set
func (u *ProtocolParameterUpdate) ValidateKeys(allowed uint64) error {
	if extra := u.params.Bitmap() &^ allowed; extra != 0 {
		key := uint64(bits.TrailingZeros64(extra)) // #nosec G115
		return cbor.NewFieldError(
			"ProtocolParameterUpdate",
			fmt.Sprintf("%d", key),
			&cbor.InvalidTagError{Type: "ProtocolParameterUpdate", Tag: key},
		)
	}
	return nil
}

// Plutus language identifiers used as cost model keys
const (
	CostModelPlutusV1 = 0
	CostModelPlutusV2 = 1
	CostModelPlutusV3 = 2
)

// Minimum number of parameters per language. Longer arrays are accepted since later
// protocol versions append parameters for new builtins
var costModelMinLength = map[uint8]int{
	CostModelPlutusV1: 166,
	CostModelPlutusV2: 175,
	CostModelPlutusV3: 233,
}

// CostModels maps a Plutus language to its cost model parameters, keeping the
// on-chain order
type CostModels struct {
	entries cbor.ListAsMap[uint8, []int64]
}

func NewCostModels() CostModels {
	return CostModels{}
}

func (c *CostModels) Decode(rd *cbor.Reader) error {
	var tmp cbor.ListAsMap[uint8, []int64]
	if err := tmp.Decode(rd); err != nil {
		return err
	}
	for _, entry := range tmp {
		if minLen, ok := costModelMinLength[entry.Key]; ok && len(entry.Value) < minLen {
			return &CostModelLengthError{
				Language: uint(entry.Key),
				Expected: minLen,
				Found:    len(entry.Value),
			}
		}
	}
	c.entries = tmp
	return nil
}

func (c *CostModels) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, c)
}

func (c *CostModels) Encode(w *cbor.Writer) error {
	return c.entries.Encode(w)
}

func (c *CostModels) MarshalCBOR() ([]byte, error) {
	return c.entries.MarshalCBOR()
}

// Set replaces or adds the parameters for a language
func (c *CostModels) Set(language uint8, params []int64) {
	for i := range c.entries {
		if c.entries[i].Key == language {
			c.entries[i].Value = params
			return
		}
	}
	c.entries = append(c.entries, cbor.KeyValue[uint8, []int64]{Key: language, Value: params})
}

// Get returns the parameters for a language
func (c *CostModels) Get(language uint8) ([]int64, bool) {
	for _, entry := range c.entries {
		if entry.Key == language {
			return entry.Value, true
		}
	}
	return nil, false
}

func (c *CostModels) Languages() []uint8 {
	ret := make([]uint8, 0, len(c.entries))
	for _, entry := range c.entries {
		ret = append(ret, entry.Key)
	}
	return ret
}

// ProtocolParameterUpdateProposal is the update field of a Shelley to Babbage transaction
// body: proposed updates keyed by genesis delegate hash, and the target epoch
type ProtocolParameterUpdateProposal struct {
	cbor.StructAsArray
	Updates cbor.ListAsMap[Blake2b224, ProtocolParameterUpdate]
	Epoch   uint64
}

// ValidateKeys checks every proposed update against the provided key set
func (p *ProtocolParameterUpdateProposal) ValidateKeys(allowed uint64) error {
	for i := range p.Updates {
		if err := p.Updates[i].Value.ValidateKeys(allowed); err != nil {
			return err
		}
	}
	return nil
}
