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
	"slices"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
)

const (
	ScriptRefTypeNativeScript = 0
	ScriptRefTypePlutusV1     = 1
	ScriptRefTypePlutusV2     = 2
	ScriptRefTypePlutusV3     = 3
)

const (
	NativeScriptTypePubkey           = 0
	NativeScriptTypeAll              = 1
	NativeScriptTypeAny              = 2
	NativeScriptTypeNofK             = 3
	NativeScriptTypeInvalidBefore    = 4
	NativeScriptTypeInvalidHereafter = 5
)

type ScriptHash = Blake2b224

type Script interface {
	isScript()
	Hash() ScriptHash
	RawScriptBytes() []byte
}

// ScriptRef is a reference script attached to an output, encoded as
// tag24([type, script])
type ScriptRef struct {
	cbor.DecodeStoreCbor
	Type   uint
	Script Script
}

func (s *ScriptRef) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	if err := rd.ExpectTag(cbor.CborTagCbor); err != nil {
		return cbor.NewFieldError("ScriptRef", "tag", err)
	}
	inner, err := rd.ReadBytes()
	if err != nil {
		return cbor.NewFieldError("ScriptRef", "script", err)
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	ird := cbor.NewReader(inner)
	n, err := ird.ExpectArray(2, 2)
	if err != nil {
		return cbor.NewFieldError("ScriptRef", "script", err)
	}
	scriptType, err := ird.ReadUint()
	if err != nil {
		return cbor.NewFieldError("ScriptRef", "type", err)
	}
	var tmpScript Script
	switch scriptType {
	case ScriptRefTypeNativeScript:
		tmpScript = &NativeScript{}
	case ScriptRefTypePlutusV1:
		tmpScript = &PlutusV1Script{}
	case ScriptRefTypePlutusV2:
		tmpScript = &PlutusV2Script{}
	case ScriptRefTypePlutusV3:
		tmpScript = &PlutusV3Script{}
	default:
		return cbor.NewFieldError(
			"ScriptRef",
			"type",
			&cbor.InvalidTagError{Type: "ScriptRef", Tag: scriptType},
		)
	}
	if err := ird.ReadValue(tmpScript); err != nil {
		return cbor.NewFieldError("ScriptRef", "script", err)
	}
	if n < 0 {
		if err := ird.ReadBreak(); err != nil {
			return err
		}
	}
	if !ird.Done() {
		return cbor.ErrTrailingData
	}
	s.Type = uint(scriptType)
	s.Script = tmpScript
	s.SetCbor(data)
	return nil
}

func (s *ScriptRef) MarshalCBOR() ([]byte, error) {
	if s.Cbor() != nil {
		return s.Cbor(), nil
	}
	iw := cbor.NewWriter()
	iw.WriteArrayHeader(2)
	iw.WriteUint(uint64(s.Type))
	if err := iw.WriteValue(s.Script); err != nil {
		return nil, err
	}
	w := cbor.NewWriter()
	w.WriteTag(cbor.CborTagCbor)
	w.WriteBytes(iw.Bytes())
	return w.Bytes(), nil
}

func scriptHash(prefix byte, script []byte) ScriptHash {
	return Blake2b224Hash(slices.Concat([]byte{prefix}, script))
}

// plutusScript holds the serialized script: a CBOR byte string wrapping the flat
// encoded program
type plutusScript []byte

// Program decodes the flat encoded program wrapped in the script bytes
func (s plutusScript) Program() (*plutus.Program, error) {
	rd := cbor.NewReader(s)
	flat, err := rd.ReadBytes()
	if err != nil {
		// Some scripts are stored without the inner wrapping
		return plutus.DecodeFlat(s)
	}
	if !rd.Done() {
		return nil, cbor.ErrTrailingData
	}
	return plutus.DecodeFlat(flat)
}

func (s plutusScript) evaluate(
	lang plutus.Language,
	args []plutus.Data,
	budget ExUnits,
	costModel *plutus.CostModel,
) (ExUnits, error) {
	program, err := s.Program()
	if err != nil {
		return ExUnits{}, fmt.Errorf("decode script: %w", err)
	}
	if costModel == nil {
		costModel = plutus.DefaultCostModel(lang)
	}
	machine := plutus.NewMachine(costModel, budget.ToBudget())
	if _, err := machine.Run(program.ApplyData(args...)); err != nil {
		return ExUnits{}, fmt.Errorf("execute script: %w", err)
	}
	consumed := machine.Consumed()
	return ExUnits{
		Memory: uint64(consumed.Mem), // #nosec G115
		Steps:  uint64(consumed.Cpu), // #nosec G115
	}, nil
}

type PlutusV1Script []byte

func (PlutusV1Script) isScript() {}

func (s PlutusV1Script) Hash() ScriptHash {
	return scriptHash(ScriptRefTypePlutusV1, s)
}

func (s PlutusV1Script) RawScriptBytes() []byte {
	return []byte(s)
}

func (s PlutusV1Script) Program() (*plutus.Program, error) {
	return plutusScript(s).Program()
}

// Evaluate applies the script to its arguments (datum, redeemer and context) and runs it
// within the provided budget, returning the consumed execution units
func (s PlutusV1Script) Evaluate(
	args []plutus.Data,
	budget ExUnits,
	costModel *plutus.CostModel,
) (ExUnits, error) {
	return plutusScript(s).evaluate(plutus.LanguageV1, args, budget, costModel)
}

type PlutusV2Script []byte

func (PlutusV2Script) isScript() {}

func (s PlutusV2Script) Hash() ScriptHash {
	return scriptHash(ScriptRefTypePlutusV2, s)
}

func (s PlutusV2Script) RawScriptBytes() []byte {
	return []byte(s)
}

func (s PlutusV2Script) Program() (*plutus.Program, error) {
	return plutusScript(s).Program()
}

func (s PlutusV2Script) Evaluate(
	args []plutus.Data,
	budget ExUnits,
	costModel *plutus.CostModel,
) (ExUnits, error) {
	return plutusScript(s).evaluate(plutus.LanguageV2, args, budget, costModel)
}

type PlutusV3Script []byte

func (PlutusV3Script) isScript() {}

func (s PlutusV3Script) Hash() ScriptHash {
	return scriptHash(ScriptRefTypePlutusV3, s)
}

func (s PlutusV3Script) RawScriptBytes() []byte {
	return []byte(s)
}

func (s PlutusV3Script) Program() (*plutus.Program, error) {
	return plutusScript(s).Program()
}

// Evaluate applies the script to the script context and runs it within the provided
// budget
func (s PlutusV3Script) Evaluate(
	scriptContext plutus.Data,
	budget ExUnits,
	costModel *plutus.CostModel,
) (ExUnits, error) {
	return plutusScript(s).evaluate(
		plutus.LanguageV3,
		[]plutus.Data{scriptContext},
		budget,
		costModel,
	)
}

// NativeScript is a multi-signature or timelock script
type NativeScript struct {
	cbor.DecodeStoreCbor
	item any
}

func (NativeScript) isScript() {}

// Item returns a pointer to one of the NativeScript* variant types
func (n *NativeScript) Item() any {
	return n.item
}

func (n *NativeScript) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	if _, err := rd.ReadArrayLen(); err != nil {
		return cbor.NewFieldError("NativeScript", "type", err)
	}
	id, err := rd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("NativeScript", "type", err)
	}
	var tmpData any
	switch id {
	case NativeScriptTypePubkey:
		tmpData = &NativeScriptPubkey{}
	case NativeScriptTypeAll:
		tmpData = &NativeScriptAll{}
	case NativeScriptTypeAny:
		tmpData = &NativeScriptAny{}
	case NativeScriptTypeNofK:
		tmpData = &NativeScriptNofK{}
	case NativeScriptTypeInvalidBefore:
		tmpData = &NativeScriptInvalidBefore{}
	case NativeScriptTypeInvalidHereafter:
		tmpData = &NativeScriptInvalidHereafter{}
	default:
		return cbor.NewFieldError(
			"NativeScript",
			"type",
			&cbor.InvalidTagError{Type: "NativeScript", Tag: id},
		)
	}
	if err := cbor.DecodeRecordBytes(data, "NativeScript", tmpData); err != nil {
		return err
	}
	n.item = tmpData
	n.SetCbor(data)
	return nil
}

func (n *NativeScript) MarshalCBOR() ([]byte, error) {
	if n.Cbor() != nil {
		return n.Cbor(), nil
	}
	return cbor.EncodeRecordBytes(n.item)
}

func NewNativeScript(item any) NativeScript {
	return NativeScript{item: item}
}

func (n NativeScript) Hash() ScriptHash {
	raw, err := n.MarshalCBOR()
	if err != nil {
		return ScriptHash{}
	}
	return scriptHash(ScriptRefTypeNativeScript, raw)
}

func (n NativeScript) RawScriptBytes() []byte {
	raw, _ := n.MarshalCBOR()
	return raw
}

// Evaluate checks the script against a slot and the set of key hashes that signed the
// transaction
func (n NativeScript) Evaluate(slot uint64, signers map[Blake2b224]bool) bool {
	switch s := n.item.(type) {
	case *NativeScriptPubkey:
		return signers[s.Hash]
	case *NativeScriptAll:
		for _, sub := range s.Scripts {
			if !sub.Evaluate(slot, signers) {
				return false
			}
		}
		return true
	case *NativeScriptAny:
		for _, sub := range s.Scripts {
			if sub.Evaluate(slot, signers) {
				return true
			}
		}
		return false
	case *NativeScriptNofK:
		count := uint(0)
		for _, sub := range s.Scripts {
			if sub.Evaluate(slot, signers) {
				count++
			}
		}
		return count >= s.N
	case *NativeScriptInvalidBefore:
		return slot >= s.Slot
	case *NativeScriptInvalidHereafter:
		return slot < s.Slot
	}
	return false
}

type NativeScriptPubkey struct {
	cbor.StructAsArray
	Type uint
	Hash Blake2b224
}

type NativeScriptAll struct {
	cbor.StructAsArray
	Type    uint
	Scripts []NativeScript
}

type NativeScriptAny struct {
	cbor.StructAsArray
	Type    uint
	Scripts []NativeScript
}

type NativeScriptNofK struct {
	cbor.StructAsArray
	Type    uint
	N       uint
	Scripts []NativeScript
}

type NativeScriptInvalidBefore struct {
	cbor.StructAsArray
	Type uint
	Slot uint64
}

type NativeScriptInvalidHereafter struct {
	cbor.StructAsArray
	Type uint
	Slot uint64
}
