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
	"errors"
	"reflect"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

const (
	VoterTypeConstitutionalCommitteeHotKeyHash    uint8 = 0
	VoterTypeConstitutionalCommitteeHotScriptHash uint8 = 1
	VoterTypeDRepKeyHash                          uint8 = 2
	VoterTypeDRepScriptHash                       uint8 = 3
	VoterTypeStakingPoolKeyHash                   uint8 = 4
)

type Voter struct {
	cbor.StructAsArray
	Type uint8
	Hash Blake2b224
}

const (
	GovVoteNo      uint8 = 0
	GovVoteYes     uint8 = 1
	GovVoteAbstain uint8 = 2
)

type VotingProcedure struct {
	cbor.StructAsArray
	Vote   uint8
	Anchor cbor.Nullable[GovAnchor]
}

// VotingProcedures maps each voter to its votes, keeping the on-chain entry order
type VotingProcedures = cbor.ListAsMap[Voter, cbor.ListAsMap[GovActionId, VotingProcedure]]

type GovAnchor struct {
	cbor.StructAsArray
	Url      Url
	DataHash Blake2b256
}

type GovActionId struct {
	cbor.StructAsArray
	TransactionId Blake2b256
	GovActionIdx  uint16
}

type ProposalProcedure struct {
	cbor.StructAsArray
	Deposit       uint64
	RewardAccount Address
	GovAction     GovActionWrapper
	Anchor        GovAnchor
}

type Constitution struct {
	cbor.StructAsArray
	Anchor     GovAnchor
	ScriptHash cbor.Nullable[ScriptHash]
}

const (
	GovActionTypeParameterChange    = 0
	GovActionTypeHardForkInitiation = 1
	GovActionTypeTreasuryWithdrawal = 2
	GovActionTypeNoConfidence       = 3
	GovActionTypeUpdateCommittee    = 4
	GovActionTypeNewConstitution    = 5
	GovActionTypeInfo               = 6
)

type GovAction interface {
	isGovAction()
	Type() uint
}

type GovActionWrapper struct {
	Type   uint
	Action GovAction
}

func (g *GovActionWrapper) Decode(rd *cbor.Reader) error {
	raw, err := rd.ReadRaw()
	if err != nil {
		return err
	}
	prd := cbor.NewReader(raw)
	if _, err := prd.ReadArrayLen(); err != nil {
		return cbor.NewFieldError("GovAction", "type", err)
	}
	actionType, err := prd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("GovAction", "type", err)
	}
	var tmpAction GovAction
	switch actionType {
	case GovActionTypeParameterChange:
		tmpAction = &ParameterChangeGovAction{}
	case GovActionTypeHardForkInitiation:
		tmpAction = &HardForkInitiationGovAction{}
	case GovActionTypeTreasuryWithdrawal:
		tmpAction = &TreasuryWithdrawalGovAction{}
	case GovActionTypeNoConfidence:
		tmpAction = &NoConfidenceGovAction{}
	case GovActionTypeUpdateCommittee:
		tmpAction = &UpdateCommitteeGovAction{}
	case GovActionTypeNewConstitution:
		tmpAction = &NewConstitutionGovAction{}
	case GovActionTypeInfo:
		tmpAction = &InfoGovAction{}
	default:
		return cbor.NewFieldError(
			"GovAction",
			"type",
			&cbor.InvalidTagError{Type: "GovAction", Tag: actionType},
		)
	}
	if err := cbor.DecodeRecordBytes(raw, "GovAction", tmpAction); err != nil {
		return err
	}
	g.Type = uint(actionType) // #nosec G115
	g.Action = tmpAction
	return nil
}

func (g *GovActionWrapper) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, g)
}

func (g *GovActionWrapper) MarshalCBOR() ([]byte, error) {
	if g.Action == nil {
		return nil, errors.New("empty governance action")
	}
	reflect.ValueOf(g.Action).Elem().FieldByName("ActionType").SetUint(uint64(g.Action.Type()))
	return cbor.EncodeRecordBytes(g.Action)
}

type ParameterChangeGovAction struct {
	cbor.StructAsArray
	ActionType  uint
	ActionId    cbor.Nullable[GovActionId]
	ParamUpdate ProtocolParameterUpdate
	PolicyHash  cbor.Nullable[ScriptHash]
}

func (ParameterChangeGovAction) isGovAction() {}

func (a *ParameterChangeGovAction) Type() uint {
	return GovActionTypeParameterChange
}

type HardForkInitiationGovAction struct {
	cbor.StructAsArray
	ActionType      uint
	ActionId        cbor.Nullable[GovActionId]
	ProtocolVersion ProtocolVersion
}

func (HardForkInitiationGovAction) isGovAction() {}

func (a *HardForkInitiationGovAction) Type() uint {
	return GovActionTypeHardForkInitiation
}

type TreasuryWithdrawalGovAction struct {
	cbor.StructAsArray
	ActionType  uint
	Withdrawals cbor.ListAsMap[Address, uint64]
	PolicyHash  cbor.Nullable[ScriptHash]
}

func (TreasuryWithdrawalGovAction) isGovAction() {}

func (a *TreasuryWithdrawalGovAction) Type() uint {
	return GovActionTypeTreasuryWithdrawal
}

type NoConfidenceGovAction struct {
	cbor.StructAsArray
	ActionType uint
	ActionId   cbor.Nullable[GovActionId]
}

func (NoConfidenceGovAction) isGovAction() {}

func (a *NoConfidenceGovAction) Type() uint {
	return GovActionTypeNoConfidence
}

type UpdateCommitteeGovAction struct {
	cbor.StructAsArray
	ActionType uint
	ActionId   cbor.Nullable[GovActionId]
	Removed    cbor.Set[Credential]
	Added      cbor.ListAsMap[Credential, uint64]
	Quorum     cbor.Rat
}

func (UpdateCommitteeGovAction) isGovAction() {}

func (a *UpdateCommitteeGovAction) Type() uint {
	return GovActionTypeUpdateCommittee
}

type NewConstitutionGovAction struct {
	cbor.StructAsArray
	ActionType   uint
	ActionId     cbor.Nullable[GovActionId]
	Constitution Constitution
}

func (NewConstitutionGovAction) isGovAction() {}

func (a *NewConstitutionGovAction) Type() uint {
	return GovActionTypeNewConstitution
}

type InfoGovAction struct {
	cbor.StructAsArray
	ActionType uint
}

func (InfoGovAction) isGovAction() {}

func (a *InfoGovAction) Type() uint {
	return GovActionTypeInfo
}
