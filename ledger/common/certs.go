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
	"fmt"
	"net"
	"reflect"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

const (
	CertificateTypeStakeRegistration               = 0
	CertificateTypeStakeDeregistration             = 1
	CertificateTypeStakeDelegation                 = 2
	CertificateTypePoolRegistration                = 3
	CertificateTypePoolRetirement                  = 4
	CertificateTypeGenesisKeyDelegation            = 5
	CertificateTypeMoveInstantaneousRewards        = 6
	CertificateTypeRegistration                    = 7
	CertificateTypeDeregistration                  = 8
	CertificateTypeVoteDelegation                  = 9
	CertificateTypeStakeVoteDelegation             = 10
	CertificateTypeStakeRegistrationDelegation     = 11
	CertificateTypeVoteRegistrationDelegation      = 12
	CertificateTypeStakeVoteRegistrationDelegation = 13
	CertificateTypeAuthCommitteeHot                = 14
	CertificateTypeResignCommitteeCold             = 15
	CertificateTypeRegistrationDrep                = 16
	CertificateTypeDeregistrationDrep              = 17
	CertificateTypeUpdateDrep                      = 18
)

const (
	MaxUrlLength     = 128
	MaxDnsNameLength = 64
)

type (
	PoolKeyHash      = Blake2b224
	PoolMetadataHash = Blake2b256
	VrfKeyHash       = Blake2b256
)

// Url is a text string of at most 128 bytes
type Url string

func (u *Url) Decode(rd *cbor.Reader) error {
	tmp, err := cbor.ReadBoundedText(rd, MaxUrlLength)
	if err != nil {
		return err
	}
	*u = Url(tmp)
	return nil
}

func (u *Url) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, u)
}

func (u Url) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	w.WriteText(string(u))
	return w.Bytes(), nil
}

// DnsName is a text string of at most 64 bytes
type DnsName string

func (d *DnsName) Decode(rd *cbor.Reader) error {
	tmp, err := cbor.ReadBoundedText(rd, MaxDnsNameLength)
	if err != nil {
		return err
	}
	*d = DnsName(tmp)
	return nil
}

func (d *DnsName) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, d)
}

func (d DnsName) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	w.WriteText(string(d))
	return w.Bytes(), nil
}

// DecodeExact decodes data, which must hold exactly one item, with the decoder of dest
func DecodeExact(data []byte, dest cbor.ReaderDecoder) error {
	rd := cbor.NewReader(data)
	if err := dest.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	return nil
}

type Certificate interface {
	isCertificate()
	Type() uint
}

// CertificateWrapper decodes any certificate by peeking at its type tag. The original
// encoding is kept so that re-encoding is byte for byte
type CertificateWrapper struct {
	cbor.DecodeStoreCbor
	Type        uint
	Certificate Certificate
}

func NewCertificateWrapper(cert Certificate) CertificateWrapper {
	return CertificateWrapper{Type: cert.Type(), Certificate: cert}
}

func (c *CertificateWrapper) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	raw, err := rd.ReadRaw()
	if err != nil {
		return err
	}
	prd := cbor.NewReader(raw)
	if _, err := prd.ReadArrayLen(); err != nil {
		return cbor.NewFieldError("Certificate", "type", err)
	}
	certType, err := prd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("Certificate", "type", err)
	}
	tmpCert, ok := newCertificate(certType)
	if !ok {
		return cbor.NewFieldError(
			"Certificate",
			"type",
			&cbor.InvalidTagError{Type: "Certificate", Tag: certType},
		)
	}
	if err := cbor.DecodeRecordBytes(raw, "Certificate", tmpCert); err != nil {
		return err
	}
	c.Type = uint(certType)
	c.Certificate = tmpCert
	c.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

func (c *CertificateWrapper) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, c)
}

func (c *CertificateWrapper) MarshalCBOR() ([]byte, error) {
	if c.Cbor() != nil {
		return c.Cbor(), nil
	}
	if c.Certificate == nil {
		return nil, errors.New("empty certificate")
	}
	// The leading type field always matches the certificate variant
	certValue := reflect.ValueOf(c.Certificate).Elem()
	certValue.FieldByName("CertType").SetUint(uint64(c.Certificate.Type()))
	return cbor.EncodeRecordBytes(c.Certificate)
}

func newCertificate(certType uint64) (Certificate, bool) {
	switch certType {
	case CertificateTypeStakeRegistration:
		return &StakeRegistrationCertificate{}, true
	case CertificateTypeStakeDeregistration:
		return &StakeDeregistrationCertificate{}, true
	case CertificateTypeStakeDelegation:
		return &StakeDelegationCertificate{}, true
	case CertificateTypePoolRegistration:
		return &PoolRegistrationCertificate{}, true
	case CertificateTypePoolRetirement:
		return &PoolRetirementCertificate{}, true
	case CertificateTypeGenesisKeyDelegation:
		return &GenesisKeyDelegationCertificate{}, true
	case CertificateTypeMoveInstantaneousRewards:
		return &MoveInstantaneousRewardsCertificate{}, true
	case CertificateTypeRegistration:
		return &RegistrationCertificate{}, true
	case CertificateTypeDeregistration:
		return &DeregistrationCertificate{}, true
	case CertificateTypeVoteDelegation:
		return &VoteDelegationCertificate{}, true
	case CertificateTypeStakeVoteDelegation:
		return &StakeVoteDelegationCertificate{}, true
	case CertificateTypeStakeRegistrationDelegation:
		return &StakeRegistrationDelegationCertificate{}, true
	case CertificateTypeVoteRegistrationDelegation:
		return &VoteRegistrationDelegationCertificate{}, true
	case CertificateTypeStakeVoteRegistrationDelegation:
		return &StakeVoteRegistrationDelegationCertificate{}, true
	case CertificateTypeAuthCommitteeHot:
		return &AuthCommitteeHotCertificate{}, true
	case CertificateTypeResignCommitteeCold:
		return &ResignCommitteeColdCertificate{}, true
	case CertificateTypeRegistrationDrep:
		return &RegistrationDrepCertificate{}, true
	case CertificateTypeDeregistrationDrep:
		return &DeregistrationDrepCertificate{}, true
	case CertificateTypeUpdateDrep:
		return &UpdateDrepCertificate{}, true
	}
	return nil, false
}

// CertificateToUtxorpc converts the Shelley era certificates into their utxorpc form
func CertificateToUtxorpc(cert Certificate) (*utxorpc.Certificate, error) {
	switch c := cert.(type) {
	case *StakeRegistrationCertificate:
		return &utxorpc.Certificate{
			Certificate: &utxorpc.Certificate_StakeRegistration{
				StakeRegistration: c.StakeCredential.Utxorpc(),
			},
		}, nil
	case *StakeDeregistrationCertificate:
		return &utxorpc.Certificate{
			Certificate: &utxorpc.Certificate_StakeDeregistration{
				StakeDeregistration: c.StakeCredential.Utxorpc(),
			},
		}, nil
	case *StakeDelegationCertificate:
		return &utxorpc.Certificate{
			Certificate: &utxorpc.Certificate_StakeDelegation{
				StakeDelegation: &utxorpc.StakeDelegationCert{
					StakeCredential: c.StakeCredential.Utxorpc(),
					PoolKeyhash:     c.PoolKeyHash.Bytes(),
				},
			},
		}, nil
	case *PoolRetirementCertificate:
		return &utxorpc.Certificate{
			Certificate: &utxorpc.Certificate_PoolRetirement{
				PoolRetirement: &utxorpc.PoolRetirementCert{
					PoolKeyhash: c.PoolKeyHash.Bytes(),
					Epoch:       c.Epoch,
				},
			},
		}, nil
	case *GenesisKeyDelegationCertificate:
		return &utxorpc.Certificate{
			Certificate: &utxorpc.Certificate_GenesisKeyDelegation{
				GenesisKeyDelegation: &utxorpc.GenesisKeyDelegationCert{
					GenesisHash:         c.GenesisHash.Bytes(),
					GenesisDelegateHash: c.GenesisDelegateHash.Bytes(),
					VrfKeyhash:          c.VrfKeyHash.Bytes(),
				},
			},
		}, nil
	}
	return nil, fmt.Errorf("no utxorpc conversion for certificate type %d", cert.Type())
}

const (
	DrepTypeAddrKeyHash  = 0
	DrepTypeScriptHash   = 1
	DrepTypeAbstain      = 2
	DrepTypeNoConfidence = 3
)

// Drep is a delegated representative: a key hash, a script hash, or one of the two
// predefined options
type Drep struct {
	Type       uint
	Credential Blake2b224
}

func (d *Drep) Decode(rd *cbor.Reader) error {
	n, err := rd.ExpectArray(1, 2)
	if err != nil {
		return cbor.NewFieldError("Drep", "type", err)
	}
	drepType, err := rd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("Drep", "type", err)
	}
	switch drepType {
	case DrepTypeAddrKeyHash, DrepTypeScriptHash:
		if n == 1 {
			return cbor.NewFieldError("Drep", "credential", cbor.ErrMissingField)
		}
		if err := rd.ReadValue(&d.Credential); err != nil {
			return cbor.NewFieldError("Drep", "credential", err)
		}
	case DrepTypeAbstain, DrepTypeNoConfidence:
		if n == 2 {
			return fmt.Errorf("%w: Drep type %d has a credential", cbor.ErrSurplus, drepType)
		}
		d.Credential = Blake2b224{}
	default:
		return cbor.NewFieldError(
			"Drep",
			"type",
			&cbor.InvalidTagError{Type: "Drep", Tag: drepType},
		)
	}
	d.Type = uint(drepType)
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (d *Drep) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, d)
}

func (d *Drep) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	switch d.Type {
	case DrepTypeAddrKeyHash, DrepTypeScriptHash:
		w.WriteArrayHeader(2)
		w.WriteUint(uint64(d.Type))
		w.WriteBytes(d.Credential.Bytes())
	default:
		w.WriteArrayHeader(1)
		w.WriteUint(uint64(d.Type))
	}
	return w.Bytes(), nil
}

func (d *Drep) Utxorpc() (*utxorpc.DRep, error) {
	switch d.Type {
	case DrepTypeAddrKeyHash:
		return &utxorpc.DRep{
			Drep: &utxorpc.DRep_AddrKeyHash{AddrKeyHash: d.Credential.Bytes()},
		}, nil
	case DrepTypeScriptHash:
		return &utxorpc.DRep{
			Drep: &utxorpc.DRep_ScriptHash{ScriptHash: d.Credential.Bytes()},
		}, nil
	case DrepTypeAbstain:
		return &utxorpc.DRep{
			Drep: &utxorpc.DRep_Abstain{Abstain: true},
		}, nil
	case DrepTypeNoConfidence:
		return &utxorpc.DRep{
			Drep: &utxorpc.DRep_NoConfidence{NoConfidence: true},
		}, nil
	}
	return nil, fmt.Errorf("unknown DRep type: %d", d.Type)
}

func (d *Drep) ToPlutusData() plutus.Data {
	switch d.Type {
	case DrepTypeAddrKeyHash, DrepTypeScriptHash:
		return plutus.NewDataConstr(
			0,
			plutus.NewDataConstr(
				uint64(d.Type),
				plutus.NewDataBytes(d.Credential.Bytes()),
			),
		)
	case DrepTypeAbstain:
		return plutus.NewDataConstr(1)
	case DrepTypeNoConfidence:
		return plutus.NewDataConstr(2)
	}
	return nil
}

type StakeRegistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
}

func (StakeRegistrationCertificate) isCertificate() {}

func (c *StakeRegistrationCertificate) Type() uint {
	return CertificateTypeStakeRegistration
}

type StakeDeregistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
}

func (StakeDeregistrationCertificate) isCertificate() {}

func (c *StakeDeregistrationCertificate) Type() uint {
	return CertificateTypeStakeDeregistration
}

type StakeDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolKeyHash
}

func (StakeDelegationCertificate) isCertificate() {}

func (c *StakeDelegationCertificate) Type() uint {
	return CertificateTypeStakeDelegation
}

type PoolMetadata struct {
	cbor.StructAsArray
	Url  Url
	Hash PoolMetadataHash
}

func (p *PoolMetadata) Utxorpc() *utxorpc.PoolMetadata {
	return &utxorpc.PoolMetadata{
		Url:  string(p.Url),
		Hash: p.Hash.Bytes(),
	}
}

const (
	PoolRelayTypeSingleHostAddress = 0
	PoolRelayTypeSingleHostName    = 1
	PoolRelayTypeMultiHostName     = 2
)

// PoolRelay is one of [0, port / null, ipv4 / null, ipv6 / null], [1, port / null, dns_name]
// or [2, dns_name]
type PoolRelay struct {
	Type     uint
	Port     *uint16
	Ipv4     net.IP
	Ipv6     net.IP
	Hostname DnsName
}

func (p *PoolRelay) Decode(rd *cbor.Reader) error {
	n, err := rd.ExpectArray(2, 4)
	if err != nil {
		return cbor.NewFieldError("PoolRelay", "type", err)
	}
	relayType, err := rd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("PoolRelay", "type", err)
	}
	*p = PoolRelay{Type: uint(relayType)} // #nosec G115
	expected := 0
	switch relayType {
	case PoolRelayTypeSingleHostAddress:
		expected = 4
		if err := p.decodePort(rd); err != nil {
			return err
		}
		if p.Ipv4, err = readNullableFixed(rd, net.IPv4len); err != nil {
			return cbor.NewFieldError("PoolRelay", "ipv4", err)
		}
		if p.Ipv6, err = readNullableFixed(rd, net.IPv6len); err != nil {
			return cbor.NewFieldError("PoolRelay", "ipv6", err)
		}
	case PoolRelayTypeSingleHostName:
		expected = 3
		if err := p.decodePort(rd); err != nil {
			return err
		}
		if err := p.Hostname.Decode(rd); err != nil {
			return cbor.NewFieldError("PoolRelay", "dns_name", err)
		}
	case PoolRelayTypeMultiHostName:
		expected = 2
		if err := p.Hostname.Decode(rd); err != nil {
			return cbor.NewFieldError("PoolRelay", "dns_name", err)
		}
	default:
		return cbor.NewFieldError(
			"PoolRelay",
			"type",
			&cbor.InvalidTagError{Type: "PoolRelay", Tag: relayType},
		)
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	if n != expected {
		return fmt.Errorf(
			"%w: PoolRelay type %d has %d elements",
			cbor.ErrSurplus,
			relayType,
			n,
		)
	}
	return nil
}

func (p *PoolRelay) decodePort(rd *cbor.Reader) error {
	if rd.IsNull() {
		return rd.ReadNull()
	}
	port, err := rd.ReadUint16()
	if err != nil {
		return cbor.NewFieldError("PoolRelay", "port", err)
	}
	p.Port = &port
	return nil
}

func readNullableFixed(rd *cbor.Reader, size int) ([]byte, error) {
	if rd.IsNull() {
		return nil, rd.ReadNull()
	}
	return rd.ReadFixedBytes(size)
}

func (p *PoolRelay) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, p)
}

func (p *PoolRelay) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	writePort := func() {
		if p.Port == nil {
			w.WriteNull()
			return
		}
		w.WriteUint(uint64(*p.Port))
	}
	writeIp := func(ip net.IP) {
		if ip == nil {
			w.WriteNull()
			return
		}
		w.WriteBytes(ip)
	}
	switch p.Type {
	case PoolRelayTypeSingleHostAddress:
		w.WriteArrayHeader(4)
		w.WriteUint(PoolRelayTypeSingleHostAddress)
		writePort()
		writeIp(p.Ipv4)
		writeIp(p.Ipv6)
	case PoolRelayTypeSingleHostName:
		w.WriteArrayHeader(3)
		w.WriteUint(PoolRelayTypeSingleHostName)
		writePort()
		w.WriteText(string(p.Hostname))
	case PoolRelayTypeMultiHostName:
		w.WriteArrayHeader(2)
		w.WriteUint(PoolRelayTypeMultiHostName)
		w.WriteText(string(p.Hostname))
	default:
		return nil, fmt.Errorf("invalid relay type: %d", p.Type)
	}
	return w.Bytes(), nil
}

type PoolRegistrationCertificate struct {
	cbor.StructAsArray
	CertType      uint
	Operator      PoolKeyHash
	VrfKeyHash    VrfKeyHash
	Pledge        uint64
	Cost          uint64
	Margin        cbor.Rat
	RewardAccount Address
	PoolOwners    cbor.Set[AddrKeyHash]
	Relays        []PoolRelay
	PoolMetadata  cbor.Nullable[PoolMetadata]
}

func (PoolRegistrationCertificate) isCertificate() {}

func (c *PoolRegistrationCertificate) Type() uint {
	return CertificateTypePoolRegistration
}

type PoolRetirementCertificate struct {
	cbor.StructAsArray
	CertType    uint
	PoolKeyHash PoolKeyHash
	Epoch       uint64
}

func (PoolRetirementCertificate) isCertificate() {}

func (c *PoolRetirementCertificate) Type() uint {
	return CertificateTypePoolRetirement
}

type GenesisKeyDelegationCertificate struct {
	cbor.StructAsArray
	CertType            uint
	GenesisHash         Blake2b224
	GenesisDelegateHash Blake2b224
	VrfKeyHash          VrfKeyHash
}

func (GenesisKeyDelegationCertificate) isCertificate() {}

func (c *GenesisKeyDelegationCertificate) Type() uint {
	return CertificateTypeGenesisKeyDelegation
}

const (
	MirSourceReserves = 0
	MirSourceTreasury = 1
)

// MoveInstantaneousRewardsCertificateReward moves rewards from a pot either to a set
// of stake credentials or to the other pot
type MoveInstantaneousRewardsCertificateReward struct {
	Source     uint
	Rewards    cbor.ListAsMap[Credential, int64]
	OtherPot   uint64
	toOtherPot bool
}

func (r *MoveInstantaneousRewardsCertificateReward) Decode(rd *cbor.Reader) error {
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return err
	}
	source, err := rd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("MoveInstantaneousRewards", "source", err)
	}
	if source > MirSourceTreasury {
		return cbor.NewFieldError(
			"MoveInstantaneousRewards",
			"source",
			&cbor.InvalidTagError{Type: "MirSource", Tag: source},
		)
	}
	*r = MoveInstantaneousRewardsCertificateReward{Source: uint(source)} // #nosec G115
	major, err := rd.PeekType()
	if err != nil {
		return cbor.NewFieldError("MoveInstantaneousRewards", "target", err)
	}
	if major == cbor.MajorUint {
		r.toOtherPot = true
		if r.OtherPot, err = rd.ReadUint(); err != nil {
			return cbor.NewFieldError("MoveInstantaneousRewards", "target", err)
		}
	} else if err := r.Rewards.Decode(rd); err != nil {
		return cbor.NewFieldError("MoveInstantaneousRewards", "target", err)
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (r *MoveInstantaneousRewardsCertificateReward) UnmarshalCBOR(data []byte) error {
	return DecodeExact(data, r)
}

func (r *MoveInstantaneousRewardsCertificateReward) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(uint64(r.Source))
	if r.toOtherPot {
		w.WriteUint(r.OtherPot)
	} else if err := r.Rewards.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// IsOtherPot returns true if the rewards move to the other accounting pot
func (r *MoveInstantaneousRewardsCertificateReward) IsOtherPot() bool {
	return r.toOtherPot
}

type MoveInstantaneousRewardsCertificate struct {
	cbor.StructAsArray
	CertType uint
	Reward   MoveInstantaneousRewardsCertificateReward
}

func (MoveInstantaneousRewardsCertificate) isCertificate() {}

func (c *MoveInstantaneousRewardsCertificate) Type() uint {
	return CertificateTypeMoveInstantaneousRewards
}

type RegistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Amount          uint64
}

func (RegistrationCertificate) isCertificate() {}

func (c *RegistrationCertificate) Type() uint {
	return CertificateTypeRegistration
}

type DeregistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Amount          uint64
}

func (DeregistrationCertificate) isCertificate() {}

func (c *DeregistrationCertificate) Type() uint {
	return CertificateTypeDeregistration
}

type VoteDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Drep            Drep
}

func (VoteDelegationCertificate) isCertificate() {}

func (c *VoteDelegationCertificate) Type() uint {
	return CertificateTypeVoteDelegation
}

type StakeVoteDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolKeyHash
	Drep            Drep
}

func (StakeVoteDelegationCertificate) isCertificate() {}

func (c *StakeVoteDelegationCertificate) Type() uint {
	return CertificateTypeStakeVoteDelegation
}

type StakeRegistrationDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolKeyHash
	Amount          uint64
}

func (StakeRegistrationDelegationCertificate) isCertificate() {}

func (c *StakeRegistrationDelegationCertificate) Type() uint {
	return CertificateTypeStakeRegistrationDelegation
}

type VoteRegistrationDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Drep            Drep
	Amount          uint64
}

func (VoteRegistrationDelegationCertificate) isCertificate() {}

func (c *VoteRegistrationDelegationCertificate) Type() uint {
	return CertificateTypeVoteRegistrationDelegation
}

type StakeVoteRegistrationDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolKeyHash
	Drep            Drep
	Amount          uint64
}

func (StakeVoteRegistrationDelegationCertificate) isCertificate() {}

func (c *StakeVoteRegistrationDelegationCertificate) Type() uint {
	return CertificateTypeStakeVoteRegistrationDelegation
}

type AuthCommitteeHotCertificate struct {
	cbor.StructAsArray
	CertType       uint
	ColdCredential Credential
	HotCredential  Credential
}

func (AuthCommitteeHotCertificate) isCertificate() {}

func (c *AuthCommitteeHotCertificate) Type() uint {
	return CertificateTypeAuthCommitteeHot
}

type ResignCommitteeColdCertificate struct {
	cbor.StructAsArray
	CertType       uint
	ColdCredential Credential
	Anchor         cbor.Nullable[GovAnchor]
}

func (ResignCommitteeColdCertificate) isCertificate() {}

func (c *ResignCommitteeColdCertificate) Type() uint {
	return CertificateTypeResignCommitteeCold
}

type RegistrationDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Amount         uint64
	Anchor         cbor.Nullable[GovAnchor]
}

func (RegistrationDrepCertificate) isCertificate() {}

func (c *RegistrationDrepCertificate) Type() uint {
	return CertificateTypeRegistrationDrep
}

type DeregistrationDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Amount         uint64
}

func (DeregistrationDrepCertificate) isCertificate() {}

func (c *DeregistrationDrepCertificate) Type() uint {
	return CertificateTypeDeregistrationDrep
}

type UpdateDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Anchor         cbor.Nullable[GovAnchor]
}

func (UpdateDrepCertificate) isCertificate() {}

func (c *UpdateDrepCertificate) Type() uint {
	return CertificateTypeUpdateDrep
}
