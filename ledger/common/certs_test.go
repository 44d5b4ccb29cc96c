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

package common_test

import (
	"bytes"
	"net"
	"strings"
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredential(w *cbor.Writer, credType uint64, fill byte) {
	w.WriteArrayHeader(2)
	w.WriteUint(credType)
	w.WriteBytes(bytes.Repeat([]byte{fill}, 28))
}

func decodeCertificate(t *testing.T, data []byte) common.Certificate {
	t.Helper()
	var wrapper common.CertificateWrapper
	require.NoError(t, wrapper.UnmarshalCBOR(data))
	encoded, err := wrapper.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, encoded)
	assert.Equal(t, wrapper.Type, wrapper.Certificate.Type())
	return wrapper.Certificate
}

func TestShelleyCertificates(t *testing.T) {
	// Stake registration
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(0)
	writeCredential(w, common.CredentialTypeAddrKeyHash, 0x01)
	reg, ok := decodeCertificate(t, w.Bytes()).(*common.StakeRegistrationCertificate)
	require.True(t, ok)
	assert.False(t, reg.StakeCredential.IsScript())
	assert.Equal(t, byte(0x01), reg.StakeCredential.Hash()[0])
	// Stake delegation with a script credential
	w = cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(2)
	writeCredential(w, common.CredentialTypeScriptHash, 0x02)
	w.WriteBytes(bytes.Repeat([]byte{0x03}, 28))
	deleg, ok := decodeCertificate(t, w.Bytes()).(*common.StakeDelegationCertificate)
	require.True(t, ok)
	assert.True(t, deleg.StakeCredential.IsScript())
	assert.Equal(t, byte(0x03), deleg.PoolKeyHash[27])
	// Pool retirement
	w = cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(4)
	w.WriteBytes(bytes.Repeat([]byte{0x04}, 28))
	w.WriteUint(300)
	retire, ok := decodeCertificate(t, w.Bytes()).(*common.PoolRetirementCertificate)
	require.True(t, ok)
	assert.Equal(t, uint64(300), retire.Epoch)
	// Genesis key delegation
	w = cbor.NewWriter()
	w.WriteArrayHeader(4)
	w.WriteUint(5)
	w.WriteBytes(bytes.Repeat([]byte{0x05}, 28))
	w.WriteBytes(bytes.Repeat([]byte{0x06}, 28))
	w.WriteBytes(bytes.Repeat([]byte{0x07}, 32))
	genesis, ok := decodeCertificate(t, w.Bytes()).(*common.GenesisKeyDelegationCertificate)
	require.True(t, ok)
	assert.Equal(t, byte(0x07), genesis.VrfKeyHash[0])
	// Invalid credential type
	w = cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(0)
	writeCredential(w, 2, 0x01)
	var wrapper common.CertificateWrapper
	require.Error(t, wrapper.UnmarshalCBOR(w.Bytes()))
}

func TestPoolRegistrationCertificate(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(10)
	w.WriteUint(3)
	w.WriteBytes(bytes.Repeat([]byte{0x01}, 28))
	w.WriteBytes(bytes.Repeat([]byte{0x02}, 32))
	w.WriteUint(500_000_000)
	w.WriteUint(340_000_000)
	w.WriteTag(30)
	w.WriteArrayHeader(2)
	w.WriteUint(1)
	w.WriteUint(100)
	w.WriteBytes(append([]byte{0xe1}, bytes.Repeat([]byte{0x03}, 28)...))
	w.WriteTag(cbor.CborTagSet)
	w.WriteArrayHeader(1)
	w.WriteBytes(bytes.Repeat([]byte{0x04}, 28))
	w.WriteArrayHeader(3)
	// [0, 3001, h'7f000001', null]
	w.WriteArrayHeader(4)
	w.WriteUint(0)
	w.WriteUint(3001)
	w.WriteBytes([]byte{127, 0, 0, 1})
	w.WriteNull()
	// [1, null, "relay.example.com"]
	w.WriteArrayHeader(3)
	w.WriteUint(1)
	w.WriteNull()
	w.WriteText("relay.example.com")
	// [2, "pool.example.com"]
	w.WriteArrayHeader(2)
	w.WriteUint(2)
	w.WriteText("pool.example.com")
	w.WriteNull()
	cert, ok := decodeCertificate(t, w.Bytes()).(*common.PoolRegistrationCertificate)
	require.True(t, ok)
	assert.Equal(t, uint64(500_000_000), cert.Pledge)
	assert.Equal(t, "1/100", cert.Margin.String())
	assert.Equal(t, uint8(common.AddressTypeNoneKey), cert.RewardAccount.Type())
	assert.Equal(t, 1, cert.PoolOwners.Len())
	require.Len(t, cert.Relays, 3)
	require.NotNil(t, cert.Relays[0].Port)
	assert.Equal(t, uint16(3001), *cert.Relays[0].Port)
	assert.True(t, cert.Relays[0].Ipv4.Equal(net.IPv4(127, 0, 0, 1)))
	assert.Nil(t, cert.Relays[0].Ipv6)
	assert.Nil(t, cert.Relays[1].Port)
	assert.Equal(t, common.DnsName("relay.example.com"), cert.Relays[1].Hostname)
	assert.Equal(t, uint(common.PoolRelayTypeMultiHostName), cert.Relays[2].Type)
	assert.Nil(t, cert.PoolMetadata.Value)
}

func TestPoolRelayErrors(t *testing.T) {
	testDefs := []struct {
		name  string
		build func(w *cbor.Writer)
	}{
		{
			name: "unknown type",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(2)
				w.WriteUint(3)
				w.WriteText("x")
			},
		},
		{
			name: "wrong ipv4 length",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(4)
				w.WriteUint(0)
				w.WriteNull()
				w.WriteBytes([]byte{1, 2, 3})
				w.WriteNull()
			},
		},
		{
			name: "dns name too long",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(2)
				w.WriteUint(2)
				w.WriteText(strings.Repeat("a", common.MaxDnsNameLength+1))
			},
		},
		{
			name: "surplus element",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(3)
				w.WriteUint(2)
				w.WriteText("a")
				w.WriteNull()
			},
		},
	}
	for _, testDef := range testDefs {
		w := cbor.NewWriter()
		testDef.build(w)
		var relay common.PoolRelay
		require.Error(t, relay.UnmarshalCBOR(w.Bytes()), testDef.name)
	}
}

func TestMoveInstantaneousRewardsCertificate(t *testing.T) {
	// [6, [1, 1000]] moves to the other pot
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(6)
	w.WriteArrayHeader(2)
	w.WriteUint(common.MirSourceTreasury)
	w.WriteUint(1000)
	mir, ok := decodeCertificate(t, w.Bytes()).(*common.MoveInstantaneousRewardsCertificate)
	require.True(t, ok)
	assert.True(t, mir.Reward.IsOtherPot())
	assert.Equal(t, uint64(1000), mir.Reward.OtherPot)
	// [6, [0, {cred: -5}]] adjusts credential rewards
	w = cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(6)
	w.WriteArrayHeader(2)
	w.WriteUint(common.MirSourceReserves)
	w.WriteMapHeader(1)
	writeCredential(w, common.CredentialTypeAddrKeyHash, 0x09)
	w.WriteInt(-5)
	mir, ok = decodeCertificate(t, w.Bytes()).(*common.MoveInstantaneousRewardsCertificate)
	require.True(t, ok)
	assert.False(t, mir.Reward.IsOtherPot())
	require.Len(t, mir.Reward.Rewards, 1)
	assert.Equal(t, int64(-5), mir.Reward.Rewards[0].Value)
	// Unknown source
	w = cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(6)
	w.WriteArrayHeader(2)
	w.WriteUint(2)
	w.WriteUint(1000)
	var wrapper common.CertificateWrapper
	var tagErr *cbor.InvalidTagError
	require.ErrorAs(t, wrapper.UnmarshalCBOR(w.Bytes()), &tagErr)
}

func TestConwayCertificates(t *testing.T) {
	// Registration with deposit
	w := cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(7)
	writeCredential(w, common.CredentialTypeAddrKeyHash, 0x01)
	w.WriteUint(2_000_000)
	reg, ok := decodeCertificate(t, w.Bytes()).(*common.RegistrationCertificate)
	require.True(t, ok)
	assert.Equal(t, uint64(2_000_000), reg.Amount)
	// Vote delegation to the abstain option
	w = cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(9)
	writeCredential(w, common.CredentialTypeAddrKeyHash, 0x01)
	w.WriteArrayHeader(1)
	w.WriteUint(common.DrepTypeAbstain)
	vote, ok := decodeCertificate(t, w.Bytes()).(*common.VoteDelegationCertificate)
	require.True(t, ok)
	assert.Equal(t, uint(common.DrepTypeAbstain), vote.Drep.Type)
	// Stake, vote and registration delegation
	w = cbor.NewWriter()
	w.WriteArrayHeader(5)
	w.WriteUint(13)
	writeCredential(w, common.CredentialTypeScriptHash, 0x01)
	w.WriteBytes(bytes.Repeat([]byte{0x02}, 28))
	w.WriteArrayHeader(2)
	w.WriteUint(common.DrepTypeScriptHash)
	w.WriteBytes(bytes.Repeat([]byte{0x03}, 28))
	w.WriteUint(500)
	all, ok := decodeCertificate(t, w.Bytes()).(*common.StakeVoteRegistrationDelegationCertificate)
	require.True(t, ok)
	assert.Equal(t, uint(common.DrepTypeScriptHash), all.Drep.Type)
	assert.Equal(t, byte(0x03), all.Drep.Credential[0])
	assert.Equal(t, uint64(500), all.Amount)
	// DRep registration with an anchor
	w = cbor.NewWriter()
	w.WriteArrayHeader(4)
	w.WriteUint(16)
	writeCredential(w, common.CredentialTypeAddrKeyHash, 0x04)
	w.WriteUint(500_000_000)
	w.WriteArrayHeader(2)
	w.WriteText("https://example.com/drep.json")
	w.WriteBytes(bytes.Repeat([]byte{0x05}, 32))
	drep, ok := decodeCertificate(t, w.Bytes()).(*common.RegistrationDrepCertificate)
	require.True(t, ok)
	require.NotNil(t, drep.Anchor.Value)
	assert.Equal(t, common.Url("https://example.com/drep.json"), drep.Anchor.Value.Url)
	// Committee resignation without an anchor
	w = cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(15)
	writeCredential(w, common.CredentialTypeAddrKeyHash, 0x06)
	w.WriteNull()
	resign, ok := decodeCertificate(t, w.Bytes()).(*common.ResignCommitteeColdCertificate)
	require.True(t, ok)
	assert.Nil(t, resign.Anchor.Value)
	// Anchor URL over 128 bytes
	w = cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(18)
	writeCredential(w, common.CredentialTypeAddrKeyHash, 0x04)
	w.WriteArrayHeader(2)
	w.WriteText("https://" + strings.Repeat("a", common.MaxUrlLength))
	w.WriteBytes(bytes.Repeat([]byte{0x05}, 32))
	var wrapper common.CertificateWrapper
	require.Error(t, wrapper.UnmarshalCBOR(w.Bytes()))
}

func TestCertificateUnknownType(t *testing.T) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(19)
	w.WriteUint(0)
	var wrapper common.CertificateWrapper
	var tagErr *cbor.InvalidTagError
	require.ErrorAs(t, wrapper.UnmarshalCBOR(w.Bytes()), &tagErr)
	assert.Equal(t, uint64(19), tagErr.Tag)
}

func TestCertificateEncodeFresh(t *testing.T) {
	cert := &common.PoolRetirementCertificate{
		PoolKeyHash: common.NewBlake2b224(bytes.Repeat([]byte{0x04}, 28)),
		Epoch:       300,
	}
	wrapper := common.NewCertificateWrapper(cert)
	encoded, err := wrapper.MarshalCBOR()
	require.NoError(t, err)
	w := cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(4)
	w.WriteBytes(bytes.Repeat([]byte{0x04}, 28))
	w.WriteUint(300)
	assert.Equal(t, w.Bytes(), encoded)
}

func TestDrep(t *testing.T) {
	testDefs := []struct {
		name  string
		build func(w *cbor.Writer)
		valid bool
	}{
		{
			name: "key hash",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(2)
				w.WriteUint(0)
				w.WriteBytes(bytes.Repeat([]byte{1}, 28))
			},
			valid: true,
		},
		{
			name: "no confidence",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(1)
				w.WriteUint(3)
			},
			valid: true,
		},
		{
			name: "key hash without credential",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(1)
				w.WriteUint(0)
			},
		},
		{
			name: "abstain with credential",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(2)
				w.WriteUint(2)
				w.WriteBytes(bytes.Repeat([]byte{1}, 28))
			},
		},
		{
			name: "unknown type",
			build: func(w *cbor.Writer) {
				w.WriteArrayHeader(1)
				w.WriteUint(4)
			},
		},
	}
	for _, testDef := range testDefs {
		w := cbor.NewWriter()
		testDef.build(w)
		var drep common.Drep
		err := drep.UnmarshalCBOR(w.Bytes())
		if !testDef.valid {
			require.Error(t, err, testDef.name)
			continue
		}
		require.NoError(t, err, testDef.name)
		encoded, err := drep.MarshalCBOR()
		require.NoError(t, err)
		assert.Equal(t, w.Bytes(), encoded, testDef.name)
	}
}
