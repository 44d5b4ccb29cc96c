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
	"encoding/hex"
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPaymentHash = "9493315cd92eb5d8c4304e67b7e16ae36d61d34502694657811a2c8e"
	testStakeHash   = "337b62cfff6403a06a3acbc34f8c46003c69fe79a3628cefa9c47251"
	testByronAddr   = "DdzFFzCqrhszvGBcfWZoxTuSXS7whAi5xEyD6pD53x4nXfRhNR4dg15XsTS8LVTH8Njy6VYaASWkbXEouEWr78AsUuUYq6Lf9QCv48Y4"
	testByronHex    = "82d818584283581ca1932430cb1ad6482a1b67964d778c18b574674fda151cdfa73c63cda101581e581cfc8a0b5477e819a27a34910e6c174b50b871192e95cca1a711bbceb3001abcb52f6d"
)

func TestAddressFromBech32(t *testing.T) {
	testDefs := []struct {
		address     string
		addressType uint8
		networkId   uint
		bytesHex    string
	}{
		{
			address:     "addr1qx2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzer3n0d3vllmyqwsx5wktcd8cc3sq835lu7drv2xwl2wywfgse35a3x",
			addressType: common.AddressTypeKeyKey,
			networkId:   common.AddressNetworkMainnet,
			bytesHex:    "01" + testPaymentHash + testStakeHash,
		},
		{
			address:     "addr1z8phkx6acpnf78fuvxn0mkew3l0fd058hzquvz7w36x4gten0d3vllmyqwsx5wktcd8cc3sq835lu7drv2xwl2wywfgs9yc0hh",
			addressType: common.AddressTypeScriptKey,
			networkId:   common.AddressNetworkMainnet,
			bytesHex:    "11c37b1b5dc0669f1d3c61a6fddb2e8fde96be87b881c60bce8e8d542f" + testStakeHash,
		},
		{
			address:     "addr1vx2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzers66hrl8",
			addressType: common.AddressTypeKeyNone,
			networkId:   common.AddressNetworkMainnet,
			bytesHex:    "61" + testPaymentHash,
		},
		{
			address:     "addr_test1vz2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzerspjrlsz",
			addressType: common.AddressTypeKeyNone,
			networkId:   common.AddressNetworkTestnet,
			bytesHex:    "60" + testPaymentHash,
		},
		{
			address:     "stake1uyehkck0lajq8gr28t9uxnuvgcqrc6070x3k9r8048z8y5gh6ffgw",
			addressType: common.AddressTypeNoneKey,
			networkId:   common.AddressNetworkMainnet,
			bytesHex:    "e1" + testStakeHash,
		},
	}
	for _, testDef := range testDefs {
		addr, err := common.NewAddress(testDef.address)
		require.NoError(t, err, testDef.address)
		assert.Equal(t, testDef.addressType, addr.Type())
		assert.Equal(t, testDef.networkId, addr.NetworkId())
		addrBytes, err := addr.Bytes()
		require.NoError(t, err)
		assert.Equal(t, testDef.bytesHex, hex.EncodeToString(addrBytes))
		assert.Equal(t, testDef.address, addr.String())
		// Parse from bytes gives the same string
		fromBytes, err := common.NewAddressFromBytes(addrBytes)
		require.NoError(t, err)
		assert.Equal(t, testDef.address, fromBytes.String())
	}
}

func TestAddressParts(t *testing.T) {
	addr, err := common.NewAddress(
		"addr1qx2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzer3n0d3vllmyqwsx5wktcd8cc3sq835lu7drv2xwl2wywfgse35a3x",
	)
	require.NoError(t, err)
	assert.Equal(t, testPaymentHash, addr.PaymentKeyHash().String())
	assert.Equal(t, testStakeHash, addr.StakeKeyHash().String())
	_, ok := addr.PaymentPayload().(common.AddressPayloadKeyHash)
	assert.True(t, ok)
	payment := addr.PaymentAddress()
	require.NotNil(t, payment)
	assert.Equal(t, "addr1vx2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzers66hrl8", payment.String())
	stake := addr.StakeAddress()
	require.NotNil(t, stake)
	assert.Equal(t, "stake1uyehkck0lajq8gr28t9uxnuvgcqrc6070x3k9r8048z8y5gh6ffgw", stake.String())
	// Enterprise addresses have no stake part
	assert.Nil(t, payment.StakeAddress())
	// Building from parts
	paymentHash, _ := hex.DecodeString(testPaymentHash)
	fromParts, err := common.NewAddressFromParts(
		common.AddressTypeKeyNone,
		common.AddressNetworkMainnet,
		paymentHash,
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, payment.String(), fromParts.String())
	_, err = common.NewAddressFromParts(common.AddressTypeKeyNone, 5, paymentHash, nil)
	require.Error(t, err)
}

func TestAddressPointer(t *testing.T) {
	addr, err := common.NewAddress(
		"addr1gx2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzer5pnz75xxcrzqf96k",
	)
	require.NoError(t, err)
	assert.Equal(t, uint8(common.AddressTypeKeyPointer), addr.Type())
	pointer, ok := addr.StakingPayload().(common.AddressPayloadPointer)
	require.True(t, ok)
	assert.Equal(
		t,
		common.AddressPayloadPointer{Slot: 2498243, TxIndex: 27, CertIndex: 3},
		pointer,
	)
	// Re-encoding from the parts gives the same pointer bytes
	paymentHash, _ := hex.DecodeString(testPaymentHash)
	rebuilt, err := common.NewAddressFromParts(
		common.AddressTypeKeyPointer,
		common.AddressNetworkMainnet,
		paymentHash,
		[]byte{0x81, 0x98, 0xbd, 0x43, 0x1b, 0x03},
	)
	require.NoError(t, err)
	assert.Equal(t, addr.String(), rebuilt.String())
	// Truncated pointer
	truncated := append(append([]byte{0x41}, paymentHash...), 0x81)
	_, err = common.NewAddressFromBytes(truncated)
	require.ErrorIs(t, err, common.ErrChainPointer)
}

func TestAddressByron(t *testing.T) {
	addr, err := common.NewAddress(testByronAddr)
	require.NoError(t, err)
	assert.True(t, addr.IsByron())
	assert.Equal(t, uint8(common.AddressTypeByron), addr.Type())
	assert.Equal(t, uint64(common.ByronAddressTypePubkey), addr.ByronType())
	assert.Len(t, addr.ByronAttr().Payload, 30)
	assert.Nil(t, addr.ByronAttr().Network)
	assert.Equal(t, uint(common.AddressNetworkMainnet), addr.NetworkId())
	addrBytes, err := addr.Bytes()
	require.NoError(t, err)
	assert.Equal(t, testByronHex, hex.EncodeToString(addrBytes))
	assert.Equal(t, testByronAddr, addr.String())
	assert.Equal(
		t,
		"a1932430cb1ad6482a1b67964d778c18b574674fda151cdfa73c63cd",
		addr.PaymentKeyHash().String(),
	)
	// Corrupt checksum
	corrupt := bytes.Clone(addrBytes)
	corrupt[len(corrupt)-1] ^= 0xff
	_, err = common.NewAddressFromBytes(corrupt)
	require.ErrorIs(t, err, common.ErrByronChecksum)
}

func TestAddressByronConstruction(t *testing.T) {
	pubkey := bytes.Repeat([]byte{0x42}, 32)
	magic := uint32(1097911063)
	addr, err := common.NewByronAddressRedeem(
		pubkey,
		common.ByronAddressAttributes{Network: &magic},
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(common.ByronAddressTypeRedeem), addr.ByronType())
	assert.Equal(t, uint(common.AddressNetworkTestnet), addr.NetworkId())
	parsed, err := common.NewAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, uint64(common.ByronAddressTypeRedeem), parsed.ByronType())
	require.NotNil(t, parsed.ByronAttr().Network)
	assert.Equal(t, magic, *parsed.ByronAttr().Network)
	assert.Equal(t, addr.PaymentKeyHash(), parsed.PaymentKeyHash())
	// Key length checks
	_, err = common.NewByronAddressRedeem(pubkey[:31], common.ByronAddressAttributes{})
	require.ErrorIs(t, err, common.ErrInvalidKey)
	_, err = common.NewByronAddressFromKey(pubkey, common.ByronAddressAttributes{})
	require.ErrorIs(t, err, common.ErrInvalidKey)
}

func TestAddressErrors(t *testing.T) {
	paymentHash, _ := hex.DecodeString(testPaymentHash)
	testDefs := []struct {
		name     string
		data     []byte
		expected error
	}{
		{"empty", nil, common.ErrAddressTooShort},
		{"short hash", []byte{0x61, 0x01, 0x02}, common.ErrAddressTooShort},
		{"missing stake hash", append([]byte{0x01}, paymentHash...), common.ErrAddressTooShort},
		{"reserved type", append([]byte{0x91}, paymentHash...), common.ErrAddressType},
		{"surplus bytes", append(append([]byte{0x61}, paymentHash...), 0x00), common.ErrAddressTooLong},
	}
	for _, testDef := range testDefs {
		_, err := common.NewAddressFromBytes(testDef.data)
		require.ErrorIs(t, err, testDef.expected, testDef.name)
	}
}

func TestAddressCborLenient(t *testing.T) {
	// Historical outputs may carry bytes after the address payload. Decoding keeps them
	paymentHash, _ := hex.DecodeString(testPaymentHash)
	addrBytes := append(append([]byte{0x61}, paymentHash...), 0xde, 0xad)
	w := cbor.NewWriter()
	w.WriteBytes(addrBytes)
	var addr common.Address
	require.NoError(t, addr.UnmarshalCBOR(w.Bytes()))
	assert.Equal(t, uint8(common.AddressTypeKeyNone), addr.Type())
	encoded, err := addr.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, w.Bytes(), encoded)
	assert.Equal(t, len(encoded), addr.CborLen())
	// Byron era outputs carry the address structure without a byte string wrapper
	byronBytes, _ := hex.DecodeString(testByronHex)
	var byron common.Address
	require.NoError(t, byron.UnmarshalCBOR(byronBytes))
	assert.True(t, byron.IsByron())
	encoded, err = byron.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, byronBytes, encoded)
}

func FuzzAddressFromBytes(f *testing.F) {
	paymentHash, _ := hex.DecodeString(testPaymentHash)
	byronBytes, _ := hex.DecodeString(testByronHex)
	f.Add(append([]byte{0x61}, paymentHash...))
	f.Add(append([]byte{0x41}, paymentHash...))
	f.Add(byronBytes)
	f.Fuzz(func(t *testing.T, data []byte) {
		addr, err := common.NewAddressFromBytes(data)
		if err != nil {
			return
		}
		encoded, err := addr.Bytes()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(encoded, data) {
			t.Fatalf("address bytes changed: %x != %x", encoded, data)
		}
	})
}
