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
	"errors"
	"fmt"
	"hash/crc32"
	"math/big"
	"strings"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
	"golang.org/x/crypto/sha3"
)

const (
	AddressHeaderTypeMask    = 0xF0
	AddressHeaderNetworkMask = 0x0F
	AddressHashSize          = 28

	AddressNetworkTestnet = 0
	AddressNetworkMainnet = 1

	AddressTypeKeyKey        = 0b0000
	AddressTypeScriptKey     = 0b0001
	AddressTypeKeyScript     = 0b0010
	AddressTypeScriptScript  = 0b0011
	AddressTypeKeyPointer    = 0b0100
	AddressTypeScriptPointer = 0b0101
	AddressTypeKeyNone       = 0b0110
	AddressTypeScriptNone    = 0b0111
	AddressTypeByron         = 0b1000
	AddressTypeNoneKey       = 0b1110
	AddressTypeNoneScript    = 0b1111

	ByronAddressTypePubkey = 0
	ByronAddressTypeScript = 1
	ByronAddressTypeRedeem = 2
)

type AddrKeyHash = Blake2b224

// Address is a Shelley-style or Byron-style address. The bytes an address was decoded
// from are kept so that it re-encodes exactly
type Address struct {
	addressType      uint8
	networkId        uint8
	paymentPayload   AddressPayload
	stakingPayload   AddressPayload
	extraData        []byte
	byronAddressType uint64
	byronAddressAttr ByronAddressAttributes
	byronRoot        Blake2b224
	// Byron addresses in Byron era outputs are not wrapped in a byte string
	byronBare bool
	raw       []byte
}

// NewAddress returns an Address based on the provided bech32/base58 address string
// It detects if the string has mixed case assumes it is a base58 encoded address
// otherwise, it assumes it is bech32 encoded
func NewAddress(addr string) (Address, error) {
	var decoded []byte
	if strings.ToLower(addr) != addr {
		// Mixed case detected: Assume Base58 encoding (e.g., Byron addresses)
		decoded = base58.Decode(addr)
	} else {
		_, data, err := bech32.DecodeNoLimit(addr)
		if err != nil {
			return Address{}, err
		}
		decoded, err = bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return Address{}, err
		}
	}
	return NewAddressFromBytes(decoded)
}

// NewAddressFromBytes returns an Address based on the raw bytes provided. Surplus bytes
// after the address payload are rejected
func NewAddressFromBytes(addrBytes []byte) (Address, error) {
	var ret Address
	if err := ret.populateFromBytes(addrBytes, true); err != nil {
		return Address{}, err
	}
	return ret, nil
}

// NewAddressFromParts returns an Address based on the individual parts of the address that are provided
func NewAddressFromParts(
	addrType uint8,
	networkId uint8,
	paymentAddr []byte,
	stakingAddr []byte,
) (Address, error) {
	if networkId != AddressNetworkTestnet &&
		networkId != AddressNetworkMainnet {
		return Address{}, errors.New("invalid network ID")
	}
	buf := bytes.NewBuffer(nil)
	header := (addrType << 4) | (networkId & AddressHeaderNetworkMask)
	buf.WriteByte(header)
	buf.Write(paymentAddr)
	buf.Write(stakingAddr)
	return NewAddressFromBytes(buf.Bytes())
}

// NewByronAddressFromKey builds a Byron public key address from a 64-byte extended
// verification key (public key followed by chain code)
func NewByronAddressFromKey(
	xvk []byte,
	attr ByronAddressAttributes,
) (Address, error) {
	if len(xvk) != 64 {
		return Address{}, fmt.Errorf(
			"%w: extended key length %d",
			ErrInvalidKey,
			len(xvk),
		)
	}
	if _, err := new(edwards25519.Point).SetBytes(xvk[:32]); err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return newByronAddress(ByronAddressTypePubkey, xvk, attr)
}

// NewByronAddressRedeem builds a Byron redeem address from a 32-byte verification key
func NewByronAddressRedeem(
	pubkey []byte,
	attr ByronAddressAttributes,
) (Address, error) {
	if len(pubkey) != 32 {
		return Address{}, fmt.Errorf(
			"%w: redeem key length %d",
			ErrInvalidKey,
			len(pubkey),
		)
	}
	return newByronAddress(ByronAddressTypeRedeem, pubkey, attr)
}

func newByronAddress(
	addrType uint64,
	spendingKey []byte,
	attr ByronAddressAttributes,
) (Address, error) {
	spendingType := uint64(0)
	if addrType == ByronAddressTypeRedeem {
		spendingType = 1
	}
	attrBytes, err := attr.MarshalCBOR()
	if err != nil {
		return Address{}, err
	}
	// Root is [address_type, [spending_type, key], attributes]
	w := cbor.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteUint(addrType)
	w.WriteArrayHeader(2)
	w.WriteUint(spendingType)
	w.WriteBytes(spendingKey)
	w.WriteRaw(attrBytes)
	sha3Sum := sha3.Sum256(w.Bytes())
	ret := Address{
		addressType:      AddressTypeByron,
		byronAddressType: addrType,
		byronAddressAttr: attr,
		byronRoot:        Blake2b224Hash(sha3Sum[:]),
	}
	ret.paymentPayload = AddressPayloadKeyHash{Hash: ret.byronRoot}
	return ret, nil
}

func (a *Address) populateFromBytes(data []byte, strict bool) error {
	*a = Address{}
	if len(data) == 0 {
		return ErrAddressTooShort
	}
	header := data[0]
	a.addressType = (header & AddressHeaderTypeMask) >> 4
	a.networkId = header & AddressHeaderNetworkMask
	if a.addressType == AddressTypeByron {
		if err := a.decodeByron(cbor.NewReader(data), strict); err != nil {
			return err
		}
		a.raw = append([]byte(nil), data...)
		return nil
	}
	payload := data[1:]
	takeHash := func() (Blake2b224, error) {
		if len(payload) < AddressHashSize {
			return Blake2b224{}, fmt.Errorf(
				"%w: %d bytes remaining for hash",
				ErrAddressTooShort,
				len(payload),
			)
		}
		ret := NewBlake2b224(payload[:AddressHashSize])
		payload = payload[AddressHashSize:]
		return ret, nil
	}
	// Payment payload
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeKeyScript, AddressTypeKeyPointer, AddressTypeKeyNone:
		hash, err := takeHash()
		if err != nil {
			return err
		}
		a.paymentPayload = AddressPayloadKeyHash{Hash: hash}
	case AddressTypeScriptKey, AddressTypeScriptScript, AddressTypeScriptPointer, AddressTypeScriptNone:
		hash, err := takeHash()
		if err != nil {
			return err
		}
		a.paymentPayload = AddressPayloadScriptHash{Hash: hash}
	case AddressTypeNoneKey, AddressTypeNoneScript:
	default:
		return fmt.Errorf("%w: header type %04b", ErrAddressType, a.addressType)
	}
	// Staking payload
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeNoneKey:
		hash, err := takeHash()
		if err != nil {
			return err
		}
		a.stakingPayload = AddressPayloadKeyHash{Hash: hash}
	case AddressTypeKeyScript, AddressTypeScriptScript, AddressTypeNoneScript:
		hash, err := takeHash()
		if err != nil {
			return err
		}
		a.stakingPayload = AddressPayloadScriptHash{Hash: hash}
	case AddressTypeKeyPointer, AddressTypeScriptPointer:
		var tmpPointer AddressPayloadPointer
		n, err := tmpPointer.decode(payload)
		if err != nil {
			return err
		}
		a.stakingPayload = tmpPointer
		payload = payload[n:]
	}
	// Some historical outputs carry bytes after the address payload
	// https://github.com/IntersectMBO/cardano-ledger/issues/2729
	if len(payload) > 0 {
		if strict {
			return fmt.Errorf("%w: %d extra bytes", ErrAddressTooLong, len(payload))
		}
		a.extraData = append([]byte(nil), payload...)
	}
	a.raw = append([]byte(nil), data...)
	return nil
}

// decodeByron reads [tag24(payload), crc32] and the payload [root, attributes, type]
func (a *Address) decodeByron(rd *cbor.Reader, strict bool) error {
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return cbor.NewFieldError("ByronAddress", "payload", err)
	}
	if err := rd.ExpectTag(cbor.CborTagCbor); err != nil {
		return cbor.NewFieldError("ByronAddress", "payload", err)
	}
	payloadBytes, err := rd.ReadBytes()
	if err != nil {
		return cbor.NewFieldError("ByronAddress", "payload", err)
	}
	checksum, err := rd.ReadUint32()
	if err != nil {
		return cbor.NewFieldError("ByronAddress", "checksum", err)
	}
	if n < 0 {
		if err := rd.ReadBreak(); err != nil {
			return err
		}
	}
	if strict && !rd.Done() {
		return fmt.Errorf("%w: %d extra bytes", ErrAddressTooLong, rd.Remaining())
	}
	if crc32.ChecksumIEEE(payloadBytes) != checksum {
		return ErrByronChecksum
	}
	prd := cbor.NewReader(payloadBytes)
	if _, err := prd.ExpectArray(3, 3); err != nil {
		return cbor.NewFieldError("ByronAddressPayload", "root", err)
	}
	root, err := prd.ReadFixedBytes(AddressHashSize)
	if err != nil {
		return cbor.NewFieldError("ByronAddressPayload", "root", err)
	}
	attrRaw, err := prd.ReadRaw()
	if err != nil {
		return cbor.NewFieldError("ByronAddressPayload", "attributes", err)
	}
	if err := a.byronAddressAttr.UnmarshalCBOR(attrRaw); err != nil {
		return cbor.NewFieldError("ByronAddressPayload", "attributes", err)
	}
	a.byronAddressType, err = prd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("ByronAddressPayload", "type", err)
	}
	a.byronRoot = NewBlake2b224(root)
	a.paymentPayload = AddressPayloadKeyHash{Hash: a.byronRoot}
	return nil
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	major, err := rd.PeekType()
	if err != nil {
		return err
	}
	if major == cbor.MajorArray {
		// Byron era outputs carry the address structure directly
		if err := a.populateFromBytes(data, true); err != nil {
			return err
		}
		a.byronBare = true
		return nil
	}
	addrBytes, err := rd.ReadBytes()
	if err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	return a.populateFromBytes(addrBytes, false)
}

func (a *Address) MarshalCBOR() ([]byte, error) {
	addrBytes, err := a.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to get address bytes: %w", err)
	}
	if a.byronBare {
		return addrBytes, nil
	}
	w := cbor.NewWriter()
	w.WriteBytes(addrBytes)
	return w.Bytes(), nil
}

// CborLen returns the length of the encoded address
func (a Address) CborLen() int {
	addrBytes, err := a.Bytes()
	if err != nil {
		return 0
	}
	if a.byronBare {
		return len(addrBytes)
	}
	return cbor.BytesLen(len(addrBytes))
}

func (a *Address) ToPlutusData() plutus.Data {
	if a.addressType == AddressTypeByron {
		// There is no data representation for Byron addresses
		return nil
	}
	var paymentPd plutus.Data
	switch p := a.paymentPayload.(type) {
	case AddressPayloadKeyHash:
		paymentPd = NewKeyCredential(p.Hash).ToPlutusData()
	case AddressPayloadScriptHash:
		paymentPd = NewScriptCredential(p.Hash).ToPlutusData()
	default:
		return nil
	}
	// Maybe StakingCredential
	var stakePd plutus.Data
	switch p := a.stakingPayload.(type) {
	case AddressPayloadKeyHash:
		stakePd = plutus.NewDataConstr(0, NewKeyCredential(p.Hash).ToPlutusData())
	case AddressPayloadScriptHash:
		stakePd = plutus.NewDataConstr(0, NewScriptCredential(p.Hash).ToPlutusData())
	case AddressPayloadPointer:
		stakePd = plutus.NewDataConstr(
			1,
			plutus.NewDataInteger(new(big.Int).SetUint64(p.Slot)),
			plutus.NewDataInteger(new(big.Int).SetUint64(p.TxIndex)),
			plutus.NewDataInteger(new(big.Int).SetUint64(p.CertIndex)),
		)
	}
	maybeStake := plutus.NewDataConstr(1)
	if stakePd != nil {
		maybeStake = plutus.NewDataConstr(0, stakePd)
	}
	return plutus.NewDataConstr(0, paymentPd, maybeStake)
}

func (a Address) NetworkId() uint {
	if a.addressType == AddressTypeByron {
		// Use Shelley network ID convention
		if a.byronAddressAttr.Network == nil {
			return AddressNetworkMainnet
		}
		// Network magic is only included on testnets
		return AddressNetworkTestnet
	}
	return uint(a.networkId)
}

func (a Address) Type() uint8 {
	return a.addressType
}

func (a Address) IsByron() bool {
	return a.addressType == AddressTypeByron
}

func (a Address) ByronType() uint64 {
	return a.byronAddressType
}

func (a Address) ByronAttr() ByronAddressAttributes {
	return a.byronAddressAttr
}

// PaymentAddress returns a new Address with only the payment address portion. This will return nil for anything other than payment and script addresses
func (a Address) PaymentAddress() *Address {
	var addrType uint8
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeKeyScript, AddressTypeKeyPointer, AddressTypeKeyNone:
		addrType = AddressTypeKeyNone
	case AddressTypeScriptKey, AddressTypeScriptScript, AddressTypeScriptPointer, AddressTypeScriptNone:
		addrType = AddressTypeScriptNone
	default:
		return nil
	}
	return &Address{
		addressType:    addrType,
		networkId:      a.networkId,
		paymentPayload: a.paymentPayload,
	}
}

// PaymentKeyHash returns the hash in the payment part of the address
func (a Address) PaymentKeyHash() Blake2b224 {
	switch p := a.paymentPayload.(type) {
	case AddressPayloadKeyHash:
		return p.Hash
	case AddressPayloadScriptHash:
		return p.Hash
	}
	return Blake2b224{}
}

func (a Address) PaymentPayload() AddressPayload {
	return a.paymentPayload
}

// StakeAddress returns a new Address with only the stake key portion. This will return nil if the address has no stake credential
func (a Address) StakeAddress() *Address {
	var addrType uint8
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeNoneKey:
		addrType = AddressTypeNoneKey
	case AddressTypeKeyScript, AddressTypeScriptScript, AddressTypeNoneScript:
		addrType = AddressTypeNoneScript
	default:
		return nil
	}
	return &Address{
		addressType:    addrType,
		networkId:      a.networkId,
		stakingPayload: a.stakingPayload,
	}
}

// StakeKeyHash returns the hash in the staking part of the address
func (a Address) StakeKeyHash() Blake2b224 {
	switch p := a.stakingPayload.(type) {
	case AddressPayloadKeyHash:
		return p.Hash
	case AddressPayloadScriptHash:
		return p.Hash
	}
	return Blake2b224{}
}

func (a Address) StakingPayload() AddressPayload {
	return a.stakingPayload
}

func (a Address) generateHRP() string {
	var ret string
	if a.addressType == AddressTypeNoneKey ||
		a.addressType == AddressTypeNoneScript {
		ret = "stake"
	} else {
		ret = "addr"
	}
	if a.networkId != AddressNetworkMainnet {
		ret += "_test"
	}
	return ret
}

// Bytes returns the underlying bytes for the address
func (a Address) Bytes() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	if a.addressType == AddressTypeByron {
		attrBytes, err := a.byronAddressAttr.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		pw := cbor.NewWriter()
		pw.WriteArrayHeader(3)
		pw.WriteBytes(a.byronRoot.Bytes())
		pw.WriteRaw(attrBytes)
		pw.WriteUint(a.byronAddressType)
		w := cbor.NewWriter()
		w.WriteArrayHeader(2)
		w.WriteTag(cbor.CborTagCbor)
		w.WriteBytes(pw.Bytes())
		w.WriteUint(uint64(crc32.ChecksumIEEE(pw.Bytes())))
		return w.Bytes(), nil
	}
	buf := bytes.NewBuffer(nil)
	header := (a.addressType << 4) | (a.networkId & AddressHeaderNetworkMask)
	buf.WriteByte(header)
	switch p := a.paymentPayload.(type) {
	case AddressPayloadKeyHash:
		buf.Write(p.Hash.Bytes())
	case AddressPayloadScriptHash:
		buf.Write(p.Hash.Bytes())
	}
	switch p := a.stakingPayload.(type) {
	case AddressPayloadKeyHash:
		buf.Write(p.Hash.Bytes())
	case AddressPayloadScriptHash:
		buf.Write(p.Hash.Bytes())
	case AddressPayloadPointer:
		buf.Write(p.encode())
	}
	buf.Write(a.extraData)
	return buf.Bytes(), nil
}

// String returns the bech32-encoded version of the address, or base58 for Byron addresses
func (a Address) String() string {
	data, err := a.Bytes()
	if err != nil {
		panic(fmt.Sprintf("failed to get address bytes: %v", err))
	}
	if a.addressType == AddressTypeByron {
		return base58.Encode(data)
	}
	return bech32Encode(a.generateHRP(), data)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// ByronAddressAttributes holds the optional Byron address attributes. The network magic
// is stored as CBOR inside a byte string
type ByronAddressAttributes struct {
	Distribution []byte
	Payload      []byte
	Network      *uint32
}

func (a *ByronAddressAttributes) UnmarshalCBOR(data []byte) error {
	*a = ByronAddressAttributes{}
	rd := cbor.NewReader(data)
	err := rd.ForEachMapEntry(func(int) error {
		key, err := rd.ReadUint()
		if err != nil {
			return err
		}
		switch key {
		case 0:
			a.Distribution, err = rd.ReadBytes()
			return cbor.NewFieldError("ByronAddressAttributes", "distribution", err)
		case 1:
			a.Payload, err = rd.ReadBytes()
			return cbor.NewFieldError("ByronAddressAttributes", "derivation_path", err)
		case 2:
			networkRaw, err := rd.ReadBytes()
			if err != nil {
				return cbor.NewFieldError("ByronAddressAttributes", "network_magic", err)
			}
			nrd := cbor.NewReader(networkRaw)
			magic, err := nrd.ReadUint32()
			if err != nil {
				return cbor.NewFieldError("ByronAddressAttributes", "network_magic", err)
			}
			a.Network = &magic
			return nil
		}
		return &cbor.InvalidTagError{Type: "ByronAddressAttributes", Tag: key}
	})
	if err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	return nil
}

func (a *ByronAddressAttributes) MarshalCBOR() ([]byte, error) {
	count := 0
	if a.Distribution != nil {
		count++
	}
	if a.Payload != nil {
		count++
	}
	if a.Network != nil {
		count++
	}
	w := cbor.NewWriter()
	w.WriteMapHeader(count)
	if a.Distribution != nil {
		w.WriteUint(0)
		w.WriteBytes(a.Distribution)
	}
	if a.Payload != nil {
		w.WriteUint(1)
		w.WriteBytes(a.Payload)
	}
	if a.Network != nil {
		nw := cbor.NewWriter()
		nw.WriteUint(uint64(*a.Network))
		w.WriteUint(2)
		w.WriteBytes(nw.Bytes())
	}
	return w.Bytes(), nil
}

type AddressPayload interface {
	isAddressPayload()
}

type AddressPayloadKeyHash struct {
	Hash AddrKeyHash
}

func (AddressPayloadKeyHash) isAddressPayload() {}

type AddressPayloadScriptHash struct {
	Hash ScriptHash
}

func (AddressPayloadScriptHash) isAddressPayload() {}

// AddressPayloadPointer locates a stake registration certificate on chain
type AddressPayloadPointer struct {
	Slot      uint64
	TxIndex   uint64
	CertIndex uint64
}

func (AddressPayloadPointer) isAddressPayload() {}

// decode reads three variable-length naturals and returns the number of bytes consumed
func (a *AddressPayloadPointer) decode(data []byte) (int, error) {
	pos := 0
	readVarUint := func() (uint64, error) {
		var ret uint64
		for {
			if pos >= len(data) {
				return 0, fmt.Errorf("%w: truncated", ErrChainPointer)
			}
			byt := data[pos]
			pos++
			if ret > (^uint64(0))>>7 {
				return 0, fmt.Errorf("%w: value overflows", ErrChainPointer)
			}
			ret = (ret << 7) | uint64(byt&0x7F)
			if (byt & 0x80) == 0 {
				return ret, nil
			}
		}
	}
	var err error
	if a.Slot, err = readVarUint(); err != nil {
		return 0, err
	}
	if a.TxIndex, err = readVarUint(); err != nil {
		return 0, err
	}
	if a.CertIndex, err = readVarUint(); err != nil {
		return 0, err
	}
	return pos, nil
}

func (a AddressPayloadPointer) encode() []byte {
	ret := make([]byte, 0, 16)
	for _, val := range []uint64{a.Slot, a.TxIndex, a.CertIndex} {
		var tmp [10]byte
		i := len(tmp) - 1
		tmp[i] = byte(val & 0x7F)
		val >>= 7
		for val > 0 {
			i--
			tmp[i] = byte(val&0x7F) | 0x80
			val >>= 7
		}
		ret = append(ret, tmp[i:]...)
	}
	return ret
}
