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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b256Size = 32
	Blake2b224Size = 28
	Blake2b160Size = 20
)

// decodeFixedBytes decodes a CBOR byte string of exactly len(dest) bytes into dest
func decodeFixedBytes(data []byte, dest []byte) error {
	rd := cbor.NewReader(data)
	b, err := rd.ReadFixedBytes(len(dest))
	if err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	copy(dest, b)
	return nil
}

func encodeFixedBytes(b []byte) ([]byte, error) {
	w := cbor.NewWriter()
	w.WriteBytes(b)
	return w.Bytes(), nil
}

func bech32Encode(prefix string, data []byte) string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(prefix, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func blake2bSum(size int, data ...[]byte) []byte {
	tmpHash, err := blake2b.New(size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	for _, d := range data {
		tmpHash.Write(d)
	}
	return tmpHash.Sum(nil)
}

type Blake2b256 [Blake2b256Size]byte

func NewBlake2b256(data []byte) Blake2b256 {
	b := Blake2b256{}
	copy(b[:], data)
	return b
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

func (b Blake2b256) ToPlutusData() plutus.Data {
	return plutus.NewDataBytes(b[:])
}

func (b Blake2b256) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Blake2b256) UnmarshalCBOR(data []byte) error {
	return decodeFixedBytes(data, b[:])
}

func (b Blake2b256) MarshalCBOR() ([]byte, error) {
	return encodeFixedBytes(b[:])
}

func (b Blake2b256) Bech32(prefix string) string {
	return bech32Encode(prefix, b[:])
}

// Blake2b256Hash generates a Blake2b-256 hash from the provided data
func Blake2b256Hash(data []byte) Blake2b256 {
	return Blake2b256(blake2bSum(Blake2b256Size, data))
}

type Blake2b224 [Blake2b224Size]byte

func NewBlake2b224(data []byte) Blake2b224 {
	b := Blake2b224{}
	copy(b[:], data)
	return b
}

func (b Blake2b224) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b224) Bytes() []byte {
	return b[:]
}

func (b Blake2b224) ToPlutusData() plutus.Data {
	return plutus.NewDataBytes(b[:])
}

func (b Blake2b224) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Blake2b224) UnmarshalCBOR(data []byte) error {
	return decodeFixedBytes(data, b[:])
}

func (b Blake2b224) MarshalCBOR() ([]byte, error) {
	return encodeFixedBytes(b[:])
}

func (b Blake2b224) Bech32(prefix string) string {
	return bech32Encode(prefix, b[:])
}

// Blake2b224Hash generates a Blake2b-224 hash from the provided data
func Blake2b224Hash(data []byte) Blake2b224 {
	return Blake2b224(blake2bSum(Blake2b224Size, data))
}

// GenesisHash is a type alias for the Blake2b-224 hash used for genesis keys
type GenesisHash = Blake2b224

type Blake2b160 [Blake2b160Size]byte

func NewBlake2b160(data []byte) Blake2b160 {
	b := Blake2b160{}
	copy(b[:], data)
	return b
}

func (b Blake2b160) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b160) Bytes() []byte {
	return b[:]
}

func (b *Blake2b160) UnmarshalCBOR(data []byte) error {
	return decodeFixedBytes(data, b[:])
}

func (b Blake2b160) MarshalCBOR() ([]byte, error) {
	return encodeFixedBytes(b[:])
}

// Blake2b160Hash generates a Blake2b-160 hash from the provided data
func Blake2b160Hash(data []byte) Blake2b160 {
	return Blake2b160(blake2bSum(Blake2b160Size, data))
}

// Signature is an Ed25519 signature
type Signature [64]byte

func (s Signature) Bytes() []byte {
	return s[:]
}

func (s *Signature) UnmarshalCBOR(data []byte) error {
	return decodeFixedBytes(data, s[:])
}

func (s Signature) MarshalCBOR() ([]byte, error) {
	return encodeFixedBytes(s[:])
}

// VerificationKey is an Ed25519 public key
type VerificationKey [32]byte

func (k VerificationKey) Bytes() []byte {
	return k[:]
}

func (k VerificationKey) Hash() Blake2b224 {
	return Blake2b224Hash(k[:])
}

func (k *VerificationKey) UnmarshalCBOR(data []byte) error {
	return decodeFixedBytes(data, k[:])
}

func (k VerificationKey) MarshalCBOR() ([]byte, error) {
	return encodeFixedBytes(k[:])
}

type AssetFingerprint struct {
	policyId  []byte
	assetName []byte
}

func NewAssetFingerprint(policyId []byte, assetName []byte) AssetFingerprint {
	return AssetFingerprint{
		policyId:  policyId,
		assetName: assetName,
	}
}

func (a AssetFingerprint) Hash() Blake2b160 {
	return Blake2b160(blake2bSum(Blake2b160Size, a.policyId, a.assetName))
}

func (a AssetFingerprint) String() string {
	return bech32Encode("asset", a.Hash().Bytes())
}

type PoolId [28]byte

func NewPoolIdFromBech32(poolId string) (PoolId, error) {
	var p PoolId
	_, data, err := bech32.DecodeNoLimit(poolId)
	if err != nil {
		return p, err
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return p, err
	}
	if len(decoded) != len(p) {
		return p, fmt.Errorf("invalid pool ID length: %d", len(decoded))
	}
	p = PoolId(decoded)
	return p, err
}

func (p PoolId) String() string {
	return Blake2b224(p).Bech32("pool")
}

// ExUnits represents the steps and memory usage for script execution
type ExUnits struct {
	cbor.StructAsArray
	Memory uint64
	Steps  uint64
}

// ToBudget converts the execution units into an evaluation budget
func (e ExUnits) ToBudget() plutus.Budget {
	return plutus.Budget{
		Cpu: int64(min(e.Steps, math.MaxInt64)),  // #nosec G115
		Mem: int64(min(e.Memory, math.MaxInt64)), // #nosec G115
	}
}

// ToUtxorpcBigInt converts a uint64 into a *utxorpc.BigInt pointer
func ToUtxorpcBigInt(v uint64) *utxorpc.BigInt {
	if v <= math.MaxInt64 {
		return &utxorpc.BigInt{
			BigInt: &utxorpc.BigInt_Int{Int: int64(v)},
		}
	}
	return &utxorpc.BigInt{
		BigInt: &utxorpc.BigInt_BigUInt{
			BigUInt: new(big.Int).SetUint64(v).Bytes(),
		},
	}
}

// BigIntToUtxorpcBigInt converts a *big.Int into a *utxorpc.BigInt pointer
func BigIntToUtxorpcBigInt(v *big.Int) *utxorpc.BigInt {
	if v == nil {
		return &utxorpc.BigInt{
			BigInt: &utxorpc.BigInt_Int{Int: 0},
		}
	}
	if v.IsInt64() {
		return &utxorpc.BigInt{
			BigInt: &utxorpc.BigInt_Int{Int: v.Int64()},
		}
	}
	return &utxorpc.BigInt{
		BigInt: &utxorpc.BigInt_BigUInt{
			BigUInt: v.Bytes(),
		},
	}
}
