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
	"encoding/json"
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
)

const MaxAssetNameLength = 32

type (
	MultiAssetTypeOutput = uint64
	MultiAssetTypeMint   = int64
)

// MultiAsset represents a collection of policies, assets, and quantities. It's used for
// TX outputs (uint64) and TX asset minting (int64 to allow for negative values for burning)
type MultiAsset[T int64 | uint64] struct {
	data map[Blake2b224]map[cbor.ByteString]T
}

// NewMultiAsset creates a MultiAsset with the specified data
func NewMultiAsset[T int64 | uint64](
	data map[Blake2b224]map[cbor.ByteString]T,
) MultiAsset[T] {
	if data == nil {
		data = make(map[Blake2b224]map[cbor.ByteString]T)
	}
	return MultiAsset[T]{data: data}
}

func (m *MultiAsset[T]) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	if err := m.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	return nil
}

// Decode reads a map of policy ID to a map of asset name to amount. Asset names may be
// at most 32 bytes long
func (m *MultiAsset[T]) Decode(rd *cbor.Reader) error {
	m.data = make(map[Blake2b224]map[cbor.ByteString]T)
	return rd.ForEachMapEntry(func(int) error {
		policyBytes, err := rd.ReadFixedBytes(Blake2b224Size)
		if err != nil {
			return cbor.NewFieldError("MultiAsset", "policy", err)
		}
		policy := NewBlake2b224(policyBytes)
		assets, ok := m.data[policy]
		if !ok {
			assets = make(map[cbor.ByteString]T)
			m.data[policy] = assets
		}
		return rd.ForEachMapEntry(func(int) error {
			name, err := rd.ReadBytes()
			if err != nil {
				return cbor.NewFieldError("MultiAsset", "asset_name", err)
			}
			if len(name) > MaxAssetNameLength {
				return cbor.NewFieldError("MultiAsset", "asset_name", ErrAssetNameLength)
			}
			amount, err := readAmount[T](rd)
			if err != nil {
				return cbor.NewFieldError("MultiAsset", "amount", err)
			}
			assets[cbor.NewByteString(name)] = amount
			return nil
		})
	})
}

func readAmount[T int64 | uint64](rd *cbor.Reader) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int64:
		v, err := rd.ReadInt()
		return T(v), err
	default:
		v, err := rd.ReadUint()
		return T(v), err
	}
}

func (m *MultiAsset[T]) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	m.Encode(w)
	return w.Bytes(), nil
}

// Encode writes the multi-asset with policies and asset names in canonical order
func (m *MultiAsset[T]) Encode(w *cbor.Writer) {
	policies := m.Policies()
	w.WriteMapHeader(len(policies))
	for _, policy := range policies {
		w.WriteBytes(policy.Bytes())
		names := m.Assets(policy)
		w.WriteMapHeader(len(names))
		for _, name := range names {
			w.WriteBytes(name)
			switch v := any(m.data[policy][cbor.NewByteString(name)]).(type) {
			case int64:
				w.WriteInt(v)
			case uint64:
				w.WriteUint(v)
			}
		}
	}
}

func (m *MultiAsset[T]) CborLen() int {
	w := cbor.NewWriter()
	m.Encode(w)
	return w.Len()
}

// Policies returns the policy IDs in canonical order
func (m *MultiAsset[T]) Policies() []Blake2b224 {
	if m == nil {
		return nil
	}
	ret := slices.Collect(maps.Keys(m.data))
	slices.SortFunc(
		ret,
		func(a, b Blake2b224) int { return bytes.Compare(a.Bytes(), b.Bytes()) },
	)
	return ret
}

// Assets returns the asset names under a policy in canonical order (shorter names first)
func (m *MultiAsset[T]) Assets(policyId Blake2b224) [][]byte {
	assets, ok := m.data[policyId]
	if !ok {
		return nil
	}
	ret := make([][]byte, 0, len(assets))
	for assetName := range assets {
		ret = append(ret, assetName.Bytes())
	}
	slices.SortFunc(ret, func(a, b []byte) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return bytes.Compare(a, b)
	})
	return ret
}

func (m *MultiAsset[T]) Asset(policyId Blake2b224, assetName []byte) T {
	policy, ok := m.data[policyId]
	if !ok {
		return 0
	}
	return policy[cbor.NewByteString(assetName)]
}

func (m *MultiAsset[T]) Add(assets *MultiAsset[T]) {
	if assets == nil {
		return
	}
	if m.data == nil {
		m.data = make(map[Blake2b224]map[cbor.ByteString]T)
	}
	for policy, policyAssets := range assets.data {
		if _, ok := m.data[policy]; !ok {
			m.data[policy] = make(map[cbor.ByteString]T)
		}
		for asset, amount := range policyAssets {
			m.data[policy][asset] += amount
		}
	}
}

// Compare returns true if both multi-assets hold the same non-zero amounts
func (m *MultiAsset[T]) Compare(assets *MultiAsset[T]) bool {
	tmpData := m.normalize()
	otherData := assets.normalize()
	if len(otherData) != len(tmpData) {
		return false
	}
	for policy, policyAssets := range otherData {
		if len(policyAssets) != len(tmpData[policy]) {
			return false
		}
		for asset, amount := range policyAssets {
			if tmpData[policy][asset] != amount {
				return false
			}
		}
	}
	return true
}

func (m *MultiAsset[T]) normalize() map[Blake2b224]map[cbor.ByteString]T {
	ret := map[Blake2b224]map[cbor.ByteString]T{}
	if m == nil {
		return ret
	}
	for policy, assets := range m.data {
		for asset, amount := range assets {
			if amount == 0 {
				continue
			}
			if _, ok := ret[policy]; !ok {
				ret[policy] = make(map[cbor.ByteString]T)
			}
			ret[policy][asset] = amount
		}
	}
	return ret
}

func (m *MultiAsset[T]) ToPlutusData() plutus.Data {
	policies := m.Policies()
	pairs := make([]plutus.DataPair, 0, len(policies))
	for _, policy := range policies {
		names := m.Assets(policy)
		slices.SortFunc(names, bytes.Compare)
		assetPairs := make([]plutus.DataPair, 0, len(names))
		for _, name := range names {
			amount := m.Asset(policy, name)
			var amountBig *big.Int
			switch v := any(amount).(type) {
			case int64:
				amountBig = big.NewInt(v)
			case uint64:
				amountBig = new(big.Int).SetUint64(v)
			}
			assetPairs = append(assetPairs, plutus.DataPair{
				Key:   plutus.NewDataBytes(name),
				Value: plutus.NewDataInteger(amountBig),
			})
		}
		pairs = append(pairs, plutus.DataPair{
			Key:   plutus.NewDataBytes(policy.Bytes()),
			Value: plutus.NewDataMap(assetPairs...),
		})
	}
	return plutus.NewDataMap(pairs...)
}

type multiAssetJson struct {
	Name        string `json:"name"`
	NameHex     string `json:"nameHex"`
	PolicyId    string `json:"policyId"`
	Fingerprint string `json:"fingerprint"`
	Amount      string `json:"amount"`
}

func (m MultiAsset[T]) MarshalJSON() ([]byte, error) {
	tmpAssets := []multiAssetJson{}
	for _, policyId := range m.Policies() {
		for _, assetName := range m.Assets(policyId) {
			amount := m.Asset(policyId, assetName)
			tmpAssets = append(tmpAssets, multiAssetJson{
				Name:     string(assetName),
				NameHex:  hex.EncodeToString(assetName),
				Amount:   fmt.Sprintf("%d", amount),
				PolicyId: policyId.String(),
				Fingerprint: NewAssetFingerprint(
					policyId.Bytes(),
					assetName,
				).String(),
			})
		}
	}
	return json.Marshal(&tmpAssets)
}

// String returns a stable, human-friendly representation of the MultiAsset
func (m *MultiAsset[T]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for _, pid := range m.Policies() {
		for _, name := range m.Assets(pid) {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(pid.String())
			b.WriteByte('.')
			b.WriteString(hex.EncodeToString(name))
			b.WriteByte('=')
			switch v := any(m.Asset(pid, name)).(type) {
			case int64:
				b.WriteString(strconv.FormatInt(v, 10))
			case uint64:
				b.WriteString(strconv.FormatUint(v, 10))
			}
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Value is an output amount: a bare coin, or [coin, multiasset] from the Mary era on
type Value struct {
	Coin   uint64
	Assets *MultiAsset[MultiAssetTypeOutput]
}

func (v *Value) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	if err := v.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	return nil
}

func (v *Value) Decode(rd *cbor.Reader) error {
	*v = Value{}
	major, err := rd.PeekType()
	if err != nil {
		return err
	}
	if major == cbor.MajorUint {
		v.Coin, err = rd.ReadUint()
		return err
	}
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return err
	}
	if v.Coin, err = rd.ReadUint(); err != nil {
		return cbor.NewFieldError("Value", "coin", err)
	}
	v.Assets = &MultiAsset[MultiAssetTypeOutput]{}
	if err := v.Assets.Decode(rd); err != nil {
		return cbor.NewFieldError("Value", "multiasset", err)
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (v Value) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	v.Encode(w)
	return w.Bytes(), nil
}

func (v Value) Encode(w *cbor.Writer) {
	if v.Assets == nil {
		w.WriteUint(v.Coin)
		return
	}
	w.WriteArrayHeader(2)
	w.WriteUint(v.Coin)
	v.Assets.Encode(w)
}

func (v Value) CborLen() int {
	if v.Assets == nil {
		return cbor.HeaderLen(v.Coin)
	}
	return 1 + cbor.HeaderLen(v.Coin) + v.Assets.CborLen()
}
