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

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

type RedeemerTag uint8

const (
	RedeemerTagSpend     RedeemerTag = 0
	RedeemerTagMint      RedeemerTag = 1
	RedeemerTagCert      RedeemerTag = 2
	RedeemerTagReward    RedeemerTag = 3
	RedeemerTagVoting    RedeemerTag = 4
	RedeemerTagProposing RedeemerTag = 5
)

func (t RedeemerTag) String() string {
	switch t {
	case RedeemerTagSpend:
		return "spend"
	case RedeemerTagMint:
		return "mint"
	case RedeemerTagCert:
		return "cert"
	case RedeemerTagReward:
		return "reward"
	case RedeemerTagVoting:
		return "voting"
	case RedeemerTagProposing:
		return "proposing"
	}
	return fmt.Sprintf("RedeemerTag(%d)", t)
}

// Redeemer is the argument passed to a script, along with its execution budget
type Redeemer struct {
	cbor.StructAsArray
	Tag     RedeemerTag
	Index   uint32
	Data    Datum
	ExUnits ExUnits
}

type RedeemerKey struct {
	cbor.StructAsArray
	Tag   RedeemerTag
	Index uint32
}

type RedeemerValue struct {
	cbor.StructAsArray
	Data    Datum
	ExUnits ExUnits
}

// Redeemers is the witness set redeemer collection. It is either the legacy array form
// [* [tag, index, data, ex_units]] or the map form {[tag, index] => [data, ex_units]}
// used from Conway on. The form seen on decode is kept for re-encoding
type Redeemers struct {
	cbor.DecodeStoreCbor
	items  []Redeemer
	mapped bool
}

func NewRedeemers(items ...Redeemer) Redeemers {
	return Redeemers{items: items}
}

// NewRedeemersMap builds a redeemer collection that encodes in the map form
func NewRedeemersMap(items ...Redeemer) Redeemers {
	return Redeemers{items: items, mapped: true}
}

func (r *Redeemers) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	major, err := rd.PeekType()
	if err != nil {
		return err
	}
	r.items = nil
	switch major {
	case cbor.MajorArray:
		r.mapped = false
		err = rd.ForEachArrayItem(func(i int) error {
			var tmp Redeemer
			if err := cbor.DecodeRecord(rd, "Redeemer", &tmp); err != nil {
				return err
			}
			r.items = append(r.items, tmp)
			return nil
		})
	case cbor.MajorMap:
		r.mapped = true
		err = rd.ForEachMapEntry(func(i int) error {
			var key RedeemerKey
			var value RedeemerValue
			if err := cbor.DecodeRecord(rd, "RedeemerKey", &key); err != nil {
				return err
			}
			if err := cbor.DecodeRecord(rd, "RedeemerValue", &value); err != nil {
				return err
			}
			r.items = append(r.items, Redeemer{
				Tag:     key.Tag,
				Index:   key.Index,
				Data:    value.Data,
				ExUnits: value.ExUnits,
			})
			return nil
		})
	default:
		return &cbor.TypeMismatchError{
			Expected: cbor.MajorArray,
			Found:    major,
			Offset:   start,
		}
	}
	if err != nil {
		return cbor.NewFieldError("Redeemers", "redeemer", err)
	}
	r.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

func (r *Redeemers) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	if err := r.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return fmt.Errorf("Redeemers: %w", cbor.ErrTrailingData)
	}
	return nil
}

func (r *Redeemers) MarshalCBOR() ([]byte, error) {
	if r.Cbor() != nil {
		return r.Cbor(), nil
	}
	w := cbor.NewWriter()
	if r.mapped {
		w.WriteMapHeader(len(r.items))
		for i := range r.items {
			item := &r.items[i]
			key := RedeemerKey{Tag: item.Tag, Index: item.Index}
			value := RedeemerValue{Data: item.Data, ExUnits: item.ExUnits}
			if err := cbor.EncodeRecord(w, &key); err != nil {
				return nil, err
			}
			if err := cbor.EncodeRecord(w, &value); err != nil {
				return nil, err
			}
		}
		return w.Bytes(), nil
	}
	w.WriteArrayHeader(len(r.items))
	for i := range r.items {
		if err := cbor.EncodeRecord(w, &r.items[i]); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// IsMap returns true for the map form
func (r *Redeemers) IsMap() bool {
	return r.mapped
}

func (r *Redeemers) Items() []Redeemer {
	return r.items
}

func (r *Redeemers) Len() int {
	return len(r.items)
}

// Indexes returns the indexes of all redeemers with the given tag
func (r *Redeemers) Indexes(tag RedeemerTag) []uint32 {
	var ret []uint32
	for _, item := range r.items {
		if item.Tag == tag {
			ret = append(ret, item.Index)
		}
	}
	return ret
}

// Get returns the redeemer for the given tag and index
func (r *Redeemers) Get(tag RedeemerTag, index uint32) (*Redeemer, bool) {
	for i := range r.items {
		if r.items[i].Tag == tag && r.items[i].Index == index {
			return &r.items[i], true
		}
	}
	return nil, false
}

// TotalExUnits returns the sum of the execution budgets of all redeemers
func (r *Redeemers) TotalExUnits() ExUnits {
	var ret ExUnits
	for _, item := range r.items {
		ret.Memory += item.ExUnits.Memory
		ret.Steps += item.ExUnits.Steps
	}
	return ret
}
