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
	"math/big"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

// Metadata strings and byte strings are limited to 64 bytes
const MaxMetadatumLength = 64

type TransactionMetadatum interface {
	isTransactionMetadatum()
	TypeName() string
}

type MetaInt struct{ Value *big.Int }

type MetaBytes struct{ Value []byte }

type MetaText struct{ Value string }

type MetaList struct {
	Items []TransactionMetadatum
}

type MetaPair struct {
	Key   TransactionMetadatum
	Value TransactionMetadatum
}

type MetaMap struct {
	Pairs []MetaPair
}

func (MetaInt) isTransactionMetadatum()   {}
func (MetaBytes) isTransactionMetadatum() {}
func (MetaText) isTransactionMetadatum()  {}
func (MetaList) isTransactionMetadatum()  {}
func (MetaMap) isTransactionMetadatum()   {}

func (m MetaInt) TypeName() string   { return "int" }
func (m MetaBytes) TypeName() string { return "bytes" }
func (m MetaText) TypeName() string  { return "text" }
func (m MetaList) TypeName() string  { return "list" }
func (m MetaMap) TypeName() string   { return "map" }

// DecodeMetadatum reads one metadatum value
func DecodeMetadatum(rd *cbor.Reader) (TransactionMetadatum, error) {
	major, err := rd.PeekType()
	if err != nil {
		return nil, err
	}
	switch major {
	case cbor.MajorUint:
		v, err := rd.ReadUint()
		if err != nil {
			return nil, err
		}
		return MetaInt{Value: new(big.Int).SetUint64(v)}, nil
	case cbor.MajorNegInt:
		n, err := rd.ReadNegative()
		if err != nil {
			return nil, err
		}
		// Value is -1 - n
		v := new(big.Int).SetUint64(n)
		v.Neg(v).Sub(v, big.NewInt(1))
		return MetaInt{Value: v}, nil
	case cbor.MajorByteString:
		b, err := rd.ReadBytes()
		if err != nil {
			return nil, err
		}
		if len(b) > MaxMetadatumLength {
			return nil, fmt.Errorf("%w: metadata bytes of length %d", cbor.ErrOverflow, len(b))
		}
		return MetaBytes{Value: b}, nil
	case cbor.MajorTextString:
		s, err := cbor.ReadBoundedText(rd, MaxMetadatumLength)
		if err != nil {
			return nil, err
		}
		return MetaText{Value: s}, nil
	case cbor.MajorArray:
		items := []TransactionMetadatum{}
		err := rd.ForEachArrayItem(func(int) error {
			item, err := DecodeMetadatum(rd)
			if err != nil {
				return err
			}
			items = append(items, item)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return MetaList{Items: items}, nil
	case cbor.MajorMap:
		pairs := []MetaPair{}
		err := rd.ForEachMapEntry(func(int) error {
			k, err := DecodeMetadatum(rd)
			if err != nil {
				return err
			}
			v, err := DecodeMetadatum(rd)
			if err != nil {
				return err
			}
			pairs = append(pairs, MetaPair{Key: k, Value: v})
			return nil
		})
		if err != nil {
			return nil, err
		}
		return MetaMap{Pairs: pairs}, nil
	}
	return nil, fmt.Errorf("unsupported CBOR major type %s in metadata", major)
}

// DecodeMetadatumRaw decodes a metadatum that makes up all of the input
func DecodeMetadatumRaw(b []byte) (TransactionMetadatum, error) {
	rd := cbor.NewReader(b)
	ret, err := DecodeMetadatum(rd)
	if err != nil {
		return nil, err
	}
	if !rd.Done() {
		return nil, cbor.ErrTrailingData
	}
	return ret, nil
}

// EncodeMetadatum writes a metadatum. Byte and text strings are written as is, since
// decoding already enforced their length limit
func EncodeMetadatum(w *cbor.Writer, md TransactionMetadatum) error {
	switch v := md.(type) {
	case MetaInt:
		if v.Value.Sign() < 0 {
			n := new(big.Int).Neg(v.Value)
			n.Sub(n, big.NewInt(1))
			if !n.IsUint64() {
				return fmt.Errorf("%w: metadata integer %s", cbor.ErrOverflow, v.Value)
			}
			w.WriteNegative(n.Uint64())
			return nil
		}
		if !v.Value.IsUint64() {
			return fmt.Errorf("%w: metadata integer %s", cbor.ErrOverflow, v.Value)
		}
		w.WriteUint(v.Value.Uint64())
	case MetaBytes:
		w.WriteBytes(v.Value)
	case MetaText:
		w.WriteText(v.Value)
	case MetaList:
		w.WriteArrayHeader(len(v.Items))
		for _, item := range v.Items {
			if err := EncodeMetadatum(w, item); err != nil {
				return err
			}
		}
	case MetaMap:
		w.WriteMapHeader(len(v.Pairs))
		for _, p := range v.Pairs {
			if err := EncodeMetadatum(w, p.Key); err != nil {
				return err
			}
			if err := EncodeMetadatum(w, p.Value); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported metadatum type %T", md)
	}
	return nil
}

// Metadata maps metadata labels to values, in the order they were decoded
type Metadata struct {
	Entries []MetadataEntry
}

type MetadataEntry struct {
	Label uint64
	Value TransactionMetadatum
}

func (m *Metadata) Decode(rd *cbor.Reader) error {
	m.Entries = nil
	return rd.ForEachMapEntry(func(int) error {
		label, err := rd.ReadUint()
		if err != nil {
			return cbor.NewFieldError("Metadata", "label", err)
		}
		value, err := DecodeMetadatum(rd)
		if err != nil {
			return cbor.NewFieldError("Metadata", fmt.Sprintf("label %d", label), err)
		}
		m.Entries = append(m.Entries, MetadataEntry{Label: label, Value: value})
		return nil
	})
}

func (m *Metadata) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	if err := m.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	return nil
}

func (m Metadata) Encode(w *cbor.Writer) error {
	w.WriteMapHeader(len(m.Entries))
	for _, e := range m.Entries {
		w.WriteUint(e.Label)
		if err := EncodeMetadatum(w, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (m Metadata) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	if err := m.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Get returns the value for the first entry with the provided label
func (m Metadata) Get(label uint64) (TransactionMetadatum, bool) {
	for _, e := range m.Entries {
		if e.Label == label {
			return e.Value, true
		}
	}
	return nil, false
}

const (
	AuxiliaryDataShapeShelley = iota
	AuxiliaryDataShapeAllegra
	AuxiliaryDataShapeAlonzo
)

// AuxiliaryData is the metadata and scripts attached to a transaction. It appears in
// three shapes: a bare metadata map (Shelley), [metadata, native_scripts] (Allegra and
// Mary) and a tag 259 map (Alonzo onward)
type AuxiliaryData struct {
	cbor.DecodeStoreCbor
	Shape           int
	Metadata        *Metadata
	NativeScripts   []NativeScript
	PlutusV1Scripts []PlutusV1Script
	PlutusV2Scripts []PlutusV2Script
	PlutusV3Scripts []PlutusV3Script
}

type auxiliaryDataMap struct {
	Metadata        *Metadata        `cbor:"0,keyasint,omitempty"`
	NativeScripts   []NativeScript   `cbor:"1,keyasint,omitempty"`
	PlutusV1Scripts []PlutusV1Script `cbor:"2,keyasint,omitempty"`
	PlutusV2Scripts []PlutusV2Script `cbor:"3,keyasint,omitempty"`
	PlutusV3Scripts []PlutusV3Script `cbor:"4,keyasint,omitempty"`
}

func (a *AuxiliaryData) UnmarshalCBOR(data []byte) error {
	*a = AuxiliaryData{}
	rd := cbor.NewReader(data)
	major, err := rd.PeekType()
	if err != nil {
		return err
	}
	switch major {
	case cbor.MajorMap:
		a.Shape = AuxiliaryDataShapeShelley
		a.Metadata = &Metadata{}
		if err := a.Metadata.Decode(rd); err != nil {
			return err
		}
	case cbor.MajorArray:
		a.Shape = AuxiliaryDataShapeAllegra
		n, err := rd.ExpectArray(2, 2)
		if err != nil {
			return err
		}
		a.Metadata = &Metadata{}
		if err := a.Metadata.Decode(rd); err != nil {
			return cbor.NewFieldError("AuxiliaryData", "metadata", err)
		}
		if err := rd.ReadValue(&a.NativeScripts); err != nil {
			return cbor.NewFieldError("AuxiliaryData", "native_scripts", err)
		}
		if n < 0 {
			if err := rd.ReadBreak(); err != nil {
				return err
			}
		}
	case cbor.MajorTag:
		a.Shape = AuxiliaryDataShapeAlonzo
		if err := rd.ExpectTag(cbor.CborTagMap); err != nil {
			return cbor.NewFieldError("AuxiliaryData", "tag", err)
		}
		var tmp auxiliaryDataMap
		if err := cbor.DecodeRecord(rd, "AuxiliaryData", &tmp); err != nil {
			return err
		}
		a.Metadata = tmp.Metadata
		a.NativeScripts = tmp.NativeScripts
		a.PlutusV1Scripts = tmp.PlutusV1Scripts
		a.PlutusV2Scripts = tmp.PlutusV2Scripts
		a.PlutusV3Scripts = tmp.PlutusV3Scripts
	default:
		return fmt.Errorf("unsupported auxiliary data type %s", major)
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	a.SetCbor(data)
	return nil
}

func (a *AuxiliaryData) MarshalCBOR() ([]byte, error) {
	if a.Cbor() != nil {
		return a.Cbor(), nil
	}
	w := cbor.NewWriter()
	switch a.Shape {
	case AuxiliaryDataShapeShelley:
		md := a.Metadata
		if md == nil {
			md = &Metadata{}
		}
		if err := md.Encode(w); err != nil {
			return nil, err
		}
	case AuxiliaryDataShapeAllegra:
		w.WriteArrayHeader(2)
		md := a.Metadata
		if md == nil {
			md = &Metadata{}
		}
		if err := md.Encode(w); err != nil {
			return nil, err
		}
		scripts := a.NativeScripts
		if scripts == nil {
			scripts = []NativeScript{}
		}
		if err := w.WriteValue(scripts); err != nil {
			return nil, err
		}
	default:
		w.WriteTag(cbor.CborTagMap)
		tmp := auxiliaryDataMap{
			Metadata:        a.Metadata,
			NativeScripts:   a.NativeScripts,
			PlutusV1Scripts: a.PlutusV1Scripts,
			PlutusV2Scripts: a.PlutusV2Scripts,
			PlutusV3Scripts: a.PlutusV3Scripts,
		}
		if err := cbor.EncodeRecord(w, &tmp); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// Hash returns the auxiliary data hash referenced from the transaction body
func (a *AuxiliaryData) Hash() (Blake2b256, error) {
	data, err := a.MarshalCBOR()
	if err != nil {
		return Blake2b256{}, err
	}
	return Blake2b256Hash(data), nil
}

// TransactionMetadataSet maps transaction indexes within a block to their auxiliary data
type TransactionMetadataSet struct {
	cbor.DecodeStoreCbor
	entries cbor.ListAsMap[uint64, AuxiliaryData]
}

func (s *TransactionMetadataSet) UnmarshalCBOR(cborData []byte) error {
	rd := cbor.NewReader(cborData)
	if err := s.entries.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return cbor.ErrTrailingData
	}
	s.SetCbor(cborData)
	return nil
}

func (s *TransactionMetadataSet) MarshalCBOR() ([]byte, error) {
	if s.Cbor() != nil {
		return s.Cbor(), nil
	}
	return s.entries.MarshalCBOR()
}

// GetAuxiliaryData returns the auxiliary data for the transaction at the provided index
func (s *TransactionMetadataSet) GetAuxiliaryData(txIdx uint64) (*AuxiliaryData, bool) {
	for i := range s.entries {
		if s.entries[i].Key == txIdx {
			return &s.entries[i].Value, true
		}
	}
	return nil, false
}

func (s *TransactionMetadataSet) Len() int {
	return len(s.entries)
}
