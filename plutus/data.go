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

package plutus

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
)

// Data is the structured value type shared between the ledger and scripts
type Data interface {
	isData()
	String() string
}

type DataConstr struct {
	Tag    uint64
	Fields []Data
}

type DataPair struct {
	Key   Data
	Value Data
}

type DataMap struct {
	Pairs []DataPair
}

type DataList struct {
	Items []Data
}

type DataInteger struct {
	Value *big.Int
}

type DataBytes struct {
	Value []byte
}

func (*DataConstr) isData()  {}
func (*DataMap) isData()     {}
func (*DataList) isData()    {}
func (*DataInteger) isData() {}
func (*DataBytes) isData()   {}

func NewDataConstr(tag uint64, fields ...Data) *DataConstr {
	if fields == nil {
		fields = []Data{}
	}
	return &DataConstr{Tag: tag, Fields: fields}
}

func NewDataMap(pairs ...DataPair) *DataMap {
	if pairs == nil {
		pairs = []DataPair{}
	}
	return &DataMap{Pairs: pairs}
}

func NewDataList(items ...Data) *DataList {
	if items == nil {
		items = []Data{}
	}
	return &DataList{Items: items}
}

func NewDataInteger(v *big.Int) *DataInteger {
	return &DataInteger{Value: v}
}

func NewDataInt(v int64) *DataInteger {
	return &DataInteger{Value: big.NewInt(v)}
}

func NewDataBytes(b []byte) *DataBytes {
	return &DataBytes{Value: b}
}

func (d *DataConstr) String() string {
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("Constr %d [%s]", d.Tag, strings.Join(parts, ", "))
}

func (d *DataMap) String() string {
	parts := make([]string, len(d.Pairs))
	for i, p := range d.Pairs {
		parts[i] = "(" + p.Key.String() + ", " + p.Value.String() + ")"
	}
	return "Map [" + strings.Join(parts, ", ") + "]"
}

func (d *DataList) String() string {
	parts := make([]string, len(d.Items))
	for i, item := range d.Items {
		parts[i] = item.String()
	}
	return "List [" + strings.Join(parts, ", ") + "]"
}

func (d *DataInteger) String() string {
	return "I " + d.Value.String()
}

func (d *DataBytes) String() string {
	return "B #" + hex.EncodeToString(d.Value)
}

// DataEqual reports whether two data values are structurally equal
func DataEqual(a Data, b Data) bool {
	switch x := a.(type) {
	case *DataConstr:
		y, ok := b.(*DataConstr)
		if !ok || x.Tag != y.Tag || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !DataEqual(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case *DataMap:
		y, ok := b.(*DataMap)
		if !ok || len(x.Pairs) != len(y.Pairs) {
			return false
		}
		for i := range x.Pairs {
			if !DataEqual(x.Pairs[i].Key, y.Pairs[i].Key) ||
				!DataEqual(x.Pairs[i].Value, y.Pairs[i].Value) {
				return false
			}
		}
		return true
	case *DataList:
		y, ok := b.(*DataList)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !DataEqual(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *DataInteger:
		y, ok := b.(*DataInteger)
		return ok && x.Value.Cmp(y.Value) == 0
	case *DataBytes:
		y, ok := b.(*DataBytes)
		return ok && bytes.Equal(x.Value, y.Value)
	}
	return false
}

// DecodeData reads one data value. Constructors use tags 121-127, 1280-1400 or the
// general tag 102 form, integers may be bignums and byte strings are bounded.
// Nesting recurses on the goroutine stack; data comes from size-limited transactions
func DecodeData(rd *cbor.Reader) (Data, error) {
	major, err := rd.PeekType()
	if err != nil {
		return nil, err
	}
	switch major {
	case cbor.MajorUint, cbor.MajorNegInt:
		v, err := cbor.ReadBigInt(rd)
		if err != nil {
			return nil, err
		}
		return &DataInteger{Value: v}, nil
	case cbor.MajorByteString:
		b, err := rd.ReadBoundedBytes()
		if err != nil {
			return nil, err
		}
		return &DataBytes{Value: b}, nil
	case cbor.MajorArray:
		items, err := decodeDataList(rd)
		if err != nil {
			return nil, err
		}
		return &DataList{Items: items}, nil
	case cbor.MajorMap:
		pairs := []DataPair{}
		err := rd.ForEachMapEntry(func(int) error {
			k, err := DecodeData(rd)
			if err != nil {
				return err
			}
			v, err := DecodeData(rd)
			if err != nil {
				return err
			}
			pairs = append(pairs, DataPair{Key: k, Value: v})
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &DataMap{Pairs: pairs}, nil
	case cbor.MajorTag:
		tag, _ := rd.PeekTag()
		switch {
		case tag == cbor.CborTagPosBignum || tag == cbor.CborTagNegBignum:
			v, err := cbor.ReadBigInt(rd)
			if err != nil {
				return nil, err
			}
			return &DataInteger{Value: v}, nil
		case tag == cbor.CborTagAlternativeGeneral:
			return decodeDataConstrGeneral(rd)
		}
		index, ok := cbor.ConstrIndex(tag)
		if !ok {
			return nil, &cbor.InvalidTagError{Type: "Data", Tag: tag}
		}
		if _, err := rd.ReadTag(); err != nil {
			return nil, err
		}
		fields, err := decodeDataList(rd)
		if err != nil {
			return nil, err
		}
		return &DataConstr{Tag: index, Fields: fields}, nil
	}
	return nil, &cbor.TypeMismatchError{
		Expected: cbor.MajorTag,
		Found:    major,
		Offset:   rd.Offset(),
	}
}

func decodeDataList(rd *cbor.Reader) ([]Data, error) {
	items := []Data{}
	err := rd.ForEachArrayItem(func(int) error {
		item, err := DecodeData(rd)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func decodeDataConstrGeneral(rd *cbor.Reader) (Data, error) {
	if _, err := rd.ReadTag(); err != nil {
		return nil, err
	}
	n, err := rd.ReadArrayLen()
	if err != nil {
		return nil, err
	}
	if n >= 0 && n != 2 {
		return nil, fmt.Errorf("%w: constructor has %d elements", cbor.ErrInvalidLength, n)
	}
	index, err := rd.ReadUint()
	if err != nil {
		return nil, cbor.NewFieldError("Data", "constructor", err)
	}
	fields, err := decodeDataList(rd)
	if err != nil {
		return nil, cbor.NewFieldError("Data", "fields", err)
	}
	if n < 0 {
		if err := rd.ReadBreak(); err != nil {
			return nil, err
		}
	}
	return &DataConstr{Tag: index, Fields: fields}, nil
}

// DecodeDataBytes decodes a data value which must make up all of the input
func DecodeDataBytes(data []byte) (Data, error) {
	rd := cbor.NewReader(data)
	ret, err := DecodeData(rd)
	if err != nil {
		return nil, err
	}
	if !rd.Done() {
		return nil, cbor.ErrTrailingData
	}
	return ret, nil
}

// EncodeData writes a data value. Non-empty lists and constructor fields use the
// indefinite-length form and maps use the definite form
func EncodeData(w *cbor.Writer, d Data) error {
	switch v := d.(type) {
	case *DataConstr:
		if tag, ok := cbor.ConstrTag(v.Tag); ok {
			w.WriteTag(tag)
			return encodeDataList(w, v.Fields)
		}
		w.WriteTag(cbor.CborTagAlternativeGeneral)
		w.WriteArrayHeader(2)
		w.WriteUint(v.Tag)
		return encodeDataList(w, v.Fields)
	case *DataMap:
		w.WriteMapHeader(len(v.Pairs))
		for _, p := range v.Pairs {
			if err := EncodeData(w, p.Key); err != nil {
				return err
			}
			if err := EncodeData(w, p.Value); err != nil {
				return err
			}
		}
		return nil
	case *DataList:
		return encodeDataList(w, v.Items)
	case *DataInteger:
		cbor.WriteBigInt(w, v.Value)
		return nil
	case *DataBytes:
		w.WriteBoundedBytes(v.Value)
		return nil
	}
	return fmt.Errorf("unsupported data type %T", d)
}

func encodeDataList(w *cbor.Writer, items []Data) error {
	if len(items) == 0 {
		w.WriteArrayHeader(0)
		return nil
	}
	w.WriteIndefiniteArray()
	for _, item := range items {
		if err := EncodeData(w, item); err != nil {
			return err
		}
	}
	w.WriteBreak()
	return nil
}

// EncodeDataBytes encodes a data value into a new buffer
func EncodeDataBytes(d Data) ([]byte, error) {
	w := cbor.NewWriter()
	if err := EncodeData(w, d); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// dataSize is the memory size of a data value as used by the cost model
func dataSize(d Data) int64 {
	var ret int64
	stack := []Data{d}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ret += 4
		switch v := cur.(type) {
		case *DataConstr:
			stack = append(stack, v.Fields...)
		case *DataMap:
			for _, p := range v.Pairs {
				stack = append(stack, p.Key, p.Value)
			}
		case *DataList:
			stack = append(stack, v.Items...)
		case *DataInteger:
			ret += integerSize(v.Value)
		case *DataBytes:
			ret += bytesSize(len(v.Value))
		}
	}
	return ret
}
