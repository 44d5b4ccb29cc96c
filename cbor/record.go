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

package cbor

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ReaderDecoder is implemented by types that decode themselves directly from a Reader
type ReaderDecoder interface {
	Decode(rd *Reader) error
}

type recordField struct {
	index    int
	name     string
	key      uint64
	optional bool
}

type recordInfo struct {
	array  bool
	fields []recordField
	byKey  map[uint64]int
	// Number of leading array fields that must be present
	minLen int
}

var (
	recordInfoCache      = map[reflect.Type]*recordInfo{}
	recordInfoCacheMutex sync.RWMutex
)

var (
	typeStructAsArray   = reflect.TypeOf(StructAsArray{})
	typeDecodeStoreCbor = reflect.TypeOf(DecodeStoreCbor{})
)

func getRecordInfo(t reflect.Type) (*recordInfo, error) {
	recordInfoCacheMutex.RLock()
	info, ok := recordInfoCache[t]
	recordInfoCacheMutex.RUnlock()
	if ok {
		return info, nil
	}
	info = &recordInfo{byKey: map[uint64]int{}}
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("cbor")
		if tag == "-" {
			continue
		}
		if field.Anonymous {
			switch field.Type {
			case typeStructAsArray:
				info.array = true
			case typeDecodeStoreCbor:
			default:
				return nil, fmt.Errorf("unsupported embedded field %s in %s", field.Name, t)
			}
			continue
		}
		if !field.IsExported() {
			continue
		}
		rf := recordField{
			index:    i,
			name:     field.Name,
			optional: field.Type.Kind() == reflect.Pointer,
		}
		parts := strings.Split(tag, ",")
		if slices.Contains(parts[1:], "omitempty") {
			rf.optional = true
		}
		if slices.Contains(parts[1:], "keyasint") {
			key, err := strconv.ParseUint(parts[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid key for field %s in %s: %w", field.Name, t, err)
			}
			rf.key = key
		}
		info.fields = append(info.fields, rf)
	}
	if info.array {
		for i, f := range info.fields {
			if !f.optional {
				info.minLen = i + 1
			}
		}
	} else {
		slices.SortFunc(info.fields, func(a, b recordField) int {
			switch {
			case a.key < b.key:
				return -1
			case a.key > b.key:
				return 1
			}
			return 0
		})
		for i, f := range info.fields {
			if _, ok := info.byKey[f.key]; ok {
				return nil, fmt.Errorf("duplicate key %d in %s", f.key, t)
			}
			info.byKey[f.key] = i
		}
	}
	recordInfoCacheMutex.Lock()
	recordInfoCache[t] = info
	recordInfoCacheMutex.Unlock()
	return info, nil
}

func recordValue(dest any) (reflect.Value, error) {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("record must be a non-nil pointer to a struct")
	}
	return v.Elem(), nil
}

func decodeRecordField(rd *Reader, fv reflect.Value) error {
	if fv.Kind() == reflect.Pointer {
		if rd.IsNull() {
			fv.SetZero()
			return rd.ReadNull()
		}
		tmp := reflect.New(fv.Type().Elem())
		if err := decodeRecordField(rd, tmp.Elem()); err != nil {
			return err
		}
		fv.Set(tmp)
		return nil
	}
	if d, ok := fv.Addr().Interface().(ReaderDecoder); ok {
		return d.Decode(rd)
	}
	return rd.ReadValue(fv.Addr().Interface())
}

// DecodeRecord decodes a struct from either a positional array (when the struct embeds
// StructAsArray) or an integer-keyed map (fields tagged with keyasint). Trailing pointer
// fields of an array record may be absent. Fields tagged "-" are skipped, including
// embedded ones. Errors name the field being decoded
func DecodeRecord(rd *Reader, typeName string, dest any) error {
	v, err := recordValue(dest)
	if err != nil {
		return err
	}
	info, err := getRecordInfo(v.Type())
	if err != nil {
		return err
	}
	start := rd.Offset()
	// Clear any previous contents, including cached values in unexported fields
	v.SetZero()
	if info.array {
		err = decodeRecordArray(rd, typeName, info, v)
	} else {
		err = decodeRecordMap(rd, typeName, info, v)
	}
	if err != nil {
		rd.pos = start
	}
	return err
}

func decodeRecordArray(rd *Reader, typeName string, info *recordInfo, v reflect.Value) error {
	n, err := rd.ReadArrayLen()
	if err != nil {
		return err
	}
	for i, f := range info.fields {
		if !rd.HasMore(n, i) {
			if i < info.minLen {
				return NewFieldError(typeName, f.name, ErrMissingField)
			}
			break
		}
		if err := decodeRecordField(rd, v.Field(f.index)); err != nil {
			return NewFieldError(typeName, f.name, err)
		}
	}
	if n < 0 {
		if err := rd.ReadBreak(); err != nil {
			return fmt.Errorf("%s: %w", typeName, err)
		}
		return nil
	}
	if n > len(info.fields) {
		return fmt.Errorf(
			"%w: %s has %d elements, expected at most %d",
			ErrSurplus,
			typeName,
			n,
			len(info.fields),
		)
	}
	return nil
}

func decodeRecordMap(rd *Reader, typeName string, info *recordInfo, v reflect.Value) error {
	var seen uint64
	var seenHigh map[uint64]bool
	err := rd.ForEachMapEntry(func(int) error {
		key, err := rd.ReadUint()
		if err != nil {
			return fmt.Errorf("%s: invalid key: %w", typeName, err)
		}
		idx, ok := info.byKey[key]
		if !ok {
			return NewFieldError(
				typeName,
				strconv.FormatUint(key, 10),
				&InvalidTagError{Type: typeName, Tag: key},
			)
		}
		f := info.fields[idx]
		if key < 64 {
			if seen&(1<<key) != 0 {
				return fmt.Errorf("%s: %w: duplicate key %d", typeName, ErrSurplus, key)
			}
			seen |= 1 << key
		} else {
			if seenHigh[key] {
				return fmt.Errorf("%s: %w: duplicate key %d", typeName, ErrSurplus, key)
			}
			if seenHigh == nil {
				seenHigh = map[uint64]bool{}
			}
			seenHigh[key] = true
		}
		if err := decodeRecordField(rd, v.Field(f.index)); err != nil {
			return NewFieldError(typeName, f.name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, f := range info.fields {
		if f.optional {
			continue
		}
		present := seenHigh[f.key]
		if f.key < 64 {
			present = seen&(1<<f.key) != 0
		}
		if !present {
			return NewFieldError(typeName, f.name, ErrMissingField)
		}
	}
	return nil
}

// DecodeRecordBytes decodes a record from data, which must contain exactly one item
func DecodeRecordBytes(data []byte, typeName string, dest any) error {
	rd := NewReader(data)
	if err := DecodeRecord(rd, typeName, dest); err != nil {
		return err
	}
	if !rd.Done() {
		return fmt.Errorf("%s: %w", typeName, ErrTrailingData)
	}
	return nil
}

func recordFieldPresent(fv reflect.Value, f recordField) bool {
	if fv.Kind() == reflect.Pointer {
		return !fv.IsNil()
	}
	if f.optional {
		return !fv.IsZero()
	}
	return true
}

func encodeRecordField(w *Writer, fv reflect.Value) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			w.WriteNull()
			return nil
		}
		return w.WriteValue(fv.Interface())
	}
	return w.WriteValue(fv.Addr().Interface())
}

// EncodeRecord writes a record in the layout DecodeRecord reads. Absent trailing array
// fields are omitted and absent map fields are skipped. Map keys are written in
// ascending order
func EncodeRecord(w *Writer, src any) error {
	v, err := recordValue(src)
	if err != nil {
		return err
	}
	info, err := getRecordInfo(v.Type())
	if err != nil {
		return err
	}
	if info.array {
		length := info.minLen
		for i, f := range info.fields {
			if recordFieldPresent(v.Field(f.index), f) {
				length = max(length, i+1)
			}
		}
		w.WriteArrayHeader(length)
		for _, f := range info.fields[:length] {
			if err := encodeRecordField(w, v.Field(f.index)); err != nil {
				return err
			}
		}
		return nil
	}
	present := make([]recordField, 0, len(info.fields))
	for _, f := range info.fields {
		if recordFieldPresent(v.Field(f.index), f) {
			present = append(present, f)
		}
	}
	w.WriteMapHeader(len(present))
	for _, f := range present {
		w.WriteUint(f.key)
		if err := encodeRecordField(w, v.Field(f.index)); err != nil {
			return err
		}
	}
	return nil
}

// EncodeRecordBytes encodes a record into a new buffer
func EncodeRecordBytes(src any) ([]byte, error) {
	w := NewWriter()
	if err := EncodeRecord(w, src); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// UnmarshalRecord decodes a record into dest and stores the original CBOR
func (d *DecodeStoreCbor) UnmarshalRecord(
	cborData []byte,
	typeName string,
	dest any,
) error {
	if err := DecodeRecordBytes(cborData, typeName, dest); err != nil {
		return err
	}
	d.SetCbor(cborData)
	return nil
}

// DecodeStoredRecord decodes a record from rd into dest and stores the bytes it consumed
func (d *DecodeStoreCbor) DecodeStoredRecord(rd *Reader, typeName string, dest any) error {
	start := rd.Offset()
	if err := DecodeRecord(rd, typeName, dest); err != nil {
		return err
	}
	d.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

// MarshalRecord returns the stored original CBOR if available, otherwise it encodes src
// as a record
func (d *DecodeStoreCbor) MarshalRecord(src any) ([]byte, error) {
	if d.cborData != nil {
		return d.cborData, nil
	}
	return EncodeRecordBytes(src)
}
