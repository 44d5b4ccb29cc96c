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
	"bytes"
	"errors"
	"reflect"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

var encMode = sync.OnceValues(func() (_cbor.EncMode, error) {
	return _cbor.EncOptions{
		// Map keys are sorted as in deterministic encoding
		Sort: _cbor.SortCoreDeterministic,
	}.EncModeWithTags(customTagSet)
})

// Encode encodes the provided value using canonical (preferred) serialization
func Encode(data any) ([]byte, error) {
	em, err := encMode()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := em.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeGeneric encodes the specified object to CBOR without using the source object's
// MarshalCBOR() function
func EncodeGeneric(src any) ([]byte, error) {
	valueSrc := reflect.ValueOf(src)
	if valueSrc.Kind() != reflect.Pointer ||
		valueSrc.Elem().Kind() != reflect.Struct {
		return nil, errors.New("source must be a pointer to a struct")
	}
	tmpSrc := reflect.New(genericType(valueSrc.Elem().Type()))
	if err := copier.Copy(tmpSrc.Interface(), src); err != nil {
		return nil, err
	}
	return Encode(tmpSrc.Interface())
}

// EncodeStored returns the stored original CBOR when present and falls back to the
// generic encoding of the object otherwise
func EncodeStored(src DecodeStoreCborInterface) ([]byte, error) {
	if data := src.Cbor(); len(data) > 0 {
		return data, nil
	}
	return EncodeGeneric(src)
}

// IndefLengthList encodes as an indefinite-length CBOR array
type IndefLengthList []any

func (i IndefLengthList) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	w.WriteIndefiniteArray()
	for _, item := range i {
		if err := w.WriteValue(item); err != nil {
			return nil, err
		}
	}
	w.WriteBreak()
	return w.Bytes(), nil
}
