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
	"fmt"
	"io"
	"reflect"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

var decMode = sync.OnceValues(func() (_cbor.DecMode, error) {
	return _cbor.DecOptions{
		ExtraReturnErrors: _cbor.ExtraDecErrorUnknownField,
		// Real blocks nest deeper than the default limit of 32
		MaxNestedLevels: 256,
	}.DecModeWithTags(customTagSet)
})

// Decode decodes the first CBOR item in dataBytes into dest and returns the number of
// bytes consumed. Truncated input is reported as ErrEndOfInput and malformed headers
// as ErrInvalidHeader
func Decode(dataBytes []byte, dest any) (int, error) {
	dm, err := decMode()
	if err != nil {
		return 0, err
	}
	dec := dm.NewDecoder(bytes.NewReader(dataBytes))
	err = dec.Decode(dest)
	return dec.NumBytesRead(), translateDecodeError(err)
}

func translateDecodeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrEndOfInput, err)
	}
	var syntaxErr *_cbor.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	return err
}

// genericTypes maps a struct type to a copy of it without the DecodeStoreCbor field,
// which also drops the custom UnmarshalCBOR method
var genericTypes sync.Map

func genericType(t reflect.Type) reflect.Type {
	if cached, ok := genericTypes.Load(t); ok {
		return cached.(reflect.Type)
	}
	fields := make([]reflect.StructField, 0, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if field.IsExported() && field.Name != "DecodeStoreCbor" {
			fields = append(fields, field)
		}
	}
	ret, _ := genericTypes.LoadOrStore(t, reflect.StructOf(fields))
	return ret.(reflect.Type)
}

// DecodeGeneric decodes the specified CBOR into the destination object without using the
// destination object's UnmarshalCBOR() function
func DecodeGeneric(cborData []byte, dest any) error {
	valueDest := reflect.ValueOf(dest)
	if valueDest.Kind() != reflect.Pointer ||
		valueDest.Elem().Kind() != reflect.Struct {
		return errors.New("destination must be a pointer to a struct")
	}
	tmpDest := reflect.New(genericType(valueDest.Elem().Type()))
	if _, err := Decode(cborData, tmpDest.Interface()); err != nil {
		return err
	}
	return copier.Copy(dest, tmpDest.Interface())
}

// DecodeExact decodes exactly one CBOR item and rejects any trailing bytes
func DecodeExact(cborData []byte, dest any) error {
	n, err := Decode(cborData, dest)
	if err != nil {
		return err
	}
	if n != len(cborData) {
		return fmt.Errorf("%w: %d of %d bytes used", ErrTrailingData, n, len(cborData))
	}
	return nil
}
