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

// OptionalArray encodes an absent value as [] and a present value as [v]
type OptionalArray[T any] struct {
	Value *T
}

func SomeArray[T any](v T) OptionalArray[T] {
	return OptionalArray[T]{Value: &v}
}

func (o *OptionalArray[T]) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := o.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

func (o *OptionalArray[T]) Decode(rd *Reader) error {
	n, err := rd.ExpectArray(0, 1)
	if err != nil {
		return err
	}
	o.Value = nil
	if n == 0 {
		return nil
	}
	if n < 0 {
		if rd.IsBreak() {
			return rd.ReadBreak()
		}
	}
	var tmp T
	if err := rd.ReadValue(&tmp); err != nil {
		return err
	}
	o.Value = &tmp
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (o OptionalArray[T]) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	if o.Value == nil {
		w.WriteArrayHeader(0)
		return w.Bytes(), nil
	}
	w.WriteArrayHeader(1)
	if err := w.WriteValue(o.Value); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (o OptionalArray[T]) CborLen() int {
	if o.Value == nil {
		return 1
	}
	n, err := Len(o.Value)
	if err != nil {
		return 0
	}
	return 1 + n
}

// TaggedOption encodes an absent value as [0] and a present value as [1, v]
type TaggedOption[T any] struct {
	Value *T
}

func SomeTagged[T any](v T) TaggedOption[T] {
	return TaggedOption[T]{Value: &v}
}

func (o *TaggedOption[T]) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := o.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

func (o *TaggedOption[T]) Decode(rd *Reader) error {
	start := rd.Offset()
	n, err := rd.ExpectArray(1, 2)
	if err != nil {
		return err
	}
	disc, err := rd.ReadUint()
	if err != nil {
		rd.pos = start
		return err
	}
	o.Value = nil
	switch disc {
	case 0:
		if n == 2 {
			rd.pos = start
			return ErrSurplus
		}
	case 1:
		if n == 1 {
			rd.pos = start
			return ErrEndOfInput
		}
		var tmp T
		if err := rd.ReadValue(&tmp); err != nil {
			rd.pos = start
			return err
		}
		o.Value = &tmp
	default:
		rd.pos = start
		return &InvalidTagError{Type: "TaggedOption", Tag: disc}
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (o TaggedOption[T]) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	if o.Value == nil {
		w.WriteArrayHeader(1)
		w.WriteUint(0)
		return w.Bytes(), nil
	}
	w.WriteArrayHeader(2)
	w.WriteUint(1)
	if err := w.WriteValue(o.Value); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (o TaggedOption[T]) CborLen() int {
	if o.Value == nil {
		return 2
	}
	n, err := Len(o.Value)
	if err != nil {
		return 0
	}
	return 2 + n
}

// Nullable encodes an absent value as CBOR null and a present value as itself
type Nullable[T any] struct {
	Value *T
}

func SomeNullable[T any](v T) Nullable[T] {
	return Nullable[T]{Value: &v}
}

func (o *Nullable[T]) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := o.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

func (o *Nullable[T]) Decode(rd *Reader) error {
	o.Value = nil
	if rd.IsNull() {
		return rd.ReadNull()
	}
	var tmp T
	if err := rd.ReadValue(&tmp); err != nil {
		return err
	}
	o.Value = &tmp
	return nil
}

func (o Nullable[T]) MarshalCBOR() ([]byte, error) {
	if o.Value == nil {
		return []byte{CborNull}, nil
	}
	return Encode(o.Value)
}

func (o Nullable[T]) CborLen() int {
	if o.Value == nil {
		return 1
	}
	n, err := Len(o.Value)
	if err != nil {
		return 0
	}
	return n
}
