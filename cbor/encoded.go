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

// Encoded holds a value that is serialized as CBOR inside a tag(24) byte string
// ("double encoded"). The inner bytes seen on decode are kept and re-emitted on encode
// until Set replaces the value
type Encoded[T any] struct {
	Value T
	inner []byte
}

func NewEncoded[T any](v T) Encoded[T] {
	return Encoded[T]{Value: v}
}

// Set replaces the wrapped value. Bytes kept from a decode are dropped so the next
// encode reflects v. Assigning Value directly keeps the decoded bytes
func (e *Encoded[T]) Set(v T) {
	e.Value = v
	e.inner = nil
}

// Inner returns the encoded bytes of the wrapped value
func (e *Encoded[T]) Inner() ([]byte, error) {
	if e.inner != nil {
		return e.inner, nil
	}
	return Encode(&e.Value)
}

func (e *Encoded[T]) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := e.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

// Decode reads tag(24) followed by a definite or chunked byte string and decodes the
// wrapped value from its contents
func (e *Encoded[T]) Decode(rd *Reader) error {
	start := rd.Offset()
	if err := rd.ExpectTag(CborTagCbor); err != nil {
		return err
	}
	inner, err := rd.ReadBytes()
	if err != nil {
		rd.pos = start
		return err
	}
	var tmp T
	if err := DecodeExact(inner, &tmp); err != nil {
		rd.pos = start
		return err
	}
	e.Value = tmp
	e.inner = append([]byte(nil), inner...)
	return nil
}

func (e Encoded[T]) MarshalCBOR() ([]byte, error) {
	inner, err := e.Inner()
	if err != nil {
		return nil, err
	}
	w := NewWriter()
	w.WriteTag(CborTagCbor)
	w.WriteBytes(inner)
	return w.Bytes(), nil
}

func (e Encoded[T]) CborLen() int {
	inner, err := e.Inner()
	if err != nil {
		return 0
	}
	return HeaderLen(CborTagCbor) + BytesLen(len(inner))
}
