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

type KeyValue[K any, V any] struct {
	Key   K
	Value V
}

// ListAsMap is a CBOR map that keeps its entries in the order they appear on the wire.
// No key sorting is performed on encode
type ListAsMap[K any, V any] []KeyValue[K, V]

func (m *ListAsMap[K, V]) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := m.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

func (m *ListAsMap[K, V]) Decode(rd *Reader) error {
	ret := ListAsMap[K, V]{}
	err := rd.ForEachMapEntry(func(i int) error {
		var entry KeyValue[K, V]
		if err := rd.ReadValue(&entry.Key); err != nil {
			return err
		}
		if err := rd.ReadValue(&entry.Value); err != nil {
			return err
		}
		ret = append(ret, entry)
		return nil
	})
	if err != nil {
		return err
	}
	*m = ret
	return nil
}

func (m ListAsMap[K, V]) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	if err := m.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (m ListAsMap[K, V]) Encode(w *Writer) error {
	w.WriteMapHeader(len(m))
	for i := range m {
		if err := w.WriteValue(&m[i].Key); err != nil {
			return err
		}
		if err := w.WriteValue(&m[i].Value); err != nil {
			return err
		}
	}
	return nil
}

func (m ListAsMap[K, V]) CborLen() int {
	ret := HeaderLen(uint64(len(m)))
	for i := range m {
		k, err := Len(&m[i].Key)
		if err != nil {
			return 0
		}
		v, err := Len(&m[i].Value)
		if err != nil {
			return 0
		}
		ret += k + v
	}
	return ret
}
