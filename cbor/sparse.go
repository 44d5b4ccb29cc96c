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
	"fmt"
	"math/bits"
)

// SparseMaxVariants is the number of distinct variant indexes a Sparse record can hold
const SparseMaxVariants = 64

// Variant is a payload stored in a Sparse record. The index selects both the presence
// bit and the key (map encoding) or position (array encoding) used on the wire
type Variant interface {
	SparseIndex() uint8
}

// Sparse is a record where every field is optional. Present fields are tracked by a
// 64-bit bitmap and stored compacted in ascending index order, so the number of set
// bits always equals the number of stored values
type Sparse[V Variant] struct {
	bitmap uint64
	values []V
}

func (s *Sparse[V]) slot(bit uint64) int {
	return bits.OnesCount64(s.bitmap & (bit - 1))
}

// Insert adds a variant. It returns false without modifying the record if a variant
// with the same index is already present or the index is out of range
func (s *Sparse[V]) Insert(v V) bool {
	idx := v.SparseIndex()
	if idx >= SparseMaxVariants {
		return false
	}
	bit := uint64(1) << idx
	if s.bitmap&bit != 0 {
		return false
	}
	slot := s.slot(bit)
	s.values = append(s.values, v)
	copy(s.values[slot+1:], s.values[slot:])
	s.values[slot] = v
	s.bitmap |= bit
	return true
}

// Get returns the variant stored at the provided index
func (s *Sparse[V]) Get(idx uint8) (V, bool) {
	var zero V
	if idx >= SparseMaxVariants {
		return zero, false
	}
	bit := uint64(1) << idx
	if s.bitmap&bit == 0 {
		return zero, false
	}
	return s.values[s.slot(bit)], true
}

// Has reports whether a variant with the provided index is present
func (s *Sparse[V]) Has(idx uint8) bool {
	return idx < SparseMaxVariants && s.bitmap&(uint64(1)<<idx) != 0
}

// Len returns the number of present variants
func (s *Sparse[V]) Len() int {
	return len(s.values)
}

// Bitmap returns the presence bitmap
func (s *Sparse[V]) Bitmap() uint64 {
	return s.bitmap
}

// Values returns the present variants in ascending index order
func (s *Sparse[V]) Values() []V {
	return s.values
}

// EncodeMap writes the record as a map of index to payload
func (s *Sparse[V]) EncodeMap(w *Writer, encode func(*Writer, V) error) error {
	w.WriteMapHeader(len(s.values))
	for _, v := range s.values {
		w.WriteUint(uint64(v.SparseIndex()))
		if err := encode(w, v); err != nil {
			return err
		}
	}
	return nil
}

// EncodeArray writes the record positionally. Absent fields before the last present
// field are written as null and trailing absent fields are omitted
func (s *Sparse[V]) EncodeArray(w *Writer, encode func(*Writer, V) error) error {
	length := bits.Len64(s.bitmap)
	w.WriteArrayHeader(length)
	next := 0
	for i := range length {
		if s.bitmap&(uint64(1)<<i) == 0 {
			w.WriteNull()
			continue
		}
		if err := encode(w, s.values[next]); err != nil {
			return err
		}
		next++
	}
	return nil
}

// DecodeMap populates the record from a map of index to payload. A repeated key results
// in ErrSurplus
func (s *Sparse[V]) DecodeMap(
	rd *Reader,
	decode func(rd *Reader, key uint64) (V, error),
) error {
	return rd.ForEachMapEntry(func(int) error {
		key, err := rd.ReadUint()
		if err != nil {
			return err
		}
		if key >= SparseMaxVariants {
			return &InvalidTagError{Type: "Sparse", Tag: key}
		}
		if s.Has(uint8(key)) {
			return fmt.Errorf("%w: duplicate key %d", ErrSurplus, key)
		}
		v, err := decode(rd, key)
		if err != nil {
			return err
		}
		if !s.Insert(v) {
			return fmt.Errorf("%w: duplicate key %d", ErrSurplus, key)
		}
		return nil
	})
}

// DecodeArray populates the record from a positional array, treating null entries as
// absent fields
func (s *Sparse[V]) DecodeArray(
	rd *Reader,
	decode func(rd *Reader, pos uint64) (V, error),
) error {
	return rd.ForEachArrayItem(func(i int) error {
		if i >= SparseMaxVariants {
			return fmt.Errorf("%w: position %d", ErrSurplus, i)
		}
		if rd.IsNull() {
			return rd.ReadNull()
		}
		v, err := decode(rd, uint64(i))
		if err != nil {
			return err
		}
		if !s.Insert(v) {
			return fmt.Errorf("%w: duplicate position %d", ErrSurplus, i)
		}
		return nil
	})
}
