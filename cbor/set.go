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

// Set is a sequence of unique elements encoded as tag(258) [* T]. Decoding also accepts a
// bare array as used before the set tag was introduced. Duplicate elements are dropped
// on decode (keeping the first occurrence) rather than rejected
type Set[T any] struct {
	items    []T
	untagged bool
}

// NewSet returns a tagged set containing the provided items in order
func NewSet[T any](items ...T) Set[T] {
	return Set[T]{items: items}
}

// Items returns the set elements in first-seen order
func (s Set[T]) Items() []T {
	return s.items
}

func (s Set[T]) Len() int {
	return len(s.items)
}

// Tagged returns true if the set is (or was decoded as) the tag 258 form
func (s Set[T]) Tagged() bool {
	return !s.untagged
}

func (s *Set[T]) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := s.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

// Decode reads a tagged or bare set from the provided reader
func (s *Set[T]) Decode(rd *Reader) error {
	s.untagged = true
	if tag, ok := rd.PeekTag(); ok {
		if tag != CborTagSet {
			return &InvalidTagError{Type: "Set", Tag: tag}
		}
		if _, err := rd.ReadTag(); err != nil {
			return err
		}
		s.untagged = false
	}
	s.items = nil
	seen := map[string]struct{}{}
	return rd.ForEachArrayItem(func(i int) error {
		raw, err := rd.ReadRaw()
		if err != nil {
			return err
		}
		// Elements are compared by their encoded form
		if _, ok := seen[string(raw)]; ok {
			return nil
		}
		seen[string(raw)] = struct{}{}
		var item T
		if _, err := Decode(raw, &item); err != nil {
			return err
		}
		s.items = append(s.items, item)
		return nil
	})
}

func (s Set[T]) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	if err := s.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Encode writes the set, preserving the tagged or bare form it was decoded from
func (s Set[T]) Encode(w *Writer) error {
	if !s.untagged {
		w.WriteTag(CborTagSet)
	}
	w.WriteArrayHeader(len(s.items))
	for i := range s.items {
		if err := w.WriteValue(&s.items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s Set[T]) CborLen() int {
	ret := HeaderLen(uint64(len(s.items)))
	if !s.untagged {
		ret += HeaderLen(CborTagSet)
	}
	for i := range s.items {
		n, err := Len(&s.items[i])
		if err != nil {
			return 0
		}
		ret += n
	}
	return ret
}
