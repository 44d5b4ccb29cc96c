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
	"encoding/hex"
	"fmt"
)

// ByteString is a comparable byte string, usable as a map key
type ByteString struct {
	// We use a string because []byte isn't comparable, which means it can't be used as a map key
	data string
}

func NewByteString(data []byte) ByteString {
	bs := ByteString{
		data: string(data),
	}
	return bs
}

func (bs *ByteString) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	tmpValue, err := rd.ReadBytes()
	if err != nil {
		return err
	}
	bs.data = string(tmpValue)
	return nil
}

func (bs ByteString) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	w.WriteBytes([]byte(bs.data))
	return w.Bytes(), nil
}

func (bs ByteString) Bytes() []byte {
	return []byte(bs.data)
}

func (bs ByteString) String() string {
	return hex.EncodeToString([]byte(bs.data))
}

// BoundedBytes is a byte string that is encoded as chunks of at most 64 bytes. Values
// longer than that are written as an indefinite-length byte string
type BoundedBytes []byte

func (b *BoundedBytes) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := b.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

// Decode reads a bounded byte string, rejecting any chunk over 64 bytes with ErrOverflow
func (b *BoundedBytes) Decode(rd *Reader) error {
	tmp, err := rd.ReadBoundedBytes()
	if err != nil {
		return err
	}
	*b = append((*b)[:0], tmp...)
	return nil
}

func (b BoundedBytes) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	b.Encode(w)
	return w.Bytes(), nil
}

func (b BoundedBytes) Encode(w *Writer) {
	w.WriteBoundedBytes(b)
}

func (b BoundedBytes) CborLen() int {
	return BoundedBytesLen(len(b))
}

func (b BoundedBytes) String() string {
	return hex.EncodeToString(b)
}

// ReadBoundedText reads a text string of at most maxLen bytes
func ReadBoundedText(rd *Reader, maxLen int) (string, error) {
	start := rd.Offset()
	s, err := rd.ReadText()
	if err != nil {
		return "", err
	}
	if len(s) > maxLen {
		rd.pos = start
		return "", fmt.Errorf(
			"%w: text of %d bytes exceeds maximum of %d",
			ErrOverflow,
			len(s),
			maxLen,
		)
	}
	return s, nil
}
