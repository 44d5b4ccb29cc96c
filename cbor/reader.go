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
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// BoundedBytesChunkSize is the maximum size of a single chunk of a bounded byte string
const BoundedBytesChunkSize = 64

// Reader is a cursor over an immutable byte slice holding one or more CBOR items.
// Every read either consumes exactly one item (or header) or leaves the cursor where
// it was and returns an error
type Reader struct {
	data []byte
	pos  int
}

type header struct {
	major      MajorType
	info       uint8
	arg        uint64
	size       int
	indefinite bool
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current position of the cursor
func (r *Reader) Offset() int {
	return r.pos
}

// Seek moves the cursor back to an offset previously returned by Offset
func (r *Reader) Seek(offset int) {
	if offset >= 0 && offset <= len(r.data) {
		r.pos = offset
	}
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Done returns true when all input has been consumed
func (r *Reader) Done() bool {
	return r.pos >= len(r.data)
}

// Data returns the full underlying input
func (r *Reader) Data() []byte {
	return r.data
}

func (r *Reader) peekHeader() (header, error) {
	if r.pos >= len(r.data) {
		return header{}, ErrEndOfInput
	}
	b := r.data[r.pos]
	h := header{
		major: MajorType(b >> 5),
		info:  b & CborInfoMask,
		size:  1,
	}
	switch {
	case h.info <= CborMaxUintSimple:
		h.arg = uint64(h.info)
	case h.info <= 27:
		n := 1 << (h.info - 24)
		if r.pos+1+n > len(r.data) {
			return header{}, ErrEndOfInput
		}
		raw := r.data[r.pos+1 : r.pos+1+n]
		switch n {
		case 1:
			h.arg = uint64(raw[0])
		case 2:
			h.arg = uint64(binary.BigEndian.Uint16(raw))
		case 4:
			h.arg = uint64(binary.BigEndian.Uint32(raw))
		case 8:
			h.arg = binary.BigEndian.Uint64(raw)
		}
		h.size += n
	case h.info == CborInfoIndefinite:
		switch h.major {
		case MajorByteString, MajorTextString, MajorArray, MajorMap, MajorSimple:
			h.indefinite = true
		default:
			return header{}, fmt.Errorf(
				"%w: indefinite length for %s at offset %d",
				ErrInvalidHeader,
				h.major,
				r.pos,
			)
		}
	default:
		return header{}, fmt.Errorf(
			"%w: reserved additional info %d at offset %d",
			ErrInvalidHeader,
			h.info,
			r.pos,
		)
	}
	return h, nil
}

func (r *Reader) expect(major MajorType) (header, error) {
	h, err := r.peekHeader()
	if err != nil {
		return h, err
	}
	if h.major != major {
		return h, &TypeMismatchError{Expected: major, Found: h.major, Offset: r.pos}
	}
	return h, nil
}

// PeekType returns the major type of the next item without consuming it
func (r *Reader) PeekType() (MajorType, error) {
	if r.pos >= len(r.data) {
		return 0, ErrEndOfInput
	}
	return MajorType(r.data[r.pos] >> 5), nil
}

// PeekByte returns the next raw byte without consuming it
func (r *Reader) PeekByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrEndOfInput
	}
	return r.data[r.pos], nil
}

// ReadUint reads an unsigned integer (major type 0)
func (r *Reader) ReadUint() (uint64, error) {
	h, err := r.expect(MajorUint)
	if err != nil {
		return 0, err
	}
	r.pos += h.size
	return h.arg, nil
}

// ReadNegative reads a negative integer (major type 1) and returns the raw argument n,
// where the encoded value is -1-n
func (r *Reader) ReadNegative() (uint64, error) {
	h, err := r.expect(MajorNegInt)
	if err != nil {
		return 0, err
	}
	r.pos += h.size
	return h.arg, nil
}

// ReadInt reads a signed integer (major type 0 or 1) that must fit into an int64
func (r *Reader) ReadInt() (int64, error) {
	h, err := r.peekHeader()
	if err != nil {
		return 0, err
	}
	switch h.major {
	case MajorUint:
		if h.arg > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d does not fit in int64", ErrOverflow, h.arg)
		}
		r.pos += h.size
		return int64(h.arg), nil // #nosec G115
	case MajorNegInt:
		if h.arg > math.MaxInt64 {
			return 0, fmt.Errorf("%w: -1-%d does not fit in int64", ErrOverflow, h.arg)
		}
		r.pos += h.size
		return -1 - int64(h.arg), nil // #nosec G115
	default:
		return 0, &TypeMismatchError{Expected: MajorUint, Found: h.major, Offset: r.pos}
	}
}

// ReadUint8 reads an unsigned integer that must fit into a uint8
func (r *Reader) ReadUint8() (uint8, error) {
	start := r.pos
	v, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint8 {
		r.pos = start
		return 0, fmt.Errorf("%w: %d does not fit in uint8", ErrOverflow, v)
	}
	return uint8(v), nil
}

// ReadUint16 reads an unsigned integer that must fit into a uint16
func (r *Reader) ReadUint16() (uint16, error) {
	start := r.pos
	v, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint16 {
		r.pos = start
		return 0, fmt.Errorf("%w: %d does not fit in uint16", ErrOverflow, v)
	}
	return uint16(v), nil
}

// ReadUint32 reads an unsigned integer that must fit into a uint32
func (r *Reader) ReadUint32() (uint32, error) {
	start := r.pos
	v, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		r.pos = start
		return 0, fmt.Errorf("%w: %d does not fit in uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

func (r *Reader) readString(major MajorType, maxChunk int) ([]byte, error) {
	start := r.pos
	h, err := r.expect(major)
	if err != nil {
		return nil, err
	}
	if !h.indefinite {
		if maxChunk > 0 && h.arg > uint64(maxChunk) {
			return nil, fmt.Errorf(
				"%w: string of %d bytes exceeds chunk size %d",
				ErrOverflow,
				h.arg,
				maxChunk,
			)
		}
		if h.arg > uint64(len(r.data)-r.pos-h.size) {
			return nil, ErrEndOfInput
		}
		begin := r.pos + h.size
		end := begin + int(h.arg) // #nosec G115
		r.pos = end
		return r.data[begin:end:end], nil
	}
	// Indefinite strings are reassembled from their definite chunks
	r.pos += h.size
	ret := []byte{}
	for {
		if r.pos >= len(r.data) {
			r.pos = start
			return nil, ErrEndOfInput
		}
		if r.data[r.pos] == CborBreak {
			r.pos++
			return ret, nil
		}
		ch, err := r.peekHeader()
		if err != nil {
			r.pos = start
			return nil, err
		}
		if ch.major != major || ch.indefinite {
			offset := r.pos
			r.pos = start
			return nil, fmt.Errorf(
				"%w: invalid chunk of %s at offset %d",
				ErrInvalidHeader,
				ch.major,
				offset,
			)
		}
		if maxChunk > 0 && ch.arg > uint64(maxChunk) {
			r.pos = start
			return nil, fmt.Errorf(
				"%w: chunk of %d bytes exceeds chunk size %d",
				ErrOverflow,
				ch.arg,
				maxChunk,
			)
		}
		if ch.arg > uint64(len(r.data)-r.pos-ch.size) {
			r.pos = start
			return nil, ErrEndOfInput
		}
		begin := r.pos + ch.size
		end := begin + int(ch.arg) // #nosec G115
		ret = append(ret, r.data[begin:end]...)
		r.pos = end
	}
}

// ReadBytes reads a byte string. Definite strings are returned as a sub-slice of the
// input, indefinite strings are reassembled into a new slice
func (r *Reader) ReadBytes() ([]byte, error) {
	return r.readString(MajorByteString, 0)
}

// ReadBoundedBytes reads a byte string whose definite form or chunks may not exceed
// BoundedBytesChunkSize bytes
func (r *Reader) ReadBoundedBytes() ([]byte, error) {
	return r.readString(MajorByteString, BoundedBytesChunkSize)
}

// ReadFixedBytes reads a byte string that must be exactly size bytes long
func (r *Reader) ReadFixedBytes(size int) ([]byte, error) {
	start := r.pos
	b, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		r.pos = start
		return nil, fmt.Errorf(
			"%w: expected %d bytes, found %d",
			ErrInvalidLength,
			size,
			len(b),
		)
	}
	return b, nil
}

// ReadText reads a text string and validates it as UTF-8
func (r *Reader) ReadText() (string, error) {
	start := r.pos
	b, err := r.readString(MajorTextString, 0)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		r.pos = start
		return "", ErrInvalidUtf8
	}
	return string(b), nil
}

func (r *Reader) readContainerHeader(major MajorType) (uint64, bool, error) {
	h, err := r.expect(major)
	if err != nil {
		return 0, false, err
	}
	r.pos += h.size
	return h.arg, !h.indefinite, nil
}

// ReadArrayHeader reads an array header and returns its length and whether it is
// definite. An indefinite array has a length of 0 and ends with a break
func (r *Reader) ReadArrayHeader() (uint64, bool, error) {
	return r.readContainerHeader(MajorArray)
}

// ReadMapHeader reads a map header and returns its pair count and whether it is definite
func (r *Reader) ReadMapHeader() (uint64, bool, error) {
	return r.readContainerHeader(MajorMap)
}

// ReadArrayLen reads a definite or indefinite array header. For indefinite arrays -1 is
// returned as the length
func (r *Reader) ReadArrayLen() (int, error) {
	start := r.pos
	n, definite, err := r.ReadArrayHeader()
	if err != nil {
		return 0, err
	}
	if !definite {
		return -1, nil
	}
	if n > uint64(r.Remaining()) {
		r.pos = start
		return 0, fmt.Errorf("%w: array length %d exceeds input", ErrEndOfInput, n)
	}
	return int(n), nil // #nosec G115
}

// ExpectArray reads an array header and checks that the (definite) length is within
// [minLen, maxLen]. Indefinite arrays are accepted and -1 is returned
func (r *Reader) ExpectArray(minLen int, maxLen int) (int, error) {
	start := r.pos
	n, err := r.ReadArrayLen()
	if err != nil {
		return 0, err
	}
	if n >= 0 && (n < minLen || n > maxLen) {
		r.pos = start
		return 0, fmt.Errorf(
			"%w: array of %d elements, expected %d..%d",
			ErrInvalidLength,
			n,
			minLen,
			maxLen,
		)
	}
	return n, nil
}

// HasMore reports whether another element follows in a container with the provided
// length (as returned by ReadArrayLen) after count elements have been read
func (r *Reader) HasMore(length int, count int) bool {
	if length >= 0 {
		return count < length
	}
	return !r.IsBreak()
}

// ForEachArrayItem reads an array header and calls fn once per element. fn must consume
// exactly one item
func (r *Reader) ForEachArrayItem(fn func(i int) error) error {
	n, err := r.ReadArrayLen()
	if err != nil {
		return err
	}
	return r.forEach(n, fn)
}

// ForEachMapEntry reads a map header and calls fn once per key/value pair. fn must
// consume both the key and the value
func (r *Reader) ForEachMapEntry(fn func(i int) error) error {
	n, definite, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	if !definite {
		return r.forEach(-1, fn)
	}
	// Each entry needs at least 2 bytes
	if n > uint64(r.Remaining()/2) {
		return fmt.Errorf("%w: map length %d exceeds input", ErrEndOfInput, n)
	}
	return r.forEach(int(n), fn) // #nosec G115
}

func (r *Reader) forEach(n int, fn func(i int) error) error {
	for i := 0; r.HasMore(n, i); i++ {
		if n < 0 && r.Done() {
			return ErrEndOfInput
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	if n < 0 {
		return r.ReadBreak()
	}
	return nil
}

// IsBreak returns true if the next byte is a break marker
func (r *Reader) IsBreak() bool {
	return r.pos < len(r.data) && r.data[r.pos] == CborBreak
}

// ReadBreak consumes a break marker
func (r *Reader) ReadBreak() error {
	if r.pos >= len(r.data) {
		return ErrEndOfInput
	}
	if r.data[r.pos] != CborBreak {
		return fmt.Errorf(
			"%w: expected break at offset %d, found 0x%02x",
			ErrSurplus,
			r.pos,
			r.data[r.pos],
		)
	}
	r.pos++
	return nil
}

// ReadTag reads a tag header and returns the tag number. The tagged item is not consumed
func (r *Reader) ReadTag() (uint64, error) {
	h, err := r.expect(MajorTag)
	if err != nil {
		return 0, err
	}
	r.pos += h.size
	return h.arg, nil
}

// PeekTag returns the tag number of the next item if it is a tag
func (r *Reader) PeekTag() (uint64, bool) {
	h, err := r.peekHeader()
	if err != nil || h.major != MajorTag {
		return 0, false
	}
	return h.arg, true
}

// ExpectTag consumes a tag header which must carry the provided tag number
func (r *Reader) ExpectTag(tag uint64) error {
	start := r.pos
	t, err := r.ReadTag()
	if err != nil {
		return err
	}
	if t != tag {
		r.pos = start
		return &InvalidTagError{Tag: t}
	}
	return nil
}

// ReadBool reads a CBOR boolean
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.PeekByte()
	if err != nil {
		return false, err
	}
	switch b {
	case CborFalse:
		r.pos++
		return false, nil
	case CborTrue:
		r.pos++
		return true, nil
	}
	return false, &TypeMismatchError{
		Expected: MajorSimple,
		Found:    MajorType(b >> 5),
		Offset:   r.pos,
	}
}

// IsNull returns true if the next item is a CBOR null
func (r *Reader) IsNull() bool {
	return r.pos < len(r.data) && r.data[r.pos] == CborNull
}

// ReadNull consumes a CBOR null
func (r *Reader) ReadNull() error {
	b, err := r.PeekByte()
	if err != nil {
		return err
	}
	if b != CborNull {
		return &TypeMismatchError{
			Expected: MajorSimple,
			Found:    MajorType(b >> 5),
			Offset:   r.pos,
		}
	}
	r.pos++
	return nil
}

// ReadSimple reads a simple value (major type 7, excluding floats)
func (r *Reader) ReadSimple() (uint8, error) {
	h, err := r.expect(MajorSimple)
	if err != nil {
		return 0, err
	}
	if h.indefinite || h.info > 24 {
		return 0, fmt.Errorf("%w: not a simple value at offset %d", ErrInvalidHeader, r.pos)
	}
	r.pos += h.size
	return uint8(h.arg), nil // #nosec G115
}

// SkipItem skips over one complete CBOR item, including any nested items. It uses an
// explicit stack so that deeply nested input cannot exhaust the call stack
func (r *Reader) SkipItem() error {
	start := r.pos
	// Each entry is the number of items left in an open container, or -1 for an
	// indefinite container waiting for its break
	pending := []int64{1}
	for len(pending) > 0 {
		top := len(pending) - 1
		if pending[top] == 0 {
			pending = pending[:top]
			continue
		}
		if pending[top] < 0 {
			if r.IsBreak() {
				r.pos++
				pending = pending[:top]
				continue
			}
		} else {
			pending[top]--
		}
		h, err := r.peekHeader()
		if err != nil {
			r.pos = start
			return err
		}
		if h.major == MajorSimple && h.indefinite {
			offset := r.pos
			r.pos = start
			return fmt.Errorf("%w at offset %d", ErrUnexpectedBrk, offset)
		}
		switch h.major {
		case MajorByteString, MajorTextString:
			if h.indefinite {
				if _, err := r.readString(h.major, 0); err != nil {
					r.pos = start
					return err
				}
				continue
			}
			if h.arg > uint64(len(r.data)-r.pos-h.size) {
				r.pos = start
				return ErrEndOfInput
			}
			r.pos += h.size + int(h.arg) // #nosec G115
		case MajorArray, MajorMap:
			r.pos += h.size
			if h.indefinite {
				// Map keys and values are counted as individual items until the break
				pending = append(pending, -1)
				continue
			}
			count := h.arg
			if h.major == MajorMap {
				if count > math.MaxInt64/2 {
					r.pos = start
					return ErrEndOfInput
				}
				count *= 2
			}
			if count > uint64(len(r.data)-r.pos) {
				r.pos = start
				return ErrEndOfInput
			}
			pending = append(pending, int64(count)) // #nosec G115
		case MajorTag:
			r.pos += h.size
			pending = append(pending, 1)
		default:
			r.pos += h.size
		}
	}
	return nil
}

// ReadRaw consumes one complete item and returns its raw bytes as a sub-slice of the input
func (r *Reader) ReadRaw() ([]byte, error) {
	start := r.pos
	if err := r.SkipItem(); err != nil {
		return nil, err
	}
	return r.data[start:r.pos:r.pos], nil
}

// ReadValue consumes one complete item and decodes it into dest using the generic decoder
func (r *Reader) ReadValue(dest any) error {
	start := r.pos
	raw, err := r.ReadRaw()
	if err != nil {
		return err
	}
	if _, err := Decode(raw, dest); err != nil {
		r.pos = start
		return err
	}
	return nil
}
