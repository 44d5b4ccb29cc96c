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
	"io"
)

// Writer appends CBOR items to an in-memory buffer using preferred (minimal length)
// serialization. Writes to the buffer cannot fail; WriteTo hands the result to a
// sink that can
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded data
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset discards all written data
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// WriteTo writes the encoded data to the provided io.Writer
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(w.buf)
	return int64(n), err
}

func (w *Writer) writeHeader(major MajorType, arg uint64) {
	mt := byte(major) << 5
	switch {
	case arg <= uint64(CborMaxUintSimple):
		w.buf = append(w.buf, mt|byte(arg))
	case arg <= 0xff:
		w.buf = append(w.buf, mt|24, byte(arg))
	case arg <= 0xffff:
		w.buf = append(w.buf, mt|25)
		w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(arg))
	case arg <= 0xffffffff:
		w.buf = append(w.buf, mt|26)
		w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(arg))
	default:
		w.buf = append(w.buf, mt|27)
		w.buf = binary.BigEndian.AppendUint64(w.buf, arg)
	}
}

// WriteUint writes an unsigned integer
func (w *Writer) WriteUint(v uint64) {
	w.writeHeader(MajorUint, v)
}

// WriteInt writes a signed integer
func (w *Writer) WriteInt(v int64) {
	if v >= 0 {
		w.writeHeader(MajorUint, uint64(v))
		return
	}
	w.writeHeader(MajorNegInt, uint64(-1-v))
}

// WriteNegative writes the negative integer -1-n
func (w *Writer) WriteNegative(n uint64) {
	w.writeHeader(MajorNegInt, n)
}

// WriteBytes writes a definite-length byte string
func (w *Writer) WriteBytes(b []byte) {
	w.writeHeader(MajorByteString, uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteBoundedBytes writes a byte string, splitting it into an indefinite-length
// sequence of chunks when it is longer than BoundedBytesChunkSize
func (w *Writer) WriteBoundedBytes(b []byte) {
	if len(b) <= BoundedBytesChunkSize {
		w.WriteBytes(b)
		return
	}
	w.buf = append(w.buf, CborTypeByteString|CborInfoIndefinite)
	for len(b) > 0 {
		n := min(len(b), BoundedBytesChunkSize)
		w.WriteBytes(b[:n])
		b = b[n:]
	}
	w.WriteBreak()
}

// WriteText writes a definite-length text string
func (w *Writer) WriteText(s string) {
	w.writeHeader(MajorTextString, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteArrayHeader writes a definite-length array header
func (w *Writer) WriteArrayHeader(n int) {
	w.writeHeader(MajorArray, uint64(n)) // #nosec G115
}

// WriteMapHeader writes a definite-length map header
func (w *Writer) WriteMapHeader(n int) {
	w.writeHeader(MajorMap, uint64(n)) // #nosec G115
}

// WriteIndefiniteArray starts an indefinite-length array which must be closed with WriteBreak
func (w *Writer) WriteIndefiniteArray() {
	w.buf = append(w.buf, CborTypeArray|CborInfoIndefinite)
}

// WriteIndefiniteMap starts an indefinite-length map which must be closed with WriteBreak
func (w *Writer) WriteIndefiniteMap() {
	w.buf = append(w.buf, CborTypeMap|CborInfoIndefinite)
}

// WriteBreak writes a break marker
func (w *Writer) WriteBreak() {
	w.buf = append(w.buf, CborBreak)
}

// WriteTag writes a tag header. The tagged item must be written next
func (w *Writer) WriteTag(tag uint64) {
	w.writeHeader(MajorTag, tag)
}

// WriteBool writes a CBOR boolean
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, CborTrue)
		return
	}
	w.buf = append(w.buf, CborFalse)
}

// WriteNull writes a CBOR null
func (w *Writer) WriteNull() {
	w.buf = append(w.buf, CborNull)
}

// WriteRaw appends pre-encoded CBOR
func (w *Writer) WriteRaw(raw []byte) {
	w.buf = append(w.buf, raw...)
}

// WriteValue encodes v with the generic encoder (which honors MarshalCBOR) and appends it
func (w *Writer) WriteValue(v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	w.buf = append(w.buf, data...)
	return nil
}
