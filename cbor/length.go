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

// Lengther is implemented by types that can compute their encoded length without
// encoding. CborLen returns 0 when the value cannot be encoded
type Lengther interface {
	CborLen() int
}

// HeaderLen returns the size of a minimal CBOR header carrying the provided argument
func HeaderLen(arg uint64) int {
	switch {
	case arg <= uint64(CborMaxUintSimple):
		return 1
	case arg <= 0xff:
		return 2
	case arg <= 0xffff:
		return 3
	case arg <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// BytesLen returns the encoded size of a definite byte or text string of n bytes
func BytesLen(n int) int {
	return HeaderLen(uint64(n)) + n // #nosec G115
}

// BoundedBytesLen returns the encoded size of a bounded byte string of n bytes
func BoundedBytesLen(n int) int {
	if n <= BoundedBytesChunkSize {
		return BytesLen(n)
	}
	full := n / BoundedBytesChunkSize
	// Indefinite header and break
	ret := 2 + full*BytesLen(BoundedBytesChunkSize)
	if rest := n % BoundedBytesChunkSize; rest > 0 {
		ret += BytesLen(rest)
	}
	return ret
}

// IntLen returns the encoded size of a signed integer
func IntLen(v int64) int {
	if v >= 0 {
		return HeaderLen(uint64(v))
	}
	return HeaderLen(uint64(-1 - v))
}

// Len returns the encoded length of v, using CborLen when available and encoding
// otherwise
func Len(v any) (int, error) {
	if l, ok := v.(Lengther); ok {
		if n := l.CborLen(); n > 0 {
			return n, nil
		}
	}
	data, err := Encode(v)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}
