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
	"math/big"
)

var bigOne = big.NewInt(1)

// BigInt is an arbitrary precision integer. Values that fit in a CBOR integer header
// are encoded natively, anything larger uses the bignum tags 2 and 3 with bounded bytes
type BigInt struct {
	*big.Int
}

func NewBigInt(v *big.Int) BigInt {
	return BigInt{Int: v}
}

func (b *BigInt) UnmarshalCBOR(data []byte) error {
	rd := NewReader(data)
	if err := b.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

// Decode reads an integer in native or bignum form
func (b *BigInt) Decode(rd *Reader) error {
	v, err := ReadBigInt(rd)
	if err != nil {
		return err
	}
	b.Int = v
	return nil
}

// ReadBigInt reads an integer in native or bignum form
func ReadBigInt(rd *Reader) (*big.Int, error) {
	start := rd.Offset()
	major, err := rd.PeekType()
	if err != nil {
		return nil, err
	}
	switch major {
	case MajorUint:
		v, err := rd.ReadUint()
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(v), nil
	case MajorNegInt:
		n, err := rd.ReadNegative()
		if err != nil {
			return nil, err
		}
		ret := new(big.Int).SetUint64(n)
		return ret.Sub(ret.Neg(ret), bigOne), nil
	case MajorTag:
		tag, err := rd.ReadTag()
		if err != nil {
			return nil, err
		}
		if tag != CborTagPosBignum && tag != CborTagNegBignum {
			rd.pos = start
			return nil, &InvalidTagError{Type: "BigInt", Tag: tag}
		}
		mag, err := rd.ReadBoundedBytes()
		if err != nil {
			rd.pos = start
			return nil, err
		}
		ret := new(big.Int).SetBytes(mag)
		if tag == CborTagNegBignum {
			ret.Sub(ret.Neg(ret), bigOne)
		}
		return ret, nil
	default:
		return nil, &TypeMismatchError{Expected: MajorUint, Found: major, Offset: start}
	}
}

func (b BigInt) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	b.Encode(w)
	return w.Bytes(), nil
}

// Encode writes the integer using the smallest applicable form
func (b BigInt) Encode(w *Writer) {
	WriteBigInt(w, b.Int)
}

// WriteBigInt writes v natively when it fits in a CBOR integer header and as a bignum
// otherwise. A nil value is written as 0
func WriteBigInt(w *Writer, v *big.Int) {
	if v == nil {
		w.WriteUint(0)
		return
	}
	if v.Sign() >= 0 {
		if v.IsUint64() {
			w.WriteUint(v.Uint64())
			return
		}
		w.WriteTag(CborTagPosBignum)
		w.WriteBoundedBytes(v.Bytes())
		return
	}
	// Negative values are stored as -1 - v
	n := new(big.Int).Neg(v)
	n.Sub(n, bigOne)
	if n.IsUint64() {
		w.WriteNegative(n.Uint64())
		return
	}
	w.WriteTag(CborTagNegBignum)
	w.WriteBoundedBytes(n.Bytes())
}

func (b BigInt) CborLen() int {
	if b.Int == nil {
		return 1
	}
	n := b.Int
	if n.Sign() < 0 {
		n = new(big.Int).Neg(n)
		n.Sub(n, bigOne)
	}
	if n.IsUint64() {
		return HeaderLen(n.Uint64())
	}
	// Bignum tags 2 and 3 fit in the initial byte
	return 1 + BoundedBytesLen(len(n.Bytes()))
}
