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

package plutus

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"slices"
)

var errIndexOutOfRange = errors.New("index out of range")

func appendByteString(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapByteStrings(args)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, 0, len(x)+len(y))
	ret = append(ret, x...)
	ret = append(ret, y...)
	return NewByteString(ret), nil
}

func consByteString(m *Machine, args []value) (value, error) {
	n, err := unwrapInteger(args[0])
	if err != nil {
		return nil, err
	}
	bs, err := unwrapByteString(args[1])
	if err != nil {
		return nil, err
	}
	var b byte
	if m.costModel.language == LanguageV1 {
		// PlutusV1 wraps the byte value
		b = byte(new(big.Int).Mod(n, big.NewInt(256)).Uint64())
	} else {
		if n.Sign() < 0 || n.Cmp(big.NewInt(255)) > 0 {
			return nil, fmt.Errorf("byte value %s out of range", n)
		}
		b = byte(n.Uint64())
	}
	ret := make([]byte, 0, len(bs)+1)
	ret = append(ret, b)
	ret = append(ret, bs...)
	return NewByteString(ret), nil
}

// clampIndex limits v to the range [0, limit]
func clampIndex(v *big.Int, limit int) int {
	if v.Sign() <= 0 {
		return 0
	}
	if n, ok := smallInt(v); ok && n < limit {
		return n
	}
	return limit
}

func sliceByteString(_ *Machine, args []value) (value, error) {
	start, count, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	bs, err := unwrapByteString(args[2])
	if err != nil {
		return nil, err
	}
	from := clampIndex(start, len(bs))
	to := from + clampIndex(count, len(bs)-from)
	return NewByteString(slices.Clone(bs[from:to])), nil
}

func lengthOfByteString(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	return NewInt(int64(len(bs))), nil
}

func indexByteString(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	idx, err := unwrapInteger(args[1])
	if err != nil {
		return nil, err
	}
	i, ok := smallInt(idx)
	if !ok || i < 0 || i >= len(bs) {
		return nil, fmt.Errorf("%w: %s of %d bytes", errIndexOutOfRange, idx, len(bs))
	}
	return NewInt(int64(bs[i])), nil
}

func equalsByteString(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapByteStrings(args)
	if err != nil {
		return nil, err
	}
	return NewBool(bytes.Equal(x, y)), nil
}

func lessThanByteString(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapByteStrings(args)
	if err != nil {
		return nil, err
	}
	return NewBool(bytes.Compare(x, y) < 0), nil
}

func lessThanEqualsByteString(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapByteStrings(args)
	if err != nil {
		return nil, err
	}
	return NewBool(bytes.Compare(x, y) <= 0), nil
}

// bitwise combines two byte strings byte by byte. With extend set the result has the
// length of the longer input and its tail is copied from it, otherwise the result is
// truncated to the shorter input
func bitwise(args []value, op func(a byte, b byte) byte) (value, error) {
	extend, err := unwrapBool(args[0])
	if err != nil {
		return nil, err
	}
	x, y, err := unwrapByteStrings(args[1:])
	if err != nil {
		return nil, err
	}
	if len(x) < len(y) {
		x, y = y, x
	}
	var ret []byte
	if extend {
		ret = slices.Clone(x)
	} else {
		ret = make([]byte, len(y))
	}
	for i := range y {
		ret[i] = op(x[i], y[i])
	}
	return NewByteString(ret), nil
}

func andByteString(_ *Machine, args []value) (value, error) {
	return bitwise(args, func(a byte, b byte) byte { return a & b })
}

func orByteString(_ *Machine, args []value) (value, error) {
	return bitwise(args, func(a byte, b byte) byte { return a | b })
}

func xorByteString(_ *Machine, args []value) (value, error) {
	return bitwise(args, func(a byte, b byte) byte { return a ^ b })
}

func complementByteString(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	ret := make([]byte, len(bs))
	for i, b := range bs {
		ret[i] = ^b
	}
	return NewByteString(ret), nil
}

// bitPosition locates a bit index, where bit 0 is the least significant bit of the
// last byte
func bitPosition(idx *big.Int, length int) (int, byte, error) {
	i, ok := smallInt(idx)
	if !ok || i < 0 || i >= 8*length {
		return 0, 0, fmt.Errorf("%w: bit %s of %d bytes", errIndexOutOfRange, idx, length)
	}
	return length - 1 - i/8, byte(1) << (i % 8), nil
}

func readBit(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	idx, err := unwrapInteger(args[1])
	if err != nil {
		return nil, err
	}
	pos, mask, err := bitPosition(idx, len(bs))
	if err != nil {
		return nil, err
	}
	return NewBool(bs[pos]&mask != 0), nil
}

func writeBits(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	indices, err := unwrapList(args[1])
	if err != nil {
		return nil, err
	}
	set, err := unwrapBool(args[2])
	if err != nil {
		return nil, err
	}
	ret := slices.Clone(bs)
	for _, item := range indices.Items {
		idx, err := unwrapInteger(item)
		if err != nil {
			return nil, err
		}
		pos, mask, err := bitPosition(idx, len(ret))
		if err != nil {
			return nil, err
		}
		if set {
			ret[pos] |= mask
		} else {
			ret[pos] &^= mask
		}
	}
	return NewByteString(ret), nil
}

func replicateByte(_ *Machine, args []value) (value, error) {
	n, b, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	count, ok := smallInt(n)
	if !ok || count < 0 || count > maxByteStringWidth {
		return nil, fmt.Errorf("invalid length %s", n)
	}
	if b.Sign() < 0 || b.Cmp(big.NewInt(255)) > 0 {
		return nil, fmt.Errorf("byte value %s out of range", b)
	}
	return NewByteString(bytes.Repeat([]byte{byte(b.Uint64())}, count)), nil
}

// bitMask returns 2^n - 1
func bitMask(n int) *big.Int {
	ret := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return ret.Sub(ret, big.NewInt(1))
}

func shiftByteString(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	shift, err := unwrapInteger(args[1])
	if err != nil {
		return nil, err
	}
	length := 8 * len(bs)
	k, ok := smallInt(shift)
	if !ok || k >= length || k <= -length {
		return NewByteString(make([]byte, len(bs))), nil
	}
	v := new(big.Int).SetBytes(bs)
	if k > 0 {
		v.Lsh(v, uint(k))
		v.And(v, bitMask(length))
	} else {
		v.Rsh(v, uint(-k))
	}
	return NewByteString(v.FillBytes(make([]byte, len(bs)))), nil
}

func rotateByteString(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	rotation, err := unwrapInteger(args[1])
	if err != nil {
		return nil, err
	}
	length := 8 * len(bs)
	if length == 0 {
		return NewByteString([]byte{}), nil
	}
	k := int(new(big.Int).Mod(rotation, big.NewInt(int64(length))).Int64())
	if k == 0 {
		return NewByteString(slices.Clone(bs)), nil
	}
	v := new(big.Int).SetBytes(bs)
	hi := new(big.Int).Lsh(v, uint(k))
	hi.And(hi, bitMask(length))
	lo := new(big.Int).Rsh(v, uint(length-k))
	hi.Or(hi, lo)
	return NewByteString(hi.FillBytes(make([]byte, len(bs)))), nil
}

func countSetBits(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	var n int
	for _, b := range bs {
		n += bits.OnesCount8(b)
	}
	return NewInt(int64(n)), nil
}

func findFirstSetBit(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	for i := len(bs) - 1; i >= 0; i-- {
		if bs[i] != 0 {
			return NewInt(int64((len(bs)-1-i)*8 + bits.TrailingZeros8(bs[i]))), nil
		}
	}
	return NewInt(-1), nil
}
