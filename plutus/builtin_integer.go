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
	"errors"
	"fmt"
	"math/big"
	"slices"
)

// maxByteStringWidth bounds the outputs of integerToByteString and replicateByte
const maxByteStringWidth = 8192

var (
	errDivisionByZero = errors.New("division by zero")
	errNegative       = errors.New("negative argument")
)

func addInteger(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	return NewInteger(new(big.Int).Add(x, y)), nil
}

func subtractInteger(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	return NewInteger(new(big.Int).Sub(x, y)), nil
}

func multiplyInteger(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	return NewInteger(new(big.Int).Mul(x, y)), nil
}

// floorDivMod divides rounding the quotient towards negative infinity, so the
// remainder takes the sign of the divisor
func floorDivMod(x *big.Int, y *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() != 0 && r.Sign() != y.Sign() {
		q.Sub(q, big.NewInt(1))
		r.Add(r, y)
	}
	return q, r
}

func divisionArgs(args []value) (*big.Int, *big.Int, error) {
	x, y, err := unwrapIntegers(args)
	if err != nil {
		return nil, nil, err
	}
	if y.Sign() == 0 {
		return nil, nil, errDivisionByZero
	}
	return x, y, nil
}

func divideInteger(_ *Machine, args []value) (value, error) {
	x, y, err := divisionArgs(args)
	if err != nil {
		return nil, err
	}
	q, _ := floorDivMod(x, y)
	return NewInteger(q), nil
}

func modInteger(_ *Machine, args []value) (value, error) {
	x, y, err := divisionArgs(args)
	if err != nil {
		return nil, err
	}
	_, r := floorDivMod(x, y)
	return NewInteger(r), nil
}

func quotientInteger(_ *Machine, args []value) (value, error) {
	x, y, err := divisionArgs(args)
	if err != nil {
		return nil, err
	}
	return NewInteger(new(big.Int).Quo(x, y)), nil
}

func remainderInteger(_ *Machine, args []value) (value, error) {
	x, y, err := divisionArgs(args)
	if err != nil {
		return nil, err
	}
	return NewInteger(new(big.Int).Rem(x, y)), nil
}

func equalsInteger(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	return NewBool(x.Cmp(y) == 0), nil
}

func lessThanInteger(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	return NewBool(x.Cmp(y) < 0), nil
}

func lessThanEqualsInteger(_ *Machine, args []value) (value, error) {
	x, y, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	return NewBool(x.Cmp(y) <= 0), nil
}

func expModInteger(_ *Machine, args []value) (value, error) {
	base, exp, err := unwrapIntegers(args)
	if err != nil {
		return nil, err
	}
	mod, err := unwrapInteger(args[2])
	if err != nil {
		return nil, err
	}
	if mod.Sign() <= 0 {
		return nil, fmt.Errorf("modulus %s is not positive", mod)
	}
	if mod.Cmp(big.NewInt(1)) == 0 {
		return NewInt(0), nil
	}
	b := new(big.Int).Mod(base, mod)
	if exp.Sign() >= 0 {
		return NewInteger(new(big.Int).Exp(b, exp, mod)), nil
	}
	inv := new(big.Int).ModInverse(b, mod)
	if inv == nil {
		return nil, fmt.Errorf("%s has no inverse modulo %s", base, mod)
	}
	return NewInteger(new(big.Int).Exp(inv, new(big.Int).Neg(exp), mod)), nil
}

func integerToByteString(_ *Machine, args []value) (value, error) {
	bigEndian, err := unwrapBool(args[0])
	if err != nil {
		return nil, err
	}
	widthArg, err := unwrapInteger(args[1])
	if err != nil {
		return nil, err
	}
	n, err := unwrapInteger(args[2])
	if err != nil {
		return nil, err
	}
	width, ok := smallInt(widthArg)
	if !ok || width < 0 || width > maxByteStringWidth {
		return nil, fmt.Errorf("invalid width %s", widthArg)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", errNegative, n)
	}
	if n.BitLen() > 8*maxByteStringWidth {
		return nil, fmt.Errorf("integer %d bits long exceeds the maximum width", n.BitLen())
	}
	raw := n.Bytes()
	if width == 0 {
		width = len(raw)
	}
	if len(raw) > width {
		return nil, fmt.Errorf("integer does not fit in %d bytes", width)
	}
	ret := make([]byte, width)
	copy(ret[width-len(raw):], raw)
	if !bigEndian {
		slices.Reverse(ret)
	}
	return NewByteString(ret), nil
}

func byteStringToInteger(_ *Machine, args []value) (value, error) {
	bigEndian, err := unwrapBool(args[0])
	if err != nil {
		return nil, err
	}
	bs, err := unwrapByteString(args[1])
	if err != nil {
		return nil, err
	}
	if !bigEndian {
		bs = slices.Clone(bs)
		slices.Reverse(bs)
	}
	return NewInteger(new(big.Int).SetBytes(bs)), nil
}
