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
	"fmt"
	"math/big"
)

// Argument unwrapping for builtin implementations. A value of the wrong type is a
// type mismatch rather than a domain error

func mismatch(expected string, v value) error {
	if c, ok := v.(Constant); ok {
		return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, expected, c.Type())
	}
	return fmt.Errorf("%w: expected %s, got a non-constant value", ErrTypeMismatch, expected)
}

func unwrapInteger(v value) (*big.Int, error) {
	c, ok := v.(*Integer)
	if !ok {
		return nil, mismatch("integer", v)
	}
	return c.Value, nil
}

func unwrapByteString(v value) ([]byte, error) {
	c, ok := v.(*ByteString)
	if !ok {
		return nil, mismatch("bytestring", v)
	}
	return c.Value, nil
}

func unwrapString(v value) (string, error) {
	c, ok := v.(*String)
	if !ok {
		return "", mismatch("string", v)
	}
	return c.Value, nil
}

func unwrapBool(v value) (bool, error) {
	c, ok := v.(*Bool)
	if !ok {
		return false, mismatch("bool", v)
	}
	return c.Value, nil
}

func unwrapUnit(v value) error {
	if _, ok := v.(*Unit); !ok {
		return mismatch("unit", v)
	}
	return nil
}

func unwrapData(v value) (Data, error) {
	c, ok := v.(*DataConstant)
	if !ok {
		return nil, mismatch("data", v)
	}
	return c.Value, nil
}

func unwrapList(v value) (*ProtoList, error) {
	c, ok := v.(*ProtoList)
	if !ok {
		return nil, mismatch("list", v)
	}
	return c, nil
}

func unwrapArray(v value) (*ProtoArray, error) {
	c, ok := v.(*ProtoArray)
	if !ok {
		return nil, mismatch("array", v)
	}
	return c, nil
}

func unwrapPair(v value) (*ProtoPair, error) {
	c, ok := v.(*ProtoPair)
	if !ok {
		return nil, mismatch("pair", v)
	}
	return c, nil
}

func unwrapG1(v value) (*G1Element, error) {
	c, ok := v.(*G1Element)
	if !ok {
		return nil, mismatch("bls12_381_G1_element", v)
	}
	return c, nil
}

func unwrapG2(v value) (*G2Element, error) {
	c, ok := v.(*G2Element)
	if !ok {
		return nil, mismatch("bls12_381_G2_element", v)
	}
	return c, nil
}

func unwrapMlResult(v value) (*MlResult, error) {
	c, ok := v.(*MlResult)
	if !ok {
		return nil, mismatch("bls12_381_mlresult", v)
	}
	return c, nil
}

// unwrapIntegers unwraps two integer arguments
func unwrapIntegers(args []value) (*big.Int, *big.Int, error) {
	x, err := unwrapInteger(args[0])
	if err != nil {
		return nil, nil, err
	}
	y, err := unwrapInteger(args[1])
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// unwrapByteStrings unwraps two bytestring arguments
func unwrapByteStrings(args []value) ([]byte, []byte, error) {
	x, err := unwrapByteString(args[0])
	if err != nil {
		return nil, nil, err
	}
	y, err := unwrapByteString(args[1])
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// smallInt converts an integer to an int, reporting whether it fits
func smallInt(v *big.Int) (int, bool) {
	if !v.IsInt64() {
		return 0, false
	}
	n := v.Int64()
	if int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}
