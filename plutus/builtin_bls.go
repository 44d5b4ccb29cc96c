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

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	blsG1CompressedSize = bls12381.SizeOfG1AffineCompressed
	blsG2CompressedSize = bls12381.SizeOfG2AffineCompressed
	// blsMaxDstLength is the longest accepted hash-to-curve domain separation tag
	blsMaxDstLength = 255
)

var errBlsEncoding = errors.New("invalid BLS12-381 point encoding")

// blsScalar reduces an integer modulo the group order
func blsScalar(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, fr.Modulus())
}

func checkCompressed(bs []byte, size int) error {
	if len(bs) != size {
		return fmt.Errorf("%w: %d bytes, expected %d", errBlsEncoding, len(bs), size)
	}
	if bs[0]&0x80 == 0 {
		return fmt.Errorf("%w: compression flag not set", errBlsEncoding)
	}
	return nil
}

func checkDst(dst []byte) error {
	if len(dst) > blsMaxDstLength {
		return fmt.Errorf("domain separation tag of %d bytes is too long", len(dst))
	}
	return nil
}

func blsG1Add(_ *Machine, args []value) (value, error) {
	p, err := unwrapG1(args[0])
	if err != nil {
		return nil, err
	}
	q, err := unwrapG1(args[1])
	if err != nil {
		return nil, err
	}
	ret := &G1Element{}
	ret.Point.Set(&p.Point)
	ret.Point.AddAssign(&q.Point)
	return ret, nil
}

func blsG1Neg(_ *Machine, args []value) (value, error) {
	p, err := unwrapG1(args[0])
	if err != nil {
		return nil, err
	}
	ret := &G1Element{}
	ret.Point.Neg(&p.Point)
	return ret, nil
}

func blsG1ScalarMul(_ *Machine, args []value) (value, error) {
	s, err := unwrapInteger(args[0])
	if err != nil {
		return nil, err
	}
	p, err := unwrapG1(args[1])
	if err != nil {
		return nil, err
	}
	ret := &G1Element{}
	ret.Point.ScalarMultiplication(&p.Point, blsScalar(s))
	return ret, nil
}

func blsG1Equal(_ *Machine, args []value) (value, error) {
	p, err := unwrapG1(args[0])
	if err != nil {
		return nil, err
	}
	q, err := unwrapG1(args[1])
	if err != nil {
		return nil, err
	}
	return NewBool(p.Point.Equal(&q.Point)), nil
}

func blsG1Compress(_ *Machine, args []value) (value, error) {
	p, err := unwrapG1(args[0])
	if err != nil {
		return nil, err
	}
	var a bls12381.G1Affine
	a.FromJacobian(&p.Point)
	b := a.Bytes()
	return NewByteString(b[:]), nil
}

// UncompressG1 decodes a compressed G1 point, checking that it lies in the subgroup
func UncompressG1(bs []byte) (*G1Element, error) {
	if err := checkCompressed(bs, blsG1CompressedSize); err != nil {
		return nil, err
	}
	var a bls12381.G1Affine
	if _, err := a.SetBytes(bs); err != nil {
		return nil, fmt.Errorf("%w: %w", errBlsEncoding, err)
	}
	ret := &G1Element{}
	ret.Point.FromAffine(&a)
	return ret, nil
}

func blsG1Uncompress(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	return UncompressG1(bs)
}

func blsG1HashToGroup(_ *Machine, args []value) (value, error) {
	msg, dst, err := unwrapByteStrings(args)
	if err != nil {
		return nil, err
	}
	if err := checkDst(dst); err != nil {
		return nil, err
	}
	a, err := bls12381.HashToG1(msg, dst)
	if err != nil {
		return nil, err
	}
	ret := &G1Element{}
	ret.Point.FromAffine(&a)
	return ret, nil
}

func blsG2Add(_ *Machine, args []value) (value, error) {
	p, err := unwrapG2(args[0])
	if err != nil {
		return nil, err
	}
	q, err := unwrapG2(args[1])
	if err != nil {
		return nil, err
	}
	ret := &G2Element{}
	ret.Point.Set(&p.Point)
	ret.Point.AddAssign(&q.Point)
	return ret, nil
}

func blsG2Neg(_ *Machine, args []value) (value, error) {
	p, err := unwrapG2(args[0])
	if err != nil {
		return nil, err
	}
	ret := &G2Element{}
	ret.Point.Neg(&p.Point)
	return ret, nil
}

func blsG2ScalarMul(_ *Machine, args []value) (value, error) {
	s, err := unwrapInteger(args[0])
	if err != nil {
		return nil, err
	}
	p, err := unwrapG2(args[1])
	if err != nil {
		return nil, err
	}
	ret := &G2Element{}
	ret.Point.ScalarMultiplication(&p.Point, blsScalar(s))
	return ret, nil
}

func blsG2Equal(_ *Machine, args []value) (value, error) {
	p, err := unwrapG2(args[0])
	if err != nil {
		return nil, err
	}
	q, err := unwrapG2(args[1])
	if err != nil {
		return nil, err
	}
	return NewBool(p.Point.Equal(&q.Point)), nil
}

func blsG2Compress(_ *Machine, args []value) (value, error) {
	p, err := unwrapG2(args[0])
	if err != nil {
		return nil, err
	}
	var a bls12381.G2Affine
	a.FromJacobian(&p.Point)
	b := a.Bytes()
	return NewByteString(b[:]), nil
}

// UncompressG2 decodes a compressed G2 point, checking that it lies in the subgroup
func UncompressG2(bs []byte) (*G2Element, error) {
	if err := checkCompressed(bs, blsG2CompressedSize); err != nil {
		return nil, err
	}
	var a bls12381.G2Affine
	if _, err := a.SetBytes(bs); err != nil {
		return nil, fmt.Errorf("%w: %w", errBlsEncoding, err)
	}
	ret := &G2Element{}
	ret.Point.FromAffine(&a)
	return ret, nil
}

func blsG2Uncompress(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	return UncompressG2(bs)
}

func blsG2HashToGroup(_ *Machine, args []value) (value, error) {
	msg, dst, err := unwrapByteStrings(args)
	if err != nil {
		return nil, err
	}
	if err := checkDst(dst); err != nil {
		return nil, err
	}
	a, err := bls12381.HashToG2(msg, dst)
	if err != nil {
		return nil, err
	}
	ret := &G2Element{}
	ret.Point.FromAffine(&a)
	return ret, nil
}

func blsMillerLoop(_ *Machine, args []value) (value, error) {
	p, err := unwrapG1(args[0])
	if err != nil {
		return nil, err
	}
	q, err := unwrapG2(args[1])
	if err != nil {
		return nil, err
	}
	var pa bls12381.G1Affine
	var qa bls12381.G2Affine
	pa.FromJacobian(&p.Point)
	qa.FromJacobian(&q.Point)
	res, err := bls12381.MillerLoop([]bls12381.G1Affine{pa}, []bls12381.G2Affine{qa})
	if err != nil {
		return nil, err
	}
	return &MlResult{Value: res}, nil
}

func blsMulMlResult(_ *Machine, args []value) (value, error) {
	x, err := unwrapMlResult(args[0])
	if err != nil {
		return nil, err
	}
	y, err := unwrapMlResult(args[1])
	if err != nil {
		return nil, err
	}
	ret := &MlResult{}
	ret.Value.Mul(&x.Value, &y.Value)
	return ret, nil
}

func blsFinalVerify(_ *Machine, args []value) (value, error) {
	x, err := unwrapMlResult(args[0])
	if err != nil {
		return nil, err
	}
	y, err := unwrapMlResult(args[1])
	if err != nil {
		return nil, err
	}
	fx := bls12381.FinalExponentiation(&x.Value)
	fy := bls12381.FinalExponentiation(&y.Value)
	return NewBool(fx.Equal(&fy)), nil
}

// scalarPointLists unwraps the scalar and point lists of a multi-scalar
// multiplication. Extra elements of the longer list are ignored
func scalarPointLists(args []value, elem Type) ([]*big.Int, []Constant, error) {
	scalars, err := unwrapList(args[0])
	if err != nil {
		return nil, nil, err
	}
	points, err := unwrapList(args[1])
	if err != nil {
		return nil, nil, err
	}
	if !scalars.Elem.Equal(IntegerType) {
		return nil, nil, mismatch("(list integer)", args[0])
	}
	if !points.Elem.Equal(elem) {
		return nil, nil, mismatch(ListOf(elem).String(), args[1])
	}
	n := min(len(scalars.Items), len(points.Items))
	ret := make([]*big.Int, n)
	for i := range n {
		ret[i] = blsScalar(scalars.Items[i].(*Integer).Value)
	}
	return ret, points.Items[:n], nil
}

func blsG1MultiScalarMul(_ *Machine, args []value) (value, error) {
	scalars, points, err := scalarPointLists(args, G1Type)
	if err != nil {
		return nil, err
	}
	ret := &G1Element{}
	ret.Point.FromAffine(&bls12381.G1Affine{})
	var term bls12381.G1Jac
	for i, s := range scalars {
		term.ScalarMultiplication(&points[i].(*G1Element).Point, s)
		ret.Point.AddAssign(&term)
	}
	return ret, nil
}

func blsG2MultiScalarMul(_ *Machine, args []value) (value, error) {
	scalars, points, err := scalarPointLists(args, G2Type)
	if err != nil {
		return nil, err
	}
	ret := &G2Element{}
	ret.Point.FromAffine(&bls12381.G2Affine{})
	var term bls12381.G2Jac
	for i, s := range scalars {
		term.ScalarMultiplication(&points[i].(*G2Element).Point, s)
		ret.Point.AddAssign(&term)
	}
	return ret, nil
}
