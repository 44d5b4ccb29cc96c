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

// Builtin identifies a builtin function. The values match the flat builtin tags
type Builtin uint8

const (
	AddInteger                      Builtin = 0
	SubtractInteger                 Builtin = 1
	MultiplyInteger                 Builtin = 2
	DivideInteger                   Builtin = 3
	QuotientInteger                 Builtin = 4
	RemainderInteger                Builtin = 5
	ModInteger                      Builtin = 6
	EqualsInteger                   Builtin = 7
	LessThanInteger                 Builtin = 8
	LessThanEqualsInteger           Builtin = 9
	AppendByteString                Builtin = 10
	ConsByteString                  Builtin = 11
	SliceByteString                 Builtin = 12
	LengthOfByteString              Builtin = 13
	IndexByteString                 Builtin = 14
	EqualsByteString                Builtin = 15
	LessThanByteString              Builtin = 16
	LessThanEqualsByteString        Builtin = 17
	Sha2_256                        Builtin = 18
	Sha3_256                        Builtin = 19
	Blake2b_256                     Builtin = 20
	VerifyEd25519Signature          Builtin = 21
	AppendString                    Builtin = 22
	EqualsString                    Builtin = 23
	EncodeUtf8                      Builtin = 24
	DecodeUtf8                      Builtin = 25
	IfThenElse                      Builtin = 26
	ChooseUnit                      Builtin = 27
	Trace                           Builtin = 28
	FstPair                         Builtin = 29
	SndPair                         Builtin = 30
	ChooseList                      Builtin = 31
	MkCons                          Builtin = 32
	HeadList                        Builtin = 33
	TailList                        Builtin = 34
	NullList                        Builtin = 35
	ChooseData                      Builtin = 36
	ConstrData                      Builtin = 37
	MapData                         Builtin = 38
	ListData                        Builtin = 39
	IData                           Builtin = 40
	BData                           Builtin = 41
	UnConstrData                    Builtin = 42
	UnMapData                       Builtin = 43
	UnListData                      Builtin = 44
	UnIData                         Builtin = 45
	UnBData                         Builtin = 46
	EqualsData                      Builtin = 47
	MkPairData                      Builtin = 48
	MkNilData                       Builtin = 49
	MkNilPairData                   Builtin = 50
	SerialiseData                   Builtin = 51
	VerifyEcdsaSecp256k1Signature   Builtin = 52
	VerifySchnorrSecp256k1Signature Builtin = 53
	Bls12_381_G1_Add                Builtin = 54
	Bls12_381_G1_Neg                Builtin = 55
	Bls12_381_G1_ScalarMul          Builtin = 56
	Bls12_381_G1_Equal              Builtin = 57
	Bls12_381_G1_Compress           Builtin = 58
	Bls12_381_G1_Uncompress         Builtin = 59
	Bls12_381_G1_HashToGroup        Builtin = 60
	Bls12_381_G2_Add                Builtin = 61
	Bls12_381_G2_Neg                Builtin = 62
	Bls12_381_G2_ScalarMul          Builtin = 63
	Bls12_381_G2_Equal              Builtin = 64
	Bls12_381_G2_Compress           Builtin = 65
	Bls12_381_G2_Uncompress         Builtin = 66
	Bls12_381_G2_HashToGroup        Builtin = 67
	Bls12_381_MillerLoop            Builtin = 68
	Bls12_381_MulMlResult           Builtin = 69
	Bls12_381_FinalVerify           Builtin = 70
	Keccak_256                      Builtin = 71
	Blake2b_224                     Builtin = 72
	IntegerToByteString             Builtin = 73
	ByteStringToInteger             Builtin = 74
	AndByteString                   Builtin = 75
	OrByteString                    Builtin = 76
	XorByteString                   Builtin = 77
	ComplementByteString            Builtin = 78
	ReadBit                         Builtin = 79
	WriteBits                       Builtin = 80
	ReplicateByte                   Builtin = 81
	ShiftByteString                 Builtin = 82
	RotateByteString                Builtin = 83
	CountSetBits                    Builtin = 84
	FindFirstSetBit                 Builtin = 85
	Ripemd_160                      Builtin = 86
	ExpModInteger                   Builtin = 87
	DropList                        Builtin = 88
	LengthOfArray                   Builtin = 89
	ListToArray                     Builtin = 90
	IndexArray                      Builtin = 91
	Bls12_381_G1_MultiScalarMul     Builtin = 92
	Bls12_381_G2_MultiScalarMul     Builtin = 93

	builtinCount = 94
)

// measure selects how an argument is sized for costing
type measure uint8

const (
	// measureMemory uses the memory size of the value
	measureMemory measure = iota
	// measureLiteral uses the absolute value of an integer
	measureLiteral
	// measureLiteralBytes uses the absolute value of an integer as a byte count,
	// rounded up to whole words
	measureLiteralBytes
	// measureLength uses the number of elements of a list
	measureLength
)

type builtinFunc func(m *Machine, args []value) (value, error)

type builtinInfo struct {
	name     string
	arity    int
	forces   int
	measures [3]measure
	fn       builtinFunc
}

var builtinTable [builtinCount]builtinInfo

var builtinsByName = map[string]Builtin{}

func init() {
	defs := []struct {
		b      Builtin
		name   string
		arity  int
		forces int
		fn     builtinFunc
	}{
		{AddInteger, "addInteger", 2, 0, addInteger},
		{SubtractInteger, "subtractInteger", 2, 0, subtractInteger},
		{MultiplyInteger, "multiplyInteger", 2, 0, multiplyInteger},
		{DivideInteger, "divideInteger", 2, 0, divideInteger},
		{QuotientInteger, "quotientInteger", 2, 0, quotientInteger},
		{RemainderInteger, "remainderInteger", 2, 0, remainderInteger},
		{ModInteger, "modInteger", 2, 0, modInteger},
		{EqualsInteger, "equalsInteger", 2, 0, equalsInteger},
		{LessThanInteger, "lessThanInteger", 2, 0, lessThanInteger},
		{LessThanEqualsInteger, "lessThanEqualsInteger", 2, 0, lessThanEqualsInteger},
		{AppendByteString, "appendByteString", 2, 0, appendByteString},
		{ConsByteString, "consByteString", 2, 0, consByteString},
		{SliceByteString, "sliceByteString", 3, 0, sliceByteString},
		{LengthOfByteString, "lengthOfByteString", 1, 0, lengthOfByteString},
		{IndexByteString, "indexByteString", 2, 0, indexByteString},
		{EqualsByteString, "equalsByteString", 2, 0, equalsByteString},
		{LessThanByteString, "lessThanByteString", 2, 0, lessThanByteString},
		{LessThanEqualsByteString, "lessThanEqualsByteString", 2, 0, lessThanEqualsByteString},
		{Sha2_256, "sha2_256", 1, 0, sha2_256},
		{Sha3_256, "sha3_256", 1, 0, sha3_256},
		{Blake2b_256, "blake2b_256", 1, 0, blake2b_256},
		{VerifyEd25519Signature, "verifyEd25519Signature", 3, 0, verifyEd25519Signature},
		{AppendString, "appendString", 2, 0, appendString},
		{EqualsString, "equalsString", 2, 0, equalsString},
		{EncodeUtf8, "encodeUtf8", 1, 0, encodeUtf8},
		{DecodeUtf8, "decodeUtf8", 1, 0, decodeUtf8},
		{IfThenElse, "ifThenElse", 3, 1, ifThenElse},
		{ChooseUnit, "chooseUnit", 2, 1, chooseUnit},
		{Trace, "trace", 2, 1, trace},
		{FstPair, "fstPair", 1, 2, fstPair},
		{SndPair, "sndPair", 1, 2, sndPair},
		{ChooseList, "chooseList", 3, 2, chooseList},
		{MkCons, "mkCons", 2, 1, mkCons},
		{HeadList, "headList", 1, 1, headList},
		{TailList, "tailList", 1, 1, tailList},
		{NullList, "nullList", 1, 1, nullList},
		{ChooseData, "chooseData", 6, 1, chooseData},
		{ConstrData, "constrData", 2, 0, constrData},
		{MapData, "mapData", 1, 0, mapData},
		{ListData, "listData", 1, 0, listData},
		{IData, "iData", 1, 0, iData},
		{BData, "bData", 1, 0, bData},
		{UnConstrData, "unConstrData", 1, 0, unConstrData},
		{UnMapData, "unMapData", 1, 0, unMapData},
		{UnListData, "unListData", 1, 0, unListData},
		{UnIData, "unIData", 1, 0, unIData},
		{UnBData, "unBData", 1, 0, unBData},
		{EqualsData, "equalsData", 2, 0, equalsData},
		{MkPairData, "mkPairData", 2, 0, mkPairData},
		{MkNilData, "mkNilData", 1, 0, mkNilData},
		{MkNilPairData, "mkNilPairData", 1, 0, mkNilPairData},
		{SerialiseData, "serialiseData", 1, 0, serialiseData},
		{VerifyEcdsaSecp256k1Signature, "verifyEcdsaSecp256k1Signature", 3, 0, verifyEcdsaSecp256k1Signature},
		{VerifySchnorrSecp256k1Signature, "verifySchnorrSecp256k1Signature", 3, 0, verifySchnorrSecp256k1Signature},
		{Bls12_381_G1_Add, "bls12_381_G1_add", 2, 0, blsG1Add},
		{Bls12_381_G1_Neg, "bls12_381_G1_neg", 1, 0, blsG1Neg},
		{Bls12_381_G1_ScalarMul, "bls12_381_G1_scalarMul", 2, 0, blsG1ScalarMul},
		{Bls12_381_G1_Equal, "bls12_381_G1_equal", 2, 0, blsG1Equal},
		{Bls12_381_G1_Compress, "bls12_381_G1_compress", 1, 0, blsG1Compress},
		{Bls12_381_G1_Uncompress, "bls12_381_G1_uncompress", 1, 0, blsG1Uncompress},
		{Bls12_381_G1_HashToGroup, "bls12_381_G1_hashToGroup", 2, 0, blsG1HashToGroup},
		{Bls12_381_G2_Add, "bls12_381_G2_add", 2, 0, blsG2Add},
		{Bls12_381_G2_Neg, "bls12_381_G2_neg", 1, 0, blsG2Neg},
		{Bls12_381_G2_ScalarMul, "bls12_381_G2_scalarMul", 2, 0, blsG2ScalarMul},
		{Bls12_381_G2_Equal, "bls12_381_G2_equal", 2, 0, blsG2Equal},
		{Bls12_381_G2_Compress, "bls12_381_G2_compress", 1, 0, blsG2Compress},
		{Bls12_381_G2_Uncompress, "bls12_381_G2_uncompress", 1, 0, blsG2Uncompress},
		{Bls12_381_G2_HashToGroup, "bls12_381_G2_hashToGroup", 2, 0, blsG2HashToGroup},
		{Bls12_381_MillerLoop, "bls12_381_millerLoop", 2, 0, blsMillerLoop},
		{Bls12_381_MulMlResult, "bls12_381_mulMlResult", 2, 0, blsMulMlResult},
		{Bls12_381_FinalVerify, "bls12_381_finalVerify", 2, 0, blsFinalVerify},
		{Keccak_256, "keccak_256", 1, 0, keccak_256},
		{Blake2b_224, "blake2b_224", 1, 0, blake2b_224},
		{IntegerToByteString, "integerToByteString", 3, 0, integerToByteString},
		{ByteStringToInteger, "byteStringToInteger", 2, 0, byteStringToInteger},
		{AndByteString, "andByteString", 3, 0, andByteString},
		{OrByteString, "orByteString", 3, 0, orByteString},
		{XorByteString, "xorByteString", 3, 0, xorByteString},
		{ComplementByteString, "complementByteString", 1, 0, complementByteString},
		{ReadBit, "readBit", 2, 0, readBit},
		{WriteBits, "writeBits", 3, 0, writeBits},
		{ReplicateByte, "replicateByte", 2, 0, replicateByte},
		{ShiftByteString, "shiftByteString", 2, 0, shiftByteString},
		{RotateByteString, "rotateByteString", 2, 0, rotateByteString},
		{CountSetBits, "countSetBits", 1, 0, countSetBits},
		{FindFirstSetBit, "findFirstSetBit", 1, 0, findFirstSetBit},
		{Ripemd_160, "ripemd_160", 1, 0, ripemd_160},
		{ExpModInteger, "expModInteger", 3, 0, expModInteger},
		{DropList, "dropList", 2, 1, dropList},
		{LengthOfArray, "lengthOfArray", 1, 1, lengthOfArray},
		{ListToArray, "listToArray", 1, 1, listToArray},
		{IndexArray, "indexArray", 2, 1, indexArray},
		{Bls12_381_G1_MultiScalarMul, "bls12_381_G1_multiScalarMul", 2, 0, blsG1MultiScalarMul},
		{Bls12_381_G2_MultiScalarMul, "bls12_381_G2_multiScalarMul", 2, 0, blsG2MultiScalarMul},
	}
	for _, def := range defs {
		builtinTable[def.b] = builtinInfo{
			name:   def.name,
			arity:  def.arity,
			forces: def.forces,
			fn:     def.fn,
		}
		builtinsByName[def.name] = def.b
	}
	// Arguments costed by something other than their memory size
	builtinTable[IntegerToByteString].measures[1] = measureLiteral
	builtinTable[ReplicateByte].measures[0] = measureLiteralBytes
	builtinTable[WriteBits].measures[1] = measureLength
	builtinTable[DropList].measures[0] = measureLiteral
	builtinTable[ListToArray].measures[0] = measureLength
	builtinTable[Bls12_381_G1_MultiScalarMul].measures[0] = measureLength
	builtinTable[Bls12_381_G2_MultiScalarMul].measures[0] = measureLength
}

func (b Builtin) String() string {
	if b < builtinCount {
		return builtinTable[b].name
	}
	return fmt.Sprintf("Builtin(%d)", uint8(b))
}

// Arity returns the number of value arguments of the builtin
func (b Builtin) Arity() int {
	return builtinTable[b].arity
}

// Forces returns the number of type arguments that must be forced away before the
// builtin accepts value arguments
func (b Builtin) Forces() int {
	return builtinTable[b].forces
}

// BuiltinByName looks up a builtin by its textual name
func BuiltinByName(name string) (Builtin, error) {
	b, ok := builtinsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}
	return b, nil
}

// argSize measures a builtin argument for costing
func argSize(ms measure, v value) int64 {
	c, ok := v.(Constant)
	if !ok {
		return 1
	}
	switch ms {
	case measureLiteral, measureLiteralBytes:
		i, ok := c.(*Integer)
		if !ok {
			return constantSize(c)
		}
		n := saturatedAbs(i.Value)
		if ms == measureLiteralBytes {
			if n == 0 {
				return 0
			}
			return (n-1)/8 + 1
		}
		return n
	case measureLength:
		switch l := c.(type) {
		case *ProtoList:
			return int64(len(l.Items))
		case *ProtoArray:
			return int64(len(l.Items))
		}
	}
	return constantSize(c)
}

var maxInt64 = big.NewInt(1<<63 - 1)

func saturatedAbs(v *big.Int) int64 {
	if v.CmpAbs(maxInt64) >= 0 {
		return 1<<63 - 1
	}
	n := v.Int64()
	if n < 0 {
		return -n
	}
	return n
}
