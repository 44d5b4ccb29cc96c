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
	"math"
	"slices"
)

// Language is the script language a cost model applies to
type Language uint8

const (
	LanguageV1 Language = 1
	LanguageV2 Language = 2
	LanguageV3 Language = 3
)

func (l Language) String() string {
	switch l {
	case LanguageV1:
		return "PlutusV1"
	case LanguageV2:
		return "PlutusV2"
	case LanguageV3:
		return "PlutusV3"
	}
	return fmt.Sprintf("Language(%d)", uint8(l))
}

// Budget is a pair of execution (CPU) and memory unit counters
type Budget struct {
	Cpu int64 `yaml:"cpu"`
	Mem int64 `yaml:"mem"`
}

// DefaultBudget is the per-transaction execution limit on mainnet
var DefaultBudget = Budget{Cpu: 10_000_000_000, Mem: 14_000_000}

func (b Budget) Add(o Budget) Budget {
	return Budget{Cpu: satAdd(b.Cpu, o.Cpu), Mem: satAdd(b.Mem, o.Mem)}
}

func (b Budget) Sub(o Budget) Budget {
	return Budget{Cpu: b.Cpu - o.Cpu, Mem: b.Mem - o.Mem}
}

func (b Budget) String() string {
	return fmt.Sprintf("{cpu: %d, mem: %d}", b.Cpu, b.Mem)
}

// stepKind is a machine step with its own cost. The order matches the cost model
// parameter layout
type stepKind uint8

const (
	stepApply stepKind = iota
	stepBuiltin
	stepConstant
	stepDelay
	stepForce
	stepLambda
	stepStartup
	stepVariable
	stepConstr
	stepCase
	stepKindCount
)

const (
	// Offset of the base machine costs in every layout
	machineCostsIndex = 17
	// Offset of the constr and case costs in the V3 layout
	datatypeCostsIndex = 193
)

// shape is the form of a cost function over the sizes x, y and z of the first three
// arguments of a builtin
type shape uint8

const (
	shapeConstant shape = iota
	shapeLinearInX
	shapeLinearInY
	shapeLinearInZ
	shapeAddedSizes
	shapeSubtractedSizes
	shapeMultipliedSizes
	shapeMinSize
	shapeMaxSize
	shapeLinearOnDiagonal
	shapeConstAboveDiagonal
	shapeQuadraticAboveDiagonal
	shapeQuadraticInY
	shapeQuadraticInZ
	shapeLinearInYAndZ
	shapeLinearInMaxYZ
	shapeLiteralInYOrLinearInZ
	shapeExpMod
)

func (s shape) paramCount() int {
	switch s {
	case shapeConstant:
		return 1
	case shapeSubtractedSizes, shapeLinearOnDiagonal, shapeConstAboveDiagonal,
		shapeQuadraticInY, shapeQuadraticInZ, shapeLinearInYAndZ, shapeExpMod:
		return 3
	case shapeQuadraticAboveDiagonal:
		return 8
	}
	return 2
}

type costFunction struct {
	shape  shape
	params []int64
}

func (f costFunction) cost(x int64, y int64, z int64) int64 {
	p := f.params
	switch f.shape {
	case shapeConstant:
		return p[0]
	case shapeLinearInX:
		return linear(p[0], p[1], x)
	case shapeLinearInY:
		return linear(p[0], p[1], y)
	case shapeLinearInZ:
		return linear(p[0], p[1], z)
	case shapeAddedSizes:
		return linear(p[0], p[1], satAdd(x, y))
	case shapeSubtractedSizes:
		return linear(p[0], p[2], max(p[1], x-y))
	case shapeMultipliedSizes:
		return linear(p[0], p[1], satMul(x, y))
	case shapeMinSize:
		return linear(p[0], p[1], min(x, y))
	case shapeMaxSize:
		return linear(p[0], p[1], max(x, y))
	case shapeLinearOnDiagonal:
		if x == y {
			return linear(p[1], p[2], x)
		}
		return p[0]
	case shapeConstAboveDiagonal:
		if x < y {
			return p[0]
		}
		return linear(p[1], p[2], satMul(x, y))
	case shapeQuadraticAboveDiagonal:
		if x < y {
			return p[0]
		}
		ret := p[1]
		ret = satAdd(ret, satMul(p[4], x))
		ret = satAdd(ret, satMul(p[6], satMul(x, x)))
		ret = satAdd(ret, satMul(p[2], y))
		ret = satAdd(ret, satMul(p[5], satMul(x, y)))
		ret = satAdd(ret, satMul(p[3], satMul(y, y)))
		return max(p[7], ret)
	case shapeQuadraticInY:
		return quadratic(p, y)
	case shapeQuadraticInZ:
		return quadratic(p, z)
	case shapeLinearInYAndZ:
		return satAdd(linear(p[0], p[1], y), satMul(p[2], z))
	case shapeLinearInMaxYZ:
		return linear(p[0], p[1], max(y, z))
	case shapeLiteralInYOrLinearInZ:
		if y == 0 {
			return linear(p[0], p[1], z)
		}
		return (y-1)/8 + 1
	case shapeExpMod:
		ym := satMul(y, z)
		ret := satAdd(p[0], satAdd(satMul(p[1], ym), satMul(p[2], satMul(ym, z))))
		if x > z {
			ret = satAdd(ret, ret/2)
		}
		return ret
	}
	return 0
}

func linear(intercept int64, slope int64, x int64) int64 {
	return satAdd(intercept, satMul(slope, x))
}

func quadratic(p []int64, x int64) int64 {
	return satAdd(linear(p[0], p[1], x), satMul(p[2], satMul(x, x)))
}

func satAdd(a int64, b int64) int64 {
	c := a + b
	if (c > a) == (b > 0) {
		return c
	}
	if b > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}

func satMul(a int64, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if c/b == a && !(a == -1 && b == math.MinInt64) && !(b == -1 && a == math.MinInt64) {
		return c
	}
	if (a > 0) == (b > 0) {
		return math.MaxInt64
	}
	return math.MinInt64
}

type builtinCost struct {
	cpu costFunction
	mem costFunction
}

func (c *builtinCost) budget(x int64, y int64, z int64) Budget {
	return Budget{Cpu: c.cpu.cost(x, y, z), Mem: c.mem.cost(x, y, z)}
}

// layoutEntry is one builtin in a cost model parameter array
type layoutEntry struct {
	builtin Builtin
	cpu     shape
	mem     shape
}

// layoutMachineCosts marks the position of the base machine costs in a layout
var layoutMachineCosts = layoutEntry{builtin: builtinCount}

// layoutDatatypeCosts marks the position of the constr and case costs
var layoutDatatypeCosts = layoutEntry{builtin: builtinCount + 1}

func legacyLayout(lang Language) []layoutEntry {
	divCpu, divMem, modMem := shapeConstAboveDiagonal, shapeSubtractedSizes, shapeSubtractedSizes
	if lang == LanguageV3 {
		divCpu, modMem = shapeQuadraticAboveDiagonal, shapeLinearInY
	}
	ret := []layoutEntry{
		{AddInteger, shapeMaxSize, shapeMaxSize},
		{AppendByteString, shapeAddedSizes, shapeAddedSizes},
		{AppendString, shapeAddedSizes, shapeAddedSizes},
		{BData, shapeConstant, shapeConstant},
		{Blake2b_256, shapeLinearInX, shapeConstant},
		layoutMachineCosts,
		{ChooseData, shapeConstant, shapeConstant},
		{ChooseList, shapeConstant, shapeConstant},
		{ChooseUnit, shapeConstant, shapeConstant},
		{ConsByteString, shapeLinearInY, shapeAddedSizes},
		{ConstrData, shapeConstant, shapeConstant},
		{DecodeUtf8, shapeLinearInX, shapeLinearInX},
		{DivideInteger, divCpu, divMem},
		{EncodeUtf8, shapeLinearInX, shapeLinearInX},
		{EqualsByteString, shapeLinearOnDiagonal, shapeConstant},
		{EqualsData, shapeMinSize, shapeConstant},
		{EqualsInteger, shapeMinSize, shapeConstant},
		{EqualsString, shapeLinearOnDiagonal, shapeConstant},
		{FstPair, shapeConstant, shapeConstant},
		{HeadList, shapeConstant, shapeConstant},
		{IData, shapeConstant, shapeConstant},
		{IfThenElse, shapeConstant, shapeConstant},
		{IndexByteString, shapeConstant, shapeConstant},
		{LengthOfByteString, shapeConstant, shapeConstant},
		{LessThanByteString, shapeMinSize, shapeConstant},
		{LessThanEqualsByteString, shapeMinSize, shapeConstant},
		{LessThanEqualsInteger, shapeMinSize, shapeConstant},
		{LessThanInteger, shapeMinSize, shapeConstant},
		{ListData, shapeConstant, shapeConstant},
		{MapData, shapeConstant, shapeConstant},
		{MkCons, shapeConstant, shapeConstant},
		{MkNilData, shapeConstant, shapeConstant},
		{MkNilPairData, shapeConstant, shapeConstant},
		{MkPairData, shapeConstant, shapeConstant},
		{ModInteger, divCpu, modMem},
		{MultiplyInteger, shapeMultipliedSizes, shapeAddedSizes},
		{NullList, shapeConstant, shapeConstant},
		{QuotientInteger, divCpu, divMem},
		{RemainderInteger, divCpu, modMem},
		{SerialiseData, shapeLinearInX, shapeLinearInX},
		{Sha2_256, shapeLinearInX, shapeConstant},
		{Sha3_256, shapeLinearInX, shapeConstant},
		{SliceByteString, shapeLinearInZ, shapeLinearInZ},
		{SndPair, shapeConstant, shapeConstant},
		{SubtractInteger, shapeMaxSize, shapeMaxSize},
		{TailList, shapeConstant, shapeConstant},
		{Trace, shapeConstant, shapeConstant},
		{UnBData, shapeConstant, shapeConstant},
		{UnConstrData, shapeConstant, shapeConstant},
		{UnIData, shapeConstant, shapeConstant},
		{UnListData, shapeConstant, shapeConstant},
		{UnMapData, shapeConstant, shapeConstant},
		{VerifyEcdsaSecp256k1Signature, shapeConstant, shapeConstant},
		{VerifyEd25519Signature, shapeLinearInY, shapeConstant},
		{VerifySchnorrSecp256k1Signature, shapeLinearInY, shapeConstant},
	}
	if lang == LanguageV1 {
		ret = slices.DeleteFunc(ret, func(e layoutEntry) bool {
			return e.builtin == SerialiseData ||
				e.builtin == VerifyEcdsaSecp256k1Signature ||
				e.builtin == VerifySchnorrSecp256k1Signature
		})
	}
	return ret
}

var conversionLayout = []layoutEntry{
	{IntegerToByteString, shapeQuadraticInZ, shapeLiteralInYOrLinearInZ},
	{ByteStringToInteger, shapeQuadraticInY, shapeLinearInY},
}

func v3Layout() []layoutEntry {
	ret := legacyLayout(LanguageV3)
	ret = append(ret,
		layoutDatatypeCosts,
		layoutEntry{Bls12_381_G1_Add, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G1_Compress, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G1_Equal, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G1_HashToGroup, shapeLinearInX, shapeConstant},
		layoutEntry{Bls12_381_G1_Neg, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G1_ScalarMul, shapeLinearInX, shapeConstant},
		layoutEntry{Bls12_381_G1_Uncompress, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G2_Add, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G2_Compress, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G2_Equal, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G2_HashToGroup, shapeLinearInX, shapeConstant},
		layoutEntry{Bls12_381_G2_Neg, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G2_ScalarMul, shapeLinearInX, shapeConstant},
		layoutEntry{Bls12_381_G2_Uncompress, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_FinalVerify, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_MillerLoop, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_MulMlResult, shapeConstant, shapeConstant},
		layoutEntry{Keccak_256, shapeLinearInX, shapeConstant},
		layoutEntry{Blake2b_224, shapeLinearInX, shapeConstant},
	)
	ret = append(ret, conversionLayout...)
	return append(ret,
		layoutEntry{AndByteString, shapeLinearInYAndZ, shapeLinearInMaxYZ},
		layoutEntry{OrByteString, shapeLinearInYAndZ, shapeLinearInMaxYZ},
		layoutEntry{XorByteString, shapeLinearInYAndZ, shapeLinearInMaxYZ},
		layoutEntry{ComplementByteString, shapeLinearInX, shapeLinearInX},
		layoutEntry{ReadBit, shapeConstant, shapeConstant},
		layoutEntry{WriteBits, shapeLinearInY, shapeLinearInX},
		layoutEntry{ReplicateByte, shapeLinearInX, shapeLinearInX},
		layoutEntry{ShiftByteString, shapeLinearInX, shapeLinearInX},
		layoutEntry{RotateByteString, shapeLinearInX, shapeLinearInX},
		layoutEntry{CountSetBits, shapeLinearInX, shapeConstant},
		layoutEntry{FindFirstSetBit, shapeLinearInX, shapeConstant},
		layoutEntry{Ripemd_160, shapeLinearInX, shapeConstant},
		layoutEntry{ExpModInteger, shapeExpMod, shapeLinearInZ},
		layoutEntry{DropList, shapeLinearInX, shapeConstant},
		layoutEntry{LengthOfArray, shapeConstant, shapeConstant},
		layoutEntry{ListToArray, shapeLinearInX, shapeLinearInX},
		layoutEntry{IndexArray, shapeConstant, shapeConstant},
		layoutEntry{Bls12_381_G1_MultiScalarMul, shapeLinearInX, shapeConstant},
		layoutEntry{Bls12_381_G2_MultiScalarMul, shapeLinearInX, shapeConstant},
	)
}

func languageLayout(lang Language) ([]layoutEntry, int, error) {
	switch lang {
	case LanguageV1:
		l := legacyLayout(LanguageV1)
		return l, len(l), nil
	case LanguageV2:
		l := legacyLayout(LanguageV2)
		required := len(l)
		return append(l, conversionLayout...), required, nil
	case LanguageV3:
		l := v3Layout()
		required := slices.Index(l, layoutDatatypeCosts) + 1
		return l, required, nil
	}
	return nil, 0, fmt.Errorf("%w: unknown language %d", ErrCostModel, lang)
}

func (e layoutEntry) paramCount() int {
	switch e {
	case layoutMachineCosts:
		return 2 * int(stepConstr)
	case layoutDatatypeCosts:
		return 4
	}
	return e.cpu.paramCount() + e.mem.paramCount()
}

// CostModel holds the machine step costs and builtin cost functions of a language
type CostModel struct {
	language  Language
	params    []int64
	steps     [stepKindCount]Budget
	datatypes bool
	builtins  [builtinCount]*builtinCost
}

// NewCostModel builds a cost model from a parameter array in the layout of the given
// language. Arrays longer than the layout are accepted, and trailing builtins whose
// parameters are missing are unavailable to scripts
func NewCostModel(lang Language, params []int64) (*CostModel, error) {
	layout, required, err := languageLayout(lang)
	if err != nil {
		return nil, err
	}
	cm := &CostModel{
		language: lang,
		params:   slices.Clone(params),
	}
	offset := 0
	for i, entry := range layout {
		n := entry.paramCount()
		if offset+n > len(params) {
			if i < required {
				return nil, fmt.Errorf(
					"%w: %s needs at least %d parameters, got %d",
					ErrCostModel,
					lang,
					offset+n,
					len(params),
				)
			}
			break
		}
		p := cm.params[offset : offset+n]
		switch entry {
		case layoutMachineCosts:
			if offset != machineCostsIndex {
				return nil, fmt.Errorf("%w: machine costs at %d", ErrCostModel, offset)
			}
			for k := range stepConstr {
				cm.steps[k] = Budget{Cpu: p[2*k], Mem: p[2*k+1]}
			}
		case layoutDatatypeCosts:
			if offset != datatypeCostsIndex {
				return nil, fmt.Errorf("%w: datatype costs at %d", ErrCostModel, offset)
			}
			cm.steps[stepConstr] = Budget{Cpu: p[0], Mem: p[1]}
			cm.steps[stepCase] = Budget{Cpu: p[2], Mem: p[3]}
			cm.datatypes = true
		default:
			split := entry.cpu.paramCount()
			cm.builtins[entry.builtin] = &builtinCost{
				cpu: costFunction{shape: entry.cpu, params: p[:split]},
				mem: costFunction{shape: entry.mem, params: p[split:]},
			}
		}
		offset += n
	}
	return cm, nil
}

// DefaultCostModel returns the cost model for a language using the current mainnet
// calibration. Earlier languages share the calibration and only differ in the set of
// builtins available
func DefaultCostModel(lang Language) *CostModel {
	cm, err := NewCostModel(LanguageV3, defaultV3Params)
	if err != nil {
		panic(err)
	}
	if lang == LanguageV3 {
		return cm
	}
	layout, _, err := languageLayout(lang)
	if err != nil {
		panic(err)
	}
	available := map[Builtin]bool{}
	for _, entry := range layout {
		available[entry.builtin] = true
	}
	cm.language = lang
	cm.datatypes = false
	for b := range cm.builtins {
		if !available[Builtin(b)] {
			cm.builtins[b] = nil
		}
	}
	return cm
}

// Language returns the language of the cost model
func (cm *CostModel) Language() Language {
	return cm.language
}

// Params returns a copy of the parameter array the model was built from
func (cm *CostModel) Params() []int64 {
	return slices.Clone(cm.params)
}

// Available reports whether a builtin can be used under this cost model
func (cm *CostModel) Available(b Builtin) bool {
	return b < builtinCount && cm.builtins[b] != nil
}

func (cm *CostModel) stepCost(k stepKind) Budget {
	return cm.steps[k]
}
