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
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// TypeKind identifies a constant type. The values match the flat type tags
type TypeKind uint8

const (
	TypeInteger    TypeKind = 0
	TypeByteString TypeKind = 1
	TypeString     TypeKind = 2
	TypeUnit       TypeKind = 3
	TypeBool       TypeKind = 4
	TypeList       TypeKind = 5
	TypePair       TypeKind = 6
	TypeData       TypeKind = 8
	TypeG1         TypeKind = 9
	TypeG2         TypeKind = 10
	TypeMlResult   TypeKind = 11
	TypeArray      TypeKind = 12
)

// typeApplication is the flat tag applying a type operator to an argument
const typeApplication = 7

// Type is a constant type. List and array types carry their element type in Args[0],
// pair types carry both component types
type Type struct {
	Kind TypeKind
	Args []Type
}

var (
	IntegerType    = Type{Kind: TypeInteger}
	ByteStringType = Type{Kind: TypeByteString}
	StringType     = Type{Kind: TypeString}
	UnitType       = Type{Kind: TypeUnit}
	BoolType       = Type{Kind: TypeBool}
	DataType       = Type{Kind: TypeData}
	G1Type         = Type{Kind: TypeG1}
	G2Type         = Type{Kind: TypeG2}
	MlResultType   = Type{Kind: TypeMlResult}
)

func ListOf(elem Type) Type {
	return Type{Kind: TypeList, Args: []Type{elem}}
}

func ArrayOf(elem Type) Type {
	return Type{Kind: TypeArray, Args: []Type{elem}}
}

func PairOf(fst Type, snd Type) Type {
	return Type{Kind: TypePair, Args: []Type{fst, snd}}
}

// Equal reports whether two types are identical
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case TypeInteger:
		return "integer"
	case TypeByteString:
		return "bytestring"
	case TypeString:
		return "string"
	case TypeUnit:
		return "unit"
	case TypeBool:
		return "bool"
	case TypeData:
		return "data"
	case TypeG1:
		return "bls12_381_G1_element"
	case TypeG2:
		return "bls12_381_G2_element"
	case TypeMlResult:
		return "bls12_381_mlresult"
	case TypeList:
		return "(list " + t.Args[0].String() + ")"
	case TypeArray:
		return "(array " + t.Args[0].String() + ")"
	case TypePair:
		return "(pair " + t.Args[0].String() + " " + t.Args[1].String() + ")"
	}
	return "unknown"
}

// Constant is a value of one of the builtin types
type Constant interface {
	Type() Type
	// valueString renders the value without its type
	valueString() string
}

type Integer struct {
	Value *big.Int
}

type ByteString struct {
	Value []byte
}

type String struct {
	Value string
}

type Unit struct{}

type Bool struct {
	Value bool
}

// ProtoList is a homogeneous list constant
type ProtoList struct {
	Elem  Type
	Items []Constant
}

// ProtoArray is a homogeneous array constant with constant-time indexing
type ProtoArray struct {
	Elem  Type
	Items []Constant
}

type ProtoPair struct {
	First  Constant
	Second Constant
}

// DataConstant wraps a Data value as a constant
type DataConstant struct {
	Value Data
}

type G1Element struct {
	Point bls12381.G1Jac
}

type G2Element struct {
	Point bls12381.G2Jac
}

// MlResult is the output of a Miller loop, an element of the target group
type MlResult struct {
	Value bls12381.GT
}

func NewInteger(v *big.Int) *Integer {
	return &Integer{Value: v}
}

func NewInt(v int64) *Integer {
	return &Integer{Value: big.NewInt(v)}
}

func NewByteString(b []byte) *ByteString {
	return &ByteString{Value: b}
}

func NewString(s string) *String {
	return &String{Value: s}
}

func NewBool(b bool) *Bool {
	return &Bool{Value: b}
}

func NewList(elem Type, items ...Constant) *ProtoList {
	if items == nil {
		items = []Constant{}
	}
	return &ProtoList{Elem: elem, Items: items}
}

func NewPair(fst Constant, snd Constant) *ProtoPair {
	return &ProtoPair{First: fst, Second: snd}
}

func NewDataConstant(d Data) *DataConstant {
	return &DataConstant{Value: d}
}

func (*Integer) Type() Type      { return IntegerType }
func (*ByteString) Type() Type   { return ByteStringType }
func (*String) Type() Type       { return StringType }
func (*Unit) Type() Type         { return UnitType }
func (*Bool) Type() Type         { return BoolType }
func (l *ProtoList) Type() Type  { return ListOf(l.Elem) }
func (a *ProtoArray) Type() Type { return ArrayOf(a.Elem) }
func (p *ProtoPair) Type() Type {
	return PairOf(p.First.Type(), p.Second.Type())
}
func (*DataConstant) Type() Type { return DataType }
func (*G1Element) Type() Type    { return G1Type }
func (*G2Element) Type() Type    { return G2Type }
func (*MlResult) Type() Type     { return MlResultType }

func (c *Integer) valueString() string {
	return c.Value.String()
}

func (c *ByteString) valueString() string {
	return "#" + hex.EncodeToString(c.Value)
}

func (c *String) valueString() string {
	return quoteString(c.Value)
}

func (*Unit) valueString() string {
	return "()"
}

func (c *Bool) valueString() string {
	if c.Value {
		return "True"
	}
	return "False"
}

func (c *ProtoList) valueString() string {
	return "[" + joinConstants(c.Items) + "]"
}

func (c *ProtoArray) valueString() string {
	return "[" + joinConstants(c.Items) + "]"
}

func (c *ProtoPair) valueString() string {
	return "(" + c.First.valueString() + ", " + c.Second.valueString() + ")"
}

func (c *DataConstant) valueString() string {
	return "(" + dataTermString(c.Value) + ")"
}

func (c *G1Element) valueString() string {
	var p bls12381.G1Affine
	p.FromJacobian(&c.Point)
	b := p.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

func (c *G2Element) valueString() string {
	var p bls12381.G2Affine
	p.FromJacobian(&c.Point)
	b := p.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

func (*MlResult) valueString() string {
	return "<mlresult>"
}

// ConstantString renders a constant in the (con TYPE VALUE) syntax
func ConstantString(c Constant) string {
	return "(con " + c.Type().String() + " " + c.valueString() + ")"
}

func joinConstants(items []Constant) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.valueString()
	}
	return strings.Join(parts, ", ")
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	// A numeric escape followed by a digit needs a separator
	numeric := false
	for _, r := range s {
		if numeric && r >= '0' && r <= '9' {
			sb.WriteString(`\&`)
		}
		numeric = false
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\` + strconv.Itoa(int(r)))
				numeric = true
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// dataTermString renders data in the term syntax used inside (con data ...)
func dataTermString(d Data) string {
	switch v := d.(type) {
	case *DataConstr:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = dataTermString(f)
		}
		return "Constr " + strconv.FormatUint(v.Tag, 10) + " [" + strings.Join(parts, ", ") + "]"
	case *DataMap:
		parts := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			parts[i] = "(" + dataTermString(p.Key) + ", " + dataTermString(p.Value) + ")"
		}
		return "Map [" + strings.Join(parts, ", ") + "]"
	case *DataList:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = dataTermString(item)
		}
		return "List [" + strings.Join(parts, ", ") + "]"
	case *DataInteger:
		return "I " + v.Value.String()
	case *DataBytes:
		return "B #" + hex.EncodeToString(v.Value)
	}
	return "<invalid data>"
}

// ConstantEqual reports whether two constants have the same type and value
func ConstantEqual(a Constant, b Constant) bool {
	switch x := a.(type) {
	case *Integer:
		y, ok := b.(*Integer)
		return ok && x.Value.Cmp(y.Value) == 0
	case *ByteString:
		y, ok := b.(*ByteString)
		return ok && bytes.Equal(x.Value, y.Value)
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Unit:
		_, ok := b.(*Unit)
		return ok
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *ProtoList:
		y, ok := b.(*ProtoList)
		return ok && x.Elem.Equal(y.Elem) && constantsEqual(x.Items, y.Items)
	case *ProtoArray:
		y, ok := b.(*ProtoArray)
		return ok && x.Elem.Equal(y.Elem) && constantsEqual(x.Items, y.Items)
	case *ProtoPair:
		y, ok := b.(*ProtoPair)
		return ok && ConstantEqual(x.First, y.First) && ConstantEqual(x.Second, y.Second)
	case *DataConstant:
		y, ok := b.(*DataConstant)
		return ok && DataEqual(x.Value, y.Value)
	case *G1Element:
		y, ok := b.(*G1Element)
		return ok && x.Point.Equal(&y.Point)
	case *G2Element:
		y, ok := b.(*G2Element)
		return ok && x.Point.Equal(&y.Point)
	case *MlResult:
		y, ok := b.(*MlResult)
		return ok && x.Value.Equal(&y.Value)
	}
	return false
}

func constantsEqual(a []Constant, b []Constant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ConstantEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// integerSize is the memory size of an integer in 64-bit words, at least 1
func integerSize(v *big.Int) int64 {
	if v.Sign() == 0 {
		return 1
	}
	return int64((v.BitLen()-1)/64 + 1)
}

// bytesSize is the memory size of a byte string in 64-bit words, at least 1
func bytesSize(n int) int64 {
	return int64((n-1)/8 + 1)
}

// constantSize is the memory size of a constant as seen by the cost model
func constantSize(c Constant) int64 {
	switch v := c.(type) {
	case *Integer:
		return integerSize(v.Value)
	case *ByteString:
		return bytesSize(len(v.Value))
	case *String:
		return int64(utf8.RuneCountInString(v.Value))
	case *Unit, *Bool:
		return 1
	case *ProtoList:
		var ret int64
		for _, item := range v.Items {
			ret = satAdd(ret, constantSize(item))
		}
		return ret
	case *ProtoArray:
		return int64(len(v.Items))
	case *ProtoPair:
		return satAdd(1, satAdd(constantSize(v.First), constantSize(v.Second)))
	case *DataConstant:
		return dataSize(v.Value)
	case *G1Element:
		return 18
	case *G2Element:
		return 36
	case *MlResult:
		return 72
	}
	return 1
}
