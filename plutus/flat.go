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
	"unicode/utf8"
)

// Bit widths of the flat tags
const (
	flatTermTagWidth    = 4
	flatTypeTagWidth    = 4
	flatBuiltinTagWidth = 7
)

var (
	errFlatEOF         = errors.New("unexpected end of input")
	errFlatPadding     = errors.New("invalid filler")
	errFlatTrailing    = errors.New("trailing data after program")
	errFlatOverflow    = errors.New("natural number overflows 64 bits")
	errFlatUnsupported = errors.New("constant type cannot be serialized")
)

type flatReader struct {
	buf []byte
	// pos is the offset in bits
	pos int
}

func (r *flatReader) fail(err error) error {
	return &FlatError{Offset: r.pos, Err: err}
}

func (r *flatReader) readBit() (bool, error) {
	if r.pos >= 8*len(r.buf) {
		return false, r.fail(errFlatEOF)
	}
	bit := r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0
	r.pos++
	return bit, nil
}

// readBits reads up to 64 bits, most significant first
func (r *flatReader) readBits(n int) (uint64, error) {
	if r.pos+n > 8*len(r.buf) {
		return 0, r.fail(errFlatEOF)
	}
	var ret uint64
	for range n {
		ret <<= 1
		if r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0 {
			ret |= 1
		}
		r.pos++
	}
	return ret, nil
}

// readNatural reads a natural number as 7-bit groups, least significant group first,
// each with a leading continuation bit
func (r *flatReader) readNatural() (*big.Int, error) {
	ret := new(big.Int)
	group := new(big.Int)
	for shift := uint(0); ; shift += 7 {
		b, err := r.readBits(8)
		if err != nil {
			return nil, err
		}
		group.SetUint64(b & 0x7f)
		ret.Or(ret, group.Lsh(group, shift))
		if b&0x80 == 0 {
			return ret, nil
		}
	}
}

func (r *flatReader) readWord() (uint64, error) {
	start := r.pos
	n, err := r.readNatural()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, &FlatError{Offset: start, Err: errFlatOverflow}
	}
	return n.Uint64(), nil
}

// readInteger reads a zigzag encoded integer
func (r *flatReader) readInteger() (*big.Int, error) {
	n, err := r.readNatural()
	if err != nil {
		return nil, err
	}
	if n.Bit(0) == 0 {
		return n.Rsh(n, 1), nil
	}
	n.Add(n, big.NewInt(1))
	n.Rsh(n, 1)
	return n.Neg(n), nil
}

// readFiller skips zero bits up to and including a one bit, which must end a byte
func (r *flatReader) readFiller() error {
	for {
		bit, err := r.readBit()
		if err != nil {
			return err
		}
		if bit {
			break
		}
	}
	if r.pos%8 != 0 {
		return r.fail(errFlatPadding)
	}
	return nil
}

// readBytes reads a byte-aligned sequence of chunks, each prefixed by its length and
// terminated by an empty chunk
func (r *flatReader) readBytes() ([]byte, error) {
	if err := r.readFiller(); err != nil {
		return nil, err
	}
	ret := []byte{}
	for {
		if r.pos/8 >= len(r.buf) {
			return nil, r.fail(errFlatEOF)
		}
		n := int(r.buf[r.pos/8])
		r.pos += 8
		if n == 0 {
			return ret, nil
		}
		start := r.pos / 8
		if start+n > len(r.buf) {
			return nil, r.fail(errFlatEOF)
		}
		ret = append(ret, r.buf[start:start+n]...)
		r.pos += 8 * n
	}
}

type flatPending struct {
	// owner is the index of the constr or case instruction whose term list is being
	// read, or -1 for a single term
	owner int
}

// DecodeFlat decodes a program from the flat binary format
func DecodeFlat(data []byte) (*Program, error) {
	r := &flatReader{buf: data}
	var version Version
	var err error
	for _, v := range []*uint64{&version.Major, &version.Minor, &version.Patch} {
		if *v, err = r.readWord(); err != nil {
			return nil, err
		}
	}
	p := &Program{Version: version}
	pending := []flatPending{{owner: -1}}
	for len(pending) > 0 {
		cur := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if cur.owner >= 0 {
			more, err := r.readBit()
			if err != nil {
				return nil, err
			}
			if !more {
				continue
			}
			owner := &p.Code[cur.owner]
			if owner.Op == OpConstr {
				owner.Len++
			} else {
				owner.Arg++
			}
			pending = append(pending, cur, flatPending{owner: -1})
			continue
		}
		ins, children, err := p.readTerm(r)
		if err != nil {
			return nil, err
		}
		idx := len(p.Code)
		p.Code = append(p.Code, ins)
		switch ins.Op {
		case OpConstr:
			pending = append(pending, flatPending{owner: idx})
		case OpCase:
			pending = append(pending, flatPending{owner: idx}, flatPending{owner: -1})
		default:
			for range children {
				pending = append(pending, flatPending{owner: -1})
			}
		}
	}
	if err := r.readFiller(); err != nil {
		return nil, err
	}
	if r.pos != 8*len(r.buf) {
		return nil, r.fail(errFlatTrailing)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// readTerm reads the head of a term and returns the instruction and the number of
// fixed subterms that follow it
func (p *Program) readTerm(r *flatReader) (Instruction, int, error) {
	start := r.pos
	tag, err := r.readBits(flatTermTagWidth)
	if err != nil {
		return Instruction{}, 0, err
	}
	ins := Instruction{Op: Opcode(tag)}
	switch ins.Op {
	case OpVariable:
		if ins.Arg, err = r.readWord(); err != nil {
			return ins, 0, err
		}
		return ins, 0, nil
	case OpDelay, OpLambda, OpForce:
		return ins, 1, nil
	case OpApply:
		return ins, 2, nil
	case OpConstant:
		c, err := readConstant(r)
		if err != nil {
			return ins, 0, err
		}
		ins.Arg = uint64(len(p.Constants))
		p.Constants = append(p.Constants, c)
		return ins, 0, nil
	case OpError:
		return ins, 0, nil
	case OpBuiltin:
		if ins.Arg, err = r.readBits(flatBuiltinTagWidth); err != nil {
			return ins, 0, err
		}
		if ins.Arg >= builtinCount {
			return ins, 0, &FlatError{
				Offset: start,
				Err:    fmt.Errorf("%w: tag %d", ErrUnknownBuiltin, ins.Arg),
			}
		}
		return ins, 0, nil
	case OpConstr:
		if ins.Arg, err = r.readWord(); err != nil {
			return ins, 0, err
		}
		return ins, 0, nil
	case OpCase:
		return ins, 0, nil
	}
	return ins, 0, &FlatError{
		Offset: start,
		Err:    fmt.Errorf("%w: invalid term tag %d", ErrMalformedProgram, tag),
	}
}

func readTypeTags(r *flatReader) ([]uint64, error) {
	var tags []uint64
	for {
		more, err := r.readBit()
		if err != nil {
			return nil, err
		}
		if !more {
			return tags, nil
		}
		tag, err := r.readBits(flatTypeTagWidth)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
}

// parseTypeTags builds a type from its tag sequence and returns the unused tags
func parseTypeTags(tags []uint64) (Type, []uint64, error) {
	if len(tags) == 0 {
		return Type{}, nil, errors.New("truncated type")
	}
	switch kind := tags[0]; kind {
	case uint64(TypeInteger), uint64(TypeByteString), uint64(TypeString), uint64(TypeUnit),
		uint64(TypeBool), uint64(TypeData), uint64(TypeG1), uint64(TypeG2), uint64(TypeMlResult):
		return Type{Kind: TypeKind(kind)}, tags[1:], nil
	case typeApplication:
		if len(tags) < 2 {
			return Type{}, nil, errors.New("truncated type application")
		}
		switch tags[1] {
		case uint64(TypeList), uint64(TypeArray):
			elem, rest, err := parseTypeTags(tags[2:])
			if err != nil {
				return Type{}, nil, err
			}
			return Type{Kind: TypeKind(tags[1]), Args: []Type{elem}}, rest, nil
		case typeApplication:
			if len(tags) < 3 || tags[2] != uint64(TypePair) {
				return Type{}, nil, errors.New("invalid type application")
			}
			fst, rest, err := parseTypeTags(tags[3:])
			if err != nil {
				return Type{}, nil, err
			}
			snd, rest, err := parseTypeTags(rest)
			if err != nil {
				return Type{}, nil, err
			}
			return PairOf(fst, snd), rest, nil
		}
	}
	return Type{}, nil, fmt.Errorf("invalid type tag %d", tags[0])
}

func readConstant(r *flatReader) (Constant, error) {
	start := r.pos
	tags, err := readTypeTags(r)
	if err != nil {
		return nil, err
	}
	typ, rest, err := parseTypeTags(tags)
	if err == nil && len(rest) > 0 {
		err = errors.New("trailing type tags")
	}
	if err != nil {
		return nil, &FlatError{Offset: start, Err: fmt.Errorf("%w: %w", ErrMalformedProgram, err)}
	}
	return readValue(r, typ)
}

func readValue(r *flatReader, typ Type) (Constant, error) {
	switch typ.Kind {
	case TypeInteger:
		v, err := r.readInteger()
		if err != nil {
			return nil, err
		}
		return NewInteger(v), nil
	case TypeByteString:
		b, err := r.readBytes()
		if err != nil {
			return nil, err
		}
		return NewByteString(b), nil
	case TypeString:
		start := r.pos
		b, err := r.readBytes()
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, &FlatError{Offset: start, Err: errInvalidUtf8}
		}
		return NewString(string(b)), nil
	case TypeUnit:
		return &Unit{}, nil
	case TypeBool:
		b, err := r.readBit()
		if err != nil {
			return nil, err
		}
		return NewBool(b), nil
	case TypeData:
		start := r.pos
		b, err := r.readBytes()
		if err != nil {
			return nil, err
		}
		d, err := DecodeDataBytes(b)
		if err != nil {
			return nil, &FlatError{Offset: start, Err: err}
		}
		return NewDataConstant(d), nil
	case TypeList, TypeArray:
		items := []Constant{}
		for {
			more, err := r.readBit()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			item, err := readValue(r, typ.Args[0])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if typ.Kind == TypeArray {
			return &ProtoArray{Elem: typ.Args[0], Items: items}, nil
		}
		return &ProtoList{Elem: typ.Args[0], Items: items}, nil
	case TypePair:
		fst, err := readValue(r, typ.Args[0])
		if err != nil {
			return nil, err
		}
		snd, err := readValue(r, typ.Args[1])
		if err != nil {
			return nil, err
		}
		return NewPair(fst, snd), nil
	}
	return nil, r.fail(fmt.Errorf("%w: %s", errFlatUnsupported, typ))
}

type flatWriter struct {
	buf []byte
	cur byte
	// used is the number of bits set in cur
	used int
}

func (w *flatWriter) writeBit(bit bool) {
	if bit {
		w.cur |= 0x80 >> w.used
	}
	w.used++
	if w.used == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.used = 0
	}
}

func (w *flatWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit(v&(1<<i) != 0)
	}
}

func (w *flatWriter) writeNatural(n *big.Int) {
	v := new(big.Int).Set(n)
	group := new(big.Int)
	mask := big.NewInt(0x7f)
	for {
		group.And(v, mask)
		v.Rsh(v, 7)
		b := group.Uint64()
		if v.Sign() != 0 {
			b |= 0x80
		}
		w.writeBits(b, 8)
		if v.Sign() == 0 {
			return
		}
	}
}

func (w *flatWriter) writeWord(n uint64) {
	for {
		b := n & 0x7f
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		w.writeBits(b, 8)
		if n == 0 {
			return
		}
	}
}

func (w *flatWriter) writeInteger(v *big.Int) {
	n := new(big.Int).Lsh(v, 1)
	if v.Sign() < 0 {
		n.Neg(n)
		n.Sub(n, big.NewInt(1))
	}
	w.writeNatural(n)
}

// writeFiller pads with zero bits and a final one bit up to the byte boundary
func (w *flatWriter) writeFiller() {
	for w.used != 7 {
		w.writeBit(false)
	}
	w.writeBit(true)
}

func (w *flatWriter) writeBytes(b []byte) {
	w.writeFiller()
	for len(b) > 0 {
		n := min(len(b), 255)
		w.buf = append(w.buf, byte(n))
		w.buf = append(w.buf, b[:n]...)
		b = b[n:]
	}
	w.buf = append(w.buf, 0)
}

func writeTypeTags(w *flatWriter, t Type) {
	var tags []uint64
	stack := []Type{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch cur.Kind {
		case TypeList, TypeArray:
			tags = append(tags, typeApplication, uint64(cur.Kind))
			stack = append(stack, cur.Args[0])
		case TypePair:
			tags = append(tags, typeApplication, typeApplication, uint64(TypePair))
			stack = append(stack, cur.Args[1], cur.Args[0])
		default:
			tags = append(tags, uint64(cur.Kind))
		}
	}
	for _, tag := range tags {
		w.writeBit(true)
		w.writeBits(tag, flatTypeTagWidth)
	}
	w.writeBit(false)
}

func writeValue(w *flatWriter, c Constant) error {
	switch v := c.(type) {
	case *Integer:
		w.writeInteger(v.Value)
	case *ByteString:
		w.writeBytes(v.Value)
	case *String:
		w.writeBytes([]byte(v.Value))
	case *Unit:
	case *Bool:
		w.writeBit(v.Value)
	case *DataConstant:
		b, err := EncodeDataBytes(v.Value)
		if err != nil {
			return err
		}
		w.writeBytes(b)
	case *ProtoList:
		return writeValues(w, v.Items)
	case *ProtoArray:
		return writeValues(w, v.Items)
	case *ProtoPair:
		if err := writeValue(w, v.First); err != nil {
			return err
		}
		return writeValue(w, v.Second)
	default:
		return fmt.Errorf("%w: %s", errFlatUnsupported, c.Type())
	}
	return nil
}

func writeValues(w *flatWriter, items []Constant) error {
	for _, item := range items {
		w.writeBit(true)
		if err := writeValue(w, item); err != nil {
			return err
		}
	}
	w.writeBit(false)
	return nil
}

// flatListFrame tracks the term list of a constr or case instruction while encoding
type flatListFrame struct {
	end  int
	next int
	// skip is set while the case scrutinee, which is not a list element, is pending
	skip bool
}

// EncodeFlat encodes the program in the flat binary format. Programs containing
// BLS12-381 constants cannot be encoded
func (p *Program) EncodeFlat() ([]byte, error) {
	if p.ends == nil {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	w := &flatWriter{}
	w.writeWord(p.Version.Major)
	w.writeWord(p.Version.Minor)
	w.writeWord(p.Version.Patch)
	var lists []flatListFrame
	for i, ins := range p.Code {
		for len(lists) > 0 && lists[len(lists)-1].end <= i {
			lists = lists[:len(lists)-1]
			w.writeBit(false)
		}
		if len(lists) > 0 && lists[len(lists)-1].next == i {
			top := &lists[len(lists)-1]
			if top.skip {
				top.skip = false
			} else {
				w.writeBit(true)
			}
			top.next = p.ends[i]
		}
		w.writeBits(uint64(ins.Op), flatTermTagWidth)
		switch ins.Op {
		case OpVariable:
			w.writeWord(ins.Arg)
		case OpConstant:
			c := p.Constants[ins.Arg]
			writeTypeTags(w, c.Type())
			if err := writeValue(w, c); err != nil {
				return nil, err
			}
		case OpBuiltin:
			w.writeBits(ins.Arg, flatBuiltinTagWidth)
		case OpConstr:
			w.writeWord(ins.Arg)
			lists = append(lists, flatListFrame{end: p.ends[i], next: i + 1})
		case OpCase:
			lists = append(lists, flatListFrame{end: p.ends[i], next: i + 1, skip: true})
		}
	}
	for range lists {
		w.writeBit(false)
	}
	w.writeFiller()
	return w.buf, nil
}
