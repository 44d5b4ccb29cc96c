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
	"encoding/hex"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type parsedInstruction struct {
	Instruction
	// name is the variable or binder name, resolved to an index after parsing
	name   string
	line   int
	column int
}

type parser struct {
	src       string
	pos       int
	line      int
	column    int
	code      []parsedInstruction
	constants []Constant
}

// ParseProgram parses a program in the textual syntax, such as
// (program 1.0.0 [(lam x x) (con integer 1)])
func ParseProgram(src string) (*Program, error) {
	p := &parser{src: src, line: 1, column: 1}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	if err := p.keyword("program"); err != nil {
		return nil, err
	}
	version, err := p.version()
	if err != nil {
		return nil, err
	}
	if err := p.term(); err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected input after program")
	}
	if err := p.resolve(); err != nil {
		return nil, err
	}
	code := make([]Instruction, len(p.code))
	for i, ins := range p.code {
		code[i] = ins.Instruction
	}
	prog, err := NewProgram(version, code, p.constants)
	if err != nil {
		return nil, &ParseError{Line: 1, Column: 1, Msg: "invalid program", Err: err}
	}
	return prog, nil
}

// ParseConstant parses a constant of the given type in the value syntax used by
// (con TYPE VALUE)
func ParseConstant(typ Type, src string) (Constant, error) {
	p := &parser{src: src, line: 1, column: 1}
	c, err := p.value(typ)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected input after constant")
	}
	return c, nil
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Line: p.line, Column: p.column, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	if r == '\n' {
		p.line++
		p.column = 1
	} else {
		p.column++
	}
	return r
}

// skipSpace skips white space and comments
func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch {
		case unicode.IsSpace(p.peek()):
			p.next()
		case strings.HasPrefix(p.src[p.pos:], "--"):
			for p.pos < len(p.src) && p.peek() != '\n' {
				p.next()
			}
		case strings.HasPrefix(p.src[p.pos:], "{-"):
			for p.pos < len(p.src) && !strings.HasPrefix(p.src[p.pos:], "-}") {
				p.next()
			}
			p.next()
			p.next()
		default:
			return
		}
	}
}

func (p *parser) expect(r rune) error {
	p.skipSpace()
	if p.peek() != r {
		return p.errorf("expected %q", r)
	}
	p.next()
	return nil
}

func isNameRune(r rune) bool {
	return r == '_' || r == '\'' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *parser) name() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameRune(p.peek()) {
		p.next()
	}
	return p.src[start:p.pos]
}

func (p *parser) keyword(kw string) error {
	if name := p.name(); name != kw {
		return p.errorf("expected %q, found %q", kw, name)
	}
	return nil
}

func (p *parser) version() (Version, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsDigit(p.peek()) || p.peek() == '.') {
		p.next()
	}
	parts := strings.Split(p.src[start:p.pos], ".")
	if len(parts) != 3 {
		return Version{}, p.errorf("invalid version %q", p.src[start:p.pos])
	}
	var ret Version
	for i, field := range []*uint64{&ret.Major, &ret.Minor, &ret.Patch} {
		v, err := strconv.ParseUint(parts[i], 10, 64)
		if err != nil {
			return Version{}, &ParseError{Line: p.line, Column: p.column, Msg: "invalid version", Err: err}
		}
		*field = v
	}
	return ret, nil
}

func (p *parser) natural() (uint64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && unicode.IsDigit(p.peek()) {
		p.next()
	}
	v, err := strconv.ParseUint(p.src[start:p.pos], 10, 64)
	if err != nil {
		return 0, &ParseError{Line: p.line, Column: p.column, Msg: "invalid natural number", Err: err}
	}
	return v, nil
}

func (p *parser) integer() (*big.Int, error) {
	p.skipSpace()
	start := p.pos
	if r := p.peek(); r == '-' || r == '+' {
		p.next()
	}
	for p.pos < len(p.src) && unicode.IsDigit(p.peek()) {
		p.next()
	}
	text := strings.TrimPrefix(p.src[start:p.pos], "+")
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, p.errorf("invalid integer %q", p.src[start:p.pos])
	}
	return v, nil
}

func (p *parser) hexBytes(prefix string) ([]byte, error) {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], prefix) {
		return nil, p.errorf("expected %q", prefix)
	}
	for range prefix {
		p.next()
	}
	start := p.pos
	for p.pos < len(p.src) && strings.ContainsRune("0123456789abcdefABCDEF", p.peek()) {
		p.next()
	}
	ret, err := hex.DecodeString(p.src[start:p.pos])
	if err != nil {
		return nil, &ParseError{Line: p.line, Column: p.column, Msg: "invalid hex", Err: err}
	}
	return ret, nil
}

func (p *parser) emit(ins Instruction, name string, line int, column int) {
	p.code = append(p.code, parsedInstruction{
		Instruction: ins,
		name:        name,
		line:        line,
		column:      column,
	})
}

func (p *parser) term() error {
	p.skipSpace()
	line, column := p.line, p.column
	switch p.peek() {
	case '[':
		p.next()
		start := len(p.code)
		if err := p.term(); err != nil {
			return err
		}
		args := 0
		for {
			p.skipSpace()
			if p.peek() == ']' {
				p.next()
				break
			}
			if p.pos >= len(p.src) {
				return p.errorf("unterminated application")
			}
			if err := p.term(); err != nil {
				return err
			}
			args++
		}
		if args == 0 {
			return p.errorf("application without arguments")
		}
		applies := make([]parsedInstruction, args)
		for i := range applies {
			applies[i] = parsedInstruction{
				Instruction: Instruction{Op: OpApply},
				line:        line,
				column:      column,
			}
		}
		p.code = slices.Insert(p.code, start, applies...)
		return nil
	case '(':
		p.next()
		kw := p.name()
		switch kw {
		case "lam":
			name := p.name()
			if name == "" {
				return p.errorf("expected a binder name")
			}
			p.emit(Instruction{Op: OpLambda}, name, line, column)
			if err := p.term(); err != nil {
				return err
			}
		case "delay", "force":
			op := OpDelay
			if kw == "force" {
				op = OpForce
			}
			p.emit(Instruction{Op: op}, "", line, column)
			if err := p.term(); err != nil {
				return err
			}
		case "builtin":
			b, err := BuiltinByName(p.name())
			if err != nil {
				return &ParseError{Line: p.line, Column: p.column, Msg: "invalid builtin", Err: err}
			}
			p.emit(Instruction{Op: OpBuiltin, Arg: uint64(b)}, "", line, column)
		case "con":
			typ, err := p.typ()
			if err != nil {
				return err
			}
			c, err := p.value(typ)
			if err != nil {
				return err
			}
			p.emit(Instruction{Op: OpConstant, Arg: uint64(len(p.constants))}, "", line, column)
			p.constants = append(p.constants, c)
		case "error":
			p.emit(Instruction{Op: OpError}, "", line, column)
		case "constr":
			tag, err := p.natural()
			if err != nil {
				return err
			}
			idx := len(p.code)
			p.emit(Instruction{Op: OpConstr, Arg: tag}, "", line, column)
			n, err := p.terms()
			if err != nil {
				return err
			}
			p.code[idx].Len = n
		case "case":
			idx := len(p.code)
			p.emit(Instruction{Op: OpCase}, "", line, column)
			if err := p.term(); err != nil {
				return err
			}
			n, err := p.terms()
			if err != nil {
				return err
			}
			p.code[idx].Arg = n
		default:
			return p.errorf("unknown term %q", kw)
		}
		return p.expect(')')
	}
	name := p.name()
	if name == "" {
		return p.errorf("unexpected character %q", p.peek())
	}
	p.emit(Instruction{Op: OpVariable}, name, line, column)
	return nil
}

// terms parses terms up to a closing parenthesis and returns their count
func (p *parser) terms() (uint64, error) {
	var n uint64
	for {
		p.skipSpace()
		if p.peek() == ')' || p.pos >= len(p.src) {
			return n, nil
		}
		if err := p.term(); err != nil {
			return 0, err
		}
		n++
	}
}

// resolve replaces variable names by de Bruijn indices
func (p *parser) resolve() error {
	ends := make([]int, len(p.code))
	for i := len(p.code) - 1; i >= 0; i-- {
		j := i + 1
		for range p.code[i].childCount() {
			j = ends[j]
		}
		ends[i] = j
	}
	type scope struct {
		name string
		end  int
	}
	var scopes []scope
	for i := range p.code {
		for len(scopes) > 0 && scopes[len(scopes)-1].end <= i {
			scopes = scopes[:len(scopes)-1]
		}
		ins := &p.code[i]
		switch ins.Op {
		case OpLambda:
			scopes = append(scopes, scope{name: ins.name, end: ends[i]})
		case OpVariable:
			found := false
			for j := len(scopes) - 1; j >= 0; j-- {
				if scopes[j].name == ins.name {
					ins.Arg = uint64(len(scopes) - j)
					found = true
					break
				}
			}
			if !found {
				return &ParseError{
					Line:   ins.line,
					Column: ins.column,
					Msg:    fmt.Sprintf("free variable %q", ins.name),
					Err:    ErrMalformedProgram,
				}
			}
		}
	}
	return nil
}

var baseTypes = map[string]Type{
	"integer":              IntegerType,
	"bytestring":           ByteStringType,
	"string":               StringType,
	"unit":                 UnitType,
	"bool":                 BoolType,
	"data":                 DataType,
	"bls12_381_G1_element": G1Type,
	"bls12_381_G2_element": G2Type,
	"bls12_381_mlresult":   MlResultType,
}

func (p *parser) typ() (Type, error) {
	p.skipSpace()
	if p.peek() != '(' {
		name := p.name()
		t, ok := baseTypes[name]
		if !ok {
			return Type{}, p.errorf("unknown type %q", name)
		}
		return t, nil
	}
	p.next()
	var ret Type
	switch kw := p.name(); kw {
	case "list", "array":
		elem, err := p.typ()
		if err != nil {
			return Type{}, err
		}
		ret = ListOf(elem)
		if kw == "array" {
			ret = ArrayOf(elem)
		}
	case "pair":
		fst, err := p.typ()
		if err != nil {
			return Type{}, err
		}
		snd, err := p.typ()
		if err != nil {
			return Type{}, err
		}
		ret = PairOf(fst, snd)
	default:
		return Type{}, p.errorf("unknown type operator %q", kw)
	}
	return ret, p.expect(')')
}

func (p *parser) value(typ Type) (Constant, error) {
	p.skipSpace()
	switch typ.Kind {
	case TypeInteger:
		v, err := p.integer()
		if err != nil {
			return nil, err
		}
		return NewInteger(v), nil
	case TypeByteString:
		b, err := p.hexBytes("#")
		if err != nil {
			return nil, err
		}
		return NewByteString(b), nil
	case TypeString:
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	case TypeUnit:
		if err := p.expect('('); err != nil {
			return nil, err
		}
		return &Unit{}, p.expect(')')
	case TypeBool:
		switch name := p.name(); name {
		case "True":
			return NewBool(true), nil
		case "False":
			return NewBool(false), nil
		default:
			return nil, p.errorf("invalid bool %q", name)
		}
	case TypeData:
		d, err := p.data()
		if err != nil {
			return nil, err
		}
		return NewDataConstant(d), nil
	case TypeList, TypeArray:
		items := []Constant{}
		err := p.sequence('[', ']', func() error {
			item, err := p.value(typ.Args[0])
			if err != nil {
				return err
			}
			items = append(items, item)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if typ.Kind == TypeArray {
			return &ProtoArray{Elem: typ.Args[0], Items: items}, nil
		}
		return &ProtoList{Elem: typ.Args[0], Items: items}, nil
	case TypePair:
		if err := p.expect('('); err != nil {
			return nil, err
		}
		fst, err := p.value(typ.Args[0])
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		snd, err := p.value(typ.Args[1])
		if err != nil {
			return nil, err
		}
		return NewPair(fst, snd), p.expect(')')
	case TypeG1, TypeG2:
		b, err := p.hexBytes("0x")
		if err != nil {
			return nil, err
		}
		var c Constant
		if typ.Kind == TypeG1 {
			c, err = UncompressG1(b)
		} else {
			c, err = UncompressG2(b)
		}
		if err != nil {
			return nil, &ParseError{Line: p.line, Column: p.column, Msg: "invalid point", Err: err}
		}
		return c, nil
	}
	return nil, p.errorf("constants of type %s cannot be written", typ)
}

// sequence parses a delimited, comma separated sequence
func (p *parser) sequence(open rune, closer rune, item func() error) error {
	if err := p.expect(open); err != nil {
		return err
	}
	p.skipSpace()
	if p.peek() == closer {
		p.next()
		return nil
	}
	for {
		if err := item(); err != nil {
			return err
		}
		p.skipSpace()
		switch p.next() {
		case ',':
		case closer:
			return nil
		default:
			return p.errorf("expected ',' or %q", closer)
		}
	}
}

var stringEscapes = map[rune]rune{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'"':  '"',
	'\'': '\'',
	'\\': '\\',
}

func (p *parser) str() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		r := p.next()
		switch r {
		case '"':
			return sb.String(), nil
		case '\\':
		default:
			sb.WriteRune(r)
			continue
		}
		esc := p.next()
		if v, ok := stringEscapes[esc]; ok {
			sb.WriteRune(v)
			continue
		}
		switch {
		case esc == '&':
		case esc == 'x':
			start := p.pos
			for p.pos < len(p.src) && strings.ContainsRune("0123456789abcdefABCDEF", p.peek()) {
				p.next()
			}
			v, err := strconv.ParseUint(p.src[start:p.pos], 16, 32)
			if err != nil || v > unicode.MaxRune {
				return "", p.errorf("invalid hex escape")
			}
			sb.WriteRune(rune(v))
		case unicode.IsDigit(esc):
			start := p.pos - 1
			for p.pos < len(p.src) && unicode.IsDigit(p.peek()) {
				p.next()
			}
			v, err := strconv.ParseUint(p.src[start:p.pos], 10, 32)
			if err != nil || v > unicode.MaxRune {
				return "", p.errorf("invalid numeric escape")
			}
			sb.WriteRune(rune(v))
		default:
			return "", p.errorf("invalid escape %q", esc)
		}
	}
}

func (p *parser) data() (Data, error) {
	p.skipSpace()
	if p.peek() == '(' {
		p.next()
		d, err := p.data()
		if err != nil {
			return nil, err
		}
		return d, p.expect(')')
	}
	switch kw := p.name(); kw {
	case "Constr":
		tag, err := p.natural()
		if err != nil {
			return nil, err
		}
		fields, err := p.dataList()
		if err != nil {
			return nil, err
		}
		return &DataConstr{Tag: tag, Fields: fields}, nil
	case "Map":
		pairs := []DataPair{}
		err := p.sequence('[', ']', func() error {
			if err := p.expect('('); err != nil {
				return err
			}
			k, err := p.data()
			if err != nil {
				return err
			}
			if err := p.expect(','); err != nil {
				return err
			}
			v, err := p.data()
			if err != nil {
				return err
			}
			pairs = append(pairs, DataPair{Key: k, Value: v})
			return p.expect(')')
		})
		if err != nil {
			return nil, err
		}
		return &DataMap{Pairs: pairs}, nil
	case "List":
		items, err := p.dataList()
		if err != nil {
			return nil, err
		}
		return &DataList{Items: items}, nil
	case "I":
		v, err := p.integer()
		if err != nil {
			return nil, err
		}
		return &DataInteger{Value: v}, nil
	case "B":
		b, err := p.hexBytes("#")
		if err != nil {
			return nil, err
		}
		return &DataBytes{Value: b}, nil
	default:
		return nil, p.errorf("invalid data %q", kw)
	}
}

func (p *parser) dataList() ([]Data, error) {
	items := []Data{}
	err := p.sequence('[', ']', func() error {
		d, err := p.data()
		if err != nil {
			return err
		}
		items = append(items, d)
		return nil
	})
	return items, err
}
