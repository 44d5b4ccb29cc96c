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
	"strconv"
	"strings"
)

// Version is the program language version triple
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// SupportsDatatypes reports whether constr and case terms are allowed
func (v Version) SupportsDatatypes() bool {
	return v.Major > 1 || (v.Major == 1 && v.Minor >= 1)
}

var (
	Version100 = Version{Major: 1, Minor: 0, Patch: 0}
	Version110 = Version{Major: 1, Minor: 1, Patch: 0}
)

// Opcode identifies an instruction. The values match the flat term tags
type Opcode uint8

const (
	OpVariable Opcode = 0
	OpDelay    Opcode = 1
	OpLambda   Opcode = 2
	OpApply    Opcode = 3
	OpConstant Opcode = 4
	OpForce    Opcode = 5
	OpError    Opcode = 6
	OpBuiltin  Opcode = 7
	OpConstr   Opcode = 8
	OpCase     Opcode = 9
)

func (o Opcode) String() string {
	switch o {
	case OpVariable:
		return "var"
	case OpDelay:
		return "delay"
	case OpLambda:
		return "lam"
	case OpApply:
		return "apply"
	case OpConstant:
		return "con"
	case OpForce:
		return "force"
	case OpError:
		return "error"
	case OpBuiltin:
		return "builtin"
	case OpConstr:
		return "constr"
	case OpCase:
		return "case"
	}
	return "Opcode(" + strconv.Itoa(int(o)) + ")"
}

// Instruction is one node of a term in prefix order. The meaning of Arg depends on
// the opcode: the de Bruijn index (starting at 1) of a variable, the constant pool
// index of a constant, the builtin tag, the constructor tag, or the number of case
// branches. Len is the number of fields of a constructor
type Instruction struct {
	Op  Opcode
	Arg uint64
	Len uint64
}

// Program is a term stored as a flat array of instructions in prefix order, with the
// constants it references kept in a separate pool. A program is immutable once built
// and may be evaluated by several machines at once
type Program struct {
	Version   Version
	Code      []Instruction
	Constants []Constant
	ends      []int
}

// NewProgram validates the instruction array and returns a program
func NewProgram(version Version, code []Instruction, constants []Constant) (*Program, error) {
	p := &Program{
		Version:   version,
		Code:      code,
		Constants: constants,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// childCount is the number of direct subterms following an instruction
func (i Instruction) childCount() uint64 {
	switch i.Op {
	case OpDelay, OpLambda, OpForce:
		return 1
	case OpApply:
		return 2
	case OpConstr:
		return i.Len
	case OpCase:
		return i.Arg + 1
	}
	return 0
}

// validate computes the end of every subterm and checks that the code is a single
// closed term with valid references
func (p *Program) validate() error {
	if p.Version.Major != 1 {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, p.Version)
	}
	n := len(p.Code)
	if n == 0 {
		return fmt.Errorf("%w: empty program", ErrMalformedProgram)
	}
	ends := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		ins := p.Code[i]
		switch ins.Op {
		case OpConstant:
			if ins.Arg >= uint64(len(p.Constants)) {
				return fmt.Errorf("%w: constant index %d out of range", ErrMalformedProgram, ins.Arg)
			}
		case OpBuiltin:
			if ins.Arg >= uint64(builtinCount) {
				return fmt.Errorf("%w: tag %d", ErrUnknownBuiltin, ins.Arg)
			}
		case OpConstr, OpCase:
			if !p.Version.SupportsDatatypes() {
				return fmt.Errorf(
					"%w: %s requires version 1.1.0, program is %s",
					ErrMalformedProgram,
					ins.Op,
					p.Version,
				)
			}
		case OpVariable, OpDelay, OpLambda, OpApply, OpForce, OpError:
		default:
			return fmt.Errorf("%w: invalid opcode %d", ErrMalformedProgram, ins.Op)
		}
		j := i + 1
		for range ins.childCount() {
			if j >= n {
				return fmt.Errorf("%w: truncated term at %d", ErrMalformedProgram, i)
			}
			j = ends[j]
		}
		ends[i] = j
	}
	if ends[0] != n {
		return fmt.Errorf("%w: trailing instructions after %d", ErrMalformedProgram, ends[0])
	}
	// Variables must refer to an enclosing lambda
	var scopes []int
	for i, ins := range p.Code {
		for len(scopes) > 0 && scopes[len(scopes)-1] <= i {
			scopes = scopes[:len(scopes)-1]
		}
		switch ins.Op {
		case OpLambda:
			scopes = append(scopes, ends[i])
		case OpVariable:
			if ins.Arg == 0 || ins.Arg > uint64(len(scopes)) {
				return fmt.Errorf("%w: free variable with index %d", ErrMalformedProgram, ins.Arg)
			}
		}
	}
	p.ends = ends
	return nil
}

// end returns the index just past the subterm starting at i
func (p *Program) end(i int) int {
	return p.ends[i]
}

// ApplyData returns a new program applying this program to the given data arguments
// in order
func (p *Program) ApplyData(args ...Data) *Program {
	consts := make([]Constant, 0, len(args))
	for _, arg := range args {
		consts = append(consts, NewDataConstant(arg))
	}
	return p.Apply(consts...)
}

// Apply returns a new program applying this program to the given constants in order
func (p *Program) Apply(args ...Constant) *Program {
	code := make([]Instruction, 0, len(p.Code)+2*len(args))
	for range args {
		code = append(code, Instruction{Op: OpApply})
	}
	code = append(code, p.Code...)
	constants := make([]Constant, len(p.Constants), len(p.Constants)+len(args))
	copy(constants, p.Constants)
	for _, arg := range args {
		code = append(code, Instruction{Op: OpConstant, Arg: uint64(len(constants))})
		constants = append(constants, arg)
	}
	ret := &Program{
		Version:   p.Version,
		Code:      code,
		Constants: constants,
	}
	// Applying constants to a valid program cannot produce an invalid one
	if err := ret.validate(); err != nil {
		panic(err)
	}
	return ret
}

// Constant returns the constant the program consists of, if it is a single constant
func (p *Program) Constant() (Constant, bool) {
	if len(p.Code) != 1 || p.Code[0].Op != OpConstant {
		return nil, false
	}
	return p.Constants[p.Code[0].Arg], true
}

// String renders the program in the textual syntax. Bound variables are named after
// the depth of their binder
func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("(program ")
	sb.WriteString(p.Version.String())
	sb.WriteByte(' ')
	p.writeTerm(&sb)
	sb.WriteByte(')')
	return sb.String()
}

type printFrame struct {
	end    int
	closer string
	lambda bool
}

func (p *Program) writeTerm(sb *strings.Builder) {
	var stack []printFrame
	depth := 0
	sep := false
	for i, ins := range p.Code {
		// Close finished terms
		for len(stack) > 0 && stack[len(stack)-1].end <= i {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.lambda {
				depth--
			}
			sb.WriteString(top.closer)
		}
		if sep {
			sb.WriteByte(' ')
		}
		sep = true
		switch ins.Op {
		case OpVariable:
			sb.WriteString(varName(depth - int(ins.Arg)))
		case OpDelay:
			sb.WriteString("(delay")
			stack = append(stack, printFrame{end: p.ends[i], closer: ")"})
		case OpLambda:
			sb.WriteString("(lam ")
			sb.WriteString(varName(depth))
			depth++
			stack = append(stack, printFrame{end: p.ends[i], closer: ")", lambda: true})
		case OpApply:
			sb.WriteByte('[')
			sep = false
			stack = append(stack, printFrame{end: p.ends[i], closer: "]"})
		case OpConstant:
			sb.WriteString(ConstantString(p.Constants[ins.Arg]))
		case OpForce:
			sb.WriteString("(force")
			stack = append(stack, printFrame{end: p.ends[i], closer: ")"})
		case OpError:
			sb.WriteString("(error)")
		case OpBuiltin:
			sb.WriteString("(builtin ")
			sb.WriteString(Builtin(ins.Arg).String())
			sb.WriteByte(')')
		case OpConstr:
			sb.WriteString("(constr ")
			sb.WriteString(strconv.FormatUint(ins.Arg, 10))
			stack = append(stack, printFrame{end: p.ends[i], closer: ")"})
		case OpCase:
			sb.WriteString("(case")
			stack = append(stack, printFrame{end: p.ends[i], closer: ")"})
		}
	}
	for len(stack) > 0 {
		sb.WriteString(stack[len(stack)-1].closer)
		stack = stack[:len(stack)-1]
	}
}

func varName(level int) string {
	return "i_" + strconv.Itoa(level)
}
