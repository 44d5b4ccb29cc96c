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
	"io"
	"log/slog"
)

// value is a machine value: a Constant or one of the closure types below
type value any

type delayValue struct {
	body int
	env  *env
}

type lambdaValue struct {
	body int
	env  *env
}

type constrValue struct {
	tag    uint64
	fields []value
}

type builtinValue struct {
	fn     Builtin
	forces int
	args   []value
}

// env is a persistent list of bound values, innermost first
type env struct {
	val  value
	next *env
}

func (e *env) lookup(index uint64) (value, bool) {
	for ; e != nil; e = e.next {
		index--
		if index == 0 {
			return e.val, true
		}
	}
	return nil, false
}

type frameKind uint8

const (
	// frameForce forces the returned value
	frameForce frameKind = iota
	// frameApplyArg holds the unevaluated argument of an application whose function
	// is being computed
	frameApplyArg
	// frameApplyFun holds an evaluated function awaiting its argument
	frameApplyFun
	// frameApplyValue holds an evaluated argument awaiting its function
	frameApplyValue
	// frameConstr collects the fields of a constructor
	frameConstr
	// frameCase selects a branch for the returned value
	frameCase
)

type frame struct {
	kind   frameKind
	term   int
	env    *env
	val    value
	tag    uint64
	count  uint64
	fields []value
}

// MachineOptionFunc is a type that represents functions that modify the Machine config
type MachineOptionFunc func(*Machine)

// WithLogger specifies the logger used for evaluation events and trace messages
func WithLogger(logger *slog.Logger) MachineOptionFunc {
	return func(m *Machine) {
		m.logger = logger
	}
}

// Machine evaluates programs with the CEK strategy using explicit environment and
// continuation stacks. A machine is not safe for concurrent use, but any number of
// machines may evaluate the same program at once
type Machine struct {
	costModel *CostModel
	budget    Budget
	remaining Budget
	logger    *slog.Logger
	logs      []string
	prog      *Program
	frames    []frame
	pc        int
	env       *env
}

// NewMachine returns a machine which charges evaluation against budget using the
// given cost model
func NewMachine(costModel *CostModel, budget Budget, opts ...MachineOptionFunc) *Machine {
	m := &Machine{
		costModel: costModel,
		budget:    budget,
		remaining: budget,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return m
}

// Consumed returns the budget used by the last evaluation
func (m *Machine) Consumed() Budget {
	return m.budget.Sub(m.remaining)
}

// Remaining returns the budget left after the last evaluation
func (m *Machine) Remaining() Budget {
	return m.remaining
}

// Logs returns the messages emitted by the trace builtin during the last evaluation
func (m *Machine) Logs() []string {
	return m.logs
}

// Run evaluates a program to a value and returns it as a program. Every run starts
// from the full budget
func (m *Machine) Run(p *Program) (*Program, error) {
	if p.ends == nil {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	m.remaining = m.budget
	m.logs = nil
	m.frames = m.frames[:0]
	m.prog = p
	m.pc = 0
	m.env = nil
	defer func() {
		m.prog = nil
		m.env = nil
	}()
	m.logger.Debug(
		"evaluating program",
		"component", "plutus",
		"version", p.Version.String(),
		"language", m.costModel.language.String(),
	)
	result, err := m.evaluate()
	if err != nil {
		m.logger.Debug(
			"evaluation failed",
			"component", "plutus",
			"consumed", m.Consumed().String(),
			"error", err,
		)
		return nil, err
	}
	ret := m.discharge(result)
	m.logger.Debug(
		"evaluation finished",
		"component", "plutus",
		"consumed", m.Consumed().String(),
	)
	return ret, nil
}

func (m *Machine) spend(cost Budget) error {
	next := Budget{
		Cpu: m.remaining.Cpu - cost.Cpu,
		Mem: m.remaining.Mem - cost.Mem,
	}
	if next.Cpu < 0 || next.Mem < 0 {
		// The budget is left untouched by a step that cannot be paid for
		return fmt.Errorf(
			"%w: remaining %s, step costs %s",
			ErrOutOfBudget,
			m.remaining,
			cost,
		)
	}
	m.remaining = next
	return nil
}

func (m *Machine) step(k stepKind) error {
	return m.spend(m.costModel.stepCost(k))
}

func (m *Machine) push(f frame) {
	m.frames = append(m.frames, f)
}

func (m *Machine) evaluate() (value, error) {
	if err := m.step(stepStartup); err != nil {
		return nil, err
	}
	code := m.prog.Code
	var ret value
	computing := true
	for {
		if computing {
			var err error
			ret, computing, err = m.compute(code[m.pc])
			if err != nil {
				return nil, err
			}
			continue
		}
		if len(m.frames) == 0 {
			return ret, nil
		}
		f := m.frames[len(m.frames)-1]
		m.frames = m.frames[:len(m.frames)-1]
		var err error
		ret, computing, err = m.returnTo(f, ret)
		if err != nil {
			return nil, err
		}
	}
}

// compute evaluates the instruction at the current position. It either returns a
// value or moves to a subterm and reports that computation continues
func (m *Machine) compute(ins Instruction) (value, bool, error) {
	switch ins.Op {
	case OpVariable:
		if err := m.step(stepVariable); err != nil {
			return nil, false, err
		}
		v, ok := m.env.lookup(ins.Arg)
		if !ok {
			return nil, false, fmt.Errorf("%w: unbound variable %d", ErrMalformedProgram, ins.Arg)
		}
		return v, false, nil
	case OpDelay:
		if err := m.step(stepDelay); err != nil {
			return nil, false, err
		}
		return &delayValue{body: m.pc + 1, env: m.env}, false, nil
	case OpLambda:
		if err := m.step(stepLambda); err != nil {
			return nil, false, err
		}
		return &lambdaValue{body: m.pc + 1, env: m.env}, false, nil
	case OpApply:
		if err := m.step(stepApply); err != nil {
			return nil, false, err
		}
		m.push(frame{kind: frameApplyArg, term: m.prog.end(m.pc + 1), env: m.env})
		m.pc++
		return nil, true, nil
	case OpConstant:
		if err := m.step(stepConstant); err != nil {
			return nil, false, err
		}
		return m.prog.Constants[ins.Arg], false, nil
	case OpForce:
		if err := m.step(stepForce); err != nil {
			return nil, false, err
		}
		m.push(frame{kind: frameForce})
		m.pc++
		return nil, true, nil
	case OpError:
		return nil, false, ErrExplicitError
	case OpBuiltin:
		if err := m.step(stepBuiltin); err != nil {
			return nil, false, err
		}
		b := Builtin(ins.Arg)
		if !m.costModel.Available(b) {
			return nil, false, fmt.Errorf(
				"%w: %s is not available in %s",
				ErrUnknownBuiltin,
				b,
				m.costModel.language,
			)
		}
		return &builtinValue{fn: b}, false, nil
	case OpConstr:
		if err := m.datatypeStep(stepConstr); err != nil {
			return nil, false, err
		}
		if ins.Len == 0 {
			return &constrValue{tag: ins.Arg}, false, nil
		}
		m.push(frame{
			kind:   frameConstr,
			term:   m.prog.end(m.pc + 1),
			env:    m.env,
			tag:    ins.Arg,
			count:  ins.Len - 1,
			fields: make([]value, 0, ins.Len),
		})
		m.pc++
		return nil, true, nil
	case OpCase:
		if err := m.datatypeStep(stepCase); err != nil {
			return nil, false, err
		}
		m.push(frame{
			kind:  frameCase,
			term:  m.prog.end(m.pc + 1),
			env:   m.env,
			count: ins.Arg,
		})
		m.pc++
		return nil, true, nil
	}
	return nil, false, fmt.Errorf("%w: invalid opcode %d", ErrMalformedProgram, ins.Op)
}

func (m *Machine) datatypeStep(k stepKind) error {
	if !m.costModel.datatypes {
		return fmt.Errorf("%w: %s has no constr and case costs", ErrCostModel, m.costModel.language)
	}
	return m.step(k)
}

// returnTo passes a value to the continuation f
func (m *Machine) returnTo(f frame, v value) (value, bool, error) {
	switch f.kind {
	case frameForce:
		return m.force(v)
	case frameApplyArg:
		m.push(frame{kind: frameApplyFun, val: v})
		m.pc = f.term
		m.env = f.env
		return nil, true, nil
	case frameApplyFun:
		return m.apply(f.val, v)
	case frameApplyValue:
		return m.apply(v, f.val)
	case frameConstr:
		fields := append(f.fields, v)
		if f.count == 0 {
			return &constrValue{tag: f.tag, fields: fields}, false, nil
		}
		next := f.term
		m.push(frame{
			kind:   frameConstr,
			term:   m.prog.end(next),
			env:    f.env,
			tag:    f.tag,
			count:  f.count - 1,
			fields: fields,
		})
		m.pc = next
		m.env = f.env
		return nil, true, nil
	case frameCase:
		return m.selectBranch(f, v)
	}
	return nil, false, fmt.Errorf("%w: invalid frame", ErrMalformedProgram)
}

func (m *Machine) force(v value) (value, bool, error) {
	switch fn := v.(type) {
	case *delayValue:
		m.pc = fn.body
		m.env = fn.env
		return nil, true, nil
	case *builtinValue:
		if fn.forces >= fn.fn.Forces() || len(fn.args) > 0 {
			return nil, false, fmt.Errorf("%w: unexpected force of builtin %s", ErrTypeMismatch, fn.fn)
		}
		return &builtinValue{fn: fn.fn, forces: fn.forces + 1}, false, nil
	}
	return nil, false, fmt.Errorf("%w: force of a non-delayed value", ErrTypeMismatch)
}

func (m *Machine) apply(fn value, arg value) (value, bool, error) {
	switch f := fn.(type) {
	case *lambdaValue:
		m.pc = f.body
		m.env = &env{val: arg, next: f.env}
		return nil, true, nil
	case *builtinValue:
		info := &builtinTable[f.fn]
		if f.forces < info.forces {
			return nil, false, fmt.Errorf("%w: builtin %s applied before being forced", ErrTypeMismatch, f.fn)
		}
		if len(f.args) >= info.arity {
			return nil, false, fmt.Errorf("%w: too many arguments for builtin %s", ErrTypeMismatch, f.fn)
		}
		args := make([]value, len(f.args)+1, info.arity)
		copy(args, f.args)
		args[len(f.args)] = arg
		if len(args) < info.arity {
			return &builtinValue{fn: f.fn, forces: f.forces, args: args}, false, nil
		}
		ret, err := m.callBuiltin(f.fn, args)
		return ret, false, err
	}
	return nil, false, fmt.Errorf("%w: application of a non-function value", ErrTypeMismatch)
}

func (m *Machine) callBuiltin(b Builtin, args []value) (value, error) {
	info := &builtinTable[b]
	var sizes [3]int64
	for i := range min(len(args), len(sizes)) {
		sizes[i] = argSize(info.measures[i], args[i])
	}
	if err := m.spend(m.costModel.builtins[b].budget(sizes[0], sizes[1], sizes[2])); err != nil {
		return nil, err
	}
	ret, err := info.fn(m, args)
	if err != nil {
		var builtinErr *BuiltinError
		if errors.As(err, &builtinErr) {
			return nil, err
		}
		return nil, &BuiltinError{Builtin: b, Err: err}
	}
	return ret, nil
}

// selectBranch evaluates the case branch chosen by v, applying it to the fields of v
func (m *Machine) selectBranch(f frame, v value) (value, bool, error) {
	var tag uint64
	var fields []value
	// Builtin constants only accept their fixed branch counts
	switch v.(type) {
	case *Bool, *ProtoList:
		if f.count < 1 || f.count > 2 {
			return nil, false, fmt.Errorf(
				"%w: case on %s with %d branches, expected 1 or 2",
				ErrTypeMismatch,
				constantKind(v),
				f.count,
			)
		}
	case *Unit, *ProtoPair:
		if f.count != 1 {
			return nil, false, fmt.Errorf(
				"%w: case on %s with %d branches, expected 1",
				ErrTypeMismatch,
				constantKind(v),
				f.count,
			)
		}
	}
	switch s := v.(type) {
	case *constrValue:
		tag = s.tag
		fields = s.fields
	case *Bool:
		if s.Value {
			tag = 1
		}
	case *Unit:
	case *Integer:
		if s.Value.Sign() < 0 || !s.Value.IsUint64() {
			return nil, false, fmt.Errorf("%w: case on integer %s", ErrTypeMismatch, s.Value)
		}
		tag = s.Value.Uint64()
	case *ProtoList:
		if len(s.Items) == 0 {
			tag = 1
		} else {
			fields = []value{s.Items[0], &ProtoList{Elem: s.Elem, Items: s.Items[1:]}}
		}
	case *ProtoPair:
		fields = []value{s.First, s.Second}
	default:
		return nil, false, fmt.Errorf("%w: case on a value that is not a constructor", ErrTypeMismatch)
	}
	if tag >= f.count {
		return nil, false, fmt.Errorf(
			"%w: case tag %d with %d branches",
			ErrTypeMismatch,
			tag,
			f.count,
		)
	}
	branch := f.term
	for range tag {
		branch = m.prog.end(branch)
	}
	for i := len(fields) - 1; i >= 0; i-- {
		m.push(frame{kind: frameApplyValue, val: fields[i]})
	}
	m.pc = branch
	m.env = f.env
	return nil, true, nil
}

func constantKind(v value) string {
	switch v.(type) {
	case *Bool:
		return "bool"
	case *Unit:
		return "unit"
	case *ProtoList:
		return "list"
	case *ProtoPair:
		return "pair"
	}
	return "constant"
}

// trace records a message from the trace builtin
func (m *Machine) trace(msg string) {
	m.logs = append(m.logs, msg)
	m.logger.Debug("script trace", "component", "plutus", "message", msg)
}

// discharge converts a value back into a closed program, substituting the
// environment of every closure into its body
func (m *Machine) discharge(v value) *Program {
	d := &discharger{prog: m.prog}
	d.value(v)
	ret := &Program{
		Version:   m.prog.Version,
		Code:      d.code,
		Constants: d.constants,
	}
	if err := ret.validate(); err != nil {
		// A discharged value is closed by construction
		panic(err)
	}
	return ret
}

type discharger struct {
	prog      *Program
	code      []Instruction
	constants []Constant
}

func (d *discharger) constant(c Constant) {
	d.code = append(d.code, Instruction{Op: OpConstant, Arg: uint64(len(d.constants))})
	d.constants = append(d.constants, c)
}

// value recurses once per nested closure or constructor field. The depth is bounded
// by what the budget allowed the machine to build
func (d *discharger) value(v value) {
	switch val := v.(type) {
	case Constant:
		d.constant(val)
	case *delayValue:
		d.code = append(d.code, Instruction{Op: OpDelay})
		d.body(val.body, val.env, 0)
	case *lambdaValue:
		d.code = append(d.code, Instruction{Op: OpLambda})
		d.body(val.body, val.env, 1)
	case *constrValue:
		d.code = append(d.code, Instruction{
			Op:  OpConstr,
			Arg: val.tag,
			Len: uint64(len(val.fields)),
		})
		for _, field := range val.fields {
			d.value(field)
		}
	case *builtinValue:
		for range val.args {
			d.code = append(d.code, Instruction{Op: OpApply})
		}
		for range val.forces {
			d.code = append(d.code, Instruction{Op: OpForce})
		}
		d.code = append(d.code, Instruction{Op: OpBuiltin, Arg: uint64(val.fn)})
		for _, arg := range val.args {
			d.value(arg)
		}
	}
}

// body copies the term starting at start, replacing variables bound outside of it
// by their values from e. depth is the number of binders already in scope
func (d *discharger) body(start int, e *env, depth int) {
	end := d.prog.end(start)
	var scopes []int
	for i := start; i < end; i++ {
		for len(scopes) > 0 && scopes[len(scopes)-1] <= i {
			scopes = scopes[:len(scopes)-1]
		}
		ins := d.prog.Code[i]
		switch ins.Op {
		case OpLambda:
			scopes = append(scopes, d.prog.end(i))
		case OpConstant:
			d.constant(d.prog.Constants[ins.Arg])
			continue
		case OpVariable:
			local := uint64(depth + len(scopes))
			if ins.Arg > local {
				v, ok := e.lookup(ins.Arg - local)
				if ok {
					d.value(v)
					continue
				}
			}
		}
		d.code = append(d.code, ins)
	}
}
