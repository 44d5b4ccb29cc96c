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
	"slices"
)

var errEmptyList = errors.New("empty list")

func ifThenElse(_ *Machine, args []value) (value, error) {
	cond, err := unwrapBool(args[0])
	if err != nil {
		return nil, err
	}
	if cond {
		return args[1], nil
	}
	return args[2], nil
}

func chooseUnit(_ *Machine, args []value) (value, error) {
	if err := unwrapUnit(args[0]); err != nil {
		return nil, err
	}
	return args[1], nil
}

func trace(m *Machine, args []value) (value, error) {
	msg, err := unwrapString(args[0])
	if err != nil {
		return nil, err
	}
	m.trace(msg)
	return args[1], nil
}

func fstPair(_ *Machine, args []value) (value, error) {
	p, err := unwrapPair(args[0])
	if err != nil {
		return nil, err
	}
	return p.First, nil
}

func sndPair(_ *Machine, args []value) (value, error) {
	p, err := unwrapPair(args[0])
	if err != nil {
		return nil, err
	}
	return p.Second, nil
}

func chooseList(_ *Machine, args []value) (value, error) {
	l, err := unwrapList(args[0])
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return args[1], nil
	}
	return args[2], nil
}

func mkCons(_ *Machine, args []value) (value, error) {
	head, ok := args[0].(Constant)
	if !ok {
		return nil, mismatch("constant", args[0])
	}
	l, err := unwrapList(args[1])
	if err != nil {
		return nil, err
	}
	if !head.Type().Equal(l.Elem) {
		return nil, fmt.Errorf(
			"%w: cannot add %s to %s",
			ErrTypeMismatch,
			head.Type(),
			l.Type(),
		)
	}
	items := make([]Constant, 0, len(l.Items)+1)
	items = append(items, head)
	items = append(items, l.Items...)
	return &ProtoList{Elem: l.Elem, Items: items}, nil
}

func headList(_ *Machine, args []value) (value, error) {
	l, err := unwrapList(args[0])
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, errEmptyList
	}
	return l.Items[0], nil
}

func tailList(_ *Machine, args []value) (value, error) {
	l, err := unwrapList(args[0])
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, errEmptyList
	}
	return &ProtoList{Elem: l.Elem, Items: l.Items[1:]}, nil
}

func nullList(_ *Machine, args []value) (value, error) {
	l, err := unwrapList(args[0])
	if err != nil {
		return nil, err
	}
	return NewBool(len(l.Items) == 0), nil
}

func dropList(_ *Machine, args []value) (value, error) {
	n, err := unwrapInteger(args[0])
	if err != nil {
		return nil, err
	}
	l, err := unwrapList(args[1])
	if err != nil {
		return nil, err
	}
	return &ProtoList{Elem: l.Elem, Items: l.Items[clampIndex(n, len(l.Items)):]}, nil
}

func lengthOfArray(_ *Machine, args []value) (value, error) {
	a, err := unwrapArray(args[0])
	if err != nil {
		return nil, err
	}
	return NewInt(int64(len(a.Items))), nil
}

func listToArray(_ *Machine, args []value) (value, error) {
	l, err := unwrapList(args[0])
	if err != nil {
		return nil, err
	}
	return &ProtoArray{Elem: l.Elem, Items: slices.Clone(l.Items)}, nil
}

func indexArray(_ *Machine, args []value) (value, error) {
	a, err := unwrapArray(args[0])
	if err != nil {
		return nil, err
	}
	idx, err := unwrapInteger(args[1])
	if err != nil {
		return nil, err
	}
	i, ok := smallInt(idx)
	if !ok || i < 0 || i >= len(a.Items) {
		return nil, fmt.Errorf("%w: %s of %d elements", errIndexOutOfRange, idx, len(a.Items))
	}
	return a.Items[i], nil
}
