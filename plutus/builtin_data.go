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

func chooseData(_ *Machine, args []value) (value, error) {
	d, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	switch d.(type) {
	case *DataConstr:
		return args[1], nil
	case *DataMap:
		return args[2], nil
	case *DataList:
		return args[3], nil
	case *DataInteger:
		return args[4], nil
	case *DataBytes:
		return args[5], nil
	}
	return nil, mismatch("data", args[0])
}

// dataItems unwraps a list of data
func dataItems(v value) ([]Data, error) {
	l, err := unwrapList(v)
	if err != nil {
		return nil, err
	}
	if !l.Elem.Equal(DataType) {
		return nil, mismatch("(list data)", v)
	}
	ret := make([]Data, len(l.Items))
	for i, item := range l.Items {
		ret[i] = item.(*DataConstant).Value
	}
	return ret, nil
}

func dataList(items []Data) *ProtoList {
	consts := make([]Constant, len(items))
	for i, item := range items {
		consts[i] = NewDataConstant(item)
	}
	return &ProtoList{Elem: DataType, Items: consts}
}

var dataPairType = PairOf(DataType, DataType)

func constrData(_ *Machine, args []value) (value, error) {
	tag, err := unwrapInteger(args[0])
	if err != nil {
		return nil, err
	}
	fields, err := dataItems(args[1])
	if err != nil {
		return nil, err
	}
	if tag.Sign() < 0 || !tag.IsUint64() {
		return nil, fmt.Errorf("constructor tag %s out of range", tag)
	}
	return NewDataConstant(&DataConstr{Tag: tag.Uint64(), Fields: fields}), nil
}

func mapData(_ *Machine, args []value) (value, error) {
	l, err := unwrapList(args[0])
	if err != nil {
		return nil, err
	}
	if !l.Elem.Equal(dataPairType) {
		return nil, mismatch("(list (pair data data))", args[0])
	}
	pairs := make([]DataPair, len(l.Items))
	for i, item := range l.Items {
		p := item.(*ProtoPair)
		pairs[i] = DataPair{
			Key:   p.First.(*DataConstant).Value,
			Value: p.Second.(*DataConstant).Value,
		}
	}
	return NewDataConstant(&DataMap{Pairs: pairs}), nil
}

func listData(_ *Machine, args []value) (value, error) {
	items, err := dataItems(args[0])
	if err != nil {
		return nil, err
	}
	return NewDataConstant(&DataList{Items: items}), nil
}

func iData(_ *Machine, args []value) (value, error) {
	i, err := unwrapInteger(args[0])
	if err != nil {
		return nil, err
	}
	return NewDataConstant(&DataInteger{Value: new(big.Int).Set(i)}), nil
}

func bData(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	return NewDataConstant(&DataBytes{Value: bs}), nil
}

func unConstrData(_ *Machine, args []value) (value, error) {
	d, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	c, ok := d.(*DataConstr)
	if !ok {
		return nil, fmt.Errorf("expected a constructor, got %s", d)
	}
	return NewPair(NewInteger(new(big.Int).SetUint64(c.Tag)), dataList(c.Fields)), nil
}

func unMapData(_ *Machine, args []value) (value, error) {
	d, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	dm, ok := d.(*DataMap)
	if !ok {
		return nil, fmt.Errorf("expected a map, got %s", d)
	}
	items := make([]Constant, len(dm.Pairs))
	for i, p := range dm.Pairs {
		items[i] = NewPair(NewDataConstant(p.Key), NewDataConstant(p.Value))
	}
	return &ProtoList{Elem: dataPairType, Items: items}, nil
}

func unListData(_ *Machine, args []value) (value, error) {
	d, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	dl, ok := d.(*DataList)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %s", d)
	}
	return dataList(dl.Items), nil
}

func unIData(_ *Machine, args []value) (value, error) {
	d, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	di, ok := d.(*DataInteger)
	if !ok {
		return nil, fmt.Errorf("expected an integer, got %s", d)
	}
	return NewInteger(di.Value), nil
}

func unBData(_ *Machine, args []value) (value, error) {
	d, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	db, ok := d.(*DataBytes)
	if !ok {
		return nil, fmt.Errorf("expected bytes, got %s", d)
	}
	return NewByteString(db.Value), nil
}

func equalsData(_ *Machine, args []value) (value, error) {
	x, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	y, err := unwrapData(args[1])
	if err != nil {
		return nil, err
	}
	return NewBool(DataEqual(x, y)), nil
}

func mkPairData(_ *Machine, args []value) (value, error) {
	x, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	y, err := unwrapData(args[1])
	if err != nil {
		return nil, err
	}
	return NewPair(NewDataConstant(x), NewDataConstant(y)), nil
}

func mkNilData(_ *Machine, args []value) (value, error) {
	if err := unwrapUnit(args[0]); err != nil {
		return nil, err
	}
	return NewList(DataType), nil
}

func mkNilPairData(_ *Machine, args []value) (value, error) {
	if err := unwrapUnit(args[0]); err != nil {
		return nil, err
	}
	return NewList(dataPairType), nil
}

func serialiseData(_ *Machine, args []value) (value, error) {
	d, err := unwrapData(args[0])
	if err != nil {
		return nil, err
	}
	ret, err := EncodeDataBytes(d)
	if err != nil {
		return nil, err
	}
	return NewByteString(ret), nil
}
