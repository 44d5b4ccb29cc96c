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
	"unicode/utf8"
)

var errInvalidUtf8 = errors.New("invalid UTF-8")

func appendString(_ *Machine, args []value) (value, error) {
	x, err := unwrapString(args[0])
	if err != nil {
		return nil, err
	}
	y, err := unwrapString(args[1])
	if err != nil {
		return nil, err
	}
	return NewString(x + y), nil
}

func equalsString(_ *Machine, args []value) (value, error) {
	x, err := unwrapString(args[0])
	if err != nil {
		return nil, err
	}
	y, err := unwrapString(args[1])
	if err != nil {
		return nil, err
	}
	return NewBool(x == y), nil
}

func encodeUtf8(_ *Machine, args []value) (value, error) {
	s, err := unwrapString(args[0])
	if err != nil {
		return nil, err
	}
	return NewByteString([]byte(s)), nil
}

func decodeUtf8(_ *Machine, args []value) (value, error) {
	bs, err := unwrapByteString(args[0])
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(bs) {
		return nil, errInvalidUtf8
	}
	return NewString(string(bs)), nil
}
