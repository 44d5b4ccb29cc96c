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
)

var (
	// ErrExplicitError is returned when evaluation reaches an (error) term
	ErrExplicitError = errors.New("explicit error term evaluated")
	// ErrOutOfBudget is returned when either budget counter would go negative
	ErrOutOfBudget = errors.New("execution budget exhausted")
	// ErrTypeMismatch is returned when a value is used at the wrong type, such as
	// applying a constant or forcing a lambda
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrMalformedProgram is returned for structurally invalid programs
	ErrMalformedProgram = errors.New("malformed program")
	// ErrUnknownBuiltin is returned for builtin tags or names that do not exist
	ErrUnknownBuiltin = errors.New("unknown builtin")
	// ErrCostModel is returned for cost model parameter arrays that do not fit the
	// layout of their language
	ErrCostModel = errors.New("invalid cost model")
	// ErrUnsupportedVersion is returned for programs with a major version other than 1
	ErrUnsupportedVersion = errors.New("unsupported program version")
)

// BuiltinError is a domain failure inside a builtin function, such as a division by
// zero or an index out of range
type BuiltinError struct {
	Builtin Builtin
	Err     error
}

func (e *BuiltinError) Error() string {
	return fmt.Sprintf("builtin %s: %s", e.Builtin, e.Err)
}

func (e *BuiltinError) Unwrap() error {
	return e.Err
}

// ParseError is a failure to parse the textual program syntax
type ParseError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at %d:%d: %s: %s", e.Line, e.Column, e.Msg, e.Err)
	}
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FlatError is a failure to decode the flat binary program format
type FlatError struct {
	// Offset is the bit offset where decoding failed
	Offset int
	Err    error
}

func (e *FlatError) Error() string {
	return fmt.Sprintf("flat decode error at bit %d: %s", e.Offset, e.Err)
}

func (e *FlatError) Unwrap() error {
	return e.Err
}
