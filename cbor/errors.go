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

package cbor

import (
	"errors"
	"fmt"
)

var (
	ErrEndOfInput     = errors.New("unexpected end of CBOR input")
	ErrInvalidHeader  = errors.New("invalid CBOR header")
	ErrOverflow       = errors.New("value overflows target")
	ErrSurplus        = errors.New("surplus element")
	ErrDuplicate      = errors.New("duplicate element")
	ErrInvalidUtf8    = errors.New("invalid UTF-8 in text string")
	ErrTrailingData   = errors.New("trailing data after CBOR item")
	ErrUnexpectedBrk  = errors.New("unexpected break")
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidLength  = errors.New("invalid length")
)

// MajorType identifies the CBOR major type encoded in the top 3 bits of a header byte
type MajorType uint8

const (
	MajorUint       MajorType = 0
	MajorNegInt     MajorType = 1
	MajorByteString MajorType = 2
	MajorTextString MajorType = 3
	MajorArray      MajorType = 4
	MajorMap        MajorType = 5
	MajorTag        MajorType = 6
	MajorSimple     MajorType = 7
)

func (m MajorType) String() string {
	switch m {
	case MajorUint:
		return "unsigned integer"
	case MajorNegInt:
		return "negative integer"
	case MajorByteString:
		return "byte string"
	case MajorTextString:
		return "text string"
	case MajorArray:
		return "array"
	case MajorMap:
		return "map"
	case MajorTag:
		return "tag"
	case MajorSimple:
		return "simple/float"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// TypeMismatchError is returned when a CBOR item has a different major type than expected
type TypeMismatchError struct {
	Expected MajorType
	Found    MajorType
	Offset   int
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf(
		"type mismatch at offset %d: expected %s, found %s",
		e.Offset,
		e.Expected,
		e.Found,
	)
}

// InvalidTagError is returned when a discriminant (CBOR tag or leading array element)
// does not select a known variant
type InvalidTagError struct {
	Type string
	Tag  uint64
}

func (e *InvalidTagError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("invalid tag: %d", e.Tag)
	}
	return fmt.Sprintf("invalid tag %d for type %s", e.Tag, e.Type)
}

// FieldError adds the field and type being decoded to an underlying error
type FieldError struct {
	Type  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf(
		"while decoding field %s of type %s: %v",
		e.Field,
		e.Type,
		e.Err,
	)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError wraps err with the field context. A nil err returns nil
func NewFieldError(typeName string, field string, err error) error {
	if err == nil {
		return nil
	}
	return &FieldError{Type: typeName, Field: field, Err: err}
}
