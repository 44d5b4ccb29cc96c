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
	"math/big"
	"reflect"

	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	// Useful tag numbers
	CborTagPosBignum = 2
	CborTagNegBignum = 3
	CborTagCbor      = 24
	CborTagRational  = 30
	CborTagSet       = 258
	CborTagMap       = 259

	// Tag ranges for "alternatives"
	// https://www.ietf.org/archive/id/draft-bormann-cbor-notable-tags-07.html#name-enumerated-alternative-data
	CborTagAlternative1Min = 121
	CborTagAlternative1Max = 127
	CborTagAlternative2Min = 1280
	CborTagAlternative2Max = 1400
	// General form for constructor alternatives: tag(102) [index, fields]
	CborTagAlternativeGeneral = 102
)

var customTagSet _cbor.TagSet

func init() {
	// Build custom tagset
	customTagSet = _cbor.NewTagSet()
	tagOpts := _cbor.TagOptions{
		EncTag: _cbor.EncTagRequired,
		DecTag: _cbor.DecTagRequired,
	}
	// Wrapped CBOR
	if err := customTagSet.Add(
		tagOpts,
		reflect.TypeOf(WrappedCbor{}),
		CborTagCbor,
	); err != nil {
		panic(err)
	}
}

// WrappedCbor is a byte string carrying encoded CBOR, tagged with tag 24
type WrappedCbor []byte

func (w WrappedCbor) Bytes() []byte {
	return w[:]
}

// ConstrTag returns the compact CBOR tag for a constructor alternative, or false if the
// index requires the general tag 102 form
func ConstrTag(index uint64) (uint64, bool) {
	switch {
	case index <= 6:
		return CborTagAlternative1Min + index, true
	case index <= 127:
		return CborTagAlternative2Min + index - 7, true
	default:
		return 0, false
	}
}

// ConstrIndex maps a compact constructor alternative tag to its index. General form
// tags (102) and unrelated tags return false
func ConstrIndex(tag uint64) (uint64, bool) {
	switch {
	case tag >= CborTagAlternative1Min && tag <= CborTagAlternative1Max:
		return tag - CborTagAlternative1Min, true
	case tag >= CborTagAlternative2Min && tag <= CborTagAlternative2Max:
		return tag - CborTagAlternative2Min + 7, true
	default:
		return 0, false
	}
}

// Rat is a rational number encoded as tag(30) [numerator, denominator]
type Rat struct {
	*big.Rat
}

func NewRat(num int64, denom int64) Rat {
	return Rat{Rat: big.NewRat(num, denom)}
}

func (r *Rat) UnmarshalCBOR(cborData []byte) error {
	rd := NewReader(cborData)
	if err := r.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return ErrTrailingData
	}
	return nil
}

// Decode reads a rational from the provided reader. The tag is accepted as optional for
// older encodings that omit it
func (r *Rat) Decode(rd *Reader) error {
	if tag, ok := rd.PeekTag(); ok {
		if tag != CborTagRational {
			return &InvalidTagError{Type: "Rat", Tag: tag}
		}
		if _, err := rd.ReadTag(); err != nil {
			return err
		}
	}
	if _, err := rd.ExpectArray(2, 2); err != nil {
		return err
	}
	num, err := rd.ReadInt()
	if err != nil {
		return NewFieldError("Rat", "numerator", err)
	}
	den, err := rd.ReadUint()
	if err != nil {
		return NewFieldError("Rat", "denominator", err)
	}
	if den == 0 {
		return NewFieldError("Rat", "denominator", errors.New("zero denominator"))
	}
	r.Rat = new(big.Rat).SetFrac(
		big.NewInt(num),
		new(big.Int).SetUint64(den),
	)
	return nil
}

func (r *Rat) MarshalCBOR() ([]byte, error) {
	w := NewWriter()
	if err := r.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Encode writes the rational to the provided writer
func (r *Rat) Encode(w *Writer) error {
	if r.Rat == nil {
		return errors.New("nil rational")
	}
	if !r.Num().IsInt64() || !r.Denom().IsUint64() {
		return fmt.Errorf("%w: rational %s", ErrOverflow, r.String())
	}
	w.WriteTag(CborTagRational)
	w.WriteArrayHeader(2)
	w.WriteInt(r.Num().Int64())
	w.WriteUint(r.Denom().Uint64())
	return nil
}

func (r *Rat) ToBigRat() *big.Rat {
	return r.Rat
}
