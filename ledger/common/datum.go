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

package common

import (
	"errors"
	"fmt"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
)

type DatumHash = Blake2b256

const (
	DatumOptionTypeHash = 0
	DatumOptionTypeData = 1
)

// DatumHashToBech32 encodes a DatumHash as a CIP-0005 bech32 string with "datum" prefix
func DatumHashToBech32(d DatumHash) string {
	return d.Bech32("datum")
}

// Datum represents a Plutus datum
type Datum struct {
	cbor.DecodeStoreCbor
	Data plutus.Data `json:"data"`
}

func NewDatum(d plutus.Data) Datum {
	return Datum{Data: d}
}

func (d *Datum) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	tmpData, err := plutus.DecodeData(rd)
	if err != nil {
		return err
	}
	d.Data = tmpData
	d.SetCbor(rd.Data()[start:rd.Offset()])
	return nil
}

func (d *Datum) UnmarshalCBOR(cborData []byte) error {
	tmpData, err := plutus.DecodeDataBytes(cborData)
	if err != nil {
		return err
	}
	d.Data = tmpData
	d.SetCbor(cborData)
	return nil
}

func (d *Datum) MarshalCBOR() ([]byte, error) {
	if d.Cbor() != nil {
		return d.Cbor(), nil
	}
	if d.Data == nil {
		return nil, errors.New("datum has no data")
	}
	return plutus.EncodeDataBytes(d.Data)
}

// Hash returns the datum hash, computed over the original encoding when available
func (d *Datum) Hash() DatumHash {
	raw, err := d.MarshalCBOR()
	if err != nil {
		return DatumHash{}
	}
	return Blake2b256Hash(raw)
}

// DatumOption is either a datum hash or an inline datum wrapped as embedded CBOR
type DatumOption struct {
	hash *DatumHash
	data *cbor.Encoded[Datum]
}

func NewDatumOptionHash(hash DatumHash) *DatumOption {
	return &DatumOption{hash: &hash}
}

func NewDatumOptionData(d Datum) *DatumOption {
	tmpData := cbor.NewEncoded(d)
	return &DatumOption{data: &tmpData}
}

func (d *DatumOption) Decode(rd *cbor.Reader) error {
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return cbor.NewFieldError("DatumOption", "type", err)
	}
	optionType, err := rd.ReadUint()
	if err != nil {
		return cbor.NewFieldError("DatumOption", "type", err)
	}
	d.hash = nil
	d.data = nil
	switch optionType {
	case DatumOptionTypeHash:
		var tmpHash DatumHash
		if err := rd.ReadValue(&tmpHash); err != nil {
			return cbor.NewFieldError("DatumOption", "hash", err)
		}
		d.hash = &tmpHash
	case DatumOptionTypeData:
		var tmpData cbor.Encoded[Datum]
		if err := rd.ReadValue(&tmpData); err != nil {
			return cbor.NewFieldError("DatumOption", "data", err)
		}
		d.data = &tmpData
	default:
		return cbor.NewFieldError(
			"DatumOption",
			"type",
			&cbor.InvalidTagError{Type: "DatumOption", Tag: optionType},
		)
	}
	if n < 0 {
		return rd.ReadBreak()
	}
	return nil
}

func (d *DatumOption) UnmarshalCBOR(data []byte) error {
	rd := cbor.NewReader(data)
	if err := d.Decode(rd); err != nil {
		return err
	}
	if !rd.Done() {
		return fmt.Errorf("DatumOption: %w", cbor.ErrTrailingData)
	}
	return nil
}

func (d *DatumOption) MarshalCBOR() ([]byte, error) {
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	switch {
	case d.hash != nil:
		w.WriteUint(DatumOptionTypeHash)
		w.WriteBytes(d.hash.Bytes())
	case d.data != nil:
		w.WriteUint(DatumOptionTypeData)
		if err := w.WriteValue(d.data); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("empty datum option")
	}
	return w.Bytes(), nil
}

// Hash returns the datum hash, either stored directly or computed from the inline datum
func (d *DatumOption) Hash() *DatumHash {
	if d.hash != nil {
		return d.hash
	}
	if d.data != nil {
		tmpHash := d.data.Value.Hash()
		return &tmpHash
	}
	return nil
}

// Datum returns the inline datum, if any
func (d *DatumOption) Datum() *Datum {
	if d.data == nil {
		return nil
	}
	return &d.data.Value
}

func (d *DatumOption) IsInline() bool {
	return d.data != nil
}
