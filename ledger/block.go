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

package ledger

import (
	"errors"
	"fmt"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/ledger/allegra"
	"github.com/carloskiki/pallas-extras-sub001/ledger/alonzo"
	"github.com/carloskiki/pallas-extras-sub001/ledger/babbage"
	"github.com/carloskiki/pallas-extras-sub001/ledger/byron"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/ledger/conway"
	"github.com/carloskiki/pallas-extras-sub001/ledger/mary"
	"github.com/carloskiki/pallas-extras-sub001/ledger/shelley"
)

// Block types double as the era tags of the hard fork combinator envelope
const (
	BlockTypeByronEbb  = byron.BlockTypeByronEbb
	BlockTypeByronMain = byron.BlockTypeByronMain
	BlockTypeShelley   = shelley.BlockTypeShelley
	BlockTypeAllegra   = allegra.BlockTypeAllegra
	BlockTypeMary      = mary.BlockTypeMary
	BlockTypeAlonzo    = alonzo.BlockTypeAlonzo
	BlockTypeBabbage   = babbage.BlockTypeBabbage
	BlockTypeConway    = conway.BlockTypeConway
)

type (
	Block       = common.Block
	BlockHeader = common.BlockHeader
)

var ErrUnknownBlockType = errors.New("unknown block type")

func unknownBlockType(blockType uint) error {
	return fmt.Errorf("%w: %d", ErrUnknownBlockType, blockType)
}

func blockOrNil(block Block, err error) (Block, error) {
	if err != nil {
		return nil, err
	}
	return block, nil
}

func headerOrNil(header BlockHeader, err error) (BlockHeader, error) {
	if err != nil {
		return nil, err
	}
	return header, nil
}

// NewBlockFromCbor decodes a block of the given type
func NewBlockFromCbor(blockType uint, data []byte) (Block, error) {
	switch blockType {
	case BlockTypeByronEbb:
		return blockOrNil(byron.NewByronEpochBoundaryBlockFromCbor(data))
	case BlockTypeByronMain:
		return blockOrNil(byron.NewByronMainBlockFromCbor(data))
	case BlockTypeShelley:
		return blockOrNil(shelley.NewShelleyBlockFromCbor(data))
	case BlockTypeAllegra:
		return blockOrNil(allegra.NewAllegraBlockFromCbor(data))
	case BlockTypeMary:
		return blockOrNil(mary.NewMaryBlockFromCbor(data))
	case BlockTypeAlonzo:
		return blockOrNil(alonzo.NewAlonzoBlockFromCbor(data))
	case BlockTypeBabbage:
		return blockOrNil(babbage.NewBabbageBlockFromCbor(data))
	case BlockTypeConway:
		return blockOrNil(conway.NewConwayBlockFromCbor(data))
	}
	return nil, unknownBlockType(blockType)
}

func decodeHeader[T interface {
	BlockHeader
	UnmarshalCBOR([]byte) error
}](header T, data []byte) (BlockHeader, error) {
	if err := header.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("decode %s block header error: %w", header.Era().Name, err)
	}
	return header, nil
}

// NewBlockHeaderFromCbor decodes a block header of the given block type
func NewBlockHeaderFromCbor(blockType uint, data []byte) (BlockHeader, error) {
	switch blockType {
	case BlockTypeByronEbb:
		return headerOrNil(byron.NewByronEpochBoundaryBlockHeaderFromCbor(data))
	case BlockTypeByronMain:
		return headerOrNil(byron.NewByronMainBlockHeaderFromCbor(data))
	case BlockTypeShelley:
		return decodeHeader(&shelley.ShelleyBlockHeader{}, data)
	case BlockTypeAllegra:
		return decodeHeader(&allegra.AllegraBlockHeader{}, data)
	case BlockTypeMary:
		return decodeHeader(&mary.MaryBlockHeader{}, data)
	case BlockTypeAlonzo:
		return decodeHeader(&alonzo.AlonzoBlockHeader{}, data)
	case BlockTypeBabbage:
		return decodeHeader(&babbage.BabbageBlockHeader{}, data)
	case BlockTypeConway:
		return decodeHeader(&conway.ConwayBlockHeader{}, data)
	}
	return nil, unknownBlockType(blockType)
}

// BlockEnvelope is a block tagged with its era as [era, block]. This is the form blocks
// take on the wire and in chain storage
type BlockEnvelope struct {
	BlockType uint
	Block     Block
}

func (e *BlockEnvelope) Decode(rd *cbor.Reader) error {
	start := rd.Offset()
	n, err := rd.ExpectArray(2, 2)
	if err != nil {
		return cbor.NewFieldError("BlockEnvelope", "length", err)
	}
	blockType, err := rd.ReadUint()
	if err != nil {
		rd.Seek(start)
		return cbor.NewFieldError("BlockEnvelope", "era", err)
	}
	raw, err := rd.ReadRaw()
	if err != nil {
		rd.Seek(start)
		return cbor.NewFieldError("BlockEnvelope", "block", err)
	}
	if n < 0 {
		if err := rd.ReadBreak(); err != nil {
			rd.Seek(start)
			return err
		}
	}
	block, err := NewBlockFromCbor(uint(blockType), raw)
	if err != nil {
		rd.Seek(start)
		return err
	}
	e.BlockType = uint(blockType)
	e.Block = block
	return nil
}

func (e *BlockEnvelope) UnmarshalCBOR(data []byte) error {
	return common.DecodeExact(data, e)
}

func (e *BlockEnvelope) MarshalCBOR() ([]byte, error) {
	if e.Block == nil {
		return nil, errors.New("block envelope has no block")
	}
	if _, err := EraForBlockType(e.BlockType); err != nil {
		return nil, err
	}
	w := cbor.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteUint(uint64(e.BlockType))
	if err := w.WriteValue(e.Block); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeBlock decodes a block wrapped in its era envelope
func DecodeBlock(data []byte) (uint, Block, error) {
	var env BlockEnvelope
	if err := env.UnmarshalCBOR(data); err != nil {
		return 0, nil, err
	}
	return env.BlockType, env.Block, nil
}

// EncodeBlock wraps a block in its era envelope
func EncodeBlock(blockType uint, block Block) ([]byte, error) {
	env := BlockEnvelope{
		BlockType: blockType,
		Block:     block,
	}
	return env.MarshalCBOR()
}
