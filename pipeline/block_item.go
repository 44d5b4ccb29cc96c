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

package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/carloskiki/pallas-extras-sub001/ledger"
)

// BlockItem is a block moving through the pipeline. The raw bytes and sequence number
// are fixed at submission, and each stage records its outcome under the item lock
type BlockItem struct {
	rawCbor        []byte
	sequenceNumber uint64
	receivedAt     time.Time

	mu sync.RWMutex

	// decode
	blockType      uint
	block          ledger.Block
	decodeError    error
	decodeDuration time.Duration

	// scripts
	scriptsChecked bool
	scriptCount    int
	scriptError    error
	scriptDuration time.Duration

	// apply
	applied       bool
	applyError    error
	applyDuration time.Duration
}

// NewBlockItem creates an item for the era-tagged block bytes. The bytes are copied
func NewBlockItem(rawCbor []byte, seq uint64) *BlockItem {
	return &BlockItem{
		rawCbor:        slices.Clone(rawCbor),
		sequenceNumber: seq,
		receivedAt:     time.Now(),
	}
}

// RawCbor returns the [era, block] bytes the item was submitted with
func (b *BlockItem) RawCbor() []byte {
	return b.rawCbor
}

func (b *BlockItem) SequenceNumber() uint64 {
	return b.sequenceNumber
}

func (b *BlockItem) ReceivedAt() time.Time {
	return b.receivedAt
}

// BlockType returns the era tag of the decoded block
func (b *BlockItem) BlockType() uint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.blockType
}

// Block returns the decoded block, or nil if decoding has not succeeded
func (b *BlockItem) Block() ledger.Block {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.block
}

// SetBlock records a successful decode and clears any decode error
func (b *BlockItem) SetBlock(blockType uint, block ledger.Block, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blockType = blockType
	b.block = block
	b.decodeError = nil
	b.decodeDuration = duration
}

// SetDecodeError records a failed decode and clears any block
func (b *BlockItem) SetDecodeError(err error, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.block = nil
	b.decodeError = err
	b.decodeDuration = duration
}

func (b *BlockItem) DecodeError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.decodeError
}

func (b *BlockItem) DecodeDuration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.decodeDuration
}

// IsDecoded reports whether the block was decoded
func (b *BlockItem) IsDecoded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.block != nil
}

// SetScripts records the outcome of the script check
func (b *BlockItem) SetScripts(count int, err error, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scriptsChecked = true
	b.scriptCount = count
	b.scriptError = err
	b.scriptDuration = duration
}

// ScriptsChecked reports whether the script stage processed the block
func (b *BlockItem) ScriptsChecked() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scriptsChecked
}

// ScriptCount returns the number of Plutus scripts found in the witness sets
func (b *BlockItem) ScriptCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scriptCount
}

func (b *BlockItem) ScriptError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scriptError
}

func (b *BlockItem) ScriptDuration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scriptDuration
}

// SetApplied records the apply result
func (b *BlockItem) SetApplied(applied bool, err error, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applied = applied
	b.applyError = err
	b.applyDuration = duration
}

func (b *BlockItem) IsApplied() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.applied
}

func (b *BlockItem) ApplyError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.applyError
}

func (b *BlockItem) ApplyDuration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.applyDuration
}

// Applicable reports whether the earlier stages succeeded, so the block may be applied
func (b *BlockItem) Applicable() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.block != nil && b.decodeError == nil && b.scriptError == nil
}

// Slot returns the slot of the decoded block, or 0 before decoding
func (b *BlockItem) Slot() uint64 {
	if blk := b.Block(); blk != nil {
		return blk.SlotNumber()
	}
	return 0
}

// BlockNumber returns the number of the decoded block, or 0 before decoding
func (b *BlockItem) BlockNumber() uint64 {
	if blk := b.Block(); blk != nil {
		return blk.BlockNumber()
	}
	return 0
}

// TotalDuration returns the time since the item was submitted
func (b *BlockItem) TotalDuration() time.Duration {
	return time.Since(b.receivedAt)
}
