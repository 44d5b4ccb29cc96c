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
	"context"
	"errors"
	"time"

	"github.com/carloskiki/pallas-extras-sub001/ledger"
)

// ErrNilStage is returned when a nil stage is passed to a worker pool.
var ErrNilStage = errors.New("pipeline: nil stage")

// DecodeStage decodes the [era, block] envelope of an item into a ledger block
type DecodeStage struct{}

func NewDecodeStage() *DecodeStage {
	return &DecodeStage{}
}

func (s *DecodeStage) Name() string {
	return "decode"
}

// Process decodes the raw bytes of the item and records the block or the error on it
func (s *DecodeStage) Process(ctx context.Context, item *BlockItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	blockType, block, err := ledger.DecodeBlock(item.RawCbor())
	duration := time.Since(start)
	if err != nil {
		err = &StageError{
			Stage:    s.Name(),
			Sequence: item.SequenceNumber(),
			Err:      err,
		}
		item.SetDecodeError(err, duration)
		return err
	}
	item.SetBlock(blockType, block, duration)
	return nil
}
