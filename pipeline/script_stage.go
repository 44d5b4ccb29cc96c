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
	"fmt"
	"time"

	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
)

// ScriptError reports a Plutus script in a witness set whose program cannot be decoded
type ScriptError struct {
	TxHash     common.Blake2b256
	ScriptHash common.ScriptHash
	Err        error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s in transaction %s: %v", e.ScriptHash, e.TxHash, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ScriptStage decodes the program of every Plutus script carried by the witness sets
// of a block
type ScriptStage struct{}

func NewScriptStage() *ScriptStage {
	return &ScriptStage{}
}

func (s *ScriptStage) Name() string {
	return "scripts"
}

type plutusScript interface {
	Hash() common.ScriptHash
	Program() (*plutus.Program, error)
}

// Process checks the scripts of a decoded block. Items that failed to decode are
// passed through, since the decode stage already reported them
func (s *ScriptStage) Process(ctx context.Context, item *BlockItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	block := item.Block()
	if block == nil {
		return nil
	}
	start := time.Now()
	count := 0
	var errs []error
	for _, tx := range block.Transactions() {
		ws := tx.Witnesses()
		if ws == nil {
			continue
		}
		var scripts []plutusScript
		for _, script := range ws.PlutusV1Scripts() {
			scripts = append(scripts, script)
		}
		for _, script := range ws.PlutusV2Scripts() {
			scripts = append(scripts, script)
		}
		for _, script := range ws.PlutusV3Scripts() {
			scripts = append(scripts, script)
		}
		for _, script := range scripts {
			count++
			if _, err := script.Program(); err != nil {
				errs = append(errs, &ScriptError{
					TxHash:     tx.Hash(),
					ScriptHash: script.Hash(),
					Err:        err,
				})
			}
		}
	}
	var err error
	if len(errs) > 0 {
		err = &StageError{
			Stage:    s.Name(),
			Sequence: item.SequenceNumber(),
			Err:      errors.Join(errs...),
		}
	}
	item.SetScripts(count, err, time.Since(start))
	return err
}
