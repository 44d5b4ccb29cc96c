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

// Package bench provides fixtures and benchmarks for block decoding and script
// evaluation.
package bench

import (
	"fmt"
	"strings"

	"github.com/carloskiki/pallas-extras-sub001/internal/testdata"
	"github.com/carloskiki/pallas-extras-sub001/ledger"
	"github.com/carloskiki/pallas-extras-sub001/ledger/common"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
)

// BlockFixture contains a pre-loaded block for benchmarking.
type BlockFixture struct {
	Era       string
	BlockType uint
	Cbor      []byte
	Envelope  []byte
	Block     common.Block
}

// LoadBlockFixture loads the test block for the given era. The era should be one
// of: "byron", "shelley", "allegra", "mary", "alonzo", "babbage", "conway".
func LoadBlockFixture(era string) (*BlockFixture, error) {
	blockType, err := BlockTypeFromEra(era)
	if err != nil {
		return nil, err
	}
	for _, tb := range testdata.GetTestBlocks() {
		if tb.BlockType != blockType {
			continue
		}
		block, err := ledger.NewBlockFromCbor(blockType, tb.Cbor)
		if err != nil {
			return nil, fmt.Errorf("decode %s block: %w", era, err)
		}
		return &BlockFixture{
			Era:       strings.ToLower(era),
			BlockType: blockType,
			Cbor:      tb.Cbor,
			Envelope:  tb.Envelope(),
			Block:     block,
		}, nil
	}
	return nil, fmt.Errorf("no test block for era: %s", era)
}

// MustLoadBlockFixture loads a test block and panics on error.
// Use this in benchmark setup code.
func MustLoadBlockFixture(era string) *BlockFixture {
	fixture, err := LoadBlockFixture(era)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s block fixture: %v", era, err))
	}
	return fixture
}

// TxFixture contains a pre-loaded transaction for benchmarking.
type TxFixture struct {
	Era    string
	TxType uint
	Cbor   []byte
	Tx     common.Transaction
}

// LoadTxFixture returns the first transaction of the era's block fixture
func LoadTxFixture(era string) (*TxFixture, error) {
	txType, err := TxTypeFromEra(era)
	if err != nil {
		return nil, err
	}
	blockFixture, err := LoadBlockFixture(era)
	if err != nil {
		return nil, err
	}
	txs := blockFixture.Block.Transactions()
	if len(txs) == 0 {
		return nil, fmt.Errorf("no transactions in %s block fixture", era)
	}
	return &TxFixture{
		Era:    blockFixture.Era,
		TxType: txType,
		Cbor:   txs[0].Cbor(),
		Tx:     txs[0],
	}, nil
}

// MustLoadTxFixture loads a test transaction and panics on error.
func MustLoadTxFixture(era string) *TxFixture {
	fixture, err := LoadTxFixture(era)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s tx fixture: %v", era, err))
	}
	return fixture
}

// BlockTypeFromEra returns the ledger block type constant for the given era
// name.
func BlockTypeFromEra(era string) (uint, error) {
	switch strings.ToLower(era) {
	case "byron":
		return ledger.BlockTypeByronMain, nil
	case "shelley":
		return ledger.BlockTypeShelley, nil
	case "allegra":
		return ledger.BlockTypeAllegra, nil
	case "mary":
		return ledger.BlockTypeMary, nil
	case "alonzo":
		return ledger.BlockTypeAlonzo, nil
	case "babbage":
		return ledger.BlockTypeBabbage, nil
	case "conway":
		return ledger.BlockTypeConway, nil
	default:
		return 0, fmt.Errorf("unknown era: %s", era)
	}
}

// TxTypeFromEra returns the ledger transaction type constant for the given era
// name.
func TxTypeFromEra(era string) (uint, error) {
	switch strings.ToLower(era) {
	case "byron":
		return ledger.TxTypeByron, nil
	case "shelley":
		return ledger.TxTypeShelley, nil
	case "allegra":
		return ledger.TxTypeAllegra, nil
	case "mary":
		return ledger.TxTypeMary, nil
	case "alonzo":
		return ledger.TxTypeAlonzo, nil
	case "babbage":
		return ledger.TxTypeBabbage, nil
	case "conway":
		return ledger.TxTypeConway, nil
	default:
		return 0, fmt.Errorf("unknown era: %s", era)
	}
}

// EraNames returns the list of supported era names for benchmarking.
func EraNames() []string {
	return []string{
		"byron",
		"shelley",
		"allegra",
		"mary",
		"alonzo",
		"babbage",
		"conway",
	}
}

// PostByronEraNames returns era names excluding Byron
func PostByronEraNames() []string {
	return EraNames()[1:]
}

// FibonacciProgram returns a program computing the n-th Fibonacci number by naive
// recursion through self application. It exercises variable lookup, application,
// delay and force, and integer builtins.
func FibonacciProgram(n int) (*plutus.Program, error) {
	src := fmt.Sprintf(`(program 1.0.0
  [
    [
      (lam s [s s])
      (lam self (lam n
        (force
          [
            [
              [(force (builtin ifThenElse)) [[(builtin lessThanInteger) n] (con integer 2)]]
              (delay n)
            ]
            (delay
              [
                [(builtin addInteger) [[self self] [[(builtin subtractInteger) n] (con integer 1)]]]
                [[self self] [[(builtin subtractInteger) n] (con integer 2)]]
              ]
            )
          ]
        )
      ))
    ]
    (con integer %d)
  ]
)`, n)
	return plutus.ParseProgram(src)
}
