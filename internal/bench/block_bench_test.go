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

package bench

import (
	"strconv"
	"testing"

	"github.com/carloskiki/pallas-extras-sub001/internal/testdata"
	"github.com/carloskiki/pallas-extras-sub001/ledger"
)

// benchSink prevents compiler dead-code elimination in benchmarks.
var benchSink any

// BenchmarkBlockDecode benchmarks block CBOR decoding by era.
func BenchmarkBlockDecode(b *testing.B) {
	for _, tb := range testdata.GetTestBlocks() {
		b.Run("Era_"+tb.Name, func(b *testing.B) {
			b.SetBytes(int64(len(tb.Cbor)))
			b.ReportAllocs()
			for b.Loop() {
				block, err := ledger.NewBlockFromCbor(tb.BlockType, tb.Cbor)
				if err != nil {
					b.Fatal(err)
				}
				benchSink = block
			}
		})
	}
}

// BenchmarkBlockEnvelopeDecode benchmarks decoding blocks wrapped as [era, block].
func BenchmarkBlockEnvelopeDecode(b *testing.B) {
	for _, tb := range testdata.GetTestBlocks() {
		envelope := tb.Envelope()
		b.Run("Era_"+tb.Name, func(b *testing.B) {
			b.SetBytes(int64(len(envelope)))
			b.ReportAllocs()
			for b.Loop() {
				_, block, err := ledger.DecodeBlock(envelope)
				if err != nil {
					b.Fatal(err)
				}
				benchSink = block
			}
		})
	}
}

// BenchmarkBlockEncode benchmarks re-encoding decoded blocks into their envelope.
func BenchmarkBlockEncode(b *testing.B) {
	for _, era := range EraNames() {
		fixture := MustLoadBlockFixture(era)
		b.Run("Era_"+era, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				data, err := ledger.EncodeBlock(fixture.BlockType, fixture.Block)
				if err != nil {
					b.Fatal(err)
				}
				benchSink = data
			}
		})
	}
}

// BenchmarkBlockHeaderDecode benchmarks decoding block headers alone.
func BenchmarkBlockHeaderDecode(b *testing.B) {
	for _, era := range PostByronEraNames() {
		fixture := MustLoadBlockFixture(era)
		headerCbor := fixture.Block.Header().Cbor()
		b.Run("Era_"+era, func(b *testing.B) {
			b.SetBytes(int64(len(headerCbor)))
			b.ReportAllocs()
			for b.Loop() {
				header, err := ledger.NewBlockHeaderFromCbor(
					fixture.BlockType,
					headerCbor,
				)
				if err != nil {
					b.Fatal(err)
				}
				benchSink = header
			}
		})
	}
}

// BenchmarkBlockHash benchmarks block hash calculation.
func BenchmarkBlockHash(b *testing.B) {
	for _, era := range EraNames() {
		fixture := MustLoadBlockFixture(era)
		b.Run("Era_"+era, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				benchSink = fixture.Block.Hash()
			}
		})
	}
}

// BenchmarkBlockLargeDecode benchmarks decoding a Conway block as the
// transaction count grows.
func BenchmarkBlockLargeDecode(b *testing.B) {
	for _, txCount := range []int{1, 10, 100} {
		data := testdata.BuildBlock(testdata.BlockSpec{
			BlockType:   testdata.BlockTypeConway,
			BlockNumber: 1,
			Slot:        1000,
			TxCount:     txCount,
		})
		b.Run("Txs_"+strconv.Itoa(txCount), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				block, err := ledger.NewBlockFromCbor(ledger.BlockTypeConway, data)
				if err != nil {
					b.Fatal(err)
				}
				benchSink = block
			}
		})
	}
}
