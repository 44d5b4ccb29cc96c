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
	"sync"
	"testing"
	"time"

	"github.com/carloskiki/pallas-extras-sub001/cbor"
	"github.com/carloskiki/pallas-extras-sub001/internal/testdata"
	"github.com/carloskiki/pallas-extras-sub001/ledger"
	"github.com/carloskiki/pallas-extras-sub001/plutus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// (program 1.0.0 (con integer 1)) in flat form
var testFlatProgram = testdata.MustDecodeHex("010000480081")

// wrapScript serializes a flat program the way witness sets carry it
func wrapScript(flat []byte) []byte {
	inner := cbor.NewWriter()
	inner.WriteBytes(flat)
	outer := cbor.NewWriter()
	outer.WriteBytes(inner.Bytes())
	return outer.Bytes()
}

func testBlock(blockNumber uint64, scripts ...[]byte) []byte {
	spec := testdata.BlockSpec{
		BlockType:   testdata.BlockTypeConway,
		BlockNumber: blockNumber,
		Slot:        1000 + blockNumber,
		TxCount:     2,
	}
	for _, script := range scripts {
		spec.PlutusV1Scripts = append(spec.PlutusV1Scripts, wrapScript(script))
	}
	return testdata.TestBlock{
		BlockType: testdata.BlockTypeConway,
		Cbor:      testdata.BuildBlock(spec),
	}.Envelope()
}

func mustFlat(t *testing.T, src string) []byte {
	t.Helper()
	prog, err := plutus.ParseProgram(src)
	require.NoError(t, err)
	ret, err := prog.EncodeFlat()
	require.NoError(t, err)
	return ret
}

func invalidBlock() []byte {
	// [7, [0, 1, 2]]
	return []byte{0x82, 0x07, 0x83, 0x00, 0x01, 0x02}
}

func decodedItem(t *testing.T, data []byte, seq uint64) *BlockItem {
	t.Helper()
	item := NewBlockItem(data, seq)
	require.NoError(t, NewDecodeStage().Process(context.Background(), item))
	return item
}

// ============================================================================
// BlockItem
// ============================================================================

func TestBlockItem_NewBlockItem(t *testing.T) {
	data := testBlock(5)
	item := NewBlockItem(data, 42)
	data[0] = 0xff
	assert.Equal(t, byte(0x82), item.RawCbor()[0], "raw bytes should be copied")
	assert.Equal(t, uint64(42), item.SequenceNumber())
	assert.False(t, item.ReceivedAt().IsZero())
	assert.Nil(t, item.Block())
	assert.False(t, item.IsDecoded())
	assert.False(t, item.Applicable())
	assert.Equal(t, uint64(0), item.Slot())
	assert.Equal(t, uint64(0), item.BlockNumber())
}

func TestBlockItem_StageResults(t *testing.T) {
	item := decodedItem(t, testBlock(5), 0)
	assert.True(t, item.IsDecoded())
	assert.True(t, item.Applicable())
	assert.Equal(t, uint(ledger.BlockTypeConway), item.BlockType())
	assert.Equal(t, uint64(1005), item.Slot())
	assert.Equal(t, uint64(5), item.BlockNumber())

	scriptErr := errors.New("bad script")
	item.SetScripts(3, scriptErr, 10*time.Millisecond)
	assert.True(t, item.ScriptsChecked())
	assert.Equal(t, 3, item.ScriptCount())
	assert.Equal(t, scriptErr, item.ScriptError())
	assert.Equal(t, 10*time.Millisecond, item.ScriptDuration())
	assert.False(t, item.Applicable())

	applyErr := errors.New("apply failed")
	item.SetApplied(false, applyErr, 5*time.Millisecond)
	assert.False(t, item.IsApplied())
	assert.Equal(t, applyErr, item.ApplyError())
	assert.Equal(t, 5*time.Millisecond, item.ApplyDuration())

	decodeErr := errors.New("decode failed")
	item.SetDecodeError(decodeErr, time.Millisecond)
	assert.Nil(t, item.Block())
	assert.Equal(t, decodeErr, item.DecodeError())
	assert.Equal(t, time.Millisecond, item.DecodeDuration())
}

func TestBlockItem_ThreadSafety(t *testing.T) {
	item := decodedItem(t, testBlock(1), 0)
	block := item.Block()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := range 50 {
				item.SetBlock(ledger.BlockTypeConway, block, time.Duration(j))
			}
		}()
		go func() {
			defer wg.Done()
			for j := range 50 {
				item.SetScripts(j, nil, time.Duration(j))
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				_ = item.Applicable()
				_ = item.Slot()
				_ = item.ScriptCount()
			}
		}()
	}
	wg.Wait()
	assert.True(t, item.IsDecoded())
}

// ============================================================================
// Stages
// ============================================================================

func TestDecodeStage_Process(t *testing.T) {
	stage := NewDecodeStage()
	assert.Equal(t, "decode", stage.Name())

	item := NewBlockItem(testBlock(9), 0)
	require.NoError(t, stage.Process(context.Background(), item))
	require.NotNil(t, item.Block())
	assert.Equal(t, uint64(9), item.Block().BlockNumber())
	assert.Len(t, item.Block().Transactions(), 2)

	bad := NewBlockItem(invalidBlock(), 3)
	err := stage.Process(context.Background(), bad)
	require.Error(t, err)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "decode", stageErr.Stage)
	assert.Equal(t, uint64(3), stageErr.Sequence)
	assert.Equal(t, err, bad.DecodeError())
	assert.False(t, bad.IsDecoded())
}

func TestDecodeStage_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	item := NewBlockItem(testBlock(1), 0)
	err := NewDecodeStage().Process(ctx, item)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, item.IsDecoded())
}

func TestScriptStage_Process(t *testing.T) {
	stage := NewScriptStage()
	assert.Equal(t, "scripts", stage.Name())

	item := decodedItem(t, testBlock(1, testFlatProgram, testFlatProgram[:len(testFlatProgram)-1]), 0)
	// The second script is truncated
	err := stage.Process(context.Background(), item)
	require.Error(t, err)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, item.Block().Transactions()[0].Hash(), scriptErr.TxHash)
	assert.Equal(t, 2, item.ScriptCount())
	assert.False(t, item.Applicable())

	item = decodedItem(t, testBlock(2, testFlatProgram), 1)
	require.NoError(t, stage.Process(context.Background(), item))
	assert.True(t, item.ScriptsChecked())
	assert.Equal(t, 1, item.ScriptCount())
	assert.True(t, item.Applicable())

	// Blocks without witness sets
	for _, tb := range testdata.GetTestBlocks()[:2] {
		item = decodedItem(t, tb.Envelope(), 0)
		require.NoError(t, stage.Process(context.Background(), item), tb.Name)
		assert.Equal(t, 0, item.ScriptCount(), tb.Name)
	}

	// Items that failed decoding pass through
	item = NewBlockItem(invalidBlock(), 2)
	assert.NoError(t, stage.Process(context.Background(), item))
	assert.False(t, item.ScriptsChecked())
}

func TestStageFunc(t *testing.T) {
	testErr := errors.New("stage failed")
	stage := NewStageFunc("custom", func(ctx context.Context, item *BlockItem) error {
		if item.SequenceNumber() == 1 {
			return testErr
		}
		return nil
	})
	assert.Equal(t, "custom", stage.Name())
	assert.NoError(t, stage.Process(context.Background(), NewBlockItem(nil, 0)))
	assert.ErrorIs(t, stage.Process(context.Background(), NewBlockItem(nil, 1)), testErr)
}

// ============================================================================
// Apply stage
// ============================================================================

func TestApplyStage_OutOfOrder(t *testing.T) {
	var applied []uint64
	stage := NewApplyStage(func(item *BlockItem) error {
		applied = append(applied, item.SequenceNumber())
		return nil
	}, 0)
	assert.Equal(t, "apply", stage.Name())
	ctx := context.Background()
	data := testBlock(1)
	items := make([]*BlockItem, 4)
	for i := range items {
		items[i] = decodedItem(t, data, uint64(i))
	}

	released, err := stage.ProcessWithStatus(ctx, items[2])
	require.NoError(t, err)
	assert.Empty(t, released)
	released, err = stage.ProcessWithStatus(ctx, items[1])
	require.NoError(t, err)
	assert.Empty(t, released)
	assert.Equal(t, 2, stage.PendingCount())

	released, err = stage.ProcessWithStatus(ctx, items[0])
	require.NoError(t, err)
	assert.Equal(t, []*BlockItem{items[0], items[1], items[2]}, released)
	assert.Equal(t, []uint64{0, 1, 2}, applied)
	assert.Equal(t, 0, stage.PendingCount())

	require.NoError(t, stage.Process(ctx, items[3]))
	assert.Equal(t, []uint64{0, 1, 2, 3}, applied)
	for _, item := range items {
		assert.True(t, item.IsApplied())
	}

	stage.Reset()
	released, err = stage.ProcessWithStatus(ctx, items[0])
	require.NoError(t, err)
	assert.Len(t, released, 1)
}

func TestApplyStage_SkipsFailedItems(t *testing.T) {
	var applied []uint64
	stage := NewApplyStage(func(item *BlockItem) error {
		applied = append(applied, item.SequenceNumber())
		return nil
	}, 0)
	ctx := context.Background()
	good := decodedItem(t, testBlock(1), 0)
	bad := NewBlockItem(invalidBlock(), 1)
	_ = NewDecodeStage().Process(ctx, bad)
	scriptFailed := decodedItem(t, testBlock(2), 2)
	scriptFailed.SetScripts(1, errors.New("bad script"), 0)

	released, err := stage.ProcessWithStatus(ctx, scriptFailed)
	require.NoError(t, err)
	assert.Empty(t, released)
	released, err = stage.ProcessWithStatus(ctx, bad)
	require.NoError(t, err)
	assert.Empty(t, released)
	released, err = stage.ProcessWithStatus(ctx, good)
	require.NoError(t, err)
	assert.Len(t, released, 3)
	assert.Equal(t, []uint64{0}, applied)
	assert.False(t, bad.IsApplied())
	assert.False(t, scriptFailed.IsApplied())
}

func TestApplyStage_ApplyError(t *testing.T) {
	applyErr := errors.New("state rejected block")
	stage := NewApplyStage(func(item *BlockItem) error {
		return applyErr
	}, 0)
	item := decodedItem(t, testBlock(1), 0)
	require.NoError(t, stage.Process(context.Background(), item))
	assert.False(t, item.IsApplied())
	assert.Equal(t, applyErr, item.ApplyError())
}

func TestApplyStage_PendingLimit(t *testing.T) {
	stage := NewApplyStage(nil, 2)
	ctx := context.Background()
	data := testBlock(1)
	for i := 1; i <= 2; i++ {
		_, err := stage.ProcessWithStatus(ctx, decodedItem(t, data, uint64(i)))
		require.NoError(t, err)
	}
	_, err := stage.ProcessWithStatus(ctx, decodedItem(t, data, 3))
	assert.ErrorIs(t, err, ErrPendingLimitExceeded)
	// The item is kept, so the sequence still completes
	released, err := stage.ProcessWithStatus(ctx, decodedItem(t, data, 0))
	require.NoError(t, err)
	assert.Len(t, released, 4)
}

func TestApplyStage_ContextCancellation(t *testing.T) {
	stage := NewApplyStage(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := stage.ProcessWithStatus(ctx, decodedItem(t, testBlock(1), 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyStageRunner_OutOfOrderItemsForwarded(t *testing.T) {
	defer goleak.VerifyNone(t)
	var mu sync.Mutex
	var applied []uint64
	stage := NewApplyStage(func(item *BlockItem) error {
		mu.Lock()
		defer mu.Unlock()
		applied = append(applied, item.SequenceNumber())
		return nil
	}, 0)
	input := make(chan *BlockItem, 5)
	output := make(chan *BlockItem, 5)
	errs := make(chan error, 5)
	runner := NewApplyStageRunner(stage, input, output, errs)
	metrics := NewPipelineMetrics()
	runner.SetMetrics(metrics)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runner.Start(ctx)

	data := testBlock(1)
	for _, seq := range []uint64{2, 4, 1, 3, 0} {
		input <- decodedItem(t, data, seq)
	}
	close(input)
	var received []uint64
	for range 5 {
		select {
		case item := <-output:
			received = append(received, item.SequenceNumber())
		case <-ctx.Done():
			t.Fatal("timed out waiting for output")
		}
	}
	runner.Stop()
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, received)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, applied)
	assert.Equal(t, uint64(5), metrics.Stats().BlocksApplied)
	assert.Empty(t, errs)
}

// ============================================================================
// Worker pool
// ============================================================================

func TestStageWorkerPool_NilStage(t *testing.T) {
	assert.PanicsWithValue(t, ErrNilStage, func() {
		NewStageWorkerPool(StageWorkerPoolConfig{})
	})
}

func TestStageWorkerPool_ForwardsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)
	input := make(chan *BlockItem, 4)
	output := make(chan *BlockItem, 4)
	errs := make(chan error, 4)
	metrics := NewPipelineMetrics()
	pool := NewStageWorkerPool(StageWorkerPoolConfig{
		Stage:         NewDecodeStage(),
		NumWorkers:    0,
		Input:         input,
		Output:        output,
		Errors:        errs,
		RecordMetrics: DecodeMetricsRecorder(metrics),
	})
	assert.Equal(t, 1, pool.numWorkers)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Start(ctx)
	pool.Start(ctx)
	input <- NewBlockItem(testBlock(1), 0)
	input <- NewBlockItem(invalidBlock(), 1)
	close(input)
	pool.Stop()
	close(output)
	close(errs)

	var items []*BlockItem
	for item := range output {
		items = append(items, item)
	}
	assert.Len(t, items, 2)
	var errList []error
	for err := range errs {
		errList = append(errList, err)
	}
	require.Len(t, errList, 1)
	stats := metrics.Stats()
	assert.Equal(t, uint64(1), stats.BlocksDecoded)
	assert.Equal(t, uint64(1), stats.DecodeErrors)
}

// ============================================================================
// BlockPipeline
// ============================================================================

func TestBlockPipeline_NotStarted(t *testing.T) {
	p := NewBlockPipeline()
	err := p.Submit(context.Background(), testBlock(1))
	assert.ErrorIs(t, err, ErrPipelineNotStarted)
	_, ok := <-p.Results()
	assert.False(t, ok)
	for range 2 {
		assert.ErrorIs(t, <-p.Errors(), ErrPipelineNotStarted)
	}
	assert.ErrorIs(t, p.WaitForDrain(context.Background()), ErrPipelineNotStarted)
	assert.Equal(t, 0, p.PendingCount())
	assert.NoError(t, p.Stop())
}

func TestBlockPipeline_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	p := NewBlockPipeline(WithScriptWorkers(1))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Start(ctx))
	require.NoError(t, p.Start(ctx))
	require.NoError(t, p.Submit(ctx, testBlock(1)))
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
	assert.ErrorIs(t, p.Submit(ctx, testBlock(2)), ErrPipelineStopped)
	assert.ErrorIs(t, p.Start(ctx), ErrPipelineStopped)
}

func TestBlockPipeline_OrderedApply(t *testing.T) {
	defer goleak.VerifyNone(t)
	var mu sync.Mutex
	var applied []uint64
	registry := prometheus.NewRegistry()
	p := NewBlockPipeline(
		WithDecodeWorkers(4),
		WithScriptWorkers(2),
		WithPrefetchBufferSize(4),
		WithPrometheusRegistry(registry),
		WithApplyFunc(func(item *BlockItem) error {
			mu.Lock()
			defer mu.Unlock()
			applied = append(applied, item.BlockNumber())
			return nil
		}),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, p.Start(ctx))

	blocks := [][]byte{
		testBlock(10, testFlatProgram),
		testBlock(11),
		invalidBlock(),
		testBlock(13, testFlatProgram, mustFlat(t, "(program 1.0.0 (con integer 2))")),
		testBlock(14, []byte{0xff}),
		testBlock(15),
	}
	go func() {
		for _, data := range blocks {
			if err := p.Submit(ctx, data); err != nil {
				return
			}
		}
	}()
	var seqs []uint64
	for range blocks {
		select {
		case item := <-p.Results():
			seqs = append(seqs, item.SequenceNumber())
		case <-ctx.Done():
			t.Fatal("timed out waiting for results")
		}
	}
	require.NoError(t, p.Stop())
	var errList []error
	for err := range p.Errors() {
		errList = append(errList, err)
	}

	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5}, seqs)
	assert.Equal(t, []uint64{10, 11, 13, 15}, applied)
	require.Len(t, errList, 2)
	var scriptErr *ScriptError
	assert.True(t, errors.As(errList[0], &scriptErr) || errors.As(errList[1], &scriptErr))

	stats := p.Stats()
	assert.Equal(t, uint64(6), stats.BlocksSubmitted)
	assert.Equal(t, uint64(5), stats.BlocksDecoded)
	assert.Equal(t, uint64(1), stats.DecodeErrors)
	assert.Equal(t, uint64(4), stats.BlocksChecked)
	assert.Equal(t, uint64(1), stats.ScriptErrors)
	assert.Equal(t, uint64(4), stats.ScriptsDecoded)
	assert.Equal(t, uint64(4), stats.BlocksApplied)

	families, err := registry.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "pipeline_blocks_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"submit": 6, "decode": 5, "scripts": 4, "apply": 4}, counts)
}

func TestBlockPipeline_ApplyErrors(t *testing.T) {
	defer goleak.VerifyNone(t)
	applyErr := errors.New("rejected")
	p := NewBlockPipeline(
		WithDecodeWorkers(2),
		WithApplyFunc(func(item *BlockItem) error {
			if item.BlockNumber() == 2 {
				return applyErr
			}
			return nil
		}),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, p.Start(ctx))
	for i := range 3 {
		require.NoError(t, p.Submit(ctx, testBlock(uint64(i+1))))
	}
	for range 3 {
		select {
		case <-p.Results():
		case <-ctx.Done():
			t.Fatal("timed out waiting for results")
		}
	}
	require.NoError(t, p.WaitForDrain(ctx))
	require.NoError(t, p.Stop())
	errList := p.DrainErrors()
	require.Len(t, errList, 1)
	assert.ErrorIs(t, errList[0], applyErr)
	var stageErr *StageError
	require.ErrorAs(t, errList[0], &stageErr)
	assert.Equal(t, "apply", stageErr.Stage)
	assert.Equal(t, uint64(1), stageErr.Sequence)
	assert.Equal(t, uint64(1), p.Stats().ApplyErrors)
	assert.Equal(t, uint64(2), p.Stats().BlocksApplied)
}

func TestBlockPipeline_SubmitStopRace(t *testing.T) {
	defer goleak.VerifyNone(t)
	p := NewBlockPipeline(WithPrefetchBufferSize(1))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, p.Start(ctx))
	data := testBlock(1)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				err := p.Submit(ctx, data)
				if err != nil {
					assert.ErrorIs(t, err, ErrPipelineStopped)
					return
				}
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Stop())
	wg.Wait()
}

// ============================================================================
// Config
// ============================================================================

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TESTPIPE_DECODE_WORKERS", "3")
	t.Setenv("TESTPIPE_SCRIPT_WORKERS", "2")
	t.Setenv("TESTPIPE_MAX_PENDING_BLOCKS", "10")
	cfg, err := ConfigFromEnv("testpipe")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DecodeWorkers)
	assert.Equal(t, 2, cfg.ScriptWorkers)
	assert.Equal(t, 10, cfg.MaxPendingBlocks)
	assert.Equal(t, 1000, cfg.PrefetchBufferSize)
	assert.NotNil(t, cfg.Logger)

	p := NewBlockPipeline(WithConfig(cfg), WithDecodeWorkers(5))
	assert.Equal(t, 5, p.config.DecodeWorkers)
	assert.Equal(t, 2, p.config.ScriptWorkers)
}

func TestConfigFromEnvErrors(t *testing.T) {
	t.Setenv("BADPIPE_DECODE_WORKERS", "many")
	_, err := ConfigFromEnv("badpipe")
	assert.Error(t, err)

	t.Setenv("BADPIPE_DECODE_WORKERS", "1")
	t.Setenv("BADPIPE_SCRIPT_WORKERS", "-1")
	_, err = ConfigFromEnv("badpipe")
	assert.Error(t, err)
}

func TestPipelineOptions(t *testing.T) {
	cfg := DefaultPipelineConfig()
	for _, opt := range []PipelineOption{
		WithDecodeWorkers(0),
		WithScriptWorkers(-1),
		WithPrefetchBufferSize(0),
		WithMaxPendingBlocks(0),
		WithApplyFunc(nil),
		WithLogger(nil),
	} {
		opt(&cfg)
	}
	assert.Equal(t, DefaultPipelineConfig().DecodeWorkers, cfg.DecodeWorkers)
	assert.Equal(t, 0, cfg.ScriptWorkers)
	assert.Equal(t, 1000, cfg.PrefetchBufferSize)
	assert.Equal(t, DefaultMaxPendingBlocks, cfg.MaxPendingBlocks)
	assert.Nil(t, cfg.ApplyFunc)
	assert.NotNil(t, cfg.Logger)
}

var _ Pipeline = (*BlockPipeline)(nil)
