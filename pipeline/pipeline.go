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
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrPipelineStopped is returned when submitting to a stopped pipeline
	ErrPipelineStopped = errors.New("pipeline is stopped")
	// ErrPipelineNotStarted is returned when using a pipeline before Start
	ErrPipelineNotStarted = errors.New("pipeline not started")
)

// BlockPipeline decodes submitted blocks on a worker pool, optionally checks their
// Plutus scripts on a second pool, and applies them in submission order
type BlockPipeline struct {
	config  PipelineConfig
	logger  *slog.Logger
	metrics *PipelineMetrics

	applyStage  *ApplyStage
	decodePool  *StageWorkerPool
	scriptPool  *StageWorkerPool
	applyRunner *ApplyStageRunner

	submitChan  chan *BlockItem
	decodedChan chan *BlockItem
	checkedChan chan *BlockItem
	resultsChan chan *BlockItem
	errorsChan  chan error

	sequenceCounter atomic.Uint64
	ctx             context.Context
	cancel          context.CancelFunc
	started         atomic.Bool
	stopped         atomic.Bool
	wg              sync.WaitGroup
	// mu serializes Start and Stop
	mu sync.Mutex
	// submitMu keeps Stop from closing the submit channel under a Submit
	submitMu sync.RWMutex
}

// NewBlockPipeline creates a pipeline from the default config and the given options
func NewBlockPipeline(opts ...PipelineOption) *BlockPipeline {
	config := DefaultPipelineConfig()
	for _, opt := range opts {
		opt(&config)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		config.Logger = logger
	}
	return &BlockPipeline{
		config:  config,
		logger:  logger.With("component", "pipeline"),
		metrics: NewPipelineMetrics(),
	}
}

// Metrics returns the metrics collector of the pipeline
func (p *BlockPipeline) Metrics() *PipelineMetrics {
	return p.metrics
}

// Start launches the stages. Calling Start on a running pipeline does nothing
func (p *BlockPipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped.Load() {
		return ErrPipelineStopped
	}
	if p.started.Load() {
		return nil
	}
	p.metrics.Register(p.config.Registerer)
	p.ctx, p.cancel = context.WithCancel(ctx)

	bufSize := max(1, p.config.PrefetchBufferSize)
	p.submitChan = make(chan *BlockItem, bufSize)
	p.decodedChan = make(chan *BlockItem, bufSize)
	p.resultsChan = make(chan *BlockItem, bufSize)
	p.errorsChan = make(chan error, bufSize)

	p.decodePool = NewStageWorkerPool(StageWorkerPoolConfig{
		Stage:         NewDecodeStage(),
		NumWorkers:    p.config.DecodeWorkers,
		Input:         p.submitChan,
		Output:        p.decodedChan,
		Errors:        p.errorsChan,
		RecordMetrics: DecodeMetricsRecorder(p.metrics),
		Logger:        p.config.Logger,
	})
	applyInput := p.decodedChan
	if p.config.ScriptWorkers > 0 {
		p.checkedChan = make(chan *BlockItem, bufSize)
		p.scriptPool = NewStageWorkerPool(StageWorkerPoolConfig{
			Stage:         NewScriptStage(),
			NumWorkers:    p.config.ScriptWorkers,
			Input:         p.decodedChan,
			Output:        p.checkedChan,
			Errors:        p.errorsChan,
			RecordMetrics: ScriptMetricsRecorder(p.metrics),
			ShouldRecord:  RecordIfDecoded,
			Logger:        p.config.Logger,
		})
		applyInput = p.checkedChan
	}
	p.applyStage = NewApplyStage(p.config.ApplyFunc, p.config.MaxPendingBlocks)
	p.applyRunner = NewApplyStageRunner(p.applyStage, applyInput, p.resultsChan, p.errorsChan)
	p.applyRunner.SetMetrics(p.metrics)

	p.decodePool.Start(p.ctx) //nolint:contextcheck
	if p.scriptPool != nil {
		p.scriptPool.Start(p.ctx) //nolint:contextcheck
	}
	p.applyRunner.Start(p.ctx) //nolint:contextcheck

	p.wg.Add(1)
	go p.metricsCollector()

	p.started.Store(true)
	p.logger.Debug(
		"pipeline started",
		"decode_workers", p.decodePool.numWorkers,
		"script_workers", p.config.ScriptWorkers,
	)
	return nil
}

// Submit queues era-tagged block bytes, blocking while the pipeline is full. It is
// safe to call concurrently with Stop
func (p *BlockPipeline) Submit(ctx context.Context, rawCbor []byte) error {
	if !p.started.Load() {
		return ErrPipelineNotStarted
	}
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()
	if p.stopped.Load() {
		return ErrPipelineStopped
	}
	// A sequence number is only skipped when the send is abandoned, which means the
	// pipeline is shutting down
	item := NewBlockItem(rawCbor, p.sequenceCounter.Add(1)-1)
	select {
	case p.submitChan <- item:
		p.metrics.RecordSubmit()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPipelineStopped
	}
}

// Results returns the channel of items released by the apply stage, in sequence
// order. Before Start it returns a closed channel
func (p *BlockPipeline) Results() <-chan *BlockItem {
	if !p.started.Load() {
		ch := make(chan *BlockItem)
		close(ch)
		return ch
	}
	return p.resultsChan
}

// Errors returns the channel of stage errors. Before Start it returns a channel
// yielding ErrPipelineNotStarted once
func (p *BlockPipeline) Errors() <-chan error {
	if !p.started.Load() {
		ch := make(chan error, 1)
		ch <- ErrPipelineNotStarted
		close(ch)
		return ch
	}
	return p.errorsChan
}

// Stop cancels the pipeline, waits for every stage to exit and closes the output
// channels
func (p *BlockPipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started.Load() || p.stopped.Load() {
		return nil
	}
	// Cancel first so that a Submit blocked on a full channel releases its read lock
	p.cancel()
	p.submitMu.Lock()
	p.stopped.Store(true)
	close(p.submitChan)
	p.submitMu.Unlock()

	p.decodePool.Stop()
	close(p.decodedChan)
	if p.scriptPool != nil {
		p.scriptPool.Stop()
		close(p.checkedChan)
	}
	p.applyRunner.Stop()
	close(p.resultsChan)
	close(p.errorsChan)
	p.wg.Wait()
	p.logger.Debug("pipeline stopped", "submitted", p.metrics.Stats().BlocksSubmitted)
	return nil
}

func (p *BlockPipeline) Stats() PipelineStats {
	return p.metrics.Stats()
}

// PendingCount returns the approximate number of items between stages or held by the
// apply stage
func (p *BlockPipeline) PendingCount() int {
	if !p.started.Load() {
		return 0
	}
	return p.queueDepth() + p.applyStage.PendingCount()
}

func (p *BlockPipeline) queueDepth() int {
	return len(p.submitChan) + len(p.decodedChan) + len(p.checkedChan)
}

// WaitForDrain blocks until no submitted item is waiting between stages
func (p *BlockPipeline) WaitForDrain(ctx context.Context) error {
	if !p.started.Load() {
		return ErrPipelineNotStarted
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.PendingCount() == 0 {
				return nil
			}
		}
	}
}

func (p *BlockPipeline) metricsCollector() {
	defer p.wg.Done()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.metrics.UpdateQueueDepth(p.queueDepth())
		}
	}
}

// DrainResults returns the results available without blocking
func (p *BlockPipeline) DrainResults() []*BlockItem {
	var ret []*BlockItem
	for {
		select {
		case item, ok := <-p.resultsChan:
			if !ok {
				return ret
			}
			ret = append(ret, item)
		default:
			return ret
		}
	}
}

// DrainErrors returns the errors available without blocking
func (p *BlockPipeline) DrainErrors() []error {
	var ret []error
	for {
		select {
		case err, ok := <-p.errorsChan:
			if !ok {
				return ret
			}
			ret = append(ret, err)
		default:
			return ret
		}
	}
}
