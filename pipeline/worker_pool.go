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
)

// MetricsRecorder records the outcome of a stage for an item
type MetricsRecorder func(item *BlockItem, err error)

// ShouldRecordMetrics filters the items a MetricsRecorder sees
type ShouldRecordMetrics func(item *BlockItem) bool

// StageWorkerPool runs a stage on several goroutines. Items are forwarded to the
// output whether or not the stage failed, so that the apply stage sees every sequence
// number
type StageWorkerPool struct {
	stage         Stage
	numWorkers    int
	input         <-chan *BlockItem
	output        chan<- *BlockItem
	errors        chan<- error
	recordMetrics MetricsRecorder
	shouldRecord  ShouldRecordMetrics
	logger        *slog.Logger
	wg            sync.WaitGroup
	started       atomic.Bool
}

// StageWorkerPoolConfig holds the settings of a StageWorkerPool
type StageWorkerPoolConfig struct {
	// Stage is required
	Stage Stage
	// NumWorkers defaults to 1
	NumWorkers int
	Input      <-chan *BlockItem
	Output     chan<- *BlockItem
	// Errors may be nil, in which case stage errors are only logged
	Errors        chan<- error
	RecordMetrics MetricsRecorder
	// ShouldRecord defaults to recording every item
	ShouldRecord ShouldRecordMetrics
	Logger       *slog.Logger
}

// NewStageWorkerPool creates a worker pool. It panics if no stage is given
func NewStageWorkerPool(config StageWorkerPoolConfig) *StageWorkerPool {
	if config.Stage == nil {
		panic(ErrNilStage)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &StageWorkerPool{
		stage:         config.Stage,
		numWorkers:    max(1, config.NumWorkers),
		input:         config.Input,
		output:        config.Output,
		errors:        config.Errors,
		recordMetrics: config.RecordMetrics,
		shouldRecord:  config.ShouldRecord,
		logger:        logger.With("component", "pipeline", "stage", config.Stage.Name()),
	}
}

// Start launches the workers. Later calls have no effect
func (p *StageWorkerPool) Start(ctx context.Context) {
	if p.started.Swap(true) {
		return
	}
	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop waits for the workers to exit. Workers exit when the input channel is closed
// or the context passed to Start is done
func (p *StageWorkerPool) Stop() {
	p.wg.Wait()
}

func (p *StageWorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.input:
			if !ok {
				return
			}
			err := p.stage.Process(ctx, item)
			canceled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
			if p.recordMetrics != nil && !canceled && (p.shouldRecord == nil || p.shouldRecord(item)) {
				p.recordMetrics(item, err)
			}
			if err != nil && !canceled {
				p.logger.Warn(
					"stage failed",
					"sequence", item.SequenceNumber(),
					"error", err,
				)
				if p.errors != nil {
					select {
					case p.errors <- err:
					case <-ctx.Done():
						return
					}
				}
			}
			select {
			case p.output <- item:
			case <-ctx.Done():
				return
			}
		}
	}
}

// DecodeMetricsRecorder returns a MetricsRecorder for the decode stage
func DecodeMetricsRecorder(metrics *PipelineMetrics) MetricsRecorder {
	if metrics == nil {
		return nil
	}
	return func(item *BlockItem, err error) {
		metrics.RecordDecode(item.DecodeDuration(), err)
	}
}

// ScriptMetricsRecorder returns a MetricsRecorder for the script stage
func ScriptMetricsRecorder(metrics *PipelineMetrics) MetricsRecorder {
	if metrics == nil {
		return nil
	}
	return func(item *BlockItem, err error) {
		metrics.RecordScripts(item.ScriptCount(), item.ScriptDuration(), err)
	}
}

// RecordIfDecoded limits recording to items that were decoded
func RecordIfDecoded(item *BlockItem) bool {
	return item.IsDecoded()
}
