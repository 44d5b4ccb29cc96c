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
	"time"
)

// ErrPendingLimitExceeded is returned when the apply stage holds more out-of-order
// blocks than allowed. The block is still kept so that no sequence number is lost
var ErrPendingLimitExceeded = errors.New("pipeline: pending block limit exceeded")

// ApplyFunc applies a block to host state. It is called in sequence order
type ApplyFunc func(*BlockItem) error

// ApplyStage reorders items by sequence number and applies the ones whose earlier
// stages succeeded. Process must be called from a single goroutine, which
// ApplyStageRunner does
type ApplyStage struct {
	applyFunc  ApplyFunc
	maxPending int

	mu           sync.Mutex
	pending      map[uint64]*BlockItem
	nextSequence uint64
}

// NewApplyStage creates an apply stage holding at most maxPending out-of-order items.
// Zero means no limit
func NewApplyStage(applyFunc ApplyFunc, maxPending int) *ApplyStage {
	return &ApplyStage{
		applyFunc:  applyFunc,
		maxPending: maxPending,
		pending:    make(map[uint64]*BlockItem),
	}
}

func (s *ApplyStage) Name() string {
	return "apply"
}

func (s *ApplyStage) Process(ctx context.Context, item *BlockItem) error {
	_, err := s.ProcessWithStatus(ctx, item)
	return err
}

// ProcessWithStatus takes the next item from the previous stage. It returns the items
// released in order by this call: none if the item arrived early, otherwise the item
// followed by every held item that directly follows it
func (s *ApplyStage) ProcessWithStatus(ctx context.Context, item *BlockItem) ([]*BlockItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if item.SequenceNumber() != s.nextSequence {
		s.pending[item.SequenceNumber()] = item
		count := len(s.pending)
		s.mu.Unlock()
		if s.maxPending > 0 && count > s.maxPending {
			return nil, ErrPendingLimitExceeded
		}
		return nil, nil
	}
	s.mu.Unlock()
	var released []*BlockItem
	for next := item; next != nil; next = s.takeNext() {
		s.mu.Lock()
		s.nextSequence++
		s.mu.Unlock()
		if next.Applicable() {
			s.apply(next)
		}
		released = append(released, next)
	}
	return released, nil
}

// takeNext removes and returns the held item with the next sequence number
func (s *ApplyStage) takeNext() *BlockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.pending[s.nextSequence]
	if !ok {
		return nil
	}
	delete(s.pending, s.nextSequence)
	return item
}

func (s *ApplyStage) apply(item *BlockItem) {
	start := time.Now()
	var err error
	if s.applyFunc != nil {
		err = s.applyFunc(item)
	}
	item.SetApplied(err == nil, err, time.Since(start))
}

// Reset drops held items and restarts at sequence number 0
func (s *ApplyStage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[uint64]*BlockItem)
	s.nextSequence = 0
}

// PendingCount returns the number of held out-of-order items
func (s *ApplyStage) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ApplyStageRunner feeds an apply stage from a channel on a single goroutine and
// forwards released items to the output
type ApplyStageRunner struct {
	stage   *ApplyStage
	input   <-chan *BlockItem
	output  chan<- *BlockItem
	errors  chan<- error
	metrics *PipelineMetrics
	done    chan struct{}
	running bool
	mu      sync.Mutex
}

func NewApplyStageRunner(
	stage *ApplyStage,
	input <-chan *BlockItem,
	output chan<- *BlockItem,
	errors chan<- error,
) *ApplyStageRunner {
	return &ApplyStageRunner{
		stage:  stage,
		input:  input,
		output: output,
		errors: errors,
		done:   make(chan struct{}),
	}
}

// SetMetrics sets the metrics collector. It must be called before Start
func (r *ApplyStageRunner) SetMetrics(metrics *PipelineMetrics) {
	r.metrics = metrics
}

func (r *ApplyStageRunner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.done = make(chan struct{})
	go r.run(ctx, r.done)
}

// Stop waits for the runner to exit, which happens once the input channel is closed
// or the context passed to Start is done
func (r *ApplyStageRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	done := r.done
	r.mu.Unlock()
	<-done
}

func (r *ApplyStageRunner) run(ctx context.Context, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.running = false
		close(done)
		r.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-r.input:
			if !ok {
				return
			}
			released, err := r.stage.ProcessWithStatus(ctx, item)
			for _, next := range released {
				if !r.forward(ctx, next) {
					return
				}
			}
			if err != nil && !r.report(ctx, err) {
				return
			}
		}
	}
}

func (r *ApplyStageRunner) report(ctx context.Context, err error) bool {
	select {
	case r.errors <- err:
		return true
	case <-ctx.Done():
		return false
	}
}

// forward sends a released item to the output and reports its apply error
func (r *ApplyStageRunner) forward(ctx context.Context, item *BlockItem) bool {
	applyErr := item.ApplyError()
	if r.metrics != nil && item.Applicable() {
		r.metrics.RecordApply(item.ApplyDuration(), applyErr)
	}
	select {
	case r.output <- item:
	case <-ctx.Done():
		return false
	}
	if applyErr != nil {
		return r.report(ctx, &StageError{
			Stage:    r.stage.Name(),
			Sequence: item.SequenceNumber(),
			Err:      applyErr,
		})
	}
	return true
}
