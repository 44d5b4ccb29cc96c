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

// Package pipeline runs era-tagged blocks through concurrent decode and script check
// stages and hands them to an apply function in submission order.
package pipeline

import (
	"context"
	"fmt"
	"time"
)

// Stage is one processing step of the pipeline
type Stage interface {
	// Name identifies the stage in errors, logs and metrics
	Name() string
	// Process handles a single item, recording its outcome on the item
	Process(ctx context.Context, item *BlockItem) error
}

// StageFunc adapts a function to the Stage interface
type StageFunc struct {
	name string
	fn   func(ctx context.Context, item *BlockItem) error
}

func NewStageFunc(name string, fn func(ctx context.Context, item *BlockItem) error) *StageFunc {
	return &StageFunc{
		name: name,
		fn:   fn,
	}
}

func (s *StageFunc) Name() string {
	return s.name
}

func (s *StageFunc) Process(ctx context.Context, item *BlockItem) error {
	return s.fn(ctx, item)
}

// StageError is a failure of one stage for one submitted block
type StageError struct {
	Stage    string
	Sequence uint64
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed for block %d: %v", e.Stage, e.Sequence, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline is implemented by BlockPipeline
type Pipeline interface {
	Start(ctx context.Context) error
	// Submit queues era-tagged block bytes. It blocks while the pipeline is full
	Submit(ctx context.Context, rawCbor []byte) error
	Results() <-chan *BlockItem
	Errors() <-chan error
	Stop() error
	WaitForDrain(ctx context.Context) error
	Stats() PipelineStats
}

// PipelineStats is a snapshot of the pipeline counters
type PipelineStats struct {
	BlocksSubmitted uint64
	BlocksDecoded   uint64
	// BlocksChecked counts blocks that passed the script stage
	BlocksChecked uint64
	BlocksApplied uint64
	// ScriptsDecoded counts Plutus scripts seen by the script stage
	ScriptsDecoded uint64
	DecodeErrors   uint64
	ScriptErrors   uint64
	ApplyErrors    uint64

	CurrentQueueDepth int
	PeakQueueDepth    int

	LastBlockTime time.Time
	StartTime     time.Time
}
