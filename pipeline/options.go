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
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxPendingBlocks is the default limit for out-of-order blocks held by the
// apply stage. It matches the security parameter k of mainnet
const DefaultMaxPendingBlocks = 2160

// PipelineConfig holds configuration for a BlockPipeline. The worker and buffer
// settings may also be read from the environment with ConfigFromEnv
type PipelineConfig struct {
	// DecodeWorkers is the number of parallel decode workers
	DecodeWorkers int `envconfig:"DECODE_WORKERS"`
	// ScriptWorkers is the number of parallel script check workers. Zero disables
	// the script stage
	ScriptWorkers int `envconfig:"SCRIPT_WORKERS"`
	// PrefetchBufferSize is the buffer size of the channels between stages
	PrefetchBufferSize int `envconfig:"PREFETCH_BUFFER_SIZE"`
	// MaxPendingBlocks limits the out-of-order blocks held by the apply stage
	MaxPendingBlocks int `envconfig:"MAX_PENDING_BLOCKS"`
	// ApplyFunc is called for every block in submission order
	ApplyFunc ApplyFunc `ignored:"true"`
	// Logger receives stage failures. Defaults to a discarding logger
	Logger *slog.Logger `ignored:"true"`
	// Registerer, when set, receives the pipeline counters on Start
	Registerer prometheus.Registerer `ignored:"true"`
}

// DefaultPipelineConfig returns a PipelineConfig with the script stage disabled and
// decode workers scaled to the CPU count
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DecodeWorkers:      max(2, runtime.NumCPU()/4),
		PrefetchBufferSize: 1000,
		MaxPendingBlocks:   DefaultMaxPendingBlocks,
		Logger:             slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// ConfigFromEnv returns the default config overridden by environment variables using
// the given prefix, such as PIPELINE_DECODE_WORKERS for the prefix "pipeline"
func ConfigFromEnv(prefix string) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return PipelineConfig{}, fmt.Errorf("error processing environment: %w", err)
	}
	if cfg.DecodeWorkers <= 0 {
		return PipelineConfig{}, fmt.Errorf("invalid decode worker count: %d", cfg.DecodeWorkers)
	}
	if cfg.ScriptWorkers < 0 {
		return PipelineConfig{}, fmt.Errorf("invalid script worker count: %d", cfg.ScriptWorkers)
	}
	if cfg.PrefetchBufferSize <= 0 {
		cfg.PrefetchBufferSize = 1
	}
	return cfg, nil
}

// PipelineOption is a functional option for configuring a BlockPipeline
type PipelineOption func(*PipelineConfig)

// WithConfig replaces the whole config. Options applied after it still take effect
func WithConfig(config PipelineConfig) PipelineOption {
	return func(c *PipelineConfig) {
		*c = config
	}
}

// WithDecodeWorkers sets the number of decode workers
func WithDecodeWorkers(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n > 0 {
			c.DecodeWorkers = n
		}
	}
}

// WithScriptWorkers sets the number of script check workers. Use 0 to skip the stage
func WithScriptWorkers(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n >= 0 {
			c.ScriptWorkers = n
		}
	}
}

// WithPrefetchBufferSize sets the buffer size of the channels between stages
func WithPrefetchBufferSize(size int) PipelineOption {
	return func(c *PipelineConfig) {
		if size > 0 {
			c.PrefetchBufferSize = size
		}
	}
}

// WithMaxPendingBlocks sets the limit of out-of-order blocks held by the apply stage
func WithMaxPendingBlocks(n int) PipelineOption {
	return func(c *PipelineConfig) {
		if n > 0 {
			c.MaxPendingBlocks = n
		}
	}
}

// WithApplyFunc sets the apply function. A nil function is ignored
func WithApplyFunc(fn ApplyFunc) PipelineOption {
	return func(c *PipelineConfig) {
		if fn != nil {
			c.ApplyFunc = fn
		}
	}
}

// WithLogger specifies the logger object to use for stage failures
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(c *PipelineConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithPrometheusRegistry registers the pipeline counters with the given registry
func WithPrometheusRegistry(registry prometheus.Registerer) PipelineOption {
	return func(c *PipelineConfig) {
		c.Registerer = registry
	}
}
