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
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics counts pipeline activity. Counters are kept as atomics and, once
// Register is called, mirrored to Prometheus
type PipelineMetrics struct {
	blocksSubmitted atomic.Uint64
	blocksDecoded   atomic.Uint64
	blocksChecked   atomic.Uint64
	blocksApplied   atomic.Uint64
	scriptsDecoded  atomic.Uint64
	decodeErrors    atomic.Uint64
	scriptErrors    atomic.Uint64
	applyErrors     atomic.Uint64

	mu                sync.RWMutex
	currentQueueDepth int
	peakQueueDepth    int
	lastBlockTime     time.Time
	startTime         time.Time

	// nil until Register is called
	blocksCounter   *prometheus.CounterVec
	errorsCounter   *prometheus.CounterVec
	scriptsCounter  prometheus.Counter
	stageDurations  *prometheus.HistogramVec
	queueDepthGauge prometheus.Gauge
	registerOnce    sync.Once
}

func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		startTime: time.Now(),
	}
}

// Register registers the Prometheus metrics with the given registry. A nil registry is
// ignored, and only the first call has an effect. It must be called before the
// pipeline starts
func (m *PipelineMetrics) Register(registry prometheus.Registerer) {
	if registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)
		m.blocksCounter = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_blocks_total",
			Help: "Total number of blocks completing each pipeline stage",
		}, []string{"stage"})
		m.errorsCounter = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Total number of blocks failing each pipeline stage",
		}, []string{"stage"})
		m.scriptsCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_scripts_decoded_total",
			Help: "Total number of Plutus scripts decoded by the script stage",
		})
		m.stageDurations = factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Time spent processing a block in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"stage"})
		m.queueDepthGauge = factory.NewGauge(prometheus.GaugeOpts{
			Name: "pipeline_queue_depth",
			Help: "Number of blocks waiting between pipeline stages",
		})
	})
}

func (m *PipelineMetrics) observe(stage string, duration time.Duration, err error) {
	if m.blocksCounter == nil {
		return
	}
	if err != nil {
		m.errorsCounter.WithLabelValues(stage).Inc()
	} else {
		m.blocksCounter.WithLabelValues(stage).Inc()
	}
	m.stageDurations.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordSubmit() {
	m.blocksSubmitted.Add(1)
	if m.blocksCounter != nil {
		m.blocksCounter.WithLabelValues("submit").Inc()
	}
}

func (m *PipelineMetrics) RecordDecode(duration time.Duration, err error) {
	if err != nil {
		m.decodeErrors.Add(1)
	} else {
		m.blocksDecoded.Add(1)
	}
	m.observe("decode", duration, err)
}

// RecordScripts records the script check of one block holding count scripts
func (m *PipelineMetrics) RecordScripts(count int, duration time.Duration, err error) {
	if err != nil {
		m.scriptErrors.Add(1)
	} else {
		m.blocksChecked.Add(1)
	}
	m.scriptsDecoded.Add(uint64(count)) // #nosec G115
	if m.scriptsCounter != nil {
		m.scriptsCounter.Add(float64(count))
	}
	m.observe("scripts", duration, err)
}

func (m *PipelineMetrics) RecordApply(duration time.Duration, err error) {
	if err != nil {
		m.applyErrors.Add(1)
	} else {
		m.blocksApplied.Add(1)
		m.mu.Lock()
		m.lastBlockTime = time.Now()
		m.mu.Unlock()
	}
	m.observe("apply", duration, err)
}

// UpdateQueueDepth records the number of blocks waiting between stages
func (m *PipelineMetrics) UpdateQueueDepth(depth int) {
	m.mu.Lock()
	m.currentQueueDepth = depth
	m.peakQueueDepth = max(m.peakQueueDepth, depth)
	m.mu.Unlock()
	if m.queueDepthGauge != nil {
		m.queueDepthGauge.Set(float64(depth))
	}
}

// Stats returns a snapshot of the counters
func (m *PipelineMetrics) Stats() PipelineStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return PipelineStats{
		BlocksSubmitted:   m.blocksSubmitted.Load(),
		BlocksDecoded:     m.blocksDecoded.Load(),
		BlocksChecked:     m.blocksChecked.Load(),
		BlocksApplied:     m.blocksApplied.Load(),
		ScriptsDecoded:    m.scriptsDecoded.Load(),
		DecodeErrors:      m.decodeErrors.Load(),
		ScriptErrors:      m.scriptErrors.Load(),
		ApplyErrors:       m.applyErrors.Load(),
		CurrentQueueDepth: m.currentQueueDepth,
		PeakQueueDepth:    m.peakQueueDepth,
		LastBlockTime:     m.lastBlockTime,
		StartTime:         m.startTime,
	}
}

// Reset zeroes the counters. Prometheus counters are left untouched
func (m *PipelineMetrics) Reset() {
	m.blocksSubmitted.Store(0)
	m.blocksDecoded.Store(0)
	m.blocksChecked.Store(0)
	m.blocksApplied.Store(0)
	m.scriptsDecoded.Store(0)
	m.decodeErrors.Store(0)
	m.scriptErrors.Store(0)
	m.applyErrors.Store(0)
	m.mu.Lock()
	m.currentQueueDepth = 0
	m.peakQueueDepth = 0
	m.lastBlockTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
