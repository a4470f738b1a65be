// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus instrumentation for the pipeline
// (C7-C11): per-stage duration histograms and the cache/resolver
// counters spec §9's observability section names.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsPipeline struct {
	once sync.Once

	stageDuration *prometheus.HistogramVec

	cacheFastPathHits prometheus.Counter
	cacheSlowPathHits prometheus.Counter
	cacheMisses       prometheus.Counter

	fqnCollisions prometheus.Counter
	cyclesBroken  prometheus.Counter

	structuralWalkErrors prometheus.Counter
	filesHashed          prometheus.Counter
}

var pipelineMetrics metricsPipeline

func (m *metricsPipeline) init() {
	m.once.Do(func() {
		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "irengine_stage_duration_seconds",
			Help:    "Duration of a single pipeline stage run",
			Buckets: buckets,
		}, []string{"stage"})

		m.cacheFastPathHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "irengine_cache_fast_path_hits_total", Help: "Cache hits resolved by mtime+size alone"})
		m.cacheSlowPathHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "irengine_cache_slow_path_hits_total", Help: "Cache hits resolved by content hash"})
		m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "irengine_cache_misses_total", Help: "Files requiring a fresh walk"})

		m.fqnCollisions = prometheus.NewCounter(prometheus.CounterOpts{Name: "irengine_resolver_fqn_collisions_total", Help: "FQN collisions resolved by first-file-wins"})
		m.cyclesBroken = prometheus.NewCounter(prometheus.CounterOpts{Name: "irengine_resolver_cycles_broken_total", Help: "Import cycles broken during topological ordering"})

		m.structuralWalkErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "irengine_structural_walk_errors_total", Help: "Per-file parse/walker faults, dropped from output"})
		m.filesHashed = prometheus.NewCounter(prometheus.CounterOpts{Name: "irengine_provenance_files_hashed_total", Help: "Files processed by the provenance stage"})

		prometheus.MustRegister(
			m.stageDuration,
			m.cacheFastPathHits, m.cacheSlowPathHits, m.cacheMisses,
			m.fqnCollisions, m.cyclesBroken,
			m.structuralWalkErrors, m.filesHashed,
		)
	})
}

// RecordStageDuration observes how long a stage took to run.
func RecordStageDuration(stage string, seconds float64) {
	pipelineMetrics.init()
	pipelineMetrics.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordCacheFastPathHit increments the fast-path (mtime+size) cache hit counter.
func RecordCacheFastPathHit() {
	pipelineMetrics.init()
	pipelineMetrics.cacheFastPathHits.Inc()
}

// RecordCacheSlowPathHit increments the slow-path (content hash) cache hit counter.
func RecordCacheSlowPathHit() {
	pipelineMetrics.init()
	pipelineMetrics.cacheSlowPathHits.Inc()
}

// RecordCacheMiss increments the cache miss counter by n.
func RecordCacheMiss(n int) {
	pipelineMetrics.init()
	pipelineMetrics.cacheMisses.Add(float64(n))
}

// RecordFQNCollision increments the resolver's FQN collision counter by n.
func RecordFQNCollision(n int) {
	pipelineMetrics.init()
	pipelineMetrics.fqnCollisions.Add(float64(n))
}

// RecordCyclesBroken increments the resolver's broken-cycle counter by n.
func RecordCyclesBroken(n int) {
	pipelineMetrics.init()
	pipelineMetrics.cyclesBroken.Add(float64(n))
}

// RecordStructuralWalkErrors increments the structural stage's per-file fault counter by n.
func RecordStructuralWalkErrors(n int) {
	pipelineMetrics.init()
	pipelineMetrics.structuralWalkErrors.Add(float64(n))
}

// RecordFilesHashed increments the provenance stage's processed-file counter by n.
func RecordFilesHashed(n int) {
	pipelineMetrics.init()
	pipelineMetrics.filesHashed.Add(float64(n))
}
