// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStageDuration_ObservesIntoHistogram(t *testing.T) {
	RecordStageDuration("cache", 0.05)
	pipelineMetrics.init()
	count := testutil.CollectAndCount(pipelineMetrics.stageDuration)
	assert.Greater(t, count, 0)
}

func TestRecordCacheCounters_Increment(t *testing.T) {
	before := testutil.ToFloat64(pipelineMetrics.cacheFastPathHits)
	RecordCacheFastPathHit()
	after := testutil.ToFloat64(pipelineMetrics.cacheFastPathHits)
	assert.Equal(t, before+1, after)
}

func TestRecordFQNCollision_AddsN(t *testing.T) {
	before := testutil.ToFloat64(pipelineMetrics.fqnCollisions)
	RecordFQNCollision(3)
	after := testutil.ToFloat64(pipelineMetrics.fqnCollisions)
	assert.Equal(t, before+3, after)
}
