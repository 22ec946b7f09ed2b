// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Field kinds used as label values of per-update metrics.
const (
	fieldClassHash = "class_hash"
	fieldNonce     = "nonce"
	fieldStorage   = "storage"
)

// Outcomes of a single fetch attempt.
const (
	outcomeSuccess     = "success"
	outcomeRateLimited = "rate_limited"
	outcomeStatus      = "bad_status"
	outcomeTransport   = "transport_error"
	outcomeDecode      = "decode_error"
)

// Metrics collects the ingestion metrics.
type Metrics struct {
	fetchAttempts   *prometheus.CounterVec
	appliedBlocks   prometheus.Counter
	appliedUpdates  *prometheus.CounterVec
	failedUpdates   *prometheus.CounterVec
	declaredClasses prometheus.Counter
	windowDuration  prometheus.Histogram
}

// NewMetrics creates the ingestion metrics and registers them with the given
// registerer. If it is nil, the metrics are not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "archive_fetch_attempts_total", Help: "State update fetch attempts by outcome"},
			[]string{"outcome"},
		),
		appliedBlocks: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "archive_applied_blocks_total", Help: "Blocks whose state updates have been applied"},
		),
		appliedUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "archive_applied_updates_total", Help: "Field updates written to the database"},
			[]string{"field"},
		),
		failedUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "archive_failed_updates_total", Help: "Field updates that could not be written"},
			[]string{"field"},
		),
		declaredClasses: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "archive_declared_classes_total", Help: "Declared classes seen in state updates"},
		),
		windowDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "archive_window_duration_seconds", Help: "Time to fetch and apply a window of blocks", Buckets: prometheus.DefBuckets},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.fetchAttempts,
			m.appliedBlocks,
			m.appliedUpdates,
			m.failedUpdates,
			m.declaredClasses,
			m.windowDuration,
		)
	}
	return m
}
