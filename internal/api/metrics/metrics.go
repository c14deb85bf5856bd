// Package metrics defines and registers all custom Prometheus metrics for the
// bus run tracking service. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// ── Fix metrics ───────────────────────────────────────────────────────────────

// FixesProcessedTotal counts inbound position fixes by outcome.
// Label:
//   - result: "accepted", "invalid", or "rejected" (run missing / not active)
var FixesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixes_processed_total",
		Help:      "Total number of inbound GPS fixes, labelled by outcome.",
	},
	[]string{"result"},
)

// FixErrorsTotal counts fixes that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "persist_failed")
var FixErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fix_errors_total",
		Help:      "Total number of GPS fixes that failed processing.",
	},
	[]string{"reason"},
)

// FixProcessingDuration measures how long one fix takes from receipt to broadcast.
var FixProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fix_processing_duration_seconds",
		Help:      "Duration of fix processing from receipt to broadcast.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Broadcast metrics ─────────────────────────────────────────────────────────

// ObserversConnected tracks the current number of live observer connections
// across all runs.
var ObserversConnected = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "observers_connected",
		Help:      "Current number of live observer connections.",
	},
)

// BroadcastsTotal counts progress updates fanned out to observers.
var BroadcastsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_total",
		Help:      "Total number of progress updates broadcast.",
	},
)

// ── Recorder metrics ──────────────────────────────────────────────────────────

// TrackQueueDepth tracks the number of track points waiting in each recorder
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var TrackQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "track_queue_depth",
		Help:      "Current number of track points pending in each recorder worker channel.",
	},
	[]string{"worker_id"},
)
