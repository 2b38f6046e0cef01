// Package observability exposes the engine's prometheus collectors.
// Exposition happens on /metrics via promhttp; everything here registers
// against the default registry.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks the live entries of the connection registry.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "huddle",
		Subsystem: "realtime",
		Name:      "active_connections",
		Help:      "Number of live websocket connections.",
	})

	// PushesDelivered counts events emitted to at least one live connection,
	// partitioned by event type.
	PushesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "realtime",
		Name:      "pushes_delivered_total",
		Help:      "Push events delivered to a live recipient.",
	}, []string{"event"})

	// PushesSkipped counts events whose recipient had no live connection.
	PushesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "realtime",
		Name:      "pushes_skipped_total",
		Help:      "Push events dropped because the recipient was offline.",
	})

	// FramesDropped counts outbound frames lost to a full per-connection
	// send buffer.
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "huddle",
		Subsystem: "realtime",
		Name:      "frames_dropped_total",
		Help:      "Outbound frames dropped on a saturated connection buffer.",
	})
)
