// Package metrics exposes Prometheus collectors for frame throughput,
// asset serialization failures, and auth-manager state transitions.
// Grounded on dantte-lp-gobfd/internal/metrics/collector.go's Collector
// shape: one struct of pre-registered vectors, one constructor, and
// narrow Inc*/Record* methods instead of exposing raw prometheus types to
// callers.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "hytale_gameserver"

// Label names shared across the collector's vectors.
const (
	labelPacketName  = "packet"
	labelFailureKind = "kind"
	labelFromState   = "from_state"
	labelToState     = "to_state"
)

// Collector holds every Prometheus metric this module exposes.
type Collector struct {
	FramesEncoded *prometheus.CounterVec
	FramesDecoded *prometheus.CounterVec

	AssetSerializeFailures *prometheus.CounterVec

	AuthStateTransitions *prometheus.CounterVec
}

// NewCollector builds and registers a Collector against reg.
// prometheus.DefaultRegisterer is used if reg is nil.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()
	reg.MustRegister(
		c.FramesEncoded,
		c.FramesDecoded,
		c.AssetSerializeFailures,
		c.AuthStateTransitions,
	)
	return c
}

func newMetrics() *Collector {
	packetLabels := []string{labelPacketName}
	return &Collector{
		FramesEncoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "encoded_total",
			Help:      "Total wire frames encoded, labeled by packet name.",
		}, packetLabels),

		FramesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "decoded_total",
			Help:      "Total wire frames decoded, labeled by packet name.",
		}, packetLabels),

		AssetSerializeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "asset",
			Name:      "serialize_failures_total",
			Help:      "Total asset-update serialization failures, labeled by error kind.",
		}, []string{labelFailureKind}),

		AuthStateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "state_transitions_total",
			Help:      "Total auth-manager state machine transitions.",
		}, []string{labelFromState, labelToState}),
	}
}

// IncFramesEncoded records one encoded frame for packetName.
func (c *Collector) IncFramesEncoded(packetName string) {
	c.FramesEncoded.WithLabelValues(packetName).Inc()
}

// IncFramesDecoded records one decoded frame for packetName.
func (c *Collector) IncFramesDecoded(packetName string) {
	c.FramesDecoded.WithLabelValues(packetName).Inc()
}

// IncAssetSerializeFailure records one asset serialization failure of the
// given kind (e.g. "overflow", "too_large").
func (c *Collector) IncAssetSerializeFailure(kind string) {
	c.AssetSerializeFailures.WithLabelValues(kind).Inc()
}

// RecordAuthTransition records one auth-manager state transition.
func (c *Collector) RecordAuthTransition(from, to string) {
	c.AuthStateTransitions.WithLabelValues(from, to).Inc()
}
