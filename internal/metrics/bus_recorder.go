// Package metrics provides the Prometheus-backed events.Recorder used to
// instrument the asynchronous event Bus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusRecorder implements events.Recorder with Prometheus counters and gauges.
// A *BusRecorder satisfies events.Recorder structurally; this package does
// not import internal/events to keep the dependency direction one-way.
type BusRecorder struct {
	subscribers       prometheus.Gauge
	broadcastTotal    *prometheus.CounterVec
	broadcastErrors   *prometheus.CounterVec
	queueDroppedTotal prometheus.Counter
}

// NewBusRecorder registers and returns a BusRecorder under the given
// namespace (typically "artifactrepo").
func NewBusRecorder(namespace string) *BusRecorder {
	if namespace == "" {
		namespace = "artifactrepo"
	}
	return &BusRecorder{
		subscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "subscribers",
			Help:      "Current number of active event Bus subscribers.",
		}),
		broadcastTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "broadcast_total",
			Help:      "Total events broadcast by the event Bus, by event type.",
		}, []string{"event_type"}),
		broadcastErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "broadcast_errors_total",
			Help:      "Total subscriber send failures during broadcast, by event type.",
		}, []string{"event_type"}),
		queueDroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "queue_dropped_total",
			Help:      "Total events dropped because the event Bus queue was full.",
		}),
	}
}

// SubscribersChanged records the current subscriber count.
func (r *BusRecorder) SubscribersChanged(count int) {
	r.subscribers.Set(float64(count))
}

// EventBroadcast records one broadcast round for an event type.
func (r *BusRecorder) EventBroadcast(eventType string, subscribers, errs int) {
	r.broadcastTotal.WithLabelValues(eventType).Add(float64(subscribers))
	if errs > 0 {
		r.broadcastErrors.WithLabelValues(eventType).Add(float64(errs))
	}
}

// QueueDropped records one dropped event.
func (r *BusRecorder) QueueDropped() {
	r.queueDroppedTotal.Inc()
}
