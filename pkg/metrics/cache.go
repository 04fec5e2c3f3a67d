package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics tracks UpdateCheckManager decisions and touch-file writes.
type CacheMetrics struct {
	ChecksTotal      *prometheus.CounterVec
	TouchWritesTotal *prometheus.CounterVec
}

// NewCacheMetrics creates a new CacheMetrics instance.
func NewCacheMetrics(namespace string) *CacheMetrics {
	return &CacheMetrics{
		ChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "checks_total",
				Help:      "Total UpdateCheckManager decisions, by kind and result",
			},
			[]string{"kind", "required"}, // kind: artifact, metadata; required: true, false
		),
		TouchWritesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "touch_writes_total",
				Help:      "Total touch-file persist operations, by kind",
			},
			[]string{"kind"},
		),
	}
}
