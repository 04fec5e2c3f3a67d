package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TransferMetrics tracks traffic moved through a RepositoryConnector.
type TransferMetrics struct {
	DownloadsTotal          *prometheus.CounterVec
	UploadsTotal            *prometheus.CounterVec
	TransferBytesTotal      *prometheus.CounterVec
	TransferDurationSeconds *prometheus.HistogramVec
}

// NewTransferMetrics creates a new TransferMetrics instance.
func NewTransferMetrics(namespace string) *TransferMetrics {
	return &TransferMetrics{
		DownloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transfer",
				Name:      "downloads_total",
				Help:      "Total connector Get calls by repository and outcome",
			},
			[]string{"repository", "outcome"}, // outcome: success, not_found, error
		),
		UploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transfer",
				Name:      "uploads_total",
				Help:      "Total connector Put calls by repository and outcome",
			},
			[]string{"repository", "outcome"},
		),
		TransferBytesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transfer",
				Name:      "bytes_total",
				Help:      "Total bytes transferred by repository and direction",
			},
			[]string{"repository", "direction"}, // direction: download, upload
		),
		TransferDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "transfer",
				Name:      "duration_seconds",
				Help:      "Duration of a single connector Get/Put call",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"repository", "direction"},
		),
	}
}
