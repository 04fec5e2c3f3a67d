package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResolutionMetrics tracks the outcome and latency of the three operations
// the engine exposes: resolution, installation, and deployment.
type ResolutionMetrics struct {
	ArtifactsResolvedTotal    *prometheus.CounterVec
	MetadataResolvedTotal     *prometheus.CounterVec
	ResolutionDurationSeconds *prometheus.HistogramVec

	ArtifactsInstalledTotal *prometheus.CounterVec
	ArtifactsDeployedTotal  *prometheus.CounterVec
}

// NewResolutionMetrics creates a new ResolutionMetrics instance.
func NewResolutionMetrics(namespace string) *ResolutionMetrics {
	return &ResolutionMetrics{
		ArtifactsResolvedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resolution",
				Name:      "artifacts_resolved_total",
				Help:      "Total artifact resolutions by outcome",
			},
			[]string{"outcome"}, // outcome: resolved, not_found
		),
		MetadataResolvedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resolution",
				Name:      "metadata_resolved_total",
				Help:      "Total metadata resolutions by outcome",
			},
			[]string{"outcome"},
		),
		ResolutionDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "resolution",
				Name:      "duration_seconds",
				Help:      "Duration of a ResolveArtifacts/ResolveMetadata batch call",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"}, // kind: artifact, metadata
		),
		ArtifactsInstalledTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resolution",
				Name:      "artifacts_installed_total",
				Help:      "Total artifacts installed into the local repository, by outcome",
			},
			[]string{"outcome"}, // outcome: installed, failed
		),
		ArtifactsDeployedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resolution",
				Name:      "artifacts_deployed_total",
				Help:      "Total artifacts published to a remote repository, by repository and outcome",
			},
			[]string{"repository", "outcome"},
		),
	}
}
