// Package metrics provides centralized Prometheus metrics for the artifact
// resolution engine.
//
// This package implements a unified taxonomy:
//   - Resolution metrics: artifact/metadata resolution, install, deploy
//   - Transfer metrics: connector downloads and uploads
//   - Cache metrics: update-check decisions and touch-file writes
//
// All metrics follow the naming convention:
// artifactrepo_<category>_<metric_name>_<unit>
//
// Example:
//
//	registry := metrics.DefaultRegistry()
//	registry.Resolution().ArtifactsResolvedTotal.WithLabelValues("resolved").Inc()
package metrics

import "sync"

// MetricsRegistry is the central registry for all Prometheus metrics.
// Provides organized access to metrics by category (Resolution, Transfer,
// Cache).
//
// Thread-safe: all Prometheus metrics are thread-safe by design.
// Singleton: use DefaultRegistry() to get the global instance.
type MetricsRegistry struct {
	namespace string

	resolution *ResolutionMetrics
	transfer   *TransferMetrics
	cache      *CacheMetrics

	resolutionOnce sync.Once
	transferOnce   sync.Once
	cacheOnce      sync.Once
}

var (
	defaultRegistry     *MetricsRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global singleton MetricsRegistry. Safe for
// concurrent use. Initialized once on first call.
func DefaultRegistry() *MetricsRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewMetricsRegistry("artifactrepo")
	})
	return defaultRegistry
}

// NewMetricsRegistry creates a new MetricsRegistry with the given namespace.
// Most callers should use DefaultRegistry() instead.
func NewMetricsRegistry(namespace string) *MetricsRegistry {
	if namespace == "" {
		namespace = "artifactrepo"
	}
	return &MetricsRegistry{namespace: namespace}
}

// Resolution returns the Resolution metrics manager. Lazy-initialized on
// first access.
func (r *MetricsRegistry) Resolution() *ResolutionMetrics {
	r.resolutionOnce.Do(func() {
		r.resolution = NewResolutionMetrics(r.namespace)
	})
	return r.resolution
}

// Transfer returns the Transfer metrics manager. Lazy-initialized on first
// access.
func (r *MetricsRegistry) Transfer() *TransferMetrics {
	r.transferOnce.Do(func() {
		r.transfer = NewTransferMetrics(r.namespace)
	})
	return r.transfer
}

// Cache returns the Cache metrics manager. Lazy-initialized on first access.
func (r *MetricsRegistry) Cache() *CacheMetrics {
	r.cacheOnce.Do(func() {
		r.cache = NewCacheMetrics(r.namespace)
	})
	return r.cache
}

// Namespace returns the configured namespace for this registry.
func (r *MetricsRegistry) Namespace() string {
	return r.namespace
}
