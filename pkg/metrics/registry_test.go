package metrics

import (
	"sync"
	"testing"
)

func TestDefaultRegistry_Singleton(t *testing.T) {
	registry1 := DefaultRegistry()
	registry2 := DefaultRegistry()

	if registry1 != registry2 {
		t.Error("DefaultRegistry() should return singleton instance")
	}
}

func TestDefaultRegistry_ConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	registries := make([]*MetricsRegistry, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			registries[index] = DefaultRegistry()
		}(i)
	}
	wg.Wait()

	first := registries[0]
	for i := 1; i < len(registries); i++ {
		if registries[i] != first {
			t.Errorf("Registry at index %d is not the same instance", i)
		}
	}
}

func TestNewMetricsRegistry(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		expected  string
	}{
		{name: "with custom namespace", namespace: "test_service", expected: "test_service"},
		{name: "with empty namespace (should default)", namespace: "", expected: "artifactrepo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewMetricsRegistry(tt.namespace)
			if registry.Namespace() != tt.expected {
				t.Errorf("Namespace() = %q, want %q", registry.Namespace(), tt.expected)
			}
		})
	}
}

func TestMetricsRegistry_Resolution(t *testing.T) {
	registry := NewMetricsRegistry("test_reg_resolution")

	res1 := registry.Resolution()
	if res1 == nil {
		t.Fatal("Resolution() returned nil")
	}
	res2 := registry.Resolution()
	if res1 != res2 {
		t.Error("Resolution() should return same instance on subsequent calls")
	}

	if res1.ArtifactsResolvedTotal == nil {
		t.Error("ArtifactsResolvedTotal not initialized")
	}
	if res1.ResolutionDurationSeconds == nil {
		t.Error("ResolutionDurationSeconds not initialized")
	}
	if res1.ArtifactsDeployedTotal == nil {
		t.Error("ArtifactsDeployedTotal not initialized")
	}
}

func TestMetricsRegistry_Transfer(t *testing.T) {
	registry := NewMetricsRegistry("test_reg_transfer")

	t1 := registry.Transfer()
	if t1 == nil {
		t.Fatal("Transfer() returned nil")
	}
	t2 := registry.Transfer()
	if t1 != t2 {
		t.Error("Transfer() should return same instance on subsequent calls")
	}
	if t1.DownloadsTotal == nil {
		t.Error("DownloadsTotal not initialized")
	}
	if t1.TransferDurationSeconds == nil {
		t.Error("TransferDurationSeconds not initialized")
	}
}

func TestMetricsRegistry_Cache(t *testing.T) {
	registry := NewMetricsRegistry("test_reg_cache")

	c1 := registry.Cache()
	if c1 == nil {
		t.Fatal("Cache() returned nil")
	}
	c2 := registry.Cache()
	if c1 != c2 {
		t.Error("Cache() should return same instance on subsequent calls")
	}
	if c1.ChecksTotal == nil {
		t.Error("ChecksTotal not initialized")
	}
}

func TestMetricsRegistry_LazyInitialization(t *testing.T) {
	registry := NewMetricsRegistry("test_lazy_init_unique")

	if registry.resolution != nil {
		t.Error("resolution should be nil before first access")
	}
	if registry.cache != nil {
		t.Error("cache should be nil before first access")
	}

	_ = registry.Resolution()
	if registry.resolution == nil {
		t.Error("resolution should be initialized after access")
	}
	if registry.cache != nil {
		t.Error("cache should still be nil (not accessed yet)")
	}

	_ = registry.Cache()
	if registry.cache == nil {
		t.Error("cache should be initialized after access")
	}
}

func BenchmarkDefaultRegistry(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultRegistry()
	}
}

func BenchmarkMetricsRegistry_AllCategories(b *testing.B) {
	registry := DefaultRegistry()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = registry.Resolution()
		_ = registry.Transfer()
		_ = registry.Cache()
	}
}
