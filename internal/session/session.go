// Package session defines the per-call Session object threaded through every
// resolution: the explicit, caller-supplied context carrying configuration,
// the offline flag, and the lazily-created memoization map that backs
// UpdateCheckManager's once-per-session guarantee.
package session

import (
	"sync"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
)

// UpdateCheckSessionState selects whether the session memo is consulted at
// all ("enabled", the default) or always bypassed ("bypass"), per
// aether.updateCheckManager.sessionState.
type UpdateCheckSessionState string

const (
	UpdateCheckEnabled UpdateCheckSessionState = "enabled"
	UpdateCheckBypass  UpdateCheckSessionState = "bypass"
)

// Config mirrors the configuration keys consumed from the session.
type Config struct {
	// SnapshotNormalization enables the timestamped->base snapshot copy.
	// Default true (aether.artifactResolver.snapshotNormalization).
	SnapshotNormalization bool

	// ForcedOfflineProtocols/Hosts force a remote offline regardless of
	// Offline, matched by URL scheme or host (aether.offline.protocols,
	// aether.offline.hosts).
	ForcedOfflineProtocols []string
	ForcedOfflineHosts     []string

	// OfflineAllowed lists repository ids/hosts that remain reachable even
	// when Offline is set — an allow list. Not itself a documented config
	// key; populated by the embedding application the same way Offline is
	// (see DESIGN.md open-question resolution).
	OfflineAllowed []string

	UpdateCheckSessionState UpdateCheckSessionState

	// ArtifactResolverThreads / MetadataResolverThreads hint group
	// parallelism (aether.artifactResolver.threads, .metadataResolver.threads).
	ArtifactResolverThreads  int
	MetadataResolverThreads int

	// ErrorPolicy controls negative-result caching (CACHE_* bit flags).
	ErrorPolicy artifact.ErrorPolicy

	// LocalRepositoryBaseDir is the root of the on-disk local repository.
	LocalRepositoryBaseDir string

	// LockDir holds SyncContext's filesystem lock files, defaulting to
	// LocalRepositoryBaseDir when empty.
	LockDir string
}

// DefaultConfig returns the documented defaults for every key.
func DefaultConfig() Config {
	return Config{
		SnapshotNormalization:   true,
		UpdateCheckSessionState: UpdateCheckEnabled,
		ErrorPolicy:             artifact.CacheNone,
	}
}

// Session is the explicit, per-resolution-run context. It has no package
// global state; a fresh Session is created per logical unit of work
// (typically per build or per CLI invocation) and may be shared by
// concurrent goroutines issuing resolveArtifacts/resolveMetadata calls.
type Session struct {
	ID     string
	Data   map[string]any
	Config Config

	memoOnce sync.Once
	memo     *sync.Map
}

// New creates a Session with the given id and configuration.
func New(id string, cfg Config) *Session {
	return &Session{ID: id, Data: map[string]any{}, Config: cfg}
}

// Memo returns the session's update-check memoization map, created lazily
// and exactly once even under concurrent first access (compare-and-swap via
// sync.Once) so concurrent creators converge on one instance.
func (s *Session) Memo() *sync.Map {
	s.memoOnce.Do(func() {
		s.memo = &sync.Map{}
	})
	return s.memo
}

// IsOffline reports the session-wide offline flag.
func (s *Session) IsOffline() bool {
	offline, _ := s.Data["offline"].(bool)
	return offline
}

// SetOffline sets the session-wide offline flag.
func (s *Session) SetOffline(offline bool) {
	s.Data["offline"] = offline
}
