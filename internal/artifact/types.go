// Package artifact holds the coordinate and repository data model shared by
// every component of the resolution engine: artifacts, metadata descriptors,
// remote repositories and their policies, and the request/result shapes that
// flow between the resolver, the local-repository manager, and the
// update-check manager.
package artifact

import (
	"fmt"
	"strings"

	"github.com/vitaliisemenov/artifactrepo/internal/updatepolicy"
)

// Nature describes the scope of a metadata descriptor or a repository policy.
type Nature int

const (
	// NatureRelease scopes an entry to released (non-snapshot) versions.
	NatureRelease Nature = iota
	// NatureSnapshot scopes an entry to snapshot versions.
	NatureSnapshot
	// NatureReleaseOrSnapshot scopes an entry to either.
	NatureReleaseOrSnapshot
)

func (n Nature) String() string {
	switch n {
	case NatureRelease:
		return "release"
	case NatureSnapshot:
		return "snapshot"
	case NatureReleaseOrSnapshot:
		return "release-or-snapshot"
	default:
		return "unknown"
	}
}

// ChecksumPolicy controls how a connector reacts to a checksum mismatch.
// Computation itself is a connector concern; the core only carries the enum
// so it can be merged and attached to downloads.
type ChecksumPolicy string

const (
	ChecksumFail   ChecksumPolicy = "fail"
	ChecksumWarn   ChecksumPolicy = "warn"
	ChecksumIgnore ChecksumPolicy = "ignore"
)

// Coordinates identifies an artifact by group/id/version/classifier/extension.
type Coordinates struct {
	GroupID    string `validate:"required"`
	ArtifactID string `validate:"required"`
	Classifier string
	Extension  string
	Version    string `validate:"required"`
}

// Artifact is a versioned binary file addressed by Coordinates, plus the
// bookkeeping the resolver attaches once it is located: the local file path,
// and for snapshots, the unexpanded base version.
type Artifact struct {
	Coordinates

	// File is set once the artifact has been located (workspace, local
	// cache, or download). Empty means not yet resolved.
	File string

	// BaseVersionOverride carries the unexpanded snapshot version
	// ("1.0-SNAPSHOT") when Version has been expanded to a timestamped
	// form ("1.0-20200101.010101-1"). Empty when Version is already the
	// base version.
	BaseVersionOverride string

	// Properties carries out-of-band hints, notably "localPath" for
	// artifacts that should be resolved to an externally hosted file
	// instead of the normal pipeline.
	Properties map[string]string
}

// LocalPath returns the externally hosted file path set via the "localPath"
// property, and whether one was set at all.
func (a *Artifact) LocalPath() (string, bool) {
	if a.Properties == nil {
		return "", false
	}
	p, ok := a.Properties["localPath"]
	return p, ok && p != ""
}

// IsSnapshot reports whether the version string names a snapshot.
func (a *Artifact) IsSnapshot() bool {
	return strings.HasSuffix(a.Version, "-SNAPSHOT") || isTimestampedSnapshot(a.Version)
}

// BaseVersion returns the unexpanded snapshot version ("1.0-SNAPSHOT") for a
// timestamped artifact, or Version unchanged when there is no expansion.
func (a *Artifact) BaseVersion() string {
	if a.BaseVersionOverride != "" {
		return a.BaseVersionOverride
	}
	return a.Version
}

// FileName returns the conventional "artifactId-version[-classifier].ext"
// file name for the artifact. When useBaseVersion is true the version
// component is BaseVersion, so that timestamped and base-named files share a
// name once normalized; otherwise it is Version as is.
func (a *Artifact) FileName(useBaseVersion bool) string {
	version := a.Version
	if useBaseVersion {
		version = a.BaseVersion()
	}
	name := fmt.Sprintf("%s-%s", a.ArtifactID, version)
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	if a.Extension != "" {
		name += "." + a.Extension
	}
	return name
}

func isTimestampedSnapshot(version string) bool {
	// "<base>-YYYYMMDD.HHMMSS-N" — look for the "-SNAPSHOT"-shaped tail
	// having been replaced by a dotted timestamp plus build number.
	idx := strings.LastIndex(version, "-")
	if idx < 0 {
		return false
	}
	rest := version[:idx]
	idx2 := strings.LastIndex(rest, "-")
	if idx2 < 0 {
		return false
	}
	ts := rest[idx2+1:]
	return strings.Contains(ts, ".") && len(ts) == 15
}

// Metadata identifies a repository metadata descriptor. Missing GroupID,
// ArtifactID, or Version address progressively broader scopes.
type Metadata struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string
	Nature     Nature

	// File is set once metadata has been located.
	File string
}

// Key returns the conventional metadata file name, e.g. "maven-metadata.xml".
func (m *Metadata) Key() string {
	if m.Type != "" {
		return m.Type
	}
	return "maven-metadata.xml"
}

// RepositoryPolicy is the per-nature policy of a remote repository.
type RepositoryPolicy struct {
	Enabled        bool
	UpdatePolicy   string
	ChecksumPolicy ChecksumPolicy
}

// RemoteRepository is a network-addressable artifact/metadata source, or a
// repository manager aggregating a mirrored set of contributing URLs.
type RemoteRepository struct {
	ID          string `validate:"required"`
	ContentType string
	URL         string `validate:"required,url"`

	ReleasePolicy  RepositoryPolicy
	SnapshotPolicy RepositoryPolicy

	// IsRepositoryManager marks this remote as aggregating MirroredURLs.
	IsRepositoryManager bool
	MirroredURLs        []string

	// Proxy and authentication are opaque to the core; AuthDigest is the
	// stable string produced by the external AuthenticationDigest
	// collaborator, used only for transfer-key derivation.
	AuthDigest string
}

// PolicyFor returns the repository's policy for the given nature, treating
// NatureReleaseOrSnapshot as the stricter (effective) merge of both.
func (r *RemoteRepository) PolicyFor(n Nature) RepositoryPolicy {
	switch n {
	case NatureRelease:
		return r.ReleasePolicy
	case NatureSnapshot:
		return r.SnapshotPolicy
	default:
		return RepositoryPolicy{
			Enabled:        r.ReleasePolicy.Enabled || r.SnapshotPolicy.Enabled,
			UpdatePolicy:   updatepolicy.EffectivePolicy(r.ReleasePolicy.UpdatePolicy, r.SnapshotPolicy.UpdatePolicy),
			ChecksumPolicy: r.ReleasePolicy.ChecksumPolicy,
		}
	}
}

// Equivalent reports whether two remotes should be treated as the same
// resolution group: matching url, contentType, and repository-manager flag.
func (r *RemoteRepository) Equivalent(other *RemoteRepository) bool {
	if other == nil {
		return false
	}
	return r.URL == other.URL &&
		r.ContentType == other.ContentType &&
		r.IsRepositoryManager == other.IsRepositoryManager
}

// MirroredSet returns the URLs contributing to this remote, in configured
// order: the remote's own URL for a plain remote, or MirroredURLs for a
// manager.
func (r *RemoteRepository) MirroredSet() []string {
	if !r.IsRepositoryManager || len(r.MirroredURLs) == 0 {
		return []string{r.URL}
	}
	return r.MirroredURLs
}

// ErrorPolicy is the bit-flag controlling negative-result caching.
type ErrorPolicy int

const (
	CacheNone          ErrorPolicy = 0
	CacheNotFound      ErrorPolicy = 1
	CacheTransferError ErrorPolicy = 2
	CacheAll           ErrorPolicy = CacheNotFound | CacheTransferError
)

func (p ErrorPolicy) Has(bit ErrorPolicy) bool { return p&bit != 0 }
