// Package resolver implements the artifact and metadata resolution
// pipelines: workspace → local cache → grouped remote download, driven
// through the connector and update-check collaborators.
package resolver

import (
	"fmt"
	"log/slog"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
	"github.com/vitaliisemenov/artifactrepo/internal/events"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
	"github.com/vitaliisemenov/artifactrepo/internal/offline"
	"github.com/vitaliisemenov/artifactrepo/internal/updatecheck"
)

// ArtifactRequest is one caller-supplied artifact to resolve.
type ArtifactRequest struct {
	Artifact       artifact.Artifact
	Repositories   []*artifact.RemoteRepository
	RequestContext string
}

// ArtifactResult is the outcome of resolving one ArtifactRequest. Artifact
// carries the fully resolved coordinates, including the final File path
// once successful; Exceptions accumulates every failure encountered along
// the way, even on eventual success via a later fallback.
type ArtifactResult struct {
	Request    ArtifactRequest
	Artifact   artifact.Artifact
	Repository *artifact.RemoteRepository
	Exceptions []error

	resolvedEmitted bool
}

// Resolved reports whether the result carries a usable local file.
func (r *ArtifactResult) Resolved() bool { return r.Artifact.File != "" }

// MetadataRequest is one caller-supplied metadata descriptor to resolve.
type MetadataRequest struct {
	Metadata       artifact.Metadata
	Repositories   []*artifact.RemoteRepository
	RequestContext string
}

// MetadataResult is the outcome of resolving one MetadataRequest. Unlike
// artifacts, metadata carries no availability/ownership bit — only a file,
// present or absent.
type MetadataResult struct {
	Request    MetadataRequest
	Metadata   artifact.Metadata
	Repository *artifact.RemoteRepository
	Exceptions []error

	resolvedEmitted bool
}

// Resolved reports whether the result carries a usable local file.
func (r *MetadataResult) Resolved() bool { return r.Metadata.File != "" }

// MetadataResolver mirrors ArtifactResolver for metadata descriptors, minus
// workspace consultation and version resolution.
type MetadataResolver struct {
	deps Deps
}

// NewMetadataResolver creates a MetadataResolver from deps, applying the same
// defaults as NewArtifactResolver.
func NewMetadataResolver(deps Deps) *MetadataResolver {
	return &MetadataResolver{deps: NewArtifactResolver(deps).deps}
}

// Deps bundles every external collaborator the resolver needs, injected at
// construction so the composition graph stays a DAG.
type Deps struct {
	VersionResolver connector.VersionResolver
	Workspace       connector.WorkspaceReader
	LocalRepository localrepo.Manager
	Offline         *offline.Controller
	UpdateCheck     *updatecheck.Manager
	Connectors      connector.Factory
	Dispatcher      *events.Dispatcher
	FileProcessor   connector.FileProcessor
	AuthDigest      connector.AuthenticationDigest
	Logger          *slog.Logger
}

// ArtifactResolver drives the workspace/local/remote pipeline for artifact
// requests.
type ArtifactResolver struct {
	deps Deps
}

// NewArtifactResolver creates an ArtifactResolver from deps, filling in
// no-op defaults for an absent Workspace/Dispatcher/Logger.
func NewArtifactResolver(deps Deps) *ArtifactResolver {
	if deps.Workspace == nil {
		deps.Workspace = connector.NullWorkspaceReader{}
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewDispatcher(deps.Logger, nil)
	}
	if deps.FileProcessor == nil {
		deps.FileProcessor = connector.OSFileProcessor{}
	}
	if deps.AuthDigest == nil {
		deps.AuthDigest = connector.DigestAuthenticationDigest{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &ArtifactResolver{deps: deps}
}

func coordString(c artifact.Coordinates) string {
	s := fmt.Sprintf("%s:%s", c.GroupID, c.ArtifactID)
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "" {
		s += ":" + c.Extension
	}
	return s + ":" + c.Version
}

func natureFor(a *artifact.Artifact) artifact.Nature {
	if a.IsSnapshot() {
		return artifact.NatureSnapshot
	}
	return artifact.NatureRelease
}

// group batches ArtifactDownloads headed to repositories considered
// equivalent (see RemoteRepository.Equivalent).
type group struct {
	representative *artifact.RemoteRepository
	items          []*pendingItem
}

type pendingItem struct {
	resultIndex int
	remote      *artifact.RemoteRepository
	policy      artifact.RepositoryPolicy
	reqContext  string
	download    *connector.ArtifactDownload
}

func metadataCoordString(m artifact.Metadata) string {
	s := m.GroupID
	if m.ArtifactID != "" {
		s += ":" + m.ArtifactID
	}
	if m.Version != "" {
		s += ":" + m.Version
	}
	return s + ":" + m.Key()
}

// metadataGroup/metadataPendingItem mirror group/pendingItem for metadata
// requests.
type metadataGroup struct {
	representative *artifact.RemoteRepository
	items          []*metadataPendingItem
}

type metadataPendingItem struct {
	resultIndex int
	remote      *artifact.RemoteRepository
	reqContext  string
	download    *connector.MetadataDownload
}

func findOrCreateMetadataGroup(groups *[]*metadataGroup, remote *artifact.RemoteRepository) *metadataGroup {
	for _, g := range *groups {
		if g.representative.Equivalent(remote) {
			return g
		}
	}
	g := &metadataGroup{representative: remote}
	*groups = append(*groups, g)
	return g
}

func findOrCreateGroup(groups *[]*group, remote *artifact.RemoteRepository) *group {
	for _, g := range *groups {
		if g.representative.Equivalent(remote) {
			return g
		}
	}
	g := &group{representative: remote}
	*groups = append(*groups, g)
	return g
}
