// Package localrepo maps artifact/metadata coordinates to filesystem paths
// under the local repository, and — in its enhanced flavor — tracks which
// remotes have contributed each file so that an artifact installed from one
// repository is not assumed present in another.
package localrepo

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// Manager is implemented by both the simple and enhanced local repository
// managers.
type Manager interface {
	BaseDir() string
	PathForLocalArtifact(a *artifact.Artifact) string
	PathForLocalMetadata(m *artifact.Metadata) string
	PathForRemoteArtifact(a *artifact.Artifact, remote *artifact.RemoteRepository, reqContext string) string
	PathForRemoteMetadata(m *artifact.Metadata, remote *artifact.RemoteRepository, reqContext string) string
	FindArtifact(s *session.Session, req ArtifactRequest) ArtifactResult
	FindMetadata(req MetadataRequest) MetadataResult
	AddArtifact(reg ArtifactRegistration) error
	AddMetadata(reg MetadataRegistration) error
}

// ArtifactRequest is the LRM's lookup input for one artifact.
type ArtifactRequest struct {
	Artifact    artifact.Artifact
	Remotes     []*artifact.RemoteRepository
	ReqContext  string
}

// ArtifactResult is the LRM's answer for one lookup.
//
// Available=true means "this file is known to be the correct artifact for
// one of the requested remotes, in the requested request-context". A file
// may exist with Available=false when it was installed locally or fetched
// in a different context/remote.
type ArtifactResult struct {
	File       string
	Available  bool
	Repository *artifact.RemoteRepository
}

// MetadataRequest/MetadataResult mirror the artifact shapes but file-only —
// metadata lookups carry no availability bit.
type MetadataRequest struct {
	Metadata artifact.Metadata
}

type MetadataResult struct {
	File string
}

// ArtifactRegistration records that file is now the correct artifact for
// repo (nil for a purely local install) in reqContext.
type ArtifactRegistration struct {
	Artifact   artifact.Artifact
	File       string
	Repository *artifact.RemoteRepository
	ReqContext string
}

type MetadataRegistration struct {
	Metadata   artifact.Metadata
	File       string
	Repository *artifact.RemoteRepository
}

// Layout returns the conventional local-repository path for a, rooted at
// baseDir. Exported so collaborators outside this package (notably demo
// repository connectors) can mirror the same directory convention.
func Layout(baseDir string, a *artifact.Artifact, useBaseVersion bool) string {
	return artifactPath(baseDir, a, useBaseVersion)
}

// MetadataLayout is Layout's counterpart for metadata descriptors.
func MetadataLayout(baseDir string, m *artifact.Metadata) string {
	return metadataPath(baseDir, m)
}

func layoutDir(baseDir, groupID, artifactID, version string) string {
	parts := append(strings.Split(groupID, "."), artifactID, version)
	return filepath.Join(append([]string{baseDir}, parts...)...)
}

func artifactPath(baseDir string, a *artifact.Artifact, useBaseVersion bool) string {
	dir := layoutDir(baseDir, a.GroupID, a.ArtifactID, a.Version)
	return filepath.Join(dir, a.FileName(useBaseVersion))
}

func metadataPath(baseDir string, m *artifact.Metadata) string {
	parts := []string{baseDir}
	if m.GroupID != "" {
		parts = append(parts, strings.Split(m.GroupID, ".")...)
	}
	if m.ArtifactID != "" {
		parts = append(parts, m.ArtifactID)
	}
	if m.Version != "" {
		parts = append(parts, m.Version)
	}
	parts = append(parts, m.Key())
	return filepath.Join(parts...)
}

func metadataDir(baseDir string, m *artifact.Metadata) string {
	return filepath.Dir(metadataPath(baseDir, m))
}

func statusFilePath(dir string) string {
	return filepath.Join(dir, "resolver-status.properties")
}

func lastUpdatedFilePath(artifactFile string) string {
	return artifactFile + ".lastUpdated"
}

func sidecarIndexPath(dir string) string {
	return filepath.Join(dir, "_remote.repositories")
}

func newLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}

// sortedJoin is used to keep the enhanced LRM's multi-valued sidecar entries
// deterministic for testing.
func sortedJoin(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func splitSet(value string) map[string]struct{} {
	set := map[string]struct{}{}
	if value == "" {
		return set
	}
	for _, v := range strings.Split(value, ",") {
		set[v] = struct{}{}
	}
	return set
}
