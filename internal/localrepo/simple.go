package localrepo

import (
	"log/slog"
	"os"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// Simple is the simple local repository manager: remote artifacts land at
// the same path as local installs, so a download and a local install are
// indistinguishable. Find reports Available=true whenever the file exists,
// regardless of which remote (if any) is asking.
type Simple struct {
	baseDir string
	logger  *slog.Logger
}

// NewSimple creates a Simple manager rooted at baseDir.
func NewSimple(baseDir string, logger *slog.Logger) *Simple {
	return &Simple{baseDir: baseDir, logger: newLogger(logger)}
}

func (m *Simple) BaseDir() string { return m.baseDir }

func (m *Simple) PathForLocalArtifact(a *artifact.Artifact) string {
	return artifactPath(m.baseDir, a, true)
}

func (m *Simple) PathForLocalMetadata(meta *artifact.Metadata) string {
	return metadataPath(m.baseDir, meta)
}

func (m *Simple) PathForRemoteArtifact(a *artifact.Artifact, _ *artifact.RemoteRepository, _ string) string {
	return artifactPath(m.baseDir, a, true)
}

func (m *Simple) PathForRemoteMetadata(meta *artifact.Metadata, _ *artifact.RemoteRepository, _ string) string {
	return metadataPath(m.baseDir, meta)
}

func (m *Simple) FindArtifact(_ *session.Session, req ArtifactRequest) ArtifactResult {
	path := m.PathForLocalArtifact(&req.Artifact)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ArtifactResult{File: ""}
	}
	return ArtifactResult{File: path, Available: true}
}

func (m *Simple) FindMetadata(req MetadataRequest) MetadataResult {
	path := m.PathForLocalMetadata(&req.Metadata)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return MetadataResult{}
	}
	return MetadataResult{File: path}
}

func (m *Simple) AddArtifact(reg ArtifactRegistration) error {
	m.logger.Debug("local repository: artifact registered", "group", reg.Artifact.GroupID,
		"artifact", reg.Artifact.ArtifactID, "version", reg.Artifact.Version)
	return nil
}

func (m *Simple) AddMetadata(reg MetadataRegistration) error {
	m.logger.Debug("local repository: metadata registered", "group", reg.Metadata.GroupID,
		"artifact", reg.Metadata.ArtifactID, "version", reg.Metadata.Version)
	return nil
}

var _ Manager = (*Simple)(nil)
