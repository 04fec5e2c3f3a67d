// Package connector declares the external collaborators the resolution
// engine consumes but does not implement: wire-level repository transport,
// version resolution, workspace lookups, file I/O, and authentication
// digesting. It also ships small,
// filesystem-backed default implementations usable in tests and the CLI.
package connector

import (
	"context"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// ArtifactDownload is one unit of work handed to a RepositoryConnector.Get
// call. The resolver populates it; the connector fills Exception.
type ArtifactDownload struct {
	Artifact             *artifact.Artifact
	File                 string
	ExistenceCheck       bool
	ChecksumPolicy       artifact.ChecksumPolicy
	MirroredRepositories []string
	Exception            error
}

// MetadataDownload is MetadataResolver's counterpart to ArtifactDownload.
type MetadataDownload struct {
	Metadata  *artifact.Metadata
	File      string
	Exception error
}

// Upload is one unit of work handed to RepositoryConnector.Put by the
// installer/deployer. Exactly one of Artifact/Metadata is set.
type Upload struct {
	Artifact  *artifact.Artifact
	Metadata  *artifact.Metadata
	File      string
	Exception error
}

// VersionResult is the external VersionResolver's answer: the concrete
// version, and optionally the repository that is now known to host it
// (restricting the remote list) or nil for an unrestricted remote search.
type VersionResult struct {
	Version    string
	Repository *artifact.RemoteRepository
	// FromLocalRepository, when true, empties the remote list entirely:
	// the artifact is already bound to a local repository.
	FromLocalRepository bool
}

// VersionResolver resolves a symbolic version (a range, LATEST, RELEASE) to
// a concrete one.
type VersionResolver interface {
	ResolveVersion(ctx context.Context, s *session.Session, a *artifact.Artifact) (VersionResult, error)
}

// RepositoryConnector performs the wire-level transfer for one remote
// repository's batch of downloads or uploads.
type RepositoryConnector interface {
	Get(ctx context.Context, artifacts []*ArtifactDownload, metadata []*MetadataDownload) error
	Put(ctx context.Context, uploads []*Upload) error
	Close() error
}

// Factory produces a RepositoryConnector for a remote, or reports that no
// transport supports it.
type Factory interface {
	NewConnector(remote *artifact.RemoteRepository) (RepositoryConnector, error)
}

// WorkspaceReader answers "does the active build/workspace already contain
// this artifact, bypassing the repository system entirely?"
type WorkspaceReader interface {
	FindArtifact(a *artifact.Artifact) (file string, ok bool)
	FindVersions(a *artifact.Artifact) []string
	Repository() *artifact.RemoteRepository
}

// FileProcessor performs the local file operations the installer and
// resolver need (snapshot-normalization copies, install copies).
type FileProcessor interface {
	Copy(ctx context.Context, src, dst string) (int64, error)
	Move(src, dst string) error
	MkdirAll(dir string) error
	Write(file string, data []byte) error
}

// AuthenticationDigest produces a stable string summarizing a remote's
// authentication/proxy configuration, used only to derive the transfer-key
// half of an UpdateCheck.
type AuthenticationDigest interface {
	Digest(remote *artifact.RemoteRepository) string
}
