package connector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// IdentityVersionResolver resolves every artifact to its own Version
// unchanged — the degenerate case for callers that never use version
// ranges/LATEST/RELEASE, or tests.
type IdentityVersionResolver struct{}

func (IdentityVersionResolver) ResolveVersion(ctx context.Context, s *session.Session, a *artifact.Artifact) (VersionResult, error) {
	return VersionResult{Version: a.Version}, nil
}

var _ VersionResolver = IdentityVersionResolver{}

// NullWorkspaceReader reports no artifacts ever present in the workspace —
// the degenerate case for callers with no active multi-module build.
type NullWorkspaceReader struct{}

func (NullWorkspaceReader) FindArtifact(a *artifact.Artifact) (string, bool) { return "", false }
func (NullWorkspaceReader) FindVersions(a *artifact.Artifact) []string       { return nil }
func (NullWorkspaceReader) Repository() *artifact.RemoteRepository          { return nil }

var _ WorkspaceReader = NullWorkspaceReader{}

// DigestAuthenticationDigest derives a stable digest from a remote's id and
// URL only — a placeholder for an embedder that stores real credentials out
// of band and wants to vary the digest when they change.
type DigestAuthenticationDigest struct{}

func (DigestAuthenticationDigest) Digest(remote *artifact.RemoteRepository) string {
	sum := sha256.Sum256([]byte(remote.ID + "|" + remote.URL))
	return hex.EncodeToString(sum[:8])
}

var _ AuthenticationDigest = DigestAuthenticationDigest{}
