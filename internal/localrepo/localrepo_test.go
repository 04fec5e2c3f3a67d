package localrepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
)

func widget(version string) artifact.Artifact {
	return artifact.Artifact{
		Coordinates: artifact.Coordinates{
			GroupID:    "com.example",
			ArtifactID: "widget",
			Extension:  "jar",
			Version:    version,
		},
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0o644))
}

func TestLayoutUsesDottedGroupAsDirectories(t *testing.T) {
	base := t.TempDir()
	m := NewSimple(base, nil)
	a := widget("1.0")
	path := m.PathForLocalArtifact(&a)
	assert.Equal(t, filepath.Join(base, "com", "example", "widget", "1.0", "widget-1.0.jar"), path)
}

func TestSimpleAvailableWheneverFileExists(t *testing.T) {
	base := t.TempDir()
	m := NewSimple(base, nil)
	a := widget("1.0")
	writeFile(t, m.PathForLocalArtifact(&a))

	result := m.FindArtifact(nil, ArtifactRequest{Artifact: a})
	assert.True(t, result.Available)
	assert.NotEmpty(t, result.File)
}

func TestEnhancedUnavailableUntilRemoteRecorded(t *testing.T) {
	base := t.TempDir()
	m := NewEnhanced(base, nil)
	a := widget("1.0")
	path := m.PathForLocalArtifact(&a)
	writeFile(t, path)

	remote := &artifact.RemoteRepository{ID: "central"}
	result := m.FindArtifact(nil, ArtifactRequest{Artifact: a, Remotes: []*artifact.RemoteRepository{remote}})
	require.NotEmpty(t, result.File, "file should still be returned even when unavailable")
	assert.False(t, result.Available)

	require.NoError(t, m.AddArtifact(ArtifactRegistration{Artifact: a, File: path, Repository: remote}))

	result = m.FindArtifact(nil, ArtifactRequest{Artifact: a, Remotes: []*artifact.RemoteRepository{remote}})
	assert.True(t, result.Available)
}

// TestInstallThenResolveWithEmptyRemoteList exercises scenario E5: install A
// locally, then resolve A with an empty remote list. find() reports
// file!=nil but available=false (no requested remote recorded), as the
// resolver's local-fallback rule (isLocallyInstalled) expects.
func TestInstallThenResolveWithEmptyRemoteList(t *testing.T) {
	base := t.TempDir()
	m := NewEnhanced(base, nil)
	a := widget("1.0")
	path := m.PathForLocalArtifact(&a)
	writeFile(t, path)

	require.NoError(t, m.AddArtifact(ArtifactRegistration{Artifact: a, File: path, Repository: nil}))

	result := m.FindArtifact(nil, ArtifactRequest{Artifact: a})
	assert.False(t, result.Available, "a local-only install (remoteID \"\") does not satisfy a remote query by itself")
	assert.NotEmpty(t, result.File, "the file is still returned so the resolver's local-fallback rule can accept it")
}

func TestMetadataPathOmitsMissingScopeFields(t *testing.T) {
	base := t.TempDir()
	m := NewSimple(base, nil)
	meta := artifact.Metadata{ArtifactID: "widget", Type: "maven-metadata.xml"}
	path := m.PathForLocalMetadata(&meta)
	assert.Equal(t, filepath.Join(base, "widget", "maven-metadata.xml"), path)
}
