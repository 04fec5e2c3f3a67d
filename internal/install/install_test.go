package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
	"github.com/vitaliisemenov/artifactrepo/internal/syncctx"
)

func widget(version string) artifact.Artifact {
	return artifact.Artifact{Coordinates: artifact.Coordinates{
		GroupID: "com.example", ArtifactID: "widget", Extension: "jar", Version: version,
	}}
}

func TestInstallCopiesSourceIntoLocalRepository(t *testing.T) {
	srcDir, lrmDir, lockDir := t.TempDir(), t.TempDir(), t.TempDir()
	lrm := localrepo.NewSimple(lrmDir, nil)

	src := filepath.Join(srcDir, "widget-1.0.jar")
	require.NoError(t, os.WriteFile(src, []byte("built-bytes"), 0o644))

	inst := NewInstaller(lrm, syncctx.NewFactory(lockDir, nil), nil, nil, nil)
	s := session.New("s1", session.DefaultConfig())

	a := widget("1.0")
	a.File = src
	results, err := inst.Install(context.Background(), s, []Request{{Artifact: a}})
	require.NoError(t, err)
	require.NoError(t, results[0].Exception)

	dest := lrm.PathForLocalArtifact(&a)
	assert.Equal(t, dest, results[0].Artifact.File)
	data, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, "built-bytes", string(data))

	found := lrm.FindArtifact(nil, localrepo.ArtifactRequest{Artifact: a})
	assert.True(t, found.Available)
}

func TestInstallSkipsCopyWhenSourceEqualsDestination(t *testing.T) {
	lrmDir, lockDir := t.TempDir(), t.TempDir()
	lrm := localrepo.NewSimple(lrmDir, nil)
	a := widget("1.0")
	dest := lrm.PathForLocalArtifact(&a)
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("already-there"), 0o644))
	a.File = dest

	inst := NewInstaller(lrm, syncctx.NewFactory(lockDir, nil), nil, nil, nil)
	s := session.New("s1", session.DefaultConfig())

	results, err := inst.Install(context.Background(), s, []Request{{Artifact: a}})
	require.NoError(t, err)
	assert.Equal(t, dest, results[0].Artifact.File)
}

func TestInstallFailsForMissingSource(t *testing.T) {
	lrmDir, lockDir := t.TempDir(), t.TempDir()
	lrm := localrepo.NewSimple(lrmDir, nil)
	a := widget("1.0")
	a.File = filepath.Join(t.TempDir(), "missing.jar")

	inst := NewInstaller(lrm, syncctx.NewFactory(lockDir, nil), nil, nil, nil)
	s := session.New("s1", session.DefaultConfig())

	_, err := inst.Install(context.Background(), s, []Request{{Artifact: a}})
	require.Error(t, err)
}

func TestInstallRejectsDirectorySource(t *testing.T) {
	lrmDir, lockDir := t.TempDir(), t.TempDir()
	lrm := localrepo.NewSimple(lrmDir, nil)
	a := widget("1.0")
	a.File = t.TempDir()

	inst := NewInstaller(lrm, syncctx.NewFactory(lockDir, nil), nil, nil, nil)
	s := session.New("s1", session.DefaultConfig())

	results, err := inst.Install(context.Background(), s, []Request{{Artifact: a}})
	require.Error(t, err)
	var instErr *artifact.InstallationError
	require.ErrorAs(t, results[0].Exception, &instErr)
}
