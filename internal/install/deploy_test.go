package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
	"github.com/vitaliisemenov/artifactrepo/internal/offline"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

func TestDeployPublishesToBackingRepository(t *testing.T) {
	remoteDir, srcDir := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "widget-1.0.jar")
	require.NoError(t, os.WriteFile(src, []byte("published-bytes"), 0o644))

	a := widget("1.0")
	a.File = src
	remote := &artifact.RemoteRepository{ID: "central", URL: "https://example.test/repo", ContentType: "default"}

	dep := NewDeployer(connector.FilesystemFactory{BaseDir: remoteDir}, offline.New(), nil, nil)
	s := session.New("s1", session.DefaultConfig())

	results, err := dep.Deploy(context.Background(), s, []DeployRequest{
		{Artifact: a, Repository: remote},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Exception)

	data, readErr := os.ReadFile(localrepo.Layout(remoteDir, &a, false))
	require.NoError(t, readErr)
	assert.Equal(t, "published-bytes", string(data))
}

func TestDeployFailsWithoutRepository(t *testing.T) {
	a := widget("1.0")
	a.File = "/nonexistent"

	dep := NewDeployer(connector.FilesystemFactory{BaseDir: t.TempDir()}, offline.New(), nil, nil)
	s := session.New("s1", session.DefaultConfig())

	results, err := dep.Deploy(context.Background(), s, []DeployRequest{{Artifact: a}})
	require.Error(t, err)
	require.Error(t, results[0].Exception)
}

func TestDeployRefusesWhenOffline(t *testing.T) {
	a := widget("1.0")
	remote := &artifact.RemoteRepository{ID: "central", URL: "https://example.test/repo", ContentType: "default"}

	dep := NewDeployer(connector.FilesystemFactory{BaseDir: t.TempDir()}, offline.New(), nil, nil)
	cfg := session.DefaultConfig()
	s := session.New("s1", cfg)
	s.SetOffline(true)

	results, err := dep.Deploy(context.Background(), s, []DeployRequest{{Artifact: a, Repository: remote}})
	require.Error(t, err)
	var offlineErr *artifact.OfflineError
	require.ErrorAs(t, results[0].Exception, &offlineErr)
}
