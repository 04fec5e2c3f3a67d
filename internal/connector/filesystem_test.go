package connector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
)

func widget(version string) *artifact.Artifact {
	return &artifact.Artifact{Coordinates: artifact.Coordinates{
		GroupID: "com.example", ArtifactID: "widget", Extension: "jar", Version: version,
	}}
}

func TestFilesystemConnectorGetCopiesExistingFile(t *testing.T) {
	remoteDir := t.TempDir()
	a := widget("1.0")
	src := localrepo.Layout(remoteDir, a, false)
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("jar-bytes"), 0o644))

	dst := filepath.Join(t.TempDir(), "out.jar")
	download := &ArtifactDownload{Artifact: a, File: dst}

	c := NewFilesystemConnector(remoteDir)
	require.NoError(t, c.Get(context.Background(), []*ArtifactDownload{download}, nil))

	require.NoError(t, download.Exception)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(data))
}

func TestFilesystemConnectorGetMissingSetsNotFound(t *testing.T) {
	remoteDir := t.TempDir()
	a := widget("9.9")
	download := &ArtifactDownload{Artifact: a, File: filepath.Join(t.TempDir(), "out.jar")}

	c := NewFilesystemConnector(remoteDir)
	require.NoError(t, c.Get(context.Background(), []*ArtifactDownload{download}, nil))

	var notFound *artifact.NotFoundError
	assert.ErrorAs(t, download.Exception, &notFound)
}

func TestFilesystemConnectorExistenceCheckDoesNotCopy(t *testing.T) {
	remoteDir := t.TempDir()
	a := widget("1.0")
	src := localrepo.Layout(remoteDir, a, false)
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("jar-bytes"), 0o644))

	dst := filepath.Join(t.TempDir(), "out.jar")
	download := &ArtifactDownload{Artifact: a, File: dst, ExistenceCheck: true}

	c := NewFilesystemConnector(remoteDir)
	require.NoError(t, c.Get(context.Background(), []*ArtifactDownload{download}, nil))
	require.NoError(t, download.Exception)
	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err), "existence-check-only downloads must not write the destination")
}

func TestFilesystemConnectorPutCopiesToBackingStore(t *testing.T) {
	remoteDir := t.TempDir()
	a := widget("1.0")

	srcFile := filepath.Join(t.TempDir(), "widget-1.0.jar")
	require.NoError(t, os.WriteFile(srcFile, []byte("published"), 0o644))

	c := NewFilesystemConnector(remoteDir)
	upload := &Upload{Artifact: a, File: srcFile}
	require.NoError(t, c.Put(context.Background(), []*Upload{upload}))
	require.NoError(t, upload.Exception)

	data, err := os.ReadFile(localrepo.Layout(remoteDir, a, false))
	require.NoError(t, err)
	assert.Equal(t, "published", string(data))
}

func TestThrottledFilesystemConnectorWaitsBetweenTransfers(t *testing.T) {
	remoteDir := t.TempDir()
	for _, v := range []string{"1.0", "2.0"} {
		a := widget(v)
		src := localrepo.Layout(remoteDir, a, false)
		require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
		require.NoError(t, os.WriteFile(src, []byte("jar-bytes"), 0o644))
	}

	// One token up front, refilled too slowly to serve a second download
	// inside the deadline below — the second Get must fail with the
	// limiter's context-deadline error rather than transfer immediately.
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	c := NewThrottledFilesystemConnector(remoteDir, limiter)

	dst1 := filepath.Join(t.TempDir(), "out1.jar")
	require.NoError(t, c.Get(context.Background(), []*ArtifactDownload{{Artifact: widget("1.0"), File: dst1}}, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	dst2 := filepath.Join(t.TempDir(), "out2.jar")
	download2 := &ArtifactDownload{Artifact: widget("2.0"), File: dst2}
	require.NoError(t, c.Get(ctx, []*ArtifactDownload{download2}, nil))
	assert.Error(t, download2.Exception, "second transfer should be throttled past the context deadline")
}
