package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/artifactrepo/internal/events"
)

func newTestResolverForSnapshot(deps Deps) *ArtifactResolver {
	deps.Dispatcher = events.NewDispatcher(nil, nil)
	return NewArtifactResolver(deps)
}

func TestNormalizeSnapshotCopiesTimestampedToBaseName(t *testing.T) {
	ar := newTestResolverForSnapshot(Deps{})
	dir := t.TempDir()

	a := widget("1.0-SNAPSHOT")
	a.Version = "1.0-20200101.010101-1"
	a.BaseVersionOverride = "1.0-SNAPSHOT"

	downloaded := filepath.Join(dir, a.FileName(false))
	require.NoError(t, os.WriteFile(downloaded, []byte("payload"), 0o644))
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(downloaded, mtime, mtime))

	ar.normalizeSnapshot(&a, downloaded)

	baseFile := filepath.Join(dir, a.FileName(true))
	data, err := os.ReadFile(baseFile)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	info, err := os.Stat(baseFile)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestNormalizeSnapshotSkipsCopyWhenAlreadyIdentical(t *testing.T) {
	dir := t.TempDir()

	a := widget("1.0-SNAPSHOT")
	a.Version = "1.0-20200101.010101-1"
	a.BaseVersionOverride = "1.0-SNAPSHOT"

	downloaded := filepath.Join(dir, a.FileName(false))
	require.NoError(t, os.WriteFile(downloaded, []byte("payload"), 0o644))
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(downloaded, mtime, mtime))

	baseFile := filepath.Join(dir, a.FileName(true))
	require.NoError(t, os.WriteFile(baseFile, []byte("payload"), 0o644))
	require.NoError(t, os.Chtimes(baseFile, mtime, mtime))

	// A FileProcessor that panics on Copy proves the skip path never invokes
	// it once size+mtime already match.
	ar := newTestResolverForSnapshot(Deps{FileProcessor: failingCopyProcessor{}})
	ar.normalizeSnapshot(&a, downloaded)

	data, err := os.ReadFile(baseFile)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

type failingCopyProcessor struct{}

func (failingCopyProcessor) Copy(ctx context.Context, src, dst string) (int64, error) {
	panic("Copy must not be called when files are already identical")
}
func (failingCopyProcessor) Move(src, dst string) error           { return nil }
func (failingCopyProcessor) MkdirAll(dir string) error            { return nil }
func (failingCopyProcessor) Write(file string, data []byte) error { return nil }
