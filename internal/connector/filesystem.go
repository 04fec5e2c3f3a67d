package connector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
)

// FilesystemConnector serves "remote" artifacts and metadata out of a plain
// directory tree laid out the same way the local repository manager lays
// out its own cache. It stands in for a real HTTP/file transport in tests
// and the demo CLI.
type FilesystemConnector struct {
	baseDir string
	fp      FileProcessor
	limiter *rate.Limiter
}

// NewFilesystemConnector creates a connector rooted at baseDir, transferring
// without throttling.
func NewFilesystemConnector(baseDir string) *FilesystemConnector {
	return &FilesystemConnector{baseDir: baseDir, fp: OSFileProcessor{}}
}

// NewThrottledFilesystemConnector creates a connector that waits on limiter
// before each file transfer, simulating a slow remote so callers can
// exercise batching and cross-session caching under realistic latency.
func NewThrottledFilesystemConnector(baseDir string, limiter *rate.Limiter) *FilesystemConnector {
	return &FilesystemConnector{baseDir: baseDir, fp: OSFileProcessor{}, limiter: limiter}
}

func (c *FilesystemConnector) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *FilesystemConnector) sourcePath(a *artifact.Artifact) string {
	return localrepo.Layout(c.baseDir, a, false)
}

func (c *FilesystemConnector) sourceMetadataPath(m *artifact.Metadata) string {
	return localrepo.MetadataLayout(c.baseDir, m)
}

// Get copies each requested artifact/metadata file out of the backing
// directory tree into its destination, or performs an existence check only
// when ExistenceCheck is set.
func (c *FilesystemConnector) Get(ctx context.Context, artifacts []*ArtifactDownload, metadata []*MetadataDownload) error {
	for _, d := range artifacts {
		src := c.sourcePath(d.Artifact)
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			d.Exception = &artifact.NotFoundError{Coordinates: coordString(d.Artifact), Repository: c.baseDir}
			continue
		}
		if d.ExistenceCheck {
			continue
		}
		if err := c.wait(ctx); err != nil {
			d.Exception = &artifact.TransferError{Coordinates: coordString(d.Artifact), Repository: c.baseDir, Cause: err}
			continue
		}
		if _, err := c.fp.Copy(ctx, src, d.File); err != nil {
			d.Exception = &artifact.TransferError{Coordinates: coordString(d.Artifact), Repository: c.baseDir, Cause: err}
			continue
		}
		if err := os.Chtimes(d.File, info.ModTime(), info.ModTime()); err != nil {
			d.Exception = &artifact.TransferError{Coordinates: coordString(d.Artifact), Repository: c.baseDir, Cause: err}
		}
	}

	for _, d := range metadata {
		src := c.sourceMetadataPath(d.Metadata)
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			d.Exception = &artifact.NotFoundError{Coordinates: metadataCoordString(d.Metadata), Repository: c.baseDir}
			continue
		}
		if err := c.wait(ctx); err != nil {
			d.Exception = &artifact.TransferError{Coordinates: metadataCoordString(d.Metadata), Repository: c.baseDir, Cause: err}
			continue
		}
		if _, err := c.fp.Copy(ctx, src, d.File); err != nil {
			d.Exception = &artifact.TransferError{Coordinates: metadataCoordString(d.Metadata), Repository: c.baseDir, Cause: err}
		}
	}
	return nil
}

// Put copies each upload's local file into the backing directory tree.
func (c *FilesystemConnector) Put(ctx context.Context, uploads []*Upload) error {
	for _, u := range uploads {
		var dst string
		switch {
		case u.Artifact != nil:
			dst = c.sourcePath(u.Artifact)
		case u.Metadata != nil:
			dst = c.sourceMetadataPath(u.Metadata)
		default:
			u.Exception = fmt.Errorf("connector: upload has neither artifact nor metadata")
			continue
		}
		if err := c.fp.MkdirAll(filepath.Dir(dst)); err != nil {
			u.Exception = err
			continue
		}
		if err := c.wait(ctx); err != nil {
			u.Exception = err
			continue
		}
		if _, err := c.fp.Copy(ctx, u.File, dst); err != nil {
			u.Exception = err
		}
	}
	return nil
}

func (c *FilesystemConnector) Close() error { return nil }

func coordString(a *artifact.Artifact) string {
	return fmt.Sprintf("%s:%s:%s", a.GroupID, a.ArtifactID, a.Version)
}

func metadataCoordString(m *artifact.Metadata) string {
	return fmt.Sprintf("%s:%s:%s:%s", m.GroupID, m.ArtifactID, m.Version, m.Key())
}

var _ RepositoryConnector = (*FilesystemConnector)(nil)

// FilesystemFactory produces a FilesystemConnector sharing one baseDir for
// every remote — a deliberately simple stand-in; a production Factory would
// dispatch by remote.URL scheme to separate HTTP/file transports.
type FilesystemFactory struct {
	BaseDir string
}

func (f FilesystemFactory) NewConnector(remote *artifact.RemoteRepository) (RepositoryConnector, error) {
	return NewFilesystemConnector(f.BaseDir), nil
}

var _ Factory = FilesystemFactory{}
