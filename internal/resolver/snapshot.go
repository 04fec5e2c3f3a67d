package resolver

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
)

// normalizeSnapshot copies a freshly downloaded timestamped snapshot file
// ("widget-1.0-20200101.010101-1.jar") to its base-named sibling
// ("widget-1.0-SNAPSHOT.jar"), skipping the copy when the sibling already has
// the same size and modification time.
func (ar *ArtifactResolver) normalizeSnapshot(a *artifact.Artifact, downloadedFile string) {
	if !a.IsSnapshot() {
		return
	}
	baseFileName := a.FileName(true)
	actualFileName := a.FileName(false)
	if baseFileName == actualFileName {
		return
	}

	srcInfo, err := os.Stat(downloadedFile)
	if err != nil {
		return
	}

	baseFile := filepath.Join(filepath.Dir(downloadedFile), baseFileName)
	if dstInfo, err := os.Stat(baseFile); err == nil {
		if dstInfo.Size() == srcInfo.Size() && dstInfo.ModTime().Equal(srcInfo.ModTime()) {
			return
		}
	}

	if _, err := ar.deps.FileProcessor.Copy(context.Background(), downloadedFile, baseFile); err != nil {
		ar.deps.Logger.Warn("resolver: failed to normalize snapshot file", "file", downloadedFile, "error", err)
		return
	}
	if err := os.Chtimes(baseFile, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		ar.deps.Logger.Warn("resolver: failed to preserve mtime on normalized snapshot", "file", baseFile, "error", err)
	}
}
