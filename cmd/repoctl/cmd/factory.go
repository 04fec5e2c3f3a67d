package cmd

import (
	"fmt"
	"strings"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/config"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
)

// fileRemoteFactory maps each configured remote to its own
// connector.FilesystemConnector rooted at the path named by the remote's
// "file://" URL, so a multi-remote invocation exercises distinct backing
// directories instead of connector.FilesystemFactory's single shared one.
type fileRemoteFactory struct {
	paths map[string]string
}

func newFileRemoteFactory(cfg *config.Config) connector.Factory {
	paths := make(map[string]string, len(cfg.Remotes))
	for _, rc := range cfg.Remotes {
		if path, ok := strings.CutPrefix(rc.URL, "file://"); ok {
			paths[rc.ID] = path
		}
	}
	return fileRemoteFactory{paths: paths}
}

func (f fileRemoteFactory) NewConnector(remote *artifact.RemoteRepository) (connector.RepositoryConnector, error) {
	path, ok := f.paths[remote.ID]
	if !ok {
		return nil, fmt.Errorf("factory: remote %q has no file:// url configured", remote.ID)
	}
	return connector.NewFilesystemConnector(path), nil
}

var _ connector.Factory = fileRemoteFactory{}
