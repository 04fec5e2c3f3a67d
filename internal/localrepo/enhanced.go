package localrepo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
	"github.com/vitaliisemenov/artifactrepo/internal/trackingstore"
)

// sidecarCacheSize bounds the in-memory mirror of parsed sidecar index
// files, so a session touching many directories cannot grow it unbounded.
const sidecarCacheSize = 512

// Enhanced is the enhanced local repository manager: it writes remote
// artifacts to the same path as local installs, like Simple, but maintains
// a per-directory sidecar index (_remote.repositories) recording which
// remotes (and request-contexts) have contributed each file. Find reports
// Available=true only when the index records one of the requested remotes;
// when no remotes are requested, any recorded remote other than a purely
// local install ("") counts.
//
// A bounded LRU mirrors each sidecar index by path, read-through on a cache
// miss and refreshed on every write, so a batch resolution touching the
// same directory repeatedly does not re-parse and re-lock its touch file on
// every lookup.
type Enhanced struct {
	baseDir string
	store   *trackingstore.Store
	cache   *lru.Cache[string, map[string]string]
	logger  *slog.Logger
}

// NewEnhanced creates an Enhanced manager rooted at baseDir.
func NewEnhanced(baseDir string, logger *slog.Logger) *Enhanced {
	logger = newLogger(logger)
	cache, err := lru.New[string, map[string]string](sidecarCacheSize)
	if err != nil {
		// Only returned for a non-positive size, which sidecarCacheSize never is.
		panic(err)
	}
	return &Enhanced{baseDir: baseDir, store: trackingstore.New(logger), cache: cache, logger: logger}
}

// readIndex returns the sidecar index at indexPath, consulting the LRU
// cache before falling back to the tracking store.
func (m *Enhanced) readIndex(indexPath string) map[string]string {
	if index, ok := m.cache.Get(indexPath); ok {
		return index
	}
	index := m.store.Read(indexPath)
	m.cache.Add(indexPath, index)
	return index
}

func (m *Enhanced) BaseDir() string { return m.baseDir }

func (m *Enhanced) PathForLocalArtifact(a *artifact.Artifact) string {
	return artifactPath(m.baseDir, a, true)
}

func (m *Enhanced) PathForLocalMetadata(meta *artifact.Metadata) string {
	return metadataPath(m.baseDir, meta)
}

func (m *Enhanced) PathForRemoteArtifact(a *artifact.Artifact, _ *artifact.RemoteRepository, _ string) string {
	return artifactPath(m.baseDir, a, true)
}

func (m *Enhanced) PathForRemoteMetadata(meta *artifact.Metadata, _ *artifact.RemoteRepository, _ string) string {
	return metadataPath(m.baseDir, meta)
}

func sidecarKey(filename, reqContext string) string {
	if reqContext == "" {
		return filename
	}
	return fmt.Sprintf("%s[%s]", filename, reqContext)
}

func (m *Enhanced) FindArtifact(_ *session.Session, req ArtifactRequest) ArtifactResult {
	path := m.PathForLocalArtifact(&req.Artifact)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ArtifactResult{File: ""}
	}

	dir := filepath.Dir(path)
	index := m.readIndex(sidecarIndexPath(dir))
	key := sidecarKey(req.Artifact.FileName(true), req.ReqContext)
	set := splitSet(index[key])

	if len(req.Remotes) == 0 {
		for id := range set {
			if id != "" {
				return ArtifactResult{File: path, Available: true}
			}
		}
		return ArtifactResult{File: path}
	}

	for _, remote := range req.Remotes {
		if _, ok := set[remote.ID]; ok {
			return ArtifactResult{File: path, Available: true, Repository: remote}
		}
	}
	return ArtifactResult{File: path}
}

func (m *Enhanced) FindMetadata(req MetadataRequest) MetadataResult {
	path := m.PathForLocalMetadata(&req.Metadata)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return MetadataResult{}
	}
	return MetadataResult{File: path}
}

func (m *Enhanced) AddArtifact(reg ArtifactRegistration) error {
	dir := filepath.Dir(reg.File)
	filename := reg.Artifact.FileName(true)
	key := sidecarKey(filename, reg.ReqContext)

	remoteID := ""
	if reg.Repository != nil {
		remoteID = reg.Repository.ID
	}

	indexPath := sidecarIndexPath(dir)
	current := m.readIndex(indexPath)
	set := splitSet(current[key])
	set[remoteID] = struct{}{}
	joined := sortedJoin(set)

	updated, err := m.store.Update(indexPath, map[string]*string{key: &joined})
	if err != nil {
		return fmt.Errorf("localrepo: record artifact availability: %w", err)
	}
	m.cache.Add(indexPath, updated)

	m.logger.Debug("local repository: artifact registered", "group", reg.Artifact.GroupID,
		"artifact", reg.Artifact.ArtifactID, "version", reg.Artifact.Version, "repository", remoteID)
	return nil
}

func (m *Enhanced) AddMetadata(reg MetadataRegistration) error {
	m.logger.Debug("local repository: metadata registered", "group", reg.Metadata.GroupID,
		"artifact", reg.Metadata.ArtifactID, "version", reg.Metadata.Version)
	return nil
}

var _ Manager = (*Enhanced)(nil)
