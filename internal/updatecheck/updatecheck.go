// Package updatecheck answers "does this cached-but-possibly-stale artifact
// or metadata item need to be re-fetched?" using persisted touch records and
// an in-session memo, and persists the outcome of each fetch for future runs.
package updatecheck

import (
	"errors"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
	"github.com/vitaliisemenov/artifactrepo/internal/trackingstore"
	"github.com/vitaliisemenov/artifactrepo/internal/updatepolicy"
)

// Check is the input to a single required/not-required decision.
type Check struct {
	// Coordinates is used only for logging and synthesized exceptions.
	Coordinates string

	File             string
	FileValid        bool
	Repository       *artifact.RemoteRepository
	Policy           string
	LocalLastUpdated time.Time

	// DataKey/TransferKey/TouchFilePath/UpdateKey are precomputed by
	// CheckArtifact/CheckMetadata and TouchArtifact/TouchMetadata below;
	// callers assembling a Check by hand
	// (e.g. tests) may set them directly.
	DataKey       string
	TransferKey   string
	TouchFilePath string
	UpdateKey     string
}

// Result is the outcome of a required/not-required decision.
type Result struct {
	Required  bool
	Exception error
}

// Manager implements the update-check decision and its persistence.
type Manager struct {
	store  *trackingstore.Store
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Manager. now defaults to time.Now; tests may override it to
// make policy boundaries deterministic.
func New(logger *slog.Logger, now func() time.Time) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{store: trackingstore.New(logger), now: now, logger: logger}
}

// ArtifactDataKey is the remote URL followed, for a repository manager, by
// its sorted mirrored URLs, '+'-joined. The URL is used as configured; no
// URL normalization is applied.
func ArtifactDataKey(remote *artifact.RemoteRepository) string {
	urls := []string{remote.URL}
	if remote.IsRepositoryManager {
		mirrors := append([]string{}, remote.MirroredURLs...)
		sort.Strings(mirrors)
		urls = append(urls, mirrors...)
	}
	return strings.Join(urls, "+")
}

// ArtifactTransferKey encodes the full (proxy, auth-digest, contentType,
// URL) identity of the remote, so a fresh retry is allowed the moment
// authentication or mirroring changes.
func ArtifactTransferKey(remote *artifact.RemoteRepository, proxyDigest string) string {
	return strings.Join([]string{proxyDigest, remote.AuthDigest, remote.ContentType, remote.URL}, "|")
}

// MetadataDataKey is just the filename — intentionally ignoring the
// repository URL, so two remotes publishing metadata with an identical
// filename share one cache record (see DESIGN.md).
func MetadataDataKey(filename string) string {
	return filename
}

// UpdateKey is the session-memo key for a (file, remote) pair.
func UpdateKey(fileAbsPath, repoKey string) string {
	return fileAbsPath + "|" + repoKey
}

// CheckArtifact answers the required/not-required question for one artifact
// download, wiring together ArtifactDataKey/ArtifactTransferKey/UpdateKey
// and the artifact touch-file path convention ("<file>.lastUpdated").
func (m *Manager) CheckArtifact(s *session.Session, coordinates, file string, fileValid bool, remote *artifact.RemoteRepository, proxyDigest, policy string, localLastUpdated time.Time) Result {
	c := Check{
		Coordinates:      coordinates,
		File:             file,
		FileValid:        fileValid,
		Repository:       remote,
		Policy:           policy,
		LocalLastUpdated: localLastUpdated,
		DataKey:          ArtifactDataKey(remote),
		TransferKey:      ArtifactTransferKey(remote, proxyDigest),
		TouchFilePath:    file + ".lastUpdated",
		UpdateKey:        UpdateKey(file, remote.ID),
	}
	return m.check(s, c)
}

// TouchArtifact persists outcome for the same (file, remote) pair addressed
// by an earlier CheckArtifact call.
func (m *Manager) TouchArtifact(s *session.Session, coordinates, file string, remote *artifact.RemoteRepository, proxyDigest string, outcome error) error {
	c := Check{
		Coordinates:   coordinates,
		File:          file,
		Repository:    remote,
		DataKey:       ArtifactDataKey(remote),
		TransferKey:   ArtifactTransferKey(remote, proxyDigest),
		TouchFilePath: file + ".lastUpdated",
		UpdateKey:     UpdateKey(file, remote.ID),
	}
	return m.touch(s, c, outcome)
}

// CheckMetadata is CheckArtifact's counterpart for metadata, whose touch
// file is the shared "resolver-status.properties" sibling file rather than
// a per-artifact ".lastUpdated" file.
func (m *Manager) CheckMetadata(s *session.Session, coordinates, filename, statusFilePath, file string, fileValid bool, remote *artifact.RemoteRepository, proxyDigest, policy string, localLastUpdated time.Time) Result {
	c := Check{
		Coordinates:      coordinates,
		File:             file,
		FileValid:        fileValid,
		Repository:       remote,
		Policy:           policy,
		LocalLastUpdated: localLastUpdated,
		DataKey:          MetadataDataKey(filename),
		TransferKey:      ArtifactTransferKey(remote, proxyDigest),
		TouchFilePath:    statusFilePath,
		UpdateKey:        UpdateKey(file, remote.ID),
	}
	return m.check(s, c)
}

func (m *Manager) TouchMetadata(s *session.Session, coordinates, filename, statusFilePath, file string, remote *artifact.RemoteRepository, proxyDigest string, outcome error) error {
	c := Check{
		Coordinates:   coordinates,
		File:          file,
		Repository:    remote,
		DataKey:       MetadataDataKey(filename),
		TransferKey:   ArtifactTransferKey(remote, proxyDigest),
		TouchFilePath: statusFilePath,
		UpdateKey:     UpdateKey(file, remote.ID),
	}
	return m.touch(s, c, outcome)
}

func (m *Manager) check(s *session.Session, c Check) Result {
	now := m.now()

	if !c.LocalLastUpdated.IsZero() && !updatepolicy.IsUpdateRequired(now, c.LocalLastUpdated, c.Policy) {
		return Result{Required: false}
	}

	fileExists := c.FileValid && statOK(c.File)

	record := m.store.Read(c.TouchFilePath)
	// Touch stores a not-found outcome under DataKey (the logical location)
	// and a transport failure under TransferKey (the credentials/proxy path
	// in effect at the time), clearing the other — so DataKey is checked
	// first, and TransferKey only when DataKey carries nothing.
	_, notFoundPresent := record[c.DataKey+".error"]
	transferErrVal, transferErrPresent := record[c.TransferKey+".error"]
	errPresent := notFoundPresent || transferErrPresent

	var lastUpdated time.Time
	switch {
	case fileExists:
		lastUpdated = modTime(c.File)
	case notFoundPresent:
		lastUpdated = parseTimestamp(record[c.DataKey+".lastUpdated"])
	case transferErrPresent:
		lastUpdated = parseTimestamp(record[c.TransferKey+".lastUpdated"])
	default:
		lastUpdated = time.Time{}
	}

	if s.Config.UpdateCheckSessionState != session.UpdateCheckBypass {
		if v, ok := s.Memo().Load(c.UpdateKey); ok {
			return v.(Result)
		}
	}

	if lastUpdated.IsZero() {
		return Result{Required: true}
	}
	if updatepolicy.IsUpdateRequired(now, lastUpdated, c.Policy) {
		return Result{Required: true}
	}
	if fileExists {
		return Result{Required: false}
	}

	if !errPresent {
		if s.Config.ErrorPolicy.Has(artifact.CacheNotFound) {
			return Result{Required: false, Exception: &artifact.NotFoundError{Coordinates: c.Coordinates, Repository: repositoryID(c.Repository), Cached: true}}
		}
		return Result{Required: true}
	}
	if notFoundPresent {
		if s.Config.ErrorPolicy.Has(artifact.CacheNotFound) {
			return Result{Required: false, Exception: &artifact.NotFoundError{Coordinates: c.Coordinates, Repository: repositoryID(c.Repository), Cached: true}}
		}
		return Result{Required: true}
	}
	if s.Config.ErrorPolicy.Has(artifact.CacheTransferError) {
		return Result{Required: false, Exception: &artifact.TransferError{Coordinates: c.Coordinates, Repository: repositoryID(c.Repository), Cached: true, Cause: errors.New(transferErrVal)}}
	}
	return Result{Required: true}
}

func repositoryID(r *artifact.RemoteRepository) string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (m *Manager) touch(s *session.Session, c Check, outcome error) error {
	now := formatTimestamp(m.now())
	empty := ""

	updates := map[string]*string{}
	var memoResult Result

	var notFound *artifact.NotFoundError
	switch {
	case outcome == nil:
		updates[c.DataKey+".lastUpdated"] = &now
		updates[c.DataKey+".error"] = nil
		updates[c.TransferKey+".lastUpdated"] = nil
		updates[c.TransferKey+".error"] = nil
		memoResult = Result{Required: false}

	case errors.As(outcome, &notFound):
		updates[c.DataKey+".lastUpdated"] = &now
		updates[c.DataKey+".error"] = &empty
		updates[c.TransferKey+".lastUpdated"] = nil
		updates[c.TransferKey+".error"] = nil
		memoResult = Result{Required: false, Exception: &artifact.NotFoundError{Coordinates: c.Coordinates, Repository: repositoryID(c.Repository), Cached: true}}

	default:
		msg := outcome.Error()
		updates[c.TransferKey+".lastUpdated"] = &now
		updates[c.TransferKey+".error"] = &msg
		updates[c.DataKey+".lastUpdated"] = nil
		updates[c.DataKey+".error"] = nil
		memoResult = Result{Required: false, Exception: &artifact.TransferError{Coordinates: c.Coordinates, Repository: repositoryID(c.Repository), Cached: true, Cause: outcome}}
	}

	record, err := m.store.Update(c.TouchFilePath, updates)
	if err != nil {
		return err
	}

	if statOK(c.File) && !hasErrorKey(record) {
		if err := m.store.Delete(c.TouchFilePath); err != nil {
			m.logger.Warn("update check: failed to delete spent touch file", "path", c.TouchFilePath, "error", err)
		}
	}

	s.Memo().Store(c.UpdateKey, memoResult)
	return nil
}

func hasErrorKey(record map[string]string) bool {
	for k := range record {
		if strings.HasSuffix(k, ".error") {
			return true
		}
	}
	return false
}

func statOK(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func formatTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// parseTimestamp returns 1 (a non-zero sentinel) on a malformed timestamp,
// matching DefaultUpdateCheckManager.getLastUpdated in the source system:
// the sentinel subtly suppresses "first attempt" treatment even when the
// persisted value is unreadable. Preserved deliberately.
func parseTimestamp(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.UnixMilli(1)
	}
	return time.UnixMilli(ms)
}
