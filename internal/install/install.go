// Package install implements local installation and remote publishing: the
// last two operations of the resolution engine, copying an already-built
// artifact into the local repository or pushing it to a remote via a
// RepositoryConnector.
package install

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
	"github.com/vitaliisemenov/artifactrepo/internal/events"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
	"github.com/vitaliisemenov/artifactrepo/internal/syncctx"
)

// Request is one artifact (plus any attached metadata) to install.
type Request struct {
	Artifact       artifact.Artifact
	Metadata       []artifact.Metadata
	RequestContext string
}

// Result is the outcome of installing one Request.
type Result struct {
	Request   Request
	Artifact  artifact.Artifact
	Exception error
}

// Installer copies already-built artifacts into the local repository.
type Installer struct {
	lrm        localrepo.Manager
	syncctx    *syncctx.Factory
	fp         connector.FileProcessor
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// NewInstaller creates an Installer. fp defaults to connector.OSFileProcessor
// and dispatcher to a private no-listener Dispatcher when nil.
func NewInstaller(lrm localrepo.Manager, sf *syncctx.Factory, fp connector.FileProcessor, dispatcher *events.Dispatcher, logger *slog.Logger) *Installer {
	if fp == nil {
		fp = connector.OSFileProcessor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if dispatcher == nil {
		dispatcher = events.NewDispatcher(logger, nil)
	}
	return &Installer{lrm: lrm, syncctx: sf, fp: fp, dispatcher: dispatcher, logger: logger}
}

// Install validates and copies each request's source file into the local
// repository, holding one SyncContext across the whole batch.
func (inst *Installer) Install(ctx context.Context, s *session.Session, requests []Request) ([]*Result, error) {
	results := make([]*Result, len(requests))
	for i, req := range requests {
		results[i] = &Result{Request: req, Artifact: req.Artifact}
	}

	if inst.syncctx != nil {
		syncCtx, err := inst.acquire(requests)
		if err != nil {
			for _, res := range results {
				res.Exception = err
			}
			return results, err
		}
		defer syncCtx.Close()
	}

	var failed int
	for _, res := range results {
		inst.installOne(s, res)
		if res.Exception != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("install: %d of %d artifact(s) failed", failed, len(results))
	}
	return results, nil
}

func (inst *Installer) acquire(requests []Request) (*syncctx.Context, error) {
	coords := make([]artifact.Coordinates, len(requests))
	for i, req := range requests {
		coords[i] = req.Artifact.Coordinates
	}
	return inst.syncctx.NewContext(false, coords, nil)
}

func (inst *Installer) installOne(s *session.Session, res *Result) {
	a := &res.Artifact
	coord := coordString(a.Coordinates)

	inst.dispatcher.Dispatch(events.New(events.ArtifactInstalling, coord, ""))

	if a.File == "" {
		res.Exception = &artifact.InstallationError{Coordinates: coord, Cause: fmt.Errorf("install: source file not set")}
		inst.emitInstalled(res)
		return
	}
	info, err := os.Stat(a.File)
	if err != nil {
		res.Exception = &artifact.InstallationError{Coordinates: coord, Cause: err}
		inst.emitInstalled(res)
		return
	}
	if info.IsDir() {
		res.Exception = &artifact.InstallationError{Coordinates: coord, Cause: fmt.Errorf("install: source %s is a directory", a.File)}
		inst.emitInstalled(res)
		return
	}

	dest := inst.lrm.PathForLocalArtifact(a)
	if dest != a.File {
		if err := inst.fp.MkdirAll(filepath.Dir(dest)); err != nil {
			res.Exception = &artifact.InstallationError{Coordinates: coord, Cause: err}
			inst.emitInstalled(res)
			return
		}
		if _, err := inst.fp.Copy(context.Background(), a.File, dest); err != nil {
			res.Exception = &artifact.InstallationError{Coordinates: coord, Cause: err}
			inst.emitInstalled(res)
			return
		}
		if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
			inst.logger.Warn("install: failed to preserve source mtime", "file", dest, "error", err)
		}
	}
	a.File = dest

	if err := inst.lrm.AddArtifact(localrepo.ArtifactRegistration{
		Artifact:   *a,
		File:       dest,
		ReqContext: res.Request.RequestContext,
	}); err != nil {
		inst.logger.Warn("install: failed to register artifact availability", "file", dest, "error", err)
	}

	for _, m := range res.Request.Metadata {
		inst.installMetadata(&m)
	}

	inst.emitInstalled(res)
}

func (inst *Installer) installMetadata(m *artifact.Metadata) {
	if m.File == "" {
		return
	}
	dest := inst.lrm.PathForLocalMetadata(m)
	if dest == m.File {
		return
	}
	if err := inst.fp.MkdirAll(filepath.Dir(dest)); err != nil {
		inst.logger.Warn("install: failed to create metadata directory", "file", dest, "error", err)
		return
	}
	if _, err := inst.fp.Copy(context.Background(), m.File, dest); err != nil {
		inst.logger.Warn("install: failed to install metadata", "file", dest, "error", err)
		return
	}
	m.File = dest
	if err := inst.lrm.AddMetadata(localrepo.MetadataRegistration{Metadata: *m, File: dest}); err != nil {
		inst.logger.Warn("install: failed to register metadata availability", "file", dest, "error", err)
	}
}

func (inst *Installer) emitInstalled(res *Result) {
	ev := events.New(events.ArtifactInstalled, coordString(res.Artifact.Coordinates), "")
	ev.File = res.Artifact.File
	ev.Exception = res.Exception
	inst.dispatcher.Dispatch(ev)
}

func coordString(c artifact.Coordinates) string {
	s := fmt.Sprintf("%s:%s", c.GroupID, c.ArtifactID)
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "" {
		s += ":" + c.Extension
	}
	return s + ":" + c.Version
}

