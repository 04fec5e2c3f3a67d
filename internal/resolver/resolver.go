package resolver

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
	"github.com/vitaliisemenov/artifactrepo/internal/events"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// ResolveArtifacts runs the full pipeline for every request: workspace check,
// local-repository lookup, grouped remote download, and snapshot
// normalization, returning one ArtifactResult per request in input order.
// The returned error is a *artifact.ResolutionError iff at least one result
// still lacks a file once every group has run.
func (ar *ArtifactResolver) ResolveArtifacts(ctx context.Context, s *session.Session, requests []ArtifactRequest) ([]*ArtifactResult, error) {
	results := make([]*ArtifactResult, len(requests))
	for i, req := range requests {
		results[i] = &ArtifactResult{Request: req, Artifact: req.Artifact}
		ar.deps.Dispatcher.Dispatch(events.New(events.ArtifactResolving, coordString(req.Artifact.Coordinates), ""))
	}

	var groups []*group

	for i := range requests {
		res := results[i]
		a := &res.Artifact

		if localPath, ok := a.LocalPath(); ok {
			if info, err := os.Stat(localPath); err != nil || info.IsDir() {
				res.Exceptions = append(res.Exceptions, &artifact.NotFoundError{Coordinates: coordString(a.Coordinates), Repository: ""})
				continue
			}
			a.File = localPath
			ar.emitResolved(res)
			continue
		}

		remotes := append([]*artifact.RemoteRepository{}, res.Request.Repositories...)
		fromLocalRepository := false

		if ar.deps.VersionResolver != nil {
			vr, err := ar.deps.VersionResolver.ResolveVersion(ctx, s, a)
			if err != nil {
				res.Exceptions = append(res.Exceptions, &artifact.VersionResolutionError{Coordinates: coordString(a.Coordinates), Cause: err})
			} else {
				a.Version = vr.Version
				if vr.FromLocalRepository {
					remotes = nil
					fromLocalRepository = true
				} else if vr.Repository != nil {
					remotes = []*artifact.RemoteRepository{vr.Repository}
				}
			}
		}

		if file, ok := ar.deps.Workspace.FindArtifact(a); ok {
			a.File = file
			ar.emitResolved(res)
			continue
		}

		lrmResult := ar.deps.LocalRepository.FindArtifact(s, localrepo.ArtifactRequest{
			Artifact:   *a,
			Remotes:    remotes,
			ReqContext: res.Request.RequestContext,
		})

		isLocallyInstalled := lrmResult.Available ||
			(lrmResult.File != "" && (fromLocalRepository || len(remotes) == 0))

		if lrmResult.File != "" {
			a.File = lrmResult.File
		}
		if isLocallyInstalled {
			res.Repository = lrmResult.Repository
			if !lrmResult.Available {
				_ = ar.deps.LocalRepository.AddArtifact(localrepo.ArtifactRegistration{
					Artifact:   *a,
					File:       a.File,
					Repository: lrmResult.Repository,
					ReqContext: res.Request.RequestContext,
				})
			}
			ar.emitResolved(res)
			continue
		}

		if len(remotes) == 0 {
			res.Exceptions = append(res.Exceptions, &artifact.NotFoundError{Coordinates: coordString(a.Coordinates), Repository: ""})
			continue
		}

		for _, remote := range remotes {
			if err := ar.deps.Offline.Check(s, remote); err != nil {
				res.Exceptions = append(res.Exceptions, err)
				continue
			}
			policy := remote.PolicyFor(natureFor(a))
			if !policy.Enabled {
				continue
			}

			g := findOrCreateGroup(&groups, remote)

			existenceCheck := lrmResult.File != ""
			destFile := lrmResult.File
			if destFile == "" {
				destFile = ar.deps.LocalRepository.PathForRemoteArtifact(a, remote, res.Request.RequestContext)
			}

			if s.Config.ErrorPolicy.Has(artifact.CacheAll) {
				proxyDigest := ar.deps.AuthDigest.Digest(remote)
				check := ar.deps.UpdateCheck.CheckArtifact(s, coordString(a.Coordinates), destFile, existenceCheck, remote, proxyDigest, policy.UpdatePolicy, time.Time{})
				if check.Exception != nil {
					res.Exceptions = append(res.Exceptions, check.Exception)
				}
				if !check.Required {
					continue
				}
			}

			download := &connector.ArtifactDownload{
				Artifact:             a,
				File:                 destFile,
				ExistenceCheck:       existenceCheck,
				ChecksumPolicy:       policy.ChecksumPolicy,
				MirroredRepositories: remote.MirroredSet(),
			}
			g.items = append(g.items, &pendingItem{
				resultIndex: i,
				remote:      remote,
				policy:      policy,
				reqContext:  res.Request.RequestContext,
				download:    download,
			})
		}
	}

	for _, g := range groups {
		ar.runGroup(ctx, s, results, g)
	}

	exceptions := map[string][]error{}
	for _, res := range results {
		if !res.Resolved() {
			exceptions[coordString(res.Artifact.Coordinates)] = res.Exceptions
		}
		if !res.resolvedEmitted {
			ar.emitResolved(res)
		}
	}
	if len(exceptions) > 0 {
		return results, &artifact.ResolutionError{Kind: "artifact", Exceptions: exceptions}
	}
	return results, nil
}

func (ar *ArtifactResolver) runGroup(ctx context.Context, s *session.Session, results []*ArtifactResult, g *group) {
	conn, err := ar.deps.Connectors.NewConnector(g.representative)
	if err != nil {
		noConn := &artifact.NoConnectorError{Repository: g.representative.ID}
		for _, item := range g.items {
			results[item.resultIndex].Exceptions = append(results[item.resultIndex].Exceptions, noConn)
		}
		return
	}
	defer conn.Close()

	downloads := make([]*connector.ArtifactDownload, len(g.items))
	for i, item := range g.items {
		downloads[i] = item.download
		res := results[item.resultIndex]
		ar.deps.Dispatcher.Dispatch(events.New(events.ArtifactDownloading, coordString(res.Artifact.Coordinates), g.representative.ID))
	}

	if err := conn.Get(ctx, downloads, nil); err != nil {
		for _, item := range g.items {
			if item.download.Exception == nil {
				item.download.Exception = err
			}
		}
	}

	for _, item := range g.items {
		res := results[item.resultIndex]
		if res.Resolved() {
			continue
		}
		ar.evaluate(s, res, item)
	}
}

func (ar *ArtifactResolver) evaluate(s *session.Session, res *ArtifactResult, item *pendingItem) {
	download := item.download
	proxyDigest := ar.deps.AuthDigest.Digest(item.remote)

	if touchErr := ar.deps.UpdateCheck.TouchArtifact(s, coordString(res.Artifact.Coordinates), download.File, item.remote, proxyDigest, download.Exception); touchErr != nil {
		ar.deps.Logger.Warn("resolver: failed to persist update-check outcome", "file", download.File, "error", touchErr)
	}

	ev := events.New(events.ArtifactDownloaded, coordString(res.Artifact.Coordinates), item.remote.ID)
	ev.File = download.File

	if download.Exception != nil {
		res.Exceptions = append(res.Exceptions, download.Exception)
		ev.Exception = download.Exception
		ar.deps.Dispatcher.Dispatch(ev)
		return
	}

	res.Artifact.File = download.File
	res.Repository = item.remote
	ar.deps.Dispatcher.Dispatch(ev)

	if s.Config.SnapshotNormalization {
		ar.normalizeSnapshot(&res.Artifact, download.File)
	}

	_ = ar.deps.LocalRepository.AddArtifact(localrepo.ArtifactRegistration{
		Artifact:   res.Artifact,
		File:       download.File,
		Repository: item.remote,
		ReqContext: item.reqContext,
	})

	ar.emitResolved(res)
}

func (ar *ArtifactResolver) emitResolved(res *ArtifactResult) {
	if res.resolvedEmitted {
		return
	}
	res.resolvedEmitted = true
	repo := ""
	if res.Repository != nil {
		repo = res.Repository.ID
	}
	ev := events.New(events.ArtifactResolved, coordString(res.Artifact.Coordinates), repo)
	ev.File = res.Artifact.File
	if len(res.Exceptions) > 0 {
		ev.Exception = errors.Join(res.Exceptions...)
	}
	ar.deps.Dispatcher.Dispatch(ev)
}
