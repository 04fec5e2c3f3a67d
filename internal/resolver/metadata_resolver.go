package resolver

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
	"github.com/vitaliisemenov/artifactrepo/internal/events"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// metadataStatusFilePath is the shared per-directory touch file metadata
// update checks persist to, a sibling of the metadata file itself, distinct
// from the per-artifact ".lastUpdated" convention.
func metadataStatusFilePath(file string) string {
	return filepath.Join(filepath.Dir(file), "resolver-status.properties")
}

// ResolveMetadata mirrors ArtifactResolver.ResolveArtifacts for metadata
// descriptors: local lookup, grouped remote download, no workspace or
// version-resolution steps.
func (mr *MetadataResolver) ResolveMetadata(ctx context.Context, s *session.Session, requests []MetadataRequest) ([]*MetadataResult, error) {
	results := make([]*MetadataResult, len(requests))
	for i, req := range requests {
		results[i] = &MetadataResult{Request: req, Metadata: req.Metadata}
		mr.deps.Dispatcher.Dispatch(events.New(events.MetadataResolving, metadataCoordString(req.Metadata), ""))
	}

	var groups []*metadataGroup

	for i := range requests {
		res := results[i]
		m := &res.Metadata

		remotes := append([]*artifact.RemoteRepository{}, res.Request.Repositories...)

		lrmResult := mr.deps.LocalRepository.FindMetadata(localrepo.MetadataRequest{Metadata: *m})
		if lrmResult.File != "" {
			m.File = lrmResult.File
			if len(remotes) == 0 {
				mr.emitResolved(res)
				continue
			}
		}

		if len(remotes) == 0 {
			if m.File == "" {
				res.Exceptions = append(res.Exceptions, &artifact.NotFoundError{Coordinates: metadataCoordString(*m)})
			}
			continue
		}

		for _, remote := range remotes {
			if err := mr.deps.Offline.Check(s, remote); err != nil {
				res.Exceptions = append(res.Exceptions, err)
				continue
			}
			policy := remote.PolicyFor(m.Nature)
			if !policy.Enabled {
				continue
			}

			g := findOrCreateMetadataGroup(&groups, remote)

			destFile := mr.deps.LocalRepository.PathForRemoteMetadata(m, remote, res.Request.RequestContext)

			if s.Config.ErrorPolicy.Has(artifact.CacheAll) {
				proxyDigest := mr.deps.AuthDigest.Digest(remote)
				check := mr.deps.UpdateCheck.CheckMetadata(s, metadataCoordString(*m), m.Key(), metadataStatusFilePath(destFile), destFile, false, remote, proxyDigest, policy.UpdatePolicy, time.Time{})
				if check.Exception != nil {
					res.Exceptions = append(res.Exceptions, check.Exception)
				}
				if !check.Required {
					continue
				}
			}

			download := &connector.MetadataDownload{Metadata: m, File: destFile}
			g.items = append(g.items, &metadataPendingItem{
				resultIndex: i,
				remote:      remote,
				reqContext:  res.Request.RequestContext,
				download:    download,
			})
		}
	}

	for _, g := range groups {
		mr.runGroup(ctx, s, results, g)
	}

	exceptions := map[string][]error{}
	for _, res := range results {
		if !res.Resolved() {
			exceptions[metadataCoordString(res.Metadata)] = res.Exceptions
		}
		if !res.resolvedEmitted {
			mr.emitResolved(res)
		}
	}
	if len(exceptions) > 0 {
		return results, &artifact.ResolutionError{Kind: "metadata", Exceptions: exceptions}
	}
	return results, nil
}

func (mr *MetadataResolver) runGroup(ctx context.Context, s *session.Session, results []*MetadataResult, g *metadataGroup) {
	conn, err := mr.deps.Connectors.NewConnector(g.representative)
	if err != nil {
		noConn := &artifact.NoConnectorError{Repository: g.representative.ID}
		for _, item := range g.items {
			results[item.resultIndex].Exceptions = append(results[item.resultIndex].Exceptions, noConn)
		}
		return
	}
	defer conn.Close()

	downloads := make([]*connector.MetadataDownload, len(g.items))
	for i, item := range g.items {
		downloads[i] = item.download
		res := results[item.resultIndex]
		mr.deps.Dispatcher.Dispatch(events.New(events.MetadataDownloading, metadataCoordString(res.Metadata), g.representative.ID))
	}

	if err := conn.Get(ctx, nil, downloads); err != nil {
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
		mr.evaluate(s, res, item)
	}
}

func (mr *MetadataResolver) evaluate(s *session.Session, res *MetadataResult, item *metadataPendingItem) {
	download := item.download
	proxyDigest := mr.deps.AuthDigest.Digest(item.remote)

	if touchErr := mr.deps.UpdateCheck.TouchMetadata(s, metadataCoordString(res.Metadata), res.Metadata.Key(), metadataStatusFilePath(download.File), download.File, item.remote, proxyDigest, download.Exception); touchErr != nil {
		mr.deps.Logger.Warn("resolver: failed to persist metadata update-check outcome", "file", download.File, "error", touchErr)
	}

	ev := events.New(events.MetadataDownloaded, metadataCoordString(res.Metadata), item.remote.ID)
	ev.File = download.File

	if download.Exception != nil {
		res.Exceptions = append(res.Exceptions, download.Exception)
		ev.Exception = download.Exception
		mr.deps.Dispatcher.Dispatch(ev)
		return
	}

	res.Metadata.File = download.File
	res.Repository = item.remote
	mr.deps.Dispatcher.Dispatch(ev)

	_ = mr.deps.LocalRepository.AddMetadata(localrepo.MetadataRegistration{
		Metadata:   res.Metadata,
		File:       download.File,
		Repository: item.remote,
	})

	mr.emitResolved(res)
}

func (mr *MetadataResolver) emitResolved(res *MetadataResult) {
	if res.resolvedEmitted {
		return
	}
	res.resolvedEmitted = true
	repo := ""
	if res.Repository != nil {
		repo = res.Repository.ID
	}
	ev := events.New(events.MetadataResolved, metadataCoordString(res.Metadata), repo)
	ev.File = res.Metadata.File
	if len(res.Exceptions) > 0 {
		ev.Exception = errors.Join(res.Exceptions...)
	}
	mr.deps.Dispatcher.Dispatch(ev)
}
