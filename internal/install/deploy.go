package install

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
	"github.com/vitaliisemenov/artifactrepo/internal/events"
	"github.com/vitaliisemenov/artifactrepo/internal/offline"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

// DeployRequest is one artifact (plus any attached metadata) to publish to a
// remote repository.
type DeployRequest struct {
	Artifact       artifact.Artifact
	Metadata       []artifact.Metadata
	Repository     *artifact.RemoteRepository
	RequestContext string
}

// DeployResult is the outcome of publishing one DeployRequest.
type DeployResult struct {
	Request   DeployRequest
	Exception error
}

// Deployer publishes already-built artifacts to a remote repository via a
// RepositoryConnector — the distinct counterpart to Installer, supplementing
// the resolution engine with the write path the distilled scope omitted.
type Deployer struct {
	connectors connector.Factory
	offline    *offline.Controller
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// NewDeployer creates a Deployer.
func NewDeployer(connectors connector.Factory, off *offline.Controller, dispatcher *events.Dispatcher, logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = slog.Default()
	}
	if dispatcher == nil {
		dispatcher = events.NewDispatcher(logger, nil)
	}
	return &Deployer{connectors: connectors, offline: off, dispatcher: dispatcher, logger: logger}
}

// Deploy publishes each request's artifact and metadata files, grouping
// requests to the same repository into a single connector.Put call.
func (d *Deployer) Deploy(ctx context.Context, s *session.Session, requests []DeployRequest) ([]*DeployResult, error) {
	results := make([]*DeployResult, len(requests))
	for i, req := range requests {
		results[i] = &DeployResult{Request: req}
	}

	type batch struct {
		repo  *artifact.RemoteRepository
		items []int
	}
	var batches []*batch
	for i, req := range requests {
		coord := coordString(req.Artifact.Coordinates)
		d.dispatcher.Dispatch(events.New(events.ArtifactDeploying, coord, repositoryID(req.Repository)))

		if req.Repository == nil {
			results[i].Exception = fmt.Errorf("deploy: %s has no target repository", coord)
			continue
		}
		if d.offline != nil {
			if err := d.offline.Check(s, req.Repository); err != nil {
				results[i].Exception = err
				continue
			}
		}

		var b *batch
		for _, candidate := range batches {
			if candidate.repo.Equivalent(req.Repository) {
				b = candidate
				break
			}
		}
		if b == nil {
			b = &batch{repo: req.Repository}
			batches = append(batches, b)
		}
		b.items = append(b.items, i)
	}

	var failed int
	for _, b := range batches {
		d.runBatch(ctx, requests, results, b.repo, b.items)
	}
	for i, res := range results {
		coord := coordString(requests[i].Artifact.Coordinates)
		ev := events.New(events.ArtifactDeployed, coord, repositoryID(requests[i].Repository))
		ev.Exception = res.Exception
		d.dispatcher.Dispatch(ev)
		if res.Exception != nil {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("deploy: %d of %d artifact(s) failed", failed, len(results))
	}
	return results, nil
}

func (d *Deployer) runBatch(ctx context.Context, requests []DeployRequest, results []*DeployResult, repo *artifact.RemoteRepository, indices []int) {
	conn, err := d.connectors.NewConnector(repo)
	if err != nil {
		noConn := &artifact.NoConnectorError{Repository: repo.ID}
		for _, i := range indices {
			results[i].Exception = noConn
		}
		return
	}
	defer conn.Close()

	var uploads []*connector.Upload
	uploadIndex := map[*connector.Upload]int{}
	for _, i := range indices {
		req := requests[i]
		if req.Artifact.File != "" {
			a := req.Artifact
			u := &connector.Upload{Artifact: &a, File: req.Artifact.File}
			uploads = append(uploads, u)
			uploadIndex[u] = i
		}
		for _, m := range req.Metadata {
			meta := m
			u := &connector.Upload{Metadata: &meta, File: m.File}
			uploads = append(uploads, u)
			uploadIndex[u] = i
		}
	}

	if err := conn.Put(ctx, uploads); err != nil {
		for _, i := range indices {
			if results[i].Exception == nil {
				results[i].Exception = &artifact.DeploymentError{Coordinates: coordString(requests[i].Artifact.Coordinates), Repository: repo.ID, Cause: err}
			}
		}
		return
	}

	for _, u := range uploads {
		if u.Exception == nil {
			continue
		}
		i := uploadIndex[u]
		if results[i].Exception == nil {
			results[i].Exception = &artifact.DeploymentError{Coordinates: coordString(requests[i].Artifact.Coordinates), Repository: repo.ID, Cause: u.Exception}
		}
	}
}

func repositoryID(r *artifact.RemoteRepository) string {
	if r == nil {
		return ""
	}
	return r.ID
}
