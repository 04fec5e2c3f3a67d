// Package events defines the lifecycle events emitted during resolution,
// installation, and deployment, and the two ways callers can observe them:
// a synchronous Dispatcher for collaborators that must see every event in
// order, and an asynchronous Bus for decoupled consumers such as a CLI
// watch mode.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the lifecycle stage an Event describes.
type Type string

const (
	ArtifactResolving   Type = "artifact_resolving"
	ArtifactResolved    Type = "artifact_resolved"
	ArtifactDownloading Type = "artifact_downloading"
	ArtifactDownloaded  Type = "artifact_downloaded"
	ArtifactNotFound    Type = "artifact_not_found"
	ArtifactInstalling  Type = "artifact_installing"
	ArtifactInstalled   Type = "artifact_installed"
	ArtifactDeploying   Type = "artifact_deploying"
	ArtifactDeployed    Type = "artifact_deployed"

	MetadataResolving   Type = "metadata_resolving"
	MetadataResolved    Type = "metadata_resolved"
	MetadataDownloading Type = "metadata_downloading"
	MetadataDownloaded  Type = "metadata_downloaded"
	MetadataInvalid     Type = "metadata_invalid"
	MetadataInstalling  Type = "metadata_installing"
	MetadataInstalled   Type = "metadata_installed"
	MetadataDeploying   Type = "metadata_deploying"
	MetadataDeployed    Type = "metadata_deployed"
)

// Event is one occurrence in a resolution, install, or deploy pipeline.
type Event struct {
	Type        Type
	ID          string
	Coordinates string
	Repository  string
	File        string
	Exception   error
	Timestamp   time.Time
	Sequence    int64
}

// New creates an Event of the given type, stamping a fresh ID and timestamp.
func New(t Type, coordinates, repository string) Event {
	return Event{
		Type:        t,
		ID:          uuid.New().String(),
		Coordinates: coordinates,
		Repository:  repository,
		Timestamp:   time.Now(),
	}
}
