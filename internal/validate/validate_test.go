package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
)

func TestCoordinatesRequiresGroupArtifactVersion(t *testing.T) {
	assert.NoError(t, Coordinates(artifact.Coordinates{GroupID: "com.example", ArtifactID: "widget", Version: "1.0"}))
	assert.Error(t, Coordinates(artifact.Coordinates{ArtifactID: "widget", Version: "1.0"}))
	assert.Error(t, Coordinates(artifact.Coordinates{GroupID: "com.example", Version: "1.0"}))
	assert.Error(t, Coordinates(artifact.Coordinates{GroupID: "com.example", ArtifactID: "widget"}))
}

func TestRemoteRepositoryRequiresIDAndValidURL(t *testing.T) {
	assert.NoError(t, RemoteRepository(&artifact.RemoteRepository{ID: "central", URL: "https://repo.example.test/maven2"}))
	assert.Error(t, RemoteRepository(&artifact.RemoteRepository{URL: "https://repo.example.test/maven2"}))
	assert.Error(t, RemoteRepository(&artifact.RemoteRepository{ID: "central", URL: "not-a-url"}))
}
