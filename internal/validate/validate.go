// Package validate checks artifact coordinates and remote repository
// configuration for well-formedness before they enter the resolution
// pipeline, using struct tags on the core artifact types.
package validate

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
)

var v = validator.New()

// Coordinates validates that c names a group, artifact id, and version.
func Coordinates(c artifact.Coordinates) error {
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid coordinates %s:%s:%s: %w", c.GroupID, c.ArtifactID, c.Version, err)
	}
	return nil
}

// RemoteRepository validates that r names an id and a well-formed URL.
func RemoteRepository(r *artifact.RemoteRepository) error {
	if err := v.Struct(r); err != nil {
		return fmt.Errorf("invalid remote repository %s: %w", r.ID, err)
	}
	return nil
}
