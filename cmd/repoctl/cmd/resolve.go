package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/resolver"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
)

func newResolveCommand() *cobra.Command {
	var remoteIDs []string
	var requestContext string
	var metadataOnly bool

	cmd := &cobra.Command{
		Use:   "resolve <coordinates>...",
		Short: "Resolve one or more artifacts (or metadata) from the workspace, local cache, or configured remotes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildCLI()
			if err != nil {
				return err
			}
			remotes, err := cli.resolveRemotes(remoteIDs)
			if err != nil {
				return err
			}
			s := cli.newSession("resolve")

			if metadataOnly {
				return cli.runResolveMetadata(cmd, s, args, remotes, requestContext)
			}
			return cli.runResolveArtifacts(cmd, s, args, remotes, requestContext)
		},
	}

	cmd.Flags().StringSliceVar(&remoteIDs, "remote", nil, "restrict resolution to these configured remote ids (default: all configured remotes)")
	cmd.Flags().StringVar(&requestContext, "context", "", "request context distinguishing concurrent build contexts")
	cmd.Flags().BoolVar(&metadataOnly, "metadata", false, "resolve repository metadata instead of artifacts (coordinates are g:a[:v])")
	return cmd
}

func (c *CLI) runResolveArtifacts(cmd *cobra.Command, s *session.Session, coordinateArgs []string, remotes []*artifact.RemoteRepository, requestContext string) error {
	requests := make([]resolver.ArtifactRequest, len(coordinateArgs))
	for i, arg := range coordinateArgs {
		coords, err := parseCoordinates(arg)
		if err != nil {
			return err
		}
		requests[i] = resolver.ArtifactRequest{
			Artifact:       artifact.Artifact{Coordinates: coords},
			Repositories:   remotes,
			RequestContext: requestContext,
		}
	}

	results, err := c.artifactResolver.ResolveArtifacts(context.Background(), s, requests)
	for _, res := range results {
		if res.Resolved() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", coordString(res.Artifact.Coordinates), res.Artifact.File)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> unresolved: %v\n", coordString(res.Request.Artifact.Coordinates), res.Exceptions)
		}
	}
	return err
}

func (c *CLI) runResolveMetadata(cmd *cobra.Command, s *session.Session, coordinateArgs []string, remotes []*artifact.RemoteRepository, requestContext string) error {
	requests := make([]resolver.MetadataRequest, len(coordinateArgs))
	for i, arg := range coordinateArgs {
		m, err := parseMetadataCoordinates(arg)
		if err != nil {
			return err
		}
		requests[i] = resolver.MetadataRequest{
			Metadata:       m,
			Repositories:   remotes,
			RequestContext: requestContext,
		}
	}

	results, err := c.metadataResolver.ResolveMetadata(context.Background(), s, requests)
	for _, res := range results {
		if res.Resolved() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s:%s -> %s\n", res.Metadata.GroupID, res.Metadata.ArtifactID, res.Metadata.Version, res.Metadata.File)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s:%s -> unresolved: %v\n", res.Request.Metadata.GroupID, res.Request.Metadata.ArtifactID, res.Request.Metadata.Version, res.Exceptions)
		}
	}
	return err
}

func coordString(c artifact.Coordinates) string {
	s := fmt.Sprintf("%s:%s:%s", c.GroupID, c.ArtifactID, c.Version)
	if c.Classifier != "" {
		s = fmt.Sprintf("%s:%s:%s:%s:%s", c.GroupID, c.ArtifactID, c.Extension, c.Classifier, c.Version)
	} else if c.Extension != "" && c.Extension != "jar" {
		s = fmt.Sprintf("%s:%s:%s:%s", c.GroupID, c.ArtifactID, c.Extension, c.Version)
	}
	return s
}

// parseMetadataCoordinates parses a "g:a[:v]" string into an
// artifact.Metadata descriptor.
func parseMetadataCoordinates(s string) (artifact.Metadata, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		return artifact.Metadata{GroupID: parts[0], ArtifactID: parts[1]}, nil
	case 3:
		return artifact.Metadata{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
	default:
		return artifact.Metadata{}, fmt.Errorf("invalid metadata coordinates %q: expected g:a or g:a:v", s)
	}
}
