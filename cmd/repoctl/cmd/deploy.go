package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/install"
)

func newDeployCommand() *cobra.Command {
	var file string
	var remoteID string
	var requestContext string

	cmd := &cobra.Command{
		Use:   "deploy <coordinates>",
		Short: "Publish an already-built artifact to a configured remote repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("deploy: --file is required")
			}
			if remoteID == "" {
				return fmt.Errorf("deploy: --remote is required")
			}
			coords, err := parseCoordinates(args[0])
			if err != nil {
				return err
			}

			cli, err := buildCLI()
			if err != nil {
				return err
			}
			remotes, err := cli.resolveRemotes([]string{remoteID})
			if err != nil {
				return err
			}
			s := cli.newSession("deploy")

			results, err := cli.deployer.Deploy(context.Background(), s, []install.DeployRequest{{
				Artifact:       artifact.Artifact{Coordinates: coords, File: file},
				Repository:     remotes[0],
				RequestContext: requestContext,
			}})
			for _, res := range results {
				if res.Exception != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> failed: %v\n", coordString(res.Request.Artifact.Coordinates), res.Exception)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> deployed to %s\n", coordString(res.Request.Artifact.Coordinates), remoteID)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the built artifact file to deploy")
	cmd.Flags().StringVar(&remoteID, "remote", "", "id of the configured remote repository to deploy to")
	cmd.Flags().StringVar(&requestContext, "context", "", "request context distinguishing concurrent build contexts")
	return cmd
}
