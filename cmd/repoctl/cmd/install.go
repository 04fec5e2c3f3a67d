package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/install"
)

func newInstallCommand() *cobra.Command {
	var file string
	var requestContext string

	cmd := &cobra.Command{
		Use:   "install <coordinates>",
		Short: "Copy an already-built artifact into the local repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("install: --file is required")
			}
			coords, err := parseCoordinates(args[0])
			if err != nil {
				return err
			}

			cli, err := buildCLI()
			if err != nil {
				return err
			}
			s := cli.newSession("install")

			results, err := cli.installer.Install(context.Background(), s, []install.Request{{
				Artifact:       artifact.Artifact{Coordinates: coords, File: file},
				RequestContext: requestContext,
			}})
			for _, res := range results {
				if res.Exception != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> failed: %v\n", coordString(res.Artifact.Coordinates), res.Exception)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> installed\n", coordString(res.Artifact.Coordinates))
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the built artifact file to install")
	cmd.Flags().StringVar(&requestContext, "context", "", "request context distinguishing concurrent build contexts")
	return cmd
}
