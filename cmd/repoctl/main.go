// Command repoctl resolves, installs, and deploys artifacts against a local
// repository and a set of configured remotes.
package main

import (
	"fmt"
	"os"

	"github.com/vitaliisemenov/artifactrepo/cmd/repoctl/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
