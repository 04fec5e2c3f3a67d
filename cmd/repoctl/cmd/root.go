// Package cmd wires the repoctl command-line surface: configuration
// loading, collaborator construction, and the resolve/install/deploy
// subcommands built on top of internal/resolver and internal/install.
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/config"
	"github.com/vitaliisemenov/artifactrepo/internal/connector"
	"github.com/vitaliisemenov/artifactrepo/internal/events"
	"github.com/vitaliisemenov/artifactrepo/internal/install"
	"github.com/vitaliisemenov/artifactrepo/internal/localrepo"
	"github.com/vitaliisemenov/artifactrepo/internal/metrics"
	"github.com/vitaliisemenov/artifactrepo/internal/offline"
	"github.com/vitaliisemenov/artifactrepo/internal/resolver"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
	"github.com/vitaliisemenov/artifactrepo/internal/syncctx"
	"github.com/vitaliisemenov/artifactrepo/internal/updatecheck"
	"github.com/vitaliisemenov/artifactrepo/internal/validate"
	applog "github.com/vitaliisemenov/artifactrepo/pkg/logger"
	pkgmetrics "github.com/vitaliisemenov/artifactrepo/pkg/metrics"
)

// CLI bundles the collaborators every subcommand needs, built once from the
// loaded configuration.
type CLI struct {
	cfg    *config.Config
	logger *slog.Logger

	localRepo   localrepo.Manager
	offline     *offline.Controller
	updateCheck *updatecheck.Manager
	connectors  connector.Factory
	dispatcher  *events.Dispatcher
	bus         *events.Bus
	remotes     map[string]*artifact.RemoteRepository

	artifactResolver *resolver.ArtifactResolver
	metadataResolver *resolver.MetadataResolver
	installer        *install.Installer
	deployer         *install.Deployer
}

var configPath string

// NewRootCommand builds the repoctl root command and every subcommand.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "repoctl",
		Short: "Resolve, install, and deploy artifacts against a local repository and configured remotes",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")

	root.AddCommand(
		newResolveCommand(),
		newInstallCommand(),
		newDeployCommand(),
	)
	return root
}

// buildCLI loads configuration and constructs every collaborator. Called
// lazily from each subcommand's RunE so --config is parsed before use.
func buildCLI() (*CLI, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := applog.NewLogger(applog.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	registry := pkgmetrics.NewMetricsRegistry(cfg.App.Name)
	busRecorder := metrics.NewBusRecorder(registry.Namespace())

	var lrm localrepo.Manager
	if cfg.Repository.Layout == "simple" {
		lrm = localrepo.NewSimple(cfg.Repository.BaseDir, logger)
	} else {
		lrm = localrepo.NewEnhanced(cfg.Repository.BaseDir, logger)
	}

	lockDir := cfg.Repository.LockDir
	if lockDir == "" {
		lockDir = cfg.Repository.BaseDir
	}

	remotes := make(map[string]*artifact.RemoteRepository, len(cfg.Remotes))
	for _, rc := range cfg.Remotes {
		remotes[rc.ID] = rc.ToRemoteRepository()
	}

	bus := events.NewBus(logger, busRecorder)
	dispatcher := events.NewDispatcher(logger, bus)

	cli := &CLI{
		cfg:         cfg,
		logger:      logger,
		localRepo:   lrm,
		offline:     offline.New(),
		updateCheck: updatecheck.New(logger, nil),
		connectors:  newFileRemoteFactory(cfg),
		dispatcher:  dispatcher,
		bus:         bus,
		remotes:     remotes,
	}

	syncFactory := syncctx.NewFactory(lockDir, logger)

	cli.artifactResolver = resolver.NewArtifactResolver(resolver.Deps{
		VersionResolver: connector.IdentityVersionResolver{},
		LocalRepository: lrm,
		Offline:         cli.offline,
		UpdateCheck:     cli.updateCheck,
		Connectors:      cli.connectors,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	cli.metadataResolver = resolver.NewMetadataResolver(resolver.Deps{
		VersionResolver: connector.IdentityVersionResolver{},
		LocalRepository: lrm,
		Offline:         cli.offline,
		UpdateCheck:     cli.updateCheck,
		Connectors:      cli.connectors,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	cli.installer = install.NewInstaller(lrm, syncFactory, connector.OSFileProcessor{}, dispatcher, logger)
	cli.deployer = install.NewDeployer(cli.connectors, cli.offline, dispatcher, logger)

	return cli, nil
}

// newSession builds a session.Session from the loaded configuration.
func (c *CLI) newSession(id string) *session.Session {
	return session.New(id, c.cfg.ToSessionConfig())
}

// resolveRemotes maps the given remote ids to configured RemoteRepository
// values, or returns every configured remote when ids is empty.
func (c *CLI) resolveRemotes(ids []string) ([]*artifact.RemoteRepository, error) {
	if len(ids) == 0 {
		all := make([]*artifact.RemoteRepository, 0, len(c.remotes))
		for _, r := range c.remotes {
			all = append(all, r)
		}
		return all, nil
	}
	out := make([]*artifact.RemoteRepository, 0, len(ids))
	for _, id := range ids {
		r, ok := c.remotes[id]
		if !ok {
			return nil, fmt.Errorf("unknown remote %q", id)
		}
		out = append(out, r)
	}
	return out, nil
}

// parseCoordinates parses a Maven-style "g:a:v", "g:a:ext:v", or
// "g:a:ext:classifier:v" coordinate string.
func parseCoordinates(s string) (artifact.Coordinates, error) {
	parts := strings.Split(s, ":")
	var c artifact.Coordinates
	switch len(parts) {
	case 3:
		c = artifact.Coordinates{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2], Extension: "jar"}
	case 4:
		c = artifact.Coordinates{GroupID: parts[0], ArtifactID: parts[1], Extension: parts[2], Version: parts[3]}
	case 5:
		c = artifact.Coordinates{GroupID: parts[0], ArtifactID: parts[1], Extension: parts[2], Classifier: parts[3], Version: parts[4]}
	default:
		return artifact.Coordinates{}, fmt.Errorf("invalid coordinates %q: expected g:a:v, g:a:ext:v, or g:a:ext:classifier:v", s)
	}
	if err := validate.Coordinates(c); err != nil {
		return artifact.Coordinates{}, err
	}
	return c, nil
}
