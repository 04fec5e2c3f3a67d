package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vitaliisemenov/artifactrepo/internal/artifact"
	"github.com/vitaliisemenov/artifactrepo/internal/session"
	"github.com/vitaliisemenov/artifactrepo/internal/validate"
)

// Config is the top-level, file/env-loaded configuration for a repoctl
// invocation: where the local repository lives, which remotes it talks to,
// and the session-wide resolution policy.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Session    SessionConfig    `mapstructure:"session"`
	Remotes    []RemoteConfig   `mapstructure:"remotes"`
}

// AppConfig holds application-identity configuration.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// LogConfig holds logging-related configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig holds metrics-exposition configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

// RepositoryConfig holds on-disk local repository configuration.
type RepositoryConfig struct {
	// Layout selects the local repository manager: "simple" or "enhanced".
	Layout  string `mapstructure:"layout"`
	BaseDir string `mapstructure:"base_dir"`
	LockDir string `mapstructure:"lock_dir"`
}

// SessionConfig holds the session-wide resolution policy, mirroring
// session.Config.
type SessionConfig struct {
	SnapshotNormalization   bool     `mapstructure:"snapshot_normalization"`
	ForcedOfflineProtocols  []string `mapstructure:"forced_offline_protocols"`
	ForcedOfflineHosts      []string `mapstructure:"forced_offline_hosts"`
	OfflineAllowed          []string `mapstructure:"offline_allowed"`
	UpdateCheckSessionState string   `mapstructure:"update_check_session_state"`
	ArtifactResolverThreads int      `mapstructure:"artifact_resolver_threads"`
	MetadataResolverThreads int      `mapstructure:"metadata_resolver_threads"`
	// ErrorPolicy is one of "none", "not_found", "transfer_error", "all".
	ErrorPolicy string `mapstructure:"error_policy"`
}

// RemoteConfig describes one configured remote repository.
type RemoteConfig struct {
	ID                  string   `mapstructure:"id" yaml:"id"`
	URL                 string   `mapstructure:"url" yaml:"url"`
	ContentType         string   `mapstructure:"content_type" yaml:"content_type"`
	IsRepositoryManager bool     `mapstructure:"is_repository_manager" yaml:"is_repository_manager"`
	MirroredURLs        []string `mapstructure:"mirrored_urls" yaml:"mirrored_urls"`

	ReleasePolicy  RemotePolicyConfig `mapstructure:"release_policy" yaml:"release_policy"`
	SnapshotPolicy RemotePolicyConfig `mapstructure:"snapshot_policy" yaml:"snapshot_policy"`
}

// RemotePolicyConfig is the per-nature policy of a configured remote.
type RemotePolicyConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	UpdatePolicy   string `mapstructure:"update_policy" yaml:"update_policy"`
	ChecksumPolicy string `mapstructure:"checksum_policy" yaml:"checksum_policy"`
}

// Load reads configuration from the given YAML file (if non-empty) and from
// environment variables (ARTIFACTREPO_* with "." replaced by "_"), applying
// documented defaults for anything left unset.
func Load(configPath string) (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("artifactrepo")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		viper.SetConfigFile(configPath)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "repoctl")
	viper.SetDefault("app.version", "dev")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("metrics.port", 9090)

	viper.SetDefault("repository.layout", "enhanced")
	viper.SetDefault("repository.base_dir", "./.repository")
	viper.SetDefault("repository.lock_dir", "")

	viper.SetDefault("session.snapshot_normalization", true)
	viper.SetDefault("session.update_check_session_state", "enabled")
	viper.SetDefault("session.artifact_resolver_threads", 5)
	viper.SetDefault("session.metadata_resolver_threads", 4)
	viper.SetDefault("session.error_policy", "none")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Repository.BaseDir == "" {
		return fmt.Errorf("repository.base_dir cannot be empty")
	}
	if c.Repository.Layout != "simple" && c.Repository.Layout != "enhanced" {
		return fmt.Errorf("invalid repository.layout: %s (must be 'simple' or 'enhanced')", c.Repository.Layout)
	}
	if c.Log.Level == "" {
		return fmt.Errorf("log.level cannot be empty")
	}
	seen := map[string]bool{}
	for _, r := range c.Remotes {
		if r.ID == "" {
			return fmt.Errorf("remote entry missing id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate remote id: %s", r.ID)
		}
		seen[r.ID] = true
		if r.URL == "" {
			return fmt.Errorf("remote %s missing url", r.ID)
		}
		if err := validate.RemoteRepository(r.ToRemoteRepository()); err != nil {
			return err
		}
	}
	return nil
}

// ToSessionConfig converts the loaded SessionConfig into a session.Config.
func (c *Config) ToSessionConfig() session.Config {
	sc := session.DefaultConfig()
	sc.SnapshotNormalization = c.Session.SnapshotNormalization
	sc.ForcedOfflineProtocols = c.Session.ForcedOfflineProtocols
	sc.ForcedOfflineHosts = c.Session.ForcedOfflineHosts
	sc.OfflineAllowed = c.Session.OfflineAllowed
	sc.ArtifactResolverThreads = c.Session.ArtifactResolverThreads
	sc.MetadataResolverThreads = c.Session.MetadataResolverThreads
	sc.LocalRepositoryBaseDir = c.Repository.BaseDir
	sc.LockDir = c.Repository.LockDir
	if sc.LockDir == "" {
		sc.LockDir = c.Repository.BaseDir
	}
	if c.Session.UpdateCheckSessionState == string(session.UpdateCheckBypass) {
		sc.UpdateCheckSessionState = session.UpdateCheckBypass
	} else {
		sc.UpdateCheckSessionState = session.UpdateCheckEnabled
	}
	sc.ErrorPolicy = parseErrorPolicy(c.Session.ErrorPolicy)
	return sc
}

func parseErrorPolicy(s string) artifact.ErrorPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not_found":
		return artifact.CacheNotFound
	case "transfer_error":
		return artifact.CacheTransferError
	case "all":
		return artifact.CacheAll
	default:
		return artifact.CacheNone
	}
}

// ToRemoteRepository converts one RemoteConfig into an *artifact.RemoteRepository.
func (r *RemoteConfig) ToRemoteRepository() *artifact.RemoteRepository {
	return &artifact.RemoteRepository{
		ID:                  r.ID,
		URL:                 r.URL,
		ContentType:         r.ContentType,
		IsRepositoryManager: r.IsRepositoryManager,
		MirroredURLs:        r.MirroredURLs,
		ReleasePolicy:       r.ReleasePolicy.toRepositoryPolicy(),
		SnapshotPolicy:      r.SnapshotPolicy.toRepositoryPolicy(),
	}
}

func (p RemotePolicyConfig) toRepositoryPolicy() artifact.RepositoryPolicy {
	checksum := artifact.ChecksumWarn
	switch strings.ToLower(p.ChecksumPolicy) {
	case "fail":
		checksum = artifact.ChecksumFail
	case "ignore":
		checksum = artifact.ChecksumIgnore
	}
	return artifact.RepositoryPolicy{
		Enabled:        p.Enabled,
		UpdatePolicy:   p.UpdatePolicy,
		ChecksumPolicy: checksum,
	}
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool { return c.App.Environment == "development" }

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool { return c.App.Environment == "production" }
