package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRemoteFixtures reads a standalone YAML list of remotes from path,
// independent of Load/viper — used to seed demo data for cmd/repoctl and
// integration tests without a full application config file.
func LoadRemoteFixtures(path string) ([]RemoteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read remote fixtures %s: %w", path, err)
	}
	var remotes []RemoteConfig
	if err := yaml.Unmarshal(data, &remotes); err != nil {
		return nil, fmt.Errorf("parse remote fixtures %s: %w", path, err)
	}
	return remotes, nil
}
