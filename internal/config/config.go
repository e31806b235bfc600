package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConnectionConfig holds the connection request options. The url keeps
// the JDBC form so one value can be shared with JVM services pointing at
// the same database.
type ConnectionConfig struct {
	URL    string `yaml:"url"`
	User   string `yaml:"user"`
	Region string `yaml:"region"`
}

// AzureConfig identifies a service principal. The client secret is
// deliberately absent; it is read from AZURE_CLIENT_SECRET so that no
// credential material lands in a checked-in file.
type AzureConfig struct {
	TenantID string `yaml:"tenant_id,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
}

// CacheConfig tunes the token cache.
type CacheConfig struct {
	// TTL is a Go duration string, e.g. "11m".
	TTL string `yaml:"ttl,omitempty"`
}

// FileConfig mirrors pgiamauth.yaml.
type FileConfig struct {
	Connection ConnectionConfig `yaml:"connection"`

	// Provider selects the token generator: rds, azure or google.
	Provider string `yaml:"provider,omitempty"`

	Azure AzureConfig `yaml:"azure,omitempty"`
	Cache CacheConfig `yaml:"cache,omitempty"`

	// Timeout is a Go duration string bounding the check command.
	Timeout string `yaml:"timeout,omitempty"`
}

const ConfigFileName = "pgiamauth.yaml"

// Load reads pgiamauth.yaml from the given directory.
func Load(dir string) (*FileConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
