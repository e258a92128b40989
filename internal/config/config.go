// Package config provides configuration loading for strand.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/strandtools/strand/internal/paths"
)

// Config is the strand client configuration.
type Config struct {
	// Server contains backend connection settings.
	Server ServerConfig `toml:"server"`

	// Log contains logging settings.
	Log LogConfig `toml:"log"`
}

// ServerConfig contains backend connection settings.
type ServerConfig struct {
	// URL is the base URL of the Strand platform API.
	URL string `toml:"url"`
	// Project is the default project id for commands that take one.
	Project string `toml:"project"`
	// TokenPath overrides where the auth token is stored.
	TokenPath string `toml:"token-path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the log verbosity ("debug", "info", "warn", "error").
	Level string `toml:"level"`
	// Path overrides the log file location.
	Path string `toml:"path"`
}

// DefaultServerURL is used when no server URL is configured.
const DefaultServerURL = "http://localhost:8000/api/v1"

// Path returns the config file location (~/.config/strand/config.toml),
// honoring STRAND_DIR.
func Path() (string, error) {
	return paths.ConfigPath()
}

// Load reads the config from the default location. A missing file is
// not an error; defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the config from a specific path. Returns defaults
// if the file doesn't exist.
func LoadFromPath(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// ServerURL returns the server URL, preferring the STRAND_SERVER
// environment variable over the config file.
func (c *Config) ServerURL() string {
	if env := os.Getenv("STRAND_SERVER"); env != "" {
		return env
	}
	if c != nil && c.Server.URL != "" {
		return c.Server.URL
	}
	return DefaultServerURL
}

// ProjectID returns the configured default project, preferring the
// STRAND_PROJECT environment variable.
func (c *Config) ProjectID() string {
	if env := os.Getenv("STRAND_PROJECT"); env != "" {
		return env
	}
	if c != nil {
		return c.Server.Project
	}
	return ""
}
