// Package paths provides a single source of truth for strand file
// paths. Helpers honor environment variable overrides for isolated
// testing.
//
// Path resolution precedence:
//  1. STRAND_DIR sets the base directory (derives token/log paths)
//  2. Default behavior (~/.strand, ~/.config/strand) when unset
package paths

import (
	"os"
	"path/filepath"
)

// EnvStrandDir is the base directory override (e.g., /tmp/strand-test).
// When set, token and log paths derive from this directory.
const EnvStrandDir = "STRAND_DIR"

// BaseDir returns the strand data directory (~/.strand by default).
// Honors STRAND_DIR.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvStrandDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".strand"), nil
}

// ConfigDir returns the config directory (~/.config/strand by default).
// When STRAND_DIR is set, returns STRAND_DIR/config instead.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvStrandDir); dir != "" {
		return filepath.Join(dir, "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "strand"), nil
}

// ConfigPath returns the global config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// TokenPath returns the auth token file path (~/.strand/token).
func TokenPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "token"), nil
}

// LogPath returns the log file path (~/.strand/strand.log).
func LogPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "strand.log"), nil
}
