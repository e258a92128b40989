// Package cli implements the strand command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strandtools/strand/internal/config"
	"github.com/strandtools/strand/internal/logging"
)

// Global flags.
var (
	configPath  string
	projectFlag string
)

// cfg is the loaded configuration, available to all commands after
// PersistentPreRunE.
var cfg *config.Config

// cleanupLog closes the log file on exit.
var cleanupLog func()

var rootCmd = &cobra.Command{
	Use:   "strand",
	Short: "Client for the Strand analysis platform",
	Long:  "strand is a terminal client for the Strand analysis platform: chat about your data, review proposed workflow plans, and launch analyses.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFromPath(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logPath := cfg.Log.Path
		if logPath == "" {
			logPath = logging.DefaultLogPath()
		}
		cleanupLog, err = logging.Setup(logPath, logging.ParseLevel(cfg.Log.Level))
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cleanupLog != nil {
			cleanupLog()
		}
	},
}

// projectID resolves the project for the current invocation: the
// --project flag, then the environment/config default.
func projectID() (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}
	if id := cfg.ProjectID(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no project configured: pass --project or set server.project in %s", mustConfigPathHint())
}

func mustConfigPathHint() string {
	if configPath != "" {
		return configPath
	}
	path, err := config.Path()
	if err != nil {
		return "the config file"
	}
	return path
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (overrides ~/.config/strand/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "project id (overrides config)")
}

func Execute() error {
	return rootCmd.Execute()
}
