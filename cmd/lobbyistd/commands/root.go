package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"senate-lobbyist-source/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "lobbyistd",
	Short:        "lobbyistd pulls lobbyist records from the Senate Lobbying Disclosure API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (defaults to $CONFIG_PATH, then ./config/config.yaml).")
}

func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "./config/config.yaml" // Default path for local development
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	return cfg, path, nil
}

// ExecuteContext runs the root command and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
