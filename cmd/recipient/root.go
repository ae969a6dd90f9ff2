package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/recipient/internal/cli"
	"github.com/aretw0/recipient/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recipient",
	Short: "Edit payment recipients",
	Long: `recipient loads a payment recipient, lets you edit its name and account
number with live validation, and saves it back.

The backend store is chosen by configuration (memory, redis, loam or sql).
Settings come from --config, then RECIPIENT_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// loadConfig reads the config file and applies the --log-level override.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// loadStack builds the configured backend.
func loadStack(ctx context.Context, cmd *cobra.Command) (*cli.Stack, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewStack(ctx, cfg, logger)
}
