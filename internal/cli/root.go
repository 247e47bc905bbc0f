// Package cli wires the colonysim commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talgya/fevered-world/internal/config"
	"github.com/talgya/fevered-world/internal/registry"
)

var (
	// Global flags
	configPath string
	logLevel   string
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colonysim",
		Short: "Fevered World - colonies of an empire, run by their own AI",
		Long: `colonysim generates a world of island regions, founds a colony in each
and lets the colonies grow, trade and answer the empire's export mandates.

Examples:
  colonysim generate --config configs/small.yaml
  colonysim run --hours 72
  colonysim run
  colonysim catalog
  colonysim report --events 20`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a config file (default ./config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewReportCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig(logTo io.Writer) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
	}
	slog.SetDefault(newLogger(cfg.Logging, logTo))
	return cfg, nil
}

func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.Catalog.Path == "" {
		return registry.Default()
	}
	reg, err := registry.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.Catalog.Path, err)
	}
	return reg, nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
