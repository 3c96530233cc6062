package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/custody"
	"github.com/aretw0/custody/internal/platform"
)

var (
	verbose    bool
	configPath string
	codecName  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "custody",
	Short: "Ownership and access control for a single shared record",
	Long: `custody models one owner, one shared record and the systems that ask to see it.
Scenarios script the owner's decisions; every state change is written to an
append-only timeline.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if cfg, ok := loadConfig(); ok && cfg.LogLevel != "" {
			if l, err := platform.ParseLogLevel(cfg.LogLevel); err == nil {
				level = l
			}
		}
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to custody.yaml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "", "Obscuring codec: hex or secretbox (overrides the config file)")
}

// resolveConfig returns the explicit --config path or the nearest custody.yaml.
func resolveConfig() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := custody.FindConfig(cwd)
	if errors.Is(err, platform.ErrConfigNotFound) {
		return "", nil
	}
	return path, err
}

func loadConfig() (platform.Config, bool) {
	path, err := resolveConfig()
	if err != nil || path == "" {
		return platform.Config{}, false
	}
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return platform.Config{}, false
	}
	return cfg, true
}

// newService builds a service from flags and the config file.
func newService() (*custody.Service, error) {
	opts := []custody.Option{custody.WithLogger(slog.Default())}

	path, err := resolveConfig()
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Debug("using config", "path", path)
		opts = append(opts, custody.WithConfigFile(path))
	}
	if codecName != "" {
		opts = append(opts, custody.WithCodecName(codecName))
	}
	return custody.New(opts...)
}
