package cmd

import (
	"fmt"
	"os"

	"emoji-sync/core/cache"
	"emoji-sync/core/config"
	"emoji-sync/core/logger"
	"emoji-sync/feature/emoji"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configPath is the --config persistent flag shared by every subcommand.
var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "emoji-sync",
	Short: "Emoji Sync Engine",
	Long: `Emoji Sync Engine downloads custom emojis from team chat platforms
(Slack, Discord) and publishes them as icons for static site builds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "Path to the configuration file")
}

// bootstrap loads configuration, the logger, the cache store, and the emoji
// service. Every subcommand except init starts here.
func bootstrap() (*config.Config, *zap.Logger, *emoji.Service, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := cache.NewStore(cfg.Cache, l)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}

	return cfg, l, emoji.NewService(cfg, store, l), nil
}
