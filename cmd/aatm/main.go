package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/config"
	"github.com/tradeforge/aatm/internal/logger"
)

var (
	cfgFile string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "aatm",
	Short: "AATM - Autonomous Adaptive Trading Module",
	Long: `AATM is the configuration and persistent-state foundation for an
autonomous adaptive trading module. It validates operating parameters and
manages the connection to the document store holding strategies, performance
history, market state and trade logs.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "env file path (default .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// setup loads the environment file, the configuration, and a logger at the
// configured level. Shared by the run/export/validate commands.
func setup() (*config.Config, *zap.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, nil, fmt.Errorf("loading env file: %w", err)
		}
	} else {
		// Optional .env in the working directory.
		_ = godotenv.Load()
	}

	log := logger.Must("", debug)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, log, fmt.Errorf("loading config: %w", err)
	}

	if cfg.LogLevel != "" {
		l, err := logger.New(cfg.LogLevel, debug)
		if err != nil {
			return nil, log, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		log = l
	}

	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
