package main

import (
	"fmt"
	"os"

	"github.com/newthinker/fundrep/internal/app"
	"github.com/newthinker/fundrep/internal/config"
	"github.com/newthinker/fundrep/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "fundrep",
	Short: "fundrep - investment trust fund reports",
	Long: `fundrep renders one-page reports for Japanese investment trust funds.
It fetches fund data by ISIN code and serves or writes the report as HTML.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// setup loads and validates config, then builds the logger and app
func setup() (*config.Config, *zap.Logger, *app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	log, err := logger.New(debug || cfg.Log.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults")
	}

	return cfg, log, app.New(cfg, log), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
