package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"placement-stats/config"
	"placement-stats/utils"
)

var rootCmd = &cobra.Command{
	Use:   "placement-stats",
	Short: "Fetch placement records and derive placement statistics",
	Long: `placement-stats pulls placement records from the placements API, stores a raw
CSV dump and a cleaned copy in PostgreSQL, and prints the derived statistics:
CTC summary, selections over time, company/branch rollups and per-branch CTC.

Run without a subcommand to execute the batch pipeline once.
Use "placement-stats serve" to expose the statistics over HTTP.`,
	SilenceUsage: true,
	RunE:         runPipeline,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// setup loads and validates configuration and builds the logger.
func setup() (*config.Config, *utils.Logger, error) {
	cfg := config.Load()
	logger := utils.NewLogger().WithLevel(utils.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return nil, nil, err
	}
	return cfg, logger, nil
}
