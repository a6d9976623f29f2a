package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warera-analytics/market-history/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "market-history",
	Short: "WarEra market price and production profit collector",
	Long:  "Fetches WarEra item prices on a schedule, computes per-work-unit production profit, and appends both to the marketHistory and profitHistory tables.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
