package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/warera-analytics/market-history/internal/schedule"
)

var scheduleCron string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run collections on a cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if scheduleCron != "" {
			cfg.Schedule.Cron = scheduleCron
		}
		if err := cfg.Validate("schedule"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		c, err := initCollector(cfg, st)
		if err != nil {
			return err
		}

		s, err := schedule.New(cfg.Schedule.Cron, c)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron expression (default from config)")
	rootCmd.AddCommand(scheduleCmd)
}
