package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/warera-analytics/market-history/internal/collector"
)

var collectLabel string

var collectCmd = &cobra.Command{
	Use:          "collect",
	Short:        "Fetch prices once and append market and profit history",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("collect"); err != nil {
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

		res := c.Run(ctx, collector.Trigger{Label: collectLabel})
		if res.Outcome != collector.Success {
			return eris.Wrapf(res.Err, "collect: run %s failed", res.RunID)
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectLabel, "label", "manual", "trigger label written to the outcome log line")
	rootCmd.AddCommand(collectCmd)
}
