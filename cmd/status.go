package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/warera-analytics/market-history/internal/monitoring"
)

var statusLookback int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print collection health metrics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := monitoring.NewCollector(st).Collect(cmd.Context(), statusLookback)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(snap), "status: encode")
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLookback, "lookback", 24, "lookback window in hours")
	rootCmd.AddCommand(statusCmd)
}
