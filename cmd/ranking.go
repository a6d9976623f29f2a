package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/warera-analytics/market-history/internal/history"
	"github.com/warera-analytics/market-history/internal/store"
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Print the latest profit ranking as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return writeRanking(cmd.Context(), cmd.OutOrStdout(), st)
	},
}

func writeRanking(ctx context.Context, w io.Writer, r store.Reader) error {
	rows, err := r.LatestProfits(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(history.RankProfits(rows)), "ranking: encode")
}

func init() {
	rootCmd.AddCommand(rankingCmd)
}
