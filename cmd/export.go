package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warera-analytics/market-history/internal/export"
	"github.com/warera-analytics/market-history/internal/history"
	"github.com/warera-analytics/market-history/internal/store"
)

var (
	exportWindow string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write market and profit history for a window to an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := history.ParseWindow(exportWindow)
		if err != nil {
			return err
		}
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := initStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return exportWorkbook(cmd.Context(), st, window, time.Now(), exportOut)
	},
}

func exportWorkbook(ctx context.Context, r store.Reader, window history.Window, now time.Time, out string) error {
	filter := window.Filter(now)

	marketRows, err := r.ListMarketHistory(ctx, filter)
	if err != nil {
		return err
	}
	profitRows, err := r.ListProfitHistory(ctx, filter)
	if err != nil {
		return err
	}

	if err := export.Save(out, marketRows, profitRows); err != nil {
		return err
	}
	zap.L().Info("export written",
		zap.String("path", out),
		zap.String("window", string(window)),
		zap.Int("market_rows", len(marketRows)),
		zap.Int("profit_rows", len(profitRows)),
	)
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportWindow, "window", "24h", "look-back window: 24h, 3d or 7d")
	exportCmd.Flags().StringVar(&exportOut, "out", "market-history.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
