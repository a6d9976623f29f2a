package collector

import (
	"github.com/rotisserie/eris"

	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/model"
)

// BuildMarketRows returns one row per snapshot key, all stamped with ts.
func BuildMarketRows(snap market.PriceSnapshot, ts int64) []model.MarketHistoryRow {
	keys := snap.Keys()
	rows := make([]model.MarketHistoryRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, model.MarketHistoryRow{
			Product:   k,
			Timestamp: ts,
			Price:     snap[k],
		})
	}
	return rows
}

// BuildProfitRows returns one row per eligible product, all stamped with ts.
// A product without a formula aborts construction and no rows are returned.
func BuildProfitRows(table *market.FormulaTable, snap market.PriceSnapshot, ts int64) ([]model.ProfitHistoryRow, error) {
	eligible := market.EligibleProducts(snap)
	rows := make([]model.ProfitHistoryRow, 0, len(eligible))
	for _, p := range eligible {
		profit, err := market.ComputeProfit(table, snap, p)
		if err != nil {
			return nil, eris.Wrapf(err, "collector: profit for %s", p)
		}
		rows = append(rows, model.ProfitHistoryRow{
			Product:        p,
			Timestamp:      ts,
			WorkUnitProfit: profit,
		})
	}
	return rows, nil
}
