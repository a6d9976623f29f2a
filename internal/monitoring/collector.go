// Package monitoring summarizes how healthy the stored history is.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/store"
)

// MetricsSnapshot holds a point-in-time view of collection health.
type MetricsSnapshot struct {
	// Latest batch.
	LatestTimestamp int64    `json:"latest_timestamp"` // epoch millis, 0 when empty
	AgeSeconds      float64  `json:"age_seconds"`
	LatestMarket    int      `json:"latest_market_rows"`
	LatestProfit    int      `json:"latest_profit_rows"`
	MissingProducts []string `json:"missing_products"`

	// Within lookback window.
	Collections int `json:"collections"` // distinct run timestamps
	MarketRows  int `json:"market_rows"`
	ProfitRows  int `json:"profit_rows"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the history store.
type Collector struct {
	reader store.Reader
	now    func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(r store.Reader) *Collector {
	return &Collector{reader: r, now: time.Now}
}

// Collect gathers a snapshot of collection metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		LookbackHours:   lookbackHours,
		CollectedAt:     now,
		MissingProducts: []string{},
	}

	latest, err := c.reader.LatestMarket(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: latest market")
	}
	present := make(map[market.ExtendedProduct]bool, len(latest))
	for _, r := range latest {
		present[r.Product] = true
	}
	if len(latest) > 0 {
		snap.LatestTimestamp = latest[0].Timestamp
		snap.AgeSeconds = now.Sub(time.UnixMilli(snap.LatestTimestamp)).Seconds()
		for _, e := range market.ExtendedProducts() {
			if !present[e] {
				snap.MissingProducts = append(snap.MissingProducts, string(e))
			}
		}
	}
	snap.LatestMarket = len(latest)

	profits, err := c.reader.LatestProfits(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: latest profits")
	}
	snap.LatestProfit = len(profits)

	filter := store.HistoryFilter{Since: now.Add(-time.Duration(lookbackHours) * time.Hour)}

	marketRows, err := c.reader.ListMarketHistory(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list market history")
	}
	snap.MarketRows = len(marketRows)

	runs := make(map[int64]struct{})
	for _, r := range marketRows {
		runs[r.Timestamp] = struct{}{}
	}
	snap.Collections = len(runs)

	profitRows, err := c.reader.ListProfitHistory(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list profit history")
	}
	snap.ProfitRows = len(profitRows)

	return snap, nil
}
