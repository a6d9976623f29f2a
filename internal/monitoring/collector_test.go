package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/model"
	"github.com/warera-analytics/market-history/internal/store"
)

// mockReader implements store.Reader for testing.
type mockReader struct {
	market  []model.MarketHistoryRow
	profit  []model.ProfitHistoryRow
	listErr error
}

func (m *mockReader) ListMarketHistory(_ context.Context, filter store.HistoryFilter) ([]model.MarketHistoryRow, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.MarketHistoryRow
	for _, r := range m.market {
		if r.Timestamp >= filter.Since.UnixMilli() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReader) ListProfitHistory(_ context.Context, filter store.HistoryFilter) ([]model.ProfitHistoryRow, error) {
	var out []model.ProfitHistoryRow
	for _, r := range m.profit {
		if r.Timestamp >= filter.Since.UnixMilli() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReader) LatestMarket(context.Context) ([]model.MarketHistoryRow, error) {
	var newest int64
	for _, r := range m.market {
		if r.Timestamp > newest {
			newest = r.Timestamp
		}
	}
	var out []model.MarketHistoryRow
	for _, r := range m.market {
		if r.Timestamp == newest {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReader) LatestProfits(context.Context) ([]model.ProfitHistoryRow, error) {
	var newest int64
	for _, r := range m.profit {
		if r.Timestamp > newest {
			newest = r.Timestamp
		}
	}
	var out []model.ProfitHistoryRow
	for _, r := range m.profit {
		if r.Timestamp == newest {
			out = append(out, r)
		}
	}
	return out, nil
}

var now = time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)

func newTestCollector(r store.Reader) *Collector {
	c := NewCollector(r)
	c.now = func() time.Time { return now }
	return c
}

func TestCollector_Collect(t *testing.T) {
	latest := now.Add(-2 * time.Minute).UnixMilli()
	older := now.Add(-7 * time.Minute).UnixMilli()
	stale := now.Add(-30 * time.Hour).UnixMilli()

	var marketRows []model.MarketHistoryRow
	for _, e := range market.ExtendedProducts() {
		if e != market.Case1 {
			marketRows = append(marketRows, model.MarketHistoryRow{Product: e, Timestamp: latest, Price: 1})
		}
	}
	marketRows = append(marketRows,
		model.MarketHistoryRow{Product: "lead", Timestamp: older, Price: 1},
		model.MarketHistoryRow{Product: "lead", Timestamp: stale, Price: 1},
	)

	r := &mockReader{
		market: marketRows,
		profit: []model.ProfitHistoryRow{
			{Product: market.Lead, Timestamp: latest, WorkUnitProfit: 1},
			{Product: market.Lead, Timestamp: older, WorkUnitProfit: 1},
		},
	}

	snap, err := newTestCollector(r).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, latest, snap.LatestTimestamp)
	assert.InDelta(t, 120, snap.AgeSeconds, 0.001)
	assert.Equal(t, len(market.Products()), snap.LatestMarket)
	assert.Equal(t, 1, snap.LatestProfit)
	assert.Equal(t, []string{"case1"}, snap.MissingProducts)
	assert.Equal(t, 2, snap.Collections)
	assert.Equal(t, len(market.Products())+1, snap.MarketRows)
	assert.Equal(t, 2, snap.ProfitRows)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.Equal(t, now, snap.CollectedAt)
}

func TestCollector_Collect_Empty(t *testing.T) {
	snap, err := newTestCollector(&mockReader{}).Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Zero(t, snap.LatestTimestamp)
	assert.Zero(t, snap.AgeSeconds)
	assert.Zero(t, snap.Collections)
	assert.Empty(t, snap.MissingProducts)
}

func TestCollector_Collect_ListError(t *testing.T) {
	_, err := newTestCollector(&mockReader{listErr: errors.New("db down")}).Collect(context.Background(), 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring: list market history")
}
