package store

import (
	"context"
	"time"

	"github.com/warera-analytics/market-history/internal/model"
)

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	// Since keeps rows at or after this instant. Zero means no lower bound.
	Since time.Time
	// Product keeps a single product id when set.
	Product string
	// HourlyOnly keeps rows whose timestamp falls on minute 0 of an hour.
	HourlyOnly bool
	// Limit caps the number of rows. Zero means no cap.
	Limit int
}

// Writer appends history rows. Each call is one atomic batch.
type Writer interface {
	InsertMarketHistory(ctx context.Context, rows []model.MarketHistoryRow) (int64, error)
	InsertProfitHistory(ctx context.Context, rows []model.ProfitHistoryRow) (int64, error)
}

// Reader queries history rows.
type Reader interface {
	ListMarketHistory(ctx context.Context, filter HistoryFilter) ([]model.MarketHistoryRow, error)
	ListProfitHistory(ctx context.Context, filter HistoryFilter) ([]model.ProfitHistoryRow, error)
	// LatestMarket returns every market row sharing the newest timestamp.
	LatestMarket(ctx context.Context) ([]model.MarketHistoryRow, error)
	// LatestProfits returns every profit row sharing the newest timestamp.
	LatestProfits(ctx context.Context) ([]model.ProfitHistoryRow, error)
}

// Store is the append-only persistence layer for market and profit history.
// Rows are never updated or deleted.
type Store interface {
	Writer
	Reader

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

func sinceMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
