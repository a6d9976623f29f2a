package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/warera-analytics/market-history/internal/collector"
	"github.com/warera-analytics/market-history/internal/config"
	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/store"
	"github.com/warera-analytics/market-history/pkg/warera"
)

// initStore opens the configured backend and applies the schema.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(c.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadFormulas returns the table at path, or the built-in table when path
// is empty.
func loadFormulas(path string) (*market.FormulaTable, error) {
	if path == "" {
		return market.DefaultFormulaTable(), nil
	}
	return market.LoadFormulaTable(path)
}

// initCollector wires the price client, formula table and writer.
func initCollector(c *config.Config, w collector.HistoryWriter) (*collector.Collector, error) {
	table, err := loadFormulas(c.Formulas.Path)
	if err != nil {
		return nil, err
	}

	client := warera.NewClient(
		warera.WithBaseURL(c.Prices.BaseURL),
		warera.WithUserAgent(c.Prices.UserAgent),
		warera.WithRatePerMinute(c.Prices.RatePerMinute),
		warera.WithTimeout(time.Duration(c.Prices.TimeoutSecs)*time.Second),
	)

	return collector.New(
		collector.NewWareraSource(client),
		w,
		table,
		collector.WithRequireComplete(c.Collector.RequireCompleteSnapshot),
	), nil
}
