package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/warera-analytics/market-history/internal/db"
	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var (
	marketColumns = []string{"product", "timestamp", "price"}
	profitColumns = []string{"product", "timestamp", "workUnitProfit"}
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Hourly filtering extracts the minute in UTC.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, `SET TIME ZONE 'UTC'`); err != nil {
			return eris.Wrap(err, "postgres: set time zone")
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS "marketHistory" (
	product     TEXT NOT NULL,
	"timestamp" BIGINT NOT NULL,
	price       DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS "profitHistory" (
	product          TEXT NOT NULL,
	"timestamp"      BIGINT NOT NULL,
	"workUnitProfit" DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS "idx_marketHistory_timestamp" ON "marketHistory" ("timestamp");
CREATE INDEX IF NOT EXISTS "idx_marketHistory_product_timestamp" ON "marketHistory" (product, "timestamp");
CREATE INDEX IF NOT EXISTS "idx_profitHistory_timestamp" ON "profitHistory" ("timestamp");
CREATE INDEX IF NOT EXISTS "idx_profitHistory_product_timestamp" ON "profitHistory" (product, "timestamp");
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertMarketHistory(ctx context.Context, rows []model.MarketHistoryRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{string(r.Product), r.Timestamp, r.Price}
	}
	n, err := db.CopyFrom(ctx, s.pool, model.MarketHistoryTable, marketColumns, data)
	return n, eris.Wrap(err, "postgres: insert market history")
}

func (s *PostgresStore) InsertProfitHistory(ctx context.Context, rows []model.ProfitHistoryRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = []any{string(r.Product), r.Timestamp, r.WorkUnitProfit}
	}
	n, err := db.CopyFrom(ctx, s.pool, model.ProfitHistoryTable, profitColumns, data)
	return n, eris.Wrap(err, "postgres: insert profit history")
}

func (s *PostgresStore) ListMarketHistory(ctx context.Context, filter HistoryFilter) ([]model.MarketHistoryRow, error) {
	query, args := postgresHistoryQuery(`SELECT product, "timestamp", price FROM "marketHistory"`, filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list market history")
	}
	return collectMarketRows(rows)
}

func (s *PostgresStore) ListProfitHistory(ctx context.Context, filter HistoryFilter) ([]model.ProfitHistoryRow, error) {
	query, args := postgresHistoryQuery(`SELECT product, "timestamp", "workUnitProfit" FROM "profitHistory"`, filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profit history")
	}
	return collectProfitRows(rows)
}

func (s *PostgresStore) LatestMarket(ctx context.Context) ([]model.MarketHistoryRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product, "timestamp", price FROM "marketHistory"
		 WHERE "timestamp" = (SELECT MAX("timestamp") FROM "marketHistory")
		 ORDER BY product`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest market")
	}
	return collectMarketRows(rows)
}

func (s *PostgresStore) LatestProfits(ctx context.Context) ([]model.ProfitHistoryRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product, "timestamp", "workUnitProfit" FROM "profitHistory"
		 WHERE "timestamp" = (SELECT MAX("timestamp") FROM "profitHistory")
		 ORDER BY product`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest profits")
	}
	return collectProfitRows(rows)
}

// postgresHistoryQuery appends the filter clauses to a SELECT using
// positional placeholders.
func postgresHistoryQuery(base string, filter HistoryFilter) (string, []any) {
	args := []any{sinceMillis(filter.Since)}
	query := base + ` WHERE "timestamp" >= $1`

	if filter.Product != "" {
		args = append(args, filter.Product)
		query += fmt.Sprintf(` AND product = $%d`, len(args))
	}
	if filter.HourlyOnly {
		query += ` AND EXTRACT(MINUTE FROM to_timestamp("timestamp" / 1000.0)) = 0`
	}
	query += ` ORDER BY "timestamp" ASC, product ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return query, args
}

func collectMarketRows(rows pgx.Rows) ([]model.MarketHistoryRow, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.MarketHistoryRow, error) {
		var r model.MarketHistoryRow
		var product string
		var price *float64
		if err := row.Scan(&product, &r.Timestamp, &price); err != nil {
			return r, err
		}
		r.Product = market.ExtendedProduct(product)
		r.Price = nanIfNil(price)
		return r, nil
	})
	return out, eris.Wrap(err, "postgres: scan market rows")
}

func collectProfitRows(rows pgx.Rows) ([]model.ProfitHistoryRow, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ProfitHistoryRow, error) {
		var r model.ProfitHistoryRow
		var product string
		var profit *float64
		if err := row.Scan(&product, &r.Timestamp, &profit); err != nil {
			return r, err
		}
		r.Product = market.Product(product)
		r.WorkUnitProfit = nanIfNil(profit)
		return r, nil
	})
	return out, eris.Wrap(err, "postgres: scan profit rows")
}

func nanIfNil(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
