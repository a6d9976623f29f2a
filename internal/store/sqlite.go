package store

import (
	"context"
	"database/sql"
	"math"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS marketHistory (
	product   TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	price     REAL
);

CREATE TABLE IF NOT EXISTS profitHistory (
	product        TEXT NOT NULL,
	timestamp      INTEGER NOT NULL,
	workUnitProfit REAL
);

CREATE INDEX IF NOT EXISTS idx_marketHistory_timestamp ON marketHistory(timestamp);
CREATE INDEX IF NOT EXISTS idx_marketHistory_product_timestamp ON marketHistory(product, timestamp);
CREATE INDEX IF NOT EXISTS idx_profitHistory_timestamp ON profitHistory(timestamp);
CREATE INDEX IF NOT EXISTS idx_profitHistory_product_timestamp ON profitHistory(product, timestamp);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertMarketHistory(ctx context.Context, rows []model.MarketHistoryRow) (int64, error) {
	args := make([][]any, len(rows))
	for i, r := range rows {
		args[i] = []any{string(r.Product), r.Timestamp, nullable(r.Price)}
	}
	return s.insertBatch(ctx, `INSERT INTO marketHistory (product, timestamp, price) VALUES (?, ?, ?)`, args)
}

func (s *SQLiteStore) InsertProfitHistory(ctx context.Context, rows []model.ProfitHistoryRow) (int64, error) {
	args := make([][]any, len(rows))
	for i, r := range rows {
		args[i] = []any{string(r.Product), r.Timestamp, nullable(r.WorkUnitProfit)}
	}
	return s.insertBatch(ctx, `INSERT INTO profitHistory (product, timestamp, workUnitProfit) VALUES (?, ?, ?)`, args)
}

// insertBatch runs one prepared INSERT per row inside a single transaction.
func (s *SQLiteStore) insertBatch(ctx context.Context, query string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin batch")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare batch")
	}
	defer stmt.Close() //nolint:errcheck

	for i, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit batch")
	}
	return int64(len(rows)), nil
}

func (s *SQLiteStore) ListMarketHistory(ctx context.Context, filter HistoryFilter) ([]model.MarketHistoryRow, error) {
	query, args := sqliteHistoryQuery(`SELECT product, timestamp, price FROM marketHistory`, filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list market history")
	}
	defer rows.Close()
	return scanMarketRows(rows)
}

func (s *SQLiteStore) ListProfitHistory(ctx context.Context, filter HistoryFilter) ([]model.ProfitHistoryRow, error) {
	query, args := sqliteHistoryQuery(`SELECT product, timestamp, workUnitProfit FROM profitHistory`, filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profit history")
	}
	defer rows.Close()
	return scanProfitRows(rows)
}

func (s *SQLiteStore) LatestMarket(ctx context.Context) ([]model.MarketHistoryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product, timestamp, price FROM marketHistory
		 WHERE timestamp = (SELECT MAX(timestamp) FROM marketHistory)
		 ORDER BY product`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest market")
	}
	defer rows.Close()
	return scanMarketRows(rows)
}

func (s *SQLiteStore) LatestProfits(ctx context.Context) ([]model.ProfitHistoryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product, timestamp, workUnitProfit FROM profitHistory
		 WHERE timestamp = (SELECT MAX(timestamp) FROM profitHistory)
		 ORDER BY product`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest profits")
	}
	defer rows.Close()
	return scanProfitRows(rows)
}

// sqliteHistoryQuery appends the filter clauses to a SELECT.
func sqliteHistoryQuery(base string, filter HistoryFilter) (string, []any) {
	query := base + ` WHERE timestamp >= ?`
	args := []any{sinceMillis(filter.Since)}

	if filter.Product != "" {
		query += ` AND product = ?`
		args = append(args, filter.Product)
	}
	if filter.HourlyOnly {
		query += ` AND strftime('%M', timestamp / 1000, 'unixepoch') = '00'`
	}
	query += ` ORDER BY timestamp ASC, product ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	return query, args
}

// helpers

// nullable maps values SQLite cannot store as REAL to NULL.
func nullable(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

func scanMarketRows(rows *sql.Rows) ([]model.MarketHistoryRow, error) {
	var out []model.MarketHistoryRow
	for rows.Next() {
		var r model.MarketHistoryRow
		var product string
		var price sql.NullFloat64
		if err := rows.Scan(&product, &r.Timestamp, &price); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan market row")
		}
		r.Product = market.ExtendedProduct(product)
		r.Price = nanIfNull(price)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate market rows")
}

func scanProfitRows(rows *sql.Rows) ([]model.ProfitHistoryRow, error) {
	var out []model.ProfitHistoryRow
	for rows.Next() {
		var r model.ProfitHistoryRow
		var product string
		var profit sql.NullFloat64
		if err := rows.Scan(&product, &r.Timestamp, &profit); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profit row")
		}
		r.Product = market.Product(product)
		r.WorkUnitProfit = nanIfNull(profit)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate profit rows")
}

func nanIfNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
