// Package collector runs one fetch, compute and persist cycle per trigger.
package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/internal/model"
)

// HistoryWriter appends history batches. Each call is atomic on its own.
type HistoryWriter interface {
	InsertMarketHistory(ctx context.Context, rows []model.MarketHistoryRow) (int64, error)
	InsertProfitHistory(ctx context.Context, rows []model.ProfitHistoryRow) (int64, error)
}

// Outcome is the externally reported result of one invocation.
type Outcome string

const (
	Success Outcome = "success"
	Fail    Outcome = "fail"
)

// Trigger identifies what fired a run. The label is only logged.
type Trigger struct {
	Label string
}

// Result describes one invocation.
type Result struct {
	RunID      string
	Trigger    Trigger
	Outcome    Outcome
	Timestamp  int64 // epoch millis shared by every row, 0 if nothing was built
	MarketRows int
	ProfitRows int
	Missing    []market.ExtendedProduct
	Err        error
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// WithRequireComplete fails runs whose snapshot lacks any known product.
func WithRequireComplete(require bool) Option {
	return func(c *Collector) {
		c.requireComplete = require
	}
}

// Collector sequences fetch, profit computation and the two history writes.
// It holds no per-run state and is safe for concurrent use.
type Collector struct {
	source          PriceSource
	writer          HistoryWriter
	table           *market.FormulaTable
	now             func() time.Time
	requireComplete bool
}

// New creates a Collector. A nil table selects the built-in formulas.
func New(source PriceSource, writer HistoryWriter, table *market.FormulaTable, opts ...Option) *Collector {
	if table == nil {
		table = market.DefaultFormulaTable()
	}
	c := &Collector{
		source: source,
		writer: writer,
		table:  table,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one invocation. It never panics and never returns nil; the
// outcome and any error are carried on the Result.
func (c *Collector) Run(ctx context.Context, trig Trigger) (res *Result) {
	res = &Result{
		RunID:   uuid.NewString(),
		Trigger: trig,
		Outcome: Fail,
	}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = Fail
			res.Err = eris.Errorf("collector: panic: %v", r)
		}
		logResult(res)
	}()

	if err := c.collect(ctx, res); err != nil {
		res.Err = err
		return res
	}
	res.Outcome = Success
	return res
}

func (c *Collector) collect(ctx context.Context, res *Result) error {
	snap, err := c.source.Fetch(ctx)
	if err != nil {
		return eris.Wrap(err, "collector: fetch prices")
	}

	res.Missing = snap.Missing()
	if len(res.Missing) > 0 && c.requireComplete {
		return eris.Errorf("collector: snapshot missing %d products", len(res.Missing))
	}

	ts := c.now().UnixMilli()
	marketRows := BuildMarketRows(snap, ts)
	profitRows, err := BuildProfitRows(c.table, snap, ts)
	if err != nil {
		return err
	}
	res.Timestamp = ts

	n, err := c.writer.InsertMarketHistory(ctx, marketRows)
	if err != nil {
		return eris.Wrap(err, "collector: write market history")
	}
	res.MarketRows = int(n)

	n, err = c.writer.InsertProfitHistory(ctx, profitRows)
	if err != nil {
		return eris.Wrap(err, "collector: write profit history")
	}
	res.ProfitRows = int(n)

	return nil
}

// logResult emits the single per-invocation line.
func logResult(res *Result) {
	fields := []zap.Field{
		zap.String("component", "collector"),
		zap.String("run_id", res.RunID),
		zap.Int64("timestamp", res.Timestamp),
		zap.Int("market_rows", res.MarketRows),
		zap.Int("profit_rows", res.ProfitRows),
	}
	if len(res.Missing) > 0 {
		fields = append(fields, zap.Stringers("missing", res.Missing))
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	zap.L().Info("trigger fired at "+res.Trigger.Label+": "+string(res.Outcome), fields...)
}
