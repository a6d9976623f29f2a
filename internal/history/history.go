// Package history derives the dashboard views over stored market and profit
// rows: time windows, profit rankings, and per-product series.
package history

import (
	"cmp"
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/rotisserie/eris"

	"github.com/warera-analytics/market-history/internal/model"
	"github.com/warera-analytics/market-history/internal/store"
)

// Window is a dashboard look-back period.
type Window string

const (
	Window24h Window = "24h"
	Window3d  Window = "3d"
	Window7d  Window = "7d"
)

// Windows lists every supported window, shortest first.
func Windows() []Window {
	return []Window{Window24h, Window3d, Window7d}
}

// ParseWindow validates s. The empty string selects Window24h.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "":
		return Window24h, nil
	case Window24h, Window3d, Window7d:
		return Window(s), nil
	}
	return "", eris.Errorf("history: unknown window %q (want 24h, 3d or 7d)", s)
}

// Duration returns the look-back span.
func (w Window) Duration() time.Duration {
	switch w {
	case Window3d:
		return 3 * 24 * time.Hour
	case Window7d:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Filter returns the store filter for w relative to now. Windows longer than
// a day keep only hourly samples.
func (w Window) Filter(now time.Time) store.HistoryFilter {
	return store.HistoryFilter{
		Since:      now.Add(-w.Duration()),
		HourlyOnly: w != Window24h,
	}
}

// RankedProfit is one entry in a profit ranking.
type RankedProfit struct {
	Rank int                    `json:"rank"`
	Row  model.ProfitHistoryRow `json:"row"`
}

// RankProfits orders rows by work-unit profit, highest first. NaN profits
// sort last; ties keep input order.
func RankProfits(rows []model.ProfitHistoryRow) []RankedProfit {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b model.ProfitHistoryRow) int {
		aNaN, bNaN := math.IsNaN(a.WorkUnitProfit), math.IsNaN(b.WorkUnitProfit)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		}
		return cmp.Compare(b.WorkUnitProfit, a.WorkUnitProfit)
	})

	out := make([]RankedProfit, len(sorted))
	for i, r := range sorted {
		out[i] = RankedProfit{Rank: i + 1, Row: r}
	}
	return out
}

// Point is one sample in a series.
type Point struct {
	Timestamp int64
	Value     float64
}

// MarshalJSON renders a NaN value as null.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp int64    `json:"timestamp"`
		Value     *float64 `json:"value"`
	}{p.Timestamp, model.Finite(p.Value)})
}

// Series holds the samples of one product in timestamp order.
type Series struct {
	Product string  `json:"product"`
	Label   string  `json:"label"`
	Points  []Point `json:"points"`
}

// MarketSeries pivots market rows into one series per product.
func MarketSeries(rows []model.MarketHistoryRow) []Series {
	return pivot(rows, func(r model.MarketHistoryRow) (string, string, Point) {
		return string(r.Product), r.Product.Label(), Point{Timestamp: r.Timestamp, Value: r.Price}
	})
}

// ProfitSeries pivots profit rows into one series per product.
func ProfitSeries(rows []model.ProfitHistoryRow) []Series {
	return pivot(rows, func(r model.ProfitHistoryRow) (string, string, Point) {
		return string(r.Product), r.Product.Label(), Point{Timestamp: r.Timestamp, Value: r.WorkUnitProfit}
	})
}

func pivot[R any](rows []R, split func(R) (string, string, Point)) []Series {
	index := make(map[string]int)
	var out []Series
	for _, r := range rows {
		id, label, p := split(r)
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, Series{Product: id, Label: label})
		}
		out[i].Points = append(out[i].Points, p)
	}
	for i := range out {
		slices.SortStableFunc(out[i].Points, func(a, b Point) int {
			return cmp.Compare(a.Timestamp, b.Timestamp)
		})
	}
	slices.SortFunc(out, func(a, b Series) int {
		return cmp.Compare(a.Product, b.Product)
	})
	return out
}
