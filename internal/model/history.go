package model

import (
	"encoding/json"
	"math"

	"github.com/warera-analytics/market-history/internal/market"
)

// Table names shared by every store backend.
const (
	MarketHistoryTable = "marketHistory"
	ProfitHistoryTable = "profitHistory"
)

// MarketHistoryRow is one observed unit price.
type MarketHistoryRow struct {
	Product   market.ExtendedProduct `json:"product"`
	Timestamp int64                  `json:"timestamp"` // epoch millis
	Price     float64                `json:"price"`
}

// ProfitHistoryRow is one computed work-unit profit.
type ProfitHistoryRow struct {
	Product        market.Product `json:"product"`
	Timestamp      int64          `json:"timestamp"` // epoch millis
	WorkUnitProfit float64        `json:"workUnitProfit"`
}

// MarshalJSON renders a NaN price as null.
func (r MarketHistoryRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Product   market.ExtendedProduct `json:"product"`
		Label     string                 `json:"label"`
		Timestamp int64                  `json:"timestamp"`
		Price     *float64               `json:"price"`
	}{r.Product, r.Product.Label(), r.Timestamp, Finite(r.Price)})
}

// MarshalJSON renders a NaN profit as null.
func (r ProfitHistoryRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Product        market.Product `json:"product"`
		Label          string         `json:"label"`
		Timestamp      int64          `json:"timestamp"`
		WorkUnitProfit *float64       `json:"workUnitProfit"`
	}{r.Product, r.Product.Label(), r.Timestamp, Finite(r.WorkUnitProfit)})
}

// Finite returns nil for NaN and ±Inf, which JSON cannot represent.
func Finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
