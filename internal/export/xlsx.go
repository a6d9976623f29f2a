// Package export writes stored history to spreadsheet workbooks.
package export

import (
	"io"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/warera-analytics/market-history/internal/model"
)

// Sheet names in the exported workbook.
const (
	MarketSheet = "Market"
	ProfitSheet = "Profit"
)

var (
	marketHeader = []string{"product", "label", "time", "timestamp", "price"}
	profitHeader = []string{"product", "label", "time", "timestamp", "workUnitProfit"}
)

// Workbook builds an xlsx file with one sheet per history table.
func Workbook(market []model.MarketHistoryRow, profit []model.ProfitHistoryRow) (*xlsx.File, error) {
	f := xlsx.NewFile()

	ms, err := f.AddSheet(MarketSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add market sheet")
	}
	addHeader(ms, marketHeader)
	for _, r := range market {
		addRow(ms, string(r.Product), r.Product.Label(), r.Timestamp, r.Price)
	}

	ps, err := f.AddSheet(ProfitSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add profit sheet")
	}
	addHeader(ps, profitHeader)
	for _, r := range profit {
		addRow(ps, string(r.Product), r.Product.Label(), r.Timestamp, r.WorkUnitProfit)
	}

	return f, nil
}

// Write encodes the workbook to w.
func Write(w io.Writer, market []model.MarketHistoryRow, profit []model.ProfitHistoryRow) error {
	f, err := Workbook(market, profit)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

// Save writes the workbook to path.
func Save(path string, market []model.MarketHistoryRow, profit []model.ProfitHistoryRow) error {
	f, err := Workbook(market, profit)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func addHeader(sheet *xlsx.Sheet, cols []string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}

// addRow leaves the value cell empty for NaN and ±Inf.
func addRow(sheet *xlsx.Sheet, id, label string, ts int64, value float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(id)
	row.AddCell().SetString(label)
	row.AddCell().SetString(time.UnixMilli(ts).UTC().Format(time.RFC3339))
	row.AddCell().SetInt64(ts)
	cell := row.AddCell()
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		cell.SetFloat(value)
	}
}
