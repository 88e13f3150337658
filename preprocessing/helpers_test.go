package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/autoprice/core/table"
)

// listings はテスト用の生テーブル（射影で落ちる url 列を含む）
func listings(t *testing.T, price, year, odometer []float64, fuel []string) *table.Table {
	t.Helper()
	n := len(price)
	fill := func(v string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = v
		}
		return out
	}
	if year == nil {
		year = make([]float64, n)
		for i := range year {
			year[i] = 2015
		}
	}
	if odometer == nil {
		odometer = make([]float64, n)
		for i := range odometer {
			odometer[i] = float64(10000 * (i + 1))
		}
	}
	if fuel == nil {
		fuel = fill("gas")
	}
	tbl, err := table.New(
		table.CategoricalColumn("url", fill("https://example.invalid")),
		table.NumericColumn(ColPrice, price),
		table.NumericColumn(ColYear, year),
		table.CategoricalColumn(ColManufacturer, fill("ford")),
		table.CategoricalColumn(ColFuel, fuel),
		table.NumericColumn(ColOdometer, odometer),
		table.CategoricalColumn(ColTransmission, fill("automatic")),
		table.CategoricalColumn(ColDrive, fill("fwd")),
		table.CategoricalColumn(ColPaintColor, fill(UnknownCategory)),
		table.CategoricalColumn(ColType, fill("sedan")),
	)
	require.NoError(t, err)
	return tbl
}

var nan = math.NaN()
