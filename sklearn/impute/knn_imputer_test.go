package impute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

var nan = math.NaN()

func yearOdometer(t *testing.T, year, odo []float64) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NumericColumn("year", year),
		table.CategoricalColumn("fuel", make([]string, len(year))),
		table.NumericColumn("odometer", odo),
	)
	require.NoError(t, err)
	return tbl
}

func TestKNNImputerNearestMean(t *testing.T) {
	tbl := yearOdometer(t,
		[]float64{2010, 2012, nan, 2020},
		[]float64{100, 200, 210, 1000},
	)

	imp := NewKNNImputer(2, "year", "odometer")
	out, err := imp.Transform(tbl)
	require.NoError(t, err)

	year, _ := out.Numeric("year")
	assert.Equal(t, []float64{2010, 2012, 2011, 2020}, year)
	assert.Equal(t, 1, imp.Filled("year"))
	assert.Equal(t, 0, imp.Filled("odometer"))

	// 入力は変更されない
	orig, _ := tbl.Numeric("year")
	assert.True(t, math.IsNaN(orig[2]))
	assert.Equal(t, []string{"year", "fuel", "odometer"}, out.Names())
}

func TestKNNImputerTiesGoToEarlierRows(t *testing.T) {
	tbl := yearOdometer(t,
		[]float64{2000, 2010, nan, 2030},
		[]float64{100, 300, 200, 300},
	)

	out, err := NewKNNImputer(1, "year", "odometer").Transform(tbl)
	require.NoError(t, err)
	year, _ := out.Numeric("year")
	assert.Equal(t, 2000.0, year[2])

	out, err = NewKNNImputer(2, "year", "odometer").Transform(tbl)
	require.NoError(t, err)
	year, _ = out.Numeric("year")
	assert.Equal(t, 2005.0, year[2])
}

func TestKNNImputerUsesInputSnapshot(t *testing.T) {
	tbl := yearOdometer(t,
		[]float64{nan, 2010, 2000},
		[]float64{100, nan, 300},
	)

	out, err := NewKNNImputer(1, "year", "odometer").Transform(tbl)
	require.NoError(t, err)

	year, _ := out.Numeric("year")
	odo, _ := out.Numeric("odometer")
	assert.Equal(t, 2000.0, year[0])
	// row 0 has no year in the input, so it cannot be a donor for row 1
	assert.Equal(t, 300.0, odo[1])
}

func TestKNNImputerFallsBackToColumnMean(t *testing.T) {
	tbl := yearOdometer(t,
		[]float64{nan, 2010, 2012},
		[]float64{nan, 5, 6},
	)

	var warned []error
	errors.SetZerologWarnFunc(func(w error) { warned = append(warned, w) })
	defer errors.SetZerologWarnFunc(nil)

	imp := NewKNNImputer(5, "year", "odometer")
	out, err := imp.Transform(tbl)
	require.NoError(t, err)

	year, _ := out.Numeric("year")
	odo, _ := out.Numeric("odometer")
	assert.Equal(t, 2011.0, year[0])
	assert.Equal(t, 5.5, odo[0])
	assert.Equal(t, 1, imp.Fallbacks("year"))
	assert.Len(t, warned, 2)
}

func TestKNNImputerAllMissingColumn(t *testing.T) {
	tbl := yearOdometer(t,
		[]float64{nan, nan},
		[]float64{1, 2},
	)

	_, err := NewKNNImputer(5, "year", "odometer").Transform(tbl)
	require.True(t, errors.IsDataError(err))
	var de *errors.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "impute", de.Stage)
	assert.Equal(t, "year", de.Column)
}

func TestKNNImputerInvalidK(t *testing.T) {
	tbl := yearOdometer(t, []float64{1}, []float64{1})
	_, err := NewKNNImputer(0, "year", "odometer").Transform(tbl)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestKNNImputerDeterministic(t *testing.T) {
	n := 300
	year := make([]float64, n)
	odo := make([]float64, n)
	for i := 0; i < n; i++ {
		year[i] = 1995 + float64((i*7)%28)
		odo[i] = float64((i * 7919) % 250000)
		switch {
		case i%3 == 0:
			year[i] = nan
		case i%11 == 0:
			odo[i] = nan
		}
	}
	tbl := yearOdometer(t, year, odo)

	a, err := NewKNNImputer(5, "year", "odometer").Transform(tbl)
	require.NoError(t, err)
	b, err := NewKNNImputer(5, "year", "odometer").Transform(tbl)
	require.NoError(t, err)

	for _, col := range []string{"year", "odometer"} {
		va, _ := a.Numeric(col)
		vb, _ := b.Numeric(col)
		assert.Equal(t, va, vb)
		missing, _ := a.CountMissing(col)
		assert.Zero(t, missing)
	}
}

func TestNanEuclidean(t *testing.T) {
	d, ok := nanEuclidean([]float64{1, nan}, []float64{4, 10})
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(2*9), d, 1e-12)

	_, ok = nanEuclidean([]float64{nan, 1}, []float64{1, nan})
	assert.False(t, ok)
}
