// Package dataset loads used-car listings into a table.Table.
package dataset

import (
	"io"
	"math"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
	"github.com/YuminosukeSato/autoprice/preprocessing"
)

// cells read as missing
var missingValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// Load reads the CSV file at path. See ReadCSV.
func Load(path string, columns ...string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f, columns...)
}

// ReadCSV parses a CSV with a header row and keeps columns, in that order.
// With no columns the nine record columns are kept. price, year and
// odometer are numeric with missing cells as NaN; every other column is
// categorical with missing cells as "unknown". Extra input columns are
// ignored; a missing requested column is a DataError.
func ReadCSV(r io.Reader, columns ...string) (*table.Table, error) {
	if len(columns) == 0 {
		columns = preprocessing.RecordColumns()
	}

	types := make(map[string]series.Type, len(columns))
	for _, c := range columns {
		types[c] = series.String
	}
	numeric := preprocessing.NumericColumns()
	for _, c := range numeric {
		types[c] = series.Float
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
		dataframe.NaNValues(missingValues),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return nil, errors.NewDataError("load", "", df.Err.Error())
	}

	present := df.Names()
	for _, c := range columns {
		if !slices.Contains(present, c) {
			return nil, errors.NewDataError("load", c, "missing from input")
		}
	}

	cols := make([]table.Column, 0, len(columns))
	for _, c := range columns {
		s := df.Col(c)
		if slices.Contains(numeric, c) {
			cols = append(cols, table.NumericColumn(c, floats(s)))
			continue
		}
		cols = append(cols, table.CategoricalColumn(c, categories(s)))
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	log.GetLoggerWithName("dataset").Info("listings loaded",
		log.StageKey, "load",
		log.SamplesKey, t.NRows(),
		log.FeaturesKey, t.NCols(),
	)
	return t, nil
}

func floats(s series.Series) []float64 {
	v := s.Float()
	nan := s.IsNaN()
	for i := range v {
		if nan[i] {
			v[i] = math.NaN()
		}
	}
	return v
}

func categories(s series.Series) []string {
	v := s.Records()
	nan := s.IsNaN()
	for i := range v {
		if nan[i] {
			v[i] = preprocessing.UnknownCategory
		}
	}
	return v
}
