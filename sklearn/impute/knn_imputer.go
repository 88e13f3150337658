// Package impute fills missing numeric values.
package impute

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/autoprice/core/parallel"
	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// receivers above this count are processed in parallel
const parallelThreshold = 64

// KNNImputer replaces missing values with the mean of the k nearest donor rows.
//
// Distance is the NaN-aware euclidean distance over the imputation columns:
// only coordinates present in both rows count, and the sum is scaled by
// total/present coordinates. Donors for a column are the rows where that
// column is present. Ties in distance go to the earlier row. All distances are
// measured on the input, so a freshly imputed value never feeds another one.
type KNNImputer struct {
	NNeighbors int
	Columns    []string

	// filled counts, per column, how many cells the last Transform filled
	filled map[string]int
	// fallbacks counts receivers that had no valid donor and got the column mean
	fallbacks map[string]int
}

// NewKNNImputer creates an imputer over the given numeric columns.
func NewKNNImputer(k int, columns ...string) *KNNImputer {
	return &KNNImputer{NNeighbors: k, Columns: columns}
}

// Transform returns a copy of t with the imputation columns filled.
func (imp *KNNImputer) Transform(t *table.Table) (out *table.Table, err error) {
	defer errors.Recover(&err, "KNNImputer.Transform")

	if imp.NNeighbors < 1 {
		return nil, errors.NewValidationError("impute_neighbors", "must be at least 1", imp.NNeighbors)
	}

	cols := make([][]float64, len(imp.Columns))
	for j, name := range imp.Columns {
		v, err := t.Numeric(name)
		if err != nil {
			return nil, errors.Wrap(err, "impute")
		}
		cols[j] = v
	}

	filledCols, err := imp.impute(cols)
	if err != nil {
		return nil, err
	}

	out = t
	for j, name := range imp.Columns {
		if out, err = out.WithNumeric(name, filledCols[j]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Filled returns how many cells of column were filled by the last Transform.
func (imp *KNNImputer) Filled(column string) int {
	return imp.filled[column]
}

// Fallbacks returns how many cells of column fell back to the column mean.
func (imp *KNNImputer) Fallbacks(column string) int {
	return imp.fallbacks[column]
}

func (imp *KNNImputer) impute(cols [][]float64) ([][]float64, error) {
	logger := log.GetLoggerWithName("impute.knn")
	nFeat := len(cols)
	if nFeat == 0 {
		return cols, nil
	}
	nRows := len(cols[0])

	// row-major snapshot
	X := make([][]float64, nRows)
	for i := range X {
		X[i] = make([]float64, nFeat)
		for j := range cols {
			X[i][j] = cols[j][i]
		}
	}

	imp.filled = make(map[string]int, nFeat)
	imp.fallbacks = make(map[string]int, nFeat)
	out := make([][]float64, nFeat)

	for c, name := range imp.Columns {
		out[c] = slices.Clone(cols[c])

		var receivers, donors []int
		var sum float64
		for i := 0; i < nRows; i++ {
			if math.IsNaN(X[i][c]) {
				receivers = append(receivers, i)
			} else {
				donors = append(donors, i)
				sum += X[i][c]
			}
		}
		if len(receivers) == 0 {
			continue
		}
		if len(donors) == 0 {
			return nil, errors.NewDataError("impute", name, "column has no observed values")
		}
		colMean := sum / float64(len(donors))

		values := make([]float64, len(receivers))
		noDonor := make([]bool, len(receivers))
		parallel.ForEach(len(receivers), parallelThreshold, func(r int) {
			v, ok := imp.neighbourMean(X, receivers[r], donors, c)
			if !ok {
				v = colMean
				noDonor[r] = true
			}
			values[r] = v
		})

		fallbacks := 0
		for r, row := range receivers {
			out[c][row] = values[r]
			if noDonor[r] {
				fallbacks++
			}
		}
		imp.filled[name] = len(receivers)
		imp.fallbacks[name] = fallbacks
		if fallbacks > 0 {
			errors.Warn(errors.NewDegeneracyWarning("impute", name,
				"rows share no observed coordinate with any donor", "filled with column mean"))
		}

		logger.Info("column imputed",
			log.StageKey, "impute",
			log.ColumnKey, name,
			log.MissingKey, len(receivers),
			log.NeighborsKey, imp.NNeighbors,
			"fallbacks", fallbacks,
		)
	}
	return out, nil
}

type neighbour struct {
	dist float64
	row  int
}

// neighbourMean averages column c over the k nearest valid donors of row r.
// It returns false when no donor has a defined distance.
func (imp *KNNImputer) neighbourMean(X [][]float64, r int, donors []int, c int) (float64, bool) {
	k := imp.NNeighbors
	best := make([]neighbour, 0, k)
	for _, d := range donors {
		dist, ok := nanEuclidean(X[r], X[d])
		if !ok {
			continue
		}
		if len(best) == k && dist >= best[k-1].dist {
			continue
		}
		// insert after every entry with dist <= this one, earlier rows win ties
		pos := len(best)
		for pos > 0 && best[pos-1].dist > dist {
			pos--
		}
		if len(best) < k {
			best = append(best, neighbour{})
		}
		copy(best[pos+1:], best[pos:len(best)-1])
		best[pos] = neighbour{dist: dist, row: d}
	}
	if len(best) == 0 {
		return 0, false
	}
	vals := make([]float64, len(best))
	for i, nb := range best {
		vals[i] = X[nb.row][c]
	}
	return floats.Sum(vals) / float64(len(vals)), true
}

// nanEuclidean is sqrt(total/present * sum of squared differences) over the
// coordinates present in both a and b.
func nanEuclidean(a, b []float64) (float64, bool) {
	var ss float64
	present := 0
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		d := a[i] - b[i]
		ss += d * d
		present++
	}
	if present == 0 {
		return 0, false
	}
	return math.Sqrt(float64(len(a)) / float64(present) * ss), true
}
