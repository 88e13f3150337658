package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/core/parallel"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

// Dataset is a column-major copy of a feature matrix with every column's
// rows presorted by value. Boosting fits many trees on the same rows and
// shares one Dataset between them.
type Dataset struct {
	cols  [][]float64
	order [][]int
	n     int
}

// NewDataset copies X and presorts its columns. NaN or Inf cells are rejected.
func NewDataset(X mat.Matrix) (*Dataset, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, errors.NewModelError("tree.NewDataset", "empty data", errors.ErrEmptyData)
	}

	d := &Dataset{
		cols:  make([][]float64, p),
		order: make([][]int, p),
		n:     n,
	}
	bad := make([]bool, p)
	parallel.ForEach(p, 1, func(j int) {
		col := mat.Col(nil, j, X)
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				bad[j] = true
				return
			}
		}
		ord := make([]int, n)
		for i := range ord {
			ord[i] = i
		}
		// 同値は行番号順
		sort.SliceStable(ord, func(a, b int) bool { return col[ord[a]] < col[ord[b]] })
		d.cols[j] = col
		d.order[j] = ord
	})
	for j, b := range bad {
		if b {
			return nil, errors.NewModelError("tree.NewDataset", "invalid input",
				errors.Newf("feature %d contains NaN or Inf", j))
		}
	}
	return d, nil
}

// Dims returns the number of rows and features.
func (d *Dataset) Dims() (int, int) { return d.n, len(d.cols) }

func (d *Dataset) row(i int) func(j int) float64 {
	return func(j int) float64 { return d.cols[j][i] }
}
