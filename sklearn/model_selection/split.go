// Package model_selection partitions rows into training and test sets.
package model_selection

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/core/random"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// Indices is a train/test partition of row positions.
type Indices struct {
	Train []int
	Test  []int
}

// Split holds the partition together with the materialised matrices.
// Row i of XTrain is input row Train[i]; likewise for the test side.
type Split struct {
	Indices
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense
}

// TrainTestSplitIndices permutes [0, n) with the seeded split stream and
// holds out the first ceil(testFraction*n) positions as the test set.
func TrainTestSplitIndices(n int, testFraction float64, seed uint64) (Indices, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Indices{}, errors.NewValidationError("test_fraction", "must be in (0, 1)", testFraction)
	}
	nTest := int(math.Ceil(testFraction * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain <= 0 {
		return Indices{}, errors.NewDataError("split", "", "too few rows for a non-empty train and test set")
	}

	perm := random.New(seed, random.StreamSplit).Perm(n)
	return Indices{
		Test:  slices.Clone(perm[:nTest]),
		Train: slices.Clone(perm[nTest:]),
	}, nil
}

// TrainTestSplit splits X and y row-wise.
func TrainTestSplit(X mat.Matrix, y mat.Vector, testFraction float64, seed uint64) (*Split, error) {
	n, p := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	idx, err := TrainTestSplitIndices(n, testFraction, seed)
	if err != nil {
		return nil, err
	}

	s := &Split{Indices: idx}
	s.XTrain, s.YTrain = takeRows(X, y, idx.Train, p)
	s.XTest, s.YTest = takeRows(X, y, idx.Test, p)

	log.GetLoggerWithName("model_selection.split").Info("train/test split",
		log.StageKey, "split",
		"train_rows", len(idx.Train),
		"test_rows", len(idx.Test),
		log.RandomSeedKey, seed,
	)
	return s, nil
}

func takeRows(X mat.Matrix, y mat.Vector, rows []int, p int) (*mat.Dense, *mat.VecDense) {
	Xo := mat.NewDense(len(rows), p, nil)
	yo := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		for j := 0; j < p; j++ {
			Xo.Set(i, j, X.At(r, j))
		}
		yo.SetVec(i, y.AtVec(r))
	}
	return Xo, yo
}
