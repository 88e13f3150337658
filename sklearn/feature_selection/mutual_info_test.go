package feature_selection

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

func dependentData(n int) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewPCG(1, 2))
	X := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		signal := rng.Float64() * 100
		X.Set(i, 0, signal)
		X.Set(i, 1, rng.Float64()*100)
		X.Set(i, 2, float64(rng.IntN(4))) // label-encoded category, unrelated
		y.SetVec(i, 3*signal+rng.NormFloat64())
	}
	return X, y
}

func TestMutualInfoRegressionSeparatesSignalFromNoise(t *testing.T) {
	X, y := dependentData(400)

	scores, err := NewMutualInfoRegression(3, 42).Score(X, y, []string{"signal", "noise", "category"})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	sig, _ := scores.Get("signal")
	noise, _ := scores.Get("noise")
	cat, _ := scores.Get("category")
	assert.Greater(t, sig, 1.0)
	assert.Less(t, noise, 0.1)
	assert.Less(t, cat, 0.1)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Value, 0.0)
	}
	assert.Equal(t, []string{"signal", "noise", "category"}, []string{scores[0].Feature, scores[1].Feature, scores[2].Feature})
}

func TestMutualInfoRegressionIsReproducible(t *testing.T) {
	X, y := dependentData(200)
	names := []string{"a", "b", "c"}

	s1, err := NewMutualInfoRegression(3, 42).Score(X, y, names)
	require.NoError(t, err)
	s2, err := NewMutualInfoRegression(3, 42).Score(X, y, names)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestMutualInfoRegressionZeroVarianceFeature(t *testing.T) {
	X, y := dependentData(100)
	for i := 0; i < 100; i++ {
		X.Set(i, 1, 7)
	}

	var warned []error
	errors.SetZerologWarnFunc(func(w error) { warned = append(warned, w) })
	defer errors.SetZerologWarnFunc(nil)

	scores, err := NewMutualInfoRegression(3, 42).Score(X, y, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[1].Value)
	require.Len(t, warned, 1)
	var dw *errors.DegeneracyWarning
	require.True(t, errors.As(warned[0], &dw))
	assert.Equal(t, "b", dw.Column)
}

func TestMutualInfoRegressionErrors(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{1, 2, 3})

	_, err := NewMutualInfoRegression(3, 1).Score(X, y, []string{"a"})
	assert.True(t, errors.IsDataError(err))

	_, err = NewMutualInfoRegression(0, 1).Score(X, y, []string{"a"})
	assert.True(t, errors.IsConfigurationError(err))

	_, err = NewMutualInfoRegression(1, 1).Score(X, y, []string{"a", "b"})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestJointTreeMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))

	tests := []struct {
		name string
		n    int
		draw func() (float64, float64)
	}{
		// integer grid, lots of ties
		{"grid", 150, func() (float64, float64) { return float64(rng.IntN(6)), float64(rng.IntN(20)) }},
		{"normal", 2000, func() (float64, float64) { return rng.NormFloat64(), rng.NormFloat64() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := make([]float64, tt.n)
			y := make([]float64, tt.n)
			for i := range x {
				x[i], y[i] = tt.draw()
			}
			tree := newJointTree(x, y)

			d := make([]float64, 0, tt.n-1)
			for q := 0; q < tt.n; q++ {
				d = d[:0]
				for j := 0; j < tt.n; j++ {
					if j != q {
						d = append(d, math.Max(math.Abs(x[j]-x[q]), math.Abs(y[j]-y[q])))
					}
				}
				slices.Sort(d)
				for _, k := range []int{1, 3, 5} {
					require.Equalf(t, d[k-1], tree.kthDistance(q, k), "q=%d k=%d", q, k)
				}
			}
		})
	}

	assert.True(t, math.IsInf(newJointTree([]float64{1, 2}, []float64{1, 2}).kthDistance(0, 3), 1))
}

func TestCountWithin(t *testing.T) {
	sorted := []float64{1, 2, 2, 3, 5, 8}
	assert.Equal(t, 1, countWithin(sorted, 2, 1))   // 1 and 3 sit exactly on the radius
	assert.Equal(t, 3, countWithin(sorted, 2, 1.5))
	assert.Equal(t, 0, countWithin(sorted, 8, 3))
	assert.Equal(t, 0, countWithin(sorted, 5, 0))
}
