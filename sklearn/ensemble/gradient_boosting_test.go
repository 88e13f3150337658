package ensemble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/metrics"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// makeData は x0 に非線形に依存し、x1 はノイズのような決定的な値を持つデータを作る
func makeData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x0 := float64(i) / float64(n) * 10
		x1 := float64((i*37)%n) / float64(n)
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y.SetVec(i, 1000+200*math.Sin(x0)+30*x0*x0)
	}
	return X, y
}

func TestGradientBoostingRegressor_FitReducesLoss(t *testing.T) {
	X, y := makeData(200)

	gbr := NewGradientBoostingRegressor(WithNEstimators(50))
	require.NoError(t, gbr.Fit(X, y))

	require.Len(t, gbr.TrainScore, 50)
	for i := 1; i < len(gbr.TrainScore); i++ {
		assert.LessOrEqual(t, gbr.TrainScore[i], gbr.TrainScore[i-1]+1e-9, "iteration %d", i+1)
	}

	pred, err := gbr.Predict(X)
	require.NoError(t, err)
	r2, err := metrics.R2Score(y, pred)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.95)

	assert.InDelta(t, mean(y), gbr.InitValue(), 1e-9)
	assert.Equal(t, 50, gbr.NTrees())
}

func TestGradientBoostingRegressor_StagedPredict(t *testing.T) {
	X, y := makeData(100)

	gbr := NewGradientBoostingRegressor(WithNEstimators(20))
	require.NoError(t, gbr.Fit(X, y))

	final, err := gbr.Predict(X)
	require.NoError(t, err)

	var stages []*mat.VecDense
	want := 1
	for i, p := range gbr.StagedPredict(X) {
		assert.Equal(t, want, i)
		want++
		stages = append(stages, p)
	}
	require.Len(t, stages, 20)
	for i := 0; i < 100; i++ {
		assert.InDelta(t, final.AtVec(i), stages[19].AtVec(i), 1e-9)
	}

	// 段階ごとの訓練MSEはTrainScoreと一致する
	mses, err := metrics.StagedMSE(y, gbr.StagedPredict(X))
	require.NoError(t, err)
	require.Len(t, mses, 20)
	for i := range mses {
		assert.InDelta(t, gbr.TrainScore[i], mses[i], 1e-6*gbr.TrainScore[i]+1e-9)
	}

	// restartable and stoppable
	count := 0
	for range gbr.StagedPredict(X) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)

	again := 0
	for range gbr.StagedPredict(X) {
		again++
	}
	assert.Equal(t, 20, again)
}

func TestGradientBoostingRegressor_StagedPredictNotFitted(t *testing.T) {
	gbr := NewGradientBoostingRegressor()
	n := 0
	for range gbr.StagedPredict(mat.NewDense(1, 1, nil)) {
		n++
	}
	assert.Zero(t, n)
}

func TestGradientBoostingRegressor_Losses(t *testing.T) {
	X, y := makeData(150)
	// 外れ値を1つ入れる
	y.SetVec(10, y.AtVec(10)+50000)

	for _, loss := range []string{LossSquaredError, LossAbsoluteError, LossHuber} {
		t.Run(loss, func(t *testing.T) {
			gbr := NewGradientBoostingRegressor(WithLoss(loss), WithNEstimators(30))
			require.NoError(t, gbr.Fit(X, y))
			require.Len(t, gbr.TrainScore, 30)
			assert.Less(t, gbr.TrainScore[29], gbr.TrainScore[0])

			pred, err := gbr.Predict(X)
			require.NoError(t, err)
			for i := 0; i < pred.Len(); i++ {
				require.False(t, math.IsNaN(pred.AtVec(i)))
			}
		})
	}

	gbr := NewGradientBoostingRegressor(WithLoss(LossAbsoluteError), WithNEstimators(1))
	require.NoError(t, gbr.Fit(mat.NewDense(4, 1, []float64{1, 2, 3, 4}), mat.NewVecDense(4, []float64{1, 2, 3, 100})))
	assert.Equal(t, 2.5, gbr.InitValue())
}

func TestGradientBoostingRegressor_FeatureImportances(t *testing.T) {
	X, y := makeData(200)

	gbr := NewGradientBoostingRegressor(WithNEstimators(30))
	_, err := gbr.FeatureImportances()
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, gbr.Fit(X, y))
	imp, err := gbr.FeatureImportances()
	require.NoError(t, err)
	require.Len(t, imp, 2)
	assert.InDelta(t, 1.0, imp[0]+imp[1], 1e-9)
	assert.Greater(t, imp[0], imp[1])
}

func TestGradientBoostingRegressor_Deterministic(t *testing.T) {
	X, y := makeData(120)

	a := NewGradientBoostingRegressor(WithNEstimators(15))
	b := NewGradientBoostingRegressor(WithNEstimators(15))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	pa, _ := a.Predict(X)
	pb, _ := b.Predict(X)
	assert.Equal(t, pa.RawVector().Data, pb.RawVector().Data)
	assert.Equal(t, a.TrainScore, b.TrainScore)
}

func TestGradientBoostingRegressor_ImmutableAfterFit(t *testing.T) {
	X, y := makeData(80)

	gbr := NewGradientBoostingRegressor(WithNEstimators(10))
	require.NoError(t, gbr.Fit(X, y))
	before, err := gbr.Predict(X)
	require.NoError(t, err)

	// 学習後にハイパーパラメータを書き換えても予測は変わらない
	gbr.LearningRate = 5

	after, err := gbr.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, before.RawVector().Data, after.RawVector().Data)

	var last *mat.VecDense
	for _, p := range gbr.StagedPredict(X) {
		last = p
	}
	require.NotNil(t, last)
	for i := 0; i < last.Len(); i++ {
		assert.InDelta(t, before.AtVec(i), last.AtVec(i), 1e-9)
	}
}

func TestGradientBoostingRegressor_Errors(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{1, 2, 3})
	var me *errors.ModelError

	tests := []struct {
		name string
		X    mat.Matrix
		y    mat.Vector
	}{
		{"zero rows", &mat.Dense{}, mat.NewVecDense(1, nil)},
		{"row mismatch", X, mat.NewVecDense(2, []float64{1, 2})},
		{"nan feature", mat.NewDense(3, 1, []float64{1, math.NaN(), 3}), y},
		{"nan target", X, mat.NewVecDense(3, []float64{1, math.NaN(), 3})},
		{"zero target variance", X, mat.NewVecDense(3, []float64{5, 5, 5})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGradientBoostingRegressor().Fit(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, errors.As(err, &me), "got %v", err)
		})
	}

	err := NewGradientBoostingRegressor(WithLoss("quantile")).Fit(X, y)
	assert.True(t, errors.IsConfigurationError(err))
	err = NewGradientBoostingRegressor(WithNEstimators(0)).Fit(X, y)
	assert.True(t, errors.IsConfigurationError(err))
	err = NewGradientBoostingRegressor(WithLearningRate(0)).Fit(X, y)
	assert.True(t, errors.IsConfigurationError(err))

	gbr := NewGradientBoostingRegressor(WithNEstimators(2))
	_, err = gbr.Predict(X)
	assert.Error(t, err)
	require.NoError(t, gbr.Fit(X, y))
	_, err = gbr.Predict(mat.NewDense(1, 2, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestGradientBoostingRegressor_LogsProgress(t *testing.T) {
	provider, logger := log.NewTestLoggerProvider(log.LevelDebug)
	prev := log.SetProvider(provider)
	defer log.SetProvider(prev)

	X, y := makeData(50)
	require.NoError(t, NewGradientBoostingRegressor(WithNEstimators(30)).Fit(X, y))

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	progress := 0
	for _, e := range entries {
		if e["message"] == "boosting progress" {
			progress++
		}
	}
	assert.Equal(t, 3, progress)
	assert.True(t, logger.ContainsField(log.IterationKey, float64(30)))
	assert.True(t, logger.ContainsMessage("boosting completed"))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, median(nil))
}

func TestHuberLeafValue(t *testing.T) {
	h := &huber{alpha: 0.9, gamma: 1}
	y := []float64{0, 0, 0, 10}
	f := []float64{0, 0, 0, 0}
	// median 0, clipped deviations 0,0,0,1 -> 0.25
	assert.InDelta(t, 0.25, h.LeafValue(y, f, nil, []int{0, 1, 2, 3}), 1e-12)
}

func mean(v *mat.VecDense) float64 {
	s := 0.0
	for i := 0; i < v.Len(); i++ {
		s += v.AtVec(i)
	}
	return s / float64(v.Len())
}
