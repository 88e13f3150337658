package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/dataset"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
	"github.com/YuminosukeSato/autoprice/preprocessing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CurrentYear = 2024
	cfg.NEstimators = 40
	return cfg
}

func TestRun(t *testing.T) {
	records := dataset.Synthetic(800, 1)
	cfg := testConfig()

	res, err := Run(context.Background(), records, cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 800, res.Rows.Input)
	assert.Greater(t, res.Rows.Cleaned, 0)
	assert.LessOrEqual(t, res.Rows.AfterOutliers, res.Rows.Cleaned)
	assert.Equal(t, res.Rows.AfterOutliers, res.Rows.Train+res.Rows.Test)
	assert.Equal(t, int(math.Ceil(cfg.TestFraction*float64(res.Rows.AfterOutliers))), res.Rows.Test)

	// 補完後は欠損なし
	for _, c := range preprocessing.ImputeColumns() {
		n, err := res.Table.CountMissing(c)
		require.NoError(t, err)
		assert.Zero(t, n, c)
	}

	// 価格以外の全列が候補で、テーブル順のまま
	require.Len(t, res.Scores, res.Table.NCols()-1)
	for _, s := range res.Scores {
		assert.NotEqual(t, preprocessing.ColPrice, s.Feature)
		assert.GreaterOrEqual(t, s.Value, 0.0)
	}
	require.NotEmpty(t, res.Selected)
	for _, f := range res.Selected {
		v, ok := res.Scores.Get(f)
		require.True(t, ok)
		assert.Greater(t, v, cfg.ImportanceThreshold)
	}
	assert.Len(t, res.Importances, len(res.Selected))

	// 予測はテスト行と揃っている
	price, err := res.Table.Numeric(preprocessing.ColPrice)
	require.NoError(t, err)
	require.Equal(t, len(res.Split.Test), res.YTest.Len())
	require.Equal(t, res.YTest.Len(), res.YPred.Len())
	for i, r := range res.Split.Test {
		assert.Equal(t, price[r], res.YTest.AtVec(i))
	}

	assert.Len(t, res.StagedMSE, cfg.NEstimators)
	assert.InDelta(t, res.Report.MSE, res.StagedMSE[len(res.StagedMSE)-1], 1e-6*res.Report.MSE)
	assert.Greater(t, res.Report.R2, 0.5)
	require.NotNil(t, res.Baseline)
	assert.Equal(t, res.Report.N, res.Baseline.N)

	stages := 0
	for i, p := range res.StagedPredictions() {
		stages++
		if i == cfg.NEstimators {
			for j := 0; j < p.Len(); j++ {
				assert.InDelta(t, res.YPred.AtVec(j), p.AtVec(j), 1e-9)
			}
		}
	}
	assert.Equal(t, cfg.NEstimators, stages)
}

func TestRunIsReproducible(t *testing.T) {
	records := dataset.Synthetic(500, 2)
	cfg := testConfig()

	a, err := Run(context.Background(), records, cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), records, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Scores, b.Scores)
	assert.Equal(t, a.Split.Test, b.Split.Test)
	assert.Equal(t, a.YPred.RawVector().Data, b.YPred.RawVector().Data)

	cfg.Seed = 7
	c, err := Run(context.Background(), records, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestRunValidatesBeforeAnyStage(t *testing.T) {
	provider, logger := log.NewTestLoggerProvider(log.LevelDebug)
	prev := log.SetProvider(provider)
	defer log.SetProvider(prev)

	cfg := testConfig()
	cfg.TestFraction = 1.5

	_, err := Run(context.Background(), dataset.Synthetic(50, 3), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
	assert.False(t, logger.ContainsMessage("stage"))
}

func TestRunDataErrors(t *testing.T) {
	cfg := testConfig()

	t.Run("empty after cleaning", func(t *testing.T) {
		cfg := cfg
		cfg.PriceMin, cfg.PriceMax = 1e6, 2e6
		_, err := Run(context.Background(), dataset.Synthetic(100, 4), cfg)
		var de *errors.DataError
		require.True(t, errors.As(err, &de), "got %v", err)
		assert.Equal(t, "clean", de.Stage)
	})

	t.Run("missing column", func(t *testing.T) {
		records, err := dataset.Synthetic(100, 4).Select(
			preprocessing.ColPrice, preprocessing.ColYear, preprocessing.ColOdometer)
		require.NoError(t, err)
		_, err = Run(context.Background(), records, cfg)
		assert.True(t, errors.IsDataError(err), "got %v", err)
	})

	t.Run("all-missing imputation column", func(t *testing.T) {
		src := dataset.Synthetic(100, 4)
		year := make([]float64, src.NRows())
		for i := range year {
			year[i] = math.NaN()
		}
		records, err := src.WithColumn(table.NumericColumn(preprocessing.ColYear, year))
		require.NoError(t, err)

		_, err = Run(context.Background(), records, cfg)
		var de *errors.DataError
		require.True(t, errors.As(err, &de), "got %v", err)
		assert.Equal(t, "impute", de.Stage)
		assert.Equal(t, preprocessing.ColYear, de.Column)
	})

	t.Run("no feature selected", func(t *testing.T) {
		// 価格が一定だと相互情報量はすべて0になる
		src := dataset.Synthetic(200, 4)
		price := make([]float64, src.NRows())
		for i := range price {
			price[i] = 10000
		}
		records, err := src.WithColumn(table.NumericColumn(preprocessing.ColPrice, price))
		require.NoError(t, err)

		_, err = Run(context.Background(), records, cfg)
		var de *errors.DataError
		require.True(t, errors.As(err, &de), "got %v", err)
		assert.Equal(t, "select", de.Stage)
	})
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, dataset.Synthetic(100, 5), testConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		param  string
		mutate func(*Config)
	}{
		{"sample_fraction", func(c *Config) { c.SampleFraction = 0 }},
		{"price_max", func(c *Config) { c.PriceMax = c.PriceMin }},
		{"impute_neighbors", func(c *Config) { c.ImputeNeighbors = 0 }},
		{"outlier_threshold", func(c *Config) { c.OutlierThreshold = -1 }},
		{"importance_threshold", func(c *Config) { c.ImportanceThreshold = 2 }},
		{"mi_neighbors", func(c *Config) { c.MINeighbors = 0 }},
		{"test_fraction", func(c *Config) { c.TestFraction = 0 }},
		{"n_estimators", func(c *Config) { c.NEstimators = 0 }},
		{"max_depth", func(c *Config) { c.MaxDepth = 0 }},
		{"learning_rate", func(c *Config) { c.LearningRate = math.NaN() }},
		{"loss", func(c *Config) { c.Loss = "quantile" }},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	res, err := Run(context.Background(), dataset.Synthetic(300, 6), testConfig())
	require.NoError(t, err)
	fp := res.Fingerprint()

	res.YPred.SetVec(0, res.YPred.AtVec(0)+1)
	assert.NotEqual(t, fp, res.Fingerprint())

	assert.NotEqual(t, uint64(0), (&Result{}).Fingerprint())
}
