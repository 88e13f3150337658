// Package pipeline runs the used-car price model end to end: cleaning,
// imputation, outlier rejection, encoding, feature engineering, feature
// selection, splitting, boosting and evaluation, strictly in that order.
package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/linear"
	"github.com/YuminosukeSato/autoprice/metrics"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
	"github.com/YuminosukeSato/autoprice/preprocessing"
	"github.com/YuminosukeSato/autoprice/sklearn/ensemble"
	"github.com/YuminosukeSato/autoprice/sklearn/feature_selection"
	"github.com/YuminosukeSato/autoprice/sklearn/impute"
	"github.com/YuminosukeSato/autoprice/sklearn/model_selection"
)

// Run executes every stage on records and returns the fitted model with its
// diagnostics. The configuration is validated before any stage runs. ctx is
// checked between stages.
func Run(ctx context.Context, records *table.Table, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString(), Config: cfg}
	logger := log.GetLoggerWithName("pipeline").With(log.RunIDKey, res.RunID)
	start := time.Now()
	logger.Info("pipeline started",
		log.SamplesKey, records.NRows(),
		log.RandomSeedKey, cfg.Seed,
	)
	res.Rows.Input = records.NRows()

	fail := func(stage string, err error) (*Result, error) {
		logger.Error("pipeline failed", err, log.StageKey, stage)
		return nil, err
	}
	stage := func(name string) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "before %s", name)
		}
		logger.Debug("stage started", log.StageKey, name)
		return nil
	}

	// clean
	if err := stage("clean"); err != nil {
		return fail("clean", err)
	}
	cleaner := preprocessing.NewCleaner(
		preprocessing.WithPriceRange(cfg.PriceMin, cfg.PriceMax),
		preprocessing.WithSampleFraction(cfg.SampleFraction),
		preprocessing.WithCleanerSeed(cfg.Seed),
	)
	t, err := cleaner.Transform(records)
	if err != nil {
		return fail("clean", err)
	}
	if t.NRows() == 0 {
		return fail("clean", errors.NewDataError("clean", "", "no rows left after cleaning"))
	}
	res.Rows.Cleaned = t.NRows()
	logger.Info("stage completed", log.StageKey, "clean", log.SamplesKey, t.NRows())

	// impute
	if err := stage("impute"); err != nil {
		return fail("impute", err)
	}
	imputer := impute.NewKNNImputer(cfg.ImputeNeighbors, preprocessing.ImputeColumns()...)
	if t, err = imputer.Transform(t); err != nil {
		return fail("impute", err)
	}
	res.Rows.Imputed = make(map[string]int, len(imputer.Columns))
	for _, c := range imputer.Columns {
		res.Rows.Imputed[c] = imputer.Filled(c)
	}
	logger.Info("stage completed", log.StageKey, "impute", log.SamplesKey, t.NRows())

	// outlier
	if err := stage("outlier"); err != nil {
		return fail("outlier", err)
	}
	filter := preprocessing.NewZScoreFilter(preprocessing.ColOdometer, cfg.OutlierThreshold)
	if t, err = filter.Transform(t); err != nil {
		return fail("outlier", err)
	}
	if t.NRows() == 0 {
		return fail("outlier", errors.NewDataError("outlier", preprocessing.ColOdometer, "no rows left after outlier removal"))
	}
	res.Rows.AfterOutliers = t.NRows()
	logger.Info("stage completed", log.StageKey, "outlier", log.SamplesKey, t.NRows())

	// encode
	if err := stage("encode"); err != nil {
		return fail("encode", err)
	}
	encoder := preprocessing.NewLabelEncoder(preprocessing.CategoricalColumns()...)
	if t, res.Encoding, err = encoder.FitTransform(t); err != nil {
		return fail("encode", err)
	}

	// features
	if err := stage("features"); err != nil {
		return fail("features", err)
	}
	if t, err = preprocessing.NewFeatureEngineer(cfg.CurrentYear).Transform(t); err != nil {
		return fail("features", err)
	}
	res.Table = t

	// select
	if err := stage("select"); err != nil {
		return fail("select", err)
	}
	candidates := slices.DeleteFunc(t.Names(), func(n string) bool { return n == preprocessing.ColPrice })
	X, err := t.Matrix(candidates...)
	if err != nil {
		return fail("select", err)
	}
	y, err := t.Vector(preprocessing.ColPrice)
	if err != nil {
		return fail("select", err)
	}
	mi := feature_selection.NewMutualInfoRegression(cfg.MINeighbors, cfg.Seed)
	if res.Scores, err = mi.Score(X, y, candidates); err != nil {
		return fail("select", err)
	}
	if res.Selected, err = feature_selection.SelectByThreshold(res.Scores, cfg.ImportanceThreshold); err != nil {
		return fail("select", err)
	}

	// split
	if err := stage("split"); err != nil {
		return fail("split", err)
	}
	Xsel, err := t.Matrix(res.Selected...)
	if err != nil {
		return fail("split", err)
	}
	if res.Split, err = model_selection.TrainTestSplit(Xsel, y, cfg.TestFraction, cfg.Seed); err != nil {
		return fail("split", err)
	}
	res.Rows.Train = len(res.Split.Train)
	res.Rows.Test = len(res.Split.Test)

	// boost
	if err := stage("boost"); err != nil {
		return fail("boost", err)
	}
	res.Model = ensemble.NewGradientBoostingRegressor(
		ensemble.WithNEstimators(cfg.NEstimators),
		ensemble.WithLearningRate(cfg.LearningRate),
		ensemble.WithMaxDepth(cfg.MaxDepth),
		ensemble.WithLoss(cfg.Loss),
	)
	if err := res.Model.Fit(res.Split.XTrain, res.Split.YTrain); err != nil {
		return fail("boost", err)
	}
	if res.Importances, err = res.Model.FeatureImportances(); err != nil {
		return fail("boost", err)
	}

	// evaluate
	if err := stage("evaluate"); err != nil {
		return fail("evaluate", err)
	}
	if res.YPred, err = res.Model.Predict(res.Split.XTest); err != nil {
		return fail("evaluate", err)
	}
	res.YTest = res.Split.YTest
	if res.Report, err = metrics.Evaluate(res.YTest, res.YPred); err != nil {
		return fail("evaluate", err)
	}
	if res.StagedMSE, err = metrics.StagedMSE(res.YTest, res.StagedPredictions()); err != nil {
		return fail("evaluate", err)
	}
	if res.Baseline, err = baseline(res.Split); err != nil {
		logger.Warn("baseline skipped", err)
	}

	logger.Info("pipeline completed",
		log.FeaturesKey, len(res.Selected),
		log.MAEKey, res.Report.MAE,
		log.MSEKey, res.Report.MSE,
		log.R2ScoreKey, res.Report.R2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// baseline evaluates an ordinary least squares fit on the same split.
func baseline(s *model_selection.Split) (*metrics.RegressionReport, error) {
	lr := linear.NewLinearRegression()
	if err := lr.Fit(s.XTrain, s.YTrain); err != nil {
		return nil, err
	}
	pred, err := lr.Predict(s.XTest)
	if err != nil {
		return nil, err
	}
	r, err := metrics.Evaluate(s.YTest, pred)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
