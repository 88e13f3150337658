// Package ensemble implements gradient boosted regression trees.
package ensemble

import (
	"fmt"
	"iter"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/autoprice/core/model"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
	"github.com/YuminosukeSato/autoprice/sklearn/tree"
)

const fitOp = "GradientBoostingRegressor.Fit"

// GradientBoostingRegressor は勾配ブースティング回帰木。
//
// 学習後の予測は init + lr × Σ tree_t(x)。各木の葉の値は損失ごとの最適値で
// 置き換えられる（二乗誤差は平均、絶対誤差は中央値、huberはFriedmanの1ステップ推定）。
// 学習後のモデルは不変で、並行にPredict/StagedPredictを呼んでよい。
type GradientBoostingRegressor struct {
	model.BaseEstimator

	NEstimators     int
	LearningRate    float64
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Loss            string

	// TrainScore[t] は t+1 本目の木を加えた後の訓練損失
	TrainScore []float64

	init        float64
	rate        float64 // Fit時のLearningRate
	trees       []*tree.DecisionTreeRegressor
	importances []float64
}

// NewGradientBoostingRegressor は新しいGradientBoostingRegressorを作成する
//
//	gbr := ensemble.NewGradientBoostingRegressor(
//	    ensemble.WithNEstimators(100),
//	    ensemble.WithMaxDepth(3),
//	)
func NewGradientBoostingRegressor(opts ...Option) *GradientBoostingRegressor {
	g := &GradientBoostingRegressor{
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Loss:            LossSquaredError,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GradientBoostingRegressor) validate() error {
	if g.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", g.NEstimators)
	}
	if !(g.LearningRate > 0) || math.IsInf(g.LearningRate, 0) {
		return errors.NewValidationError("learning_rate", "must be positive", g.LearningRate)
	}
	if g.MaxDepth < 1 {
		return errors.NewValidationError("max_depth", "must be at least 1", g.MaxDepth)
	}
	if g.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", g.MinSamplesSplit)
	}
	if g.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", g.MinSamplesLeaf)
	}
	return nil
}

// Fit はモデルを訓練データで学習させる
func (g *GradientBoostingRegressor) Fit(X mat.Matrix, y mat.Vector) (err error) {
	defer errors.Recover(&err, fitOp)

	if err := g.validate(); err != nil {
		return err
	}
	loss, err := newLoss(g.Loss)
	if err != nil {
		return err
	}

	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError(fitOp, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != n {
		return errors.NewModelError(fitOp, "dimension mismatch",
			errors.NewDimensionError(fitOp, n, y.Len(), 0))
	}

	target := make([]float64, n)
	for i := range target {
		target[i] = y.AtVec(i)
	}
	if err := errors.CheckNumericalStability(fitOp, target, 0); err != nil {
		return errors.NewModelError(fitOp, "invalid target", err)
	}
	if _, v := stat.PopMeanVariance(target, nil); v == 0 {
		return errors.NewModelError(fitOp, "zero target variance",
			errors.New("every training target has the same value"))
	}

	d, err := tree.NewDataset(X)
	if err != nil {
		return errors.Wrap(err, "boost")
	}

	logger := log.GetLoggerWithName("ensemble.gradient_boosting").With(
		log.ModelNameKey, "GradientBoostingRegressor",
		log.OperationKey, log.OperationFit,
	)
	logger.Info("boosting started",
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.NEstimatorsKey, g.NEstimators,
		log.LearningRateKey, g.LearningRate,
		log.MaxDepthKey, g.MaxDepth,
		"loss", loss.Name(),
	)
	start := time.Now()

	g.Reset()
	g.init = loss.Init(target)
	g.rate = g.LearningRate
	g.trees = make([]*tree.DecisionTreeRegressor, 0, g.NEstimators)
	g.TrainScore = make([]float64, 0, g.NEstimators)
	decrease := make([]float64, p)

	f := make([]float64, n)
	for i := range f {
		f[i] = g.init
	}
	residual := make([]float64, n)

	for t := 0; t < g.NEstimators; t++ {
		loss.NegativeGradient(target, f, residual)

		tr := tree.NewDecisionTreeRegressor(
			tree.WithMaxDepth(g.MaxDepth),
			tree.WithMinSamplesSplit(g.MinSamplesSplit),
			tree.WithMinSamplesLeaf(g.MinSamplesLeaf),
		)
		if err := tr.FitDataset(d, residual); err != nil {
			return errors.NewModelError(fitOp, fmt.Sprintf("tree %d", t+1), err)
		}

		// 葉ごとに損失の最適値を入れ直す
		leafOf := tr.ApplyDataset(d)
		rows := make([][]int, tr.NLeaves())
		for i, leaf := range leafOf {
			rows[leaf] = append(rows[leaf], i)
		}
		for leaf, rs := range rows {
			tr.SetLeafValue(leaf, loss.LeafValue(target, f, residual, rs))
		}

		for i, leaf := range leafOf {
			f[i] += g.rate * tr.LeafValue(leaf)
		}
		score := loss.Loss(target, f)
		if err := errors.CheckScalar(fitOp, score, t+1); err != nil {
			return errors.NewModelError(fitOp, "training diverged", err)
		}

		g.trees = append(g.trees, tr)
		g.TrainScore = append(g.TrainScore, score)
		for j, v := range tr.ImpurityDecrease() {
			decrease[j] += v
		}

		if (t+1)%10 == 0 {
			logger.Debug("boosting progress",
				log.IterationKey, t+1,
				log.LossKey, score,
			)
		}
	}

	g.importances = tree.Normalize(decrease)
	g.SetFitted(p)

	logger.Info("boosting completed",
		log.LossKey, g.TrainScore[len(g.TrainScore)-1],
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は全ての木を使った予測を返す
func (g *GradientBoostingRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	rows, err := g.rows(X, "Predict")
	if err != nil {
		return nil, err
	}
	out := mat.NewVecDense(len(rows), nil)
	for i, row := range rows {
		v := g.init
		for _, tr := range g.trees {
			v += g.rate * tr.PredictRow(row)
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// StagedPredict は段階 i = 1..NEstimators の予測を遅延評価で順に返す。
// 段階 i の予測は最初の i 本の木までを使ったもので、最終段階はPredictと一致する。
// 返されるシーケンスは何度でも最初から列挙できる。各段階のベクトルは新しく確保される。
// 未学習や次元不一致のときは何も返さない。
func (g *GradientBoostingRegressor) StagedPredict(X mat.Matrix) iter.Seq2[int, *mat.VecDense] {
	return func(yield func(int, *mat.VecDense) bool) {
		rows, err := g.rows(X, "StagedPredict")
		if err != nil {
			log.GetLoggerWithName("ensemble.gradient_boosting").Error("staged prediction failed", err)
			return
		}
		acc := make([]float64, len(rows))
		for i := range acc {
			acc[i] = g.init
		}
		for t, tr := range g.trees {
			for i, row := range rows {
				acc[i] += g.rate * tr.PredictRow(row)
			}
			if !yield(t+1, mat.NewVecDense(len(acc), append([]float64(nil), acc...))) {
				return
			}
		}
	}
}

func (g *GradientBoostingRegressor) rows(X mat.Matrix, method string) ([][]float64, error) {
	if err := g.RequireFitted("GradientBoostingRegressor", method); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if p != g.NFeatures() {
		return nil, errors.NewDimensionError("GradientBoostingRegressor."+method, g.NFeatures(), p, 1)
	}
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows, nil
}

// FeatureImportances は木全体での不純度減少の合計を正規化して返す
func (g *GradientBoostingRegressor) FeatureImportances() ([]float64, error) {
	if err := g.RequireFitted("GradientBoostingRegressor", "FeatureImportances"); err != nil {
		return nil, err
	}
	return append([]float64(nil), g.importances...), nil
}

// InitValue は定数の初期予測を返す
func (g *GradientBoostingRegressor) InitValue() float64 { return g.init }

// NTrees は学習済みの木の本数を返す
func (g *GradientBoostingRegressor) NTrees() int { return len(g.trees) }

// String はモデルの文字列表現を返す
func (g *GradientBoostingRegressor) String() string {
	return fmt.Sprintf("GradientBoostingRegressor(n_estimators=%d, learning_rate=%g, max_depth=%d, loss=%s)",
		g.NEstimators, g.LearningRate, g.MaxDepth, g.Loss)
}

var _ model.StagedPredictor = (*GradientBoostingRegressor)(nil)
var _ model.FeatureImporter = (*GradientBoostingRegressor)(nil)
