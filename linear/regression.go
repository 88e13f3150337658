// Package linear provides an ordinary least squares baseline.
package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/core/model"
	"github.com/YuminosukeSato/autoprice/core/parallel"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

const fitOp = "LinearRegression.Fit"

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// rankTol は特異値を0とみなす相対しきい値
const rankTol = 1e-10

// LinearRegression は線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator
	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit はモデルを訓練データで学習させる。
// 切片列を加えた計画行列の特異値分解で最小ノルムの最小二乗解を求めるため、
// 共線な列（年式と車齢など）があっても解ける。
func (lr *LinearRegression) Fit(X mat.Matrix, y mat.Vector) (err error) {
	defer errors.Recover(&err, fitOp)

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError(fitOp, "empty data", errors.ErrEmptyData)
	}
	if y.Len() != r {
		return errors.NewDimensionError(fitOp, r, y.Len(), 0)
	}
	if r <= c {
		return errors.NewModelError(fitOp, "underdetermined system",
			errors.Newf("%d rows for %d coefficients", r, c+1))
	}

	// X_with_intercept = [1, X]
	design := mat.NewDense(r, c+1, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			design.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				design.Set(i, j+1, X.At(i, j))
			}
		}
	})
	if err := errors.CheckMatrix(fitOp, design, r, c+1, 0); err != nil {
		return errors.NewModelError(fitOp, "invalid input", err)
	}

	var svd mat.SVD
	if !svd.Factorize(design, mat.SVDThin) {
		return errors.NewModelError(fitOp, "svd failed", errors.ErrSingularMatrix)
	}
	rank := svd.Rank(rankTol)
	if rank == 0 {
		return errors.NewModelError(fitOp, "singular matrix", errors.ErrSingularMatrix)
	}
	var w mat.VecDense
	svd.SolveVecTo(&w, y, rank)

	lr.Intercept = w.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, w.AtVec(j+1))
	}
	lr.SetFitted(c)

	log.GetLoggerWithName("linear").Debug("linear regression fitted",
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := lr.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != lr.NFeatures() {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures(), c, 1)
	}

	// y = X * weights + intercept
	out := mat.NewVecDense(r, nil)
	out.MulVec(X, lr.Weights)
	for i := 0; i < r; i++ {
		out.SetVec(i, out.AtVec(i)+lr.Intercept)
	}
	return out, nil
}

// String はモデルの文字列表現を返す
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return "LinearRegression()"
	}
	return fmt.Sprintf("LinearRegression(n_features=%d, intercept=%g)", lr.NFeatures(), lr.Intercept)
}

var _ model.Regressor = (*LinearRegression)(nil)
