package metrics

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// RegressionReport はテストセットに対する評価結果
type RegressionReport struct {
	N    int     `json:"n" yaml:"n"`
	MAE  float64 `json:"mae" yaml:"mae"`
	MSE  float64 `json:"mse" yaml:"mse"`
	RMSE float64 `json:"rmse" yaml:"rmse"`
	R2   float64 `json:"r2" yaml:"r2"`
	// MAPE はyTrueが全てゼロの場合NaNになる
	MAPE float64 `json:"mape" yaml:"mape"`
}

// Evaluate はMAE・MSE・RMSE・R²をまとめて計算する。
// 空の入力、長さ不一致、yTrueの分散ゼロはエラー。
func Evaluate(yTrue, yPred *mat.VecDense) (RegressionReport, error) {
	var r RegressionReport
	var err error

	if r.MAE, err = MAE(yTrue, yPred); err != nil {
		return RegressionReport{}, err
	}
	if r.MSE, err = MSE(yTrue, yPred); err != nil {
		return RegressionReport{}, err
	}
	if r.RMSE, err = RMSE(yTrue, yPred); err != nil {
		return RegressionReport{}, err
	}
	if r.R2, err = R2Score(yTrue, yPred); err != nil {
		return RegressionReport{}, err
	}
	if r.MAPE, err = MAPE(yTrue, yPred); err != nil {
		r.MAPE = math.NaN()
	}
	r.N = yTrue.Len()

	log.GetLoggerWithName("metrics").Info("evaluation completed",
		log.PhaseKey, log.PhaseEvaluation,
		log.SamplesKey, r.N,
		log.MAEKey, r.MAE,
		log.MSEKey, r.MSE,
		log.R2ScoreKey, r.R2,
	)
	return r, nil
}

// StagedMSE はステージごとの予測列をMSEの列に畳み込む
func StagedMSE(yTrue *mat.VecDense, stages iter.Seq2[int, *mat.VecDense]) ([]float64, error) {
	var out []float64
	for i, pred := range stages {
		mse, err := MSE(yTrue, pred)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %d", i)
		}
		out = append(out, mse)
	}
	if len(out) == 0 {
		return nil, errors.NewValueError("StagedMSE", "no stages")
	}
	return out, nil
}
