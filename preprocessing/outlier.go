package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// ZScoreFilter は標準化スコアが閾値を超える行を除去する。
// |z| == Threshold の行は残す。平均と標準偏差は入力テーブルそのものから計算する（母標準偏差）。
type ZScoreFilter struct {
	Column    string
	Threshold float64
}

// NewZScoreFilter はZScoreFilterを作成する
func NewZScoreFilter(column string, threshold float64) *ZScoreFilter {
	return &ZScoreFilter{Column: column, Threshold: threshold}
}

// Transform はフィルタを適用する。
// 標準偏差がゼロの場合はスコアが定義されないため、全行を残しDegeneracyWarningを出す。
func (f *ZScoreFilter) Transform(t *table.Table) (*table.Table, error) {
	if f.Threshold <= 0 {
		return nil, errors.NewValidationError("outlier_threshold", "must be positive", f.Threshold)
	}
	x, err := t.Numeric(f.Column)
	if err != nil {
		return nil, errors.Wrap(err, "outlier")
	}
	logger := log.GetLoggerWithName("preprocessing.outlier")

	present := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return t, nil
	}

	mean, std := stat.PopMeanStdDev(present, nil)
	if std == 0 || math.IsNaN(std) {
		errors.Warn(errors.NewDegeneracyWarning("outlier", f.Column, "standard deviation is zero", "no rows removed"))
		return t, nil
	}

	out := t.Filter(func(r int) bool {
		if math.IsNaN(x[r]) {
			return true
		}
		return math.Abs((x[r]-mean)/std) <= f.Threshold
	})

	logger.Info("outlier filter applied",
		log.StageKey, "outlier",
		log.ColumnKey, f.Column,
		log.ThresholdKey, f.Threshold,
		log.SamplesKey, out.NRows(),
		log.DroppedKey, t.NRows()-out.NRows(),
	)
	return out, nil
}
