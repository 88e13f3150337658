package pipeline

import (
	"iter"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/metrics"
	"github.com/YuminosukeSato/autoprice/preprocessing"
	"github.com/YuminosukeSato/autoprice/sklearn/ensemble"
	"github.com/YuminosukeSato/autoprice/sklearn/feature_selection"
	"github.com/YuminosukeSato/autoprice/sklearn/model_selection"
)

// RowCounts records how many rows each row-changing stage left.
type RowCounts struct {
	Input         int            `json:"input" yaml:"input"`
	Cleaned       int            `json:"cleaned" yaml:"cleaned"`
	Imputed       map[string]int `json:"imputed" yaml:"imputed"` // filled cells per column
	AfterOutliers int            `json:"after_outliers" yaml:"after_outliers"`
	Train         int            `json:"train" yaml:"train"`
	Test          int            `json:"test" yaml:"test"`
}

// Result is everything one run produces.
type Result struct {
	RunID  string
	Config Config
	Rows   RowCounts

	// Table is the encoded table with derived features, before selection.
	Table    *table.Table
	Encoding *preprocessing.EncodingTable

	// Scores holds the mutual information of every candidate feature;
	// Selected the ones above the importance threshold, in table order.
	Scores   feature_selection.Scores
	Selected []string

	Split *model_selection.Split
	Model *ensemble.GradientBoostingRegressor
	// Importances of the fitted model, aligned with Selected.
	Importances []float64

	YTest     *mat.VecDense
	YPred     *mat.VecDense
	Report    metrics.RegressionReport
	StagedMSE []float64
	// Baseline is the test-set evaluation of a linear fit on the same
	// split, nil when that fit was not possible.
	Baseline *metrics.RegressionReport
}

// StagedPredictions lazily yields the test-set prediction after each tree.
func (r *Result) StagedPredictions() iter.Seq2[int, *mat.VecDense] {
	return r.Model.StagedPredict(r.Split.XTest)
}
