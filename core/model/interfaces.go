package model

import (
	"iter"

	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X mat.Matrix, y mat.Vector) error
}

// Predictor は回帰予測を行うモデルのインターフェース
type Predictor interface {
	// Predict は入力データの各行に対する予測値を返す
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// Regressor は回帰モデルの基本インターフェース
type Regressor interface {
	Fitter
	Predictor
}

// StagedPredictor はブースティングの各段階での予測を遅延評価で列挙できるモデル
type StagedPredictor interface {
	Regressor
	// StagedPredict は段階 i (1始まり) と、そこまでの木による予測を順に返す
	StagedPredict(X mat.Matrix) iter.Seq2[int, *mat.VecDense]
}

// FeatureImporter は特徴量重要度を公開するモデル
type FeatureImporter interface {
	FeatureImportances() ([]float64, error)
}
