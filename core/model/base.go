package model

import (
	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// BaseEstimator は全ての推定器の基底となる構造体
type BaseEstimator struct {
	state     EstimatorState
	nFeatures int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定し、学習時の特徴量数を記録する
func (e *BaseEstimator) SetFitted(nFeatures int) {
	e.state = Fitted
	e.nFeatures = nFeatures
}

// NFeatures は学習時の特徴量数を返す
func (e *BaseEstimator) NFeatures() int {
	return e.nFeatures
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
	e.nFeatures = 0
}

// RequireFitted は未学習ならNotFittedErrorを返す
func (e *BaseEstimator) RequireFitted(modelName, method string) error {
	if e.state != Fitted {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
