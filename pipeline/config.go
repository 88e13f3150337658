package pipeline

import (
	"math"
	"slices"
	"time"

	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/sklearn/ensemble"
)

// Config holds every tunable of one pipeline run.
type Config struct {
	SampleFraction      float64 `koanf:"sample_fraction" yaml:"sample_fraction" json:"sample_fraction"`
	PriceMin            float64 `koanf:"price_min" yaml:"price_min" json:"price_min"`
	PriceMax            float64 `koanf:"price_max" yaml:"price_max" json:"price_max"`
	ImputeNeighbors     int     `koanf:"impute_neighbors" yaml:"impute_neighbors" json:"impute_neighbors"`
	OutlierThreshold    float64 `koanf:"outlier_threshold" yaml:"outlier_threshold" json:"outlier_threshold"`
	ImportanceThreshold float64 `koanf:"importance_threshold" yaml:"importance_threshold" json:"importance_threshold"`
	MINeighbors         int     `koanf:"mi_neighbors" yaml:"mi_neighbors" json:"mi_neighbors"`
	TestFraction        float64 `koanf:"test_fraction" yaml:"test_fraction" json:"test_fraction"`
	NEstimators         int     `koanf:"n_estimators" yaml:"n_estimators" json:"n_estimators"`
	MaxDepth            int     `koanf:"max_depth" yaml:"max_depth" json:"max_depth"`
	LearningRate        float64 `koanf:"learning_rate" yaml:"learning_rate" json:"learning_rate"`
	Loss                string  `koanf:"loss" yaml:"loss" json:"loss"`
	Seed                uint64  `koanf:"seed" yaml:"seed" json:"seed"`
	CurrentYear         int     `koanf:"current_year" yaml:"current_year" json:"current_year"`
}

// DefaultConfig returns the standard settings with CurrentYear taken from the wall clock.
func DefaultConfig() Config {
	return Config{
		SampleFraction:      0.3,
		PriceMin:            500,
		PriceMax:            80000,
		ImputeNeighbors:     5,
		OutlierThreshold:    3,
		ImportanceThreshold: 0.01,
		MINeighbors:         3,
		TestFraction:        0.1,
		NEstimators:         100,
		MaxDepth:            3,
		LearningRate:        0.1,
		Loss:                ensemble.LossSquaredError,
		Seed:                42,
		CurrentYear:         time.Now().Year(),
	}
}

// Validate returns a ValidationError for the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case !(c.SampleFraction > 0 && c.SampleFraction <= 1):
		return errors.NewValidationError("sample_fraction", "must be in (0, 1]", c.SampleFraction)
	case !(c.PriceMin >= 0) || math.IsInf(c.PriceMin, 0):
		return errors.NewValidationError("price_min", "must be a non-negative number", c.PriceMin)
	case !(c.PriceMax > c.PriceMin) || math.IsInf(c.PriceMax, 0):
		return errors.NewValidationError("price_max", "must be greater than price_min", c.PriceMax)
	case c.ImputeNeighbors < 1:
		return errors.NewValidationError("impute_neighbors", "must be at least 1", c.ImputeNeighbors)
	case !(c.OutlierThreshold > 0):
		return errors.NewValidationError("outlier_threshold", "must be positive", c.OutlierThreshold)
	case !(c.ImportanceThreshold >= 0 && c.ImportanceThreshold <= 1):
		return errors.NewValidationError("importance_threshold", "must be in [0, 1]", c.ImportanceThreshold)
	case c.MINeighbors < 1:
		return errors.NewValidationError("mi_neighbors", "must be at least 1", c.MINeighbors)
	case !(c.TestFraction > 0 && c.TestFraction < 1):
		return errors.NewValidationError("test_fraction", "must be in (0, 1)", c.TestFraction)
	case c.NEstimators < 1:
		return errors.NewValidationError("n_estimators", "must be at least 1", c.NEstimators)
	case c.MaxDepth < 1:
		return errors.NewValidationError("max_depth", "must be at least 1", c.MaxDepth)
	case !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0):
		return errors.NewValidationError("learning_rate", "must be positive", c.LearningRate)
	case !slices.Contains(Losses(), c.Loss):
		return errors.NewValidationError("loss", "must be one of squared_error, absolute_error, huber", c.Loss)
	case c.CurrentYear < 1:
		return errors.NewValidationError("current_year", "must be positive", c.CurrentYear)
	}
	return nil
}

// Losses lists the accepted loss names.
func Losses() []string {
	return []string{ensemble.LossSquaredError, ensemble.LossAbsoluteError, ensemble.LossHuber}
}
