// Package log defines standard attribute keys for pipeline logging.
//
// Keys follow a hierarchical naming convention ("data.samples",
// "metrics.r2_score") so that logs from every stage can be filtered the same way.
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "GradientBoostingRegressor".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed ("fit", "predict", "transform").
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging. Set by GetLoggerWithName.
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase ("preprocessing", "training", "evaluation").
	PhaseKey = "ml.phase"

	// StageKey names the pipeline stage ("clean", "impute", "outlier", ...).
	StageKey = "pipeline.stage"

	// RunIDKey carries the unique identifier of one pipeline run.
	RunIDKey = "pipeline.run_id"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows in the table or matrix.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// ColumnKey names the column a message refers to.
	ColumnKey = "data.column"

	// DroppedKey counts rows removed by a filtering stage.
	DroppedKey = "data.dropped"

	// MissingKey counts missing cells.
	MissingKey = "data.missing"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the training loss.
	LossKey = "metrics.loss"

	MAEKey = "metrics.mae"
	MSEKey = "metrics.mse"

	// R2ScoreKey records the R² coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// ScoreKey records a mutual information score.
	ScoreKey = "metrics.score"

	// IterationKey records the boosting iteration.
	IterationKey = "training.iteration"
)

// Error Context
const (
	// ErrorTypeKey categorizes the error ("DataError", "ValidationError", ...).
	ErrorTypeKey = "error.type"
)

// Hyperparameters and Configuration
const (
	LearningRateKey = "hyperparams.learning_rate"
	NEstimatorsKey  = "hyperparams.n_estimators"
	MaxDepthKey     = "hyperparams.max_depth"
	NeighborsKey    = "hyperparams.n_neighbors"
	ThresholdKey    = "hyperparams.threshold"

	// RandomSeedKey records the seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"

	PhasePreprocessing = "preprocessing"
	PhaseSelection     = "selection"
	PhaseTraining      = "training"
	PhaseEvaluation    = "evaluation"
)
