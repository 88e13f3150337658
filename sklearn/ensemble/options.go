package ensemble

// Option configures a GradientBoostingRegressor.
type Option func(*GradientBoostingRegressor)

// WithNEstimators sets the number of boosting stages.
func WithNEstimators(n int) Option {
	return func(g *GradientBoostingRegressor) {
		g.NEstimators = n
	}
}

// WithLearningRate sets the shrinkage applied to every tree.
func WithLearningRate(lr float64) Option {
	return func(g *GradientBoostingRegressor) {
		g.LearningRate = lr
	}
}

// WithMaxDepth sets the depth of each tree.
func WithMaxDepth(depth int) Option {
	return func(g *GradientBoostingRegressor) {
		g.MaxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum rows a tree node needs to be split.
func WithMinSamplesSplit(n int) Option {
	return func(g *GradientBoostingRegressor) {
		g.MinSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum rows in each tree leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(g *GradientBoostingRegressor) {
		g.MinSamplesLeaf = n
	}
}

// WithLoss selects squared_error, absolute_error or huber.
func WithLoss(name string) Option {
	return func(g *GradientBoostingRegressor) {
		g.Loss = name
	}
}
