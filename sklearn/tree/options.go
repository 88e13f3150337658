package tree

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMaxDepth limits the depth of the tree. The root is depth 0.
func WithMaxDepth(depth int) Option {
	return func(t *DecisionTreeRegressor) {
		t.MaxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of rows a node needs to be split.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) {
		t.MinSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of rows on each side of a split.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) {
		t.MinSamplesLeaf = n
	}
}
