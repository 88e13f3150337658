// Package tree implements CART regression trees with variance reduction splits.
package tree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/autoprice/core/model"
	"github.com/YuminosukeSato/autoprice/core/parallel"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

// Node is one node of a fitted tree. Rows with x[Feature] <= Threshold go Left.
type Node struct {
	Feature   int // -1 for leaves
	Threshold float64
	Left      int
	Right     int
	Leaf      int     // leaf id, -1 for internal nodes
	Value     float64 // mean target of the node's rows, or the overridden leaf value
	Samples   int
	Impurity  float64 // population variance of the node's targets
}

// IsLeaf reports whether the node is terminal.
func (n Node) IsLeaf() bool { return n.Leaf >= 0 }

// DecisionTreeRegressor is a depth-limited regression tree.
type DecisionTreeRegressor struct {
	model.BaseEstimator

	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int

	nodes    []Node
	leaves   []int // leaf id -> node index
	decrease []float64
	depth    int
}

// NewDecisionTreeRegressor creates a tree with max_depth=3,
// min_samples_split=2 and min_samples_leaf=1 unless overridden.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		MaxDepth:        3,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *DecisionTreeRegressor) validate() error {
	if t.MaxDepth < 1 {
		return errors.NewValidationError("max_depth", "must be at least 1", t.MaxDepth)
	}
	if t.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", t.MinSamplesSplit)
	}
	if t.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", t.MinSamplesLeaf)
	}
	return nil
}

// Fit grows the tree on X and y.
func (t *DecisionTreeRegressor) Fit(X mat.Matrix, y mat.Vector) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	n, _ := X.Dims()
	if y.Len() != n {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", n, y.Len(), 0)
	}
	d, err := NewDataset(X)
	if err != nil {
		return err
	}
	target := make([]float64, n)
	for i := range target {
		target[i] = y.AtVec(i)
	}
	return t.FitDataset(d, target)
}

// FitDataset grows the tree on a presorted Dataset.
func (t *DecisionTreeRegressor) FitDataset(d *Dataset, y []float64) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.FitDataset")

	if err := t.validate(); err != nil {
		return err
	}
	n, p := d.Dims()
	if len(y) != n {
		return errors.NewDimensionError("DecisionTreeRegressor.FitDataset", n, len(y), 0)
	}
	if err := errors.CheckNumericalStability("DecisionTreeRegressor.FitDataset", y, 0); err != nil {
		return errors.NewModelError("DecisionTreeRegressor.FitDataset", "invalid target", err)
	}

	t.Reset()
	t.nodes = t.nodes[:0]
	t.leaves = t.leaves[:0]
	t.decrease = make([]float64, p)
	t.depth = 0

	b := &builder{
		tree: t,
		d:    d,
		y:    y,
		mark: make([]int, n),
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	b.grow(rows, 0)

	for j := range t.decrease {
		t.decrease[j] /= float64(n)
	}
	t.SetFitted(p)
	return nil
}

// Predict returns the leaf value reached by every row of X.
func (t *DecisionTreeRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := t.RequireFitted("DecisionTreeRegressor", "Predict"); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if p != t.NFeatures() {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.Predict", t.NFeatures(), p, 1)
	}
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, t.nodes[t.leaves[t.applyRow(rowOf(X, i))]].Value)
	}
	return out, nil
}

// PredictRow returns the leaf value for a single feature vector.
func (t *DecisionTreeRegressor) PredictRow(x []float64) float64 {
	return t.nodes[t.leaves[t.applyRow(func(j int) float64 { return x[j] })]].Value
}

// Apply returns the leaf id reached by every row of X.
func (t *DecisionTreeRegressor) Apply(X mat.Matrix) ([]int, error) {
	if err := t.RequireFitted("DecisionTreeRegressor", "Apply"); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if p != t.NFeatures() {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.Apply", t.NFeatures(), p, 1)
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = t.applyRow(rowOf(X, i))
	}
	return ids, nil
}

// ApplyDataset returns the leaf id reached by every row of d.
func (t *DecisionTreeRegressor) ApplyDataset(d *Dataset) []int {
	ids := make([]int, d.n)
	for i := range ids {
		ids[i] = t.applyRow(d.row(i))
	}
	return ids
}

func (t *DecisionTreeRegressor) applyRow(x func(j int) float64) int {
	i := 0
	for !t.nodes[i].IsLeaf() {
		if x(t.nodes[i].Feature) <= t.nodes[i].Threshold {
			i = t.nodes[i].Left
		} else {
			i = t.nodes[i].Right
		}
	}
	return t.nodes[i].Leaf
}

func rowOf(X mat.Matrix, i int) func(j int) float64 {
	return func(j int) float64 { return X.At(i, j) }
}

// NLeaves returns the number of leaves.
func (t *DecisionTreeRegressor) NLeaves() int { return len(t.leaves) }

// Depth returns the depth of the deepest leaf.
func (t *DecisionTreeRegressor) Depth() int { return t.depth }

// Nodes returns a copy of the fitted nodes in creation order.
func (t *DecisionTreeRegressor) Nodes() []Node { return append([]Node(nil), t.nodes...) }

// LeafValue returns the value of leaf id.
func (t *DecisionTreeRegressor) LeafValue(leaf int) float64 {
	return t.nodes[t.leaves[leaf]].Value
}

// SetLeafValue overrides the value of leaf id. Boosting uses it to install
// loss-specific leaf estimates.
func (t *DecisionTreeRegressor) SetLeafValue(leaf int, v float64) {
	t.nodes[t.leaves[leaf]].Value = v
}

// ImpurityDecrease returns, per feature, the total weighted variance
// reduction of the splits on that feature, unnormalised.
func (t *DecisionTreeRegressor) ImpurityDecrease() []float64 {
	return append([]float64(nil), t.decrease...)
}

// FeatureImportances returns ImpurityDecrease normalised to sum to one.
// A tree without splits has all-zero importances.
func (t *DecisionTreeRegressor) FeatureImportances() ([]float64, error) {
	if err := t.RequireFitted("DecisionTreeRegressor", "FeatureImportances"); err != nil {
		return nil, err
	}
	return Normalize(t.ImpurityDecrease()), nil
}

// Normalize scales v in place to sum to one, unless the sum is zero.
func Normalize(v []float64) []float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	if s > 0 {
		for i := range v {
			v[i] /= s
		}
	}
	return v
}

func (t *DecisionTreeRegressor) String() string {
	if !t.IsFitted() {
		return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d)", t.MaxDepth)
	}
	return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, n_leaves=%d, depth=%d)",
		t.MaxDepth, len(t.leaves), t.depth)
}

type split struct {
	feature   int
	threshold float64
	proxy     float64 // sumL²/nL + sumR²/nR
	ok        bool
}

type builder struct {
	tree *DecisionTreeRegressor
	d    *Dataset
	y    []float64
	// mark[r] is the id of the node currently being split that holds row r
	mark []int
	next int
}

func (b *builder) grow(rows []int, depth int) int {
	t := b.tree
	id := b.next
	b.next++
	for _, r := range rows {
		b.mark[r] = id
	}

	vals := make([]float64, len(rows))
	var sum float64
	for i, r := range rows {
		vals[i] = b.y[r]
		sum += b.y[r]
	}
	mean, variance := stat.PopMeanVariance(vals, nil)
	n := len(rows)

	idx := len(t.nodes)
	t.nodes = append(t.nodes, Node{
		Feature:  -1,
		Leaf:     -1,
		Value:    mean,
		Samples:  n,
		Impurity: variance,
	})

	best := split{}
	if depth < t.MaxDepth && n >= t.MinSamplesSplit && n >= 2*t.MinSamplesLeaf && variance > 0 {
		best = b.bestSplit(id, n, sum)
	}
	// SSEの減少量
	gain := best.proxy - sum*sum/float64(n)
	if !best.ok || gain <= 1e-12*variance*float64(n) {
		t.nodes[idx].Leaf = len(t.leaves)
		t.leaves = append(t.leaves, idx)
		t.depth = max(t.depth, depth)
		return idx
	}

	col := b.d.cols[best.feature]
	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, r := range rows {
		if col[r] <= best.threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	t.decrease[best.feature] += gain
	t.nodes[idx].Feature = best.feature
	t.nodes[idx].Threshold = best.threshold

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	t.nodes[idx].Left = l
	t.nodes[idx].Right = r
	return idx
}

// bestSplit searches every feature concurrently and reduces in feature order,
// so equal gains go to the lowest feature index.
func (b *builder) bestSplit(id, n int, sum float64) split {
	_, p := b.d.Dims()
	found := make([]split, p)
	parallel.ForEach(p, 1, func(j int) {
		found[j] = b.bestSplitFor(j, id, n, sum)
	})

	best := split{}
	for _, s := range found {
		if s.ok && (!best.ok || s.proxy > best.proxy) {
			best = s
		}
	}
	return best
}

// bestSplitFor scans feature j in ascending order. Only strict improvements
// replace the candidate, so equal gains keep the lowest threshold.
func (b *builder) bestSplitFor(j, id, n int, sum float64) split {
	col := b.d.cols[j]
	minLeaf := b.tree.MinSamplesLeaf
	best := split{feature: j}

	var nl int
	var sl float64
	prev := -1
	for _, r := range b.d.order[j] {
		if b.mark[r] != id {
			continue
		}
		if prev >= 0 && col[r] > col[prev] {
			nr := n - nl
			if nl >= minLeaf && nr >= minLeaf {
				sr := sum - sl
				proxy := sl*sl/float64(nl) + sr*sr/float64(nr)
				if !best.ok || proxy > best.proxy {
					thr := col[prev] + (col[r]-col[prev])/2
					// 隣接する浮動小数点数では中点が右側の値に丸められる
					if thr >= col[r] || math.IsInf(thr, 0) {
						thr = col[prev]
					}
					best = split{feature: j, threshold: thr, proxy: proxy, ok: true}
				}
			}
		}
		nl++
		sl += b.y[r]
		prev = r
	}
	return best
}
