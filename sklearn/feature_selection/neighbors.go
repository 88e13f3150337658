package feature_selection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// jointPoint is a point of the joint (x, y) space. Distance is the squared
// Chebyshev distance, which keeps kdtree's c*c pruning bound valid.
type jointPoint struct {
	x, y float64
}

func (p jointPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(jointPoint)
	if d == 0 {
		return p.x - q.x
	}
	return p.y - q.y
}

func (p jointPoint) Dims() int { return 2 }

func (p jointPoint) Distance(c kdtree.Comparable) float64 {
	d := chebyshev(p, c.(jointPoint))
	return d * d
}

func chebyshev(p, q jointPoint) float64 {
	return math.Max(math.Abs(p.x-q.x), math.Abs(p.y-q.y))
}

type jointPoints []jointPoint

func (p jointPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p jointPoints) Len() int                              { return len(p) }
func (p jointPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p jointPoints) Pivot(d kdtree.Dim) int {
	pl := jointPlane{points: p, dim: d}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// jointPlane orders points along one axis for pivot selection.
type jointPlane struct {
	points jointPoints
	dim    kdtree.Dim
}

func (p jointPlane) Len() int { return len(p.points) }
func (p jointPlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.dim) < 0
}
func (p jointPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p jointPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// jointTree answers k-th nearest neighbour queries under the Chebyshev metric.
type jointTree struct {
	x, y []float64
	tree *kdtree.Tree
}

func newJointTree(x, y []float64) *jointTree {
	pts := make(jointPoints, len(x))
	for i := range pts {
		pts[i] = jointPoint{x: x[i], y: y[i]}
	}
	return &jointTree{x: x, y: y, tree: kdtree.New(pts, false)}
}

// kthDistance returns the Chebyshev distance from point q to its k-th
// nearest other point, or +Inf when there are not k other points.
func (t *jointTree) kthDistance(q, k int) float64 {
	p := jointPoint{x: t.x[q], y: t.y[q]}
	// q itself comes back at distance 0
	keep := kdtree.NewNKeeper(k + 1)
	t.tree.NearestSet(keep, p)
	if keep.Len() < k+1 {
		return math.Inf(1)
	}
	// 二乗距離の平方根を避けて元の座標から測り直す
	return chebyshev(p, keep.Heap[k].Comparable.(jointPoint))
}

// countWithin returns how many values of the sorted slice lie strictly
// within r of v, not counting v itself.
func countWithin(sorted []float64, v, r float64) int {
	n := len(sorted)
	lo := sort.Search(n, func(j int) bool { return sorted[j] > v-r })
	hi := sort.Search(n, func(j int) bool { return sorted[j] >= v+r })
	return max(hi-lo-1, 0)
}
