// Package feature_selection scores candidate features by their estimated
// mutual information with the target and keeps the informative ones.
package feature_selection

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/autoprice/core/parallel"
	"github.com/YuminosukeSato/autoprice/core/random"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
	"github.com/YuminosukeSato/autoprice/preprocessing"
)

// Score is the estimated mutual information of one feature with the target.
type Score struct {
	Feature string  `json:"feature" yaml:"feature"`
	Value   float64 `json:"value" yaml:"value"`
}

// Scores keeps the candidate order.
type Scores []Score

// Get returns the score of feature.
func (s Scores) Get(feature string) (float64, bool) {
	for _, sc := range s {
		if sc.Feature == feature {
			return sc.Value, true
		}
	}
	return 0, false
}

// Map returns the scores keyed by feature name.
func (s Scores) Map() map[string]float64 {
	m := make(map[string]float64, len(s))
	for _, sc := range s {
		m[sc.Feature] = sc.Value
	}
	return m
}

// MutualInfoRegression estimates mutual information between each continuous
// feature and a continuous target with the Kraskov-Stögbauer-Grassberger
// k-nearest-neighbour estimator.
//
// Features and target are scaled to unit variance (not centred) and jittered
// with noise of magnitude 1e-10 drawn from the seeded stream, which breaks
// ties between repeated values. Estimates are clamped at zero.
type MutualInfoRegression struct {
	NNeighbors int
	Seed       uint64
}

// NewMutualInfoRegression creates an estimator with k neighbours.
func NewMutualInfoRegression(k int, seed uint64) *MutualInfoRegression {
	return &MutualInfoRegression{NNeighbors: k, Seed: seed}
}

// Score estimates one score per column of X, named by names.
func (m *MutualInfoRegression) Score(X mat.Matrix, y mat.Vector, names []string) (scores Scores, err error) {
	defer errors.Recover(&err, "MutualInfoRegression.Score")

	n, p := X.Dims()
	if len(names) != p {
		return nil, errors.NewDimensionError("MutualInfoRegression.Score", p, len(names), 1)
	}
	if y.Len() != n {
		return nil, errors.NewDimensionError("MutualInfoRegression.Score", n, y.Len(), 0)
	}
	if m.NNeighbors < 1 {
		return nil, errors.NewValidationError("mi_neighbors", "must be at least 1", m.NNeighbors)
	}
	if n <= m.NNeighbors {
		return nil, errors.NewDataError("select", "", "not enough rows for the neighbour count")
	}
	if err := errors.CheckMatrix("MutualInfoRegression.Score", X, n, p, 0); err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("feature_selection.mutual_info")

	scaler := preprocessing.NewStandardScaler(false, true)
	Xs, err := scaler.FitTransform(X)
	if err != nil {
		return nil, err
	}
	yRaw := mat.Col(nil, 0, y)
	ys := preprocessing.ScaleVector(yRaw, false)

	// noise is drawn up front in column order, then the target, so that the
	// parallel section below cannot change the sequence
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: random.Source(m.Seed, random.StreamMutualInfo)}
	cols := make([][]float64, p)
	for j := 0; j < p; j++ {
		cols[j] = mat.Col(nil, j, Xs)
		jitter(cols[j], normal)
	}
	jitter(ys, normal)

	scores = make(Scores, p)
	for j := range scores {
		scores[j].Feature = names[j]
	}

	if constant(yRaw) {
		errors.Warn(errors.NewDegeneracyWarning("select", preprocessing.ColPrice,
			"target has zero variance", "all scores set to zero"))
		return scores, nil
	}

	degenerate := make([]bool, p)
	for j := 0; j < p; j++ {
		degenerate[j] = constant(mat.Col(nil, j, X))
	}

	parallel.ForEach(p, 1, func(j int) {
		if degenerate[j] {
			return
		}
		scores[j].Value = ksg(cols[j], ys, m.NNeighbors)
	})

	for j, sc := range scores {
		if degenerate[j] {
			errors.Warn(errors.NewDegeneracyWarning("select", sc.Feature,
				"feature has zero variance", "score set to zero"))
		}
		logger.Debug("feature scored",
			log.ColumnKey, sc.Feature,
			log.ScoreKey, sc.Value,
		)
	}
	logger.Info("mutual information estimated",
		log.StageKey, "select",
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.NeighborsKey, m.NNeighbors,
		log.RandomSeedKey, m.Seed,
	)
	return scores, nil
}

func jitter(v []float64, normal distuv.Normal) {
	var meanAbs float64
	for _, x := range v {
		meanAbs += math.Abs(x)
	}
	meanAbs /= float64(len(v))
	amp := 1e-10 * math.Max(1, meanAbs)
	for i := range v {
		v[i] += amp * normal.Rand()
	}
}

func constant(v []float64) bool {
	_, std := stat.PopMeanStdDev(v, nil)
	return std == 0
}

// ksg computes ψ(n) + ψ(k) − ⟨ψ(nx+1)⟩ − ⟨ψ(ny+1)⟩ where, for each point,
// the radius is the Chebyshev distance to its k-th neighbour in the joint
// space and nx, ny count the other points strictly inside that radius on each
// marginal.
func ksg(x, y []float64, k int) float64 {
	n := len(x)
	tree := newJointTree(x, y)

	xs := slices.Clone(x)
	slices.Sort(xs)
	ys := slices.Clone(y)
	slices.Sort(ys)

	var sx, sy float64
	for i := 0; i < n; i++ {
		r := tree.kthDistance(i, k)
		sx += mathext.Digamma(float64(countWithin(xs, x[i], r) + 1))
		sy += mathext.Digamma(float64(countWithin(ys, y[i], r) + 1))
	}

	mi := mathext.Digamma(float64(n)) + mathext.Digamma(float64(k)) -
		sx/float64(n) - sy/float64(n)
	return math.Max(0, mi)
}
