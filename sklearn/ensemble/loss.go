package ensemble

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

// Loss names accepted by WithLoss.
const (
	LossSquaredError  = "squared_error"
	LossAbsoluteError = "absolute_error"
	LossHuber         = "huber"
)

// huberAlpha is the residual quantile that sets the huber transition point.
const huberAlpha = 0.9

// lossFunction drives one boosting run. Implementations may keep state
// between NegativeGradient and LeafValue of the same iteration.
type lossFunction interface {
	Name() string
	// Init returns the constant starting prediction.
	Init(y []float64) float64
	// NegativeGradient writes the pseudo-residuals of prediction f into out.
	NegativeGradient(y, f, out []float64)
	// LeafValue returns the step that minimises the loss on rows.
	LeafValue(y, f, residual []float64, rows []int) float64
	// Loss returns the mean loss of prediction f.
	Loss(y, f []float64) float64
}

func newLoss(name string) (lossFunction, error) {
	switch name {
	case LossSquaredError:
		return squaredError{}, nil
	case LossAbsoluteError:
		return absoluteError{}, nil
	case LossHuber:
		return &huber{alpha: huberAlpha}, nil
	}
	return nil, errors.NewValidationError("loss", "must be one of squared_error, absolute_error, huber", name)
}

type squaredError struct{}

func (squaredError) Name() string { return LossSquaredError }

func (squaredError) Init(y []float64) float64 { return stat.Mean(y, nil) }

func (squaredError) NegativeGradient(y, f, out []float64) {
	for i := range y {
		out[i] = y[i] - f[i]
	}
}

func (squaredError) LeafValue(_, _, residual []float64, rows []int) float64 {
	var s float64
	for _, r := range rows {
		s += residual[r]
	}
	return s / float64(len(rows))
}

func (squaredError) Loss(y, f []float64) float64 {
	var s float64
	for i := range y {
		d := y[i] - f[i]
		s += d * d
	}
	return s / float64(len(y))
}

type absoluteError struct{}

func (absoluteError) Name() string { return LossAbsoluteError }

func (absoluteError) Init(y []float64) float64 { return median(slices.Clone(y)) }

func (absoluteError) NegativeGradient(y, f, out []float64) {
	for i := range y {
		out[i] = sign(y[i] - f[i])
	}
}

func (absoluteError) LeafValue(y, f, _ []float64, rows []int) float64 {
	diff := make([]float64, len(rows))
	for i, r := range rows {
		diff[i] = y[r] - f[r]
	}
	return median(diff)
}

func (absoluteError) Loss(y, f []float64) float64 {
	var s float64
	for i := range y {
		s += math.Abs(y[i] - f[i])
	}
	return s / float64(len(y))
}

// huber switches from squared to absolute loss at gamma, the alpha quantile
// of the absolute residuals of the current iteration.
type huber struct {
	alpha float64
	gamma float64
}

func (h *huber) Name() string { return LossHuber }

func (h *huber) Init(y []float64) float64 { return median(slices.Clone(y)) }

func (h *huber) NegativeGradient(y, f, out []float64) {
	abs := make([]float64, len(y))
	for i := range y {
		abs[i] = math.Abs(y[i] - f[i])
	}
	slices.Sort(abs)
	h.gamma = stat.Quantile(h.alpha, stat.LinInterp, abs, nil)

	for i := range y {
		d := y[i] - f[i]
		if math.Abs(d) <= h.gamma {
			out[i] = d
		} else {
			out[i] = h.gamma * sign(d)
		}
	}
}

// LeafValue is Friedman's one-step estimate: the median residual plus the
// mean clipped deviation from it.
func (h *huber) LeafValue(y, f, _ []float64, rows []int) float64 {
	diff := make([]float64, len(rows))
	for i, r := range rows {
		diff[i] = y[r] - f[r]
	}
	med := median(slices.Clone(diff))
	var s float64
	for _, d := range diff {
		d -= med
		s += sign(d) * math.Min(math.Abs(d), h.gamma)
	}
	return med + s/float64(len(diff))
}

func (h *huber) Loss(y, f []float64) float64 {
	var s float64
	for i := range y {
		d := math.Abs(y[i] - f[i])
		if d <= h.gamma {
			s += 0.5 * d * d
		} else {
			s += h.gamma * (d - h.gamma/2)
		}
	}
	return s / float64(len(y))
}

// median sorts x in place and returns the middle value, averaging the two
// middle values for even lengths.
func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	slices.Sort(x)
	m := len(x) / 2
	if len(x)%2 == 1 {
		return x[m]
	}
	return (x[m-1] + x[m]) / 2
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
