// Package report renders diagnostic plots and text summaries of a pipeline run.
package report

import (
	"context"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/autoprice/pipeline"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// Plot file names written by WritePlots.
const (
	ImportancesFile       = "feature_importances.png"
	ActualVsPredictedFile = "actual_vs_predicted.png"
	ResidualsFile         = "residuals.png"
	StagedErrorFile       = "staged_error.png"
)

const residualBins = 50

var (
	barColor    = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	pointColor  = color.RGBA{R: 20, G: 80, B: 200, A: 128}
	idealColor  = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	histColor   = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	stagedColor = color.RGBA{R: 40, G: 120, B: 40, A: 255}
	plotWidth   = 10 * vg.Inch
	plotHeight  = 6 * vg.Inch
)

// Importances draws a horizontal bar per feature.
func Importances(names []string, values []float64) (*plot.Plot, error) {
	if len(names) != len(values) || len(names) == 0 {
		return nil, errors.NewDimensionError("report.Importances", len(names), len(values), 0)
	}
	p := plot.New()
	p.Title.Text = "Feature Importances (Gradient Boosting)"
	p.X.Label.Text = "Feature Importance"
	p.Y.Label.Text = "Features"

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(14))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)
	return p, nil
}

// ActualVsPredicted scatters predictions against true prices with the
// identity line for reference.
func ActualVsPredicted(yTrue, yPred *mat.VecDense) (*plot.Plot, error) {
	if yTrue.Len() != yPred.Len() || yTrue.Len() == 0 {
		return nil, errors.NewDimensionError("report.ActualVsPredicted", yTrue.Len(), yPred.Len(), 0)
	}
	p := plot.New()
	p.Title.Text = "Actual vs Predicted Car Prices"
	p.X.Label.Text = "Actual Prices"
	p.Y.Label.Text = "Predicted Prices"

	pts := make(plotter.XYs, yTrue.Len())
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range pts {
		pts[i].X = yTrue.AtVec(i)
		pts[i].Y = yPred.AtVec(i)
		lo = math.Min(lo, pts[i].X)
		hi = math.Max(hi, pts[i].X)
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = pointColor
	sc.GlyphStyle.Radius = vg.Points(2)

	ideal, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, err
	}
	ideal.Color = idealColor
	ideal.Width = vg.Points(2)

	p.Add(plotter.NewGrid(), sc, ideal)
	return p, nil
}

// Residuals draws the histogram of yTrue - yPred.
func Residuals(yTrue, yPred *mat.VecDense) (*plot.Plot, error) {
	if yTrue.Len() != yPred.Len() || yTrue.Len() == 0 {
		return nil, errors.NewDimensionError("report.Residuals", yTrue.Len(), yPred.Len(), 0)
	}
	p := plot.New()
	p.Title.Text = "Distribution of Prediction Errors (Residuals)"
	p.X.Label.Text = "Residuals (Errors)"
	p.Y.Label.Text = "Frequency"

	res := make(plotter.Values, yTrue.Len())
	for i := range res {
		res[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	h, err := plotter.NewHist(res, residualBins)
	if err != nil {
		return nil, err
	}
	h.FillColor = histColor
	p.Add(h)
	return p, nil
}

// StagedError plots the test MSE after each number of trees.
func StagedError(mse []float64) (*plot.Plot, error) {
	if len(mse) == 0 {
		return nil, errors.NewValueError("report.StagedError", "no stages to plot")
	}
	p := plot.New()
	p.Title.Text = "Gradient Boosting Performance"
	p.X.Label.Text = "Number of Trees"
	p.Y.Label.Text = "Mean Squared Error"

	pts := make(plotter.XYs, len(mse))
	for i, v := range mse {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = stagedColor
	line.Width = vg.Points(1.5)
	p.Add(plotter.NewGrid(), line)
	p.Legend.Add("Test Error", line)
	return p, nil
}

// WritePlots renders the four diagnostic plots of res into dir as PNG files,
// concurrently, and returns the written paths.
func WritePlots(ctx context.Context, dir string, res *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create plot directory %s", dir)
	}

	jobs := []struct {
		file  string
		build func() (*plot.Plot, error)
	}{
		{ImportancesFile, func() (*plot.Plot, error) { return Importances(res.Selected, res.Importances) }},
		{ActualVsPredictedFile, func() (*plot.Plot, error) { return ActualVsPredicted(res.YTest, res.YPred) }},
		{ResidualsFile, func() (*plot.Plot, error) { return Residuals(res.YTest, res.YPred) }},
		{StagedErrorFile, func() (*plot.Plot, error) { return StagedError(res.StagedMSE) }},
	}

	paths := make([]string, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// gonum/plot panics on some degenerate ranges
			return errors.SafeExecute("report."+job.file, func() error {
				p, err := job.build()
				if err != nil {
					return errors.Wrapf(err, "build %s", job.file)
				}
				path := filepath.Join(dir, job.file)
				if err := p.Save(plotWidth, plotHeight, path); err != nil {
					return errors.Wrapf(err, "save %s", path)
				}
				paths[i] = path
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.GetLoggerWithName("report").Info("plots written",
		log.RunIDKey, res.RunID,
		"dir", dir,
		"files", len(paths),
	)
	return paths, nil
}
