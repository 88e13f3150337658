package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/YuminosukeSato/autoprice/metrics"
	"github.com/YuminosukeSato/autoprice/pipeline"
)

// WriteSummary prints row counts, feature scores and evaluation metrics of res as tables.
func WriteSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "run %s\n", res.RunID)
	WriteRows(w, res.Rows)
	WriteFeatures(w, res)
	WriteMetrics(w, res)
	fmt.Fprintf(w, "fingerprint %016x\n", res.Fingerprint())
}

// WriteRows prints the row count after each row-changing stage.
func WriteRows(w io.Writer, rows pipeline.RowCounts) {
	t := newTable(w, "Rows")
	t.AppendHeader(table.Row{"Stage", "Rows"})
	t.AppendRow(table.Row{"input", rows.Input})
	t.AppendRow(table.Row{"clean", rows.Cleaned})
	cols := make([]string, 0, len(rows.Imputed))
	for c := range rows.Imputed {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	for _, c := range cols {
		t.AppendRow(table.Row{"impute (" + c + " filled)", rows.Imputed[c]})
	}
	t.AppendRow(table.Row{"outlier", rows.AfterOutliers})
	t.AppendRow(table.Row{"train", rows.Train})
	t.AppendRow(table.Row{"test", rows.Test})
	t.Render()
}

// WriteFeatures prints every candidate's mutual information and, for the
// selected ones, the model importance.
func WriteFeatures(w io.Writer, res *pipeline.Result) {
	importance := make(map[string]float64, len(res.Selected))
	for i, f := range res.Selected {
		if i < len(res.Importances) {
			importance[f] = res.Importances[i]
		}
	}

	t := newTable(w, "Features")
	t.AppendHeader(table.Row{"Feature", "Mutual Information", "Selected", "Importance"})
	for _, s := range res.Scores {
		imp, selected := importance[s.Feature]
		row := table.Row{s.Feature, fmt.Sprintf("%.4f", s.Value), selected, ""}
		if selected {
			row[3] = fmt.Sprintf("%.4f", imp)
		}
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// WriteMetrics prints the test-set evaluation, next to the linear baseline
// when the run has one.
func WriteMetrics(w io.Writer, res *pipeline.Result) {
	t := newTable(w, "Evaluation")
	header := table.Row{"Metric", "Boosting"}
	if res.Baseline != nil {
		header = append(header, "Linear baseline")
	}
	t.AppendHeader(header)

	metric := func(name, format string, get func(metrics.RegressionReport) any) {
		row := table.Row{name, fmt.Sprintf(format, get(res.Report))}
		if res.Baseline != nil {
			row = append(row, fmt.Sprintf(format, get(*res.Baseline)))
		}
		t.AppendRow(row)
	}
	metric("rows", "%d", func(r metrics.RegressionReport) any { return r.N })
	metric("MAE", "%.2f", func(r metrics.RegressionReport) any { return r.MAE })
	metric("MSE", "%.2f", func(r metrics.RegressionReport) any { return r.MSE })
	metric("RMSE", "%.2f", func(r metrics.RegressionReport) any { return r.RMSE })
	metric("R2", "%.4f", func(r metrics.RegressionReport) any { return r.R2 })
	metric("MAPE", "%.4f", func(r metrics.RegressionReport) any { return r.MAPE })
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}
