package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/dataset"
	"github.com/YuminosukeSato/autoprice/pipeline"
	"github.com/YuminosukeSato/autoprice/report"
)

func (a *app) newTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and evaluate the price model",
		Example: `  autoprice train --data vehicles.csv --plots-dir plots
  autoprice train --synthetic 5000 --n-estimators 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateSource(); err != nil {
				return err
			}

			var (
				records *table.Table
				err     error
			)
			if a.cfg.Data != "" {
				if records, err = dataset.Load(a.cfg.Data); err != nil {
					return err
				}
			} else {
				records = dataset.Synthetic(a.cfg.Synthetic, a.cfg.Seed)
			}

			res, err := pipeline.Run(cmd.Context(), records, a.cfg.Config)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.WriteSummary(out, res)

			if a.cfg.PlotsDir != "" {
				paths, err := report.WritePlots(cmd.Context(), a.cfg.PlotsDir, res)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(out, "wrote %s\n", p)
				}
			}
			return nil
		},
	}
	return cmd
}
