// Package cli provides the autoprice command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/autoprice/internal/config"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type app struct {
	cfgFile string
	cfg     *config.Config
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "autoprice",
		Short: "Used-car price model trainer",
		Long: `autoprice cleans a used-car listings CSV, imputes and filters it, selects
features by mutual information and trains a gradient boosted regression tree
model, reporting test-set MAE, MSE and R².`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg

			level, _ := log.ToLogLevel(cfg.LogLevel)
			if cfg.LogFormat == config.FormatJSON {
				log.SetProvider(log.NewZerologProvider(level, cmd.ErrOrStderr()))
			} else {
				log.SetProvider(log.NewConsoleProvider(level, cmd.ErrOrStderr()))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	f.String("log-level", "info", "log level (debug|info|warn|error)")
	f.String("log-format", config.FormatConsole, "log format (console|json)")
	f.String("data", "", "listings CSV")
	f.Int("synthetic", 0, "generate this many synthetic listings instead of reading --data")
	f.String("plots-dir", "", "write diagnostic plots to this directory")

	f.Float64("sample-fraction", 0.3, "fraction of cleaned rows kept")
	f.Float64("price-min", 500, "exclusive lower price bound")
	f.Float64("price-max", 80000, "exclusive upper price bound")
	f.Int("impute-neighbors", 5, "neighbours used by the KNN imputer")
	f.Float64("outlier-threshold", 3, "odometer z-score above which rows are dropped")
	f.Float64("importance-threshold", 0.01, "minimum mutual information of a selected feature")
	f.Int("mi-neighbors", 3, "neighbours used by the mutual information estimator")
	f.Float64("test-fraction", 0.1, "fraction of rows held out for evaluation")
	f.Int("n-estimators", 100, "number of boosting stages")
	f.Int("max-depth", 3, "depth of each tree")
	f.Float64("learning-rate", 0.1, "shrinkage applied to each tree")
	f.String("loss", "squared_error", "boosting loss (squared_error|absolute_error|huber)")
	f.Uint64("seed", 42, "random seed")
	f.Int("current-year", 0, "year used for car_age (default: this year)")

	_ = rootCmd.RegisterFlagCompletionFunc("loss", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"squared_error", "absolute_error", "huber"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(a.newTrainCommand())
	rootCmd.AddCommand(a.newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
