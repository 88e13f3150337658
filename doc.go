// Package autoprice trains and evaluates a used-car price model.
//
// A run takes a table of vehicle listings through a fixed sequence of
// stages and returns a gradient boosted regression model together with its
// test-set evaluation:
//
//   - clean: keep listings priced in (500, 80000), project to the modelling
//     columns and draw a seeded 30% subsample
//   - impute: fill missing year and odometer from the 5 nearest neighbours
//   - outlier: drop rows whose odometer z-score exceeds 3
//   - encode: map every categorical column to integer codes
//   - features: derive car_age, price_per_km and odometer_fuel
//   - select: keep features whose mutual information with price exceeds 0.01
//   - split: hold out 10% of rows for testing
//   - boost: fit 100 depth-3 regression trees with learning rate 0.1
//   - evaluate: MAE, MSE and R² on the held-out rows, plus the error after
//     every boosting stage
//
// Every random step is driven by the single configured seed, so two runs
// over the same input and configuration produce identical results.
//
// # Quick Start
//
//	records, err := dataset.Load("vehicles.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := pipeline.Run(ctx, records, pipeline.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report.WriteSummary(os.Stdout, res)
//
// The autoprice command wraps the same run:
//
//	autoprice train --data vehicles.csv --plots-dir plots
//	autoprice train --synthetic 20000 --loss huber
//	autoprice config
//
// # Packages
//
//   - core/table: column-oriented record table
//   - core/model, core/parallel, core/random: estimator base, worker fan-out, seeded streams
//   - dataset: CSV loading and synthetic listings
//   - preprocessing: cleaning, outlier filtering, label encoding, derived features
//   - sklearn/impute: KNN imputation
//   - sklearn/feature_selection: mutual information scoring and selection
//   - sklearn/model_selection: train/test split
//   - sklearn/tree, sklearn/ensemble: regression trees and gradient boosting
//   - linear: least squares baseline
//   - metrics: regression metrics and staged error
//   - pipeline: the end-to-end run
//   - report: summary tables and plots
//   - pkg/errors, pkg/log: structured errors and logging
package autoprice
