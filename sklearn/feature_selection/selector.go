package feature_selection

import (
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// ThresholdSelector keeps features whose score is strictly above Threshold.
type ThresholdSelector struct {
	Threshold float64
}

// NewThresholdSelector creates a selector.
func NewThresholdSelector(threshold float64) *ThresholdSelector {
	return &ThresholdSelector{Threshold: threshold}
}

// Select returns the surviving features in candidate order. An empty
// selection is a DataError: no model can be trained on zero features.
func (s *ThresholdSelector) Select(scores Scores) ([]string, error) {
	if s.Threshold < 0 || s.Threshold > 1 {
		return nil, errors.NewValidationError("importance_threshold", "must be in [0, 1]", s.Threshold)
	}
	var kept, dropped []string
	for _, sc := range scores {
		if sc.Value > s.Threshold {
			kept = append(kept, sc.Feature)
		} else {
			dropped = append(dropped, sc.Feature)
		}
	}

	logger := log.GetLoggerWithName("feature_selection.selector")
	if len(kept) == 0 {
		return nil, errors.NewDataError("select", "", "no feature scored above the importance threshold")
	}
	logger.Info("features selected",
		log.StageKey, "select",
		log.ThresholdKey, s.Threshold,
		"selected", kept,
		"dropped", dropped,
	)
	return kept, nil
}

// SelectByThreshold is shorthand for NewThresholdSelector(threshold).Select(scores).
func SelectByThreshold(scores Scores, threshold float64) ([]string, error) {
	return NewThresholdSelector(threshold).Select(scores)
}
