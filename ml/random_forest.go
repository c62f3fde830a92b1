package ml

import (
	"errors"
	"fmt"
)

// RandomForest averages the positive-class probability of its trees.
type RandomForest struct {
	Trees []*DecisionTree `json:"trees"`
}

func (rf *RandomForest) Predict(features []float64) (int, error) {
	proba, err := rf.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return labelFor(proba), nil
}

func (rf *RandomForest) PredictProba(features []float64) (float64, error) {
	if len(rf.Trees) == 0 {
		return 0, ErrNotLoaded
	}
	sum := 0.0
	for i, tree := range rf.Trees {
		p, err := tree.PredictProba(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += p
	}
	return sum / float64(len(rf.Trees)), nil
}

func (rf *RandomForest) validate() error {
	if len(rf.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i, tree := range rf.Trees {
		if tree == nil {
			return fmt.Errorf("tree %d is null", i)
		}
		if err := tree.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
