package ml

import (
	"fmt"
	"math"
)

// LogisticRegression scores sigmoid(coef·x + intercept). Threshold defaults
// to 0.5 when the artifact omits it.
type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold,omitempty"`
}

func (lr *LogisticRegression) Predict(features []float64) (int, error) {
	proba, err := lr.PredictProba(features)
	if err != nil {
		return 0, err
	}
	threshold := lr.Threshold
	if threshold == 0 {
		return labelFor(proba), nil
	}
	if proba > threshold {
		return 1, nil
	}
	return 0, nil
}

func (lr *LogisticRegression) PredictProba(features []float64) (float64, error) {
	if len(lr.Coef) == 0 {
		return 0, ErrNotLoaded
	}
	if len(features) != len(lr.Coef) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(features), len(lr.Coef))
	}
	z := lr.Intercept
	for i, w := range lr.Coef {
		z += w * features[i]
	}
	return sigmoid(z), nil
}

func (lr *LogisticRegression) validate() error {
	if len(lr.Coef) != FeatureCount {
		return fmt.Errorf("%w: %d coefficients, want %d", ErrDimension, len(lr.Coef), FeatureCount)
	}
	if lr.Threshold < 0 || lr.Threshold >= 1 {
		return fmt.Errorf("threshold %v outside [0,1)", lr.Threshold)
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
