package ml

import "errors"

var (
	ErrNotLoaded    = errors.New("model not loaded")
	ErrDimension    = errors.New("feature dimension mismatch")
	ErrUnknownLabel = errors.New("y contains previously unseen labels")
)

// Classifier is a pre-trained binary classifier. Predict is the decision
// function, PredictProba returns the positive-class probability.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) (float64, error)
}

type validator interface {
	validate() error
}
