package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	ModelDecisionTree       = "decision_tree"
	ModelRandomForest       = "random_forest"
	ModelLogisticRegression = "logistic_regression"
)

func NewModel(modelType string) (Classifier, error) {
	switch modelType {
	case ModelDecisionTree:
		return &DecisionTree{}, nil
	case ModelRandomForest:
		return &RandomForest{}, nil
	case ModelLogisticRegression:
		return &LogisticRegression{}, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
}

// DecodeModel builds a classifier of the given type from its JSON artifact.
func DecodeModel(modelType string, payload []byte) (Classifier, error) {
	model, err := NewModel(modelType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, model); err != nil {
		return nil, fmt.Errorf("decode %s model: %w", modelType, err)
	}
	if v, ok := model.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("invalid %s model: %w", modelType, err)
		}
	}
	return model, nil
}

func LoadModel(modelType, path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeModel(modelType, payload)
}
