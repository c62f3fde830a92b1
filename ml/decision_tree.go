package ml

import (
	"encoding/json"
	"errors"
	"fmt"
)

type DecisionTree struct {
	nodes []TreeNode
}

// TreeNode is one entry of a flattened tree. Value is the fraction of
// positive training samples that reached the node.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (dt *DecisionTree) UnmarshalJSON(payload []byte) error {
	var doc struct {
		Nodes []TreeNode `json:"nodes"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return err
	}
	dt.nodes = doc.Nodes
	return nil
}

func (dt *DecisionTree) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nodes []TreeNode `json:"nodes"`
	}{Nodes: dt.nodes})
}

func (dt *DecisionTree) Predict(features []float64) (int, error) {
	proba, err := dt.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return labelFor(proba), nil
}

func (dt *DecisionTree) PredictProba(features []float64) (float64, error) {
	if len(dt.nodes) == 0 {
		return 0, ErrNotLoaded
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree contains a cycle")
}

func (dt *DecisionTree) validate() error {
	if len(dt.nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if node.Value < 0 || node.Value > 1 {
				return fmt.Errorf("node %d: leaf value %v outside [0,1]", i, node.Value)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= FeatureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
	}
	return nil
}

// labelFor mirrors argmax over [1-p, p]: ties go to the negative class.
func labelFor(proba float64) int {
	if proba > 0.5 {
		return 1
	}
	return 0
}
