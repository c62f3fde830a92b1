// Package artifacts loads the pre-fitted encoders, scaler, imputation
// defaults and classifier that the gateway runs against. A Tables value is
// built once at startup and never mutated afterwards.
package artifacts

import (
	"errors"
	"fmt"

	"riskgate/ml"
)

// Artifact names, shared by the directory layout and the sqlite bundle.
const (
	ModelFile      = "final_model.json"
	ScalerFile     = "scaler.json"
	GenderFile     = "le_gender.json"
	SmokingFile    = "le_smoking.json"
	ImputationFile = "imputation_values.json"
)

func Names() []string {
	return []string{ModelFile, ScalerFile, GenderFile, SmokingFile, ImputationFile}
}

// Defaults are the training-time imputation values.
type Defaults struct {
	MedianBMI   float64 `json:"MEDIAN_BMI"`
	ModeSmoking string  `json:"MODE_SMOKING"`
}

type Tables struct {
	ModelType string
	Model     ml.Classifier
	Scaler    ml.Scaler
	Gender    *ml.LabelEncoder
	Smoking   *ml.LabelEncoder
	Defaults  Defaults
}

var ErrIncomplete = errors.New("artifact tables incomplete")

func (t *Tables) Validate() error {
	switch {
	case t == nil:
		return fmt.Errorf("%w: nil tables", ErrIncomplete)
	case t.Model == nil:
		return fmt.Errorf("%w: missing model", ErrIncomplete)
	case t.Scaler == nil:
		return fmt.Errorf("%w: missing scaler", ErrIncomplete)
	case t.Gender == nil:
		return fmt.Errorf("%w: missing gender encoder", ErrIncomplete)
	case t.Smoking == nil:
		return fmt.Errorf("%w: missing smoking encoder", ErrIncomplete)
	}
	return nil
}

// Warnings lists configurations that load fine but make some calls fail:
// a fallback label the encoder does not know.
func (t *Tables) Warnings() []string {
	var warnings []string
	if !t.Gender.Contains(DefaultGender) {
		warnings = append(warnings, fmt.Sprintf("gender encoder has no %q class; unknown genders will fail", DefaultGender))
	}
	if !t.Smoking.Contains(t.Defaults.ModeSmoking) {
		warnings = append(warnings, fmt.Sprintf("smoking encoder has no %q class; unknown smoking labels will fail", t.Defaults.ModeSmoking))
	}
	return warnings
}

// DefaultGender replaces gender labels the encoder was not fitted on.
const DefaultGender = "Female"

type Summary struct {
	ModelType      string   `json:"model_type"`
	ScalerKind     string   `json:"scaler_kind"`
	Features       []string `json:"features"`
	GenderClasses  []string `json:"gender_classes"`
	SmokingClasses []string `json:"smoking_classes"`
	MedianBMI      float64  `json:"median_bmi"`
	ModeSmoking    string   `json:"mode_smoking"`
}

func (t *Tables) Summary() Summary {
	return Summary{
		ModelType:      t.ModelType,
		ScalerKind:     t.Scaler.Kind(),
		Features:       ml.FeatureNames(),
		GenderClasses:  append([]string(nil), t.Gender.Classes...),
		SmokingClasses: append([]string(nil), t.Smoking.Classes...),
		MedianBMI:      t.Defaults.MedianBMI,
		ModeSmoking:    t.Defaults.ModeSmoking,
	}
}
