// Package gateway turns one raw patient record into one prediction result.
//
// A Gateway holds only the immutable artifact tables, so Predict is a pure
// function of its input and may be called from many goroutines at once
// without locking.
package gateway

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"riskgate/artifacts"
	"riskgate/ml"
)

// Fallbacks for absent numeric fields.
const (
	DefaultAge     = 0.0
	DefaultHbA1c   = 5.0
	DefaultGlucose = 100.0
)

// Resolved is a record after coercion and imputation, before validation
// and encoding. It is comparable and can key a cache.
type Resolved struct {
	Gender         string
	Age            float64
	Hypertension   int
	HeartDisease   int
	SmokingHistory string
	BMI            float64
	HbA1c          float64
	Glucose        float64
	BMIImputed     bool
}

type Gateway struct {
	tables *artifacts.Tables
	rules  []ValidationRule
	logger *zap.Logger
}

func New(tables *artifacts.Tables, logger *zap.Logger) (*Gateway, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, w := range tables.Warnings() {
		logger.Warn("artifact configuration", zap.String("warning", w))
	}
	return &Gateway{
		tables: tables,
		rules:  DefaultRules(),
		logger: logger,
	}, nil
}

func (g *Gateway) Tables() *artifacts.Tables { return g.tables }

// Resolve applies coercion and default substitution to every field.
func (g *Gateway) Resolve(record Record) (Resolved, error) {
	var (
		r   Resolved
		err error
	)
	if r.Age, err = toFloat(FieldAge, record.Age, DefaultAge); err != nil {
		return Resolved{}, err
	}
	if r.Hypertension, err = toInt(FieldHypertension, record.Hypertension, 0); err != nil {
		return Resolved{}, err
	}
	if r.HeartDisease, err = toInt(FieldHeartDisease, record.HeartDisease, 0); err != nil {
		return Resolved{}, err
	}
	if r.HbA1c, err = toFloat(FieldHbA1c, record.HbA1c, DefaultHbA1c); err != nil {
		return Resolved{}, err
	}
	if r.Glucose, err = toFloat(FieldGlucose, record.Glucose, DefaultGlucose); err != nil {
		return Resolved{}, err
	}
	r.BMI, r.BMIImputed = resolveBMI(record.BMI, g.tables.Defaults.MedianBMI)
	r.Gender = toLabel(record.Gender, artifacts.DefaultGender)
	r.SmokingHistory = toLabel(record.SmokingHistory, g.tables.Defaults.ModeSmoking)
	return r, nil
}

// Predict never panics and never returns a Go error: every failure is
// reported through Result.Error.
func (g *Gateway) Predict(record Record) (result Result) {
	defer g.recover(&result)

	resolved, err := g.Resolve(record)
	if err != nil {
		return g.fail(err)
	}
	return g.predict(resolved)
}

// PredictResolved runs validation, encoding and inference on an already
// resolved record.
func (g *Gateway) PredictResolved(resolved Resolved) (result Result) {
	defer g.recover(&result)
	return g.predict(resolved)
}

// Vector builds the scaled feature vector handed to the classifier.
func (g *Gateway) Vector(resolved Resolved) ([]float64, error) {
	gender := resolved.Gender
	if !g.tables.Gender.Contains(gender) {
		gender = artifacts.DefaultGender
	}
	genderCode, err := g.tables.Gender.Transform(gender)
	if err != nil {
		return nil, fmt.Errorf("gender: %w", err)
	}

	smoking := resolved.SmokingHistory
	if !g.tables.Smoking.Contains(smoking) {
		smoking = g.tables.Defaults.ModeSmoking
	}
	smokingCode, err := g.tables.Smoking.Transform(smoking)
	if err != nil {
		return nil, fmt.Errorf("smoking_history: %w", err)
	}

	vector := ml.FeatureVector(ml.PatientFeatures{
		Gender:         genderCode,
		Age:            resolved.Age,
		Hypertension:   resolved.Hypertension,
		HeartDisease:   resolved.HeartDisease,
		SmokingHistory: smokingCode,
		BMI:            resolved.BMI,
		HbA1c:          resolved.HbA1c,
		Glucose:        resolved.Glucose,
	})
	if err := ml.TransformColumns(g.tables.Scaler, vector, ml.ContinuousIndices()); err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	return vector, nil
}

func (g *Gateway) predict(resolved Resolved) Result {
	if err := validate(g.rules, resolved); err != nil {
		return g.fail(err)
	}

	vector, err := g.Vector(resolved)
	if err != nil {
		return g.fail(err)
	}

	label, err := g.tables.Model.Predict(vector)
	if err != nil {
		return g.fail(fmt.Errorf("predict: %w", err))
	}
	proba, err := g.tables.Model.PredictProba(vector)
	if err != nil {
		return g.fail(fmt.Errorf("predict_proba: %w", err))
	}
	if label != 0 && label != 1 {
		return g.fail(fmt.Errorf("model returned label %d", label))
	}
	if math.IsNaN(proba) || proba < 0 || proba > 1 {
		return g.fail(fmt.Errorf("model returned probability %v outside [0,1]", proba))
	}

	return Result{
		Label:       label,
		Probability: proba,
		RiskLevel:   RiskLevelFor(proba),
	}
}

func (g *Gateway) fail(err error) Result {
	var verr *ValidationError
	if errors.As(err, &verr) {
		g.logger.Debug("record rejected", zap.String("rule", verr.Rule))
	} else {
		g.logger.Warn("prediction failed", zap.Error(err))
	}
	return Failure(err)
}

func (g *Gateway) recover(result *Result) {
	if r := recover(); r != nil {
		*result = g.fail(fmt.Errorf("%v", r))
	}
}
