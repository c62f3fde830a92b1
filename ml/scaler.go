package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// Scaler is a per-column linear transform fitted at training time.
type Scaler interface {
	Kind() string
	Transform(values []float64) ([]float64, error)
}

// StandardScaler computes (x - mean) / scale. A zero scale is treated as 1,
// matching how constant training columns are handled at fit time.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Kind() string { return ScalerStandard }

func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.Mean) || len(values) != len(s.Scale) {
		return nil, fmt.Errorf("%w: scaler fitted on %d columns, got %d", ErrDimension, len(s.Mean), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// MinMaxScaler computes x*scale + min, where min and scale are the fitted
// offsets (not the raw data bounds).
type MinMaxScaler struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

func (s *MinMaxScaler) Kind() string { return ScalerMinMax }

func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.Min) || len(values) != len(s.Scale) {
		return nil, fmt.Errorf("%w: scaler fitted on %d columns, got %d", ErrDimension, len(s.Min), len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*s.Scale[i] + s.Min[i]
	}
	return out, nil
}

// TransformColumns scales the given positions of vector in place.
func TransformColumns(s Scaler, vector []float64, columns []int) error {
	values := make([]float64, len(columns))
	for i, col := range columns {
		if col < 0 || col >= len(vector) {
			return fmt.Errorf("%w: column %d outside vector of %d", ErrDimension, col, len(vector))
		}
		values[i] = vector[col]
	}
	scaled, err := s.Transform(values)
	if err != nil {
		return err
	}
	for i, col := range columns {
		vector[col] = scaled[i]
	}
	return nil
}

func DecodeScaler(payload []byte) (Scaler, error) {
	var doc struct {
		Kind  string    `json:"kind"`
		Mean  []float64 `json:"mean"`
		Min   []float64 `json:"min"`
		Scale []float64 `json:"scale"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	width := len(ContinuousIndices())
	switch doc.Kind {
	case ScalerStandard:
		if len(doc.Mean) != width || len(doc.Scale) != width {
			return nil, fmt.Errorf("%w: standard scaler needs %d mean and scale values", ErrDimension, width)
		}
		return &StandardScaler{Mean: doc.Mean, Scale: doc.Scale}, nil
	case ScalerMinMax:
		if len(doc.Min) != width || len(doc.Scale) != width {
			return nil, fmt.Errorf("%w: minmax scaler needs %d min and scale values", ErrDimension, width)
		}
		return &MinMaxScaler{Min: doc.Min, Scale: doc.Scale}, nil
	case "":
		return nil, errors.New("scaler kind is required")
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", doc.Kind)
	}
}

func LoadScaler(path string) (Scaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeScaler(payload)
}
