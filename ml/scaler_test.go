package ml

import (
	"errors"
	"testing"
)

func TestStandardScalerTransformColumns(t *testing.T) {
	scaler, err := DecodeScaler([]byte(`{"kind":"standard","mean":[40,27,5.5,140],"scale":[20,0,1,40]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vector := []float64{1, 60, 1, 0, 3, 30, 6.5, 180}
	if err := TransformColumns(scaler, vector, ContinuousIndices()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 1, 1, 0, 3, 3, 1, 1}
	for i := range want {
		if vector[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], vector[i])
		}
	}
}

func TestMinMaxScaler(t *testing.T) {
	scaler, err := DecodeScaler([]byte(`{"kind":"minmax","min":[0,-0.25,-0.25,-0.1],"scale":[0.01,0.025,0.083333,0.002]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := scaler.Transform([]float64{50, 10, 3, 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 0.5 || out[1] != 0 {
		t.Fatalf("unexpected output: %v", out)
	}
	if scaler.Kind() != ScalerMinMax {
		t.Fatalf("unexpected kind %s", scaler.Kind())
	}
}

func TestDecodeScalerErrors(t *testing.T) {
	cases := []string{
		`{"kind":"standard","mean":[1,2],"scale":[1,2]}`,
		`{"kind":"robust","mean":[1,2,3,4],"scale":[1,1,1,1]}`,
		`{"mean":[1,2,3,4],"scale":[1,1,1,1]}`,
		`not json`,
	}
	for _, payload := range cases {
		if _, err := DecodeScaler([]byte(payload)); err == nil {
			t.Fatalf("expected error for %s", payload)
		}
	}
}

func TestScalerDimensionMismatch(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{0, 0, 0, 0}, Scale: []float64{1, 1, 1, 1}}
	if _, err := scaler.Transform([]float64{1, 2}); !errors.Is(err, ErrDimension) {
		t.Fatalf("expected ErrDimension, got %v", err)
	}
	if err := TransformColumns(scaler, []float64{1, 2}, []int{0, 9, 1, 1}); !errors.Is(err, ErrDimension) {
		t.Fatalf("expected ErrDimension, got %v", err)
	}
}
