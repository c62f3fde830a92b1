// Package artifactstest provides a small, fixed set of artifacts for tests.
package artifactstest

import (
	"os"
	"path/filepath"
	"testing"

	"riskgate/artifacts"
	"riskgate/ml"
)

const ModelType = ml.ModelLogisticRegression

// Docs returns the sample artifact documents keyed by file name.
func Docs() map[string][]byte {
	return map[string][]byte{
		artifacts.ModelFile:      []byte(`{"coef":[0.3,1.0,0.8,0.7,0.05,0.6,2.5,1.4],"intercept":-5.0}`),
		artifacts.ScalerFile:     []byte(`{"kind":"standard","mean":[41.9,27.3,5.53,138.0],"scale":[22.5,6.6,1.07,40.7]}`),
		artifacts.GenderFile:     []byte(`{"classes":["Female","Male","Other"]}`),
		artifacts.SmokingFile:    []byte(`{"classes":["No Info","current","ever","former","never","not current"]}`),
		artifacts.ImputationFile: []byte(`{"MEDIAN_BMI":27.32,"MODE_SMOKING":"No Info"}`),
	}
}

func WriteDir(t testing.TB, dir string) {
	t.Helper()
	for name, payload := range Docs() {
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func Tables(t testing.TB) *artifacts.Tables {
	t.Helper()
	tables, err := artifacts.Decode(ModelType, Docs())
	if err != nil {
		t.Fatalf("decode sample artifacts: %v", err)
	}
	return tables
}

// TablesWithModel returns the sample tables with the classifier replaced.
func TablesWithModel(t testing.TB, model ml.Classifier) *artifacts.Tables {
	t.Helper()
	tables := Tables(t)
	tables.ModelType = "test"
	tables.Model = model
	return tables
}
