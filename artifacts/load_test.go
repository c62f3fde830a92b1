package artifacts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"riskgate/artifacts"
	"riskgate/artifacts/artifactstest"
	"riskgate/ml"
)

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	artifactstest.WriteDir(t, dir)

	tables, err := artifacts.LoadDir(dir, artifactstest.ModelType)
	require.NoError(t, err)

	assert.Equal(t, 27.32, tables.Defaults.MedianBMI)
	assert.Equal(t, "No Info", tables.Defaults.ModeSmoking)
	assert.True(t, tables.Gender.Contains("Male"))
	assert.Equal(t, ml.ScalerStandard, tables.Scaler.Kind())
	assert.Empty(t, tables.Warnings())

	summary := tables.Summary()
	assert.Equal(t, ml.ModelLogisticRegression, summary.ModelType)
	assert.Len(t, summary.Features, ml.FeatureCount)
	assert.Equal(t, []string{"Female", "Male", "Other"}, summary.GenderClasses)
}

func TestLoadDirMissingFile(t *testing.T) {
	dir := t.TempDir()
	artifactstest.WriteDir(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, artifacts.ScalerFile)))

	_, err := artifacts.LoadDir(dir, artifactstest.ModelType)
	assert.Error(t, err)
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		payload string
	}{
		{"median bmi as string", artifacts.ImputationFile, `{"MEDIAN_BMI":"27","MODE_SMOKING":"never"}`},
		{"missing mode", artifacts.ImputationFile, `{"MEDIAN_BMI":27}`},
		{"empty encoder", artifacts.GenderFile, `{"classes":[]}`},
		{"duplicate classes", artifacts.SmokingFile, `{"classes":["never","never"]}`},
		{"three scaler columns", artifacts.ScalerFile, `{"kind":"standard","mean":[1,2,3],"scale":[1,1,1]}`},
		{"short coefficients", artifacts.ModelFile, `{"coef":[1,2],"intercept":0}`},
		{"not json", artifacts.ModelFile, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := artifactstest.Docs()
			docs[tt.file] = []byte(tt.payload)
			_, err := artifacts.Decode(artifactstest.ModelType, docs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.file)
		})
	}
}

func TestDecodeMissingDocument(t *testing.T) {
	docs := artifactstest.Docs()
	delete(docs, artifacts.GenderFile)
	_, err := artifacts.Decode(artifactstest.ModelType, docs)
	assert.ErrorIs(t, err, artifacts.ErrIncomplete)
}

func TestDecodeUnsupportedModelType(t *testing.T) {
	_, err := artifacts.Decode("xgboost", artifactstest.Docs())
	assert.Error(t, err)
}

func TestWarningsForUnknownFallbacks(t *testing.T) {
	docs := artifactstest.Docs()
	docs[artifacts.GenderFile] = []byte(`{"classes":["F","M"]}`)
	docs[artifacts.ImputationFile] = []byte(`{"MEDIAN_BMI":27.32,"MODE_SMOKING":"unknown"}`)

	tables, err := artifacts.Decode(artifactstest.ModelType, docs)
	require.NoError(t, err)
	assert.Len(t, tables.Warnings(), 2)
}

func TestValidateIncomplete(t *testing.T) {
	var tables *artifacts.Tables
	assert.ErrorIs(t, tables.Validate(), artifacts.ErrIncomplete)
	assert.ErrorIs(t, (&artifacts.Tables{}).Validate(), artifacts.ErrIncomplete)
}

func TestWatchReportsArtifactChanges(t *testing.T) {
	dir := t.TempDir()
	artifactstest.WriteDir(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 16)
	err := artifacts.Watch(ctx, dir, zap.NewNop(), func(name string) { changed <- name })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifacts.ScalerFile), []byte(`{}`), 0o600))

	select {
	case name := <-changed:
		assert.Equal(t, artifacts.ScalerFile, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := artifacts.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), zap.NewNop(), nil)
	assert.Error(t, err)
}
