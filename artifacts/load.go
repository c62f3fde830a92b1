package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"riskgate/ml"
)

// Decode builds Tables from the raw artifact documents keyed by file name.
// Every document is schema-checked before it is decoded.
func Decode(modelType string, docs map[string][]byte) (*Tables, error) {
	for _, name := range Names() {
		if _, ok := docs[name]; !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrIncomplete, name)
		}
	}

	checks := map[string]string{
		ModelFile:      modelType,
		ScalerFile:     "scaler",
		GenderFile:     "encoder",
		SmokingFile:    "encoder",
		ImputationFile: "imputation",
	}
	for _, name := range Names() {
		if err := validateDocument(checks[name], docs[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	model, err := ml.DecodeModel(modelType, docs[ModelFile])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ModelFile, err)
	}
	scaler, err := ml.DecodeScaler(docs[ScalerFile])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ScalerFile, err)
	}
	gender, err := ml.DecodeLabelEncoder(docs[GenderFile])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GenderFile, err)
	}
	smoking, err := ml.DecodeLabelEncoder(docs[SmokingFile])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SmokingFile, err)
	}
	var defaults Defaults
	if err := json.Unmarshal(docs[ImputationFile], &defaults); err != nil {
		return nil, fmt.Errorf("%s: %w", ImputationFile, err)
	}

	tables := &Tables{
		ModelType: modelType,
		Model:     model,
		Scaler:    scaler,
		Gender:    gender,
		Smoking:   smoking,
		Defaults:  defaults,
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ReadDir reads the raw artifact documents from dir.
func ReadDir(dir string) (map[string][]byte, error) {
	docs := make(map[string][]byte, len(Names()))
	for _, name := range Names() {
		payload, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs[name] = payload
	}
	return docs, nil
}

func LoadDir(dir, modelType string) (*Tables, error) {
	docs, err := ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return Decode(modelType, docs)
}
