package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LabelEncoder maps a fixed set of training-time categories to their
// integer codes. The code of a class is its index in Classes.
type LabelEncoder struct {
	Classes []string `json:"classes"`
	index   map[string]int
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("label encoder has no classes")
	}
	index := make(map[string]int, len(classes))
	for i, class := range classes {
		if _, dup := index[class]; dup {
			return nil, fmt.Errorf("duplicate class %q", class)
		}
		index[class] = i
	}
	return &LabelEncoder{
		Classes: append([]string(nil), classes...),
		index:   index,
	}, nil
}

func DecodeLabelEncoder(payload []byte) (*LabelEncoder, error) {
	var doc struct {
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	return NewLabelEncoder(doc.Classes)
}

func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeLabelEncoder(payload)
}

func (e *LabelEncoder) Contains(label string) bool {
	_, ok := e.index[label]
	return ok
}

func (e *LabelEncoder) Transform(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownLabel, label)
	}
	return code, nil
}
