package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevelFor buckets a positive-class probability.
func RiskLevelFor(p float64) RiskLevel {
	switch {
	case p > 0.7:
		return RiskHigh
	case p > 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Advice is the recommendation shown next to a risk tier.
func (l RiskLevel) Advice() string {
	switch l {
	case RiskHigh:
		return "High risk. Recommend clinical evaluation."
	case RiskMedium:
		return "Moderate risk. Monitor HbA1c and glucose."
	default:
		return "Low risk. Maintain healthy lifestyle."
	}
}

// Result is either a prediction or an error message, never both. A result
// with a non-empty Error carries no prediction.
type Result struct {
	Label       int
	Probability float64
	RiskLevel   RiskLevel
	Error       string
}

func (r Result) OK() bool { return r.Error == "" }

// Failed reports an internal failure, as opposed to a range check rejection.
func (r Result) Failed() bool { return strings.HasPrefix(r.Error, failurePrefix) }

func (r Result) Diagnosis() string {
	if r.Label == 1 {
		return "High Risk"
	}
	return "Low Risk"
}

const failurePrefix = "Prediction failed: "

// Failure converts any error into the error shape. Validation errors keep
// their message; everything else is reported as a generic failure.
func Failure(err error) Result {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return Result{Error: verr.Message}
	}
	return Result{Error: failurePrefix + err.Error()}
}

type successJSON struct {
	Label       int       `json:"label"`
	Probability float64   `json:"probability"`
	RiskLevel   RiskLevel `json:"riskLevel"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(errorJSON{Error: r.Error})
	}
	return json.Marshal(successJSON{Label: r.Label, Probability: r.Probability, RiskLevel: r.RiskLevel})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if msg, ok := raw["error"]; ok {
		if len(raw) != 1 {
			return errors.New("error result carries extra fields")
		}
		var e string
		if err := json.Unmarshal(msg, &e); err != nil {
			return err
		}
		if e == "" {
			return errors.New("empty error message")
		}
		*r = Result{Error: e}
		return nil
	}
	var s successJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, key := range []string{"label", "probability", "riskLevel"} {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("result missing %q", key)
		}
	}
	*r = Result{Label: s.Label, Probability: s.Probability, RiskLevel: s.RiskLevel}
	return nil
}
