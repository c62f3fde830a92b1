package gateway

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultJSONShapes(t *testing.T) {
	payload, err := json.Marshal(Result{Label: 1, Probability: 0.82, RiskLevel: RiskHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":1,"probability":0.82,"riskLevel":"High"}`, string(payload))

	payload, err = json.Marshal(Result{Label: 1, Probability: 0.82, Error: "BMI must be between 10 and 70"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"BMI must be between 10 and 70"}`, string(payload))
}

func TestResultUnmarshal(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"label":0,"probability":0.12,"riskLevel":"Low"}`), &r))
	assert.Equal(t, Result{Label: 0, Probability: 0.12, RiskLevel: RiskLow}, r)

	require.NoError(t, json.Unmarshal([]byte(`{"error":"Age must be between 0 and 120"}`), &r))
	assert.Equal(t, Result{Error: "Age must be between 0 and 120"}, r)

	assert.Error(t, json.Unmarshal([]byte(`{"error":"x","label":1}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"label":1}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"error":""}`), &r))
}

func TestFailure(t *testing.T) {
	assert.Equal(t, Result{Error: "Age must be between 0 and 120"},
		Failure(&ValidationError{Rule: "age_range", Message: "Age must be between 0 and 120"}))
	assert.Equal(t, Result{Error: "Prediction failed: boom"}, Failure(errors.New("boom")))
}

func TestFailedSeparatesInternalErrors(t *testing.T) {
	assert.True(t, Failure(errors.New("boom")).Failed())
	assert.False(t, Failure(&ValidationError{Rule: "age_range", Message: "Age must be between 0 and 120"}).Failed())
	assert.False(t, Result{Label: 1, Probability: 0.9, RiskLevel: RiskHigh}.Failed())
}

func TestAdviceAndDiagnosis(t *testing.T) {
	assert.Equal(t, "High risk. Recommend clinical evaluation.", RiskHigh.Advice())
	assert.Equal(t, "Moderate risk. Monitor HbA1c and glucose.", RiskMedium.Advice())
	assert.Equal(t, "Low risk. Maintain healthy lifestyle.", RiskLow.Advice())
	assert.Equal(t, "High Risk", Result{Label: 1}.Diagnosis())
	assert.Equal(t, "Low Risk", Result{Label: 0}.Diagnosis())
}
