package http

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"riskgate/gateway"
)

func submitForm(t *testing.T, values url.Values, acceptLanguage string) string {
	t.Helper()
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func highRiskForm() url.Values {
	return url.Values{
		"gender":              {"Male"},
		"age":                 {"80"},
		"hypertension":        {"1"},
		"heart_disease":       {"0"},
		"smoking_history":     {"never"},
		"bmi":                 {"35"},
		"HbA1c_level":         {"9"},
		"blood_glucose_level": {"300"},
	}
}

func TestFormPageRenders(t *testing.T) {
	rr := newTestEnv(t).do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	body := rr.Body.String()
	assert.Contains(t, body, "Type 2 Diabetes Risk Prediction")
	assert.Contains(t, body, "BMI (leave blank for auto-fill)")
	assert.Contains(t, body, `value="45"`)
	assert.NotContains(t, body, `id="result"`)
}

func TestFormUnknownPathIsNotFound(t *testing.T) {
	rr := newTestEnv(t).do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFormSubmitHighRisk(t *testing.T) {
	body := submitForm(t, highRiskForm(), "")

	assert.Contains(t, body, "Prediction: High Risk")
	assert.Contains(t, body, "High risk. Recommend clinical evaluation.")
	assert.Contains(t, body, "%")
	assert.NotContains(t, body, InvalidBMIWarning)
}

func TestFormSubmitInvalidBMIWarns(t *testing.T) {
	values := highRiskForm()
	values.Set("bmi", "heavy")
	body := submitForm(t, values, "")

	assert.Contains(t, body, InvalidBMIWarning)
	assert.Contains(t, body, "Prediction: High Risk")
	assert.Contains(t, body, `value="heavy"`)
}

func TestFormSubmitOverflowingBMIIsRangeError(t *testing.T) {
	values := highRiskForm()
	values.Set("bmi", "1e400")
	body := submitForm(t, values, "")

	assert.Contains(t, body, "Error: BMI must be between 10 and 70")
	assert.NotContains(t, body, InvalidBMIWarning)
}

func TestFormSubmitShowsValidationError(t *testing.T) {
	values := highRiskForm()
	values.Set("blood_glucose_level", "700")
	body := submitForm(t, values, "")

	assert.Contains(t, body, "Error: Blood glucose must be between 50 and 600")
	assert.NotContains(t, body, "Prediction:")
}

func TestFormRecord(t *testing.T) {
	values := defaultFormValues()

	record, warning := values.Record()
	assert.Empty(t, warning)
	assert.Equal(t, `{"gender":"Male","age":"45","hypertension":"0","heart_disease":"0","smoking_history":"never","bmi":null,"HbA1c_level":"5.7","blood_glucose_level":"100"}`, mustJSON(t, record))

	values.BMI = " 31.5 "
	record, warning = values.Record()
	assert.Empty(t, warning)
	assert.Equal(t, gateway.Number(31.5), record.BMI)

	values.BMI = "1e400"
	record, warning = values.Record()
	assert.Empty(t, warning)
	assert.Equal(t, gateway.Number(math.Inf(1)), record.BMI)

	values.BMI = "n/a"
	record, warning = values.Record()
	assert.Equal(t, InvalidBMIWarning, warning)
	assert.Equal(t, gateway.Null(), record.BMI)
}

func TestNewOutcomeLocalizesPercent(t *testing.T) {
	result := gateway.Result{Label: 1, Probability: 0.73456, RiskLevel: gateway.RiskHigh}

	en := NewOutcome(result, "", message.NewPrinter(language.English))
	assert.Equal(t, "73.46%", en.Percent)
	assert.Equal(t, "High Risk", en.Diagnosis)

	de := NewOutcome(result, "", message.NewPrinter(language.German))
	assert.Equal(t, "73,46%", de.Percent)

	failed := NewOutcome(gateway.Result{Error: "Age must be between 0 and 120"}, "", message.NewPrinter(language.English))
	assert.Equal(t, "Age must be between 0 and 120", failed.Error)
	assert.Empty(t, failed.Percent)
}

func mustJSON(t *testing.T, record gateway.Record) string {
	t.Helper()
	data, err := record.MarshalJSON()
	require.NoError(t, err)
	return string(data)
}
