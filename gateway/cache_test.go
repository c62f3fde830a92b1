package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedPredictorReusesResults(t *testing.T) {
	model := &fakeModel{label: 0, proba: 0.3}
	g := newFakeGateway(t, model)
	cached, err := NewCachedPredictor(g, 8)
	require.NoError(t, err)

	first := cached.Predict(validRecord())
	second := cached.Predict(validRecord())
	assert.Equal(t, first, second)
	assert.Equal(t, Result{Label: 0, Probability: 0.3, RiskLevel: RiskLow}, first)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedPredictorSharesKeyAcrossEquivalentRecords(t *testing.T) {
	model := &fakeModel{label: 0, proba: 0.3}
	g := newFakeGateway(t, model)
	cached, err := NewCachedPredictor(g, 8)
	require.NoError(t, err)

	cached.Predict(Record{Age: Number(50)})
	cached.Predict(Record{Age: Text("50"), BMI: Text("")})
	assert.Equal(t, 1, model.calls)
}

func TestCachedPredictorMatchesGateway(t *testing.T) {
	g := newGateway(t)
	cached, err := NewCachedPredictor(g, 8)
	require.NoError(t, err)

	for _, record := range []Record{validRecord(), {Age: Number(-1)}, {Age: Text("x")}} {
		assert.Equal(t, g.Predict(record), cached.Predict(record))
		assert.Equal(t, g.Predict(record), cached.Predict(record))
	}
}

func TestNewCachedPredictorRejectsBadSize(t *testing.T) {
	_, err := NewCachedPredictor(newGateway(t), 0)
	assert.Error(t, err)
}
