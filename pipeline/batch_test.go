package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"riskgate/artifacts/artifactstest"
	"riskgate/gateway"
	"riskgate/monitoring"
)

func newRunner(t *testing.T, workers int) (*BatchRunner, *monitoring.PredictionMetrics) {
	t.Helper()
	g, err := gateway.New(artifactstest.Tables(t), zap.NewNop())
	require.NoError(t, err)
	metrics := monitoring.NewPredictionMetrics(monitoring.NewMetricsCollector())
	return NewBatchRunner(BatchConfig{Workers: workers}, g, metrics, zap.NewNop()), metrics
}

func decodeOutputs(t *testing.T, data []byte) []Output {
	t.Helper()
	var outputs []Output
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var out Output
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &out))
		outputs = append(outputs, out)
	}
	require.NoError(t, scanner.Err())
	return outputs
}

func TestBatchRunnerPreservesOrder(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	runner, metrics := newRunner(t, 3)

	var out bytes.Buffer
	stats, err := runner.Run(context.Background(), rows, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 0, stats.ValidationErrors)
	assert.Equal(t, float64(2), metrics.Count(monitoring.OutcomeSuccess))

	outputs := decodeOutputs(t, out.Bytes())
	require.Len(t, outputs, 3)
	assert.Equal(t, []int{2, 3, 5}, []int{outputs[0].Line, outputs[1].Line, outputs[2].Line})
	assert.Equal(t, gateway.RiskHigh, outputs[0].Result.RiskLevel)
	assert.Equal(t, gateway.RiskLow, outputs[1].Result.RiskLevel)
	assert.True(t, strings.HasPrefix(outputs[2].Result.Error, "Prediction failed: "))
}

func TestBatchRunnerMatchesSequentialPredict(t *testing.T) {
	g, err := gateway.New(artifactstest.Tables(t), zap.NewNop())
	require.NoError(t, err)

	var rows []Row
	for i := 0; i < 50; i++ {
		rows = append(rows, Row{Line: i + 2, Record: gateway.Record{
			Age:     gateway.Number(float64(20 + i)),
			HbA1c:   gateway.Number(4 + float64(i)/10),
			Glucose: gateway.Number(float64(80 + 5*i)),
		}})
	}

	var out bytes.Buffer
	runner := NewBatchRunner(BatchConfig{Workers: 8}, g, nil, zap.NewNop())
	_, err = runner.Run(context.Background(), rows, &out)
	require.NoError(t, err)

	outputs := decodeOutputs(t, out.Bytes())
	require.Len(t, outputs, len(rows))
	for i, o := range outputs {
		assert.Equal(t, g.Predict(rows[i].Record), o.Result, "line %d", o.Line)
	}
}

func TestBatchRunnerCancelled(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	runner, _ := newRunner(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	stats, err := runner.Run(ctx, rows, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, stats.Total, len(rows))
}
