package monitoring

import (
	"time"

	"riskgate/gateway"
)

const (
	metricPredictions = "riskgate_predictions_total"
	metricRiskLevels  = "riskgate_risk_level_total"
	metricLatency     = "riskgate_predict_seconds"
)

// latencyBuckets 预测耗时分桶（秒）
var latencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}

// Outcome 预测结果分类
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeFailure         = "failure"
)

// PredictionMetrics 预测业务指标
type PredictionMetrics struct {
	collector *MetricsCollector
}

// NewPredictionMetrics 创建预测指标
func NewPredictionMetrics(collector *MetricsCollector) *PredictionMetrics {
	collector.SetHelp(metricPredictions, "Predictions served, by outcome")
	collector.SetHelp(metricRiskLevels, "Successful predictions, by risk level")
	collector.SetHelp(metricLatency, "Time spent in the gateway per prediction")
	return &PredictionMetrics{collector: collector}
}

// Collector 返回底层收集器
func (pm *PredictionMetrics) Collector() *MetricsCollector {
	return pm.collector
}

// RecordPrediction 记录一次预测
func (pm *PredictionMetrics) RecordPrediction(result gateway.Result, elapsed time.Duration) {
	outcome := Outcome(result)
	pm.collector.IncrCounter(metricPredictions, 1, map[string]string{"outcome": outcome})
	if outcome == OutcomeSuccess {
		pm.collector.IncrCounter(metricRiskLevels, 1, map[string]string{"level": string(result.RiskLevel)})
	}
	pm.collector.RecordHistogram(metricLatency, elapsed.Seconds(), latencyBuckets)
}

// Outcome 对结果分类：范围校验错误与内部失败分开统计
func Outcome(result gateway.Result) string {
	switch {
	case result.OK():
		return OutcomeSuccess
	case result.Failed():
		return OutcomeFailure
	default:
		return OutcomeValidationError
	}
}

// Count 返回某个结果分类的累计次数
func (pm *PredictionMetrics) Count(outcome string) float64 {
	metric, err := pm.collector.GetMetric(metricPredictions, map[string]string{"outcome": outcome})
	if err != nil {
		return 0
	}
	return metric.Value
}
