package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"riskgate/gateway"
	"riskgate/monitoring"
)

// BatchConfig 批量预测配置
type BatchConfig struct {
	Workers int
}

// BatchStats 批量预测统计
type BatchStats struct {
	Total            int           `json:"total"`
	Succeeded        int           `json:"succeeded"`
	ValidationErrors int           `json:"validation_errors"`
	Failures         int           `json:"failures"`
	Duration         time.Duration `json:"duration"`
}

// Output 一行输出，以JSON Lines写出
type Output struct {
	Line   int            `json:"line"`
	Result gateway.Result `json:"result"`
}

// BatchRunner 并发执行预测，按输入顺序输出结果
type BatchRunner struct {
	config    BatchConfig
	predictor gateway.Predictor
	metrics   *monitoring.PredictionMetrics
	logger    *zap.Logger
}

// NewBatchRunner 创建批量执行器
func NewBatchRunner(config BatchConfig, predictor gateway.Predictor, metrics *monitoring.PredictionMetrics, logger *zap.Logger) *BatchRunner {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	return &BatchRunner{config: config, predictor: predictor, metrics: metrics, logger: logger}
}

// Run 预测所有行并把结果写入out。ctx取消时停止派发，返回已完成部分的统计
func (br *BatchRunner) Run(ctx context.Context, rows []Row, out io.Writer) (BatchStats, error) {
	start := time.Now()
	results := make([]gateway.Result, len(rows))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < br.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				began := time.Now()
				results[i] = br.predictor.Predict(rows[i].Record)
				if br.metrics != nil {
					br.metrics.RecordPrediction(results[i], time.Since(began))
				}
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range rows {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	stats := BatchStats{}
	enc := json.NewEncoder(out)
	for i := 0; i < dispatched; i++ {
		stats.Total++
		switch monitoring.Outcome(results[i]) {
		case monitoring.OutcomeSuccess:
			stats.Succeeded++
		case monitoring.OutcomeValidationError:
			stats.ValidationErrors++
		default:
			stats.Failures++
		}
		if err := enc.Encode(Output{Line: rows[i].Line, Result: results[i]}); err != nil {
			return stats, fmt.Errorf("write result for line %d: %w", rows[i].Line, err)
		}
	}
	stats.Duration = time.Since(start)

	br.logger.Info("batch finished",
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("validation_errors", stats.ValidationErrors),
		zap.Int("failures", stats.Failures),
		zap.Duration("duration", stats.Duration))

	if err := ctx.Err(); err != nil && dispatched < len(rows) {
		return stats, fmt.Errorf("batch interrupted after %d of %d rows: %w", dispatched, len(rows), err)
	}
	return stats, nil
}
