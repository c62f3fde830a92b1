package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"riskgate/artifacts"
	"riskgate/gateway"
	"riskgate/monitoring"
)

// MaxBatchSize 单次批量预测的最大记录数
const MaxBatchSize = 1000

// Handler 持有所有处理器共享的依赖
type Handler struct {
	predictor gateway.Predictor
	summary   artifacts.Summary
	metrics   *monitoring.PredictionMetrics
	logger    *zap.Logger
	upgrader  websocket.Upgrader
	languages language.Matcher
}

// NewHandler 创建处理器
func NewHandler(predictor gateway.Predictor, summary artifacts.Summary, metrics *monitoring.PredictionMetrics, logger *zap.Logger) *Handler {
	return &Handler{
		predictor: predictor,
		summary:   summary,
		metrics:   metrics,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		languages: language.NewMatcher(supportedLanguages),
	}
}

// RegisterHandlers 注册路由
func RegisterHandlers(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("POST /api/predict/batch", h.handleBatch)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /api/ws/predict", h.handleWebSocket)
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /{$}", h.handleFormSubmit)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// predict 执行一次预测并记录指标
func (h *Handler) predict(record gateway.Record) gateway.Result {
	start := time.Now()
	result := h.predictor.Predict(record)
	if h.metrics != nil {
		h.metrics.RecordPrediction(result, time.Since(start))
	}
	return result
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePredict 单条预测。校验失败与预测失败仍返回200和{error}
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	record, err := decodeRecord(body)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.predict(record))
}

// handleBatch 批量预测，结果顺序与输入一致
func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := expectJSON(body, '[', "a JSON array"); err != nil {
		h.badRequest(w, r, err)
		return
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if len(raw) > MaxBatchSize {
		h.badRequest(w, r, fmt.Errorf("batch of %d records exceeds limit of %d", len(raw), MaxBatchSize))
		return
	}

	records := make([]gateway.Record, len(raw))
	for i, item := range raw {
		if records[i], err = decodeRecord(item); err != nil {
			h.badRequest(w, r, fmt.Errorf("record %d: %w", i, err))
			return
		}
	}

	results := make([]gateway.Result, len(records))
	for i, record := range records {
		results[i] = h.predict(record)
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.summary)
}

// handleMetrics 输出Prometheus文本格式
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(h.metrics.Collector().ExportPrometheus()))
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("bad request",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, errorBody{Error: "invalid request: " + err.Error()})
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decodeRecord 解码一条记录，只接受JSON对象
func decodeRecord(data []byte) (gateway.Record, error) {
	return gateway.DecodeRecord(data)
}

// expectJSON 检查JSON值的起始字符
func expectJSON(data []byte, open byte, what string) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty body")
	}
	if data[0] != open {
		return fmt.Errorf("body must be %s", what)
	}
	return nil
}
